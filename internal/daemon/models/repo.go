// Package models defines the records the daemon persists.
package models

import "time"

// Repo is the daemon's view of a synchronized library. Encryption fields
// are kept so the sync engine can unlock the repo after a restart; the
// passphrase itself is never stored.
type Repo struct {
	ID              string
	Name            string
	Desc            string
	Version         int
	Worktree        string
	Email           string
	ServerURL       string
	RelayID         string
	Encrypted       bool
	EncVersion      int
	Magic           string
	RandomKey       string
	IsReadonly      bool
	AutoSync        bool
	WorktreeInvalid bool
	// ClonePending is set until the initial clone reaches done. Pending
	// repos are hidden from listings.
	ClonePending bool
	LastSyncTime time.Time
	CreatedAt    time.Time
}

// Setting is a config key/value pair.
type Setting struct {
	Key   string
	Value string
}
