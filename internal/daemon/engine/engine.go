// Package engine is the boundary between the daemon's control plane and
// the component that actually moves repository content.
package engine

import "context"

// Request describes a repo the engine should materialize. Passwd is held
// in memory only and never persisted.
type Request struct {
	RepoID      string
	RepoName    string
	RepoVersion int
	Worktree    string
	Token       string
	ServerURL   string
	Email       string
	Encrypted   bool
	EncVersion  int
	RandomKey   string
	Passwd      string
}

// Reporter receives clone progress. *tasks.Manager implements it.
type Reporter interface {
	StartFetch(repoID string) error
	UpdateFS(repoID string, done, total int64) error
	UpdateBlocks(repoID string, done, total int64) error
	FinishClone(repoID string) error
	FailClone(repoID string, code int) error
}

// Engine performs the data side of clone and download.
type Engine interface {
	// Handshake checks that the server accepts the transfer token. It is
	// called synchronously before a clone is recorded.
	Handshake(ctx context.Context, req Request) error
	// Start begins the transfer in the background and reports progress
	// through r.
	Start(ctx context.Context, req Request, r Reporter)
	// Cancel abandons any in-flight work for repoID.
	Cancel(repoID string)
	// Close cancels all work and waits for it to stop.
	Close() error
}
