// Package taskstate is the vocabulary of the transfer-task state machine.
//
// The daemon is the only writer of task state; clients observe it by
// polling. Both sides share the state names, the error-code table and the
// progress arithmetic defined here.
package taskstate

// CloneState is the state of a clone/download task.
type CloneState string

const (
	CloneInit  CloneState = "init"
	CloneFetch CloneState = "fetch"
	CloneDone  CloneState = "done"
	CloneError CloneState = "error"
)

// Terminal reports whether no further transition is allowed.
func (s CloneState) Terminal() bool {
	return s == CloneDone || s == CloneError
}

// SyncState is the state of an established repo's sync task.
type SyncState string

const (
	SyncSynchronized SyncState = "synchronized"
	SyncUploading    SyncState = "uploading"
	SyncDownloading  SyncState = "downloading"
	SyncError        SyncState = "error"
)

// Active reports whether data is moving.
func (s SyncState) Active() bool {
	return s == SyncUploading || s == SyncDownloading
}

// Direction of a transfer task.
type Direction string

const (
	Download Direction = "download"
	Upload   Direction = "upload"
)

// RuntimeState is the sub-phase of a downloading transfer.
type RuntimeState string

const (
	// RuntimeFS: fetching the file-list/metadata objects.
	RuntimeFS RuntimeState = "fs"
	// RuntimeData: fetching file content blocks.
	RuntimeData RuntimeState = "data"
)

// Reader-side labels that have no daemon task behind them.
const (
	LabelWaitingForSync   = "waiting for sync"
	LabelAutoSyncDisabled = "auto sync disabled"
)
