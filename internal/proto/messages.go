package proto

// Repo is the wire form of a synchronized library.
type Repo struct {
	ID              string `cbor:"id"`
	Name            string `cbor:"name"`
	Desc            string `cbor:"desc"`
	Encrypted       bool   `cbor:"encrypted"`
	Worktree        string `cbor:"worktree"`
	AutoSync        bool   `cbor:"auto_sync"`
	LastSyncTime    int64  `cbor:"last_sync_time"`
	WorktreeInvalid bool   `cbor:"worktree_invalid"`
	RelayID         string `cbor:"relay_id"`
	Version         int32  `cbor:"version"`
}

// RepoSource holds the fields shared by CloneRequest and DownloadRequest.
type RepoSource struct {
	RepoID      string  `cbor:"repo_id"`
	RepoVersion int32   `cbor:"repo_version"`
	RepoName    string  `cbor:"repo_name"`
	Token       string  `cbor:"token"`
	Passwd      *string `cbor:"passwd,omitempty"`
	Magic       *string `cbor:"magic,omitempty"`
	Email       string  `cbor:"email"`
	RandomKey   *string `cbor:"random_key,omitempty"`
	EncVersion  *int32  `cbor:"enc_version,omitempty"`
	// MoreInfo is the JSON encoding of a MoreInfo value.
	MoreInfo string `cbor:"more_info,omitempty"`
}

// CloneRequest binds a remote repo to an existing local folder.
type CloneRequest struct {
	RepoSource
	Worktree string `cbor:"worktree"`
}

// DownloadRequest creates a new folder for a remote repo under WtParent.
type DownloadRequest struct {
	RepoSource
	WtParent string `cbor:"wt_parent"`
}

// Task is a clone/download task.
type Task struct {
	RepoID   string `cbor:"repo_id"`
	RepoName string `cbor:"repo_name"`
	Worktree string `cbor:"worktree"`
	State    string `cbor:"state"`
	Error    int32  `cbor:"error"`
}

// SyncTask is the sync activity of an established repo.
type SyncTask struct {
	RepoID string `cbor:"repo_id"`
	State  string `cbor:"state"`
	Error  int32  `cbor:"error"`
}

// TransferTask reports byte/object progress of an upload or download.
type TransferTask struct {
	ID             string `cbor:"id"`
	RepoID         string `cbor:"repo_id"`
	Type           string `cbor:"type"`
	RTState        string `cbor:"rt_state"`
	BlockTotal     int64  `cbor:"block_total"`
	BlockDone      int64  `cbor:"block_done"`
	FSObjectsTotal int64  `cbor:"fs_objects_total"`
	FSObjectsDone  int64  `cbor:"fs_objects_done"`
	// Rate is bytes per second, informational only.
	Rate  int64 `cbor:"rate"`
	Error int32 `cbor:"error"`
}

type Empty struct{}

type SetConfigRequest struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

type SetConfigResponse struct {
	Status int32 `cbor:"status"`
}

type GetConfigRequest struct {
	Key string `cbor:"key"`
}

type GetConfigResponse struct {
	Value string `cbor:"value"`
}

type RepoIDResponse struct {
	RepoID string `cbor:"repo_id"`
}

type RepoIDRequest struct {
	RepoID string `cbor:"repo_id"`
}

type GetRepoListRequest struct {
	Start int32 `cbor:"start"`
	Limit int32 `cbor:"limit"`
}

type GetRepoListResponse struct {
	Repos []*Repo `cbor:"repos"`
}

type GetCloneTasksResponse struct {
	Tasks []*Task `cbor:"tasks"`
}

type GetRepoSyncTaskResponse struct {
	Task *SyncTask `cbor:"task,omitempty"`
}

type FindTransferTaskResponse struct {
	Task *TransferTask `cbor:"task,omitempty"`
}

type SyncErrorIDToStrRequest struct {
	Code int32 `cbor:"code"`
}

type SyncErrorIDToStrResponse struct {
	Message string `cbor:"message"`
}

type AutoSyncResponse struct {
	Enabled bool `cbor:"enabled"`
}

type SetAutoSyncRequest struct {
	Enabled bool `cbor:"enabled"`
}

type SetRepoAutoSyncRequest struct {
	RepoID  string `cbor:"repo_id"`
	Enabled bool   `cbor:"enabled"`
}
