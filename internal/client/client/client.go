package client

import (
	"context"

	"github.com/dmitrijs2005/reposync/internal/proto"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)
	CloneRepo(ctx context.Context, req *proto.CloneRequest) (string, error)
	DownloadRepo(ctx context.Context, req *proto.DownloadRequest) (string, error)
	GetRepo(ctx context.Context, repoID string) (*proto.Repo, error)
	DestroyRepo(ctx context.Context, repoID string) error
	GetRepoList(ctx context.Context, start, limit int) ([]*proto.Repo, error)
	Shutdown(ctx context.Context) error
	GetCloneTasks(ctx context.Context) ([]*proto.Task, error)
	// GetRepoSyncTask returns nil when the repo has no sync task.
	GetRepoSyncTask(ctx context.Context, repoID string) (*proto.SyncTask, error)
	// FindTransferTask returns nil when nothing is moving for the repo.
	FindTransferTask(ctx context.Context, repoID string) (*proto.TransferTask, error)
	SyncErrorIDToStr(ctx context.Context, code int) (string, error)
	IsAutoSyncEnabled(ctx context.Context) (bool, error)
	SetAutoSync(ctx context.Context, enabled bool) error
	SetRepoAutoSync(ctx context.Context, repoID string, enabled bool) error
}
