package proto

import (
	"context"

	"google.golang.org/grpc"
)

// SyncdClient is the caller side of the contract.
type SyncdClient interface {
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	SetConfig(ctx context.Context, in *SetConfigRequest, opts ...grpc.CallOption) (*SetConfigResponse, error)
	GetConfig(ctx context.Context, in *GetConfigRequest, opts ...grpc.CallOption) (*GetConfigResponse, error)
	CloneRepo(ctx context.Context, in *CloneRequest, opts ...grpc.CallOption) (*RepoIDResponse, error)
	DownloadRepo(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (*RepoIDResponse, error)
	GetRepo(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*Repo, error)
	DestroyRepo(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*Empty, error)
	GetRepoList(ctx context.Context, in *GetRepoListRequest, opts ...grpc.CallOption) (*GetRepoListResponse, error)
	Shutdown(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	GetCloneTasks(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetCloneTasksResponse, error)
	GetRepoSyncTask(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*GetRepoSyncTaskResponse, error)
	FindTransferTask(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*FindTransferTaskResponse, error)
	SyncErrorIDToStr(ctx context.Context, in *SyncErrorIDToStrRequest, opts ...grpc.CallOption) (*SyncErrorIDToStrResponse, error)
	IsAutoSyncEnabled(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AutoSyncResponse, error)
	SetAutoSync(ctx context.Context, in *SetAutoSyncRequest, opts ...grpc.CallOption) (*Empty, error)
	SetRepoAutoSync(ctx context.Context, in *SetRepoAutoSyncRequest, opts ...grpc.CallOption) (*Empty, error)
}

type syncdClient struct {
	cc grpc.ClientConnInterface
}

// NewSyncdClient returns a client stub that always encodes with the
// CBOR codec.
func NewSyncdClient(cc grpc.ClientConnInterface) SyncdClient {
	return &syncdClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncdClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, PingMethod, in, opts)
}

func (c *syncdClient) SetConfig(ctx context.Context, in *SetConfigRequest, opts ...grpc.CallOption) (*SetConfigResponse, error) {
	return invoke[SetConfigResponse](ctx, c.cc, SetConfigMethod, in, opts)
}

func (c *syncdClient) GetConfig(ctx context.Context, in *GetConfigRequest, opts ...grpc.CallOption) (*GetConfigResponse, error) {
	return invoke[GetConfigResponse](ctx, c.cc, GetConfigMethod, in, opts)
}

func (c *syncdClient) CloneRepo(ctx context.Context, in *CloneRequest, opts ...grpc.CallOption) (*RepoIDResponse, error) {
	return invoke[RepoIDResponse](ctx, c.cc, CloneRepoMethod, in, opts)
}

func (c *syncdClient) DownloadRepo(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (*RepoIDResponse, error) {
	return invoke[RepoIDResponse](ctx, c.cc, DownloadRepoMethod, in, opts)
}

func (c *syncdClient) GetRepo(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*Repo, error) {
	return invoke[Repo](ctx, c.cc, GetRepoMethod, in, opts)
}

func (c *syncdClient) DestroyRepo(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, DestroyRepoMethod, in, opts)
}

func (c *syncdClient) GetRepoList(ctx context.Context, in *GetRepoListRequest, opts ...grpc.CallOption) (*GetRepoListResponse, error) {
	return invoke[GetRepoListResponse](ctx, c.cc, GetRepoListMethod, in, opts)
}

func (c *syncdClient) Shutdown(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, ShutdownMethod, in, opts)
}

func (c *syncdClient) GetCloneTasks(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetCloneTasksResponse, error) {
	return invoke[GetCloneTasksResponse](ctx, c.cc, GetCloneTasksMethod, in, opts)
}

func (c *syncdClient) GetRepoSyncTask(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*GetRepoSyncTaskResponse, error) {
	return invoke[GetRepoSyncTaskResponse](ctx, c.cc, GetRepoSyncTaskMethod, in, opts)
}

func (c *syncdClient) FindTransferTask(ctx context.Context, in *RepoIDRequest, opts ...grpc.CallOption) (*FindTransferTaskResponse, error) {
	return invoke[FindTransferTaskResponse](ctx, c.cc, FindTransferTaskMethod, in, opts)
}

func (c *syncdClient) SyncErrorIDToStr(ctx context.Context, in *SyncErrorIDToStrRequest, opts ...grpc.CallOption) (*SyncErrorIDToStrResponse, error) {
	return invoke[SyncErrorIDToStrResponse](ctx, c.cc, SyncErrorIDToStrMethod, in, opts)
}

func (c *syncdClient) IsAutoSyncEnabled(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AutoSyncResponse, error) {
	return invoke[AutoSyncResponse](ctx, c.cc, IsAutoSyncEnabledMethod, in, opts)
}

func (c *syncdClient) SetAutoSync(ctx context.Context, in *SetAutoSyncRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, SetAutoSyncMethod, in, opts)
}

func (c *syncdClient) SetRepoAutoSync(ctx context.Context, in *SetRepoAutoSyncRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, SetRepoAutoSyncMethod, in, opts)
}
