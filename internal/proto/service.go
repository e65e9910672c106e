package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "reposync.Syncd"

// Full method names, as seen by interceptors.
const (
	PingMethod              = "/" + ServiceName + "/Ping"
	SetConfigMethod         = "/" + ServiceName + "/SetConfig"
	GetConfigMethod         = "/" + ServiceName + "/GetConfig"
	CloneRepoMethod         = "/" + ServiceName + "/CloneRepo"
	DownloadRepoMethod      = "/" + ServiceName + "/DownloadRepo"
	GetRepoMethod           = "/" + ServiceName + "/GetRepo"
	DestroyRepoMethod       = "/" + ServiceName + "/DestroyRepo"
	GetRepoListMethod       = "/" + ServiceName + "/GetRepoList"
	ShutdownMethod          = "/" + ServiceName + "/Shutdown"
	GetCloneTasksMethod     = "/" + ServiceName + "/GetCloneTasks"
	GetRepoSyncTaskMethod   = "/" + ServiceName + "/GetRepoSyncTask"
	FindTransferTaskMethod  = "/" + ServiceName + "/FindTransferTask"
	SyncErrorIDToStrMethod  = "/" + ServiceName + "/SyncErrorIDToStr"
	IsAutoSyncEnabledMethod = "/" + ServiceName + "/IsAutoSyncEnabled"
	SetAutoSyncMethod       = "/" + ServiceName + "/SetAutoSync"
	SetRepoAutoSyncMethod   = "/" + ServiceName + "/SetRepoAutoSync"
)

// SyncdServer is the daemon side of the contract.
type SyncdServer interface {
	Ping(context.Context, *Empty) (*Empty, error)
	SetConfig(context.Context, *SetConfigRequest) (*SetConfigResponse, error)
	GetConfig(context.Context, *GetConfigRequest) (*GetConfigResponse, error)
	CloneRepo(context.Context, *CloneRequest) (*RepoIDResponse, error)
	DownloadRepo(context.Context, *DownloadRequest) (*RepoIDResponse, error)
	GetRepo(context.Context, *RepoIDRequest) (*Repo, error)
	DestroyRepo(context.Context, *RepoIDRequest) (*Empty, error)
	GetRepoList(context.Context, *GetRepoListRequest) (*GetRepoListResponse, error)
	Shutdown(context.Context, *Empty) (*Empty, error)
	GetCloneTasks(context.Context, *Empty) (*GetCloneTasksResponse, error)
	GetRepoSyncTask(context.Context, *RepoIDRequest) (*GetRepoSyncTaskResponse, error)
	FindTransferTask(context.Context, *RepoIDRequest) (*FindTransferTaskResponse, error)
	SyncErrorIDToStr(context.Context, *SyncErrorIDToStrRequest) (*SyncErrorIDToStrResponse, error)
	IsAutoSyncEnabled(context.Context, *Empty) (*AutoSyncResponse, error)
	SetAutoSync(context.Context, *SetAutoSyncRequest) (*Empty, error)
	SetRepoAutoSync(context.Context, *SetRepoAutoSyncRequest) (*Empty, error)
}

// UnimplementedSyncdServer can be embedded to get forward-compatible
// implementations.
type UnimplementedSyncdServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSyncdServer) Ping(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedSyncdServer) SetConfig(context.Context, *SetConfigRequest) (*SetConfigResponse, error) {
	return nil, unimplemented("SetConfig")
}
func (UnimplementedSyncdServer) GetConfig(context.Context, *GetConfigRequest) (*GetConfigResponse, error) {
	return nil, unimplemented("GetConfig")
}
func (UnimplementedSyncdServer) CloneRepo(context.Context, *CloneRequest) (*RepoIDResponse, error) {
	return nil, unimplemented("CloneRepo")
}
func (UnimplementedSyncdServer) DownloadRepo(context.Context, *DownloadRequest) (*RepoIDResponse, error) {
	return nil, unimplemented("DownloadRepo")
}
func (UnimplementedSyncdServer) GetRepo(context.Context, *RepoIDRequest) (*Repo, error) {
	return nil, unimplemented("GetRepo")
}
func (UnimplementedSyncdServer) DestroyRepo(context.Context, *RepoIDRequest) (*Empty, error) {
	return nil, unimplemented("DestroyRepo")
}
func (UnimplementedSyncdServer) GetRepoList(context.Context, *GetRepoListRequest) (*GetRepoListResponse, error) {
	return nil, unimplemented("GetRepoList")
}
func (UnimplementedSyncdServer) Shutdown(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented("Shutdown")
}
func (UnimplementedSyncdServer) GetCloneTasks(context.Context, *Empty) (*GetCloneTasksResponse, error) {
	return nil, unimplemented("GetCloneTasks")
}
func (UnimplementedSyncdServer) GetRepoSyncTask(context.Context, *RepoIDRequest) (*GetRepoSyncTaskResponse, error) {
	return nil, unimplemented("GetRepoSyncTask")
}
func (UnimplementedSyncdServer) FindTransferTask(context.Context, *RepoIDRequest) (*FindTransferTaskResponse, error) {
	return nil, unimplemented("FindTransferTask")
}
func (UnimplementedSyncdServer) SyncErrorIDToStr(context.Context, *SyncErrorIDToStrRequest) (*SyncErrorIDToStrResponse, error) {
	return nil, unimplemented("SyncErrorIDToStr")
}
func (UnimplementedSyncdServer) IsAutoSyncEnabled(context.Context, *Empty) (*AutoSyncResponse, error) {
	return nil, unimplemented("IsAutoSyncEnabled")
}
func (UnimplementedSyncdServer) SetAutoSync(context.Context, *SetAutoSyncRequest) (*Empty, error) {
	return nil, unimplemented("SetAutoSync")
}
func (UnimplementedSyncdServer) SetRepoAutoSync(context.Context, *SetRepoAutoSyncRequest) (*Empty, error) {
	return nil, unimplemented("SetRepoAutoSync")
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(SyncdServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncdServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncdServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the Syncd service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncdServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, SyncdServer.Ping)},
		{MethodName: "SetConfig", Handler: unaryHandler(SetConfigMethod, SyncdServer.SetConfig)},
		{MethodName: "GetConfig", Handler: unaryHandler(GetConfigMethod, SyncdServer.GetConfig)},
		{MethodName: "CloneRepo", Handler: unaryHandler(CloneRepoMethod, SyncdServer.CloneRepo)},
		{MethodName: "DownloadRepo", Handler: unaryHandler(DownloadRepoMethod, SyncdServer.DownloadRepo)},
		{MethodName: "GetRepo", Handler: unaryHandler(GetRepoMethod, SyncdServer.GetRepo)},
		{MethodName: "DestroyRepo", Handler: unaryHandler(DestroyRepoMethod, SyncdServer.DestroyRepo)},
		{MethodName: "GetRepoList", Handler: unaryHandler(GetRepoListMethod, SyncdServer.GetRepoList)},
		{MethodName: "Shutdown", Handler: unaryHandler(ShutdownMethod, SyncdServer.Shutdown)},
		{MethodName: "GetCloneTasks", Handler: unaryHandler(GetCloneTasksMethod, SyncdServer.GetCloneTasks)},
		{MethodName: "GetRepoSyncTask", Handler: unaryHandler(GetRepoSyncTaskMethod, SyncdServer.GetRepoSyncTask)},
		{MethodName: "FindTransferTask", Handler: unaryHandler(FindTransferTaskMethod, SyncdServer.FindTransferTask)},
		{MethodName: "SyncErrorIDToStr", Handler: unaryHandler(SyncErrorIDToStrMethod, SyncdServer.SyncErrorIDToStr)},
		{MethodName: "IsAutoSyncEnabled", Handler: unaryHandler(IsAutoSyncEnabledMethod, SyncdServer.IsAutoSyncEnabled)},
		{MethodName: "SetAutoSync", Handler: unaryHandler(SetAutoSyncMethod, SyncdServer.SetAutoSync)},
		{MethodName: "SetRepoAutoSync", Handler: unaryHandler(SetRepoAutoSyncMethod, SyncdServer.SetRepoAutoSync)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reposync/syncd",
}

// RegisterSyncdServer registers srv on s.
func RegisterSyncdServer(s grpc.ServiceRegistrar, srv SyncdServer) {
	s.RegisterService(&ServiceDesc, srv)
}
