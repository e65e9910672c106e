package client

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/netx"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// errorDomain must match the domain the daemon puts in ErrorInfo.
const errorDomain = "reposync"

type GRPCClient struct {
	address string
	timeout time.Duration
	conn    *grpc.ClientConn
	client  proto.SyncdClient
}

// NewGRPCClient prepares a client for the daemon at address ("unix:<path>"
// or "host:port"). No connection is made until the first call. Calls
// without a deadline are bounded by timeout when it is positive.
func NewGRPCClient(address string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	ep, err := netx.ParseEndpoint(address)
	if err != nil {
		return nil, err
	}

	c := &GRPCClient{address: address, timeout: timeout}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.timeoutInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(ep.Target(), opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = proto.NewSyncdClient(conn)
	return c, nil
}

func (c *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	_, err := c.client.Ping(ctx, &proto.Empty{})
	return mapError(err)
}

func (c *GRPCClient) SetConfig(ctx context.Context, key, value string) error {
	resp, err := c.client.SetConfig(ctx, &proto.SetConfigRequest{Key: key, Value: value})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != 0 {
		return &common.Error{Kind: common.KindInternal, Message: "set config failed", Code: int(resp.Status)}
	}
	return nil
}

func (c *GRPCClient) GetConfig(ctx context.Context, key string) (string, error) {
	resp, err := c.client.GetConfig(ctx, &proto.GetConfigRequest{Key: key})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Value, nil
}

func (c *GRPCClient) CloneRepo(ctx context.Context, req *proto.CloneRequest) (string, error) {
	resp, err := c.client.CloneRepo(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	return resp.RepoID, nil
}

func (c *GRPCClient) DownloadRepo(ctx context.Context, req *proto.DownloadRequest) (string, error) {
	resp, err := c.client.DownloadRepo(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	return resp.RepoID, nil
}

func (c *GRPCClient) GetRepo(ctx context.Context, repoID string) (*proto.Repo, error) {
	r, err := c.client.GetRepo(ctx, &proto.RepoIDRequest{RepoID: repoID})
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

func (c *GRPCClient) DestroyRepo(ctx context.Context, repoID string) error {
	_, err := c.client.DestroyRepo(ctx, &proto.RepoIDRequest{RepoID: repoID})
	return mapError(err)
}

func (c *GRPCClient) GetRepoList(ctx context.Context, start, limit int) ([]*proto.Repo, error) {
	resp, err := c.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: int32(start), Limit: int32(limit)})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Repos, nil
}

// Shutdown asks the daemon to exit. An unreachable daemon counts as done.
func (c *GRPCClient) Shutdown(ctx context.Context) error {
	_, err := c.client.Shutdown(ctx, &proto.Empty{})
	err = mapError(err)
	if errors.Is(err, ErrUnavailable) {
		return nil
	}
	return err
}

func (c *GRPCClient) GetCloneTasks(ctx context.Context) ([]*proto.Task, error) {
	resp, err := c.client.GetCloneTasks(ctx, &proto.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Tasks, nil
}

func (c *GRPCClient) GetRepoSyncTask(ctx context.Context, repoID string) (*proto.SyncTask, error) {
	resp, err := c.client.GetRepoSyncTask(ctx, &proto.RepoIDRequest{RepoID: repoID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Task, nil
}

func (c *GRPCClient) FindTransferTask(ctx context.Context, repoID string) (*proto.TransferTask, error) {
	resp, err := c.client.FindTransferTask(ctx, &proto.RepoIDRequest{RepoID: repoID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Task, nil
}

func (c *GRPCClient) SyncErrorIDToStr(ctx context.Context, code int) (string, error) {
	resp, err := c.client.SyncErrorIDToStr(ctx, &proto.SyncErrorIDToStrRequest{Code: int32(code)})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Message, nil
}

func (c *GRPCClient) IsAutoSyncEnabled(ctx context.Context) (bool, error) {
	resp, err := c.client.IsAutoSyncEnabled(ctx, &proto.Empty{})
	if err != nil {
		return false, mapError(err)
	}
	return resp.Enabled, nil
}

func (c *GRPCClient) SetAutoSync(ctx context.Context, enabled bool) error {
	_, err := c.client.SetAutoSync(ctx, &proto.SetAutoSyncRequest{Enabled: enabled})
	return mapError(err)
}

func (c *GRPCClient) SetRepoAutoSync(ctx context.Context, repoID string, enabled bool) error {
	_, err := c.client.SetRepoAutoSync(ctx, &proto.SetRepoAutoSyncRequest{RepoID: repoID, Enabled: enabled})
	return mapError(err)
}

var codeKinds = map[codes.Code]common.Kind{
	codes.InvalidArgument:    common.KindValidation,
	codes.AlreadyExists:      common.KindConflict,
	codes.NotFound:           common.KindNotFound,
	codes.FailedPrecondition: common.KindTask,
	codes.Unavailable:        common.KindTransport,
	codes.DeadlineExceeded:   common.KindTransport,
	codes.Canceled:           common.KindTransport,
}

// mapError rebuilds a *common.Error from a gRPC status. The ErrorInfo
// detail, when present, is authoritative for the kind and code.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &common.Error{Kind: common.KindTransport, Message: "daemon unreachable: " + err.Error()}
	}

	kind, found := codeKinds[st.Code()]
	if !found {
		kind = common.KindInternal
	}
	if kind == common.KindTransport {
		return &common.Error{Kind: kind, Message: "daemon unreachable: " + st.Message()}
	}

	e := &common.Error{Kind: kind, Message: st.Message()}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		if info.GetReason() != "" {
			e.Kind = common.Kind(info.GetReason())
		}
		if code, err := strconv.Atoi(info.GetMetadata()["code"]); err == nil {
			e.Code = code
		}
	}
	return e
}
