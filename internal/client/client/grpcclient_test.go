package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// stubServer answers a fixed set of calls and fails the rest.
type stubServer struct {
	proto.UnimplementedSyncdServer
	lastClone    *proto.CloneRequest
	lastList     *proto.GetRepoListRequest
	shutdownErr  error
	destroyErr   error
	getConfigErr error
}

func (s *stubServer) Ping(context.Context, *proto.Empty) (*proto.Empty, error) {
	return &proto.Empty{}, nil
}

func (s *stubServer) GetConfig(_ context.Context, req *proto.GetConfigRequest) (*proto.GetConfigResponse, error) {
	if s.getConfigErr != nil {
		return nil, s.getConfigErr
	}
	return &proto.GetConfigResponse{Value: "v-" + req.Key}, nil
}

func (s *stubServer) CloneRepo(_ context.Context, req *proto.CloneRequest) (*proto.RepoIDResponse, error) {
	s.lastClone = req
	return &proto.RepoIDResponse{RepoID: req.RepoID}, nil
}

func (s *stubServer) DestroyRepo(context.Context, *proto.RepoIDRequest) (*proto.Empty, error) {
	return &proto.Empty{}, s.destroyErr
}

func (s *stubServer) GetRepoList(_ context.Context, req *proto.GetRepoListRequest) (*proto.GetRepoListResponse, error) {
	s.lastList = req
	return &proto.GetRepoListResponse{Repos: []*proto.Repo{{ID: "r1", Name: "lib", Worktree: "/tmp/lib"}}}, nil
}

func (s *stubServer) Shutdown(context.Context, *proto.Empty) (*proto.Empty, error) {
	return &proto.Empty{}, s.shutdownErr
}

func (s *stubServer) FindTransferTask(_ context.Context, req *proto.RepoIDRequest) (*proto.FindTransferTaskResponse, error) {
	if req.RepoID != "r1" {
		return &proto.FindTransferTaskResponse{}, nil
	}
	return &proto.FindTransferTaskResponse{Task: &proto.TransferTask{RepoID: "r1", BlockDone: 50, BlockTotal: 200}}, nil
}

func withInfo(code codes.Code, msg, reason, taskCode string) error {
	st, err := status.New(code, msg).WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   errorDomain,
		Metadata: map[string]string{"code": taskCode},
	})
	if err != nil {
		panic(err)
	}
	return st.Err()
}

func newTestClient(t *testing.T, srv proto.SyncdServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	proto.RegisterSyncdServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	c, err := NewGRPCClient("127.0.0.1:1", 2*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		s.Stop()
	})
	return c
}

func TestNewGRPCClient_BadAddress(t *testing.T) {
	_, err := NewGRPCClient("", time.Second)
	require.Error(t, err)
}

func TestGRPCClient_Calls(t *testing.T) {
	srv := &stubServer{}
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	v, err := c.GetConfig(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "v-key1", v)

	pw := ""
	id, err := c.CloneRepo(ctx, &proto.CloneRequest{
		RepoSource: proto.RepoSource{RepoID: "r1", RepoName: "lib", Token: "t1", Passwd: &pw},
		Worktree:   "/tmp/lib",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
	require.NotNil(t, srv.lastClone.Passwd)
	assert.Equal(t, "", *srv.lastClone.Passwd)
	assert.Nil(t, srv.lastClone.Magic)

	repos, err := c.GetRepoList(ctx, -1, -1)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "/tmp/lib", repos[0].Worktree)
	assert.Equal(t, int32(-1), srv.lastList.Start)
	assert.Equal(t, int32(-1), srv.lastList.Limit)

	tt, err := c.FindTransferTask(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, tt)
	assert.Equal(t, int64(200), tt.BlockTotal)

	tt, err = c.FindTransferTask(ctx, "r2")
	require.NoError(t, err)
	assert.Nil(t, tt)
}

func TestGRPCClient_ErrorKinds(t *testing.T) {
	srv := &stubServer{}
	c := newTestClient(t, srv)
	ctx := context.Background()

	srv.getConfigErr = withInfo(codes.NotFound, "not found", string(common.KindNotFound), "0")
	_, err := c.GetConfig(ctx, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	assert.Equal(t, common.KindNotFound, common.KindOf(err))

	srv.destroyErr = withInfo(codes.FailedPrecondition, "handshake failed", string(common.KindTask), "13")
	err = c.DestroyRepo(ctx, "r1")
	var e *common.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, common.KindTask, e.Kind)
	assert.Equal(t, 13, e.Code)

	srv.destroyErr = status.Error(codes.AlreadyExists, "worktree in use")
	err = c.DestroyRepo(ctx, "r1")
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	// Unimplemented on the stub.
	_, err = c.GetRepo(ctx, "r1")
	assert.Equal(t, common.KindInternal, common.KindOf(err))
}

func TestGRPCClient_ShutdownToleratesDroppedConnection(t *testing.T) {
	srv := &stubServer{shutdownErr: status.Error(codes.Unavailable, "transport is closing")}
	c := newTestClient(t, srv)
	require.NoError(t, c.Shutdown(context.Background()))

	srv.shutdownErr = status.Error(codes.Internal, "boom")
	require.Error(t, c.Shutdown(context.Background()))
}

func TestGRPCClient_Unreachable(t *testing.T) {
	c, err := NewGRPCClient("unix:"+t.TempDir()+"/missing.sock", 500*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	err = c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestMapError_NonStatus(t *testing.T) {
	err := mapError(errors.New("dial failed"))
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.NoError(t, mapError(nil))
}
