package grpc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func cloneReq(id, wt string) *proto.CloneRequest {
	return &proto.CloneRequest{
		RepoSource: proto.RepoSource{
			RepoID:      id,
			RepoVersion: 1,
			RepoName:    "lib",
			Token:       "t1",
			Email:       "a@b.com",
		},
		Worktree: wt,
	}
}

func errorInfo(t *testing.T, err error) *errdetails.ErrorInfo {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok)
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	t.Fatalf("no ErrorInfo in %v", err)
	return nil
}

func finishClone(t *testing.T, h *harness, id string) {
	t.Helper()
	require.NoError(t, h.repos.Tasks().StartFetch(id))
	require.NoError(t, h.repos.Tasks().FinishClone(id))
}

func TestHandler_Ping(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Ping(context.Background(), &proto.Empty{})
	require.NoError(t, err)
}

func TestHandler_CloneThenGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wt := filepath.Join(t.TempDir(), "lib")

	resp, err := h.client.CloneRepo(ctx, cloneReq("r1", wt))
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.RepoID)

	r, err := h.client.GetRepo(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "lib", r.Name)
	assert.Equal(t, wt, r.Worktree)
	assert.False(t, r.Encrypted)
	assert.True(t, r.AutoSync)
	assert.Equal(t, int32(1), r.Version)
	assert.Zero(t, r.LastSyncTime)
}

func TestHandler_CloneProgressThenDone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.CloneRepo(ctx, cloneReq("r1", filepath.Join(t.TempDir(), "lib")))
	require.NoError(t, err)

	tm := h.repos.Tasks()
	require.NoError(t, tm.StartFetch("r1"))
	require.NoError(t, tm.UpdateBlocks("r1", 50, 200))

	tasks, err := h.client.GetCloneTasks(ctx, &proto.Empty{})
	require.NoError(t, err)
	require.Len(t, tasks.Tasks, 1)
	assert.Equal(t, string(taskstate.CloneFetch), tasks.Tasks[0].State)

	tt, err := h.client.FindTransferTask(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	require.NotNil(t, tt.Task)
	assert.Equal(t, string(taskstate.Download), tt.Task.Type)
	assert.Equal(t, string(taskstate.RuntimeData), tt.Task.RTState)
	assert.Equal(t, "25.0%", taskstate.FormatProgress(tt.Task.BlockDone, tt.Task.BlockTotal))

	list, err := h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: -1, Limit: -1})
	require.NoError(t, err)
	assert.Empty(t, list.Repos)

	require.NoError(t, tm.FinishClone("r1"))

	tasks, err = h.client.GetCloneTasks(ctx, &proto.Empty{})
	require.NoError(t, err)
	assert.Empty(t, tasks.Tasks)

	list, err = h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: -1, Limit: -1})
	require.NoError(t, err)
	require.Len(t, list.Repos, 1)
	assert.Equal(t, "r1", list.Repos[0].ID)
}

func TestHandler_Config(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	set, err := h.client.SetConfig(ctx, &proto.SetConfigRequest{Key: "key1", Value: "v1"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), set.Status)

	got, err := h.client.GetConfig(ctx, &proto.GetConfigRequest{Key: "key1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Value)

	_, err = h.client.GetConfig(ctx, &proto.GetConfigRequest{Key: "unknown_key"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, string(common.KindNotFound), errorInfo(t, err).Reason)

	_, err = h.client.SetConfig(ctx, &proto.SetConfigRequest{Key: "bad key", Value: "v"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_DestroyTwice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.CloneRepo(ctx, cloneReq("r1", filepath.Join(t.TempDir(), "lib")))
	require.NoError(t, err)
	finishClone(t, h, "r1")

	_, err = h.client.DestroyRepo(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, h.engine.canceled)

	_, err = h.client.GetRepo(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	list, err := h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: -1, Limit: -1})
	require.NoError(t, err)
	assert.Empty(t, list.Repos)

	_, err = h.client.DestroyRepo(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHandler_RepoListPaging(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	root := t.TempDir()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("r%d", i)
		_, err := h.client.CloneRepo(ctx, cloneReq(id, filepath.Join(root, id)))
		require.NoError(t, err)
		finishClone(t, h, id)
	}

	all, err := h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: -1, Limit: -1})
	require.NoError(t, err)
	require.Len(t, all.Repos, 5)
	seen := map[string]bool{}
	for _, r := range all.Repos {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}

	page, err := h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Repos, 2)
	assert.Equal(t, all.Repos[1].ID, page.Repos[0].ID)
	assert.Equal(t, all.Repos[2].ID, page.Repos[1].ID)

	empty, err := h.client.GetRepoList(ctx, &proto.GetRepoListRequest{Start: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty.Repos)
}

func TestHandler_CloneErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wt := filepath.Join(t.TempDir(), "lib")

	partial := cloneReq("r1", wt)
	magic := "abc"
	partial.Magic = &magic
	_, err := h.client.CloneRepo(ctx, partial)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, string(common.KindValidation), errorInfo(t, err).Reason)

	_, err = h.client.CloneRepo(ctx, cloneReq("r1", wt))
	require.NoError(t, err)

	_, err = h.client.CloneRepo(ctx, cloneReq("r2", wt))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Equal(t, string(common.KindConflict), errorInfo(t, err).Reason)

	tasks, err := h.client.GetCloneTasks(ctx, &proto.Empty{})
	require.NoError(t, err)
	assert.Len(t, tasks.Tasks, 1)
}

func TestHandler_HandshakeFailure(t *testing.T) {
	h := newHarness(t)
	h.engine.handshakeErr = errors.New("connection refused")

	_, err := h.client.CloneRepo(context.Background(), cloneReq("r1", filepath.Join(t.TempDir(), "lib")))
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	info := errorInfo(t, err)
	assert.Equal(t, string(common.KindTask), info.Reason)
	assert.Equal(t, fmt.Sprint(taskstate.ErrHandshake), info.Metadata["code"])
}

func TestHandler_SyncTaskLookups(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	st, err := h.client.GetRepoSyncTask(ctx, &proto.RepoIDRequest{RepoID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, st.Task)

	tt, err := h.client.FindTransferTask(ctx, &proto.RepoIDRequest{RepoID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, tt.Task)

	_, err = h.client.CloneRepo(ctx, cloneReq("r1", filepath.Join(t.TempDir(), "lib")))
	require.NoError(t, err)
	finishClone(t, h, "r1")
	tm := h.repos.Tasks()
	require.NoError(t, tm.StartSync("r1", taskstate.Upload))

	st, err = h.client.GetRepoSyncTask(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	require.NotNil(t, st.Task)
	assert.Equal(t, string(taskstate.SyncUploading), st.Task.State)

	require.NoError(t, tm.FailSync("r1", taskstate.ErrQuotaFull))
	st, err = h.client.GetRepoSyncTask(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	require.NotNil(t, st.Task)
	assert.Equal(t, string(taskstate.SyncError), st.Task.State)

	msg, err := h.client.SyncErrorIDToStr(ctx, &proto.SyncErrorIDToStrRequest{Code: st.Task.Error})
	require.NoError(t, err)
	assert.Equal(t, "Storage quota exceeded", msg.Message)
}

func TestHandler_AutoSync(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	on, err := h.client.IsAutoSyncEnabled(ctx, &proto.Empty{})
	require.NoError(t, err)
	assert.True(t, on.Enabled)

	_, err = h.client.SetAutoSync(ctx, &proto.SetAutoSyncRequest{Enabled: false})
	require.NoError(t, err)
	on, err = h.client.IsAutoSyncEnabled(ctx, &proto.Empty{})
	require.NoError(t, err)
	assert.False(t, on.Enabled)

	_, err = h.client.CloneRepo(ctx, cloneReq("r1", filepath.Join(t.TempDir(), "lib")))
	require.NoError(t, err)
	_, err = h.client.SetRepoAutoSync(ctx, &proto.SetRepoAutoSyncRequest{RepoID: "r1", Enabled: false})
	require.NoError(t, err)

	r, err := h.client.GetRepo(ctx, &proto.RepoIDRequest{RepoID: "r1"})
	require.NoError(t, err)
	assert.False(t, r.AutoSync)

	_, err = h.client.SetRepoAutoSync(ctx, &proto.SetRepoAutoSyncRequest{RepoID: "nope", Enabled: true})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHandler_Shutdown(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.Shutdown(context.Background(), &proto.Empty{})
	require.NoError(t, err)

	select {
	case <-h.shutdown:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback not invoked")
	}
}
