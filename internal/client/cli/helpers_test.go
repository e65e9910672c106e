package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/config"
	"github.com/dmitrijs2005/reposync/internal/client/remote"
	"github.com/dmitrijs2005/reposync/internal/client/services"
	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
)

var errUnreachable = &common.Error{Kind: common.KindTransport, Message: "daemon unreachable: connection refused"}

type fakeDaemon struct {
	running   bool
	err       error
	config    map[string]string
	repos     []*proto.Repo
	clones    []*proto.Task
	syncs     map[string]*proto.SyncTask
	shutdowns int

	lastClone    *proto.CloneRequest
	lastDownload *proto.DownloadRequest
	destroyed    []string
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{running: true, config: map[string]string{}, syncs: map[string]*proto.SyncTask{}}
}

func (f *fakeDaemon) Close() error { return nil }

func (f *fakeDaemon) Ping(ctx context.Context) error {
	if !f.running {
		return errUnreachable
	}
	return nil
}

func (f *fakeDaemon) SetConfig(ctx context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.config[key] = value
	return nil
}

func (f *fakeDaemon) GetConfig(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.config[key]
	if !ok {
		return "", &common.Error{Kind: common.KindNotFound, Message: "config key not set"}
	}
	return v, nil
}

func (f *fakeDaemon) CloneRepo(ctx context.Context, req *proto.CloneRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastClone = req
	return req.RepoID, nil
}

func (f *fakeDaemon) DownloadRepo(ctx context.Context, req *proto.DownloadRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastDownload = req
	return req.RepoID, nil
}

func (f *fakeDaemon) GetRepo(ctx context.Context, repoID string) (*proto.Repo, error) {
	for _, r := range f.repos {
		if r.ID == repoID {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDaemon) DestroyRepo(ctx context.Context, repoID string) error {
	f.destroyed = append(f.destroyed, repoID)
	return nil
}

func (f *fakeDaemon) GetRepoList(ctx context.Context, start, limit int) ([]*proto.Repo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}

func (f *fakeDaemon) Shutdown(ctx context.Context) error {
	f.shutdowns++
	return nil
}

func (f *fakeDaemon) GetCloneTasks(ctx context.Context) ([]*proto.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.clones, nil
}

func (f *fakeDaemon) GetRepoSyncTask(ctx context.Context, repoID string) (*proto.SyncTask, error) {
	return f.syncs[repoID], nil
}

func (f *fakeDaemon) FindTransferTask(ctx context.Context, repoID string) (*proto.TransferTask, error) {
	return nil, nil
}

func (f *fakeDaemon) SyncErrorIDToStr(ctx context.Context, code int) (string, error) {
	return taskstate.ErrorString(code), nil
}

func (f *fakeDaemon) IsAutoSyncEnabled(ctx context.Context) (bool, error) { return true, nil }
func (f *fakeDaemon) SetAutoSync(ctx context.Context, enabled bool) error { return nil }
func (f *fakeDaemon) SetRepoAutoSync(ctx context.Context, repoID string, enabled bool) error {
	return nil
}

type fakeRemote struct {
	repos   []remote.Repo
	info    map[string]*remote.DownloadInfo
	created []remote.CreateRepoRequest
}

func (r *fakeRemote) ServerURL() string { return "https://cloud.example.com" }

func (r *fakeRemote) AuthToken(ctx context.Context, ar remote.AuthRequest, otp string) (string, error) {
	if ar.Password != "pw" {
		return "", remote.ErrUnauthorized
	}
	return "fresh-token", nil
}

func (r *fakeRemote) ListRepos(ctx context.Context, token string) ([]remote.Repo, error) {
	return r.repos, nil
}

func (r *fakeRemote) DownloadInfo(ctx context.Context, token, repoID string) (*remote.DownloadInfo, error) {
	if info, ok := r.info[repoID]; ok {
		return info, nil
	}
	return nil, remote.ErrNotFound
}

func (r *fakeRemote) CreateRepo(ctx context.Context, token string, cr remote.CreateRepoRequest) (string, error) {
	r.created = append(r.created, cr)
	return "new-repo-id", nil
}

type testEnv struct {
	app     *App
	daemon  *fakeDaemon
	remote  *fakeRemote
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	dialed  []string
	started [][]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ConfDir = filepath.Join(t.TempDir(), "conf")
	cfg.Timeout = time.Second
	cfg.LogLevel = "error"

	e := &testEnv{
		daemon: newFakeDaemon(),
		remote: &fakeRemote{info: map[string]*remote.DownloadInfo{}},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	e.app = NewApp(cfg, strings.NewReader(""), e.out, e.errOut)
	e.app.dial = func(address string, timeout time.Duration) (client.Client, error) {
		e.dialed = append(e.dialed, address)
		return e.daemon, nil
	}
	e.app.remotes = func(string) (services.Remote, error) { return e.remote, nil }
	e.app.hostname = func() (string, error) { return "", errors.New("no hostname") }
	e.app.startDaemon = func(name string, args ...string) error {
		e.started = append(e.started, append([]string{name}, args...))
		e.daemon.running = true
		return nil
	}
	return e
}

func (e *testEnv) run(args ...string) error {
	root := e.app.Command()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) initConfDir(t *testing.T) {
	t.Helper()
	if err := e.run("init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	e.out.Reset()
}

func (e *testEnv) dataDir() string {
	return filepath.Join(e.app.config.ConfDir, "data")
}
