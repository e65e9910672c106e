package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/reposync/internal/client/remote"
	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
)

// fakeDaemon is an in-memory client.Client.
type fakeDaemon struct {
	mu        sync.Mutex
	config    map[string]string
	repos     []*proto.Repo
	clones    []*proto.Task
	syncs     map[string]*proto.SyncTask
	transfers map[string]*proto.TransferTask
	autoSync  bool

	lastClone    *proto.CloneRequest
	lastDownload *proto.DownloadRequest
	destroyed    []string
	setErr       error
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{
		config:    map[string]string{},
		syncs:     map[string]*proto.SyncTask{},
		transfers: map[string]*proto.TransferTask{},
		autoSync:  true,
	}
}

func (f *fakeDaemon) Close() error                   { return nil }
func (f *fakeDaemon) Ping(ctx context.Context) error { return nil }

func (f *fakeDaemon) SetConfig(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.config[key] = value
	return nil
}

func (f *fakeDaemon) GetConfig(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.config[key]
	if !ok {
		return "", &common.Error{Kind: common.KindNotFound, Message: "not found"}
	}
	return v, nil
}

func (f *fakeDaemon) CloneRepo(ctx context.Context, req *proto.CloneRequest) (string, error) {
	f.lastClone = req
	return req.RepoID, nil
}

func (f *fakeDaemon) DownloadRepo(ctx context.Context, req *proto.DownloadRequest) (string, error) {
	f.lastDownload = req
	return req.RepoID, nil
}

func (f *fakeDaemon) GetRepo(ctx context.Context, repoID string) (*proto.Repo, error) {
	for _, r := range f.repos {
		if r.ID == repoID {
			return r, nil
		}
	}
	return nil, &common.Error{Kind: common.KindNotFound, Message: "not found"}
}

func (f *fakeDaemon) DestroyRepo(ctx context.Context, repoID string) error {
	f.destroyed = append(f.destroyed, repoID)
	return nil
}

func (f *fakeDaemon) GetRepoList(ctx context.Context, start, limit int) ([]*proto.Repo, error) {
	return f.repos, nil
}

func (f *fakeDaemon) Shutdown(ctx context.Context) error { return nil }

func (f *fakeDaemon) GetCloneTasks(ctx context.Context) ([]*proto.Task, error) {
	return f.clones, nil
}

func (f *fakeDaemon) GetRepoSyncTask(ctx context.Context, repoID string) (*proto.SyncTask, error) {
	return f.syncs[repoID], nil
}

func (f *fakeDaemon) FindTransferTask(ctx context.Context, repoID string) (*proto.TransferTask, error) {
	return f.transfers[repoID], nil
}

func (f *fakeDaemon) SyncErrorIDToStr(ctx context.Context, code int) (string, error) {
	return taskstate.ErrorString(code), nil
}

func (f *fakeDaemon) IsAutoSyncEnabled(ctx context.Context) (bool, error) { return f.autoSync, nil }

func (f *fakeDaemon) SetAutoSync(ctx context.Context, enabled bool) error {
	f.autoSync = enabled
	return nil
}

func (f *fakeDaemon) SetRepoAutoSync(ctx context.Context, repoID string, enabled bool) error {
	return nil
}

// fakeRemote serves canned responses and counts auth calls.
type fakeRemote struct {
	url        string
	token      string
	needOTP    string
	authCalls  int
	lastAuth   remote.AuthRequest
	repos      []remote.Repo
	info       map[string]*remote.DownloadInfo
	lastCreate remote.CreateRepoRequest
}

func (r *fakeRemote) ServerURL() string { return r.url }

func (r *fakeRemote) AuthToken(ctx context.Context, ar remote.AuthRequest, otp string) (string, error) {
	r.authCalls++
	r.lastAuth = ar
	if ar.Password != "pw" {
		return "", remote.ErrUnauthorized
	}
	if r.needOTP != "" && otp != r.needOTP {
		return "", remote.ErrOTPRequired
	}
	return r.token, nil
}

func (r *fakeRemote) ListRepos(ctx context.Context, token string) ([]remote.Repo, error) {
	return r.repos, nil
}

func (r *fakeRemote) DownloadInfo(ctx context.Context, token, repoID string) (*remote.DownloadInfo, error) {
	info, ok := r.info[repoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, repoID)
	}
	return info, nil
}

func (r *fakeRemote) CreateRepo(ctx context.Context, token string, cr remote.CreateRepoRequest) (string, error) {
	r.lastCreate = cr
	return "new-" + cr.Name, nil
}

func (r *fakeRemote) factory() RemoteFactory {
	return func(string) (Remote, error) { return r, nil }
}

// fakePrompter answers prompts from queues and records them.
type fakePrompter struct {
	texts     []string
	passwords []string
	asked     []string
}

func (p *fakePrompter) Text(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.texts) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", prompt)
	}
	v := p.texts[0]
	p.texts = p.texts[1:]
	return v, nil
}

func (p *fakePrompter) Password(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.passwords) == 0 {
		return "", fmt.Errorf("unexpected password prompt %q", prompt)
	}
	v := p.passwords[0]
	p.passwords = p.passwords[1:]
	return v, nil
}

func strPtr(s string) *string { return &s }
