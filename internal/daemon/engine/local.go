package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/reposync/internal/buildinfo"
	"github.com/dmitrijs2005/reposync/internal/filex"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
	"github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"
)

// Local is the bundled engine: it handshakes with the server and
// materializes the worktree directory. Block transfer belongs to the
// external sync engine, so clones finish with zero totals.
type Local struct {
	client     *http.Client
	logger     logging.Logger
	minVersion *version.Version

	mu      sync.Mutex
	workers map[string]*worker
	group   errgroup.Group
	base    context.Context
	stop    context.CancelFunc
}

type worker struct {
	cancel context.CancelFunc
}

func NewLocal(logger logging.Logger, timeout time.Duration) *Local {
	base, stop := context.WithCancel(context.Background())
	return &Local{
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With("module", "engine"),
		minVersion: version.Must(version.NewVersion(buildinfo.ProtocolVersion)),
		workers:    make(map[string]*worker),
		base:       base,
		stop:       stop,
	}
}

func (e *Local) Handshake(ctx context.Context, req Request) error {
	if req.ServerURL == "" {
		return nil
	}
	return handshake(ctx, e.client, req.ServerURL, req.Token, e.minVersion)
}

func (e *Local) Start(ctx context.Context, req Request, r Reporter) {
	wctx, cancel := context.WithCancel(e.base)
	w := &worker{cancel: cancel}

	e.mu.Lock()
	if prev, ok := e.workers[req.RepoID]; ok {
		prev.cancel()
	}
	e.workers[req.RepoID] = w
	e.mu.Unlock()

	e.logger.Debug(ctx, "clone started", "repo_id", req.RepoID)
	e.group.Go(func() error {
		defer e.finish(req.RepoID, w)
		e.run(wctx, req, r)
		return nil
	})
}

func (e *Local) finish(repoID string, w *worker) {
	w.cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	// A newer Start may have replaced the entry.
	if e.workers[repoID] == w {
		delete(e.workers, repoID)
	}
}

func (e *Local) run(ctx context.Context, req Request, r Reporter) {
	if err := r.StartFetch(req.RepoID); err != nil {
		e.logger.Warn(ctx, "clone task vanished before fetch", "repo_id", req.RepoID, "error", err)
		return
	}
	if e.canceled(ctx, req.RepoID, r) {
		return
	}

	if err := filex.EnsureDir(req.Worktree); err != nil {
		e.logger.Error(ctx, "cannot create worktree", "repo_id", req.RepoID, "worktree", req.Worktree, "error", err)
		e.report(ctx, req.RepoID, r.FailClone(req.RepoID, taskstate.ErrWorktreeInvalid))
		return
	}
	e.report(ctx, req.RepoID, r.UpdateFS(req.RepoID, 0, 0))
	if e.canceled(ctx, req.RepoID, r) {
		return
	}
	if err := r.FinishClone(req.RepoID); err != nil {
		e.logger.Error(ctx, "cannot record finished clone", "repo_id", req.RepoID, "error", err)
		e.report(ctx, req.RepoID, r.FailClone(req.RepoID, taskstate.ErrUnknown))
		return
	}
	e.logger.Info(ctx, "clone finished", "repo_id", req.RepoID, "worktree", req.Worktree)
}

// canceled fails the clone with ErrCanceled once ctx is done so the task
// does not linger in fetch.
func (e *Local) canceled(ctx context.Context, repoID string, r Reporter) bool {
	if ctx.Err() == nil {
		return false
	}
	e.logger.Info(ctx, "clone canceled", "repo_id", repoID)
	e.report(ctx, repoID, r.FailClone(repoID, taskstate.ErrCanceled))
	return true
}

func (e *Local) report(ctx context.Context, repoID string, err error) {
	if err != nil {
		e.logger.Debug(ctx, "task update ignored", "repo_id", repoID, "error", err)
	}
}

func (e *Local) Cancel(repoID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w, ok := e.workers[repoID]; ok {
		w.cancel()
		delete(e.workers, repoID)
	}
}

func (e *Local) Close() error {
	e.stop()
	return e.group.Wait()
}
