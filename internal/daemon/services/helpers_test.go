package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/reposync/internal/daemon/engine"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repomanager"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repos"
	"github.com/dmitrijs2005/reposync/internal/dbx"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// fakeEngine records calls and leaves tasks in init so tests drive them.
type fakeEngine struct {
	mu           sync.Mutex
	handshakeErr error
	started      []engine.Request
	canceled     []string
}

func (f *fakeEngine) Handshake(ctx context.Context, req engine.Request) error {
	return f.handshakeErr
}

func (f *fakeEngine) Start(ctx context.Context, req engine.Request, r engine.Reporter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req)
}

func (f *fakeEngine) Cancel(repoID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, repoID)
}

func (f *fakeEngine) Close() error { return nil }

func openStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db, m, err := repomanager.Open(context.Background(), false, filepath.Join(t.TempDir(), "reposync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, m
}

func newRepoService(t *testing.T) (*RepoService, *fakeEngine, *clockwork.FakeClock) {
	t.Helper()
	db, m := openStore(t)
	eng := &fakeEngine{}
	clock := clockwork.NewFakeClock()
	s, err := NewRepoService(db, m, eng, clock, logging.Nop(), RepoOptions{})
	require.NoError(t, err)
	return s, eng, clock
}

// hookedManager lets tests interpose on repo store writes.
type hookedManager struct {
	repomanager.RepositoryManager
	beforeDelete  func(id string)
	markClonedErr error
	// failInvalidAt fails the n-th SetWorktreeInvalid call (1-based).
	failInvalidAt int
	invalidCalls  int
}

func (h *hookedManager) Repos(db dbx.DBTX) repos.Repository {
	return &hookedRepos{Repository: h.RepositoryManager.Repos(db), h: h}
}

type hookedRepos struct {
	repos.Repository
	h *hookedManager
}

func (r *hookedRepos) Delete(ctx context.Context, id string) error {
	if r.h.beforeDelete != nil {
		r.h.beforeDelete(id)
	}
	return r.Repository.Delete(ctx, id)
}

func (r *hookedRepos) MarkCloned(ctx context.Context, id string) error {
	if r.h.markClonedErr != nil {
		return r.h.markClonedErr
	}
	return r.Repository.MarkCloned(ctx, id)
}

func (r *hookedRepos) SetWorktreeInvalid(ctx context.Context, id string, invalid bool) error {
	r.h.invalidCalls++
	if r.h.invalidCalls == r.h.failInvalidAt {
		return errors.New("disk I/O error")
	}
	return r.Repository.SetWorktreeInvalid(ctx, id, invalid)
}

func newHookedRepoService(t *testing.T) (*RepoService, *hookedManager) {
	t.Helper()
	db, m := openStore(t)
	h := &hookedManager{RepositoryManager: m}
	s, err := NewRepoService(db, h, &fakeEngine{}, clockwork.NewFakeClock(), logging.Nop(), RepoOptions{})
	require.NoError(t, err)
	return s, h
}

func strPtr(s string) *string { return &s }

func int32Ptr(v int32) *int32 { return &v }
