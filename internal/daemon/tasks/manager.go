// Package tasks tracks in-flight clone and sync activity. Tasks live in
// memory only; the Manager is the single writer and readers get copies.
package tasks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/reposync/internal/taskstate"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidTransition = errors.New("invalid task transition")
	ErrNoTask            = errors.New("no such task")
)

type CloneTask struct {
	RepoID    string
	RepoName  string
	Worktree  string
	State     taskstate.CloneState
	Error     int
	StartedAt time.Time
}

type SyncTask struct {
	RepoID    string
	State     taskstate.SyncState
	Error     int
	UpdatedAt time.Time
}

type TransferTask struct {
	ID             string
	RepoID         string
	Direction      taskstate.Direction
	RTState        taskstate.RuntimeState
	BlockTotal     int64
	BlockDone      int64
	FSObjectsTotal int64
	FSObjectsDone  int64
	Rate           int64
	Error          int
	StartedAt      time.Time
}

// Hooks let the owner persist task outcomes. They must not call back
// into the Manager. A CloneDone error keeps the clone in fetch.
type Hooks struct {
	CloneDone func(repoID string) error
	Synced    func(repoID string, at time.Time)
}

type Manager struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	hooks     Hooks
	clones    map[string]*CloneTask
	syncs     map[string]*SyncTask
	transfers map[string]*TransferTask
}

func NewManager(clock clockwork.Clock, hooks Hooks) *Manager {
	return &Manager{
		clock:     clock,
		hooks:     hooks,
		clones:    make(map[string]*CloneTask),
		syncs:     make(map[string]*SyncTask),
		transfers: make(map[string]*TransferTask),
	}
}

func transitionErr(repoID string, from, to any) error {
	return fmt.Errorf("%w: repo %s: %v -> %v", ErrInvalidTransition, repoID, from, to)
}

// NewClone registers a clone task in init. A previous task for the repo
// is replaced only when it is terminal.
func (m *Manager) NewClone(repoID, name, worktree string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.clones[repoID]; ok && !t.State.Terminal() {
		return transitionErr(repoID, t.State, taskstate.CloneInit)
	}
	m.clones[repoID] = &CloneTask{
		RepoID:    repoID,
		RepoName:  name,
		Worktree:  worktree,
		State:     taskstate.CloneInit,
		StartedAt: m.clock.Now(),
	}
	return nil
}

// StartFetch moves a clone from init to fetch and opens its download
// transfer in the fs phase.
func (m *Manager) StartFetch(repoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.clones[repoID]
	if !ok {
		return ErrNoTask
	}
	if t.State != taskstate.CloneInit {
		return transitionErr(repoID, t.State, taskstate.CloneFetch)
	}
	t.State = taskstate.CloneFetch
	m.transfers[repoID] = m.newTransfer(repoID, taskstate.Download)
	return nil
}

func (m *Manager) newTransfer(repoID string, dir taskstate.Direction) *TransferTask {
	tt := &TransferTask{
		ID:        uuid.NewString(),
		RepoID:    repoID,
		Direction: dir,
		StartedAt: m.clock.Now(),
	}
	if dir == taskstate.Download {
		tt.RTState = taskstate.RuntimeFS
	}
	return tt
}

// UpdateFS records metadata fetch progress of a download.
func (m *Manager) UpdateFS(repoID string, done, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, err := m.activeTransfer(repoID)
	if err != nil {
		return err
	}
	if tt.Direction != taskstate.Download {
		return transitionErr(repoID, tt.Direction, taskstate.RuntimeFS)
	}
	tt.RTState = taskstate.RuntimeFS
	tt.FSObjectsDone, tt.FSObjectsTotal = done, total
	return nil
}

// UpdateBlocks records block progress. Downloads switch to the data phase.
func (m *Manager) UpdateBlocks(repoID string, done, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, err := m.activeTransfer(repoID)
	if err != nil {
		return err
	}
	if tt.Direction == taskstate.Download {
		tt.RTState = taskstate.RuntimeData
	}
	tt.BlockDone, tt.BlockTotal = done, total
	return nil
}

// UpdateRate sets the informational transfer rate in bytes per second.
func (m *Manager) UpdateRate(repoID string, rate int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, err := m.activeTransfer(repoID)
	if err != nil {
		return err
	}
	tt.Rate = rate
	return nil
}

func (m *Manager) activeTransfer(repoID string) (*TransferTask, error) {
	tt, ok := m.transfers[repoID]
	if !ok {
		return nil, ErrNoTask
	}
	return tt, nil
}

// FinishClone marks a fetching clone done and closes its transfer. The
// CloneDone hook runs first so the repo is listed before the task
// disappears from CloneTasks; if it fails the clone stays in fetch and
// the hook error is returned.
func (m *Manager) FinishClone(repoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.clones[repoID]
	if !ok {
		return ErrNoTask
	}
	if t.State != taskstate.CloneFetch {
		return transitionErr(repoID, t.State, taskstate.CloneDone)
	}
	if m.hooks.CloneDone != nil {
		if err := m.hooks.CloneDone(repoID); err != nil {
			return fmt.Errorf("clone %s done: %w", repoID, err)
		}
	}
	t.State = taskstate.CloneDone
	delete(m.transfers, repoID)
	return nil
}

// FailClone moves a running clone to error with code.
func (m *Manager) FailClone(repoID string, code int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.clones[repoID]
	if !ok {
		return ErrNoTask
	}
	if t.State.Terminal() {
		return transitionErr(repoID, t.State, taskstate.CloneError)
	}
	t.State = taskstate.CloneError
	t.Error = code
	delete(m.transfers, repoID)
	return nil
}

// StartSync begins an upload or download on an established repo. It is
// rejected while a clone for the repo is unfinished or a sync is active.
func (m *Manager) StartSync(repoID string, dir taskstate.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	to := taskstate.SyncDownloading
	if dir == taskstate.Upload {
		to = taskstate.SyncUploading
	}
	if c, ok := m.clones[repoID]; ok && c.State != taskstate.CloneDone {
		return transitionErr(repoID, c.State, to)
	}
	s, ok := m.syncs[repoID]
	if ok && s.State.Active() {
		return transitionErr(repoID, s.State, to)
	}
	if !ok {
		s = &SyncTask{RepoID: repoID}
		m.syncs[repoID] = s
	}
	s.State = to
	s.Error = 0
	s.UpdatedAt = m.clock.Now()
	m.transfers[repoID] = m.newTransfer(repoID, dir)
	return nil
}

// FinishSync returns an active sync to synchronized and records the
// sync time through the Synced hook.
func (m *Manager) FinishSync(repoID string) error {
	m.mu.Lock()
	s, err := m.activeSync(repoID, taskstate.SyncSynchronized)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	now := m.clock.Now()
	s.State = taskstate.SyncSynchronized
	s.UpdatedAt = now
	delete(m.transfers, repoID)
	m.mu.Unlock()

	if m.hooks.Synced != nil {
		m.hooks.Synced(repoID, now)
	}
	return nil
}

// FailSync moves an active sync to error with code.
func (m *Manager) FailSync(repoID string, code int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.activeSync(repoID, taskstate.SyncError)
	if err != nil {
		return err
	}
	s.State = taskstate.SyncError
	s.Error = code
	s.UpdatedAt = m.clock.Now()
	delete(m.transfers, repoID)
	return nil
}

func (m *Manager) activeSync(repoID string, to taskstate.SyncState) (*SyncTask, error) {
	s, ok := m.syncs[repoID]
	if !ok {
		return nil, ErrNoTask
	}
	if !s.State.Active() {
		return nil, transitionErr(repoID, s.State, to)
	}
	return s, nil
}

// CloneTasks returns copies of every clone task that is not done, oldest
// first.
func (m *Manager) CloneTasks() []CloneTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]CloneTask, 0, len(m.clones))
	for _, t := range m.clones {
		if t.State == taskstate.CloneDone {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].RepoID < out[j].RepoID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// CloneTask returns the clone task of repoID, done ones included.
func (m *Manager) CloneTask(repoID string) (CloneTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.clones[repoID]
	if !ok {
		return CloneTask{}, false
	}
	return *t, true
}

func (m *Manager) SyncTask(repoID string) (SyncTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.syncs[repoID]
	if !ok {
		return SyncTask{}, false
	}
	return *s, true
}

func (m *Manager) TransferTask(repoID string) (TransferTask, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, ok := m.transfers[repoID]
	if !ok {
		return TransferTask{}, false
	}
	return *tt, true
}

// Forget drops every task of repoID.
func (m *Manager) Forget(repoID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clones, repoID)
	delete(m.syncs, repoID)
	delete(m.transfers, repoID)
}
