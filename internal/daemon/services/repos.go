// Package services contains the daemon's business logic. RepoService owns
// the repo lifecycle (clone, download, destroy) and the task manager;
// ConfigService owns config entries.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/cryptox"
	"github.com/dmitrijs2005/reposync/internal/daemon/engine"
	"github.com/dmitrijs2005/reposync/internal/daemon/models"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repomanager"
	"github.com/dmitrijs2005/reposync/internal/daemon/tasks"
	"github.com/dmitrijs2005/reposync/internal/dbx"
	"github.com/dmitrijs2005/reposync/internal/filex"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
)

const defaultCacheSize = 128

type RepoOptions struct {
	HandshakeTimeout time.Duration
	CacheSize        int
}

// RepoService serializes every mutation of the repo set with one mutex so
// that no interleaving of clients can bind two repos to one worktree.
// cacheMu orders cache fills against evictions: writers evict after the
// store write, so a fill that read the old row is always evicted.
type RepoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	engine      engine.Engine
	tasks       *tasks.Manager
	cache       *lru.Cache
	clock       clockwork.Clock
	logger      logging.Logger
	opts        RepoOptions

	mu      sync.Mutex
	cacheMu sync.Mutex
}

func NewRepoService(db *sql.DB, m repomanager.RepositoryManager, eng engine.Engine,
	clock clockwork.Clock, logger logging.Logger, opts RepoOptions) (*RepoService, error) {

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("repo cache: %w", err)
	}

	s := &RepoService{
		db:          db,
		repomanager: m,
		engine:      eng,
		cache:       cache,
		clock:       clock,
		logger:      logger.With("module", "repos"),
		opts:        opts,
	}
	s.tasks = tasks.NewManager(clock, tasks.Hooks{
		CloneDone: s.onCloneDone,
		Synced:    s.onSynced,
	})
	return s, nil
}

// Tasks exposes the task manager to readers and to the sync engine.
func (s *RepoService) Tasks() *tasks.Manager {
	return s.tasks
}

// Restore rebuilds daemon-held state after a restart. Repos whose clone
// never finished get an error task with ErrInterrupted; cloned repos whose
// worktree disappeared are flagged worktree_invalid.
func (s *RepoService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*models.Repo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := s.repomanager.Repos(tx)
		all, err := store.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("listing repos: %w", err)
		}
		for _, r := range all {
			if r.ClonePending {
				pending = append(pending, r)
				continue
			}
			fi, err := os.Stat(r.Worktree)
			invalid := err != nil || !fi.IsDir()
			if invalid != r.WorktreeInvalid {
				if err := store.SetWorktreeInvalid(ctx, r.ID, invalid); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Purge()

	for _, r := range pending {
		if err := s.tasks.NewClone(r.ID, r.Name, r.Worktree); err != nil {
			return err
		}
		if err := s.tasks.FailClone(r.ID, taskstate.ErrInterrupted); err != nil {
			return err
		}
		s.logger.Warn(ctx, "clone interrupted by restart", "repo_id", r.ID)
	}
	return nil
}

// Clone binds a remote repo to req.Worktree, creating the folder if it
// is missing, and starts the initial fetch.
func (s *RepoService) Clone(ctx context.Context, req *proto.CloneRequest) (string, error) {
	info, err := req.Validate()
	if err != nil {
		return "", err
	}
	wt, err := cleanAbs("worktree", req.Worktree)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(wt); err == nil && !fi.IsDir() {
		return "", fmt.Errorf("%w: worktree %s is not a directory", common.ErrorValidation, wt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repomanager.Repos(s.db).ListAll(ctx)
	if err != nil {
		return "", err
	}
	if err := checkConflicts(existing, req.RepoID, wt); err != nil {
		return "", err
	}
	return s.create(ctx, &req.RepoSource, info, wt)
}

// Download creates <wt_parent>/<repo_name> (or <repo_name>-N when taken)
// and starts the initial fetch into it.
func (s *RepoService) Download(ctx context.Context, req *proto.DownloadRequest) (string, error) {
	info, err := req.Validate()
	if err != nil {
		return "", err
	}
	parent, err := cleanAbs("wt_parent", req.WtParent)
	if err != nil {
		return "", err
	}
	if err := filex.CheckWritableDir(parent); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repomanager.Repos(s.db).ListAll(ctx)
	if err != nil {
		return "", err
	}
	if err := checkConflicts(existing, req.RepoID, ""); err != nil {
		return "", err
	}
	// Every child of a parent inside a worktree would overlap it.
	for _, r := range existing {
		if filex.IsWithin(r.Worktree, parent) {
			return "", fmt.Errorf("%w: %s is inside repo %s at %s", common.ErrorWorktreeInUse, parent, r.ID, r.Worktree)
		}
	}

	wt, err := filex.UniqueChild(parent, folderName(req.RepoName), func(p string) bool {
		return checkConflicts(existing, "", p) != nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorWorktreeInUse, err)
	}
	if err := checkConflicts(existing, "", wt); err != nil {
		return "", err
	}
	return s.create(ctx, &req.RepoSource, info, wt)
}

// create runs with s.mu held.
func (s *RepoService) create(ctx context.Context, src *proto.RepoSource, info proto.MoreInfo, wt string) (string, error) {
	if src.Encrypted() {
		if err := verifyPasswd(src, info); err != nil {
			return "", err
		}
	}

	ereq := engine.Request{
		RepoID:      src.RepoID,
		RepoName:    src.RepoName,
		RepoVersion: int(src.RepoVersion),
		Worktree:    wt,
		Token:       src.Token,
		ServerURL:   info.ServerURL,
		Email:       src.Email,
		Encrypted:   src.Encrypted(),
	}
	if src.Encrypted() {
		ereq.EncVersion = int(*src.EncVersion)
		ereq.Passwd = *src.Passwd
		if src.RandomKey != nil {
			ereq.RandomKey = *src.RandomKey
		}
	}

	hctx, cancel := ctx, context.CancelFunc(func() {})
	if s.opts.HandshakeTimeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, s.opts.HandshakeTimeout)
	}
	err := s.engine.Handshake(hctx, ereq)
	cancel()
	if err != nil {
		if !errors.Is(err, common.ErrorHandshake) {
			err = fmt.Errorf("%w: %v", common.ErrorHandshake, err)
		}
		return "", err
	}

	repo := &models.Repo{
		ID:           src.RepoID,
		Name:         src.RepoName,
		Version:      int(src.RepoVersion),
		Worktree:     wt,
		Email:        src.Email,
		ServerURL:    info.ServerURL,
		RelayID:      relayID(info.ServerURL),
		Encrypted:    ereq.Encrypted,
		EncVersion:   ereq.EncVersion,
		RandomKey:    ereq.RandomKey,
		IsReadonly:   info.IsReadonly,
		AutoSync:     true,
		ClonePending: true,
		CreatedAt:    s.clock.Now(),
	}
	if src.Magic != nil {
		repo.Magic = *src.Magic
	}

	if err := s.repomanager.Repos(s.db).Create(ctx, repo); err != nil {
		return "", err
	}
	if err := s.tasks.NewClone(repo.ID, repo.Name, wt); err != nil {
		return "", err
	}
	s.engine.Start(ctx, ereq, s.tasks)

	s.logger.Info(ctx, "repo added", "repo_id", repo.ID, "worktree", wt, "encrypted", repo.Encrypted)
	return repo.ID, nil
}

// Get returns a copy of the repo record.
func (s *RepoService) Get(ctx context.Context, id string) (*models.Repo, error) {
	if v, ok := s.cache.Get(id); ok {
		r := *v.(*models.Repo)
		return &r, nil
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	r, err := s.repomanager.Repos(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cached := *r
	s.cache.Add(id, &cached)
	return r, nil
}

func (s *RepoService) evict(id string) {
	s.cacheMu.Lock()
	s.cache.Remove(id)
	s.cacheMu.Unlock()
}

// List pages through cloned repos. -1 for start or limit means from the
// beginning and without limit.
func (s *RepoService) List(ctx context.Context, start, limit int) ([]*models.Repo, error) {
	return s.repomanager.Repos(s.db).List(ctx, start, limit)
}

// Destroy abandons in-flight work for id and forgets it. A second call
// reports ErrorNotFound.
func (s *RepoService) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Cancel(id)
	s.tasks.Forget(id)

	err := s.repomanager.Repos(s.db).Delete(ctx, id)
	s.evict(id)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "repo destroyed", "repo_id", id)
	return nil
}

func (s *RepoService) SetAutoSync(ctx context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repomanager.Repos(s.db).SetAutoSync(ctx, id, enabled)
	s.evict(id)
	return err
}

// onCloneDone persists the finished clone. An error keeps the task out of
// done so a repo that is still clone-pending on disk is never reported
// as cloned.
func (s *RepoService) onCloneDone(repoID string) error {
	ctx := context.Background()
	err := s.repomanager.Repos(s.db).MarkCloned(ctx, repoID)
	s.evict(repoID)
	if err != nil {
		s.logger.Error(ctx, "cannot mark repo cloned", "repo_id", repoID, "error", err)
		return err
	}
	return nil
}

func (s *RepoService) onSynced(repoID string, at time.Time) {
	ctx := context.Background()
	err := s.repomanager.Repos(s.db).SetLastSyncTime(ctx, repoID, at)
	s.evict(repoID)
	if err != nil {
		s.logger.Warn(ctx, "cannot record sync time", "repo_id", repoID, "error", err)
	}
}

// Close stops the engine.
func (s *RepoService) Close() error {
	return s.engine.Close()
}

func verifyPasswd(src *proto.RepoSource, info proto.MoreInfo) error {
	h := cryptox.PwdHash{Algo: info.PwdHashAlgo, Params: info.PwdHashParams}
	err := cryptox.VerifyRepoPasswd(src.RepoID, *src.Passwd, *src.Magic, int(*src.EncVersion), info.RepoSalt, h)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		return common.ErrorIncorrectPassword
	default:
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
}

// checkConflicts rejects a repo id already in use (when id is set) and a
// worktree equal to, inside, or containing another repo's worktree (when
// wt is set).
func checkConflicts(existing []*models.Repo, id, wt string) error {
	for _, r := range existing {
		if id != "" && r.ID == id {
			return fmt.Errorf("repo %s: %w", id, common.ErrorAlreadyExists)
		}
		if wt != "" && (filex.IsWithin(r.Worktree, wt) || filex.IsWithin(wt, r.Worktree)) {
			return fmt.Errorf("%w: %s overlaps repo %s at %s", common.ErrorWorktreeInUse, wt, r.ID, r.Worktree)
		}
	}
	return nil
}

func cleanAbs(field, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
	}
	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %s must be an absolute path", common.ErrorValidation, field)
	}
	return p, nil
}

// folderName makes a repo name usable as a single path element.
func folderName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "repo"
	}
	return name
}

func relayID(serverURL string) string {
	if serverURL == "" {
		return ""
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
