package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/daemon/models"
	"github.com/dmitrijs2005/reposync/internal/dbx"
)

const repoColumns = `id, name, description, version, worktree, email, server_url, relay_id,
       encrypted, enc_version, magic, random_key, is_readonly, auto_sync,
       worktree_invalid, clone_pending, last_sync_time, created_at`

// queries holds the statements of one SQL dialect.
type queries struct {
	insert       string
	get          string
	list         string
	listAll      string
	delete       string
	markCloned   string
	setAutoSync  string
	setLastSync  string
	setWtInvalid string
	noLimit      any
}

// SQLRepository implements Repository over database/sql.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

func (r *SQLRepository) Create(ctx context.Context, repo *models.Repo) error {
	_, err := r.db.ExecContext(ctx, r.q.insert,
		repo.ID, repo.Name, repo.Desc, repo.Version, repo.Worktree, repo.Email,
		repo.ServerURL, repo.RelayID, repo.Encrypted, repo.EncVersion, repo.Magic,
		repo.RandomKey, repo.IsReadonly, repo.AutoSync, repo.WorktreeInvalid,
		repo.ClonePending, unixSeconds(repo.LastSyncTime), repo.CreatedAt.UnixNano(),
	)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("repo %s: %w", repo.ID, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Repo, error) {
	repo, err := scanRepo(r.db.QueryRowContext(ctx, r.q.get, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return repo, nil
}

func (r *SQLRepository) List(ctx context.Context, offset, limit int) ([]*models.Repo, error) {
	if offset < 0 {
		offset = 0
	}
	var lim any = limit
	if limit < 0 {
		lim = r.q.noLimit
	}
	return r.query(ctx, r.q.list, lim, offset)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]*models.Repo, error) {
	return r.query(ctx, r.q.listAll)
}

func (r *SQLRepository) query(ctx context.Context, q string, args ...any) ([]*models.Repo, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Repo
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, r.q.delete, id)
}

func (r *SQLRepository) MarkCloned(ctx context.Context, id string) error {
	return r.exec(ctx, r.q.markCloned, id)
}

func (r *SQLRepository) SetAutoSync(ctx context.Context, id string, enabled bool) error {
	return r.exec(ctx, r.q.setAutoSync, enabled, id)
}

func (r *SQLRepository) SetLastSyncTime(ctx context.Context, id string, t time.Time) error {
	return r.exec(ctx, r.q.setLastSync, unixSeconds(t), id)
}

func (r *SQLRepository) SetWorktreeInvalid(ctx context.Context, id string, invalid bool) error {
	return r.exec(ctx, r.q.setWtInvalid, invalid, id)
}

// exec runs a single-row update and maps "no rows" to ErrorNotFound.
func (r *SQLRepository) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRepo(s scanner) (*models.Repo, error) {
	var (
		repo      models.Repo
		lastSync  int64
		createdAt int64
	)
	err := s.Scan(
		&repo.ID, &repo.Name, &repo.Desc, &repo.Version, &repo.Worktree, &repo.Email,
		&repo.ServerURL, &repo.RelayID, &repo.Encrypted, &repo.EncVersion, &repo.Magic,
		&repo.RandomKey, &repo.IsReadonly, &repo.AutoSync, &repo.WorktreeInvalid,
		&repo.ClonePending, &lastSync, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSync > 0 {
		repo.LastSyncTime = time.Unix(lastSync, 0).UTC()
	}
	repo.CreatedAt = time.Unix(0, createdAt).UTC()
	return &repo, nil
}

func unixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
