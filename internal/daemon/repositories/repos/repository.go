// Package repos persists repo records for the daemon.
package repos

import (
	"context"
	"time"

	"github.com/dmitrijs2005/reposync/internal/daemon/models"
)

// Repository stores repo records. Get/Delete/Set* return
// common.ErrorNotFound for unknown ids; Create returns
// common.ErrorAlreadyExists when the id or the worktree is taken.
type Repository interface {
	Create(ctx context.Context, repo *models.Repo) error
	Get(ctx context.Context, id string) (*models.Repo, error)
	// List returns cloned repos in creation order. A negative limit means
	// no limit; a negative offset is treated as zero.
	List(ctx context.Context, offset, limit int) ([]*models.Repo, error)
	// ListAll returns every repo including ones still being cloned.
	ListAll(ctx context.Context) ([]*models.Repo, error)
	Delete(ctx context.Context, id string) error
	MarkCloned(ctx context.Context, id string) error
	SetAutoSync(ctx context.Context, id string, enabled bool) error
	SetLastSyncTime(ctx context.Context, id string, t time.Time) error
	SetWorktreeInvalid(ctx context.Context, id string, invalid bool) error
}
