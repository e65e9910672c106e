// Package repomanager vends dialect-specific repositories and runs the
// embedded goose migrations for the daemon store.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/reposync/internal/daemon/migrations"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repos"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/settings"
	"github.com/dmitrijs2005/reposync/internal/dbx"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Repos(db dbx.DBTX) repos.Repository
	Settings(db dbx.DBTX) settings.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	return gooseUpContext(ctx, db, dir)
}
