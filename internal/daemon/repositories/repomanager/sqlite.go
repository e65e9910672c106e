package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/reposync/internal/daemon/migrations"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repos"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/settings"
	"github.com/dmitrijs2005/reposync/internal/dbx"

	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager is the default single-user store.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Repos(db dbx.DBTX) repos.Repository {
	return repos.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", migrations.SQLiteDir)
}
