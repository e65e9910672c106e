package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/reposync/internal/daemon/migrations"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repos"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/settings"
	"github.com/dmitrijs2005/reposync/internal/dbx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager serves daemons sharing a PostgreSQL database.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Repos(db dbx.DBTX) repos.Repository {
	return repos.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "pgx", migrations.PostgresDir)
}
