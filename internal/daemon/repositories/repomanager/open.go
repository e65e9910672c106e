package repomanager

import (
	"context"
	"database/sql"
	"fmt"
)

// Open connects to the store and migrates it. postgres selects pgx with
// dsn as the connection string; otherwise dsn is a SQLite file path.
func Open(ctx context.Context, postgres bool, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		driver string
		m      RepositoryManager
	)
	if postgres {
		driver, m = "pgx", &PostgresRepositoryManager{}
	} else {
		driver, m = "sqlite", &SQLiteRepositoryManager{}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if !postgres {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}
	return db, m, nil
}
