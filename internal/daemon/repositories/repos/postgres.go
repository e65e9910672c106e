package repos

import "github.com/dmitrijs2005/reposync/internal/dbx"

var postgresQueries = queries{
	insert: `INSERT INTO repos (` + repoColumns + `)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
	get: `SELECT ` + repoColumns + ` FROM repos WHERE id = $1`,
	list: `SELECT ` + repoColumns + ` FROM repos WHERE NOT clone_pending
         ORDER BY created_at, id LIMIT $1 OFFSET $2`,
	listAll:      `SELECT ` + repoColumns + ` FROM repos ORDER BY created_at, id`,
	delete:       `DELETE FROM repos WHERE id = $1`,
	markCloned:   `UPDATE repos SET clone_pending = FALSE WHERE id = $1`,
	setAutoSync:  `UPDATE repos SET auto_sync = $1 WHERE id = $2`,
	setLastSync:  `UPDATE repos SET last_sync_time = $1 WHERE id = $2`,
	setWtInvalid: `UPDATE repos SET worktree_invalid = $1 WHERE id = $2`,
	// LIMIT NULL is "no limit" in PostgreSQL.
	noLimit: nil,
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}
