package repos

import "github.com/dmitrijs2005/reposync/internal/dbx"

var sqliteQueries = queries{
	insert: `INSERT INTO repos (` + repoColumns + `)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	get: `SELECT ` + repoColumns + ` FROM repos WHERE id = ?`,
	list: `SELECT ` + repoColumns + ` FROM repos WHERE clone_pending = 0
         ORDER BY created_at, id LIMIT ? OFFSET ?`,
	listAll:      `SELECT ` + repoColumns + ` FROM repos ORDER BY created_at, id`,
	delete:       `DELETE FROM repos WHERE id = ?`,
	markCloned:   `UPDATE repos SET clone_pending = 0 WHERE id = ?`,
	setAutoSync:  `UPDATE repos SET auto_sync = ? WHERE id = ?`,
	setLastSync:  `UPDATE repos SET last_sync_time = ? WHERE id = ?`,
	setWtInvalid: `UPDATE repos SET worktree_invalid = ? WHERE id = ?`,
	// LIMIT -1 is "no limit" in SQLite.
	noLimit: -1,
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}
