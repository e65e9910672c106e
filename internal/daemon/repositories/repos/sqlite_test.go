package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/daemon/migrations"
	"github.com/dmitrijs2005/reposync/internal/daemon/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, migrations.SQLiteDir))
	return db
}

var base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newRepo(id string, n int) *models.Repo {
	return &models.Repo{
		ID:           id,
		Name:         "lib-" + id,
		Version:      1,
		Worktree:     "/tmp/" + id,
		Email:        "a@b.com",
		ServerURL:    "https://cloud.example.com",
		RelayID:      "cloud.example.com",
		AutoSync:     true,
		ClonePending: false,
		CreatedAt:    base.Add(time.Duration(n) * time.Second),
	}
}

func TestSQLite_CreateGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := newRepo("r1", 0)
	in.Encrypted = true
	in.EncVersion = 2
	in.Magic = "abcd"
	in.RandomKey = "ffee"
	in.IsReadonly = true
	require.NoError(t, r.Create(ctx, in))

	got, err := r.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.True(t, got.LastSyncTime.IsZero())
}

func TestSQLite_Get_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSQLite_Create_Conflicts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newRepo("r1", 0)))

	err := r.Create(ctx, newRepo("r1", 1))
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists), "duplicate id")

	dup := newRepo("r2", 1)
	dup.Worktree = "/tmp/r1"
	err = r.Create(ctx, dup)
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists), "duplicate worktree")
}

func TestSQLite_List_PagingAndPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Create(ctx, newRepo(fmt.Sprintf("r%d", i), i)))
	}
	pending := newRepo("p", 10)
	pending.ClonePending = true
	require.NoError(t, r.Create(ctx, pending))

	all, err := r.List(ctx, -1, -1)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, repo := range all {
		assert.Equal(t, fmt.Sprintf("r%d", i), repo.ID)
	}

	page, err := r.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "r1", page[0].ID)
	assert.Equal(t, "r2", page[1].ID)

	empty, err := r.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	tail, err := r.List(ctx, 4, -1)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	everything, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, everything, 6)

	require.NoError(t, r.MarkCloned(ctx, "p"))
	all, err = r.List(ctx, -1, -1)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestSQLite_Updates(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newRepo("r1", 0)))

	require.NoError(t, r.SetAutoSync(ctx, "r1", false))
	require.NoError(t, r.SetWorktreeInvalid(ctx, "r1", true))
	require.NoError(t, r.SetLastSyncTime(ctx, "r1", base.Add(time.Hour)))

	got, err := r.Get(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, got.AutoSync)
	assert.True(t, got.WorktreeInvalid)
	assert.Equal(t, base.Add(time.Hour), got.LastSyncTime)

	assert.True(t, errors.Is(r.SetAutoSync(ctx, "nope", true), common.ErrorNotFound))
	assert.True(t, errors.Is(r.MarkCloned(ctx, "nope"), common.ErrorNotFound))
}

func TestSQLite_Delete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newRepo("r1", 0)))

	require.NoError(t, r.Delete(ctx, "r1"))
	assert.True(t, errors.Is(r.Delete(ctx, "r1"), common.ErrorNotFound))

	_, err := r.Get(ctx, "r1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	// the worktree is free again
	require.NoError(t, r.Create(ctx, newRepo("r1", 1)))
}
