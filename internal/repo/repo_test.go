package repo

import (
	"JackTrack/internal/model"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.Record{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func TestRecordRepository_CreateIfAbsent(t *testing.T) {
	r := NewRecordRepository(newTestDB(t))
	ctx := context.Background()

	created, err := r.CreateIfAbsent(ctx, &model.Record{Resource: "trees", ID: "t1", Data: `{"id":"t1"}`})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.CreateIfAbsent(ctx, &model.Record{Resource: "trees", ID: "t1", Data: `{"id":"t1","x":1}`})
	require.NoError(t, err)
	assert.False(t, created)

	// тот же id в другой коллекции — другая запись
	created, err = r.CreateIfAbsent(ctx, &model.Record{Resource: "flowers", ID: "t1", Data: `{"id":"t1"}`})
	require.NoError(t, err)
	assert.True(t, created)

	got, err := r.Get(ctx, "trees", "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1"}`, got.Data)
}

func TestRecordRepository_ReplaceDeleteList(t *testing.T) {
	r := NewRecordRepository(newTestDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, r.Replace(ctx, "trees", "nope", "{}"), ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "trees", "nope"), ErrNotFound)
	_, err := r.Get(ctx, "trees", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, id := range []string{"a", "b"} {
		_, err := r.CreateIfAbsent(ctx, &model.Record{Resource: "trees", ID: id, Data: `{"id":"` + id + `"}`})
		require.NoError(t, err)
	}
	require.NoError(t, r.Replace(ctx, "trees", "a", `{"id":"a","status":"inactive"}`))
	require.NoError(t, r.Delete(ctx, "trees", "b"))

	recs, err := r.List(ctx, "trees")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.JSONEq(t, `{"id":"a","status":"inactive"}`, recs[0].Data)
}

func TestInitDB_SQLiteFile(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&model.Record{}))

	assert.True(t, isPostgresDSN("postgres://u:p@localhost:5432/db"))
	assert.True(t, isPostgresDSN("host=localhost user=u dbname=db"))
	assert.False(t, isPostgresDSN("server.db"))
}
