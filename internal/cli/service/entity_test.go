package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"
	"JackTrack/internal/cli/repo/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEntityService_CreateOfflineIsDurable(t *testing.T) {
	h := newTreeHarness(t, false)
	ctx := context.Background()

	id, err := h.svc.Create(ctx, &model.Tree{Description: "Mango #1", Latitude: 14.5, Longitude: 120.9, Status: model.TreeActive})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsSynced)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Equal(t, []Task{{Kind: model.KindTree, ID: id}}, h.notes.all())
	assert.Equal(t, 0, h.remote.total(), "no network calls while offline")
}

func TestEntityService_UpdateFlipsSyncedAndFiltersFields(t *testing.T) {
	h := newTreeHarness(t, true)
	ctx := context.Background()
	id, err := h.svc.Create(ctx, &model.Tree{Description: "Mango #1", Status: model.TreeActive})
	require.NoError(t, err)
	before, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	ok, err := h.table.MarkSynced(ctx, id, before.UpdatedAt)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(time.Millisecond)
	err = h.svc.Update(ctx, id, map[string]any{
		"description": "Mango #1 Updated",
		"created_at":  time.Unix(0, 0),
		"bogus":       1,
	})
	require.NoError(t, err)

	got, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mango #1 Updated", got.Description)
	assert.False(t, got.IsSynced)
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(before.CreatedAt), "created_at is not mutable")
	assert.Len(t, h.notes.all(), 2)
}

func TestEntityService_UpdateMissing(t *testing.T) {
	h := newTreeHarness(t, false)
	err := h.svc.Update(context.Background(), "nope", map[string]any{"description": "x"})
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Empty(t, h.notes.all())
}

// mockTreeTable — мок таблицы для проверки поведения при ошибках хранилища.
type mockTreeTable struct {
	mock.Mock
	repo.Table[*model.Tree]
}

func (m *mockTreeTable) Get(ctx context.Context, id string, includeDeleted bool) (*model.Tree, error) {
	args := m.Called(id, includeDeleted)
	if v, ok := args.Get(0).(*model.Tree); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTreeTable) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(id, fields).Error(0)
}

func (m *mockTreeTable) MarkUnsynced(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func TestEntityService_UpdateStorageErrorStillMarksUnsynced(t *testing.T) {
	tbl := &mockTreeTable{}
	boom := &repo.StorageError{Op: "update trees", Err: errors.New("disk I/O error")}
	tbl.On("Get", "t1", false).Return(&model.Tree{Meta: model.Meta{ID: "t1", IsSynced: true}}, nil)
	tbl.On("UpdateFields", "t1", mock.Anything).Return(boom)
	tbl.On("MarkUnsynced", "t1").Return(nil).Once()
	notes := &recordingNotifier{}

	svc := NewEntityService(TreeKind(), repo.Table[*model.Tree](tbl), nil, notes, nil)
	err := svc.Update(context.Background(), "t1", map[string]any{"description": "x"})
	var se *repo.StorageError
	assert.True(t, errors.As(err, &se))
	tbl.AssertExpectations(t)
	assert.Empty(t, notes.all())
}

func TestEntityService_SoftDeleteRestore(t *testing.T) {
	h := newFlowerHarness(t, false)
	ctx := context.Background()
	id, err := h.svc.Create(ctx, &model.Flower{TreeID: "t1", Quantity: 3, WrappedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, h.svc.SoftDelete(ctx, id))
	_, err = h.svc.Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	del, err := h.svc.GetIncludingDeleted(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, del.DeletedAt)
	assert.False(t, del.IsSynced)

	err = h.svc.SoftDelete(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound, "already deleted row is invisible")

	visible, err := h.svc.ListByParent(ctx, "t1", false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	all, err := h.svc.ListByParent(ctx, "t1", true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, h.svc.Restore(ctx, id))
	got, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
	assert.False(t, got.IsSynced)
	assert.Len(t, h.notes.all(), 3)
}

func TestEntityService_TreeHasNoSoftDelete(t *testing.T) {
	h := newTreeHarness(t, false)
	ctx := context.Background()
	id, err := h.svc.Create(ctx, &model.Tree{Status: model.TreeActive})
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.SoftDelete(ctx, id), repo.ErrNotSupported)
	assert.ErrorIs(t, h.svc.Restore(ctx, id), repo.ErrNotSupported)
	_, err = h.svc.ListByParent(ctx, "x", false)
	assert.ErrorIs(t, err, repo.ErrNotSupported)

	require.NoError(t, h.svc.Delete(ctx, id))
	_, err = h.svc.GetIncludingDeleted(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	pending, err := h.tombs.Has(ctx, model.KindTree, id)
	require.NoError(t, err)
	assert.True(t, pending, "hard delete must be remembered for the server")
}

func TestEntityService_UserDuplicateEmail(t *testing.T) {
	h := newHarness(t, UserKind(), sqlite.UserSchema(), false)
	ctx := context.Background()
	_, err := h.svc.Create(ctx, &model.User{FirstName: "Ana", LastName: "Cruz", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, &model.User{FirstName: "Ann", LastName: "Cruz", Email: "ana@example.com"})
	assert.ErrorIs(t, err, repo.ErrDuplicateKey)
	assert.Len(t, h.notes.all(), 1)
}

func TestEntityService_Stats(t *testing.T) {
	h := newTreeHarness(t, false)
	ctx := context.Background()
	for _, st := range []string{model.TreeActive, model.TreeActive, model.TreeInactive} {
		_, err := h.svc.Create(ctx, &model.Tree{Status: st})
		require.NoError(t, err)
	}
	s, err := h.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 3, s.Unsynced)
	assert.Equal(t, 2, s.ByCategory[model.TreeActive])
}
