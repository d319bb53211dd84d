package repo

import (
	"context"
	"time"

	"JackTrack/internal/cli/model"
)

// Query фильтр выборки списка.
type Query struct {
	ParentColumn   string // колонка внешнего ключа, например tree_id
	ParentID       string
	IncludeDeleted bool
	UnsyncedOnly   bool // только is_synced = 0, включая мягко удалённые
}

// Table определяет порт доступа к одной таблице локальной БД.
type Table[T model.Entity] interface {
	Insert(ctx context.Context, rec T) error
	Get(ctx context.Context, id string, includeDeleted bool) (T, error)
	List(ctx context.Context, q Query) ([]T, error)

	// UpdateFields частично обновляет колонки; ErrNotFound, если видимой строки нет.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error

	// MarkSynced ставит is_synced=1, только если updated_at не изменился с момента чтения.
	MarkSynced(ctx context.Context, id string, updatedAt time.Time) (bool, error)
	MarkUnsynced(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
	// DeleteIfSoftDeleted удаляет строку, только если она всё ещё помечена deleted_at.
	DeleteIfSoftDeleted(ctx context.Context, id string) (bool, error)

	// Upsert вставляет или полностью перезаписывает строку (используется при загрузке с сервера).
	Upsert(ctx context.Context, rec T) error
	// ReplaceSynced перезаписывает строку, только если локальная копия синхронизирована (is_synced = 1).
	ReplaceSynced(ctx context.Context, rec T) (bool, error)

	Stats(ctx context.Context) (model.Stats, error)
}

// TombstoneStore хранит удаления, которые ещё нужно отправить на сервер.
type TombstoneStore interface {
	Add(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string) ([]string, error)
	Has(ctx context.Context, kind, id string) (bool, error)
	Remove(ctx context.Context, kind, id string) error
}
