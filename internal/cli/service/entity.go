package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier получает сигнал «запись id вида kind изменилась локально».
// Реализация не должна блокировать вызывающего.
type Notifier interface {
	Notify(kind, id string)
}

// EntityService — локальные операции над записями одного вида.
// Ошибки хранилища возвращаются вызывающему; синхронизация идёт отдельно через Notifier
// и на результат операции не влияет.
type EntityService[T model.Entity] struct {
	kind   Kind[T]
	table  repo.Table[T]
	tombs  repo.TombstoneStore
	notify Notifier
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewEntityService создаёт сервис. notify может быть nil (без фоновой синхронизации).
func NewEntityService[T model.Entity](kind Kind[T], table repo.Table[T], tombs repo.TombstoneStore, notify Notifier, log *zap.SugaredLogger) *EntityService[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EntityService[T]{
		kind:   kind,
		table:  table,
		tombs:  tombs,
		notify: notify,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Kind возвращает описание вида.
func (s *EntityService[T]) Kind() Kind[T] { return s.kind }

func (s *EntityService[T]) changed(id string) {
	if s.notify != nil {
		s.notify.Notify(s.kind.Name, id)
	}
}

// Create сохраняет новую запись и возвращает её id. Пустой id генерируется (uuid v4).
func (s *EntityService[T]) Create(ctx context.Context, rec T) (string, error) {
	m := rec.Base()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	m.IsSynced = false
	m.DeletedAt = nil
	if err := s.table.Insert(ctx, rec); err != nil {
		return "", err
	}
	s.log.Debugw("record created", "kind", s.kind.Name, "id", m.ID)
	s.changed(m.ID)
	return m.ID, nil
}

// Get возвращает видимую запись.
func (s *EntityService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.table.Get(ctx, id, false)
}

// GetIncludingDeleted возвращает запись даже если она мягко удалена.
func (s *EntityService[T]) GetIncludingDeleted(ctx context.Context, id string) (T, error) {
	return s.table.Get(ctx, id, true)
}

// List возвращает все записи вида.
func (s *EntityService[T]) List(ctx context.Context, includeDeleted bool) ([]T, error) {
	return s.table.List(ctx, repo.Query{IncludeDeleted: includeDeleted})
}

// ListByParent возвращает записи родителя parentID, свежие первыми.
func (s *EntityService[T]) ListByParent(ctx context.Context, parentID string, includeDeleted bool) ([]T, error) {
	if s.kind.ParentColumn == "" {
		return nil, fmt.Errorf("%s has no parent: %w", s.kind.Name, repo.ErrNotSupported)
	}
	return s.ListBy(ctx, s.kind.ParentColumn, parentID, includeDeleted)
}

// ListBy фильтрует по произвольной колонке-ссылке (например, fruit.tree_id).
func (s *EntityService[T]) ListBy(ctx context.Context, column, id string, includeDeleted bool) ([]T, error) {
	return s.table.List(ctx, repo.Query{ParentColumn: column, ParentID: id, IncludeDeleted: includeDeleted})
}

// Update меняет разрешённые поля видимой записи. Прочие поля игнорируются.
// Если запись в хранилище не удалась, запись всё равно помечается несинхронизированной.
func (s *EntityService[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if _, err := s.table.Get(ctx, id, false); err != nil {
		return err
	}
	patch := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		if !s.kind.mutable(k) {
			s.log.Debugw("field is not mutable, ignored", "kind", s.kind.Name, "field", k)
			continue
		}
		patch[k] = v
	}
	patch["updated_at"] = s.now()
	patch["is_synced"] = false

	if err := s.table.UpdateFields(ctx, id, patch); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			if mErr := s.table.MarkUnsynced(ctx, id); mErr != nil {
				s.log.Errorw("mark unsynced after failed update", "kind", s.kind.Name, "id", id, "error", mErr)
			}
		}
		return err
	}
	s.changed(id)
	return nil
}

// SoftDelete помечает запись удалённой. Только для видов с мягким удалением.
func (s *EntityService[T]) SoftDelete(ctx context.Context, id string) error {
	if !s.kind.SoftDelete {
		return fmt.Errorf("soft delete %s: %w", s.kind.Name, repo.ErrNotSupported)
	}
	if _, err := s.table.Get(ctx, id, false); err != nil {
		return err
	}
	now := s.now()
	err := s.table.UpdateFields(ctx, id, map[string]any{
		"deleted_at": &now,
		"updated_at": now,
		"is_synced":  false,
	})
	if err != nil {
		return err
	}
	s.changed(id)
	return nil
}

// Restore снимает пометку удаления. Для не удалённой записи ничего не делает.
func (s *EntityService[T]) Restore(ctx context.Context, id string) error {
	if !s.kind.SoftDelete {
		return fmt.Errorf("restore %s: %w", s.kind.Name, repo.ErrNotSupported)
	}
	rec, err := s.table.Get(ctx, id, true)
	if err != nil {
		return err
	}
	if !rec.Base().Deleted() {
		return nil
	}
	err = s.table.UpdateFields(ctx, id, map[string]any{
		"deleted_at": nil,
		"updated_at": s.now(),
		"is_synced":  false,
	})
	if err != nil {
		return err
	}
	s.changed(id)
	return nil
}

// HardDelete физически удаляет строку и запоминает удаление для отправки на сервер.
func (s *EntityService[T]) HardDelete(ctx context.Context, id string) error {
	if _, err := s.table.Get(ctx, id, true); err != nil {
		return err
	}
	if err := s.tombs.Add(ctx, s.kind.Name, id); err != nil {
		return err
	}
	if err := s.table.Delete(ctx, id); err != nil {
		if rmErr := s.tombs.Remove(ctx, s.kind.Name, id); rmErr != nil {
			s.log.Errorw("drop tombstone after failed delete", "kind", s.kind.Name, "id", id, "error", rmErr)
		}
		return err
	}
	s.changed(id)
	return nil
}

// Delete — пользовательское удаление: мягкое, если вид его поддерживает, иначе физическое.
func (s *EntityService[T]) Delete(ctx context.Context, id string) error {
	if s.kind.SoftDelete {
		return s.SoftDelete(ctx, id)
	}
	return s.HardDelete(ctx, id)
}

// Stats возвращает агрегаты по таблице.
func (s *EntityService[T]) Stats(ctx context.Context) (model.Stats, error) {
	return s.table.Stats(ctx)
}
