package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"JackTrack/internal/cli/api"
	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"

	"go.uber.org/zap"
)

// ErrOffline — сеть недоступна, синхронизация пропущена целиком.
var ErrOffline = errors.New("offline: sync skipped")

// Remote — REST-коллекция сервера (api.Resource).
type Remote interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, payload any) error
	Update(ctx context.Context, id string, payload any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]json.RawMessage, error)
}

// ImageUploader возвращает удалённую ссылку на снимок или "" (blob.Uploader).
type ImageUploader interface {
	Upload(ctx context.Context, kind, id, ref string) string
}

// ImageFetcher скачивает удалённый снимок и возвращает локальный путь или исходный url (blob.Fetcher).
type ImageFetcher interface {
	Localize(ctx context.Context, kind, id, url string) string
}

// Connectivity — последнее известное состояние сети (netstate.Gate).
type Connectivity interface {
	IsOnline() bool
}

// SyncReport — итог одного прохода SyncAll по виду.
type SyncReport struct {
	Kind     string
	Pending  int // несинхронизированных записей и надгробий на начало прохода
	Synced   int
	Deleted  int
	Skipped  int // уже синхронизировались параллельно
	Failures map[string]error
}

// PullReport — итог загрузки коллекции с сервера.
type PullReport struct {
	Kind      string
	Received  int
	Inserted  int
	Updated   int
	Unchanged int
	Kept      int // локальные несинхронизированные правки, оставленные как есть
	Failures  map[string]error
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeSynced
	outcomeDeleted
	outcomeSkipped
)

// Coordinator сверяет локальные записи одного вида с сервером.
type Coordinator[T model.Entity] struct {
	kind     Kind[T]
	table    repo.Table[T]
	tombs    repo.TombstoneStore
	remote   Remote
	uploader ImageUploader
	fetcher  ImageFetcher
	net      Connectivity
	log      *zap.SugaredLogger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// CoordinatorDeps — зависимости координатора. Uploader и Fetcher необязательны.
type CoordinatorDeps struct {
	Tombstones repo.TombstoneStore
	Remote     Remote
	Uploader   ImageUploader
	Fetcher    ImageFetcher
	Net        Connectivity
	Log        *zap.SugaredLogger
}

func NewCoordinator[T model.Entity](kind Kind[T], table repo.Table[T], deps CoordinatorDeps) *Coordinator[T] {
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Coordinator[T]{
		kind:     kind,
		table:    table,
		tombs:    deps.Tombstones,
		remote:   deps.Remote,
		uploader: deps.Uploader,
		fetcher:  deps.Fetcher,
		net:      deps.Net,
		log:      log.With("kind", kind.Name),
		inflight: map[string]struct{}{},
	}
}

// Kind возвращает имя вида.
func (c *Coordinator[T]) Kind() string { return c.kind.Name }

// acquire отмечает id как синхронизируемый. false — синхронизация уже идёт.
func (c *Coordinator[T]) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Coordinator[T]) release(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Coordinator[T]) online() bool {
	return c.net == nil || c.net.IsOnline()
}

// SyncRecord синхронизирует одну запись. Если запись уже синхронизируется, вызов ничего не делает.
func (c *Coordinator[T]) SyncRecord(ctx context.Context, id string) error {
	if !c.online() {
		return ErrOffline
	}
	_, err := c.syncID(ctx, id)
	return err
}

func (c *Coordinator[T]) syncID(ctx context.Context, id string) (outcome, error) {
	if !c.acquire(id) {
		c.log.Debugw("sync already in progress", "id", id)
		return outcomeSkipped, nil
	}
	defer c.release(id)

	rec, err := c.table.Get(ctx, id, true)
	if errors.Is(err, repo.ErrNotFound) {
		return c.syncTombstone(ctx, id)
	}
	if err != nil {
		return outcomeNone, err
	}
	m := rec.Base()
	if m.IsSynced {
		return outcomeNone, nil
	}
	if m.Deleted() {
		return c.syncDelete(ctx, rec)
	}
	return c.upsert(ctx, rec)
}

// upsert: GET по id, затем POST или PUT. 409 считается успехом.
func (c *Coordinator[T]) upsert(ctx context.Context, rec T) (outcome, error) {
	m := rec.Base()
	exists, err := c.remote.Exists(ctx, m.ID)
	if err != nil {
		return outcomeNone, err
	}

	image := ""
	if c.kind.Image != nil && c.uploader != nil {
		image = c.uploader.Upload(ctx, c.kind.Name, m.ID, *c.kind.Image(rec))
	}
	payload, err := c.kind.payload(rec, image)
	if err != nil {
		return outcomeNone, fmt.Errorf("encode %s %s: %w", c.kind.Name, m.ID, err)
	}

	if exists {
		err = c.remote.Update(ctx, m.ID, payload)
	} else {
		err = c.remote.Create(ctx, payload)
	}
	if errors.Is(err, api.ErrConflict) {
		c.log.Infow("remote already has record, treated as synced", "id", m.ID)
		err = nil
	}
	if err != nil {
		return outcomeNone, err
	}

	ok, err := c.table.MarkSynced(ctx, m.ID, m.UpdatedAt)
	if err != nil {
		return outcomeNone, err
	}
	if !ok {
		// запись изменилась во время отправки, следующий проход отправит новую версию
		c.log.Debugw("record changed during sync, left unsynced", "id", m.ID)
		return outcomeNone, nil
	}
	return outcomeSynced, nil
}

// syncDelete удаляет мягко удалённую запись на сервере, затем физически локально.
func (c *Coordinator[T]) syncDelete(ctx context.Context, rec T) (outcome, error) {
	id := rec.Base().ID
	exists, err := c.remote.Exists(ctx, id)
	if err != nil {
		return outcomeNone, err
	}
	if exists {
		if err := c.remote.Delete(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
			return outcomeNone, err
		}
	}
	removed, err := c.table.DeleteIfSoftDeleted(ctx, id)
	if err != nil {
		return outcomeNone, err
	}
	if !removed {
		c.log.Infow("record restored during delete sync, kept locally", "id", id)
		return outcomeNone, nil
	}
	return outcomeDeleted, nil
}

// syncTombstone отправляет DELETE для физически удалённой локально записи.
func (c *Coordinator[T]) syncTombstone(ctx context.Context, id string) (outcome, error) {
	if c.tombs == nil {
		return outcomeNone, nil
	}
	pending, err := c.tombs.Has(ctx, c.kind.Name, id)
	if err != nil || !pending {
		return outcomeNone, err
	}
	if err := c.remote.Delete(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		return outcomeNone, err
	}
	if err := c.tombs.Remove(ctx, c.kind.Name, id); err != nil {
		return outcomeNone, err
	}
	return outcomeDeleted, nil
}

// SyncAll проходит по всем несинхронизированным записям (включая мягко удалённые)
// и по надгробиям. Ошибка одной записи не прерывает проход и попадает в отчёт.
func (c *Coordinator[T]) SyncAll(ctx context.Context) (SyncReport, error) {
	rep := SyncReport{Kind: c.kind.Name, Failures: map[string]error{}}
	if !c.online() {
		c.log.Infow("offline, sync sweep skipped")
		return rep, ErrOffline
	}

	recs, err := c.table.List(ctx, repo.Query{UnsyncedOnly: true, IncludeDeleted: true})
	if err != nil {
		return rep, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.Base().ID)
	}
	if c.tombs != nil {
		gone, err := c.tombs.List(ctx, c.kind.Name)
		if err != nil {
			return rep, err
		}
		ids = append(ids, gone...)
	}
	rep.Pending = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			rep.Failures[id] = ctx.Err()
			continue
		}
		out, err := c.syncID(ctx, id)
		if err != nil {
			rep.Failures[id] = err
			c.logFailure(id, err)
			continue
		}
		switch out {
		case outcomeSynced:
			rep.Synced++
		case outcomeDeleted:
			rep.Deleted++
		case outcomeSkipped:
			rep.Skipped++
		}
	}
	c.log.Infow("sync sweep finished",
		"pending", rep.Pending, "synced", rep.Synced, "deleted", rep.Deleted,
		"skipped", rep.Skipped, "failed", len(rep.Failures))
	return rep, nil
}

func (c *Coordinator[T]) logFailure(id string, err error) {
	var rejected *api.RemoteRejectedError
	switch {
	case errors.As(err, &rejected):
		c.log.Errorw("remote rejected record", "id", id, "status", rejected.Status, "error", err)
	case errors.Is(err, api.ErrUnreachable):
		c.log.Warnw("remote unreachable, record left unsynced", "id", id, "error", err)
	default:
		c.log.Errorw("record sync failed", "id", id, "error", err)
	}
}

// Pull загружает коллекцию с сервера.
//
// Политика: новые записи вставляются как синхронизированные; существующая
// синхронизированная запись перезаписывается, если удалённый updated_at новее;
// несинхронизированные локальные записи и надгробия не трогаются.
func (c *Coordinator[T]) Pull(ctx context.Context) (PullReport, error) {
	rep := PullReport{Kind: c.kind.Name, Failures: map[string]error{}}
	if !c.online() {
		return rep, ErrOffline
	}
	raws, err := c.remote.List(ctx)
	if err != nil {
		return rep, err
	}
	rep.Received = len(raws)
	for i, raw := range raws {
		rec, err := c.kind.decode(raw)
		if err != nil || rec.Base().ID == "" {
			if err == nil {
				err = errors.New("record without id")
			}
			rep.Failures[fmt.Sprintf("#%d", i)] = err
			continue
		}
		id := rec.Base().ID
		if !c.acquire(id) {
			rep.Kept++
			continue
		}
		err = c.pullOne(ctx, rec, &rep)
		c.release(id)
		if err != nil {
			rep.Failures[id] = err
			c.log.Warnw("pull record failed", "id", id, "error", err)
		}
	}
	c.log.Infow("pull finished",
		"received", rep.Received, "inserted", rep.Inserted, "updated", rep.Updated,
		"kept", rep.Kept, "failed", len(rep.Failures))
	return rep, nil
}

func (c *Coordinator[T]) pullOne(ctx context.Context, remote T, rep *PullReport) error {
	m := remote.Base()
	if c.tombs != nil {
		gone, err := c.tombs.Has(ctx, c.kind.Name, m.ID)
		if err != nil {
			return err
		}
		if gone {
			rep.Kept++
			return nil
		}
	}
	m.IsSynced = true
	if !c.kind.SoftDelete {
		m.DeletedAt = nil
	}

	local, err := c.table.Get(ctx, m.ID, true)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.localize(ctx, remote)
		if err := c.table.Upsert(ctx, remote); err != nil {
			return err
		}
		rep.Inserted++
		return nil
	case err != nil:
		return err
	}

	lm := local.Base()
	if !lm.IsSynced {
		rep.Kept++
		return nil
	}
	if !m.UpdatedAt.After(lm.UpdatedAt) {
		rep.Unchanged++
		return nil
	}
	c.localize(ctx, remote)
	replaced, err := c.table.ReplaceSynced(ctx, remote)
	if err != nil {
		return err
	}
	if !replaced {
		rep.Kept++
		return nil
	}
	rep.Updated++
	return nil
}

func (c *Coordinator[T]) localize(ctx context.Context, rec T) {
	if c.kind.Image == nil || c.fetcher == nil {
		return
	}
	ref := c.kind.Image(rec)
	*ref = c.fetcher.Localize(ctx, c.kind.Name, rec.Base().ID, *ref)
}
