package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Syncer — координатор одного вида без параметра типа.
type Syncer interface {
	Kind() string
	SyncRecord(ctx context.Context, id string) error
	SyncAll(ctx context.Context) (SyncReport, error)
	Pull(ctx context.Context) (PullReport, error)
}

// SyncMarker запоминает время последнего полного прохода без ошибок (fs.StateStore).
type SyncMarker interface {
	SaveLastSync(kind string, at time.Time) error
}

// Registry объединяет координаторы всех видов в порядке «родители раньше детей».
type Registry struct {
	order  []Syncer
	byKind map[string]Syncer
	net    Connectivity
	marker SyncMarker
	log    *zap.SugaredLogger
}

// NewRegistry создаёт реестр. Порядок syncers определяет порядок обхода.
func NewRegistry(net Connectivity, marker SyncMarker, log *zap.SugaredLogger, syncers ...Syncer) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Registry{net: net, marker: marker, log: log, byKind: map[string]Syncer{}}
	for _, s := range syncers {
		r.order = append(r.order, s)
		r.byKind[s.Kind()] = s
	}
	return r
}

// Get возвращает координатор вида kind.
func (r *Registry) Get(kind string) (Syncer, error) {
	s, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return s, nil
}

// Kinds возвращает имена видов в порядке обхода.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.order))
	for _, s := range r.order {
		kinds = append(kinds, s.Kind())
	}
	return kinds
}

func (r *Registry) offline() bool {
	return r.net != nil && !r.net.IsOnline()
}

// SyncRecord синхронизирует одну запись; используется очередью Outbox.
func (r *Registry) SyncRecord(ctx context.Context, kind, id string) error {
	s, err := r.Get(kind)
	if err != nil {
		return err
	}
	return s.SyncRecord(ctx, id)
}

// SyncAll выполняет проход по видам kinds (все, если пусто).
// Ошибка одного вида не останавливает остальные и возвращается объединённой.
func (r *Registry) SyncAll(ctx context.Context, kinds ...string) ([]SyncReport, error) {
	if r.offline() {
		r.log.Infow("offline, sync skipped")
		return nil, ErrOffline
	}
	targets, err := r.pick(kinds)
	if err != nil {
		return nil, err
	}
	var reports []SyncReport
	var errs []error
	for _, s := range targets {
		rep, err := s.SyncAll(ctx)
		if errors.Is(err, ErrOffline) {
			return reports, err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Kind(), err))
			continue
		}
		reports = append(reports, rep)
		if len(rep.Failures) == 0 && r.marker != nil {
			if err := r.marker.SaveLastSync(s.Kind(), time.Now()); err != nil {
				r.log.Warnw("save last sync time", "kind", s.Kind(), "error", err)
			}
		}
	}
	return reports, errors.Join(errs...)
}

// Pull загружает все виды с сервера.
func (r *Registry) Pull(ctx context.Context, kinds ...string) ([]PullReport, error) {
	if r.offline() {
		return nil, ErrOffline
	}
	targets, err := r.pick(kinds)
	if err != nil {
		return nil, err
	}
	var reports []PullReport
	var errs []error
	for _, s := range targets {
		rep, err := s.Pull(ctx)
		if errors.Is(err, ErrOffline) {
			return reports, err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Kind(), err))
			continue
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}

// Reconcile сначала отправляет локальные изменения, затем загружает серверные.
func (r *Registry) Reconcile(ctx context.Context) ([]SyncReport, []PullReport, error) {
	pushed, pushErr := r.SyncAll(ctx)
	if errors.Is(pushErr, ErrOffline) {
		return nil, nil, pushErr
	}
	pulled, pullErr := r.Pull(ctx)
	return pushed, pulled, errors.Join(pushErr, pullErr)
}

func (r *Registry) pick(kinds []string) ([]Syncer, error) {
	if len(kinds) == 0 {
		return r.order, nil
	}
	out := make([]Syncer, 0, len(kinds))
	for _, k := range kinds {
		s, err := r.Get(k)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
