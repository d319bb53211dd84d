package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"JackTrack/internal/cli/api"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Task — «синхронизировать запись ID вида Kind».
type Task struct {
	Kind string
	ID   string
}

// SyncFunc выполняет задачу (Registry.SyncRecord).
type SyncFunc func(ctx context.Context, kind, id string) error

// OutboxOptions — размер очереди и политика повторов.
type OutboxOptions struct {
	Size    int
	Retries uint64
	Backoff time.Duration
}

// Outbox — очередь фоновой синхронизации. Локальная запись кладёт задачу и сразу
// возвращается; воркер Run выполняет задачи по одной.
type Outbox struct {
	tasks   chan Task
	handle  SyncFunc
	retries uint64
	backoff time.Duration
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
	done    chan struct{}
}

var _ Notifier = (*Outbox)(nil)

func NewOutbox(handle SyncFunc, opts OutboxOptions, log *zap.SugaredLogger) *Outbox {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Outbox{
		tasks:   make(chan Task, opts.Size),
		handle:  handle,
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Notify ставит задачу в очередь, не блокируясь. При переполнении задача
// отбрасывается: запись остаётся несинхронизированной до следующего прохода SyncAll.
func (o *Outbox) Notify(kind, id string) {
	o.Enqueue(Task{Kind: kind, ID: id})
}

// Enqueue возвращает false, если задача не поставлена.
func (o *Outbox) Enqueue(t Task) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return false
	}
	select {
	case o.tasks <- t:
		return true
	default:
		o.log.Warnw("outbox full, task dropped", "kind", t.Kind, "id", t.ID)
		return false
	}
}

// Len — число задач в очереди.
func (o *Outbox) Len() int { return len(o.tasks) }

// Start регистрирует воркер и запускает его в отдельной горутине.
// После Start вызов Close всегда дожидается, пока воркер разберёт очередь.
func (o *Outbox) Start(ctx context.Context) {
	if !o.started.CompareAndSwap(false, true) {
		return
	}
	go o.loop(ctx)
}

// Run обрабатывает задачи в текущей горутине до отмены ctx или закрытия очереди.
func (o *Outbox) Run(ctx context.Context) {
	if !o.started.CompareAndSwap(false, true) {
		return
	}
	o.loop(ctx)
}

// Wait блокируется до выхода зарегистрированного воркера.
func (o *Outbox) Wait() {
	if o.started.Load() {
		<-o.done
	}
}

func (o *Outbox) loop(ctx context.Context) {
	defer close(o.done)
	o.log.Infow("outbox worker started")
	for {
		select {
		case <-ctx.Done():
			o.log.Infow("outbox worker stopped", "pending", len(o.tasks))
			return
		case t, ok := <-o.tasks:
			if !ok {
				o.log.Infow("outbox drained")
				return
			}
			o.process(ctx, t)
		}
	}
}

func (o *Outbox) process(ctx context.Context, t Task) {
	b := retry.WithMaxRetries(o.retries, retry.NewExponential(o.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := o.handle(ctx, t.Kind, t.ID)
		// таймаут не повторяем: запись дождётся следующего прохода
		if errors.Is(err, api.ErrUnreachable) && !errors.Is(err, api.ErrTimeout) {
			return retry.RetryableError(err)
		}
		return err
	})
	switch {
	case err == nil:
		o.log.Debugw("outbox task done", "kind", t.Kind, "id", t.ID)
	case errors.Is(err, ErrOffline):
		o.log.Debugw("offline, task deferred to next sweep", "kind", t.Kind, "id", t.ID)
	default:
		o.log.Warnw("outbox task failed", "kind", t.Kind, "id", t.ID, "error", err)
	}
}

// Close закрывает очередь и ждёт, пока оставшиеся задачи будут обработаны или истечёт ctx.
// Если воркер так и не был запущен, очередь разбирается прямо в Close.
func (o *Outbox) Close(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.tasks)
	}
	o.mu.Unlock()
	if o.started.CompareAndSwap(false, true) {
		o.loop(ctx)
		return ctx.Err()
	}
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
