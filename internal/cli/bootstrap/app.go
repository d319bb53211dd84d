// Package bootstrap собирает зависимости клиента в одном месте.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"JackTrack/internal/cli/api"
	"JackTrack/internal/cli/blob"
	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/netstate"
	fsrepo "JackTrack/internal/cli/repo/fs"
	reposqlite "JackTrack/internal/cli/repo/sqlite"
	"JackTrack/internal/cli/service"
	"JackTrack/internal/config"

	"go.uber.org/zap"
)

// probeTimeout ограничивает разовую проверку сети перед командой.
const probeTimeout = 3 * time.Second

// App — все зависимости клиента. Создаётся один раз на процесс.
type App struct {
	Cfg *config.Config
	Log *zap.SugaredLogger

	DB       *reposqlite.DB
	State    *fsrepo.StateStore
	Images   *fsrepo.ImageDir
	Gate     *netstate.Gate
	Client   *api.Client
	Prober   *netstate.Prober
	Outbox   *service.Outbox
	Registry *service.Registry

	Trees   *service.EntityService[*model.Tree]
	Flowers *service.EntityService[*model.Flower]
	Fruits  *service.EntityService[*model.Fruit]
	Users   *service.EntityService[*model.User]

	stop func()
	wg   sync.WaitGroup
}

// New связывает БД, сервисы, координаторы, очередь и шлюз сети. Файл БД открывается лениво.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &App{
		Cfg:    cfg,
		Log:    log,
		DB:     reposqlite.NewDB(cfg.ClientDBPath),
		State:  fsrepo.NewStateStore(filepath.Dir(cfg.ClientDBPath)),
		Images: fsrepo.NewImageDir(cfg.ImagesDir),
		Gate:   netstate.NewUnknownGate(),
	}

	token := cfg.APIToken
	if token == "" {
		token, _ = a.State.LoadToken()
	}
	a.Client = api.NewClient(cfg.ServerURL, token, cfg.HTTPTimeout)
	a.Prober = netstate.NewProber(a.Gate, a.Client, cfg.ProbeInterval, log)

	var store blob.ObjectStore
	if cfg.S3Bucket != "" {
		s3, err := blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		store = s3
	} else {
		log.Debugw("S3_BUCKET is empty, photos sync without images")
	}
	uploader := blob.NewUploader(store, log)
	fetcher := blob.NewFetcher(a.Images, cfg.HTTPTimeout, log)

	tombs := reposqlite.NewTombstones(a.DB)
	deps := func(resource string) service.CoordinatorDeps {
		return service.CoordinatorDeps{
			Tombstones: tombs,
			Remote:     a.Client.Resource(resource),
			Uploader:   uploader,
			Fetcher:    fetcher,
			Net:        a.Gate,
			Log:        log,
		}
	}

	users := reposqlite.NewTable(a.DB, reposqlite.UserSchema())
	trees := reposqlite.NewTable(a.DB, reposqlite.TreeSchema())
	flowers := reposqlite.NewTable(a.DB, reposqlite.FlowerSchema())
	fruits := reposqlite.NewTable(a.DB, reposqlite.FruitSchema())

	userKind, treeKind, flowerKind, fruitKind := service.UserKind(), service.TreeKind(), service.FlowerKind(), service.FruitKind()
	a.Registry = service.NewRegistry(a.Gate, a.State, log,
		service.NewCoordinator(userKind, users, deps(userKind.Resource)),
		service.NewCoordinator(treeKind, trees, deps(treeKind.Resource)),
		service.NewCoordinator(flowerKind, flowers, deps(flowerKind.Resource)),
		service.NewCoordinator(fruitKind, fruits, deps(fruitKind.Resource)),
	)
	a.Outbox = service.NewOutbox(a.Registry.SyncRecord, service.OutboxOptions{
		Size:    cfg.OutboxSize,
		Retries: cfg.SyncRetries,
		Backoff: cfg.SyncBackoff,
	}, log)

	a.Users = service.NewEntityService(userKind, users, tombs, a.Outbox, log)
	a.Trees = service.NewEntityService(treeKind, trees, tombs, a.Outbox, log)
	a.Flowers = service.NewEntityService(flowerKind, flowers, tombs, a.Outbox, log)
	a.Fruits = service.NewEntityService(fruitKind, fruits, tombs, a.Outbox, log)
	return a, nil
}

// Probe один раз проверяет доступность сервера.
func (a *App) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return a.Prober.ProbeOnce(ctx)
}

// Start запускает воркер очереди и подписку на сеть: переход в online запускает SyncAll по всем видам.
func (a *App) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.stop = cancel

	a.Outbox.Start(ctx)
	a.wg.Add(1)
	events, unsubscribe := a.Gate.Subscribe()
	go func() {
		defer a.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case online := <-events:
				if !online {
					continue
				}
				a.Log.Infow("connectivity restored, syncing all kinds")
				if _, err := a.Registry.SyncAll(ctx); err != nil {
					a.Log.Warnw("sync after reconnect", "error", err)
				}
			}
		}
	}()
}

// Close дожидается обработки очереди (не дольше ctx), останавливает фоновые задачи и закрывает БД.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Outbox.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("outbox: %w", err))
	}
	if a.stop != nil {
		a.stop()
	}
	a.Outbox.Wait()
	a.wg.Wait()
	if err := a.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Stats собирает счётчики по всем видам в порядке model.Kinds.
func (a *App) Stats(ctx context.Context) (map[string]model.Stats, error) {
	out := make(map[string]model.Stats, len(model.Kinds))
	var err error
	for _, kind := range model.Kinds {
		var st model.Stats
		switch kind {
		case model.KindUser:
			st, err = a.Users.Stats(ctx)
		case model.KindTree:
			st, err = a.Trees.Stats(ctx)
		case model.KindFlower:
			st, err = a.Flowers.Stats(ctx)
		case model.KindFruit:
			st, err = a.Fruits.Stats(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("%s stats: %w", kind, err)
		}
		out[kind] = st
	}
	return out, nil
}
