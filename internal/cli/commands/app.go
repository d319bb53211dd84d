package commands

import (
	"context"
	"time"

	"JackTrack/internal/cli/bootstrap"
	"JackTrack/internal/config"
	"JackTrack/internal/logger"
)

// drainTimeout — сколько команда ждёт фоновую синхронизацию перед выходом.
const drainTimeout = 15 * time.Second

// openApp собирает клиент для одной команды. probe=true проверяет сеть до запуска
// фоновых задач, поэтому короткие команды не запускают полный проход синхронизации.
func openApp(ctx context.Context, cfg *config.Config, probe bool) (*bootstrap.App, func(), error) {
	log, flush := logger.New(logger.Options{Format: cfg.LogFormat, File: cfg.LogFile, Quiet: true})
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		flush()
		return nil, nil, err
	}
	if probe {
		app.Probe(ctx)
	}
	app.Start(ctx)

	return app, func() {
		wait := drainTimeout
		if cfg.HTTPTimeout > 0 && 2*cfg.HTTPTimeout < wait {
			wait = 2 * cfg.HTTPTimeout
		}
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wait)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			log.Warnw("shutdown", "error", err)
		}
		flush()
	}, nil
}
