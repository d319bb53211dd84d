package netstate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HealthChecker — проверка доступности сервера (api.Client.Health).
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober периодически опрашивает сервер и обновляет Gate.
type Prober struct {
	gate     *Gate
	check    HealthChecker
	interval time.Duration
	log      *zap.SugaredLogger
}

func NewProber(gate *Gate, check HealthChecker, interval time.Duration, log *zap.SugaredLogger) *Prober {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Prober{gate: gate, check: check, interval: interval, log: log}
}

// ProbeOnce выполняет одну проверку и возвращает новое состояние.
func (p *Prober) ProbeOnce(ctx context.Context) bool {
	err := p.check.Health(ctx)
	online := err == nil
	if p.gate.Set(online) {
		if online {
			p.log.Infow("server reachable")
		} else {
			p.log.Warnw("server unreachable", "error", err)
		}
	}
	return online
}

// Run опрашивает сервер до отмены ctx.
func (p *Prober) Run(ctx context.Context) {
	p.ProbeOnce(ctx)
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.ProbeOnce(ctx)
		}
	}
}
