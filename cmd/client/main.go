// Command jacktrack — полевой клиент учёта джекфрутов: записи сохраняются локально и синхронизируются с сервером.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"JackTrack/internal/cli/commands"
	"JackTrack/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("jacktrack %s (built %s, %s %s/%s)\n", version, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return 0
	}

	// Ctrl+C прерывает сетевые операции; локальная запись к этому моменту уже сохранена
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, flag.Args())
}
