package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"JackTrack/internal/cli/service"
	"JackTrack/internal/config"
)

type syncCmd struct{}

func (syncCmd) Name() string { return "sync" }
func (syncCmd) Description() string {
	return "Отправить несинхронизированные записи на сервер"
}
func (syncCmd) Usage() string {
	return "sync [--pull] [kind...]"
}

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pull := fs.Bool("pull", false, "после отправки загрузить изменения с сервера")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if *pull && fs.NArg() > 0 {
		return ErrUsage
	}

	app, done, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintln(Out, "→ Синхронизация…")
	if *pull {
		pushed, pulled, err := app.Registry.Reconcile(ctx)
		printSyncReports(pushed)
		printPullReports(pulled)
		return offlineIsNotFatal(err)
	}
	reports, err := app.Registry.SyncAll(ctx, fs.Args()...)
	printSyncReports(reports)
	return offlineIsNotFatal(err)
}

type pullCmd struct{}

func (pullCmd) Name() string        { return "pull" }
func (pullCmd) Description() string { return "Загрузить записи с сервера" }
func (pullCmd) Usage() string       { return "pull [kind...]" }

func (pullCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	app, done, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintln(Out, "→ Загрузка с сервера…")
	reports, err := app.Registry.Pull(ctx, args...)
	printPullReports(reports)
	return offlineIsNotFatal(err)
}

// offlineIsNotFatal: без сети данные остаются локально, команда завершается успешно.
func offlineIsNotFatal(err error) error {
	if errors.Is(err, service.ErrOffline) {
		fmt.Fprintln(Out, "× Сервер недоступен: изменения сохранены локально")
		return nil
	}
	return err
}

func printSyncReports(reports []service.SyncReport) {
	for _, r := range reports {
		if r.Pending == 0 {
			fmt.Fprintf(Out, "• %s: нет изменений\n", r.Kind)
			continue
		}
		fmt.Fprintf(Out, "✓ %s: отправлено %d, удалено %d, пропущено %d из %d\n",
			r.Kind, r.Synced, r.Deleted, r.Skipped, r.Pending)
		printFailures(r.Failures)
	}
}

func printPullReports(reports []service.PullReport) {
	for _, r := range reports {
		fmt.Fprintf(Out, "✓ %s: получено %d, новых %d, обновлено %d, без изменений %d, оставлено локальных %d\n",
			r.Kind, r.Received, r.Inserted, r.Updated, r.Unchanged, r.Kept)
		printFailures(r.Failures)
	}
}

func printFailures(failures map[string]error) {
	ids := make([]string, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(Out, "  × %s: %v\n", id, failures[id])
	}
}

func init() {
	RegisterCmd(syncCmd{})
	RegisterCmd(pullCmd{})
}
