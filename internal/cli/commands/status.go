package commands

import (
	"context"
	"fmt"
	"sort"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Доступность сервера и очередь несинхронизированных записей" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer done()

	if app.Gate.IsOnline() {
		fmt.Fprintf(Out, "✓ Сервер %s доступен\n", app.Client.BaseURL())
	} else {
		fmt.Fprintf(Out, "× Сервер %s недоступен\n", app.Client.BaseURL())
	}

	stats, err := app.Stats(ctx)
	if err != nil {
		return err
	}
	for _, kind := range model.Kinds {
		last, err := app.State.LoadLastSync(kind)
		if err != nil {
			return err
		}
		when := "никогда"
		if !last.IsZero() {
			when = last.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(Out, "• %-7s ожидают отправки: %d, последняя синхронизация: %s\n", kind, stats[kind].Unsynced, when)
	}
	return nil
}

type statsCmd struct{}

func (statsCmd) Name() string        { return "stats" }
func (statsCmd) Description() string { return "Сводка по локальным записям" }
func (statsCmd) Usage() string       { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer done()

	stats, err := app.Stats(ctx)
	if err != nil {
		return err
	}
	for _, kind := range model.Kinds {
		st := stats[kind]
		fmt.Fprintf(Out, "%-7s всего %d, синхронизировано %d, ожидают %d, удалено %d", kind, st.Total, st.Synced, st.Unsynced, st.Deleted)
		if st.Quantity > 0 {
			fmt.Fprintf(Out, ", штук %d", st.Quantity)
		}
		fmt.Fprintln(Out)
		for _, cat := range sortedKeys(st.ByCategory) {
			fmt.Fprintf(Out, "        %s: %d\n", cat, st.ByCategory[cat])
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	RegisterCmd(statusCmd{})
	RegisterCmd(statsCmd{})
}
