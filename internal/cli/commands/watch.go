package commands

import (
	"context"
	"fmt"

	"JackTrack/internal/config"
)

// watchCmd держит клиент запущенным: опрос сервера, очередь и синхронизация при появлении сети.
type watchCmd struct{}

func (watchCmd) Name() string        { return "watch" }
func (watchCmd) Description() string { return "Фоновая синхронизация до Ctrl+C" }
func (watchCmd) Usage() string       { return "watch" }

func (watchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	// без предварительной проверки: первый успешный опрос запустит полный проход
	app, done, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(Out, "• Наблюдение за %s, опрос каждые %s. Ctrl+C для выхода\n", app.Client.BaseURL(), cfg.ProbeInterval)
	app.Prober.Run(ctx)
	fmt.Fprintln(Out, "• Остановлено")
	return nil
}

func init() { RegisterCmd(watchCmd{}) }
