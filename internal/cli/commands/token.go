package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	fsrepo "JackTrack/internal/cli/repo/fs"
	"JackTrack/internal/config"
)

type tokenCmd struct{}

func (tokenCmd) Name() string        { return "token" }
func (tokenCmd) Description() string { return "Сохранить токен устройства для доступа к серверу" }
func (tokenCmd) Usage() string       { return "token <device-token>" }

func (tokenCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return ErrUsage
	}
	st := fsrepo.NewStateStore(filepath.Dir(cfg.ClientDBPath))
	if err := st.SaveToken(args[0]); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintln(Out, "✓ Токен сохранён")
	return nil
}

func init() { RegisterCmd(tokenCmd{}) }
