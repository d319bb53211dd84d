package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"JackTrack/internal/config"
)

// ErrUsage — аргументы не разобраны, диспетчер печатает справку по команде.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI: `jacktrack <name> [args]`.
type Command interface {
	Name() string
	Description() string
	// Usage — однострочная сводка для общей справки.
	Usage() string
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Helper реализуют команды с подробной справкой (`jacktrack help tree`).
type Helper interface {
	Help() string
}

// Out — куда пишет CLI; тесты подменяют его буфером.
var Out io.Writer = os.Stdout

var registry = map[string]Command{}

// RegisterCmd добавляет команду; вызывается из init().
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List возвращает команды, отсортированные по имени.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage собирает общую справку: сначала команды записей, затем синхронизация и служебные.
func FormatGlobalUsage() string {
	var records, other []string
	for _, c := range List() {
		line := fmt.Sprintf("  %-44s %s", c.Usage(), c.Description())
		if _, ok := c.(Helper); ok {
			records = append(records, line)
		} else {
			other = append(other, line)
		}
	}
	lines := []string{
		"JackTrack field CLI: jackfruit trees, flowers and fruits, offline first",
		"",
		"Usage:",
		"  jacktrack [--base-url <url>] [--client-db <path>] <command> [args]",
		"  jacktrack help <command>",
		"",
	}
	if len(records) > 0 {
		lines = append(lines, "Records:")
		lines = append(lines, records...)
		lines = append(lines, "")
	}
	if len(other) > 0 {
		lines = append(lines, "Sync and status:")
		lines = append(lines, other...)
	}
	return strings.Join(lines, "\n") + "\n"
}

// formatCommandUsage — справка по одной команде.
func formatCommandUsage(c Command) string {
	if h, ok := c.(Helper); ok {
		return h.Help()
	}
	return fmt.Sprintf("Usage: jacktrack %s\n", c.Usage())
}
