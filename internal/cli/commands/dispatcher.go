package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"
	"JackTrack/internal/config"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Dispatch находит команду по первому аргументу, запускает её и возвращает код выхода.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	name := strings.ToLower(args[0])
	switch name {
	case "help", "-h", "--help":
		return help(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}
	if len(args) > 1 && (args[1] == "-h" || args[1] == "--help") {
		fmt.Fprint(Out, formatCommandUsage(c))
		return exitOK
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprint(Out, formatCommandUsage(c))
		return exitUsage
	case errors.Is(err, model.ErrValidation):
		fmt.Fprintf(Out, "× %s: %v\n", name, err)
		return exitUsage
	case errors.Is(err, repo.ErrNotFound):
		fmt.Fprintf(Out, "× %s: record not found\n", name)
		return exitError
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return exitError
	}
}

func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	c, ok := Get(strings.ToLower(args[0]))
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}
	fmt.Fprint(Out, formatCommandUsage(c))
	return exitOK
}
