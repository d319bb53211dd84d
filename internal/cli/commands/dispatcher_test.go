package commands

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"
	"JackTrack/internal/config"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, cfg *config.Config, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return f.run(ctx, cfg, args)
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	// зарегистрированы tree/flower/fruit/user/sync/... из init()
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	if !strings.Contains(out, "JackTrack field CLI") {
		t.Fatalf("global help expected")
	}
	records, sync := strings.Index(out, "Records:"), strings.Index(out, "Sync and status:")
	if records < 0 || sync < records {
		t.Fatalf("record commands are listed before sync commands, got:\n%s", out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"help", "tree"}) })
	if code != 0 {
		t.Fatalf("expected 0 for help tree, got %d", code)
	}
	if !strings.Contains(out, "jacktrack tree add --desc <text>") || !strings.Contains(out, "jacktrack tree list [--deleted]") {
		t.Fatalf("tree actions expected, got:\n%s", out)
	}

	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"fruit", "--help"}) })
	if code != 0 || !strings.Contains(out, "[--flower <id>] [--tree <id>]") {
		t.Fatalf("fruit help with list filters expected, got %d:\n%s", code, out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	code = Dispatch(context.Background(), &config.Config{}, []string{"no-such"})
	if code != 2 {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	// зарегистрируем временную команду
	cmdOK := fakeCmd{name: "x", usage: "x", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), &config.Config{}, []string{"x"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return ErrUsage }}
	RegisterCmd(cmdUsage)
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"u"}) })
	if !strings.Contains(out, "Usage: jacktrack u <arg>") {
		t.Fatalf("usage text expected")
	}

	cmdInvalid := fakeCmd{name: "v", usage: "v", run: func(_ context.Context, _ *config.Config, _ []string) error {
		return &model.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}}
	RegisterCmd(cmdInvalid)
	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"v"}) })
	if code != 2 || !strings.Contains(out, "invalid quantity") {
		t.Fatalf("validation errors exit with 2, got %d: %s", code, out)
	}

	cmdMissing := fakeCmd{name: "m", usage: "m", run: func(_ context.Context, _ *config.Config, _ []string) error {
		return fmt.Errorf("tree t9: %w", repo.ErrNotFound)
	}}
	RegisterCmd(cmdMissing)
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"m"}) })
	if code != 1 || !strings.Contains(out, "record not found") {
		t.Fatalf("not found exits with 1, got %d: %s", code, out)
	}

	cmdErr := fakeCmd{name: "e", usage: "e", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"e"}) })
	if !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got: %s", out)
	}
}
