package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"JackTrack/internal/cli/bootstrap"
	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"
	fsrepo "JackTrack/internal/cli/repo/fs"
	"JackTrack/internal/cli/service"
	"JackTrack/internal/config"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// entityCmd — команда вида `<kind> <action> [args]` для одного вида записей.
type entityCmd[T model.Entity] struct {
	kind string
	desc string
	// addUsage — флаги `add` для справки.
	addUsage string
	// svc выбирает сервис вида из собранного клиента.
	svc func(a *bootstrap.App) *service.EntityService[T]
	// build разбирает флаги `add` в новую запись; photo — путь к снимку или "".
	build func(args []string) (rec T, photo string, err error)
	line  func(rec T) string
	// filters — колонки-ссылки, доступные в `list --<name> <id>`.
	filters []string
}

func (c entityCmd[T]) Name() string        { return c.kind }
func (c entityCmd[T]) Description() string { return c.desc }
func (c entityCmd[T]) Usage() string {
	return c.kind + " <add|list|get|edit|delete|restore|purge> [args]"
}

// Help печатает действия команды с флагами и фильтрами списка.
func (c entityCmd[T]) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nUsage:\n", c.desc)
	fmt.Fprintf(&b, "  jacktrack %s add %s\n", c.kind, c.addUsage)
	list := "[--deleted]"
	for _, col := range c.filters {
		list += fmt.Sprintf(" [--%s <id>]", strings.TrimSuffix(col, "_id"))
	}
	fmt.Fprintf(&b, "  jacktrack %s list %s\n", c.kind, list)
	fmt.Fprintf(&b, "  jacktrack %s get <id>\n", c.kind)
	fmt.Fprintf(&b, "  jacktrack %s edit <id> <field>=<value>...\n", c.kind)
	fmt.Fprintf(&b, "  jacktrack %s delete|restore|purge <id>\n", c.kind)
	return b.String()
}

func (c entityCmd[T]) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	action, rest := args[0], args[1:]
	switch action {
	case "add", "list", "get", "edit", "delete", "restore", "purge":
	default:
		return ErrUsage
	}
	if action != "add" && action != "list" && len(rest) == 0 {
		return ErrUsage
	}

	app, done, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer done()
	svc := c.svc(app)

	switch action {
	case "add":
		return c.add(ctx, app, svc, rest)
	case "list":
		return c.list(ctx, svc, rest)
	case "get":
		rec, err := svc.GetIncludingDeleted(ctx, rest[0])
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(Out, string(b))
		return nil
	case "edit":
		return c.edit(ctx, app, svc, rest[0], rest[1:])
	case "delete":
		if err := svc.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "✓ %s %s deleted\n", c.kind, rest[0])
	case "restore":
		if err := svc.Restore(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "✓ %s %s restored\n", c.kind, rest[0])
	case "purge":
		if err := svc.HardDelete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "✓ %s %s purged\n", c.kind, rest[0])
	}
	return nil
}

func (c entityCmd[T]) add(ctx context.Context, app *bootstrap.App, svc *service.EntityService[T], args []string) (err error) {
	rec, photo, err := c.build(args)
	if err != nil {
		return err
	}
	if v, ok := any(rec).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	m := rec.Base()
	m.ID = uuid.NewString()
	if photo != "" {
		kind := svc.Kind()
		if kind.Image == nil {
			return fmt.Errorf("%s has no photo: %w", c.kind, repo.ErrNotSupported)
		}
		path, ierr := app.Images.Import(c.kind, m.ID, photo)
		if ierr != nil {
			return fmt.Errorf("import photo: %w", ierr)
		}
		*kind.Image(rec) = path
		defer discardOnError(&err, path)
	}
	id, err := svc.Create(ctx, rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ %s created: %s\n", c.kind, id)
	return nil
}

func (c entityCmd[T]) list(ctx context.Context, svc *service.EntityService[T], args []string) error {
	fs := flag.NewFlagSet(c.kind+" list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	deleted := fs.Bool("deleted", false, "include soft-deleted records")
	parents := make(map[string]*string, len(c.filters))
	for _, col := range c.filters {
		parents[col] = fs.String(strings.TrimSuffix(col, "_id"), "", "filter by "+col)
	}
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	var (
		recs     []T
		err      error
		filtered bool
	)
	for _, col := range c.filters {
		if id := *parents[col]; id != "" {
			recs, err = svc.ListBy(ctx, col, id, *deleted)
			filtered = true
			break
		}
	}
	if !filtered {
		recs, err = svc.List(ctx, *deleted)
	}
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintf(Out, "• no %s records\n", c.kind)
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(Out, c.line(r)+syncMark(r.Base()))
	}
	return nil
}

// edit принимает пары field=value; для поля снимка локальный файл копируется в каталог снимков.
func (c entityCmd[T]) edit(ctx context.Context, app *bootstrap.App, svc *service.EntityService[T], id string, pairs []string) (err error) {
	if len(pairs) == 0 {
		return ErrUsage
	}
	if _, err := svc.GetIncludingDeleted(ctx, id); err != nil {
		return err
	}
	fields := make(map[string]any, len(pairs))
	imageCol := svc.Kind().ImageColumn
	for _, p := range pairs {
		k, raw, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return ErrUsage
		}
		if k == imageCol && raw != "" {
			if _, local := fsrepo.LocalPath(raw); local {
				path, ierr := app.Images.Import(c.kind, id, raw)
				if ierr != nil {
					return fmt.Errorf("import photo: %w", ierr)
				}
				raw = path
				defer discardOnError(&err, path)
			}
		}
		v, err := parseField(k, raw)
		if err != nil {
			return err
		}
		fields[k] = v
	}
	if err := svc.Update(ctx, id, fields); err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ %s %s updated\n", c.kind, id)
	return nil
}

// discardOnError удаляет импортированный снимок, если запись так и не сохранилась.
func discardOnError(err *error, path string) {
	if *err != nil {
		_ = os.Remove(path)
	}
}

// parseField приводит строку из командной строки к типу колонки.
func parseField(name, raw string) (any, error) {
	switch name {
	case "quantity":
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, &model.ValidationError{Field: name, Reason: "must be a positive integer"}
		}
		return n, nil
	case "latitude", "longitude":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &model.ValidationError{Field: name, Reason: "must be a number"}
		}
		return f, nil
	case "wrapped_at", "bagged_at":
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, &model.ValidationError{Field: name, Reason: "must be YYYY-MM-DD"}
		}
		return t, nil
	case "status":
		if raw != model.TreeActive && raw != model.TreeInactive {
			return nil, &model.ValidationError{Field: name, Reason: "must be active or inactive"}
		}
	}
	return raw, nil
}

func syncMark(m *model.Meta) string {
	switch {
	case m.Deleted() && !m.IsSynced:
		return "  [deleted, pending]"
	case m.Deleted():
		return "  [deleted]"
	case !m.IsSynced:
		return "  [pending]"
	}
	return ""
}

// parseDate разбирает YYYY-MM-DD; пустая строка — сегодня.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.Join(ErrUsage, err)
	}
	return t, nil
}
