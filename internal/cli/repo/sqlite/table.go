package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/repo"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Schema описывает отображение сущности на таблицу.
// Общие колонки (id, is_synced, created_at, updated_at, deleted_at) добавляются автоматически.
type Schema[T model.Entity] struct {
	Name           string
	Columns        []string // доменные колонки в порядке Values/Targets
	SoftDelete     bool
	ParentColumns  []string // допустимые колонки для фильтра по родителю
	CategoryColumn string   // группировка в Stats
	QuantityColumn string
	OrderBy        string

	New     func() T
	Values  func(T) []any
	Targets func(T) []any
}

func (s Schema[T]) metaColumns() []string {
	cols := []string{"id", "is_synced", "created_at", "updated_at"}
	if s.SoftDelete {
		cols = append(cols, "deleted_at")
	}
	return cols
}

func (s Schema[T]) allColumns() []string {
	return append(s.metaColumns(), s.Columns...)
}

func (s Schema[T]) hasColumn(name string) bool {
	for _, c := range s.allColumns() {
		if c == name {
			return true
		}
	}
	return false
}

func (s Schema[T]) values(rec T) []any {
	m := rec.Base()
	vals := []any{m.ID, boolToInt(m.IsSynced), toMicro(m.CreatedAt), toMicro(m.UpdatedAt)}
	if s.SoftDelete {
		vals = append(vals, toColumn(m.DeletedAt))
	}
	for _, v := range s.Values(rec) {
		vals = append(vals, toColumn(v))
	}
	return vals
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s Schema[T]) scan(row rowScanner) (T, error) {
	rec := s.New()
	m := rec.Base()
	dest := []any{&m.ID, &m.IsSynced, microTime{&m.CreatedAt}, microTime{&m.UpdatedAt}}
	if s.SoftDelete {
		dest = append(dest, nullMicroTime{&m.DeletedAt})
	}
	dest = append(dest, s.Targets(rec)...)
	err := row.Scan(dest...)
	return rec, err
}

// Table — реализация repo.Table поверх SQLite.
type Table[T model.Entity] struct {
	db     *DB
	schema Schema[T]
	cols   string
}

var _ repo.Table[*model.Tree] = (*Table[*model.Tree])(nil)

// NewTable создаёт таблицу для схемы.
func NewTable[T model.Entity](db *DB, schema Schema[T]) *Table[T] {
	return &Table[T]{db: db, schema: schema, cols: strings.Join(schema.allColumns(), ", ")}
}

// Schema возвращает описание таблицы.
func (t *Table[T]) Schema() Schema[T] { return t.schema }

func (t *Table[T]) conn(ctx context.Context) (*sql.DB, error) {
	conn, err := t.db.Open(ctx)
	if err != nil {
		return nil, &repo.StorageError{Op: "open", Err: err}
	}
	return conn, nil
}

// Insert добавляет новую строку.
func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	conn, err := t.conn(ctx)
	if err != nil {
		return err
	}
	cols := t.schema.allColumns()
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, t.schema.Name, t.cols, placeholders(len(cols)))
	_, err = conn.ExecContext(ctx, q, t.schema.values(rec)...)
	return mapErr("insert "+t.schema.Name, err)
}

// Get возвращает строку по id. Мягко удалённые строки видны только при includeDeleted.
func (t *Table[T]) Get(ctx context.Context, id string, includeDeleted bool) (T, error) {
	var zero T
	conn, err := t.conn(ctx)
	if err != nil {
		return zero, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, t.cols, t.schema.Name)
	if t.schema.SoftDelete && !includeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	rec, err := t.schema.scan(conn.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s %q: %w", t.schema.Name, id, repo.ErrNotFound)
		}
		return zero, mapErr("get "+t.schema.Name, err)
	}
	return rec, nil
}

// List возвращает строки по фильтру в порядке schema.OrderBy.
func (t *Table[T]) List(ctx context.Context, f repo.Query) ([]T, error) {
	conn, err := t.conn(ctx)
	if err != nil {
		return nil, err
	}
	var where []string
	var args []any
	if f.ParentColumn != "" {
		if !t.allowedParent(f.ParentColumn) {
			return nil, &repo.StorageError{Op: "list " + t.schema.Name, Err: fmt.Errorf("unknown parent column %q", f.ParentColumn)}
		}
		where = append(where, f.ParentColumn+" = ?")
		args = append(args, f.ParentID)
	}
	if t.schema.SoftDelete && !f.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if f.UnsyncedOnly {
		where = append(where, "is_synced = 0")
	}
	q := fmt.Sprintf(`SELECT %s FROM %s`, t.cols, t.schema.Name)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if t.schema.OrderBy != "" {
		q += " ORDER BY " + t.schema.OrderBy
	}

	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list "+t.schema.Name, err)
	}
	defer rows.Close()
	var res []T
	for rows.Next() {
		rec, err := t.schema.scan(rows)
		if err != nil {
			return nil, mapErr("scan "+t.schema.Name, err)
		}
		res = append(res, rec)
	}
	return res, mapErr("list "+t.schema.Name, rows.Err())
}

func (t *Table[T]) allowedParent(col string) bool {
	for _, c := range t.schema.ParentColumns {
		if c == col {
			return true
		}
	}
	return false
}

// UpdateFields обновляет перечисленные колонки строки id.
func (t *Table[T]) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	conn, err := t.conn(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "id" || !t.schema.hasColumn(k) {
			return &repo.StorageError{Op: "update " + t.schema.Name, Err: fmt.Errorf("unknown column %q", k)}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, toColumn(fields[k]))
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.schema.Name, strings.Join(sets, ", "))
	res, err := conn.ExecContext(ctx, q, args...)
	if err != nil {
		return mapErr("update "+t.schema.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("update "+t.schema.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", t.schema.Name, id, repo.ErrNotFound)
	}
	return nil
}

// MarkSynced фиксирует успешную синхронизацию, если запись не менялась после чтения.
func (t *Table[T]) MarkSynced(ctx context.Context, id string, updatedAt time.Time) (bool, error) {
	conn, err := t.conn(ctx)
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf(`UPDATE %s SET is_synced = 1 WHERE id = ? AND updated_at = ?`, t.schema.Name)
	return affected(conn.ExecContext(ctx, q, id, toMicro(updatedAt)))
}

// MarkUnsynced сбрасывает флаг синхронизации без изменения updated_at.
func (t *Table[T]) MarkUnsynced(ctx context.Context, id string) error {
	conn, err := t.conn(ctx)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET is_synced = 0 WHERE id = ?`, t.schema.Name)
	_, err = conn.ExecContext(ctx, q, id)
	return mapErr("mark unsynced "+t.schema.Name, err)
}

// Delete физически удаляет строку. Отсутствие строки ошибкой не считается.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	conn, err := t.conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.schema.Name), id)
	return mapErr("delete "+t.schema.Name, err)
}

// DeleteIfSoftDeleted удаляет строку, только если она до сих пор помечена удалённой.
func (t *Table[T]) DeleteIfSoftDeleted(ctx context.Context, id string) (bool, error) {
	if !t.schema.SoftDelete {
		return false, repo.ErrNotSupported
	}
	conn, err := t.conn(ctx)
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND deleted_at IS NOT NULL`, t.schema.Name)
	return affected(conn.ExecContext(ctx, q, id))
}

// Upsert вставляет строку или перезаписывает все её колонки.
func (t *Table[T]) Upsert(ctx context.Context, rec T) error {
	conn, err := t.conn(ctx)
	if err != nil {
		return err
	}
	cols := t.schema.allColumns()
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		sets = append(sets, c+" = excluded."+c)
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s`,
		t.schema.Name, t.cols, placeholders(len(cols)), strings.Join(sets, ", "))
	_, err = conn.ExecContext(ctx, q, t.schema.values(rec)...)
	return mapErr("upsert "+t.schema.Name, err)
}

// ReplaceSynced перезаписывает все колонки строки, если она не содержит локальных изменений.
func (t *Table[T]) ReplaceSynced(ctx context.Context, rec T) (bool, error) {
	conn, err := t.conn(ctx)
	if err != nil {
		return false, err
	}
	cols := t.schema.allColumns()
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		sets = append(sets, c+" = ?")
	}
	vals := t.schema.values(rec)
	args := append(vals[1:], vals[0])
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND is_synced = 1`, t.schema.Name, strings.Join(sets, ", "))
	return affected(conn.ExecContext(ctx, q, args...))
}

// Stats считает агрегаты одним GROUP BY запросом.
func (t *Table[T]) Stats(ctx context.Context) (model.Stats, error) {
	st := model.Stats{}
	conn, err := t.conn(ctx)
	if err != nil {
		return st, err
	}
	category := "''"
	if t.schema.CategoryColumn != "" {
		category = "IFNULL(" + t.schema.CategoryColumn + ", '')"
		st.ByCategory = map[string]int{}
	}
	visible, deleted := "1", "0"
	if t.schema.SoftDelete {
		visible = "CASE WHEN deleted_at IS NULL THEN 1 ELSE 0 END"
		deleted = "CASE WHEN deleted_at IS NOT NULL THEN 1 ELSE 0 END"
	}
	quantity := "0"
	if t.schema.QuantityColumn != "" {
		quantity = fmt.Sprintf("CASE WHEN %s = 1 THEN %s ELSE 0 END", visible, t.schema.QuantityColumn)
	}
	q := fmt.Sprintf(`SELECT %s AS category,
  COALESCE(SUM(%s), 0),
  COALESCE(SUM(%s), 0),
  COALESCE(SUM(is_synced), 0),
  COUNT(*),
  COALESCE(SUM(%s), 0)
FROM %s GROUP BY category`, category, visible, deleted, quantity, t.schema.Name)

	rows, err := conn.QueryContext(ctx, q)
	if err != nil {
		return st, mapErr("stats "+t.schema.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var vis, del, synced, total, qty int64
		if err := rows.Scan(&cat, &vis, &del, &synced, &total, &qty); err != nil {
			return st, mapErr("stats "+t.schema.Name, err)
		}
		st.Total += int(vis)
		st.Deleted += int(del)
		st.Synced += int(synced)
		st.Unsynced += int(total - synced)
		st.Quantity += int(qty)
		if st.ByCategory != nil && vis > 0 {
			st.ByCategory[cat] += int(vis)
		}
	}
	return st, mapErr("stats "+t.schema.Name, rows.Err())
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, mapErr("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapErr("exec", err)
	}
	return n > 0, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// mapErr переводит ошибки драйвера в таксономию repo.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, repo.ErrDuplicateKey)
	}
	return &repo.StorageError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
