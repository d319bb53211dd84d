package sqlite

import (
	"context"
	"time"

	"JackTrack/internal/cli/repo"
)

// Tombstones — удаления, ещё не подтверждённые сервером.
type Tombstones struct {
	db *DB
}

var _ repo.TombstoneStore = (*Tombstones)(nil)

func NewTombstones(db *DB) *Tombstones {
	return &Tombstones{db: db}
}

func (s *Tombstones) Add(ctx context.Context, kind, id string) error {
	conn, err := s.db.Open(ctx)
	if err != nil {
		return &repo.StorageError{Op: "open", Err: err}
	}
	_, err = conn.ExecContext(ctx, `INSERT INTO tombstones(kind, id, deleted_at) VALUES(?, ?, ?)
ON CONFLICT(kind, id) DO UPDATE SET deleted_at = excluded.deleted_at`, kind, id, time.Now().UnixMicro())
	return mapErr("add tombstone", err)
}

func (s *Tombstones) List(ctx context.Context, kind string) ([]string, error) {
	conn, err := s.db.Open(ctx)
	if err != nil {
		return nil, &repo.StorageError{Op: "open", Err: err}
	}
	rows, err := conn.QueryContext(ctx, `SELECT id FROM tombstones WHERE kind = ? ORDER BY deleted_at`, kind)
	if err != nil {
		return nil, mapErr("list tombstones", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr("list tombstones", err)
		}
		ids = append(ids, id)
	}
	return ids, mapErr("list tombstones", rows.Err())
}

func (s *Tombstones) Has(ctx context.Context, kind, id string) (bool, error) {
	conn, err := s.db.Open(ctx)
	if err != nil {
		return false, &repo.StorageError{Op: "open", Err: err}
	}
	var n int
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tombstones WHERE kind = ? AND id = ?`, kind, id).Scan(&n)
	if err != nil {
		return false, mapErr("get tombstone", err)
	}
	return n > 0, nil
}

func (s *Tombstones) Remove(ctx context.Context, kind, id string) error {
	conn, err := s.db.Open(ctx)
	if err != nil {
		return &repo.StorageError{Op: "open", Err: err}
	}
	_, err = conn.ExecContext(ctx, `DELETE FROM tombstones WHERE kind = ? AND id = ?`, kind, id)
	return mapErr("remove tombstone", err)
}
