package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Встроенные SQL-миграции клиента (SQLite). Все DDL идемпотентны (IF NOT EXISTS).
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет недостающие миграции. Безопасно вызывать при каждом старте.
func Migrate(ctx context.Context, conn *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
