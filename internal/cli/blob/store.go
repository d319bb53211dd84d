// Package blob переносит снимки между локальным каталогом и объектным хранилищем.
package blob

import (
	"context"
	"io"
)

// ObjectStore — удалённое объектное хранилище.
type ObjectStore interface {
	// Put загружает объект. Существующий объект с тем же ключом не перезаписывается.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PublicURL возвращает публичный адрес объекта.
	PublicURL(key string) string
}
