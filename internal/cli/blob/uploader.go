package blob

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	fsrepo "JackTrack/internal/cli/repo/fs"

	"go.uber.org/zap"
)

// Uploader загружает локальные снимки в объектное хранилище.
// Любая ошибка превращается в пустую ссылку: запись синхронизируется без изображения.
type Uploader struct {
	store ObjectStore
	log   *zap.SugaredLogger
	now   func() time.Time
}

// NewUploader создаёт загрузчик. store == nil означает, что хранилище не настроено.
func NewUploader(store ObjectStore, log *zap.SugaredLogger) *Uploader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Uploader{store: store, log: log, now: time.Now}
}

// Upload возвращает удалённую ссылку на снимок ref записи kind/id.
//
//   - пустой ref: ""
//   - ref уже http(s): ref без повторной загрузки
//   - локальный файл: загрузка под ключом {kind}_{id}_{unixmillis}.jpg, публичный URL или "" при ошибке
func (u *Uploader) Upload(ctx context.Context, kind, id, ref string) string {
	if strings.TrimSpace(ref) == "" {
		return ""
	}
	path, local := fsrepo.LocalPath(ref)
	if !local {
		return ref
	}
	if !fsrepo.Exists(path) {
		u.log.Warnw("image upload skipped: file not found", "kind", kind, "id", id, "path", path)
		return ""
	}
	if u.store == nil {
		u.log.Warnw("image upload skipped: object store not configured", "kind", kind, "id", id)
		return ""
	}
	url, err := u.upload(ctx, kind, id, path)
	if err != nil {
		u.log.Warnw("image upload failed", "kind", kind, "id", id, "path", path, "error", err)
		return ""
	}
	u.log.Debugw("image uploaded", "kind", kind, "id", id, "url", url)
	return url
}

func (u *Uploader) upload(ctx context.Context, kind, id, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	// ключ объекта всегда с расширением .jpg, исходный формат остаётся в Content-Type
	key := fsrepo.FileName(kind, id, u.now(), ".jpg")
	if err := u.store.Put(ctx, key, f, st.Size(), contentType); err != nil {
		return "", err
	}
	return u.store.PublicURL(key), nil
}
