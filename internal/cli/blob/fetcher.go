package blob

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	fsrepo "JackTrack/internal/cli/repo/fs"

	"go.uber.org/zap"
)

// Fetcher скачивает удалённые снимки в локальный каталог при загрузке записей с сервера.
type Fetcher struct {
	http *http.Client
	dir  *fsrepo.ImageDir
	log  *zap.SugaredLogger
}

func NewFetcher(dir *fsrepo.ImageDir, timeout time.Duration, log *zap.SugaredLogger) *Fetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fetcher{http: &http.Client{Timeout: timeout}, dir: dir, log: log}
}

// Localize возвращает путь к локальной копии url. При ошибке возвращает сам url.
// Локальные и пустые ссылки возвращаются без изменений.
func (f *Fetcher) Localize(ctx context.Context, kind, id, url string) string {
	if _, local := fsrepo.LocalPath(url); local || url == "" {
		return url
	}
	if f == nil || f.dir == nil {
		return url
	}
	p, err := f.download(ctx, kind, id, url)
	if err != nil {
		f.log.Warnw("image download failed, keeping remote url", "kind", kind, "id", id, "url", url, "error", err)
		return url
	}
	return p
}

func (f *Fetcher) download(ctx context.Context, kind, id, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	ext := path.Ext(strings.SplitN(url, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return f.dir.Save(kind, id, ext, resp.Body)
}
