package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageDir — локальный каталог снимков, по подкаталогу на вид сущности.
type ImageDir struct {
	Root string
	now  func() time.Time
}

func NewImageDir(root string) *ImageDir {
	return &ImageDir{Root: root, now: time.Now}
}

// FileName строит имя {kind}_{id}_{unixmillis}{ext}. Метка времени делает имя уникальным для каждой попытки.
func FileName(kind, id string, at time.Time, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s_%s_%d%s", kind, id, at.UnixMilli(), ext)
}

// LocalPath превращает ссылку на изображение в путь файловой системы.
// Для http(s)-ссылок и пустой строки возвращает false.
func LocalPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", false
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return "", false
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), true
	default:
		return ref, true
	}
}

// Exists сообщает, что по ссылке лежит обычный файл.
func Exists(ref string) bool {
	p, ok := LocalPath(ref)
	if !ok {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

// Save записывает r в каталог вида kind и возвращает путь к файлу.
// При ошибке частично записанный файл удаляется.
func (d *ImageDir) Save(kind, id, ext string, r io.Reader) (string, error) {
	if d.Root == "" {
		return "", errors.New("image dir is not set")
	}
	dir := filepath.Join(d.Root, kind)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	p := filepath.Join(dir, FileName(kind, id, now(), ext))
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", err
	}
	return p, nil
}

// Import копирует снимок src (например, с камеры) в каталог вида kind.
func (d *ImageDir) Import(kind, id, src string) (string, error) {
	p, ok := LocalPath(src)
	if !ok {
		return "", fmt.Errorf("not a local file: %s", src)
	}
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return d.Save(kind, id, filepath.Ext(p), f)
}
