package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StateStore — файловое хранилище токена устройства и отметок последней синхронизации.
type StateStore struct {
	Dir string
}

// NewStateStore создаёт хранилище в каталоге dir (обычно рядом с файлом БД).
func NewStateStore(dir string) *StateStore {
	return &StateStore{Dir: dir}
}

func (s *StateStore) path(name string) (string, error) {
	if s.Dir == "" {
		return "", errors.New("state dir is not set")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

func (s *StateStore) write(name, value string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

// read читает файл и обрезает завершающие пробелы и переводы строки.
func (s *StateStore) read(name string) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	v := strings.TrimRight(string(b), " \t\r\n")
	if v == "" {
		return "", errors.New("empty " + name + " file")
	}
	return v, nil
}

// SaveToken сохраняет токен устройства.
func (s *StateStore) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	return s.write("device_token", token)
}

// LoadToken читает токен устройства.
func (s *StateStore) LoadToken() (string, error) {
	return s.read("device_token")
}

// SaveLastSync запоминает время последней успешной синхронизации вида kind.
func (s *StateStore) SaveLastSync(kind string, at time.Time) error {
	if kind == "" {
		return errors.New("empty kind")
	}
	return s.write("last_sync_"+kind, at.UTC().Format(time.RFC3339))
}

// LoadLastSync возвращает время последней синхронизации; нулевое время, если её не было.
func (s *StateStore) LoadLastSync(kind string) (time.Time, error) {
	if kind == "" {
		return time.Time{}, errors.New("empty kind")
	}
	v, err := s.read("last_sync_" + kind)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
