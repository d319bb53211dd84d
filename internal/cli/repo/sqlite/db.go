package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DB — ленивый дескриптор локальной БД с однократной инициализацией схемы.
//
// Состояния: не открыта (conn == nil, pending == nil), инициализируется
// (pending != nil), готова (conn != nil). Все переходы под mu; параллельные
// вызовы Open ждут одну и ту же попытку.
type DB struct {
	path    string
	migrate func(ctx context.Context, conn *sql.DB) error

	mu      sync.Mutex
	conn    *sql.DB
	pending *initAttempt
}

type initAttempt struct {
	done chan struct{}
	conn *sql.DB
	err  error
}

// NewDB создаёт дескриптор для файла path. Сам файл открывается при первом Open.
func NewDB(path string) *DB {
	return &DB{path: path, migrate: Migrate}
}

// Path возвращает путь к файлу БД.
func (d *DB) Path() string { return d.path }

// Open возвращает готовое соединение, создавая файл и схему при первом вызове.
// Неудачная попытка не кэшируется: следующий вызов повторит инициализацию.
func (d *DB) Open(ctx context.Context) (*sql.DB, error) {
	d.mu.Lock()
	if d.conn != nil {
		conn := d.conn
		d.mu.Unlock()
		return conn, nil
	}
	if a := d.pending; a != nil {
		d.mu.Unlock()
		select {
		case <-a.done:
			return a.conn, a.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	a := &initAttempt{done: make(chan struct{})}
	d.pending = a
	d.mu.Unlock()

	d.run(context.WithoutCancel(ctx), a)
	return a.conn, a.err
}

func (d *DB) run(ctx context.Context, a *initAttempt) {
	defer func() {
		d.mu.Lock()
		if a.err == nil && a.conn != nil {
			d.conn = a.conn
		}
		d.pending = nil
		d.mu.Unlock()
		close(a.done)
	}()
	a.conn, a.err = d.initialize(ctx)
}

func (d *DB) initialize(ctx context.Context) (*sql.DB, error) {
	if d.path == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", "file:"+d.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}
	if err := d.migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	// один писатель: все обращения сериализуются через единственное соединение
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// Close закрывает соединение с БД. После Close дескриптор можно открыть снова.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	conn := d.conn
	d.conn = nil
	d.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
