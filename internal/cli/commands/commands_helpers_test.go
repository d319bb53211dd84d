package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"JackTrack/internal/config"
	"JackTrack/internal/handlers"
	"JackTrack/internal/model"
	"JackTrack/internal/repo"
	"JackTrack/internal/service"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// offlineURL — адрес, на котором никто не слушает.
const offlineURL = "http://127.0.0.1:1"

// withTempConfig создаёт конфиг клиента с базой и каталогом снимков в temp.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerURL:     serverURL,
		ClientDBPath:  filepath.Join(dir, "db", "jacktrack.db"),
		ImagesDir:     filepath.Join(dir, "images"),
		HTTPTimeout:   time.Second,
		ProbeInterval: 50 * time.Millisecond,
		OutboxSize:    32,
		SyncBackoff:   10 * time.Millisecond,
	}
}

// newServer поднимает настоящий API поверх in-memory SQLite.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Record{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	log := zap.NewNop().Sugar()
	h := handlers.NewHandler(service.NewRecordService(repo.NewRecordRepository(db), log), log, &config.Config{})
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)
	return ts
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// run выполняет команду и возвращает вывод.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	c, ok := Get(args[0])
	if !ok {
		t.Fatalf("command %s is not registered", args[0])
	}
	var err error
	out := withStdoutCapture(t, func() { err = c.Run(context.Background(), cfg, args[1:]) })
	return out, err
}

// createdID достаёт id из строки «✓ <kind> created: <id>».
func createdID(t *testing.T, out string) string {
	t.Helper()
	_, id, ok := strings.Cut(strings.TrimSpace(out), "created: ")
	if !ok || id == "" {
		t.Fatalf("no id in output: %q", out)
	}
	return id
}

func serverHas(t *testing.T, ts *httptest.Server, path string) bool {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
