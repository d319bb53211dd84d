package handlers_test

import (
	"JackTrack/internal/auth"
	"JackTrack/internal/config"
	"JackTrack/internal/handlers"
	"JackTrack/internal/model"
	"JackTrack/internal/repo"
	"JackTrack/internal/service"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

const testSecret = "test-secret"

// newTestRouter собирает роутер поверх in-memory SQLite.
func newTestRouter(t *testing.T, secret string) http.Handler {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.Record{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	logger := zap.NewNop().Sugar()
	svc := service.NewRecordService(repo.NewRecordRepository(db), logger)
	return handlers.NewHandler(svc, logger, &config.Config{AuthSecret: secret}).Router
}

func bearer(t *testing.T, secret string) string {
	t.Helper()
	tok, err := auth.GenerateToken("test-device", []byte(secret), time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + tok
}

func doRequest(t *testing.T, h http.Handler, method, path, body, authz string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
