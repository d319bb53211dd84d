package main

import (
	"JackTrack/internal/auth"
	"JackTrack/internal/config"
	"JackTrack/internal/handlers"
	"JackTrack/internal/logger"
	"JackTrack/internal/middleware"
	"JackTrack/internal/repo"
	"JackTrack/internal/service"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	issueToken := flag.String("issue-token", "", "выпустить токен для устройства с указанным именем и выйти")
	tokenTTL := flag.Duration("token-ttl", 0, "срок действия выпускаемого токена (0 — бессрочный)")
	cfg := config.NewConfig()

	sugar, flush := logger.New(logger.Options{Format: cfg.LogFormat, File: cfg.LogFile})
	defer flush()

	if *issueToken != "" {
		if cfg.AuthSecret == "" {
			sugar.Fatalw("AUTH_SECRET is required to issue tokens")
		}
		tok, err := auth.GenerateToken(*issueToken, []byte(cfg.AuthSecret), *tokenTTL)
		if err != nil {
			sugar.Fatalw("failed to issue token", "error", err)
		}
		fmt.Println(tok)
		return
	}

	middleware.SetLogger(sugar) // передаём логгер в middleware

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	recordService := service.NewRecordService(repo.NewRecordRepository(gormDB), sugar)
	h := handlers.NewHandler(recordService, sugar, cfg)

	if cfg.AuthSecret == "" {
		sugar.Warnw("AUTH_SECRET is empty, API is open without authorization")
	}
	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN != "",
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	sugar.Infow("Starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
