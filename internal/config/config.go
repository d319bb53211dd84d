package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	LogFile     string `env:"LOG_FILE"`
	LogFormat   string `env:"LOG_FORMAT"`

	// Client-side settings
	ServerURL     string        `env:"-"`
	ClientDBPath  string        `env:"CLIENT_DB_PATH"`
	ImagesDir     string        `env:"IMAGES_DIR"`
	APIToken      string        `env:"API_TOKEN"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	ProbeInterval time.Duration `env:"PROBE_INTERVAL" envDefault:"15s"`
	OutboxSize    int           `env:"OUTBOX_SIZE" envDefault:"256"`
	SyncRetries   uint64        `env:"SYNC_RETRIES" envDefault:"2"`
	SyncBackoff   time.Duration `env:"SYNC_BACKOFF" envDefault:"500ms"`

	// Object storage for photos (S3-compatible)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	Version bool `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags override values taken from env
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь к sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	// Shared flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the JackTrack server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to a rotated file as well")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB")
	flag.StringVar(&cfg.ImagesDir, "images-dir", cfg.ImagesDir, "directory for captured and downloaded photos")
	flag.StringVar(&cfg.APIToken, "token", cfg.APIToken, "device token for the remote API")
	flag.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout of a single remote call")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "bucket for photo uploads")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 15 * time.Second
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = 256
	}
	if cfg.SyncBackoff <= 0 {
		cfg.SyncBackoff = 500 * time.Millisecond
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}

	// Fill client defaults if empty
	home, _ := os.UserHomeDir()
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(home, ".jacktrack", "jacktrack.db")
	}
	if cfg.ImagesDir == "" {
		cfg.ImagesDir = filepath.Join(filepath.Dir(cfg.ClientDBPath), "images")
	}
}
