package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Directory（IdPユーザーディレクトリAPI）
	DirectoryURL   string
	DirectoryToken string

	// Notification
	EmailRelayURL string // 空の場合はメール通知を無効化
	EmailSender   string
	RedisURL      string // 空の場合はプッシュ通知を無効化
	NotifyChannel string

	// Deadline Scanner
	DeadlineLookahead time.Duration
	ScanInterval      time.Duration

	// Cleanup
	TaskRetentionDays int

	// Rate Limit
	RateLimitGeneral int

	// HTTP client
	HTTPClientTimeout time.Duration

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.DirectoryURL = os.Getenv("DIRECTORY_URL")
	if cfg.DirectoryURL == "" {
		missing = append(missing, "DIRECTORY_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DirectoryToken = getEnvString("DIRECTORY_TOKEN", "")
	cfg.EmailRelayURL = getEnvString("EMAIL_RELAY_URL", "")
	cfg.EmailSender = getEnvString("EMAIL_SENDER", "")
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.NotifyChannel = getEnvString("NOTIFY_CHANNEL", "taskhub:notifications")
	cfg.DeadlineLookahead = getEnvDuration("DEADLINE_LOOKAHEAD", 24*time.Hour)
	cfg.ScanInterval = getEnvDuration("SCAN_INTERVAL", time.Hour)
	cfg.TaskRetentionDays = getEnvInt("TASK_RETENTION_DAYS", 90)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.HTTPClientTimeout = getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
