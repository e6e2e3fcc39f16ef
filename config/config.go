package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverFirestore = "firestore"
	StoreDriverPostgres  = "postgres"
	StoreDriverMemory    = "memory"
)

var ErrStoreNotConfigured = errors.New("document store is not configured")

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort         int
	JWTSecretKey       string
	LogLevel           string
	CORSAllowedOrigins []string

	Store StoreConfig
	R2    R2Config
}

// StoreConfig описывает подключение к документному хранилищу.
type StoreConfig struct {
	Driver              string
	FirestoreProjectID  string
	FirestoreDatabaseID string
	DatabaseURL         string
	Timeout             time.Duration
}

// R2Config - необязательное объектное хранилище для аватаров. Пустой AccountID отключает загрузки.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	portStr := getEnvOrDefault("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("STORE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT environment variable: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", timeout)
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	cfg := &Config{
		ServerPort:         port,
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		Store: StoreConfig{
			Driver:              strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverFirestore)),
			FirestoreProjectID:  projectID,
			FirestoreDatabaseID: os.Getenv("FIRESTORE_DATABASE_ID"),
			DatabaseURL:         os.Getenv("DATABASE_URL"),
			Timeout:             timeout,
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

// Validate проверяет, что для выбранного драйвера заданы все нужные параметры.
func (c StoreConfig) Validate() error {
	switch c.Driver {
	case StoreDriverFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("%w: FIRESTORE_PROJECT_ID (or GOOGLE_CLOUD_PROJECT) is not set", ErrStoreNotConfigured)
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is not set", ErrStoreNotConfigured)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrStoreNotConfigured, c.Driver)
	}
	return nil
}

// SlogLevel переводит LOG_LEVEL в уровень slog; неизвестное значение - info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Enabled сообщает, заданы ли параметры объектного хранилища.
func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
