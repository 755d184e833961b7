package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Dosada05/swiss-tournament/models"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// R2Config хранит параметры Cloudflare R2 для выгрузки таблиц.
type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	BucketName      string `env:"BUCKET_NAME"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

// Enabled reports whether any R2 setting was provided.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" || c.AccessKeyID != "" || c.SecretAccessKey != "" || c.BucketName != "" || c.PublicBaseURL != ""
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StorageDriver     string           `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string           `env:"DATABASE_URL"`
	DBConnectTimeout  time.Duration    `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	ServerPort        int              `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel          string           `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecretKey      string           `env:"JWT_SECRET_KEY"`
	AdminPasswordHash string           `env:"ADMIN_PASSWORD_HASH"`
	TokenTTL          time.Duration    `env:"TOKEN_TTL" envDefault:"24h"`
	ByePolicy         models.ByePolicy `env:"BYE_POLICY" envDefault:"drop"`
	TournamentName    string           `env:"TOURNAMENT_NAME" envDefault:"Swiss Tournament"`
	CORSOrigins       []string         `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ExportInterval    time.Duration    `env:"EXPORT_INTERVAL" envDefault:"0s"`
	R2                R2Config         `envPrefix:"R2_"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
		}
	case StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.StorageDriver))
	}

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY environment variable is not set"))
	}
	if c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH environment variable is not set"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if !c.ByePolicy.Valid() {
		errs = append(errs, fmt.Errorf("BYE_POLICY must be %q or %q, got %q", models.ByePolicyDrop, models.ByePolicySentinel, c.ByePolicy))
	}
	if c.ExportInterval < 0 {
		errs = append(errs, fmt.Errorf("EXPORT_INTERVAL must not be negative, got %s", c.ExportInterval))
	}
	if c.ExportInterval > 0 && !c.R2.Enabled() {
		errs = append(errs, errors.New("EXPORT_INTERVAL requires R2_* settings"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
