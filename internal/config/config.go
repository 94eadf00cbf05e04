package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Storage drivers for the durable token slot.
const (
	StorageDriverFile     = "file"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config aggregates runtime configuration for the console.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Backend  BackendConfig  `koanf:"backend"`
	Storage  StorageConfig  `koanf:"storage"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	Logger   LoggerConfig   `koanf:"log"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `koanf:"name"`
	Env                   string `koanf:"env"`
	Host                  string `koanf:"host"`
	Port                  string `koanf:"port"`
	Version               string `koanf:"version"`
	RequestTimeoutSeconds int    `koanf:"request_timeout_seconds"`
}

// BackendConfig locates the external authentication and GraphQL endpoints.
type BackendConfig struct {
	LoginURL       string `koanf:"login_url"`
	GraphQLURL     string `koanf:"graphql_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// StorageConfig selects where the session token is persisted.
type StorageConfig struct {
	Driver   string `koanf:"driver"`
	FilePath string `koanf:"file_path"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `koanf:"dsn"`
	MaxConns       int32  `koanf:"max_conns"`
	MinConns       int32  `koanf:"min_conns"`
	RunMigrations  bool   `koanf:"run_migrations"`
	ConnMaxIdleSec int32  `koanf:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `koanf:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `koanf:"level"`
}

// sections are the env var prefixes Load reads; APP_PORT maps to app.port.
var sections = []string{"app", "backend", "storage", "postgres", "redis", "log"}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:                  "recommendation-console",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "3000",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
		},
		Backend: BackendConfig{
			LoginURL:       "http://localhost:8080/api/auth/login",
			GraphQLURL:     "http://localhost:8080/graphql",
			TimeoutSeconds: 15,
		},
		Storage: StorageConfig{
			Driver:   StorageDriverFile,
			FilePath: "data/local-storage.json",
		},
		Postgres: PostgresConfig{
			MaxConns:       4,
			MinConns:       1,
			RunMigrations:  true,
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the optional env files and the process
// environment, applying defaults where possible. With no files given it
// tries ".env" and ignores its absence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps BACKEND_LOGIN_URL to backend.login_url and drops variables
// outside the known sections.
func envKey(name string) string {
	lower := strings.ToLower(name)
	section, rest, ok := strings.Cut(lower, "_")
	if !ok || rest == "" {
		return ""
	}
	for _, known := range sections {
		if section == known {
			return section + "." + rest
		}
	}
	return ""
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverFile:
		if strings.TrimSpace(c.Storage.FilePath) == "" {
			return fmt.Errorf("%w: STORAGE_FILE_PATH is required for the file driver", ErrInvalidConfig)
		}
	case StorageDriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required for the redis driver", ErrInvalidConfig)
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return fmt.Errorf("%w: POSTGRES_DSN is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Backend.LoginURL == "" || c.Backend.GraphQLURL == "" {
		return fmt.Errorf("%w: BACKEND_LOGIN_URL and BACKEND_GRAPHQL_URL are required", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds each outbound backend call.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// IsProduction reports whether APP_ENV is production.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// Hostname is used in log fields when the process runs in a container.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
