package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// App holds runtime configuration shared by the API server and the CLI.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"dsa-vault"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Store    Store
	Postgres Postgres
	Redis    Redis
}

// Store selects where the question snapshot lives.
type Store struct {
	Driver  string `env:"STORE_DRIVER" envDefault:"file"`
	Slot    string `env:"STORE_SLOT" envDefault:"dsaQuestions"`
	FileDir string `env:"STORE_FILE_DIR" envDefault:"data"`
}

// Postgres captures connection info for the postgres driver.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"4"`
}

// ConnString renders the keyword/value connection string for a single connection.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// DSN is ConnString plus the pgxpool sizing keys.
func (p Postgres) DSN() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.ConnString(), p.MaxConns)
}

// Redis holds connection settings for the redis driver.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the selected store driver depends on.
func (c *App) Validate() error {
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.FileDir == "" {
			return fmt.Errorf("STORE_FILE_DIR must be set for the file driver")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR must be set for the redis driver")
		}
	case DriverPostgres:
		if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.Database == "" {
			return fmt.Errorf("PG_USER, PG_PASSWORD and PG_DATABASE must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want file, redis or postgres)", c.Store.Driver)
	}
	if c.Store.Slot == "" {
		return fmt.Errorf("STORE_SLOT must not be empty")
	}
	return nil
}
