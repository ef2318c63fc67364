package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/envmanager/pkg/kvstore"
	"github.com/dmitrymomot/envmanager/pkg/logger"
)

// Prefix is prepended to every variable name.
const Prefix = "ENVCTL_"

// StoreKind names a key/value backend.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreFile     StoreKind = "file"
	StoreRedis    StoreKind = "redis"
	StorePostgres StoreKind = "postgres"
)

// Config is the envctl configuration.
type Config struct {
	AppID         string            `env:"APP_ID" envDefault:"envctl"`
	Store         StoreKind         `env:"STORE" envDefault:"file"`
	StoreDir      string            `env:"STORE_DIR"` // StoreDir overrides the per-user config directory of the file store.
	Table         string            `env:"TABLE"`     // Table is a pipe-delimited definitions file.
	Definitions   string            `env:"DEFINITIONS"`
	Production    bool              `env:"PRODUCTION"`
	ProductionMap map[string]string `env:"PRODUCTION_MAP"`
	LogLevel      string            `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string            `env:"LOG_FORMAT" envDefault:"text"`

	Redis    kvstore.RedisConfig    `envPrefix:"REDIS_"`
	Postgres kvstore.PostgresConfig `envPrefix:"PG_"`
}

// Load seeds the process environment from files, or from ./.env when none
// is given, then parses and validates Config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// ./.env is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrLoadingEnvFile, err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}

// Validate checks the store selection and log settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Redis.ConnectionURL == "" {
			return fmt.Errorf("%w: %s%s", ErrMissingConnection, Prefix, "REDIS_URL")
		}
	case StorePostgres:
		if c.Postgres.ConnectionString == "" {
			return fmt.Errorf("%w: %s%s", ErrMissingConnection, Prefix, "PG_URL")
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return errors.Join(ErrInvalidLogSetting, err)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return errors.Join(ErrInvalidLogSetting, err)
	}
	return nil
}
