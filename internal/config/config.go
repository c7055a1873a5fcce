// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/storage"
)

// Config holds the server settings. Fields left unset in the environment
// keep the values from Default.
type Config struct {
	Port string `env:"PORT"`

	StoreDriver   string `env:"STORE_DRIVER"`
	DBPath        string `env:"DB_PATH"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"`

	TemplateDir string `env:"TEMPLATE_DIR"`
	StaticDir   string `env:"STATIC_DIR"`
	DateLayout  string `env:"DATE_LAYOUT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	RateLimit  float64 `env:"RATE_LIMIT"`
	RateBurst  int     `env:"RATE_BURST"`
	CORSOrigin string  `env:"CORS_ORIGIN"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:            "3000",
		StoreDriver:     storage.DriverSQLite,
		DBPath:          "expenses.db",
		MongoDatabase:   "expense_tracker",
		TemplateDir:     "web/templates",
		StaticDir:       "web/static",
		DateLayout:      "1/2/2006",
		LogLevel:        "info",
		LogFormat:       "text",
		RateBurst:       20,
		CORSOrigin:      "*",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads envFile (ignored when missing) into the process environment
// and decodes the environment onto Default. Variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case storage.DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite store")
		}
	case storage.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case storage.DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RateLimit < 0 {
		return errors.New("RATE_LIMIT must not be negative")
	}
	return nil
}

// StoreOptions translates the settings into storage options.
func (c Config) StoreOptions() storage.Options {
	return storage.Options{
		Driver:        c.StoreDriver,
		Path:          c.DBPath,
		DSN:           c.DatabaseURL,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}

// Logger builds the application logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger() (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return logger, nil
}
