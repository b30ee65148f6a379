// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"orders-management/internal/datastore"
	"orders-management/internal/fulfillment"
)

// DefaultPostgresConnString is used when STORE_TYPE selects postgres and no
// DB_CONN_STRING is set.
const DefaultPostgresConnString = "postgres://localhost:5432/postgres?sslmode=disable"

// Config mirrors the supported environment variables.
type Config struct {
	StoreType       string `envconfig:"STORE_TYPE" default:"sqlite3"`
	ConnString      string `envconfig:"DB_CONN_STRING"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"orders.db"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	LogQueries      bool   `envconfig:"DB_LOG_QUERIES" default:"false"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"`
	FulfillmentMode string `envconfig:"FULFILLMENT_MODE" default:"transaction"`
}

// Load reads .env (if any) and then the environment. Variables already set in
// the environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return c, nil
}

// DataStoreConfig returns the data store configuration for this environment.
func (c Config) DataStoreConfig(log *logrus.Entry) (datastore.Config, error) {
	mode, err := fulfillment.ParseMode(c.FulfillmentMode)
	if err != nil {
		return datastore.Config{}, err
	}

	config := datastore.Config{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		LogQueries:      c.LogQueries,
		FulfillmentMode: mode,
		Logger:          log,
	}

	switch strings.ToLower(c.StoreType) {
	case "sqlite", "sqlite3", "":
		config.Type = datastore.SQLiteStore
		config.ConnectionString = c.SQLitePath
		if c.ConnString != "" {
			config.ConnectionString = c.ConnString
		}
	case "postgresql", "postgres", "pg":
		config.Type = datastore.PostgreSQLStore
		config.ConnectionString = c.ConnString
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultPostgresConnString
		}
	case "mysql", "mariadb":
		config.Type = datastore.MySQLStore
		config.ConnectionString = c.ConnString
		if config.ConnectionString == "" {
			return datastore.Config{}, fmt.Errorf("DB_CONN_STRING is required for %s", c.StoreType)
		}
	default:
		return datastore.Config{}, &datastore.UnsupportedStoreTypeError{Type: c.StoreType}
	}
	return config, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch strings.ToLower(c.LogFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return log, nil
}
