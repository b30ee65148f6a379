package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending schema migration for cfg's dialect. It uses
// its own connection, which is closed before returning, so it can run before
// Open or against a live pool. Running it on an up-to-date schema is a no-op.
func Migrate(cfg Config) error {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Dialect.Name)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	url, err := cfg.Dialect.migrationURL(cfg.DSN)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("failed to initialise migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
