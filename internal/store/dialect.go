package store

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect captures the differences between the supported SQL backends that
// the generic mapper cares about.
type Dialect struct {
	// Name is both the database/sql driver name and the migration directory.
	Name string
	// quote opens and closes an identifier.
	quote string
	// RowLock is appended to a SELECT to lock the returned rows for the
	// rest of the transaction. Empty when the backend has no row locks.
	RowLock string
	// TableLock is executed once per locked table inside a transaction with
	// the table name as its only argument. Empty when unsupported.
	TableLock string
	// TableUnlock releases a TableLock that outlives the transaction. When
	// set, the transaction runs on a pinned connection and the unlock is
	// executed on it once the transaction has ended.
	TableUnlock string
	// SingleWriter backends get a pool of exactly one connection.
	SingleWriter bool
}

var (
	Postgres = Dialect{
		Name:      "postgres",
		quote:     `"`,
		RowLock:   " FOR UPDATE",
		TableLock: "SELECT pg_advisory_xact_lock(hashtext(?))",
	}
	SQLite = Dialect{
		Name:         "sqlite3",
		quote:        `"`,
		SingleWriter: true,
	}
	MySQL = Dialect{
		Name:        "mysql",
		quote:       "`",
		RowLock:     " FOR UPDATE",
		TableLock:   "SELECT GET_LOCK(?, -1)",
		TableUnlock: "SELECT RELEASE_LOCK(?)",
	}
)

// DialectFor resolves a store type name to a dialect.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql", "mariadb":
		return MySQL, nil
	default:
		return Dialect{}, &UnsupportedDialectError{Name: name}
	}
}

// Quote quotes a single identifier.
func (d Dialect) Quote(ident string) string {
	return d.quote + strings.ReplaceAll(ident, d.quote, d.quote+d.quote) + d.quote
}

// QuoteAll quotes every identifier in idents.
func (d Dialect) QuoteAll(idents []string) []string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return quoted
}

// driverDSN adapts a user supplied connection string to what the pool needs.
func (d Dialect) driverDSN(dsn string) (string, error) {
	switch d.Name {
	case SQLite.Name:
		if strings.Contains(dsn, "?") {
			return dsn, nil
		}
		// WAL for concurrent readers, immediate locks so a write transaction
		// never has to upgrade its lock half way through.
		return dsn + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", nil
	case MySQL.Name:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("failed to parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	default:
		return dsn, nil
	}
}

// migrationURL builds the golang-migrate database URL for a connection string.
func (d Dialect) migrationURL(dsn string) (string, error) {
	switch d.Name {
	case SQLite.Name:
		path, _, _ := strings.Cut(dsn, "?")
		return "sqlite3://" + path, nil
	case MySQL.Name:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("failed to parse mysql dsn: %w", err)
		}
		cfg.MultiStatements = true
		return "mysql://" + cfg.FormatDSN(), nil
	default:
		return dsn, nil
	}
}

// UnsupportedDialectError is returned when an unknown store type is requested.
type UnsupportedDialectError struct {
	Name string
}

func (e *UnsupportedDialectError) Error() string {
	return "unsupported store type: " + e.Name
}
