package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
)

// Querier is satisfied by both the pool and an open transaction, so every
// mapper and repository call can run inside or outside a transaction.
type Querier interface {
	sqlx.ExtContext
}

// Config holds what Open needs to build the connection pool.
type Config struct {
	Dialect      Dialect
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

// Store represents the database connection pool and its dialect.
type Store struct {
	db         *sqlx.DB
	dialect    Dialect
	locks      *tableLocks
	log        *logrus.Entry
	logQueries bool
}

// Open creates the bounded connection pool and verifies the connection.
func Open(ctx context.Context, cfg Config, log *logrus.Entry) (*Store, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	dsn, err := cfg.Dialect.driverDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Dialect.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = min(defaultMaxIdleConns, maxOpen)
	}
	if cfg.Dialect.SingleWriter {
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	log.WithFields(logrus.Fields{
		"dialect":        cfg.Dialect.Name,
		"max_open_conns": maxOpen,
	}).Debug("database pool ready")

	return &Store{
		db:         db,
		dialect:    cfg.Dialect,
		locks:      newTableLocks(),
		log:        log,
		logQueries: cfg.LogQueries,
	}, nil
}

// NewStoreFromDB constructs a Store from an existing *sql.DB. Useful for tests.
func NewStoreFromDB(db *sql.DB, dialect Dialect, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{
		db:      sqlx.NewDb(db, dialect.Name),
		dialect: dialect,
		locks:   newTableLocks(),
		log:     log,
	}
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the pool as a Querier.
func (s *Store) DB() Querier {
	return s.db
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Log returns the store's logger.
func (s *Store) Log() *logrus.Entry {
	return s.log
}

// QueryLog returns the logger used for SQL statement tracing, or nil when
// statement logging is off.
func (s *Store) QueryLog() *logrus.Entry {
	if !s.logQueries {
		return nil
	}
	return s.log
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return Wrap("ping", s.dialect.Name, s.db.PingContext(ctx))
}

// Atomically runs fn inside one transaction while holding the in-process
// lock of every listed table. Locks are taken before the transaction starts
// so a single-connection pool can never deadlock on them. On backends with
// table level advisory locks those are taken too, so other processes are
// excluded as well. fn's error is returned as is; the transaction is rolled
// back whenever fn or the commit fails.
func (s *Store) Atomically(ctx context.Context, tables []string, fn func(q Querier) error) error {
	release, err := s.locks.acquire(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", strings.Join(tables, ", "), err)
	}
	defer release()

	locked := sortedUnique(tables)
	begin := s.db.BeginTxx
	if s.dialect.TableUnlock != "" {
		// Session locks belong to the connection, not the transaction.
		conn, err := s.db.Connx(ctx)
		if err != nil {
			return Wrap("connect", strings.Join(tables, ","), err)
		}
		defer s.unlockTables(conn, locked)
		begin = conn.BeginTxx
	}

	tx, err := begin(ctx, nil)
	if err != nil {
		return Wrap("begin", strings.Join(tables, ","), err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if s.dialect.TableLock != "" {
		for _, table := range locked {
			if _, err := tx.ExecContext(ctx, tx.Rebind(s.dialect.TableLock), table); err != nil {
				return Wrap("lock", table, err)
			}
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return Wrap("commit", strings.Join(tables, ","), err)
	}
	return nil
}

// unlockTables releases the session locks held on conn and returns it to the
// pool. A failed release closes the connection for good, which drops the
// locks server side.
func (s *Store) unlockTables(conn *sqlx.Conn, tables []string) {
	query := s.db.Rebind(s.dialect.TableUnlock)
	for _, table := range tables {
		if _, err := conn.ExecContext(context.Background(), query, table); err != nil {
			s.log.WithError(err).WithField("table", table).Warn("failed to release table lock")
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
			break
		}
	}
	_ = conn.Close()
}
