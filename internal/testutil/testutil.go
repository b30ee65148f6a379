// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"orders-management/internal/store"
)

// NullLog returns a logger that discards everything, plus its hook for
// assertions on what was logged.
func NullLog() (*logrus.Entry, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(log), hook
}

// OpenSQLite migrates a fresh sqlite database in a temp dir and opens it.
// The store is closed when the test ends.
func OpenSQLite(t *testing.T) *store.Store {
	t.Helper()
	cfg := store.Config{Dialect: store.SQLite, DSN: filepath.Join(t.TempDir(), "orders.db")}
	require.NoError(t, store.Migrate(cfg))

	log, _ := NullLog()
	s, err := store.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// FixedClock is a settable clock for code that takes a func() time.Time.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the current fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
