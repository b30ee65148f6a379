package store

import (
	"context"
	"sort"
	"sync"
)

// tableLocks serialises writers of the same table inside this process.
// Each table owns a one-slot semaphore so acquisition can honour ctx.
type tableLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newTableLocks() *tableLocks {
	return &tableLocks{slots: make(map[string]chan struct{})}
}

func (l *tableLocks) slot(table string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[table]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[table] = ch
	}
	return ch
}

// acquire locks every table in sorted order and returns the release func.
// Sorting gives all callers the same acquisition order.
func (l *tableLocks) acquire(ctx context.Context, tables []string) (func(), error) {
	names := sortedUnique(tables)
	held := make([]chan struct{}, 0, len(names))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, name := range names {
		ch := l.slot(name)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func sortedUnique(tables []string) []string {
	names := make([]string, 0, len(tables))
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if !seen[t] {
			seen[t] = true
			names = append(names, t)
		}
	}
	sort.Strings(names)
	return names
}
