// Package repository exposes one facade per entity. Writes validate through
// the gateway and allocate ids under the table lock in the same transaction
// as the insert. Every repository can be rebound to an open transaction with
// WithTx so several writes commit together.
package repository

import (
	"context"

	"orders-management/internal/apperr"
	"orders-management/internal/mapper"
	"orders-management/internal/store"
)

// crud is the mapper-backed core every facade embeds.
type crud[T any] struct {
	store *store.Store
	q     store.Querier
	m     *mapper.Mapper[T]
	// bound is set when q is a transaction owned by the caller, who is then
	// responsible for holding the table locks.
	bound bool
}

func newCrud[T any](s *store.Store, m *mapper.Mapper[T]) crud[T] {
	return crud[T]{store: s, q: s.DB(), m: m}
}

func (c crud[T]) withTx(q store.Querier) crud[T] {
	c.q = q
	c.bound = true
	return c
}

func (c crud[T]) table() string {
	return c.m.Descriptor().Table
}

// run executes fn with the table locked, inside a new transaction unless the
// repository is already bound to one.
func (c crud[T]) run(ctx context.Context, fn func(q store.Querier) error) error {
	if c.bound {
		return fn(c.q)
	}
	return c.store.Atomically(ctx, []string{c.table()}, fn)
}

// FindByID returns the entity or *apperr.NotFoundError.
func (c crud[T]) FindByID(ctx context.Context, id int64) (T, error) {
	return c.m.FindByID(ctx, c.q, id)
}

// FindAll returns every entity ordered by id.
func (c crud[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.m.FindAll(ctx, c.q)
}

// Exists reports whether id is present.
func (c crud[T]) Exists(ctx context.Context, id int64) (bool, error) {
	return c.m.Exists(ctx, c.q, id)
}

// Delete removes id, or returns *apperr.NotFoundError when it is absent.
func (c crud[T]) Delete(ctx context.Context, id int64) error {
	return c.run(ctx, func(q store.Querier) error {
		n, err := c.m.Delete(ctx, q, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return &apperr.NotFoundError{Entity: c.table(), ID: id}
		}
		return nil
	})
}

// insert allocates the next id, validates the entity with its id set, then
// writes it. All three steps share one transaction.
func (c crud[T]) insert(ctx context.Context, e T, validate func(q store.Querier, e T) error) (T, error) {
	codec := c.m.Codec()
	err := c.run(ctx, func(q store.Querier) error {
		id, err := c.m.NextID(ctx, q)
		if err != nil {
			return err
		}
		codec.SetID(&e, id)
		if err := validate(q, e); err != nil {
			return err
		}
		return c.m.Insert(ctx, q, e)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

// update validates then overwrites the row with e's id. A missing id is a
// silent no-op.
func (c crud[T]) update(ctx context.Context, e T, validate func(q store.Querier, e T) error) error {
	id := c.m.Codec().ID(e)
	return c.run(ctx, func(q store.Querier) error {
		if err := validate(q, e); err != nil {
			return err
		}
		_, err := c.m.Update(ctx, q, e, id)
		return err
	})
}

// ownedBy reports whether the row with id has column equal to value.
func (c crud[T]) ownedBy(ctx context.Context, q store.Querier, column string, value any, id int64) (bool, error) {
	rows, err := c.m.FindBy(ctx, q, column, value)
	if err != nil {
		return false, err
	}
	codec := c.m.Codec()
	for _, r := range rows {
		if codec.ID(r) == id {
			return true, nil
		}
	}
	return false, nil
}
