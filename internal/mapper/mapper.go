// Package mapper implements generic CRUD over any entity that has a schema
// descriptor and a codec. Statements are generated once per mapper from the
// descriptor and run on whatever store.Querier the caller passes, so the same
// mapper serves the pool and open transactions alike.
package mapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"orders-management/internal/apperr"
	"orders-management/internal/schema"
	"orders-management/internal/store"
)

// Codec moves an entity in and out of a row. Values and Targets must follow
// the descriptor's column order.
type Codec[T any] struct {
	Values  func(T) []any
	Targets func(*T) []any
	ID      func(T) int64
	SetID   func(*T, int64)
}

// Statements holds the SQL generated for a descriptor, with ? placeholders.
type Statements struct {
	Insert     string
	Update     string
	Delete     string
	SelectByID string
	SelectAll  string
	CountByID  string
	SelectIDs  string
}

// Option configures a Mapper.
type Option func(*options)

type options struct {
	queryLog *logrus.Entry
}

// WithQueryLog traces every statement at debug level on log. A nil log
// disables tracing.
func WithQueryLog(log *logrus.Entry) Option {
	return func(o *options) {
		o.queryLog = log
	}
}

// Mapper performs CRUD for one entity type.
type Mapper[T any] struct {
	desc    schema.Descriptor
	codec   Codec[T]
	dialect store.Dialect
	sql     Statements
	keyIdx  int
	log     *logrus.Entry
}

// New builds a mapper after checking the descriptor and that the codec
// produces exactly one value per declared column.
func New[T any](desc schema.Descriptor, codec Codec[T], dialect store.Dialect, opts ...Option) (*Mapper[T], error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if codec.Values == nil || codec.Targets == nil || codec.ID == nil || codec.SetID == nil {
		return nil, fmt.Errorf("codec for %s is incomplete", desc.Table)
	}
	var zero T
	if n := len(codec.Values(zero)); n != len(desc.Columns) {
		return nil, fmt.Errorf("codec for %s yields %d values, descriptor declares %d columns", desc.Table, n, len(desc.Columns))
	}
	if n := len(codec.Targets(&zero)); n != len(desc.Columns) {
		return nil, fmt.Errorf("codec for %s yields %d scan targets, descriptor declares %d columns", desc.Table, n, len(desc.Columns))
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	return &Mapper[T]{
		desc:    desc,
		codec:   codec,
		dialect: dialect,
		sql:     buildStatements(desc, dialect),
		keyIdx:  desc.KeyIndex(),
		log:     o.queryLog,
	}, nil
}

// MustNew is New for package level mappers whose descriptors are constants.
func MustNew[T any](desc schema.Descriptor, codec Codec[T], dialect store.Dialect, opts ...Option) *Mapper[T] {
	m, err := New(desc, codec, dialect, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func buildStatements(desc schema.Descriptor, d store.Dialect) Statements {
	table := d.Quote(desc.Table)
	key := d.Quote(desc.PrimaryKey)
	cols := strings.Join(d.QuoteAll(desc.Names()), ", ")

	nonKey := desc.NonKey()
	sets := make([]string, len(nonKey))
	for i, c := range nonKey {
		sets[i] = d.Quote(c.Name) + " = ?"
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(desc.Columns)), ", ")

	return Statements{
		Insert:     fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, placeholders),
		Update:     fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), key),
		Delete:     fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key),
		SelectByID: fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", cols, table, key),
		SelectAll:  fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", cols, table, key),
		CountByID:  fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, key),
		SelectIDs:  fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", key, table, key),
	}
}

// SQL returns the generated statements.
func (m *Mapper[T]) SQL() Statements {
	return m.sql
}

// Descriptor returns the descriptor the mapper was built from.
func (m *Mapper[T]) Descriptor() schema.Descriptor {
	return m.desc
}

// Codec returns the mapper's codec.
func (m *Mapper[T]) Codec() Codec[T] {
	return m.codec
}

func (m *Mapper[T]) trace(query string, args []any) {
	if m.log != nil {
		m.log.WithFields(logrus.Fields{"table": m.desc.Table, "sql": query, "args": args}).Debug("executing statement")
	}
}

func (m *Mapper[T]) exec(ctx context.Context, q store.Querier, op, query string, args ...any) (int64, error) {
	query = q.Rebind(query)
	m.trace(query, args)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, store.Wrap(op, m.desc.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Wrap(op, m.desc.Table, err)
	}
	return n, nil
}

func (m *Mapper[T]) query(ctx context.Context, q store.Querier, query string, args ...any) ([]T, error) {
	query = q.Rebind(query)
	m.trace(query, args)
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, store.Wrap("select", m.desc.Table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var e T
		if err := rows.Scan(m.codec.Targets(&e)...); err != nil {
			return nil, store.Wrap("scan", m.desc.Table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("select", m.desc.Table, err)
	}
	return out, nil
}

func (m *Mapper[T]) count(ctx context.Context, q store.Querier, query string, args ...any) (int64, error) {
	query = q.Rebind(query)
	m.trace(query, args)
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, store.Wrap("select", m.desc.Table, err)
	}
	return n, nil
}

// Insert writes every column of e, key included.
func (m *Mapper[T]) Insert(ctx context.Context, q store.Querier, e T) error {
	_, err := m.exec(ctx, q, "insert", m.sql.Insert, m.codec.Values(e)...)
	return err
}

// Update overwrites the non-key columns of the row with the given id and
// returns the number of rows changed. Zero rows is not an error.
func (m *Mapper[T]) Update(ctx context.Context, q store.Querier, e T, id int64) (int64, error) {
	values := m.codec.Values(e)
	args := make([]any, 0, len(values))
	args = append(args, values[:m.keyIdx]...)
	args = append(args, values[m.keyIdx+1:]...)
	args = append(args, id)
	return m.exec(ctx, q, "update", m.sql.Update, args...)
}

// Delete removes the row with the given id and returns the number of rows
// removed. Deleting an absent id is not an error.
func (m *Mapper[T]) Delete(ctx context.Context, q store.Querier, id int64) (int64, error) {
	return m.exec(ctx, q, "delete", m.sql.Delete, id)
}

// FindByID loads one row. An absent id yields *apperr.NotFoundError.
func (m *Mapper[T]) FindByID(ctx context.Context, q store.Querier, id int64) (T, error) {
	return m.findOne(ctx, q, m.sql.SelectByID, id)
}

// FindByIDForUpdate is FindByID with the dialect's row lock appended, so the
// row stays locked until the surrounding transaction ends.
func (m *Mapper[T]) FindByIDForUpdate(ctx context.Context, q store.Querier, id int64) (T, error) {
	return m.findOne(ctx, q, m.sql.SelectByID+m.dialect.RowLock, id)
}

func (m *Mapper[T]) findOne(ctx context.Context, q store.Querier, query string, id int64) (T, error) {
	var zero T
	query = q.Rebind(query)
	m.trace(query, []any{id})
	row := q.QueryRowxContext(ctx, query, id)
	var e T
	if err := row.Scan(m.codec.Targets(&e)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, &apperr.NotFoundError{Entity: m.desc.Table, ID: id}
		}
		return zero, store.Wrap("select", m.desc.Table, err)
	}
	return e, nil
}

// FindAll returns every row ordered by primary key.
func (m *Mapper[T]) FindAll(ctx context.Context, q store.Querier) ([]T, error) {
	return m.query(ctx, q, m.sql.SelectAll)
}

// Exists reports whether a row with the given id is present.
func (m *Mapper[T]) Exists(ctx context.Context, q store.Querier, id int64) (bool, error) {
	n, err := m.count(ctx, q, m.sql.CountByID, id)
	return n > 0, err
}

// FindBy returns the rows whose column equals value.
func (m *Mapper[T]) FindBy(ctx context.Context, q store.Querier, column string, value any) ([]T, error) {
	if !m.desc.Has(column) {
		return nil, fmt.Errorf("table %s has no column %q", m.desc.Table, column)
	}
	cols := strings.Join(m.dialect.QuoteAll(m.desc.Names()), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s",
		cols, m.dialect.Quote(m.desc.Table), m.dialect.Quote(column), m.dialect.Quote(m.desc.PrimaryKey))
	return m.query(ctx, q, query, value)
}

// ExistsBy reports whether any row has column equal to value.
func (m *Mapper[T]) ExistsBy(ctx context.Context, q store.Querier, column string, value any) (bool, error) {
	if !m.desc.Has(column) {
		return false, fmt.Errorf("table %s has no column %q", m.desc.Table, column)
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", m.dialect.Quote(m.desc.Table), m.dialect.Quote(column))
	n, err := m.count(ctx, q, query, value)
	return n > 0, err
}

// IDs returns every primary key in ascending order.
func (m *Mapper[T]) IDs(ctx context.Context, q store.Querier) ([]int64, error) {
	query := q.Rebind(m.sql.SelectIDs)
	m.trace(query, nil)
	var ids []int64
	if err := sqlx.SelectContext(ctx, q, &ids, query); err != nil {
		return nil, store.Wrap("select", m.desc.Table, err)
	}
	return ids, nil
}

// NextID allocates the next id for this mapper's table with the gap rule.
// Callers must hold the table lock and insert on the same querier.
func (m *Mapper[T]) NextID(ctx context.Context, q store.Querier) (int64, error) {
	ids, err := m.IDs(ctx, q)
	if err != nil {
		return 0, err
	}
	return FirstGap(ids), nil
}
