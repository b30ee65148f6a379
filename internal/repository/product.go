package repository

import (
	"context"
	"fmt"

	"orders-management/internal/apperr"
	"orders-management/internal/mapper"
	"orders-management/internal/model"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// ProductRepository stores products and moves their stock.
type ProductRepository struct {
	crud[model.Product]
	gateway   validation.Gateway
	decrement string
	restore   string
}

var _ validation.ProductLookup = (*ProductRepository)(nil)

func NewProductRepository(s *store.Store, gw validation.Gateway) *ProductRepository {
	d := s.Dialect()
	m := mapper.MustNew(model.ProductSchema, model.ProductCodec, d, mapper.WithQueryLog(s.QueryLog()))
	table, stock, id := d.Quote("product"), d.Quote("stock"), d.Quote("id")
	return &ProductRepository{
		crud:      newCrud(s, m),
		gateway:   gw,
		decrement: fmt.Sprintf("UPDATE %s SET %s = %s - ? WHERE %s = ? AND %s >= ?", table, stock, stock, id, stock),
		restore:   fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE %s = ?", table, stock, stock, id),
	}
}

// WithTx returns a copy bound to q.
func (r *ProductRepository) WithTx(q store.Querier) *ProductRepository {
	cp := *r
	cp.crud = r.crud.withTx(q)
	return &cp
}

// Insert assigns the next free id to p, validates it and stores it.
func (r *ProductRepository) Insert(ctx context.Context, p model.Product) (model.Product, error) {
	return r.insert(ctx, p, r.validate(ctx, true))
}

// Update validates p and overwrites the row with p.ID.
func (r *ProductRepository) Update(ctx context.Context, p model.Product) error {
	return r.update(ctx, p, r.validate(ctx, false))
}

func (r *ProductRepository) validate(ctx context.Context, isInsert bool) func(store.Querier, model.Product) error {
	return func(q store.Querier, p model.Product) error {
		return r.gateway.ValidateProduct(ctx, p, isInsert, r.WithTx(q))
	}
}

// FindByIDForUpdate loads the product and row-locks it when the backend
// supports row locks. Only meaningful on a transaction-bound repository.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	return r.m.FindByIDForUpdate(ctx, r.q, id)
}

func (r *ProductRepository) NameExists(ctx context.Context, name string) (bool, error) {
	return r.m.ExistsBy(ctx, r.q, "name", name)
}

// NameOwnedBy reports whether name belongs to the product with id.
func (r *ProductRepository) NameOwnedBy(ctx context.Context, name string, id int64) (bool, error) {
	return r.ownedBy(ctx, r.q, "name", name, id)
}

// DecrementStock takes qty units from the product in a single conditional
// update. It returns apperr.ErrInsufficientStock when fewer than qty units
// remain and *apperr.NotFoundError when the product is gone.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	query := r.q.Rebind(r.decrement)
	res, err := r.q.ExecContext(ctx, query, qty, id, qty)
	if err != nil {
		return store.Wrap("decrement stock", r.table(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("decrement stock", r.table(), err)
	}
	if n > 0 {
		return nil
	}
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &apperr.NotFoundError{Entity: r.table(), ID: id}
	}
	return apperr.ErrInsufficientStock
}

// RestoreStock gives qty units back to the product.
func (r *ProductRepository) RestoreStock(ctx context.Context, id int64, qty int) error {
	query := r.q.Rebind(r.restore)
	res, err := r.q.ExecContext(ctx, query, qty, id)
	if err != nil {
		return store.Wrap("restore stock", r.table(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("restore stock", r.table(), err)
	}
	if n == 0 {
		return &apperr.NotFoundError{Entity: r.table(), ID: id}
	}
	return nil
}
