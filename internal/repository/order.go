package repository

import (
	"context"

	"orders-management/internal/mapper"
	"orders-management/internal/model"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// OrderRepository stores orders. It also answers whether the referenced
// client and product exist, which order validation needs.
type OrderRepository struct {
	crud[model.Order]
	gateway  validation.Gateway
	clients  *mapper.Mapper[model.Client]
	products *mapper.Mapper[model.Product]
}

var _ validation.OrderLookup = (*OrderRepository)(nil)

func NewOrderRepository(s *store.Store, gw validation.Gateway) *OrderRepository {
	d, log := s.Dialect(), mapper.WithQueryLog(s.QueryLog())
	return &OrderRepository{
		crud:     newCrud(s, mapper.MustNew(model.OrderSchema, model.OrderCodec, d, log)),
		gateway:  gw,
		clients:  mapper.MustNew(model.ClientSchema, model.ClientCodec, d, log),
		products: mapper.MustNew(model.ProductSchema, model.ProductCodec, d, log),
	}
}

// WithTx returns a copy bound to q.
func (r *OrderRepository) WithTx(q store.Querier) *OrderRepository {
	cp := *r
	cp.crud = r.crud.withTx(q)
	return &cp
}

// Insert assigns the next free id to o, validates it and stores it.
func (r *OrderRepository) Insert(ctx context.Context, o model.Order) (model.Order, error) {
	return r.insert(ctx, o, r.validate(ctx, true))
}

// Update validates o and overwrites the row with o.ID.
func (r *OrderRepository) Update(ctx context.Context, o model.Order) error {
	return r.update(ctx, o, r.validate(ctx, false))
}

func (r *OrderRepository) validate(ctx context.Context, isInsert bool) func(store.Querier, model.Order) error {
	return func(q store.Querier, o model.Order) error {
		return r.gateway.ValidateOrder(ctx, o, isInsert, r.WithTx(q))
	}
}

func (r *OrderRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return r.clients.Exists(ctx, r.q, id)
}

func (r *OrderRepository) ProductExists(ctx context.Context, id int64) (bool, error) {
	return r.products.Exists(ctx, r.q, id)
}
