package repository

import (
	"context"

	"orders-management/internal/mapper"
	"orders-management/internal/model"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// BillRepository stores bills. Bills are never updated after insert.
type BillRepository struct {
	crud[model.Bill]
	gateway validation.Gateway
}

func NewBillRepository(s *store.Store, gw validation.Gateway) *BillRepository {
	m := mapper.MustNew(model.BillSchema, model.BillCodec, s.Dialect(), mapper.WithQueryLog(s.QueryLog()))
	return &BillRepository{crud: newCrud(s, m), gateway: gw}
}

// WithTx returns a copy bound to q.
func (r *BillRepository) WithTx(q store.Querier) *BillRepository {
	return &BillRepository{crud: r.crud.withTx(q), gateway: r.gateway}
}

// Insert assigns the next free id to b, validates it and stores it.
func (r *BillRepository) Insert(ctx context.Context, b model.Bill) (model.Bill, error) {
	return r.insert(ctx, b, func(_ store.Querier, b model.Bill) error {
		return r.gateway.ValidateBill(b)
	})
}

// FindByOrder returns the bills issued for an order.
func (r *BillRepository) FindByOrder(ctx context.Context, orderID int64) ([]model.Bill, error) {
	return r.m.FindBy(ctx, r.q, "order_id", orderID)
}
