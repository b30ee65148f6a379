package repository

import (
	"context"

	"orders-management/internal/mapper"
	"orders-management/internal/model"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// ClientRepository stores clients.
type ClientRepository struct {
	crud[model.Client]
	gateway validation.Gateway
}

var _ validation.ClientLookup = (*ClientRepository)(nil)

func NewClientRepository(s *store.Store, gw validation.Gateway) *ClientRepository {
	m := mapper.MustNew(model.ClientSchema, model.ClientCodec, s.Dialect(), mapper.WithQueryLog(s.QueryLog()))
	return &ClientRepository{crud: newCrud(s, m), gateway: gw}
}

// WithTx returns a copy bound to q.
func (r *ClientRepository) WithTx(q store.Querier) *ClientRepository {
	return &ClientRepository{crud: r.crud.withTx(q), gateway: r.gateway}
}

// Insert assigns the next free id to c, validates it and stores it.
func (r *ClientRepository) Insert(ctx context.Context, c model.Client) (model.Client, error) {
	return r.insert(ctx, c, r.validate(ctx, true))
}

// Update validates c against the other clients and overwrites the row with c.ID.
func (r *ClientRepository) Update(ctx context.Context, c model.Client) error {
	return r.update(ctx, c, r.validate(ctx, false))
}

func (r *ClientRepository) validate(ctx context.Context, isInsert bool) func(store.Querier, model.Client) error {
	return func(q store.Querier, c model.Client) error {
		return r.gateway.ValidateClient(ctx, c, isInsert, r.WithTx(q))
	}
}

func (r *ClientRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.m.ExistsBy(ctx, r.q, "email", email)
}

func (r *ClientRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return r.m.ExistsBy(ctx, r.q, "phone", phone)
}

// EmailOwnedBy reports whether email belongs to the client with id.
func (r *ClientRepository) EmailOwnedBy(ctx context.Context, email string, id int64) (bool, error) {
	return r.ownedBy(ctx, r.q, "email", email, id)
}

// PhoneOwnedBy reports whether phone belongs to the client with id.
func (r *ClientRepository) PhoneOwnedBy(ctx context.Context, phone string, id int64) (bool, error) {
	return r.ownedBy(ctx, r.q, "phone", phone, id)
}
