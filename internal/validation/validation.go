// Package validation enforces the business rules each entity must satisfy
// before it is written. Free-text format rules (names, phones, addresses,
// email syntax) are delegated to a FormatChecker.
package validation

import (
	"context"
	"errors"
	"time"

	"orders-management/internal/apperr"
	"orders-management/internal/model"
)

const (
	MinClientAge = 18
	MinPrice     = 0.0
	MinStock     = 0
	MinQuantity  = 0
	MinAmount    = 0.0
)

// ClientLookup answers the existence questions client rules depend on.
type ClientLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	EmailOwnedBy(ctx context.Context, email string, id int64) (bool, error)
	PhoneOwnedBy(ctx context.Context, phone string, id int64) (bool, error)
}

// ProductLookup answers the existence questions product rules depend on.
type ProductLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
	NameOwnedBy(ctx context.Context, name string, id int64) (bool, error)
}

// OrderLookup answers the existence questions order rules depend on.
type OrderLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
	ClientExists(ctx context.Context, id int64) (bool, error)
	ProductExists(ctx context.Context, id int64) (bool, error)
}

// Gateway validates an entity before insert (isInsert) or update.
// A rule violation is returned as *apperr.ValidationError; lookup failures
// are returned unchanged.
type Gateway interface {
	ValidateClient(ctx context.Context, c model.Client, isInsert bool, lookup ClientLookup) error
	ValidateProduct(ctx context.Context, p model.Product, isInsert bool, lookup ProductLookup) error
	ValidateOrder(ctx context.Context, o model.Order, isInsert bool, lookup OrderLookup) error
	ValidateBill(b model.Bill) error
}

// FormatChecker validates free-text fields. Implementations return a
// *apperr.ValidationError for malformed input.
type FormatChecker interface {
	CheckClient(c model.Client) error
	CheckProduct(p model.Product) error
}

// NoFormatCheck accepts every value.
type NoFormatCheck struct{}

func (NoFormatCheck) CheckClient(model.Client) error   { return nil }
func (NoFormatCheck) CheckProduct(model.Product) error { return nil }

// Option configures Rules.
type Option func(*Rules)

// WithFormatChecker plugs in free-text format validation.
func WithFormatChecker(fc FormatChecker) Option {
	return func(r *Rules) {
		if fc != nil {
			r.format = fc
		}
	}
}

// WithClock replaces time.Now for the bill date rule.
func WithClock(now func() time.Time) Option {
	return func(r *Rules) {
		if now != nil {
			r.now = now
		}
	}
}

// Rules is the default Gateway.
type Rules struct {
	format FormatChecker
	now    func() time.Time
}

var _ Gateway = (*Rules)(nil)

// NewRules creates the default rule set.
func NewRules(opts ...Option) *Rules {
	r := &Rules{
		format: NoFormatCheck{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rules) ValidateClient(ctx context.Context, c model.Client, isInsert bool, lookup ClientLookup) error {
	if c.Age < MinClientAge {
		return apperr.Invalid("client", "age", "clients must be at least %d years old", MinClientAge)
	}
	if err := r.format.CheckClient(c); err != nil {
		return err
	}
	if isInsert {
		if err := taken(ctx, "client", c.ID, lookup.Exists); err != nil {
			return err
		}
	}
	if err := unique(ctx, isInsert, c.Email, c.ID, lookup.EmailExists, lookup.EmailOwnedBy); err != nil {
		return fieldErr("client", "email", "email already exists", err)
	}
	if err := unique(ctx, isInsert, c.Phone, c.ID, lookup.PhoneExists, lookup.PhoneOwnedBy); err != nil {
		return fieldErr("client", "phone", "phone number already exists", err)
	}
	return nil
}

func (r *Rules) ValidateProduct(ctx context.Context, p model.Product, isInsert bool, lookup ProductLookup) error {
	if p.Price <= MinPrice {
		return apperr.Invalid("product", "price", "price must be greater than %v", MinPrice)
	}
	if p.Stock < MinStock {
		return apperr.Invalid("product", "stock", "product stock cannot be negative")
	}
	if err := r.format.CheckProduct(p); err != nil {
		return err
	}
	if isInsert {
		if err := taken(ctx, "product", p.ID, lookup.Exists); err != nil {
			return err
		}
	}
	if err := unique(ctx, isInsert, p.Name, p.ID, lookup.NameExists, lookup.NameOwnedBy); err != nil {
		return fieldErr("product", "name", "product name already exists", err)
	}
	return nil
}

func (r *Rules) ValidateOrder(ctx context.Context, o model.Order, isInsert bool, lookup OrderLookup) error {
	if o.Quantity <= MinQuantity {
		return apperr.Invalid("order", "quantity", "order quantity must be greater than %d", MinQuantity)
	}
	ok, err := lookup.ClientExists(ctx, o.ClientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid("order", "client_id", "client id does not exist")
	}
	ok, err = lookup.ProductExists(ctx, o.ProductID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid("order", "product_id", "product id does not exist")
	}
	if isInsert {
		return taken(ctx, "order", o.ID, lookup.Exists)
	}
	return nil
}

func (r *Rules) ValidateBill(b model.Bill) error {
	if b.TotalAmount <= MinAmount {
		return apperr.Invalid("bill", "totalAmount", "total amount must be greater than %v", MinAmount)
	}
	if b.CreatedAt.After(r.now()) {
		return apperr.Invalid("bill", "createdAt", "date cannot be in the future")
	}
	return nil
}

func taken(ctx context.Context, entity string, id int64, exists func(context.Context, int64) (bool, error)) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		return apperr.Invalid(entity, "id", "id already exists")
	}
	return nil
}

// errDuplicate marks a uniqueness violation until fieldErr names the field.
var errDuplicate = errors.New("duplicate value")

// unique fails when value is already used, unless this is an update and the
// row being updated is the one that owns it.
func unique(
	ctx context.Context,
	isInsert bool,
	value string,
	id int64,
	exists func(context.Context, string) (bool, error),
	ownedBy func(context.Context, string, int64) (bool, error),
) error {
	used, err := exists(ctx, value)
	if err != nil || !used {
		return err
	}
	if isInsert {
		return errDuplicate
	}
	owned, err := ownedBy(ctx, value, id)
	if err != nil {
		return err
	}
	if !owned {
		return errDuplicate
	}
	return nil
}

func fieldErr(entity, field, msg string, err error) error {
	if errors.Is(err, errDuplicate) {
		return apperr.Invalid(entity, field, "%s", msg)
	}
	return err
}
