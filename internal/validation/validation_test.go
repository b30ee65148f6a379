package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders-management/internal/apperr"
	"orders-management/internal/model"
	"orders-management/internal/testutil"
)

// fakeClients is an in-memory ClientLookup.
type fakeClients struct {
	rows map[int64]model.Client
	err  error
}

func (f fakeClients) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.rows[id]
	return ok, f.err
}

func (f fakeClients) EmailExists(_ context.Context, email string) (bool, error) {
	for _, c := range f.rows {
		if c.Email == email {
			return true, f.err
		}
	}
	return false, f.err
}

func (f fakeClients) PhoneExists(_ context.Context, phone string) (bool, error) {
	for _, c := range f.rows {
		if c.Phone == phone {
			return true, f.err
		}
	}
	return false, f.err
}

func (f fakeClients) EmailOwnedBy(_ context.Context, email string, id int64) (bool, error) {
	return f.rows[id].Email == email, f.err
}

func (f fakeClients) PhoneOwnedBy(_ context.Context, phone string, id int64) (bool, error) {
	return f.rows[id].Phone == phone, f.err
}

type fakeProducts map[int64]model.Product

func (f fakeProducts) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f[id]
	return ok, nil
}

func (f fakeProducts) NameExists(_ context.Context, name string) (bool, error) {
	for _, p := range f {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeProducts) NameOwnedBy(_ context.Context, name string, id int64) (bool, error) {
	return f[id].Name == name, nil
}

type fakeOrders struct {
	orders, clients, products map[int64]bool
}

func (f fakeOrders) Exists(_ context.Context, id int64) (bool, error) { return f.orders[id], nil }
func (f fakeOrders) ClientExists(_ context.Context, id int64) (bool, error) {
	return f.clients[id], nil
}
func (f fakeOrders) ProductExists(_ context.Context, id int64) (bool, error) {
	return f.products[id], nil
}

func assertInvalid(t *testing.T, err error, field, msg string) {
	t.Helper()
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, msg, verr.Message)
}

var ana = model.Client{ID: 1, Name: "Ana", Address: "Main St 1", Email: "ana@example.com", Age: 30, Phone: "0711111111"}

func TestValidateClient(t *testing.T) {
	ctx := context.Background()
	rules := NewRules()
	lookup := fakeClients{rows: map[int64]model.Client{1: ana}}

	bob := model.Client{ID: 2, Name: "Bob", Address: "Side St 2", Email: "bob@example.com", Age: 18, Phone: "0722222222"}
	assert.NoError(t, rules.ValidateClient(ctx, bob, true, lookup))

	young := bob
	young.Age = 17
	assertInvalid(t, rules.ValidateClient(ctx, young, true, lookup), "age", "clients must be at least 18 years old")

	dupID := bob
	dupID.ID = 1
	assertInvalid(t, rules.ValidateClient(ctx, dupID, true, lookup), "id", "id already exists")

	dupEmail := bob
	dupEmail.Email = ana.Email
	assertInvalid(t, rules.ValidateClient(ctx, dupEmail, true, lookup), "email", "email already exists")

	dupPhone := bob
	dupPhone.Phone = ana.Phone
	assertInvalid(t, rules.ValidateClient(ctx, dupPhone, true, lookup), "phone", "phone number already exists")
}

func TestValidateClient_EmailUniquenessInsertVersusUpdate(t *testing.T) {
	ctx := context.Background()
	rules := NewRules()
	lookup := fakeClients{rows: map[int64]model.Client{1: ana}}

	// Re-inserting Ana's email under a new id is rejected.
	other := ana
	other.ID = 5
	other.Phone = "0799999999"
	assertInvalid(t, rules.ValidateClient(ctx, other, true, lookup), "email", "email already exists")

	// Updating Ana with her own email is accepted.
	updated := ana
	updated.Address = "New St 9"
	assert.NoError(t, rules.ValidateClient(ctx, updated, false, lookup))

	// Another client taking Ana's email on update is rejected.
	assertInvalid(t, rules.ValidateClient(ctx, other, false, lookup), "email", "email already exists")
}

func TestValidateClient_LookupErrorIsReturned(t *testing.T) {
	boom := errors.New("db down")
	lookup := fakeClients{rows: map[int64]model.Client{}, err: boom}
	err := NewRules().ValidateClient(context.Background(), ana, true, lookup)
	assert.ErrorIs(t, err, boom)
	assert.False(t, apperr.IsValidation(err))
}

type rejectAll struct{}

func (rejectAll) CheckClient(model.Client) error {
	return apperr.Invalid("client", "email", "email is not valid")
}

func (rejectAll) CheckProduct(model.Product) error {
	return apperr.Invalid("product", "name", "product name is not valid")
}

func TestFormatCheckerIsConsulted(t *testing.T) {
	ctx := context.Background()
	rules := NewRules(WithFormatChecker(rejectAll{}))

	err := rules.ValidateClient(ctx, ana, true, fakeClients{})
	assertInvalid(t, err, "email", "email is not valid")

	err = rules.ValidateProduct(ctx, model.Product{ID: 1, Name: "Widget", Price: 1, Stock: 0}, true, fakeProducts{})
	assertInvalid(t, err, "name", "product name is not valid")
}

func TestValidateProduct(t *testing.T) {
	ctx := context.Background()
	rules := NewRules()
	widget := model.Product{ID: 1, Name: "Widget", Price: 10, Stock: 5}
	lookup := fakeProducts{1: widget}

	gadget := model.Product{ID: 2, Name: "Gadget", Price: 0.5, Stock: 0}
	assert.NoError(t, rules.ValidateProduct(ctx, gadget, true, lookup))

	free := gadget
	free.Price = 0
	assertInvalid(t, rules.ValidateProduct(ctx, free, true, lookup), "price", "price must be greater than 0")

	negative := gadget
	negative.Stock = -1
	assertInvalid(t, rules.ValidateProduct(ctx, negative, true, lookup), "stock", "product stock cannot be negative")

	dupName := gadget
	dupName.Name = "Widget"
	assertInvalid(t, rules.ValidateProduct(ctx, dupName, true, lookup), "name", "product name already exists")
	assertInvalid(t, rules.ValidateProduct(ctx, dupName, false, lookup), "name", "product name already exists")

	restocked := widget
	restocked.Stock = 50
	assert.NoError(t, rules.ValidateProduct(ctx, restocked, false, lookup))
	assertInvalid(t, rules.ValidateProduct(ctx, restocked, true, lookup), "id", "id already exists")
}

func TestValidateOrder(t *testing.T) {
	ctx := context.Background()
	rules := NewRules()
	lookup := fakeOrders{
		orders:   map[int64]bool{1: true},
		clients:  map[int64]bool{1: true},
		products: map[int64]bool{1: true},
	}

	assert.NoError(t, rules.ValidateOrder(ctx, model.Order{ID: 2, ClientID: 1, ProductID: 1, Quantity: 3}, true, lookup))
	assert.NoError(t, rules.ValidateOrder(ctx, model.Order{ID: 1, ClientID: 1, ProductID: 1, Quantity: 3}, false, lookup))

	tests := []struct {
		name  string
		order model.Order
		field string
		msg   string
	}{
		{"zero quantity", model.Order{ID: 2, ClientID: 1, ProductID: 1}, "quantity", "order quantity must be greater than 0"},
		{"unknown client", model.Order{ID: 2, ClientID: 9, ProductID: 1, Quantity: 1}, "client_id", "client id does not exist"},
		{"unknown product", model.Order{ID: 2, ClientID: 1, ProductID: 9, Quantity: 1}, "product_id", "product id does not exist"},
		{"taken id", model.Order{ID: 1, ClientID: 1, ProductID: 1, Quantity: 1}, "id", "id already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertInvalid(t, rules.ValidateOrder(ctx, tt.order, true, lookup), tt.field, tt.msg)
		})
	}
}

func TestValidateBill(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := testutil.NewFixedClock(now)
	rules := NewRules(WithClock(clock.Now))

	assert.NoError(t, rules.ValidateBill(model.Bill{ID: 1, OrderID: 1, TotalAmount: 30, CreatedAt: now}))
	assert.NoError(t, rules.ValidateBill(model.Bill{ID: 2, OrderID: 1, TotalAmount: 0.004, CreatedAt: now}))
	assertInvalid(t, rules.ValidateBill(model.Bill{TotalAmount: 0, CreatedAt: now}), "totalAmount", "total amount must be greater than 0")

	later := model.Bill{TotalAmount: 1, CreatedAt: now.Add(time.Minute)}
	assertInvalid(t, rules.ValidateBill(later), "createdAt", "date cannot be in the future")
	clock.Advance(time.Minute)
	assert.NoError(t, rules.ValidateBill(later))
}
