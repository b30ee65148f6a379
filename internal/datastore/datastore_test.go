package datastore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders-management/internal/apperr"
	"orders-management/internal/fulfillment"
	"orders-management/internal/model"
	"orders-management/internal/testutil"
)

func newSQLiteDataStore(t *testing.T) DataStore {
	t.Helper()
	log, _ := testutil.NullLog()
	ds, err := NewDataStore(context.Background(), Config{
		Type:             SQLiteStore,
		ConnectionString: filepath.Join(t.TempDir(), "orders.db"),
		Logger:           log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	require.NoError(t, ds.InitDB(context.Background()))
	return ds
}

func TestNewDataStore_UnsupportedType(t *testing.T) {
	_, err := NewDataStore(context.Background(), Config{Type: "mongo"})
	var unsupported *UnsupportedStoreTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "unsupported store type: mongo", err.Error())
}

func TestInitDB_IsIdempotent(t *testing.T) {
	ds := newSQLiteDataStore(t)
	assert.NoError(t, ds.InitDB(context.Background()))
}

func TestReadCatalog(t *testing.T) {
	products, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, model.Product{Name: "Gadget", Price: 24.99, Stock: 12}, products[1])

	products, err = ReadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = ReadCatalog(strings.NewReader("products:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedCatalog_SkipsExistingNames(t *testing.T) {
	ds := newSQLiteDataStore(t)
	ctx := context.Background()
	products, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	added, err := ds.SeedCatalog(ctx, products)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = ds.SeedCatalog(ctx, products)
	require.NoError(t, err)
	assert.Zero(t, added)

	stored, err := ds.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{stored[0].ID, stored[1].ID, stored[2].ID})
}

func TestSeedCatalog_InvalidProductRollsBackAll(t *testing.T) {
	ds := newSQLiteDataStore(t)
	ctx := context.Background()

	_, err := ds.SeedCatalog(ctx, []model.Product{
		{Name: "Widget", Price: 10, Stock: 5},
		{Name: "Freebie", Price: 0, Stock: 1},
	})
	assert.True(t, apperr.IsValidation(err))

	stored, err := ds.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDataStore_ClientLifecycle(t *testing.T) {
	ds := newSQLiteDataStore(t)
	ctx := context.Background()

	c, err := ds.CreateClient(ctx, model.Client{Name: "Ana", Address: "Main St 1", Email: "ana@example.com", Age: 30, Phone: "0711111111"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = ds.CreateClient(ctx, model.Client{Name: "Kid", Address: "Main St 2", Email: "kid@example.com", Age: 12, Phone: "0722222222"})
	assert.True(t, apperr.IsValidation(err))

	c.Phone = "0799999999"
	require.NoError(t, ds.UpdateClient(ctx, c))
	got, err := ds.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	require.NoError(t, ds.DeleteClient(ctx, c.ID))
	_, err = ds.GetClient(ctx, c.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(ds.DeleteClient(ctx, c.ID)))
}

func TestDataStore_PlaceOrder(t *testing.T) {
	ds := newSQLiteDataStore(t)
	ctx := context.Background()

	c, err := ds.CreateClient(ctx, model.Client{Name: "Ana", Address: "Main St 1", Email: "ana@example.com", Age: 30, Phone: "0711111111"})
	require.NoError(t, err)
	p, err := ds.CreateProduct(ctx, model.Product{Name: "Widget", Price: 10, Stock: 5})
	require.NoError(t, err)

	res, err := ds.PlaceOrder(ctx, fulfillment.Request{ClientID: c.ID, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Fulfilled, res.State)

	orders, err := ds.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	bills, err := ds.BillsForOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 30.0, bills[0].TotalAmount)

	all, err := ds.ListBills(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := ds.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	res, err = ds.PlaceOrder(ctx, fulfillment.Request{ClientID: c.ID, ProductID: p.ID, Quantity: 3})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, fulfillment.Rejected, res.State)
}

func TestDataStore_ReportsOperationalFailures(t *testing.T) {
	log, hook := testutil.NullLog()
	ds, err := NewDataStore(context.Background(), Config{
		Type:             SQLiteStore,
		ConnectionString: filepath.Join(t.TempDir(), "orders.db"),
		Logger:           log,
	})
	require.NoError(t, err)
	defer ds.Close()

	// No migrations, so every table is missing.
	_, err = ds.ListOrders(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "order", entry.Data["table"])
	assert.Equal(t, "list orders", entry.Data["action"])

	hook.Reset()
	_, err = ds.GetClient(context.Background(), 1)
	require.Error(t, err)
	assert.NotEmpty(t, hook.AllEntries())
}
