package datastore

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"orders-management/internal/fulfillment"
	"orders-management/internal/model"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// DataStore defines every business operation the CLI can invoke.
type DataStore interface {
	// Lifecycle
	Close() error
	InitDB(ctx context.Context) error
	SeedCatalog(ctx context.Context, products []model.Product) (int, error)

	// Client Operations
	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, id int64) (model.Client, error)
	CreateClient(ctx context.Context, c model.Client) (model.Client, error)
	UpdateClient(ctx context.Context, c model.Client) error
	DeleteClient(ctx context.Context, id int64) error

	// Product Operations
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// Order Operations
	PlaceOrder(ctx context.Context, req fulfillment.Request) (fulfillment.Result, error)
	ListOrders(ctx context.Context) ([]model.Order, error)

	// Bill Operations
	ListBills(ctx context.Context) ([]model.Bill, error)
	BillsForOrder(ctx context.Context, orderID int64) ([]model.Bill, error)
}

// Type represents the backend a data store runs on.
type Type string

const (
	SQLiteStore     Type = "sqlite3"
	PostgreSQLStore Type = "postgres"
	MySQLStore      Type = "mysql"
)

// Config holds configuration for data store creation.
type Config struct {
	Type             Type
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	LogQueries       bool
	FulfillmentMode  fulfillment.Mode
	// FormatChecker validates free-text fields. Nil accepts everything.
	FormatChecker validation.FormatChecker
	Logger        *logrus.Entry
}

// NewDataStore opens the configured backend and wires the repositories,
// validation rules and fulfillment workflow on top of it.
func NewDataStore(ctx context.Context, config Config) (DataStore, error) {
	dialect, err := store.DialectFor(string(config.Type))
	if err != nil {
		return nil, &UnsupportedStoreTypeError{Type: string(config.Type)}
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("store", dialect.Name)

	cfg := store.Config{
		Dialect:      dialect,
		DSN:          config.ConnectionString,
		MaxOpenConns: config.MaxOpenConns,
		MaxIdleConns: config.MaxIdleConns,
		LogQueries:   config.LogQueries,
	}
	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", dialect.Name, err)
	}

	return newSQLStore(s, cfg, config, log), nil
}

// UnsupportedStoreTypeError is returned when an unsupported store type is requested
type UnsupportedStoreTypeError struct {
	Type string
}

func (e *UnsupportedStoreTypeError) Error() string {
	return "unsupported store type: " + e.Type
}
