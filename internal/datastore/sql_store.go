package datastore

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"orders-management/internal/apperr"
	"orders-management/internal/fulfillment"
	"orders-management/internal/model"
	"orders-management/internal/repository"
	"orders-management/internal/store"
	"orders-management/internal/validation"
)

// sqlStore implements DataStore over a relational store.
type sqlStore struct {
	store    *store.Store
	cfg      store.Config
	clients  *repository.ClientRepository
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	bills    *repository.BillRepository
	workflow *fulfillment.Workflow
	log      *logrus.Entry
}

func newSQLStore(s *store.Store, cfg store.Config, config Config, log *logrus.Entry) *sqlStore {
	rules := validation.NewRules(validation.WithFormatChecker(config.FormatChecker))
	ds := &sqlStore{
		store:    s,
		cfg:      cfg,
		clients:  repository.NewClientRepository(s, rules),
		products: repository.NewProductRepository(s, rules),
		orders:   repository.NewOrderRepository(s, rules),
		bills:    repository.NewBillRepository(s, rules),
		log:      log,
	}
	mode := config.FulfillmentMode
	if mode == "" {
		mode = fulfillment.ModeTransaction
	}
	ds.workflow = fulfillment.New(s, ds.products, ds.orders, ds.bills,
		fulfillment.WithMode(mode),
		fulfillment.WithLogger(log),
	)
	log.WithField("mode", ds.workflow.Mode()).Debug("fulfillment workflow ready")
	return ds
}

func (ds *sqlStore) Close() error {
	return ds.store.Close()
}

// InitDB applies the schema migrations.
func (ds *sqlStore) InitDB(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.Migrate(ds.cfg); err != nil {
		ds.log.WithError(err).Error("schema migration failed")
		return err
	}
	ds.log.Info("schema is up to date")
	return nil
}

// SeedCatalog inserts every product whose name is not stored yet, all in one
// transaction, and returns how many were added.
func (ds *sqlStore) SeedCatalog(ctx context.Context, products []model.Product) (int, error) {
	added := 0
	err := ds.store.Atomically(ctx, []string{model.ProductSchema.Table}, func(q store.Querier) error {
		repo := ds.products.WithTx(q)
		for _, p := range products {
			exists, err := repo.NameExists(ctx, p.Name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if _, err := repo.Insert(ctx, p); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, ds.report("seed catalog", err)
	}
	ds.log.WithField("added", added).Info("catalog seeded")
	return added, nil
}

func (ds *sqlStore) ListClients(ctx context.Context) ([]model.Client, error) {
	clients, err := ds.clients.FindAll(ctx)
	return clients, ds.report("list clients", err)
}

func (ds *sqlStore) GetClient(ctx context.Context, id int64) (model.Client, error) {
	c, err := ds.clients.FindByID(ctx, id)
	return c, ds.report("get client", err)
}

func (ds *sqlStore) CreateClient(ctx context.Context, c model.Client) (model.Client, error) {
	c, err := ds.clients.Insert(ctx, c)
	return c, ds.report("create client", err)
}

func (ds *sqlStore) UpdateClient(ctx context.Context, c model.Client) error {
	return ds.report("update client", ds.clients.Update(ctx, c))
}

func (ds *sqlStore) DeleteClient(ctx context.Context, id int64) error {
	return ds.report("delete client", ds.clients.Delete(ctx, id))
}

func (ds *sqlStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := ds.products.FindAll(ctx)
	return products, ds.report("list products", err)
}

func (ds *sqlStore) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	p, err := ds.products.FindByID(ctx, id)
	return p, ds.report("get product", err)
}

func (ds *sqlStore) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	p, err := ds.products.Insert(ctx, p)
	return p, ds.report("create product", err)
}

func (ds *sqlStore) UpdateProduct(ctx context.Context, p model.Product) error {
	return ds.report("update product", ds.products.Update(ctx, p))
}

func (ds *sqlStore) DeleteProduct(ctx context.Context, id int64) error {
	return ds.report("delete product", ds.products.Delete(ctx, id))
}

// PlaceOrder runs the fulfillment workflow. The workflow logs its own outcome.
func (ds *sqlStore) PlaceOrder(ctx context.Context, req fulfillment.Request) (fulfillment.Result, error) {
	return ds.workflow.Fulfill(ctx, req)
}

func (ds *sqlStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := ds.orders.FindAll(ctx)
	return orders, ds.report("list orders", err)
}

func (ds *sqlStore) ListBills(ctx context.Context) ([]model.Bill, error) {
	bills, err := ds.bills.FindAll(ctx)
	return bills, ds.report("list bills", err)
}

func (ds *sqlStore) BillsForOrder(ctx context.Context, orderID int64) ([]model.Bill, error) {
	bills, err := ds.bills.FindByOrder(ctx, orderID)
	return bills, ds.report("bills for order", err)
}

// report logs operational failures and passes every error through.
func (ds *sqlStore) report(action string, err error) error {
	if err == nil || apperr.IsBusiness(err) {
		return err
	}
	fields := logrus.Fields{"action": action}
	var perr *apperr.PersistenceError
	if errors.As(err, &perr) {
		fields["table"] = perr.Table
		fields["op"] = perr.Op
	}
	ds.log.WithFields(fields).WithError(err).Error("data store operation failed")
	return err
}
