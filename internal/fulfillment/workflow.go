// Package fulfillment turns an order request into a stored order, a stock
// decrement and a bill.
//
// In transaction mode (the default) every step runs in one database
// transaction, so a failure anywhere leaves no trace. In saga mode each step
// commits on its own and a failure runs compensating actions for the steps
// that already committed.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"orders-management/internal/apperr"
	"orders-management/internal/model"
	"orders-management/internal/repository"
	"orders-management/internal/store"
)

// Mode selects how the steps of a fulfillment are committed.
type Mode string

const (
	ModeTransaction Mode = "transaction"
	ModeSaga        Mode = "saga"
)

// ParseMode accepts "transaction" (or empty) and "saga".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTransaction:
		return ModeTransaction, nil
	case ModeSaga:
		return ModeSaga, nil
	default:
		return "", fmt.Errorf("unknown fulfillment mode %q", s)
	}
}

// State is the outcome of a fulfillment run.
type State string

const (
	Fulfilled State = "fulfilled"
	Rejected  State = "rejected"
	Failed    State = "failed"
)

const (
	stepLoadProduct = "load product"
	stepCheckStock  = "check stock"
	stepInsertOrder = "insert order"
	stepDecrement   = "decrement stock"
	stepCreateBill  = "create bill"
)

// Request asks for quantity units of a product on behalf of a client.
type Request struct {
	ClientID  int64
	ProductID int64
	Quantity  int
}

// Result describes a run. Order and Bill are set only when the run was
// fulfilled; Product holds the product as it was read at the start.
type Result struct {
	State   State
	Reason  error
	Order   model.Order
	Bill    model.Bill
	Product model.Product
	RunID   uuid.UUID
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithMode selects transaction or saga mode.
func WithMode(m Mode) Option {
	return func(w *Workflow) {
		w.mode = m
	}
}

// WithClock replaces time.Now for the bill timestamp.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithLogger sets the logger runs are reported on.
func WithLogger(log *logrus.Entry) Option {
	return func(w *Workflow) {
		w.log = log
	}
}

// Workflow fulfills orders.
type Workflow struct {
	store    *store.Store
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	bills    *repository.BillRepository
	mode     Mode
	now      func() time.Time
	log      *logrus.Entry
}

func New(
	s *store.Store,
	products *repository.ProductRepository,
	orders *repository.OrderRepository,
	bills *repository.BillRepository,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		store:    s,
		products: products,
		orders:   orders,
		bills:    bills,
		mode:     ModeTransaction,
		now:      time.Now,
		log:      s.Log(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Mode returns the commit mode in use.
func (w *Workflow) Mode() Mode {
	return w.mode
}

// Fulfill runs one order request. A rejected request returns its reason as
// the error as well: apperr.ErrInsufficientStock, *apperr.NotFoundError or
// *apperr.ValidationError. Operational failures return *apperr.PersistenceError
// or, once something was written, *apperr.ConsistencyError.
func (w *Workflow) Fulfill(ctx context.Context, req Request) (Result, error) {
	res := Result{RunID: uuid.New()}
	log := w.log.WithFields(logrus.Fields{
		"run_id":     res.RunID.String(),
		"client_id":  req.ClientID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"mode":       string(w.mode),
	})

	var err error
	if w.mode == ModeSaga {
		err = w.saga(ctx, log, req, &res)
	} else {
		err = w.transaction(ctx, log, req, &res)
	}

	switch {
	case err == nil:
		res.State = Fulfilled
		log.WithFields(logrus.Fields{"order_id": res.Order.ID, "bill_id": res.Bill.ID}).Info("order fulfilled")
		return res, nil
	case !apperr.IsConsistency(err) && apperr.IsBusiness(err):
		res.State, res.Reason = Rejected, err
		res.Order, res.Bill = model.Order{}, model.Bill{}
		log.WithError(err).Info("order rejected")
		return res, err
	default:
		res.State, res.Reason = Failed, err
		res.Order, res.Bill = model.Order{}, model.Bill{}
		log.WithError(err).Error("order fulfillment failed")
		return res, err
	}
}

func (w *Workflow) transaction(ctx context.Context, log *logrus.Entry, req Request, res *Result) error {
	return w.store.Atomically(ctx, []string{model.OrderSchema.Table, model.BillSchema.Table}, func(q store.Querier) error {
		products := w.products.WithTx(q)

		log.WithField("step", stepLoadProduct).Debug("running step")
		p, err := products.FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		res.Product = p

		log.WithField("step", stepCheckStock).Debug("running step")
		if err := checkStock(p, req.Quantity); err != nil {
			return err
		}

		log.WithField("step", stepInsertOrder).Debug("running step")
		o, err := w.orders.WithTx(q).Insert(ctx, model.Order{
			ClientID:  req.ClientID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			return err
		}
		res.Order = o

		log.WithField("step", stepDecrement).Debug("running step")
		if err := products.DecrementStock(ctx, p.ID, req.Quantity); err != nil {
			if apperr.IsBusiness(err) {
				return err
			}
			return &apperr.ConsistencyError{Step: stepDecrement, Compensated: true, Err: err}
		}

		log.WithField("step", stepCreateBill).Debug("running step")
		b, err := w.bills.WithTx(q).Insert(ctx, w.bill(o, p))
		if err != nil {
			return &apperr.ConsistencyError{Step: stepCreateBill, Compensated: true, Err: err}
		}
		res.Bill = b
		return nil
	})
}

func (w *Workflow) saga(ctx context.Context, log *logrus.Entry, req Request, res *Result) error {
	log.WithField("step", stepLoadProduct).Debug("running step")
	p, err := w.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	res.Product = p

	log.WithField("step", stepCheckStock).Debug("running step")
	if err := checkStock(p, req.Quantity); err != nil {
		return err
	}

	log.WithField("step", stepInsertOrder).Debug("running step")
	o, err := w.orders.Insert(ctx, model.Order{
		ClientID:  req.ClientID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}
	res.Order = o

	log.WithField("step", stepDecrement).Debug("running step")
	if err := w.products.DecrementStock(ctx, p.ID, req.Quantity); err != nil {
		compErr := w.compensate(ctx, log, "delete order", func() error {
			return w.orders.Delete(ctx, o.ID)
		})
		// Losing a stock race is still a rejection once the order is undone.
		if compErr == nil && apperr.IsBusiness(err) {
			return err
		}
		return &apperr.ConsistencyError{Step: stepDecrement, Compensated: compErr == nil, Err: err, CompensationErr: compErr}
	}

	log.WithField("step", stepCreateBill).Debug("running step")
	b, err := w.bills.Insert(ctx, w.bill(o, p))
	if err != nil {
		compErr := errors.Join(
			w.compensate(ctx, log, "restore stock", func() error {
				return w.products.RestoreStock(ctx, p.ID, req.Quantity)
			}),
			w.compensate(ctx, log, "delete order", func() error {
				return w.orders.Delete(ctx, o.ID)
			}),
		)
		return &apperr.ConsistencyError{Step: stepCreateBill, Compensated: compErr == nil, Err: err, CompensationErr: compErr}
	}
	res.Bill = b
	return nil
}

func (w *Workflow) compensate(ctx context.Context, log *logrus.Entry, action string, fn func() error) error {
	if err := fn(); err != nil {
		log.WithError(err).WithField("compensation", action).Error("compensation failed")
		return fmt.Errorf("%s: %w", action, err)
	}
	log.WithField("compensation", action).Warn("compensation applied")
	return nil
}

func (w *Workflow) bill(o model.Order, p model.Product) model.Bill {
	return model.Bill{
		OrderID:     o.ID,
		TotalAmount: Total(p.Price, o.Quantity),
		// Microseconds are the finest precision every backend keeps.
		CreatedAt: w.now().UTC().Truncate(time.Microsecond),
	}
}

func checkStock(p model.Product, qty int) error {
	if p.Stock < qty {
		return fmt.Errorf("product %d has %d in stock, %d requested: %w", p.ID, p.Stock, qty, apperr.ErrInsufficientStock)
	}
	return nil
}

// Total is quantity × price, multiplied in decimal so the float error of
// the price is not scaled by the quantity.
func Total(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		InexactFloat64()
}
