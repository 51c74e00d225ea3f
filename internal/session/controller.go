package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos_sales/internal/query"
	"pos_sales/internal/sales"
)

// ErrInvalidTransition is returned when a screen change is not allowed from the current screen.
var ErrInvalidTransition = errors.New("invalid screen transition")

// ErrStaleResult is returned when a dashboard load finishes after the admin
// screen it was started for has been left.
var ErrStaleResult = errors.New("stale dashboard result")

// Screen is one of the operator-facing screens.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenHome
	ScreenCategory
	ScreenAdmin
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenHome:
		return "home"
	case ScreenCategory:
		return "category"
	case ScreenAdmin:
		return "admin"
	}
	return "unknown"
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the current screen; Category is set only on ScreenCategory.
type State struct {
	Screen   Screen `json:"screen"`
	Category string `json:"category,omitempty"`
}

// CatalogReader loads the product catalog.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]sales.Product, error)
}

// SaleRecorder writes and removes sales.
type SaleRecorder interface {
	RecordSale(ctx context.Context, productID int64, price decimal.Decimal) error
	DeleteSale(ctx context.Context, saleID int64) error
}

// SnapshotBuilder assembles the admin dashboard.
type SnapshotBuilder interface {
	BuildSnapshot(ctx context.Context) (sales.DashboardSnapshot, error)
}

// Controller owns the operator session: which screen is shown, the loaded
// catalog and the last dashboard snapshot.
type Controller struct {
	catalog  CatalogReader
	recorder SaleRecorder
	reporter SnapshotBuilder
	sink     Sink
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	epoch    uint64
	products []sales.Product
	snapshot *sales.DashboardSnapshot

	inflight sync.WaitGroup
}

// NewController creates a Controller on the loading screen.
func NewController(catalog CatalogReader, recorder SaleRecorder, reporter SnapshotBuilder, sink Sink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Controller{
		catalog:  catalog,
		recorder: recorder,
		reporter: reporter,
		sink:     sink,
		logger:   logger,
		state:    State{Screen: ScreenLoading},
		products: []sales.Product{},
	}
}

// Start loads the catalog and moves to the home screen. A failed load is
// reported to the operator and leaves an empty catalog; the controller still
// ends on the home screen and the error is returned for logging.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Screen != ScreenLoading {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.mu.Unlock()

	products, err := c.catalog.ListProducts(ctx)
	if err != nil {
		c.logger.Error("catalog load failed", zap.Error(err))
		c.notify(MsgLoadFailed, SeverityError)
		products = []sales.Product{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.moveTo(State{Screen: ScreenHome})
	c.logger.Info("session started", zap.Int("products", len(products)))
	return err
}

// SelectCategory opens the category view. Only allowed from home.
func (c *Controller) SelectCategory(category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenHome {
		return ErrInvalidTransition
	}
	c.moveTo(State{Screen: ScreenCategory, Category: category})
	return nil
}

// OpenAdmin opens the admin dashboard. Only allowed from home; the operator
// API checks the admin password before calling it.
func (c *Controller) OpenAdmin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenHome {
		return ErrInvalidTransition
	}
	c.snapshot = nil
	c.moveTo(State{Screen: ScreenAdmin})
	return nil
}

// Back returns to home from the category view or the admin dashboard.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenCategory && c.state.Screen != ScreenAdmin {
		return ErrInvalidTransition
	}
	c.moveTo(State{Screen: ScreenHome})
	return nil
}

// moveTo must be called with mu held.
func (c *Controller) moveTo(next State) {
	c.logger.Debug("screen transition",
		zap.Stringer("from", c.state.Screen),
		zap.Stringer("to", next.Screen),
		zap.String("category", next.Category))
	c.state = next
	c.epoch++
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Catalog returns a copy of the full catalog.
func (c *Controller) Catalog() []sales.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sales.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Products returns the products of the selected category, or an empty slice
// when no category view is open.
func (c *Controller) Products() []sales.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenCategory {
		return []sales.Product{}
	}
	return sales.FilterByCategory(c.products, c.state.Category)
}

// Snapshot returns the last dashboard snapshot applied in the current admin visit.
func (c *Controller) Snapshot() (sales.DashboardSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return sales.DashboardSnapshot{}, false
	}
	return *c.snapshot, true
}

// Sell reports the sale as recorded straight away and records it in the
// background. If recording fails one corrective error notification follows;
// the success notification is not retracted. The returned channel receives
// the outcome after any corrective notification has been sent.
//
// Recording is not cancelled when ctx is.
func (c *Controller) Sell(ctx context.Context, product sales.Product) <-chan error {
	done := make(chan error, 1)
	c.notify(MsgSaleRecorded, SeveritySuccess)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(done)

		err := c.recorder.RecordSale(context.WithoutCancel(ctx), product.ID, product.Price)
		if err != nil {
			c.logger.Error("sale not recorded",
				zap.Int64("product_id", product.ID),
				zap.String("price", product.Price.String()),
				zap.Error(err))
			c.notify(saleFailureMessage(err), SeverityError)
		}
		done <- err
	}()
	return done
}

// saleFailureMessage tells an error answer from the endpoint apart from a
// call that never completed.
func saleFailureMessage(err error) string {
	var te *query.TransportError
	if errors.As(err, &te) && te.Responded() {
		return MsgSaleFailed
	}
	return MsgSaleError
}

// DeleteSale removes a recorded sale. It is never called automatically.
func (c *Controller) DeleteSale(ctx context.Context, saleID int64) error {
	return c.recorder.DeleteSale(ctx, saleID)
}

// LoadDashboard builds a fresh snapshot. It is only allowed on the admin
// screen, and the result is applied only if that same admin visit is still
// open when it arrives; otherwise ErrStaleResult is returned.
func (c *Controller) LoadDashboard(ctx context.Context) (sales.DashboardSnapshot, error) {
	c.mu.Lock()
	if c.state.Screen != ScreenAdmin {
		c.mu.Unlock()
		return sales.DashboardSnapshot{}, ErrInvalidTransition
	}
	epoch := c.epoch
	c.mu.Unlock()

	snap, err := c.reporter.BuildSnapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Info("discarding stale dashboard result", zap.Error(err))
		return sales.DashboardSnapshot{}, ErrStaleResult
	}
	if err != nil {
		return sales.DashboardSnapshot{}, err
	}
	c.snapshot = &snap
	return snap, nil
}

// Wait blocks until every sale started with Sell has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) notify(message string, severity Severity) {
	c.sink.Notify(newNotification(message, severity))
}
