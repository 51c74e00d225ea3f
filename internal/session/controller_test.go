package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pos_sales/internal/query"
	"pos_sales/internal/sales"
)

type fakeCatalog struct {
	products []sales.Product
	err      error
}

func (f *fakeCatalog) ListProducts(context.Context) ([]sales.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type recordCall struct {
	productID int64
	price     decimal.Decimal
	ctxErr    error
}

type fakeRecorder struct {
	mu      sync.Mutex
	gate    chan struct{}
	err     error
	calls   []recordCall
	deleted []int64
}

func (f *fakeRecorder) RecordSale(ctx context.Context, productID int64, price decimal.Decimal) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordCall{productID: productID, price: price, ctxErr: ctx.Err()})
	return f.err
}

func (f *fakeRecorder) DeleteSale(_ context.Context, saleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, saleID)
	return f.err
}

func (f *fakeRecorder) recorded() []recordCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordCall(nil), f.calls...)
}

type fakeReporter struct {
	started chan struct{}
	gate    chan struct{}
	snap    sales.DashboardSnapshot
	err     error
}

func (f *fakeReporter) BuildSnapshot(context.Context) (sales.DashboardSnapshot, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.snap, f.err
}

var testCatalog = []sales.Product{
	{ID: 1, Category: "Cookies", ItemName: "Choc Chip", Price: decimal.NewFromInt(50)},
	{ID: 2, Category: "Buns", ItemName: "Cinnamon", Price: decimal.RequireFromString("35.50")},
	{ID: 3, Category: "Cookies", ItemName: "Oat", Price: decimal.NewFromInt(40)},
}

func newTestController(t *testing.T, rec *fakeRecorder, rep *fakeReporter) (*Controller, *Feed) {
	t.Helper()
	if rec == nil {
		rec = &fakeRecorder{}
	}
	if rep == nil {
		rep = &fakeReporter{}
	}
	feed := NewFeed(10)
	c := NewController(&fakeCatalog{products: testCatalog}, rec, rep, feed, zaptest.NewLogger(t))
	require.NoError(t, c.Start(context.Background()))
	return c, feed
}

func TestStart_LoadsCatalogAndGoesHome(t *testing.T) {
	c, feed := newTestController(t, nil, nil)

	assert.Equal(t, State{Screen: ScreenHome}, c.State())
	assert.Equal(t, testCatalog, c.Catalog())
	assert.Empty(t, feed.All())

	assert.ErrorIs(t, c.Start(context.Background()), ErrInvalidTransition)
}

func TestStart_FailureNotifiesAndContinuesEmpty(t *testing.T) {
	feed := NewFeed(10)
	loadErr := &sales.RepositoryError{Op: sales.OpListProducts, Err: errors.New("unreachable")}
	c := NewController(&fakeCatalog{err: loadErr}, &fakeRecorder{}, &fakeReporter{}, feed, zaptest.NewLogger(t))

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, ScreenHome, c.State().Screen)
	assert.NotNil(t, c.Catalog())
	assert.Empty(t, c.Catalog())

	n, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, MsgLoadFailed, n.Message)
	assert.Equal(t, SeverityError, n.Severity)
}

func TestTransitions(t *testing.T) {
	c, _ := newTestController(t, nil, nil)

	// home: back is not allowed
	assert.ErrorIs(t, c.Back(), ErrInvalidTransition)

	require.NoError(t, c.SelectCategory("Cookies"))
	assert.Equal(t, State{Screen: ScreenCategory, Category: "Cookies"}, c.State())
	assert.ErrorIs(t, c.SelectCategory("Buns"), ErrInvalidTransition)
	assert.ErrorIs(t, c.OpenAdmin(), ErrInvalidTransition)

	require.NoError(t, c.Back())
	assert.Equal(t, State{Screen: ScreenHome}, c.State())

	require.NoError(t, c.OpenAdmin())
	assert.Equal(t, ScreenAdmin, c.State().Screen)
	assert.ErrorIs(t, c.SelectCategory("Cookies"), ErrInvalidTransition)
	assert.ErrorIs(t, c.OpenAdmin(), ErrInvalidTransition)

	require.NoError(t, c.Back())
	assert.Equal(t, State{Screen: ScreenHome}, c.State())
}

func TestProducts_FollowsCategoryView(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	assert.Empty(t, c.Products())

	require.NoError(t, c.SelectCategory("cookies"))
	products := c.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Choc Chip", products[0].ItemName)
	assert.Equal(t, "Oat", products[1].ItemName)

	require.NoError(t, c.Back())
	require.NoError(t, c.SelectCategory("Strawberry Fest"))
	assert.NotNil(t, c.Products())
	assert.Empty(t, c.Products())
}

func TestSell_OptimisticSuccess(t *testing.T) {
	rec := &fakeRecorder{gate: make(chan struct{})}
	c, feed := newTestController(t, rec, nil)

	done := c.Sell(context.Background(), testCatalog[1])

	// success is shown before the write has happened
	n, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, MsgSaleRecorded, n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Empty(t, rec.recorded())

	close(rec.gate)
	require.NoError(t, <-done)

	calls := rec.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(2), calls[0].productID)
	assert.True(t, calls[0].price.Equal(decimal.RequireFromString("35.50")))
	assert.Len(t, feed.All(), 1)
}

func TestSell_FailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "endpoint answered with error status",
			err:  &sales.SaleError{Op: sales.OpRecord, ProductID: 1, Err: &query.TransportError{Query: "q", StatusCode: 500, Err: query.ErrStatus}},
			want: MsgSaleFailed,
		},
		{
			name: "call did not complete",
			err:  &sales.SaleError{Op: sales.OpRecord, ProductID: 1, Err: &query.TransportError{Query: "q", Err: errors.New("connection refused")}},
			want: MsgSaleError,
		},
		{
			name: "unexpected failure",
			err:  sales.ErrNegativeAmount,
			want: MsgSaleError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, feed := newTestController(t, &fakeRecorder{err: tc.err}, nil)

			err := <-c.Sell(context.Background(), testCatalog[0])
			assert.ErrorIs(t, err, tc.err)

			// the corrective notification is already there when the outcome arrives
			all := feed.All()
			require.Len(t, all, 2)
			assert.Equal(t, tc.want, all[0].Message)
			assert.Equal(t, SeverityError, all[0].Severity)
			assert.Equal(t, MsgSaleRecorded, all[1].Message)
		})
	}
}

func TestSell_NotCancelledWithCaller(t *testing.T) {
	rec := &fakeRecorder{}
	c, _ := newTestController(t, rec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, <-c.Sell(ctx, testCatalog[0]))
	calls := rec.recorded()
	require.Len(t, calls, 1)
	assert.NoError(t, calls[0].ctxErr)
}

func TestSell_ConcurrentSalesAllRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	c, feed := newTestController(t, rec, nil)

	for i := 0; i < 20; i++ {
		c.Sell(context.Background(), testCatalog[i%len(testCatalog)])
	}
	c.Wait()

	assert.Len(t, rec.recorded(), 20)
	assert.Len(t, feed.All(), 10)
}

func TestDeleteSale_Passthrough(t *testing.T) {
	rec := &fakeRecorder{}
	c, _ := newTestController(t, rec, nil)

	require.NoError(t, c.DeleteSale(context.Background(), 7))
	assert.Equal(t, []int64{7}, rec.deleted)
}

func TestLoadDashboard_OnlyOnAdmin(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	_, err := c.LoadDashboard(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLoadDashboard_Applies(t *testing.T) {
	snap := sales.DashboardSnapshot{
		TotalRevenue:       decimal.NewFromInt(400),
		TopSeller:          &sales.TopSeller{ProductID: 2, ItemName: "B", TotalSales: 5},
		RecentTransactions: []sales.SaleWithProduct{},
	}
	c, _ := newTestController(t, nil, &fakeReporter{snap: snap})
	require.NoError(t, c.OpenAdmin())

	_, ok := c.Snapshot()
	assert.False(t, ok)

	got, err := c.LoadDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	applied, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, snap, applied)

	// leaving and coming back starts from an empty dashboard
	require.NoError(t, c.Back())
	require.NoError(t, c.OpenAdmin())
	_, ok = c.Snapshot()
	assert.False(t, ok)
}

func TestLoadDashboard_FailureLeavesSnapshotUnset(t *testing.T) {
	boom := &sales.RepositoryError{Op: sales.OpTopSeller, Err: errors.New("boom")}
	c, _ := newTestController(t, nil, &fakeReporter{err: boom})
	require.NoError(t, c.OpenAdmin())

	_, err := c.LoadDashboard(context.Background())
	assert.ErrorIs(t, err, boom)
	_, ok := c.Snapshot()
	assert.False(t, ok)
}

func TestLoadDashboard_StaleResultDiscarded(t *testing.T) {
	for _, reopen := range []bool{false, true} {
		rep := &fakeReporter{
			started: make(chan struct{}),
			gate:    make(chan struct{}),
			snap:    sales.DashboardSnapshot{TotalRevenue: decimal.NewFromInt(1)},
		}
		c, _ := newTestController(t, nil, rep)
		require.NoError(t, c.OpenAdmin())

		errCh := make(chan error, 1)
		go func() {
			_, err := c.LoadDashboard(context.Background())
			errCh <- err
		}()

		<-rep.started
		require.NoError(t, c.Back())
		if reopen {
			require.NoError(t, c.OpenAdmin())
		}
		close(rep.gate)

		assert.ErrorIs(t, <-errCh, ErrStaleResult)
		_, ok := c.Snapshot()
		assert.False(t, ok)
	}
}
