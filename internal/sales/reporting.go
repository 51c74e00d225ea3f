package sales

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pos_sales/internal/metrics"
	"pos_sales/internal/query"
)

// Reporter runs the aggregate queries behind the admin dashboard.
type Reporter struct {
	transport query.Transport
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// NewReporter creates a new Reporter.
func NewReporter(transport query.Transport, logger *zap.Logger, m *metrics.Registry) *Reporter {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Reporter{
		transport: transport,
		logger:    logger,
		metrics:   m,
	}
}

// BuildSnapshot runs the revenue, top-seller and recent-transaction queries
// concurrently and assembles them. If any of them fails the whole call fails;
// no partially filled snapshot is ever returned.
func (r *Reporter) BuildSnapshot(ctx context.Context) (DashboardSnapshot, error) {
	var (
		revenue decimal.Decimal
		top     *TopSeller
		recent  []SaleWithProduct
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenue, err = r.TotalRevenue(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = r.TopSeller(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = r.RecentTransactions(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		r.metrics.SnapshotFailed()
		r.logger.Error("dashboard snapshot failed", zap.Error(err))
		return DashboardSnapshot{}, err
	}

	r.metrics.SnapshotBuilt()
	r.logger.Info("dashboard snapshot built",
		zap.String("total_revenue", revenue.StringFixed(2)),
		zap.Bool("has_top_seller", top != nil),
		zap.Int("recent_transactions", len(recent)))

	return DashboardSnapshot{
		TotalRevenue:       revenue,
		TopSeller:          top,
		RecentTransactions: recent,
	}, nil
}

// TotalRevenue sums total_amount over all sales. An empty sales table, a
// null sum or a non-numeric answer all count as zero.
func (r *Reporter) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	raw, err := r.transport.Execute(ctx, query.New(queryTotalRevenue))
	if err != nil {
		return decimal.Zero, &RepositoryError{Op: OpTotalRevenue, Err: err}
	}
	rows := query.Normalize(raw)
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	total, ok := rows[0].Decimal("total")
	if !ok {
		return decimal.Zero, nil
	}
	return total, nil
}

// TopSeller returns the product with the most sales, or nil when nothing has
// been sold. Equal counts are broken by the lowest product_id.
func (r *Reporter) TopSeller(ctx context.Context) (*TopSeller, error) {
	raw, err := r.transport.Execute(ctx, query.New(queryTopSeller))
	if err != nil {
		return nil, &RepositoryError{Op: OpTopSeller, Err: err}
	}
	return pickTopSeller(query.Normalize(raw)), nil
}

func pickTopSeller(rows []query.Row) *TopSeller {
	var best *TopSeller
	for _, row := range rows {
		count, ok := row.Int("total_sales")
		if !ok || count <= 0 {
			continue
		}
		id, _ := row.Int("product_id")
		candidate := TopSeller{ProductID: id, ItemName: row.Text("item_name"), TotalSales: count}
		if best == nil ||
			candidate.TotalSales > best.TotalSales ||
			(candidate.TotalSales == best.TotalSales && candidate.ProductID < best.ProductID) {
			best = &candidate
		}
	}
	return best
}

// RecentTransactions returns at most RecentLimit sales, newest first. Rows
// whose sale_time cannot be parsed keep their raw value and sort last.
func (r *Reporter) RecentTransactions(ctx context.Context) ([]SaleWithProduct, error) {
	raw, err := r.transport.Execute(ctx, query.New(queryRecentTransactions))
	if err != nil {
		return nil, &RepositoryError{Op: OpRecentTransactions, Err: err}
	}

	rows := query.Normalize(raw)
	out := make([]SaleWithProduct, 0, len(rows))
	for i, row := range rows {
		id, ok := row.Int("sale_id")
		if !ok {
			r.logger.Warn("skipping transaction row without sale_id", zap.Int("row", i))
			continue
		}
		productID, _ := row.Int("product_id")
		quantity, ok := row.Int("quantity")
		if !ok {
			quantity = 1
		}
		amount, _ := row.Decimal("total_amount")
		rawTime := row.Text("sale_time")

		out = append(out, SaleWithProduct{
			Sale: Sale{
				ID:          id,
				ProductID:   productID,
				Quantity:    quantity,
				TotalAmount: amount,
				Time:        parseSaleTime(rawTime),
				TimeRaw:     rawTime,
			},
			ItemName: row.Text("item_name"),
			Category: row.Text("category"),
		})
	}

	slices.SortStableFunc(out, newestFirst)
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out, nil
}

func newestFirst(a, b SaleWithProduct) int {
	switch {
	case a.Time.IsZero() && b.Time.IsZero():
		return 0
	case a.Time.IsZero():
		return 1
	case b.Time.IsZero():
		return -1
	}
	return b.Time.Compare(a.Time)
}
