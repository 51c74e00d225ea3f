package sales

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos_sales/internal/metrics"
	"pos_sales/internal/query"
)

// Recorder issues sale writes. It has no notion of optimistic feedback;
// that ordering belongs to the session controller.
type Recorder struct {
	transport query.Transport
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// NewRecorder creates a new Recorder.
func NewRecorder(transport query.Transport, logger *zap.Logger, m *metrics.Registry) *Recorder {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Recorder{
		transport: transport,
		logger:    logger,
		metrics:   m,
	}
}

// RecordSale records a single unit of productID sold at price.
func (r *Recorder) RecordSale(ctx context.Context, productID int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return &SaleError{Op: OpRecord, ProductID: productID, Err: ErrNegativeAmount}
	}

	// json.Number keeps the amount exact and numeric on the wire.
	q := query.New(queryRecordSale, productID, json.Number(price.String()))
	if _, err := r.transport.Execute(ctx, q); err != nil {
		r.metrics.SaleFailed()
		r.logger.Error("failed to record sale",
			zap.Int64("product_id", productID),
			zap.String("amount", price.String()),
			zap.Error(err))
		return &SaleError{Op: OpRecord, ProductID: productID, Err: err}
	}

	r.metrics.SaleRecorded()
	r.logger.Info("sale recorded", zap.Int64("product_id", productID), zap.String("amount", price.String()))
	return nil
}

// DeleteSale removes a recorded sale. It is a manual correction and is
// never issued automatically after a failed RecordSale.
func (r *Recorder) DeleteSale(ctx context.Context, saleID int64) error {
	if _, err := r.transport.Execute(ctx, query.New(queryDeleteSale, saleID)); err != nil {
		r.logger.Error("failed to delete sale", zap.Int64("sale_id", saleID), zap.Error(err))
		return &SaleError{Op: OpDelete, SaleID: saleID, Err: err}
	}

	r.metrics.SaleDeleted()
	r.logger.Info("sale deleted", zap.Int64("sale_id", saleID))
	return nil
}
