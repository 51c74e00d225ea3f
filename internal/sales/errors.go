package sales

import (
	"errors"
	"fmt"
)

// ErrNegativeAmount is returned when a sale would be recorded below zero.
var ErrNegativeAmount = errors.New("sale amount must not be negative")

// ErrNotFound is returned when a product with the given ID is not in the catalog.
var ErrNotFound = errors.New("product not found")

// RepositoryError reports a failed read of catalog or reporting data.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// SaleError reports a failed sale write. Exactly one of ProductID or SaleID is set,
// depending on Op.
type SaleError struct {
	Op        string
	ProductID int64
	SaleID    int64
	Err       error
}

func (e *SaleError) Error() string {
	if e.Op == OpDelete {
		return fmt.Sprintf("sale %s (sale_id=%d): %v", e.Op, e.SaleID, e.Err)
	}
	return fmt.Sprintf("sale %s (product_id=%d): %v", e.Op, e.ProductID, e.Err)
}

func (e *SaleError) Unwrap() error { return e.Err }

// Operation names carried by RepositoryError and SaleError.
const (
	OpListProducts       = "list_products"
	OpTotalRevenue       = "total_revenue"
	OpTopSeller          = "top_seller"
	OpRecentTransactions = "recent_transactions"
	OpRecord             = "record"
	OpDelete             = "delete"
)
