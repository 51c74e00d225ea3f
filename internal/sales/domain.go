package sales

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. The client never modifies it.
type Product struct {
	ID       int64           `json:"product_id"`
	Category string          `json:"category"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
}

// Sale represents a recorded sales transaction. ID and Time are assigned by the server.
type Sale struct {
	ID          int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Time        time.Time       `json:"sale_time"`
	// TimeRaw is sale_time exactly as the server sent it.
	TimeRaw string `json:"sale_time_raw"`
}

// SaleWithProduct is a Sale joined with its product for display.
type SaleWithProduct struct {
	Sale
	ItemName string `json:"item_name"`
	Category string `json:"category"`
}

// TopSeller is the product with the most recorded sales.
type TopSeller struct {
	ProductID  int64  `json:"product_id"`
	ItemName   string `json:"item_name"`
	TotalSales int64  `json:"total_sales"`
}

// DashboardSnapshot is the assembled admin view. TopSeller is nil when there are no sales.
type DashboardSnapshot struct {
	TotalRevenue       decimal.Decimal   `json:"total_revenue"`
	TopSeller          *TopSeller        `json:"top_seller"`
	RecentTransactions []SaleWithProduct `json:"recent_transactions"`
}

const (
	unknownItem       = "Unknown Item"
	displayTimeLayout = "Jan 2, 03:04 PM"
)

// saleTimeLayouts are the timestamp formats the query service is known to emit.
var saleTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseSaleTime returns the zero time when raw matches none of the known layouts.
func parseSaleTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range saleTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DisplayTime formats the sale time, or returns the raw server value when it could not be parsed.
func (s SaleWithProduct) DisplayTime() string {
	if s.Time.IsZero() {
		return s.TimeRaw
	}
	return s.Time.Format(displayTimeLayout)
}

// DisplayName falls back to a placeholder when the join produced no name.
func (s SaleWithProduct) DisplayName() string {
	if strings.TrimSpace(s.ItemName) == "" {
		return unknownItem
	}
	return s.ItemName
}
