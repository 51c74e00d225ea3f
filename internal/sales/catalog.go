package sales

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"pos_sales/internal/query"
)

// DefaultCategories is the home-screen category list used when none is configured.
var DefaultCategories = []string{
	"Strawberry Fest",
	"Brownies",
	"No bake Cheese Cakes",
	"Baked Cheese Cakes",
	"Cookies",
	"Buns",
}

// Catalog reads the product list from the query service.
type Catalog struct {
	transport query.Transport
	logger    *zap.Logger
}

// NewCatalog creates a new Catalog.
func NewCatalog(transport query.Transport, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Catalog{
		transport: transport,
		logger:    logger,
	}
}

// ListProducts fetches the full catalog. It never returns a partial result:
// on transport failure the error is a *RepositoryError and the slice is nil.
// Rows that cannot be read as a product are skipped.
func (c *Catalog) ListProducts(ctx context.Context) ([]Product, error) {
	raw, err := c.transport.Execute(ctx, query.New(queryListProducts))
	if err != nil {
		c.logger.Error("failed to load products", zap.Error(err))
		return nil, &RepositoryError{Op: OpListProducts, Err: err}
	}

	rows := query.Normalize(raw)
	products := make([]Product, 0, len(rows))
	for i, row := range rows {
		p, err := productFromRow(row)
		if err != nil {
			c.logger.Warn("skipping catalog row", zap.Int("row", i), zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	c.logger.Info("catalog loaded", zap.Int("rows", len(rows)), zap.Int("products", len(products)))
	return products, nil
}

var (
	errMissingProductID = errors.New("missing or non-integer product_id")
	errInvalidPrice     = errors.New("missing, non-numeric or negative price")
)

func productFromRow(row query.Row) (Product, error) {
	id, ok := row.Int("product_id")
	if !ok {
		return Product{}, errMissingProductID
	}
	price, ok := row.Decimal("price")
	if !ok || price.IsNegative() {
		return Product{}, errInvalidPrice
	}
	return Product{
		ID:       id,
		Category: row.Text("category"),
		ItemName: row.Text("item_name"),
		Price:    price,
	}, nil
}

// FilterByCategory returns the products whose category matches, ignoring
// surrounding whitespace and letter case. An unknown category gives an empty slice.
func FilterByCategory(products []Product, category string) []Product {
	want := strings.TrimSpace(category)
	out := make([]Product, 0)
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p.Category), want) {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct looks a product up by ID.
func FindProduct(products []Product, id int64) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// SearchCategories returns the categories containing q, case-insensitively, in their original order.
func SearchCategories(categories []string, q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}
