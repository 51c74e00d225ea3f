package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one record as delivered by the query service. Values are whatever
// the service sent; the accessors below coerce them.
type Row map[string]any

// Has reports whether key is present and not null.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Text returns the value as a string; numbers are rendered as sent and
// missing or null values give "".
func (r Row) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Decimal coerces a JSON number or a numeric string.
func (r Row) Decimal(key string) (decimal.Decimal, bool) {
	switch v := r[key].(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return decimal.Zero, false
}

// Int coerces a JSON number or numeric string holding a whole value.
// "3.0" is accepted, "3.5" is not.
func (r Row) Int(key string) (int64, bool) {
	if n, ok := r[key].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	d, ok := r.Decimal(key)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}
