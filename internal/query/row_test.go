package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRow_Coercion(t *testing.T) {
	row := Normalize(mustRaw(t, `[{
		"n": 12,
		"s": " 12 ",
		"f": "12.50",
		"whole": 3.0,
		"frac": 3.5,
		"bad": "abc",
		"null": null,
		"name": "Choc Chip",
		"num": 50
	}]`))[0]

	cases := []struct {
		key   string
		wantI int64
		okI   bool
		wantD string
		okD   bool
	}{
		{"n", 12, true, "12", true},
		{"s", 12, true, "12", true},
		{"f", 0, false, "12.5", true},
		{"whole", 3, true, "3", true},
		{"frac", 0, false, "3.5", true},
		{"bad", 0, false, "0", false},
		{"null", 0, false, "0", false},
		{"missing", 0, false, "0", false},
	}
	for _, tc := range cases {
		i, ok := row.Int(tc.key)
		assert.Equal(t, tc.okI, ok, "Int(%s)", tc.key)
		assert.Equal(t, tc.wantI, i, "Int(%s)", tc.key)

		d, ok := row.Decimal(tc.key)
		assert.Equal(t, tc.okD, ok, "Decimal(%s)", tc.key)
		if tc.okD {
			assert.True(t, d.Equal(decimal.RequireFromString(tc.wantD)), "Decimal(%s)=%s", tc.key, d)
		}
	}

	assert.Equal(t, "Choc Chip", row.Text("name"))
	assert.Equal(t, "50", row.Text("num"))
	assert.Equal(t, "", row.Text("null"))
	assert.True(t, row.Has("name"))
	assert.False(t, row.Has("null"))
	assert.False(t, row.Has("missing"))
}

func TestRow_DecimalKeepsPrecision(t *testing.T) {
	row := Normalize(mustRaw(t, `[{"total":"0.30","sum":0.1}]`))[0]
	total, ok := row.Decimal("total")
	assert.True(t, ok)
	sum, _ := row.Decimal("sum")
	assert.Equal(t, "0.40", total.Add(sum).StringFixed(2))
}
