package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersAndHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveQuery(OutcomeOK, 20*time.Millisecond)
	r.ObserveQuery(OutcomeOK, 10*time.Millisecond)
	r.ObserveQuery(OutcomeStatusError, time.Millisecond)
	r.SaleRecorded()
	r.SaleFailed()
	r.SaleDeleted()
	r.SnapshotBuilt()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Queries.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Queries.WithLabelValues(OutcomeStatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SalesRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SalesFailed))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.SnapshotsFailed))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "pos_sales_recorded_total 1")
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveQuery(OutcomeOK, time.Second)
		r.SaleRecorded()
		r.SaleFailed()
		r.SaleDeleted()
		r.SnapshotBuilt()
		r.SnapshotFailed()
	})
}
