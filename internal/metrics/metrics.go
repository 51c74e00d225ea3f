package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for query observations.
const (
	OutcomeOK          = "ok"
	OutcomeStatusError = "status_error"
	OutcomeNetError    = "network_error"
	OutcomeDecodeError = "decode_error"
)

type Registry struct {
	reg *prometheus.Registry

	Queries      *prometheus.CounterVec
	QueryLatency prometheus.Histogram

	SalesRecorded prometheus.Counter
	SalesFailed   prometheus.Counter
	SalesDeleted  prometheus.Counter

	SnapshotsBuilt  prometheus.Counter
	SnapshotsFailed prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_queries_total"}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_query_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	recorded := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_recorded_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_failed_total"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sales_deleted_total"})
	built := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_snapshots_built_total"})
	snapFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_snapshots_failed_total"})

	r.MustRegister(queries, latency, recorded, failed, deleted, built, snapFailed)
	return &Registry{
		reg:             r,
		Queries:         queries,
		QueryLatency:    latency,
		SalesRecorded:   recorded,
		SalesFailed:     failed,
		SalesDeleted:    deleted,
		SnapshotsBuilt:  built,
		SnapshotsFailed: snapFailed,
	}
}

// ObserveQuery records one transport round trip. A nil registry is a no-op.
func (r *Registry) ObserveQuery(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Queries.WithLabelValues(outcome).Inc()
	r.QueryLatency.Observe(elapsed.Seconds())
}

func (r *Registry) SaleRecorded() {
	if r != nil {
		r.SalesRecorded.Inc()
	}
}

func (r *Registry) SaleFailed() {
	if r != nil {
		r.SalesFailed.Inc()
	}
}

func (r *Registry) SaleDeleted() {
	if r != nil {
		r.SalesDeleted.Inc()
	}
}

func (r *Registry) SnapshotBuilt() {
	if r != nil {
		r.SnapshotsBuilt.Inc()
	}
}

func (r *Registry) SnapshotFailed() {
	if r != nil {
		r.SnapshotsFailed.Inc()
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
