package observers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives shop lifecycle measurements.
type Recorder interface {
	ObserveFetch(success bool, products int, duration time.Duration)
	IncStaleFetch()
	ObserveMutation(op string, success bool)
	ObservePersist(success bool)
	SetCartQuantity(n int)
}

// NopRecorder discards every measurement.
type NopRecorder struct{}

func (NopRecorder) ObserveFetch(bool, int, time.Duration) {}
func (NopRecorder) IncStaleFetch()                        {}
func (NopRecorder) ObserveMutation(string, bool)          {}
func (NopRecorder) ObservePersist(bool)                   {}
func (NopRecorder) SetCartQuantity(int)                   {}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	catalogSize     prometheus.Gauge
	staleFetchTotal prometheus.Counter
	mutationsTotal  *prometheus.CounterVec
	persistTotal    *prometheus.CounterVec
	cartQuantity    prometheus.Gauge
}

// NewPrometheusRecorder registers the shop metrics on reg.
// A nil reg registers on the default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_catalog_fetch_total",
				Help: "Total number of catalog fetches by status",
			},
			[]string{"status"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shop_catalog_fetch_duration_seconds",
				Help:    "Duration of catalog fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		catalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shop_catalog_products",
				Help: "Number of products returned by the last applied fetch",
			},
		),
		staleFetchTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shop_catalog_stale_fetch_total",
				Help: "Fetch responses discarded because a newer request was already applied",
			},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_catalog_mutations_total",
				Help: "Catalog mutations by operation and status",
			},
			[]string{"op", "status"},
		),
		persistTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_cart_persist_total",
				Help: "Cart persistence writes by status",
			},
			[]string{"status"},
		),
		cartQuantity: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shop_cart_quantity",
				Help: "Sum of all cart line quantities",
			},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// ObserveFetch records a completed catalog fetch.
func (p *PrometheusRecorder) ObserveFetch(success bool, products int, duration time.Duration) {
	p.fetchTotal.WithLabelValues(status(success)).Inc()
	p.fetchDuration.Observe(duration.Seconds())
	if success {
		p.catalogSize.Set(float64(products))
	}
}

// IncStaleFetch counts a fetch response dropped by the request sequencer.
func (p *PrometheusRecorder) IncStaleFetch() {
	p.staleFetchTotal.Inc()
}

// ObserveMutation records a create/update/delete/image/restock call.
func (p *PrometheusRecorder) ObserveMutation(op string, success bool) {
	p.mutationsTotal.WithLabelValues(op, status(success)).Inc()
}

// ObservePersist records one write to the cart repository.
func (p *PrometheusRecorder) ObservePersist(success bool) {
	p.persistTotal.WithLabelValues(status(success)).Inc()
}

// SetCartQuantity tracks the current cart size.
func (p *PrometheusRecorder) SetCartQuantity(n int) {
	p.cartQuantity.Set(float64(n))
}

var _ Recorder = (*PrometheusRecorder)(nil)
var _ Recorder = NopRecorder{}
