package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeBadQuantity       = "bad_qty"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

// Checkout groups the checkout engine's collectors. A nil *Checkout is a
// valid no-op.
type Checkout struct {
	Quotes    *prometheus.CounterVec
	Checkouts *prometheus.CounterVec
	LatencyMS prometheus.Histogram
}

func NewCheckout(reg prometheus.Registerer) *Checkout {
	m := &Checkout{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "checkout",
			Name:      "quotes_total",
			Help:      "Total number of quote requests by outcome.",
		}, []string{"outcome"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "checkout",
			Name:      "checkouts_total",
			Help:      "Total number of checkout attempts by outcome.",
		}, []string{"outcome"}),
		LatencyMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pos",
			Subsystem: "checkout",
			Name:      "duration_ms",
			Help:      "Checkout transaction latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
	reg.MustRegister(m.Quotes, m.Checkouts, m.LatencyMS)
	return m
}

func (m *Checkout) ObserveQuote(outcome string) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(outcome).Inc()
}

func (m *Checkout) ObserveCheckout(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	m.LatencyMS.Observe(float64(elapsed) / float64(time.Millisecond))
}

// Handler serves the given gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
