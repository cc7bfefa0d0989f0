package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics records the cart-to-order funnel.
type CheckoutMetrics struct {
	placeDuration  *prometheus.HistogramVec
	ordersPlaced   *prometheus.CounterVec
	stockConflicts *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_place_duration_seconds",
		Help:    "Duration of order placement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders committed at checkout.",
	}, []string{"payment_method"})
	stockConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_conflicts_total",
		Help: "Operations rejected because requested quantity exceeded stock.",
	}, []string{"operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order lifecycle transitions applied.",
	}, []string{"from", "to"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_stored_total",
		Help: "In-app notifications written by the worker.",
	}, []string{"type"})
	reg.MustRegister(placeDuration, ordersPlaced, stockConflicts, transitions, notifications)
	return &CheckoutMetrics{
		placeDuration:  placeDuration,
		ordersPlaced:   ordersPlaced,
		stockConflicts: stockConflicts,
		transitions:    transitions,
		notifications:  notifications,
	}
}

// ObservePlaceDuration records how long an order placement took.
func (c *CheckoutMetrics) ObservePlaceDuration(outcome string, duration time.Duration) {
	if c == nil || c.placeDuration == nil {
		return
	}
	c.placeDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOrderPlaced increments the placed counter for the payment method.
func (c *CheckoutMetrics) IncOrderPlaced(paymentMethod string) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncStockConflict increments the conflict counter for the named operation.
func (c *CheckoutMetrics) IncStockConflict(operation string) {
	if c == nil || c.stockConflicts == nil {
		return
	}
	c.stockConflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncTransition increments the transition counter for a from/to pair.
func (c *CheckoutMetrics) IncTransition(from, to string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncNotification increments the stored-notification counter by type.
func (c *CheckoutMetrics) IncNotification(kind string) {
	if c == nil || c.notifications == nil {
		return
	}
	c.notifications.WithLabelValues(normalizeLabel(kind)).Inc()
}

// Handler exposes the default prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
