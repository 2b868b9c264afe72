// Package metrics exposes prometheus counters for the order lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts order lifecycle events.
type Recorder struct {
	registry      *prometheus.Registry
	ordersCreated prometheus.Counter
	orderRevenue  prometheus.Counter
	statusUpdates *prometheus.CounterVec
	cancellations prometheus.Counter
}

// NewRecorder registers the order counters on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "orders_created_total",
			Help:      "Orders created from carts.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "order_revenue_total",
			Help:      "Sum of the total price of created orders.",
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "order_status_updates_total",
			Help:      "Order status changes by new status.",
		}, []string{"status"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "orders_cancelled_total",
			Help:      "Pending orders cancelled and deleted.",
		}),
	}
	r.registry.MustRegister(
		r.ordersCreated,
		r.orderRevenue,
		r.statusUpdates,
		r.cancellations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// OrderCreated records a new order of the given total.
func (r *Recorder) OrderCreated(total float64) {
	if r == nil {
		return
	}
	r.ordersCreated.Inc()
	r.orderRevenue.Add(total)
}

// StatusUpdated records a status change.
func (r *Recorder) StatusUpdated(status string) {
	if r == nil {
		return
	}
	r.statusUpdates.WithLabelValues(status).Inc()
}

// OrderCancelled records a cancellation.
func (r *Recorder) OrderCancelled() {
	if r == nil {
		return
	}
	r.cancellations.Inc()
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
