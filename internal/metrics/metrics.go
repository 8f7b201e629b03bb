// Package metrics exposes the business metrics the kitchen dashboards read:
// order placement counts, queue depth per status and transition counts per
// state-machine edge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OrdersPlaced   prometheus.Counter
	OrderValue     prometheus.Histogram
	Transitions    *prometheus.CounterVec
	QueueDepth     *prometheus.GaugeVec
	UpdateFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "burger",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders accepted by admission control.",
		}),
		OrderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "burger",
			Subsystem: "orders",
			Name:      "value",
			Help:      "Order totals in currency units.",
			Buckets:   []float64{5, 10, 20, 40, 80, 160, 320},
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "burger",
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Status transitions applied by the kitchen worker, by edge.",
		}, []string{"from", "to"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "burger",
			Subsystem: "orders",
			Name:      "queue_depth",
			Help:      "Orders per status as of the last worker pass.",
		}, []string{"status"}),
		UpdateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "burger",
			Subsystem: "orders",
			Name:      "update_failures_total",
			Help:      "Per-order store update failures during worker passes.",
		}),
	}

	reg.MustRegister(m.OrdersPlaced, m.OrderValue, m.Transitions, m.QueueDepth, m.UpdateFailures)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
