// Package metrics exposes room and session counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coderoom"

// RoomSource is read on every scrape.
type RoomSource interface {
	Count() int
	MemberTotal() int
}

type Metrics struct {
	SessionsOpen      prometheus.Gauge
	Broadcasts        *prometheus.CounterVec
	DeliveriesDropped prometheus.Counter
	InboundMalformed  prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New(rooms RoomSource) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		SessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Connections currently attached to a room.",
		}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Events sent to a room, by action.",
		}, []string{"action"}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_dropped_total",
			Help:      "Per-recipient deliveries that failed.",
		}),
		InboundMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_malformed_total",
			Help:      "Client messages dropped because they could not be decoded.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.SessionsOpen,
		m.Broadcasts,
		m.DeliveriesDropped,
		m.InboundMalformed,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms with at least one joined member.",
		}, func() float64 { return float64(rooms.Count()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members_total",
			Help:      "Joined members across all rooms.",
		}, func() float64 { return float64(rooms.MemberTotal()) }),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes Prometheus metrics at /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
