// Package metrics defines the economy counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tazos"

// Metrics groups the engine's counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	BetsTotal           *prometheus.CounterVec
	WageredTotal        *prometheus.CounterVec
	PaidOutTotal        *prometheus.CounterVec
	EventsResolvedTotal *prometheus.CounterVec
	StoreErrorsTotal    *prometheus.CounterVec
}

// New creates unregistered counters.
func New() *Metrics {
	return &Metrics{
		BetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bets_total",
				Help:      "Total number of bets placed per game",
			},
			[]string{"game"},
		),
		WageredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wagered_total",
				Help:      "Total tazos wagered per game",
			},
			[]string{"game"},
		),
		PaidOutTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "paid_out_total",
				Help:      "Total tazos credited per game or event",
			},
			[]string{"game"},
		),
		EventsResolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_resolved_total",
				Help:      "Community events resolved, by outcome",
			},
			[]string{"event", "outcome"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Store failures surfaced to the command boundary",
			},
			[]string{"op"},
		),
	}
}

// Register adds every counter to the registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.BetsTotal,
		m.WageredTotal,
		m.PaidOutTotal,
		m.EventsResolvedTotal,
		m.StoreErrorsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Bet(game string, amount int64) {
	if m == nil {
		return
	}
	m.BetsTotal.WithLabelValues(game).Inc()
	m.WageredTotal.WithLabelValues(game).Add(float64(amount))
}

func (m *Metrics) Payout(game string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.PaidOutTotal.WithLabelValues(game).Add(float64(amount))
}

func (m *Metrics) EventResolved(event, outcome string) {
	if m == nil {
		return
	}
	m.EventsResolvedTotal.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(op).Inc()
}
