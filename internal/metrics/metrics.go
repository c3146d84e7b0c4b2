// Package metrics defines Prometheus metrics for the clinic console.
//
// Metrics live on their own registry so tests and multiple servers in one
// process do not collide on the default registerer.
package metrics

import (
	"net/http"

	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ session.Recorder = (*Metrics)(nil)

type Metrics struct {
	registry *prometheus.Registry

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal *prometheus.CounterVec
	// CheckAuthTotal counts session re-validations by outcome.
	CheckAuthTotal *prometheus.CounterVec
	// GuardDecisionsTotal counts guard decisions by route and state.
	GuardDecisionsTotal *prometheus.CounterVec
	// ActiveSessions is the number of browser sessions held in memory.
	ActiveSessions prometheus.Gauge
	// SweptSessionsTotal counts idle browser sessions dropped from memory.
	SweptSessionsTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_console_logins_total",
				Help: "Total login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		CheckAuthTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_console_check_auth_total",
				Help: "Total session re-validations by outcome.",
			},
			[]string{"outcome"},
		),
		GuardDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_console_guard_decisions_total",
				Help: "Total route guard decisions by route and state.",
			},
			[]string{"route", "state"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "clinic_console_active_sessions",
				Help: "Browser sessions currently held in memory.",
			},
		),
		SweptSessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clinic_console_swept_sessions_total",
				Help: "Total idle browser sessions dropped from memory.",
			},
		),
	}
	m.registry.MustRegister(
		m.LoginsTotal,
		m.CheckAuthTotal,
		m.GuardDecisionsTotal,
		m.ActiveSessions,
		m.SweptSessionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) LoginCompleted(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CheckAuthCompleted(outcome string) {
	m.CheckAuthTotal.WithLabelValues(outcome).Inc()
}

// GuardDecided records a decision for route.
func (m *Metrics) GuardDecided(route string, d guard.Decision) {
	m.GuardDecisionsTotal.WithLabelValues(route, d.State.String()).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionsActive sets the number of browser sessions held in memory.
func (m *Metrics) SessionsActive(n int) {
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) SessionsSwept(n int) {
	m.SweptSessionsTotal.Add(float64(n))
}
