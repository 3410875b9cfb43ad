package balancer

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's own operational counters. Counters live
// on a private registry so tests can build as many Metrics values as
// they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	Ticks      prometheus.Counter
	Decisions  *prometheus.CounterVec
	MovesSent  prometheus.Counter
	Reconnects prometheus.Counter
	PollErrors prometheus.Counter
}

// NewMetrics creates and registers all counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "slabmove_ticks_total",
			Help: "Completed stats poll ticks.",
		}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slabmove_decisions_total",
			Help: "Decisions computed per tick, by kind.",
		}, []string{"kind"}),
		MovesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "slabmove_moves_sent_total",
			Help: "Page reassignment commands transmitted to the server.",
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "slabmove_reconnects_total",
			Help: "Connection losses followed by a state reset.",
		}),
		PollErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "slabmove_poll_errors_total",
			Help: "Failed stats polls or move commands.",
		}),
	}
}

// ObserveDecision counts one computed decision under its kind label.
func (m *Metrics) ObserveDecision(d Decision) {
	switch {
	case !d.Actionable():
		m.Decisions.WithLabelValues("none").Inc()
	case d.FreesToGlobal():
		m.Decisions.WithLabelValues("free").Inc()
	default:
		m.Decisions.WithLabelValues("move").Inc()
	}
}

// Handler serves this Metrics' registry in Prometheus exposition
// format, for mounting on an optional diagnostics listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
