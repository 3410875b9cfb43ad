package balancer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveDecisionKinds(t *testing.T) {
	m := NewMetrics()

	m.ObserveDecision(Decision{})
	m.ObserveDecision(MoveDecision(1, 2))
	m.ObserveDecision(MoveDecision(3, GlobalPool))
	m.ObserveDecision(MoveDecision(3, GlobalPool))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("move")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("free")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two Metrics values must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()
	a.Ticks.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Ticks))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Ticks))
}
