package balancer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// burstRetryDelay replaces the configured interval for the tick right
// after a free-to-global decision, so bursts of newly idle classes
// (e.g. after a cache flush) drain quickly.
const burstRetryDelay = 50 * time.Millisecond

// State is the session's connection lifecycle phase.
type State int

const (
	// Disconnected means no server connection is established.
	Disconnected State = iota
	// WarmingUp means connected with a partially filled history window.
	WarmingUp
	// Active means connected with a full window; decisions are flowing.
	Active
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case WarmingUp:
		return "warming-up"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// StatsClient is the slice of the protocol client the session needs.
// *memcache.Client satisfies it; tests substitute fakes.
type StatsClient interface {
	DisableAutomove() (string, error)
	StatsSnapshot() (Snapshot, error)
	Reassign(src, dst int) (string, error)
	Close() error
}

// DialFunc opens a fresh server connection for one session attempt.
type DialFunc func() (StatsClient, error)

// SessionConfig carries the loop's operational settings.
type SessionConfig struct {
	// Interval is the sleep between poll ticks.
	Interval time.Duration
	// Automove gates whether actionable decisions are transmitted.
	// When false, decisions are computed and logged only.
	Automove bool
	// Policy configures the decision engine.
	Policy Policy
}

// Session owns all mutable control-loop state: the previous snapshot
// and the rolling history. Both are scoped to one server connection
// and discarded on any I/O failure; readings across a connection gap
// are not comparable, so there is no attempt to resume a partial
// window. Single-threaded by construction.
type Session struct {
	cfg     SessionConfig
	dial    DialFunc
	engine  *Engine
	metrics *Metrics

	state   State
	client  StatsClient
	prev    Snapshot
	history *History
	last    Decision
}

// NewSession wires a session from its collaborators. A nil metrics
// gets a private registry so callers that don't scrape can pass nil.
func NewSession(cfg SessionConfig, dial DialFunc, metrics *Metrics) *Session {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Session{
		cfg:     cfg,
		dial:    dial,
		engine:  NewEngine(cfg.Policy),
		metrics: metrics,
		state:   Disconnected,
		history: NewHistory(cfg.Policy.Window),
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Run drives the connect/poll/reconnect loop until ctx is cancelled.
// Transient failures never escape: any I/O error tears the connection
// down, resets all per-connection state, and retries after one
// interval. The process only stops from the outside.
func (s *Session) Run(ctx context.Context) {
	for {
		if err := s.runConnection(ctx); err != nil && ctx.Err() == nil {
			logrus.Warnf("connection to server lost: %v", err)
			s.metrics.Reconnects.Inc()
		}
		s.reset()
		if ctx.Err() != nil || !sleep(ctx, s.cfg.Interval) {
			return
		}
	}
}

// runConnection dials, disables the server's own automover, and polls
// until an I/O error or cancellation.
func (s *Session) runConnection(ctx context.Context) error {
	client, err := s.dial()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	s.client = client
	s.state = WarmingUp

	reply, err := client.DisableAutomove()
	if err != nil {
		return fmt.Errorf("disable server automover: %w", err)
	}
	logrus.Infof("connected; server automover disabled (%s), warming up over %d ticks",
		reply, s.cfg.Policy.Window)

	for ctx.Err() == nil {
		if err := s.tick(); err != nil {
			s.metrics.PollErrors.Inc()
			return err
		}
		interval := s.cfg.Interval
		if s.last.FreesToGlobal() {
			interval = burstRetryDelay
		}
		if !sleep(ctx, interval) {
			return nil
		}
	}
	return nil
}

// tick performs one poll: snapshot, delta, decision, optional move.
func (s *Session) tick() error {
	cur, err := s.client.StatsSnapshot()
	if err != nil {
		return fmt.Errorf("poll stats: %w", err)
	}
	s.metrics.Ticks.Inc()

	prev := s.prev
	s.prev = cur
	if prev == nil {
		// First poll of the connection; nothing to compare against.
		s.last = Decision{}
		return nil
	}

	delta, totals := ComputeDelta(prev, cur)
	decision := s.engine.Decide(s.history, delta, totals)
	s.last = decision
	s.metrics.ObserveDecision(decision)

	if s.state == WarmingUp && s.history.Full() {
		s.state = Active
		logrus.Infof("history window full after %d ticks; decisions active", s.history.Len())
	}

	if !decision.Actionable() {
		logrus.Debug("no decision this tick")
		return nil
	}
	if !s.cfg.Automove {
		logrus.Infof("would %s (automove disabled)", decision)
		return nil
	}
	reply, err := s.client.Reassign(int(decision.Src), int(decision.Dst))
	if err != nil {
		return fmt.Errorf("reassign: %w", err)
	}
	s.metrics.MovesSent.Inc()
	logrus.Infof("%s: server replied %q", decision, reply)
	return nil
}

// reset returns the session to the Disconnected state, discarding the
// previous snapshot and clearing the history to a single empty record.
func (s *Session) reset() {
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
	s.prev = nil
	s.last = Decision{}
	s.history.Reset()
	s.state = Disconnected
}

// sleep waits d or until cancellation, reporting whether the caller
// should keep looping.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
