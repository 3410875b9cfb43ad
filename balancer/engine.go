package balancer

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Engine applies the rebalancing heuristic to one tick's deltas. It is
// single-threaded and performs no I/O; its only side effect is
// populating the current tick record of the history it is handed.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine with the given policy. The policy is
// assumed validated.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Decide appends the current tick to history, folds the tick's deltas
// into it, and returns the page move to make, if any. During warm-up,
// while the history window is not yet full, it always returns no
// decision regardless of what the heuristic would have picked.
//
// Smoothing the age over the window dampens single-tick noise from
// items churning in and out; the ratio comparison deliberately errs
// toward moving slightly more pages than strictly necessary while a
// class is still evicting, trading minor over-correction for avoidance
// of oscillating moves between two classes.
func (e *Engine) Decide(history *History, delta Delta, totals Totals) Decision {
	w := history.Advance()

	var decision Decision
	var (
		oldest      ClassID
		oldestAge   = -1.0
		youngest    ClassID
		youngestAge = math.Inf(1)
	)

	for id, class := range delta {
		evicted, haveEvicted := class[counterEvicted]
		pages, havePages := class[counterTotalPages]
		if !haveEvicted || !havePages || !evicted.HasDelta || !pages.HasDelta {
			// Not enough signal for this class this tick.
			continue
		}

		ct := ClassTick{Age: float64(class[counterAge].Value)}
		if pages.Delta > 0 || evicted.Delta > 0 {
			ct.Dirty = true
		}
		if evicted.Delta > 0 {
			if total := totals.Delta[counterEvicted]; total > 0 {
				ct.Share = float64(evicted.Delta) / float64(total)
				ct.HasShare = true
			}
		}
		w[id] = ct

		smoothedAge := history.AgeSum(id) / float64(history.Len())
		evictionTicks := history.EvictionTicks(id)
		shareMean := history.ShareSum(id) / float64(e.policy.Window)

		logrus.Debugf("class %d: age=%.0f smoothed_age=%.1f dirty=%v ev_delta=%d ev_ticks=%d share_mean=%.3f",
			id, ct.Age, smoothedAge, ct.Dirty, evicted.Delta, evictionTicks, shareMean)

		// A long-idle class hoarding free chunks is relinquished to the
		// global pool before any head-to-head comparison is attempted.
		free := class[counterFreeChunks]
		perPage := class[counterChunksPerPage]
		if free.Numeric && perPage.Numeric &&
			float64(free.Value) > float64(perPage.Value)*e.policy.FreeChunkMultiplier &&
			history.DirtyTicks(id) == 0 {
			decision = MoveDecision(id, GlobalPool)
			break
		}

		if pages.Value > e.policy.MinSourcePages && smoothedAge > oldestAge {
			oldest, oldestAge = id, smoothedAge
		}

		persistent := float64(evictionTicks) > float64(e.policy.Window)/e.policy.PersistenceDivisor ||
			shareMean > e.policy.ShareThreshold
		if persistent && smoothedAge < youngestAge {
			youngest, youngestAge = id, smoothedAge
		}
	}

	if !decision.Actionable() && oldestAge >= 0 && !math.IsInf(youngestAge, 1) &&
		oldest != youngest && youngestAge < oldestAge*e.policy.Ratio {
		// Only move toward a class that is evicting right now, not one
		// that merely evicted earlier in the window.
		if cur, ok := w[youngest]; ok && cur.HasShare {
			decision = MoveDecision(oldest, youngest)
		}
	}

	if !history.Full() {
		logrus.Debugf("warming up: %d/%d ticks", history.Len(), e.policy.Window)
		return Decision{}
	}
	return decision
}
