package balancer

import "strconv"

// Counter names the engine consumes, exactly as they appear on the
// wire: "stats items" supplies evicted and age, "stats slabs" supplies
// the page and chunk counters.
const (
	counterEvicted       = "evicted"
	counterTotalPages    = "total_pages"
	counterFreeChunks    = "free_chunks"
	counterChunksPerPage = "chunks_per_page"
	counterAge           = "age"
)

// ClassStat is one counter of one class for the current tick. Numeric
// counters carry Value; those also present in the previous snapshot
// carry Delta (current minus previous, negative if the server reset
// the counter underneath us). Text counters carry only Raw.
type ClassStat struct {
	Raw      string
	Value    int64
	Delta    int64
	Numeric  bool
	HasDelta bool
}

// ClassDelta holds every counter of one slab class for the tick.
type ClassDelta map[string]ClassStat

// Delta maps each class present in both the previous and current
// snapshot to its counters. A class seen for the first time this tick
// has no entry at all: it stays invisible to the decision engine until
// the next tick.
type Delta map[ClassID]ClassDelta

// Totals accumulates, per counter name, the sum of current values and
// the sum of deltas across every class present in the Delta. The
// engine uses these to turn per-class quantities into ratios, e.g. a
// class's share of this tick's evictions.
type Totals struct {
	Value map[string]int64
	Delta map[string]int64
}

// ComputeDelta folds the current snapshot against the previous one.
// It never fails: a counter whose current value is not an unsigned
// integer literal is simply treated as text.
func ComputeDelta(prev, cur Snapshot) (Delta, Totals) {
	delta := make(Delta, len(cur))
	totals := Totals{
		Value: make(map[string]int64),
		Delta: make(map[string]int64),
	}
	for id, counters := range cur {
		prevCounters, seenBefore := prev[id]
		if !seenBefore {
			continue
		}
		cd := make(ClassDelta, len(counters))
		for name, raw := range counters {
			st := ClassStat{Raw: raw}
			if isUint(raw) {
				v, err := strconv.ParseInt(raw, 10, 64)
				if err == nil {
					st.Value = v
					st.Numeric = true
					if prevRaw, shared := prevCounters[name]; shared {
						totals.Value[name] += v
						if pv, perr := strconv.ParseInt(prevRaw, 10, 64); perr == nil && isUint(prevRaw) {
							st.Delta = v - pv
							st.HasDelta = true
							totals.Delta[name] += st.Delta
						}
					}
				}
			}
			cd[name] = st
		}
		delta[id] = cd
	}
	return delta, totals
}
