package balancer

// ClassTick is one class's observed behavior during a single tick.
// Share is the class's fraction of the tick's total evictions and is
// only meaningful when HasShare is set; Age is always recorded, even
// for a tick with no activity.
type ClassTick struct {
	Dirty    bool
	Age      float64
	Share    float64
	HasShare bool
}

// TickRecord is one tick's per-class entries. The decision engine
// populates the current record in place while scanning the tick's
// deltas.
type TickRecord map[ClassID]ClassTick

// History is the bounded sliding window of tick records for one server
// connection. It always holds at least one (possibly empty) record and
// is reset to exactly that state whenever the connection is lost.
//
// Decisions are only emitted once the window is full, which imposes a
// warm-up period of one full window after every (re)connection.
type History struct {
	window int
	ticks  []TickRecord
}

// NewHistory creates a History holding a single empty tick record.
func NewHistory(window int) *History {
	h := &History{window: window}
	h.Reset()
	return h
}

// Reset discards every record, leaving one empty tick. Called after a
// reconnect: readings across a connection gap are not comparable.
func (h *History) Reset() {
	h.ticks = []TickRecord{make(TickRecord)}
}

// Advance appends an empty record for the new tick, evicting the
// oldest once the window is full, and returns the new record for the
// engine to populate.
func (h *History) Advance() TickRecord {
	rec := make(TickRecord)
	h.ticks = append(h.ticks, rec)
	if len(h.ticks) > h.window {
		h.ticks = h.ticks[1:]
	}
	return rec
}

// Len returns the number of tick records currently held.
func (h *History) Len() int { return len(h.ticks) }

// Full reports whether the warm-up period is over.
func (h *History) Full() bool { return len(h.ticks) >= h.window }

// AgeSum totals the class's recorded age across the whole window.
func (h *History) AgeSum(id ClassID) float64 {
	var sum float64
	for _, rec := range h.ticks {
		if ct, ok := rec[id]; ok {
			sum += ct.Age
		}
	}
	return sum
}

// DirtyTicks counts window ticks where the class gained pages or
// evicted anything.
func (h *History) DirtyTicks(id ClassID) int {
	var n int
	for _, rec := range h.ticks {
		if ct, ok := rec[id]; ok && ct.Dirty {
			n++
		}
	}
	return n
}

// EvictionTicks counts window ticks where the class had a positive
// eviction share.
func (h *History) EvictionTicks(id ClassID) int {
	var n int
	for _, rec := range h.ticks {
		if ct, ok := rec[id]; ok && ct.HasShare && ct.Share > 0 {
			n++
		}
	}
	return n
}

// ShareSum totals the class's eviction share across the whole window.
func (h *History) ShareSum(id ClassID) float64 {
	var sum float64
	for _, rec := range h.ticks {
		if ct, ok := rec[id]; ok && ct.HasShare {
			sum += ct.Share
		}
	}
	return sum
}
