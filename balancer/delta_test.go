package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDelta_FirstSight_ClassAbsent(t *testing.T) {
	// GIVEN a class that exists in the current snapshot only
	prev := Snapshot{
		1: {"evicted": "10"},
	}
	cur := Snapshot{
		1: {"evicted": "15"},
		2: {"evicted": "100"},
	}

	// WHEN deltas are computed
	delta, totals := ComputeDelta(prev, cur)

	// THEN the new class is entirely absent from the delta set and totals
	if _, ok := delta[2]; ok {
		t.Errorf("class 2 appeared in delta on first sight")
	}
	assert.Equal(t, int64(15), totals.Value["evicted"], "totals must only cover shared classes")
	assert.Equal(t, int64(5), totals.Delta["evicted"])
}

func TestComputeDelta_NumericClassification(t *testing.T) {
	prev := Snapshot{
		1: {"evicted": "10", "version": "1.6.21", "age": "100"},
	}
	cur := Snapshot{
		1: {"evicted": "12", "version": "1.6.21", "age": "90"},
	}

	delta, totals := ComputeDelta(prev, cur)

	ev := delta[1]["evicted"]
	assert.True(t, ev.Numeric)
	assert.True(t, ev.HasDelta)
	assert.Equal(t, int64(12), ev.Value)
	assert.Equal(t, int64(2), ev.Delta)

	// Text counters are carried as-is, with no delta, and excluded from totals
	ver := delta[1]["version"]
	assert.False(t, ver.Numeric)
	assert.False(t, ver.HasDelta)
	assert.Equal(t, "1.6.21", ver.Raw)
	_, inTotals := totals.Value["version"]
	assert.False(t, inTotals)

	age := delta[1]["age"]
	assert.Equal(t, int64(-10), age.Delta, "deltas may be negative")
}

func TestComputeDelta_CounterResetFlowsThrough(t *testing.T) {
	// GIVEN a server-side stats reset dropping a counter back to zero
	prev := Snapshot{1: {"evicted": "5000"}}
	cur := Snapshot{1: {"evicted": "3"}}

	delta, totals := ComputeDelta(prev, cur)

	// THEN the negative delta flows through unchanged
	assert.Equal(t, int64(-4997), delta[1]["evicted"].Delta)
	assert.Equal(t, int64(-4997), totals.Delta["evicted"])
}

func TestComputeDelta_NewCounterHasNoDelta(t *testing.T) {
	prev := Snapshot{1: {"evicted": "1"}}
	cur := Snapshot{1: {"evicted": "1", "crawler_reclaimed": "7"}}

	delta, totals := ComputeDelta(prev, cur)

	st := delta[1]["crawler_reclaimed"]
	assert.True(t, st.Numeric)
	assert.False(t, st.HasDelta, "a counter seen for the first time has no delta")
	_, inTotals := totals.Value["crawler_reclaimed"]
	assert.False(t, inTotals)
}

func TestComputeDelta_TotalsAccumulateAcrossClasses(t *testing.T) {
	prev := Snapshot{
		1: {"evicted": "10", "total_pages": "4"},
		2: {"evicted": "20", "total_pages": "6"},
	}
	cur := Snapshot{
		1: {"evicted": "13", "total_pages": "4"},
		2: {"evicted": "27", "total_pages": "7"},
	}

	_, totals := ComputeDelta(prev, cur)

	assert.Equal(t, int64(40), totals.Value["evicted"])
	assert.Equal(t, int64(10), totals.Delta["evicted"])
	assert.Equal(t, int64(11), totals.Value["total_pages"])
	assert.Equal(t, int64(1), totals.Delta["total_pages"])
}
