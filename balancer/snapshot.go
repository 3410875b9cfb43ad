package balancer

// ClassID identifies one slab class on the server. Class id 0 is the
// server's global page pool: a legal move destination, never a source.
type ClassID int

// Snapshot is one point-in-time view of the server's per-class
// statistics, keyed by slab class id and counter name. Values are the
// raw wire text; classification into numeric vs. text happens during
// delta computation. Counters from "stats items" and "stats slabs"
// share class ids and are merged into the same per-class map.
//
// A Snapshot is immutable once built; ownership transfers wholesale
// into ComputeDelta.
type Snapshot map[ClassID]map[string]string

// isUint reports whether s is a non-empty unsigned decimal integer
// literal. Counters failing this check are carried as text and ignored
// by the numeric pipeline.
func isUint(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
