package balancer

import "fmt"

// GlobalPool is the reserved move destination meaning "return the page
// to the server's global free pool" rather than to a specific class.
const GlobalPool ClassID = 0

// Decision is the outcome of one tick: either a page move from Src to
// Dst, or nothing. The zero value is "no decision"; there is no magic
// sentinel id, so class 0 stays unambiguous as the global pool.
type Decision struct {
	Src ClassID
	Dst ClassID
	ok  bool
}

// MoveDecision builds an actionable decision to move one page from src
// to dst.
func MoveDecision(src, dst ClassID) Decision {
	return Decision{Src: src, Dst: dst, ok: true}
}

// Actionable reports whether the decision names a move at all.
func (d Decision) Actionable() bool { return d.ok }

// FreesToGlobal reports whether the decision returns a page to the
// global pool rather than handing it to another class.
func (d Decision) FreesToGlobal() bool { return d.ok && d.Dst == GlobalPool }

func (d Decision) String() string {
	switch {
	case !d.ok:
		return "no decision"
	case d.Dst == GlobalPool:
		return fmt.Sprintf("free page from class %d to global pool", d.Src)
	default:
		return fmt.Sprintf("move page from class %d to class %d", d.Src, d.Dst)
	}
}
