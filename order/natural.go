package order

// Natural is a totally ordered timestamp over the natural numbers, the
// usual timestamp type for a loop's inner scope (spec §4.6: a loop
// back-edge carries a non-identity Summary s with s.ResultsIn(t) > t).
type Natural uint64

func (n Natural) LessEqual(other Natural) bool { return n <= other }
func (n Natural) Less(other Natural) bool      { return n < other }

// NaturalSummary advances a Natural timestamp by a fixed, non-negative
// increment. The zero value is the identity summary.
type NaturalSummary uint64

func (s NaturalSummary) FollowedBy(other NaturalSummary) NaturalSummary { return s + other }

func (s NaturalSummary) ResultsIn(t Natural) (Natural, bool) {
	const maxNatural = Natural(^uint64(0))
	if uint64(t) > uint64(maxNatural)-uint64(s) {
		return 0, false // overflow: summary cannot be applied
	}
	return t + Natural(s), true
}

// LessEqual orders summaries by how little they advance a timestamp: a
// smaller increment dominates, since it is the tighter (more useful)
// bound for the reachability engine's minimal-summary antichains.
func (s NaturalSummary) LessEqual(other NaturalSummary) bool { return s <= other }

// assertTimestamp and assertSummary are instantiated below (and in
// root.go) purely as compile-time checks: Timestamp and Summary embed
// comparable, so they can be used only as type constraints, never as the
// type of a variable.
func assertTimestamp[T Timestamp[T]]()       {}
func assertSummary[T any, S Summary[T, S]]() {}

var (
	_ = assertTimestamp[Natural]
	_ = assertSummary[Natural, NaturalSummary]
	_ = assertTimestamp[NaturalSummary]
)
