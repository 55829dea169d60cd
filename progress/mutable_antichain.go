package progress

import "github.com/flowmesh/xdf/order"

// MutableAntichain tracks the minimal elements of a multiset of
// timestamps under the partial order, together with per-element counts
// (spec §3 "MutableAntichain<T>"). Updating with (T, +delta) adjusts the
// count for T; the frontier is the set of minimal Ts with nonzero count.
type MutableAntichain[T order.Data[T]] struct {
	counts   map[T]int64
	frontier []T // cached minimal elements with nonzero count
}

// NewMutableAntichain returns an empty MutableAntichain (no outstanding
// counts, empty frontier — "everything has already happened").
func NewMutableAntichain[T order.Data[T]]() *MutableAntichain[T] {
	return &MutableAntichain[T]{counts: make(map[T]int64)}
}

// Frontier returns the current minimal elements with nonzero count.
// Callers must not mutate the returned slice.
func (m *MutableAntichain[T]) Frontier() []T { return m.frontier }

// IsEmpty reports whether the frontier is empty (no outstanding
// messages/capabilities anywhere at or after any timestamp).
func (m *MutableAntichain[T]) IsEmpty() bool { return len(m.frontier) == 0 }

// Update applies a single (t, delta) and returns the frontier changes it
// caused, expressed as ChangeBatch-style (T, ±1) entries: +1 for a
// timestamp newly entering the frontier, -1 for one leaving it.
func (m *MutableAntichain[T]) Update(t T, delta int64) []Update[T] {
	return m.UpdateIter([]Update[T]{{Time: t, Delta: delta}})
}

// UpdateIter applies a batch of updates atomically (the frontier is
// recomputed once, after all deltas are folded into the counts map) and
// returns the resulting frontier changes.
func (m *MutableAntichain[T]) UpdateIter(updates []Update[T]) []Update[T] {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		m.counts[u.Time] += u.Delta
		if m.counts[u.Time] == 0 {
			delete(m.counts, u.Time)
		}
	}
	return m.recompute()
}

// recompute rebuilds the minimal-elements frontier from m.counts and
// diffs it against the previous frontier to produce change events.
func (m *MutableAntichain[T]) recompute() []Update[T] {
	next := make([]T, 0, len(m.counts))
	for t := range m.counts {
		dominated := false
		for u := range m.counts {
			if u != t && u.LessEqual(t) && !t.LessEqual(u) {
				dominated = true
				break
			}
			// equal elements under LessEqual both ways: keep both, they
			// are distinct comparable values (e.g. distinct struct
			// instances that happen to compare LessEqual both ways are
			// equal as Go values too since T is comparable).
		}
		if !dominated {
			next = append(next, t)
		}
	}

	var changes []Update[T]
	prevSet := make(map[T]bool, len(m.frontier))
	for _, t := range m.frontier {
		prevSet[t] = true
	}
	nextSet := make(map[T]bool, len(next))
	for _, t := range next {
		nextSet[t] = true
	}
	for _, t := range m.frontier {
		if !nextSet[t] {
			changes = append(changes, Update[T]{Time: t, Delta: -1})
		}
	}
	for _, t := range next {
		if !prevSet[t] {
			changes = append(changes, Update[T]{Time: t, Delta: +1})
		}
	}
	m.frontier = next
	return changes
}

// Count returns the outstanding count at exactly t (0 if none).
func (m *MutableAntichain[T]) Count(t T) int64 { return m.counts[t] }
