package progress

import "github.com/flowmesh/xdf/order"

// Antichain is a set of pairwise-incomparable elements under a partial
// order (spec GLOSSARY), used to represent frontiers and summary sets
// compactly.
type Antichain[T order.Timestamp[T]] struct {
	elems []T
}

// NewAntichain returns an empty antichain (as a frontier: no timestamp
// can still occur, since LessEqualAny is false for every t).
func NewAntichain[T order.Timestamp[T]]() *Antichain[T] { return &Antichain[T]{} }

// Elements returns the antichain's elements. Callers must not mutate.
func (a *Antichain[T]) Elements() []T { return a.elems }

// Len reports the number of elements.
func (a *Antichain[T]) Len() int { return len(a.elems) }

// Insert adds t, dropping it if some existing element is <= t, and
// removing any existing elements that are >= t (since t would then
// dominate them out of minimality). Returns true if the antichain
// changed.
func (a *Antichain[T]) Insert(t T) bool {
	for _, e := range a.elems {
		if e.LessEqual(t) {
			return false // t is dominated, already covered
		}
	}
	kept := a.elems[:0]
	for _, e := range a.elems {
		if !t.LessEqual(e) {
			kept = append(kept, e)
		}
	}
	a.elems = append(kept, t)
	return true
}

// LessEqualAny reports whether some element of a is <= t (t is "in the
// future of" the frontier, i.e. not yet ruled out).
func (a *Antichain[T]) LessEqualAny(t T) bool {
	for _, e := range a.elems {
		if e.LessEqual(t) {
			return true
		}
	}
	return false
}

// Dominates reports whether every element of other is dominated by some
// element of a (other's frontier is at least as advanced as a's).
func (a *Antichain[T]) Dominates(other *Antichain[T]) bool {
	for _, o := range other.elems {
		if !a.LessEqualAny(o) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (a *Antichain[T]) Clone() *Antichain[T] {
	out := &Antichain[T]{elems: make([]T, len(a.elems))}
	copy(out.elems, a.elems)
	return out
}

// Equal reports whether a and b contain the same elements (order
// independent, since an antichain is conceptually a set).
func (a *Antichain[T]) Equal(b *Antichain[T]) bool {
	if len(a.elems) != len(b.elems) {
		return false
	}
	for _, e := range a.elems {
		found := false
		for _, o := range b.elems {
			if e == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
