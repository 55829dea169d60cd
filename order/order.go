// Package order defines the partially ordered timestamp type and the
// path-summary monoid that the progress-tracking subsystem is built on
// (spec §3 "Timestamp T"). It has no third-party dependencies: the
// partial-order and monoid laws are pure math with nothing in the
// example corpus to wire in, so standard Go generics are the right and
// only tool for the job here.
package order

// Timestamp is a value that flows through the dataflow graph. It must be
// comparable (used as a map key by ChangeBatch and MutableAntichain) and
// partially ordered against its own type.
type Timestamp[T any] interface {
	comparable
	// LessEqual reports whether the receiver precedes or equals other
	// in the partial order.
	LessEqual(other T) bool
}

// Summary is a path summary: the cumulative effect of traversing a path
// of edges and operator-internal summaries on a timestamp of type T.
// Summaries of the same kind S form a monoid under FollowedBy, with a
// distinguished identity (the zero value returned by callers as needed).
// ResultsIn implements the action of a summary on a timestamp; it
// returns ok=false when the action is undefined (e.g. a summary that
// cannot be applied because it would require information the timestamp
// doesn't carry).
type Summary[T any, S any] interface {
	comparable
	FollowedBy(other S) S
	ResultsIn(t T) (T, bool)
}

// Orderable supplies an arbitrary total order over a timestamp type,
// distinct from its partial order: ChangeBatch and similar bookkeeping
// structures need a total order purely to sort and deduplicate entries
// efficiently, the same way timely's Rust timestamps implement both
// PartialOrder (frontier semantics) and Ord (an arbitrary tie-break used
// by collection types). It need not agree with LessEqual beyond both
// being reflexive/transitive/antisymmetric.
type Orderable[T any] interface {
	comparable
	Less(other T) bool
}

// Data is the constraint used by the bookkeeping data structures
// (ChangeBatch, MutableAntichain): a timestamp with both its semantic
// partial order and an arbitrary total order for storage.
type Data[T any] interface {
	Timestamp[T]
	Orderable[T]
}

// LessEqual is the free-function form of Timestamp.LessEqual, useful in
// generic code that only has a Timestamp constraint in scope.
func LessEqual[T Timestamp[T]](a, b T) bool { return a.LessEqual(b) }

// Equal reports structural equality for any comparable timestamp type.
func Equal[T comparable](a, b T) bool { return a == b }
