// Package progress implements the core bookkeeping types of the
// progress-tracking subsystem (spec §3): ChangeBatch, Antichain, and
// MutableAntichain. These are pure data structures with no natural
// third-party home in the teacher's dependency set (hashing/ordering
// primitives over a generic partial order aren't something pkg/errors,
// jsoniter, or xxhash can help with) so they are plain, carefully tested
// Go, the same way aistore's own cmn/cos small-utility types are plain
// Go rather than reaching for a collections library.
package progress

import "github.com/flowmesh/xdf/order"

// Update is a single (timestamp, delta) pair.
type Update[T any] struct {
	Time  T
	Delta int64
}

// ChangeBatch is a multiset of (T, int64) pairs supporting append, lazy
// compaction, drain, and swap (spec §3 "ChangeBatch<T>"). A compacted
// batch has no duplicate T and no zero counts.
type ChangeBatch[T order.Data[T]] struct {
	updates  []Update[T]
	compact  bool // true once updates has been canonicalized
}

// NewChangeBatch returns an empty, compacted batch.
func NewChangeBatch[T order.Data[T]]() *ChangeBatch[T] {
	return &ChangeBatch[T]{compact: true}
}

// Append records a (time, delta) pair without compacting.
func (cb *ChangeBatch[T]) Append(t T, delta int64) {
	if delta == 0 {
		return
	}
	cb.updates = append(cb.updates, Update[T]{Time: t, Delta: delta})
	cb.compact = false
}

// Len returns the number of (possibly duplicate) entries without forcing
// compaction.
func (cb *ChangeBatch[T]) Len() int { return len(cb.updates) }

// IsEmpty reports whether the batch is empty once compacted: an empty
// batch either holds no entries, or every entry's counts canceled.
func (cb *ChangeBatch[T]) IsEmpty() bool {
	cb.Canonicalize()
	return len(cb.updates) == 0
}

// Canonicalize sorts by T (Orderable's arbitrary total order), combines
// duplicate timestamps by summing their deltas, and drops zero-count
// entries — the invariant in spec §3/§8.
func (cb *ChangeBatch[T]) Canonicalize() {
	if cb.compact {
		return
	}
	sortUpdates(cb.updates)

	write := 0
	for read := 0; read < len(cb.updates); {
		t := cb.updates[read].Time
		var sum int64
		for read < len(cb.updates) && cb.updates[read].Time == t {
			sum += cb.updates[read].Delta
			read++
		}
		if sum != 0 {
			cb.updates[write] = Update[T]{Time: t, Delta: sum}
			write++
		}
	}
	cb.updates = cb.updates[:write]
	cb.compact = true
}

// Updates returns the canonicalized list of updates. Callers must not
// mutate the returned slice.
func (cb *ChangeBatch[T]) Updates() []Update[T] {
	cb.Canonicalize()
	return cb.updates
}

// DrainInto moves every update from cb into dst, leaving cb empty. The
// multiset sum is preserved (spec §8).
func (cb *ChangeBatch[T]) DrainInto(dst *ChangeBatch[T]) {
	for _, u := range cb.updates {
		dst.Append(u.Time, u.Delta)
	}
	cb.updates = cb.updates[:0]
	cb.compact = true
}

// Drain empties the batch and returns its canonicalized updates.
func (cb *ChangeBatch[T]) Drain() []Update[T] {
	cb.Canonicalize()
	out := cb.updates
	cb.updates = nil
	cb.compact = true
	return out
}

// Swap exchanges the contents of cb and other in place.
func (cb *ChangeBatch[T]) Swap(other *ChangeBatch[T]) {
	cb.updates, other.updates = other.updates, cb.updates
	cb.compact, other.compact = other.compact, cb.compact
}

// Clone returns a deep copy of the canonicalized batch.
func (cb *ChangeBatch[T]) Clone() *ChangeBatch[T] {
	cb.Canonicalize()
	out := NewChangeBatch[T]()
	out.updates = append([]Update[T]{}, cb.updates...)
	return out
}

func sortUpdates[T order.Data[T]](u []Update[T]) {
	// insertion sort is adequate here: batches are per-step deltas for a
	// single (operator, port), typically tiny; avoids pulling in a
	// generic sort dependency for what is rarely more than a handful of
	// entries.
	for i := 1; i < len(u); i++ {
		for j := i; j > 0 && u[j].Time.Less(u[j-1].Time); j-- {
			u[j], u[j-1] = u[j-1], u[j]
		}
	}
}
