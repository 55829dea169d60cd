// Package activate implements the path-addressed scheduling structure
// spec §4.4 describes: a compact, allocation-light set of active
// operator paths, a cross-thread SyncActivations handle, and the
// ActivateOnDrop guard that schedules downstream work when a capability
// or input batch is released.
package activate

import "sort"

// bound is one (offset, length) slice into the shared slices backing
// array (spec §4.4 "a compact Vec<usize> of concatenated path slices").
type bound struct {
	offset int
	length int
}

// rxBuffer bounds the cross-thread activation channel. Generous but
// finite: a worker that falls this far behind on draining its own
// activations has a larger problem than this channel's capacity.
const rxBuffer = 1 << 16

// ActivationSet tracks the operator paths that are currently runnable
// (spec §4.4). Not safe for concurrent use directly — callers on other
// threads go through a SyncActivations handle, which only ever appends
// to the MPSC channel Advance drains.
type ActivationSet struct {
	clean  int // bounds[:clean] is sorted, deduped, and repacked
	bounds []bound
	slices []int
	buffer []int
	rx     chan []int
}

// NewActivationSet returns an empty ActivationSet.
func NewActivationSet() *ActivationSet {
	return &ActivationSet{rx: make(chan []int, rxBuffer)}
}

// IsEmpty reports whether there is no pending activation at all.
func (a *ActivationSet) IsEmpty() bool { return len(a.bounds) == 0 }

// Activate appends path to the active set (spec §4.4 "activate(path)").
// Cheap and allocation-free beyond growing the shared slices buffer.
func (a *ActivationSet) Activate(path []int) {
	a.bounds = append(a.bounds, bound{offset: len(a.slices), length: len(path)})
	a.slices = append(a.slices, path...)
}

func (a *ActivationSet) path(b bound) []int { return a.slices[b.offset : b.offset+b.length] }

func pathLess(x, y []int) bool {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if x[i] != y[i] {
			return x[i] < y[i]
		}
	}
	return len(x) < len(y)
}

func pathEqual(x, y []int) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Advance drains any cross-thread activations queued via a
// SyncActivations handle, drops the already-processed clean prefix,
// sorts and dedups the remaining (newly activated) paths, repacks the
// shared slices buffer, and marks the whole compacted set clean (spec
// §4.4 "advance()").
func (a *ActivationSet) Advance() {
drain:
	for {
		select {
		case path := <-a.rx:
			a.Activate(path)
		default:
			break drain
		}
	}

	a.bounds = append([]bound(nil), a.bounds[a.clean:]...)

	sort.Slice(a.bounds, func(i, j int) bool {
		return pathLess(a.path(a.bounds[i]), a.path(a.bounds[j]))
	})

	deduped := a.bounds[:0]
	for i, b := range a.bounds {
		if i == 0 || !pathEqual(a.path(b), a.path(deduped[len(deduped)-1])) {
			deduped = append(deduped, b)
		}
	}
	a.bounds = deduped

	a.buffer = a.buffer[:0]
	for i, b := range a.bounds {
		a.buffer = append(a.buffer, a.path(b)...)
		a.bounds[i].offset = len(a.buffer) - b.length
	}
	a.slices, a.buffer = a.buffer, a.slices

	a.clean = len(a.bounds)
}

func hasPrefix(full, path []int) bool {
	if len(full) < len(path) {
		return false
	}
	for i := range path {
		if full[i] != path[i] {
			return false
		}
	}
	return true
}

// ForExtensions binary-searches the clean region for the smallest entry
// at or after path, then walks forward invoking action once per unique
// next path component among entries sharing path as a prefix (spec §4.4
// "for_extensions(path, f)"). Intended to be called right after Advance,
// when there is no un-compacted tail; like the implementation it's
// grounded on, it walks past the clean boundary into any freshly
// activated (unsorted) tail too, which only produces a well-defined
// child ordering when that tail is empty.
func (a *ActivationSet) ForExtensions(path []int, action func(next int)) {
	clean := a.bounds[:a.clean]
	pos := sort.Search(len(clean), func(i int) bool {
		return !pathLess(a.path(clean[i]), path)
	})

	havePrevious := false
	previous := 0
	for _, b := range a.bounds[pos:] {
		full := a.path(b)
		if !hasPrefix(full, path) {
			break
		}
		if len(full) <= len(path) {
			continue
		}
		next := full[len(path)]
		if havePrevious && next == previous {
			continue
		}
		action(next)
		previous, havePrevious = next, true
	}
}

// Sync returns a cloneable, cross-thread handle that forwards
// activations into this set's MPSC, calling wake after every batch (spec
// §4.4 "A SyncActivations handle is cloneable and Send, and forwards
// activations over an MPSC plus a thread unpark"). wake is typically an
// allocator.Allocator's event-queue wake signal, or nil if the owning
// worker never parks.
func (a *ActivationSet) Sync(wake func()) *SyncActivations {
	return &SyncActivations{tx: a.rx, wake: wake}
}

// SyncActivations is the cross-thread activation handle. The zero value
// is not usable; construct via ActivationSet.Sync. Safe for concurrent
// use by many goroutines (it only ever sends on a channel).
type SyncActivations struct {
	tx   chan<- []int
	wake func()
}

// Activate forwards path to the owning ActivationSet and wakes its
// worker.
func (s *SyncActivations) Activate(path []int) {
	s.ActivateBatch([][]int{path})
}

// ActivateBatch forwards every path in paths before waking the worker
// once, cheaper than calling Activate per path when several paths need
// activating together (spec §4.4 "can be more efficient than calling
// activate repeatedly").
func (s *SyncActivations) ActivateBatch(paths [][]int) {
	for _, p := range paths {
		cp := append([]int(nil), p...)
		s.tx <- cp
	}
	if s.wake != nil {
		s.wake()
	}
}

// ActivateOnDrop activates a path once released, the way releasing a
// capability or finishing an input batch automatically schedules
// downstream work (spec §4.4 "ActivateOnDrop"). Go has no destructors, so
// callers invoke Release explicitly (typically via defer) instead of
// relying on scope exit.
type ActivateOnDrop struct {
	path     []int
	set      *ActivationSet
	released bool
}

// NewActivateOnDrop returns a guard that activates path on set when
// Release is called.
func NewActivateOnDrop(path []int, set *ActivationSet) *ActivateOnDrop {
	return &ActivateOnDrop{path: path, set: set}
}

// Release activates the guarded path. Idempotent: only the first call
// has an effect.
func (g *ActivateOnDrop) Release() {
	if g.released {
		return
	}
	g.released = true
	g.set.Activate(g.path)
}
