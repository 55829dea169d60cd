package reachability

import (
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/pointstamp"
	"github.com/flowmesh/xdf/progress"
)

// pendingKind distinguishes a queued delta's namespace: Target and
// Source each have their own Location space, so a (kind, loc) pair (not
// loc alone) identifies a frontier.
type pendingKind int

const (
	pendingTarget pendingKind = iota
	pendingSource
)

type pendingDelta[T any] struct {
	kind  pendingKind
	loc   pointstamp.Location
	time  T
	delta int64
}

// TargetChange is one frontier change at an operator's input port,
// accumulated by PropagateAll and handed back by PushedMut.
type TargetChange[T any] struct {
	Port  int
	Time  T
	Delta int64
}

// Tracker holds a MutableAntichain per Target (the input/message
// frontier) and per Source (the capability frontier), a pending
// pointstamp delta queue, and the precomputed SummaryTable describing
// which Targets each Source's frontier changes project onto (spec §4.6
// "Tracker").
type Tracker[T order.Data[T], S Summary[T, S]] struct {
	table SummaryTable[S]

	targetFrontier map[pointstamp.Target]*progress.MutableAntichain[T]
	sourceFrontier map[pointstamp.Source]*progress.MutableAntichain[T]

	pending []pendingDelta[T]

	// pushed accumulates, per operator index, the TargetChanges that
	// occurred at any of that operator's input ports during the last
	// PropagateAll, ready for PushedMut to hand to the worker.
	pushed map[int][]TargetChange[T]
}

// NewTracker returns a Tracker that propagates through table (typically
// Builder.Build's result).
func NewTracker[T order.Data[T], S Summary[T, S]](table SummaryTable[S]) *Tracker[T, S] {
	return &Tracker[T, S]{
		table:          table,
		targetFrontier: make(map[pointstamp.Target]*progress.MutableAntichain[T]),
		sourceFrontier: make(map[pointstamp.Source]*progress.MutableAntichain[T]),
		pushed:         make(map[int][]TargetChange[T]),
	}
}

func (tr *Tracker[T, S]) targetFrontierFor(t pointstamp.Target) *progress.MutableAntichain[T] {
	m, ok := tr.targetFrontier[t]
	if !ok {
		m = progress.NewMutableAntichain[T]()
		tr.targetFrontier[t] = m
	}
	return m
}

func (tr *Tracker[T, S]) sourceFrontierFor(s pointstamp.Source) *progress.MutableAntichain[T] {
	m, ok := tr.sourceFrontier[s]
	if !ok {
		m = progress.NewMutableAntichain[T]()
		tr.sourceFrontier[s] = m
	}
	return m
}

// TargetFrontier returns the current minimal frontier at t. Callers must
// not mutate the returned slice.
func (tr *Tracker[T, S]) TargetFrontier(t pointstamp.Target) []T {
	return tr.targetFrontierFor(t).Frontier()
}

// SourceFrontier returns the current minimal frontier at s. Callers must
// not mutate the returned slice.
func (tr *Tracker[T, S]) SourceFrontier(s pointstamp.Source) []T {
	return tr.sourceFrontierFor(s).Frontier()
}

// UpdateTarget enqueues a pointstamp delta at a Target (an outstanding
// message count change). Takes effect on the next PropagateAll.
func (tr *Tracker[T, S]) UpdateTarget(t pointstamp.Target, time T, delta int64) {
	tr.pending = append(tr.pending, pendingDelta[T]{kind: pendingTarget, loc: t.Location, time: time, delta: delta})
}

// UpdateSource enqueues a pointstamp delta at a Source (a held
// capability count change). Takes effect on the next PropagateAll.
func (tr *Tracker[T, S]) UpdateSource(s pointstamp.Source, time T, delta int64) {
	tr.pending = append(tr.pending, pendingDelta[T]{kind: pendingSource, loc: s.Location, time: time, delta: delta})
}

// PropagateAll drains the pending queue to a fixed point: every Source
// frontier change is projected, through the summary table, into derived
// Target deltas, which are themselves applied and recorded (but do not
// further propagate — an operator's own schedule step is responsible for
// translating a Target frontier change into any Source-side capability
// change it implies, reporting that back via UpdateSource). Deltas
// landing on the same (kind, loc, time) within one drain pass are summed
// before being applied, in first-seen order (spec §4.6 "Tie-break").
func (tr *Tracker[T, S]) PropagateAll() {
	for len(tr.pending) > 0 {
		batch := tr.pending
		tr.pending = nil

		for _, d := range combineDeltas(batch) {
			switch d.kind {
			case pendingTarget:
				target := pointstamp.Target{Location: d.loc}
				changes := tr.targetFrontierFor(target).Update(d.time, d.delta)
				for _, c := range changes {
					tr.pushed[d.loc.Operator] = append(tr.pushed[d.loc.Operator], TargetChange[T]{
						Port: d.loc.Port, Time: c.Time, Delta: c.Delta,
					})
				}

			case pendingSource:
				source := pointstamp.Source{Location: d.loc}
				changes := tr.sourceFrontierFor(source).Update(d.time, d.delta)
				byTarget := tr.table[source]
				for _, c := range changes {
					for target, chain := range byTarget {
						for _, summary := range chain.Elements() {
							derived, ok := summary.ResultsIn(c.Time)
							if !ok {
								continue // summary cannot be applied here: unreachable
							}
							tr.pending = append(tr.pending, pendingDelta[T]{
								kind: pendingTarget, loc: target.Location, time: derived, delta: c.Delta,
							})
						}
					}
				}
			}
		}
	}
}

// AnyActive reports whether any tracked Target or Source frontier is
// currently non-empty, used by a worker's has-work check (spec §4.9
// "any non-empty frontier anywhere").
func (tr *Tracker[T, S]) AnyActive() bool {
	for _, m := range tr.targetFrontier {
		if !m.IsEmpty() {
			return true
		}
	}
	for _, m := range tr.sourceFrontier {
		if !m.IsEmpty() {
			return true
		}
	}
	return false
}

// PushedMut returns and clears the TargetChanges accumulated across all
// of op's input ports since the last call, for the worker to push into
// that operator's input-frontier guarantee (spec §4.6 "pushed_mut(op)").
func (tr *Tracker[T, S]) PushedMut(op int) []TargetChange[T] {
	out := tr.pushed[op]
	delete(tr.pushed, op)
	return out
}

// combineDeltas sums same-(kind, loc, time) deltas within one batch,
// preserving first-seen order, and drops any entry that sums to zero.
func combineDeltas[T comparable](batch []pendingDelta[T]) []pendingDelta[T] {
	type key struct {
		kind pendingKind
		loc  pointstamp.Location
		time T
	}
	index := make(map[key]int, len(batch))
	out := make([]pendingDelta[T], 0, len(batch))
	for _, d := range batch {
		k := key{kind: d.kind, loc: d.loc, time: d.time}
		if i, ok := index[k]; ok {
			out[i].delta += d.delta
			continue
		}
		index[k] = len(out)
		out = append(out, d)
	}

	filtered := out[:0]
	for _, d := range out {
		if d.delta != 0 {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
