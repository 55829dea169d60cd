// Package operator implements the per-operator progress wrapper spec
// §4.7 describes: the mediator between a user-facing Operator
// implementation and its owning subgraph's reachability tracker.
package operator

import (
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/progress"
	"github.com/flowmesh/xdf/reachability"
)

// Operator is the user-facing contract spec §6 describes: what the core
// consumes from a collaborator implementing dataflow logic. T is the
// timestamp type; S is the path-summary type this operator's internal
// connections are expressed in.
type Operator[T order.Data[T], S reachability.Summary[T, S]] interface {
	Inputs() int
	Outputs() int

	// GetInternalSummary returns, for every (input, output) pair, the
	// antichain of summaries describing how a message arriving at that
	// input could affect that output, and one initial ChangeBatch per
	// output recording any capabilities held before the first Schedule
	// (spec §4.7/§6 "get_internal_summary").
	GetInternalSummary() (internal [][]*progress.Antichain[S], initialInternal []*progress.ChangeBatch[T])

	// SetExternalSummary reports, for every (own output, own input) pair,
	// the antichain of summaries describing how this operator's own
	// output could eventually feed back into its own input via the rest
	// of the graph (relevant to loop operators deciding whether they may
	// still receive further input at a given time), plus the initial
	// frontier at each input.
	SetExternalSummary(outputsToInputs [][]*progress.Antichain[S], initialFrontier []*progress.ChangeBatch[T])

	// PushExternalProgress delivers frontier changes at each input, only
	// called when NotifyMe reports true.
	PushExternalProgress(frontierChanges []*progress.ChangeBatch[T])

	// Schedule runs one step: consumed/internal/produced are this
	// operator's pre-allocated per-port ChangeBatches (spec §4.7).
	// Reports whether the operator has more work to do without further
	// external input.
	Schedule(consumed, internal, produced []*progress.ChangeBatch[T]) (hasMoreWork bool)

	Name() string
	NotifyMe() bool
}

// PortUpdate pairs a local port index with the frontier delta observed
// there during one Step.
type PortUpdate[T any] struct {
	Port   int
	Update progress.Update[T]
}

// StepResult is the translation of one Schedule call into the three
// kinds of tracker-facing delta spec §4.7 names: messages sent (at each
// output, destined for whatever Target the owning subgraph's edge list
// says that output feeds), messages consumed (at each input, negative —
// fewer messages now outstanding there), and capability changes (at each
// output).
type StepResult[T any] struct {
	Produced    []PortUpdate[T]
	Consumed    []PortUpdate[T]
	Internal    []PortUpdate[T]
	HasMoreWork bool
}

// Wrapped mediates between one Operator and its owning subgraph's
// reachability tracker (spec §4.7). The zero value is not usable;
// construct via NewWrapped.
type Wrapped[T order.Data[T], S reachability.Summary[T, S]] struct {
	op Operator[T, S]

	consumed []*progress.ChangeBatch[T]
	internal []*progress.ChangeBatch[T]
	produced []*progress.ChangeBatch[T]

	guarantees   []*progress.MutableAntichain[T]
	capabilities []*progress.MutableAntichain[T]

	notifyMe bool
	pending  []*progress.ChangeBatch[T] // per-input frontier changes queued since the last delivery
}

// NewWrapped constructs a Wrapped around op, calling GetInternalSummary
// once to learn its port shape and initial capabilities. Returns the
// wrapper, the internal-summary table, and the initial per-output
// internal ChangeBatches — the two the caller (typically a subgraph
// building its reachability.Builder/Tracker) needs to register this
// operator as a child and seed the tracker's initial capability state.
func NewWrapped[T order.Data[T], S reachability.Summary[T, S]](op Operator[T, S]) (*Wrapped[T, S], [][]*progress.Antichain[S], []*progress.ChangeBatch[T]) {
	internalSummary, initialInternal := op.GetInternalSummary()

	inputs, outputs := op.Inputs(), op.Outputs()
	w := &Wrapped[T, S]{
		op:           op,
		consumed:     make([]*progress.ChangeBatch[T], inputs),
		internal:     make([]*progress.ChangeBatch[T], outputs),
		produced:     make([]*progress.ChangeBatch[T], outputs),
		guarantees:   make([]*progress.MutableAntichain[T], inputs),
		capabilities: make([]*progress.MutableAntichain[T], outputs),
		pending:      make([]*progress.ChangeBatch[T], inputs),
		notifyMe:     op.NotifyMe(),
	}
	for i := range w.consumed {
		w.consumed[i] = progress.NewChangeBatch[T]()
		w.guarantees[i] = progress.NewMutableAntichain[T]()
		w.pending[i] = progress.NewChangeBatch[T]()
	}
	for o := range w.internal {
		w.internal[o] = progress.NewChangeBatch[T]()
		w.produced[o] = progress.NewChangeBatch[T]()
		w.capabilities[o] = progress.NewMutableAntichain[T]()
		if o < len(initialInternal) && initialInternal[o] != nil {
			for _, u := range initialInternal[o].Updates() {
				w.capabilities[o].Update(u.Time, u.Delta)
			}
		}
	}
	return w, internalSummary, initialInternal
}

// Name returns the wrapped operator's name.
func (w *Wrapped[T, S]) Name() string { return w.op.Name() }

// Guarantee returns the current input frontier at port, as delivered by
// the owning subgraph's tracker.
func (w *Wrapped[T, S]) Guarantee(port int) []T { return w.guarantees[port].Frontier() }

// Capabilities returns the current capability frontier at output port.
func (w *Wrapped[T, S]) Capabilities(port int) []T { return w.capabilities[port].Frontier() }

// CapabilityCount returns the outstanding capability count at exactly t,
// for a caller (a subgraph seeding its tracker) that needs the multiset
// count behind a frontier element, not just the frontier itself.
func (w *Wrapped[T, S]) CapabilityCount(port int, t T) int64 { return w.capabilities[port].Count(t) }

// ConsumedBatch exposes the input port's ChangeBatch so a data-plane
// puller can record an arriving message's (time, +1) before the next
// Step call.
func (w *Wrapped[T, S]) ConsumedBatch(port int) *progress.ChangeBatch[T] { return w.consumed[port] }

// Inputs and Outputs expose the wrapped operator's port counts, needed
// by a subgraph to size its own per-child bookkeeping without holding
// onto the operator itself.
func (w *Wrapped[T, S]) Inputs() int  { return len(w.consumed) }
func (w *Wrapped[T, S]) Outputs() int { return len(w.internal) }

// SetExternalSummary forwards to the wrapped operator, once the owning
// subgraph has computed this operator's own output-to-input reachability
// (spec §6 "set_external_summary").
func (w *Wrapped[T, S]) SetExternalSummary(outputsToInputs [][]*progress.Antichain[S], initialFrontier []*progress.ChangeBatch[T]) {
	w.op.SetExternalSummary(outputsToInputs, initialFrontier)
}

// RecordGuaranteeChange queues a frontier change at input port for
// delivery on the next Step (spec §4.7 step 1: "if notify_me, deliver
// pending frontier changes to the operator"). Always folded into the
// wrapper's own guarantees bookkeeping regardless of NotifyMe.
func (w *Wrapped[T, S]) RecordGuaranteeChange(port int, t T, delta int64) {
	w.guarantees[port].Update(t, delta)
	w.pending[port].Append(t, delta)
}

// Step runs one schedule cycle (spec §4.7 "Each step"): delivers any
// pending frontier changes if the operator asked for them, invokes
// Schedule, folds internal deltas into the wrapper's own capability
// bookkeeping, and translates every delta into the tracker-facing form
// the owning subgraph folds into its reachability.Tracker.
func (w *Wrapped[T, S]) Step() StepResult[T] {
	if w.notifyMe {
		anyPending := false
		for _, p := range w.pending {
			if !p.IsEmpty() {
				anyPending = true
				break
			}
		}
		if anyPending {
			w.op.PushExternalProgress(w.pending)
		}
	}
	for _, p := range w.pending {
		p.Drain()
	}

	hasMoreWork := w.op.Schedule(w.consumed, w.internal, w.produced)

	result := StepResult[T]{HasMoreWork: hasMoreWork}

	for port, cb := range w.internal {
		for _, u := range cb.Drain() {
			w.capabilities[port].Update(u.Time, u.Delta)
			result.Internal = append(result.Internal, PortUpdate[T]{Port: port, Update: u})
		}
	}
	for port, cb := range w.produced {
		for _, u := range cb.Drain() {
			result.Produced = append(result.Produced, PortUpdate[T]{Port: port, Update: u})
		}
	}
	for port, cb := range w.consumed {
		for _, u := range cb.Drain() {
			result.Consumed = append(result.Consumed, PortUpdate[T]{Port: port, Update: progress.Update[T]{Time: u.Time, Delta: -u.Delta}})
		}
	}

	return result
}
