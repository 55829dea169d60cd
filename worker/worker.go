// Package worker implements the per-thread step loop spec §4.9
// describes: advance the activation set, drain inbound bytes, schedule
// the root subgraph, publish outbound bytes, and optionally park.
package worker

import (
	"time"

	"github.com/flowmesh/xdf/activate"
	"github.com/flowmesh/xdf/allocator"
	"github.com/flowmesh/xdf/eventlog"
	"github.com/flowmesh/xdf/logging"
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/progress"
	"github.com/flowmesh/xdf/reachability"
	"github.com/flowmesh/xdf/subgraph"
)

// Root is the minimal surface Worker needs from its top-level scope: a
// subgraph.Subgraph, by interface so tests can substitute a fake. T is
// the root's own timestamp type, which is typically order.Root's single
// value — a worker's outermost scope has no timestamp structure of its
// own, only whatever its children introduce (spec §4.8 nesting).
type Root[T order.Data[T], S reachability.Summary[T, S]] interface {
	Inputs() int
	Outputs() int
	Schedule(consumed, internal, produced []*progress.ChangeBatch[T]) bool
	AnyFrontierNonEmpty() bool
}

var _ Root[order.Root, order.RootSummary] = (*subgraph.Subgraph[order.Root, order.RootSummary])(nil)

// Logger is the pluggable event hook spec.md §6's event stream is
// operationalized through (SPEC_FULL.md §7.1 supplemented feature): a
// worker calls Schedule before and after each Schedule call on its root
// scope; no other call is logged. NewLogger adapts an eventlog.Log.
type Logger interface {
	Schedule(path []int, operator int, phase eventlog.Phase, nowNanos int64)
}

// eventlogAdapter adapts an *eventlog.Log to Logger.
type eventlogAdapter struct{ log *eventlog.Log }

func (a eventlogAdapter) Schedule(path []int, operator int, phase eventlog.Phase, nowNanos int64) {
	a.log.Schedule(path, operator, phase, nowNanos)
}

// NewLogger wraps log as a Logger; log may be nil, producing a Logger
// whose calls are no-ops.
func NewLogger(log *eventlog.Log) Logger { return eventlogAdapter{log: log} }

// Worker runs one cooperative step loop on its own OS thread (spec §5
// "one OS thread per worker"). The zero value is not usable; construct
// via New.
type Worker[T order.Data[T], S reachability.Summary[T, S]] struct {
	index int
	runID string

	allocator   *allocator.Allocator
	activations *activate.ActivationSet
	root        Root[T, S]
	logger      Logger

	consumed []*progress.ChangeBatch[T]
	internal []*progress.ChangeBatch[T]
	produced []*progress.ChangeBatch[T]

	nowNanos func() int64
}

// New constructs a Worker scheduling root, reading/publishing bytes
// through a, and sharing activations with every scope root recursively
// owns (the same ActivationSet root itself was built with). runID is the
// short, human-readable identifier this worker's whole group was
// assigned at startup (typically a teris-io/shortid value minted once by
// cmd/xdfworker and passed to every thread), included in this worker's
// startup log line so multiple runs interleaved in the same terminal or
// log aggregator stay distinguishable; pass "" if the caller has no run
// grouping to report. nowNanos supplies the event log's timestamps; pass
// nil to disable event timestamps (time.Now is avoided here so tests
// stay deterministic — callers typically pass time.Now().UnixNano).
func New[T order.Data[T], S reachability.Summary[T, S]](index int, runID string, a *allocator.Allocator, activations *activate.ActivationSet, root Root[T, S], logger Logger, nowNanos func() int64) *Worker[T, S] {
	if logger == nil {
		logger = NewLogger(nil)
	}
	if nowNanos == nil {
		nowNanos = func() int64 { return 0 }
	}
	w := &Worker[T, S]{
		index: index, runID: runID, allocator: a, activations: activations, root: root, logger: logger, nowNanos: nowNanos,
	}
	w.consumed = make([]*progress.ChangeBatch[T], root.Inputs())
	w.internal = make([]*progress.ChangeBatch[T], root.Outputs())
	w.produced = make([]*progress.ChangeBatch[T], root.Outputs())
	for i := range w.consumed {
		w.consumed[i] = progress.NewChangeBatch[T]()
	}
	for o := range w.internal {
		w.internal[o] = progress.NewChangeBatch[T]()
		w.produced[o] = progress.NewChangeBatch[T]()
	}
	logging.Infof("worker %d [run=%s]: started (kind=%s, peers=%d)", index, runID, a.Kind(), a.Peers())
	return w
}

// Step runs one iteration of the loop spec §4.9 names: advance the
// activation set, drain inbound bytes, schedule the root (which
// recursively schedules its active children), publish outbound bytes,
// and report whether there is outstanding work.
func (w *Worker[T, S]) Step() bool {
	w.activations.Advance()
	w.allocator.Receive()

	w.logger.Schedule(nil, -1, eventlog.PhaseStart, w.nowNanos())
	rootHasMoreWork := w.root.Schedule(w.consumed, w.internal, w.produced)
	w.logger.Schedule(nil, -1, eventlog.PhaseEnd, w.nowNanos())

	for _, cb := range w.internal {
		cb.Drain()
	}
	for _, cb := range w.produced {
		cb.Drain()
	}

	w.allocator.Release()

	return rootHasMoreWork || w.HasWork()
}

// HasWork reports "any non-empty frontier anywhere, any non-empty
// inbound buffer, any pending activation" (spec §4.9), without running a
// step. Inbound data is seen only through the allocator's EventQueue,
// which the channels allocator.AllocateChannel returns do not feed.
func (w *Worker[T, S]) HasWork() bool {
	return !w.activations.IsEmpty() || w.allocator.Events().Pending() || w.root.AnyFrontierNonEmpty()
}

// Run loops Step until HasWork reports false, parking on the
// allocator's await_events(timeout) between steps whenever there is no
// pending activation — the only parking point spec §5 allows. Returns
// when a full step finds no outstanding work anywhere.
func (w *Worker[T, S]) Run(parkTimeout time.Duration) {
	for {
		hasWork := w.Step()
		if !hasWork {
			return
		}
		if w.activations.IsEmpty() {
			w.allocator.AwaitEvents(parkTimeout)
		}
	}
}

// Index returns this worker's global index (passed through from its
// Allocator).
func (w *Worker[T, S]) Index() int { return w.index }
