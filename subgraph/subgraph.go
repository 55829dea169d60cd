// Package subgraph implements the nested-scope operator spec §4.8
// describes: an operator that is itself a graph of child operators,
// owning a reachability Builder/Tracker over them and forwarding
// frontier information across its own boundary to its parent.
package subgraph

import (
	"github.com/flowmesh/xdf/activate"
	"github.com/flowmesh/xdf/operator"
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/pointstamp"
	"github.com/flowmesh/xdf/progress"
	"github.com/flowmesh/xdf/reachability"
)

// Boundary re-exports reachability.Boundary: the operator index this
// subgraph's own ports occupy within its own reachability table.
const Boundary = reachability.Boundary

// Subgraph is a nested scope: a vector of child operator wrappers, a
// reachability.Builder/Tracker over them, and the edge list connecting
// children to each other and to the subgraph's own boundary ports (spec
// §4.8). A Subgraph is itself an Operator — Build it, then register it
// as a child of an outer Subgraph via operator.NewWrapped, exactly like
// any leaf operator.
//
// Real data traffic between operators is wired point to point by the
// allocator/channel layer and never literally passes through a
// Subgraph's own Schedule call; consequently (matching the Rust crate's
// Scope, which only ever calls push_internal_progress, never produces or
// consumes messages of its own) this Subgraph's Schedule leaves its
// consumed/produced parameters untouched and only ever writes to
// internal.
type Subgraph[T order.Data[T], S reachability.Summary[T, S]] struct {
	name        string
	path        []int
	activations *activate.ActivationSet

	builder *reachability.Builder[T, S]
	tracker *reachability.Tracker[T, S]
	table   reachability.SummaryTable[S]

	children []*operator.Wrapped[T, S]
	edges    []pointstamp.Edge

	inputs, outputs int

	// initialOutput is captured once, at Build time, from the first
	// PropagateAll: the graph-output frontier implied by every child's
	// initial capabilities, before any Schedule has run.
	initialOutput []*progress.ChangeBatch[T]
}

// New returns an empty Subgraph. path is this subgraph's own location in
// the global activation tree (e.g. the root subgraph's path is nil); a
// child subgraph's path is its parent's path with its own child index
// appended. activations is the single activation set shared by the
// whole worker.
func New[T order.Data[T], S reachability.Summary[T, S]](name string, path []int, activations *activate.ActivationSet, inputs, outputs int) *Subgraph[T, S] {
	return &Subgraph[T, S]{
		name:        name,
		path:        append([]int(nil), path...),
		activations: activations,
		builder:     reachability.NewBuilder[T, S](),
		inputs:      inputs,
		outputs:     outputs,
	}
}

// AddChild wraps op and registers it as a child, returning its local
// operator index (used in edges and in ForExtensions walks).
func (g *Subgraph[T, S]) AddChild(op operator.Operator[T, S]) int {
	wrapped, internalSummary, _ := operator.NewWrapped[T, S](op)
	idx := g.builder.AddChild(reachability.ChildSpec[T, S]{
		Inputs: wrapped.Inputs(), Outputs: wrapped.Outputs(), Internal: internalSummary,
	})
	g.children = append(g.children, wrapped)
	return idx
}

// AddEdge registers a free connection, from either a child's output or
// this subgraph's own graph-input boundary (Source{Boundary, i}), to
// either a child's input or this subgraph's own graph-output boundary
// (Target{Boundary, o}).
func (g *Subgraph[T, S]) AddEdge(e pointstamp.Edge) {
	g.builder.AddEdge(e)
	g.edges = append(g.edges, e)
}

// Build computes the reachability table and tracker over every
// registered child and edge, seeds the tracker with each child's initial
// capabilities, forwards each child's own output-to-input reachability
// via SetExternalSummary, and captures the resulting initial graph-output
// frontier. Must be called exactly once, after every AddChild/AddEdge
// call and before this Subgraph is itself registered as a child
// somewhere (including at the worker's root).
func (g *Subgraph[T, S]) Build() {
	table := g.builder.Build()
	g.table = table
	g.tracker = reachability.NewTracker[T, S](table)

	for idx, child := range g.children {
		ownReach := make([][]*progress.Antichain[S], child.Outputs())
		for o := range ownReach {
			ownReach[o] = make([]*progress.Antichain[S], child.Inputs())
			src := pointstamp.Source{Location: pointstamp.Location{Operator: idx, Port: o}}
			for i := range ownReach[o] {
				tgt := pointstamp.Target{Location: pointstamp.Location{Operator: idx, Port: i}}
				if chain, ok := table[src][tgt]; ok {
					ownReach[o][i] = chain
				} else {
					ownReach[o][i] = progress.NewAntichain[S]()
				}
			}
		}
		initialFrontier := make([]*progress.ChangeBatch[T], child.Inputs())
		for i := range initialFrontier {
			initialFrontier[i] = progress.NewChangeBatch[T]()
		}
		child.SetExternalSummary(ownReach, initialFrontier)
	}

	for idx, child := range g.children {
		for o := 0; o < child.Outputs(); o++ {
			src := pointstamp.Source{Location: pointstamp.Location{Operator: idx, Port: o}}
			for _, t := range child.Capabilities(o) {
				g.tracker.UpdateSource(src, t, child.CapabilityCount(o, t))
			}
		}
	}
	g.tracker.PropagateAll()

	g.initialOutput = make([]*progress.ChangeBatch[T], g.outputs)
	for o := range g.initialOutput {
		g.initialOutput[o] = progress.NewChangeBatch[T]()
	}
	for _, c := range g.tracker.PushedMut(Boundary) {
		if c.Port < g.outputs {
			g.initialOutput[c.Port].Append(c.Time, c.Delta)
		}
	}
}

// scheduleActiveChildren runs every child named by action under this subgraph's path,
// folding each StepResult into the tracker, then propagates to a fixed
// point and delivers the resulting changes back to the affected
// children, reactivating any child whose input frontier moved.
func (g *Subgraph[T, S]) scheduleActiveChildren() (hasMoreWork bool) {
	g.activations.ForExtensions(g.path, func(localIdx int) {
		if localIdx < 0 || localIdx >= len(g.children) {
			return
		}
		child := g.children[localIdx]
		result := child.Step()
		if result.HasMoreWork {
			hasMoreWork = true
		}

		for _, u := range result.Consumed {
			tgt := pointstamp.Target{Location: pointstamp.Location{Operator: localIdx, Port: u.Port}}
			g.tracker.UpdateTarget(tgt, u.Update.Time, u.Update.Delta)
		}
		for _, u := range result.Internal {
			src := pointstamp.Source{Location: pointstamp.Location{Operator: localIdx, Port: u.Port}}
			g.tracker.UpdateSource(src, u.Update.Time, u.Update.Delta)
		}
		for _, u := range result.Produced {
			src := pointstamp.Source{Location: pointstamp.Location{Operator: localIdx, Port: u.Port}}
			for _, e := range g.edges {
				if e.From != src {
					continue
				}
				g.tracker.UpdateTarget(e.To, u.Update.Time, u.Update.Delta)
			}
		}
	})

	g.tracker.PropagateAll()

	for idx, child := range g.children {
		changes := g.tracker.PushedMut(idx)
		if len(changes) == 0 {
			continue
		}
		for _, c := range changes {
			child.RecordGuaranteeChange(c.Port, c.Time, c.Delta)
		}
		g.activations.Activate(append(append([]int(nil), g.path...), idx))
	}

	return hasMoreWork
}

// AnyFrontierNonEmpty reports whether this subgraph's own tracker
// currently holds any non-empty Target or Source frontier, for the
// owning worker's has-work check (spec §4.9).
func (g *Subgraph[T, S]) AnyFrontierNonEmpty() bool { return g.tracker.AnyActive() }

// Inputs, Outputs, Name, NotifyMe implement operator.Operator.
func (g *Subgraph[T, S]) Inputs() int  { return g.inputs }
func (g *Subgraph[T, S]) Outputs() int { return g.outputs }
func (g *Subgraph[T, S]) Name() string { return g.name }

// NotifyMe always reports true: a subgraph must see every external
// frontier change on its own inputs to keep its internal tracker
// accurate, unlike a leaf operator which may opt out.
func (g *Subgraph[T, S]) NotifyMe() bool { return true }

// GetInternalSummary exposes this subgraph's own graph-input-to-
// graph-output reachability (computed by Build) and the initial
// graph-output frontier captured at Build time.
func (g *Subgraph[T, S]) GetInternalSummary() ([][]*progress.Antichain[S], []*progress.ChangeBatch[T]) {
	internal := make([][]*progress.Antichain[S], g.inputs)
	for i := range internal {
		internal[i] = make([]*progress.Antichain[S], g.outputs)
		src := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: i}}
		for o := range internal[i] {
			tgt := pointstamp.Target{Location: pointstamp.Location{Operator: Boundary, Port: o}}
			if chain, ok := g.table[src][tgt]; ok {
				internal[i][o] = chain
			} else {
				internal[i][o] = progress.NewAntichain[S]()
			}
		}
	}
	return internal, g.initialOutput
}

// SetExternalSummary and PushExternalProgress implement operator.Operator
// for when this subgraph is itself nested inside another.
func (g *Subgraph[T, S]) SetExternalSummary([][]*progress.Antichain[S], []*progress.ChangeBatch[T]) {
	// Loop-feedback analysis (a subgraph's own output reaching back into
	// its own input through the parent) is not implemented; this
	// subgraph's children already see accurate frontiers purely from its
	// own internal tracker, so the external loop summary is accepted but
	// not separately acted on.
}

func (g *Subgraph[T, S]) PushExternalProgress(changes []*progress.ChangeBatch[T]) {
	for i, cb := range changes {
		if cb == nil {
			continue
		}
		src := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: i}}
		for _, u := range cb.Updates() {
			g.tracker.UpdateSource(src, u.Time, u.Delta)
		}
	}
}

// Schedule runs every currently active direct child, per spec §4.8
// ("Children are scheduled in activation order"), translates their
// deltas through the tracker, and reports this subgraph's own
// graph-output frontier changes into internal. consumed and produced are
// left untouched: see the Subgraph doc comment.
func (g *Subgraph[T, S]) Schedule(consumed, internal, produced []*progress.ChangeBatch[T]) bool {
	hasMoreWork := g.scheduleActiveChildren()

	for _, c := range g.tracker.PushedMut(Boundary) {
		if c.Port < len(internal) {
			internal[c.Port].Append(c.Time, c.Delta)
		}
	}

	return hasMoreWork
}
