// Package reachability implements the fixed-point path-summary builder
// and the pointstamp propagation tracker spec §4.6 describes. No single
// file in the retrieved Rust source corresponds to this engine directly
// (the crate's published version folds it into a larger, un-extracted
// "progress tracking" module); the design here follows spec §4.6's own
// prose closely, using the adjacent path_summary.rs/graph.rs files only
// for naming and structural cues.
package reachability

import (
	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/pointstamp"
	"github.com/flowmesh/xdf/progress"
)

// Boundary is the operator index reserved for a subgraph's own external
// ports: a Target{Boundary, i} is where the subgraph's i'th external
// input lands before any child sees it, and a Source{Boundary, o} is
// where an internal path reaches the subgraph's o'th external output
// (spec §4.8 "graph input"/"graph output"). Real children occupy
// non-negative indices starting at 0.
const Boundary = -1

// Summary constrains a path-summary type S acting on timestamp T: it
// must be a path-summary monoid (order.Summary) and, because the
// fixed-point builder below keeps only the dominant-minimal summaries
// for each (Source, Target) pair in a progress.Antichain[S], S must also
// carry its own partial order (order.Timestamp[S]) expressing summary
// dominance.
type Summary[T order.Data[T], S interface {
	order.Summary[T, S]
	order.Timestamp[S]
}] interface {
	order.Summary[T, S]
	order.Timestamp[S]
}

// ChildSpec describes one operator's port shape and internal summary
// table to the Builder: Internal[i][o] is the antichain of summaries by
// which an input message at port i could affect output port o (spec
// §4.6 "child internal summaries"). A nil or empty entry means "cannot
// affect": unreachable, and never propagated.
type ChildSpec[T order.Data[T], S Summary[T, S]] struct {
	Inputs   int
	Outputs  int
	Internal [][]*progress.Antichain[S]
}

// Builder accumulates children and edges and computes the summary table
// (spec §4.6 "Summary construction").
type Builder[T order.Data[T], S Summary[T, S]] struct {
	children []ChildSpec[T, S]
	edges    []pointstamp.Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder[T order.Data[T], S Summary[T, S]]() *Builder[T, S] {
	return &Builder[T, S]{}
}

// AddChild registers an operator's port shape and internal summaries,
// returning its operator index (children are numbered in registration
// order, starting at 0 — see Boundary for the reserved negative index).
func (b *Builder[T, S]) AddChild(spec ChildSpec[T, S]) int {
	b.children = append(b.children, spec)
	return len(b.children) - 1
}

// AddEdge registers a free (identity-summary) connection from an
// operator output to an operator input.
func (b *Builder[T, S]) AddEdge(e pointstamp.Edge) {
	b.edges = append(b.edges, e)
}

// SummaryTable maps a Source to every Target it can reach, each paired
// with the antichain of minimal path summaries along any path
// alternating free edges and child internal summaries.
type SummaryTable[S any] map[pointstamp.Source]map[pointstamp.Target]*progress.Antichain[S]

// summaryEntry is an immutable snapshot of one (Source,Target) table
// row, taken before a propagation sweep so the sweep can extend table
// without the hazards of mutating a map while ranging over it.
type summaryEntry[S any] struct {
	source    pointstamp.Source
	target    pointstamp.Target
	summaries []S
}

// Build runs the fixed point spec §4.6 describes: start from the edges
// (each contributing the identity summary), then repeatedly compose
// established (Source,Target) entries with a target operator's internal
// summaries and continue through any edge leaving the resulting
// (internal) source, meeting every new summary into its antichain.
// Termination is guaranteed because antichains over the Summary lattice
// are finite and only shrink under meet.
//
// Every S used here must have a zero value equal to its FollowedBy
// identity — true of every concrete Summary in this module
// (order.RootSummary, order.NaturalSummary(0), and a order.ProductSummary
// built from such summaries).
func (b *Builder[T, S]) Build() SummaryTable[S] {
	table := make(SummaryTable[S])
	var identity S

	insert := func(s pointstamp.Source, t pointstamp.Target, summary S) bool {
		byTarget, ok := table[s]
		if !ok {
			byTarget = make(map[pointstamp.Target]*progress.Antichain[S])
			table[s] = byTarget
		}
		chain, ok := byTarget[t]
		if !ok {
			chain = progress.NewAntichain[S]()
			byTarget[t] = chain
		}
		return chain.Insert(summary)
	}

	for _, e := range b.edges {
		insert(e.From, e.To, identity)
	}

	for {
		var snapshot []summaryEntry[S]
		for s, byTarget := range table {
			for t, chain := range byTarget {
				snapshot = append(snapshot, summaryEntry[S]{source: s, target: t, summaries: chain.Elements()})
			}
		}

		changed := false
		for _, e := range snapshot {
			childIdx := e.target.Operator
			if childIdx < 0 || childIdx >= len(b.children) {
				continue // boundary target, or out of range: nothing further inside
			}
			child := b.children[childIdx]
			if e.target.Port >= child.Inputs {
				continue
			}

			for output := 0; output < child.Outputs; output++ {
				internal := child.Internal[e.target.Port][output]
				if internal == nil || internal.Len() == 0 {
					continue // this input cannot affect this output: unreachable
				}
				via := pointstamp.Source{Location: pointstamp.Location{Operator: childIdx, Port: output}}

				for _, edge := range b.edges {
					if edge.From != via {
						continue
					}
					for _, reach := range e.summaries {
						for _, step := range internal.Elements() {
							if insert(e.source, edge.To, reach.FollowedBy(step)) {
								changed = true
							}
						}
					}
				}
			}
		}

		if !changed {
			break
		}
	}

	return table
}
