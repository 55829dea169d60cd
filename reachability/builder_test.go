package reachability

import (
	"testing"

	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/pointstamp"
	"github.com/flowmesh/xdf/progress"
)

func chainOf(t *testing.T, step uint64) *progress.Antichain[order.NaturalSummary] {
	t.Helper()
	a := progress.NewAntichain[order.NaturalSummary]()
	a.Insert(order.NaturalSummary(step))
	return a
}

func TestBuildComposesAChainOfTwoChildren(t *testing.T) {
	b := NewBuilder[order.Natural, order.NaturalSummary]()

	identity := chainOf(t, 0)
	plusOne := chainOf(t, 1)

	childA := b.AddChild(ChildSpec[order.Natural, order.NaturalSummary]{
		Inputs: 1, Outputs: 1,
		Internal: [][]*progress.Antichain[order.NaturalSummary]{{identity}},
	})
	childB := b.AddChild(ChildSpec[order.Natural, order.NaturalSummary]{
		Inputs: 1, Outputs: 1,
		Internal: [][]*progress.Antichain[order.NaturalSummary]{{plusOne}},
	})

	graphIn := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	graphOut := pointstamp.Target{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	aIn := pointstamp.Target{Location: pointstamp.Location{Operator: childA, Port: 0}}
	aOut := pointstamp.Source{Location: pointstamp.Location{Operator: childA, Port: 0}}
	bIn := pointstamp.Target{Location: pointstamp.Location{Operator: childB, Port: 0}}
	bOut := pointstamp.Source{Location: pointstamp.Location{Operator: childB, Port: 0}}

	b.AddEdge(pointstamp.Edge{From: graphIn, To: aIn})
	b.AddEdge(pointstamp.Edge{From: aOut, To: bIn})
	b.AddEdge(pointstamp.Edge{From: bOut, To: graphOut})

	table := b.Build()

	chain, ok := table[graphIn][graphOut]
	if !ok {
		t.Fatalf("expected graph input to reach graph output")
	}
	elems := chain.Elements()
	if len(elems) != 1 || elems[0] != order.NaturalSummary(1) {
		t.Fatalf("got %v, want a single summary of 1", elems)
	}

	if _, ok := table[graphIn][aIn]; !ok {
		t.Fatalf("expected graph input to also reach child A's own input directly")
	}
}

func TestBuildPrunesDominatedSummariesAroundALoop(t *testing.T) {
	b := NewBuilder[order.Natural, order.NaturalSummary]()

	plusOne := chainOf(t, 1)
	child := b.AddChild(ChildSpec[order.Natural, order.NaturalSummary]{
		Inputs: 1, Outputs: 1,
		Internal: [][]*progress.Antichain[order.NaturalSummary]{{plusOne}},
	})

	graphIn := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	graphOut := pointstamp.Target{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	in := pointstamp.Target{Location: pointstamp.Location{Operator: child, Port: 0}}
	out := pointstamp.Source{Location: pointstamp.Location{Operator: child, Port: 0}}

	b.AddEdge(pointstamp.Edge{From: graphIn, To: in})
	b.AddEdge(pointstamp.Edge{From: out, To: in}) // the loop back-edge
	b.AddEdge(pointstamp.Edge{From: out, To: graphOut})

	table := b.Build() // must terminate despite the cyclic edge

	chain, ok := table[graphIn][graphOut]
	if !ok {
		t.Fatalf("expected graph input to reach graph output")
	}
	elems := chain.Elements()
	if len(elems) != 1 || elems[0] != order.NaturalSummary(1) {
		t.Fatalf("got %v, want the loop pruned to a single minimal summary of 1", elems)
	}
}
