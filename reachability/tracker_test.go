package reachability

import (
	"testing"

	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/pointstamp"
	"github.com/flowmesh/xdf/progress"
)

func buildChainTable(t *testing.T) (SummaryTable[order.NaturalSummary], int, int) {
	t.Helper()
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

	return b.Build(), childA, childB
}

func TestPropagateAllProjectsSourceChangesThroughTheTable(t *testing.T) {
	table, _, _ := buildChainTable(t)
	tr := NewTracker[order.Natural, order.NaturalSummary](table)

	graphIn := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	tr.UpdateSource(graphIn, order.Natural(5), +1)
	tr.PropagateAll()

	out := tr.PushedMut(Boundary)
	if len(out) != 1 {
		t.Fatalf("got %d pushed target changes at the boundary, want 1: %v", len(out), out)
	}
	if out[0].Time != order.Natural(6) || out[0].Delta != 1 {
		t.Fatalf("got %+v, want Time=6 Delta=1", out[0])
	}

	frontier := tr.TargetFrontier(pointstamp.Target{Location: pointstamp.Location{Operator: Boundary, Port: 0}})
	if len(frontier) != 1 || frontier[0] != order.Natural(6) {
		t.Fatalf("got frontier %v, want [6]", frontier)
	}

	// A second call with nothing newly queued should report no changes.
	if again := tr.PushedMut(Boundary); again != nil {
		t.Fatalf("expected PushedMut to clear after being read, got %v", again)
	}
}

func TestPropagateAllCombinesRepeatedUpdatesInOnePass(t *testing.T) {
	table, _, _ := buildChainTable(t)
	tr := NewTracker[order.Natural, order.NaturalSummary](table)

	graphIn := pointstamp.Source{Location: pointstamp.Location{Operator: Boundary, Port: 0}}
	tr.UpdateSource(graphIn, order.Natural(5), +1)
	tr.UpdateSource(graphIn, order.Natural(5), +1)
	tr.UpdateSource(graphIn, order.Natural(5), -1) // nets to +1 overall
	tr.PropagateAll()

	frontier := tr.SourceFrontier(graphIn)
	if len(frontier) != 1 || frontier[0] != order.Natural(5) {
		t.Fatalf("got source frontier %v, want [5] with net count 1", frontier)
	}
	if count := tr.sourceFrontierFor(graphIn).Count(order.Natural(5)); count != 1 {
		t.Fatalf("got combined count %d, want 1", count)
	}
}

func TestUpdateTargetDoesNotAutoPropagateToSources(t *testing.T) {
	table, childA, _ := buildChainTable(t)
	tr := NewTracker[order.Natural, order.NaturalSummary](table)

	aIn := pointstamp.Target{Location: pointstamp.Location{Operator: childA, Port: 0}}
	tr.UpdateTarget(aIn, order.Natural(3), +1)
	tr.PropagateAll()

	aOut := pointstamp.Source{Location: pointstamp.Location{Operator: childA, Port: 0}}
	if frontier := tr.SourceFrontier(aOut); frontier != nil {
		t.Fatalf("a direct target update must not itself derive a source frontier, got %v", frontier)
	}

	changes := tr.PushedMut(childA)
	if len(changes) != 1 || changes[0].Time != order.Natural(3) || changes[0].Delta != 1 {
		t.Fatalf("got %v, want a single pushed change for the target update itself", changes)
	}
}
