package operator

import (
	"reflect"
	"testing"

	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/progress"
)

// forwardOp consumes every message at its one input and immediately
// re-emits it (same time) at its one output, holding one capability at
// time 0 up front.
type forwardOp struct {
	notify         bool
	pushedChanges  [][]*progress.ChangeBatch[order.Natural]
	externalCalled bool
}

func (f *forwardOp) Inputs() int  { return 1 }
func (f *forwardOp) Outputs() int { return 1 }

func (f *forwardOp) GetInternalSummary() ([][]*progress.Antichain[order.NaturalSummary], []*progress.ChangeBatch[order.Natural]) {
	identity := progress.NewAntichain[order.NaturalSummary]()
	identity.Insert(order.NaturalSummary(0))
	initial := progress.NewChangeBatch[order.Natural]()
	initial.Append(order.Natural(0), 1)
	return [][]*progress.Antichain[order.NaturalSummary]{{identity}}, []*progress.ChangeBatch[order.Natural]{initial}
}

func (f *forwardOp) SetExternalSummary([][]*progress.Antichain[order.NaturalSummary], []*progress.ChangeBatch[order.Natural]) {
	f.externalCalled = true
}

func (f *forwardOp) PushExternalProgress(changes []*progress.ChangeBatch[order.Natural]) {
	f.pushedChanges = append(f.pushedChanges, changes)
}

func (f *forwardOp) Schedule(consumed, internal, produced []*progress.ChangeBatch[order.Natural]) bool {
	for _, u := range consumed[0].Updates() {
		if u.Delta <= 0 {
			continue
		}
		produced[0].Append(u.Time, u.Delta)
	}
	return false
}

func (f *forwardOp) Name() string   { return "forward" }
func (f *forwardOp) NotifyMe() bool { return f.notify }

func TestStepTranslatesConsumedProducedAndInternalDeltas(t *testing.T) {
	op := &forwardOp{}
	w, internalSummary, _ := NewWrapped[order.Natural, order.NaturalSummary](op)

	if len(internalSummary) != 1 || internalSummary[0][0].Len() != 1 {
		t.Fatalf("expected a single-element identity internal summary, got %v", internalSummary)
	}
	if caps := w.Capabilities(0); len(caps) != 1 || caps[0] != order.Natural(0) {
		t.Fatalf("expected initial capability at time 0, got %v", caps)
	}

	w.ConsumedBatch(0).Append(order.Natural(3), 1)

	result := w.Step()
	if result.HasMoreWork {
		t.Fatal("forwardOp never reports more work")
	}

	wantConsumed := []PortUpdate[order.Natural]{{Port: 0, Update: progress.Update[order.Natural]{Time: 3, Delta: -1}}}
	if !reflect.DeepEqual(result.Consumed, wantConsumed) {
		t.Fatalf("Consumed = %v, want %v", result.Consumed, wantConsumed)
	}

	wantProduced := []PortUpdate[order.Natural]{{Port: 0, Update: progress.Update[order.Natural]{Time: 3, Delta: 1}}}
	if !reflect.DeepEqual(result.Produced, wantProduced) {
		t.Fatalf("Produced = %v, want %v", result.Produced, wantProduced)
	}

	if result.Internal != nil {
		t.Fatalf("expected no internal (capability) delta this step, got %v", result.Internal)
	}
}

func TestNotifyMeGatesPushExternalProgress(t *testing.T) {
	op := &forwardOp{notify: true}
	w, _, _ := NewWrapped[order.Natural, order.NaturalSummary](op)

	w.RecordGuaranteeChange(0, order.Natural(7), 1)
	w.Step()
	if len(op.pushedChanges) != 1 {
		t.Fatalf("expected PushExternalProgress to be called once, got %d calls", len(op.pushedChanges))
	}

	if got := w.Guarantee(0); len(got) != 1 || got[0] != order.Natural(7) {
		t.Fatalf("guarantee frontier = %v, want [7]", got)
	}

	// No new guarantee change queued: the next Step should not call again.
	w.Step()
	if len(op.pushedChanges) != 1 {
		t.Fatalf("expected PushExternalProgress to stay at 1 call with nothing new pending, got %d", len(op.pushedChanges))
	}
}

func TestNoNotifySkipsPushExternalProgress(t *testing.T) {
	op := &forwardOp{notify: false}
	w, _, _ := NewWrapped[order.Natural, order.NaturalSummary](op)

	w.RecordGuaranteeChange(0, order.Natural(1), 1)
	w.Step()
	if len(op.pushedChanges) != 0 {
		t.Fatalf("expected PushExternalProgress never called when NotifyMe is false, got %d calls", len(op.pushedChanges))
	}
}
