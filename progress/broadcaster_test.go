package progress

import (
	"testing"

	"github.com/flowmesh/xdf/allocator"
	"github.com/flowmesh/xdf/config"
	"github.com/flowmesh/xdf/order"
)

func singleWorkerAllocator(t *testing.T) *allocator.Allocator {
	t.Helper()
	b, err := allocator.Build(config.ProcessConfig{Threads: 1, Processes: 1, ThisProcess: 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b.ForWorker(0)
}

func TestBroadcasterDeliversToSelf(t *testing.T) {
	a := singleWorkerAllocator(t)
	b := NewBroadcaster[order.Natural](a, 1, nil, FlushEveryStep)

	b.Stage(EntryTarget, 0, 0, order.Natural(3), 1)
	if sent := b.Flush(); !sent {
		t.Fatal("FlushEveryStep must always send")
	}

	batches := b.Receive()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].Sequence != 0 || batches[0].Source != 0 {
		t.Fatalf("got %+v, want Sequence=0 Source=0", batches[0])
	}
	if len(batches[0].Entries) != 1 || batches[0].Entries[0].Time != order.Natural(3) {
		t.Fatalf("got entries %v, want one entry at time 3", batches[0].Entries)
	}
}

func TestBroadcasterFlushEveryStepSendsEvenWhenEmpty(t *testing.T) {
	a := singleWorkerAllocator(t)
	b := NewBroadcaster[order.Natural](a, 2, nil, FlushEveryStep)

	b.Flush()
	b.Flush()

	batches := b.Receive()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2 (one per Flush call)", len(batches))
	}
	if batches[0].Sequence != 0 || batches[1].Sequence != 1 {
		t.Fatalf("got sequences %d,%d, want 0,1", batches[0].Sequence, batches[1].Sequence)
	}
}

func TestBroadcasterFlushWhenFullWaitsForThreshold(t *testing.T) {
	a := singleWorkerAllocator(t)
	b := NewBroadcaster[order.Natural](a, 3, nil, FlushWhenFull)

	b.Stage(EntrySource, 0, 0, order.Natural(1), 1)
	if sent := b.Flush(); sent {
		t.Fatal("FlushWhenFull must not send below threshold")
	}
	if batches := b.Receive(); batches != nil {
		t.Fatalf("expected nothing sent yet, got %v", batches)
	}

	for i := 0; i < FlushThreshold; i++ {
		b.Stage(EntrySource, 0, 0, order.Natural(i), 1)
	}
	if sent := b.Flush(); !sent {
		t.Fatal("FlushWhenFull must send once the threshold is reached")
	}
	batches := b.Receive()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if len(batches[0].Entries) != FlushThreshold+1 {
		t.Fatalf("got %d entries, want %d", len(batches[0].Entries), FlushThreshold+1)
	}
}

func TestBroadcasterDetectsSequenceGap(t *testing.T) {
	a := singleWorkerAllocator(t)
	b := NewBroadcaster[order.Natural](a, 4, nil, FlushEveryStep)

	b.send([]BatchEntry[order.Natural]{{Kind: EntryTarget, Time: order.Natural(0), Delta: 1}})
	b.seq = 5 // simulate several batches this test never constructed, to force a gap
	b.send([]BatchEntry[order.Natural]{{Kind: EntryTarget, Time: order.Natural(0), Delta: 1}})

	b.Receive()
	if b.Gaps() == 0 {
		t.Fatal("expected a detected sequence gap")
	}
}
