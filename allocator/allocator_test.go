package allocator

import (
	"testing"
	"time"

	"github.com/flowmesh/xdf/channel"
	"github.com/flowmesh/xdf/config"
)

func TestBuildSingleWorkerIsThreadKind(t *testing.T) {
	b, err := Build(config.ProcessConfig{Threads: 1, Processes: 1, ThisProcess: 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := b.ForWorker(0)
	if a.Kind() != Thread {
		t.Fatalf("Kind = %v, want Thread", a.Kind())
	}
	if a.Peers() != 1 || a.Index() != 0 {
		t.Fatalf("Peers/Index = %d/%d, want 1/0", a.Peers(), a.Index())
	}

	pushers, puller := AllocateChannel[int](a, 1, nil)
	if len(pushers) != 1 {
		t.Fatalf("len(pushers) = %d, want 1", len(pushers))
	}
	item := 42
	pushers[0].Push(&item)
	got, ok := puller.Pull()
	if !ok || *got != 42 {
		t.Fatalf("Pull() = %v,%v, want 42,true", got, ok)
	}
}

func TestBuildMultiThreadSingleProcessIsProcessKind(t *testing.T) {
	b, err := Build(config.ProcessConfig{Threads: 3, Processes: 1, ThisProcess: 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	workers := make([]*Allocator, 3)
	for i := range workers {
		workers[i] = b.ForWorker(i)
		if workers[i].Kind() != Process {
			t.Fatalf("worker %d Kind = %v, want Process", i, workers[i].Kind())
		}
	}

	pushersA, pullerA := AllocateChannel[string](workers[0], 5, nil)
	_, pullerB := AllocateChannel[string](workers[1], 5, nil)

	msg := "hello"
	pushersA[1].Push(&msg)

	if _, ok := pullerA.Pull(); ok {
		t.Fatal("worker 0's own puller should not see a message addressed to worker 1")
	}
	got, ok := pullerB.Pull()
	if !ok || *got != "hello" {
		t.Fatalf("worker 1 Pull() = %v,%v, want hello,true", got, ok)
	}
}

func TestEventQueueDrainAndWake(t *testing.T) {
	q := newEventQueue()
	if events := q.Drain(); events != nil {
		t.Fatalf("expected no events, got %v", events)
	}
	q.Emit(channel.Event{Channel: 1, Kind: channel.Pushed, Count: 1})
	events := q.Drain()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events := q.Drain(); events != nil {
		t.Fatalf("expected drained queue to stay empty, got %v", events)
	}
}

func TestAllocatorAwaitEventsTimesOutWithoutActivity(t *testing.T) {
	a := &Allocator{events: newEventQueue()}
	start := time.Now()
	woke := a.AwaitEvents(20 * time.Millisecond)
	if woke {
		t.Fatal("expected AwaitEvents to time out")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("AwaitEvents returned before the timeout elapsed")
	}
}
