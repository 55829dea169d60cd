// Package allocator implements the uniform channel-allocation fabric
// (spec §4.3): one type spanning thread, process, and zero-copy
// inter-process delivery, selected per pair of (source worker, target
// worker) by where they live relative to the calling worker.
package allocator

import (
	"sync"
	"time"

	"github.com/flowmesh/xdf/channel"
)

// Kind distinguishes how a channel's peers are reached.
type Kind int

const (
	// Thread channels never leave the allocating worker (single peer).
	Thread Kind = iota
	// Process channels cross OS threads within one process, no
	// serialization.
	Process
	// ZeroCopy channels cross a process or network boundary, framed and
	// serialized per spec §4.1/§6.
	ZeroCopy
)

func (k Kind) String() string {
	switch k {
	case Thread:
		return "thread"
	case Process:
		return "process"
	case ZeroCopy:
		return "zero-copy"
	default:
		return "unknown"
	}
}

// EventQueue is the per-worker channel-activity queue every counting
// pusher/puller (package channel) feeds, and that the worker's
// AwaitEvents call watches (spec §4.3 "events()", §4.4).
type EventQueue struct {
	mu     sync.Mutex
	events []channel.Event
	wake   chan struct{}
}

func newEventQueue() *EventQueue {
	return &EventQueue{wake: make(chan struct{}, 1)}
}

// Emit implements channel.EventSink.
func (q *EventQueue) Emit(e channel.Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether any event is queued right now, without
// draining it, for a worker's has-work check (spec §4.9 "any non-empty
// inbound buffer").
func (q *EventQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) > 0
}

// Drain returns and clears all events accumulated since the last Drain
// (spec §4.3 "events()").
func (q *EventQueue) Drain() []channel.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

var _ channel.EventSink = (*EventQueue)(nil)

// Allocator is a worker's local handle onto the allocation fabric (spec
// §4.3). Exactly one Allocator exists per worker thread; it is produced
// by Builder.ForWorker after the process-wide network wiring Build
// establishes has completed.
type Allocator struct {
	kind  Kind
	index int // global worker index: process*threadsPerProcess + thread
	peers int // total worker count across the whole cluster

	events *EventQueue

	// processFabric is shared by every worker thread in this process; nil
	// only when peers == 1 (pure Thread kind).
	processFabric *ProcessFabric
	// localIndex is this worker's thread index within its own process,
	// used to pick its slot out of processFabric's per-process queue set.
	localIndex int

	// zc is the cross-process wiring, nil unless kind == ZeroCopy.
	zc *zeroCopyFabric
}

// Index returns this worker's global index (spec §4.3 "index").
func (a *Allocator) Index() int { return a.index }

// Peers returns the total worker count (spec §4.3 "peers").
func (a *Allocator) Peers() int { return a.peers }

// Kind returns which fabric this allocator was built for.
func (a *Allocator) Kind() Kind { return a.kind }

// Events returns this worker's channel-activity queue. The pushers and
// puller AllocateChannel returns are not counting wrappers and do not
// feed it.
func (a *Allocator) Events() *EventQueue { return a.events }

// Receive drains any inbound raw frames accumulated since the last call,
// decoding and routing each to its destination channel's puller queue
// (spec §4.3 "receive() drains inbound Bytes into per-channel queues,
// peeling headers and routing payloads"). For Thread and Process
// allocators this is a no-op: those channels deliver with immediate
// visibility and have no intermediate byte queue to drain.
func (a *Allocator) Receive() {
	if a.zc == nil {
		return
	}
	a.zc.drainInbound()
}

// Release publishes any buffered outbound bytes (spec §4.3 "release()").
// The current zero-copy pusher (channel.ZeroCopyPusher) already enqueues
// each frame onto the sender loop the instant Push is called rather than
// holding it back, so there is nothing buffered here to flush; Release
// exists as the hook spec §4.3 names so callers never special-case
// allocator kinds, and so a future batching policy has somewhere to live
// without changing the worker loop.
func (a *Allocator) Release() {}

// AwaitEvents parks the calling goroutine until a channel event arrives
// or timeout elapses, returning true if woken by an event (spec §4.3
// "an optional await_events(timeout) that may park the thread", §5
// "the only parking point is the worker's optional await_events").
func (a *Allocator) AwaitEvents(timeout time.Duration) bool {
	select {
	case <-a.events.wake:
		return true
	case <-time.After(timeout):
		return false
	}
}
