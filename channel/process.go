package channel

import "sync"

// processQueue is an unbounded queue crossing an OS-thread boundary
// within one process (spec §4.2 "Process channel"). It has one consumer
// but may have several producers, since every sender thread pushes to a
// given receiver through the same ProcessPusher. A plain mutex-guarded
// slice is the correct tool here: the
// pack's lock-free-queue offerings (golang.org/x/sync supplies errgroup
// and singleflight, not an SPSC ring buffer) don't cover this, and the
// volume here — one queue per receiver, drained every worker step — does
// not justify a bespoke lock-free structure.
type processQueue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

func (q *processQueue[T]) push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

func (q *processQueue[T]) pop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// ProcessPusher sends to one receiver's queue (dest). One pusher set is
// shared by every sender thread of the process, so a pusher can have
// several concurrent callers.
type ProcessPusher[T any] struct {
	queues []*processQueue[T]
	dest   int // which receiver this pusher targets
}

// ProcessPuller is one receiver's end: it owns the far end of the queue
// every pusher targeting it writes into.
type ProcessPuller[T any] struct {
	queue *processQueue[T]
}

// NewProcessChannels returns, for a fan-in of `peers` senders to one
// logical channel with one queue per target peer, the per-target pusher
// set and puller set: pushers[i] sends to pullers[i].
func NewProcessChannels[T any](peers int) ([]*ProcessPusher[T], []*ProcessPuller[T]) {
	queues := make([]*processQueue[T], peers)
	for i := range queues {
		queues[i] = &processQueue[T]{}
	}
	pushers := make([]*ProcessPusher[T], peers)
	pullers := make([]*ProcessPuller[T], peers)
	for i := range queues {
		pushers[i] = &ProcessPusher[T]{queues: queues, dest: i}
		pullers[i] = &ProcessPuller[T]{queue: queues[i]}
	}
	return pushers, pullers
}

// Push enqueues item for this pusher's target receiver. Push(nil) is a
// no-op: the process channel needs no flush signal, every push is
// immediately visible to the puller.
func (p *ProcessPusher[T]) Push(item *T) {
	if item == nil {
		return
	}
	p.queues[p.dest].push(*item)
}

// Pull dequeues the next item, if any.
func (p *ProcessPuller[T]) Pull() (*T, bool) {
	item, ok := p.queue.pop()
	if !ok {
		return nil, false
	}
	return &item, true
}

var (
	_ Push[int] = (*ProcessPusher[int])(nil)
	_ Pull[int] = (*ProcessPuller[int])(nil)
)
