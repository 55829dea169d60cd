package channel

// threadShared is the pair of deques a Thread channel's pusher and
// puller share: items flowing forward, and drained containers flowing
// back for reuse. Both sides run in the same worker goroutine (an
// intra-thread channel connects two operators scheduled by the same
// worker), so no synchronization is needed — matching spec §9's "single
// per-worker interior-mutable cell" design note — and this is the one
// channel kind where that cell can simply be a plain Go struct.
type threadShared[T any] struct {
	forward      []T
	returns      []T
	recycleLimit int
}

// ThreadPusher is the producer side of an intra-thread channel
// (spec §4.2 "Thread channel").
type ThreadPusher[T any] struct{ s *threadShared[T] }

// ThreadPuller is the consumer side.
type ThreadPuller[T any] struct{ s *threadShared[T] }

// NewThreadChannel returns a connected pusher/puller pair. recycleLimit
// bounds how many drained items the puller will hand back to the pusher
// for reuse (spec §9's "double-ended recycling queue", grounded in
// original_source's communication/src/allocator/thread.rs).
func NewThreadChannel[T any](recycleLimit int) (*ThreadPusher[T], *ThreadPuller[T]) {
	s := &threadShared[T]{recycleLimit: recycleLimit}
	return &ThreadPusher[T]{s: s}, &ThreadPuller[T]{s: s}
}

// Push appends item to the forward deque; Push(nil) is a no-op flush
// (there is nothing to buffer across a thread boundary).
func (p *ThreadPusher[T]) Push(item *T) {
	if item == nil {
		return
	}
	p.s.forward = append(p.s.forward, *item)
}

// TakeRecycled returns a previously-drained item for reuse, if any are
// queued, so the pusher can avoid a fresh allocation for its next item.
func (p *ThreadPusher[T]) TakeRecycled() (T, bool) {
	var zero T
	if len(p.s.returns) == 0 {
		return zero, false
	}
	n := len(p.s.returns) - 1
	item := p.s.returns[n]
	p.s.returns = p.s.returns[:n]
	return item, true
}

// Pull pops the next item off the forward deque.
func (p *ThreadPuller[T]) Pull() (*T, bool) {
	if len(p.s.forward) == 0 {
		return nil, false
	}
	item := p.s.forward[0]
	p.s.forward = p.s.forward[1:]
	return &item, true
}

// Recycle hands a drained item back to the pusher for reuse, bounded by
// recycleLimit.
func (p *ThreadPuller[T]) Recycle(item T) {
	if len(p.s.returns) >= p.s.recycleLimit {
		return
	}
	p.s.returns = append(p.s.returns, item)
}

var (
	_ Push[int] = (*ThreadPusher[int])(nil)
	_ Pull[int] = (*ThreadPuller[int])(nil)
)
