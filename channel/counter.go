package channel

// EventKind distinguishes a push from a pull in the allocator's shared
// per-channel event queue, which the activation set consumes to decide
// what became runnable (spec §4.2 "Counter wrappers", §4.4).
type EventKind int

const (
	Pushed EventKind = iota
	Pulled
)

func (k EventKind) String() string {
	if k == Pushed {
		return "pushed"
	}
	return "pulled"
}

// Event is one channel-activity notification.
type Event struct {
	Channel uint64
	Kind    EventKind
	Count   int
}

// EventSink receives channel-activity events. The allocator's event
// queue (package allocator) implements this.
type EventSink interface {
	Emit(Event)
}

// CountingPusher wraps a Push[T], emitting a Pushed event to sink for
// every non-flush Push call.
type CountingPusher[T any] struct {
	inner   Push[T]
	channel uint64
	sink    EventSink
}

// NewCountingPusher wraps inner so that pusher reports its activity to
// sink. allocator.AllocateChannel does not apply this wrapper.
func NewCountingPusher[T any](inner Push[T], channel uint64, sink EventSink) *CountingPusher[T] {
	return &CountingPusher[T]{inner: inner, channel: channel, sink: sink}
}

func (c *CountingPusher[T]) Push(item *T) {
	c.inner.Push(item)
	if item != nil {
		c.sink.Emit(Event{Channel: c.channel, Kind: Pushed, Count: 1})
	}
}

// CountingPuller wraps a Pull[T], emitting a Pulled event to sink for
// every successful Pull call.
type CountingPuller[T any] struct {
	inner   Pull[T]
	channel uint64
	sink    EventSink
}

// NewCountingPuller wraps inner the same way NewCountingPusher does.
func NewCountingPuller[T any](inner Pull[T], channel uint64, sink EventSink) *CountingPuller[T] {
	return &CountingPuller[T]{inner: inner, channel: channel, sink: sink}
}

func (c *CountingPuller[T]) Pull() (*T, bool) {
	item, ok := c.inner.Pull()
	if ok {
		c.sink.Emit(Event{Channel: c.channel, Kind: Pulled, Count: 1})
	}
	return item, ok
}

var (
	_ Push[int] = (*CountingPusher[int])(nil)
	_ Pull[int] = (*CountingPuller[int])(nil)
)
