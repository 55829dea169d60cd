// Package channel implements the data-plane Push/Pull contracts and the
// concrete pushers/pullers spec §4.2 describes: intra-thread,
// intra-process, and zero-copy inter-process, plus the counter wrapper,
// exchange pusher, and tee fan-out.
package channel

// Push is the producer side of a channel (spec §4.2). Push(item)
// delivers item; Push(nil) signals end-of-batch (flush). Callers must
// eventually call Push(nil) to guarantee visibility of prior items to a
// puller that batches internally.
type Push[T any] interface {
	Push(item *T)
}

// Pull is the consumer side of a channel (spec §4.2). Pull returns the
// next item and ok=true, or ok=false when momentarily empty (not
// necessarily permanently — more may arrive later).
type Pull[T any] interface {
	Pull() (item *T, ok bool)
}

// PushFunc adapts a function to Push.
type PushFunc[T any] func(item *T)

func (f PushFunc[T]) Push(item *T) { f(item) }

// PullFunc adapts a function to Pull.
type PullFunc[T any] func() (*T, bool)

func (f PullFunc[T]) Pull() (*T, bool) { return f() }
