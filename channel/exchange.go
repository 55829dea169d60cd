package channel

import "github.com/flowmesh/xdf/message"

// exchangeMessage is shorthand for the message shape Exchange and Tee
// operate on: a timestamp paired with the default Vector container
// (spec §9: "Implementations may start with vector of T").
type exchangeMessage[T comparable, I any] = message.Message[T, *message.Vector[I]]

// Exchange wraps N downstream pushers and a hash function, routing each
// item of an incoming batch to hash(item) mod N (spec §4.2 "Exchange
// pusher", §8 "Exchange routing"). It batches per-target up to the
// container's preferred capacity and flushes a target when full or when
// the open timestamp changes.
type Exchange[T comparable, I any] struct {
	pushers []Push[exchangeMessage[T, I]]
	hash    func(I) uint64
	mask    uint64
	useMask bool

	buffers []*message.Vector[I]
	openT   T
	isOpen  bool
}

// NewExchange returns an Exchange fanning out to pushers using hash to
// pick a target per item.
func NewExchange[T comparable, I any](pushers []Push[exchangeMessage[T, I]], hash func(I) uint64) *Exchange[T, I] {
	n := len(pushers)
	ex := &Exchange[T, I]{pushers: pushers, hash: hash}
	ex.useMask = n > 0 && n&(n-1) == 0
	if ex.useMask {
		ex.mask = uint64(n - 1)
	}
	ex.buffers = make([]*message.Vector[I], n)
	for i := range ex.buffers {
		ex.buffers[i] = message.NewVector[I](0)
	}
	return ex
}

func (ex *Exchange[T, I]) target(item I) int {
	h := ex.hash(item)
	if ex.useMask {
		return int(h & ex.mask)
	}
	return int(h % uint64(len(ex.pushers)))
}

// Push routes msg's items to their targets, or (if msg is nil) flushes
// every buffered target and forwards the flush downstream.
func (ex *Exchange[T, I]) Push(msg *exchangeMessage[T, I]) {
	if msg == nil {
		ex.flushAll()
		return
	}
	if len(ex.pushers) == 1 {
		ex.pushers[0].Push(msg)
		return
	}
	if ex.isOpen && ex.openT != msg.Time {
		ex.flushAll()
	}
	ex.openT, ex.isOpen = msg.Time, true

	for _, item := range msg.Content.Items() {
		idx := ex.target(item)
		buf := ex.buffers[idx]
		buf.Push(item)
		if buf.Len() >= buf.PreferredCapacity() {
			ex.flushTarget(idx)
		}
	}
}

func (ex *Exchange[T, I]) flushTarget(i int) {
	if ex.buffers[i].Len() == 0 {
		return
	}
	out := exchangeMessage[T, I]{Time: ex.openT, Content: ex.buffers[i]}
	ex.pushers[i].Push(&out)
	ex.buffers[i] = message.NewVector[I](ex.buffers[i].PreferredCapacity())
}

func (ex *Exchange[T, I]) flushAll() {
	for i := range ex.buffers {
		ex.flushTarget(i)
	}
	for _, p := range ex.pushers {
		p.Push(nil)
	}
	ex.isOpen = false
}

var _ Push[exchangeMessage[int, int]] = (*Exchange[int, int])(nil)
