package channel

import (
	"sync/atomic"

	"github.com/flowmesh/xdf/message"
	"github.com/flowmesh/xdf/wire"
	"github.com/flowmesh/xdf/xbytes"
)

// Codec turns one item into its wire payload and back, kept separate
// from the framing layer so the hot loop never depends on a reflective
// or self-describing encoding (spec §4.2 "Zero-copy process /
// inter-process channel"). tinylib/msgp generated (Un)MarshalMsg pairs
// are the expected implementation; eventlog uses msgp directly instead
// of going through Codec since its records are never on this path.
type Codec[M any] interface {
	Encode(m M) []byte
	Decode(data []byte) M
}

// Canary is held by a ZeroCopyPuller and watched by the allocator: once
// Drop is called the allocator knows no one will ever read this
// channel's inbound queue again and may retire it instead of letting it
// grow unbounded (spec §4.2 "a canary token ... lets the allocator drop
// inbound queues when the puller is gone").
type Canary struct {
	alive atomic.Bool
}

// NewCanary returns a live Canary.
func NewCanary() *Canary {
	c := &Canary{}
	c.alive.Store(true)
	return c
}

// Drop marks the canary dead. Idempotent.
func (c *Canary) Drop() { c.alive.Store(false) }

// Alive reports whether the owning puller is still reachable.
func (c *Canary) Alive() bool { return c.alive.Load() }

// ZeroCopyPusher serializes each pushed item through codec into a
// standalone framed buffer and hands it to the shared sender loop (spec
// §4.2: "pushers serialize (header, payload) into a shared send-endpoint
// that writes into a byte slab and publishes complete prefixes"). Push's
// own allocation is a one-off xbytes.Wrap rather than a carve out of a
// shared BytesSlab: the slab is the receiver's tool for amortizing reads
// off a socket, not the sender's, which already knows each frame's exact
// size up front.
type ZeroCopyPusher[M any] struct {
	codec   Codec[M]
	out     chan<- wire.Outbound
	channel uint64
	source  uint64
	target  uint64
	seqno   uint64
}

// NewZeroCopyPusher returns a pusher framing items for (channel, source,
// target) onto out, the shared per-connection sender channel SendLoop
// drains.
func NewZeroCopyPusher[M any](codec Codec[M], out chan<- wire.Outbound, channelID, source, target uint64) *ZeroCopyPusher[M] {
	return &ZeroCopyPusher[M]{codec: codec, out: out, channel: channelID, source: source, target: target}
}

// Push encodes item and enqueues it for transmission. Push(nil) is a
// no-op: unlike the thread and process channels, the wire protocol has
// no open/flush state to fold an empty message into — every frame
// already carries its own length.
func (p *ZeroCopyPusher[M]) Push(item *M) {
	if item == nil {
		return
	}
	payload := p.codec.Encode(*item)
	p.seqno++
	buf := make([]byte, message.HeaderSize+len(payload))
	hdr := message.MessageHeader{
		Channel: p.channel,
		Source:  p.source,
		Target:  p.target,
		Length:  uint64(len(payload)),
		Seqno:   p.seqno,
	}
	hdr.Encode(buf[:message.HeaderSize])
	copy(buf[message.HeaderSize:], payload)
	p.out <- wire.Outbound{Data: xbytes.Wrap(buf)}
}

// ZeroCopyPuller is the receive side: its queue is populated through
// Route, which the allocator calls from Receive for each frame a per-peer
// wire.ReceiveLoop has peeled off the wire, decoding each arriving
// payload through codec (spec §4.2 "pullers read from per-channel
// VecDeques populated by the receiver loop"). Reuses processQueue, the
// same mutex-guarded slice the process channel uses: one queue per
// receiver, drained once per worker step.
type ZeroCopyPuller[M any] struct {
	codec  Codec[M]
	queue  processQueue[M]
	canary *Canary
}

// NewZeroCopyPuller returns an empty puller with a fresh, live Canary.
func NewZeroCopyPuller[M any](codec Codec[M]) *ZeroCopyPuller[M] {
	return &ZeroCopyPuller[M]{codec: codec, canary: NewCanary()}
}

// Canary returns the token the allocator watches to learn this puller
// has been dropped.
func (p *ZeroCopyPuller[M]) Canary() *Canary { return p.canary }

// Route is a wire.Route suitable for passing to wire.ReceiveLoop,
// decoding each arriving payload and enqueuing it. Frames with no
// payload (hdr.Length == 0) are dropped: the wire protocol never needs
// an empty-message marker the way the in-process channels do.
func (p *ZeroCopyPuller[M]) Route(hdr message.MessageHeader, payload *xbytes.Bytes) {
	if payload == nil {
		return
	}
	item := p.codec.Decode(payload.Data())
	payload.Release()
	p.queue.push(item)
}

// Enqueue pushes item directly, for callers that have already decoded
// it off the wire themselves.
func (p *ZeroCopyPuller[M]) Enqueue(item M) { p.queue.push(item) }

// Pull dequeues the next decoded item, if any.
func (p *ZeroCopyPuller[M]) Pull() (*M, bool) {
	item, ok := p.queue.pop()
	if !ok {
		return nil, false
	}
	return &item, true
}

var (
	_ Push[int] = (*ZeroCopyPusher[int])(nil)
	_ Pull[int] = (*ZeroCopyPuller[int])(nil)
)
