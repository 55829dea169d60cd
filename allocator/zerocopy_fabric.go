package allocator

import (
	"sync"

	"github.com/flowmesh/xdf/channel"
	"github.com/flowmesh/xdf/message"
	"github.com/flowmesh/xdf/wire"
	"github.com/flowmesh/xdf/xbytes"
)

// routable is the subset of channel.ZeroCopyPuller[T] the fabric needs
// to dispatch a decoded frame; satisfied structurally, no import cycle.
type routable interface {
	Route(hdr message.MessageHeader, payload *xbytes.Bytes)
	Canary() *channel.Canary
}

// inboundFrame is one complete, still-undecoded frame a peer connection's
// reader goroutine has peeled off the wire (spec §4.3 "receive() drains
// inbound Bytes into per-channel queues, peeling headers and routing
// payloads" — the peeling happens in the reader goroutine; the routing
// to a channel-specific decode happens synchronously in Receive()).
type inboundFrame struct {
	hdr     message.MessageHeader
	payload *xbytes.Bytes
}

// zeroCopyFabric is the process-wide cross-process wiring shared by
// every worker thread's Allocator in this process: one TCP connection
// per peer process, with a reader and sender goroutine each (spec §4.3
// "after the handshake, per-peer reader/sender threads are started").
type zeroCopyFabric struct {
	process           int
	processes         int
	threadsPerProcess int
	compression       bool

	outboxes []chan wire.Outbound // len processes; outboxes[process] is nil (self)
	inbox    chan inboundFrame

	mu      sync.Mutex
	pullers map[uint64]routable
}

func (f *zeroCopyFabric) outboxFor(peerWorker int) chan<- wire.Outbound {
	proc := peerWorker / f.threadsPerProcess
	return f.outboxes[proc]
}

func (f *zeroCopyFabric) registerPuller(id uint64, r routable) {
	f.mu.Lock()
	f.pullers[id] = r
	f.mu.Unlock()
}

// drainInbound dispatches every frame currently queued to its
// registered puller, decoding through that channel's codec. Frames for
// an unregistered (or already-dropped) channel are released and
// discarded rather than left to accumulate.
func (f *zeroCopyFabric) drainInbound() {
	for {
		select {
		case frame := <-f.inbox:
			f.mu.Lock()
			r, ok := f.pullers[frame.hdr.Channel]
			if ok && !r.Canary().Alive() {
				delete(f.pullers, frame.hdr.Channel)
				ok = false
			}
			f.mu.Unlock()
			if ok {
				r.Route(frame.hdr, frame.payload)
			} else if frame.payload != nil {
				frame.payload.Release()
			}
		default:
			return
		}
	}
}

// route is the wire.Route handed to each peer connection's ReceiveLoop:
// it does no decoding itself, only queues the raw frame for the owning
// worker's next Receive() call to dispatch.
func (f *zeroCopyFabric) route(hdr message.MessageHeader, payload *xbytes.Bytes) {
	f.inbox <- inboundFrame{hdr: hdr, payload: payload}
}
