package wire

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/flowmesh/xdf/message"
	"github.com/flowmesh/xdf/xbytes"
)

const initialGrow = 64 << 10

// Route is invoked once per complete frame peeled off the front of the
// receive buffer. payload is nil when hdr.Length == 0.
type Route func(hdr message.MessageHeader, payload *xbytes.Bytes)

// ReceiveLoop is the per-remote-peer receiver loop (spec §4.1): it reads
// into slab.Empty(), advances the valid cursor, and peels complete
// messages from the front, growing the slab (via EnsureCapacity) only
// when the buffer fills without yielding a complete message. It runs
// until r returns an error (including io.EOF), which it always returns
// wrapped for the caller to classify as a fatal per-connection failure
// (spec §7).
func ReceiveLoop(r io.Reader, slab *xbytes.BytesSlab, route Route) error {
	grow := initialGrow
	for {
		for slab.Len() >= message.HeaderSize {
			hdr := message.DecodeHeader(slab.Peek(message.HeaderSize))
			total := int(hdr.RequiredBytes())
			if slab.Len() < total {
				break
			}
			slab.Extract(message.HeaderSize)
			var payload *xbytes.Bytes
			if hdr.Length > 0 {
				payload = slab.Extract(int(hdr.Length))
			}
			route(hdr, payload)
		}
		if len(slab.Empty()) == 0 {
			grow *= 2
			slab.EnsureCapacity(grow)
		}
		n, err := r.Read(slab.Empty())
		if n > 0 {
			slab.MakeValid(n)
		}
		if err != nil {
			return errors.Wrap(err, "wire: receive loop")
		}
	}
}

// Outbound is one item handed to the sender loop: the framed bytes to
// write, released (its refcount guard dropped) once fully written.
type Outbound struct {
	Data *xbytes.Bytes
}

// SendLoop is the per-remote-peer sender loop (spec §4.1): it drains ch,
// writes each item through a buffered writer, flushing between bursts,
// coalescing any additional items already queued via a non-blocking
// drain before it flushes.
func SendLoop(w io.Writer, ch <-chan Outbound) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	for item := range ch {
		if _, err := bw.Write(item.Data.Data()); err != nil {
			item.Data.Release()
			return errors.Wrap(err, "wire: send loop")
		}
		item.Data.Release()
		// coalesce: only flush once nothing else is immediately ready,
		// so a burst of enqueued sends shares one syscall.
		if len(ch) == 0 {
			if err := bw.Flush(); err != nil {
				return errors.Wrap(err, "wire: flush")
			}
		}
	}
	return bw.Flush()
}
