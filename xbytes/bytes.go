// Package xbytes implements the reclaimable shared byte plane (spec
// §4.1 "Byte slab and framed transport", §3 "Bytes"). It is grounded on
// aistore's memsys page-slab allocator (see other_examples'
// transport-api.go.go, which imports memsys.DefaultBufSize /
// memsys.MaxPageSlabSize / memsys.PageSize directly) adapted from a
// fixed-size page pool to the spec's doubling BytesSlab.
package xbytes

import "sync/atomic"

// allocation is one owned, growable buffer and the outstanding-handle
// count of Bytes views derived from it. At most one owner ever reclaims
// it (spec §3 invariant).
type allocation struct {
	buf  []byte
	refs atomic.Int64
}

// Bytes is a reference-counted view over a shared owned allocation
// (spec §3 "Bytes"). The zero value is not usable; construct via
// BytesSlab.Extract or Bytes.ExtractTo.
type Bytes struct {
	alloc    *allocation
	data     []byte
	released bool
}

func newBytes(alloc *allocation, data []byte) *Bytes {
	alloc.refs.Add(1)
	return &Bytes{alloc: alloc, data: data}
}

// Wrap returns a standalone Bytes handle owning buf outright — used by
// the sender side of the zero-copy channel, which builds one frame per
// outbound message rather than carving views out of a shared slab.
func Wrap(buf []byte) *Bytes {
	return newBytes(&allocation{buf: buf}, buf)
}

// Data returns the byte view. Valid until Release is called.
func (b *Bytes) Data() []byte { return b.data }

// Len returns the view's length.
func (b *Bytes) Len() int { return len(b.data) }

// ExtractTo splits off the first n bytes of b as a new, independent
// Bytes handle sharing the same allocation, advancing b's own view past
// them (spec §4.1 "extract_to(n)").
func (b *Bytes) ExtractTo(n int) *Bytes {
	head := b.data[:n:n]
	b.data = b.data[n:]
	return newBytes(b.alloc, head)
}

// Release drops this handle's claim on the allocation. Safe to call
// from any goroutine (the allocation's refcount is atomic); safe to
// call more than once.
func (b *Bytes) Release() {
	if b.released {
		return
	}
	b.released = true
	b.alloc.refs.Add(-1)
}

// TryRecover attempts to reclaim the full backing allocation through
// this handle: it succeeds only if this is the sole outstanding handle
// on the allocation (refcount observed at 1), in which case it returns
// the full buffer for reuse and consumes this handle. Otherwise it
// returns ok=false and leaves the handle untouched (spec §3
// "try_recover()", §9 "reclamation is by conditional down-cast when the
// ref count reaches one").
func (b *Bytes) TryRecover() (buf []byte, ok bool) {
	if b.released {
		return nil, false
	}
	if b.alloc.refs.CompareAndSwap(1, 0) {
		b.released = true
		return b.alloc.buf, true
	}
	return nil, false
}
