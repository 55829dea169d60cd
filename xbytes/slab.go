package xbytes

import (
	"golang.org/x/sync/singleflight"
)

const minSlabSize = 4 << 10 // 4 KiB starting allocation, doubled thereafter

// Pool stashes allocations by size class (filled only through give) so a
// slab that needs to grow can first try a same-sized buffer, and routes
// the "nobody has a free Nth-size buffer, go allocate one" miss through
// singleflight — the teacher's memsys plays the analogous role of a page
// pool behind transport.Streams. The stash map is not guarded by a lock,
// so a Pool is not safe for concurrent use; allocator.Build gives each
// peer connection's receive slab a Pool of its own.
type Pool struct {
	group singleflight.Group
	stash map[int][][]byte
}

// NewPool returns an empty shared allocation pool.
func NewPool() *Pool { return &Pool{stash: make(map[int][][]byte)} }

func (p *Pool) take(size int) []byte {
	bufs := p.stash[size]
	if len(bufs) == 0 {
		return nil
	}
	buf := bufs[len(bufs)-1]
	p.stash[size] = bufs[:len(bufs)-1]
	return buf
}

func (p *Pool) give(buf []byte) {
	size := cap(buf)
	p.stash[size] = append(p.stash[size], buf[:size])
}

func (p *Pool) allocate(size int) []byte {
	if buf := p.take(size); buf != nil {
		return buf
	}
	v, _, _ := p.group.Do(sizeKey(size), func() (any, error) {
		if buf := p.take(size); buf != nil {
			return buf, nil
		}
		return make([]byte, size), nil
	})
	return v.([]byte)
}

func sizeKey(size int) string {
	// small fixed set of power-of-two size classes; a simple decimal key
	// is enough to dedupe singleflight callers targeting the same class.
	buf := [20]byte{}
	n := len(buf)
	if size == 0 {
		return "0"
	}
	for size > 0 {
		n--
		buf[n] = byte('0' + size%10)
		size /= 10
	}
	return string(buf[n:])
}

// BytesSlab owns one growable allocation, an append cursor ("valid"), a
// front cursor marking the start of still-unconsumed bytes, the list of
// Bytes handles currently in progress, and (via Pool) a stash of
// reclaimed allocations of the current size (spec §4.1 "Slab
// (BytesSlab)"). Not safe for concurrent use: one BytesSlab belongs to
// one receiver loop goroutine, matching the "per-worker single-threaded
// interior mutability" design note (spec §9).
type BytesSlab struct {
	pool       *Pool
	alloc      *allocation
	front      int // start of unconsumed, valid bytes
	valid      int // end of written, valid bytes
	inProgress []*Bytes
}

// NewBytesSlab returns a slab backed by pool, with an initial allocation
// of at least minSlabSize bytes.
func NewBytesSlab(pool *Pool) *BytesSlab {
	s := &BytesSlab{pool: pool}
	s.alloc = &allocation{buf: pool.allocate(minSlabSize)}
	return s
}

// Empty returns the writable suffix of the current allocation
// (spec §4.1 "empty()").
func (s *BytesSlab) Empty() []byte { return s.alloc.buf[s.valid:] }

// MakeValid advances the valid cursor by n freshly written bytes
// (spec §4.1 "make_valid(n)").
func (s *BytesSlab) MakeValid(n int) { s.valid += n }

// Len returns the number of unconsumed valid bytes currently buffered.
func (s *BytesSlab) Len() int { return s.valid - s.front }

// Peek returns the first n unconsumed bytes without advancing the front
// cursor, used by the framed receiver loop to inspect a MessageHeader
// before deciding whether a complete message is available.
func (s *BytesSlab) Peek(n int) []byte { return s.alloc.buf[s.front : s.front+n] }

// Extract returns a Bytes view over the first n unconsumed bytes and
// advances the front cursor past them (spec §4.1 "extract(n)").
func (s *BytesSlab) Extract(n int) *Bytes {
	b := newBytes(s.alloc, s.alloc.buf[s.front:s.front+n:s.front+n])
	s.front += n
	s.inProgress = append(s.inProgress, b)
	return b
}

// EnsureCapacity guarantees the writable suffix is at least cap bytes,
// doubling the allocation (via the shared Pool) as needed, reclaiming an
// in-progress buffer whose handles have all dropped where possible
// before falling back to a fresh allocation, and copying the still-valid
// unconsumed prefix into the new buffer (spec §4.1 "ensure_capacity(cap)").
func (s *BytesSlab) EnsureCapacity(want int) {
	if len(s.alloc.buf)-s.valid >= want {
		return
	}

	validLen := s.valid - s.front
	size := len(s.alloc.buf)
	if size == 0 {
		size = minSlabSize
	}
	for size-validLen < want {
		size *= 2
	}

	// try to reclaim an in-progress buffer whose handles have all dropped
	kept := s.inProgress[:0]
	var reclaimed []byte
	for _, b := range s.inProgress {
		if reclaimed == nil {
			if buf, ok := b.TryRecover(); ok && cap(buf) == size {
				reclaimed = buf
				continue
			}
		}
		kept = append(kept, b)
	}
	s.inProgress = kept

	var next []byte
	if reclaimed != nil {
		next = reclaimed
	} else {
		next = s.pool.allocate(size)
	}
	copy(next, s.alloc.buf[s.front:s.valid])

	s.alloc = &allocation{buf: next}
	s.valid = validLen
	s.front = 0
}
