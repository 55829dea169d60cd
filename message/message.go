// Package message defines the Message<T,C> wire unit and its header
// (spec §3 "Message<T,C>", §6 "Wire framing").
package message

import "encoding/binary"

// HeaderSize is the fixed, little-endian on-wire size of a MessageHeader:
// five uint64 fields (spec §6).
const HeaderSize = 40

// MessageHeader precedes every message on the wire. Field order is fixed
// by spec §6 and must not change without breaking the handshake-free
// wire compatibility between peers.
type MessageHeader struct {
	Channel uint64
	Source  uint64
	Target  uint64
	Length  uint64
	Seqno   uint64
}

// RequiredBytes is sizeof(Header) + Length: the total bytes (header +
// payload) a complete message occupies on the wire.
func (h MessageHeader) RequiredBytes() uint64 { return HeaderSize + h.Length }

// Encode writes h into dst (which must be at least HeaderSize bytes) in
// little-endian field order.
func (h MessageHeader) Encode(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], h.Channel)
	binary.LittleEndian.PutUint64(dst[8:16], h.Source)
	binary.LittleEndian.PutUint64(dst[16:24], h.Target)
	binary.LittleEndian.PutUint64(dst[24:32], h.Length)
	binary.LittleEndian.PutUint64(dst[32:40], h.Seqno)
}

// DecodeHeader parses a MessageHeader from the front of src, which must
// be at least HeaderSize bytes.
func DecodeHeader(src []byte) MessageHeader {
	return MessageHeader{
		Channel: binary.LittleEndian.Uint64(src[0:8]),
		Source:  binary.LittleEndian.Uint64(src[8:16]),
		Target:  binary.LittleEndian.Uint64(src[16:24]),
		Length:  binary.LittleEndian.Uint64(src[24:32]),
		Seqno:   binary.LittleEndian.Uint64(src[32:40]),
	}
}

// Container is the constraint the data plane requires of a payload
// sequence-of-items type (spec §9 "Containers"): length, clearing,
// iteration via Items, a preferred batch capacity, and push-by-value.
type Container[I any] interface {
	Len() int
	Clear()
	Items() []I
	PreferredCapacity() int
	Push(item I)
}

// Message pairs a timestamp with a container of items (spec §3
// "Message<T,C>").
type Message[T any, C any] struct {
	Time    T
	Content C
}

// Vector is the default Container implementation: a plain slice, the
// starting point spec §9 names before "columnar or flat-stack
// containers".
type Vector[I any] struct {
	items    []I
	Preferred int
}

// NewVector returns an empty Vector with the given preferred batch size.
func NewVector[I any](preferred int) *Vector[I] {
	if preferred <= 0 {
		preferred = 256
	}
	return &Vector[I]{Preferred: preferred}
}

func (v *Vector[I]) Len() int               { return len(v.items) }
func (v *Vector[I]) Clear()                 { v.items = v.items[:0] }
func (v *Vector[I]) Items() []I             { return v.items }
func (v *Vector[I]) PreferredCapacity() int { return v.Preferred }
func (v *Vector[I]) Push(item I)            { v.items = append(v.items, item) }

var _ Container[int] = (*Vector[int])(nil)
