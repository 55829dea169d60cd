package channel

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v3"
)

// CompressedCodec wraps another Codec, lz4-compressing each encoded
// payload before it is framed and decompressing it again on the way
// back out (the zero-copy channel's optional "Extra.Compression" knob
// — grounded in the teacher's transport.Extra.Compression field wired
// through xact/xs/tcb.go's bundle.Extra). Compression is applied at the
// codec layer rather than in the fixed MessageHeader, so turning it on
// or off for one channel never changes the on-wire frame format other
// channels rely on.
//
// Each encoded frame is prefixed with a uvarint holding the original,
// uncompressed length; a prefix of 0 means the payload that follows is
// stored raw (CompressBlock returned 0 for inputs too small or too
// incompressible to shrink).
type CompressedCodec[M any] struct {
	inner Codec[M]
}

// NewCompressedCodec wraps inner so every encoded payload is
// lz4-compressed before hitting the wire.
func NewCompressedCodec[M any](inner Codec[M]) *CompressedCodec[M] {
	return &CompressedCodec[M]{inner: inner}
}

func (c *CompressedCodec[M]) Encode(m M) []byte {
	raw := c.inner.Encode(m)

	prefix := make([]byte, binary.MaxVarintLen64)
	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil || n == 0 || n >= len(raw) {
		pn := binary.PutUvarint(prefix, 0)
		return append(prefix[:pn], raw...)
	}

	pn := binary.PutUvarint(prefix, uint64(len(raw)))
	out := make([]byte, 0, pn+n)
	out = append(out, prefix[:pn]...)
	out = append(out, compressed[:n]...)
	return out
}

func (c *CompressedCodec[M]) Decode(data []byte) M {
	rawLen, n := binary.Uvarint(data)
	body := data[n:]
	if rawLen == 0 {
		return c.inner.Decode(body)
	}
	raw := make([]byte, rawLen)
	if _, err := lz4.UncompressBlock(body, raw); err != nil {
		panic(err) // corrupted or truncated wire frame
	}
	return c.inner.Decode(raw)
}

var _ Codec[int] = (*CompressedCodec[int])(nil)
