package wire_test

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/flowmesh/xdf/message"
	"github.com/flowmesh/xdf/wire"
	"github.com/flowmesh/xdf/xbytes"
)

func TestHandshakeRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	const nonce = 0xdeadbeef
	errc := make(chan error, 2)
	go func() { errc <- wire.DialHandshake(a, 0, nonce) }()
	go func() {
		peer, err := wire.AcceptHandshake(b, nonce)
		if err == nil && peer != 0 {
			err = io.ErrUnexpectedEOF
		}
		errc <- err
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errc:
			if err != nil {
				t.Fatalf("handshake leg failed: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("handshake timed out")
		}
	}
}

func TestHandshakeBadMagicAborts(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8}) // bogus magic
	buf.Write(make([]byte, 8))                // worker index
	if _, err := wire.AcceptHandshake(&buf, 42); err == nil {
		t.Fatal("expected bad-magic handshake to fail")
	}
}

func TestReceiveLoopPeelsFramesAndGrows(t *testing.T) {
	hdr1 := message.MessageHeader{Channel: 1, Source: 0, Target: 1, Length: 4, Seqno: 0}
	hdr2 := message.MessageHeader{Channel: 1, Source: 0, Target: 1, Length: 100 << 10, Seqno: 1} // forces a grow

	var wireBytes bytes.Buffer
	writeFrame(&wireBytes, hdr1, []byte("ping"))
	writeFrame(&wireBytes, hdr2, bytes.Repeat([]byte{0x7}, int(hdr2.Length)))

	pool := xbytes.NewPool()
	slab := xbytes.NewBytesSlab(pool)

	var got []message.MessageHeader
	route := func(h message.MessageHeader, payload *xbytes.Bytes) {
		got = append(got, h)
		if int(h.Length) != payload.Len() {
			t.Fatalf("payload length mismatch: header=%d payload=%d", h.Length, payload.Len())
		}
		payload.Release()
	}

	err := wire.ReceiveLoop(&wireBytes, slab, route)
	if err != io.EOF && err != nil {
		if !isWrappedEOF(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(got) != 2 || got[0].Seqno != 0 || got[1].Seqno != 1 {
		t.Fatalf("got %+v", got)
	}
}

func writeFrame(w io.Writer, hdr message.MessageHeader, payload []byte) {
	var buf [message.HeaderSize]byte
	hdr.Encode(buf[:])
	w.Write(buf[:])
	w.Write(payload)
}

func isWrappedEOF(err error) bool {
	for err != nil {
		if err == io.EOF {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
