package message_test

import (
	"testing"

	"github.com/flowmesh/xdf/message"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := message.MessageHeader{Channel: 7, Source: 1, Target: 2, Length: 64, Seqno: 99}
	buf := make([]byte, message.HeaderSize)
	h.Encode(buf)

	got := message.DecodeHeader(buf)
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
	if got.RequiredBytes() != message.HeaderSize+64 {
		t.Fatalf("RequiredBytes = %d, want %d", got.RequiredBytes(), message.HeaderSize+64)
	}
}

func TestVectorContainer(t *testing.T) {
	v := message.NewVector[int](4)
	if v.PreferredCapacity() != 4 {
		t.Fatalf("preferred capacity = %d, want 4", v.PreferredCapacity())
	}
	v.Push(1)
	v.Push(2)
	if v.Len() != 2 {
		t.Fatalf("len = %d, want 2", v.Len())
	}
	if got := v.Items(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("items = %v", got)
	}
	v.Clear()
	if v.Len() != 0 {
		t.Fatalf("len after clear = %d, want 0", v.Len())
	}
}
