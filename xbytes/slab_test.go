package xbytes_test

import (
	"testing"

	"github.com/flowmesh/xdf/xbytes"
)

func TestExtractAdvancesFront(t *testing.T) {
	pool := xbytes.NewPool()
	slab := xbytes.NewBytesSlab(pool)

	dst := slab.Empty()
	copy(dst, []byte("hello world"))
	slab.MakeValid(11)

	if slab.Len() != 11 {
		t.Fatalf("len = %d, want 11", slab.Len())
	}

	b := slab.Extract(5)
	if string(b.Data()) != "hello" {
		t.Fatalf("extracted = %q, want %q", b.Data(), "hello")
	}
	if slab.Len() != 6 {
		t.Fatalf("len after extract = %d, want 6", slab.Len())
	}
}

func TestBytesExtractToSharesAllocation(t *testing.T) {
	pool := xbytes.NewPool()
	slab := xbytes.NewBytesSlab(pool)
	copy(slab.Empty(), []byte("abcdef"))
	slab.MakeValid(6)

	whole := slab.Extract(6)
	head := whole.ExtractTo(3)

	if string(head.Data()) != "abc" {
		t.Fatalf("head = %q", head.Data())
	}
	if string(whole.Data()) != "def" {
		t.Fatalf("remainder = %q", whole.Data())
	}
}

func TestReclamationRequiresAllHandlesReleased(t *testing.T) {
	pool := xbytes.NewPool()
	slab := xbytes.NewBytesSlab(pool)
	copy(slab.Empty(), []byte("xy"))
	slab.MakeValid(2)

	b := slab.Extract(2)
	other := b.ExtractTo(1) // two handles now share the allocation

	if _, ok := b.TryRecover(); ok {
		t.Fatalf("expected TryRecover to fail while other handle is outstanding")
	}
	other.Release()
	if _, ok := b.TryRecover(); !ok {
		t.Fatalf("expected TryRecover to succeed once the only other handle released")
	}
}

func TestEnsureCapacityGrowsAndPreservesValidPrefix(t *testing.T) {
	pool := xbytes.NewPool()
	slab := xbytes.NewBytesSlab(pool)
	copy(slab.Empty(), []byte("keep-me"))
	slab.MakeValid(7)

	slab.EnsureCapacity(1 << 20)

	if slab.Len() != 7 {
		t.Fatalf("len after grow = %d, want 7", slab.Len())
	}
	got := slab.Extract(7)
	if string(got.Data()) != "keep-me" {
		t.Fatalf("prefix after grow = %q, want %q", got.Data(), "keep-me")
	}
}
