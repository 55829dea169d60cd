package channel

import (
	"testing"

	"github.com/flowmesh/xdf/message"
)

func TestExchangeRoutesByHashAndPreservesOrderPerTarget(t *testing.T) {
	const n = 4
	var received [n][]string
	pushers := make([]Push[exchangeMessage[int, string]], n)
	for i := 0; i < n; i++ {
		i := i
		pushers[i] = PushFunc[exchangeMessage[int, string]](func(msg *exchangeMessage[int, string]) {
			if msg == nil {
				return
			}
			received[i] = append(received[i], msg.Content.Items()...)
		})
	}

	ex := NewExchange[int, string](pushers, HashString)

	items := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	vec := message.NewVector[string](len(items))
	for _, it := range items {
		vec.Push(it)
	}
	ex.Push(&exchangeMessage[int, string]{Time: 0, Content: vec})
	ex.Push(nil) // flush

	want := make(map[string]int, len(items))
	pos := make(map[string]int, len(items))
	for idx, it := range items {
		want[it] = int(HashString(it) % n)
		pos[it] = idx
	}

	var gotAll []string
	for i := 0; i < n; i++ {
		for j, it := range received[i] {
			if want[it] != i {
				t.Fatalf("item %q landed on target %d, want %d", it, i, want[it])
			}
			if j > 0 && pos[received[i][j-1]] > pos[it] {
				t.Fatalf("target %d received %q before %q, out of input order", i, received[i][j-1], it)
			}
			gotAll = append(gotAll, it)
		}
	}
	if len(gotAll) != len(items) {
		t.Fatalf("got %d items across all targets, want %d", len(gotAll), len(items))
	}
}

func TestExchangeSingleTargetBypassesHashing(t *testing.T) {
	var received []string
	pushers := []Push[exchangeMessage[int, string]]{
		PushFunc[exchangeMessage[int, string]](func(msg *exchangeMessage[int, string]) {
			if msg == nil {
				return
			}
			received = append(received, msg.Content.Items()...)
		}),
	}
	ex := NewExchange[int, string](pushers, HashString)

	vec := message.NewVector[string](1)
	vec.Push("solo")
	ex.Push(&exchangeMessage[int, string]{Time: 0, Content: vec})

	if len(received) != 1 || received[0] != "solo" {
		t.Fatalf("got %v, want [solo]", received)
	}
}

func TestHashBytesAndHashStringAgree(t *testing.T) {
	s := "consistent-hash-check"
	if HashBytes([]byte(s)) != HashString(s) {
		t.Fatal("HashBytes and HashString disagree on the same content")
	}
}
