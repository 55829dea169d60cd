package channel

import "github.com/flowmesh/xdf/message"

// Tee fans out to a shared list of downstream pushers, cloning the
// container for every recipient but the last, which receives the
// original (spec §4.2 "Tee").
type Tee[T comparable, I any] struct {
	pushers []Push[exchangeMessage[T, I]]
}

// NewTee returns a Tee fanning out to pushers.
func NewTee[T comparable, I any](pushers []Push[exchangeMessage[T, I]]) *Tee[T, I] {
	return &Tee[T, I]{pushers: pushers}
}

func (t *Tee[T, I]) Push(msg *exchangeMessage[T, I]) {
	n := len(t.pushers)
	if msg == nil {
		for _, p := range t.pushers {
			p.Push(nil)
		}
		return
	}
	for i := 0; i < n-1; i++ {
		clone := message.NewVector[I](msg.Content.PreferredCapacity())
		for _, item := range msg.Content.Items() {
			clone.Push(item)
		}
		out := exchangeMessage[T, I]{Time: msg.Time, Content: clone}
		t.pushers[i].Push(&out)
	}
	if n > 0 {
		t.pushers[n-1].Push(msg)
	}
}

var _ Push[exchangeMessage[int, int]] = (*Tee[int, int])(nil)
