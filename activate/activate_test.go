package activate

import (
	"reflect"
	"testing"
	"time"
)

func TestAdvanceDedupsAndSorts(t *testing.T) {
	a := NewActivationSet()
	a.Activate([]int{2})
	a.Activate([]int{0})
	a.Activate([]int{1})
	a.Activate([]int{0}) // duplicate

	a.Advance()

	var got [][]int
	a.ForExtensions(nil, func(next int) {
		got = append(got, []int{next})
	})
	want := [][]int{{0}, {1}, {2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAdvanceDropsPriorCleanPrefix(t *testing.T) {
	a := NewActivationSet()
	a.Activate([]int{0, 1})
	a.Advance()
	if a.IsEmpty() {
		t.Fatal("expected one active path after first Advance")
	}

	// No new activation this round: the prior clean region is discarded.
	a.Advance()
	if !a.IsEmpty() {
		t.Fatal("expected the activation set to be empty after a quiet Advance")
	}
}

func TestForExtensionsWalksUniqueNextHop(t *testing.T) {
	a := NewActivationSet()
	a.Activate([]int{0, 1})
	a.Activate([]int{0, 2})
	a.Activate([]int{0, 2, 5})
	a.Activate([]int{1, 0})
	a.Advance()

	var nexts []int
	a.ForExtensions([]int{0}, func(next int) {
		nexts = append(nexts, next)
	})
	if !reflect.DeepEqual(nexts, []int{1, 2}) {
		t.Fatalf("got %v, want [1 2]", nexts)
	}
}

func TestSyncActivationsCrossThread(t *testing.T) {
	a := NewActivationSet()
	woke := make(chan struct{}, 1)
	sync := a.Sync(func() {
		select {
		case woke <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		sync.Activate([]int{3, 1})
		close(done)
	}()
	<-done

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("expected wake callback to fire")
	}

	a.Advance()
	var nexts []int
	a.ForExtensions([]int{3}, func(next int) { nexts = append(nexts, next) })
	if !reflect.DeepEqual(nexts, []int{1}) {
		t.Fatalf("got %v, want [1]", nexts)
	}
}

func TestActivateOnDropReleasesOnce(t *testing.T) {
	a := NewActivationSet()
	guard := NewActivateOnDrop([]int{7}, a)
	guard.Release()
	guard.Release() // idempotent
	a.Advance()

	count := 0
	a.ForExtensions(nil, func(int) { count++ })
	if count != 1 {
		t.Fatalf("expected exactly one activation under the root, got %d", count)
	}
}
