package progress

import (
	"github.com/flowmesh/xdf/allocator"
	"github.com/flowmesh/xdf/channel"
	"github.com/flowmesh/xdf/order"
)

// FlushPolicy controls how often a Broadcaster sends a batch to its
// peers (SPEC_FULL.md §12 open question #2: "Progress batch flush
// cadence").
type FlushPolicy int

const (
	// FlushEveryStep sends exactly one batch per worker step, even an
	// empty one, so a peer's sequence-gap detection never has to
	// distinguish "nothing happened" from "lost a batch". This is the
	// default: the simplest policy satisfying "at least once per step".
	FlushEveryStep FlushPolicy = iota
	// FlushWhenFull accumulates entries across steps and only sends once
	// at least FlushThreshold entries are pending, trading latency for
	// fewer, larger batches.
	FlushWhenFull
)

// FlushThreshold is the entry count FlushWhenFull waits for before
// sending.
const FlushThreshold = 64

// EntryKind distinguishes whether a BatchEntry is a message-count change
// at a Target or a capability-count change at a Source (spec §4.5
// "compacts local ChangeBatches of pointstamp updates").
type EntryKind int

const (
	EntryTarget EntryKind = iota
	EntrySource
)

// BatchEntry is one compacted pointstamp delta: an (operator, port)
// location, tagged with whether it names a Target or a Source, and the
// (time, delta) pair. Kept independent of package pointstamp/reachability
// so progress has no import-cycle back onto its own consumers; callers
// reconstruct a pointstamp.Target/Source from Operator/Port themselves.
type BatchEntry[T any] struct {
	Kind     EntryKind
	Operator int
	Port     int
	Time     T
	Delta    int64
}

// Batch is the wire form of one scope's compacted pointstamp updates for
// one step: a monotonically increasing per-(scope, source worker)
// sequence number plus the deltas themselves (spec §4.5). Sequence
// numbers let a peer detect loss (a gap) within updates from one source.
type Batch[T any] struct {
	Scope    uint64
	Source   int
	Sequence uint64
	Entries  []BatchEntry[T]
}

// Broadcaster disseminates one subgraph scope's per-step pointstamp
// compactions to every peer worker, including the sender itself, over a
// single allocated channel, and hands inbound batches from every peer
// back to the caller in Receive (spec §4.5). One Broadcaster exists per
// (worker, scope) pair.
type Broadcaster[T order.Data[T]] struct {
	scope  uint64
	source int

	pushers []channel.Push[Batch[T]]
	puller  channel.Pull[Batch[T]]

	flush   FlushPolicy
	pending []BatchEntry[T]
	seq     uint64

	lastSeq map[int]uint64 // highest sequence number seen so far, per peer source
	gaps    uint64         // total detected sequence gaps, for diagnostics
}

// NewBroadcaster allocates the channel this scope's progress batches
// travel over via a, using codec to serialize Batch[T] for any zero-copy
// peers (codec may be nil when a's Kind is Thread or Process, matching
// allocator.AllocateChannel's own convention).
func NewBroadcaster[T order.Data[T]](a *allocator.Allocator, scopeID uint64, codec channel.Codec[Batch[T]], flush FlushPolicy) *Broadcaster[T] {
	pushers, puller := allocator.AllocateChannel[Batch[T]](a, scopeID, codec)
	return &Broadcaster[T]{
		scope:   scopeID,
		source:  a.Index(),
		pushers: pushers,
		puller:  puller,
		flush:   flush,
		lastSeq: make(map[int]uint64),
	}
}

// Stage queues one delta for the next (or a future, under FlushWhenFull)
// send. Call once per tracker-facing delta this step produced.
func (b *Broadcaster[T]) Stage(kind EntryKind, operator, port int, t T, delta int64) {
	b.pending = append(b.pending, BatchEntry[T]{Kind: kind, Operator: operator, Port: port, Time: t, Delta: delta})
}

// Flush sends a batch to every peer if the configured FlushPolicy calls
// for one now, resetting the staged entries. Returns whether it sent.
func (b *Broadcaster[T]) Flush() bool {
	switch b.flush {
	case FlushWhenFull:
		if len(b.pending) < FlushThreshold {
			return false
		}
	case FlushEveryStep:
		// always sends, even with zero entries
	}
	b.send(b.pending)
	b.pending = nil
	return true
}

// ForceFlush sends a batch unconditionally (e.g. at scope teardown, to
// flush any entries FlushWhenFull is still holding back).
func (b *Broadcaster[T]) ForceFlush() {
	b.send(b.pending)
	b.pending = nil
}

func (b *Broadcaster[T]) send(entries []BatchEntry[T]) {
	batch := Batch[T]{Scope: b.scope, Source: b.source, Sequence: b.seq, Entries: entries}
	b.seq++
	for _, p := range b.pushers {
		item := batch
		p.Push(&item)
	}
}

// Receive drains every inbound batch accumulated since the last call
// (from every peer, including ones this worker sent to itself),
// recording any detected sequence gap, and returns the batches in
// arrival order for the caller (typically a subgraph folding entries into
// its own reachability.Tracker via UpdateTarget/UpdateSource) to apply.
func (b *Broadcaster[T]) Receive() []Batch[T] {
	var out []Batch[T]
	for {
		item, ok := b.puller.Pull()
		if !ok {
			break
		}
		if item == nil {
			continue // end-of-batch flush marker, nothing to fold
		}
		if last, seen := b.lastSeq[item.Source]; seen && item.Sequence > last+1 {
			b.gaps += item.Sequence - last - 1
		}
		b.lastSeq[item.Source] = item.Sequence
		out = append(out, *item)
	}
	return out
}

// Gaps reports the total number of detected sequence-number gaps across
// all peers so far, for diagnostics/metrics.
func (b *Broadcaster[T]) Gaps() uint64 { return b.gaps }
