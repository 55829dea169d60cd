package allocator

import (
	"sync"

	"github.com/flowmesh/xdf/channel"
)

// threadRecycleLimit bounds the double-ended recycling queue every
// Thread-kind channel allocation gets (spec §9, original_source's
// communication/src/allocator/thread.rs).
const threadRecycleLimit = 64

// processChannelSet is the lazily-created queue set backing one channel
// identifier shared by every worker thread in a process (spec §4.3
// "process (many threads, no serialization)"). pushers/pullers are
// stored as `any` because Go forbids a generic field of a type unknown
// at ProcessFabric's own definition; AllocateChannel's type parameter
// recovers the concrete type at each call site, which is safe because a
// channel identifier is always allocated with the same T throughout a
// run.
type processChannelSet struct {
	pushers any
	pullers any
}

// ProcessFabric holds the channel queue sets for every channel a
// process's worker threads have allocated so far, so sibling threads
// allocating the same channel identifier end up wired to the same
// queues.
type ProcessFabric struct {
	mu    sync.Mutex
	sets  map[uint64]*processChannelSet
	peers int // threads in this process
}

func newProcessFabric(peers int) *ProcessFabric {
	return &ProcessFabric{sets: make(map[uint64]*processChannelSet), peers: peers}
}

func getOrCreateProcessSet[T any](f *ProcessFabric, id uint64) ([]*channel.ProcessPusher[T], []*channel.ProcessPuller[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sets[id]; ok {
		return s.pushers.([]*channel.ProcessPusher[T]), s.pullers.([]*channel.ProcessPuller[T])
	}
	pushers, pullers := channel.NewProcessChannels[T](f.peers)
	f.sets[id] = &processChannelSet{pushers: pushers, pullers: pullers}
	return pushers, pullers
}

// fallbackPuller tries a first, then b — used to fold a worker's local
// (same-process) queue and its zero-copy inbound queue into the single
// puller spec §4.3 promises per channel ("one puller for local
// receives").
type fallbackPuller[T any] struct {
	a, b channel.Pull[T]
}

func (f *fallbackPuller[T]) Pull() (*T, bool) {
	if item, ok := f.a.Pull(); ok {
		return item, ok
	}
	return f.b.Pull()
}

var _ channel.Pull[int] = (*fallbackPuller[int])(nil)

// AllocateChannel is the generic form of spec §4.3's allocator trait
// method ("given a channel identifier, returns one pusher per peer, one
// puller for local receives"). Go disallows generic methods, so this is
// a free function taking the (non-generic) Allocator; codec is only
// consulted for ZeroCopy allocators and may be nil otherwise. The
// returned pushers and puller are not wrapped in channel counters, so
// they emit no events into the allocator's EventQueue.
func AllocateChannel[T any](a *Allocator, id uint64, codec channel.Codec[T]) ([]channel.Push[T], channel.Pull[T]) {
	switch a.kind {
	case Thread:
		pusher, puller := channel.NewThreadChannel[T](threadRecycleLimit)
		return []channel.Push[T]{pusher}, puller
	case Process:
		return allocateProcess[T](a, id)
	case ZeroCopy:
		return allocateZeroCopy[T](a, id, codec)
	default:
		panic("allocator: unknown kind")
	}
}

func allocateProcess[T any](a *Allocator, id uint64) ([]channel.Push[T], channel.Pull[T]) {
	rawPushers, rawPullers := getOrCreateProcessSet[T](a.processFabric, id)
	pushers := make([]channel.Push[T], len(rawPushers))
	for i, p := range rawPushers {
		pushers[i] = p
	}
	return pushers, rawPullers[a.localIndex]
}

func allocateZeroCopy[T any](a *Allocator, id uint64, codec channel.Codec[T]) ([]channel.Push[T], channel.Pull[T]) {
	if a.zc.compression {
		codec = channel.NewCompressedCodec[T](codec)
	}
	localPushers, localPullers := getOrCreateProcessSet[T](a.processFabric, id)

	remotePuller := channel.NewZeroCopyPuller[T](codec)
	a.zc.registerPuller(id, remotePuller)

	pushers := make([]channel.Push[T], a.peers)
	for peer := 0; peer < a.peers; peer++ {
		proc := peer / a.zc.threadsPerProcess
		if proc == a.zc.process {
			localIdx := peer - proc*a.zc.threadsPerProcess
			pushers[peer] = localPushers[localIdx]
			continue
		}
		pushers[peer] = channel.NewZeroCopyPusher[T](codec, a.zc.outboxFor(peer), id, uint64(a.index), uint64(peer))
	}

	puller := &fallbackPuller[T]{a: localPullers[a.localIndex], b: remotePuller}
	return pushers, puller
}
