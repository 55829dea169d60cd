package allocator

import (
	"hash/fnv"
	"net"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/flowmesh/xdf/config"
	"github.com/flowmesh/xdf/logging"
	"github.com/flowmesh/xdf/wire"
	"github.com/flowmesh/xdf/xbytes"
)

// Builder is the process-wide allocation fabric, constructed once before
// any worker thread starts (spec §4.3 "for N processes × W threads per
// process, allocator builders are constructed before threads are
// spawned"). Each worker thread then calls ForWorker to get its own
// Allocator sharing this process's wiring.
type Builder struct {
	cfg   config.ProcessConfig
	kind  Kind
	peers int

	processFabric *ProcessFabric
	zc            *zeroCopyFabric
}

// deriveNonce computes the shared handshake secret every process
// derives independently from the cluster config, rather than having one
// process generate it and disseminate it over the network — every
// process already holds the same ProcessConfig (spec §6's "Process
// configuration"), so there is nothing left to discover.
func deriveNonce(cfg config.ProcessConfig) uint64 {
	h := fnv.New64a()
	for i := 0; i < cfg.Processes; i++ {
		h.Write([]byte(cfg.Address(i)))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Build validates cfg and, if more than one process is configured,
// establishes this process's TCP fabric: dialing every lower-index peer
// and accepting from every higher-index peer (spec §4.3), performing the
// handshake (spec §6) on each connection, and starting a reader and
// sender goroutine per peer. The dial/accept/handshake work for all
// peers runs concurrently under one errgroup.Group and Build blocks
// until every connection is up — this synchronous join is the startup
// barrier (spec.md's supplemented synchronous-barrier feature) gating
// worker threads from starting before the fabric is ready.
func Build(cfg config.ProcessConfig) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	peers := cfg.Threads * cfg.Processes
	b := &Builder{cfg: cfg, peers: peers}

	if peers == 1 {
		b.kind = Thread
		return b, nil
	}
	b.processFabric = newProcessFabric(cfg.Threads)
	if cfg.Processes == 1 {
		b.kind = Process
		return b, nil
	}

	b.kind = ZeroCopy
	zc, err := buildZeroCopyFabric(cfg)
	if err != nil {
		return nil, err
	}
	b.zc = zc
	return b, nil
}

func buildZeroCopyFabric(cfg config.ProcessConfig) (*zeroCopyFabric, error) {
	nonce := deriveNonce(cfg)
	fabric := &zeroCopyFabric{
		process:           cfg.ThisProcess,
		processes:         cfg.Processes,
		threadsPerProcess: cfg.Threads,
		compression:       cfg.Compression,
		outboxes:          make([]chan wire.Outbound, cfg.Processes),
		inbox:             make(chan inboundFrame, 4096),
		pullers:           make(map[uint64]routable),
	}

	conns := make([]net.Conn, cfg.Processes)
	var mu sync.Mutex
	var g errgroup.Group

	higherCount := cfg.Processes - cfg.ThisProcess - 1
	if higherCount > 0 {
		ln, err := net.Listen("tcp", cfg.Address(cfg.ThisProcess))
		if err != nil {
			return nil, errors.Wrapf(err, "allocator: listen on %s", cfg.Address(cfg.ThisProcess))
		}
		g.Go(func() error {
			defer ln.Close()
			for i := 0; i < higherCount; i++ {
				conn, err := ln.Accept()
				if err != nil {
					return errors.Wrap(err, "allocator: accept")
				}
				if err := wire.TuneTCP(conn); err != nil {
					conn.Close()
					return errors.Wrap(err, "allocator: tune accepted connection")
				}
				peerIdx, err := wire.AcceptHandshake(conn, nonce)
				if err != nil {
					conn.Close()
					return errors.Wrap(err, "allocator: handshake with dialing peer")
				}
				mu.Lock()
				conns[peerIdx] = conn
				mu.Unlock()
			}
			return nil
		})
	}

	for j := 0; j < cfg.ThisProcess; j++ {
		j := j
		g.Go(func() error {
			conn, err := net.Dial("tcp", cfg.Address(j))
			if err != nil {
				return errors.Wrapf(err, "allocator: dial peer %d at %s", j, cfg.Address(j))
			}
			if err := wire.TuneTCP(conn); err != nil {
				conn.Close()
				return errors.Wrapf(err, "allocator: tune connection to peer %d", j)
			}
			if err := wire.DialHandshake(conn, uint64(cfg.ThisProcess), nonce); err != nil {
				conn.Close()
				return errors.Wrapf(err, "allocator: handshake with peer %d", j)
			}
			mu.Lock()
			conns[j] = conn
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for peer, conn := range conns {
		if conn == nil {
			continue // peer == cfg.ThisProcess
		}
		peer, conn := peer, conn
		out := make(chan wire.Outbound, 256)
		fabric.outboxes[peer] = out

		go func() {
			slab := xbytes.NewBytesSlab(newStandalonePool())
			if err := wire.ReceiveLoop(conn, slab, fabric.route); err != nil {
				logging.Errorf("allocator: receive loop from peer %d: %v", peer, err)
			}
		}()
		go func() {
			if err := wire.SendLoop(conn, out); err != nil {
				logging.Errorf("allocator: send loop to peer %d: %v", peer, err)
			}
		}()
	}

	return fabric, nil
}

// newStandalonePool returns a slab Pool private to one connection's
// receive buffer — each peer connection grows and shrinks its own slab
// independently, so there's no cross-connection sharing to stash
// reclaimed buffers for.
func newStandalonePool() *xbytes.Pool { return xbytes.NewPool() }

// ForWorker returns the Allocator for worker thread index `thread`
// (0-based within this process), sharing this Builder's process and
// zero-copy fabrics (spec §4.3 "each worker then turns its builder into
// an allocator locally").
func (b *Builder) ForWorker(thread int) *Allocator {
	return &Allocator{
		kind:          b.kind,
		index:         b.cfg.ThisProcess*b.cfg.Threads + thread,
		peers:         b.peers,
		events:        newEventQueue(),
		processFabric: b.processFabric,
		localIndex:    thread,
		zc:            b.zc,
	}
}
