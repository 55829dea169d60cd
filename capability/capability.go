// Package capability implements the Capability<T> handle from spec §3: a
// proof of the right to emit at time T on an output port, whose lifecycle
// is accumulated into the owning operator's per-step "internal"
// ChangeBatch (spec §4.7).
package capability

import (
	"github.com/flowmesh/xdf/internal/assert"
	"github.com/flowmesh/xdf/order"
)

// Sink receives capability-count deltas as they happen: +1 when a
// capability is created (by Mint or Delayed), -1 when one is dropped.
// No type in this module implements Sink (operator.Wrapped does not);
// the caller of Mint supplies the implementation.
type Sink[T any] interface {
	RecordInternal(port int, t T, delta int64)
}

// Capability is a handle proving the right to emit messages at Time() on
// Port(). The invariant (spec §3): for each (output, T), the number of
// outstanding capabilities equals the entry recorded in the owning
// operator's internal ChangeBatch.
type Capability[T order.Timestamp[T]] struct {
	port    int
	time    T
	sink    Sink[T]
	dropped bool
}

// Mint creates a new capability at t on port, recording +1 in sink. Used
// by get_internal_summary's initial capabilities and by Delayed/Clone.
func Mint[T order.Timestamp[T]](port int, t T, sink Sink[T]) *Capability[T] {
	sink.RecordInternal(port, t, 1)
	return &Capability[T]{port: port, time: t, sink: sink}
}

// Port returns the output port this capability authorizes emission on.
func (c *Capability[T]) Port() int { return c.port }

// Time returns the timestamp this capability authorizes emission at.
func (c *Capability[T]) Time() T { return c.time }

// Drop releases the capability, recording -1 in the sink. Dropping twice
// is a capability violation (spec §7) and panics via the debug assertion
// in builds compiled with the xdf_debug tag; in other builds it is a
// silent no-op, matching "defensive implementations may assert and
// abort" without taking down a production worker over a bookkeeping bug.
func (c *Capability[T]) Drop() {
	assert.Assert(!c.dropped, "capability on port %d dropped twice", c.port)
	if c.dropped {
		return
	}
	c.dropped = true
	c.sink.RecordInternal(c.port, c.time, -1)
}

// Clone mints a second capability at the same time, incrementing the
// outstanding count.
func (c *Capability[T]) Clone() *Capability[T] {
	return Mint(c.port, c.time, c.sink)
}

// Delayed drops c and mints a new capability at newTime, which must be
// reachable from c.Time() via some summary — i.e. newTime must not
// precede c.Time() (spec §9 "Capabilities... downgrade rather than only
// drop outright", a feature present in the original Rust crate's
// Capability::delayed and folded into this port per SPEC_FULL.md §7.5).
// Reports ok=false (and does not mutate c) if newTime precedes c.Time().
func (c *Capability[T]) Delayed(newTime T) (*Capability[T], bool) {
	if !c.time.LessEqual(newTime) {
		return nil, false
	}
	next := Mint(c.port, newTime, c.sink)
	c.Drop()
	return next, true
}
