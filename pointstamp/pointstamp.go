// Package pointstamp defines the location and pointstamp types the
// reachability engine and per-operator progress wrapper share (spec §3).
package pointstamp

import "fmt"

// Location names an operator's port: either one of its outputs (as a
// Source) or one of its inputs (as a Target).
type Location struct {
	Operator int
	Port     int
}

func (l Location) String() string { return fmt.Sprintf("op%d.port%d", l.Operator, l.Port) }

// Source names an operator output.
type Source struct{ Location }

// Target names an operator input.
type Target struct{ Location }

// Edge is a directed connection from an operator output to an operator
// input.
type Edge struct {
	From Source
	To   Target
}

// Pointstamp is a signed count associated with a (location, timestamp):
// either outstanding messages at a Target or held capabilities at a
// Source (spec §3 "Pointstamp").
type Pointstamp[T any] struct {
	Loc   Location
	Time  T
	Count int64
}
