// Package eventlog implements the optional event stream spec §6
// describes: a sequence of {timestamp, setup, event} records an external
// logging process can consume, where event is one of Schedule,
// GuardedMessage, Communication, Progress, or Reachability.
package eventlog

// Kind discriminates the five event shapes spec §6 names.
type Kind int

const (
	KindSchedule Kind = iota
	KindGuardedMessage
	KindCommunication
	KindProgress
	KindReachability
)

func (k Kind) String() string {
	switch k {
	case KindSchedule:
		return "schedule"
	case KindGuardedMessage:
		return "guarded_message"
	case KindCommunication:
		return "communication"
	case KindProgress:
		return "progress"
	case KindReachability:
		return "reachability"
	default:
		return "unknown"
	}
}

// Phase marks the start/end half of a bracketed event (Schedule and
// GuardedMessage both come in start/end pairs).
type Phase int

const (
	PhaseStart Phase = iota
	PhaseEnd
)

// Record is one event-stream entry: a nanosecond timestamp, the worker
// setup (path) it occurred in, its Kind, and the kind-specific fields.
// Only the fields relevant to Kind are populated; the rest are left at
// their zero value, matching the Rust crate's tagged-enum event but
// flattened into one struct since Go lacks sum types.
type Record struct {
	TimestampNanos int64
	Setup          []int
	Kind           Kind

	// Schedule / GuardedMessage
	Phase    Phase
	Operator int

	// Communication
	Channel int
	Source  int
	Target  int
	Seqno   uint64
	IsSend  bool

	// Progress
	BatchScope    uint64
	BatchSource   int
	BatchSequence uint64
	BatchEntries  int

	// Reachability
	ReachabilityDeltas int
}

// Log hands each Record to a Sink as soon as it is emitted; it keeps no
// Records in memory itself.
type Log struct {
	sink Sink
}

// Sink receives Records one at a time, in emission order.
type Sink interface {
	Write(r Record) error
}

// New returns a Log writing every Record to sink.
func New(sink Sink) *Log { return &Log{sink: sink} }

func (l *Log) emit(r Record) {
	if l == nil || l.sink == nil {
		return
	}
	// Event-stream emission is diagnostic, not part of the progress
	// protocol's correctness; the error a sink returns from Write is
	// discarded here, neither logged nor propagated, matching spec §6's
	// "optional, consumed by external logging".
	_ = l.sink.Write(r)
}

// Schedule records one operator Schedule call's start or end.
func (l *Log) Schedule(setup []int, operator int, phase Phase, nowNanos int64) {
	l.emit(Record{TimestampNanos: nowNanos, Setup: setup, Kind: KindSchedule, Phase: phase, Operator: operator})
}

// GuardedMessage records one PushExternalProgress delivery's start or end.
func (l *Log) GuardedMessage(setup []int, operator int, phase Phase, nowNanos int64) {
	l.emit(Record{TimestampNanos: nowNanos, Setup: setup, Kind: KindGuardedMessage, Phase: phase, Operator: operator})
}

// Communication records one frame send or receive on a channel.
func (l *Log) Communication(setup []int, channel, source, target int, seqno uint64, isSend bool, nowNanos int64) {
	l.emit(Record{
		TimestampNanos: nowNanos, Setup: setup, Kind: KindCommunication,
		Channel: channel, Source: source, Target: target, Seqno: seqno, IsSend: isSend,
	})
}

// Progress records one broadcaster batch send.
func (l *Log) Progress(setup []int, scope uint64, source int, sequence uint64, entries int, nowNanos int64) {
	l.emit(Record{
		TimestampNanos: nowNanos, Setup: setup, Kind: KindProgress,
		BatchScope: scope, BatchSource: source, BatchSequence: sequence, BatchEntries: entries,
	})
}

// Reachability records one tracker PropagateAll pass's delta count.
func (l *Log) Reachability(setup []int, deltas int, nowNanos int64) {
	l.emit(Record{TimestampNanos: nowNanos, Setup: setup, Kind: KindReachability, ReachabilityDeltas: deltas})
}
