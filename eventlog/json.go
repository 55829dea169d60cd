package eventlog

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// jsonRecord mirrors Record with tags, kept separate so Record itself
// carries no encoding-specific struct tags (it is also msgpack-encoded,
// field by field, in msgp.go).
type jsonRecord struct {
	TimestampNanos int64  `json:"ts"`
	Setup          []int  `json:"setup"`
	Kind           string `json:"kind"`
	Phase          string `json:"phase,omitempty"`
	Operator       int    `json:"operator,omitempty"`
	Channel        int    `json:"channel,omitempty"`
	Source         int    `json:"source,omitempty"`
	Target         int    `json:"target,omitempty"`
	Seqno          uint64 `json:"seqno,omitempty"`
	IsSend         bool   `json:"is_send,omitempty"`
	BatchScope     uint64 `json:"batch_scope,omitempty"`
	BatchSource    int    `json:"batch_source,omitempty"`
	BatchSequence  uint64 `json:"batch_sequence,omitempty"`
	BatchEntries   int    `json:"batch_entries,omitempty"`
	Reachability   int    `json:"reachability_deltas,omitempty"`
}

func (p Phase) jsonString() string {
	if p == PhaseStart {
		return "start"
	}
	return "end"
}

// JSONSink writes each Record as one newline-delimited JSON object to w,
// via jsoniter (the teacher's drop-in `encoding/json` replacement, also
// used by xdf/config).
type JSONSink struct {
	w      io.Writer
	stream *jsoniter.Stream
}

// NewJSONSink wraps w in a buffered jsoniter stream.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, stream: jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(w)}
}

// Write encodes r as one line of JSON and flushes it.
func (s *JSONSink) Write(r Record) error {
	jr := jsonRecord{
		TimestampNanos: r.TimestampNanos,
		Setup:          r.Setup,
		Kind:           r.Kind.String(),
		Operator:       r.Operator,
		Channel:        r.Channel,
		Source:         r.Source,
		Target:         r.Target,
		Seqno:          r.Seqno,
		IsSend:         r.IsSend,
		BatchScope:     r.BatchScope,
		BatchSource:    r.BatchSource,
		BatchSequence:  r.BatchSequence,
		BatchEntries:   r.BatchEntries,
		Reachability:   r.ReachabilityDeltas,
	}
	if r.Kind == KindSchedule || r.Kind == KindGuardedMessage {
		jr.Phase = r.Phase.jsonString()
	}

	s.stream.WriteVal(jr)
	s.stream.WriteRaw("\n")
	if err := s.stream.Flush(); err != nil {
		return err
	}
	if s.stream.Error != nil {
		return s.stream.Error
	}
	return nil
}

var _ Sink = (*JSONSink)(nil)
