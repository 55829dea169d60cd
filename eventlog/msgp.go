package eventlog

import (
	"io"

	"github.com/tinylib/msgp/msgp"
)

// MarshalMsg appends r's msgpack encoding to b, hand-written in the same
// map-of-fields shape `msgp generate` produces for a flat struct (codegen
// isn't run in this build, so the encode/decode pair is written directly
// against the msgp.Append*/ReadXBytes primitives those generated methods
// call into).
func (r *Record) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendMapHeader(b, 15)
	o = msgp.AppendString(o, "ts")
	o = msgp.AppendInt64(o, r.TimestampNanos)
	o = msgp.AppendString(o, "setup")
	o = msgp.AppendArrayHeader(o, uint32(len(r.Setup)))
	for _, p := range r.Setup {
		o = msgp.AppendInt(o, p)
	}
	o = msgp.AppendString(o, "kind")
	o = msgp.AppendInt(o, int(r.Kind))
	o = msgp.AppendString(o, "phase")
	o = msgp.AppendInt(o, int(r.Phase))
	o = msgp.AppendString(o, "operator")
	o = msgp.AppendInt(o, r.Operator)
	o = msgp.AppendString(o, "channel")
	o = msgp.AppendInt(o, r.Channel)
	o = msgp.AppendString(o, "source")
	o = msgp.AppendInt(o, r.Source)
	o = msgp.AppendString(o, "target")
	o = msgp.AppendInt(o, r.Target)
	o = msgp.AppendString(o, "seqno")
	o = msgp.AppendUint64(o, r.Seqno)
	o = msgp.AppendString(o, "is_send")
	o = msgp.AppendBool(o, r.IsSend)
	o = msgp.AppendString(o, "batch_scope")
	o = msgp.AppendUint64(o, r.BatchScope)
	o = msgp.AppendString(o, "batch_source")
	o = msgp.AppendInt(o, r.BatchSource)
	o = msgp.AppendString(o, "batch_sequence")
	o = msgp.AppendUint64(o, r.BatchSequence)
	o = msgp.AppendString(o, "batch_entries")
	o = msgp.AppendInt(o, r.BatchEntries)
	o = msgp.AppendString(o, "reachability_deltas")
	o = msgp.AppendInt(o, r.ReachabilityDeltas)
	return o, nil
}

// UnmarshalMsg decodes bts into r, returning the unconsumed remainder.
func (r *Record) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	for i := uint32(0); i < sz; i++ {
		var field string
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, err
		}
		switch field {
		case "ts":
			r.TimestampNanos, bts, err = msgp.ReadInt64Bytes(bts)
		case "setup":
			var n uint32
			n, bts, err = msgp.ReadArrayHeaderBytes(bts)
			if err != nil {
				break
			}
			r.Setup = make([]int, n)
			for j := uint32(0); j < n; j++ {
				r.Setup[j], bts, err = msgp.ReadIntBytes(bts)
				if err != nil {
					break
				}
			}
		case "kind":
			var k int
			k, bts, err = msgp.ReadIntBytes(bts)
			r.Kind = Kind(k)
		case "phase":
			var p int
			p, bts, err = msgp.ReadIntBytes(bts)
			r.Phase = Phase(p)
		case "operator":
			r.Operator, bts, err = msgp.ReadIntBytes(bts)
		case "channel":
			r.Channel, bts, err = msgp.ReadIntBytes(bts)
		case "source":
			r.Source, bts, err = msgp.ReadIntBytes(bts)
		case "target":
			r.Target, bts, err = msgp.ReadIntBytes(bts)
		case "seqno":
			r.Seqno, bts, err = msgp.ReadUint64Bytes(bts)
		case "is_send":
			r.IsSend, bts, err = msgp.ReadBoolBytes(bts)
		case "batch_scope":
			r.BatchScope, bts, err = msgp.ReadUint64Bytes(bts)
		case "batch_source":
			r.BatchSource, bts, err = msgp.ReadIntBytes(bts)
		case "batch_sequence":
			r.BatchSequence, bts, err = msgp.ReadUint64Bytes(bts)
		case "batch_entries":
			r.BatchEntries, bts, err = msgp.ReadIntBytes(bts)
		case "reachability_deltas":
			r.ReachabilityDeltas, bts, err = msgp.ReadIntBytes(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return bts, err
		}
	}
	return bts, nil
}

var (
	_ msgp.Marshaler   = (*Record)(nil)
	_ msgp.Unmarshaler = (*Record)(nil)
)

// MsgpSink writes each Record as a self-delimiting msgpack map to w
// (spec §6: serialization format is unspecified; msgpack via the
// teacher's `tinylib/msgp` dependency is the chosen binary encoding). A
// msgpack map value is self-delimiting, so consecutive records need no
// extra length framing to be read back one at a time.
type MsgpSink struct {
	w   io.Writer
	buf []byte
}

// NewMsgpSink wraps w, appending each Record's encoding directly.
func NewMsgpSink(w io.Writer) *MsgpSink { return &MsgpSink{w: w} }

// Write encodes r and writes it to the underlying writer.
func (s *MsgpSink) Write(r Record) error {
	var err error
	s.buf, err = r.MarshalMsg(s.buf[:0])
	if err != nil {
		return err
	}
	_, err = s.w.Write(s.buf)
	return err
}

var _ Sink = (*MsgpSink)(nil)
