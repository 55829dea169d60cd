package channel

import (
	"bytes"
	"testing"
)

type stringCodec struct{}

func (stringCodec) Encode(m string) []byte { return []byte(m) }
func (stringCodec) Decode(data []byte) string {
	return string(data)
}

func TestCompressedCodecRoundTrips(t *testing.T) {
	codec := NewCompressedCodec[string](stringCodec{})

	cases := []string{
		"",
		"short",
		string(bytes.Repeat([]byte("abababababababababababababab"), 100)),
	}
	for _, want := range cases {
		encoded := codec.Encode(want)
		got := codec.Decode(encoded)
		if got != want {
			t.Fatalf("round trip mismatch: got %q, want %q", got, want)
		}
	}
}

func TestCompressedCodecShrinksRepetitiveInput(t *testing.T) {
	codec := NewCompressedCodec[string](stringCodec{})
	repetitive := string(bytes.Repeat([]byte("x"), 4096))
	encoded := codec.Encode(repetitive)
	if len(encoded) >= len(repetitive) {
		t.Fatalf("expected compression to shrink a highly repetitive payload, got %d bytes for %d input", len(encoded), len(repetitive))
	}
}

var _ Codec[string] = stringCodec{}
