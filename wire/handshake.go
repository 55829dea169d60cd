// Package wire implements the framed inter-process transport (spec §4.1,
// §6): the startup handshake, and the per-peer receiver/sender loops
// that carry MessageHeader-prefixed frames over a reliable byte stream.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic is the fixed handshake preamble both peers must agree on
// (spec §6).
const Magic uint64 = 0xc2f1fb770118add9

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// DialHandshake runs the initiator side of the handshake (spec §6:
// "lower-index initiates"): writes the magic and workerIndex, reads back
// the peer's claimed shared nonce, and echoes it. It additionally
// verifies the returned nonce against expectedNonce before echoing,
// failing fast instead of relying solely on the responder's check.
func DialHandshake(rw io.ReadWriter, workerIndex, expectedNonce uint64) error {
	if err := writeU64(rw, Magic); err != nil {
		return errors.Wrap(err, "handshake: write magic")
	}
	if err := writeU64(rw, workerIndex); err != nil {
		return errors.Wrap(err, "handshake: write worker index")
	}
	nonce, err := readU64(rw)
	if err != nil {
		return errors.Wrap(err, "handshake: read nonce")
	}
	if nonce != expectedNonce {
		return errors.Errorf("handshake: nonce mismatch: got %x, want %x", nonce, expectedNonce)
	}
	if err := writeU64(rw, nonce); err != nil {
		return errors.Wrap(err, "handshake: echo nonce")
	}
	return nil
}

// AcceptHandshake runs the responder side: reads and checks the magic,
// reads the peer's worker index, writes the shared nonce, then reads and
// verifies the echoed nonce. Any mismatch is a fatal configuration error
// (spec §7).
func AcceptHandshake(rw io.ReadWriter, sharedNonce uint64) (peerWorkerIndex uint64, err error) {
	magic, err := readU64(rw)
	if err != nil {
		return 0, errors.Wrap(err, "handshake: read magic")
	}
	if magic != Magic {
		return 0, errors.Errorf("handshake: bad magic: got %x, want %x", magic, Magic)
	}
	peerWorkerIndex, err = readU64(rw)
	if err != nil {
		return 0, errors.Wrap(err, "handshake: read worker index")
	}
	if err := writeU64(rw, sharedNonce); err != nil {
		return 0, errors.Wrap(err, "handshake: write nonce")
	}
	echoed, err := readU64(rw)
	if err != nil {
		return 0, errors.Wrap(err, "handshake: read echoed nonce")
	}
	if echoed != sharedNonce {
		return 0, errors.Errorf("handshake: echoed nonce mismatch: got %x, want %x", echoed, sharedNonce)
	}
	return peerWorkerIndex, nil
}
