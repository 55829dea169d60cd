//go:build linux

package wire

import (
	"net"

	"golang.org/x/sys/unix"
)

// tunePlatform enables TCP_QUICKACK on Linux: a delayed-ack override the
// standard library's net package never exposes, reducing latency spikes
// on the inter-process fabric's small, bursty frames (spec §4.1).
func tunePlatform(tcp *net.TCPConn) error {
	raw, err := tcp.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}
