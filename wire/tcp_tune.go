package wire

import (
	"net"
	"time"
)

const tcpKeepAlivePeriod = 30 * time.Second

// TuneTCP applies the socket-level tuning spec §4.1/§6 call for on a
// freshly dialed or accepted inter-process connection: disable Nagle's
// algorithm and enable a short TCP keepalive via the standard library,
// then layer on whatever additional platform-specific tuning
// tunePlatform provides (see tcp_tune_linux.go). conn that isn't a
// *net.TCPConn (e.g. a test net.Pipe) is left untouched.
func TuneTCP(conn net.Conn) error {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tcp.SetNoDelay(true); err != nil {
		return err
	}
	if err := tcp.SetKeepAlive(true); err != nil {
		return err
	}
	if err := tcp.SetKeepAlivePeriod(tcpKeepAlivePeriod); err != nil {
		return err
	}
	return tunePlatform(tcp)
}
