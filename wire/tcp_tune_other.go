//go:build !linux

package wire

import "net"

// tunePlatform is a no-op outside Linux: TCP_QUICKACK has no portable
// equivalent, and SetNoDelay/SetKeepAlive in TuneTCP already cover every
// other platform's socket tuning.
func tunePlatform(*net.TCPConn) error { return nil }
