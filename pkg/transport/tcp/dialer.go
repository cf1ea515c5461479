// Package tcp provides TCP transport implementations.
// It implements the transport.Dialer interface for TCP network connections.
package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DialerFunc dials a TCP connection using the provided context; it exists so
// tests can substitute a fake dialer without a real socket.
type DialerFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Dialer implements transport.Dialer for plain TCP connections.
type Dialer struct {
	addr   string
	dialFn DialerFunc
}

// NewDialer creates a new TCP dialer for the specified address. dialFn may
// be nil to use net.Dialer.DialContext with keep-alive enabled.
func NewDialer(addr string, dialFn DialerFunc) (*Dialer, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("net.SplitHostPort(%s): %s", addr, err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, fmt.Errorf("parsing port %q of %s: %s", port, addr, err)
	}

	if dialFn == nil {
		d := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
		dialFn = d.DialContext
	}

	return &Dialer{addr: addr, dialFn: dialFn}, nil
}

// Dial establishes a TCP connection to the configured address.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	conn, err := d.dialFn(ctx, "tcp", d.addr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %s", d.addr, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
	}
	return conn, nil
}
