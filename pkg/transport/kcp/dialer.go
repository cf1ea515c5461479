// Package kcp provides a KCP-over-UDP transport implementation of
// transport.Dialer, for reaching a proxy over lossy or high-latency links
// where a reliable UDP-based transport outperforms plain TCP.
package kcp

import (
	"context"
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// Dialer implements transport.Dialer for a KCP session over UDP.
type Dialer struct {
	remoteAddr *net.UDPAddr
}

// NewDialer creates a new KCP dialer for the specified proxy address.
func NewDialer(addr string) (*Dialer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	return &Dialer{remoteAddr: udpAddr}, nil
}

// Dial establishes a KCP session over UDP to the configured address. The
// context is honored only up to socket creation; once the KCP session is
// built there is no cancellable handshake to interrupt (KCP has none).
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("net.ListenPacket(udp, :0): %w", err)
	}

	kcpConn, err := kcp.NewConn(d.remoteAddr.String(), nil, 0, 0, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("kcp.NewConn(%s): %w", d.remoteAddr.String(), err)
	}

	kcpConn.SetNoDelay(1, 10, 2, 1)
	kcpConn.SetStreamMode(true)
	kcpConn.SetWindowSize(1024, 1024)

	return kcpConn, nil
}
