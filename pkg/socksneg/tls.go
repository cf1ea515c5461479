package socksneg

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// TLSStartEndpoint wraps an inner Endpoint and starts TLS on the negotiated
// connection before handing it to the caller's own InnerFactory (§4.6). It
// has no state machine of its own: Connect just composes a TLS handshake
// into the InnerFactory it passes down to Inner, the same shape as the
// teacher's client.upgradeToTLS but expressed as a reusable wrapper instead
// of a one-off step in Client.Connect.
type TLSStartEndpoint struct {
	Inner Endpoint

	// Config is the TLS client configuration to use. A copy is taken per
	// connect and ServerName is filled in from the negotiated peer's host
	// if left empty, so one TLSStartEndpoint can be reused across targets.
	Config *tls.Config

	// HandshakeTimeout bounds the TLS handshake; zero means no deadline.
	HandshakeTimeout time.Duration
}

// Connect implements Endpoint. It negotiates the wrapped proxy CONNECT as
// usual, then performs a TLS handshake on top of the resulting connection
// before calling inner — so inner always receives an already-encrypted
// net.Conn, exactly as if it had dialed the target directly over TLS.
func (e *TLSStartEndpoint) Connect(ctx context.Context, inner InnerFactory) (net.Conn, error) {
	return e.Inner.Connect(ctx, func(conn net.Conn, peer net.Addr) (net.Conn, error) {
		cfg := e.Config.Clone()
		if cfg == nil {
			cfg = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if cfg.ServerName == "" {
			cfg.ServerName = hostOf(peer)
		}

		tlsConn := tls.Client(conn, cfg)

		if e.HandshakeTimeout > 0 {
			_ = tlsConn.SetDeadline(time.Now().Add(e.HandshakeTimeout))
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", peer, err)
		}
		if e.HandshakeTimeout > 0 {
			_ = tlsConn.SetDeadline(time.Time{})
		}

		return inner(tlsConn, peer)
	})
}

// hostOf extracts the hostname portion of a net.Addr produced by this
// package's targetAddr, for use as the TLS ServerName when the caller didn't
// pin one explicitly.
func hostOf(addr net.Addr) string {
	if ta, ok := addr.(targetAddr); ok {
		return ta.host
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
