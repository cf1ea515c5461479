// Package socksneg is the negotiation engine: the incremental parser for
// proxy replies (pkg/socks4, pkg/socks5), the client-side state machine that
// sequences greeting -> auth -> CONNECT -> relay, the closed error taxonomy,
// and the endpoint/handoff abstraction that splices a connected proxy
// transport into a pass-through connection once negotiation succeeds.
package socksneg

import (
	"context"
	"fmt"
	"net"

	"github.com/coregrid/socksneg/pkg/log"
)

// Endpoint is something that, given an InnerFactory, yields a connected
// net.Conn (§1 GLOSSARY: "an object that, given a factory, yields a promise
// of a connected protocol" — made synchronous here since a Session runs on
// one goroutine until handoff, §5). Socks5Endpoint and Socks4Endpoint both
// wrap an inner Endpoint that supplies the raw proxy transport; pkg/transport
// provides the innermost link in that chain (a TCP/WS/KCP dial).
type Endpoint interface {
	Connect(ctx context.Context, inner InnerFactory) (net.Conn, error)
}

// InnerFactory builds the caller's protocol connection once the proxy
// transport is established. It receives the established proxy transport and
// the target's peer address, and may hand it back unchanged (plain
// pass-through) or wrapped (e.g. TLS started on top of it, §4.6). Returning
// a nil Conn and nil error cancels the Session and aborts the proxy
// transport (§4.3 "If the inner factory returns no protocol...").
type InnerFactory func(conn net.Conn, peer net.Addr) (net.Conn, error)

// PassThrough is the default InnerFactory: it hands back the proxy transport
// completely unchanged.
func PassThrough(conn net.Conn, _ net.Addr) (net.Conn, error) {
	return conn, nil
}

// targetAddr is a minimal net.Addr for a SOCKS target that may be a domain
// name rather than a resolvable IP (client-side DNS resolution is out of
// scope, §1 Non-goals: "names are forwarded verbatim to the proxy").
type targetAddr struct {
	host string
	port uint16
}

func (a targetAddr) Network() string { return "tcp" }
func (a targetAddr) String() string  { return fmt.Sprintf("%s:%d", a.host, a.port) }

// handoffConn is the net.Conn handed to the caller after Established (§3
// Session lifecycle). Its Read drains whatever bytes the negotiation's
// bufio.Reader had already buffered off the wire before falling through to
// raw reads on the underlying connection — this is what makes trailing bytes
// delivered in the same packet as the final reply survive the handoff
// (§4.1, §8 property 2) without any special-case buffering logic: bufio.Reader
// already does the right thing once negotiation stops consuming from it.
type handoffConn struct {
	net.Conn
	bufferedRead func([]byte) (int, error)
}

func (h handoffConn) Read(p []byte) (int, error) { return h.bufferedRead(p) }

// finishNegotiation runs the post-Established part of §4.3's handoff
// contract shared by SOCKS4 and SOCKS5: wrap the connection so buffered
// bytes survive, call the caller's InnerFactory, and translate a
// (nil, nil) result into cancellation.
func finishNegotiation(conn net.Conn, peer net.Addr, bufferedRead func([]byte) (int, error), inner InnerFactory) (net.Conn, error) {
	hc := handoffConn{Conn: conn, bufferedRead: bufferedRead}

	out, err := inner(hc, peer)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if out == nil {
		conn.Close()
		return nil, ErrCancelled
	}
	return out, nil
}

// Socks5Endpoint negotiates a SOCKS5 CONNECT to (Host, Port) over whatever
// transport Proxy supplies (§4.5). Methods must be non-empty; use
// DefaultSocks5Methods() for the "anonymous only" default the spec mandates.
type Socks5Endpoint struct {
	Host    string
	Port    uint16
	Proxy   Endpoint
	Methods Methods
	Log     *log.Logger
}

// DefaultSocks5Methods is the SOCKS5 default auth config: anonymous only (§4.5).
func DefaultSocks5Methods() Methods { return Methods{AnonymousMethod{}} }

// Connect implements Endpoint. It fails synchronously with ErrInvalidArgument
// if Methods is empty (§4.5), without ever touching the proxy transport.
func (e *Socks5Endpoint) Connect(ctx context.Context, inner InnerFactory) (net.Conn, error) {
	if len(e.Methods) == 0 {
		return nil, fmt.Errorf("%w: SOCKS5 endpoint configured with zero auth methods", ErrInvalidArgument)
	}

	peer := targetAddr{host: e.Host, port: e.Port}
	return e.Proxy.Connect(ctx, func(conn net.Conn, _ net.Addr) (net.Conn, error) {
		r, err := negotiateSocks5(ctx, conn, e.Host, e.Port, e.Methods, e.Log)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return finishNegotiation(conn, peer, r.Read, inner)
	})
}

// Socks4Endpoint negotiates a SOCKS4/4a CONNECT to (Host, Port) over
// whatever transport Proxy supplies (§4.5). User is the ident string sent to
// the proxy; it may be empty.
type Socks4Endpoint struct {
	Host  string
	Port  uint16
	Proxy Endpoint
	User  string
	Log   *log.Logger
}

// Connect implements Endpoint.
func (e *Socks4Endpoint) Connect(ctx context.Context, inner InnerFactory) (net.Conn, error) {
	peer := targetAddr{host: e.Host, port: e.Port}
	return e.Proxy.Connect(ctx, func(conn net.Conn, _ net.Addr) (net.Conn, error) {
		r, err := negotiateSocks4(ctx, conn, e.Host, e.Port, e.User, e.Log)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return finishNegotiation(conn, peer, r.Read, inner)
	})
}
