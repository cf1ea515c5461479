package socksneg

import (
	"context"
	"fmt"
	"net"

	"github.com/coregrid/socksneg/pkg/transport"
)

// DialerEndpoint is the innermost Endpoint in a chain: it dials the proxy
// itself over the given transport.Dialer (TCP, WebSocket, or KCP), then
// hands the resulting connection straight to inner with no SOCKS negotiation
// of its own. Socks5Endpoint/Socks4Endpoint wrap a DialerEndpoint (or
// another Endpoint, for proxy chaining) to add negotiation on top.
type DialerEndpoint struct {
	Dialer transport.Dialer
	Peer   net.Addr
}

// Connect implements Endpoint.
func (e *DialerEndpoint) Connect(ctx context.Context, inner InnerFactory) (net.Conn, error) {
	conn, err := e.Dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("dial proxy: %w", err)
	}

	out, err := inner(conn, e.Peer)
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
