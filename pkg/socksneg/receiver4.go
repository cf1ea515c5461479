package socksneg

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/coregrid/socksneg/pkg/log"
	"github.com/coregrid/socksneg/pkg/socks4"
)

// negotiateSocks4 drives the SOCKS4/SOCKS4a flow of §4.3: a single CONNECT
// request/response exchange, no method negotiation. Like negotiateSocks5,
// it returns the bufio.Reader used so trailing bytes survive the handoff.
func negotiateSocks4(ctx context.Context, conn net.Conn, host string, port uint16, user string, lg *log.Logger) (*bufio.Reader, error) {
	cr, stopWatch := cancellableRead(ctx, conn)
	defer stopWatch()
	r := bufio.NewReader(cr)

	req, err := socks4.AppendConnect(nil, host, port, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	if _, err := conn.Write(req); err != nil {
		return nil, classifyIOErr(ctx, err)
	}
	lg.VerboseMsg("socks4: sent CONNECT to %s:%d\n", host, port)

	resp, err := socks4.ReadResponse(r)
	if err != nil {
		return nil, classifyIOErr(ctx, err)
	}

	if resp.Status != socks4.StatusGranted {
		return nil, mapSocks4Status(resp.Status)
	}
	lg.VerboseMsg("socks4: CONNECT granted, bound address %s:%d\n", resp.Addr, resp.Port)

	return r, nil
}
