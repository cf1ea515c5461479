package socksneg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/coregrid/socksneg/pkg/log"
	"github.com/coregrid/socksneg/pkg/socks5"
)

// negotiateSocks5 drives the SOCKS5 flow of §4.3's state table to
// completion: greeting -> method dispatch -> (optional auth) -> CONNECT ->
// Established. It returns the bufio.Reader the negotiation read through, so
// the caller can hand it off for pass-through without losing any bytes that
// arrived in the same packet as the final reply (§4.1, §8 property 2).
func negotiateSocks5(ctx context.Context, conn net.Conn, host string, port uint16, methods Methods, lg *log.Logger) (*bufio.Reader, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: SOCKS5 requires at least one auth method", ErrInvalidArgument)
	}

	methodBytes := make([]socks5.Method, len(methods))
	byMethod := make(map[socks5.Method]AuthMethod, len(methods))
	offered := make([]byte, len(methods))
	for i, m := range methods {
		methodBytes[i] = m.Byte()
		byMethod[m.Byte()] = m
		offered[i] = byte(m.Byte())
	}

	cr, stopWatch := cancellableRead(ctx, conn)
	defer stopWatch()
	r := bufio.NewReader(cr)

	greeting, err := socks5.AppendAuthMethods(nil, methodBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	if _, err := conn.Write(greeting); err != nil {
		return nil, classifyIOErr(ctx, err)
	}
	lg.VerboseMsg("socks5: sent greeting offering %d method(s)\n", len(methods))

	sel, err := socks5.ReadAuthSelection(r)
	if err != nil {
		return nil, classifyIOErr(ctx, err)
	}

	method, ok := byMethod[sel.Method]
	if !ok || sel.Method == socks5.MethodNoAcceptable {
		return nil, &MethodsNotAcceptedError{Selected: byte(sel.Method), Offered: offered}
	}
	lg.VerboseMsg("socks5: server selected method 0x%02x\n", sel.Method)

	if err := method.Negotiate(readWriter{Reader: r, Writer: conn}); err != nil {
		if err == ErrLoginAuthFailed || errors.Is(err, ErrInvalidArgument) {
			return nil, err
		}
		return nil, classifyIOErr(ctx, err)
	}

	connectReq, err := socks5.AppendConnect(nil, host, port)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	if _, err := conn.Write(connectReq); err != nil {
		return nil, classifyIOErr(ctx, err)
	}
	lg.VerboseMsg("socks5: sent CONNECT to %s:%d\n", host, port)

	resp, err := socks5.ReadConnectResponse(r)
	if err != nil {
		return nil, classifyIOErr(ctx, err)
	}

	if resp.Reply != socks5.ReplySucceeded {
		return nil, mapSocks5Reply(resp.Reply)
	}
	lg.VerboseMsg("socks5: CONNECT succeeded, bound address %s:%d\n", resp.BndAddr, resp.BndPort)

	return r, nil
}
