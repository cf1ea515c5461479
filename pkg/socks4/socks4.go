// Package socks4 implements the client side of the SOCKS4 and SOCKS4a wire
// protocols: a single CONNECT request/response exchange, no method
// negotiation, no authentication sub-protocol. SOCKS4a is SOCKS4 plus a
// hostname-forwarding extension keyed off a reserved IPv4 sentinel range
// (§4.2, §9 "Open question": the spec adopts the status+port+ipv4 response
// shape, not the six-anything-bytes variant some SOCKS4 implementations use).
package socks4

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/coregrid/socksneg/pkg/socksaddr"
)

// Version is the SOCKS4 protocol version byte.
const Version = byte(0x04)

// Cmd is a SOCKS4 request command. Only CmdConnect is ever sent by this
// library; CmdBind exists in the grammar (some servers advertise it) but no
// client-side flow uses it (§9 open question, deliberately CONNECT-only).
type Cmd byte

const (
	CmdConnect Cmd = 0x01
	CmdBind    Cmd = 0x02
)

// Status is a SOCKS4 reply status byte (§6).
type Status byte

// Defined SOCKS4 reply statuses.
const (
	StatusGranted             Status = 0x5a
	StatusRejectedOrFailed    Status = 0x5b
	StatusIdentdUnreachable   Status = 0x5c
	StatusIdentdMismatch      Status = 0x5d
)

// String renders a reply status for log/error messages.
func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "request granted"
	case StatusRejectedOrFailed:
		return "request rejected or failed"
	case StatusIdentdUnreachable:
		return "identd unreachable"
	case StatusIdentdMismatch:
		return "identd could not confirm user id"
	default:
		return fmt.Sprintf("unknown status 0x%02x", byte(s))
	}
}

// Response is SOCKS4Response: "0x00 byte:status short:port ipv4:addr" (§4.1).
type Response struct {
	Status Status
	Port   uint16
	Addr   netip.Addr
}

// ReadResponse reads the server's reply to a CONNECT request. The leading
// byte is nominally a version/null byte that servers set to 0x00; this
// library does not reject other values there since several SOCKS4 server
// implementations are lax about it and rejecting would gain nothing.
func ReadResponse(r io.Reader) (Response, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Response{}, fmt.Errorf("reading SOCKS4 reply header: %w", err)
	}

	port, err := socksaddr.ReadPort(r)
	if err != nil {
		return Response{}, fmt.Errorf("reading SOCKS4 reply port: %w", err)
	}

	var ipb [4]byte
	if _, err := io.ReadFull(r, ipb[:]); err != nil {
		return Response{}, fmt.Errorf("reading SOCKS4 reply address: %w", err)
	}

	return Response{
		Status: Status(head[1]),
		Port:   port,
		Addr:   netip.AddrFrom4(ipb),
	}, nil
}

// AppendConnect appends a SOCKS4/4a CONNECT request to buf:
//
//	"0x04, 0x01, port_hi, port_lo, ipv4(4), user, 0x00"
//
// If host is not a valid IPv4 literal, the SOCKS4a extension is used
// instead: the IPv4 field becomes the sentinel 0.0.0.1 and the hostname is
// appended after the user's terminating NUL as "host, 0x00" (§4.2, §8 S5).
//
// Reusing a real destination IP in the SOCKS4a sentinel range
// (0.0.0.1-0.0.0.255) is rejected, since that range is how the server tells
// CONNECT and "resolve this name" apart (§4.2 validation rule).
func AppendConnect(buf []byte, host string, port uint16, user string) ([]byte, error) {
	buf = append(buf, Version, byte(CmdConnect))
	buf = socksaddr.AppendPort(buf, port)

	ip, isLiteral := socksaddr.ParseIPv4Literal(host)
	if isLiteral {
		if socksaddr.IsSocks4aReserved(ip) {
			return nil, fmt.Errorf("destination IP %s falls in the SOCKS4a reserved range 0.0.0.1-0.0.0.255", ip)
		}
		b := ip.As4()
		buf = append(buf, b[:]...)
		buf = append(buf, user...)
		buf = append(buf, 0x00)
		return buf, nil
	}

	// SOCKS4a: sentinel IP, user, NUL, hostname, NUL.
	buf = append(buf, 0, 0, 0, 1)
	buf = append(buf, user...)
	buf = append(buf, 0x00)
	buf = append(buf, host...)
	buf = append(buf, 0x00)
	return buf, nil
}
