// Package socksaddr implements the byte-level address primitives shared by
// the SOCKS4/4a and SOCKS5 wire formats: IPv4/IPv6 literal packing, the
// length-prefixed domain name form, and the SOCKS4a reserved-address check.
//
// These are the same primitives the teacher's SOCKS5 server package reads
// off the wire (pkg/socks/helper.go), generalized here for client-side use:
// reading addresses out of server *replies* instead of client *requests*,
// and also serializing them when the client builds a CONNECT request.
package socksaddr

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
)

// Type is a SOCKS5 address-type byte (§4.1).
type Type byte

// Known SOCKS5 address types.
const (
	TypeIPv4   Type = 0x01
	TypeDomain Type = 0x03
	TypeIPv6   Type = 0x04
)

// ErrAddressTypeNotSupported is returned when a server's reply carries an
// address type byte other than IPv4, domain, or IPv6.
var ErrAddressTypeNotSupported = fmt.Errorf("address type not supported")

// Addr is a decoded SOCKS5 address: either an IP literal or a domain name.
type Addr struct {
	Type   Type
	IP     netip.Addr
	Domain string
}

// String renders the address the way it would appear in a "host:port" pair.
func (a Addr) String() string {
	if a.Type == TypeDomain {
		return a.Domain
	}
	return a.IP.String()
}

// Read parses one socks5Address rule (§4.1): a type byte followed by the
// type-specific payload. It consumes exactly the bytes of the address and
// no more, leaving any trailing bytes (e.g. the port that follows, or data
// belonging to the next message) untouched in r.
func Read(r io.Reader) (Addr, error) {
	var tb [1]byte
	if _, err := io.ReadFull(r, tb[:]); err != nil {
		return Addr{}, fmt.Errorf("reading address type: %w", err)
	}

	switch Type(tb[0]) {
	case TypeIPv4:
		ip, err := readIPv4(r)
		if err != nil {
			return Addr{}, fmt.Errorf("reading IPv4 address: %w", err)
		}
		return Addr{Type: TypeIPv4, IP: ip}, nil
	case TypeIPv6:
		ip, err := readIPv6(r)
		if err != nil {
			return Addr{}, fmt.Errorf("reading IPv6 address: %w", err)
		}
		return Addr{Type: TypeIPv6, IP: ip}, nil
	case TypeDomain:
		domain, err := readDomain(r)
		if err != nil {
			return Addr{}, fmt.Errorf("reading domain address: %w", err)
		}
		return Addr{Type: TypeDomain, Domain: domain}, nil
	default:
		return Addr{}, ErrAddressTypeNotSupported
	}
}

func readIPv4(r io.Reader) (netip.Addr, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom4(b), nil
}

func readIPv6(r io.Reader) (netip.Addr, error) {
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom16(b), nil
}

func readDomain(r io.Reader) (string, error) {
	var lb [1]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return "", fmt.Errorf("reading domain length: %w", err)
	}

	domain := make([]byte, int(lb[0]))
	if _, err := io.ReadFull(r, domain); err != nil {
		return "", fmt.Errorf("reading %d-byte domain: %w", len(domain), err)
	}

	return string(domain), nil
}

// ReadPort reads a big-endian u16 port, the "short" rule of §4.1.
func ReadPort(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("reading port: %w", err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// AppendAddr appends a domain-name-typed socks5Address (type 0x03) to buf,
// rejecting hosts longer than 255 bytes. Sender.sendConnect5 always emits
// the domain form (§4.2): IP-literal transmission is permitted but not
// required, and sending everything as a domain keeps the encoder branchless.
func AppendAddr(buf []byte, host string) ([]byte, error) {
	if len(host) > 255 {
		return nil, fmt.Errorf("host %q exceeds 255 bytes", host)
	}
	buf = append(buf, byte(TypeDomain), byte(len(host)))
	buf = append(buf, host...)
	return buf, nil
}

// AppendPort appends a big-endian u16 port to buf.
func AppendPort(buf []byte, port uint16) []byte {
	return append(buf, byte(port>>8), byte(port))
}

// socks4aReservedLow and socks4aReservedHigh bound the SOCKS4a sentinel
// range 0.0.0.1-0.0.0.255 (§4.2): any real destination IP in this range is
// rejected, since SOCKS4a repurposes it to signal "resolve this hostname on
// the proxy side".
var (
	socks4aReservedLow  = netip.AddrFrom4([4]byte{0, 0, 0, 1})
	socks4aReservedHigh = netip.AddrFrom4([4]byte{0, 0, 0, 255})
)

// IsSocks4aReserved reports whether ip falls in the SOCKS4a sentinel range
// 0.0.0.1-0.0.0.255, which a real SOCKS4 CONNECT target must never use.
func IsSocks4aReserved(ip netip.Addr) bool {
	if !ip.Is4() {
		return false
	}
	return ip.Compare(socks4aReservedLow) >= 0 && ip.Compare(socks4aReservedHigh) <= 0
}

// ParseIPv4Literal parses host as an IPv4 literal. A dotted quad is
// accepted, and so is an IPv4-mapped IPv6 literal (such as ::ffff:1.2.3.4),
// which is unmapped to its IPv4 address. ok is false for anything else
// (domain names, other IPv6 literals, garbage), in which case the SOCKS4
// sender falls back to the SOCKS4a hostname-forwarding form.
func ParseIPv4Literal(host string) (ip netip.Addr, ok bool) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return netip.Addr{}, false
	}
	return addr, true
}
