package socksneg

import (
	"errors"
	"fmt"

	"github.com/coregrid/socksneg/pkg/socks4"
	"github.com/coregrid/socksneg/pkg/socks5"
)

// The closed error taxonomy from spec.md §7. Every failure a Session can
// surface is one of these, checkable with errors.Is/errors.As.
var (
	// ErrInvalidArgument covers synchronous configuration mistakes: an
	// empty SOCKS5 method set, a SOCKS4a-reserved destination IP, or a
	// login field longer than 255 bytes.
	ErrInvalidArgument = errors.New("socksneg: invalid argument")

	// ErrLoginAuthFailed is returned when the SOCKS5 username/password
	// sub-protocol replies with a non-zero status.
	ErrLoginAuthFailed = errors.New("socksneg: username/password authentication failed")

	// ErrProtocol is returned when the proxy sends ill-formed bytes that
	// do not parse as a valid message for the current state.
	ErrProtocol = errors.New("socksneg: malformed proxy response")

	// ErrCancelled is returned when the caller's context is cancelled
	// while a Session is still negotiating.
	ErrCancelled = errors.New("socksneg: negotiation cancelled")
)

// MethodsNotAcceptedError is returned when the server selects 0xFF ("no
// acceptable methods") or a method byte the client never offered.
type MethodsNotAcceptedError struct {
	Selected byte
	Offered  []byte
}

func (e *MethodsNotAcceptedError) Error() string {
	return fmt.Sprintf("socksneg: server selected method 0x%02x, not among offered methods %v", e.Selected, e.Offered)
}

// Socks5ReplyKind enumerates the SOCKS5 §6/§7 reply-code error kinds.
type Socks5ReplyKind int

// Defined SOCKS5 reply kinds, one per non-success status byte, plus Unknown
// for any status byte the protocol has not defined.
const (
	Socks5ServerFailure Socks5ReplyKind = iota
	Socks5ConnectionNotAllowed
	Socks5NetworkUnreachable
	Socks5HostUnreachable
	Socks5ConnectionRefused
	Socks5TTLExpired
	Socks5CommandNotSupported
	Socks5AddressNotSupported
	Socks5Unknown
)

func (k Socks5ReplyKind) String() string {
	switch k {
	case Socks5ServerFailure:
		return "ServerFailure"
	case Socks5ConnectionNotAllowed:
		return "ConnectionNotAllowed"
	case Socks5NetworkUnreachable:
		return "NetworkUnreachable"
	case Socks5HostUnreachable:
		return "HostUnreachable"
	case Socks5ConnectionRefused:
		return "ConnectionRefused"
	case Socks5TTLExpired:
		return "TTLExpired"
	case Socks5CommandNotSupported:
		return "CommandNotSupported"
	case Socks5AddressNotSupported:
		return "AddressNotSupported"
	default:
		return "Unknown"
	}
}

// Socks4ReplyKind enumerates the SOCKS4 §6/§7 reply-code error kinds.
type Socks4ReplyKind int

// Defined SOCKS4 reply kinds.
const (
	Socks4RequestRejectedOrFailed Socks4ReplyKind = iota
	Socks4IdentdUnreachable
	Socks4IdentdMismatch
	Socks4Unknown
)

func (k Socks4ReplyKind) String() string {
	switch k {
	case Socks4RequestRejectedOrFailed:
		return "RequestRejectedOrFailed"
	case Socks4IdentdUnreachable:
		return "IdentdUnreachable"
	case Socks4IdentdMismatch:
		return "IdentdMismatch"
	default:
		return "Unknown"
	}
}

// ProxyReplyError wraps a non-success reply code from either protocol
// version. Code preserves the raw byte the server sent, including for
// Unknown kinds (§7: "An unknown status byte maps to a generic
// ProxyReplyError(Unknown, byte)").
type ProxyReplyError struct {
	Version int // 4 or 5
	Code    byte

	Socks5Kind Socks5ReplyKind // meaningful when Version == 5
	Socks4Kind Socks4ReplyKind // meaningful when Version == 4
}

func (e *ProxyReplyError) Error() string {
	switch e.Version {
	case 5:
		return fmt.Sprintf("socksneg: SOCKS5 proxy replied %s (0x%02x)", e.Socks5Kind, e.Code)
	case 4:
		return fmt.Sprintf("socksneg: SOCKS4 proxy replied %s (0x%02x)", e.Socks4Kind, e.Code)
	default:
		return fmt.Sprintf("socksneg: proxy replied with unrecognized status 0x%02x", e.Code)
	}
}

// TransportLostError wraps the underlying cause when the proxy transport
// closes before negotiation reaches Established.
type TransportLostError struct {
	Cause error
}

func (e *TransportLostError) Error() string {
	return fmt.Sprintf("socksneg: proxy transport lost: %s", e.Cause)
}

func (e *TransportLostError) Unwrap() error {
	return e.Cause
}

// mapSocks5Reply converts a non-success SOCKS5 reply byte into a
// *ProxyReplyError per the §6/§7 mapping table.
func mapSocks5Reply(code socks5.Reply) error {
	kind := Socks5Unknown
	switch code {
	case socks5.ReplyGeneralFailure:
		kind = Socks5ServerFailure
	case socks5.ReplyConnectionNotAllowed:
		kind = Socks5ConnectionNotAllowed
	case socks5.ReplyNetworkUnreachable:
		kind = Socks5NetworkUnreachable
	case socks5.ReplyHostUnreachable:
		kind = Socks5HostUnreachable
	case socks5.ReplyConnectionRefused:
		kind = Socks5ConnectionRefused
	case socks5.ReplyTTLExpired:
		kind = Socks5TTLExpired
	case socks5.ReplyCommandNotSupported:
		kind = Socks5CommandNotSupported
	case socks5.ReplyAddressTypeNotSupported:
		kind = Socks5AddressNotSupported
	}
	return &ProxyReplyError{Version: 5, Code: byte(code), Socks5Kind: kind}
}

// mapSocks4Status converts a non-granted SOCKS4 status byte into a
// *ProxyReplyError per the §6/§7 mapping table.
func mapSocks4Status(status socks4.Status) error {
	kind := Socks4Unknown
	switch status {
	case socks4.StatusRejectedOrFailed:
		kind = Socks4RequestRejectedOrFailed
	case socks4.StatusIdentdUnreachable:
		kind = Socks4IdentdUnreachable
	case socks4.StatusIdentdMismatch:
		kind = Socks4IdentdMismatch
	}
	return &ProxyReplyError{Version: 4, Code: byte(status), Socks4Kind: kind}
}
