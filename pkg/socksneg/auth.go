package socksneg

import (
	"fmt"
	"io"

	"github.com/coregrid/socksneg/pkg/socks5"
)

// AuthMethod is a pluggable SOCKS5 auth sub-negotiator, keyed by the one-byte
// method identifier sent in the client greeting (§3, §4.4). Callers may
// supply their own AuthMethod implementations without modifying the core
// engine — the two built-ins below (AnonymousMethod, UsernamePasswordMethod)
// are registered the same way a third-party one would be.
type AuthMethod interface {
	// Byte returns this method's one-byte identifier.
	Byte() socks5.Method

	// Negotiate drives the method's sub-protocol to completion once the
	// server has selected it, using rw to read the server's replies and
	// write the client's sub-protocol messages. It returns nil on success
	// or a typed failure (e.g. ErrLoginAuthFailed) on rejection.
	Negotiate(rw io.ReadWriter) error
}

// Methods is an ordered, non-empty set of AuthMethod values advertised in
// the client greeting. Order is preserved end to end: "deterministic
// greeting transmission order is RECOMMENDED but not required" (§4.4).
type Methods []AuthMethod

// AnonymousMethod is the "no authentication" method (0x00). Selecting it
// requires no sub-protocol: the client proceeds straight to the CONNECT
// request (§4.3 "Anonymous method: immediately calls sendConnect5 on
// selection; no intermediate state").
type AnonymousMethod struct{}

// Byte implements AuthMethod.
func (AnonymousMethod) Byte() socks5.Method { return socks5.MethodNoAuth }

// Negotiate implements AuthMethod; anonymous has nothing to negotiate.
func (AnonymousMethod) Negotiate(io.ReadWriter) error { return nil }

// UsernamePasswordMethod is the RFC 1929 username/password method (0x02).
type UsernamePasswordMethod struct {
	Username string
	Password string
}

// Byte implements AuthMethod.
func (UsernamePasswordMethod) Byte() socks5.Method { return socks5.MethodUsernamePassword }

// Negotiate implements AuthMethod: sends the login request and waits for the
// status reply, failing with ErrLoginAuthFailed on a non-zero status (§4.3
// AwaitLoginReply table).
func (m UsernamePasswordMethod) Negotiate(rw io.ReadWriter) error {
	buf, err := socks5.AppendLogin(nil, m.Username, m.Password)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	if _, err := rw.Write(buf); err != nil {
		return err
	}

	resp, err := socks5.ReadLoginResponse(rw)
	if err != nil {
		return err
	}
	if !resp.Success {
		return ErrLoginAuthFailed
	}
	return nil
}
