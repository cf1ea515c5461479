package socks5

import (
	"fmt"
	"io"

	"github.com/coregrid/socksneg/pkg/socksaddr"
)

// ######## Server -> client messages (the parser side, §4.1) ######## //

// AuthSelection is ServerAuthSelection: "0x05 byte:method" (§4.1).
type AuthSelection struct {
	Method Method
}

// ReadAuthSelection reads the server's method-selection reply.
func ReadAuthSelection(r io.Reader) (AuthSelection, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return AuthSelection{}, fmt.Errorf("reading method selection reply: %w", err)
	}
	if b[0] != Version {
		return AuthSelection{}, fmt.Errorf("unexpected SOCKS version 0x%02x in method selection reply, want 0x%02x", b[0], Version)
	}
	return AuthSelection{Method: Method(b[1])}, nil
}

// LoginResponse is ServerLoginResponse: "byte byte:status" (§4.1).
type LoginResponse struct {
	Version byte
	Success bool
}

// ReadLoginResponse reads the username/password sub-negotiation reply (RFC 1929 §2).
func ReadLoginResponse(r io.Reader) (LoginResponse, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return LoginResponse{}, fmt.Errorf("reading login reply: %w", err)
	}
	return LoginResponse{Version: b[0], Success: b[1] == 0x00}, nil
}

// ConnectResponse is ServerConnectResponse:
// "0x05 byte:status 0x00 socks5Address:addr short:port" (§4.1).
type ConnectResponse struct {
	Reply   Reply
	BndAddr socksaddr.Addr
	BndPort uint16
}

// ReadConnectResponse reads the server's reply to a CONNECT request.
// It consumes exactly the bytes of the reply; any surplus bytes in the
// underlying reader (e.g. already-flowing target data sent in the same
// packet) are left untouched for the caller to read after handoff.
func ReadConnectResponse(r io.Reader) (ConnectResponse, error) {
	var head [3]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return ConnectResponse{}, fmt.Errorf("reading connect reply header: %w", err)
	}
	if head[0] != Version {
		return ConnectResponse{}, fmt.Errorf("unexpected SOCKS version 0x%02x in connect reply, want 0x%02x", head[0], Version)
	}
	if head[2] != RSV {
		return ConnectResponse{}, fmt.Errorf("unexpected reserved byte 0x%02x in connect reply", head[2])
	}

	addr, err := socksaddr.Read(r)
	if err != nil {
		return ConnectResponse{}, fmt.Errorf("reading connect reply address: %w", err)
	}
	port, err := socksaddr.ReadPort(r)
	if err != nil {
		return ConnectResponse{}, fmt.Errorf("reading connect reply port: %w", err)
	}

	return ConnectResponse{Reply: Reply(head[1]), BndAddr: addr, BndPort: port}, nil
}

// ######## Client -> server messages (the sender side, §4.2) ######## //

// maxMethods is the most methods that fit in the one-byte NMETHODS field.
const maxMethods = 255

// AppendAuthMethods appends the client greeting
// "0x05, len(methods), methods..." to buf.
func AppendAuthMethods(buf []byte, methods []Method) ([]byte, error) {
	if len(methods) == 0 || len(methods) > maxMethods {
		return nil, fmt.Errorf("method count %d out of range 1-%d", len(methods), maxMethods)
	}

	buf = append(buf, Version, byte(len(methods)))
	for _, m := range methods {
		buf = append(buf, byte(m))
	}
	return buf, nil
}

// maxCredentialField is the largest a username or password may be: its
// length is encoded in a single byte (RFC 1929 §2).
const maxCredentialField = 255

// AppendLogin appends "0x01, len(user), user, len(pass), pass" to buf.
func AppendLogin(buf []byte, user, pass string) ([]byte, error) {
	if len(user) > maxCredentialField {
		return nil, fmt.Errorf("username length %d exceeds %d bytes", len(user), maxCredentialField)
	}
	if len(pass) > maxCredentialField {
		return nil, fmt.Errorf("password length %d exceeds %d bytes", len(pass), maxCredentialField)
	}

	buf = append(buf, 0x01, byte(len(user)))
	buf = append(buf, user...)
	buf = append(buf, byte(len(pass)))
	buf = append(buf, pass...)
	return buf, nil
}

// AppendConnect appends a CONNECT request
// "0x05, 0x01, 0x00, 0x03, len(host), host, port_hi, port_lo" to buf.
// Hostnames are always sent in domain form (§4.2): IP-literal transmission
// is permitted by the protocol but not required.
func AppendConnect(buf []byte, host string, port uint16) ([]byte, error) {
	buf = append(buf, Version, byte(CmdConnect), RSV)
	buf, err := socksaddr.AppendAddr(buf, host)
	if err != nil {
		return nil, fmt.Errorf("encoding CONNECT address: %w", err)
	}
	buf = socksaddr.AppendPort(buf, port)
	return buf, nil
}
