package socksagent

import (
	"context"
	"net"
	"testing"

	"github.com/coregrid/socksneg/pkg/socksneg"
)

type stubProxyDialer struct {
	ep socksneg.Endpoint
}

func (s stubProxyDialer) ProxyEndpoint() socksneg.Endpoint { return s.ep }

type stubEndpoint struct{}

func (stubEndpoint) Connect(context.Context, socksneg.InnerFactory) (net.Conn, error) {
	return nil, nil
}

func TestSocks5Agent_Endpoint_HTTPPassesThrough(t *testing.T) {
	t.Parallel()

	agent := &Socks5Agent{Proxy: stubProxyDialer{ep: stubEndpoint{}}}

	ep, err := agent.Endpoint("http", "example.com", 80)
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	if _, ok := ep.(*socksneg.Socks5Endpoint); !ok {
		t.Errorf("Endpoint() = %T, want *socksneg.Socks5Endpoint", ep)
	}
}

func TestSocks5Agent_Endpoint_HTTPSWrapsTLS(t *testing.T) {
	t.Parallel()

	agent := &Socks5Agent{Proxy: stubProxyDialer{ep: stubEndpoint{}}}

	ep, err := agent.Endpoint("https", "example.com", 443)
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	if _, ok := ep.(*socksneg.TLSStartEndpoint); !ok {
		t.Errorf("Endpoint() = %T, want *socksneg.TLSStartEndpoint", ep)
	}
}

func TestSocks5Agent_Endpoint_UnknownSchemeRejected(t *testing.T) {
	t.Parallel()

	agent := &Socks5Agent{Proxy: stubProxyDialer{ep: stubEndpoint{}}}

	if _, err := agent.Endpoint("ftp", "example.com", 21); err == nil {
		t.Error("Endpoint(ftp) error = nil, want error")
	}
}

func TestSocks5Agent_Endpoint_DefaultsToAnonymousMethods(t *testing.T) {
	t.Parallel()

	agent := &Socks5Agent{Proxy: stubProxyDialer{ep: stubEndpoint{}}}

	ep, err := agent.Endpoint("http", "example.com", 80)
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	s5 := ep.(*socksneg.Socks5Endpoint)
	if len(s5.Methods) != 1 {
		t.Fatalf("Methods = %v, want exactly the anonymous default", s5.Methods)
	}
	anon := socksneg.AnonymousMethod{}
	if s5.Methods[0].Byte() != anon.Byte() {
		t.Errorf("default method = %v, want AnonymousMethod", s5.Methods[0])
	}
}

func TestSocks4Agent_Endpoint(t *testing.T) {
	t.Parallel()

	agent := &Socks4Agent{Proxy: stubProxyDialer{ep: stubEndpoint{}}, User: "alice"}

	ep, err := agent.Endpoint("http", "example.com", 80)
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	s4, ok := ep.(*socksneg.Socks4Endpoint)
	if !ok {
		t.Fatalf("Endpoint() = %T, want *socksneg.Socks4Endpoint", ep)
	}
	if s4.User != "alice" {
		t.Errorf("User = %q, want %q", s4.User, "alice")
	}
}
