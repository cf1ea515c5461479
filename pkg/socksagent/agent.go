// Package socksagent adapts the negotiation engine in pkg/socksneg to the
// shape a generic HTTP (or other) user agent expects: given a scheme, host,
// and port, produce an Endpoint ready to Connect, with TLS wrapped in
// automatically for the secure scheme. This is the client-side analogue of
// a connection-pool transport's per-request dialer.
package socksagent

import (
	"crypto/tls"
	"fmt"

	"github.com/coregrid/socksneg/pkg/socksneg"
)

// ProxyDialer supplies a fresh Endpoint that reaches the configured SOCKS
// proxy itself; Socks5Agent/Socks4Agent wrap it with per-request negotiation.
type ProxyDialer interface {
	ProxyEndpoint() socksneg.Endpoint
}

// Socks5Agent produces SOCKS5-negotiated endpoints for a user agent, one per
// (scheme, host, port) request (§4.7).
type Socks5Agent struct {
	Proxy     ProxyDialer
	Methods   socksneg.Methods // nil uses socksneg.DefaultSocks5Methods()
	TLSConfig *tls.Config      // used for the "https" scheme
}

// Endpoint returns an Endpoint that negotiates a CONNECT to host:port over
// the configured proxy, wrapped in TLS when scheme is "https". Unknown
// schemes fail closed rather than silently falling back to plain TCP.
func (a *Socks5Agent) Endpoint(scheme, host string, port uint16) (socksneg.Endpoint, error) {
	methods := a.Methods
	if len(methods) == 0 {
		methods = socksneg.DefaultSocks5Methods()
	}

	ep := &socksneg.Socks5Endpoint{
		Host:    host,
		Port:    port,
		Proxy:   a.Proxy.ProxyEndpoint(),
		Methods: methods,
	}

	return wrapScheme(scheme, ep, a.TLSConfig)
}

// Socks4Agent produces SOCKS4/4a-negotiated endpoints for a user agent (§4.7).
type Socks4Agent struct {
	Proxy     ProxyDialer
	User      string
	TLSConfig *tls.Config
}

// Endpoint returns an Endpoint that negotiates a CONNECT to host:port over
// the configured proxy, wrapped in TLS when scheme is "https".
func (a *Socks4Agent) Endpoint(scheme, host string, port uint16) (socksneg.Endpoint, error) {
	ep := &socksneg.Socks4Endpoint{
		Host:  host,
		Port:  port,
		Proxy: a.Proxy.ProxyEndpoint(),
		User:  a.User,
	}

	return wrapScheme(scheme, ep, a.TLSConfig)
}

// wrapScheme dispatches on the user agent's requested scheme: "http" passes
// the negotiated endpoint through unchanged, "https" wraps it in
// socksneg.TLSStartEndpoint, anything else is rejected (§4.7: "Unknown
// schemes fail with an unsupported scheme error").
func wrapScheme(scheme string, ep socksneg.Endpoint, cfg *tls.Config) (socksneg.Endpoint, error) {
	switch scheme {
	case "http":
		return ep, nil
	case "https":
		return &socksneg.TLSStartEndpoint{Inner: ep, Config: cfg}, nil
	default:
		return nil, fmt.Errorf("socksagent: unsupported scheme %q", scheme)
	}
}
