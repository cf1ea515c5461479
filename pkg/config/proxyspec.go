package config

import (
	"fmt"
	"regexp"
	"strconv"
)

// Transport identifies how to reach the proxy itself; this is orthogonal to
// the SOCKS version spoken once connected to it.
type Transport int

// Transport constants.
const (
	TransportTCP Transport = iota
	TransportWS
	TransportWSS
	TransportKCP
)

// String returns the string representation of the Transport.
func (t Transport) String() string {
	switch t {
	case TransportTCP:
		return "tcp"
	case TransportWS:
		return "ws"
	case TransportWSS:
		return "wss"
	case TransportKCP:
		return "kcp"
	default:
		return ""
	}
}

var proxySpecRe = regexp.MustCompile(`^(tcp|ws|wss|kcp)://([^:]+):(\d+)$`)

// ProxyCfg holds where and how to reach the SOCKS proxy.
type ProxyCfg struct {
	Transport Transport
	Host      string
	Port      int

	spec       string
	parsingErr error
}

// String returns the string representation of the proxy configuration.
func (c *ProxyCfg) String() string {
	if c.parsingErr != nil {
		return c.spec
	}
	return fmt.Sprintf("%s://%s:%d", c.Transport, c.Host, c.Port)
}

// NewProxyCfg parses a proxy spec of the form "proto://host:port", proto in
// {tcp, ws, wss, kcp}. Parsing errors are deferred to Validate.
func NewProxyCfg(spec string) *ProxyCfg {
	var out ProxyCfg
	out.spec = spec

	m := proxySpecRe.FindStringSubmatch(spec)
	if m == nil {
		out.parsingErr = fmt.Errorf("unexpected format, want proto://host:port")
		return &out
	}

	switch m[1] {
	case "tcp":
		out.Transport = TransportTCP
	case "ws":
		out.Transport = TransportWS
	case "wss":
		out.Transport = TransportWSS
	case "kcp":
		out.Transport = TransportKCP
	}
	out.Host = m[2]

	var err error
	out.Port, err = strconv.Atoi(m[3])
	if err != nil {
		out.parsingErr = fmt.Errorf("parsing '%s' as port: %s", m[3], err)
	}

	return &out
}

// Validate implements ValidatableConfig.
func (c *ProxyCfg) Validate() []error {
	if c.parsingErr != nil {
		return []error{fmt.Errorf("proxy spec '%s': %s", c.spec, c.parsingErr)}
	}

	var errs []error
	if err := validatePort(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("proxy port: %s", err))
	}
	return errs
}

var targetSpecRe = regexp.MustCompile(`^(.+):(\d+)$`)

// TargetCfg holds the (host, port) forwarded verbatim to the proxy in the
// CONNECT request; no client-side DNS resolution happens on this value.
type TargetCfg struct {
	Host string
	Port int

	spec       string
	parsingErr error
}

// String returns the string representation of the target configuration.
func (c *TargetCfg) String() string {
	if c.parsingErr != nil {
		return c.spec
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewTargetCfg parses a target spec of the form "host:port".
func NewTargetCfg(spec string) *TargetCfg {
	var out TargetCfg
	out.spec = spec

	m := targetSpecRe.FindStringSubmatch(spec)
	if m == nil {
		out.parsingErr = fmt.Errorf("unexpected format, want host:port")
		return &out
	}
	out.Host = m[1]

	var err error
	out.Port, err = strconv.Atoi(m[2])
	if err != nil {
		out.parsingErr = fmt.Errorf("parsing '%s' as port: %s", m[2], err)
	}

	return &out
}

// Validate implements ValidatableConfig.
func (c *TargetCfg) Validate() []error {
	if c.parsingErr != nil {
		return []error{fmt.Errorf("target spec '%s': %s", c.spec, c.parsingErr)}
	}

	var errs []error
	if err := validatePort(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("target port: %s", err))
	}
	return errs
}
