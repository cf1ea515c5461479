// Package socksdial implements the socksdial CLI command: it dials a SOCKS
// proxy over a pluggable transport, negotiates a CONNECT to a target through
// pkg/socksneg, and pipes stdio to the resulting connection.
package socksdial

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/coregrid/socksneg/pkg/config"
	"github.com/coregrid/socksneg/pkg/log"
	"github.com/coregrid/socksneg/pkg/pipeio"
	"github.com/coregrid/socksneg/pkg/socksneg"
	"github.com/coregrid/socksneg/pkg/transport"
	"github.com/coregrid/socksneg/pkg/transport/kcp"
	"github.com/coregrid/socksneg/pkg/transport/tcp"
	"github.com/coregrid/socksneg/pkg/transport/ws"
)

const (
	categoryProxy  = "proxy"
	categoryTarget = "target"

	versionFlag  = "version"
	userFlag     = "user"
	passFlag     = "pass"
	sslFlag      = "ssl"
	timeoutFlag  = "timeout"
	verboseFlag  = "verbose"
	insecureFlag = "insecure"
	logFileFlag  = "logfile"
)

// GetCommand returns the CLI command for dialing a target through a SOCKS
// proxy, grounded on the teacher's cmd/masterconnect command shape.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "socksdial",
		Usage:     "Negotiate a SOCKS4/4a/5 CONNECT through a proxy and pipe stdio to the target",
		ArgsUsage: "proxy-spec target-spec",
		Description: "proxy-spec: tcp|ws|wss|kcp://host:port (how to reach the proxy)\n" +
			"target-spec: host:port (forwarded verbatim to the proxy, no client-side DNS)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     versionFlag,
				Aliases:  []string{"V"},
				Usage:    "SOCKS protocol version: 4 or 5",
				Category: categoryProxy,
				Value:    5,
			},
			&cli.StringFlag{
				Name:     userFlag,
				Aliases:  []string{"u"},
				Usage:    "Username (SOCKS5 login auth, or SOCKS4 ident)",
				Category: categoryProxy,
			},
			&cli.StringFlag{
				Name:     passFlag,
				Aliases:  []string{"p"},
				Usage:    "Password (SOCKS5 login auth only)",
				Category: categoryProxy,
			},
			&cli.BoolFlag{
				Name:     sslFlag,
				Usage:    "Start TLS on the connection after CONNECT succeeds",
				Category: categoryTarget,
			},
			&cli.BoolFlag{
				Name:     insecureFlag,
				Usage:    "Skip certificate verification when --ssl is set",
				Category: categoryTarget,
			},
			&cli.IntFlag{
				Name:     timeoutFlag,
				Aliases:  []string{"t"},
				Usage:    "Dial and TLS handshake timeout in milliseconds",
				Category: categoryProxy,
				Value:    10000,
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "Verbose negotiation logging",
			},
			&cli.StringFlag{
				Name:     logFileFlag,
				Aliases:  []string{"l"},
				Usage:    "Append all bytes read from and written to the target connection to this file",
				Category: categoryTarget,
			},
		},
		Action: func(parent context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			args := cmd.Args()
			if args.Len() != 2 {
				return fmt.Errorf("expected 2 arguments (proxy-spec target-spec), got %d", args.Len())
			}

			lg := log.NewLogger(cmd.Bool(verboseFlag))
			timeout := time.Duration(cmd.Int(timeoutFlag)) * time.Millisecond

			proxyCfg := config.NewProxyCfg(args.Get(0))
			targetCfg := config.NewTargetCfg(args.Get(1))
			if errs := config.Validate(proxyCfg, targetCfg); len(errs) > 0 {
				lg.ErrorMsg("Argument validation errors:\n")
				for _, err := range errs {
					lg.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}
			host, port := targetCfg.Host, targetCfg.Port

			dialer, err := buildProxyDialer(proxyCfg)
			if err != nil {
				return fmt.Errorf("proxy dialer: %w", err)
			}

			proxyEndpoint := &socksneg.DialerEndpoint{Dialer: dialer}

			var endpoint socksneg.Endpoint
			switch v := cmd.Int(versionFlag); v {
			case 5:
				methods := socksneg.DefaultSocks5Methods()
				if user := cmd.String(userFlag); user != "" {
					methods = socksneg.Methods{socksneg.UsernamePasswordMethod{
						Username: user,
						Password: cmd.String(passFlag),
					}}
				}
				endpoint = &socksneg.Socks5Endpoint{
					Host:    host,
					Port:    uint16(port),
					Proxy:   proxyEndpoint,
					Methods: methods,
					Log:     lg,
				}
			case 4:
				endpoint = &socksneg.Socks4Endpoint{
					Host:  host,
					Port:  uint16(port),
					Proxy: proxyEndpoint,
					User:  cmd.String(userFlag),
					Log:   lg,
				}
			default:
				return fmt.Errorf("unsupported --version %d, must be 4 or 5", v)
			}

			if cmd.Bool(sslFlag) {
				endpoint = &socksneg.TLSStartEndpoint{
					Inner:            endpoint,
					Config:           tlsConfig(cmd.Bool(insecureFlag)),
					HandshakeTimeout: timeout,
				}
			}

			dialCtx, dialCancel := context.WithTimeout(ctx, timeout)
			defer dialCancel()

			conn, err := endpoint.Connect(dialCtx, socksneg.PassThrough)
			if err != nil {
				return fmt.Errorf("connecting to %s:%d: %w", host, port, err)
			}
			defer conn.Close()

			if logPath := cmd.String(logFileFlag); logPath != "" {
				conn, err = log.NewLoggedConn(conn, logPath)
				if err != nil {
					return fmt.Errorf("log.NewLoggedConn(%s): %w", logPath, err)
				}
			}

			lg.InfoMsg("Connected to %s:%d, piping stdio\n", host, port)

			stdio := pipeio.NewStdio()
			pipeio.Pipe(ctx, stdio, conn, func(err error) {
				lg.ErrorMsg("pipe: %s\n", err)
			})

			return nil
		},
	}
}

// tlsConfig builds the TLS client config for --ssl, matching the teacher's
// client.upgradeToTLS default of TLS 1.3 minimum.
func tlsConfig(insecure bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}

// buildProxyDialer constructs the transport.Dialer that reaches the proxy
// itself, per the transport named in cfg.
func buildProxyDialer(cfg *config.ProxyCfg) (transport.Dialer, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	switch cfg.Transport {
	case config.TransportTCP:
		return tcp.NewDialer(addr, nil)
	case config.TransportWS:
		return ws.NewDialer(addr, false, false), nil
	case config.TransportWSS:
		return ws.NewDialer(addr, true, false), nil
	case config.TransportKCP:
		return kcp.NewDialer(addr)
	default:
		return nil, fmt.Errorf("unsupported proxy transport %q", cfg.Transport)
	}
}
