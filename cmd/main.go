// Package main is the entry point for socksdial, a command-line client that
// negotiates a SOCKS4/4a/5 CONNECT through a proxy and pipes stdio to the
// resulting connection.
package main

import (
	"context"
	"os"

	"github.com/coregrid/socksneg/cmd/socksdial"
	"github.com/coregrid/socksneg/pkg/log"
)

func main() {
	app := socksdial.GetCommand()

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := log.NewLogger(false)
		logger.ErrorMsg("Run: %s\n", err)
		os.Exit(1)
	}
}
