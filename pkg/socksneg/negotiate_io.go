package socksneg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/muesli/cancelreader"
)

// cancellableRead wraps conn's reads in a muesli/cancelreader.CancelReader
// so that a context cancellation during negotiation can interrupt a blocking
// read immediately, instead of only taking effect on the connection's next
// byte (§4.5, §5). This is the same dependency and the same technique the
// teacher uses to make stdin reads interruptible (pkg/pipeio.Stdio); here it
// guards the proxy transport's reads during the pre-handoff window instead.
//
// watch must be called once negotiation is done (success or failure) to stop
// the background goroutine monitoring ctx.
func cancellableRead(ctx context.Context, conn net.Conn) (r io.Reader, watch func()) {
	cr, err := cancelreader.NewReader(conn)
	if err != nil {
		// Platform doesn't support cancellable reads for this conn type;
		// fall back to plain reads. ctx cancellation still aborts the
		// transport via conn.Close() below, which unblocks any pending
		// read with a "use of closed connection" error.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()
		return conn, func() { close(done) }
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cr.Cancel()
			conn.Close()
		case <-done:
		}
	}()

	return cr, func() { close(done) }
}

// classifyIOErr turns a raw read/write failure encountered while driving the
// negotiation state machine into one of the taxonomy's errors (§7):
//
//   - if ctx was cancelled, the failure is attributed to that cancellation
//     (ErrCancelled) regardless of what the I/O layer reports, so a
//     subsequent transport-loss race never overwrites it (§5, §8 property 4/S6)
//   - a closed/reset/EOF'd connection is TransportLostError
//   - anything else is treated as a malformed message (ErrProtocol): the
//     version, reserved-byte and address-type checks in pkg/socks5 and
//     pkg/socksaddr return errors with no EOF/closed sentinel beneath them
func classifyIOErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}

	if errors.Is(err, cancelreader.ErrCanceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) {
		return &TransportLostError{Cause: err}
	}

	return fmt.Errorf("%w: %s", ErrProtocol, err)
}

// readWriter pairs the negotiation's buffered reader with the raw connection
// writer, giving an AuthMethod exactly the two primitives it needs (§4.4)
// without exposing the rest of the Session.
type readWriter struct {
	io.Reader
	io.Writer
}
