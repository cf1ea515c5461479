package socksneg

import (
	"context"
	"errors"
	"net"
	"testing"
)

// fakeDialer implements transport.Dialer without importing pkg/transport,
// avoiding a dependency cycle in this package's tests.
type fakeDialer struct {
	conn net.Conn
	err  error
}

func (d fakeDialer) Dial(ctx context.Context) (net.Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func TestDialerEndpoint_Success(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	ep := &DialerEndpoint{Dialer: fakeDialer{conn: client}}

	conn, err := ep.Connect(context.Background(), PassThrough)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn.Close()
}

func TestDialerEndpoint_DialFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection refused")
	ep := &DialerEndpoint{Dialer: fakeDialer{err: wantErr}}

	_, err := ep.Connect(context.Background(), PassThrough)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Connect() error = %v, want it to wrap %v", err, wantErr)
	}
	if errors.Is(err, ErrProtocol) {
		t.Errorf("Connect() error = %v, a dial failure must not be reported as ErrProtocol", err)
	}
}

func TestDialerEndpoint_DialFailure_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ep := &DialerEndpoint{Dialer: fakeDialer{err: errors.New("dial interrupted")}}

	_, err := ep.Connect(ctx, PassThrough)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Connect() error = %v, want ErrCancelled", err)
	}
}

func TestDialerEndpoint_InnerFactoryCancels(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	ep := &DialerEndpoint{Dialer: fakeDialer{conn: client}}

	_, err := ep.Connect(context.Background(), func(net.Conn, net.Addr) (net.Conn, error) {
		return nil, nil
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Connect() error = %v, want ErrCancelled", err)
	}
}

func TestDialerEndpoint_InnerFactoryError(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	wantErr := errors.New("inner failed")
	ep := &DialerEndpoint{Dialer: fakeDialer{conn: client}}

	_, err := ep.Connect(context.Background(), func(net.Conn, net.Addr) (net.Conn, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Connect() error = %v, want %v", err, wantErr)
	}
}
