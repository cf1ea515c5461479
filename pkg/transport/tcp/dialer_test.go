package tcp

import (
	"context"
	"net"
	"testing"
)

func TestNewDialer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "valid address", addr: "localhost:8080"},
		{name: "valid IPv4 address", addr: "127.0.0.1:8080"},
		{name: "valid IPv6 address", addr: "[::1]:8080"},
		{name: "invalid address - no port", addr: "localhost", wantErr: true},
		{name: "invalid address - bad port", addr: "localhost:abc", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := NewDialer(tc.addr, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewDialer(%q) error = %v, wantErr %v", tc.addr, err, tc.wantErr)
			}
			if !tc.wantErr && d == nil {
				t.Fatal("NewDialer() returned nil dialer")
			}
		})
	}
}

func TestDialer_Dial(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		_, _ = conn.Read(buf)
	}()

	d, err := NewDialer(ln.Addr().String(), nil)
	if err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	conn, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Errorf("Write() error = %v", err)
	}
}

func TestDialer_Dial_Failure(t *testing.T) {
	t.Parallel()

	d, err := NewDialer("127.0.0.1:1", func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, context.DeadlineExceeded
	})
	if err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	if _, err := d.Dial(context.Background()); err == nil {
		t.Error("Dial() expected error, got nil")
	}
}
