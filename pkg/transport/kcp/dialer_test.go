package kcp

import (
	"context"
	"testing"

	kcplib "github.com/xtaci/kcp-go/v5"
)

func TestNewDialer(t *testing.T) {
	t.Parallel()

	if _, err := NewDialer("127.0.0.1:9000"); err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	if _, err := NewDialer("not-an-address"); err == nil {
		t.Error("NewDialer(not-an-address) error = nil, want error")
	}
}

func TestDialer_Dial(t *testing.T) {
	t.Parallel()

	ln, err := kcplib.ListenWithOptions("127.0.0.1:0", nil, 0, 0)
	if err != nil {
		t.Fatalf("kcp.ListenWithOptions() error = %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		defer close(accepted)
		conn, err := ln.AcceptKCP()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		conn.Read(buf)
	}()

	d, err := NewDialer(ln.Addr().String())
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

	<-accepted
}

func TestDialer_Dial_ContextAlreadyCancelled(t *testing.T) {
	t.Parallel()

	d, err := NewDialer("127.0.0.1:9000")
	if err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Dial(ctx); err == nil {
		t.Error("Dial() with cancelled context, want error")
	}
}
