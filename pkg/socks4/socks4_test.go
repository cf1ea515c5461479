package socks4

import (
	"bytes"
	"net/netip"
	"testing"
)

func TestAppendConnect_IPv4Literal(t *testing.T) {
	t.Parallel()

	buf, err := AppendConnect(nil, "192.168.1.1", 80, "alice")
	if err != nil {
		t.Fatalf("AppendConnect() error = %v", err)
	}

	want := []byte{Version, byte(CmdConnect), 0x00, 0x50, 192, 168, 1, 1}
	want = append(want, "alice"...)
	want = append(want, 0x00)

	if !bytes.Equal(buf, want) {
		t.Errorf("AppendConnect() = %x, want %x", buf, want)
	}
}

func TestAppendConnect_Socks4aHostname(t *testing.T) {
	t.Parallel()

	buf, err := AppendConnect(nil, "example.com", 443, "")
	if err != nil {
		t.Fatalf("AppendConnect() error = %v", err)
	}

	want := []byte{Version, byte(CmdConnect), 0x01, 0xbb, 0, 0, 0, 1, 0x00}
	want = append(want, "example.com"...)
	want = append(want, 0x00)

	if !bytes.Equal(buf, want) {
		t.Errorf("AppendConnect() = %x, want %x", buf, want)
	}
}

func TestAppendConnect_RejectsSocks4aReservedTarget(t *testing.T) {
	t.Parallel()

	if _, err := AppendConnect(nil, "0.0.0.42", 80, ""); err == nil {
		t.Error("AppendConnect(0.0.0.42) error = nil, want error")
	}
}

func TestReadResponse(t *testing.T) {
	t.Parallel()

	wire := []byte{0x00, byte(StatusGranted), 0x1f, 0x90, 10, 0, 0, 1}
	resp, err := ReadResponse(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}

	want := Response{Status: StatusGranted, Port: 8080, Addr: netip.AddrFrom4([4]byte{10, 0, 0, 1})}
	if resp != want {
		t.Errorf("ReadResponse() = %+v, want %+v", resp, want)
	}
}

func TestReadResponse_Rejected(t *testing.T) {
	t.Parallel()

	wire := []byte{0x00, byte(StatusRejectedOrFailed), 0x00, 0x00, 0, 0, 0, 0}
	resp, err := ReadResponse(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if resp.Status != StatusRejectedOrFailed {
		t.Errorf("Status = %v, want %v", resp.Status, StatusRejectedOrFailed)
	}
}

func TestReadResponse_Truncated(t *testing.T) {
	t.Parallel()

	if _, err := ReadResponse(bytes.NewReader([]byte{0x00})); err == nil {
		t.Error("ReadResponse() on truncated input, want error")
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	if StatusGranted.String() == "" {
		t.Error("StatusGranted.String() is empty")
	}
	if got := Status(0xAB).String(); got == "" {
		t.Error("unknown Status.String() is empty")
	}
}
