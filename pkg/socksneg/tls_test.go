package socksneg

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// selfSignedCert builds a minimal self-signed certificate for "example.com",
// good enough to drive a real tls.Server/tls.Client handshake in-process.
func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "example.com"},
		DNSNames:     []string{"example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
}

func TestTLSStartEndpoint_HandshakeAndHandoff(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	cert := selfSignedCert(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv := tls.Server(server, &tls.Config{Certificates: []tls.Certificate{cert}})
		if err := srv.Handshake(); err != nil {
			t.Errorf("server handshake: %v", err)
			return
		}
		srv.Write([]byte("hello"))
		srv.Close()
	}()

	ep := &TLSStartEndpoint{
		Inner:  pipeEndpoint{conn: client},
		Config: &tls.Config{InsecureSkipVerify: true},
	}

	conn, err := ep.Connect(context.Background(), PassThrough)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 5)
	if _, err := conn.Read(buf); err != nil {
		t.Fatalf("reading through TLS: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("read %q, want %q", buf, "hello")
	}

	<-done
}

func TestTLSStartEndpoint_ServerNameDefaultsFromPeer(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	cert := selfSignedCert(t)

	go func() {
		srv := tls.Server(server, &tls.Config{Certificates: []tls.Certificate{cert}})
		srv.Handshake()
		srv.Close()
	}()

	ep := &TLSStartEndpoint{
		Inner: pipeEndpoint{conn: client},
		Config: &tls.Config{
			RootCAs: certPool(t, cert),
		},
	}

	conn, err := ep.Connect(context.Background(), PassThrough)
	if err != nil {
		t.Fatalf("Connect() error = %v, want success verifying example.com against its own cert", err)
	}
	conn.Close()
}

func certPool(t *testing.T, cert tls.Certificate) *x509.CertPool {
	t.Helper()
	pool := x509.NewCertPool()
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	pool.AddCert(leaf)
	return pool
}
