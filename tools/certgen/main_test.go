package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	paths, err := run(dir, []string{"localhost", " 127.0.0.1 "}, time.Hour)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("paths = %v", paths)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatalf("server pair does not load: %v", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}

	caPEM, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		t.Fatal("ca.crt is not valid PEM")
	}
	if _, err := leaf.Verify(x509.VerifyOptions{DNSName: "127.0.0.1", Roots: pool}); err != nil {
		t.Errorf("server certificate does not verify for 127.0.0.1: %v", err)
	}
}

func TestRun_NoHosts(t *testing.T) {
	if _, err := run(t.TempDir(), nil, time.Hour); err == nil {
		t.Error("expected error without hosts")
	}
}
