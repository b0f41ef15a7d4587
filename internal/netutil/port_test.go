package netutil

import (
	"net"
	"strings"
	"testing"
)

// grabAddr reserves a loopback port, releases it, and returns the address.
func grabAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestSelectBindAddrPrefersConfigured(t *testing.T) {
	addr := grabAddr(t)

	got, err := SelectBindAddr(addr, []string{"127.0.0.1:1"}, true)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != addr {
		t.Fatalf("SelectBindAddr() = %q, want configured %q", got, addr)
	}
}

func TestSelectBindAddrFallsBackToCandidate(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()
	freeAddr := grabAddr(t)

	got, err := SelectBindAddr(busy.Addr().String(), []string{busy.Addr().String(), freeAddr}, true)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != freeAddr {
		t.Fatalf("SelectBindAddr() = %q, want fallback %q", got, freeAddr)
	}
}

func TestSelectBindAddrNoFallbackWhenDisabled(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	_, err = SelectBindAddr(busy.Addr().String(), []string{grabAddr(t)}, false)
	if err == nil || !strings.Contains(err.Error(), "in use") {
		t.Fatalf("SelectBindAddr() error = %v, want in-use error", err)
	}
}

func TestSelectBindAddrAllBusy(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	_, err = SelectBindAddr(busy.Addr().String(), []string{busy.Addr().String()}, true)
	if err == nil || !strings.Contains(err.Error(), "sniffer") {
		t.Fatalf("SelectBindAddr() error = %v, want exhaustion error", err)
	}
}
