package trust

import (
	"crypto/x509"
	"path/filepath"
	"strings"
	"testing"
)

func fakeCert(raw string) *x509.Certificate {
	return &x509.Certificate{Raw: []byte(raw)}
}

func TestAcceptAll(t *testing.T) {
	var p Policy = AcceptAll{}
	if err := p.Check("example.org", fakeCert("anything")); err != nil {
		t.Errorf("AcceptAll rejected a certificate: %v", err)
	}
}

func TestLedgerPinsFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts.json")
	l, err := LoadLedgerFrom(path)
	if err != nil {
		t.Fatalf("loading empty ledger: %v", err)
	}

	cert := fakeCert("cert-one")
	if err := l.Check("example.org", cert); err != nil {
		t.Fatalf("first use rejected: %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 pin, got %d", l.Len())
	}

	// Same certificate passes again.
	if err := l.Check("example.org", cert); err != nil {
		t.Errorf("pinned certificate rejected: %v", err)
	}

	// A different certificate for the same host is rejected.
	err = l.Check("example.org", fakeCert("cert-two"))
	if err == nil {
		t.Fatal("changed certificate accepted")
	}
	if !strings.Contains(err.Error(), "example.org") {
		t.Errorf("error does not name the host: %v", err)
	}

	// Other hosts are unaffected.
	if err := l.Check("other.org", fakeCert("cert-two")); err != nil {
		t.Errorf("unrelated host rejected: %v", err)
	}
}

func TestLedgerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts.json")
	l, _ := LoadLedgerFrom(path)
	if err := l.Check("example.org", fakeCert("cert-one")); err != nil {
		t.Fatalf("pinning: %v", err)
	}

	reloaded, err := LoadLedgerFrom(path)
	if err != nil {
		t.Fatalf("reloading ledger: %v", err)
	}
	if err := reloaded.Check("example.org", fakeCert("cert-one")); err != nil {
		t.Errorf("reloaded ledger lost the pin: %v", err)
	}
	if err := reloaded.Check("example.org", fakeCert("cert-two")); err == nil {
		t.Error("reloaded ledger accepted a changed certificate")
	}
}

func TestByName(t *testing.T) {
	p, err := ByName("accept-all")
	if err != nil {
		t.Fatalf("ByName returned error: %v", err)
	}
	if _, ok := p.(AcceptAll); !ok {
		t.Errorf("expected AcceptAll, got %T", p)
	}
}
