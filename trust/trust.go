// Package trust decides whether to accept a server certificate.
package trust

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Policy checks the certificate presented by a host during the handshake.
// A nil error accepts the connection.
type Policy interface {
	Check(host string, cert *x509.Certificate) error
}

// AcceptAll accepts any certificate. Servers on this network commonly use
// self-signed certificates, so this is the default policy.
type AcceptAll struct{}

func (AcceptAll) Check(string, *x509.Certificate) error { return nil }

// Pin records the first certificate seen for a host.
type Pin struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeen   time.Time `json:"first_seen"`
}

// Ledger pins the first certificate seen per host and rejects changes.
type Ledger struct {
	path string
	mu   sync.Mutex
	Pins map[string]Pin `json:"pins"`
}

// ledgerPath returns the ledger file path.
func ledgerPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gembrowse", "known_hosts.json"), nil
}

// LoadLedger reads the pin ledger from disk, starting empty if absent.
func LoadLedger() (*Ledger, error) {
	path, err := ledgerPath()
	if err != nil {
		return nil, err
	}
	return LoadLedgerFrom(path)
}

// LoadLedgerFrom reads a pin ledger from the given path.
func LoadLedgerFrom(path string) (*Ledger, error) {
	l := &Ledger{path: path, Pins: make(map[string]Pin)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if l.Pins == nil {
		l.Pins = make(map[string]Pin)
	}
	return l, nil
}

// save writes the ledger to disk.
func (l *Ledger) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}

// Check pins an unknown host's certificate and rejects a known host whose
// certificate no longer matches the pin.
func (l *Ledger) Check(host string, cert *x509.Certificate) error {
	fp := Fingerprint(cert)

	l.mu.Lock()
	defer l.mu.Unlock()

	pin, known := l.Pins[host]
	if !known {
		l.Pins[host] = Pin{Fingerprint: fp, FirstSeen: time.Now()}
		if err := l.save(); err != nil {
			return fmt.Errorf("saving pin for %s: %w", host, err)
		}
		return nil
	}
	if pin.Fingerprint != fp {
		return fmt.Errorf("certificate for %s changed: fingerprint %s does not match pin %s", host, fp, pin.Fingerprint)
	}
	return nil
}

// Len returns the number of pinned hosts.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Pins)
}

// Fingerprint returns the SHA-256 digest of the certificate in hex.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// ByName returns the policy selected by configuration: "tofu" pins
// certificates in the ledger, anything else accepts unconditionally.
func ByName(name string) (Policy, error) {
	switch name {
	case "tofu":
		return LoadLedger()
	default:
		return AcceptAll{}, nil
	}
}
