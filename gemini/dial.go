package gemini

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"gembrowse/trust"
)

// TLSDialer opens TLS streams to servers. Certificate chains are not
// verified against system roots; acceptance is delegated to the trust
// policy, matching the self-signed norm on this network.
type TLSDialer struct {
	Trust trust.Policy
}

// NewTLSDialer returns a dialer using the given trust policy.
func NewTLSDialer(p trust.Policy) *TLSDialer {
	return &TLSDialer{Trust: p}
}

// Dial opens a TLS stream to hostport with SNI set from the host part.
func (d *TLSDialer) Dial(ctx context.Context, hostport string) (io.ReadWriteCloser, error) {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", hostport, err)
	}

	cfg := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
	}
	if d.Trust != nil {
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return fmt.Errorf("no certificate presented by %s", host)
			}
			return d.Trust.Check(host, cs.PeerCertificates[0])
		}
	}

	td := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: Timeout()},
		Config:    cfg,
	}
	conn, err := td.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
