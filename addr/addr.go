// Package addr parses and resolves capsule addresses.
package addr

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// DefaultPort is the well-known port for the gemini scheme.
const DefaultPort = 1965

// MaxRequestLen is the longest request URL a server is required to accept.
const MaxRequestLen = 1024

var (
	ErrInvalidSyntax     = errors.New("invalid address syntax")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrTooLong           = errors.New("address exceeds maximum length")
)

// Address is the structured form of a URL. Construct one with Parse or
// Resolve; the fields are normalized (lowercase scheme and host, punycoded
// hostname, default port stripped).
type Address struct {
	Scheme   string
	Host     string
	Port     int // 0 means the scheme default
	Path     string
	Query    string
	Fragment string
}

// Parse parses an absolute URL string.
func Parse(raw string) (*Address, error) {
	return Resolve(nil, raw)
}

// Resolve resolves a possibly relative reference against a base address.
// base may be nil, in which case ref must be absolute.
func Resolve(base *Address, ref string) (*Address, error) {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", ref, ErrInvalidSyntax)
	}

	var resolved *url.URL
	if base != nil {
		bu, err := url.Parse(base.String())
		if err != nil {
			return nil, fmt.Errorf("parsing base %q: %w", base, ErrInvalidSyntax)
		}
		resolved = bu.ResolveReference(u)
	} else {
		if !u.IsAbs() {
			return nil, fmt.Errorf("relative reference %q without a base: %w", ref, ErrInvalidSyntax)
		}
		resolved = u
	}

	return fromURL(resolved)
}

func fromURL(u *url.URL) (*Address, error) {
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "gemini", "internal":
	default:
		return nil, fmt.Errorf("%q: %w", u.Scheme, ErrUnsupportedScheme)
	}

	if u.User != nil {
		return nil, fmt.Errorf("userinfo not allowed in %q: %w", u.String(), ErrInvalidSyntax)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("missing host in %q: %w", u.String(), ErrInvalidSyntax)
	}
	if !isASCII(host) {
		punycoded, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, fmt.Errorf("hostname %q: %w", u.Hostname(), ErrInvalidSyntax)
		}
		host = punycoded
	}

	var err error
	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("port %q: %w", p, ErrInvalidSyntax)
		}
		if scheme == "gemini" && port == DefaultPort {
			port = 0
		}
	}

	a := &Address{
		Scheme:   scheme,
		Host:     host,
		Port:     port,
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	if len(a.Request()) > MaxRequestLen {
		return nil, fmt.Errorf("%q: %w", a.Request(), ErrTooLong)
	}
	return a, nil
}

// String returns the full display form, including any fragment.
func (a *Address) String() string {
	s := a.Request()
	if a.Fragment != "" {
		s += "#" + a.Fragment
	}
	return s
}

// Request returns the absolute URL sent on the wire: no fragment, default
// port omitted.
func (a *Address) Request() string {
	var b strings.Builder
	b.WriteString(a.Scheme)
	b.WriteString("://")
	b.WriteString(a.Host)
	if a.Port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(a.Port))
	}
	b.WriteString(a.Path)
	if a.Query != "" {
		b.WriteString("?")
		b.WriteString(a.Query)
	}
	return b.String()
}

// Key returns the canonical identity used by the cache and history.
// Addresses differing only by an empty path versus "/", an explicit default
// port, or a fragment share a key.
func (a *Address) Key() string {
	var b strings.Builder
	b.WriteString(a.Scheme)
	b.WriteString("://")
	b.WriteString(a.Host)
	if a.Port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(a.Port))
	}
	if a.Path == "" {
		b.WriteString("/")
	} else {
		b.WriteString(a.Path)
	}
	if a.Query != "" {
		b.WriteString("?")
		b.WriteString(a.Query)
	}
	return b.String()
}

// HostPort returns the dial target with the default port applied.
func (a *Address) HostPort() string {
	port := a.Port
	if port == 0 {
		port = DefaultPort
	}
	host := a.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]" // IPv6 literal
	}
	return host + ":" + strconv.Itoa(port)
}

// WithQuery returns a copy of the address carrying the given raw query.
func (a *Address) WithQuery(raw string) *Address {
	c := *a
	c.Query = raw
	c.Fragment = ""
	return &c
}

// IsInternal reports whether the address names a client-generated page.
func (a *Address) IsInternal() bool {
	return a.Scheme == "internal"
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
