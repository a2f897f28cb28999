package addr

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // expected String()
	}{
		{"bare host", "gemini://example.org", "gemini://example.org"},
		{"with path", "gemini://example.org/docs/spec.gmi", "gemini://example.org/docs/spec.gmi"},
		{"uppercase scheme and host", "GEMINI://Example.ORG/Docs", "gemini://example.org/Docs"},
		{"default port stripped", "gemini://example.org:1965/", "gemini://example.org/"},
		{"custom port kept", "gemini://example.org:1966/", "gemini://example.org:1966/"},
		{"query kept", "gemini://example.org/search?hello%20there", "gemini://example.org/search?hello%20there"},
		{"internal page", "internal://home", "internal://home"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.raw, err)
			}
			if a.String() != tt.want {
				t.Errorf("Parse(%q) = %q, expected %q", tt.raw, a.String(), tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"http scheme", "http://example.org/", ErrUnsupportedScheme},
		{"gopher scheme", "gopher://example.org/", ErrUnsupportedScheme},
		{"relative without base", "/docs/spec.gmi", ErrInvalidSyntax},
		{"missing host", "gemini:///docs", ErrInvalidSyntax},
		{"userinfo", "gemini://user@example.org/", ErrInvalidSyntax},
		{"bad port", "gemini://example.org:0/", ErrInvalidSyntax},
		{"over length limit", "gemini://example.org/" + strings.Repeat("a", MaxRequestLen), ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, expected error", tt.raw)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, expected %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	base, err := Parse("gemini://example.org/docs/index.gmi")
	if err != nil {
		t.Fatalf("parsing base: %v", err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute wins", "gemini://other.org/x", "gemini://other.org/x"},
		{"root relative", "/foo.gmi", "gemini://example.org/foo.gmi"},
		{"sibling relative", "spec.gmi", "gemini://example.org/docs/spec.gmi"},
		{"dot segments collapse", "../a/./b.gmi", "gemini://example.org/a/b.gmi"},
		{"fragment only", "#top", "gemini://example.org/docs/index.gmi#top"},
		{"empty ref is base", "", "gemini://example.org/docs/index.gmi"},
		{"query replaces", "?answer", "gemini://example.org/docs/index.gmi?answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Resolve(base, tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.ref, err)
			}
			if a.String() != tt.want {
				t.Errorf("Resolve(%q) = %q, expected %q", tt.ref, a.String(), tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	base, _ := Parse("gemini://example.org/docs/")
	a, err := Resolve(base, "spec.gmi")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	b, err := Resolve(base, a.String())
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if a.Key() != b.Key() {
		t.Errorf("resolution not idempotent: %q vs %q", a.Key(), b.Key())
	}
}

func TestKeyCanonicalization(t *testing.T) {
	variants := []string{
		"gemini://example.org",
		"gemini://example.org/",
		"gemini://example.org:1965",
		"gemini://example.org:1965/",
		"gemini://EXAMPLE.org/",
	}
	first, err := Parse(variants[0])
	if err != nil {
		t.Fatalf("parsing %q: %v", variants[0], err)
	}
	for _, v := range variants[1:] {
		a, err := Parse(v)
		if err != nil {
			t.Fatalf("parsing %q: %v", v, err)
		}
		if a.Key() != first.Key() {
			t.Errorf("Key(%q) = %q, expected %q", v, a.Key(), first.Key())
		}
	}

	// Fragments never reach the key, queries do.
	withFrag, _ := Parse("gemini://example.org/page#section")
	without, _ := Parse("gemini://example.org/page")
	if withFrag.Key() != without.Key() {
		t.Errorf("fragment leaked into key: %q", withFrag.Key())
	}
	withQuery, _ := Parse("gemini://example.org/page?q")
	if withQuery.Key() == without.Key() {
		t.Error("query ignored by key")
	}
}

func TestPunycodeHost(t *testing.T) {
	a, err := Parse("gemini://bücher.example/")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if a.Host != "xn--bcher-kva.example" {
		t.Errorf("host = %q, expected punycoded form", a.Host)
	}
}

func TestHostPort(t *testing.T) {
	a, _ := Parse("gemini://example.org/")
	if a.HostPort() != "example.org:1965" {
		t.Errorf("HostPort() = %q, expected default port", a.HostPort())
	}
	b, _ := Parse("gemini://example.org:1966/")
	if b.HostPort() != "example.org:1966" {
		t.Errorf("HostPort() = %q, expected explicit port", b.HostPort())
	}
}

func TestWithQuery(t *testing.T) {
	a, _ := Parse("gemini://example.org/input#frag")
	b := a.WithQuery("hello%20world")
	if b.String() != "gemini://example.org/input?hello%20world" {
		t.Errorf("WithQuery = %q", b.String())
	}
	if a.Query != "" {
		t.Error("WithQuery mutated the receiver")
	}
}
