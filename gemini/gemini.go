// Package gemini speaks the client side of the gemini protocol: one request
// line out, one header line plus an optional body back.
package gemini

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"

	"gembrowse/addr"
)

// Status codes the protocol defines.
const (
	StatusInput               = 10
	StatusSensitiveInput      = 11
	StatusSuccess             = 20
	StatusRedirectTemporary   = 30
	StatusRedirectPermanent   = 31
	StatusTemporaryFailure    = 40
	StatusServerUnavailable   = 41
	StatusCGIError            = 42
	StatusProxyError          = 43
	StatusSlowDown            = 44
	StatusPermanentFailure    = 50
	StatusNotFound            = 51
	StatusGone                = 52
	StatusProxyRequestRefused = 53
	StatusBadRequest          = 59
	StatusCertRequired        = 60
	StatusCertNotAuthorised   = 61
	StatusCertNotValid        = 62
)

// Class groups status codes by their leading digit.
type Class int

const (
	ClassInput        Class = 1
	ClassSuccess      Class = 2
	ClassRedirect     Class = 3
	ClassTempFailure  Class = 4
	ClassPermFailure  Class = 5
	ClassCertRequired Class = 6
)

func (c Class) String() string {
	switch c {
	case ClassInput:
		return "INPUT"
	case ClassSuccess:
		return "SUCCESS"
	case ClassRedirect:
		return "REDIRECT"
	case ClassTempFailure:
		return "TEMPORARY FAILURE"
	case ClassPermFailure:
		return "PERMANENT FAILURE"
	case ClassCertRequired:
		return "CLIENT CERTIFICATE REQUIRED"
	}
	return "UNKNOWN"
}

var statusText = map[int]string{
	StatusInput:               "INPUT",
	StatusSensitiveInput:      "SENSITIVE INPUT",
	StatusSuccess:             "SUCCESS",
	StatusRedirectTemporary:   "REDIRECT - TEMPORARY",
	StatusRedirectPermanent:   "REDIRECT - PERMANENT",
	StatusTemporaryFailure:    "TEMPORARY FAILURE",
	StatusServerUnavailable:   "SERVER UNAVAILABLE",
	StatusCGIError:            "CGI ERROR",
	StatusProxyError:          "PROXY ERROR",
	StatusSlowDown:            "SLOW DOWN",
	StatusPermanentFailure:    "PERMANENT FAILURE",
	StatusNotFound:            "NOT FOUND",
	StatusGone:                "GONE",
	StatusProxyRequestRefused: "PROXY REQUEST REFUSED",
	StatusBadRequest:          "BAD REQUEST",
	StatusCertRequired:        "CLIENT CERTIFICATE REQUIRED",
	StatusCertNotAuthorised:   "CERTIFICATE NOT AUTHORISED",
	StatusCertNotValid:        "CERTIFICATE NOT VALID",
}

// StatusText returns the name for a status code, falling back to the name
// of its class for codes the table does not know.
func StatusText(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return Class(code / 10).String()
}

var (
	ErrHeaderTooLong   = errors.New("response header too long")
	ErrMalformedHeader = errors.New("malformed response header")
	ErrUnknownStatus   = errors.New("unknown status code")
	ErrBodyTooLarge    = errors.New("response body too large")
	ErrRedirectLoop    = errors.New("redirect limit exceeded")
)

// DefaultMediaType is assumed when a success response carries no meta.
const DefaultMediaType = "text/gemini; charset=utf-8"

// maxMetaLen caps the meta portion of the header line.
const maxMetaLen = 1024

// Response is a single reply from a server.
type Response struct {
	Status    int
	Meta      string
	Body      []byte
	Addr      *addr.Address // address the response was fetched from
	FetchTime time.Duration
}

// Class returns the status class of the response.
func (r *Response) Class() Class {
	return Class(r.Status / 10)
}

// Header reconstructs the header line without its terminator.
func (r *Response) Header() string {
	return fmt.Sprintf("%d %s", r.Status, r.Meta)
}

// MediaType returns the media type from the meta field. An empty meta on a
// success response defaults to text/gemini.
func (r *Response) MediaType() string {
	meta := r.Meta
	if meta == "" && r.Class() == ClassSuccess {
		meta = DefaultMediaType
	}
	mt, _, _ := strings.Cut(meta, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Charset returns the charset parameter of the meta field, defaulting
// to utf-8.
func (r *Response) Charset() string {
	_, params, _ := strings.Cut(r.Meta, ";")
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), "charset") {
			return strings.ToLower(strings.Trim(strings.TrimSpace(v), `"`))
		}
	}
	return "utf-8"
}

// Text decodes the body to UTF-8 using the charset named in the meta field.
// On an unknown or broken charset the raw bytes are returned alongside the
// error so the caller can still show something.
func (r *Response) Text() (string, error) {
	cs := r.Charset()
	if cs == "utf-8" || cs == "us-ascii" || cs == "ascii" {
		return string(r.Body), nil
	}
	enc, err := ianaindex.IANA.Encoding(cs)
	if err != nil || enc == nil {
		return string(r.Body), fmt.Errorf("charset %q not supported", cs)
	}
	decoded, err := enc.NewDecoder().Bytes(r.Body)
	if err != nil {
		return string(r.Body), fmt.Errorf("decoding %s body: %w", cs, err)
	}
	return string(decoded), nil
}

// Options configures protocol behavior.
type Options struct {
	TimeoutSeconds int
	MaxBodyBytes   int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		TimeoutSeconds: 10,
		MaxBodyBytes:   32 << 20,
	}
}

// Package-level options (set via Configure)
var opts = DefaultOptions()

// Configure sets the package-level options.
func Configure(o Options) {
	if o.TimeoutSeconds > 0 {
		opts.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.MaxBodyBytes > 0 {
		opts.MaxBodyBytes = o.MaxBodyBytes
	}
}

// Timeout returns the currently configured timeout duration.
func Timeout() time.Duration {
	return time.Duration(opts.TimeoutSeconds) * time.Second
}

// Dialer provides the encrypted byte stream a request travels over.
type Dialer interface {
	Dial(ctx context.Context, hostport string) (io.ReadWriteCloser, error)
}

// Do performs a single request: dial, write the request line, read the
// response, close the stream.
func Do(ctx context.Context, d Dialer, a *addr.Address) (*Response, error) {
	start := time.Now()

	conn, err := d.Dial(ctx, a.HostPort())
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", a.HostPort(), err)
	}
	defer conn.Close()

	if nc, ok := conn.(net.Conn); ok {
		if dl, ok := ctx.Deadline(); ok {
			nc.SetDeadline(dl)
		}
		stop := context.AfterFunc(ctx, func() { nc.Close() })
		defer stop()
	}

	if _, err := io.WriteString(conn, a.Request()+"\r\n"); err != nil {
		return nil, fmt.Errorf("writing request to %s: %w", a.HostPort(), err)
	}

	resp, err := ReadResponse(conn, a)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	resp.FetchTime = time.Since(start)
	return resp, nil
}

// ReadResponse reads one response from the stream: a header line, then for
// success responses a body running to end of stream.
func ReadResponse(r io.Reader, a *addr.Address) (*Response, error) {
	br := bufio.NewReader(r)

	status, meta, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	resp := &Response{Status: status, Meta: meta, Addr: a}
	if resp.Class() != ClassSuccess {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(br, int64(opts.MaxBodyBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > opts.MaxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBodyTooLarge, opts.MaxBodyBytes)
	}
	resp.Body = body
	return resp, nil
}

// readHeader reads and parses the header line: two digits, an optional
// single space, then up to maxMetaLen bytes of meta, CRLF terminated.
func readHeader(br *bufio.Reader) (int, string, error) {
	// 2 digits + space + meta + CRLF
	limit := 2 + 1 + maxMetaLen + 2

	line := make([]byte, 0, 64)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return 0, "", fmt.Errorf("%w: connection closed before header", ErrMalformedHeader)
		}
		if err != nil {
			return 0, "", fmt.Errorf("reading header: %w", err)
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
		if len(line) > limit {
			return 0, "", ErrHeaderTooLong
		}
	}
	line = trimCR(line)

	if len(line) < 2 || !isDigit(line[0]) || !isDigit(line[1]) {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedHeader, string(line))
	}
	status := int(line[0]-'0')*10 + int(line[1]-'0')
	if status < 10 || status > 69 {
		return 0, "", fmt.Errorf("%w: %d", ErrUnknownStatus, status)
	}

	meta := line[2:]
	if len(meta) > 0 && meta[0] == ' ' {
		meta = meta[1:]
	}
	if len(meta) > maxMetaLen {
		return 0, "", ErrHeaderTooLong
	}
	return status, string(meta), nil
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
