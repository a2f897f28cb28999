// Package download writes fetched pages into the downloads directory.
package download

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gembrowse/addr"
	"gembrowse/gemini"
)

// Saver writes responses to disk.
type Saver struct {
	Dir string
}

// NewSaver returns a Saver for dir. An empty dir resolves to ~/Downloads,
// falling back to the working directory.
func NewSaver(dir string) *Saver {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, "Downloads")
		} else {
			dir = "."
		}
	}
	return &Saver{Dir: dir}
}

// Save writes the response body under a name derived from the address and
// returns the path written.
func (s *Saver) Save(a *addr.Address, r *gemini.Response) (string, error) {
	return s.write(a, r.Body)
}

// SaveRaw writes the reconstructed header line followed by the untouched
// body, for inspecting exactly what the server sent.
func (s *Saver) SaveRaw(a *addr.Address, r *gemini.Response) (string, error) {
	payload := append([]byte(r.Header()+"\r\n"), r.Body...)
	return s.write(a, payload)
}

func (s *Saver) write(a *addr.Address, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	target := filepath.Join(s.Dir, Filename(a))
	if _, err := os.Stat(target); err == nil {
		target = withSuffix(target)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}

// Filename derives a save name from the address path, defaulting to
// index.gmi for directory-like addresses.
func Filename(a *addr.Address) string {
	if a.Path == "" || strings.HasSuffix(a.Path, "/") {
		return "index.gmi"
	}
	base := path.Base(a.Path)
	if unesc, err := url.PathUnescape(base); err == nil {
		base = unesc
	}
	base = path.Base(base) // an escaped slash must not leave the directory
	if base == "/" || base == "." || base == ".." || base == "" {
		return "index.gmi"
	}
	return base
}

// withSuffix inserts a short random tag before the extension so an existing
// file is never overwritten.
func withSuffix(target string) string {
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.New().String()[:8], ext)
}
