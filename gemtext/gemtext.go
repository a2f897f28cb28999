// Package gemtext builds the line-oriented document model from a response
// body: typed lines plus a numbered link table.
package gemtext

import (
	"fmt"
	"regexp"
	"strings"
)

// LineKind classifies a document line.
type LineKind int

const (
	LineText LineKind = iota
	LineLink
	LineHeading
	LineListItem
	LineQuote
	LinePreToggle
	LinePre
)

// Line is one display line of a document.
type Line struct {
	Kind  LineKind
	Text  string
	Level int // heading level, 1 to 3; deeper prefixes clamp
	Link  int // link number for LineLink, 0 otherwise
}

// Link is one entry in the document's link table. Numbers are assigned in
// document order starting at 1 and never change for the life of the
// document.
type Link struct {
	Number int
	Target string
	Label  string
}

// Document is the built model for one response body.
type Document struct {
	Lines     []Line
	Links     []Link
	MediaType string
	Opaque    bool // media the client cannot present as text
	Warnings  []string
}

// WarnUnterminatedPre reports a preformatting toggle left open at the end
// of input. The document is still usable.
const WarnUnterminatedPre = "preformatted block not terminated"

var linkRe = regexp.MustCompile(`^=>[ \t]*(\S+)[ \t]*(.*)$`)

// Build parses a body according to its media type. text/gemini gets full
// structure, any other text type becomes plain lines with no link table,
// and non-text media yields an opaque document.
func Build(body []byte, mediaType string) *Document {
	doc := &Document{MediaType: mediaType}

	switch {
	case mediaType == "" || mediaType == "text/gemini":
		doc.MediaType = "text/gemini"
	case strings.HasPrefix(mediaType, "text/"):
		for _, raw := range splitLines(body) {
			doc.Lines = append(doc.Lines, Line{Kind: LineText, Text: sanitize(raw)})
		}
		return doc
	default:
		doc.Opaque = true
		return doc
	}

	pre := false
	for _, raw := range splitLines(body) {
		switch {
		case strings.HasPrefix(raw, "```"):
			pre = !pre
			doc.Lines = append(doc.Lines, Line{Kind: LinePreToggle, Text: sanitize(strings.TrimSpace(raw[3:]))})

		case pre:
			doc.Lines = append(doc.Lines, Line{Kind: LinePre, Text: sanitize(raw)})

		case strings.HasPrefix(raw, "=>"):
			m := linkRe.FindStringSubmatch(raw)
			if m == nil {
				// A link line needs a target; degrade to text.
				doc.Lines = append(doc.Lines, Line{Kind: LineText, Text: sanitize(raw)})
				continue
			}
			label := strings.TrimSpace(m[2])
			if label == "" {
				label = m[1]
			}
			n := len(doc.Links) + 1
			doc.Links = append(doc.Links, Link{Number: n, Target: m[1], Label: label})
			doc.Lines = append(doc.Lines, Line{Kind: LineLink, Link: n, Text: sanitize(label)})

		case strings.HasPrefix(raw, "#"):
			level := 0
			for level < len(raw) && raw[level] == '#' {
				level++
			}
			text := sanitize(strings.TrimSpace(raw[level:]))
			if level > 3 {
				level = 3
			}
			doc.Lines = append(doc.Lines, Line{Kind: LineHeading, Level: level, Text: text})

		case strings.HasPrefix(raw, "* "):
			doc.Lines = append(doc.Lines, Line{Kind: LineListItem, Text: sanitize(raw[2:])})

		case strings.HasPrefix(raw, ">"):
			doc.Lines = append(doc.Lines, Line{Kind: LineQuote, Text: sanitize(strings.TrimPrefix(raw[1:], " "))})

		default:
			doc.Lines = append(doc.Lines, Line{Kind: LineText, Text: sanitize(raw)})
		}
	}

	if pre {
		doc.Warnings = append(doc.Warnings, WarnUnterminatedPre)
	}
	return doc
}

// Title returns the text of the first top-level heading, or "".
func (d *Document) Title() string {
	for _, ln := range d.Lines {
		if ln.Kind == LineHeading && ln.Level == 1 {
			return ln.Text
		}
	}
	return ""
}

// Headings returns the indexes of all heading lines.
func (d *Document) Headings() []int {
	var idx []int
	for i, ln := range d.Lines {
		if ln.Kind == LineHeading {
			idx = append(idx, i)
		}
	}
	return idx
}

// TableOfContents derives a contents page listing every heading as a
// numbered row, plus the parallel slice of source line indexes so a
// selection can scroll to its heading. Rows are plain text, not links;
// number selection while the contents page is shown is the caller's
// concern.
func TableOfContents(d *Document) (*Document, []int) {
	toc := &Document{MediaType: "text/gemini"}
	toc.Lines = append(toc.Lines,
		Line{Kind: LineHeading, Level: 1, Text: "Table of Contents"},
		Line{Kind: LineText},
	)

	var positions []int
	for i, ln := range d.Lines {
		if ln.Kind != LineHeading {
			continue
		}
		positions = append(positions, i)
		heading := strings.Repeat("#", ln.Level)
		if ln.Text != "" {
			heading += " " + ln.Text
		}
		num := fmt.Sprintf("[%d]", len(positions))
		toc.Lines = append(toc.Lines, Line{
			Kind: LineText,
			Text: fmt.Sprintf("%5s %s", num, heading),
		})
	}
	return toc, positions
}

// splitLines splits on CRLF when the body uses it, otherwise LF.
func splitLines(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	s := string(body)
	s = strings.TrimSuffix(s, "\n")
	if strings.Contains(s, "\r\n") {
		s = strings.TrimSuffix(s, "\r")
		return strings.Split(s, "\r\n")
	}
	return strings.Split(s, "\n")
}

// sanitize keeps display lines safe for a terminal: tabs become four
// spaces, other control bytes render as hex escapes.
func sanitize(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteString("    ")
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\x%02x", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
