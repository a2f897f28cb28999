package render

import (
	"regexp"
	"strconv"
	"strings"

	"gembrowse/gemtext"
)

// Wrapped is a document laid out for one terminal width. Rows are display
// rows without the gutter; Starts holds the first row index of each source
// line so scroll positions survive a re-wrap.
type Wrapped struct {
	Rows   [][]Cell
	Starts []int
}

// Rows on a contents page look like `  [2] ## Section`; the number gets
// link styling so selection reads the same as following a link.
var tocRowRe = regexp.MustCompile(`^( *)\[(\d+)\] (#+)(.*)$`)

// WrapDocument lays a document out for a terminal of the given width.
// Words wrap on whitespace with leading indentation preserved; a word too
// wide for a row is hard-broken with a trailing continuation marker.
// tocRows enables the contents-page number styling for plain text rows.
func WrapDocument(d *gemtext.Document, width int, pal *Palette, tocRows bool) *Wrapped {
	cols := width - pageColSubtract
	if cols < 5 {
		cols = 5
	}

	rows := [][]Cell{{}}
	starts := make([]int, 0, len(d.Lines))

	for _, ln := range d.Lines {
		starts = append(starts, len(rows)-1)

		type chunk struct {
			prefix, word []Cell
		}
		var chunks []chunk
		var prefix, word []Cell
		for _, c := range styleLine(ln, pal, tocRows) {
			if c.Rune == ' ' || c.Rune == '\t' {
				if len(word) > 0 {
					chunks = append(chunks, chunk{prefix, word})
					prefix, word = nil, nil
				}
				prefix = append(prefix, c)
			} else {
				word = append(word, c)
			}
		}
		chunks = append(chunks, chunk{prefix, word})

		for _, ch := range chunks {
			last := len(rows) - 1
			if cellsWidth(rows[last])+cellsWidth(ch.prefix)+cellsWidth(ch.word) <= cols {
				rows[last] = append(append(rows[last], ch.prefix...), ch.word...)
				continue
			}

			// The word moves to its own row, dropping the whitespace
			// before it, and hard-breaks at cols-1 to leave room for
			// the continuation marker.
			w := ch.word
			for len(w) > 0 {
				cut := breakAt(w, cols-1)
				row := w[:cut:cut]
				w = w[cut:]
				if len(w) > 0 {
					row = append(row, Cell{Rune: '\\', Style: pal.Continuation})
				}
				if last = len(rows) - 1; len(rows[last]) == 0 {
					rows[last] = row
				} else {
					rows = append(rows, row)
				}
			}
		}
		rows = append(rows, []Cell{})
	}

	for len(rows) > 1 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return &Wrapped{Rows: rows, Starts: starts}
}

// Len returns the number of display rows, always at least one.
func (w *Wrapped) Len() int { return len(w.Rows) }

// ClampScroll bounds a scroll position to the valid row range.
func (w *Wrapped) ClampScroll(n int) int {
	if n > len(w.Rows)-1 {
		n = len(w.Rows) - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}

// RemapScroll translates a scroll position valid for prev into the
// position here that keeps the same source line at the top of the screen.
func (w *Wrapped) RemapScroll(prev *Wrapped, scroll int) int {
	if prev == nil || len(prev.Starts) == 0 || len(w.Starts) == 0 {
		return 0
	}
	idx := 0
	for i, start := range prev.Starts {
		if start > scroll {
			break
		}
		idx = i
	}
	if idx > len(w.Starts)-1 {
		idx = len(w.Starts) - 1
	}
	return w.ClampScroll(w.Starts[idx])
}

// HalfStep is the row count a half-page scroll moves: half the terminal
// height, never less than two.
func HalfStep(height int) int {
	if h := height / 2; h > 2 {
		return h
	}
	return 2
}

func styleLine(ln gemtext.Line, pal *Palette, tocRows bool) []Cell {
	switch ln.Kind {
	case gemtext.LineLink:
		var cs []Cell
		cs = appendCells(cs, "=> [", pal.LinkSyntax)
		cs = appendCells(cs, strconv.Itoa(ln.Link), pal.LinkNumber)
		cs = appendCells(cs, "]", pal.LinkSyntax)
		cs = appendCells(cs, ": "+ln.Text, pal.Text)
		return cs

	case gemtext.LineHeading:
		text := strings.Repeat("#", ln.Level)
		if ln.Text != "" {
			text += " " + ln.Text
		}
		return appendCells(nil, text, pal.Heading(ln.Level))

	case gemtext.LineQuote:
		return appendCells(nil, "> "+ln.Text, pal.Text)

	case gemtext.LineListItem:
		return appendCells(nil, "* "+ln.Text, pal.Text)

	default:
		if tocRows && ln.Kind == gemtext.LineText {
			if m := tocRowRe.FindStringSubmatch(ln.Text); m != nil {
				var cs []Cell
				cs = appendCells(cs, m[1], pal.Text)
				cs = appendCells(cs, "[", pal.LinkSyntax)
				cs = appendCells(cs, m[2], pal.LinkNumber)
				cs = appendCells(cs, "]", pal.LinkSyntax)
				cs = appendCells(cs, " ", pal.Text)
				cs = appendCells(cs, m[3]+m[4], pal.Heading(len(m[3])))
				return cs
			}
		}
		return appendCells(nil, ln.Text, pal.Text)
	}
}

func appendCells(cs []Cell, s string, style Style) []Cell {
	for _, r := range s {
		cs = append(cs, Cell{Rune: r, Style: style})
	}
	return cs
}

func cellsWidth(cs []Cell) int {
	w := 0
	for _, c := range cs {
		w += UnicodeWidth(c.Rune)
	}
	return w
}

// breakAt returns how many leading cells fit within max display columns,
// always consuming at least one.
func breakAt(cs []Cell, max int) int {
	w := 0
	for i, c := range cs {
		cw := UnicodeWidth(c.Rune)
		if w+cw > max && i > 0 {
			return i
		}
		w += cw
	}
	return len(cs)
}
