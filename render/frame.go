package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Frame carries everything besides the page rows that one redraw needs.
type Frame struct {
	Status      string   // layout state cell: INITIAL, RESIZE, NORMAL
	TOC         bool     // contents view active
	Alerts      []string // transient message lines shown under the page
	Prompt      string   // prompt string, e.g. " >>> "
	Input       string   // current line buffer for echo
	Masked      bool     // echo the buffer as asterisks
	Cursor      int      // byte offset of the cursor within Input
	ASCII       bool     // ASCII gutter instead of the box-drawing one
	TermControl bool     // full screen control: clear, CRLF, prompt echo
	Height      int
}

// Compose builds one full screen update: the status row, the visible page
// rows behind the gutter, past-the-end padding, alert lines, and the
// prompt row with the cursor left where the editor says it is. With
// TermControl off it degrades to a plain print of the same content for
// line-buffered terminals.
func Compose(w *Wrapped, scroll int, f Frame) string {
	joiner := "\n"
	if f.TermControl {
		joiner = "\r\n"
	}

	var sb strings.Builder
	if f.TermControl {
		sb.WriteString(ClearScreen)
		sb.WriteString(CursorHome)
	}

	if w != nil {
		scroll = w.ClampScroll(scroll)

		toc := ""
		if f.TOC {
			toc = " [TOC]"
		}
		fmt.Fprintf(&sb, "[%s]%s #%d/%d%s", f.Status, toc, scroll+1, w.Len(), joiner)

		height := f.Height - pageLinesSubtract - len(f.Alerts)
		if height < 0 {
			height = 0
		}
		gutter := "  │ "
		if f.ASCII {
			gutter = "  | "
		}

		end := scroll + height
		if end > w.Len() {
			end = w.Len()
		}
		shown := 0
		for _, row := range w.Rows[scroll:end] {
			sb.WriteString(gutter)
			writeCells(&sb, row)
			sb.WriteString(joiner)
			shown++
		}
		for ; shown < height; shown++ {
			sb.WriteString("  ^")
			sb.WriteString(joiner)
		}
	}

	for _, alert := range f.Alerts {
		sb.WriteString(alert)
		sb.WriteString(joiner)
	}

	if f.TermControl {
		cursor := f.Cursor
		if cursor < 0 {
			cursor = 0
		}
		if cursor > len(f.Input) {
			cursor = len(f.Input)
		}
		echo := promptEcho(f.Input, f.Masked)
		sb.WriteString(f.Prompt)
		sb.WriteString(echo)
		if back := StringWidth(echo) - StringWidth(promptEcho(f.Input[:cursor], f.Masked)); back > 0 {
			fmt.Fprintf(&sb, "\033[%dD", back)
		}
	}
	return sb.String()
}

// promptEcho renders the line buffer for display: control bytes show as
// `?`, and a sensitive buffer shows as one asterisk per rune.
func promptEcho(input string, masked bool) string {
	if masked {
		return strings.Repeat("*", utf8.RuneCountInString(input))
	}
	var b strings.Builder
	for _, r := range input {
		if r < 0x20 {
			b.WriteRune('?')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeCells(sb *strings.Builder, row []Cell) {
	var current Style
	for _, c := range row {
		if c.Style != current {
			sb.WriteString(styleSequence(c.Style))
			current = c.Style
		}
		sb.WriteRune(c.Rune)
	}
	if current != (Style{}) {
		sb.WriteString("\033[0m")
	}
}
