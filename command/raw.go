package command

// Raw is the immediate single-key strategy for raw-mode terminals.
// While no line is being edited, single-letter commands and digits
// dispatch on keypress; any other printable starts a visible command
// line completed with Enter. Multi-digit link numbers and commands
// shadowed by a quick key are reached by starting the line with a
// space. While a server prompt is active every key buffers into the
// answer line instead.
type Raw struct {
	ed       *editor
	entering bool
	prompt   bool
}

// NewRaw returns the raw-mode strategy.
func NewRaw() *Raw {
	return &Raw{ed: newEditor()}
}

// Name returns the strategy name.
func (r *Raw) Name() string { return "raw" }

// Line returns the in-progress command or answer line.
func (r *Raw) Line() string { return r.ed.Text() }

// Cursor returns the cursor position within Line.
func (r *Raw) Cursor() int { return r.ed.Cursor() }

// Prefill replaces the command line and enters line entry.
func (r *Raw) Prefill(s string) {
	r.ed.Set(s)
	r.entering = true
}

// SetPrompt toggles answer entry for a server input prompt.
func (r *Raw) SetPrompt(active bool) {
	r.prompt = active
	r.ed.Clear()
	r.entering = false
}

// Reset discards all buffered state.
func (r *Raw) Reset() {
	r.ed.Clear()
	r.entering = false
	r.prompt = false
}

// Feed processes one read of raw bytes.
func (r *Raw) Feed(buf []byte, n int) []Action {
	if n == 0 {
		return nil
	}
	if buf[0] == 0x1b {
		return r.escape(buf, n)
	}
	var acts []Action
	for _, c := range buf[:n] {
		if a := r.key(c); a.Kind != KindNone {
			acts = append(acts, a)
		}
	}
	return acts
}

func (r *Raw) editing() bool { return r.prompt || r.entering }

// escape handles a whole escape sequence read in one go.
func (r *Raw) escape(buf []byte, n int) []Action {
	if n >= 3 && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			if !r.editing() {
				return []Action{{Kind: KindScrollUp}}
			}
		case 'B':
			if !r.editing() {
				return []Action{{Kind: KindScrollDown}}
			}
		case 'C':
			if r.editing() {
				r.ed.Right()
			}
		case 'D':
			if r.editing() {
				r.ed.Left()
			}
		}
		return nil
	}

	if n == 1 {
		// bare Escape: dismiss the prompt, or abandon the line
		if r.prompt {
			r.ed.Clear()
			return []Action{{Kind: KindDismiss}}
		}
		r.ed.Clear()
		r.entering = false
		return nil
	}

	if r.editing() {
		switch buf[1] {
		case 0x7f: // Alt+Backspace
			r.ed.DeleteWordBackward()
		case 'b', 'B': // Alt+B
			r.ed.WordLeft()
		case 'f', 'F': // Alt+F
			r.ed.WordRight()
		case 'd', 'D': // Alt+D
			r.ed.DeleteWordForward()
		}
	}
	return nil
}

// key handles one non-escape byte.
func (r *Raw) key(c byte) Action {
	if r.editing() {
		return r.edit(c)
	}

	switch {
	case c == '\r' || c == '\n':
		return Action{Kind: KindScrollDown}
	case c >= '0' && c <= '9':
		return Action{Kind: KindFollowLink, N: int(c - '0')}
	case c == 'u':
		return Action{Kind: KindHalfUp}
	case c == 'd':
		return Action{Kind: KindHalfDown}
	case c == 'q':
		return Action{Kind: KindQuit}
	case c == 't':
		return Action{Kind: KindToggleTOC}
	case c == 'b':
		return Action{Kind: KindBack}
	case c == 'f':
		return Action{Kind: KindForward}
	case c == 'h':
		return Action{Kind: KindHistory}
	case c == 'e':
		return Action{Kind: KindEditAddress}
	case c == '?':
		return Action{Kind: KindHelp}
	case c == 'G':
		return Action{Kind: KindBottom}
	case c >= 32 && c < 127:
		r.entering = true
		r.ed.Clear()
		r.ed.Insert(c)
	}
	return Action{}
}

// edit feeds one byte to the line editor, emacs-style.
func (r *Raw) edit(c byte) Action {
	switch {
	case c == '\r' || c == '\n':
		line := r.ed.Text()
		r.ed.Clear()
		if r.prompt {
			return promptLine(line)
		}
		r.entering = false
		return parseLine(line)

	case c == 0x7f || c == 0x08: // Backspace
		r.ed.DeleteBackward()
		if !r.prompt && r.ed.Len() == 0 {
			r.entering = false
		}

	case c == 0x01: // Ctrl+A
		r.ed.Home()
	case c == 0x05: // Ctrl+E
		r.ed.End()
	case c == 0x02: // Ctrl+B
		r.ed.Left()
	case c == 0x06: // Ctrl+F
		r.ed.Right()
	case c == 0x04: // Ctrl+D
		r.ed.DeleteForward()
	case c == 0x0b: // Ctrl+K
		r.ed.KillToEnd()
	case c == 0x15: // Ctrl+U
		r.ed.KillToStart()
	case c == 0x17: // Ctrl+W
		r.ed.DeleteWordBackward()
	case c == 0x14: // Ctrl+T
		r.ed.Transpose()

	case c >= 32 && c < 127:
		r.ed.Insert(c)
	}
	return Action{}
}
