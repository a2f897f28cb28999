package command

// Canonical is the line-buffered strategy for terminals without raw
// mode (dumb terminals, piped input). Every byte buffers until a line
// terminator; the terminal's own echo applies, so there is nothing to
// redraw per key.
type Canonical struct {
	buf    []byte
	prompt bool
	cr     bool
}

// NewCanonical returns the line-buffered strategy.
func NewCanonical() *Canonical {
	return &Canonical{}
}

// Name returns the strategy name.
func (c *Canonical) Name() string { return "canonical" }

// Feed processes one read of raw bytes.
func (c *Canonical) Feed(buf []byte, n int) []Action {
	var acts []Action
	for _, b := range buf[:n] {
		switch {
		case b == '\n':
			if c.cr {
				c.cr = false
				continue
			}
			acts = append(acts, c.submit())
		case b == '\r':
			c.cr = true
			acts = append(acts, c.submit())
		case b == 0x7f || b == 0x08:
			c.cr = false
			if len(c.buf) > 0 {
				c.buf = c.buf[:len(c.buf)-1]
			}
		case b >= 32 && b < 127:
			c.cr = false
			c.buf = append(c.buf, b)
		default:
			c.cr = false
		}
	}
	return acts
}

func (c *Canonical) submit() Action {
	line := string(c.buf)
	c.buf = c.buf[:0]
	if c.prompt {
		return promptLine(line)
	}
	return parseLine(line)
}

// Line returns the buffered line so far.
func (c *Canonical) Line() string { return string(c.buf) }

// Cursor returns the cursor position, always the end of the line.
func (c *Canonical) Cursor() int { return len(c.buf) }

// Prefill replaces the buffered line.
func (c *Canonical) Prefill(s string) {
	c.buf = append(c.buf[:0], s...)
}

// SetPrompt toggles answer entry for a server input prompt.
func (c *Canonical) SetPrompt(active bool) {
	c.prompt = active
	c.buf = c.buf[:0]
}

// Reset discards all buffered state.
func (c *Canonical) Reset() {
	c.buf = c.buf[:0]
	c.prompt = false
	c.cr = false
}
