package command

// editor is a single-line text buffer with cursor tracking, shared by
// the two strategies for command and prompt-answer entry.
type editor struct {
	text   []byte
	cursor int
}

func newEditor() *editor {
	return &editor{}
}

// Text returns the current text.
func (e *editor) Text() string {
	return string(e.text)
}

// Cursor returns the current cursor position.
func (e *editor) Cursor() int {
	return e.cursor
}

// Len returns the length of the text.
func (e *editor) Len() int {
	return len(e.text)
}

// Clear resets the editor to empty state.
func (e *editor) Clear() {
	e.text = e.text[:0]
	e.cursor = 0
}

// Set replaces the text and moves cursor to end.
func (e *editor) Set(text string) {
	e.text = []byte(text)
	e.cursor = len(e.text)
}

// Insert adds a character at the cursor position.
func (e *editor) Insert(ch byte) {
	e.text = append(e.text, 0)
	copy(e.text[e.cursor+1:], e.text[e.cursor:])
	e.text[e.cursor] = ch
	e.cursor++
}

// DeleteBackward removes the character before the cursor (backspace).
// Returns true if a character was deleted.
func (e *editor) DeleteBackward() bool {
	if e.cursor == 0 {
		return false
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
	return true
}

// DeleteForward removes the character at the cursor (delete).
// Returns true if a character was deleted.
func (e *editor) DeleteForward() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
	return true
}

// Left moves cursor one character left. Returns true if it moved.
func (e *editor) Left() bool {
	if e.cursor == 0 {
		return false
	}
	e.cursor--
	return true
}

// Right moves cursor one character right. Returns true if it moved.
func (e *editor) Right() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.cursor++
	return true
}

// Home moves cursor to the beginning of the line.
func (e *editor) Home() {
	e.cursor = 0
}

// End moves cursor to the end of the line.
func (e *editor) End() {
	e.cursor = len(e.text)
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// charClass groups bytes for word motions.
// 0 = whitespace, 1 = word char, 2 = punctuation/other
func charClass(b byte) int {
	if b == ' ' || b == '\t' {
		return 0
	}
	if isWordChar(b) {
		return 1
	}
	return 2
}

// wordBoundaryLeft finds the position of the previous word boundary.
func (e *editor) wordBoundaryLeft() int {
	if e.cursor == 0 {
		return 0
	}
	i := e.cursor - 1
	for i > 0 && charClass(e.text[i]) == 0 {
		i--
	}
	if i == 0 {
		return 0
	}
	class := charClass(e.text[i])
	for i > 0 && charClass(e.text[i-1]) == class {
		i--
	}
	return i
}

// wordBoundaryRight finds the position of the next word boundary.
func (e *editor) wordBoundaryRight() int {
	if e.cursor >= len(e.text) {
		return len(e.text)
	}
	i := e.cursor
	class := charClass(e.text[i])
	for i < len(e.text) && charClass(e.text[i]) == class {
		i++
	}
	for i < len(e.text) && charClass(e.text[i]) == 0 {
		i++
	}
	return i
}

// WordLeft moves cursor to the previous word boundary.
func (e *editor) WordLeft() {
	e.cursor = e.wordBoundaryLeft()
}

// WordRight moves cursor to the next word boundary.
func (e *editor) WordRight() {
	e.cursor = e.wordBoundaryRight()
}

// DeleteWordBackward deletes from cursor to the previous word boundary.
func (e *editor) DeleteWordBackward() {
	newPos := e.wordBoundaryLeft()
	e.text = append(e.text[:newPos], e.text[e.cursor:]...)
	e.cursor = newPos
}

// DeleteWordForward deletes from cursor to the next word boundary.
func (e *editor) DeleteWordForward() {
	newPos := e.wordBoundaryRight()
	e.text = append(e.text[:e.cursor], e.text[newPos:]...)
}

// KillToEnd deletes from cursor to end of line.
func (e *editor) KillToEnd() {
	e.text = e.text[:e.cursor]
}

// KillToStart deletes from beginning to cursor.
func (e *editor) KillToStart() {
	e.text = e.text[e.cursor:]
	e.cursor = 0
}

// Transpose swaps the character before the cursor with the one at the
// cursor. At the end of the line it swaps the last two characters.
func (e *editor) Transpose() {
	if e.cursor == 0 || len(e.text) < 2 {
		return
	}
	pos := e.cursor
	if pos == len(e.text) {
		pos--
	}
	if pos > 0 {
		e.text[pos-1], e.text[pos] = e.text[pos], e.text[pos-1]
		if e.cursor < len(e.text) {
			e.cursor++
		}
	}
}
