// Package command converts terminal input into navigation actions.
// Two interchangeable strategies cover the two input contracts: Raw
// dispatches single keys immediately, Canonical buffers whole lines.
// Completed lines in either mode go through one shared parser so the
// action vocabulary cannot drift between modes.
package command

// Kind identifies a navigation action.
type Kind int

const (
	KindNone Kind = iota
	KindScrollDown
	KindScrollUp
	KindHalfDown
	KindHalfUp
	KindTop
	KindBottom
	KindQuit
	KindGo
	KindFollowLink
	KindShowAddress
	KindToggleTOC
	KindBack
	KindForward
	KindHistory
	KindReload
	KindHelp
	KindHome
	KindSave
	KindSaveRaw
	KindEditAddress
	KindSubmit
	KindDismiss
	KindUnknown
)

var kindNames = [...]string{
	KindNone:        "none",
	KindScrollDown:  "scroll-down",
	KindScrollUp:    "scroll-up",
	KindHalfDown:    "half-down",
	KindHalfUp:      "half-up",
	KindTop:         "top",
	KindBottom:      "bottom",
	KindQuit:        "quit",
	KindGo:          "go",
	KindFollowLink:  "follow-link",
	KindShowAddress: "show-address",
	KindToggleTOC:   "toggle-toc",
	KindBack:        "back",
	KindForward:     "forward",
	KindHistory:     "history",
	KindReload:      "reload",
	KindHelp:        "help",
	KindHome:        "home",
	KindSave:        "save",
	KindSaveRaw:     "save-raw",
	KindEditAddress: "edit-address",
	KindSubmit:      "submit",
	KindDismiss:     "dismiss",
	KindUnknown:     "unknown",
}

// String returns the kind name for logs.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Action is one user intention, independent of input mode.
type Action struct {
	Kind Kind
	Arg  string // target, prompt answer, or the unrecognised input
	N    int    // link number for KindFollowLink
}

// Interpreter converts raw input bytes into Actions. Implementations
// own their buffer state; the caller reads the terminal and feeds
// bytes in as they arrive.
type Interpreter interface {
	// Name identifies the strategy for display and config.
	Name() string

	// Feed processes one read of n bytes and returns any completed
	// actions, usually zero or one.
	Feed(buf []byte, n int) []Action

	// Line returns the in-progress command or answer line for echo.
	Line() string

	// Cursor returns the cursor position within Line.
	Cursor() int

	// Prefill replaces the line and enters line entry.
	Prefill(s string)

	// SetPrompt marks a server input prompt active. While active,
	// every key buffers into the answer line.
	SetPrompt(active bool)

	// Reset discards all buffered state.
	Reset()
}

// ByName returns the strategy for a config mode name. Anything other
// than "canonical" selects raw.
func ByName(name string) Interpreter {
	if name == "canonical" {
		return NewCanonical()
	}
	return NewRaw()
}
