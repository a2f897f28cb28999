package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// feed sends s one byte at a time, the way the terminal read loop
// delivers keystrokes.
func feed(in Interpreter, s string) []Action {
	var acts []Action
	for i := 0; i < len(s); i++ {
		acts = append(acts, in.Feed([]byte{s[i]}, 1)...)
	}
	return acts
}

func TestRawQuickKeys(t *testing.T) {
	tests := []struct {
		key  byte
		want Kind
	}{
		{'u', KindHalfUp},
		{'d', KindHalfDown},
		{'q', KindQuit},
		{'t', KindToggleTOC},
		{'b', KindBack},
		{'f', KindForward},
		{'h', KindHistory},
		{'e', KindEditAddress},
		{'?', KindHelp},
		{'G', KindBottom},
		{'\r', KindScrollDown},
	}
	for _, tt := range tests {
		r := NewRaw()
		acts := r.Feed([]byte{tt.key}, 1)
		if len(acts) != 1 || acts[0].Kind != tt.want {
			t.Errorf("key %q: got %v, expected one %v action", tt.key, acts, tt.want)
		}
		if r.Line() != "" {
			t.Errorf("key %q: buffer %q, expected empty", tt.key, r.Line())
		}
	}
}

func TestRawDigitDispatchesImmediately(t *testing.T) {
	r := NewRaw()
	acts := r.Feed([]byte{'3'}, 1)
	if len(acts) != 1 || acts[0].Kind != KindFollowLink || acts[0].N != 3 {
		t.Fatalf("digit key: got %v, expected follow-link 3", acts)
	}
}

func TestRawBuffersTypedCommand(t *testing.T) {
	r := NewRaw()
	acts := feed(r, "go gemini://example.org/")
	if len(acts) != 0 {
		t.Fatalf("typing should not dispatch before Enter, got %v", acts)
	}
	if r.Line() != "go gemini://example.org/" {
		t.Fatalf("buffer %q, expected the typed line", r.Line())
	}

	acts = feed(r, "\r")
	want := []Action{{Kind: KindGo, Arg: "gemini://example.org/"}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("submit mismatch (-want +got):\n%s", diff)
	}
	if r.Line() != "" {
		t.Errorf("buffer %q after submit, expected empty", r.Line())
	}
}

func TestRawTypedJumpToTop(t *testing.T) {
	r := NewRaw()
	acts := feed(r, "gg\r")
	want := []Action{{Kind: KindTop}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("gg mismatch (-want +got):\n%s", diff)
	}
}

func TestRawSpacePrefixReachesShadowedInput(t *testing.T) {
	// quick keys shadow the first byte only; a leading space buffers,
	// and the parser trims it
	r := NewRaw()
	acts := feed(r, " 13\r")
	want := []Action{{Kind: KindFollowLink, N: 13}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("multi-digit link mismatch (-want +got):\n%s", diff)
	}

	acts = feed(r, " home\r")
	want = []Action{{Kind: KindHome}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("home mismatch (-want +got):\n%s", diff)
	}
}

func TestRawBackspaceToEmptyRestoresQuickKeys(t *testing.T) {
	r := NewRaw()
	feed(r, "x")
	r.Feed([]byte{0x7f}, 1)
	if r.Line() != "" {
		t.Fatalf("buffer %q, expected empty", r.Line())
	}

	acts := r.Feed([]byte{'u'}, 1)
	if len(acts) != 1 || acts[0].Kind != KindHalfUp {
		t.Errorf("after emptying the line 'u' should be a quick key again, got %v", acts)
	}
}

func TestRawEscapeAbandonsLine(t *testing.T) {
	r := NewRaw()
	feed(r, "go somewhe")
	acts := r.Feed([]byte{0x1b}, 1)
	if len(acts) != 0 {
		t.Fatalf("escape dispatched %v", acts)
	}
	if r.Line() != "" {
		t.Fatalf("buffer %q, expected empty", r.Line())
	}

	acts = r.Feed([]byte{'d'}, 1)
	if len(acts) != 1 || acts[0].Kind != KindHalfDown {
		t.Errorf("after escape 'd' should be a quick key again, got %v", acts)
	}
}

func TestRawArrowsScroll(t *testing.T) {
	r := NewRaw()
	acts := r.Feed([]byte{0x1b, '[', 'A'}, 3)
	if len(acts) != 1 || acts[0].Kind != KindScrollUp {
		t.Errorf("up arrow: got %v, expected scroll-up", acts)
	}
	acts = r.Feed([]byte{0x1b, '[', 'B'}, 3)
	if len(acts) != 1 || acts[0].Kind != KindScrollDown {
		t.Errorf("down arrow: got %v, expected scroll-down", acts)
	}
}

func TestRawArrowsMoveCursorWhileEditing(t *testing.T) {
	r := NewRaw()
	feed(r, "gab")
	r.Feed([]byte{0x1b, '[', 'D'}, 3) // Left
	if r.Cursor() != 2 {
		t.Fatalf("cursor %d, expected 2", r.Cursor())
	}
	feed(r, "r")
	if r.Line() != "garb" {
		t.Errorf("line %q, expected %q", r.Line(), "garb")
	}
	r.Feed([]byte{0x1b, '[', 'C'}, 3) // Right
	if r.Cursor() != 4 {
		t.Errorf("cursor %d, expected 4", r.Cursor())
	}
}

func TestRawLineEditingKeys(t *testing.T) {
	r := NewRaw()
	feed(r, "save somefile")

	// Ctrl+W kills the last word
	r.Feed([]byte{0x17}, 1)
	if r.Line() != "save " {
		t.Fatalf("after Ctrl+W line %q, expected %q", r.Line(), "save ")
	}

	// Ctrl+A home, Ctrl+E end
	r.Feed([]byte{0x01}, 1)
	if r.Cursor() != 0 {
		t.Fatalf("after Ctrl+A cursor %d, expected 0", r.Cursor())
	}
	r.Feed([]byte{0x05}, 1)
	if r.Cursor() != 5 {
		t.Fatalf("after Ctrl+E cursor %d, expected 5", r.Cursor())
	}

	// Ctrl+U clears to start
	r.Feed([]byte{0x15}, 1)
	if r.Line() != "" {
		t.Errorf("after Ctrl+U line %q, expected empty", r.Line())
	}
}

func TestRawPrefill(t *testing.T) {
	r := NewRaw()
	r.Prefill("go gemini://example.org/current")
	if r.Line() != "go gemini://example.org/current" {
		t.Fatalf("line %q, expected the prefill", r.Line())
	}
	if r.Cursor() != len(r.Line()) {
		t.Fatalf("cursor %d, expected end of line", r.Cursor())
	}

	acts := feed(r, "\r")
	want := []Action{{Kind: KindGo, Arg: "gemini://example.org/current"}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("submit mismatch (-want +got):\n%s", diff)
	}
}

func TestRawPromptBuffersEverything(t *testing.T) {
	r := NewRaw()
	r.SetPrompt(true)

	acts := feed(r, "up and down")
	if len(acts) != 0 {
		t.Fatalf("prompt typing dispatched %v", acts)
	}
	if r.Line() != "up and down" {
		t.Fatalf("answer buffer %q", r.Line())
	}

	acts = feed(r, "\r")
	want := []Action{{Kind: KindSubmit, Arg: "up and down"}}
	if diff := cmp.Diff(want, acts); diff != "" {
		t.Errorf("submit mismatch (-want +got):\n%s", diff)
	}
}

func TestRawPromptEmptyEnterDismisses(t *testing.T) {
	r := NewRaw()
	r.SetPrompt(true)
	acts := r.Feed([]byte{'\r'}, 1)
	if len(acts) != 1 || acts[0].Kind != KindDismiss {
		t.Errorf("got %v, expected dismiss", acts)
	}
}

func TestRawPromptEscapeDismisses(t *testing.T) {
	r := NewRaw()
	r.SetPrompt(true)
	feed(r, "half an answer")
	acts := r.Feed([]byte{0x1b}, 1)
	if len(acts) != 1 || acts[0].Kind != KindDismiss {
		t.Fatalf("got %v, expected dismiss", acts)
	}
	if r.Line() != "" {
		t.Errorf("answer buffer %q after dismiss, expected empty", r.Line())
	}
}
