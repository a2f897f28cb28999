package browser

import (
	"strings"
	"testing"

	"gembrowse/command"
	"gembrowse/gemini"
	"gembrowse/render"
)

const sectionedBody = "# Title\nintro\n## One\ntext under one\n## Two\ntext under two"

func testPage(t *testing.T, url, body string) *Page {
	t.Helper()
	a := mustParse(t, url)
	p, err := newPage(a, &gemini.Response{Status: 20, Meta: "text/gemini", Body: []byte(body), Addr: a})
	if err != nil {
		t.Fatalf("newPage: %v", err)
	}
	return p
}

func TestLayoutStatusLifecycle(t *testing.T) {
	pal := &render.Palette{}
	p := testPage(t, "gemini://example.org/", "one\ntwo\nthree")

	if !p.Layout(80, 24, pal) {
		t.Fatal("expected the first layout to wrap")
	}
	if p.Status != StatusInitial {
		t.Errorf("expected INITIAL on first layout, got %q", p.Status)
	}

	p.Status = StatusNormal
	if p.Layout(80, 24, pal) {
		t.Error("expected an unchanged size to be a no-op")
	}
	if p.Status != StatusNormal {
		t.Errorf("expected the status untouched, got %q", p.Status)
	}

	if !p.Layout(100, 30, pal) {
		t.Fatal("expected a resize to rewrap")
	}
	if p.Status != StatusResize {
		t.Errorf("expected RESIZE after a size change, got %q", p.Status)
	}
}

func TestLayoutKeepsLineAcrossWidths(t *testing.T) {
	pal := &render.Palette{}
	var body strings.Builder
	for i := 0; i < 12; i++ {
		body.WriteString("some reasonably long paragraph text that will wrap at a narrow width\n")
	}
	p := testPage(t, "gemini://example.org/", body.String())

	p.Layout(30, 10, pal)
	p.Scroll = p.Wrapped.Starts[7]
	if got := p.TopLine(); got != 7 {
		t.Fatalf("expected line 7 on top, got %d", got)
	}

	p.Layout(120, 10, pal)
	if got := p.TopLine(); got != 7 {
		t.Errorf("expected the same line on top after rewrap, got %d", got)
	}
}

func TestScrollClamping(t *testing.T) {
	pal := &render.Palette{}
	p := testPage(t, "gemini://example.org/", "one\ntwo\nthree\nfour")
	p.Layout(80, 24, pal)

	p.scrollBy(-5)
	if p.Scroll != 0 {
		t.Errorf("expected the top to hold, got row %d", p.Scroll)
	}
	p.scrollBy(100)
	if want := p.Wrapped.Len() - 1; p.Scroll != want {
		t.Errorf("expected the bottom row %d, got %d", want, p.Scroll)
	}
	p.scrollTop()
	if p.Scroll != 0 {
		t.Errorf("expected the top, got row %d", p.Scroll)
	}
	p.scrollBottom()
	if want := p.Wrapped.Len() - 1; p.Scroll != want {
		t.Errorf("expected the bottom row %d, got %d", want, p.Scroll)
	}
}

func TestToggleTOCOpensAtTop(t *testing.T) {
	pal := &render.Palette{}
	p := testPage(t, "gemini://example.org/", sectionedBody)
	p.Layout(80, 10, pal)
	p.Scroll = 4

	p.toggleTOC()
	if !p.TOC {
		t.Fatal("expected the contents view active")
	}
	p.Layout(80, 10, pal)
	if p.Scroll != 0 {
		t.Errorf("expected the contents view to open at the top, got row %d", p.Scroll)
	}

	rows := make([]string, 0, p.Wrapped.Len())
	for _, row := range p.Wrapped.Rows {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.Rune)
		}
		rows = append(rows, b.String())
	}
	joined := strings.Join(rows, "\n")
	for _, want := range []string{"Table of Contents", "[1] # Title", "[2] ## One", "[3] ## Two"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected the contents rows to include %q, got:\n%s", want, joined)
		}
	}
}

func TestToggleTOCReturnsToLine(t *testing.T) {
	pal := &render.Palette{}
	p := testPage(t, "gemini://example.org/", sectionedBody)
	p.Layout(80, 10, pal)
	p.Scroll = 3

	p.toggleTOC()
	p.Layout(80, 10, pal)
	p.toggleTOC()
	p.Layout(80, 10, pal)

	if got := p.TopLine(); got != 3 {
		t.Errorf("expected to return to line 3, got %d", got)
	}
	if p.Status != StatusNormal {
		t.Errorf("expected NORMAL after closing the contents view, got %q", p.Status)
	}
}

func TestTOCSelectionScrollsToHeading(t *testing.T) {
	f := newFixture(map[string]string{
		"gemini://example.org/": "20 text/gemini\r\n" + sectionedBody,
	})
	pal := &render.Palette{}
	f.ctrl.Go("gemini://example.org/")
	f.drain(t)
	p := f.ctrl.Session.Page
	p.Layout(80, 10, pal)

	f.do(command.Action{Kind: command.KindToggleTOC})
	p.Layout(80, 10, pal)

	f.do(command.Action{Kind: command.KindFollowLink, N: 3})
	if p.TOC {
		t.Fatal("expected a selection to close the contents view")
	}
	p.Layout(80, 10, pal)
	if got := p.TopLine(); got != 4 {
		t.Errorf("expected the Two heading (line 4) on top, got line %d", got)
	}
}

func TestTOCSelectionOutOfRange(t *testing.T) {
	f := newFixture(map[string]string{
		"gemini://example.org/": "20 text/gemini\r\n" + sectionedBody,
	})
	f.ctrl.Go("gemini://example.org/")
	f.drain(t)

	f.do(command.Action{Kind: command.KindToggleTOC})
	f.do(command.Action{Kind: command.KindFollowLink, N: 9})

	wantAlerts(t, f, "Invalid table of contents selection")
	if !f.ctrl.Session.Page.TOC {
		t.Error("expected the contents view to stay open")
	}
}

func TestTOCDeniedOnHistoryPage(t *testing.T) {
	f := newFixture(map[string]string{
		"gemini://example.org/": "20 text/gemini\r\n# Page",
	})
	f.ctrl.Go("gemini://example.org/")
	f.drain(t)

	f.do(command.Action{Kind: command.KindHistory})
	f.do(command.Action{Kind: command.KindToggleTOC})

	wantAlerts(t, f, "This page doesn't really need a table of contents")
	if f.ctrl.Session.Page.TOC {
		t.Error("expected no contents view on the history page")
	}
}

func TestTOCWithoutPage(t *testing.T) {
	f := newFixture(nil)
	f.do(command.Action{Kind: command.KindToggleTOC})
	wantAlerts(t, f, "Unknown command!")
}
