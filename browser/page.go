package browser

import (
	"fmt"
	"strings"

	"gembrowse/addr"
	"gembrowse/gemini"
	"gembrowse/gemtext"
	"gembrowse/render"
)

// Status cell values shown in the status row.
const (
	StatusInitial = "INITIAL"
	StatusResize  = "RESIZE"
	StatusNormal  = "NORMAL"
)

// Link is one entry of a page's link table, resolved against the page
// address. A target that failed to resolve keeps its error so following
// the link can report it.
type Link struct {
	Number int
	Target *addr.Address
	Label  string
	Err    error
}

// Page is one displayable document together with its presentation state.
// Scroll is the top visible output row; it only means something once
// Layout has wrapped the document for a terminal size.
type Page struct {
	Addr  *addr.Address
	Resp  *gemini.Response
	Doc   *gemtext.Document
	Links []Link
	Title string

	Wrapped *render.Wrapped
	Scroll  int
	Status  string

	TOC       bool
	tocDoc    *gemtext.Document
	tocPos    []int
	savedLine int

	scrollToLine int // pending scroll target as a document line, -1 none
	lastW, lastH int
}

func newPage(a *addr.Address, resp *gemini.Response) (*Page, error) {
	mt := resp.MediaType()
	body := resp.Body
	if isTextMedia(mt) {
		text, err := resp.Text()
		if err != nil {
			return nil, err
		}
		body = []byte(text)
	}
	doc := gemtext.Build(body, mt)
	if doc.Opaque {
		doc = stubDocument(mt, len(resp.Body))
	}

	title := doc.Title()
	if title == "" {
		title = a.String()
	}

	return &Page{
		Addr:         a,
		Resp:         resp,
		Doc:          doc,
		Links:        resolveLinks(a, doc),
		Title:        title,
		scrollToLine: -1,
	}, nil
}

func isTextMedia(mediaType string) bool {
	return mediaType == "" || strings.HasPrefix(mediaType, "text/")
}

// stubDocument stands in for media the client cannot present. The page
// still exists, so it can be saved, cached, and revisited like any other.
func stubDocument(mediaType string, size int) *gemtext.Document {
	body := fmt.Sprintf("# %s\n\nThis page is %d bytes of media the terminal cannot present.\nUse save to write it to the downloads directory.\n", mediaType, size)
	return gemtext.Build([]byte(body), gemini.DefaultMediaType)
}

func resolveLinks(base *addr.Address, doc *gemtext.Document) []Link {
	links := make([]Link, 0, len(doc.Links))
	for _, l := range doc.Links {
		target, err := addr.Resolve(base, l.Target)
		links = append(links, Link{Number: l.Number, Target: target, Label: l.Label, Err: err})
	}
	return links
}

// IsHistory reports whether this is the generated history page, which is
// excluded from the history record and the cache.
func (p *Page) IsHistory() bool {
	return isHistoryAddr(p.Addr)
}

func (p *Page) view() *gemtext.Document {
	if p.TOC {
		return p.tocDoc
	}
	return p.Doc
}

// Layout wraps the current view for a terminal size, carrying the scroll
// position across geometry changes. It reports whether the wrap changed,
// and tracks the status cell: INITIAL for a first wrap, RESIZE for a new
// geometry, otherwise whatever Displayed last set.
func (p *Page) Layout(width, height int, pal *render.Palette) bool {
	if p.Wrapped != nil && width == p.lastW && height == p.lastH {
		if p.scrollToLine >= 0 {
			p.Scroll = rowFor(p.Wrapped, p.scrollToLine)
			p.scrollToLine = -1
			return true
		}
		return false
	}

	switch {
	case p.Status == "":
		p.Status = StatusInitial
	case p.Wrapped != nil:
		p.Status = StatusResize
	}

	w := render.WrapDocument(p.view(), width, pal, p.TOC)
	switch {
	case p.scrollToLine >= 0:
		p.Scroll = rowFor(w, p.scrollToLine)
		p.scrollToLine = -1
	case p.Wrapped != nil:
		p.Scroll = w.RemapScroll(p.Wrapped, p.Scroll)
	default:
		p.Scroll = w.ClampScroll(p.Scroll)
	}
	p.Wrapped = w
	p.lastW, p.lastH = width, height
	return true
}

func rowFor(w *render.Wrapped, line int) int {
	if line < 0 || len(w.Starts) == 0 {
		return 0
	}
	if line > len(w.Starts)-1 {
		line = len(w.Starts) - 1
	}
	return w.ClampScroll(w.Starts[line])
}

// TopLine returns the document line index of the top visible row, the
// form scroll positions take in the history record.
func (p *Page) TopLine() int {
	if p.TOC {
		return p.savedLine
	}
	if p.Wrapped == nil {
		return 0
	}
	line := 0
	for i, start := range p.Wrapped.Starts {
		if start > p.Scroll {
			break
		}
		line = i
	}
	return line
}

// ScrollTo queues a scroll to a document line, resolved at the next
// Layout once row positions are known.
func (p *Page) ScrollTo(line int) {
	p.scrollToLine = line
}

func (p *Page) scrollBy(rows int) {
	if p.Wrapped == nil {
		return
	}
	p.Scroll = p.Wrapped.ClampScroll(p.Scroll + rows)
}

func (p *Page) scrollTop() {
	p.Scroll = 0
	p.scrollToLine = -1
}

func (p *Page) scrollBottom() {
	if p.Wrapped == nil {
		return
	}
	p.Scroll = p.Wrapped.ClampScroll(p.Wrapped.Len() - 1)
}

func (p *Page) halfStep() int {
	return render.HalfStep(p.lastH)
}

// toggleTOC flips between the document and its table of contents. The
// contents view always opens at the top; closing it returns to the line
// the reader left, or to a selected heading via ScrollTo.
func (p *Page) toggleTOC() {
	if p.TOC {
		p.TOC = false
		p.scrollToLine = p.savedLine
		p.Scroll = 0
		p.Wrapped = nil
		p.Status = StatusNormal
		return
	}
	if p.tocDoc == nil {
		p.tocDoc, p.tocPos = gemtext.TableOfContents(p.Doc)
	}
	p.savedLine = p.TopLine()
	p.TOC = true
	p.Scroll = 0
	p.scrollToLine = -1
	p.Wrapped = nil
	p.Status = StatusInitial
}
