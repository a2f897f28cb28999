package browser

import (
	"fmt"
	"regexp"
	"strings"

	"gembrowse/addr"
	"gembrowse/gemini"
)

var (
	helpAddr    = mustAddr("internal://help")
	historyAddr = mustAddr("internal://history")
)

func mustAddr(s string) *addr.Address {
	a, err := addr.Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func isHistoryAddr(a *addr.Address) bool {
	return a.IsInternal() && a.Host == "history" && a.Path == ""
}

// Internal page names are single bare words; anything else in an
// internal URL is malformed rather than merely unknown.
var internalNameRe = regexp.MustCompile(`^[a-zA-Z_0-9]+$`)

// internalResponse serves the internal:// pages as ordinary responses, so
// the rest of the pipeline treats them like anything fetched.
func (c *Controller) internalResponse(a *addr.Address) *gemini.Response {
	name := a.Host + a.Path
	if !internalNameRe.MatchString(name) {
		return &gemini.Response{Status: gemini.StatusBadRequest, Meta: "Bad internal URL!", Addr: a}
	}
	body, ok := internalPages[name]
	if !ok {
		return &gemini.Response{Status: gemini.StatusNotFound, Meta: "Unknown internal page", Addr: a}
	}
	return &gemini.Response{
		Status: gemini.StatusSuccess,
		Meta:   gemini.DefaultMediaType,
		Body:   []byte(filterModeLines(body, c.Session.RawInput)),
		Addr:   a,
	}
}

// historyResponse regenerates the history page from the current record,
// newest first. It is built fresh on every visit and never cached.
func (c *Controller) historyResponse(a *addr.Address) *gemini.Response {
	var b strings.Builder
	b.WriteString("# History\n\n")
	for _, e := range c.Session.History.Entries() {
		if e.Title != "" && e.Title != e.Addr.String() {
			fmt.Fprintf(&b, "=> %s %s\n", e.Addr, e.Title)
		} else {
			fmt.Fprintf(&b, "=> %s\n", e.Addr)
		}
	}
	return &gemini.Response{
		Status: gemini.StatusSuccess,
		Meta:   gemini.DefaultMediaType,
		Body:   []byte(b.String()),
		Addr:   a,
	}
}

var modeLineRe = regexp.MustCompile(`^&(\w+) ?(.*)$`)

// filterModeLines resolves the &if_raw and &if_canon markers in an
// internal page: the line stays, minus the marker, only in the matching
// input mode. Lines with markers this version does not know pass through
// untouched, so pages written for a newer client still render.
func filterModeLines(body string, raw bool) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, ln := range lines {
		m := modeLineRe.FindStringSubmatch(ln)
		if m == nil {
			out = append(out, ln)
			continue
		}
		switch m[1] {
		case "if_raw":
			if raw {
				out = append(out, m[2])
			}
		case "if_canon":
			if !raw {
				out = append(out, m[2])
			}
		default:
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

var internalPages = map[string]string{
	"home": `# gembrowse

Welcome to gembrowse, a terminal client for the gemini protocol.

=> internal://help The command reference
=> gemini://geminiprotocol.net/ Project Gemini
=> gemini://geminiquickst.art/ A gentle introduction
&if_raw Type a link number to follow a link, or ? for help.
&if_canon Type a link number and press Enter to follow a link, or ? then Enter for help.
`,
	"help": `# Help

&if_raw Keys act immediately; typing any other character starts a command line.
&if_canon Every command is a line, submitted with Enter.

## Reading

&if_raw * u and d scroll half a page up and down
&if_raw * the arrow keys scroll one row, Enter scrolls down
&if_canon * u and d scroll half a page up and down
&if_canon * an empty line scrolls down one row
* gg and G jump to the top and bottom
* t opens a table of contents; pick a heading by number

## Navigation

* go <target> visits an address, for example go gemini://geminiprotocol.net/
* a bare number follows that link on the page
* b and f move back and forward through visited pages
* history (or h) lists the pages of this session
* reload fetches the current page again, skipping the cache
* e edits the current address
* i <target> shows where a target would lead without going there
* home returns to the start page

## Pages

* save [target] writes a page into the downloads directory
* save_raw [target] does the same, keeping the response header
* ? opens this page
* q quits
`,
}
