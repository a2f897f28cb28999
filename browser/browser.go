// Package browser drives an interactive session: it turns parsed commands
// into navigation, owns the page on display, and coordinates fetches with
// the cache and the history record. All session state is mutated on the
// caller's event loop; network fetches run on a worker goroutine and come
// back through Results.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gembrowse/addr"
	"gembrowse/cache"
	"gembrowse/command"
	"gembrowse/download"
	"gembrowse/gemini"
	"gembrowse/history"
	"gembrowse/logging"
)

// Prompt is a pending server request for user input.
type Prompt struct {
	Addr      *addr.Address
	Question  string
	Sensitive bool
}

// Session is the state the terminal renders: the page on display, the
// history record, pending alerts, and an active input prompt if any.
type Session struct {
	Page    *Page
	History *history.Stack
	Prompt  *Prompt
	Alerts  []string
	Done    bool

	RawInput bool
	ASCII    bool
	Colour   bool
}

// AlertLines returns what the alert area should show. An active server
// prompt takes the area over; otherwise any pending alerts.
func (s *Session) AlertLines() []string {
	if s.Prompt != nil {
		return []string{
			"User input requested by " + s.Prompt.Addr.String(),
			"Prompt: " + s.Prompt.Question,
			"(leave blank to cancel)",
		}
	}
	return s.Alerts
}

// PromptString returns the text of the input prompt row.
func (s *Session) PromptString() string {
	if s.Prompt != nil {
		return " response >>> "
	}
	return " >>> "
}

// SaveMode says what, if anything, a navigation should write to disk
// instead of displaying.
type SaveMode int

const (
	SaveNone SaveMode = iota
	SaveBody
	SaveWithHeader
)

// Result is the outcome of one navigation. The event loop receives these
// from Results and hands them to Complete; results from a superseded
// navigation are discarded there, whole.
type Result struct {
	Gen  uint64
	Addr *addr.Address
	Resp *gemini.Response
	Err  error

	push   bool
	line   int
	save   SaveMode
	cached bool
}

type navRequest struct {
	addr *addr.Address
	push bool
	line int // document line to restore once the page is built
	save SaveMode
}

// Config carries the controller's collaborators and session settings.
type Config struct {
	Dialer       gemini.Dialer
	Cache        *cache.Store
	Saver        *download.Saver
	Log          *logging.Logger
	Home         string
	MaxRedirects int

	RawInput bool
	ASCII    bool
	Colour   bool
}

// Controller owns the navigation pipeline: resolve, cache, fetch, page
// build, history. One navigation is in flight at a time; starting another
// cancels it and its result is dropped when it surfaces.
type Controller struct {
	Session *Session

	dialer       gemini.Dialer
	cache        *cache.Store
	saver        *download.Saver
	log          *logging.Logger
	home         string
	maxRedirects int

	gen     uint64
	cancel  context.CancelFunc
	results chan Result
}

// New builds a controller. Zero-value collaborators get session defaults.
func New(cfg Config) *Controller {
	if cfg.Cache == nil {
		cfg.Cache = cache.New(cache.DefaultPolicy())
	}
	if cfg.Saver == nil {
		cfg.Saver = download.NewSaver("")
	}
	if cfg.Log == nil {
		cfg.Log = logging.NewNop()
	}
	if cfg.Home == "" {
		cfg.Home = "internal://home"
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 5
	}
	return &Controller{
		Session: &Session{
			History:  history.New(),
			RawInput: cfg.RawInput,
			ASCII:    cfg.ASCII,
			Colour:   cfg.Colour,
		},
		dialer:       cfg.Dialer,
		cache:        cfg.Cache,
		saver:        cfg.Saver,
		log:          cfg.Log,
		home:         cfg.Home,
		maxRedirects: cfg.MaxRedirects,
		results:      make(chan Result, 4),
	}
}

// Results delivers fetch outcomes to the event loop.
func (c *Controller) Results() <-chan Result {
	return c.results
}

// Pending reports whether a fetch is in flight.
func (c *Controller) Pending() bool {
	return c.cancel != nil
}

// Start opens the session's start page.
func (c *Controller) Start() {
	c.Go(c.home)
}

// Go resolves a target the way the go command does and navigates to it.
func (c *Controller) Go(target string) {
	if a, ok := c.resolveTarget(target); ok {
		c.navigate(navRequest{addr: a, push: true})
	}
}

// Displayed marks the current page as having reached the screen.
func (c *Controller) Displayed() {
	if c.Session.Page != nil {
		c.Session.Page.Status = StatusNormal
	}
}

// EditPrefill returns a go command holding the current address, for raw
// mode to load into the line editor.
func (c *Controller) EditPrefill() (string, bool) {
	if c.Session.Page == nil {
		return "", false
	}
	return "go " + c.Session.Page.Addr.String(), true
}

// Apply executes one user action against the session.
func (c *Controller) Apply(act command.Action) {
	s := c.Session
	c.log.Debug("action", zap.String("kind", act.Kind.String()))

	switch act.Kind {
	case command.KindNone:

	case command.KindScrollDown:
		if len(s.Alerts) > 0 {
			s.Alerts = nil
			return
		}
		if s.Page != nil {
			s.Page.scrollBy(1)
		}

	case command.KindScrollUp:
		if s.Page != nil {
			s.Page.scrollBy(-1)
		}

	case command.KindHalfDown:
		if s.Page != nil {
			s.Page.scrollBy(s.Page.halfStep())
		}

	case command.KindHalfUp:
		if s.Page != nil {
			s.Page.scrollBy(-s.Page.halfStep())
		}

	case command.KindTop:
		if s.Page != nil {
			s.Page.scrollTop()
		}

	case command.KindBottom:
		if s.Page != nil {
			s.Page.scrollBottom()
		}

	case command.KindQuit:
		c.log.Info("quit")
		s.Done = true

	case command.KindGo:
		if act.Arg == "" || strings.Contains(act.Arg, " ") {
			c.report("The go command requires one arg")
			return
		}
		c.Go(act.Arg)

	case command.KindShowAddress:
		if act.Arg == "" || strings.Contains(act.Arg, " ") {
			c.report("The i command requires one arg")
			return
		}
		if a, ok := c.resolveTarget(act.Arg); ok {
			c.report("URL:", a.String())
		}

	case command.KindFollowLink:
		if s.Page != nil && s.Page.TOC {
			c.selectHeading(act.N)
			return
		}
		if target, ok := c.linkTarget(act.N); ok {
			c.navigate(navRequest{addr: target, push: true})
		}

	case command.KindToggleTOC:
		if s.Page == nil {
			c.report("Unknown command!")
			return
		}
		if s.Page.IsHistory() {
			c.report("This page doesn't really need a table of contents")
			return
		}
		s.Page.toggleTOC()

	case command.KindBack:
		if s.Page != nil && !s.Page.IsHistory() {
			s.History.SetScroll(s.Page.TopLine())
		}
		e, ok := s.History.Back()
		if !ok {
			c.report("Can't go back!")
			return
		}
		c.navigate(navRequest{addr: e.Addr, push: false, line: e.Scroll})

	case command.KindForward:
		if s.Page != nil && !s.Page.IsHistory() {
			s.History.SetScroll(s.Page.TopLine())
		}
		e, ok := s.History.Forward()
		if !ok {
			c.report("Can't go forward!")
			return
		}
		c.navigate(navRequest{addr: e.Addr, push: false, line: e.Scroll})

	case command.KindHistory:
		if s.Page != nil && s.Page.IsHistory() {
			if cur := s.History.Current(); cur != nil {
				c.navigate(navRequest{addr: cur.Addr, push: false, line: cur.Scroll})
			}
			return
		}
		c.navigate(navRequest{addr: historyAddr, push: true})

	case command.KindReload:
		if s.Page == nil {
			c.report("Unknown command!")
			return
		}
		c.cache.Invalidate(s.Page.Addr)
		c.navigate(navRequest{addr: s.Page.Addr, push: true})

	case command.KindHelp:
		c.navigate(navRequest{addr: helpAddr, push: true})

	case command.KindHome:
		c.Go(c.home)

	case command.KindSave:
		c.saveCmd(act.Arg, SaveBody)

	case command.KindSaveRaw:
		c.saveCmd(act.Arg, SaveWithHeader)

	case command.KindEditAddress:
		if s.Page == nil {
			c.report("No page to edit!")
			return
		}
		c.report("URL:", s.Page.Addr.String())

	case command.KindSubmit:
		p := s.Prompt
		if p == nil {
			return
		}
		s.Prompt = nil
		target := p.Addr.WithQuery(encodePromptAnswer(act.Arg))
		c.cache.Invalidate(target)
		c.navigate(navRequest{addr: target, push: true})

	case command.KindDismiss:
		if s.Prompt == nil {
			return
		}
		s.Prompt = nil
		c.report("Input dismissed")

	default:
		c.log.Debug("unknown command", zap.String("input", act.Arg))
		c.report("Unknown command!")
	}
}

// Complete applies a fetch outcome received from Results. A result whose
// generation is stale was superseded by a newer navigation; it is dropped
// without touching the page, the cache, or the history record.
func (c *Controller) Complete(r Result) {
	if r.Gen != c.gen {
		c.log.Debug("discarding stale result", zap.Uint64("gen", r.Gen), zap.String("url", r.Addr.String()))
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.apply(r)
}

func (c *Controller) report(lines ...string) {
	c.Session.Alerts = lines
}

// begin supersedes any navigation in flight.
func (c *Controller) begin() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}

func (c *Controller) navigate(req navRequest) {
	c.begin()
	c.Session.Alerts = []string{"Loading...", req.addr.String()}
	c.log.Info("navigate", zap.String("url", req.addr.String()))

	if isHistoryAddr(req.addr) {
		c.apply(Result{Gen: c.gen, Addr: req.addr, Resp: c.historyResponse(req.addr), push: req.push, line: req.line, save: req.save})
		return
	}
	if e, ok := c.cache.Get(req.addr); ok {
		c.log.Debug("cache hit", zap.String("url", req.addr.String()), zap.Duration("age", e.Age()))
		c.apply(Result{Gen: c.gen, Addr: req.addr, Resp: e.Response, push: req.push, line: req.line, save: req.save, cached: true})
		return
	}
	if req.addr.IsInternal() {
		c.apply(Result{Gen: c.gen, Addr: req.addr, Resp: c.internalResponse(req.addr), push: req.push, line: req.line, save: req.save})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen
	go func() {
		a, resp, cached, err := c.fetchChain(ctx, req.addr)
		c.results <- Result{Gen: gen, Addr: a, Resp: resp, Err: err, push: req.push, line: req.line, save: req.save, cached: cached}
	}()
}

// fetchChain fetches an address, following redirects until a terminal
// response. Every hop gets its own timeout and its own cache check, so a
// redirect into already-visited territory costs nothing.
func (c *Controller) fetchChain(ctx context.Context, a *addr.Address) (*addr.Address, *gemini.Response, bool, error) {
	cur := a
	var chain []string
	for {
		if e, ok := c.cache.Get(cur); ok {
			return cur, e.Response, true, nil
		}

		hctx, cancel := context.WithTimeout(ctx, gemini.Timeout())
		resp, err := gemini.Do(hctx, c.dialer, cur)
		cancel()
		if err != nil {
			return cur, nil, false, err
		}
		if resp.Class() != gemini.ClassRedirect {
			return cur, resp, false, nil
		}

		next, err := addr.Resolve(cur, resp.Meta)
		if err != nil {
			return cur, nil, false, fmt.Errorf("invalid redirect received from server: %w", err)
		}
		chain = append(chain, cur.String())
		if len(chain) > c.maxRedirects {
			return cur, nil, false, fmt.Errorf("%w: %s", gemini.ErrRedirectLoop, strings.Join(append(chain, next.String()), " -> "))
		}
		c.log.Info("redirect", zap.String("from", cur.String()), zap.String("to", next.String()))
		cur = next
	}
}

// apply folds a navigation outcome into the session. This is the only
// place the page, the cache, and the history record change together.
func (c *Controller) apply(r Result) {
	s := c.Session

	if r.Err != nil {
		c.log.Warn("fetch failed", zap.String("url", r.Addr.String()), zap.Error(r.Err))
		c.report("Error making request! " + r.Err.Error())
		return
	}
	resp := r.Resp

	if r.save != SaveNone {
		if resp.Class() != gemini.ClassSuccess {
			c.reportFailure(resp)
			return
		}
		c.saveResponse(r.Addr, resp, r.save)
		if !r.cached && !isHistoryAddr(r.Addr) {
			c.cache.Put(r.Addr, resp)
		}
		return
	}

	switch resp.Class() {
	case gemini.ClassInput:
		s.Prompt = &Prompt{
			Addr:      r.Addr,
			Question:  resp.Meta,
			Sensitive: resp.Status == gemini.StatusSensitiveInput,
		}
		s.Alerts = nil

	case gemini.ClassSuccess:
		page, err := newPage(r.Addr, resp)
		if err != nil {
			c.report("Error decoding body! " + err.Error())
			return
		}
		// The outgoing page records where the reader left it, so back
		// and forward can return there. Moves through the stack store
		// their position before calling here.
		if r.push && s.Page != nil && !s.Page.IsHistory() {
			s.History.SetScroll(s.Page.TopLine())
		}
		page.ScrollTo(r.line)
		s.Page = page
		s.Alerts = nil
		if !page.IsHistory() {
			if r.push {
				s.History.Push(history.Entry{Addr: r.Addr, Title: page.Title, Scroll: r.line})
			}
			if !r.cached {
				c.cache.Put(r.Addr, resp)
			}
		}
		c.log.Info("page", zap.String("url", r.Addr.String()), zap.Int("status", resp.Status), zap.Duration("fetch", resp.FetchTime))

	default:
		c.reportFailure(resp)
	}
}

func (c *Controller) reportFailure(resp *gemini.Response) {
	lines := []string{fmt.Sprintf("Not successful: %d: %s", resp.Status, gemini.StatusText(resp.Status))}
	if resp.Meta != "" {
		lines = append(lines, "More info: "+resp.Meta)
	}
	if resp.Class() == gemini.ClassCertRequired {
		lines = append(lines, "This client does not support client certificates")
	}
	c.report(lines...)
}

func (c *Controller) saveCmd(arg string, mode SaveMode) {
	s := c.Session
	if arg == "" {
		if s.Page == nil {
			c.report("Can't resolve link, not currently on a page")
			return
		}
		c.saveResponse(s.Page.Addr, s.Page.Resp, mode)
		return
	}
	if strings.Contains(arg, " ") {
		c.report("The save command takes at most one arg")
		return
	}
	if a, ok := c.resolveTarget(arg); ok {
		c.navigate(navRequest{addr: a, save: mode})
	}
}

func (c *Controller) saveResponse(a *addr.Address, resp *gemini.Response, mode SaveMode) {
	var path string
	var err error
	if mode == SaveWithHeader {
		path, err = c.saver.SaveRaw(a, resp)
	} else {
		path, err = c.saver.Save(a, resp)
	}
	if err != nil {
		c.log.Error("save failed", zap.String("url", a.String()), zap.Error(err))
		c.report("Error saving! " + err.Error())
		return
	}
	c.log.Info("saved", zap.String("url", a.String()), zap.String("path", path))
	c.report("Saved to " + path)
}

func (c *Controller) selectHeading(n int) {
	p := c.Session.Page
	if n < 1 || n > len(p.tocPos) {
		c.report("Invalid table of contents selection")
		return
	}
	line := p.tocPos[n-1]
	p.toggleTOC()
	p.ScrollTo(line)
}

var urlLikeRe = regexp.MustCompile(`^[a-zA-Z+.-]*:?//`)

// resolveTarget turns a user-typed target into an address: a link number,
// a dot for the current page, an absolute URL, an absolute path on the
// current host, or a bare host name, in that order of recognition.
func (c *Controller) resolveTarget(arg string) (*addr.Address, bool) {
	if urlLikeRe.MatchString(arg) {
		raw := arg
		if strings.HasPrefix(raw, "//") {
			raw = "gemini:" + raw
		}
		a, err := addr.Parse(raw)
		if err != nil {
			c.report("Invalid link!", err.Error())
			return nil, false
		}
		return a, true
	}

	s := c.Session
	if s.Page == nil {
		c.report("Can't resolve link, not currently on a page")
		return nil, false
	}

	if isDigits(arg) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			c.report("Invalid numeric link!")
			return nil, false
		}
		return c.linkTarget(n)
	}

	if arg == "." {
		return s.Page.Addr, true
	}

	if strings.HasPrefix(arg, "/") {
		a, err := addr.Resolve(s.Page.Addr, arg)
		if err != nil {
			c.report("Invalid link!", err.Error())
			return nil, false
		}
		return a, true
	}

	// Anything left reads as a bare host, the way people type addresses.
	a, err := addr.Parse("gemini://" + arg)
	if err != nil {
		c.report("Invalid link!", err.Error())
		return nil, false
	}
	return a, true
}

// linkTarget returns the resolved address of link n on the current page.
func (c *Controller) linkTarget(n int) (*addr.Address, bool) {
	s := c.Session
	if s.Page == nil {
		c.report("Can't resolve link, not currently on a page")
		return nil, false
	}
	links := s.Page.Links
	if len(links) == 0 {
		c.report("Invalid numeric link! (page has no links)")
		return nil, false
	}
	if n < 1 || n > len(links) {
		c.report(fmt.Sprintf("Invalid numeric link! (valid: 1-%d)", len(links)))
		return nil, false
	}
	l := links[n-1]
	if l.Err != nil {
		c.report("Invalid link!", l.Err.Error())
		return nil, false
	}
	return l.Target, true
}

func encodePromptAnswer(answer string) string {
	return strings.ReplaceAll(url.QueryEscape(answer), "+", "%20")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
