// Gembrowse is a terminal browser for the Gemini hypertext protocol.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gembrowse/browser"
	"gembrowse/cache"
	"gembrowse/command"
	"gembrowse/config"
	"gembrowse/download"
	"gembrowse/gemini"
	"gembrowse/logging"
	"gembrowse/render"
	"gembrowse/theme"
	"gembrowse/trust"
)

func main() {
	url := ""
	printMode := false
	initConfig := false
	ascii := false
	colourOff := false
	canonical := false
	noLog := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-p", "--print":
			printMode = true
		case "--init-config":
			initConfig = true
		case "--ascii":
			ascii = true
		case "--no-colour", "--no-color":
			colourOff = true
		case "--no-raw", "--canonical":
			canonical = true
		case "--no-log":
			noLog = true
		case "-h", "--help":
			printUsage()
			return
		default:
			if url == "" {
				url = arg
			}
		}
	}

	// Generate default config and exit
	if initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, config.FormatError(err))
		os.Exit(1)
	}

	// Flags override the config file for this invocation only.
	if ascii {
		cfg.Display.ASCII = true
	}
	if colourOff {
		cfg.Display.Colour = false
	}
	if canonical {
		cfg.Mode = "canonical"
	}
	if noLog {
		cfg.Log.Path = ""
	}
	if url == "" {
		url = cfg.Home
	}

	gemini.Configure(gemini.Options{
		TimeoutSeconds: cfg.Fetch.TimeoutSeconds,
		MaxBodyBytes:   cfg.Fetch.MaxBodyMiB << 20,
	})

	if printMode {
		if err := runPrint(cfg, url); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, url); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Gembrowse - Terminal Gemini Browser

Usage: gembrowse [options] [url]

Options:
  -p, --print       Print page to stdout (one-shot mode)
  --init-config     Output default config (redirect to ~/.config/gembrowse/config.toml)
  --no-raw          Line-buffered input: every command is a line ending in Enter
  --ascii           Draw the page gutter with ASCII characters
  --no-colour       Plain pages, no styling
  --no-log          Disable the session log file
  -h, --help        Show this help

Examples:
  gembrowse                                Open the start page
  gembrowse gemini://geminiprotocol.net/   Open URL
  gembrowse -p gemini://example.org/       Print page to stdout
  gembrowse --init-config > ~/.config/gembrowse/config.toml

Configuration:
  Config file: ~/.config/gembrowse/config.toml
  Generate with: gembrowse --init-config > ~/.config/gembrowse/config.toml`)
}

// runPrint fetches one page and writes it to stdout without styling.
func runPrint(cfg *config.Config, url string) error {
	policy, err := trust.ByName(cfg.Trust.Policy)
	if err != nil {
		return err
	}

	ctrl := browser.New(browser.Config{
		Dialer:       gemini.NewTLSDialer(policy),
		Home:         cfg.Home,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	})

	ctrl.Go(url)
	if ctrl.Pending() {
		ctrl.Complete(<-ctrl.Results())
	}

	s := ctrl.Session
	if s.Prompt != nil {
		return fmt.Errorf("%s asks for input; run interactively to answer", s.Prompt.Addr)
	}
	if s.Page == nil {
		return fmt.Errorf("%s", strings.Join(s.Alerts, "; "))
	}

	// Use terminal width if available
	width := 80
	if w, _, werr := render.TerminalSize(); werr == nil {
		width = w
	}

	wrapped := render.WrapDocument(s.Page.Doc, width, theme.Mono(), false)
	var sb strings.Builder
	for _, row := range wrapped.Rows {
		for _, cell := range row {
			sb.WriteRune(cell.Rune)
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
	return nil
}

func run(cfg *config.Config, url string) error {
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer log.Sync()

	policy, err := trust.ByName(cfg.Trust.Policy)
	if err != nil {
		return err
	}

	store := cache.New(cache.Policy{
		TTL:           time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		SweepInterval: time.Duration(cfg.Cache.SweepMinutes) * time.Minute,
	})

	interp := command.ByName(cfg.Mode)
	rawMode := interp.Name() == "raw"

	ctrl := browser.New(browser.Config{
		Dialer:       gemini.NewTLSDialer(policy),
		Cache:        store,
		Saver:        download.NewSaver(cfg.Download.Dir),
		Log:          log,
		Home:         cfg.Home,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		RawInput:     rawMode,
		ASCII:        cfg.Display.ASCII,
		Colour:       cfg.Display.Colour,
	})

	pal := theme.Select(ctrl.Session.Colour)

	// Canonical mode leaves the terminal alone; raw mode takes it over and
	// must hand it back before anything prints to the scrollback.
	restore := func() {}
	if rawMode {
		term, err := render.NewTerminal(os.Stdin)
		if err != nil {
			return fmt.Errorf("initializing terminal: %w", err)
		}
		render.EnterAltScreen(os.Stdout)
		if err := term.EnterRawMode(); err != nil {
			render.ExitAltScreen(os.Stdout)
			return fmt.Errorf("entering raw mode: %w", err)
		}
		restored := false
		restore = func() {
			if restored {
				return
			}
			restored = true
			term.RestoreMode()
			render.ExitAltScreen(os.Stdout)
		}
		defer restore()
	}

	msg := eventLoop(ctrl, interp, pal, rawMode, url)

	restore()
	if msg != "" {
		fmt.Println(msg)
	}
	return nil
}

// eventLoop runs the session until the user quits. The returned message is
// printed once the terminal is back in its normal state.
func eventLoop(ctrl *browser.Controller, interp command.Interpreter, pal *render.Palette, rawMode bool, url string) string {
	keys := make(chan []byte, 8)
	go func() {
		defer close(keys)
		for {
			buf := make([]byte, 64)
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				keys <- buf[:n]
			}
			if err != nil {
				return
			}
		}
	}()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	defer signal.Stop(intr)

	ctrl.Go(url)
	redraw(ctrl, interp, pal, rawMode)

	promptActive := false
	for {
		select {
		case buf, ok := <-keys:
			if !ok {
				return ""
			}
			for _, act := range interp.Feed(buf, len(buf)) {
				// In raw mode "e" loads the current address into the
				// editor instead of printing it.
				if rawMode && act.Kind == command.KindEditAddress {
					if line, ok := ctrl.EditPrefill(); ok {
						interp.Prefill(line)
						continue
					}
				}
				ctrl.Apply(act)
			}
		case r := <-ctrl.Results():
			ctrl.Complete(r)
		case <-winch:
			// Layout notices the new geometry on the next redraw.
		case <-intr:
			return "Farewell!"
		}

		if ctrl.Session.Done {
			return "Bye!"
		}

		// SetPrompt resets the editor, so only fire it on transitions.
		if active := ctrl.Session.Prompt != nil; active != promptActive {
			interp.SetPrompt(active)
			promptActive = active
		}

		redraw(ctrl, interp, pal, rawMode)
	}
}

// redraw lays the page out for the current terminal size and writes one
// composed frame.
func redraw(ctrl *browser.Controller, interp command.Interpreter, pal *render.Palette, rawMode bool) {
	width, height, err := render.TerminalSize()
	if err != nil {
		width, height = 80, 24
	}

	s := ctrl.Session
	var wrapped *render.Wrapped
	scroll := 0
	status := ""
	toc := false
	if s.Page != nil {
		s.Page.Layout(width, height, pal)
		wrapped = s.Page.Wrapped
		scroll = s.Page.Scroll
		status = s.Page.Status
		toc = s.Page.TOC
	}

	frame := render.Compose(wrapped, scroll, render.Frame{
		Status:      status,
		TOC:         toc,
		Alerts:      s.AlertLines(),
		Prompt:      s.PromptString(),
		Input:       interp.Line(),
		Masked:      s.Prompt != nil && s.Prompt.Sensitive,
		Cursor:      interp.Cursor(),
		ASCII:       s.ASCII,
		TermControl: rawMode,
		Height:      height,
	})
	os.Stdout.WriteString(frame)
	if !rawMode {
		// The line-buffered terminal echoes input itself; only the prompt
		// needs printing.
		os.Stdout.WriteString(s.PromptString())
	}
	ctrl.Displayed()
}
