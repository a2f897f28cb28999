// Gemget fetches one Gemini URL and writes the response to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gembrowse/addr"
	"gembrowse/gemini"
	"gembrowse/trust"
)

func main() {
	url := ""
	header := false
	raw := false
	tofu := false
	noRedirect := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "--header":
			header = true
		case "--raw":
			raw = true
		case "--tofu":
			tofu = true
		case "--no-redirect":
			noRedirect = true
		case "-h", "--help":
			printUsage()
			return
		default:
			if url == "" {
				url = arg
			}
		}
	}

	if url == "" {
		fmt.Fprintln(os.Stderr, "usage: gemget [options] url")
		os.Exit(1)
	}

	policyName := "accept-all"
	if tofu {
		policyName = "tofu"
	}
	policy, err := trust.ByName(policyName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	a, err := addr.Parse(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	resp, err := fetch(gemini.NewTLSDialer(policy), a, noRedirect)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if header {
		fmt.Println(resp.Header())
	}
	if resp.Class() != gemini.ClassSuccess {
		if !header {
			fmt.Fprintln(os.Stderr, resp.Header())
		}
		os.Exit(1)
	}

	mt := resp.MediaType()
	if raw || !(mt == "" || strings.HasPrefix(mt, "text/")) {
		os.Stdout.Write(resp.Body)
		return
	}

	text, err := resp.Text()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Print(text)
}

func printUsage() {
	fmt.Println(`Gemget - fetch one Gemini URL

Usage: gemget [options] url

Options:
  --header       Print the response header line before the body
  --raw          Write the body bytes untouched, no charset decoding
  --no-redirect  Report a redirect instead of following it
  --tofu         Pin first-seen server certificates per host
  -h, --help     Show this help`)
}

// fetch follows redirects the way the browser does: each hop gets its own
// timeout, and the chain stops after five.
func fetch(d gemini.Dialer, a *addr.Address, noRedirect bool) (*gemini.Response, error) {
	for hops := 0; ; hops++ {
		ctx, cancel := context.WithTimeout(context.Background(), gemini.Timeout())
		resp, err := gemini.Do(ctx, d, a)
		cancel()
		if err != nil {
			return nil, err
		}
		if resp.Class() != gemini.ClassRedirect || noRedirect {
			return resp, nil
		}
		if hops == 5 {
			return nil, fmt.Errorf("%w: last hop pointed at %s", gemini.ErrRedirectLoop, resp.Meta)
		}
		next, err := addr.Resolve(a, resp.Meta)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect received from server: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Redirected to", next)
		a = next
	}
}
