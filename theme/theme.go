// Package theme provides the built-in palettes for the browser.
package theme

import "gembrowse/render"

// Default is the standard palette. Headings carry terminal attributes,
// link numbers and syntax are picked out in colour, and body text is left
// to the terminal's own foreground.
func Default() *render.Palette {
	return &render.Palette{
		H1:           render.Style{Bold: true, Underline: true},
		H2:           render.Style{Bold: true},
		H3:           render.Style{Underline: true},
		LinkSyntax:   render.Style{FgColor: render.Cyan},
		LinkNumber:   render.Style{Bold: true, FgColor: render.Yellow},
		Continuation: render.Style{FgColor: render.BrightBlack},
	}
}

// Mono is the palette with every style zeroed. Document text renders with
// no escape codes at all, for dumb terminals and piped output.
func Mono() *render.Palette {
	return &render.Palette{}
}

// Select returns the palette for a colour setting.
func Select(colour bool) *render.Palette {
	if colour {
		return Default()
	}
	return Mono()
}
