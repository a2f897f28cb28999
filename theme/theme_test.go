package theme

import (
	"testing"

	"gembrowse/render"
)

func TestDefaultPalette(t *testing.T) {
	pal := Default()

	if !pal.H1.Bold || !pal.H1.Underline {
		t.Errorf("expected bold underlined H1, got %+v", pal.H1)
	}
	if pal.LinkNumber.FgColor != render.Yellow || !pal.LinkNumber.Bold {
		t.Errorf("expected bold yellow link numbers, got %+v", pal.LinkNumber)
	}
	if pal.LinkSyntax.FgColor != render.Cyan {
		t.Errorf("expected cyan link syntax, got %+v", pal.LinkSyntax)
	}
	if pal.Text != (render.Style{}) {
		t.Errorf("expected unstyled body text, got %+v", pal.Text)
	}
}

func TestMonoPalette(t *testing.T) {
	if *Mono() != (render.Palette{}) {
		t.Errorf("expected every mono style zeroed, got %+v", *Mono())
	}
}

func TestSelect(t *testing.T) {
	if *Select(true) != *Default() {
		t.Error("expected the default palette with colour on")
	}
	if *Select(false) != *Mono() {
		t.Error("expected the mono palette with colour off")
	}
}
