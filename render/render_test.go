package render

import "testing"

func TestUnicodeWidth(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want int
	}{
		{"ascii", 'a', 1},
		{"space", ' ', 1},
		{"control", '\x01', 0},
		{"del", '\x7f', 0},
		{"cjk", '界', 2},
		{"hangul", '한', 2},
		{"combining accent", '́', 0},
		{"zero width joiner", '‍', 0},
		{"latin extended", 'é', 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnicodeWidth(tt.r); got != tt.want {
				t.Errorf("UnicodeWidth(%q) = %d, expected %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"hello", 5},
		{"", 0},
		{"世界", 4},
		{"a世b", 4},
		{"café", 4},
	}
	for _, tt := range tests {
		if got := StringWidth(tt.s); got != tt.want {
			t.Errorf("StringWidth(%q) = %d, expected %d", tt.s, got, tt.want)
		}
	}
}

func TestPaletteHeading(t *testing.T) {
	pal := &Palette{
		H1: Style{Bold: true, Underline: true},
		H2: Style{Bold: true},
		H3: Style{Underline: true},
	}

	tests := []struct {
		level int
		want  Style
	}{
		{1, pal.H1},
		{2, pal.H2},
		{3, pal.H3},
		{4, pal.H3},
		{7, pal.H3},
	}
	for _, tt := range tests {
		if got := pal.Heading(tt.level); got != tt.want {
			t.Errorf("Heading(%d) = %+v, expected %+v", tt.level, got, tt.want)
		}
	}
}

func TestStyleSequence(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		want  string
	}{
		{"reset", Style{}, "\033[0m"},
		{"bold", Style{Bold: true}, "\033[0;1m"},
		{"bold yellow", Style{Bold: true, FgColor: Yellow}, "\033[0;1;33m"},
		{"underline", Style{Underline: true}, "\033[0;4m"},
		{"dim reverse", Style{Dim: true, Reverse: true}, "\033[0;2;7m"},
		{"bright black", Style{FgColor: BrightBlack}, "\033[0;90m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := styleSequence(tt.style); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
