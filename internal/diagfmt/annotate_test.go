package diagfmt

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestAnnotateLine_Basic(t *testing.T) {
	line := "let x = 1;"
	expanded, cells := annotateLine(line, []markRange{{start: 4, end: 5}}, 4)

	if expanded != line {
		t.Errorf("expanded = %q, want unchanged", expanded)
	}
	if got := decorationString(cells); got != "    ^" {
		t.Errorf("decoration = %q, want %q", got, "    ^")
	}
}

func TestAnnotateLine_WidthInvariant(t *testing.T) {
	// The decoration never exceeds the printable width of the expanded
	// line plus at most one EOF caret.
	lines := []string{
		"plain ascii",
		"\tindented\twith tabs",
		"unicode: héllo wörld",
		"wide: 日本語のテキスト",
	}
	for _, line := range lines {
		expanded, cells := annotateLine(line, []markRange{{start: 0, end: uint32(len(line))}}, 4)
		if len(cells) != runewidth.StringWidth(expanded) {
			t.Errorf("%q: cells = %d, expanded width = %d", line, len(cells), runewidth.StringWidth(expanded))
		}
	}
}

func TestAnnotateLine_TabExpansion(t *testing.T) {
	line := "\tx = 1"
	expanded, cells := annotateLine(line, []markRange{{start: 1, end: 2}}, 4)

	if expanded != "    x = 1" {
		t.Errorf("expanded = %q, want %q", expanded, "    x = 1")
	}
	// The caret must land under x, past the expanded tab.
	if got := decorationString(cells); got != "    ^" {
		t.Errorf("decoration = %q, want %q", got, "    ^")
	}
}

func TestAnnotateLine_TabStops(t *testing.T) {
	// A tab after two characters advances to the next stop, not by a
	// full width.
	expanded, _ := annotateLine("ab\tc", nil, 4)
	if expanded != "ab  c" {
		t.Errorf("expanded = %q, want %q", expanded, "ab  c")
	}
}

func TestAnnotateLine_ZeroLengthSpan(t *testing.T) {
	line := "abc"
	_, cells := annotateLine(line, []markRange{{start: 1, end: 1}}, 4)
	if got := decorationString(cells); got != " ^" {
		t.Errorf("decoration = %q, want exactly one caret", got)
	}

	// Same at end of line: the caret extends one past the text.
	_, cells = annotateLine(line, []markRange{{start: 3, end: 3}}, 4)
	if got := decorationString(cells); got != "   ^" {
		t.Errorf("EOF decoration = %q, want %q", got, "   ^")
	}
}

func TestAnnotateLine_PrimaryBeatsSecondary(t *testing.T) {
	line := "abcdefgh"
	marks := []markRange{
		{start: 0, end: 8, secondary: true},
		{start: 2, end: 5},
	}
	_, cells := annotateLine(line, marks, 4)
	if got := decorationString(cells); got != "--^^^---" {
		t.Errorf("decoration = %q, want %q", got, "--^^^---")
	}
}

func TestAnnotateLine_MultiByteColumns(t *testing.T) {
	// "é" is two bytes but one column; the caret under "=" must not
	// drift right.
	line := "é = 1"
	_, cells := annotateLine(line, []markRange{{start: 3, end: 4}}, 4)
	if got := decorationString(cells); got != "  ^" {
		t.Errorf("decoration = %q, want %q", got, "  ^")
	}
}

func TestAnnotateLine_WideCharacters(t *testing.T) {
	// CJK clusters occupy two cells; markers cover both.
	line := "日本"
	_, cells := annotateLine(line, []markRange{{start: 0, end: 3}}, 4)
	if got := decorationString(cells); got != "^^" {
		t.Errorf("decoration = %q, want %q", got, "^^")
	}
}

func TestDecorationString_TrimsTrailingBlanks(t *testing.T) {
	_, cells := annotateLine("abcdef", []markRange{{start: 1, end: 3}}, 4)
	got := decorationString(cells)
	if strings.HasSuffix(got, " ") {
		t.Errorf("decoration %q has trailing blanks", got)
	}
	if got != " ^^" {
		t.Errorf("decoration = %q, want %q", got, " ^^")
	}
}

func TestDisplayColAt(t *testing.T) {
	tests := []struct {
		name string
		line string
		off  uint32
		want int
	}{
		{name: "ascii", line: "abcdef", off: 3, want: 3},
		{name: "after tab", line: "\tx", off: 1, want: 4},
		{name: "multibyte", line: "éé=", off: 4, want: 2},
		{name: "past end clamps", line: "ab", off: 99, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayColAt(tt.line, tt.off, 4); got != tt.want {
				t.Errorf("displayColAt = %d, want %d", got, tt.want)
			}
		})
	}
}
