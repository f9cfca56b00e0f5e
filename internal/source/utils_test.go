package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		expected    []byte
		wantChanged bool
	}{
		{
			name:        "no carriage returns",
			input:       []byte("a\nb\n"),
			expected:    []byte("a\nb\n"),
			wantChanged: false,
		},
		{
			name:        "crlf pairs replaced",
			input:       []byte("a\r\nb\r\n"),
			expected:    []byte("a\nb\n"),
			wantChanged: true,
		},
		{
			name:        "lone cr preserved",
			input:       []byte("a\rb"),
			expected:    []byte("a\rb"),
			wantChanged: false,
		},
		{
			name:        "mixed endings",
			input:       []byte("a\r\nb\rc\n"),
			expected:    []byte("a\nb\rc\n"),
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("normalizeCRLF() = %q, want %q", got, tt.expected)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestRemoveBOM(t *testing.T) {
	withBOM := []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}
	got, had := removeBOM(withBOM)
	if !had || string(got) != "hi" {
		t.Errorf("removeBOM(BOM+hi) = %q, %v", got, had)
	}

	plain := []byte("hi")
	got, had = removeBOM(plain)
	if had || string(got) != "hi" {
		t.Errorf("removeBOM(hi) = %q, %v", got, had)
	}
}

func TestBuildLineIndex(t *testing.T) {
	idx := buildLineIndex([]byte("ab\nc\n\nd"))
	want := []uint32{2, 4, 5}
	if len(idx) != len(want) {
		t.Fatalf("buildLineIndex() = %v, want %v", idx, want)
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("buildLineIndex()[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("let x = 1;\nlet y = 2;\n")
	idx := buildLineIndex(content)

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start of file", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "middle of first line", off: 4, want: LineCol{Line: 1, Col: 5}},
		{name: "newline belongs to its line", off: 10, want: LineCol{Line: 1, Col: 11}},
		{name: "start of second line", off: 11, want: LineCol{Line: 2, Col: 1}},
		{name: "middle of second line", off: 15, want: LineCol{Line: 2, Col: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toLineCol(content, idx, tt.off); got != tt.want {
				t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
			}
		})
	}
}

func TestToLineCol_CodepointColumns(t *testing.T) {
	// "é" is two bytes; the column must advance by one, not two.
	content := []byte("é = 1\n")
	idx := buildLineIndex(content)

	got := toLineCol(content, idx, 3) // byte offset of '='
	want := LineCol{Line: 1, Col: 3}
	if got != want {
		t.Errorf("toLineCol(3) = %+v, want %+v", got, want)
	}
}

func TestToLineCol_NoNewlines(t *testing.T) {
	content := []byte("single line")
	got := toLineCol(content, nil, 7)
	want := LineCol{Line: 1, Col: 8}
	if got != want {
		t.Errorf("toLineCol(7) = %+v, want %+v", got, want)
	}
}
