package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSet_AddVirtual(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.rs", []byte("fn main() {}\n"))

	f := fs.Get(id)
	if f == nil {
		t.Fatal("Get returned nil for fresh file")
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("virtual file missing FileVirtual flag")
	}
	if f.Path != "test.rs" {
		t.Errorf("Path = %q, want %q", f.Path, "test.rs")
	}
	if len(f.LineIdx) != 1 {
		t.Errorf("LineIdx = %v, want one newline offset", f.LineIdx)
	}
}

func TestFileSet_Get_UnknownID(t *testing.T) {
	fs := NewFileSet()
	if f := fs.Get(99); f != nil {
		t.Errorf("Get(99) = %+v, want nil", f)
	}
}

func TestFileSet_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.rs")
	// CRLF and BOM must both be normalized away.
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("line one\r\nline two\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	f := fs.Get(id)
	if string(f.Content) != "line one\nline two\n" {
		t.Errorf("Content = %q after normalization", f.Content)
	}
	if f.Flags&FileHadBOM == 0 {
		t.Error("FileHadBOM flag not set")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Error("FileNormalizedCRLF flag not set")
	}
}

func TestFileSet_GetLatest(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("a.rs", []byte("v1"))
	second := fs.AddVirtual("a.rs", []byte("v2"))
	if first == second {
		t.Fatal("re-adding a path must mint a new FileID")
	}

	id, ok := fs.GetLatest("a.rs")
	if !ok || id != second {
		t.Errorf("GetLatest = %d, %v; want %d, true", id, ok, second)
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.rs", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{line: 0, want: ""},
		{line: 1, want: "first"},
		{line: 2, want: "second"},
		{line: 3, want: "third"},
		{line: 4, want: ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFile_LineCount(t *testing.T) {
	fs := NewFileSet()

	tests := []struct {
		name    string
		content string
		want    uint32
	}{
		{name: "empty file", content: "", want: 1},
		{name: "no trailing newline", content: "a\nb", want: 2},
		{name: "trailing newline", content: "a\nb\n", want: 2},
		{name: "single line", content: "abc", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fs.Get(fs.AddVirtual(tt.name, []byte(tt.content)))
			if got := f.LineCount(); got != tt.want {
				t.Errorf("LineCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.rs", []byte("ab\ncdef\n"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 6})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 4}) {
		t.Errorf("end = %+v", end)
	}
}
