package diag

import (
	"testing"

	"caret/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")

	userFile := fs.Add("/workspace/src/sample.rs", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		NewError("E0277", source.Span{File: userFile, Start: 0, End: 1}, "first line\nsecond").
			WithSecondary(source.Span{File: userFile, Start: 2, End: 3}, "declared here"),
		NewWarning(NoCode, source.Span{File: userFile, Start: 2, End: 3}, "another"),
	}

	expected := "error E0277 src/sample.rs:1:1 first line second\n" +
		"note E0277 src/sample.rs:2:1 declared here\n" +
		"warning src/sample.rs:2:1 another"

	if got := FormatShort(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShort_SkipsUnresolvable(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("ok.rs", []byte("x\n"))

	diags := []Diagnostic{
		NewError("E0001", source.Span{File: file, Start: 0, End: 1}, "kept"),
		NewError("E0002", source.Span{File: file, Start: 0, End: 99}, "dropped"),
	}

	got := FormatShort(diags, fs, false)
	want := "error E0001 ok.rs:1:1 kept"
	if got != want {
		t.Fatalf("FormatShort = %q, want %q", got, want)
	}
}

func TestFormatShort_Empty(t *testing.T) {
	if got := FormatShort(nil, source.NewFileSet(), true); got != "" {
		t.Errorf("FormatShort(nil) = %q, want empty", got)
	}
}
