package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"caret/internal/diag"
	"caret/internal/source"
)

func jsonFixture(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("src/main.rs", []byte("let a = 1;\nlet b = a;\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError("E0277", source.Span{File: id, Start: 4, End: 5}, "trait bound unsatisfied").
		WithLabel("here").
		WithSecondary(source.Span{File: id, Start: 15, End: 16}, "used here").
		WithNote("a note").
		WithHelp("a help"))
	return bag, fs
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := jsonFixture(t)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		IncludePositions: true,
		IncludeSecondary: true,
		IncludeFooters:   true,
	})

	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("Count = %d, Diagnostics = %d", out.Count, len(out.Diagnostics))
	}

	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "E0277" {
		t.Errorf("severity/code = %q/%q", d.Severity, d.Code)
	}
	if d.Location.StartByte != 4 || d.Location.EndByte != 5 {
		t.Errorf("location bytes = %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 1 || d.Location.StartCol != 5 {
		t.Errorf("location pos = %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Secondary) != 1 || d.Secondary[0].Message != "used here" {
		t.Errorf("secondary = %+v", d.Secondary)
	}
	if d.Secondary[0].Location.StartLine != 2 {
		t.Errorf("secondary line = %d, want 2", d.Secondary[0].Location.StartLine)
	}
	wantFooters := []FooterJSON{{Kind: "note", Text: "a note"}, {Kind: "help", Text: "a help"}}
	if len(d.Footers) != 2 || d.Footers[0] != wantFooters[0] || d.Footers[1] != wantFooters[1] {
		t.Errorf("footers = %+v, want %+v", d.Footers, wantFooters)
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	bag, fs := jsonFixture(t)

	var buf strings.Builder
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatal(err)
	}

	var decoded DiagnosticsOutput
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 1 {
		t.Errorf("decoded Count = %d, want 1", decoded.Count)
	}
}

func TestBuildDiagnosticsOutput_Max(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("ab\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError("E1", source.Span{File: id, Start: 0, End: 1}, "one"))
	bag.Add(diag.NewError("E2", source.Span{File: id, Start: 1, End: 2}, "two"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1 (Max applied)", out.Count)
	}
}
