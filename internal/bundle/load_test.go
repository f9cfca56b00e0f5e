package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"caret/internal/diag"
)

const inlineBundle = `{
  "sources": [
    {"path": "src/main.rs", "virtual": true, "content": "fn main() {\n    let x = y;\n}\n"}
  ],
  "diagnostics": [
    {
      "severity": "error",
      "code": "E0425",
      "message": "cannot find value ` + "`y`" + `",
      "primary": {"file": "src/main.rs", "start": 24, "end": 25, "label": "not found in this scope"},
      "footers": [{"kind": "help", "text": "a local variable with a similar name exists"}]
    },
    {
      "severity": "warning",
      "message": "unused variable",
      "primary": {"file": "src/main.rs", "start": 20, "end": 21}
    }
  ]
}`

func TestParse_InlineBundle(t *testing.T) {
	b, err := Parse([]byte(inlineBundle))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(b.Sources) != 1 || len(b.Diagnostics) != 2 {
		t.Fatalf("sources = %d, diagnostics = %d", len(b.Sources), len(b.Diagnostics))
	}
	if b.Diagnostics[0].Code != "E0425" {
		t.Errorf("code = %q", b.Diagnostics[0].Code)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"sources": [], "diagnostics": [], "extra": 1}`))
	if err == nil {
		t.Fatal("unknown top-level field accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Bundle)
		wantErr string
	}{
		{name: "valid", mutate: func(b *Bundle) {}},
		{
			name:    "unknown severity",
			mutate:  func(b *Bundle) { b.Diagnostics[0].Severity = "fatal" },
			wantErr: "unknown severity",
		},
		{
			name:    "unknown footer kind",
			mutate:  func(b *Bundle) { b.Diagnostics[0].Footers[0].Kind = "hint" },
			wantErr: "unknown footer kind",
		},
		{
			name:    "undeclared source",
			mutate:  func(b *Bundle) { b.Diagnostics[0].Primary.File = "src/other.rs" },
			wantErr: "undeclared source",
		},
		{
			name: "inverted span",
			mutate: func(b *Bundle) {
				b.Diagnostics[0].Primary.Start = 9
				b.Diagnostics[0].Primary.End = 3
			},
			wantErr: "inverted span",
		},
		{
			name:    "span past inline content",
			mutate:  func(b *Bundle) { b.Diagnostics[0].Primary.End = 9999 },
			wantErr: "past end",
		},
		{
			name:    "empty message",
			mutate:  func(b *Bundle) { b.Diagnostics[0].Message = "" },
			wantErr: "empty message",
		},
		{
			name:    "duplicate source path",
			mutate:  func(b *Bundle) { b.Sources = append(b.Sources, b.Sources[0]) },
			wantErr: "duplicate path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse([]byte(inlineBundle))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(b)

			err = b.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_InlineSources(t *testing.T) {
	b, err := Parse([]byte(inlineBundle))
	if err != nil {
		t.Fatal(err)
	}

	fs, bag, err := b.Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bag.Len() != 2 {
		t.Fatalf("bag.Len = %d, want 2", bag.Len())
	}

	d := bag.Items()[0]
	if d.Severity != diag.SevError || d.Code != "E0425" {
		t.Errorf("first = %v/%q", d.Severity, d.Code)
	}
	if d.PrimaryLabel != "not found in this scope" {
		t.Errorf("label = %q", d.PrimaryLabel)
	}
	if len(d.Footers) != 1 || d.Footers[0].Kind != diag.FooterHelp {
		t.Errorf("footers = %+v", d.Footers)
	}

	loc, err := fs.Locate(d.Primary)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Line != 2 || loc.LineText != "    let x = y;" {
		t.Errorf("location = %d %q", loc.Line, loc.LineText)
	}
}

func TestResolve_CollapsesDuplicateRecords(t *testing.T) {
	b, err := Parse([]byte(inlineBundle))
	if err != nil {
		t.Fatal(err)
	}
	b.Diagnostics = append(b.Diagnostics, b.Diagnostics[0])

	_, bag, err := b.Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bag.Len() != 2 {
		t.Errorf("bag.Len = %d, want 2 (duplicate dropped)", bag.Len())
	}
}

func TestResolve_DiskSource(t *testing.T) {
	dir := t.TempDir()
	src := "let q = 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "q.rs"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &Bundle{
		Sources: []Source{{Path: "q.rs"}},
		Diagnostics: []Record{{
			Severity: "warning",
			Message:  "unused",
			Primary:  SpanRef{File: "q.rs", Start: 4, End: 5},
		}},
	}

	fs, bag, err := b.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	loc, err := fs.Locate(bag.Items()[0].Primary)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Line != 1 || loc.Col != 5 {
		t.Errorf("location = %d:%d, want 1:5", loc.Line, loc.Col)
	}
}

func TestResolve_MissingDiskSource(t *testing.T) {
	b := &Bundle{
		Sources: []Source{{Path: "nope.rs"}},
		Diagnostics: []Record{{
			Severity: "error",
			Message:  "x",
			Primary:  SpanRef{File: "nope.rs", Start: 0, End: 0},
		}},
	}
	if _, _, err := b.Resolve(t.TempDir()); err == nil {
		t.Fatal("Resolve loaded a missing source")
	}
}

func TestResolve_SpanPastDiskSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s.rs"), []byte("ab\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &Bundle{
		Sources: []Source{{Path: "s.rs"}},
		Diagnostics: []Record{{
			Severity: "error",
			Message:  "x",
			Primary:  SpanRef{File: "s.rs", Start: 0, End: 99},
		}},
	}
	if _, _, err := b.Resolve(dir); err == nil {
		t.Fatal("Resolve accepted a span past the end of a disk source")
	}
}

func TestCounts(t *testing.T) {
	b, err := Parse([]byte(inlineBundle))
	if err != nil {
		t.Fatal(err)
	}
	errs, warns, notes := b.Counts()
	if errs != 1 || warns != 1 || notes != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/1/0", errs, warns, notes)
	}
}
