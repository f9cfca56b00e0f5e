package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"caret/internal/diag"
	"caret/internal/source"
)

// Parse decodes a bundle from raw JSON. Unknown fields are rejected so
// producer typos surface as load errors instead of silently dropped
// data.
func Parse(data []byte) (*Bundle, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var b Bundle
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	return &b, nil
}

// Load reads and parses a bundle file.
func Load(path string) (*Bundle, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return Parse(data)
}

// Validate performs the structural checks that do not require source
// content on disk: severities and footer kinds must parse, every span
// must name a declared source, and ranges must not be inverted. Spans
// into inline sources are additionally bounds-checked.
func (b *Bundle) Validate() error {
	inline := make(map[string]int, len(b.Sources))
	declared := make(map[string]bool, len(b.Sources))
	for i, src := range b.Sources {
		if src.Path == "" {
			return fmt.Errorf("source %d: empty path", i)
		}
		if declared[src.Path] {
			return fmt.Errorf("source %d: duplicate path %q", i, src.Path)
		}
		declared[src.Path] = true
		if src.Virtual || src.Content != "" {
			inline[src.Path] = len(src.Content)
		}
	}

	for i, rec := range b.Diagnostics {
		if _, err := diag.ParseSeverity(rec.Severity); err != nil {
			return fmt.Errorf("diagnostic %d: %w", i, err)
		}
		if rec.Message == "" {
			return fmt.Errorf("diagnostic %d: empty message", i)
		}
		if err := checkSpanRef(rec.Primary, declared, inline); err != nil {
			return fmt.Errorf("diagnostic %d: primary: %w", i, err)
		}
		for j, sec := range rec.Secondary {
			if err := checkSpanRef(sec, declared, inline); err != nil {
				return fmt.Errorf("diagnostic %d: secondary %d: %w", i, j, err)
			}
		}
		for j, f := range rec.Footers {
			if _, err := diag.ParseFooterKind(f.Kind); err != nil {
				return fmt.Errorf("diagnostic %d: footer %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func checkSpanRef(ref SpanRef, declared map[string]bool, inline map[string]int) error {
	if !declared[ref.File] {
		return fmt.Errorf("span names undeclared source %q", ref.File)
	}
	if ref.Start > ref.End {
		return fmt.Errorf("inverted span %d..%d in %q", ref.Start, ref.End, ref.File)
	}
	if size, ok := inline[ref.File]; ok && int(ref.End) > size {
		return fmt.Errorf("span %d..%d past end of %q (%d bytes)", ref.Start, ref.End, ref.File, size)
	}
	return nil
}

// Resolve validates the bundle, materializes its sources into a
// FileSet, and converts the records into a Bag ready for rendering.
// Disk-backed sources are loaded relative to baseDir.
func (b *Bundle) Resolve(baseDir string) (*source.FileSet, *diag.Bag, error) {
	if err := b.Validate(); err != nil {
		return nil, nil, err
	}

	fs := source.NewFileSetWithBase(baseDir)
	ids := make(map[string]source.FileID, len(b.Sources))
	for _, src := range b.Sources {
		if src.Virtual || src.Content != "" {
			ids[src.Path] = fs.AddVirtual(src.Path, []byte(src.Content))
			continue
		}
		id, err := fs.Load(filepath.Join(baseDir, src.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("load source %q: %w", src.Path, err)
		}
		ids[src.Path] = id
	}

	// Duplicate records (same code, severity, span and message) collapse
	// to one diagnostic.
	bag := diag.NewBag(len(b.Diagnostics))
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for i, rec := range b.Diagnostics {
		d, err := toDiagnostic(rec, ids, fs)
		if err != nil {
			return nil, nil, fmt.Errorf("diagnostic %d: %w", i, err)
		}
		reporter.Report(d)
	}
	return fs, bag, nil
}

func toDiagnostic(rec Record, ids map[string]source.FileID, fs *source.FileSet) (diag.Diagnostic, error) {
	sev, err := diag.ParseSeverity(rec.Severity)
	if err != nil {
		return diag.Diagnostic{}, err
	}

	primary, err := toSpan(rec.Primary, ids, fs)
	if err != nil {
		return diag.Diagnostic{}, fmt.Errorf("primary: %w", err)
	}

	d := diag.New(sev, diag.Code(rec.Code), primary, rec.Message)
	if rec.Primary.Label != "" {
		d = d.WithLabel(rec.Primary.Label)
	}
	for j, sec := range rec.Secondary {
		span, err := toSpan(sec, ids, fs)
		if err != nil {
			return diag.Diagnostic{}, fmt.Errorf("secondary %d: %w", j, err)
		}
		d = d.WithSecondary(span, sec.Label)
	}
	for _, f := range rec.Footers {
		kind, err := diag.ParseFooterKind(f.Kind)
		if err != nil {
			return diag.Diagnostic{}, err
		}
		if kind == diag.FooterHelp {
			d = d.WithHelp(f.Text)
		} else {
			d = d.WithNote(f.Text)
		}
	}
	return d, nil
}

func toSpan(ref SpanRef, ids map[string]source.FileID, fs *source.FileSet) (source.Span, error) {
	id, ok := ids[ref.File]
	if !ok {
		return source.Span{}, fmt.Errorf("span names undeclared source %q", ref.File)
	}
	f := fs.Get(id)
	if int(ref.End) > len(f.Content) {
		return source.Span{}, fmt.Errorf("span %d..%d past end of %q (%d bytes)", ref.Start, ref.End, ref.File, len(f.Content))
	}
	return source.Span{File: id, Start: ref.Start, End: ref.End}, nil
}

// Counts tallies the records per severity without touching sources.
// Records with unknown severities are ignored; run Validate first when
// they must be rejected.
func (b *Bundle) Counts() (errors, warnings, notes int) {
	for _, rec := range b.Diagnostics {
		sev, err := diag.ParseSeverity(rec.Severity)
		if err != nil {
			continue
		}
		switch sev {
		case diag.SevError:
			errors++
		case diag.SevWarning:
			warnings++
		default:
			notes++
		}
	}
	return errors, warnings, notes
}
