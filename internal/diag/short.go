package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"caret/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics into a stable, single-line-per-entry
// representation: "<severity> <code> <path>:<line>:<col> <message>".
// The code column is omitted for uncoded diagnostics. Entries are
// sorted deterministically; secondary labels become extra "note" lines
// when includeSecondary is set. Unresolvable spans are skipped.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeSecondary bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendShort(rendered, &diags[i], fs, includeSecondary)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		if d.Code != "" {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s:%d:%d %s", d.Severity, d.Path, d.Line, d.Column, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortDiagnostic, d *Diagnostic, fs *source.FileSet, includeSecondary bool) []shortDiagnostic {
	if loc, ok := resolveShort(fs, d.Primary); ok {
		out = append(out, shortDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  sanitizeMessage(d.Message),
		})
	}

	if includeSecondary {
		for _, sec := range d.Secondary {
			loc, ok := resolveShort(fs, sec.Span)
			if !ok {
				continue
			}
			out = append(out, shortDiagnostic{
				Severity: "note",
				Code:     d.Code.String(),
				Path:     loc.Path,
				Line:     loc.Line,
				Column:   loc.Column,
				Message:  sanitizeMessage(sec.Msg),
			})
		}
	}

	return out
}

type shortLocation struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveShort(fs *source.FileSet, span source.Span) (shortLocation, bool) {
	loc, err := fs.Locate(span)
	if err != nil {
		return shortLocation{}, false
	}
	file := fs.Get(span.File)
	return shortLocation{
		Path:   shortPath(file.FormatPath("relative", fs.BaseDir())),
		Line:   loc.Line,
		Column: loc.Col,
	}, true
}

func shortPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
