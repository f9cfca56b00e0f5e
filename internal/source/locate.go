package source

import (
	"errors"
	"fmt"
)

// ErrSpanOutOfRange reports a span whose bounds do not fit its file.
// A well-formed producer can never trigger it; callers treat it as an
// internal-invariant violation and must not clamp the span, since a
// clamped span would render a misaligned caret.
var ErrSpanOutOfRange = errors.New("span out of range")

// Location is the printable anchor of a span: where it starts, the text
// of the first line it touches, and whether it continues past that line.
type Location struct {
	Line        uint32 // 1-based
	Col         uint32 // 1-based, in codepoints
	EndLine     uint32
	EndCol      uint32
	LineText    string // first line only, without the trailing newline
	IsMultiline bool
}

// Locate resolves a span to its Location within this FileSet.
//
// Unlike Resolve it validates the span first: unknown file IDs,
// inverted ranges, and bounds past the end of the file all return an
// error wrapping ErrSpanOutOfRange.
func (fileSet *FileSet) Locate(span Span) (Location, error) {
	f := fileSet.Get(span.File)
	if f == nil {
		return Location{}, fmt.Errorf("file %d: %w", span.File, ErrSpanOutOfRange)
	}
	if span.Start > span.End {
		return Location{}, fmt.Errorf("%s: inverted range: %w", span, ErrSpanOutOfRange)
	}
	if int(span.End) > len(f.Content) {
		return Location{}, fmt.Errorf("%s: end past %d bytes: %w", span, len(f.Content), ErrSpanOutOfRange)
	}

	start := toLineCol(f.Content, f.LineIdx, span.Start)
	end := toLineCol(f.Content, f.LineIdx, span.End)

	return Location{
		Line:        start.Line,
		Col:         start.Col,
		EndLine:     end.Line,
		EndCol:      end.Col,
		LineText:    f.GetLine(start.Line),
		IsMultiline: end.Line > start.Line,
	}, nil
}
