package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into a single file.
type Span struct {
	File  FileID
	Start uint32 // inclusive, in bytes
	End   uint32 // exclusive, in bytes
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends the span to include other. Spans pointing into
// different files are left untouched.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
