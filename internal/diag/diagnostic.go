package diag

import (
	"fmt"

	"caret/internal/source"
)

// Label attaches a message to a span. Secondary labels point at
// supporting context locations in the same diagnostic.
type Label struct {
	Span source.Span
	Msg  string
}

// FooterKind distinguishes the free-text lines rendered after a
// snippet.
type FooterKind uint8

const (
	FooterNote FooterKind = iota
	FooterHelp
)

func (k FooterKind) String() string {
	if k == FooterHelp {
		return "help"
	}
	return "note"
}

// ParseFooterKind converts the wire form ("note", "help") back into a
// FooterKind.
func ParseFooterKind(s string) (FooterKind, error) {
	switch s {
	case "note":
		return FooterNote, nil
	case "help":
		return FooterHelp, nil
	}
	return 0, fmt.Errorf("unknown footer kind %q", s)
}

// Footer is one "= note:" or "= help:" line. Footers keep the
// producer's order.
type Footer struct {
	Kind FooterKind
	Text string
}

// Diagnostic is an immutable record describing one compiler-emitted
// message. It owns no resources; rendering it is a pure function of
// this value plus the FileSet its spans point into.
type Diagnostic struct {
	Severity     Severity
	Code         Code
	Message      string
	Primary      source.Span
	PrimaryLabel string
	Secondary    []Label
	Footers      []Footer
}
