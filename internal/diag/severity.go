package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevNote is for purely informational diagnostics.
	SevNote Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

// String returns the lowercase form used in rendered headers.
func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity converts the wire form ("error", "warning", "note")
// back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "note":
		return SevNote, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}
