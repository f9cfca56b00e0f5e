package diag

import "fmt"

// Tally counts errors and warnings across one batch of diagnostics.
//
// The "N previous errors" figure in a batch summary is deliberately
// modelled as an explicit value threaded through the batch loop, never
// as hidden process-wide state; formatters hold no cross-call state and
// render one diagnostic per call.
type Tally struct {
	errors   int
	warnings int
}

// Observe records one diagnostic's severity.
func (t *Tally) Observe(sev Severity) {
	switch sev {
	case SevError:
		t.errors++
	case SevWarning:
		t.warnings++
	case SevNote:
	}
}

// ObserveBag records every diagnostic in the bag.
func (t *Tally) ObserveBag(b *Bag) {
	for _, d := range b.Items() {
		t.Observe(d.Severity)
	}
}

// Merge folds another tally into this one.
func (t *Tally) Merge(other Tally) {
	t.errors += other.errors
	t.warnings += other.warnings
}

func (t Tally) Errors() int {
	return t.errors
}

func (t Tally) Warnings() int {
	return t.warnings
}

// Summary returns the trailing report line, or "" when the batch was
// clean. The singular/plural forms match the classic compiler output
// byte for byte.
func (t Tally) Summary() string {
	switch {
	case t.errors == 1:
		return "error: aborting due to 1 previous error"
	case t.errors > 1:
		return fmt.Sprintf("error: aborting due to %d previous errors", t.errors)
	case t.warnings == 1:
		return "warning: 1 warning emitted"
	case t.warnings > 1:
		return fmt.Sprintf("warning: %d warnings emitted", t.warnings)
	}
	return ""
}
