package diag

import "caret/internal/source"

// Reporter is the minimal contract for receiving diagnostics from
// producers. Implementations: BagReporter (stores into a Bag),
// DedupReporter (suppresses duplicates, wraps another Reporter).
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to a
// Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// ReportNote is a shortcut for SevNote diagnostics.
func ReportNote(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevNote, code, primary, msg)
}

// WithLabel sets the primary inline label.
func (b *ReportBuilder) WithLabel(msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.PrimaryLabel = msg
	return b
}

// WithSecondary appends a labelled context span.
func (b *ReportBuilder) WithSecondary(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithSecondary(sp, msg)
	return b
}

// WithNote appends a "= note:" footer.
func (b *ReportBuilder) WithNote(text string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(text)
	return b
}

// WithHelp appends a "= help:" footer.
func (b *ReportBuilder) WithHelp(text string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithHelp(text)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter is an adapter that writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
