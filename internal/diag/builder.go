package diag

import "caret/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// WithLabel sets the inline label rendered next to the primary markers.
func (d Diagnostic) WithLabel(msg string) Diagnostic {
	d.PrimaryLabel = msg
	return d
}

func (d Diagnostic) WithSecondary(sp source.Span, msg string) Diagnostic {
	d.Secondary = append(d.Secondary, Label{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithNote(text string) Diagnostic {
	d.Footers = append(d.Footers, Footer{Kind: FooterNote, Text: text})
	return d
}

func (d Diagnostic) WithHelp(text string) Diagnostic {
	d.Footers = append(d.Footers, Footer{Kind: FooterHelp, Text: text})
	return d
}
