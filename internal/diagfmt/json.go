package diagfmt

import (
	"encoding/json"
	"io"

	"caret/internal/diag"
	"caret/internal/source"
)

// LocationJSON is a span resolved for machine output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// SecondaryJSON is one labelled context span.
type SecondaryJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FooterJSON is one note/help line.
type FooterJSON struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// DiagnosticJSON is one diagnostic in machine form.
type DiagnosticJSON struct {
	Severity  string          `json:"severity"`
	Code      string          `json:"code,omitempty"`
	Message   string          `json:"message"`
	Label     string          `json:"label,omitempty"`
	Location  LocationJSON    `json:"location"`
	Secondary []SecondaryJSON `json:"secondary,omitempty"`
	Footers   []FooterJSON    `json:"footers,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)

	var path string
	switch pathMode {
	case PathModeAbsolute:
		path = f.FormatPath("absolute", "")
	case PathModeRelative:
		path = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		path = f.FormatPath("basename", "")
	case PathModeAuto:
		path = f.FormatPath("auto", "")
	default:
		path = f.Path
	}

	loc := LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
	}

	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc
}

// BuildDiagnosticsOutput assembles the JSON output structure without
// serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Label:    d.PrimaryLabel,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}

		if opts.IncludeSecondary && len(d.Secondary) > 0 {
			diagJSON.Secondary = make([]SecondaryJSON, len(d.Secondary))
			for j, sec := range d.Secondary {
				diagJSON.Secondary[j] = SecondaryJSON{
					Message:  sec.Msg,
					Location: makeLocation(sec.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFooters && len(d.Footers) > 0 {
			diagJSON.Footers = make([]FooterJSON, len(d.Footers))
			for j, f := range d.Footers {
				diagJSON.Footers[j] = FooterJSON{Kind: f.Kind.String(), Text: f.Text}
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes the bag as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
