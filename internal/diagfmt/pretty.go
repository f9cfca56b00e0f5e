package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/unicode/norm"

	"caret/internal/diag"
	"caret/internal/source"
)

// RenderedReport is the ordered sequence of text lines produced for one
// diagnostic. It is constructed on demand and holds no references into
// the FileSet.
type RenderedReport []string

// styles carries the ANSI styling for one render call. Styling is
// decided per call, never by process-global state, so concurrent
// renders with different options cannot interfere.
type styles struct {
	err    *color.Color
	warn   *color.Color
	note   *color.Color
	gutter *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		note:   color.New(color.FgCyan, color.Bold),
		gutter: color.New(color.FgBlue, color.Bold),
	}
	for _, c := range []*color.Color{s.err, s.warn, s.note, s.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *styles) forSeverity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return s.err
	case diag.SevWarning:
		return s.warn
	default:
		return s.note
	}
}

// Pretty renders the bag's diagnostics in the classic compiler report
// format. Callers are expected to bag.Sort() beforehand when they want
// deterministic ordering. Pretty holds no cross-call state; the batch
// summary line belongs to diag.Tally at the call site.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	for i := range maxItems {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		report, err := Format(items[i], fs, opts)
		if err != nil {
			return err
		}
		for _, line := range report {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// spanEntry is one located span of a diagnostic, primary or secondary.
type spanEntry struct {
	span      source.Span
	label     string
	secondary bool
	loc       source.Location
}

// Format renders exactly one diagnostic. It is a pure function of the
// diagnostic, the FileSet and the options: safe for concurrent use and
// deterministic. A span that fails to locate aborts the whole report
// with the locator's error unchanged; partial output would be
// misaligned and worse than none.
func Format(d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) (RenderedReport, error) {
	st := newStyles(opts.Color)
	sevStyle := st.forSeverity(d.Severity)

	entries, err := locateAll(d, fs)
	if err != nil {
		return nil, err
	}

	var report RenderedReport

	// Header: <severity>[<code>]: <message>, code segment omitted when
	// absent.
	head := d.Severity.String()
	if !d.Code.IsZero() {
		head += "[" + d.Code.String() + "]"
	}
	report = append(report, sevStyle.Sprint(head)+": "+norm.NFC.String(d.Message))

	barWidth := lineBarWidth(entries)
	pad := strings.Repeat(" ", barWidth)

	// One window per file, primary file first.
	for wi, win := range windows(entries) {
		file := fs.Get(win[0].span.File)
		path := file.FormatPath(pathModeName(opts.PathMode), fs.BaseDir())

		arrow := "--> "
		if wi > 0 {
			arrow = "::: "
		}
		report = append(report,
			st.gutter.Sprint(pad+arrow)+fmt.Sprintf("%s:%d:%d", path, win[0].loc.Line, win[0].loc.Col),
			st.gutter.Sprint(pad+" |"),
		)

		report = renderWindow(report, win, file, barWidth, opts, st, sevStyle)
	}

	// Footers, in the producer's order.
	if len(d.Footers) > 0 {
		report = append(report, st.gutter.Sprint(pad+" |"))
		for _, f := range d.Footers {
			report = append(report,
				st.gutter.Sprint(pad+" = ")+st.note.Sprint(f.Kind.String()+":")+" "+norm.NFC.String(f.Text))
		}
	}

	return report, nil
}

// locateAll resolves every span of the diagnostic, primary first.
func locateAll(d diag.Diagnostic, fs *source.FileSet) ([]spanEntry, error) {
	entries := make([]spanEntry, 0, 1+len(d.Secondary))

	loc, err := fs.Locate(d.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary span: %w", err)
	}
	entries = append(entries, spanEntry{
		span:  d.Primary,
		label: d.PrimaryLabel,
		loc:   loc,
	})

	for i, sec := range d.Secondary {
		loc, err := fs.Locate(sec.Span)
		if err != nil {
			return nil, fmt.Errorf("secondary span %d: %w", i, err)
		}
		entries = append(entries, spanEntry{
			span:      sec.Span,
			label:     sec.Msg,
			secondary: true,
			loc:       loc,
		})
	}
	return entries, nil
}

// windows partitions the entries by file, keeping first-occurrence
// order so the primary file always renders first.
func windows(entries []spanEntry) [][]spanEntry {
	var order []source.FileID
	byFile := make(map[source.FileID][]spanEntry)
	for _, e := range entries {
		if _, ok := byFile[e.span.File]; !ok {
			order = append(order, e.span.File)
		}
		byFile[e.span.File] = append(byFile[e.span.File], e)
	}
	out := make([][]spanEntry, 0, len(order))
	for _, id := range order {
		out = append(out, byFile[id])
	}
	return out
}

// lineBarWidth is the width of the line-number gutter: the widest line
// number among the rendered spans, never narrower than two digits.
func lineBarWidth(entries []spanEntry) int {
	var greatest uint32
	for _, e := range entries {
		greatest = max(greatest, e.loc.EndLine)
	}
	return max(2, len(fmt.Sprint(greatest)))
}

// lineBlock aggregates every mark that touches one source line.
type lineBlock struct {
	line  uint32
	text  string
	marks []markRange
	// labelled marks get their own decoration text; the rightmost one
	// rides inline on the shared decoration line.
	labels []labelledMark
}

type labelledMark struct {
	mark  markRange
	label string
}

func renderWindow(report RenderedReport, win []spanEntry, file *source.File, barWidth int, opts PrettyOpts, st *styles, sevStyle *color.Color) RenderedReport {
	// A multi-line primary takes the sidebar path; single-line marks
	// (including clamped multi-line secondaries) share decoration
	// lines per source line.
	var simple []spanEntry
	for _, e := range win {
		if !e.secondary && e.loc.IsMultiline {
			report = renderMultiline(report, e, file, barWidth, opts, st, sevStyle)
			continue
		}
		simple = append(simple, e)
	}
	if len(simple) == 0 {
		return report
	}

	blocks := make(map[uint32]*lineBlock)
	for _, e := range simple {
		b := blocks[e.loc.Line]
		if b == nil {
			b = &lineBlock{line: e.loc.Line, text: e.loc.LineText}
			blocks[e.loc.Line] = b
		}
		lineStart := file.LineStart(e.loc.Line)
		m := markRange{
			start:     e.span.Start - lineStart,
			end:       e.span.End - lineStart,
			secondary: e.secondary,
		}
		if e.loc.IsMultiline {
			// Secondary spanning several lines decorates its first
			// line only.
			m.end = e.span.Start - lineStart + uint32(len(e.loc.LineText))
		}
		b.marks = append(b.marks, m)
		if e.label != "" {
			b.labels = append(b.labels, labelledMark{mark: m, label: e.label})
		}
	}

	lines := make([]uint32, 0, len(blocks))
	for l := range blocks {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })

	pad := strings.Repeat(" ", barWidth)
	prev := uint32(0)
	for _, l := range lines {
		if prev != 0 && l > prev+1 {
			report = append(report, st.gutter.Sprint("..."))
		}
		prev = l

		b := blocks[l]
		expanded, cells := annotateLine(b.text, b.marks, opts.tabWidth())
		report = append(report, st.gutter.Sprintf("%*d | ", barWidth, b.line)+expanded)

		inline, extras := splitLabels(b.labels)
		deco := colorCells(cells, st, sevStyle)
		if inline != nil {
			deco += " " + labelStyle(st, sevStyle, inline.mark).Sprint(norm.NFC.String(inline.label))
		}
		report = append(report, st.gutter.Sprint(pad+" | ")+deco)

		for _, ex := range extras {
			_, exCells := annotateLine(b.text, []markRange{ex.mark}, opts.tabWidth())
			report = append(report,
				st.gutter.Sprint(pad+" | ")+
					colorCells(exCells, st, sevStyle)+" "+
					labelStyle(st, sevStyle, ex.mark).Sprint(norm.NFC.String(ex.label)))
		}
	}
	return report
}

// splitLabels picks the rightmost labelled mark to ride inline on the
// shared decoration line; the rest get their own lines, rightmost
// first.
func splitLabels(labels []labelledMark) (*labelledMark, []labelledMark) {
	if len(labels) == 0 {
		return nil, nil
	}
	sorted := append([]labelledMark(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].mark.end > sorted[j].mark.end })
	return &sorted[0], sorted[1:]
}

// renderMultiline draws a span covering several lines with the sidebar
// form:
//
//	 1 | / fn main() {
//	 2 | |     body
//	 3 | | }
//	   | |_^ label
//
// Long spans keep their first and last two lines with a break between.
func renderMultiline(report RenderedReport, e spanEntry, file *source.File, barWidth int, opts PrettyOpts, st *styles, sevStyle *color.Color) RenderedReport {
	pad := strings.Repeat(" ", barWidth)
	first, last := e.loc.Line, e.loc.EndLine

	emit := func(line uint32) {
		sidebar := "| "
		if line == first {
			sidebar = "/ "
		}
		expanded, _ := annotateLine(file.GetLine(line), nil, opts.tabWidth())
		report = append(report,
			st.gutter.Sprintf("%*d | ", barWidth, line)+sevStyle.Sprint(sidebar)+expanded)
	}

	if last-first+1 <= 6 {
		for l := first; l <= last; l++ {
			emit(l)
		}
	} else {
		emit(first)
		emit(first + 1)
		report = append(report, st.gutter.Sprint("..."))
		emit(last - 1)
		emit(last)
	}

	// Closing decoration: underscores run from the sidebar to the end
	// column, the caret lands under the span's final character.
	endLine := file.GetLine(last)
	endOff := e.span.End - file.LineStart(last)
	endCol := displayColAt(endLine, endOff, opts.tabWidth())
	closing := "|" + strings.Repeat("_", max(endCol, 1)) + "^"
	if e.label != "" {
		closing += " " + norm.NFC.String(e.label)
	}
	report = append(report, st.gutter.Sprint(pad+" | ")+sevStyle.Sprint(closing))
	return report
}

// colorCells renders decoration cells with per-run styling: carets in
// the severity color, secondary dashes in the gutter color.
func colorCells(cells []uint8, st *styles, sevStyle *color.Color) string {
	plain := decorationString(cells)
	var b strings.Builder
	i := 0
	for i < len(plain) {
		j := i
		for j < len(plain) && plain[j] == plain[i] {
			j++
		}
		run := plain[i:j]
		switch plain[i] {
		case '^':
			b.WriteString(sevStyle.Sprint(run))
		case '-':
			b.WriteString(st.gutter.Sprint(run))
		default:
			b.WriteString(run)
		}
		i = j
	}
	return b.String()
}

func labelStyle(st *styles, sevStyle *color.Color, m markRange) *color.Color {
	if m.secondary {
		return st.gutter
	}
	return sevStyle
}

// displayColAt measures the printable width of line's prefix up to the
// given byte offset, tabs expanded.
func displayColAt(line string, off uint32, tabWidth int) int {
	if int(off) > len(line) {
		off = uint32(len(line))
	}
	return displayWidth(line[:off], tabWidth)
}
