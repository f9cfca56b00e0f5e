// Package bundle defines the diagnostics-bundle interchange format.
//
// A bundle is a JSON document pairing diagnostic records with the
// source files their spans point into. Sources may carry inline
// content (captured transcripts, tests) or reference files on disk
// relative to the bundle location.
package bundle

// Source names one file the bundle's diagnostics refer to.
type Source struct {
	Path    string `json:"path"`
	Virtual bool   `json:"virtual,omitempty"`
	Content string `json:"content,omitempty"`
}

// SpanRef is a half-open byte range into a named source.
type SpanRef struct {
	File  string `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Label string `json:"label,omitempty"`
}

// FooterRef is one trailing note or help line.
type FooterRef struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Record is the wire form of a single diagnostic.
type Record struct {
	Severity  string      `json:"severity"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	Primary   SpanRef     `json:"primary"`
	Secondary []SpanRef   `json:"secondary,omitempty"`
	Footers   []FooterRef `json:"footers,omitempty"`
}

// Bundle is a parsed diagnostics bundle.
type Bundle struct {
	Sources     []Source `json:"sources"`
	Diagnostics []Record `json:"diagnostics"`
}
