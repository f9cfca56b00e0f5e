package diagfmt

import (
	"encoding/json"
	"io"

	"caret/internal/diag"
	"caret/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type sarifInvocation struct {
	CommandLine         string `json:"commandLine,omitempty"`
	ExecutionSuccessful bool   `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId,omitempty"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func makeSarifLocation(span source.Span, msg string, fs *source.FileSet) sarifLocation {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)

	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
			Region: sarifRegion{
				StartLine:   start.Line,
				StartColumn: start.Col,
				EndLine:     end.Line,
				EndColumn:   end.Col,
				ByteOffset:  span.Start,
				ByteLength:  span.Len(),
			},
		},
	}
	if msg != "" {
		loc.Message = &sarifMessage{Text: msg}
	}
	return loc
}

// Sarif writes the bag as a SARIF 2.1.0 log with a single run.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	results := make([]sarifResult, 0, bag.Len())
	for _, d := range bag.Items() {
		res := sarifResult{
			RuleID:  d.Code.String(),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{
				makeSarifLocation(d.Primary, d.PrimaryLabel, fs),
			},
		}
		for _, sec := range d.Secondary {
			res.RelatedLocations = append(res.RelatedLocations, makeSarifLocation(sec.Span, sec.Msg, fs))
		}
		results = append(results, res)
	}

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			CommandLine:         joinArgs(meta.InvocationArgs),
			ExecutionSuccessful: !bag.HasErrors(),
		}}
	}

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []sarifRun{run},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
