package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// DefaultTabWidth is the tab-stop width used when PrettyOpts.TabWidth
// is zero. Tabs are expanded identically in the source line and its
// decoration line so the two stay aligned.
const DefaultTabWidth = 4

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	TabWidth uint8 // 0 means DefaultTabWidth
	PathMode PathMode
	Max      int // truncate output, not the Bag; 0 means no limit
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col next to byte offsets
	PathMode         PathMode
	Max              int
	IncludeSecondary bool
	IncludeFooters   bool
}

// SarifRunMeta provides tool metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

func (p PrettyOpts) tabWidth() int {
	if p.TabWidth == 0 {
		return DefaultTabWidth
	}
	return int(p.TabWidth)
}

func pathModeName(m PathMode) string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}
