package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"caret/internal/diag"
	"caret/internal/diagfmt"
	"caret/internal/driver"
)

// errDiagnosticsRendered signals a non-zero exit after the report has
// already been printed; cobra output stays suppressed.
var errDiagnosticsRendered = errors.New("diagnostics contained errors")

var renderCmd = &cobra.Command{
	Use:   "render [flags] <bundle.json|directory>...",
	Short: "Render diagnostics bundles into compiler-style reports",
	Long:  `Render loads one or more diagnostics bundles and prints their diagnostics in the selected output format`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	renderCmd.Flags().Bool("with-notes", false, "include secondary labels in short and json output")
	renderCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	renderCmd.Flags().Int("jobs", 0, "max parallel workers for batch rendering (0=auto)")
	renderCmd.Flags().Bool("render-cache", false, "enable the persistent render cache")
	renderCmd.Flags().String("ui", "off", "interactive progress view (auto|on|off)")
	renderCmd.Flags().Uint8("tab-width", 0, "tab stop width for snippet expansion (0=default)")
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("render-cache")
	if err != nil {
		return fmt.Errorf("failed to get render-cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	tabWidth, err := cmd.Flags().GetUint8("tab-width")
	if err != nil {
		return fmt.Errorf("failed to get tab-width flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	// Manifest values fill in for flags the user did not set.
	manifest, found, err := loadRenderManifest("")
	if err != nil {
		return err
	}
	if found {
		r := manifest.Config.Render
		if !cmd.Flags().Changed("format") && r.Format != "" {
			format = r.Format
		}
		if !cmd.Flags().Changed("tab-width") && r.TabWidth > 0 {
			tabWidth = uint8(r.TabWidth)
		}
		if !cmd.Root().PersistentFlags().Changed("color") && r.Color != "" {
			colorFlag = r.Color
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && r.MaxDiagnostics > 0 {
			maxDiagnostics = r.MaxDiagnostics
		}
	}

	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	paths, err := driver.ListBundles(args)
	if err != nil {
		return fmt.Errorf("failed to collect bundles: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no bundle files found")
	}

	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	opts := driver.Options{
		Format: format,
		Pretty: diagfmt.PrettyOpts{
			Color:    useColor,
			TabWidth: tabWidth,
			PathMode: pathMode,
			Max:      maxDiagnostics,
		},
		JSON: diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              maxDiagnostics,
			IncludeSecondary: withNotes,
			IncludeFooters:   withNotes,
		},
		Sarif: diagfmt.SarifRunMeta{
			ToolName:       "caret",
			ToolVersion:    "0.1.0",
			InvocationArgs: os.Args,
		},
		WithSecondary: withNotes,
		Jobs:          jobs,
	}
	if useCache {
		cache, err := driver.OpenRenderCache("caret")
		if err != nil {
			return fmt.Errorf("failed to open render cache: %w", err)
		}
		opts.Cache = cache
	}

	var (
		results []driver.Result
		tally   diag.Tally
	)
	if shouldUseTUI(mode) && format == "pretty" {
		results, tally, err = runRenderWithUI(cmd.Context(), "rendering bundles", paths, opts)
	} else {
		results, tally, err = driver.RenderBatch(cmd.Context(), paths, opts)
	}
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	failed := false
	for idx, r := range results {
		if r.Err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "caret: %s: %v\n", r.Path, r.Err)
			continue
		}
		if format == "pretty" && len(results) > 1 {
			if idx > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n", r.Path)
		}
		fmt.Fprint(os.Stdout, r.Output)
	}

	if !quiet && (format == "pretty" || format == "short") {
		if summary := tally.Summary(); summary != "" {
			fmt.Fprintln(os.Stdout, summary)
		}
	}

	if failed || tally.Errors() > 0 {
		// Suppress cobra usage output, the report already says it all
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errDiagnosticsRendered
	}
	return nil
}
