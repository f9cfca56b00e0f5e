package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"caret/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "caret",
	Short: "Compiler-diagnostics rendering toolkit",
	Long:  `caret renders structured diagnostics bundles into compiler-style reports`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
