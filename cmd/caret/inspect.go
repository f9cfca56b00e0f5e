package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"caret/internal/bundle"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <bundle.json>",
	Short: "Validate a diagnostics bundle and summarize its contents",
	Long:  `Inspect checks a bundle's structure without rendering it, so it works even when the referenced sources are not on disk`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	path := args[0]
	b, err := bundle.Load(path)
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if quiet {
		return nil
	}

	errors, warnings, notes := b.Counts()
	fmt.Fprintf(os.Stdout, "%s: ok\n", path)
	fmt.Fprintf(os.Stdout, "  sources:     %d\n", len(b.Sources))
	fmt.Fprintf(os.Stdout, "  diagnostics: %d\n", len(b.Diagnostics))
	fmt.Fprintf(os.Stdout, "    errors:    %d\n", errors)
	fmt.Fprintf(os.Stdout, "    warnings:  %d\n", warnings)
	fmt.Fprintf(os.Stdout, "    notes:     %d\n", notes)
	return nil
}
