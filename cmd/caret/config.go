package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type renderManifest struct {
	Path   string
	Root   string
	Config caretConfig
}

type caretConfig struct {
	Render renderTable `toml:"render"`
}

// renderTable holds the [render] defaults. Every field is optional;
// explicit command-line flags win over manifest values.
type renderTable struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	TabWidth       int    `toml:"tab_width"`
	PathMode       string `toml:"path_mode"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

func findCaretToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "caret.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadRenderManifest(startDir string) (*renderManifest, bool, error) {
	manifestPath, ok, err := findCaretToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadCaretConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &renderManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadCaretConfig(path string) (caretConfig, error) {
	var cfg caretConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return caretConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validateRenderTable(path, cfg.Render); err != nil {
		return caretConfig{}, err
	}
	return cfg, nil
}

func validateRenderTable(path string, r renderTable) error {
	switch strings.TrimSpace(r.Format) {
	case "", "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("%s: invalid [render].format %q", path, r.Format)
	}
	switch strings.TrimSpace(r.Color) {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("%s: invalid [render].color %q", path, r.Color)
	}
	switch strings.TrimSpace(r.PathMode) {
	case "", "auto", "absolute", "relative", "basename":
	default:
		return fmt.Errorf("%s: invalid [render].path_mode %q", path, r.PathMode)
	}
	if r.TabWidth < 0 || r.TabWidth > 16 {
		return fmt.Errorf("%s: [render].tab_width must be between 0 and 16", path)
	}
	if r.MaxDiagnostics < 0 {
		return fmt.Errorf("%s: [render].max_diagnostics must not be negative", path)
	}
	return nil
}
