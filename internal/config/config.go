// Package config loads the pyproject.toml-style [tool.pythaw] section
// that seeds handler patterns, excludes, and custom rules for a run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/MiuraToya/pythaw/analyzer"
)

// FileName is the config file pythaw looks for at the project root when
// no --config flag is given.
const FileName = "pyproject.toml"

type fileConfig struct {
	Tool struct {
		Pythaw struct {
			HandlerPatterns []string           `toml:"handler_patterns"`
			Exclude         []string           `toml:"exclude"`
			EnabledRules    []string           `toml:"enabled_rules"`
			CustomRules     []customRuleConfig `toml:"custom_rules"`
		} `toml:"pythaw"`
	} `toml:"tool"`
}

type customRuleConfig struct {
	Pattern string `toml:"pattern"`
	Message string `toml:"message"`
}

// Overrides carries CLI flag values that take precedence over the file
// when present; a nil slice means "flag not set, keep the file's value".
type Overrides struct {
	HandlerPatterns []string
	Exclude         []string
	EnabledRules    []string
}

// Load reads path (if it exists) and merges in overrides, returning the
// analyzer-ready configuration. A missing file is not an error: pythaw
// runs with built-in handler patterns and all built-in rules enabled.
func Load(path string, projectRoot string, targets []string, overrides Overrides) (analyzer.Config, error) {
	cfg := analyzer.Config{
		ProjectRoot:     projectRoot,
		Targets:         targets,
		HandlerPatterns: analyzer.DefaultHandlerPatterns,
	}

	if path == "" {
		path = filepath.Join(projectRoot, FileName)
	}

	if data, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return analyzer.Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(fc.Tool.Pythaw.HandlerPatterns) > 0 {
			cfg.HandlerPatterns = fc.Tool.Pythaw.HandlerPatterns
		}
		cfg.Excludes = fc.Tool.Pythaw.Exclude
		cfg.EnabledRules = enabledRuleSet(fc.Tool.Pythaw.EnabledRules)
		for _, cr := range fc.Tool.Pythaw.CustomRules {
			if cr.Pattern == "" {
				return analyzer.Config{}, fmt.Errorf("parsing %s: custom rule missing pattern", path)
			}
			cfg.CustomRules = append(cfg.CustomRules, analyzer.CustomRuleSpec{
				Pattern: cr.Pattern,
				Message: cr.Message,
			})
		}
	} else if !os.IsNotExist(err) {
		return analyzer.Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(overrides.HandlerPatterns) > 0 {
		cfg.HandlerPatterns = overrides.HandlerPatterns
	}
	if len(overrides.Exclude) > 0 {
		cfg.Excludes = overrides.Exclude
	}
	if len(overrides.EnabledRules) > 0 {
		cfg.EnabledRules = enabledRuleSet(overrides.EnabledRules)
	}

	if err := validateRuleSelection(cfg.EnabledRules); err != nil {
		return analyzer.Config{}, err
	}

	return cfg, nil
}

func enabledRuleSet(codes []string) map[string]bool {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// validateRuleSelection rejects unknown rule codes up front, per the
// configuration-error contract: malformed selection is fatal before the
// core ever runs.
func validateRuleSelection(enabled map[string]bool) error {
	if enabled == nil {
		return nil
	}
	known := make(map[string]bool)
	for _, r := range analyzer.BuiltinRules() {
		known[r.Code] = true
	}
	for code := range enabled {
		if !known[code] {
			return fmt.Errorf("unknown rule code %q", code)
		}
	}
	return nil
}
