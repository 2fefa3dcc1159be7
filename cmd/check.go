package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MiuraToya/pythaw/analyzer"
	"github.com/MiuraToya/pythaw/internal/analytics"
	"github.com/MiuraToya/pythaw/internal/config"
	"github.com/MiuraToya/pythaw/output"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Scan for heavy resource initialization reachable from handler entry points",
	Long: `check walks the given paths (or the --project root) for serverless
handler functions, then traces each handler's call graph for client and
connection constructors that run on every invocation.

Examples:
  pythaw check .
  pythaw check src/handlers --output json
  pythaw check . --config pythaw.toml --handler-pattern '*_handler'`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("config", "", "Path to the pyproject.toml-style config file (default: <project>/pyproject.toml)")
	checkCmd.Flags().String("project", ".", "Project root used for import resolution")
	checkCmd.Flags().StringArray("handler-pattern", nil, "Glob pattern a function name must match to be treated as a handler (repeatable)")
	checkCmd.Flags().StringArray("exclude", nil, "Glob pattern excluded from handler discovery (repeatable)")
	checkCmd.Flags().StringArray("rule", nil, "Enable only this built-in rule code (repeatable; default: all)")
	checkCmd.Flags().String("output", "text", "Output format: text, json, or sarif")
	checkCmd.Flags().String("output-file", "", "Write output to this file instead of stdout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	projectPath, _ := cmd.Flags().GetString("project")
	configPath, _ := cmd.Flags().GetString("config")
	handlerPatterns, _ := cmd.Flags().GetStringArray("handler-pattern")
	excludes, _ := cmd.Flags().GetStringArray("exclude")
	enabledRules, _ := cmd.Flags().GetStringArray("rule")
	outputFormat, _ := cmd.Flags().GetString("output")
	outputFile, _ := cmd.Flags().GetString("output-file")

	if outputFormat != "text" && outputFormat != "json" && outputFormat != "sarif" {
		exitWithConfigError("--output must be 'text', 'json', or 'sarif'")
	}

	absProjectPath, err := filepath.Abs(projectPath)
	if err != nil {
		exitWithConfigError("resolving project path: %v", err)
	}

	targets := args
	if len(targets) == 0 {
		targets = []string{absProjectPath}
	} else {
		for i, t := range targets {
			abs, err := filepath.Abs(t)
			if err != nil {
				exitWithConfigError("resolving target path %q: %v", t, err)
			}
			targets[i] = abs
		}
	}

	cfg, err := config.Load(configPath, absProjectPath, targets, config.Overrides{
		HandlerPatterns: handlerPatterns,
		Exclude:         excludes,
		EnabledRules:    enabledRules,
	})
	if err != nil {
		exitWithConfigError("%v", err)
	}

	logger := output.NewLoggerWithWriter(verbosityFromFlags(cmd), os.Stderr)
	noBanner, _ := cmd.Flags().GetBool("no-banner")
	if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
		output.PrintBanner(logger.GetWriter(), Version)
	}

	analytics.ReportEventWithProperties(analytics.CheckStarted, map[string]interface{}{
		"output_format":      outputFormat,
		"has_custom_rules":   len(cfg.CustomRules) > 0,
		"custom_rule_count":  len(cfg.CustomRules),
		"has_rule_selection": cfg.EnabledRules != nil,
	})

	logger.Progress("Scanning %s for handlers...", absProjectPath)

	result, err := analyzer.Run(cfg)
	if err != nil {
		analytics.ReportEventWithProperties(analytics.CheckFailed, map[string]interface{}{
			"error_type": "run",
		})
		return fmt.Errorf("running analysis: %w", err)
	}

	logger.Progress("Found %d handler(s) across %d file(s)", result.HandlerCount, result.FileCount)

	dest := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("opening --output-file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	if err := writeResult(dest, outputFormat, result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	analytics.ReportEventWithProperties(analytics.CheckCompleted, map[string]interface{}{
		"violation_count":  len(result.Violations),
		"diagnostic_count": len(result.Diagnostics),
		"handler_count":    result.HandlerCount,
	})

	os.Exit(int(output.DetermineExitCode(result)))
	return nil
}

func writeResult(dest *os.File, format string, result *analyzer.Result) error {
	switch format {
	case "json":
		return output.NewJSONFormatterWithWriter(dest).Format(result)
	case "sarif":
		return output.NewSARIFFormatterWithWriter(dest, Version).Format(result)
	default:
		output.NewTextFormatterWithWriter(dest).Format(result)
		return nil
	}
}
