package output

import "github.com/MiuraToya/pythaw/analyzer"

// ExitCode mirrors the core's exit-code contract (§6): the CLI derives
// it from what the core returned, never the reverse.
type ExitCode int

const (
	ExitCodeSuccess     ExitCode = 0
	ExitCodeFindings    ExitCode = 1
	ExitCodeConfigError ExitCode = 2
)

// DetermineExitCode implements the table in §6 exactly: violations or
// parse errors both push the run to exit 1; neither does, exit 0.
// Configuration errors are decided before the core ever runs and are
// not this function's concern.
func DetermineExitCode(result *analyzer.Result) ExitCode {
	if len(result.Violations) > 0 {
		return ExitCodeFindings
	}
	for _, d := range result.Diagnostics {
		if d.Kind == analyzer.ParseErrorDiagnostic {
			return ExitCodeFindings
		}
	}
	return ExitCodeSuccess
}
