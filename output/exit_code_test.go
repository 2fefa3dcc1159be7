package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MiuraToya/pythaw/analyzer"
)

func TestDetermineExitCode(t *testing.T) {
	cases := []struct {
		name   string
		result *analyzer.Result
		want   ExitCode
	}{
		{"clean run", &analyzer.Result{}, ExitCodeSuccess},
		{"has violation", &analyzer.Result{Violations: []analyzer.Violation{{}}}, ExitCodeFindings},
		{
			"has parse error diagnostic",
			&analyzer.Result{Diagnostics: []analyzer.Diagnostic{{Kind: analyzer.ParseErrorDiagnostic}}},
			ExitCodeFindings,
		},
		{
			"unresolved import alone does not change exit code",
			&analyzer.Result{Diagnostics: []analyzer.Diagnostic{{Kind: analyzer.UnresolvedImportDiagnostic}}},
			ExitCodeSuccess,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetermineExitCode(tc.result))
		})
	}
}
