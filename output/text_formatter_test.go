package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MiuraToya/pythaw/analyzer"
)

func TestTextFormatter_DirectViolationHasNoViaLine(t *testing.T) {
	result := &analyzer.Result{
		Violations: []analyzer.Violation{
			{
				Code:     "PW001",
				Message:  "boto3.client() should be created at module scope",
				Position: analyzer.Position{File: "h.py", Line: 3, Column: 8},
			},
		},
		FileCount: 1,
	}

	var buf bytes.Buffer
	NewTextFormatterWithWriter(&buf).Format(result)

	out := buf.String()
	assert.Contains(t, out, "h.py:3:8: PW001 boto3.client() should be created at module scope")
	assert.NotContains(t, out, "via")
	assert.Contains(t, out, "Found 1 violations in 1 files.")
}

func TestTextFormatter_IndirectViolationHasViaLine(t *testing.T) {
	result := &analyzer.Result{
		Violations: []analyzer.Violation{
			{
				Code:     "PW001",
				Message:  "boto3.client() should be created at module scope",
				Position: analyzer.Position{File: "infra/aws.py", Line: 4, Column: 17},
				CallChain: analyzer.CallChain{
					{Position: analyzer.Position{File: "h.py", Line: 3, Column: 11}, Name: "S3Client"},
				},
			},
		},
		FileCount: 2,
	}

	var buf bytes.Buffer
	NewTextFormatterWithWriter(&buf).Format(result)

	out := buf.String()
	assert.Contains(t, out, "via h.py:3:11 → S3Client()")
}

func TestTextFormatter_DiagnosticsPrintAsWarnings(t *testing.T) {
	result := &analyzer.Result{
		Diagnostics: []analyzer.Diagnostic{
			{Kind: analyzer.UnresolvedImportDiagnostic, Position: analyzer.Position{File: "h.py", Line: 1, Column: 0}, Detail: "cannot resolve import some_thirdparty"},
		},
	}

	var buf bytes.Buffer
	NewTextFormatterWithWriter(&buf).Format(result)

	assert.Contains(t, buf.String(), "warning: unresolved import: cannot resolve import some_thirdparty")
}
