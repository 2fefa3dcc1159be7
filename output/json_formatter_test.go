package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MiuraToya/pythaw/analyzer"
)

func TestJSONFormatter_StructureAndCallChain(t *testing.T) {
	var buf bytes.Buffer
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
		Diagnostics: []analyzer.Diagnostic{
			{Kind: analyzer.UnresolvedImportDiagnostic, Position: analyzer.Position{File: "h.py", Line: 1}, Detail: "cannot resolve import x"},
		},
		HandlerCount: 1,
		FileCount:    2,
	}

	require.NoError(t, NewJSONFormatterWithWriter(&buf).Format(result))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	violations := decoded["violations"].([]interface{})
	require.Len(t, violations, 1)
	v := violations[0].(map[string]interface{})
	require.Equal(t, "PW001", v["code"])

	chain := v["call_chain"].([]interface{})
	require.Len(t, chain, 1)
	require.Equal(t, "S3Client", chain[0].(map[string]interface{})["name"])

	summary := decoded["summary"].(map[string]interface{})
	require.Equal(t, float64(1), summary["violation_count"])
	require.Equal(t, float64(2), summary["files_scanned"])
}
