package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiuraToya/pythaw/analyzer"
)

func TestSARIFFormatter_ProducesValidEnvelope(t *testing.T) {
	var buf bytes.Buffer
	result := &analyzer.Result{
		Violations: []analyzer.Violation{
			{
				Code:     "PW001",
				Message:  "boto3.client() should be created at module scope",
				Position: analyzer.Position{File: "h.py", Line: 3, Column: 8},
			},
		},
	}

	err := NewSARIFFormatterWithWriter(&buf, "0.1.0").Format(result)
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, "2.1.0", report["version"])

	runs := report["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})

	results := run["results"].([]interface{})
	require.Len(t, results, 1)
	res := results[0].(map[string]interface{})
	ruleID := res["ruleId"].(string)
	assert.Equal(t, "PW001", ruleID)
}

func TestSARIFFormatter_DedupesRepeatedRuleCode(t *testing.T) {
	var buf bytes.Buffer
	result := &analyzer.Result{
		Violations: []analyzer.Violation{
			{Code: "PW001", Message: "m1", Position: analyzer.Position{File: "a.py", Line: 1}},
			{Code: "PW001", Message: "m1", Position: analyzer.Position{File: "b.py", Line: 2}},
		},
	}

	require.NoError(t, NewSARIFFormatterWithWriter(&buf, "0.1.0").Format(result))

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	run := report["runs"].([]interface{})[0].(map[string]interface{})
	tool := run["tool"].(map[string]interface{})
	driver := tool["driver"].(map[string]interface{})
	rules := driver["rules"].([]interface{})
	assert.Len(t, rules, 1)
}
