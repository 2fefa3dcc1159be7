package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/MiuraToya/pythaw/analyzer"
)

// JSONFormatter renders a Result as the CLI's --output json payload.
type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{writer: os.Stdout}
}

func NewJSONFormatterWithWriter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

type jsonCallSite struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"col"`
	Name   string `json:"name"`
}

type jsonViolation struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	File      string         `json:"file"`
	Line      int            `json:"line"`
	Column    int            `json:"col"`
	CallChain []jsonCallSite `json:"call_chain"`
}

type jsonDiagnostic struct {
	Kind   string `json:"kind"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"col"`
	Detail string `json:"detail"`
}

type jsonOutput struct {
	Violations  []jsonViolation  `json:"violations"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Summary     jsonSummary      `json:"summary"`
}

type jsonSummary struct {
	ViolationCount int `json:"violation_count"`
	FilesScanned   int `json:"files_scanned"`
	HandlersFound  int `json:"handlers_found"`
}

func (f *JSONFormatter) Format(result *analyzer.Result) error {
	out := jsonOutput{
		Violations:  make([]jsonViolation, 0, len(result.Violations)),
		Diagnostics: make([]jsonDiagnostic, 0, len(result.Diagnostics)),
		Summary: jsonSummary{
			ViolationCount: len(result.Violations),
			FilesScanned:   result.FileCount,
			HandlersFound:  result.HandlerCount,
		},
	}

	for _, v := range result.Violations {
		chain := make([]jsonCallSite, 0, len(v.CallChain))
		for _, c := range v.CallChain {
			chain = append(chain, jsonCallSite{File: c.Position.File, Line: c.Position.Line, Column: c.Position.Column, Name: c.Name})
		}
		out.Violations = append(out.Violations, jsonViolation{
			Code:      v.Code,
			Message:   v.Message,
			File:      v.Position.File,
			Line:      v.Position.Line,
			Column:    v.Position.Column,
			CallChain: chain,
		})
	}

	for _, d := range result.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Kind:   diagnosticLabel(d.Kind),
			File:   d.Position.File,
			Line:   d.Position.Line,
			Column: d.Position.Column,
			Detail: d.Detail,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
