package output

import (
	"fmt"
	"io"
	"os"

	"github.com/MiuraToya/pythaw/analyzer"
)

// TextFormatter renders the concise text format specified in §6:
//
//	<file>:<line>:<col>: <code> <message>
//	  via <file>:<line>:<col> → Name1() → Name2() → ...
//
// followed by a "Found N violations in M files." footer.
type TextFormatter struct {
	writer io.Writer
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{writer: os.Stdout}
}

func NewTextFormatterWithWriter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

func (f *TextFormatter) Format(result *analyzer.Result) {
	for _, v := range result.Violations {
		fmt.Fprintf(f.writer, "%s:%d:%d: %s %s\n", v.Position.File, v.Position.Line, v.Position.Column, v.Code, v.Message)
		if len(v.CallChain) > 0 {
			first := v.CallChain[0]
			fmt.Fprintf(f.writer, "  via %s:%d:%d", first.Position.File, first.Position.Line, first.Position.Column)
			for _, site := range v.CallChain {
				fmt.Fprintf(f.writer, " → %s()", site.Name)
			}
			fmt.Fprintln(f.writer)
		}
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(f.writer, "%s:%d:%d: warning: %s: %s\n", d.Position.File, d.Position.Line, d.Position.Column, diagnosticLabel(d.Kind), d.Detail)
	}

	fmt.Fprintf(f.writer, "Found %d violations in %d files.\n", len(result.Violations), result.FileCount)
}

func diagnosticLabel(kind analyzer.DiagnosticKind) string {
	if kind == analyzer.ParseErrorDiagnostic {
		return "parse error"
	}
	return "unresolved import"
}
