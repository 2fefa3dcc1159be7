package output

import (
	"encoding/json"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/MiuraToya/pythaw/analyzer"
)

// SARIFFormatter renders a Result as a SARIF 2.1.0 log, for CI systems
// that ingest code-scanning output (GitHub code scanning, etc).
type SARIFFormatter struct {
	writer  io.Writer
	version string
}

func NewSARIFFormatter(version string) *SARIFFormatter {
	return &SARIFFormatter{writer: os.Stdout, version: version}
}

func NewSARIFFormatterWithWriter(w io.Writer, version string) *SARIFFormatter {
	return &SARIFFormatter{writer: w, version: version}
}

func (f *SARIFFormatter) Format(result *analyzer.Result) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("pythaw", "https://github.com/MiuraToya/pythaw")

	f.buildRules(result, run)
	for _, v := range result.Violations {
		f.buildResult(v, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRules(result *analyzer.Result, run *sarif.Run) {
	seen := make(map[string]bool)
	for _, v := range result.Violations {
		if seen[v.Code] {
			continue
		}
		seen[v.Code] = true

		rule := run.AddRule(v.Code).
			WithDescription(v.Message).
			WithHelpURI("https://github.com/MiuraToya/pythaw#" + v.Code)
		rule.WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("warning"))
	}
}

func (f *SARIFFormatter) buildResult(v analyzer.Violation, run *sarif.Run) {
	result := run.CreateResultForRule(v.Code).
		WithMessage(sarif.NewTextMessage(v.Message))

	result.AddLocation(locationFor(v.Position))

	if len(v.CallChain) > 0 {
		f.addCodeFlow(v, result)
	}
}

func locationFor(pos analyzer.Position) *sarif.Location {
	region := sarif.NewRegion().WithStartLine(pos.Line)
	if pos.Column > 0 {
		region.WithStartColumn(pos.Column)
	}
	return sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(pos.File)).
				WithRegion(region),
		)
}

// addCodeFlow renders the violation's call chain as a SARIF thread flow
// from handler-first to the violation site last, so a CI annotation can
// show the exact reachability path (§4.5's CallChain, carried through
// to the external formatter per §6).
func (f *SARIFFormatter) addCodeFlow(v analyzer.Violation, result *sarif.Result) {
	locations := make([]*sarif.ThreadFlowLocation, 0, len(v.CallChain)+1)
	for _, site := range v.CallChain {
		loc := sarif.NewLocation().
			WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(site.Position.File)).
					WithRegion(sarif.NewRegion().WithStartLine(site.Position.Line)),
			).
			WithMessage(sarif.NewTextMessage(site.Name))
		locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(loc))
	}
	locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(locationFor(v.Position)))

	threadFlow := sarif.NewThreadFlow().WithLocations(locations)
	result.WithCodeFlows([]*sarif.CodeFlow{sarif.NewCodeFlow().WithThreadFlows([]*sarif.ThreadFlow{threadFlow})})
}
