package analyzer

// Violation is the core's output record: a rule match, the position of
// the offending call, and the chain of calls leading to it from the
// handler. Two violations are distinct if any of {position, rule code,
// chain} differ — the same site reached by two chains is two records
// (§3, §8 invariant 5).
type Violation struct {
	Code      string
	Message   string
	Position  Position
	CallChain CallChain
}

// DiagnosticKind tags the two non-fatal conditions the core surfaces
// to the CLI layer (§7).
type DiagnosticKind int

const (
	ParseErrorDiagnostic DiagnosticKind = iota
	UnresolvedImportDiagnostic
)

// Diagnostic is a warning-level record: a parse failure or an import
// that couldn't be mapped into the project.
type Diagnostic struct {
	Kind     DiagnosticKind
	Position Position
	Detail   string
}

// ViolationSink is an append-only, ordered collection of violations.
// Emission order is handler-by-handler, in each handler's traversal
// order (§4.7).
type ViolationSink struct {
	items []Violation
}

func (s *ViolationSink) Add(v Violation) {
	s.items = append(s.items, v)
}

func (s *ViolationSink) All() []Violation {
	return s.items
}

// DiagnosticSink is an append-only, ordered collection of diagnostics,
// deduplicated by (kind, file, detail) so a reference that recurs on
// many call paths produces exactly one warning (§4.3).
type DiagnosticSink struct {
	items []Diagnostic
	seen  map[string]bool
}

func NewDiagnosticSink() *DiagnosticSink {
	return &DiagnosticSink{seen: make(map[string]bool)}
}

func (s *DiagnosticSink) Add(d Diagnostic) {
	key := dedupeKey(d)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, d)
}

func (s *DiagnosticSink) All() []Diagnostic {
	return s.items
}

func dedupeKey(d Diagnostic) string {
	kind := "parse_error"
	if d.Kind == UnresolvedImportDiagnostic {
		kind = "unresolved_import"
	}
	return kind + "|" + d.Position.File + "|" + d.Detail
}
