package analyzer

// RuleKind tags the two flavors of Rule. Inheritance-based polymorphism
// in the reference tooling this tool learns from is replaced here by a
// tagged variant plus a shared Match method — no rule hierarchy needed.
type RuleKind int

const (
	BuiltinRuleKind RuleKind = iota
	CustomRuleKind
)

// Rule is a single call-pattern matcher: a stable code, a message
// template, and the fully-qualified dotted name it watches for.
// Matching is exact dotted-name equality against a call site's
// resolved QualifiedName (§4.4) — no globbing, no prefix matching.
type Rule struct {
	Code    string
	Kind    RuleKind
	Pattern string // dotted name this rule fires on, e.g. "boto3.client"
	Message string
}

// Match reports whether this rule fires for the given resolved
// qualified name.
func (r Rule) Match(qualifiedName string) bool {
	return qualifiedName == r.Pattern
}

// RuleRegistry holds the enabled set of built-in and custom rules for a
// run. Custom rules use the same matching mechanism as built-ins; they
// differ only in where their (pattern, message) pair came from.
type RuleRegistry struct {
	rules []Rule
}

// NewRuleRegistry builds a registry from the built-in rule set filtered
// to `enabled` (nil means "all built-ins enabled"; a non-nil map, even
// empty, selects only the codes it names), plus any custom rules
// supplied by configuration.
func NewRuleRegistry(enabled map[string]bool, custom []CustomRuleSpec) *RuleRegistry {
	reg := &RuleRegistry{}
	for _, r := range BuiltinRules() {
		if enabled == nil || enabled[r.Code] {
			reg.rules = append(reg.rules, r)
		}
	}
	for i, c := range custom {
		reg.rules = append(reg.rules, Rule{
			Code:    customRuleCode(i),
			Kind:    CustomRuleKind,
			Pattern: c.Pattern,
			Message: c.Message,
		})
	}
	return reg
}

// CustomRuleSpec is the configuration-layer shape for a custom rule:
// a dotted pattern to watch for and the message to report when it
// matches (§6, input contract).
type CustomRuleSpec struct {
	Pattern string
	Message string
}

func customRuleCode(index int) string {
	return "PWC" + itoa3(index+1)
}

func itoa3(n int) string {
	digits := [3]byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}

// AllRules returns every rule currently enabled in the registry, in
// registry order: built-ins as listed in builtin_rules.yaml, then
// custom rules in configuration order.
func (reg *RuleRegistry) AllRules() []Rule {
	out := make([]Rule, len(reg.rules))
	copy(out, reg.rules)
	return out
}

// Match runs every enabled rule against a resolved qualified name and
// returns the ones that fire. Multiple rules may match a single call;
// all are returned (§4.4).
func (reg *RuleRegistry) Match(qualifiedName string) []Rule {
	var hits []Rule
	for _, r := range reg.rules {
		if r.Match(qualifiedName) {
			hits = append(hits, r)
		}
	}
	return hits
}
