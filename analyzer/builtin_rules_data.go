package analyzer

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin_rules.yaml
var builtinRulesYAML []byte

type builtinRuleDoc struct {
	Rules []struct {
		Code    string `yaml:"code"`
		Pattern string `yaml:"pattern"`
		Message string `yaml:"message"`
	} `yaml:"rules"`
}

var (
	builtinOnce  sync.Once
	builtinCache []Rule
)

// BuiltinRules returns the shipped PW00x rule set, parsed once from the
// embedded builtin_rules.yaml asset.
func BuiltinRules() []Rule {
	builtinOnce.Do(func() {
		var doc builtinRuleDoc
		if err := yaml.Unmarshal(builtinRulesYAML, &doc); err != nil {
			panic("analyzer: malformed builtin_rules.yaml: " + err.Error())
		}
		builtinCache = make([]Rule, 0, len(doc.Rules))
		for _, r := range doc.Rules {
			builtinCache = append(builtinCache, Rule{
				Code:    r.Code,
				Kind:    BuiltinRuleKind,
				Pattern: r.Pattern,
				Message: r.Message,
			})
		}
	})
	return builtinCache
}
