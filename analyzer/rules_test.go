package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRules_AreLoadedFromEmbeddedAsset(t *testing.T) {
	rules := BuiltinRules()
	require.NotEmpty(t, rules)

	var sawPW001 bool
	for _, r := range rules {
		if r.Code == "PW001" {
			sawPW001 = true
			assert.Equal(t, "boto3.client", r.Pattern)
			assert.Equal(t, BuiltinRuleKind, r.Kind)
		}
	}
	assert.True(t, sawPW001)
}

func TestNewRuleRegistry_NilEnabledMeansAllBuiltins(t *testing.T) {
	reg := NewRuleRegistry(nil, nil)
	assert.Len(t, reg.AllRules(), len(BuiltinRules()))
}

func TestNewRuleRegistry_EnabledFiltersBuiltins(t *testing.T) {
	reg := NewRuleRegistry(map[string]bool{"PW001": true}, nil)
	rules := reg.AllRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "PW001", rules[0].Code)
}

func TestNewRuleRegistry_CustomRulesGetSequentialCodes(t *testing.T) {
	reg := NewRuleRegistry(map[string]bool{}, []CustomRuleSpec{
		{Pattern: "internal.db.connect", Message: "opens a connection"},
		{Pattern: "internal.cache.client", Message: "opens a cache client"},
	})

	rules := reg.AllRules()
	require.Len(t, rules, 2)
	assert.Equal(t, "PWC001", rules[0].Code)
	assert.Equal(t, CustomRuleKind, rules[0].Kind)
	assert.Equal(t, "PWC002", rules[1].Code)
}

func TestRuleRegistry_MatchReturnsAllFiringRules(t *testing.T) {
	reg := NewRuleRegistry(nil, []CustomRuleSpec{
		{Pattern: "boto3.client", Message: "custom duplicate of PW001"},
	})

	hits := reg.Match("boto3.client")
	require.Len(t, hits, 2)

	hits = reg.Match("something.else")
	assert.Empty(t, hits)
}

func TestRule_MatchIsExactEquality(t *testing.T) {
	r := Rule{Code: "PW001", Pattern: "boto3.client"}
	assert.True(t, r.Match("boto3.client"))
	assert.False(t, r.Match("boto3.client.extra"))
	assert.False(t, r.Match("boto3"))
}
