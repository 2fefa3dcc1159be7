package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("", dir, []string{dir}, Overrides{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"handler", "lambda_handler", "*_handler"}, cfg.HandlerPatterns)
	assert.Nil(t, cfg.Excludes)
	assert.Nil(t, cfg.EnabledRules)
	assert.Nil(t, cfg.CustomRules)
}

func TestLoad_ParsesToolSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tool.pythaw]
handler_patterns = ["handle_*"]
exclude = ["tests/**"]

[[tool.pythaw.custom_rules]]
pattern = "internal.db.connect"
message = "opens a DB connection"
`)

	cfg, err := Load("", dir, []string{dir}, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, []string{"handle_*"}, cfg.HandlerPatterns)
	assert.Equal(t, []string{"tests/**"}, cfg.Excludes)
	require.Len(t, cfg.CustomRules, 1)
	assert.Equal(t, "internal.db.connect", cfg.CustomRules[0].Pattern)
	assert.Equal(t, "opens a DB connection", cfg.CustomRules[0].Message)
}

func TestLoad_FlagOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tool.pythaw]
handler_patterns = ["from_file"]
`)

	cfg, err := Load("", dir, []string{dir}, Overrides{
		HandlerPatterns: []string{"from_flag"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"from_flag"}, cfg.HandlerPatterns)
}

func TestLoad_UnknownRuleCodeIsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tool.pythaw]
enabled_rules = ["PW999"]
`)

	_, err := Load("", dir, []string{dir}, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PW999")
}

func TestLoad_KnownRuleCodeSelectsSubset(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tool.pythaw]
enabled_rules = ["PW001"]
`)

	cfg, err := Load("", dir, []string{dir}, Overrides{})
	require.NoError(t, err)
	require.NotNil(t, cfg.EnabledRules)
	assert.True(t, cfg.EnabledRules["PW001"])
	assert.False(t, cfg.EnabledRules["PW002"])
}

func TestLoad_MalformedTOMLIsError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `not valid toml {{{`)

	_, err := Load("", dir, []string{dir}, Overrides{})
	require.Error(t, err)
}
