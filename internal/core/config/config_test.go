package config

import (
	"architect/internal/core/errors"
	"architect/internal/engine/rules"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{
  "max_lines_per_function": 60,
  "architecture_pattern": "Hexagonal",
  "forbidden_imports": [{"from": "presentation", "to": "infrastructure"}]
}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.MaxLinesPerFunction)
	assert.Equal(t, PatternHexagonal, cfg.ArchitecturePattern)
	assert.Equal(t, []rules.ForbiddenRule{{From: "presentation", To: "infrastructure"}}, cfg.ForbiddenImports)
	assert.Equal(t, "first_only", cfg.CheckPolicy)
	assert.Equal(t, filepath.Join(dir, FileJSON), cfg.Source)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLines, cfg.MaxLinesPerFunction)
	assert.Equal(t, PatternMVC, cfg.ArchitecturePattern)
	assert.Empty(t, cfg.ForbiddenImports)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileTOML, `
max_lines_per_function = 25
architecture_pattern = "Clean"
exclude = ["**/*.spec.ts"]
check_policy = "exhaustive"

[[forbidden_imports]]
from = "domain"
to = "infrastructure"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxLinesPerFunction)
	assert.Equal(t, []string{"**/*.spec.ts"}, cfg.Exclude)
	assert.Equal(t, []rules.ForbiddenRule{{From: "domain", To: "infrastructure"}}, cfg.ForbiddenImports)

	ctx, err := cfg.RuleContext("")
	require.NoError(t, err)
	assert.Equal(t, rules.Exhaustive, ctx.Policy())
	assert.Equal(t, 25, ctx.MaxLines())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileYML, `
max_lines_per_function: 30
architecture_pattern: MVC
forbidden_imports:
  - from: controller
    to: database
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.MaxLinesPerFunction)
	assert.Equal(t, "controller", cfg.ForbiddenImports[0].From)
}

func TestLoad_JSONWinsOverOtherFormats(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{"max_lines_per_function": 11}`)
	writeConfig(t, dir, FileTOML, `max_lines_per_function = 22`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.MaxLinesPerFunction)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"max_lines_per_function": `,
		"string limit":   `{"max_lines_per_function": "forty"}`,
		"negative limit": `{"max_lines_per_function": -3}`,
		"rule not array": `{"forbidden_imports": {"from": "a", "to": "b"}}`,
		"bad policy":     `{"check_policy": "sometimes"}`,
		"bad glob":       `{"exclude": ["[unclosed"]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, FileJSON, content)

			_, err := Load(dir)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeConfiguration), "got %v", err)
		})
	}
}

func TestLoad_IgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{
  "max_lines_per_function": 40,
  "architecture_pattern": "MVC",
  "forbidden_imports": [],
  "ai_configs": [{"name": "local", "provider": "Ollama", "api_url": "http://localhost:11434/v1", "api_key": "", "model": "llama3"}],
  "editor": {"tab_size": 2}
}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxLinesPerFunction)
	require.Len(t, cfg.AIConfigs, 1)
	assert.Equal(t, "llama3", cfg.AIConfigs[0].Model)
}

func TestLoad_UnknownKeysPerFormat(t *testing.T) {
	cases := map[string]string{
		FileJSON: `{"max_lines_per_function": 12, "theme": "dark"}`,
		FileTOML: "max_lines_per_function = 12\ntheme = \"dark\"\n",
		FileYML:  "max_lines_per_function: 12\ntheme: dark\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			unknown, err := decode(name, []byte(content), &cfg)
			require.NoError(t, err)
			assert.Equal(t, []string{"theme"}, unknown)
			assert.Equal(t, 12, cfg.MaxLinesPerFunction)
		})
	}
}

func TestLoad_UnknownPatternFallsBackToMVC(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{"architecture_pattern": "Layered"}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, PatternMVC, cfg.ArchitecturePattern)

	writeConfig(t, dir, FileJSON, `{"architecture_pattern": "hexagonal"}`)
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, PatternHexagonal, cfg.ArchitecturePattern)
}

func TestLoad_SkipsIncompleteRules(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileJSON, `{"forbidden_imports": [
  {"from": "a"},
  {"from": "", "to": "x"},
  {"from": "presentation", "to": "infrastructure"}
]}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []rules.ForbiddenRule{{From: "presentation", To: "infrastructure"}}, cfg.ForbiddenImports)
}

func TestRuleContext_ExportedClasses(t *testing.T) {
	cfg := Default()
	ctx, err := cfg.RuleContext("")
	require.NoError(t, err)
	assert.False(t, ctx.ChecksExportedClasses())

	cfg.CheckExportedClasses = true
	ctx, err = cfg.RuleContext("")
	require.NoError(t, err)
	assert.True(t, ctx.ChecksExportedClasses())
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		MaxLinesPerFunction: 20,
		ArchitecturePattern: PatternClean,
		ForbiddenImports:    []rules.ForbiddenRule{{From: "ui", To: "db"}},
	}

	path, err := Save(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileJSON), path)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxLinesPerFunction, loaded.MaxLinesPerFunction)
	assert.Equal(t, cfg.ArchitecturePattern, loaded.ArchitecturePattern)
	assert.Equal(t, cfg.ForbiddenImports, loaded.ForbiddenImports)
}

func TestSave_RejectsInvalid(t *testing.T) {
	_, err := Save(t.TempDir(), &Config{CheckPolicy: "sometimes"})
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
}

func TestRuleContext_Override(t *testing.T) {
	cfg := Default()

	ctx, err := cfg.RuleContext("exhaustive")
	require.NoError(t, err)
	assert.Equal(t, rules.Exhaustive, ctx.Policy())

	_, err = cfg.RuleContext("never")
	assert.Error(t, err)
}
