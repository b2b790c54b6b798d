package config

import (
	"architect/internal/engine/rules"
	"strings"
)

// Supported file names, in lookup order.
const (
	FileJSON = "architect.json"
	FileTOML = "architect.toml"
	FileYAML = "architect.yaml"
	FileYML  = "architect.yml"
)

var lookupOrder = []string{FileJSON, FileTOML, FileYAML, FileYML}

const DefaultMaxLines = 40

// Architecture patterns. The engine does not interpret them.
const (
	PatternHexagonal = "Hexagonal"
	PatternClean     = "Clean"
	PatternMVC       = "MVC"
	PatternNone      = "Ninguno"
)

var Patterns = []string{PatternHexagonal, PatternClean, PatternMVC, PatternNone}

type Config struct {
	MaxLinesPerFunction  int                   `json:"max_lines_per_function" toml:"max_lines_per_function" yaml:"max_lines_per_function"`
	ArchitecturePattern  string                `json:"architecture_pattern" toml:"architecture_pattern" yaml:"architecture_pattern"`
	ForbiddenImports     []rules.ForbiddenRule `json:"forbidden_imports" toml:"forbidden_imports" yaml:"forbidden_imports"`
	Exclude              []string              `json:"exclude,omitempty" toml:"exclude" yaml:"exclude,omitempty"`
	CheckPolicy          string                `json:"check_policy,omitempty" toml:"check_policy" yaml:"check_policy,omitempty"`
	CheckExportedClasses bool                  `json:"check_exported_classes,omitempty" toml:"check_exported_classes" yaml:"check_exported_classes,omitempty"`
	AIConfigs            []AIConfig            `json:"ai_configs,omitempty" toml:"ai_configs" yaml:"ai_configs,omitempty"`

	// Source is the file the config was loaded from; empty for defaults.
	Source string `json:"-" toml:"-" yaml:"-"`
}

// AIConfig is one AI provider used by the suggest command. Providers are
// tried in the order they are listed.
type AIConfig struct {
	Name     string `json:"name" toml:"name" yaml:"name"`
	Provider string `json:"provider" toml:"provider" yaml:"provider"`
	APIURL   string `json:"api_url" toml:"api_url" yaml:"api_url"`
	APIKey   string `json:"api_key" toml:"api_key" yaml:"api_key"`
	Model    string `json:"model" toml:"model" yaml:"model"`
}

// knownKeys are the top-level keys Config decodes; anything else is ignored.
var knownKeys = map[string]bool{
	"max_lines_per_function": true,
	"architecture_pattern":   true,
	"forbidden_imports":      true,
	"exclude":                true,
	"check_policy":           true,
	"check_exported_classes": true,
	"ai_configs":             true,
}

func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.MaxLinesPerFunction == 0 {
		cfg.MaxLinesPerFunction = DefaultMaxLines
	}
	if strings.TrimSpace(cfg.ArchitecturePattern) == "" {
		cfg.ArchitecturePattern = PatternMVC
	}
	if cfg.ForbiddenImports == nil {
		cfg.ForbiddenImports = []rules.ForbiddenRule{}
	}
	if strings.TrimSpace(cfg.CheckPolicy) == "" {
		cfg.CheckPolicy = rules.FirstOnly.String()
	}
}

// RuleContext builds the immutable rule context for a run. override, when
// non-empty, replaces the configured check policy.
func (c *Config) RuleContext(override string) (*rules.Context, error) {
	policyName := c.CheckPolicy
	if strings.TrimSpace(override) != "" {
		policyName = override
	}
	policy, err := rules.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}
	return rules.NewContext(c.MaxLinesPerFunction, c.ForbiddenImports, policy,
		rules.WithExportedClasses(c.CheckExportedClasses)), nil
}
