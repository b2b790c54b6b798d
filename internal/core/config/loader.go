package config

import (
	"architect/internal/core/errors"
	"architect/internal/engine/rules"
	"architect/internal/shared/util"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Find returns the path of the first config file present in root.
func Find(root string) (string, error) {
	for _, name := range lookupOrder {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.AddContext(
		errors.New(errors.CodeNotFound, "no configuration file found"),
		errors.CtxPath, root,
	)
}

// Load finds, decodes and validates the project configuration in root.
// A missing file yields CodeNotFound; anything else is CodeConfiguration.
func Load(root string) (*Config, error) {
	path, err := Find(root)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(err, path, "read configuration")
	}

	var cfg Config
	unknown, err := decode(path, data, &cfg)
	if err != nil {
		return nil, configError(err, path, "decode configuration")
	}
	for _, key := range unknown {
		slog.Warn("ignoring unknown configuration key", "key", key, "path", path)
	}

	normalize(&cfg, path)
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, configError(err, path, "validate configuration")
	}
	cfg.Source = path
	return &cfg, nil
}

// decode fills cfg from data and returns the top-level keys it did not
// recognize, sorted. Unknown keys are not an error: the same file may carry
// settings for other tools.
func decode(path string, data []byte, cfg *Config) ([]string, error) {
	switch filepath.Ext(path) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0)
		for _, k := range md.Undecoded() {
			if len(k) == 1 {
				keys = append(keys, k[0])
			}
		}
		return unknownKeys(keys), nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return unknownKeys(mapKeys(raw)), nil
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return unknownKeys(mapKeys(raw)), nil
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func unknownKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		if !knownKeys[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// normalize repairs values a hand-edited file commonly gets wrong: an
// unrecognized pattern falls back to MVC and rules missing either side are
// dropped.
func normalize(cfg *Config, path string) {
	if p := strings.TrimSpace(cfg.ArchitecturePattern); p != "" {
		cfg.ArchitecturePattern = ""
		for _, known := range Patterns {
			if strings.EqualFold(p, known) {
				cfg.ArchitecturePattern = known
				break
			}
		}
		if cfg.ArchitecturePattern == "" {
			slog.Warn("unknown architecture pattern, using MVC", "pattern", p, "path", path)
			cfg.ArchitecturePattern = PatternMVC
		}
	}

	if len(cfg.ForbiddenImports) == 0 {
		return
	}
	kept := make([]rules.ForbiddenRule, 0, len(cfg.ForbiddenImports))
	for i, r := range cfg.ForbiddenImports {
		if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
			slog.Warn("skipping incomplete forbidden import rule", "index", i, "from", r.From, "to", r.To, "path", path)
			continue
		}
		kept = append(kept, r)
	}
	cfg.ForbiddenImports = kept
}

// Save writes cfg as architect.json in root and returns the written path.
func Save(root string, cfg *Config) (string, error) {
	out := *cfg
	applyDefaults(&out)
	if err := Validate(&out); err != nil {
		return "", configError(err, root, "validate configuration")
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return "", configError(err, root, "encode configuration")
	}
	path := filepath.Join(root, FileJSON)
	if err := util.WriteFileWithDirs(path, append(data, '\n'), 0o644); err != nil {
		return "", configError(err, path, "write configuration")
	}
	return path, nil
}

func configError(err error, path, msg string) error {
	return errors.AddContext(
		errors.Wrap(err, errors.CodeConfiguration, msg),
		errors.CtxPath, path,
	)
}
