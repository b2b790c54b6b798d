package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaBytes []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaBytes)

// Validate checks cfg against the embedded schema and compiles its exclude
// patterns. Defaults must already be applied.
func Validate(cfg *Config) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return validateExclude(cfg.Exclude)
}

func validateExclude(patterns []string) error {
	for i, pattern := range patterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("exclude[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	return nil
}
