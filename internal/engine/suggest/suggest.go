package suggest

import (
	"architect/internal/core/config"
	"architect/internal/engine/discovery"
	"architect/internal/engine/framework"
	"architect/internal/engine/rules"
	"architect/internal/shared/util"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Rule is one forbidden import proposed by the model.
type Rule struct {
	From   flexString `json:"from"`
	To     flexString `json:"to"`
	Reason flexString `json:"reason"`
}

type Suggestion struct {
	Pattern           flexString `json:"pattern"`
	SuggestedMaxLines int        `json:"suggested_max_lines"`
	Rules             []Rule     `json:"rules"`
}

// flexString accepts either a JSON string or an array of strings, keeping
// the first element of the latter.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("expected a string or an array of strings: %w", err)
	}
	if len(arr) == 0 {
		return fmt.Errorf("expected a non-empty array of strings")
	}
	*f = flexString(arr[0])
	return nil
}

func (f flexString) String() string { return string(f) }

// ProjectContext is the project summary sent to the model.
type ProjectContext struct {
	Framework       framework.Framework
	Dependencies    []string
	FolderStructure []string
}

const outlineDepth = 3

// BuildContext summarizes the project at root: framework, dependencies and
// the directory outline down to a fixed depth.
func BuildContext(root string) (ProjectContext, error) {
	project := framework.Inspect(root)
	ctx := ProjectContext{
		Framework:    project.Framework,
		Dependencies: project.Dependencies,
	}

	skip := make(map[string]bool, len(discovery.DefaultExcludeDirs))
	for _, d := range discovery.DefaultExcludeDirs {
		skip[d] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if skip[d.Name()] {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		ctx.FolderStructure = append(ctx.FolderStructure, rel+"/")
		if strings.Count(rel, "/")+1 >= outlineDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return ctx, fmt.Errorf("outline %s: %w", root, err)
	}
	return ctx, nil
}

func buildPrompt(pc ProjectContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s project with dependencies %v and folder structure %v.\n\n",
		pc.Framework, pc.Dependencies, pc.FolderStructure)
	b.WriteString("Identify the architecture pattern (Hexagonal, Clean, MVC or Ninguno) and suggest ")
	b.WriteString("between 2 and 5 forbidden import rules following layering best practices.\n\n")
	b.WriteString("Reply ONLY with valid JSON in this exact shape:\n")
	b.WriteString(`{"pattern": "Hexagonal", "suggested_max_lines": 60, "rules": [`)
	b.WriteString(`{"from": "src/presentation", "to": "src/infrastructure", "reason": "presentation must not depend on infrastructure"}]}`)
	b.WriteString("\n")
	return b.String()
}

type Suggester struct {
	completer Completer
}

func NewSuggester(c Completer) *Suggester {
	return &Suggester{completer: c}
}

func (s *Suggester) Suggest(ctx context.Context, pc ProjectContext) (*Suggestion, error) {
	reply, err := s.completer.Complete(ctx, buildPrompt(pc))
	if err != nil {
		return nil, err
	}
	return ParseSuggestion(reply)
}

// ParseSuggestion extracts and decodes the first JSON object in reply.
func ParseSuggestion(reply string) (*Suggestion, error) {
	raw, ok := ExtractJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in model reply")
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return &s, nil
}

// ExtractJSONObject returns the first balanced {...} in text after removing
// markdown code fences. Braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, bool) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case ch == '{' && !inString:
			depth++
		case ch == '}' && !inString:
			depth--
			if depth == 0 {
				return cleaned[start : i+1], true
			}
		}
	}
	return "", false
}

// Apply copies the suggestion into cfg. Unknown patterns leave the configured
// pattern unchanged and a non-positive line limit keeps the current one.
func (s *Suggestion) Apply(cfg *config.Config) {
	for _, p := range config.Patterns {
		if strings.EqualFold(p, strings.TrimSpace(s.Pattern.String())) {
			cfg.ArchitecturePattern = p
			break
		}
	}
	if s.SuggestedMaxLines > 0 {
		cfg.MaxLinesPerFunction = s.SuggestedMaxLines
	}
	cfg.ForbiddenImports = s.ForbiddenRules()
}

func (s *Suggestion) ForbiddenRules() []rules.ForbiddenRule {
	out := make([]rules.ForbiddenRule, 0, len(s.Rules))
	for _, r := range s.Rules {
		from, to := rulePattern(r.From.String()), rulePattern(r.To.String())
		if from == "" || to == "" {
			continue
		}
		out = append(out, rules.ForbiddenRule{From: from, To: to})
	}
	return out
}

// rulePattern turns a suggested glob such as "src/presentation/**" into the
// substring the rule checker matches on.
func rulePattern(s string) string {
	p := util.NormalizePatternPath(s)
	for _, suffix := range []string{"/**", "/*", "**", "*"} {
		p = strings.TrimSuffix(p, suffix)
	}
	return p
}
