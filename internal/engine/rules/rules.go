package rules

import (
	"fmt"
	"strings"
)

// ForbiddenRule forbids files whose path contains From from importing a
// source that contains To. Both comparisons ignore case.
type ForbiddenRule struct {
	From string `json:"from" toml:"from" yaml:"from"`
	To   string `json:"to" toml:"to" yaml:"to"`
}

// Policy controls how many violations a single file may report.
type Policy int

const (
	// FirstOnly stops at the first violation in a file.
	FirstOnly Policy = iota
	// Exhaustive reports every violation in a file.
	Exhaustive
)

func (p Policy) String() string {
	switch p {
	case Exhaustive:
		return "exhaustive"
	default:
		return "first_only"
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_only", "first-only", "firstonly":
		return FirstOnly, nil
	case "exhaustive", "all":
		return Exhaustive, nil
	default:
		return FirstOnly, fmt.Errorf("unknown check policy %q (want first_only or exhaustive)", s)
	}
}

// Context is the immutable, run-wide rule configuration. It is shared by
// pointer across all parallel checks and never mutated after NewContext.
type Context struct {
	maxLines      int
	rules         []compiledRule
	policy        Policy
	checkExported bool
}

// Option adjusts a Context at construction time.
type Option func(*Context)

// WithExportedClasses makes the method-length rule cover exported classes
// too. By default only plain top-level class declarations are measured.
func WithExportedClasses(enabled bool) Option {
	return func(c *Context) { c.checkExported = enabled }
}

type compiledRule struct {
	rule ForbiddenRule
	from string
	to   string
}

func NewContext(maxLines int, forbidden []ForbiddenRule, policy Policy, opts ...Option) *Context {
	ctx := &Context{
		maxLines: maxLines,
		rules:    make([]compiledRule, 0, len(forbidden)),
		policy:   policy,
	}
	for _, r := range forbidden {
		ctx.rules = append(ctx.rules, compiledRule{
			rule: r,
			from: strings.ToLower(r.From),
			to:   strings.ToLower(r.To),
		})
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

func (c *Context) MaxLines() int               { return c.maxLines }
func (c *Context) Policy() Policy              { return c.policy }
func (c *Context) ChecksExportedClasses() bool { return c.checkExported }

// ForbiddenRules returns a copy of the configured rules in configuration order.
func (c *Context) ForbiddenRules() []ForbiddenRule {
	out := make([]ForbiddenRule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.rule)
	}
	return out
}

// builtinRule enforces the default controller/repository layering even with
// no user configuration.
var builtinRule = ForbiddenRule{From: "controller", To: ".repository"}

// matchForbidden returns the first rule forbidding the import of source from
// filePath. Both arguments must already be lower-cased.
func (c *Context) matchForbidden(filePath, source string) (ForbiddenRule, bool, bool) {
	for _, r := range c.rules {
		if strings.Contains(filePath, r.from) && strings.Contains(source, r.to) {
			return r.rule, true, false
		}
	}
	if strings.Contains(filePath, builtinRule.From) && strings.Contains(source, builtinRule.To) {
		return builtinRule, true, true
	}
	return ForbiddenRule{}, false, false
}
