package rules

import (
	"architect/internal/engine/parser"
	"strings"
)

// Check applies the forbidden-import and method-length rules to one file's
// items in declaration order. Under FirstOnly it returns at most one
// violation. It has no side effects.
func Check(filePath string, file *parser.File, ctx *Context) []Violation {
	if file == nil || ctx == nil {
		return nil
	}

	lowerPath := strings.ToLower(filePath)
	var violations []Violation

	for _, item := range file.Items {
		switch item.Kind {
		case parser.ItemImport:
			if item.Import == nil {
				continue
			}
			rule, ok, builtin := ctx.matchForbidden(lowerPath, strings.ToLower(item.Import.Source))
			if !ok {
				continue
			}
			violations = append(violations, forbiddenImport(filePath, item.Import, rule, builtin))
			if ctx.policy == FirstOnly {
				return violations
			}
		case parser.ItemClass:
			if item.Class == nil || (item.Class.Exported && !ctx.checkExported) {
				continue
			}
			for _, m := range item.Class.Methods {
				if m.LineCount() <= ctx.maxLines {
					continue
				}
				violations = append(violations, methodTooLong(filePath, m, ctx.maxLines))
				if ctx.policy == FirstOnly {
					return violations
				}
			}
		}
	}

	return violations
}

// CheckFirst is Check under FirstOnly semantics regardless of ctx's policy.
func CheckFirst(filePath string, file *parser.File, ctx *Context) (Violation, bool) {
	if ctx == nil {
		return Violation{}, false
	}
	first := *ctx
	first.policy = FirstOnly
	violations := Check(filePath, file, &first)
	if len(violations) == 0 {
		return Violation{}, false
	}
	return violations[0], true
}
