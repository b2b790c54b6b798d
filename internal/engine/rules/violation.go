package rules

import (
	"architect/internal/engine/parser"
	"fmt"
)

type Kind string

const (
	KindForbiddenImport Kind = "forbidden_import"
	KindMethodTooLong   Kind = "method_too_long"
)

// Violation is one located rule breach.
type Violation struct {
	Kind     Kind
	Path     string
	Location parser.Location
	Span     parser.Span
	Snippet  string
	Message  string

	// ForbiddenImport
	Rule    ForbiddenRule
	Builtin bool
	Source  string

	// MethodTooLong
	MethodName string
	ClassName  string
	LineCount  int
	MaxLines   int
}

func forbiddenImport(path string, imp *parser.Import, rule ForbiddenRule, builtin bool) Violation {
	msg := fmt.Sprintf("files in '%s' may not import from '%s'", rule.From, rule.To)
	if builtin {
		msg = "MVC: repositories may not be imported in controllers"
	}
	return Violation{
		Kind:     KindForbiddenImport,
		Path:     path,
		Location: imp.Location,
		Span:     imp.Span,
		Snippet:  imp.Snippet,
		Message:  msg,
		Rule:     rule,
		Builtin:  builtin,
		Source:   imp.Source,
	}
}

func methodTooLong(path string, m parser.Method, maxLines int) Violation {
	return Violation{
		Kind:       KindMethodTooLong,
		Path:       path,
		Location:   m.Location,
		Span:       m.Span,
		Snippet:    m.Snippet,
		Message:    fmt.Sprintf("method too long (%d lines), maximum %d", m.LineCount(), maxLines),
		MethodName: m.Name,
		ClassName:  m.Class,
		LineCount:  m.LineCount(),
		MaxLines:   maxLines,
	}
}
