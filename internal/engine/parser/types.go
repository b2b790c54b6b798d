// # internal/engine/parser/types.go
package parser

import (
	"fmt"
	"time"
)

// File is the ordered list of top-level items extracted from one source file.
// The source bytes are not retained; items carry the snippets diagnostics need.
type File struct {
	Path     string
	Language string
	Items    []Item
	ParsedAt time.Time
}

type ItemKind int

const (
	ItemImport ItemKind = iota
	ItemClass
)

// Item is either an import declaration or a class declaration, kept in
// source order.
type Item struct {
	Kind   ItemKind
	Import *Import
	Class  *Class
}

type Import struct {
	Source   string // raw module specifier, case preserved
	Span     Span
	Location Location
	Snippet  string
}

type Class struct {
	Name     string
	Exported bool // declared through export or export default
	Methods  []Method
	Span     Span
	Location Location
}

type Method struct {
	Name      string
	Class     string
	StartLine int
	EndLine   int
	Span      Span
	Location  Location
	Snippet   string
}

// LineCount is the inclusive line count of the method, end minus start.
func (m Method) LineCount() int {
	return m.EndLine - m.StartLine
}

// Span is a half-open byte range into the owning file.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Imports returns the import declarations of f in source order.
func (f *File) Imports() []Import {
	if f == nil {
		return nil
	}
	out := make([]Import, 0, len(f.Items))
	for _, item := range f.Items {
		if item.Kind == ItemImport && item.Import != nil {
			out = append(out, *item.Import)
		}
	}
	return out
}

// ImportSources returns the raw specifiers of f's imports in source order.
func (f *File) ImportSources() []string {
	imports := f.Imports()
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, imp.Source)
	}
	return out
}

// Classes returns the class declarations of f in source order.
func (f *File) Classes() []Class {
	if f == nil {
		return nil
	}
	out := make([]Class, 0)
	for _, item := range f.Items {
		if item.Kind == ItemClass && item.Class != nil {
			out = append(out, *item.Class)
		}
	}
	return out
}

// ParseError locates a syntax error as precisely as the grammar allows.
type ParseError struct {
	Path     string
	Location Location
	Span     Span
	Snippet  string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Location.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Reason)
}
