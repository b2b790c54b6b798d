package parser

import (
	"bytes"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes one top-level node of a module.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node)

// ExtractionContext carries the source and the File under construction.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// ExtractorEngine dispatches the direct children of a module root by node
// kind. Only top-level declarations are items; nested classes and dynamic
// imports are not.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, root *sitter.Node) {
	if root == nil {
		return
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if handler, ok := e.handlers[child.Kind()]; ok {
			handler(ctx, child)
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) Span(node *sitter.Node) Span {
	return Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}

// LineSnippet returns the full source line containing the node's first byte.
func (c *ExtractionContext) LineSnippet(node *sitter.Node) string {
	return lineAt(c.Source, int(node.StartByte()))
}

func lineAt(source []byte, offset int) string {
	if offset < 0 || offset > len(source) {
		return ""
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	end := bytes.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}
	return strings.TrimRight(string(source[start:end]), "\r")
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
