package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// moduleExtractor turns a TypeScript/JavaScript module root into items.
type moduleExtractor struct {
	language string
}

func newModuleExtractor(language string) *moduleExtractor {
	return &moduleExtractor{language: language}
}

func (e *moduleExtractor) Extract(root *sitter.Node, source []byte, filePath string) *File {
	file := &File{
		Path:     filePath,
		Language: e.language,
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":           e.extractImport,
		"class_declaration":          e.extractClass,
		"abstract_class_declaration": e.extractClass,
		"export_statement":           e.extractExport,
	})
	engine.Walk(ctx, root)

	return file
}

func (e *moduleExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	source := trimQuoted(ctx.Text(node.ChildByFieldName("source")))
	if source == "" {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				source = trimQuoted(ctx.Text(child))
				break
			}
		}
	}
	if source == "" {
		return
	}

	ctx.File.Items = append(ctx.File.Items, Item{
		Kind: ItemImport,
		Import: &Import{
			Source:   source,
			Span:     ctx.Span(node),
			Location: ctx.Location(node),
			Snippet:  ctx.LineSnippet(node),
		},
	})
}

// extractExport handles `export class X`, `export default class X` and
// `export default class {}`. The classes are marked Exported.
func (e *moduleExtractor) extractExport(ctx *ExtractionContext, node *sitter.Node) {
	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "class_declaration", "abstract_class_declaration":
			e.addClass(ctx, decl, true)
		}
		return
	}
	if value := node.ChildByFieldName("value"); value != nil && value.Kind() == "class" {
		e.addClass(ctx, value, true)
	}
}

func (e *moduleExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) {
	e.addClass(ctx, node, false)
}

func (e *moduleExtractor) addClass(ctx *ExtractionContext, node *sitter.Node, exported bool) {
	name := strings.TrimSpace(ctx.Text(node.ChildByFieldName("name")))
	if name == "" {
		name = "default"
	}

	class := &Class{
		Name:     name,
		Exported: exported,
		Span:     ctx.Span(node),
		Location: ctx.Location(node),
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		// TypeScript keeps method decorators as siblings in the class body;
		// the method starts at its first decorator.
		var decorator *sitter.Node
		for i := uint(0); i < body.ChildCount(); i++ {
			member := body.Child(i)
			if member == nil {
				continue
			}
			switch member.Kind() {
			case "decorator":
				if decorator == nil {
					decorator = member
				}
				continue
			case "comment":
				continue
			case "method_definition":
			default:
				decorator = nil
				continue
			}

			start := member
			if decorator != nil {
				start = decorator
				decorator = nil
			}
			class.Methods = append(class.Methods, Method{
				Name:      strings.TrimSpace(ctx.Text(member.ChildByFieldName("name"))),
				Class:     name,
				StartLine: int(start.StartPosition().Row) + 1,
				EndLine:   int(member.EndPosition().Row) + 1,
				Span:      ctx.Span(member),
				Location:  ctx.Location(member),
				Snippet:   ctx.LineSnippet(member),
			})
		}
	}

	ctx.File.Items = append(ctx.File.Items, Item{Kind: ItemClass, Class: class})
}
