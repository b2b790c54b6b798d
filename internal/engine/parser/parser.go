// # internal/engine/parser/parser.go
package parser

import (
	"architect/internal/core/errors"
	"architect/internal/shared/observability"
	"fmt"
	"os"
	"time"
)

// Parser is the syntax extractor. It is safe for concurrent use; each call
// leases its own tree-sitter parser from a per-language pool.
type Parser struct {
	loader     *GrammarLoader
	pools      map[string]*ParserPool
	extractors map[string]*moduleExtractor
}

func NewParser(loader *GrammarLoader) *Parser {
	if loader == nil {
		loader = NewGrammarLoader()
	}
	p := &Parser{
		loader:     loader,
		pools:      make(map[string]*ParserPool, len(loader.languages)),
		extractors: make(map[string]*moduleExtractor, len(loader.languages)),
	}
	for lang, grammar := range loader.languages {
		p.pools[lang] = NewParserPool(grammar)
		p.extractors[lang] = newModuleExtractor(lang)
	}
	return p
}

// Extract reads path from disk and extracts its items. The file content is
// released when Extract returns.
func (p *Parser) Extract(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeParseFailure, "read source file"),
			errors.CtxPath, path,
		)
	}
	return p.ParseFile(path, content)
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.loader.DetectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported language"),
			errors.CtxPath, path,
		)
	}

	pool := p.pools[lang]
	extractor := p.extractors[lang]
	if pool == nil || extractor == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseFailure, "parse failed"),
			errors.CtxPath, path,
		)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Path: path, Reason: "syntax error"}
		if bad := firstErrorNode(root); bad != nil {
			perr.Location = Location{
				File:   path,
				Line:   int(bad.StartPosition().Row) + 1,
				Column: int(bad.StartPosition().Column) + 1,
			}
			perr.Span = Span{Start: int(bad.StartByte()), End: int(bad.EndByte())}
			perr.Snippet = lineAt(content, int(bad.StartByte()))
			if bad.IsMissing() {
				perr.Reason = fmt.Sprintf("syntax error: missing %s", bad.Kind())
			}
		}
		return nil, errors.AddContext(
			errors.Wrap(perr, errors.CodeParseFailure, "syntax error"),
			errors.CtxLanguage, lang,
		)
	}

	return extractor.Extract(root, content, path), nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.DetectLanguage(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}
