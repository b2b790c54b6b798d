// # internal/engine/parser/loader.go
package parser

import (
	"architect/internal/shared/util"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJavaScript = "javascript"
)

// defaultExtensions maps the analyzed source set to grammar IDs. JSX is
// covered by the JavaScript grammar.
var defaultExtensions = map[string]string{
	".ts":  LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
}

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language, 3),
		extensions: make(map[string]string, len(defaultExtensions)),
	}
	gl.languages[LangTypeScript] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	gl.languages[LangTSX] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	gl.languages[LangJavaScript] = sitter.NewLanguage(tree_sitter_javascript.Language())
	for ext, lang := range defaultExtensions {
		gl.extensions[ext] = lang
	}
	return gl
}

func (gl *GrammarLoader) Language(id string) *sitter.Language {
	return gl.languages[id]
}

// DetectLanguage returns the grammar ID for path, or "" when unsupported.
func (gl *GrammarLoader) DetectLanguage(path string) string {
	return gl.extensions[strings.ToLower(filepath.Ext(path))]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return util.SortedStringKeys(gl.extensions)
}
