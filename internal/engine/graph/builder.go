// # internal/engine/graph/builder.go
package graph

import (
	"architect/internal/core/errors"
	"architect/internal/engine/parser"
	"architect/internal/shared/observability"
	"architect/internal/shared/util"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const vendorDir = "node_modules"

// resolveExtensions are appended, in order, to a bare relative specifier.
var resolveExtensions = []string{"ts", "tsx", "js", "jsx"}

var indexFiles = []string{"index.ts", "index.js"}

// FileLoader yields the parsed items for a file.
type FileLoader interface {
	Extract(path string) (*parser.File, error)
}

// BuildWarning records a file whose imports could not be extracted. The file
// is still a node; only its edges are missing.
type BuildWarning struct {
	Path string
	Err  error
}

// Builder constructs the project dependency graph. Build is sequential.
type Builder struct {
	root   string
	loader FileLoader
}

func NewBuilder(projectRoot string, loader FileLoader) *Builder {
	return &Builder{root: projectRoot, loader: loader}
}

// Build extracts the imports of every file, resolves the relative ones to
// project files and returns the graph with any per-file warnings.
func (b *Builder) Build(files []string) (*Graph, []BuildWarning) {
	g := NewGraph()
	var warnings []BuildWarning

	for _, filePath := range files {
		current := util.NodeKey(b.root, filePath)
		g.AddNode(current)

		file, err := b.loader.Extract(filePath)
		if err != nil {
			werr := errors.AddContext(
				errors.Wrap(err, errors.CodeGraphBuildWarning, "skipping import extraction"),
				errors.CtxPath, filePath,
			)
			slog.Warn("graph: skipping file", "path", filePath, "error", err)
			warnings = append(warnings, BuildWarning{Path: filePath, Err: werr})
			continue
		}

		for _, source := range file.ImportSources() {
			resolved, ok := b.Resolve(filePath, source)
			if !ok {
				continue
			}
			key := util.NodeKey(b.root, resolved)
			if !isInternal(key) {
				continue
			}
			g.AddEdge(current, key)
		}
	}

	observability.GraphNodes.Set(float64(g.NodeCount()))
	observability.GraphEdges.Set(float64(g.EdgeCount()))
	return g, warnings
}

// Resolve maps an import specifier written in fromFile to a file on disk.
// Package imports (scoped, bare or under node_modules) are not resolved.
func (b *Builder) Resolve(fromFile, specifier string) (string, bool) {
	if isExternalSpecifier(specifier) {
		return "", false
	}

	var base string
	if filepath.IsAbs(specifier) || strings.HasPrefix(specifier, "/") {
		base = filepath.Clean(filepath.FromSlash(specifier))
	} else {
		base = filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(specifier))
	}

	for _, ext := range resolveExtensions {
		if candidate := base + "." + ext; isFile(candidate) {
			return candidate, true
		}
	}
	for _, index := range indexFiles {
		if candidate := filepath.Join(base, index); isFile(candidate) {
			return candidate, true
		}
	}
	if isFile(base) {
		return base, true
	}
	return "", false
}

func isExternalSpecifier(specifier string) bool {
	if strings.HasPrefix(specifier, "@") || strings.HasPrefix(specifier, vendorDir) {
		return true
	}
	return !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/")
}

func isInternal(key string) bool {
	return !strings.Contains(key, vendorDir)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
