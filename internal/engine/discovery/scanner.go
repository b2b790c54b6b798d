package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{
	"node_modules",
	"dist",
	"build",
	"target",
	"coverage",
	".git",
	".next",
	".angular",
}

// Scanner walks a project root and returns its source files.
type Scanner struct {
	extensions map[string]bool
	dirGlobs   []glob.Glob
	pathGlobs  []glob.Glob
}

// NewScanner builds a scanner for the given extensions (with leading dot).
// excludeDirs match directory base names; excludePaths match slash-separated
// paths relative to the scanned root.
func NewScanner(extensions, excludeDirs, excludePaths []string) (*Scanner, error) {
	s := &Scanner{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		s.extensions[strings.ToLower(ext)] = true
	}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		s.dirGlobs = append(s.dirGlobs, g)
	}
	for _, p := range excludePaths {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		s.pathGlobs = append(s.pathGlobs, g)
	}
	return s, nil
}

// Discover returns the absolute paths of all matching files under root,
// sorted.
func (s *Scanner) Discover(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.excludedDir(d.Name()) || s.excludedPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if s.excludedPath(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Excluded reports whether path, relative to root, would be skipped.
func (s *Scanner) Excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if part != "." && s.excludedDir(part) {
			return true
		}
	}
	return s.excludedPath(rel)
}

// ExcludedDir reports whether the directory dir, relative to root, would be
// skipped along with everything beneath it.
func (s *Scanner) ExcludedDir(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	if rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if s.excludedDir(part) {
			return true
		}
	}
	return s.excludedPath(rel)
}

// Supported reports whether path has one of the scanned extensions.
func (s *Scanner) Supported(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

func (s *Scanner) excludedDir(name string) bool {
	for _, g := range s.dirGlobs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Scanner) excludedPath(rel string) bool {
	for _, g := range s.pathGlobs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
