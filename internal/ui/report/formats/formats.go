// Package formats exports the file dependency graph for external viewers.
package formats

import (
	"architect/internal/engine/graph"
	"architect/internal/shared/util"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatTSV     Format = "tsv"
)

// FormatFor picks the export format from a file extension.
func FormatFor(filePath string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".dot", ".gv":
		return FormatDOT, nil
	case ".mmd", ".mermaid":
		return FormatMermaid, nil
	case ".tsv":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unsupported graph format %q (use .dot, .gv, .mmd, .mermaid or .tsv)", filepath.Ext(filePath))
	}
}

func Render(format Format, g *graph.Graph, cycles []graph.Cycle) (string, error) {
	switch format {
	case FormatDOT:
		return NewDOTGenerator(g).Generate(cycles)
	case FormatMermaid:
		return NewMermaidGenerator(g).Generate(cycles)
	case FormatTSV:
		return NewTSVGenerator(g).Generate(cycles)
	default:
		return "", fmt.Errorf("unsupported graph format %q", format)
	}
}

// WriteFile renders g in the format implied by filePath and writes it there.
func WriteFile(filePath string, g *graph.Graph, cycles []graph.Cycle) error {
	format, err := FormatFor(filePath)
	if err != nil {
		return err
	}
	out, err := Render(format, g, cycles)
	if err != nil {
		return err
	}
	return util.WriteFileWithDirs(filePath, []byte(out), 0o644)
}

type edgeKey struct {
	from, to string
}

// edge is a deduplicated dependency with the number of import statements
// behind it.
type edge struct {
	from, to string
	count    int
}

// collapsedEdges returns g's edges in sorted node order with duplicates
// folded into a count.
func collapsedEdges(g *graph.Graph) []edge {
	var out []edge
	for _, from := range g.Nodes() {
		index := make(map[string]int)
		for _, to := range g.Edges(from) {
			if i, ok := index[to]; ok {
				out[i].count++
				continue
			}
			index[to] = len(out)
			out = append(out, edge{from: from, to: to, count: 1})
		}
	}
	return out
}

func cycleEdgeSet(cycles []graph.Cycle) map[edgeKey]bool {
	out := make(map[edgeKey]bool)
	for _, c := range cycles {
		for _, hop := range c.Edges() {
			out[edgeKey{hop[0], hop[1]}] = true
		}
	}
	return out
}

func cycleNodeSet(cycles []graph.Cycle) map[string]bool {
	out := make(map[string]bool)
	for _, c := range cycles {
		for _, n := range c.Path {
			out[n] = true
		}
	}
	return out
}

// groupByDir buckets node keys by their directory, preserving sorted order.
func groupByDir(nodes []string) (dirs []string, members map[string][]string) {
	members = make(map[string][]string)
	for _, n := range nodes {
		dir := path.Dir(n)
		if _, ok := members[dir]; !ok {
			dirs = append(dirs, dir)
		}
		members[dir] = append(members[dir], n)
	}
	return dirs, members
}
