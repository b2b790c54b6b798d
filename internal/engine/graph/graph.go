// # internal/engine/graph/graph.go
package graph

import "architect/internal/shared/util"

// Graph maps each node key to its ordered internal imports. Keys are
// normalized paths (see util.NodeKey). Duplicate edges are kept: a file that
// imports the same module twice has two edges to it.
//
// A Graph is built once by a single goroutine and read-only afterwards; it
// carries no lock.
type Graph struct {
	edges map[string][]string
}

func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// AddNode inserts key with no edges if it is not already present.
func (g *Graph) AddNode(key string) {
	if _, ok := g.edges[key]; !ok {
		g.edges[key] = nil
	}
}

// AddEdge appends from -> to, inserting both nodes.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph) HasNode(key string) bool {
	_, ok := g.edges[key]
	return ok
}

// Nodes returns every node key in sorted order.
func (g *Graph) Nodes() []string {
	return util.SortedStringKeys(g.edges)
}

// Edges returns a copy of key's outgoing edges in insertion order.
func (g *Graph) Edges(key string) []string {
	out := make([]string, len(g.edges[key]))
	copy(out, g.edges[key])
	return out
}

func (g *Graph) NodeCount() int {
	return len(g.edges)
}

func (g *Graph) EdgeCount() int {
	total := 0
	for _, targets := range g.edges {
		total += len(targets)
	}
	return total
}

// EdgeMultiset counts every from->to edge, for comparing graphs independent
// of iteration order.
func (g *Graph) EdgeMultiset() map[[2]string]int {
	out := make(map[[2]string]int, len(g.edges))
	for from, targets := range g.edges {
		for _, to := range targets {
			out[[2]string{from, to}]++
		}
	}
	return out
}
