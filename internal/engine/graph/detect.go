// # internal/engine/graph/detect.go
package graph

import (
	"fmt"
	"strings"
)

// Cycle is a closed walk: the first node is repeated as the last.
type Cycle struct {
	Path        []string
	Description string
}

// Edges returns the hops of the cycle in order.
func (c Cycle) Edges() [][2]string {
	if len(c.Path) < 2 {
		return nil
	}
	out := make([][2]string, 0, len(c.Path)-1)
	for i := 0; i+1 < len(c.Path); i++ {
		out = append(out, [2]string{c.Path[i], c.Path[i+1]})
	}
	return out
}

// DetectCycles reports one cycle per DFS back-edge. Rotations of the same
// cycle reached through different back-edges are reported separately, and a
// self-import is a one-hop cycle. Roots are taken in sorted key order, so the
// result is deterministic for a given graph.
func DetectCycles(g *Graph) []Cycle {
	if g == nil {
		return nil
	}

	s := &dfsState{
		graph:   g,
		visited: make(map[string]bool, g.NodeCount()),
		onStack: make(map[string]bool),
	}
	for _, node := range g.Nodes() {
		if !s.visited[node] {
			s.visit(node)
		}
	}
	return s.cycles
}

type dfsState struct {
	graph   *Graph
	visited map[string]bool
	onStack map[string]bool
	path    []string
	cycles  []Cycle
}

func (s *dfsState) visit(curr string) {
	s.visited[curr] = true
	s.onStack[curr] = true
	s.path = append(s.path, curr)

	for _, next := range s.graph.edges[curr] {
		if !s.visited[next] {
			s.visit(next)
		} else if s.onStack[next] {
			s.record(next)
		}
	}

	s.path = s.path[:len(s.path)-1]
	s.onStack[curr] = false
}

func (s *dfsState) record(start string) {
	cycleStart := 0
	for i, node := range s.path {
		if node == start {
			cycleStart = i
			break
		}
	}
	cycle := make([]string, 0, len(s.path)-cycleStart+1)
	cycle = append(cycle, s.path[cycleStart:]...)
	cycle = append(cycle, start)
	s.cycles = append(s.cycles, Cycle{
		Path:        cycle,
		Description: FormatCycleDescription(cycle),
	})
}

// FormatCycleDescription lists each hop of a closed walk on its own line.
func FormatCycleDescription(cycle []string) string {
	if len(cycle) == 0 {
		return "empty cycle"
	}
	var b strings.Builder
	b.WriteString("Circular dependency detected:\n")
	for i := 0; i+1 < len(cycle); i++ {
		b.WriteString(fmt.Sprintf("  %s → %s\n", cycle[i], cycle[i+1]))
	}
	return b.String()
}
