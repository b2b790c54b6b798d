package formats

import (
	"architect/internal/engine/graph"
	"fmt"
	"strings"
)

type TSVGenerator struct {
	graph *graph.Graph
}

func NewTSVGenerator(g *graph.Graph) *TSVGenerator {
	return &TSVGenerator{graph: g}
}

// Generate writes one row per distinct dependency.
func (t *TSVGenerator) Generate(cycles []graph.Cycle) (string, error) {
	if t.graph == nil {
		return "", fmt.Errorf("tsv: no graph to render")
	}
	var buf strings.Builder

	buf.WriteString("From\tTo\tImports\tCycle\n")

	cycleEdges := cycleEdgeSet(cycles)
	for _, e := range collapsedEdges(t.graph) {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%t\n",
			e.from, e.to, e.count, cycleEdges[edgeKey{e.from, e.to}]))
	}

	return buf.String(), nil
}
