package formats

import (
	"architect/internal/engine/graph"
	"fmt"
	"strings"
)

type DOTGenerator struct {
	graph *graph.Graph
}

func NewDOTGenerator(g *graph.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate(cycles []graph.Cycle) (string, error) {
	if d.graph == nil {
		return "", fmt.Errorf("dot: no graph to render")
	}
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := cycleEdgeSet(cycles)
	cycleNodes := cycleNodeSet(cycles)

	// One cluster per directory.
	dirs, members := groupByDir(d.graph.Nodes())
	for i, dir := range dirs {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", dir)
		buf.WriteString("    style=filled;\n")
		buf.WriteString("    color=\"whitesmoke\";\n")
		buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")
		for _, node := range members[dir] {
			label := node[strings.LastIndex(node, "/")+1:]
			if cycleNodes[node] {
				fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", node, label)
			} else {
				fmt.Fprintf(&buf, "    %q [label=%q, color=\"darkslategrey\"];\n", node, label)
			}
		}
		buf.WriteString("  }\n\n")
	}

	for _, e := range collapsedEdges(d.graph) {
		attrs := "color=\"forestgreen\", penwidth=1.8"
		if cycleEdges[edgeKey{e.from, e.to}] {
			attrs = "color=\"red\", penwidth=3.0, label=\"CYCLE\""
		} else if e.count > 1 {
			attrs += fmt.Sprintf(", label=\"x%d\"", e.count)
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.from, e.to, attrs)
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_file [label=\"File\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Import\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("  }\n")

	buf.WriteString("}\n")

	return buf.String(), nil
}
