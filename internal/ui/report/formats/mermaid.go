package formats

import (
	"architect/internal/engine/graph"
	"fmt"
	"strings"
	"unicode"
)

type MermaidGenerator struct {
	graph *graph.Graph
}

func NewMermaidGenerator(g *graph.Graph) *MermaidGenerator {
	return &MermaidGenerator{graph: g}
}

func (m *MermaidGenerator) Generate(cycles []graph.Cycle) (string, error) {
	if m.graph == nil {
		return "", fmt.Errorf("mermaid: no graph to render")
	}
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	nodes := m.graph.Nodes()
	ids := makeMermaidIDs(nodes)
	cycleEdges := cycleEdgeSet(cycles)
	cycleNodes := cycleNodeSet(cycles)

	dirs, members := groupByDir(nodes)
	for _, dir := range dirs {
		b.WriteString(fmt.Sprintf("  subgraph dir_%s[\"%s\"]\n", sanitizeMermaidID(dir), escapeMermaidLabel(dir)))
		for _, node := range members[dir] {
			label := node[strings.LastIndex(node, "/")+1:]
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[node], escapeMermaidLabel(label)))
		}
		b.WriteString("  end\n")
	}

	inCycle := intersectOrdered(nodes, cycleNodes)
	if len(inCycle) > 0 {
		b.WriteString("\n")
		b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(inCycle, ids), ","))
		b.WriteString(" cycleNode;\n")
	}

	b.WriteString("\n")
	linkIndex := 0
	cycleLinkIndexes := make([]int, 0)
	for _, e := range collapsedEdges(m.graph) {
		edgeLabel := ""
		if cycleEdges[edgeKey{e.from, e.to}] {
			edgeLabel = "|CYCLE|"
			cycleLinkIndexes = append(cycleLinkIndexes, linkIndex)
		} else if e.count > 1 {
			edgeLabel = fmt.Sprintf("|x%d|", e.count)
		}
		b.WriteString(fmt.Sprintf("  %s -->%s %s\n", ids[e.from], edgeLabel, ids[e.to]))
		linkIndex++
	}

	if len(cycleLinkIndexes) > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinkIndexes)))
	}

	return b.String(), nil
}

func sanitizeMermaidID(name string) string {
	if name == "" {
		return "m"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		return "m_" + out
	}
	return out
}

// makeMermaidIDs assigns each name a unique identifier; names that sanitize
// to the same ID get a numeric suffix.
func makeMermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func intersectOrdered(ordered []string, set map[string]bool) []string {
	out := make([]string, 0)
	for _, item := range ordered {
		if set[item] {
			out = append(out, item)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
