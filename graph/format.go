package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// JSONGraph is the JSON document produced by ToJSON.
type JSONGraph struct {
	Projects []JSONProject `json:"projects"`
	Waves    [][]string    `json:"waves,omitempty"`
	Stuck    []string      `json:"stuck,omitempty"`
	Cycles   [][]string    `json:"cycles,omitempty"`
}

// JSONProject is one project entry in JSONGraph.
type JSONProject struct {
	Name         string   `json:"name"`
	Coordinate   string   `json:"coordinate"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
}

// ToJSON outputs the graph, its waves, and any cycles as indented JSON.
func (g *Graph) ToJSON() ([]byte, error) {
	waves, stuck := g.Waves()
	doc := JSONGraph{
		Projects: make([]JSONProject, 0, len(g.order)),
		Waves:    waves,
		Stuck:    stuck,
		Cycles:   g.FindCycles(),
	}
	for _, name := range g.order {
		node := g.Nodes[name]
		doc.Projects = append(doc.Projects, JSONProject{
			Name:         node.Name,
			Coordinate:   node.Coordinate.String(),
			Version:      node.Version,
			Dependencies: node.Dependencies,
			Dependents:   node.Dependents,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ToDOT outputs the graph in Graphviz DOT format.
// Projects of the same wave share a rank.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer

	buf.WriteString("digraph builds {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  node [shape=box];\n\n")

	cycleMembers := make(map[string]bool)
	for _, cycle := range g.FindCycles() {
		for _, name := range cycle {
			cycleMembers[name] = true
		}
	}

	for _, name := range g.order {
		node := g.Nodes[name]
		label := fmt.Sprintf("%s\\n%s %s", node.Name, node.Coordinate.String(), node.Version)
		attrs := fmt.Sprintf(`label="%s"`, label) //nolint:gocritic // DOT format requires this quote style
		if cycleMembers[name] {
			attrs += ", color=red"
		}
		buf.WriteString(fmt.Sprintf("  %q [%s];\n", name, attrs))
	}

	buf.WriteString("\n")

	for _, name := range g.order {
		for _, dep := range g.Nodes[name].Dependencies {
			buf.WriteString(fmt.Sprintf("  %q -> %q;\n", name, dep))
		}
	}

	waves, _ := g.Waves()
	if len(waves) > 0 {
		buf.WriteString("\n")
	}
	for _, wave := range waves {
		quoted := make([]string, len(wave))
		for i, name := range wave {
			quoted[i] = fmt.Sprintf("%q", name)
		}
		buf.WriteString(fmt.Sprintf("  { rank=same; %s; }\n", strings.Join(quoted, "; ")))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a human-readable text representation of the graph.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	buf.WriteString("Build Graph\n")
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	stats := g.Stats()
	buf.WriteString(fmt.Sprintf("Total projects: %d\n", stats.TotalProjects))
	buf.WriteString(fmt.Sprintf("Internal edges: %d\n", stats.Edges))
	buf.WriteString(fmt.Sprintf("Max depth: %d\n", stats.MaxDepth))
	buf.WriteString("\n")

	waves, stuck := g.Waves()
	buf.WriteString("Build Waves:\n")
	for i, wave := range waves {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, strings.Join(wave, ", ")))
	}
	if len(stuck) > 0 {
		buf.WriteString(fmt.Sprintf("  unschedulable: %s\n", strings.Join(stuck, ", ")))
	}
	buf.WriteString("\n")

	buf.WriteString("Dependency Tree:\n")
	roots := g.Roots()
	if len(roots) == 0 {
		// Everything is on a cycle; start from the first project.
		roots = g.order[:min(1, len(g.order))]
	}
	for _, root := range roots {
		g.printTree(&buf, root, "", true, make(map[string]bool))
	}

	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, name, prefix string, isLast bool, visited map[string]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	node := g.Nodes[name]
	entry := name
	if node != nil && node.Version != "" {
		entry += " (" + node.Version + ")"
	}
	if prefix == "" {
		buf.WriteString(entry)
	} else {
		buf.WriteString(prefix + connector + entry)
	}

	if visited[name] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	visited[name] = true
	defer func() { visited[name] = false }()

	if node == nil {
		return
	}

	for i, dep := range node.Dependencies {
		isLastChild := i == len(node.Dependencies)-1
		childPrefix := prefix
		if prefix != "" {
			if isLast {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		} else {
			childPrefix = " "
		}
		g.printTree(buf, dep, childPrefix, isLastChild, visited)
	}
}
