package graph

// Build constructs a Graph from a project list.
// Edges to names that are not in the list are dropped, as are repeated edges
// to the same target. A self edge is kept and makes its project a
// one-member cycle.
func Build(projects []SimpleProject) *Graph {
	g := &Graph{
		Nodes: make(map[string]*Node, len(projects)),
		order: make([]string, 0, len(projects)),
	}

	// Create nodes
	for _, p := range projects {
		if _, exists := g.Nodes[p.Name]; exists {
			continue
		}
		g.Nodes[p.Name] = &Node{
			Name:              p.Name,
			Coordinate:        p.Coordinate,
			Version:           p.Version,
			Dependencies:      make([]string, 0, len(p.Dependencies)),
			Dependents:        make([]string, 0),
			RequestedVersions: make(map[string]string),
		}
		g.order = append(g.order, p.Name)
	}

	// Forward edges; a repeated name keeps the first declaration
	wired := make(map[string]bool, len(projects))
	for _, p := range projects {
		if wired[p.Name] {
			continue
		}
		wired[p.Name] = true
		node := g.Nodes[p.Name]
		seen := make(map[string]bool, len(p.Dependencies))
		for _, edge := range p.Dependencies {
			if seen[edge.Target] {
				continue
			}
			target, ok := g.Nodes[edge.Target]
			if !ok {
				continue
			}
			seen[edge.Target] = true
			node.Dependencies = append(node.Dependencies, edge.Target)
			target.RequestedVersions[p.Name] = edge.Version
		}
	}

	// Reverse edges, in insertion order of the dependents
	for _, name := range g.order {
		for _, dep := range g.Nodes[name].Dependencies {
			target := g.Nodes[dep]
			target.Dependents = append(target.Dependents, name)
		}
	}

	return g
}

// Names returns every project name in insertion order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}
