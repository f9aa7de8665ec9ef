package graph

import (
	"fmt"
)

// Get returns the node for a project, or nil if not found.
func (g *Graph) Get(name string) *Node {
	return g.Nodes[name]
}

// Contains returns true if the graph contains the given project.
func (g *Graph) Contains(name string) bool {
	_, ok := g.Nodes[name]
	return ok
}

// DirectDeps returns the direct internal dependencies of a project.
func (g *Graph) DirectDeps(name string) []string {
	if node := g.Nodes[name]; node != nil {
		return node.Dependencies
	}
	return nil
}

// DirectDependents returns projects that directly depend on the given project.
func (g *Graph) DirectDependents(name string) []string {
	if node := g.Nodes[name]; node != nil {
		return node.Dependents
	}
	return nil
}

// TransitiveDeps returns all transitive dependencies of a project.
// The result is in breadth-first order.
func (g *Graph) TransitiveDeps(name string) []string {
	return g.walk(name, func(n *Node) []string { return n.Dependencies })
}

// TransitiveDependents returns all projects that transitively depend on the given project.
// The result is in breadth-first order (closest dependents first).
func (g *Graph) TransitiveDependents(name string) []string {
	return g.walk(name, func(n *Node) []string { return n.Dependents })
}

func (g *Graph) walk(start string, next func(*Node) []string) []string {
	result := make([]string, 0)
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}

		for _, n := range next(node) {
			if !visited[n] {
				visited[n] = true
				result = append(result, n)
				queue = append(queue, n)
			}
		}
	}

	return result
}

// Path finds the shortest dependency path from one project to another.
// Returns nil if no path exists.
func (g *Graph) Path(from, to string) []string {
	if from == to {
		return []string{from}
	}

	type queueItem struct {
		name string
		path []string
	}

	visited := map[string]bool{from: true}
	queue := []queueItem{{name: from, path: []string{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current.name]
		if node == nil {
			continue
		}

		for _, dep := range node.Dependencies {
			if dep == to {
				return append(current.path, dep)
			}
			if !visited[dep] {
				visited[dep] = true
				newPath := make([]string, len(current.path)+1)
				copy(newPath, current.path)
				newPath[len(current.path)] = dep
				queue = append(queue, queueItem{name: dep, path: newPath})
			}
		}
	}

	return nil
}

// AllPaths finds all dependency paths from one project to another.
// This can be expensive for large graphs with many paths.
func (g *Graph) AllPaths(from, to string) [][]string {
	var result [][]string
	g.findAllPaths(from, to, []string{from}, make(map[string]bool), &result)
	return result
}

func (g *Graph) findAllPaths(current, target string, path []string, visited map[string]bool, result *[][]string) {
	if current == target {
		pathCopy := make([]string, len(path))
		copy(pathCopy, path)
		*result = append(*result, pathCopy)
		return
	}

	visited[current] = true
	defer func() { visited[current] = false }()

	node := g.Nodes[current]
	if node == nil {
		return
	}

	for _, dep := range node.Dependencies {
		if !visited[dep] {
			g.findAllPaths(dep, target, append(path, dep), visited, result)
		}
	}
}

// WhyIncluded returns every chain from a root project (one nothing depends
// on) down to the given project. A root itself yields a single one-element
// chain.
func (g *Graph) WhyIncluded(name string) ([]DependencyChain, error) {
	node := g.Nodes[name]
	if node == nil {
		return nil, fmt.Errorf("project %q not found in graph", name)
	}

	var chains []DependencyChain
	for _, root := range g.Roots() {
		for _, path := range g.AllPaths(root, name) {
			chain := DependencyChain{Path: path}
			if len(path) >= 2 {
				chain.RequestedVersion = node.RequestedVersions[path[len(path)-2]]
			}
			chains = append(chains, chain)
		}
	}
	return chains, nil
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() Stats {
	stats := Stats{
		TotalProjects: len(g.Nodes),
		Roots:         len(g.Roots()),
		Leaves:        len(g.Leaves()),
		MaxDepth:      g.calculateMaxDepth(),
	}
	for _, node := range g.Nodes {
		stats.Edges += len(node.Dependencies)
	}
	return stats
}

func (g *Graph) calculateMaxDepth() int {
	depths := make(map[string]int)
	onPath := make(map[string]bool)
	var maxDepth int

	var dfs func(name string, depth int)
	dfs = func(name string, depth int) {
		// A node already on the current DFS path closes a cycle.
		if onPath[name] {
			return
		}
		if existingDepth, ok := depths[name]; ok && existingDepth >= depth {
			return
		}
		depths[name] = depth
		if depth > maxDepth {
			maxDepth = depth
		}

		node := g.Nodes[name]
		if node == nil {
			return
		}

		onPath[name] = true
		for _, dep := range node.Dependencies {
			dfs(dep, depth+1)
		}
		delete(onPath, name)
	}

	for _, root := range g.Roots() {
		dfs(root, 0)
	}
	return maxDepth
}

// Roots returns all projects nothing depends on, in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if len(g.Nodes[name].Dependents) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns all projects without internal dependencies, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if len(g.Nodes[name].Dependencies) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// HasCycles returns true if the graph contains cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// FindCycles returns the cycles found by a depth-first walk started from
// each project in insertion order. Each cycle lists its members in edge
// order, starting with the first member the walk reached.
func (g *Graph) FindCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make([]string, 0)

	var findCycles func(name string)
	findCycles = func(name string) {
		visited[name] = true
		recStack[name] = true
		path = append(path, name)

		node := g.Nodes[name]
		if node != nil {
			for _, dep := range node.Dependencies {
				if !visited[dep] {
					findCycles(dep)
				} else if recStack[dep] {
					cycleStart := -1
					for i, k := range path {
						if k == dep {
							cycleStart = i
							break
						}
					}
					if cycleStart >= 0 {
						cycle := make([]string, len(path)-cycleStart)
						copy(cycle, path[cycleStart:])
						cycles = append(cycles, cycle)
					}
				}
			}
		}

		path = path[:len(path)-1]
		recStack[name] = false
	}

	for _, name := range g.order {
		if !visited[name] {
			findCycles(name)
		}
	}

	return cycles
}
