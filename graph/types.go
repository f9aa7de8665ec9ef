package graph

import (
	"strings"

	"github.com/albertocavalcante/go-droppings/label"
)

// Graph is the internal dependency graph of one build run.
// It supports bidirectional traversal (dependencies and dependents).
type Graph struct {
	// Nodes contains every project, keyed by project name.
	Nodes map[string]*Node

	// order is the insertion order of project names. Every listing the
	// graph produces follows it so output is deterministic.
	order []string
}

// Node is one project in the graph.
type Node struct {
	// Name is the project name.
	Name string

	// Coordinate is the project's own group/artifact.
	Coordinate label.Coordinate

	// Version is the project's declared version.
	Version string

	// Dependencies are the projects this project needs built first,
	// in declaration order.
	Dependencies []string

	// Dependents are projects that directly depend on this one (reverse edges).
	Dependents []string

	// RequestedVersions records, per dependent, the version it asked for.
	RequestedVersions map[string]string
}

// Edge is an internal dependency as seen from the depending project.
type Edge struct {
	// Target is the name of the project depended upon.
	Target string

	// Version is the version the depending project requested.
	Version string
}

// SimpleProject is the input shape for Build.
type SimpleProject struct {
	Name         string
	Coordinate   label.Coordinate
	Version      string
	Dependencies []Edge
}

// DependencyChain is a path of projects connected by dependency edges.
type DependencyChain struct {
	// Path is the sequence of projects from the first dependent to the target.
	Path []string

	// RequestedVersion is the version requested by the last hop.
	RequestedVersion string
}

// String returns a human-readable representation of the chain.
func (c DependencyChain) String() string {
	s := strings.Join(c.Path, " -> ")
	if c.RequestedVersion != "" {
		s += " (requested " + c.RequestedVersion + ")"
	}
	return s
}

// Stats provides statistics about the graph.
type Stats struct {
	// TotalProjects is the number of projects in the graph.
	TotalProjects int

	// Edges is the number of internal dependency edges.
	Edges int

	// Roots is the number of projects nothing else depends on.
	Roots int

	// Leaves is the number of projects without internal dependencies.
	Leaves int

	// MaxDepth is the length of the longest dependency chain.
	MaxDepth int
}
