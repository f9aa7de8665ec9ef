// Package graph provides the project dependency graph used to order builds.
//
// Nodes are the projects of one build run, keyed by project name. Edges are
// internal dependencies only: a dependency whose coordinate belongs to
// another project of the same run. External dependencies never appear in the
// graph; they are resolved by the build tools themselves.
//
// # Building a Graph
//
//	g := graph.Build([]graph.SimpleProject{
//	    {Name: "commons", Coordinate: label.MustCoordinate("org.iplantc/commons"), Version: "1.0.0"},
//	    {Name: "donkey", Coordinate: label.MustCoordinate("org.iplantc/donkey"), Version: "2.0.0",
//	        Dependencies: []graph.Edge{{Target: "commons", Version: "1.0.0"}}},
//	})
//
// # Layering
//
// Waves returns the breadth-first layering of the graph: wave 0 holds every
// project with no internal dependencies, wave i+1 every remaining project
// whose internal dependencies all sit in waves 0..i. Projects left over when
// a pass makes no progress are returned separately; they sit on or behind a
// cycle.
//
//	waves, stuck := g.Waves()
//
// # Output Formats
//
//	text := g.ToText()   // waves plus a dependency tree per root
//	dot := g.ToDOT()     // Graphviz
//	data, _ := g.ToJSON()
package graph
