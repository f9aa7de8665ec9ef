package droppings

import (
	"github.com/albertocavalcante/go-droppings/graph"
)

// Graph returns the build dependency graph of the registry. Only internal
// dependencies become edges.
func Graph(r *Registry) *graph.Graph {
	projects := make([]graph.SimpleProject, 0, len(r.names))
	for _, name := range r.names {
		p := r.projects[name]
		sp := graph.SimpleProject{
			Name:       name,
			Coordinate: p.Coordinate(),
			Version:    p.Version,
		}
		for _, d := range r.internalDeps(name) {
			sp.Dependencies = append(sp.Dependencies, graph.Edge{Target: d.Target, Version: d.Version})
		}
		projects = append(projects, sp)
	}
	return graph.Build(projects)
}

// Schedule partitions the registry into waves. A project lands in the
// first wave after all of its internal dependencies; projects within a
// wave keep registry order.
//
// When some projects can never be placed, Schedule returns a
// *SchedulingError naming them and one cycle among them.
func Schedule(r *Registry) ([]Wave, error) {
	g := Graph(r)
	levels, stuck := g.Waves()

	waves := make([]Wave, 0, len(levels))
	for _, l := range levels {
		waves = append(waves, Wave(l))
	}
	if len(stuck) == 0 {
		return waves, nil
	}

	serr := &SchedulingError{Unscheduled: stuck, Scheduled: len(waves)}
	if cycles := g.FindCycles(); len(cycles) > 0 {
		serr.Cycle = cycles[0]
	}
	return nil, serr
}
