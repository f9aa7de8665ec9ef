package graph

// Waves layers the graph for building.
//
// Starting from an empty built set, each pass collects every unplaced
// project whose dependencies are all in the built set, in insertion order,
// and then adds the whole pass to the built set. A project therefore lands in
// the earliest wave after all of its dependencies.
//
// If a pass places nothing while projects remain, layering stops and the
// remaining projects are returned as stuck: each of them is on a cycle or
// depends, directly or not, on one.
func (g *Graph) Waves() (waves [][]string, stuck []string) {
	built := make(map[string]bool, len(g.Nodes))

	for len(built) < len(g.order) {
		var wave []string
		for _, name := range g.order {
			if built[name] {
				continue
			}
			if g.satisfied(name, built) {
				wave = append(wave, name)
			}
		}

		if len(wave) == 0 {
			for _, name := range g.order {
				if !built[name] {
					stuck = append(stuck, name)
				}
			}
			return waves, stuck
		}

		for _, name := range wave {
			built[name] = true
		}
		waves = append(waves, wave)
	}

	return waves, nil
}

// satisfied reports whether every dependency of name is in built.
func (g *Graph) satisfied(name string, built map[string]bool) bool {
	for _, dep := range g.Nodes[name].Dependencies {
		if !built[dep] {
			return false
		}
	}
	return true
}
