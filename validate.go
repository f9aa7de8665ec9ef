package droppings

// ValidateVersions checks that every internal dependency on a project with
// ValidateVersion set requests exactly the version that project declares.
//
// Projects are visited in registry order and dependencies in declaration
// order; the first mismatch is returned as a *DependencyMismatchError.
// Versions are compared as plain strings.
func ValidateVersions(r *Registry) error {
	for _, name := range r.names {
		p := r.projects[name]
		for _, d := range r.internalDeps(name) {
			target := r.projects[d.Target]
			if !target.ValidateVersion || d.Version == target.Version {
				continue
			}
			return &DependencyMismatchError{
				Project:     p.Coordinate(),
				Dependency:  d.Coordinate(),
				Requested:   d.Version,
				Provided:    target.Version,
				ProjectName: name,
				TargetName:  d.Target,
			}
		}
	}
	return nil
}
