package droppings

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/albertocavalcante/go-droppings/label"
)

// Registry maps project names to their parsed data, in configuration
// order, together with the coordinate index that identifies which
// dependencies are built in the same run.
//
// A Registry is immutable once constructed and safe for concurrent use.
type Registry struct {
	workspace string
	names     []string
	projects  map[string]*ProjectData
	index     map[label.Coordinate]string
}

// RegistryEntry pairs a project name with its data for NewRegistry.
type RegistryEntry struct {
	Name    string
	Project *ProjectData
}

// NewRegistry builds a registry from already-parsed projects. Names must be
// valid and unique.
//
// Two projects declaring the same coordinate are rejected with
// ErrDuplicateCoordinate rather than letting the later one take over the
// coordinate: dependency edges would otherwise point at whichever checkout
// happened to be listed last.
func NewRegistry(workspace string, entries []RegistryEntry) (*Registry, error) {
	r := &Registry{
		workspace: workspace,
		names:     make([]string, 0, len(entries)),
		projects:  make(map[string]*ProjectData, len(entries)),
		index:     make(map[label.Coordinate]string, len(entries)),
	}
	for _, e := range entries {
		if _, err := label.NewProjectName(e.Name); err != nil {
			return nil, err
		}
		if e.Project == nil {
			return nil, fmt.Errorf("project %s: no data", e.Name)
		}
		if _, ok := r.projects[e.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProject, e.Name)
		}
		coord := e.Project.Coordinate()
		if other, ok := r.index[coord]; ok {
			return nil, fmt.Errorf("%w: %s declared by %s and %s", ErrDuplicateCoordinate, coord, other, e.Name)
		}
		r.names = append(r.names, e.Name)
		r.projects[e.Name] = e.Project
		r.index[coord] = e.Name
	}
	return r, nil
}

// LoadRegistry parses the descriptor of every configured project under
// workspace and builds the registry. Parsing stops at the first error.
// Duplicate coordinates fail as in NewRegistry.
func LoadRegistry(ctx context.Context, workspace string, specs []ProjectSpec) (*Registry, error) {
	entries := make([]RegistryEntry, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := label.NewProjectName(spec.Name); err != nil {
			return nil, err
		}
		p, err := ParseProject(filepath.Join(workspace, spec.Name), spec)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", spec.Name, err)
		}
		entries = append(entries, RegistryEntry{Name: spec.Name, Project: p})
	}
	return NewRegistry(workspace, entries)
}

// Workspace returns the directory containing all project directories.
func (r *Registry) Workspace() string { return r.workspace }

// Names returns project names in configuration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of projects.
func (r *Registry) Len() int { return len(r.names) }

// Project returns the data of the named project.
func (r *Registry) Project(name string) (*ProjectData, bool) {
	p, ok := r.projects[name]
	return p, ok
}

// Dir returns the directory of the named project.
func (r *Registry) Dir(name string) string {
	return filepath.Join(r.workspace, name)
}

// Lookup returns the name of the project that produces coord.
func (r *Registry) Lookup(coord label.Coordinate) (string, bool) {
	name, ok := r.index[coord]
	return name, ok
}

// Index returns a copy of the coordinate index.
func (r *Registry) Index() map[label.Coordinate]string {
	out := make(map[label.Coordinate]string, len(r.index))
	for k, v := range r.index {
		out[k] = v
	}
	return out
}

// internalDep is a dependency that resolves to a project of the registry.
type internalDep struct {
	Dependency
	Target string
}

// internalDeps returns the dependencies of name that are built in the same
// run, in declaration order, including repeats and self references.
func (r *Registry) internalDeps(name string) []internalDep {
	p := r.projects[name]
	if p == nil {
		return nil
	}
	var deps []internalDep
	for _, d := range p.Dependencies {
		if target, ok := r.index[d.Coordinate()]; ok {
			deps = append(deps, internalDep{Dependency: d, Target: target})
		}
	}
	return deps
}

// InternalDependencies returns the distinct names of the projects that
// name depends on, in declaration order. A project that depends on its own
// coordinate lists itself.
func (r *Registry) InternalDependencies(name string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range r.internalDeps(name) {
		if seen[d.Target] {
			continue
		}
		seen[d.Target] = true
		out = append(out, d.Target)
	}
	return out
}
