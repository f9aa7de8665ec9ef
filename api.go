// Package droppings builds a set of interdependent projects checked out side
// by side in one workspace, in dependency order and as concurrently as the
// dependencies allow.
//
// # Overview
//
// A build run goes through four stages:
//
//   - Descriptor parsing: each project directory's project.clj, pom.xml or
//     MODULE.bazel is read into a ProjectData
//   - Registry: projects are indexed by their group/artifact coordinate, which
//     decides which dependencies are built in the same run
//   - Validation and scheduling: requested versions of sibling projects are
//     checked and the projects are layered into waves
//   - Execution: waves run in order; the projects of a wave build concurrently
//
// # Quick Start
//
//	specs := []droppings.ProjectSpec{
//	    {Name: "core", Build: []droppings.Command{{"lein", "install"}}},
//	    {Name: "app", Build: []droppings.Command{{"lein", "test"}}, ValidateVersion: true},
//	}
//	result, err := droppings.Build(ctx, "/src", specs, droppings.WithMaxConcurrency(4))
//
// Every project writes its command output to <project>.out and <project>.err
// in the workspace, or in the directory given to WithLogDir.
//
// # Thread Safety
//
// Registry and ProjectData values are read-only after construction and safe
// for concurrent use.
package droppings

import (
	"context"
)

// Plan parses, validates and schedules the configured projects without
// running anything.
func Plan(ctx context.Context, workspace string, specs []ProjectSpec) (*Registry, []Wave, error) {
	reg, err := LoadRegistry(ctx, workspace, specs)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateVersions(reg); err != nil {
		return reg, nil, err
	}
	waves, err := Schedule(reg)
	if err != nil {
		return reg, nil, err
	}
	return reg, waves, nil
}

// Build plans the configured projects and executes the resulting waves.
//
// Failures before execution return a nil RunResult. Once execution starts
// the RunResult is returned even on error, so callers can report every
// outcome of the failing wave.
func Build(ctx context.Context, workspace string, specs []ProjectSpec, opts ...Option) (*RunResult, error) {
	cfg, err := newRunConfig(opts...)
	if err != nil {
		return nil, err
	}
	reg, waves, err := Plan(ctx, workspace, specs)
	if err != nil {
		return nil, err
	}
	cfg.log().Info("planned build", "projects", reg.Len(), "waves", len(waves))
	return newExecutor(reg, cfg).Run(ctx, waves)
}
