package droppings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-droppings/label"
)

// Sentinel errors for the failure classes of a build run. Typed errors
// below match them with errors.Is.
var (
	// ErrDescriptorFormat indicates a malformed or structurally invalid
	// project descriptor.
	ErrDescriptorFormat = errors.New("invalid project descriptor")

	// ErrDependencyMismatch indicates a project requests a version of a
	// sibling project other than the one being built.
	ErrDependencyMismatch = errors.New("dependency version mismatch")

	// ErrScheduling indicates projects that can never be built because of
	// a dependency cycle.
	ErrScheduling = errors.New("unschedulable projects")

	// ErrBuildFailed indicates at least one project's build commands failed.
	ErrBuildFailed = errors.New("build failed")

	// ErrDuplicateProject indicates two configured projects share a name.
	ErrDuplicateProject = errors.New("duplicate project")

	// ErrDuplicateCoordinate indicates two projects declare the same
	// group/artifact coordinate.
	ErrDuplicateCoordinate = errors.New("duplicate project coordinate")
)

// DescriptorError is returned when a descriptor file cannot be turned into
// ProjectData.
type DescriptorError struct {
	// Path is the descriptor file.
	Path string

	// Format is the descriptor format being parsed.
	Format DescriptorFormat

	// Err is the underlying problem.
	Err error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s: invalid %s descriptor: %v", e.Path, e.Format, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// Is reports ErrDescriptorFormat as a match.
func (e *DescriptorError) Is(target error) bool { return target == ErrDescriptorFormat }

// DependencyMismatchError is returned by ValidateVersions for the first
// internal dependency whose requested version differs from the version the
// target project declares.
type DependencyMismatchError struct {
	// Project is the requesting project's coordinate.
	Project label.Coordinate

	// Dependency is the requested coordinate.
	Dependency label.Coordinate

	// Requested is the version the requesting project asked for.
	Requested string

	// Provided is the version the target project declares.
	Provided string

	// ProjectName and TargetName are the configured project names.
	ProjectName string
	TargetName  string
}

func (e *DependencyMismatchError) Error() string {
	return fmt.Sprintf("%s: %s %s requested but %s provided",
		e.Project, e.Dependency, e.Requested, e.Provided)
}

// Is reports ErrDependencyMismatch as a match.
func (e *DependencyMismatchError) Is(target error) bool { return target == ErrDependencyMismatch }

// SchedulingError is returned when wave layering stops making progress.
type SchedulingError struct {
	// Unscheduled lists the projects that could not be placed, in
	// registry order.
	Unscheduled []string

	// Cycle is one dependency cycle among them, if found.
	Cycle []string

	// Scheduled is the number of waves placed before layering stopped.
	Scheduled int
}

func (e *SchedulingError) Error() string {
	msg := fmt.Sprintf("cannot schedule %s", strings.Join(e.Unscheduled, ", "))
	if len(e.Cycle) > 0 {
		msg += fmt.Sprintf(": dependency cycle %s -> %s", strings.Join(e.Cycle, " -> "), e.Cycle[0])
	}
	return msg
}

// Is reports ErrScheduling as a match.
func (e *SchedulingError) Is(target error) bool { return target == ErrScheduling }

// BuildError is returned when a wave finishes with failed projects.
// Later waves are not attempted.
type BuildError struct {
	// Wave is the zero-based index of the failing wave.
	Wave int

	// Failed lists every failed project of that wave.
	Failed []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("wave %d: unable to build %s", e.Wave+1, strings.Join(e.Failed, ", "))
}

// Is reports ErrBuildFailed as a match.
func (e *BuildError) Is(target error) bool { return target == ErrBuildFailed }
