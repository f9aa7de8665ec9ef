package droppings

import (
	"strings"
	"time"

	"github.com/albertocavalcante/go-droppings/label"
)

// Dependency is a required library or plugin of a project.
// Two dependencies name the same coordinate iff GroupID and ArtifactID
// match; the version is compared separately.
type Dependency struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
}

// Coordinate returns the dependency's group/artifact pair.
func (d Dependency) Coordinate() label.Coordinate {
	return label.Coordinate{Group: d.GroupID, Artifact: d.ArtifactID}
}

// String returns "group/artifact version".
func (d Dependency) String() string {
	return d.Coordinate().String() + " " + d.Version
}

// Command is one build command invocation: the program followed by its
// arguments.
type Command []string

// String returns the command as it would be typed in a shell, without quoting.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// ProjectData is the canonical representation of one buildable project,
// whatever descriptor format it was read from.
//
// Values are created once per run by ParseProject and must not be modified
// afterwards; the registry, validator, scheduler and executor share them
// across goroutines.
type ProjectData struct {
	// GroupID and ArtifactID are the project's own coordinate.
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`

	// Version is the project's declared version. It is empty only for
	// projects without a recognized descriptor.
	Version string `json:"version"`

	// Dependencies lists library dependencies followed by build plugins,
	// in descriptor order.
	Dependencies []Dependency `json:"dependencies"`

	// ValidateVersion requires dependents in the same run to request
	// exactly Version.
	ValidateVersion bool `json:"validate_version"`

	// Build is the command sequence that builds the project.
	Build []Command `json:"build"`

	// ResolveDeps asks the build commands to fetch external dependencies
	// first. The core passes it through to the build environment.
	ResolveDeps bool `json:"resolve_deps"`

	// Format records which descriptor the project was read from.
	Format DescriptorFormat `json:"format"`
}

// Coordinate returns the project's own group/artifact pair.
func (p *ProjectData) Coordinate() label.Coordinate {
	return label.Coordinate{Group: p.GroupID, Artifact: p.ArtifactID}
}

// ProjectSpec carries the per-project settings that come from the build
// configuration rather than from the descriptor file.
type ProjectSpec struct {
	// Name is the project identifier and its directory inside the workspace.
	Name string

	// ValidateVersion, Build and ResolveDeps are copied to ProjectData.
	ValidateVersion bool
	Build           []Command
	ResolveDeps     bool
}

// Wave is a set of projects that can build concurrently. Order within a
// wave carries no meaning beyond deterministic output.
type Wave []string

// Outcome is the result of building one project.
type Outcome struct {
	// Project is the project name.
	Project string

	// Succeeded is true when every build command exited with status 0.
	Succeeded bool

	// Command is the command that failed; nil on success.
	Command Command

	// ExitCode is the failing command's exit status, or -1 when the
	// command never produced one (not found, killed, log file unwritable).
	ExitCode int

	// Err describes the failure; nil on success.
	Err error

	// Duration is the wall time of the project's whole command sequence.
	Duration time.Duration

	// StdoutPath and StderrPath are the project's log artifacts.
	StdoutPath string
	StderrPath string
}

// WaveResult collects the outcomes of one wave, in wave order.
type WaveResult struct {
	// Index is the zero-based position of the wave in the run.
	Index int

	// Outcomes has one entry per project of the wave.
	Outcomes []Outcome
}

// Failed returns the names of projects whose build failed, in wave order.
func (w WaveResult) Failed() []string {
	var failed []string
	for _, o := range w.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o.Project)
		}
	}
	return failed
}

// OK returns true if every project of the wave built.
func (w WaveResult) OK() bool {
	return len(w.Failed()) == 0
}

// RunResult describes a build run: the planned waves and the results of
// the waves that were executed. When a wave fails, Results stops at it.
type RunResult struct {
	Waves   []Wave
	Results []WaveResult
}

// Outcomes returns every recorded outcome, wave by wave.
func (r *RunResult) Outcomes() []Outcome {
	var all []Outcome
	for _, w := range r.Results {
		all = append(all, w.Outcomes...)
	}
	return all
}

// ProgressEventType identifies a ProgressEvent.
type ProgressEventType string

const (
	// ProgressWaveStarted is emitted before a wave's builds are launched.
	ProgressWaveStarted ProgressEventType = "wave_started"

	// ProgressProjectStarted is emitted when a project's build begins.
	ProgressProjectStarted ProgressEventType = "project_started"

	// ProgressProjectFinished is emitted when a project's build ends.
	// Outcome is set.
	ProgressProjectFinished ProgressEventType = "project_finished"

	// ProgressWaveFinished is emitted after every build of the wave joined.
	ProgressWaveFinished ProgressEventType = "wave_finished"
)

// ProgressEvent reports execution progress to a WithProgress callback.
type ProgressEvent struct {
	Type ProgressEventType

	// Wave is the zero-based wave index.
	Wave int

	// Project is set for project events.
	Project string

	// Outcome is set for ProgressProjectFinished.
	Outcome *Outcome
}
