package report

import (
	"time"
)

// CurrentVersion is the report schema version written by this package.
const CurrentVersion = 1

// Status is the result of a project or a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Report describes one build run.
type Report struct {
	Version    int       `json:"reportVersion"`
	Workspace  string    `json:"workspace"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
	Status     Status    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	Waves      []Wave    `json:"waves"`
}

// Wave is one layer of the build order.
type Wave struct {
	Index    int       `json:"index"`
	Projects []Project `json:"projects"`
}

// Project is the outcome of one project build.
type Project struct {
	Name       string   `json:"name"`
	Status     Status   `json:"status"`
	Command    []string `json:"command,omitempty"`
	ExitCode   int      `json:"exitCode"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"durationMs"`
	Stdout     string   `json:"stdout,omitempty"`
	Stderr     string   `json:"stderr,omitempty"`
}

// New creates an empty report for a run starting now.
func New(workspace string) *Report {
	return &Report{
		Version:   CurrentVersion,
		Workspace: workspace,
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
		Waves:     []Wave{},
	}
}

// AddWave appends the next wave.
func (r *Report) AddWave(projects []Project) {
	if projects == nil {
		projects = []Project{}
	}
	r.Waves = append(r.Waves, Wave{Index: len(r.Waves), Projects: projects})
}

// AddSkippedWave appends a wave that was never attempted.
func (r *Report) AddSkippedWave(names []string) {
	projects := make([]Project, 0, len(names))
	for _, name := range names {
		projects = append(projects, Project{Name: name, Status: StatusSkipped, ExitCode: -1})
	}
	r.AddWave(projects)
}

// Finish stamps the end time and the overall status.
func (r *Report) Finish(err error) {
	r.FinishedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.Status = StatusSucceeded
	r.Error = ""
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

// Failed returns the names of failed projects in wave order.
func (r *Report) Failed() []string {
	return r.withStatus(StatusFailed)
}

// Skipped returns the names of projects that were never attempted.
func (r *Report) Skipped() []string {
	return r.withStatus(StatusSkipped)
}

func (r *Report) withStatus(s Status) []string {
	var names []string
	for _, w := range r.Waves {
		for _, p := range w.Projects {
			if p.Status == s {
				names = append(names, p.Name)
			}
		}
	}
	return names
}

// Duration returns the wall time of the run, or zero if unfinished.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
