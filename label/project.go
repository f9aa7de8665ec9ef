package label

import (
	"fmt"
	"regexp"
)

// ProjectName is a validated project identifier.
// Project names double as directory names inside the workspace and as the
// stem of "<name>.out" / "<name>.err", so they must not contain path
// separators or start with a dot.
type ProjectName struct {
	name string
}

var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._+-]*$`)

// NewProjectName creates a validated ProjectName.
func NewProjectName(name string) (ProjectName, error) {
	if name == "" {
		return ProjectName{}, fmt.Errorf("project name cannot be empty")
	}
	if !projectNameRegex.MatchString(name) {
		return ProjectName{}, fmt.Errorf("invalid project name %q: must match pattern [A-Za-z0-9_][A-Za-z0-9._+-]*", name)
	}
	return ProjectName{name: name}, nil
}

// MustProjectName creates a ProjectName or panics. Use only for constants/tests.
func MustProjectName(name string) ProjectName {
	p, err := NewProjectName(name)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the project name.
func (p ProjectName) String() string {
	return p.name
}

// StdoutLog returns the file name capturing the project's build stdout.
func (p ProjectName) StdoutLog() string {
	return p.name + ".out"
}

// StderrLog returns the file name capturing the project's build stderr.
func (p ProjectName) StderrLog() string {
	return p.name + ".err"
}
