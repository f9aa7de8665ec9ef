package droppings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DescriptorFormat identifies the project descriptor a ProjectData was
// read from.
type DescriptorFormat string

const (
	// FormatNone marks a project directory without a recognized descriptor.
	FormatNone DescriptorFormat = ""

	// FormatLeiningen is an EDN project.clj holding a defproject form.
	FormatLeiningen DescriptorFormat = "leiningen"

	// FormatMaven is an XML pom.xml.
	FormatMaven DescriptorFormat = "maven"

	// FormatBazel is a MODULE.bazel file.
	FormatBazel DescriptorFormat = "bazel"
)

// Descriptor is the format-independent content of a descriptor file.
type Descriptor struct {
	GroupID      string
	ArtifactID   string
	Version      string
	Dependencies []Dependency
}

// DescriptorParser turns the bytes of one descriptor format into a
// Descriptor. Implementations must be pure: the same input yields an equal
// Descriptor.
type DescriptorParser interface {
	// Format returns the format handled by the parser.
	Format() DescriptorFormat

	// FileName returns the descriptor's file name inside a project directory.
	FileName() string

	// Parse decodes data. Errors describe what is structurally wrong;
	// ParseDescriptorFile wraps them in a *DescriptorError.
	Parse(data []byte) (*Descriptor, error)
}

// parsers lists descriptor parsers in probe order.
var parsers = []DescriptorParser{
	leinParser{},
	mavenParser{},
	bazelParser{},
}

// ParserFor returns the parser for format, or nil for FormatNone and
// unknown formats.
func ParserFor(format DescriptorFormat) DescriptorParser {
	for _, p := range parsers {
		if p.Format() == format {
			return p
		}
	}
	return nil
}

// DetectFormat probes dir for descriptor files in precedence order
// (project.clj, pom.xml, MODULE.bazel) and returns the first one present.
// It returns FormatNone when none exists.
func DetectFormat(dir string) (DescriptorFormat, error) {
	for _, p := range parsers {
		info, err := os.Stat(filepath.Join(dir, p.FileName()))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return FormatNone, fmt.Errorf("probe %s: %w", p.FileName(), err)
		}
		if info.Mode().IsRegular() {
			return p.Format(), nil
		}
	}
	return FormatNone, nil
}

// ParseDescriptorFile reads and parses the descriptor at path.
func ParseDescriptorFile(path string, p DescriptorParser) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	d, err := p.Parse(data)
	if err != nil {
		return nil, &DescriptorError{Path: path, Format: p.Format(), Err: err}
	}
	if d.Dependencies == nil {
		d.Dependencies = []Dependency{}
	}
	return d, nil
}

// ParseProject builds the ProjectData for the project directory dir,
// combining its descriptor with the configured settings in spec.
//
// A directory without a descriptor yields a project whose group and
// artifact are spec.Name, with an empty version and no dependencies.
func ParseProject(dir string, spec ProjectSpec) (*ProjectData, error) {
	format, err := DetectFormat(dir)
	if err != nil {
		return nil, err
	}

	p := &ProjectData{
		GroupID:         spec.Name,
		ArtifactID:      spec.Name,
		Dependencies:    []Dependency{},
		ValidateVersion: spec.ValidateVersion,
		Build:           spec.Build,
		ResolveDeps:     spec.ResolveDeps,
		Format:          format,
	}
	if format == FormatNone {
		return p, nil
	}

	parser := ParserFor(format)
	d, err := ParseDescriptorFile(filepath.Join(dir, parser.FileName()), parser)
	if err != nil {
		return nil, err
	}
	p.GroupID = d.GroupID
	p.ArtifactID = d.ArtifactID
	p.Version = d.Version
	p.Dependencies = d.Dependencies
	return p, nil
}
