package droppings

import (
	"errors"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-droppings/internal/buildutil"
)

// bazelParser reads MODULE.bazel files. Bazel modules have a single name,
// which serves as both group and artifact.
type bazelParser struct{}

func (bazelParser) Format() DescriptorFormat { return FormatBazel }
func (bazelParser) FileName() string         { return "MODULE.bazel" }

func (p bazelParser) Parse(data []byte) (*Descriptor, error) {
	f, err := build.ParseModule(p.FileName(), data)
	if err != nil {
		return nil, err
	}

	modules := buildutil.Calls(f, "module")
	if len(modules) == 0 {
		return nil, errors.New("missing module()")
	}
	name := buildutil.String(modules[0], "name")
	if name == "" {
		return nil, errors.New("module() has no name")
	}
	version := buildutil.String(modules[0], "version")
	if version == "" {
		return nil, errors.New("module() has no version")
	}

	d := &Descriptor{
		GroupID:      name,
		ArtifactID:   name,
		Version:      version,
		Dependencies: []Dependency{},
	}
	for _, call := range buildutil.Calls(f, "bazel_dep") {
		depName := buildutil.String(call, "name")
		depVersion := buildutil.String(call, "version")
		// Unversioned deps are pinned by overrides and never name a
		// sibling version.
		if depName == "" || depVersion == "" {
			continue
		}
		d.Dependencies = append(d.Dependencies, Dependency{
			GroupID:    depName,
			ArtifactID: depName,
			Version:    depVersion,
		})
	}
	return d, nil
}
