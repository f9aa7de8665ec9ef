package droppings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// mavenParser reads pom.xml files. Element names are matched by local
// name, so namespaced and un-namespaced POMs read the same.
type mavenParser struct{}

func (mavenParser) Format() DescriptorFormat { return FormatMaven }
func (mavenParser) FileName() string         { return "pom.xml" }

type pomProject struct {
	XMLName      xml.Name         `xml:"project"`
	GroupID      *string          `xml:"groupId"`
	ArtifactID   *string          `xml:"artifactId"`
	Version      *string          `xml:"version"`
	Parent       *pomCoordinate   `xml:"parent"`
	Properties   *pomProperties   `xml:"properties"`
	Dependencies *pomDependencies `xml:"dependencies"`
}

type pomCoordinate struct {
	XMLName    xml.Name
	GroupID    *string `xml:"groupId"`
	ArtifactID *string `xml:"artifactId"`
	Version    *string `xml:"version"`
}

type pomProperties struct {
	Entries []pomProperty `xml:",any"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDependencies struct {
	Entries []pomCoordinate `xml:",any"`
}

// pomPlaceholder matches ${name} property references.
var pomPlaceholder = regexp.MustCompile(`\$\{([^}]+)\}`)

func (mavenParser) Parse(data []byte) (*Descriptor, error) {
	var pom pomProject
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&pom); err != nil {
		return nil, err
	}

	props := make(map[string]string)
	if pom.Properties != nil {
		for _, p := range pom.Properties.Entries {
			props[p.XMLName.Local] = strings.TrimSpace(p.Value)
		}
	}
	subst := func(s string) string {
		return pomPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := props[m[2:len(m)-1]]; ok {
				return v
			}
			return m
		})
	}

	own := pomCoordinate{GroupID: pom.GroupID, ArtifactID: pom.ArtifactID, Version: pom.Version}
	group, artifact, version, err := own.resolve(subst)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	props["project.groupId"] = group
	props["project.artifactId"] = artifact
	props["project.version"] = version

	if pom.Dependencies == nil {
		return nil, errors.New("missing <dependencies>")
	}

	d := &Descriptor{
		GroupID:      group,
		ArtifactID:   artifact,
		Version:      version,
		Dependencies: make([]Dependency, 0, len(pom.Dependencies.Entries)+1),
	}
	for i, entry := range pom.Dependencies.Entries {
		g, a, v, err := entry.resolve(subst)
		if err != nil {
			return nil, fmt.Errorf("dependency %d: %w", i, err)
		}
		d.Dependencies = append(d.Dependencies, Dependency{GroupID: g, ArtifactID: a, Version: v})
	}
	if pom.Parent != nil {
		g, a, v, err := pom.Parent.resolve(subst)
		if err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
		d.Dependencies = append(d.Dependencies, Dependency{GroupID: g, ArtifactID: a, Version: v})
	}
	return d, nil
}

// resolve returns the substituted coordinate fields, all of which are
// required.
func (c pomCoordinate) resolve(subst func(string) string) (group, artifact, version string, err error) {
	field := func(name string, v *string) (string, error) {
		if v == nil {
			return "", fmt.Errorf("missing <%s>", name)
		}
		s := subst(strings.TrimSpace(*v))
		if s == "" {
			return "", fmt.Errorf("empty <%s>", name)
		}
		return s, nil
	}
	if group, err = field("groupId", c.GroupID); err != nil {
		return
	}
	if artifact, err = field("artifactId", c.ArtifactID); err != nil {
		return
	}
	version, err = field("version", c.Version)
	return
}
