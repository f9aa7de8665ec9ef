// Package label provides small, validated value types shared by the droppings
// packages.
//
// All types in this package are immutable. Zero values are generally invalid;
// use the constructor functions (NewCoordinate, ParseCoordinate,
// NewProjectName) to create valid instances.
//
// # Types
//
//   - [Coordinate]: a (group, artifact) pair identifying a project or a
//     dependency irrespective of version (e.g., "org.clojure/clojure")
//   - [ProjectName]: the identifier of a configured project, used as its
//     checkout directory and as the stem of its build log artifacts
package label

import (
	"fmt"
	"strings"
)

// Coordinate identifies a project or dependency by group and artifact.
// Two dependencies refer to the same coordinate iff both parts match; the
// version is compared separately.
type Coordinate struct {
	Group    string
	Artifact string
}

// NewCoordinate creates a Coordinate, rejecting empty parts.
func NewCoordinate(group, artifact string) (Coordinate, error) {
	if group == "" {
		return Coordinate{}, fmt.Errorf("coordinate group cannot be empty")
	}
	if artifact == "" {
		return Coordinate{}, fmt.Errorf("coordinate artifact cannot be empty")
	}
	return Coordinate{Group: group, Artifact: artifact}, nil
}

// ParseCoordinate splits a descriptor symbol such as "my-group/my-artifact".
// A symbol without a slash names a coordinate whose group and artifact are
// identical ("ring" means ring/ring). Only the first slash separates.
func ParseCoordinate(symbol string) (Coordinate, error) {
	if symbol == "" {
		return Coordinate{}, fmt.Errorf("coordinate symbol cannot be empty")
	}
	group, artifact, found := strings.Cut(symbol, "/")
	if !found {
		return Coordinate{Group: symbol, Artifact: symbol}, nil
	}
	if group == "" || artifact == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty group or artifact", symbol)
	}
	return Coordinate{Group: group, Artifact: artifact}, nil
}

// MustCoordinate parses a coordinate or panics. Use only for constants/tests.
func MustCoordinate(symbol string) Coordinate {
	c, err := ParseCoordinate(symbol)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns "group/artifact".
func (c Coordinate) String() string {
	return c.Group + "/" + c.Artifact
}

// IsEmpty returns true if this is a zero-value Coordinate.
func (c Coordinate) IsEmpty() bool {
	return c.Group == "" && c.Artifact == ""
}
