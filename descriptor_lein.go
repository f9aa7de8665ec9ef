package droppings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"olympos.io/encoding/edn"

	"github.com/albertocavalcante/go-droppings/label"
)

// leinParser reads project.clj files: a single (defproject coord "version"
// :key value ...) form. Only :dependencies (required) and :plugins are
// consulted.
type leinParser struct{}

func (leinParser) Format() DescriptorFormat { return FormatLeiningen }
func (leinParser) FileName() string         { return "project.clj" }

func (leinParser) Parse(data []byte) (*Descriptor, error) {
	var form any
	if err := edn.Unmarshal(data, &form); err != nil {
		return nil, err
	}

	items, ok := ednSeq(form)
	if !ok || len(items) == 0 {
		return nil, errors.New("top-level form is not a list")
	}
	if sym, ok := items[0].(edn.Symbol); !ok || sym != "defproject" {
		return nil, errors.New("top-level form is not a defproject")
	}
	if len(items) < 3 {
		return nil, errors.New("defproject needs a coordinate and a version")
	}

	sym, ok := items[1].(edn.Symbol)
	if !ok {
		return nil, fmt.Errorf("project coordinate %v is not a symbol", items[1])
	}
	coord, err := label.ParseCoordinate(string(sym))
	if err != nil {
		return nil, err
	}
	version, ok := items[2].(string)
	if !ok || version == "" {
		return nil, fmt.Errorf("project version %v is not a string", items[2])
	}

	d := &Descriptor{
		GroupID:    coord.Group,
		ArtifactID: coord.Artifact,
		Version:    version,
	}

	options := items[3:]
	deps, found := ednOption(options, "dependencies")
	if !found {
		return nil, errors.New("missing :dependencies")
	}
	d.Dependencies, err = leinDependencies(deps, "dependencies")
	if err != nil {
		return nil, err
	}
	if plugins, found := ednOption(options, "plugins"); found {
		more, err := leinDependencies(plugins, "plugins")
		if err != nil {
			return nil, err
		}
		d.Dependencies = append(d.Dependencies, more...)
	}
	return d, nil
}

// ednOption finds the value following keyword name in a defproject's
// key/value tail.
func ednOption(options []any, name string) (any, bool) {
	for i := 0; i+1 < len(options); i++ {
		kw, ok := options[i].(edn.Keyword)
		if !ok {
			continue
		}
		if strings.TrimPrefix(string(kw), ":") == name {
			return options[i+1], true
		}
	}
	return nil, false
}

// leinDependencies converts a :dependencies or :plugins vector. Each entry
// is [symbol "version" & options]; trailing options are ignored.
func leinDependencies(v any, key string) ([]Dependency, error) {
	if v == nil {
		return []Dependency{}, nil
	}
	entries, ok := ednSeq(v)
	if !ok {
		return nil, fmt.Errorf(":%s is not a vector", key)
	}
	deps := make([]Dependency, 0, len(entries))
	for i, e := range entries {
		entry, ok := ednSeq(e)
		if !ok || len(entry) < 2 {
			return nil, fmt.Errorf(":%s entry %d is not a [name version] vector", key, i)
		}
		sym, ok := entry[0].(edn.Symbol)
		if !ok {
			return nil, fmt.Errorf(":%s entry %d: name %v is not a symbol", key, i, entry[0])
		}
		version, ok := entry[1].(string)
		if !ok {
			return nil, fmt.Errorf(":%s entry %d: version %v is not a string", key, i, entry[1])
		}
		coord, err := label.ParseCoordinate(string(sym))
		if err != nil {
			return nil, fmt.Errorf(":%s entry %d: %w", key, i, err)
		}
		deps = append(deps, Dependency{
			GroupID:    coord.Group,
			ArtifactID: coord.Artifact,
			Version:    version,
		})
	}
	return deps, nil
}

// ednSeq returns the elements of an EDN list or vector.
func ednSeq(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
