// Package config loads the build configuration: the workspace layout, the
// execution settings and the ordered list of projects to sync and build.
//
// Files ending in .toml are read as TOML; everything else is read as YAML.
// Unknown keys are rejected in both formats.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	droppings "github.com/albertocavalcante/go-droppings"
	"github.com/albertocavalcante/go-droppings/label"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "repos.yaml"

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Config is a build configuration.
type Config struct {
	// Workspace is the directory holding one checkout per project.
	// Empty means the current directory.
	Workspace string `yaml:"workspace" toml:"workspace"`

	// LogDir receives <project>.out and <project>.err. Relative paths are
	// under the workspace; empty means the workspace.
	LogDir string `yaml:"log_dir" toml:"log_dir"`

	// MaxConcurrency caps concurrent builds per wave; 0 is unbounded.
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// BuildTimeout bounds each project's command sequence, e.g. "30m".
	BuildTimeout Duration `yaml:"build_timeout" toml:"build_timeout"`

	// ToolchainHome is exported to builds as ToolchainEnv
	// (JAVA_HOME by default).
	ToolchainHome string `yaml:"toolchain_home" toml:"toolchain_home"`
	ToolchainEnv  string `yaml:"toolchain_env" toml:"toolchain_env"`

	// Env adds variables to every build command.
	Env map[string]string `yaml:"env" toml:"env"`

	// Projects lists the projects in configuration order.
	Projects []Project `yaml:"projects" toml:"projects"`
}

// Project is one configured repository.
type Project struct {
	Name            string     `yaml:"name" toml:"name"`
	Refspec         string     `yaml:"refspec" toml:"refspec"`
	Merge           *Merge     `yaml:"merge" toml:"merge"`
	ValidateVersion bool       `yaml:"validate_version" toml:"validate_version"`
	ResolveDeps     bool       `yaml:"resolve_deps" toml:"resolve_deps"`
	Build           [][]string `yaml:"build" toml:"build"`
}

// Merge names the branch merged from and the branch merged into, tagged
// and pushed.
type Merge struct {
	From string `yaml:"from" toml:"from"`
	To   string `yaml:"to" toml:"to"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// UnmarshalText parses a duration such as "90s" or "1h30m".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %s", undecoded[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty configuration")
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	if len(c.Projects) == 0 {
		return errors.New("no projects configured")
	}
	if c.MaxConcurrency < 0 {
		return errors.New("max_concurrency must not be negative")
	}
	if c.BuildTimeout < 0 {
		return errors.New("build_timeout must not be negative")
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project %d: missing name", i)
		}
		if _, err := label.NewProjectName(p.Name); err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("project %s: %w", p.Name, droppings.ErrDuplicateProject)
		}
		seen[p.Name] = true
		if p.Refspec == "" {
			return fmt.Errorf("project %s: missing refspec", p.Name)
		}
		if p.Merge != nil && (p.Merge.From == "" || p.Merge.To == "") {
			return fmt.Errorf("project %s: merge needs both from and to", p.Name)
		}
		for j, cmd := range p.Build {
			if len(cmd) == 0 || cmd[0] == "" {
				return fmt.Errorf("project %s: build command %d is empty", p.Name, j)
			}
		}
	}
	return nil
}

// WorkspaceDir returns the workspace, defaulting to the current directory.
func (c *Config) WorkspaceDir() string {
	if c.Workspace == "" {
		return "."
	}
	return c.Workspace
}

// LogDirPath returns the log directory with relative paths resolved
// against the workspace. Empty means the workspace itself.
func (c *Config) LogDirPath() string {
	if c.LogDir == "" || filepath.IsAbs(c.LogDir) {
		return c.LogDir
	}
	return filepath.Join(c.WorkspaceDir(), c.LogDir)
}

// ProjectSpecs returns the per-project build settings in configuration
// order.
func (c *Config) ProjectSpecs() []droppings.ProjectSpec {
	specs := make([]droppings.ProjectSpec, 0, len(c.Projects))
	for _, p := range c.Projects {
		build := make([]droppings.Command, 0, len(p.Build))
		for _, cmd := range p.Build {
			build = append(build, droppings.Command(cmd))
		}
		specs = append(specs, droppings.ProjectSpec{
			Name:            p.Name,
			ValidateVersion: p.ValidateVersion,
			Build:           build,
			ResolveDeps:     p.ResolveDeps,
		})
	}
	return specs
}

// Options returns the execution options the configuration sets.
func (c *Config) Options() []droppings.Option {
	var opts []droppings.Option
	if c.MaxConcurrency > 0 {
		opts = append(opts, droppings.WithMaxConcurrency(c.MaxConcurrency))
	}
	if dir := c.LogDirPath(); dir != "" {
		opts = append(opts, droppings.WithLogDir(dir))
	}
	if c.BuildTimeout > 0 {
		opts = append(opts, droppings.WithBuildTimeout(time.Duration(c.BuildTimeout)))
	}
	if c.ToolchainHome != "" {
		opts = append(opts, droppings.WithToolchainHome(c.ToolchainEnv, c.ToolchainHome))
	}
	if len(c.Env) > 0 {
		opts = append(opts, droppings.WithEnv(c.Env))
	}
	return opts
}
