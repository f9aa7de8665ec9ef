package droppings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// DefaultToolchainEnv is the environment variable that receives the
// toolchain home directory when WithToolchainHome is given an empty name.
const DefaultToolchainEnv = "JAVA_HOME"

// Environment variables set for every build command.
const (
	EnvProject     = "DROPPINGS_PROJECT"
	EnvResolveDeps = "DROPPINGS_RESOLVE_DEPS"
)

// Option configures a build run.
type Option func(*runConfig) error

// runConfig holds all execution configuration.
type runConfig struct {
	maxConcurrency int
	logDir         string
	env            map[string]string
	toolchainEnv   string
	toolchainHome  string
	buildTimeout   time.Duration
	onProgress     func(ProgressEvent)
	metrics        *Metrics

	// logger is the structured logger for run diagnostics.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithMaxConcurrency caps the number of projects of one wave that build at
// the same time. n <= 0 means every project of the wave starts at once.
func WithMaxConcurrency(n int) Option {
	return func(c *runConfig) error {
		c.maxConcurrency = n
		return nil
	}
}

// WithLogDir sets the directory receiving the <project>.out and
// <project>.err log files. It defaults to the workspace.
func WithLogDir(dir string) Option {
	return func(c *runConfig) error {
		c.logDir = dir
		return nil
	}
}

// WithEnv adds variables to the environment of every build command.
// Later calls override earlier ones for the same key.
func WithEnv(env map[string]string) Option {
	return func(c *runConfig) error {
		if c.env == nil {
			c.env = make(map[string]string, len(env))
		}
		for k, v := range env {
			if k == "" {
				return errors.New("empty environment variable name")
			}
			c.env[k] = v
		}
		return nil
	}
}

// WithToolchainHome exports the toolchain installation directory to build
// commands under the variable name (DefaultToolchainEnv when empty).
func WithToolchainHome(name, path string) Option {
	return func(c *runConfig) error {
		if name == "" {
			name = DefaultToolchainEnv
		}
		c.toolchainEnv = name
		c.toolchainHome = path
		return nil
	}
}

// WithBuildTimeout bounds the total time of one project's command
// sequence. Zero disables the bound.
func WithBuildTimeout(d time.Duration) Option {
	return func(c *runConfig) error {
		c.buildTimeout = d
		return nil
	}
}

// WithProgress sets a callback for execution progress events.
// Calls are serialized; the callback does not need to be safe for
// concurrent use but should return quickly.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *runConfig) error {
		c.onProgress = fn
		return nil
	}
}

// WithMetrics records build counters and durations into m.
func WithMetrics(m *Metrics) Option {
	return func(c *runConfig) error {
		c.metrics = m
		return nil
	}
}

// WithLogger sets a structured logger for run diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "droppings")
//	droppings.Build(ctx, workspace, specs, droppings.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *runConfig) validate() error {
	if c.buildTimeout < 0 {
		return errors.New("build timeout must not be negative")
	}
	if c.toolchainHome != "" {
		info, err := os.Stat(c.toolchainHome)
		if err != nil {
			return fmt.Errorf("toolchain home: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("toolchain home %s is not a directory", c.toolchainHome)
		}
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *runConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newRunConfig applies opts and validates the result.
func newRunConfig(opts ...Option) (*runConfig, error) {
	c := &runConfig{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// logDirFor returns the log directory for a run rooted at workspace.
func (c *runConfig) logDirFor(workspace string) string {
	if c.logDir != "" {
		return c.logDir
	}
	return workspace
}
