package droppings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-droppings/label"
)

// logSeparator precedes each command header in a project's stdout log.
var logSeparator = strings.Repeat("-", 80)

// Executor runs build waves for the projects of a registry.
//
// Each project's commands run as child processes whose working directory
// is the project directory; the executor never changes its own working
// directory, so projects of a wave build concurrently.
type Executor struct {
	reg *Registry
	cfg *runConfig

	mu sync.Mutex // serializes progress callbacks
}

// NewExecutor creates an executor for reg.
func NewExecutor(reg *Registry, opts ...Option) (*Executor, error) {
	cfg, err := newRunConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newExecutor(reg, cfg), nil
}

func newExecutor(reg *Registry, cfg *runConfig) *Executor {
	return &Executor{reg: reg, cfg: cfg}
}

// Run executes waves in order. Every project of a wave is attempted, then
// the wave is joined. If any project of the wave failed, Run stops and
// returns a *BuildError; later waves are not attempted.
//
// The returned RunResult is non-nil whenever execution started.
func (e *Executor) Run(ctx context.Context, waves []Wave) (*RunResult, error) {
	result := &RunResult{Waves: waves}
	for i, wave := range waves {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("wave %d not started: %w", i+1, err)
		}
		wr := e.RunWave(ctx, i, wave)
		result.Results = append(result.Results, wr)
		if failed := wr.Failed(); len(failed) > 0 {
			for _, name := range failed {
				e.cfg.log().Error("unable to build project", "project", name, "wave", i+1)
			}
			return result, &BuildError{Wave: i, Failed: failed}
		}
	}
	return result, nil
}

// RunWave builds every project of wave concurrently, bounded by
// WithMaxConcurrency, and waits for all of them. Outcomes keep wave order.
func (e *Executor) RunWave(ctx context.Context, index int, wave Wave) WaveResult {
	log := e.cfg.log().With("wave", index+1)
	log.Info("starting wave", "projects", strings.Join(wave, " "))
	e.cfg.metrics.observeWave(len(wave))
	e.emit(ProgressEvent{Type: ProgressWaveStarted, Wave: index})

	outcomes := make([]Outcome, len(wave))
	var g errgroup.Group
	if e.cfg.maxConcurrency > 0 {
		g.SetLimit(e.cfg.maxConcurrency)
	}
	for i, name := range wave {
		g.Go(func() error {
			e.emit(ProgressEvent{Type: ProgressProjectStarted, Wave: index, Project: name})
			o := e.buildProject(ctx, name)
			outcomes[i] = o
			e.cfg.metrics.observeBuild(o)
			if o.Succeeded {
				log.Info("built project", "project", name, "duration", o.Duration)
			} else {
				log.Warn("project build failed", "project", name, "command", o.Command.String(), "exit_code", o.ExitCode, "error", o.Err)
			}
			e.emit(ProgressEvent{Type: ProgressProjectFinished, Wave: index, Project: name, Outcome: &o})
			return nil
		})
	}
	_ = g.Wait()

	e.emit(ProgressEvent{Type: ProgressWaveFinished, Wave: index})
	return WaveResult{Index: index, Outcomes: outcomes}
}

// buildProject runs the project's commands in order and stops at the first
// one that does not exit with status 0.
func (e *Executor) buildProject(ctx context.Context, name string) Outcome {
	start := time.Now()
	o := Outcome{Project: name, ExitCode: -1}
	fail := func(cmd Command, err error) Outcome {
		o.Command = cmd
		o.Err = err
		o.Duration = time.Since(start)
		return o
	}

	p, ok := e.reg.Project(name)
	if !ok {
		return fail(nil, fmt.Errorf("unknown project %s", name))
	}
	pn, err := label.NewProjectName(name)
	if err != nil {
		return fail(nil, err)
	}
	logDir := e.cfg.logDirFor(e.reg.Workspace())
	o.StdoutPath = filepath.Join(logDir, pn.StdoutLog())
	o.StderrPath = filepath.Join(logDir, pn.StderrLog())

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fail(nil, fmt.Errorf("create log directory: %w", err))
	}
	stdout, err := os.Create(o.StdoutPath)
	if err != nil {
		return fail(nil, fmt.Errorf("open stdout log: %w", err))
	}
	defer stdout.Close()
	stderr, err := os.Create(o.StderrPath)
	if err != nil {
		return fail(nil, fmt.Errorf("open stderr log: %w", err))
	}
	defer stderr.Close()

	if e.cfg.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.buildTimeout)
		defer cancel()
	}

	env := e.environ(name, p)
	for _, c := range p.Build {
		if _, err := fmt.Fprintf(stdout, "%s\nCommand: %s\n", logSeparator, c); err != nil {
			return fail(c, fmt.Errorf("write stdout log: %w", err))
		}
		if len(c) == 0 {
			return fail(c, errors.New("empty build command"))
		}

		cmd := exec.CommandContext(ctx, c[0], c[1:]...)
		cmd.Dir = e.reg.Dir(name)
		cmd.Env = env
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				o.ExitCode = exitErr.ExitCode()
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = fmt.Errorf("%w: %w", ctxErr, err)
			}
			return fail(c, fmt.Errorf("command %q: %w", c.String(), err))
		}
	}

	o.Succeeded = true
	o.ExitCode = 0
	o.Duration = time.Since(start)
	return o
}

// environ returns the environment of name's build commands: the process
// environment, then configured variables, then the toolchain home and the
// per-project variables. Later entries win.
func (e *Executor) environ(name string, p *ProjectData) []string {
	env := os.Environ()

	keys := make([]string, 0, len(e.cfg.env))
	for k := range e.cfg.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+e.cfg.env[k])
	}

	if e.cfg.toolchainHome != "" {
		env = append(env, e.cfg.toolchainEnv+"="+e.cfg.toolchainHome)
	}
	return append(env,
		EnvProject+"="+name,
		EnvResolveDeps+"="+strconv.FormatBool(p.ResolveDeps),
	)
}

func (e *Executor) emit(ev ProgressEvent) {
	if e.cfg.onProgress == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.onProgress(ev)
}
