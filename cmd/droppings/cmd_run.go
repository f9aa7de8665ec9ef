package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	droppings "github.com/albertocavalcante/go-droppings"
	"github.com/albertocavalcante/go-droppings/config"
	"github.com/albertocavalcante/go-droppings/internal/logarchive"
	"github.com/albertocavalcante/go-droppings/internal/sshkey"
	"github.com/albertocavalcante/go-droppings/report"
	"github.com/albertocavalcante/go-droppings/vcs"
)

type runOptions struct {
	keyfile     string
	merge       bool
	noMerge     bool
	push        bool
	noPush      bool
	tag         string
	build       bool
	noBuild     bool
	jobs        int
	metricsFile string
	reportFile  string
	archiveLogs string
}

func newRunCmd(g *globalFlags) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync repositories and build all projects (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDrop(ctx, g, o, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.keyfile, "keyfile", "k", "", "private key for git, linked into ~/.ssh")
	f.BoolVar(&o.merge, "merge", true, "merge each project's release branch")
	f.BoolVar(&o.noMerge, "no-merge", false, "turn off merging")
	f.BoolVar(&o.push, "push", true, "push each project's release branch")
	f.BoolVar(&o.noPush, "no-push", false, "turn off pushing after merging and tagging")
	f.StringVar(&o.tag, "tag", "", "tag for the merged release branches")
	f.BoolVar(&o.build, "build", true, "build the projects")
	f.BoolVar(&o.noBuild, "no-build", false, "turn off building")
	f.IntVarP(&o.jobs, "jobs", "j", 0, "maximum concurrent builds per wave (0 uses the configuration)")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write build metrics in Prometheus text format to this file")
	f.StringVar(&o.reportFile, "report", "", "write a JSON build report to this file")
	f.StringVar(&o.archiveLogs, "archive-logs", "", "bundle build logs into this .tar.zst file")
	return cmd
}

func runDrop(ctx context.Context, g *globalFlags, o *runOptions, stdout, stderr io.Writer) error {
	logger, err := g.logger(stderr)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	if o.keyfile != "" {
		sshDir, err := sshkey.DefaultDir()
		if err != nil {
			return err
		}
		res, err := sshkey.Install(o.keyfile, sshDir)
		if err != nil {
			return err
		}
		if res.Created {
			logger.Info("linked key file", "link", res.Link)
		} else {
			logger.Info("key file already present, not linking", "link", res.Link)
		}
	}

	workspace := cfg.WorkspaceDir()
	syncOpts := vcs.SyncOptions{
		Merge:  o.merge && !o.noMerge,
		Tag:    o.tag,
		Push:   o.push && !o.noPush,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}
	if err := vcs.Sync(ctx, workspace, repositories(cfg), syncOpts); err != nil {
		return err
	}

	if !o.build || o.noBuild {
		return nil
	}
	return buildAll(ctx, cfg, o, logger, stdout, stderr)
}

func repositories(cfg *config.Config) []vcs.Repository {
	repos := make([]vcs.Repository, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		r := vcs.Repository{Name: p.Name, Refspec: p.Refspec}
		if p.Merge != nil {
			r.MergeFrom, r.MergeTo = p.Merge.From, p.Merge.To
		}
		repos = append(repos, r)
	}
	return repos
}

func buildAll(ctx context.Context, cfg *config.Config, o *runOptions, logger *slog.Logger, stdout, stderr io.Writer) error {
	workspace := cfg.WorkspaceDir()
	rep := report.New(workspace)

	reg, waves, err := droppings.Plan(ctx, workspace, cfg.ProjectSpecs())
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	metrics, err := droppings.NewMetrics(promReg)
	if err != nil {
		return err
	}

	opts := append(cfg.Options(),
		droppings.WithLogger(logger),
		droppings.WithMetrics(metrics),
		droppings.WithProgress(func(ev droppings.ProgressEvent) {
			if ev.Type == droppings.ProgressProjectStarted {
				fmt.Fprintln(stdout, strings.Repeat("=", 80))
				fmt.Fprintf(stdout, "building %s...\n", ev.Project)
			}
		}),
	)
	if o.jobs > 0 {
		opts = append(opts, droppings.WithMaxConcurrency(o.jobs))
	}
	executor, err := droppings.NewExecutor(reg, opts...)
	if err != nil {
		return err
	}

	result, runErr := executor.Run(ctx, waves)
	fillReport(rep, waves, result)
	rep.Finish(runErr)

	var outputErrs []error
	if o.reportFile != "" {
		outputErrs = append(outputErrs, rep.WriteFile(o.reportFile))
	}
	if o.metricsFile != "" {
		outputErrs = append(outputErrs, prometheus.WriteToTextfile(o.metricsFile, promReg))
	}
	if o.archiveLogs != "" {
		missing, err := logarchive.Write(o.archiveLogs, logFiles(result))
		outputErrs = append(outputErrs, err)
		for _, m := range missing {
			logger.Warn("log file missing from archive", "path", m)
		}
	}

	var berr *droppings.BuildError
	if errors.As(runErr, &berr) {
		for _, name := range berr.Failed {
			fmt.Fprintf(stderr, "** Unable to build %s\n", name)
		}
		fmt.Fprintln(stderr, "** Some builds failed. Please review the output files.")
		if err := errors.Join(outputErrs...); err != nil {
			logger.Error("writing run outputs", "error", err)
		}
		return &exitError{code: 1, silent: true, err: runErr}
	}
	if runErr != nil {
		return runErr
	}
	return errors.Join(outputErrs...)
}

// fillReport records executed waves from result and the rest as skipped.
func fillReport(rep *report.Report, waves []droppings.Wave, result *droppings.RunResult) {
	executed := 0
	if result != nil {
		executed = len(result.Results)
		for _, wr := range result.Results {
			projects := make([]report.Project, 0, len(wr.Outcomes))
			for _, oc := range wr.Outcomes {
				projects = append(projects, reportProject(oc))
			}
			rep.AddWave(projects)
		}
	}
	for _, w := range waves[executed:] {
		rep.AddSkippedWave(w)
	}
}

func reportProject(oc droppings.Outcome) report.Project {
	p := report.Project{
		Name:       oc.Project,
		Status:     report.StatusSucceeded,
		Command:    oc.Command,
		ExitCode:   oc.ExitCode,
		DurationMS: oc.Duration.Milliseconds(),
		Stdout:     oc.StdoutPath,
		Stderr:     oc.StderrPath,
	}
	if !oc.Succeeded {
		p.Status = report.StatusFailed
	}
	if oc.Err != nil {
		p.Error = oc.Err.Error()
	}
	return p
}

func logFiles(result *droppings.RunResult) []string {
	if result == nil {
		return nil
	}
	var files []string
	for _, oc := range result.Outcomes() {
		for _, p := range []string{oc.StdoutPath, oc.StderrPath} {
			if p != "" {
				files = append(files, filepath.Clean(p))
			}
		}
	}
	return files
}
