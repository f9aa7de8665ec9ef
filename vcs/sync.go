package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// ErrSync marks failures of repository synchronization.
var ErrSync = errors.New("repository sync failed")

// Repository is one project checkout to synchronize.
type Repository struct {
	// Name is the checkout directory inside the workspace.
	Name string

	// Refspec is the clone source.
	Refspec string

	// MergeFrom and MergeTo name the release merge. Both are empty when the
	// project has no merge configuration.
	MergeFrom string
	MergeTo   string
}

// HasMerge reports whether the repository has a merge configuration.
func (r Repository) HasMerge() bool {
	return r.MergeFrom != "" && r.MergeTo != ""
}

// SyncOptions selects the operations Sync performs after cloning.
type SyncOptions struct {
	// Merge merges MergeFrom into MergeTo.
	Merge bool

	// Tag, when set together with Merge, tags MergeTo.
	Tag string

	// Push pushes MergeTo.
	Push bool

	// Stdout and Stderr receive git's output.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// logger returns the configured logger, or a no-op logger if none was set.
func (o SyncOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Sync clones every repository into workspace and applies the configured
// merge, tag and push steps. Repositories without a merge configuration are
// only cloned. The first failure stops the sync.
func Sync(ctx context.Context, workspace string, repos []Repository, opts SyncOptions) error {
	log := opts.logger()
	for _, r := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}
		g := &Git{
			Dir:    filepath.Join(workspace, r.Name),
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		}
		if err := syncOne(ctx, g, r, opts, log.With("project", r.Name)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSync, r.Name, err)
		}
	}
	return nil
}

func syncOne(ctx context.Context, g *Git, r Repository, opts SyncOptions, log *slog.Logger) error {
	cloned, err := g.Clone(ctx, r.Refspec)
	if err != nil {
		return err
	}
	if cloned {
		log.Info("cloned repository", "refspec", r.Refspec)
	} else {
		log.Info("checkout exists, skipping clone", "dir", g.Dir)
	}

	if !r.HasMerge() {
		return nil
	}
	if opts.Merge {
		if !cloned {
			if err := g.Fetch(ctx); err != nil {
				return err
			}
		}
		log.Info("merging", "from", r.MergeFrom, "to", r.MergeTo)
		if err := g.Merge(ctx, r.MergeFrom, r.MergeTo); err != nil {
			return err
		}
		if opts.Tag != "" {
			log.Info("tagging", "branch", r.MergeTo, "tag", opts.Tag)
			if err := g.Tag(ctx, r.MergeTo, opts.Tag); err != nil {
				return err
			}
		}
	}
	if opts.Push {
		log.Info("pushing", "branch", r.MergeTo)
		if err := g.Push(ctx, r.MergeTo); err != nil {
			return err
		}
	}
	return nil
}
