// Package vcs synchronizes project checkouts with their git remotes before
// a build: clone, then optionally merge, tag and push a release branch.
//
// All operations shell out to the git binary and run with "git -C <dir>",
// so the caller's working directory never changes.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// DefaultRemote is the remote pulled from and pushed to.
const DefaultRemote = "origin"

// CommandError reports a git invocation that did not exit with status 0.
type CommandError struct {
	Args     []string
	ExitCode int // -1 when git never produced a status
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Git runs git commands against one checkout.
type Git struct {
	// Dir is the checkout directory.
	Dir string

	// Remote defaults to DefaultRemote.
	Remote string

	// Stdout and Stderr receive git's output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Git) remote() string {
	if g.Remote == "" {
		return DefaultRemote
	}
	return g.Remote
}

// run executes git with args inside Dir. Each invocation is preceded by a
// "Command:" header on Stdout.
func (g *Git) run(ctx context.Context, args ...string) error {
	return g.exec(ctx, append([]string{"-C", g.Dir}, args...)...)
}

func (g *Git) exec(ctx context.Context, args ...string) error {
	stdout, stderr := g.Stdout, g.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	fmt.Fprintf(stdout, "Command: git %s\n", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &CommandError{Args: args, ExitCode: code, Err: err}
	}
	return nil
}

// Clone clones refspec into Dir. An existing Dir is treated as an earlier
// clone and left alone; cloned reports whether git ran.
func (g *Git) Clone(ctx context.Context, refspec string) (cloned bool, err error) {
	_, err = os.Stat(g.Dir)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := g.exec(ctx, "clone", refspec, g.Dir); err != nil {
		return false, err
	}
	return true, nil
}

// Checkout switches to branch or commit id.
func (g *Git) Checkout(ctx context.Context, id string) error {
	return g.run(ctx, "checkout", id)
}

// Pull checks out branch and pulls it from the remote.
func (g *Git) Pull(ctx context.Context, branch string) error {
	if err := g.Checkout(ctx, branch); err != nil {
		return err
	}
	return g.run(ctx, "pull", g.remote(), branch)
}

// Merge brings both branches up to date and merges from into to, leaving
// the checkout on to.
func (g *Git) Merge(ctx context.Context, from, to string) error {
	if err := g.Pull(ctx, from); err != nil {
		return err
	}
	if err := g.Pull(ctx, to); err != nil {
		return err
	}
	return g.run(ctx, "merge", from)
}

// Tag creates the annotated tag on branch.
func (g *Git) Tag(ctx context.Context, branch, tag string) error {
	if err := g.Checkout(ctx, branch); err != nil {
		return err
	}
	return g.run(ctx, "tag", "-a", tag, "-m", tag)
}

// Fetch fetches from the default remote configuration.
func (g *Git) Fetch(ctx context.Context) error {
	return g.run(ctx, "fetch")
}

// Push checks out branch and pushes it to the remote.
func (g *Git) Push(ctx context.Context, branch string) error {
	if err := g.Checkout(ctx, branch); err != nil {
		return err
	}
	return g.run(ctx, "push", g.remote(), branch)
}
