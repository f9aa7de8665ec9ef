// Command droppings syncs a set of project repositories and builds them in
// dependency order.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-droppings/config"
)

// exitError carries a process exit code. Silent errors have already been
// reported to the user.
type exitError struct {
	code   int
	silent bool
	err    error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if !exit.silent {
			fmt.Fprintln(stderr, "droppings:", exit)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, "droppings:", err)
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "droppings",
		Short: "Build interdependent projects in dependency order",
		Long: `droppings clones the configured repositories into a workspace, optionally
merges, tags and pushes a release branch in each, then builds every project
in waves: a project builds once all projects it depends on have built, and
the projects of a wave build concurrently.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: 2, err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", config.DefaultFile, "path to the configuration file")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")

	runCmd := newRunCmd(g)
	root.RunE = runCmd.RunE
	root.Flags().AddFlagSet(runCmd.Flags())

	root.AddCommand(runCmd)
	root.AddCommand(newPlanCmd(g))
	root.AddCommand(newGraphCmd(g))
	root.AddCommand(newValidateCmd(g))
	return root
}

// loadConfig reads the configuration named by --config.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
