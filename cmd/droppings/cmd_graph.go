package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	droppings "github.com/albertocavalcante/go-droppings"
	"github.com/albertocavalcante/go-droppings/graph"
)

type graphOptions struct {
	format     string
	why        string
	path       string
	allPaths   bool
	deps       string
	dependents string
	stats      bool
}

func newGraphCmd(g *globalFlags) *cobra.Command {
	o := &graphOptions{}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the project dependency graph",
		Long: `Print the dependency graph of the configured projects. Only dependencies on
other configured projects are shown. Cycles are reported rather than rejected.

The query flags print one answer instead of the whole graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			reg, err := droppings.LoadRegistry(cmd.Context(), cfg.WorkspaceDir(), cfg.ProjectSpecs())
			if err != nil {
				return err
			}
			return printGraph(cmd.OutOrStdout(), droppings.Graph(reg), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "text", "output format (text, dot, json)")
	f.StringVar(&o.why, "why", "", "print the dependency chains that lead to this project")
	f.StringVar(&o.path, "path", "", "print the shortest dependency path between two projects, as from,to")
	f.BoolVar(&o.allPaths, "all", false, "with --path, print every path")
	f.StringVar(&o.deps, "deps", "", "print every project this project needs, nearest first")
	f.StringVar(&o.dependents, "dependents", "", "print every project that needs this project, nearest first")
	f.BoolVar(&o.stats, "stats", false, "print graph statistics")
	return cmd
}

func printGraph(out io.Writer, gr *graph.Graph, o *graphOptions) error {
	switch {
	case o.why != "":
		chains, err := gr.WhyIncluded(o.why)
		if err != nil {
			return err
		}
		for _, c := range chains {
			fmt.Fprintln(out, c)
		}
		return nil
	case o.path != "":
		return printPaths(out, gr, o.path, o.allPaths)
	case o.deps != "":
		return printNames(out, gr, o.deps, gr.TransitiveDeps)
	case o.dependents != "":
		return printNames(out, gr, o.dependents, gr.TransitiveDependents)
	case o.stats:
		printStats(out, gr)
		return nil
	}

	switch o.format {
	case "text":
		fmt.Fprint(out, gr.ToText())
	case "dot":
		fmt.Fprint(out, gr.ToDOT())
	case "json":
		data, err := gr.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	default:
		return &exitError{code: 2, err: fmt.Errorf("unknown graph format %q", o.format)}
	}
	return nil
}

func printPaths(out io.Writer, gr *graph.Graph, spec string, all bool) error {
	from, to, ok := strings.Cut(spec, ",")
	if !ok || from == "" || to == "" {
		return &exitError{code: 2, err: fmt.Errorf("--path wants from,to, got %q", spec)}
	}
	for _, name := range []string{from, to} {
		if !gr.Contains(name) {
			return fmt.Errorf("project %q not found in graph", name)
		}
	}

	var paths [][]string
	if all {
		paths = gr.AllPaths(from, to)
	} else if p := gr.Path(from, to); p != nil {
		paths = [][]string{p}
	}
	if len(paths) == 0 {
		return fmt.Errorf("%s does not depend on %s", from, to)
	}
	for _, p := range paths {
		fmt.Fprintln(out, strings.Join(p, " -> "))
	}
	return nil
}

func printNames(out io.Writer, gr *graph.Graph, name string, query func(string) []string) error {
	if !gr.Contains(name) {
		return fmt.Errorf("project %q not found in graph", name)
	}
	for _, n := range query(name) {
		fmt.Fprintln(out, n)
	}
	return nil
}

func printStats(out io.Writer, gr *graph.Graph) {
	s := gr.Stats()
	fmt.Fprintf(out, "Projects:  %d\n", s.TotalProjects)
	fmt.Fprintf(out, "Edges:     %d\n", s.Edges)
	fmt.Fprintf(out, "Roots:     %s\n", strings.Join(gr.Roots(), " "))
	fmt.Fprintf(out, "Leaves:    %s\n", strings.Join(gr.Leaves(), " "))
	fmt.Fprintf(out, "Max depth: %d\n", s.MaxDepth)
	if !gr.HasCycles() {
		fmt.Fprintln(out, "Cycles:    none")
		return
	}
	for _, c := range gr.FindCycles() {
		fmt.Fprintf(out, "Cycle:     %s -> %s\n", strings.Join(c, " -> "), c[0])
	}
}
