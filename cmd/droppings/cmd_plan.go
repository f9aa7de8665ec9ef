package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	droppings "github.com/albertocavalcante/go-droppings"
)

func newPlanCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the build waves without building",
		Long: `Parse every project descriptor in the workspace, check requested sibling
versions and print the waves the projects would build in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			reg, waves, err := droppings.Plan(cmd.Context(), cfg.WorkspaceDir(), cfg.ProjectSpecs())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, w := range waves {
				fmt.Fprintf(out, "Wave %d: %s\n", i+1, strings.Join(w, " "))
			}
			fmt.Fprintf(out, "%d projects in %d waves\n", reg.Len(), len(waves))
			return nil
		},
	}
}
