package main

import (
	"fmt"

	"github.com/spf13/cobra"

	droppings "github.com/albertocavalcante/go-droppings"
)

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and project descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			reg, err := droppings.LoadRegistry(cmd.Context(), cfg.WorkspaceDir(), cfg.ProjectSpecs())
			if err != nil {
				return err
			}
			if err := droppings.ValidateVersions(reg); err != nil {
				return err
			}
			if _, err := droppings.Schedule(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d projects OK\n", g.configPath, reg.Len())
			return nil
		},
	}
}
