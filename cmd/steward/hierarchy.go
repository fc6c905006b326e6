package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHierarchyCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Payor hierarchy maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Mirror golden payors and their hierarchy into the graph store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			res, err := a.steward.SyncHierarchyGraph(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d payors and %d relationships\n", res.Payors, res.Edges)
			return nil
		},
	})
	return cmd
}
