package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/steward/internal/sandbox"
)

var errSandboxDriver = errors.New("sandbox data can only be seeded into a sqlite warehouse")

func newSandboxCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Local sandbox warehouse",
	}

	var seed uint64
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and fill it with synthetic payor data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if a.cfg.Warehouse.Driver != "sqlite" {
				return errSandboxDriver
			}
			stats, err := sandbox.Seed(ctx, a.gw, a.cfg.Warehouse.Tables, seed, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "golden=%d sources=%d candidates=%d auto=%d edges=%d\n",
				stats.GoldenPayors, stats.SourceRows, stats.Candidates, stats.AutoMatches, stats.Edges)
			return nil
		},
	}
	seedCmd.Flags().Uint64Var(&seed, "seed", 42, "random seed for the generator")

	cmd.AddCommand(seedCmd)
	return cmd
}
