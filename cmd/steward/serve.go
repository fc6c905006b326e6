package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenthands/steward/internal/sandbox"
	"github.com/agenthands/steward/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stewardship web console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if seed >= 0 {
				if a.cfg.Warehouse.Driver != "sqlite" {
					return errSandboxDriver
				}
				if _, err := sandbox.Seed(ctx, a.gw, a.cfg.Warehouse.Tables, uint64(seed), a.log); err != nil {
					return err
				}
			}

			srv, err := server.NewServer(a.steward, a.cfg, a.log)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().Int64Var(&seed, "sandbox-seed", -1, "seed a sqlite warehouse with synthetic payors before serving")
	return cmd
}
