package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTransformCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Warehouse transformation jobs",
	}

	var steward string
	run := &cobra.Command{
		Use:   "run",
		Short: "Run the configured transformation job and record it in the change log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if steward == "" {
				steward = a.cfg.Review.Steward
			}
			res, err := a.steward.RunTransform(ctx, steward)
			if res != nil && res.Output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transform finished in %s\n", res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	run.Flags().StringVar(&steward, "steward", "", "name recorded in the change log (default review.steward)")

	cmd.AddCommand(run)
	return cmd
}
