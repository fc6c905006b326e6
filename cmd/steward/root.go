package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigPath string
	EnvFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "steward",
		Short:         "Payor master data stewardship console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// a missing .env is normal outside local development
			_ = godotenv.Load(opts.EnvFile)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to the TOML config (default $CONFIG_PATH or steward.toml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newTransformCmd(opts))
	cmd.AddCommand(newHierarchyCmd(opts))
	cmd.AddCommand(newSandboxCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
