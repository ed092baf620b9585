package main

import (
	"github.com/aretw0/welllit/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <table.csv>",
	Short: "Check a transfer table without starting a run",
	Long:  `Reads and builds the table, reporting every duplicate or invalid well it finds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := stackOptions(cmd)
		return cli.Validate(cmd.Context(), opts.ConfigPath, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
