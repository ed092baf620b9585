package main

import (
	"github.com/aretw0/welllit/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [table.csv]",
	Short: "Run the interactive operator console",
	Long: `Starts the operator console. When a transfer table is given it is loaded
before the first prompt; otherwise use 'load <path>' at the prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Options: stackOptions(cmd)}
		if len(args) > 0 {
			opts.File = args[0]
		}
		return cli.Run(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
}
