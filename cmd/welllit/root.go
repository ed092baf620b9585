package main

import (
	"fmt"
	"os"

	"github.com/aretw0/welllit/internal/cli"
	"github.com/aretw0/welllit/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "welllit",
	Short: "WellLit sequences well-to-well liquid transfers",
	Long: `WellLit guides an operator through a transfer table one transfer at a time,
recording whether each one was completed, skipped or failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("records-dir", "", "Directory for transfer record logs (overrides config)")
}

func stackOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	debug, _ := cmd.Flags().GetBool("debug")
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	return cli.Options{
		ConfigPath: configPath,
		Debug:      debug,
		RecordsDir: recordsDir,
	}
}
