package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/welllit"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of welllit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "welllit version %s\n", strings.TrimSpace(welllit.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
