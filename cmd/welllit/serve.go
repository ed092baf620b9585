package main

import (
	"github.com/aretw0/welllit/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [table.csv]",
	Short: "Start the HTTP API",
	Long: `Hosts a session behind a JSON API for bench-side displays, with
server-sent events on /events and Prometheus metrics on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		opts := cli.ServeOptions{Options: stackOptions(cmd), Addr: addr}
		if len(args) > 0 {
			opts.File = args[0]
		}
		return cli.Serve(opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http.addr)")
}
