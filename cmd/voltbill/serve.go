package main

import (
	"github.com/smallbiznis/voltbill/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		fx.New(
			coreModules(),
			server.Module,
		).Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
