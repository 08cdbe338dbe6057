package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/statementworks/recon/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation REST API",
		Long: `Start the HTTP server the web frontend talks to. The server shuts down
gracefully on interrupt.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(viper.GetString("server.addr"), eng, store)
	return server.Start(ctx)
}
