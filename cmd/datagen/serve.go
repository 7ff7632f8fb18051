package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/datagen/api"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the datagen HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(api.ServerOptions{
				Port:       a.cfg.Server.Port,
				Prefork:    a.cfg.Server.Prefork,
				MaxRows:    a.cfg.Server.MaxRows,
				MaxWorkers: a.cfg.Generation.MaxWorkers,
				Catalog:    a.catalog,
				Logger:     a.log,
			})
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on")
	cmd.Flags().Bool("prefork", false, "Use multiple OS processes")
	cmd.Flags().Int("max-rows", 0, "Largest row count a single request may ask for")
	bindFlags(a, cmd, map[string]string{
		"server.port":     "port",
		"server.prefork":  "prefork",
		"server.max_rows": "max-rows",
	})
	return cmd
}
