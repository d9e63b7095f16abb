// cmd/reconciler/serve.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cauldron-reconciler/internal/common/config"
	detect "cauldron-reconciler/internal/handlers/detect-daily-discrepancy"
	"cauldron-reconciler/internal/server"
)

func (a *app) newServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  reconciler serve
  reconciler serve --port 8080 --config configs/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.runServer(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to bind (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")

	return cmd
}

func (a *app) runServer(ctx context.Context) error {
	defer func() { _ = a.zapLog.Sync() }()
	cfg := a.cfg

	svc, shutdown, err := a.buildService()
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	handler := detect.NewHandler(&detect.Config{
		DefaultTolerance: cfg.Discrepancy.DefaultTolerance,
		DefaultThreshold: cfg.Discrepancy.DefaultThreshold,
		MaxBodyBytes:     cfg.Discrepancy.MaxBodyBytes,
	}, svc, a.log)

	srv := server.New(server.Config{
		Address:         cfg.Server.Address(),
		ReadTimeout:     config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:    config.GetDuration(cfg.Server.WriteTimeout),
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
		CORS: server.CORSConfig{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			AllowedMethods: cfg.Server.CORS.AllowedMethods,
			AllowedHeaders: cfg.Server.CORS.AllowedHeaders,
		},
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		MetricsPath:    cfg.Observability.MetricsPath,
	}, handler, a.log)

	a.log.Info("starting reconciler", map[string]interface{}{
		"address":     cfg.Server.Address(),
		"ticketsUrl":  cfg.Tickets.APIURL,
		"environment": cfg.App.Environment,
	})

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	a.log.Info("reconciler stopped", nil)
	return nil
}
