// cmd/reconciler/wire.go
package main

import (
	"context"
	"fmt"

	"cauldron-reconciler/internal/common/config"
	"cauldron-reconciler/internal/common/observability"
	"cauldron-reconciler/internal/common/tickets"
	"cauldron-reconciler/internal/discrepancy"
)

// buildService wires the tickets client and the evaluator. The returned
// shutdown flushes telemetry and must be called once the caller is done.
func (a *app) buildService() (*discrepancy.Service, func(context.Context), error) {
	cfg := a.cfg

	obs := observability.New(cfg.App.Name, a.log)

	var tracing *observability.Tracing
	if cfg.Observability.TracingEnabled {
		var err error
		tracing, err = observability.InitTracing(cfg.App.Name, cfg.App.Version, cfg.Observability.JaegerEndpoint)
		if err != nil {
			_ = obs.Shutdown(context.Background())
			return nil, nil, fmt.Errorf("init tracing: %w", err)
		}
		a.log.Info("tracing enabled", map[string]interface{}{
			"endpoint": cfg.Observability.JaegerEndpoint,
		})
	}

	shutdown := func(ctx context.Context) {
		if err := tracing.Shutdown(ctx); err != nil {
			a.log.Warn("tracing shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		if err := obs.Shutdown(ctx); err != nil {
			a.log.Warn("metrics shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}

	client, err := tickets.NewClient(&tickets.Config{
		APIURL:  cfg.Tickets.APIURL,
		Timeout: config.GetDuration(cfg.Tickets.Timeout),
	}, a.log)
	if err != nil {
		shutdown(context.Background())
		return nil, nil, err
	}

	svc := discrepancy.NewService(&discrepancy.Config{
		DefaultTolerance: cfg.Discrepancy.DefaultTolerance,
		DefaultThreshold: cfg.Discrepancy.DefaultThreshold,
		Timeout:          discrepancy.DefaultConfig().Timeout,
	}, client, a.log, obs)

	return svc, shutdown, nil
}
