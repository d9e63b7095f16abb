// Package tickets retrieves and decodes the upstream ticket dataset.
package tickets

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	appconfig "cauldron-reconciler/internal/common/config"
	apperrors "cauldron-reconciler/internal/common/errors"
	apphttp "cauldron-reconciler/internal/common/http"
	"cauldron-reconciler/internal/common/logger"
	"cauldron-reconciler/internal/common/metrics"
	"cauldron-reconciler/internal/models"
)

const tracerName = "cauldron-reconciler/tickets"

type Config struct {
	APIURL  string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		APIURL:  appconfig.DefaultTicketsAPIURL,
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Client fetches the full ticket dataset. Every call performs one GET;
// nothing is cached between calls.
type Client struct {
	config *Config
	http   *apphttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("tickets client config: %w", err)
	}
	return &Client{
		config: config,
		http:   apphttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{"component": "tickets"}),
	}, nil
}

// FetchTickets retrieves and decodes every ticket the upstream API returns.
func (c *Client) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tickets.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("tickets.url", c.config.APIURL))

	start := time.Now()
	body, err := c.http.Get(ctx, c.config.APIURL)
	if err != nil {
		metrics.UpstreamFetchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.logger.WithError(err).Warn("tickets fetch failed", map[string]interface{}{
			"url":      c.config.APIURL,
			"duration": time.Since(start).String(),
		})
		return nil, apperrors.NewFetchFailedError(err)
	}
	metrics.UpstreamFetchDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	tickets, shape, err := Decode(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tickets.shape", string(shape)),
		attribute.Int("tickets.count", len(tickets)),
	)
	c.logger.Debug("tickets fetched", map[string]interface{}{
		"shape":    string(shape),
		"count":    len(tickets),
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	})
	return tickets, nil
}
