package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"cauldron-reconciler/internal/common/logger"
)

// Observability holds the OpenTelemetry instruments recorded per evaluation.
// The instruments are exported through the default Prometheus registry, so
// they appear on the same /metrics endpoint as the promauto collectors.
// A zero value or nil *Observability is safe to use and records nothing.
type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	evaluationCounter  otelmetric.Int64Counter
	evaluationDuration otelmetric.Float64Histogram
}

// The exporter registers with the default Prometheus registry, which must see
// a single collector per process or scrapes fail on duplicate series.
var (
	providerOnce sync.Once
	provider     *metric.MeterProvider
	providerErr  error
)

func sharedProvider() (*metric.MeterProvider, error) {
	providerOnce.Do(func() {
		exporter, err := prometheus.New()
		if err != nil {
			providerErr = err
			return
		}
		provider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(provider)
	})
	return provider, providerErr
}

func New(serviceName string, log logger.Logger) *Observability {
	provider, err := sharedProvider()
	if err != nil {
		log.WithError(err).Warn("failed to create prometheus exporter, otel metrics disabled", nil)
		return &Observability{}
	}

	meter := provider.Meter(serviceName)

	evaluationCounter, _ := meter.Int64Counter(
		"discrepancy.evaluations",
		otelmetric.WithDescription("Number of discrepancy evaluations"),
	)

	evaluationDuration, _ := meter.Float64Histogram(
		"discrepancy.evaluation.duration",
		otelmetric.WithDescription("Discrepancy evaluation duration, including the upstream fetch"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		evaluationCounter:  evaluationCounter,
		evaluationDuration: evaluationDuration,
	}
}

// RecordEvaluation counts one evaluation. outcome is a status such as "OK"
// or an error code.
func (o *Observability) RecordEvaluation(ctx context.Context, outcome string) {
	if o == nil || o.evaluationCounter == nil {
		return
	}
	o.evaluationCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordEvaluationDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o == nil || o.evaluationDuration == nil {
		return
	}
	o.evaluationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// Shutdown flushes pending measurements. The provider is shared by every
// Observability in the process and keeps serving scrapes afterwards, so a
// later New still records.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.ForceFlush(ctx)
}
