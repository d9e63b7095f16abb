// Package discrepancy reconciles ticket volumes against measured drain
// volumes for one cauldron and date.
package discrepancy

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cauldron-reconciler/internal/common/dates"
	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/common/logger"
	"cauldron-reconciler/internal/common/metrics"
	"cauldron-reconciler/internal/common/observability"
	"cauldron-reconciler/internal/models"
)

const tracerName = "cauldron-reconciler/discrepancy"

// minDrainVolume is the denominator floor for relative_diff.
const minDrainVolume = 1e-6

// TicketSource returns the full upstream ticket dataset. Ticket dates must
// already be normalized to YYYY-MM-DD.
//
//go:generate mockgen -destination=mocks/mock_ticket_source.go -package=mocks cauldron-reconciler/internal/discrepancy TicketSource
type TicketSource interface {
	FetchTickets(ctx context.Context) ([]models.Ticket, error)
}

type Service struct {
	config *Config
	source TicketSource
	logger logger.Logger
	obs    *observability.Observability
}

func NewService(config *Config, source TicketSource, log logger.Logger, obs *observability.Observability) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		config: config,
		source: source,
		logger: log.With(map[string]interface{}{"component": "discrepancy"}),
		obs:    obs,
	}
}

// NewRequest builds a request, filling tolerance and threshold from the
// service defaults when nil.
func (s *Service) NewRequest(cauldronID, date string, drainVolume float64, tolerance, threshold *float64) models.ReconciliationRequest {
	req := models.ReconciliationRequest{
		CauldronID:  cauldronID,
		Date:        date,
		DrainVolume: drainVolume,
		Tolerance:   s.config.DefaultTolerance,
		Threshold:   s.config.DefaultThreshold,
	}
	if tolerance != nil {
		req.Tolerance = *tolerance
	}
	if threshold != nil {
		req.Threshold = *threshold
	}
	return req
}

// Evaluate fetches the ticket dataset and classifies the discrepancy between
// the cauldron's reported tickets and the measured drain volume on req.Date.
func (s *Service) Evaluate(ctx context.Context, req models.ReconciliationRequest) (*models.ReconciliationResult, error) {
	start := time.Now()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "discrepancy.evaluate", trace.WithAttributes(
		attribute.String("cauldron.id", req.CauldronID),
		attribute.String("request.date", req.Date),
		attribute.Float64("drain.volume", req.DrainVolume),
	))
	defer span.End()

	result, err := s.evaluate(ctx, req)

	var outcome string
	if err != nil {
		outcome = string(apperrors.ErrCodeInternal)
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			outcome = string(stdErr.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logger.Warn("evaluation failed", map[string]interface{}{
			"cauldronId": req.CauldronID,
			"date":       req.Date,
			"code":       outcome,
			"error":      err.Error(),
		})
	} else {
		outcome = string(result.Status)
		metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
		metrics.TicketsMatched.Observe(float64(result.NumTickets))
		span.SetAttributes(
			attribute.String("discrepancy.status", outcome),
			attribute.Int("tickets.matched", result.NumTickets),
		)
		s.logger.Info("evaluation completed", map[string]interface{}{
			"cauldronId":        result.CauldronID,
			"date":              result.Date,
			"status":            outcome,
			"numTickets":        result.NumTickets,
			"totalTicketVolume": result.TotalTicketVolume,
			"drainVolume":       result.DrainVolume,
			"durationMs":        time.Since(start).Milliseconds(),
		})
	}

	s.obs.RecordEvaluation(ctx, outcome)
	s.obs.RecordEvaluationDuration(ctx, time.Since(start), outcome)
	return result, err
}

func (s *Service) evaluate(ctx context.Context, req models.ReconciliationRequest) (*models.ReconciliationResult, error) {
	date, err := dates.Normalize(req.Date)
	if err != nil {
		return nil, apperrors.NewInvalidDateError(req.Date, err)
	}

	tickets, err := s.source.FetchTickets(ctx)
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewFetchFailedError(err)
	}

	matched := filterTickets(tickets, req.CauldronID, date)
	if len(matched) == 0 {
		return &models.ReconciliationResult{
			CauldronID:        req.CauldronID,
			Date:              date,
			DrainVolume:       req.DrainVolume,
			TotalTicketVolume: 0,
			Difference:        req.DrainVolume,
			RelativeDiff:      1.0,
			Status:            models.StatusMissingTicket,
		}, nil
	}

	total := sumAmounts(matched).InexactFloat64()
	difference, relativeDiff, status := classify(total, req.DrainVolume, req.Tolerance, req.Threshold)

	return &models.ReconciliationResult{
		CauldronID:        req.CauldronID,
		Date:              date,
		DrainVolume:       req.DrainVolume,
		TotalTicketVolume: total,
		Difference:        difference,
		RelativeDiff:      relativeDiff,
		Status:            status,
		NumTickets:        len(matched),
	}, nil
}

func filterTickets(tickets []models.Ticket, cauldronID, date string) []models.Ticket {
	var matched []models.Ticket
	for _, t := range tickets {
		if t.CauldronID == cauldronID && t.Date == date {
			matched = append(matched, t)
		}
	}
	return matched
}

func sumAmounts(tickets []models.Ticket) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(decimal.NewFromFloat(t.AmountCollected))
	}
	return total
}

// classify compares the ticket total with the drain volume. Either the
// relative or the absolute deviation being within bounds is enough for OK.
// difference is derived from the reported total so that the response always
// satisfies difference == |total_ticket_volume - drain_volume|.
func classify(total, drainVolume, tolerance, threshold float64) (float64, float64, models.DiscrepancyStatus) {
	difference := math.Abs(total - drainVolume)
	relativeDiff := difference / math.Max(drainVolume, minDrainVolume)

	switch {
	case relativeDiff <= tolerance || difference <= threshold:
		return difference, relativeDiff, models.StatusOK
	case total > drainVolume:
		return difference, relativeDiff, models.StatusOverReported
	default:
		return difference, relativeDiff, models.StatusUnderReported
	}
}
