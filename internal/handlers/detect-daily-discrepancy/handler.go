// internal/handlers/detect-daily-discrepancy/handler.go
package detectdailydiscrepancy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/common/logger"
	"cauldron-reconciler/internal/models"
)

const (
	Route = "/detect_daily_discrepancy"
)

// Evaluator runs one reconciliation.
//
//go:generate mockgen -destination=mocks/mock_evaluator.go -package=mocks cauldron-reconciler/internal/handlers/detect-daily-discrepancy Evaluator
type Evaluator interface {
	Evaluate(ctx context.Context, req models.ReconciliationRequest) (*models.ReconciliationResult, error)
}

type Handler struct {
	config    *Config
	evaluator Evaluator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, evaluator Evaluator, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.With(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		evaluator: evaluator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input, err := h.decode(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	req := h.buildRequest(input)
	h.logger.Debug("evaluating discrepancy", map[string]interface{}{
		"cauldronId":  req.CauldronID,
		"date":        req.Date,
		"drainVolume": req.DrainVolume,
		"tolerance":   req.Tolerance,
		"threshold":   req.Threshold,
	})

	result, err := h.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*Input, error) {
	if h.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidBodyError(fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperrors.NewInvalidBodyError(err.Error())
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewInvalidBodyError(err.Error())
	}

	return parseInput(raw)
}

func (h *Handler) buildRequest(input *Input) models.ReconciliationRequest {
	req := models.ReconciliationRequest{
		CauldronID:  input.CauldronData.CauldronID,
		Date:        input.CauldronData.DateTime,
		DrainVolume: input.CauldronData.DrainVolume,
		Tolerance:   h.config.DefaultTolerance,
		Threshold:   h.config.DefaultThreshold,
	}
	if input.Tolerance != nil {
		req.Tolerance = *input.Tolerance
	}
	if input.Threshold != nil {
		req.Threshold = *input.Threshold
	}
	return req
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
