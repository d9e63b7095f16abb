// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"

	"cauldron-reconciler/internal/common/metrics"
)

// ErrorHandler turns request failures into JSON error responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError normalizes err, logs it and writes the error body.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := GetHTTPStatus(stdErr.Code)
	category := GetErrorCategory(stdErr.Code)

	h.logError(r, stdErr, status, category)
	metrics.RequestErrors.WithLabelValues(string(stdErr.Code), category).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: stdErr.Message})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int, category string) {
	fields := map[string]interface{}{
		"path":          r.URL.Path,
		"method":        r.Method,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"errorCategory": category,
		"message":       stdErr.Message,
		"details":       stdErr.Details,
	}
	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		fields["requestId"] = requestID
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
