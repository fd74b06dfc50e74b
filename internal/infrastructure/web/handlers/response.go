package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/infrastructure/logging"
)

// Códigos de error expuestos en el campo "error" de las respuestas
const (
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeInvalidCurrency     = "INVALID_CURRENCY"
	CodeInvalidRange        = "INVALID_RANGE"
	CodeRangeTooLong        = "RANGE_TOO_LONG"
	CodeFutureDate          = "FUTURE_DATE"
	CodeNoData              = "NO_DATA"
	CodeUnknownCurrency     = "UNKNOWN_CURRENCY"
	CodeUnknownCache        = "UNKNOWN_CACHE"
	CodeUnknownJob          = "UNKNOWN_JOB"
	CodeJobFailed           = "JOB_FAILED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeRequestCancelled    = "REQUEST_CANCELLED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// statusForError traduce los errores de dominio a status HTTP y código de error
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCurrency):
		return http.StatusBadRequest, CodeInvalidCurrency
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, CodeInvalidRange
	case errors.Is(err, domain.ErrRangeTooLong):
		return http.StatusBadRequest, CodeRangeTooLong
	case errors.Is(err, domain.ErrFutureDate):
		return http.StatusBadRequest, CodeFutureDate
	case errors.Is(err, domain.ErrNoDataForRange):
		return http.StatusNotFound, CodeNoData
	case errors.Is(err, domain.ErrUnknownCurrency):
		return http.StatusNotFound, CodeUnknownCurrency
	case errors.Is(err, domain.ErrUnknownCache):
		return http.StatusNotFound, CodeUnknownCache
	case errors.Is(err, domain.ErrUnknownJob):
		return http.StatusNotFound, CodeUnknownJob
	case errors.Is(err, domain.ErrJobFailed):
		return http.StatusInternalServerError, CodeJobFailed
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, CodeUpstreamUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeRequestCancelled
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// writeJSONResponse escribe una respuesta JSON
func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			logging.FieldStatusCode: statusCode,
		})
	}
}

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, code, message string) {
	writeJSONResponse(ctx, w, statusCode, dto.NewErrorResponse(code, message))
}

// writeDomainError mapea err con statusForError y registra los 5xx
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithError(ctx, "Request failed", err, logging.Fields{
			logging.FieldStatusCode: status,
			"error_code":            code,
		})
	}
	writeErrorResponse(ctx, w, status, code, err.Error())
}
