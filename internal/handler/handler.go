package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vendora/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps domain errors to HTTP statuses. Anything
// unrecognised is an internal error and its detail stays out of the response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var notFound *model.ProductNotFoundError
	var stock *model.InsufficientStockError
	var domain *model.DomainError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusBadRequest, model.ErrCodeProductNotFound, err.Error(), logger)
	case errors.As(err, &stock):
		writeError(w, http.StatusConflict, model.ErrCodeInsufficientStock, err.Error(), logger)
	case errors.As(err, &domain):
		status := http.StatusBadRequest
		switch domain.Code {
		case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound:
			status = http.StatusNotFound
		case model.ErrCodeOrderHasPending:
			status = http.StatusConflict
		case model.ErrCodeInvariantViolation:
			status = http.StatusInternalServerError
		}
		writeError(w, status, domain.Code, domain.Message, logger)
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}
