package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"salesd/internal/predictor"
	"salesd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps service errors to an HTTP status and an error-kind label.
func statusFor(err error) (int, string) {
	var he HTTPError
	switch {
	case predictor.IsInvalidInput(err):
		return http.StatusBadRequest, "invalid_input"
	case predictor.IsModelUnavailable(err):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.As(err, &he):
		return he.StatusCode(), "service"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
