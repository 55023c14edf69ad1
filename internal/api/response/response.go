// Package response provides JSON response helpers for the REST API.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CALILU/cardtradr/internal/tcg"
)

// ErrorResponse represents an API error response. Kind carries the typed
// error category so clients can offer the right retry affordance.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnauthorized, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// ProviderError maps a card-data client error to an HTTP response,
// preserving the error category for the caller's retry logic:
// quota exhaustion stays a 429, plan restriction a 403, and everything
// the provider itself broke becomes a 502.
func ProviderError(w http.ResponseWriter, err error) {
	var (
		invalidCred *tcg.InvalidCredentialError
		restricted  *tcg.PlanRestrictedError
		quota       *tcg.QuotaExceededError
		transport   *tcg.TransportError
		unavailable *tcg.DataUnavailableError
	)

	switch {
	case errors.As(err, &invalidCred):
		kindError(w, http.StatusBadGateway, "invalid_credential", err)
	case errors.As(err, &restricted):
		kindError(w, http.StatusForbidden, "plan_restricted", err)
	case errors.As(err, &quota):
		kindError(w, http.StatusTooManyRequests, "quota_exceeded", err)
	case errors.As(err, &transport):
		kindError(w, http.StatusBadGateway, "transport_error", err)
	case errors.As(err, &unavailable):
		kindError(w, http.StatusBadGateway, "data_unavailable", err)
	default:
		InternalError(w, err)
	}
}

func kindError(w http.ResponseWriter, status int, kind string, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Kind:    kind,
		Code:    status,
	})
}
