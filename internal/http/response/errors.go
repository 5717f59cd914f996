package response

import (
	"encoding/json"
	"net/http"

	"github.com/bigode/bigode-booking/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response. The message is sent as
// both error and message so older clients that only read one still see it.
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    code,
	})
}

// WriteErrorWithDetails writes a structured JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, message, code, details string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    code,
		Details: details,
	})
}

// Common error codes
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimit       = "RATE_LIMIT_EXCEEDED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExpiredToken    = "EXPIRED_TOKEN"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodePastDateTime    = "PAST_DATETIME"
	CodeQueueClosed     = "QUEUE_CLOSED"
	CodeNotInQueue      = "NOT_IN_QUEUE"
	CodeSlotUnavailable = "SLOT_UNAVAILABLE"
	CodeInvalidOTP      = "INVALID_OTP"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}
