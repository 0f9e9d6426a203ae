// Package respond writes JSON responses and keeps internal error detail out of them.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"intel-digest/internal/pkg/sanitize"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Text writes a plain-text response.
func Text(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged, never returned)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeError writes an error response. An AppError contributes its user
// message; anything else becomes "internal server error". The internal error
// is logged with credentials scrubbed.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := "internal server error"
	var appErr *AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		msg = appErr.UserMsg
	}

	if code >= 500 || appErr == nil {
		slog.Default().Error("request failed",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.String("error", sanitize.Error(err)))
	}
	JSON(w, code, map[string]string{"error": msg})
}
