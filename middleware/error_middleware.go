package middleware

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"safesphere/utils/errors"
)

// ErrorMiddleware recovers panics and reports them as a standardized JSON 500
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.ErrorContext(r.Context(), "Panic recovered", "panic", rec, "path", r.URL.Path)
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as an APIError JSON response
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", "Unexpected error", errors.ErrInternal.Status)
	}
	// Log server errors
	if apiErr.Status >= 500 {
		slog.Error("Server error", "error", apiErr.Error(), "details", apiErr.Details)
	}

	WriteJSON(w, apiErr.Status, apiErr)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
