package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
)

// maxBodyBytes caps request bodies; an entry is a few KB of text at most.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body returned for every error.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending field for validation errors
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error onto a status code and an ErrorResponse.
// Storage failures and unknown errors become a generic 500 so driver
// details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := "An internal error occurred"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
			message = appErr.Message
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
			message = appErr.Message
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
			message = appErr.Message
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
			message = appErr.Message
		case errors.Is(err, apperror.ErrStorage):
			errorType = "storage_error"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
			Field:   appErr.Field,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a size-limited JSON body into dst. Unknown fields are
// rejected so typos surface as 400s.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// dateParam reads the {date} URL parameter as a date key.
func dateParam(r *http.Request) (time.Time, error) {
	return parseDate("date", chi.URLParam(r, "date"))
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := model.ParseDateKey(raw)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD form, got %q", field, raw))
	}
	return d, nil
}

// optionalDate parses a query parameter that may be absent.
func optionalDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := parseDate(name, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// requiredDate parses a query parameter that must be present.
func requiredDate(r *http.Request, name string) (time.Time, error) {
	d, err := optionalDate(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, apperror.ValidationFailed(name, name+" is required")
	}
	return *d, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.ValidationFailed(name, fmt.Sprintf("%s must be true or false, got %q", name, raw))
	}
	return b, nil
}

// listParam collects a repeated parameter; each occurrence may also hold a
// comma-separated list.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
