package apperror

import (
	"database/sql"
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("entry", "2024-01-01"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("custom tag", "work"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "StorageFailed wraps ErrStorage",
			err:       StorageFailed("saving entry", errors.New("disk full")),
			target:    ErrStorage,
			wantMatch: true,
		},
		{
			name:      "StorageFailed keeps the driver cause",
			err:       StorageFailed("getting entry", sql.ErrConnDone),
			target:    sql.ErrConnDone,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("entry", "2024-01-01"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrStorage",
			err:       ValidationFailed("pin", "PIN must be exactly 4 characters"),
			target:    ErrStorage,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("entry", "2024-01-01"),
			wantMessage: "entry not found with id 2024-01-01",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "title is required"),
			wantMessage: "title is required",
		},
		{
			name:        "StorageFailed names the operation",
			err:         StorageFailed("deleting entry", errors.New("database is locked")),
			wantMessage: "sqlite: deleting entry: database is locked",
		},
		{
			name:        "Forbidden uses custom message",
			err:         Forbidden("incorrect PIN"),
			wantMessage: "incorrect PIN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("entry", "2024-01-01")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := errors.Join(errors.New("saving entry"), ValidationFailed("primaryMood", "primary mood is required"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should find the *AppError")
	}
	if appErr.Field != "primaryMood" {
		t.Errorf("Field = %q, want %q", appErr.Field, "primaryMood")
	}
}
