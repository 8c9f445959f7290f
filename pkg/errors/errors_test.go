package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if unwrapped := errors.Unwrap(appErr); unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestConflictRetryable(t *testing.T) {
	err := ConflictRetryable("room is being booked by another request")

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if !err.Retryable {
		t.Error("lock-contention conflict must be retryable")
	}
	if Conflict("dates taken").Retryable {
		t.Error("overlap conflict must not be retryable")
	}
}

func TestCapacityAndPricingStatuses(t *testing.T) {
	if got := Capacity("too many guests", nil).StatusCode(); got != http.StatusUnprocessableEntity {
		t.Errorf("capacity status = %d, want 422", got)
	}
	if got := Pricing("no tariff", nil).StatusCode(); got != http.StatusUnprocessableEntity {
		t.Errorf("pricing status = %d, want 422", got)
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected %s for unknown error, got %s", CodeInternal, appErr.Code)
	}
	if !errors.Is(appErr, plain) {
		t.Error("AsAppError should wrap the original error")
	}

	conflict := Conflict("taken")
	if AsAppError(conflict) != conflict {
		t.Error("AsAppError should pass AppError through unchanged")
	}
}
