package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "bad input", http.StatusBadRequest)

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "bad input" {
		t.Errorf("expected message 'bad input', got %s", err.Message)
	}
	if err.StatusCode() != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.StatusCode())
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrapped := Wrap(originalErr, CodeInternal, "store failure", http.StatusInternalServerError)

	if !errors.Is(wrapped, originalErr) {
		t.Error("expected wrapped error to unwrap to the original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "booking not found"},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "store failure",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: store failure (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConflictWithIDs(t *testing.T) {
	err := ConflictWithIDs("booking overlaps existing reservations", []string{"a1", "b2"})

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if err.StatusCode() != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.StatusCode())
	}
	ids, ok := err.Details["conflicting_ids"].([]string)
	if !ok || len(ids) != 2 {
		t.Errorf("expected two conflicting ids in details, got %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected AsAppError to return the same AppError")
	}

	plain := errors.New("boom")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain error to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if !errors.Is(converted, plain) {
		t.Error("expected converted error to wrap the original")
	}
}
