// Package domain defines the core domain models for bil.
package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("BIL-TEST-1000", "test message"),
			expected: "[BIL-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("BIL-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[BIL-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("BIL-TEST-1000", "message 1")
	err2 := NewDomainError("BIL-TEST-1000", "message 2")
	err3 := NewDomainError("BIL-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := ErrInvalidAmount.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !errors.Is(err, ErrInvalidAmount) {
		t.Error("errors.Is should match the sentinel")
	}
}

func TestDomainError_WrappedByFmt(t *testing.T) {
	err := fmt.Errorf("add payment: %w", ErrReadOnly)

	if !errors.Is(err, ErrReadOnly) {
		t.Error("wrapped ErrReadOnly should match")
	}
	if !IsDomainError(err, "BIL-SESS-4030") {
		t.Error("IsDomainError should match the code through fmt wrapping")
	}
	if got := GetErrorCode(err); got != "BIL-SESS-4030" {
		t.Errorf("GetErrorCode() = %q, want %q", got, "BIL-SESS-4030")
	}
}

func TestIsDomainError_EmptyCode(t *testing.T) {
	if !IsDomainError(ErrNoActiveGroup, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("IsDomainError should not match a plain error")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("GetErrorCode should be empty for a plain error")
	}
}

func TestSessionErrorCodesAreDistinct(t *testing.T) {
	errs := []*DomainError{ErrReadOnly, ErrNoActiveProject, ErrNoActiveGroup, ErrInvalidArgument, ErrInvalidAmount}
	seen := make(map[string]bool)
	for _, e := range errs {
		if seen[e.Code] {
			t.Errorf("duplicate code %s", e.Code)
		}
		seen[e.Code] = true
	}
}
