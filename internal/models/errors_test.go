package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_SentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"validation", ErrValidationWithMsg("bad input"), ErrValidation, "VALIDATION"},
		{"not found", ErrNotFoundWithMsg("missing"), ErrNotFound, "NOT_FOUND"},
		{"precondition", ErrPreconditionWithMsg("wrong state"), ErrPrecondition, "PRECONDITION"},
		{"gateway", ErrGatewayWithCause(fmt.Errorf("timeout")), ErrGateway, "GATEWAY"},
		{"storage", ErrStorageWithCause("insert", fmt.Errorf("conn reset")), ErrStorage, "STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false, want true", tt.err)
			}

			var appErr *AppError
			if !errors.As(tt.err, &appErr) {
				t.Fatalf("errors.As failed for %v", tt.err)
			}
			if appErr.Code != tt.code {
				t.Errorf("Code = %q, want %q", appErr.Code, tt.code)
			}
		})
	}
}

func TestAppError_WrappedCauseInMessage(t *testing.T) {
	err := ErrStorageWithCause("dispatch result", fmt.Errorf("deadlock detected"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	// The operation name and the cause must both survive into the message so
	// operators can tell which write failed.
	for _, want := range []string{"dispatch result", "deadlock detected"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
