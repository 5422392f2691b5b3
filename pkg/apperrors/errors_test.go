package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKinds(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name        string
		err         error
		kind        error
		recoverable bool
	}{
		{"validation", Validation("prompt", "bad email"), ErrValidation, true},
		{"not found", NotFound("forecast", "unknown gym"), ErrNotFound, true},
		{"computation", Computation("forecast", cause), ErrComputation, false},
		{"external", External("wger", cause), ErrExternalService, false},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("x", "y")), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := Recoverable(tt.err); got != tt.recoverable {
				t.Errorf("Recoverable() = %v, want %v", got, tt.recoverable)
			}
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Computation("fit", cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("computation error matched validation kind")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("op", "no trainer found for this specialization")); got != "no trainer found for this specialization" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("raw")); got != "we encountered an internal error" {
		t.Errorf("Message(raw) = %q", got)
	}
}
