package services_test

import (
	"errors"
	"strings"
	"testing"

	"autosub/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "fill", "complete", "request failed", base)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fill", "complete", "request failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", services.Wrap(services.ErrValidation, "merge", "", "bad", nil), 2},
		{"configuration", services.Wrap(services.ErrConfiguration, "fill", "", "no key", nil), 2},
		{"not found", services.Wrap(services.ErrNotFound, "generate", "", "missing", nil), 2},
		{"conflict", services.Wrap(services.ErrConflict, "fill", "lock", "busy", nil), 2},
		{"transient", services.Wrap(services.ErrTransient, "fill", "", "", errors.New("io")), 1},
		{"plain", errors.New("other"), 1},
	}
	for _, tt := range tests {
		if got := services.ExitCode(tt.err); got != tt.want {
			t.Errorf("%s: ExitCode = %d want %d", tt.name, got, tt.want)
		}
	}
}
