// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "sync dependencies"}, "failed to sync dependencies"},
		{"with resource", &ActionableError{Operation: "sync dependencies", Resource: "node_modules"}, "failed to sync dependencies: node_modules"},
		{
			"with cause",
			&ActionableError{Operation: "resolve esbuild", Resource: "0.25.0", Cause: errors.New("offline")},
			"failed to resolve esbuild: 0.25.0: offline",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("x").Wrap(fmt.Errorf("wrapped: %w", sentinel)).BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() through ActionableError failed")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("sync dependencies").
		WithResource("node_modules").
		WithSuggestions("Wait for the other process", "Pass --no-lock").
		WithIssue(LockBusyId).
		Wrap(fmt.Errorf("acquire: %w", errors.New("resource temporarily unavailable"))).
		Build()

	short := err.Format(false)
	for _, want := range []string{
		"failed to sync dependencies: node_modules",
		"\n  • Wait for the other process",
		"\n  • Pass --no-lock",
		"bundlekit issue lock-busy",
	} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "1. acquire: resource temporarily unavailable") ||
		!strings.Contains(verbose, "2. resource temporarily unavailable") {
		t.Errorf("Format(true) chain missing:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want untyped nil", err)
	}

	ae := NewErrorContext().WithOperation("op").WithSuggestion("a").Build()
	if ae == nil || !ae.HasSuggestions() || ae.Issue != 0 {
		t.Errorf("Build() = %+v", ae)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "op") != nil {
		t.Error("WrapWithOperation(nil) != nil")
	}
	cause := errors.New("boom")
	ae := WrapWithOperation(cause, "load bundlekit.toml")
	if ae.Operation != "load bundlekit.toml" || !errors.Is(ae, cause) {
		t.Errorf("WrapWithOperation() = %+v", ae)
	}
}
