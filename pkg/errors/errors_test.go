package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractError_Error(t *testing.T) {
	err := New(CategoryRun, CodeReadFailed, "failed reading input")
	if got := err.Error(); got != "failed reading input" {
		t.Errorf("Error() = %q, want bare message", got)
	}

	err = err.WithSuggestion("check the input file")
	if got := err.Error(); !strings.Contains(got, "suggestion: check the input file") {
		t.Errorf("Error() = %q, want embedded suggestion", got)
	}
}

func TestExtractError_GetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		category ErrorCategory
		expected int
	}{
		{"Startup", CategoryStartup, 2},
		{"Configuration", CategoryConfiguration, 2},
		{"File", CategoryFile, 3},
		{"Run", CategoryRun, 5},
		{"Internal", CategoryInternal, 5},
		{"Unknown category", ErrorCategory("other"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.category, CodeUnexpectedError, "test")
			if got := err.GetExitCode(); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExtractError_IsStartupFatal(t *testing.T) {
	tests := []struct {
		name     string
		category ErrorCategory
		expected bool
	}{
		{"Startup", CategoryStartup, true},
		{"Configuration", CategoryConfiguration, true},
		{"Run", CategoryRun, false},
		{"File", CategoryFile, false},
		{"Internal", CategoryInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.category, CodeUnexpectedError, "test")
			if got := err.IsStartupFatal(); got != tt.expected {
				t.Errorf("IsStartupFatal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryRun, CodeWriteFailed, "failed writing output")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want original cause", err.Unwrap())
	}
	if len(err.StackTrace) == 0 {
		t.Error("StackTrace empty after Wrap")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, CategoryRun, CodeWriteFailed, "message"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestStartupError_Messages(t *testing.T) {
	tests := []struct {
		name        string
		code        ErrorCode
		detail      string
		wantMessage string
	}{
		{"Key resolution", CodeKeyResolution, "ACME01", "no encryption key file mapped for client ACME01"},
		{"Cryptor unavailable", CodeCryptorUnavailable, "/etc/keys/acme01.key", "cryptor is unavailable"},
		{"Hasher unavailable", CodeHasherUnavailable, "/etc/salt.txt", "hasher is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StartupError(tt.code, tt.detail, fmt.Errorf("cause"))
			if !strings.Contains(err.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want mention of %q", err.Message, tt.wantMessage)
			}
			if err.Category != CategoryStartup {
				t.Errorf("Category = %v, want CategoryStartup", err.Category)
			}
			if err.Suggestion == "" {
				t.Error("Suggestion empty, want guidance")
			}
			if err.Context["detail"] != tt.detail {
				t.Errorf("Context[detail] = %v, want %q", err.Context["detail"], tt.detail)
			}
		})
	}
}

func TestRunError(t *testing.T) {
	err := RunError(CodeProtectionFailed, "detail line", fmt.Errorf("no key loaded"))

	if err.Category != CategoryRun {
		t.Errorf("Category = %v, want CategoryRun", err.Category)
	}
	if !strings.Contains(err.Message, "card protection failed") {
		t.Errorf("Message = %q, want protection failure wording", err.Message)
	}
	if err.GetExitCode() != 5 {
		t.Errorf("GetExitCode() = %d, want 5", err.GetExitCode())
	}
}

func TestAsExtractError(t *testing.T) {
	inner := StartupError(CodeKeyResolution, "ACME01", nil)
	wrapped := fmt.Errorf("outer: %w", inner)

	got, ok := AsExtractError(wrapped)
	if !ok {
		t.Fatal("AsExtractError() failed to find error in chain")
	}
	if got.Code != CodeKeyResolution {
		t.Errorf("Code = %v, want CodeKeyResolution", got.Code)
	}

	if _, ok := AsExtractError(fmt.Errorf("plain error")); ok {
		t.Error("AsExtractError() matched a plain error")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	already := RunError(CodeReadFailed, "line scan", nil)
	if got := WrapIfNeeded(already, CategoryInternal, CodeUnexpectedError, "other"); got != already {
		t.Error("WrapIfNeeded() re-wrapped an ExtractError")
	}

	plain := fmt.Errorf("plain error")
	got := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "unexpected")
	if got.Category != CategoryInternal {
		t.Errorf("Category = %v, want CategoryInternal", got.Category)
	}
	if got.Unwrap() != plain {
		t.Error("WrapIfNeeded() lost the cause")
	}

	if got := WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "x"); got != nil {
		t.Errorf("WrapIfNeeded(nil) = %v, want nil", got)
	}
}
