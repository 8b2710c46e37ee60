package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeFileNotFound, cause, "failed to open")

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileNotFound)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeLayout,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "syntax error",
			err:      &SyntaxError{Line: 1, Column: 12, Message: "expected node identifier"},
			code:     ErrCodeSyntax,
			expected: true,
		},
		{
			name:     "stage error reports inner code",
			err:      AtStage(StageLayout, &LayoutError{Reason: "negative spacing"}),
			code:     ErrCodeLayout,
			expected: true,
		},
		{
			name:     "fmt wrapped semantic error",
			err:      fmt.Errorf("convert: %w", &SemanticError{Detail: "x"}),
			code:     ErrCodeSemantic,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidConfig, "test"),
			expected: ErrCodeInvalidConfig,
		},
		{
			name:     "internal error",
			err:      &InternalError{Detail: "edge without route"},
			expected: ErrCodeInternal,
		},
		{
			name:     "stage error around plain error",
			err:      AtStage(StageRender, errors.New("boom")),
			expected: ErrCodeInternal,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "stage error",
			err:      AtStage(StageParse, &SyntaxError{Line: 2, Column: 3, Message: "unexpected '}'"}),
			expected: "parse: syntax error at 2:3: unexpected '}'",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAtStage(t *testing.T) {
	if AtStage(StageParse, nil) != nil {
		t.Error("AtStage(nil) should be nil")
	}

	inner := &LayoutError{Reason: "node width must be positive"}
	err := AtStage(StageLayout, inner)

	var stage *StageError
	if !errors.As(err, &stage) {
		t.Fatalf("errors.As(StageError) failed for %v", err)
	}
	if stage.Stage != StageLayout {
		t.Errorf("Stage = %v, want %v", stage.Stage, StageLayout)
	}

	var le *LayoutError
	if !errors.As(err, &le) || le != inner {
		t.Errorf("errors.As(LayoutError) = %v, want %v", le, inner)
	}

	want := "layout: layout error: node width must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"syntax", AtStage(StageParse, &SyntaxError{Line: 1, Column: 1}), true},
		{"semantic", &SemanticError{Detail: "undeclared node"}, true},
		{"invalid input", New(ErrCodeInvalidInput, "empty"), true},
		{"layout", &LayoutError{Reason: "x"}, false},
		{"internal", &InternalError{Detail: "x"}, false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserError(tt.err); got != tt.want {
				t.Errorf("IsUserError() = %v, want %v", got, tt.want)
			}
		})
	}
}
