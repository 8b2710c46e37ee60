package errors

import "fmt"

// SyntaxError reports malformed description text at a 1-based position.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// ErrorCode returns ErrCodeSyntax.
func (e *SyntaxError) ErrorCode() Code { return ErrCodeSyntax }

// SemanticError reports well-formed text that breaks a structural rule,
// such as an edge to a node that was never declared.
type SemanticError struct {
	Detail string
}

func (e *SemanticError) Error() string { return "semantic error: " + e.Detail }

// ErrorCode returns ErrCodeSemantic.
func (e *SemanticError) ErrorCode() Code { return ErrCodeSemantic }

// LayoutError reports a layout request that cannot be satisfied.
// Well-formed graphs with valid options never produce one.
type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string { return "layout error: " + e.Reason }

// ErrorCode returns ErrCodeLayout.
func (e *LayoutError) ErrorCode() Code { return ErrCodeLayout }

// InternalError reports a broken invariant between pipeline stages.
// It always indicates a bug, never bad input.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string { return "internal error: " + e.Detail }

// ErrorCode returns ErrCodeInternal.
func (e *InternalError) ErrorCode() Code { return ErrCodeInternal }

// Stage names a step of the conversion pipeline.
type Stage string

// Pipeline stages.
const (
	StageParse     Stage = "parse"
	StageLayout    Stage = "layout"
	StageSerialize Stage = "serialize"
	StageRender    Stage = "render"
)

// StageError records the pipeline stage an error originated from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

// Unwrap returns the stage's original error.
func (e *StageError) Unwrap() error { return e.Err }

// ErrorCode returns the code of the wrapped error, or ErrCodeInternal when
// the wrapped error carries none.
func (e *StageError) ErrorCode() Code {
	if c := GetCode(e.Err); c != "" {
		return c
	}
	return ErrCodeInternal
}

// AtStage wraps err with its stage. It returns nil for a nil err.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
