package errors

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// Code generation error codes (GEN001-099)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "GEN001"
	// ErrUnknownDerive indicates a catalogue name with no registered strategy
	ErrUnknownDerive ErrorCode = "GEN002"
	// ErrDuplicateLiteral indicates two FromStr variants mapping to the same text
	ErrDuplicateLiteral ErrorCode = "GEN003"
	// ErrOutputWrite indicates the generated file could not be written
	ErrOutputWrite ErrorCode = "GEN004"
)

// NewCodeGenFailed creates a GEN001 error
func NewCodeGenFailed(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Code generation failed: %s", reason),
		loc,
	).WithSuggestion("This is likely a derivekit bug - please report it")
}

// NewUnknownDerive creates a GEN002 error
func NewUnknownDerive(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrUnknownDerive,
		"unknown_derive",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("No expansion strategy registered for `%s`", name),
		loc,
	)
}

// NewDuplicateLiteral creates a GEN003 warning. The later variant is dropped
// from the generated match.
func NewDuplicateLiteral(loc ast.SourceLocation, subject, literal, kept, dropped string) *CompilerError {
	return newError(
		ErrDuplicateLiteral,
		"duplicate_literal",
		CategoryCodeGen,
		SeverityWarning,
		fmt.Sprintf("`%s::%s` and `%s::%s` both parse from %q; only `%s` is matched",
			subject, kept, subject, dropped, literal, kept),
		loc,
	).WithSubject("FromStr", subject)
}

// NewOutputWrite creates a GEN004 error
func NewOutputWrite(path string, cause error) *CompilerError {
	return newError(
		ErrOutputWrite,
		"output_write",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Failed to write %s: %v", path, cause),
		ast.SourceLocation{},
	).WithFile(path)
}
