package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// Syntax error codes (SYN001-099)
const (
	// ErrUnexpectedToken indicates an unexpected token was encountered
	ErrUnexpectedToken ErrorCode = "SYN001"
	// ErrExpectedToken indicates a specific token was expected but not found
	ErrExpectedToken ErrorCode = "SYN002"
	// ErrUnterminatedString indicates a string or character literal was not terminated
	ErrUnterminatedString ErrorCode = "SYN003"
	// ErrUnterminatedComment indicates a block comment was not terminated
	ErrUnterminatedComment ErrorCode = "SYN004"
	// ErrInvalidNumber indicates an invalid number literal
	ErrInvalidNumber ErrorCode = "SYN005"
	// ErrInvalidEscape indicates an invalid escape sequence in a literal
	ErrInvalidEscape ErrorCode = "SYN006"
	// ErrUnexpectedCharacter indicates a character that starts no token
	ErrUnexpectedCharacter ErrorCode = "SYN007"
	// ErrMismatchedDelimiter indicates a closing delimiter without an opener
	ErrMismatchedDelimiter ErrorCode = "SYN008"
)

// NewUnexpectedToken creates a SYN001 error
func NewUnexpectedToken(loc ast.SourceLocation, found, context string) *CompilerError {
	message := fmt.Sprintf("Unexpected token '%s'", found)
	if context != "" {
		message = fmt.Sprintf("Unexpected token '%s' in %s", found, context)
	}

	return newError(
		ErrUnexpectedToken,
		"unexpected_token",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	)
}

// NewExpectedToken creates a SYN002 error
func NewExpectedToken(loc ast.SourceLocation, expected, found string) *CompilerError {
	return newError(
		ErrExpectedToken,
		"expected_token",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Expected %s but found '%s'", expected, found),
		loc,
	).WithExpected(expected).WithActual(found)
}

// NewSyntaxError classifies a lexer or parser message into the matching SYN
// code. near is the offending lexeme, if any.
func NewSyntaxError(loc ast.SourceLocation, message, near string) *CompilerError {
	code, typ := classifySyntax(message)
	err := newError(code, typ, CategorySyntax, SeverityError, message, loc)
	if near != "" {
		err.WithActual(near)
	}

	switch code {
	case ErrUnterminatedString:
		err.WithSuggestion("Close the literal with a matching quote")
	case ErrUnterminatedComment:
		err.WithSuggestion("Add the closing */ for the block comment")
	case ErrMismatchedDelimiter:
		err.WithSuggestion("Check that every '{', '(' and '[' has a matching closer")
	case ErrExpectedToken:
		if idx := strings.Index(message, "Expected "); idx == 0 {
			err.WithExpected(strings.TrimPrefix(message, "Expected "))
		}
	}
	return err
}

func classifySyntax(message string) (ErrorCode, string) {
	switch {
	case strings.HasPrefix(message, "Unterminated block comment"):
		return ErrUnterminatedComment, "unterminated_comment"
	case strings.HasPrefix(message, "Unterminated"):
		return ErrUnterminatedString, "unterminated_literal"
	case strings.HasPrefix(message, "Invalid number"), strings.HasPrefix(message, "Invalid float"):
		return ErrInvalidNumber, "invalid_number"
	case strings.HasPrefix(message, "Invalid escape"), strings.HasPrefix(message, "Invalid unicode"),
		strings.HasPrefix(message, "Invalid raw string"):
		return ErrInvalidEscape, "invalid_escape"
	case strings.HasPrefix(message, "Unexpected character"):
		return ErrUnexpectedCharacter, "unexpected_character"
	case strings.HasPrefix(message, "Unexpected closing delimiter"):
		return ErrMismatchedDelimiter, "mismatched_delimiter"
	case strings.HasPrefix(message, "Expected"):
		return ErrExpectedToken, "expected_token"
	default:
		return ErrUnexpectedToken, "unexpected_token"
	}
}
