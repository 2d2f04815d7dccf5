package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// Attribute grammar error codes (ATR001-099)
const (
	// ErrUnknownAttributeKey indicates a key the trait family does not accept
	ErrUnknownAttributeKey ErrorCode = "ATR001"
	// ErrConflictingKeys indicates two mutually exclusive keys on one item
	ErrConflictingKeys ErrorCode = "ATR002"
	// ErrWrongLevel indicates a valid key placed on the wrong kind of item
	ErrWrongLevel ErrorCode = "ATR003"
	// ErrMalformedValue indicates a key whose value has the wrong form
	ErrMalformedValue ErrorCode = "ATR004"
	// ErrDuplicateAttribute indicates the same helper attribute repeated on one item
	ErrDuplicateAttribute ErrorCode = "ATR005"
	// ErrFormatString indicates a format string whose placeholders cannot be resolved
	ErrFormatString ErrorCode = "ATR006"
)

// NewUnknownAttributeKey creates an ATR001 error. suggestions are the closest
// accepted keys, best match first.
func NewUnknownAttributeKey(loc ast.SourceLocation, attr, key string, accepted, suggestions []string) *CompilerError {
	err := newError(
		ErrUnknownAttributeKey,
		"unknown_attribute_key",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("Unknown key `%s` in #[%s(...)]", key, attr),
		loc,
	).WithActual(key)

	if len(accepted) > 0 {
		err.WithExpected("one of " + strings.Join(accepted, ", "))
	}
	if len(suggestions) > 0 {
		err.WithSuggestion(fmt.Sprintf("Did you mean `%s`?", suggestions[0]))
		examples := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			examples = append(examples, fmt.Sprintf("#[%s(%s)]", attr, s))
		}
		err.WithExamples(examples...)
	}
	return err
}

// NewConflictingKeys creates an ATR002 error
func NewConflictingKeys(loc ast.SourceLocation, attr, first, second string) *CompilerError {
	return newError(
		ErrConflictingKeys,
		"conflicting_keys",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("`%s` and `%s` cannot be used together in #[%s(...)]", first, second, attr),
		loc,
	).WithSuggestion(fmt.Sprintf("Remove either `%s` or `%s`", first, second))
}

// NewWrongLevel creates an ATR003 error
func NewWrongLevel(loc ast.SourceLocation, attr, key, level string, allowed []string) *CompilerError {
	err := newError(
		ErrWrongLevel,
		"wrong_level",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("`%s` is not allowed in #[%s(...)] on a %s", key, attr, level),
		loc,
	).WithActual(level)

	if len(allowed) > 0 {
		err.WithExpected(strings.Join(allowed, " or "))
		err.WithSuggestion(fmt.Sprintf("Move `%s` to the %s", key, strings.Join(allowed, " or ")))
	} else {
		err.WithSuggestion(fmt.Sprintf("#[%s] accepts no arguments on a %s", attr, level))
	}
	return err
}

// NewMalformedValue creates an ATR004 error
func NewMalformedValue(loc ast.SourceLocation, attr, key, expected, actual string) *CompilerError {
	return newError(
		ErrMalformedValue,
		"malformed_value",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("Malformed `%s` in #[%s(...)]: expected %s", key, attr, expected),
		loc,
	).WithExpected(expected).WithActual(actual)
}

// NewDuplicateAttribute creates an ATR005 error
func NewDuplicateAttribute(loc ast.SourceLocation, attr string) *CompilerError {
	return newError(
		ErrDuplicateAttribute,
		"duplicate_attribute",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("Only a single #[%s(...)] attribute is allowed here", attr),
		loc,
	).WithSuggestion("Merge the keys into one attribute")
}

// NewFormatString creates an ATR006 error for a format string the
// formatting derives cannot use
func NewFormatString(loc ast.SourceLocation, attr, format, reason string) *CompilerError {
	return newError(
		ErrFormatString,
		"format_string",
		CategoryAttribute,
		SeverityError,
		fmt.Sprintf("Invalid format string in #[%s(...)]: %s", attr, reason),
		loc,
	).WithActual(format).
		WithExamples(fmt.Sprintf("#[%s(\"{} of {}\", _0, _1)]", attr), fmt.Sprintf("#[%s(\"{name}\")]", attr))
}
