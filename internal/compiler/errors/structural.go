package errors

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// Structural error codes (STR001-099)
const (
	// ErrUnionNotSupported indicates a derive requested on a union
	ErrUnionNotSupported ErrorCode = "STR001"
	// ErrUnitStruct indicates a unit struct where fields are required
	ErrUnitStruct ErrorCode = "STR002"
	// ErrAllFieldsSkipped indicates every field of a struct is skipped
	ErrAllFieldsSkipped ErrorCode = "STR003"
	// ErrAllVariantFieldsSkipped indicates every variant field of an enum is skipped
	ErrAllVariantFieldsSkipped ErrorCode = "STR004"
	// ErrFieldCount indicates a single-field trait with zero or several enabled fields
	ErrFieldCount ErrorCode = "STR005"
	// ErrNonUniformVariants indicates variants disagree where the trait needs them to agree
	ErrNonUniformVariants ErrorCode = "STR006"
	// ErrWrongShape indicates a declaration shape the trait cannot handle
	ErrWrongShape ErrorCode = "STR007"
	// ErrMissingFormat indicates a struct or variant that cannot be formatted
	// without an explicit format string
	ErrMissingFormat ErrorCode = "STR008"
)

// NewUnionNotSupported creates an STR001 error
func NewUnionNotSupported(loc ast.SourceLocation, trait, subject string) *CompilerError {
	return newError(
		ErrUnionNotSupported,
		"union_not_supported",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` cannot be derived for unions", trait),
		loc,
	).WithSubject(trait, subject).
		WithSuggestion("Wrap the union in a struct and derive on the wrapper")
}

// NewUnitStruct creates an STR002 error
func NewUnitStruct(loc ast.SourceLocation, trait, subject string) *CompilerError {
	return newError(
		ErrUnitStruct,
		"unit_struct",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` cannot be derived for unit structs", trait),
		loc,
	).WithSubject(trait, subject)
}

// NewAllFieldsSkipped creates an STR003 error
func NewAllFieldsSkipped(loc ast.SourceLocation, trait, subject string) *CompilerError {
	return newError(
		ErrAllFieldsSkipped,
		"all_fields_skipped",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` cannot be derived for structs with all the fields being skipped", trait),
		loc,
	).WithSubject(trait, subject).
		WithSuggestion("Remove `skip` from at least one field")
}

// NewAllVariantFieldsSkipped creates an STR004 error
func NewAllVariantFieldsSkipped(loc ast.SourceLocation, trait, subject string) *CompilerError {
	return newError(
		ErrAllVariantFieldsSkipped,
		"all_variant_fields_skipped",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` cannot be derived for enums with all the variant fields being skipped", trait),
		loc,
	).WithSubject(trait, subject)
}

// NewFieldCount creates an STR005 error. The message names the trait, the
// type and the number of enabled fields.
func NewFieldCount(loc ast.SourceLocation, trait, subject string, enabled int) *CompilerError {
	noun := "fields"
	if enabled == 1 {
		noun = "field"
	}
	return newError(
		ErrFieldCount,
		"field_count",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` requires exactly one field, but `%s` has %d enabled %s", trait, subject, enabled, noun),
		loc,
	).WithSubject(trait, subject).
		WithExpected("1 enabled field").
		WithActual(fmt.Sprintf("%d", enabled)).
		WithSuggestion(fmt.Sprintf("Mark the other fields with #[%s(ignore)] or mark the target field with #[%s]",
			attrName(trait), attrName(trait)))
}

// NewNonUniformVariants creates an STR006 error
func NewNonUniformVariants(loc ast.SourceLocation, trait, subject, what, expected, actual string) *CompilerError {
	return newError(
		ErrNonUniformVariants,
		"non_uniform_variants",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` requires every variant of `%s` to agree on the %s", trait, subject, what),
		loc,
	).WithSubject(trait, subject).WithExpected(expected).WithActual(actual)
}

// NewWrongShape creates an STR007 error
func NewWrongShape(loc ast.SourceLocation, trait, subject, reason string) *CompilerError {
	return newError(
		ErrWrongShape,
		"wrong_shape",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` cannot be derived for `%s`: %s", trait, subject, reason),
		loc,
	).WithSubject(trait, subject)
}

// NewMissingFormat creates an STR008 error
func NewMissingFormat(loc ast.SourceLocation, trait, subject, reason string) *CompilerError {
	name := attrName(trait)
	return newError(
		ErrMissingFormat,
		"missing_format",
		CategoryStructural,
		SeverityError,
		fmt.Sprintf("`%s` needs a format string for `%s`: %s", trait, subject, reason),
		loc,
	).WithSubject(trait, subject).
		WithSuggestion(fmt.Sprintf("Add #[%s(\"...\", ...)] to `%s`", name, subject)).
		WithExamples(fmt.Sprintf("#[%s(\"({}, {})\", _0, _1)]", name))
}

// attrName converts a trait name such as IndexMut into its helper attribute
// name index_mut
func attrName(trait string) string {
	out := make([]byte, 0, len(trait)+4)
	for i := 0; i < len(trait); i++ {
		c := trait[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
