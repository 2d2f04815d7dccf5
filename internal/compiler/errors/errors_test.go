package errors

import (
	"encoding/json"
	goerrors "errors"
	"strings"
	"testing"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := make(map[ErrorCode]string)

	groups := map[string][]ErrorCode{
		"syntax": {
			ErrUnexpectedToken, ErrExpectedToken, ErrUnterminatedString,
			ErrUnterminatedComment, ErrInvalidNumber, ErrInvalidEscape,
			ErrUnexpectedCharacter, ErrMismatchedDelimiter,
		},
		"attribute": {
			ErrUnknownAttributeKey, ErrConflictingKeys, ErrWrongLevel,
			ErrMalformedValue, ErrDuplicateAttribute, ErrFormatString,
		},
		"structural": {
			ErrUnionNotSupported, ErrUnitStruct, ErrAllFieldsSkipped,
			ErrAllVariantFieldsSkipped, ErrFieldCount, ErrNonUniformVariants,
			ErrWrongShape, ErrMissingFormat,
		},
		"codegen": {
			ErrCodeGenFailed, ErrUnknownDerive, ErrDuplicateLiteral, ErrOutputWrite,
		},
	}

	prefixes := map[string]string{
		"syntax":     "SYN",
		"attribute":  "ATR",
		"structural": "STR",
		"codegen":    "GEN",
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group
			if !strings.HasPrefix(string(code), prefixes[group]) {
				t.Errorf("Code %s in group %s should start with %s", code, group, prefixes[group])
			}
		}
	}
}

func TestErrorJSONSerialization(t *testing.T) {
	loc := ast.SourceLocation{Line: 10, Column: 5}
	err := NewFieldCount(loc, "Deref", "Foo", 2)

	jsonStr, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error to JSON: %v", jsonErr)
	}

	var parsed CompilerError
	if unmarshalErr := json.Unmarshal([]byte(jsonStr), &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error JSON: %v", unmarshalErr)
	}

	if parsed.Code != ErrFieldCount {
		t.Errorf("Expected code %s, got %s", ErrFieldCount, parsed.Code)
	}
	if parsed.Type != "field_count" {
		t.Errorf("Expected type 'field_count', got '%s'", parsed.Type)
	}
	if parsed.Category != CategoryStructural {
		t.Errorf("Expected category %s, got %s", CategoryStructural, parsed.Category)
	}
	if parsed.Location.Line != 10 || parsed.Location.Column != 5 {
		t.Errorf("Expected 10:5, got %d:%d", parsed.Location.Line, parsed.Location.Column)
	}
	if parsed.Trait != "Deref" || parsed.Subject != "Foo" {
		t.Errorf("Expected Deref/Foo, got %s/%s", parsed.Trait, parsed.Subject)
	}
	if parsed.Actual != "2" {
		t.Errorf("Expected actual '2', got '%s'", parsed.Actual)
	}
}

func TestFieldCountMessage(t *testing.T) {
	err := NewFieldCount(ast.SourceLocation{Line: 1, Column: 1}, "Deref", "Foo", 2)
	expected := "`Deref` requires exactly one field, but `Foo` has 2 enabled fields"
	if err.Message != expected {
		t.Errorf("Expected %q, got %q", expected, err.Message)
	}
	if !strings.Contains(err.Suggestion, "#[deref(ignore)]") {
		t.Errorf("Expected suggestion to mention #[deref(ignore)], got %q", err.Suggestion)
	}

	single := NewFieldCount(ast.SourceLocation{}, "IndexMut", "Bar", 0)
	if !strings.Contains(single.Suggestion, "#[index_mut]") {
		t.Errorf("Expected snake_case attribute name, got %q", single.Suggestion)
	}
}

func TestErrorListJSONSerialization(t *testing.T) {
	errors := ErrorList{
		NewUnknownAttributeKey(ast.SourceLocation{Line: 5, Column: 10}, "add", "skp", []string{"skip", "ignore"}, []string{"skip"}),
		NewUnionNotSupported(ast.SourceLocation{Line: 12, Column: 3}, "Add", "Bits"),
	}

	jsonStr, jsonErr := errors.ToJSON()
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error list to JSON: %v", jsonErr)
	}

	var parsed ErrorList
	if unmarshalErr := json.Unmarshal([]byte(jsonStr), &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error list JSON: %v", unmarshalErr)
	}

	if len(parsed) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(parsed))
	}
}

func TestErrorFormatting(t *testing.T) {
	loc := ast.SourceLocation{Line: 3, Column: 11}
	err := NewUnknownAttributeKey(loc, "add", "skp", []string{"skip", "ignore"}, []string{"skip"}).
		WithFile("src/point.rs").
		WithSubject("Add", "Point").
		WithMember("field `y`").
		WithContext("    #[add(skp)]", []string{
			"struct Point {",
			"    #[add(skp)]",
			"    y: i32,",
		})

	formatted := err.Format()

	checks := []string{
		"error[ATR001]: ",
		"  --> src/point.rs:3:11\n",
		" 2 | struct Point {\n",
		" 3 |     #[add(skp)]\n",
		"   |           ^\n",
		" 4 |     y: i32,\n",
		"   = derive: #[derive(Add)] on `Point`, field `y`\n",
		"   = expected: one of skip, ignore\n",
		"   = found: skp\n",
		"   = help: Did you mean `skip`?",
		"   = try: #[add(skip)]",
		"   = see: https://derivekit.conduit-lang.org/errors/ATR001",
	}
	for _, want := range checks {
		if !strings.Contains(formatted, want) {
			t.Errorf("Formatted error should contain %q:\n%s", want, formatted)
		}
	}
}

func TestErrorFormattingVariantSubject(t *testing.T) {
	err := NewMissingFormat(ast.SourceLocation{Line: 1, Column: 14}, "LowerHex", "Flag::On", "unit variant").
		WithSubject("LowerHex", "Flag::On")

	formatted := err.Format()

	if !strings.Contains(formatted, "  --> <source>:1:14\n") {
		t.Errorf("Expected a placeholder file name:\n%s", formatted)
	}
	if !strings.Contains(formatted, "= derive: #[derive(LowerHex)] on `Flag`, variant `On`\n") {
		t.Errorf("Expected the variant to be named:\n%s", formatted)
	}
}

func TestErrorFormattingSnippetOnFirstLine(t *testing.T) {
	err := NewUnitStruct(ast.SourceLocation{Line: 1, Column: 8}, "Add", "Marker").
		WithContext("struct Marker;", []string{"struct Marker;", ""})

	formatted := err.Format()

	if !strings.Contains(formatted, " 1 | struct Marker;\n   |        ^\n") {
		t.Errorf("Expected the caret under column 8 of line 1:\n%s", formatted)
	}
}

func TestFormatCompact(t *testing.T) {
	err := NewUnitStruct(ast.SourceLocation{Line: 7, Column: 1}, "Add", "Marker").WithFile("lib.rs")
	expected := "lib.rs:7:1: error: `Add` cannot be derived for unit structs [STR002]"
	if got := FormatCompact(err); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestErrorListFormatting(t *testing.T) {
	errors := ErrorList{
		NewConflictingKeys(ast.SourceLocation{Line: 5, Column: 10}, "deref", "ignore", "forward").
			WithSubject("Deref", "Wrapper"),
		NewAllFieldsSkipped(ast.SourceLocation{Line: 12, Column: 3}, "Add", "Pair"),
		NewDuplicateLiteral(ast.SourceLocation{Line: 20, Column: 5}, "E", "foo", "Foo", "Foo2"),
	}

	formatted := errors.Error()

	if !strings.HasPrefix(formatted, "derive expansion failed: 2 errors, 1 warning in #[derive(Add, Deref, FromStr)]\n") {
		t.Errorf("Unexpected summary line:\n%s", formatted)
	}
	for _, want := range []string{"error[ATR002]", "error[STR003]", "warning["} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Formatted error list should contain %q:\n%s", want, formatted)
		}
	}
}

func TestErrorListErrorCount(t *testing.T) {
	errors := ErrorList{
		NewUnitStruct(ast.SourceLocation{Line: 1, Column: 1}, "Add", "A"),
		NewDuplicateLiteral(ast.SourceLocation{Line: 2, Column: 1}, "E", "foo", "Foo", "Foo2"),
	}

	errCount, warnCount, infoCount := errors.ErrorCount()

	if errCount != 1 {
		t.Errorf("Expected 1 error, got %d", errCount)
	}
	if warnCount != 1 {
		t.Errorf("Expected 1 warning, got %d", warnCount)
	}
	if infoCount != 0 {
		t.Errorf("Expected 0 info, got %d", infoCount)
	}
}

func TestErrorListHasErrors(t *testing.T) {
	errorsWithError := ErrorList{
		NewUnionNotSupported(ast.SourceLocation{Line: 1, Column: 1}, "Deref", "U"),
	}

	warningsOnly := ErrorList{
		NewDuplicateLiteral(ast.SourceLocation{Line: 2, Column: 1}, "E", "foo", "Foo", "Foo2"),
	}

	if !errorsWithError.HasErrors() {
		t.Error("Expected HasErrors() to return true when list contains errors")
	}
	if warningsOnly.HasErrors() {
		t.Error("Expected HasErrors() to return false when list contains only warnings")
	}
	if !warningsOnly.HasWarnings() {
		t.Error("Expected HasWarnings() to return true")
	}
}

func TestErrorListWithFile(t *testing.T) {
	errors := ErrorList{
		NewUnitStruct(ast.SourceLocation{}, "Add", "A"),
		NewUnitStruct(ast.SourceLocation{}, "Sub", "A").WithFile("other.rs"),
	}
	errors.WithFile("lib.rs")

	if errors[0].File != "lib.rs" {
		t.Errorf("Expected lib.rs, got %s", errors[0].File)
	}
	if errors[1].File != "other.rs" {
		t.Errorf("Expected existing file to be kept, got %s", errors[1].File)
	}
}

func TestErrorCategories(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	tests := []struct {
		name     string
		err      *CompilerError
		category ErrorCategory
	}{
		{"Syntax error", NewUnexpectedToken(loc, "}", ""), CategorySyntax},
		{"Attribute error", NewWrongLevel(loc, "add", "skip", "struct", []string{"field"}), CategoryAttribute},
		{"Structural error", NewWrongShape(loc, "FromStr", "E", "variants carry data"), CategoryStructural},
		{"Codegen error", NewCodeGenFailed(loc, "boom"), CategoryCodeGen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, tt.err.Category)
			}
		})
	}
}

func TestSyntaxClassification(t *testing.T) {
	tests := []struct {
		message string
		code    ErrorCode
	}{
		{"Unterminated string starting at 1:5", ErrUnterminatedString},
		{"Unterminated character literal", ErrUnterminatedString},
		{"Unterminated block comment", ErrUnterminatedComment},
		{"Invalid number: expected digits after exponent", ErrInvalidNumber},
		{"Invalid escape sequence: \\xZZ", ErrInvalidEscape},
		{"Unexpected character: '$'", ErrUnexpectedCharacter},
		{"Unexpected closing delimiter '}'", ErrMismatchedDelimiter},
		{"Expected ':' after field name", ErrExpectedToken},
		{"something odd", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := NewSyntaxError(ast.SourceLocation{Line: 1, Column: 1}, tt.message, "")
			if err.Code != tt.code {
				t.Errorf("Expected %s, got %s", tt.code, err.Code)
			}
		})
	}

	expected := NewSyntaxError(ast.SourceLocation{}, "Expected ':' after field name", "u8")
	if expected.Expected != "':' after field name" || expected.Actual != "u8" {
		t.Errorf("Unexpected expected/actual: %q/%q", expected.Expected, expected.Actual)
	}
}

func TestAs(t *testing.T) {
	if As(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	ce := NewUnitStruct(ast.SourceLocation{}, "Add", "A")
	if As(ce) != ce {
		t.Error("Expected the same *CompilerError back")
	}

	wrapped := As(goerrors.New("disk full"))
	if wrapped.Code != ErrCodeGenFailed || !strings.Contains(wrapped.Message, "disk full") {
		t.Errorf("Unexpected wrapped error: %+v", wrapped)
	}
}

func TestWithMethods(t *testing.T) {
	loc := ast.SourceLocation{Line: 5, Column: 10}
	err := NewMalformedValue(loc, "from_str", "rename_all", "a case name", "42").
		WithFile("lib.rs").
		WithContext("#[from_str(rename_all = 42)]", []string{"#[from_str(rename_all = 42)]"}).
		WithSuggestion("Use a string such as \"snake_case\"").
		WithExamples(`#[from_str(rename_all = "snake_case")]`, `#[from_str(rename_all = "UPPERCASE")]`)

	if err.File != "lib.rs" {
		t.Errorf("Expected file 'lib.rs', got '%s'", err.File)
	}
	if err.Context == nil {
		t.Fatal("Expected context to be set")
	}
	if err.Expected != "a case name" || err.Actual != "42" {
		t.Errorf("Unexpected expected/actual: %s/%s", err.Expected, err.Actual)
	}
	if len(err.Examples) != 2 {
		t.Errorf("Expected 2 examples, got %d", len(err.Examples))
	}
	if err.AsWarning().Severity != SeverityWarning {
		t.Error("Expected AsWarning to downgrade severity")
	}
}
