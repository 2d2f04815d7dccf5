package attr

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		ident    string
		expected []string
	}{
		{"Foo", []string{"Foo"}},
		{"FooBar", []string{"Foo", "Bar"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"BaZ", []string{"Ba", "Z"}},
		{"foo_bar", []string{"foo", "bar"}},
		{"V2Beta", []string{"V2", "Beta"}},
		{"r#Type", []string{"Type"}},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			got := Words(tt.ident)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Words(%q) = %v; want %v", tt.ident, got, tt.expected)
			}
		})
	}
}

func TestCaseApply(t *testing.T) {
	tests := []struct {
		c        Case
		ident    string
		expected string
	}{
		{CaseNone, "FooBar", "FooBar"},
		{CaseLower, "FooBar", "foobar"},
		{CaseUpper, "FooBar", "FOOBAR"},
		{CasePascal, "foo_bar", "FooBar"},
		{CaseCamel, "FooBar", "fooBar"},
		{CaseSnake, "FooBar", "foo_bar"},
		{CaseScreamingSnake, "FooBar", "FOO_BAR"},
		{CaseKebab, "FooBar", "foo-bar"},
		{CaseScreamingKebab, "FooBar", "FOO-BAR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.c)+"/"+tt.ident, func(t *testing.T) {
			if got := tt.c.Apply(tt.ident); got != tt.expected {
				t.Errorf("%s.Apply(%q) = %q; want %q", tt.c, tt.ident, got, tt.expected)
			}
		})
	}
}

func TestParseCase(t *testing.T) {
	if c, ok := ParseCase("SCREAMING-KEBAB-CASE"); !ok || c != CaseScreamingKebab {
		t.Errorf("Expected SCREAMING-KEBAB-CASE to parse, got %q %v", c, ok)
	}
	if _, ok := ParseCase("Snake_Case"); ok {
		t.Error("Case names are exact")
	}
	if len(CaseNames()) != 8 {
		t.Errorf("Expected 8 case names, got %d", len(CaseNames()))
	}
}

func TestSnakeCase(t *testing.T) {
	if got := SnakeCase("HttpError"); got != "http_error" {
		t.Errorf("Expected http_error, got %s", got)
	}
	if got := SnakeCase("A"); got != "a" {
		t.Errorf("Expected a, got %s", got)
	}
}
