package strings

import (
	"reflect"
	"testing"
)

var deriveNames = []string{"Add", "AsRef", "Deref", "DerefMut", "Display", "From", "FromStr", "Into", "IsVariant"}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Deref", "Deref", 0},
		{"Dref", "Deref", 1},
		{"from_str", "fromstr", 1},
		{"é", "e", 1},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   *FuzzyMatchOptions
		want   []string
	}{
		{"typo", "Dref", nil, []string{"Deref", "AsRef", "From"}},
		{"case insensitive", "fromstr", nil, []string{"FromStr", "From"}},
		{"exact", "Into", nil, []string{"Into"}},
		{"nothing close", "Serialize", nil, []string{}},
		{"case sensitive", "deref", &FuzzyMatchOptions{MaxDistance: 1, CaseSensitive: true}, []string{"Deref"}},
		{"limit", "Add", &FuzzyMatchOptions{MaxDistance: 4, MaxSuggestions: 1}, []string{"Add"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSimilar(tt.target, deriveNames, tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindSimilar(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestFindSimilarKeepsInputOrderOnTies(t *testing.T) {
	got := FindSimilar("ab", []string{"xb", "ax", "ab"}, &FuzzyMatchOptions{MaxDistance: 1})
	want := []string{"ab", "xb", "ax"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindSimilar() = %v, want %v", got, want)
	}
}

func TestFindSimilarDoesNotMutateOptions(t *testing.T) {
	opts := &FuzzyMatchOptions{}
	FindSimilar("Dref", deriveNames, opts)
	if opts.MaxDistance != 0 || opts.MaxSuggestions != 0 {
		t.Errorf("options were modified: %+v", opts)
	}
}

func TestFindBestMatch(t *testing.T) {
	if got := FindBestMatch("snake_cse", []string{"lowercase", "snake_case", "kebab-case"}, nil); got != "snake_case" {
		t.Errorf("FindBestMatch() = %q, want snake_case", got)
	}
	if got := FindBestMatch("zzzzzzzz", deriveNames, nil); got != "" {
		t.Errorf("FindBestMatch() = %q, want empty", got)
	}
}

func TestHasCloseMatch(t *testing.T) {
	if !HasCloseMatch("Deeref", deriveNames, nil) {
		t.Error("expected a close match for Deeref")
	}
	if HasCloseMatch("Hash", deriveNames, &FuzzyMatchOptions{MaxDistance: 1}) {
		t.Error("did not expect a match for Hash")
	}
}

func TestFindSimilarEmpty(t *testing.T) {
	if got := FindSimilar("Add", nil, nil); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
	if got := FindSimilar("", []string{"Add", "AsRef"}, nil); !reflect.DeepEqual(got, []string{"Add"}) {
		t.Errorf("empty target should match short candidates only, got %v", got)
	}
}
