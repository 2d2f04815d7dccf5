package attr

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case is a rename_all target
type Case string

// Supported rename_all values
const (
	CaseNone           Case = ""
	CaseLower          Case = "lowercase"
	CaseUpper          Case = "UPPERCASE"
	CasePascal         Case = "PascalCase"
	CaseCamel          Case = "camelCase"
	CaseSnake          Case = "snake_case"
	CaseScreamingSnake Case = "SCREAMING_SNAKE_CASE"
	CaseKebab          Case = "kebab-case"
	CaseScreamingKebab Case = "SCREAMING-KEBAB-CASE"
)

var allCases = []Case{
	CaseLower, CaseUpper, CasePascal, CaseCamel,
	CaseSnake, CaseScreamingSnake, CaseKebab, CaseScreamingKebab,
}

// Casers carry state and must not be shared between goroutines, so each
// conversion builds its own.
func lower() cases.Caser { return cases.Lower(language.Und) }
func upper() cases.Caser { return cases.Upper(language.Und) }
func title() cases.Caser { return cases.Title(language.Und) }

// ParseCase validates a rename_all value
func ParseCase(s string) (Case, bool) {
	for _, c := range allCases {
		if string(c) == s {
			return c, true
		}
	}
	return CaseNone, false
}

// CaseNames returns the accepted rename_all values
func CaseNames() []string {
	names := make([]string, len(allCases))
	for i, c := range allCases {
		names[i] = string(c)
	}
	return names
}

// Apply renders ident in the case. CaseNone returns ident unchanged.
func (c Case) Apply(ident string) string {
	words := Words(ident)
	switch c {
	case CaseLower:
		return lower().String(strings.Join(words, ""))
	case CaseUpper:
		return upper().String(strings.Join(words, ""))
	case CasePascal:
		return joinTitled(words, true)
	case CaseCamel:
		return joinTitled(words, false)
	case CaseSnake:
		return lower().String(strings.Join(words, "_"))
	case CaseScreamingSnake:
		return upper().String(strings.Join(words, "_"))
	case CaseKebab:
		return lower().String(strings.Join(words, "-"))
	case CaseScreamingKebab:
		return upper().String(strings.Join(words, "-"))
	default:
		return ident
	}
}

// SnakeCase converts a variant name such as `HttpError` into `http_error`,
// the form used in accessor names
func SnakeCase(ident string) string {
	return CaseSnake.Apply(ident)
}

// Lower lower-cases s with Unicode rules
func Lower(s string) string {
	return lower().String(s)
}

func joinTitled(words []string, firstUpper bool) string {
	var sb strings.Builder
	for i, w := range words {
		if i == 0 && !firstUpper {
			sb.WriteString(lower().String(w))
			continue
		}
		sb.WriteString(title().String(w))
	}
	return sb.String()
}

// Words splits an identifier into words at underscores, hyphens and case
// boundaries. An upper-case run followed by a lower-case letter ends one
// letter early, so `HTTPServer` splits into `HTTP` and `Server`.
func Words(ident string) []string {
	ident = strings.TrimPrefix(ident, "r#")
	runes := []rune(ident)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}
