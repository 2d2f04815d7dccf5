package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized CLI error message with suggestions and
// help commands
//
// Example output:
//
//	❌ UNKNOWN DERIVE: Cannot find derive 'Dref'.
//
//	   Did you mean: Deref, DerefMut?
//
//	   → See all derives: derivekit list
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelStyle(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := newColor(opts.NoColor, color.FgYellow)
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

func levelStyle(level ErrorLevel) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return newColor(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// UnknownDeriveError reports a derive name that is not in the catalogue
func UnknownDeriveError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN DERIVE",
		Problem:     fmt.Sprintf("Cannot find derive '%s'.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all derives: derivekit list",
		},
		NoColor: noColor,
	})
}

// ExpansionFailedError summarises a run in which some files failed
func ExpansionFailedError(failed, total int, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "EXPANSION FAILED",
		Problem:     fmt.Sprintf("%d of %d file(s) had errors.", failed, total),
		Consequence: "Declarations that failed were left out of the generated files.",
		HelpCommands: []string{
			"Show diagnostics only: derivekit check",
			"Get help: derivekit expand --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat derivekit.yaml",
			"Recreate it: derivekit init",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}

// DiagnosticFormat selects how diagnostics are printed
type DiagnosticFormat string

const (
	// FormatPretty prints rustc-style annotated snippets
	FormatPretty DiagnosticFormat = "pretty"
	// FormatCompact prints one `file:line:col: severity: message [CODE]` line each
	FormatCompact DiagnosticFormat = "compact"
	// FormatJSON prints the diagnostics as a JSON array
	FormatJSON DiagnosticFormat = "json"
)

// ParseDiagnosticFormat validates a --format value
func ParseDiagnosticFormat(s string) (DiagnosticFormat, error) {
	switch f := DiagnosticFormat(strings.ToLower(s)); f {
	case FormatPretty, FormatCompact, FormatJSON:
		return f, nil
	case "":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("unknown format %q (want pretty, compact or json)", s)
	}
}

// FormatDiagnostic renders one diagnostic with a source snippet:
//
//	error[STR005]: `Deref` requires exactly one field, but `Foo` has 2 enabled fields
//	  --> src/foo.rs:4:1
//	  |
//	4 | struct Foo { a: u8, b: u8 }
//	  | ^^^^^^
//	  = help: Mark the other fields with #[deref(ignore)] ...
func FormatDiagnostic(e *errors.CompilerError, noColor bool) string {
	var b strings.Builder

	severity := severityColor(e.Severity, noColor)
	bold := newColor(noColor, color.Bold)
	blue := newColor(noColor, color.FgBlue, color.Bold)

	severity.Fprintf(&b, "%s[%s]", e.Severity, e.Code)
	bold.Fprintf(&b, ": %s\n", e.Message)

	file := e.File
	if file == "" {
		file = "<source>"
	}
	gutter := strings.Repeat(" ", len(strconv.Itoa(e.Location.Line)))
	blue.Fprintf(&b, "%s --> ", gutter)
	fmt.Fprintf(&b, "%s:%d:%d\n", file, e.Location.Line, e.Location.Column)

	if e.Context != nil && e.Context.Current != "" {
		blue.Fprintf(&b, "%s |\n", gutter)
		blue.Fprintf(&b, "%d | ", e.Location.Line)
		fmt.Fprintf(&b, "%s\n", e.Context.Current)
		blue.Fprintf(&b, "%s | ", gutter)
		col := e.Location.Column - 1
		if col < 0 {
			col = 0
		}
		severity.Fprintf(&b, "%s%s\n", strings.Repeat(" ", col), strings.Repeat("^", markerWidth(e.Context.Current, col)))
	}

	note := func(label, text string) {
		if text == "" {
			return
		}
		blue.Fprintf(&b, "%s = ", gutter)
		bold.Fprintf(&b, "%s:", label)
		fmt.Fprintf(&b, " %s\n", text)
	}
	if e.Trait != "" && e.Subject != "" {
		note("note", fmt.Sprintf("while deriving `%s` for `%s`", e.Trait, e.Subject))
	}
	note("expected", e.Expected)
	note("found", e.Actual)
	note("help", e.Suggestion)
	for _, ex := range e.Examples {
		note("example", ex)
	}

	return b.String()
}

// markerWidth is the length of the identifier starting at col, at least 1
func markerWidth(line string, col int) int {
	n := 0
	for i := col; i < len(line); i++ {
		c := line[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			n++
			continue
		}
		break
	}
	if n == 0 {
		return 1
	}
	return n
}

func severityColor(s errors.ErrorSeverity, noColor bool) *color.Color {
	switch s {
	case errors.SeverityWarning:
		return newColor(noColor, color.FgYellow, color.Bold)
	case errors.SeverityInfo:
		return newColor(noColor, color.FgCyan, color.Bold)
	default:
		return newColor(noColor, color.FgRed, color.Bold)
	}
}

// WriteDiagnostics writes every diagnostic in the requested format
func WriteDiagnostics(w io.Writer, list errors.ErrorList, format DiagnosticFormat, noColor bool) error {
	switch format {
	case FormatJSON:
		if list == nil {
			list = errors.ErrorList{}
		}
		out, err := list.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	case FormatCompact:
		for _, e := range list {
			if _, err := fmt.Fprintln(w, errors.FormatCompact(e)); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, e := range list {
			if _, err := fmt.Fprintln(w, FormatDiagnostic(e, noColor)); err != nil {
				return err
			}
		}
		return nil
	}
}

// DiagnosticSummary returns e.g. "2 errors, 1 warning"
func DiagnosticSummary(list errors.ErrorList) string {
	errs, warnings, _ := list.ErrorCount()
	return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warnings, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
