package errors

import (
	"fmt"
	"sort"
	"strings"
)

// FormatError renders an error the way rustc reports its own diagnostics,
// so that derive failures read like the compiler errors around them:
//
//	error[STR005]: `Deref` requires exactly one field, but `Foo` has 2 enabled fields
//	  --> src/lib.rs:3:1
//	   |
//	 3 | struct Foo { a: i32, b: i32 }
//	   | ^
//	   = derive: #[derive(Deref)] on `Foo`
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s[%s]: %s\n", e.Severity, e.Code, e.Message)
	fmt.Fprintf(&b, "  --> %s\n", location(e))

	if e.Context != nil && len(e.Context.SourceLines) > 0 {
		writeSnippet(&b, e)
	}

	if target := deriveTarget(e); target != "" {
		fmt.Fprintf(&b, "   = derive: %s\n", target)
	}
	if e.Expected != "" {
		fmt.Fprintf(&b, "   = expected: %s\n", e.Expected)
	}
	if e.Actual != "" {
		fmt.Fprintf(&b, "   = found: %s\n", e.Actual)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "   = help: %s\n", e.Suggestion)
	}
	for _, example := range e.Examples {
		fmt.Fprintf(&b, "   = try: %s\n", example)
	}
	if e.Documentation != "" {
		fmt.Fprintf(&b, "   = see: %s\n", e.Documentation)
	}
	return b.String()
}

// FormatErrorList renders every error under a summary line naming the
// derives that failed
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	b.WriteString(summaryLine(errors))
	b.WriteString("\n")
	for _, err := range errors {
		b.WriteString("\n")
		b.WriteString(err.Format())
	}
	return b.String()
}

// FormatCompact returns a compact one-line error format, the form editors and
// CI annotators parse
func FormatCompact(e *CompilerError) string {
	return fmt.Sprintf("%s: %s: %s [%s]", location(e), e.Severity, e.Message, e.Code)
}

func location(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d", file, e.Location.Line, e.Location.Column)
}

// deriveTarget describes what was being derived where, e.g.
// "#[derive(Add)] on `Point`, field `y`"
func deriveTarget(e *CompilerError) string {
	if e.Trait == "" {
		return ""
	}
	target := fmt.Sprintf("#[derive(%s)]", e.Trait)
	if e.Subject == "" {
		return target
	}
	subject, variant, ok := strings.Cut(e.Subject, "::")
	target += " on `" + subject + "`"
	if ok {
		target += ", variant `" + variant + "`"
	}
	if e.Member != "" {
		target += ", " + e.Member
	}
	return target
}

// writeSnippet prints the source lines with a caret under the error column.
// The snippet starts one line above the error unless the error is on the
// first line.
func writeSnippet(b *strings.Builder, e *CompilerError) {
	first := e.Location.Line - 1
	if first < 1 {
		first = 1
	}
	last := first + len(e.Context.SourceLines) - 1
	width := len(fmt.Sprint(last))
	gutter := strings.Repeat(" ", width)

	fmt.Fprintf(b, " %s |\n", gutter)
	for i, line := range e.Context.SourceLines {
		n := first + i
		fmt.Fprintf(b, " %*d | %s\n", width, n, line)
		if n == e.Location.Line {
			col := e.Location.Column
			if col < 1 {
				col = 1
			}
			fmt.Fprintf(b, " %s | %s^\n", gutter, strings.Repeat(" ", col-1))
		}
	}
}

// summaryLine counts the errors by severity and names the derives they
// belong to, e.g. "2 errors, 1 warning in #[derive(Add, Deref)]"
func summaryLine(errors ErrorList) string {
	errCount, warnCount, infoCount := errors.ErrorCount()
	parts := []string{plural(errCount, "error"), plural(warnCount, "warning")}
	if infoCount > 0 {
		parts = append(parts, plural(infoCount, "note"))
	}
	line := "derive expansion failed: " + strings.Join(parts, ", ")

	seen := make(map[string]bool)
	var traits []string
	for _, err := range errors {
		if err.Trait != "" && !seen[err.Trait] {
			seen[err.Trait] = true
			traits = append(traits, err.Trait)
		}
	}
	if len(traits) > 0 {
		sort.Strings(traits)
		line += " in #[derive(" + strings.Join(traits, ", ") + ")]"
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
