package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

func fieldCountError() *errors.CompilerError {
	return errors.NewFieldCount(ast.SourceLocation{Line: 4, Column: 1}, "Deref", "Foo", 2).
		WithFile("src/foo.rs").
		WithContext("struct Foo { a: u8, b: u8 }", []string{"#[derive(Deref)]", "struct Foo { a: u8, b: u8 }", ""})
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "error with context and suggestions",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Context:      "unknown derive",
				Problem:      "Cannot find derive 'Dref'.",
				Suggestions:  []string{"Deref", "DerefMut"},
				HelpCommands: []string{"See all derives: derivekit list"},
				NoColor:      true,
			},
			contains: []string{
				"❌ UNKNOWN DERIVE: Cannot find derive 'Dref'.",
				"Did you mean: Deref, DerefMut?",
				"→ See all derives: derivekit list",
			},
		},
		{
			name: "warning without context",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "cache unavailable",
				NoColor: true,
			},
			contains: []string{"⚠️ cache unavailable"},
			excludes: []string{"Did you mean", "→"},
		},
		{
			name: "consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelInfo,
				Problem:     "dry run",
				Consequence: "nothing was written",
				NoColor:     true,
			},
			contains: []string{"ℹ️ dry run", "   nothing was written"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatError(tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestCannedErrors(t *testing.T) {
	assert.Contains(t, UnknownDeriveError("Dref", []string{"Deref"}, true), "Cannot find derive 'Dref'.")
	assert.Contains(t, ExpansionFailedError(2, 5, true), "2 of 5 file(s) had errors.")
	assert.Contains(t, ConfigError("bad suffix", nil, true), "CONFIGURATION ERROR: bad suffix")
	assert.Contains(t, ConfigError("bad suffix", nil, true), "derivekit init")
	assert.Contains(t, Warning("slow", []string{"x"}, true), "Did you mean: x?")
	assert.Contains(t, Info("hello", true), "hello")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "3 files expanded", true)
	assert.Equal(t, "✓ 3 files expanded\n", buf.String())

	buf.Reset()
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})
	assert.Equal(t, "❌ boom\n", buf.String())
}

func TestParseDiagnosticFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    DiagnosticFormat
		wantErr bool
	}{
		{"", FormatPretty, false},
		{"pretty", FormatPretty, false},
		{"COMPACT", FormatCompact, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDiagnosticFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDiagnostic(t *testing.T) {
	out := FormatDiagnostic(fieldCountError(), true)
	lines := strings.Split(out, "\n")

	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "error[STR005]: `Deref` requires exactly one field, but `Foo` has 2 enabled fields", lines[0])
	assert.Equal(t, "  --> src/foo.rs:4:1", lines[1])
	assert.Equal(t, "  |", lines[2])
	assert.Equal(t, "4 | struct Foo { a: u8, b: u8 }", lines[3])
	assert.Equal(t, "  | ^^^^^^", lines[4])
	assert.Contains(t, out, "= note: while deriving `Deref` for `Foo`")
}

func TestFormatDiagnosticWithoutContext(t *testing.T) {
	e := errors.NewUnknownDerive(ast.SourceLocation{Line: 12, Column: 10}, "Dref").WithSuggestion("did you mean `Deref`?")

	out := FormatDiagnostic(e, true)
	assert.Contains(t, out, "   --> <source>:12:10")
	assert.Contains(t, out, "= help: did you mean `Deref`?")
	assert.NotContains(t, out, "^")
}

func TestFormatDiagnosticWarning(t *testing.T) {
	e := fieldCountError().AsWarning()
	assert.True(t, strings.HasPrefix(FormatDiagnostic(e, true), "warning[STR005]"))
}

func TestMarkerWidth(t *testing.T) {
	assert.Equal(t, 6, markerWidth("struct Foo", 0))
	assert.Equal(t, 3, markerWidth("struct Foo", 7))
	assert.Equal(t, 1, markerWidth("#[derive]", 0))
	assert.Equal(t, 1, markerWidth("", 4))
}

func TestWriteDiagnostics(t *testing.T) {
	list := errors.ErrorList{fieldCountError()}

	t.Run("compact", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDiagnostics(&buf, list, FormatCompact, true))
		assert.Equal(t,
			"src/foo.rs:4:1: error: `Deref` requires exactly one field, but `Foo` has 2 enabled fields [STR005]\n",
			buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDiagnostics(&buf, list, FormatJSON, true))

		var decoded []map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "STR005", decoded[0]["code"])
		assert.Equal(t, "src/foo.rs", decoded[0]["file"])
	})

	t.Run("json empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDiagnostics(&buf, nil, FormatJSON, true))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("pretty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDiagnostics(&buf, list, FormatPretty, true))
		assert.Contains(t, buf.String(), "error[STR005]")
	})
}

func TestDiagnosticSummary(t *testing.T) {
	list := errors.ErrorList{fieldCountError(), fieldCountError(), fieldCountError().AsWarning()}
	assert.Equal(t, "2 errors, 1 warning", DiagnosticSummary(list))
	assert.Equal(t, "0 errors, 0 warnings", DiagnosticSummary(nil))
}
