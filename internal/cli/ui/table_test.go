package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Derive", "Family", "Attribute"}, &TableOptions{NoColor: true})
	table.AddRow("Add", "add-like", "#[add(...)]")
	table.AddRow("IsVariant", "variant accessor", "#[is_variant(...)]")
	table.AddRow("Display", "formatting")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "Derive     Family            Attribute", lines[0])
	assert.Equal(t, "─────────  ────────────────  ──────────────────", lines[1])
	assert.Equal(t, "Add        add-like          #[add(...)]", lines[2])
	assert.Equal(t, "IsVariant  variant accessor  #[is_variant(...)]", lines[3])
	assert.Equal(t, "Display    formatting", lines[4], "missing cells are not padded")
}

func TestTableEmptyHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, nil, nil)
	table.AddRow("ignored")
	table.Render()
	assert.Empty(t, buf.String())
}

func TestTableDropsExtraCells(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A"}, &TableOptions{NoColor: true})
	table.AddRow("x", "y")
	table.Render()
	assert.NotContains(t, buf.String(), "y")
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Files", "3")
	kv.AddRow("Cache hits", "1")
	kv.Render()

	assert.Equal(t, "Files:      3\nCache hits: 1\n", buf.String())
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Point2D", true)
	assert.Equal(t, "Point2D\n───────\n", buf.String())
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 2))
	assert.Equal(t, "é  ", padRight("é", 3))
}
