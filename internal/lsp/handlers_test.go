package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/derivekit/internal/compiler/driver"
	"github.com/conduit-lang/derivekit/internal/tooling"
)

const docURI = "file:///tmp/shapes.rs"

const shapesSource = `#[derive(Add)]
struct Point2D { x: i32, y: i32 }

#[derive(Deref)]
struct Broken { a: u8, b: u8 }
`

func openDocument(t *testing.T, s *Server, text string) {
	t.Helper()

	_, err := call(t, s, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        docURI,
			LanguageID: "rust",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

func textDocumentPosition(line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	s, client := newTestServer()
	openDocument(t, s, shapesSource)

	require.Len(t, client.diagnostics, 1)
	published := client.diagnostics[0]
	assert.Equal(t, protocol.DocumentURI(docURI), published.URI)
	require.Len(t, published.Diagnostics, 1)

	diag := published.Diagnostics[0]
	assert.Equal(t, "STR005", diag.Code)
	assert.Equal(t, protocol.DiagnosticSeverityError, diag.Severity)
	assert.Equal(t, "derivekit", diag.Source)
	assert.Equal(t, uint32(4), diag.Range.Start.Line)
}

func TestDidChangeRepublishes(t *testing.T) {
	s, client := newTestServer()
	openDocument(t, s, shapesSource)

	_, err := call(t, s, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "#[derive(Add)]\nstruct P(i32);\n"}},
	})
	require.NoError(t, err)

	require.Len(t, client.diagnostics, 2)
	assert.Empty(t, client.diagnostics[1].Diagnostics)
}

func TestDidClose(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	_, err := call(t, s, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	require.NoError(t, err)

	_, exists := s.api.GetDocument(docURI)
	assert.False(t, exists)
}

func TestHandleHover(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodTextDocumentHover, &protocol.HoverParams{
		TextDocumentPositionParams: textDocumentPosition(0, 10),
	})
	require.NoError(t, err)

	hover, ok := result.(protocol.Hover)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "impl ::core::ops::Add for Point2D")
	require.NotNil(t, hover.Range)
	assert.Equal(t, uint32(9), hover.Range.Start.Character)
}

func TestHandleHoverNoSymbol(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodTextDocumentHover, &protocol.HoverParams{
		TextDocumentPositionParams: textDocumentPosition(2, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHandleHoverUnknownDocument(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodTextDocumentHover, &protocol.HoverParams{
		TextDocumentPositionParams: textDocumentPosition(0, 0),
	})
	assert.Error(t, err)
}

func TestHandleCompletion(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, "#[from_str(\nenum E { A }\n")

	result, err := call(t, s, protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
		TextDocumentPositionParams: textDocumentPosition(0, 11),
	})
	require.NoError(t, err)

	list, ok := result.(protocol.CompletionList)
	require.True(t, ok, "unexpected result type %T", result)

	var renameAll *protocol.CompletionItem
	for i := range list.Items {
		if list.Items[i].Label == "rename_all" {
			renameAll = &list.Items[i]
		}
	}
	require.NotNil(t, renameAll, "rename_all should be offered in #[from_str(...)]")
	assert.Equal(t, protocol.InsertTextFormatSnippet, renameAll.InsertTextFormat)
	assert.Equal(t, protocol.CompletionItemKindProperty, renameAll.Kind)
}

func TestHandleDefinition(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, "struct Inner;\n\nstruct Outer { inner: Inner }\n")

	result, err := call(t, s, protocol.MethodTextDocumentDefinition, &protocol.DefinitionParams{
		TextDocumentPositionParams: textDocumentPosition(2, 16),
	})
	require.NoError(t, err)

	loc, ok := result.(protocol.Location)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, uint32(0), loc.Range.Start.Line)
}

func TestHandleReferences(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodTextDocumentReferences, &protocol.ReferenceParams{
		TextDocumentPositionParams: textDocumentPosition(0, 10),
	})
	require.NoError(t, err)

	locations, ok := result.([]protocol.Location)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Len(t, locations, 1)
}

func TestHandleDocumentSymbol(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodTextDocumentDocumentSymbol, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok, "unexpected result type %T", result)

	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, sym.Name)
	}
	assert.Contains(t, names, "Point2D")
	assert.Contains(t, names, "Broken")
	assert.Contains(t, names, "Deref")
}

func TestHandleWorkspaceSymbol(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodWorkspaceSymbol, &protocol.WorkspaceSymbolParams{Query: "point"})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.SymbolInformation)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Point2D", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindStruct, symbols[0].Kind)
}

func TestExecuteShowExpansion(t *testing.T) {
	s, _ := newTestServer()
	openDocument(t, s, shapesSource)

	result, err := call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   CommandShowExpansion,
		Arguments: []interface{}{docURI},
	})
	require.NoError(t, err)

	output, ok := result.(string)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Contains(t, output, "impl ::core::ops::Add for Point2D")
	assert.NotContains(t, output, "Broken")
}

func TestExecuteShowExpansionBadArguments(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command: CommandShowExpansion,
	})
	assert.Error(t, err)

	_, err = call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   CommandShowExpansion,
		Arguments: []interface{}{"file:///tmp/unopened.rs"},
	})
	assert.Error(t, err)
}

func TestExecuteExpandWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "point.rs"), []byte("#[derive(Add)]\nstruct P(i32);\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target", "build.rs"), []byte("#[derive(Add)]\nstruct Q(i32);\n"), 0644))

	s, client := newTestServer()
	s.workspaceRoot = dir

	result, err := call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command: CommandExpandWorkspace,
	})
	require.NoError(t, err)

	metrics, ok := result.(driver.Metrics)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, 1, metrics.TotalFiles)
	assert.Equal(t, 1, metrics.FilesWritten)
	assert.FileExists(t, filepath.Join(dir, "point.derive.rs"))
	assert.NoFileExists(t, filepath.Join(dir, "target", "build.derive.rs"))

	require.Len(t, client.tokens, 1)
	require.Len(t, client.progress, 2)
	assert.Equal(t, client.tokens[0], client.progress[0].Token)
	begin, ok := client.progress[0].Value.(*protocol.WorkDoneProgressBegin)
	require.True(t, ok)
	assert.Equal(t, "Expanding derives", begin.Title)
	end, ok := client.progress[1].Value.(*protocol.WorkDoneProgressEnd)
	require.True(t, ok)
	assert.Equal(t, "1 written, 0 failed", end.Message)
}

func TestExecuteExpandWorkspaceWithoutRoot(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command: CommandExpandWorkspace,
	})
	assert.Error(t, err)
}

func TestExecuteUnknownCommand(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{Command: "derivekit.nope"})
	assert.Error(t, err)
}

func TestConvertCompletionKind(t *testing.T) {
	tests := []struct {
		name     string
		input    tooling.CompletionKind
		expected protocol.CompletionItemKind
	}{
		{"Derive", tooling.CompletionKindDerive, protocol.CompletionItemKindInterface},
		{"Attribute", tooling.CompletionKindAttribute, protocol.CompletionItemKindKeyword},
		{"Key", tooling.CompletionKindKey, protocol.CompletionItemKindProperty},
		{"Value", tooling.CompletionKindValue, protocol.CompletionItemKindValue},
		{"Snippet", tooling.CompletionKindSnippet, protocol.CompletionItemKindSnippet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertCompletionKind(tt.input))
		})
	}
}

func TestConvertSymbolKind(t *testing.T) {
	tests := []struct {
		name     string
		input    tooling.SymbolKind
		expected protocol.SymbolKind
	}{
		{"Struct", tooling.SymbolKindStruct, protocol.SymbolKindStruct},
		{"Enum", tooling.SymbolKindEnum, protocol.SymbolKindEnum},
		{"Union", tooling.SymbolKindUnion, protocol.SymbolKindStruct},
		{"Field", tooling.SymbolKindField, protocol.SymbolKindField},
		{"Variant", tooling.SymbolKindVariant, protocol.SymbolKindEnumMember},
		{"Derive", tooling.SymbolKindDerive, protocol.SymbolKindInterface},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertSymbolKind(tt.input))
		})
	}
}
