// Package tooling provides a programmatic API for IDE integration via LSP.
// It exposes the expansion engine in a thread-safe manner suitable for
// Language Server Protocol implementations.
package tooling

import (
	"fmt"
	"strings"
	"sync"

	"go.lsp.dev/uri"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/cache"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

// API provides thread-safe access to the expansion engine for IDE
// integration. It maintains document state and answers LSP queries from it.
type API struct {
	// Document cache stores parsed files and their expansion results per URI
	documents map[string]*Document
	docsMutex sync.RWMutex

	// Symbol index for fast lookups
	symbolIndex *SymbolIndex

	// asts avoids reparsing documents whose content did not change
	asts *cache.ASTCache

	driver *driver.Driver
	config *Config
}

// Config holds configuration for the tooling API
type Config struct {
	// Driver expands documents; a default driver is used when nil
	Driver *driver.Driver

	// PreviewExpansions includes the generated impls in hover text
	PreviewExpansions bool
}

// Document represents an open source file with its syntax tree and the
// result of expanding it
type Document struct {
	// URI is the document identifier
	URI string

	// Path is the file system path derived from the URI
	Path string

	// Content is the raw source code
	Content string

	// Version tracks document changes (incremented on each update)
	Version int

	// File is the parsed syntax tree
	File *ast.File

	// Result holds the expansion output and diagnostics
	Result *driver.FileResult

	// Symbols is a flattened list of all symbols in the document
	Symbols []*Symbol
}

// Position represents a position in a document (zero-based for LSP compatibility)
type Position struct {
	Line      int // Zero-based line number
	Character int // Zero-based character offset
}

// Range represents a range in a document
type Range struct {
	Start Position
	End   Position
}

// Location represents a source location with URI and range
type Location struct {
	URI   string
	Range Range
}

// Symbol represents a named entity in the source code
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range Range

	// Type is the field type or the declaration's self type
	Type string

	// ContainerName is the declaration a field, variant or derive belongs to
	ContainerName string

	// Detail provides additional information
	Detail string
}

// SymbolKind categorizes symbols for IDE display
type SymbolKind int

const (
	// SymbolKindStruct represents a struct declaration
	SymbolKindStruct SymbolKind = iota
	// SymbolKindEnum represents an enum declaration
	SymbolKindEnum
	// SymbolKindUnion represents a union declaration
	SymbolKindUnion
	// SymbolKindField represents a struct or variant field
	SymbolKindField
	// SymbolKindVariant represents an enum variant
	SymbolKindVariant
	// SymbolKindDerive represents an entry of a #[derive(...)] list
	SymbolKindDerive
)

// IsDeclaration reports whether the symbol is a type declaration
func (k SymbolKind) IsDeclaration() bool {
	return k == SymbolKindStruct || k == SymbolKindEnum || k == SymbolKindUnion
}

// Hover represents hover information for a symbol
type Hover struct {
	// Contents is the hover text (markdown formatted)
	Contents string

	// Range is the range of the symbol
	Range Range
}

// CompletionItem represents a completion suggestion
type CompletionItem struct {
	// Label is the text to display
	Label string

	// Kind categorizes the completion
	Kind CompletionKind

	// Detail provides additional information
	Detail string

	// Documentation provides help text
	Documentation string

	// InsertText is the text to insert (if different from label)
	InsertText string

	// SortText controls ordering (if different from label)
	SortText string
}

// CompletionKind categorizes completion items
type CompletionKind int

const (
	// CompletionKindDerive is a derive name inside #[derive(...)]
	CompletionKindDerive CompletionKind = iota
	// CompletionKindAttribute is a helper attribute name after #[
	CompletionKindAttribute
	// CompletionKindKey is a key inside a helper attribute
	CompletionKindKey
	// CompletionKindValue is a literal value such as a rename_all case
	CompletionKindValue
	// CompletionKindSnippet represents a code snippet completion
	CompletionKindSnippet
)

// Diagnostic represents an expansion error or warning
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Message  string
	Source   string
}

// DiagnosticSeverity indicates the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = iota
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning
	// DiagnosticSeverityInfo represents an informational diagnostic
	DiagnosticSeverityInfo
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint
)

// diagnosticSource names derivekit in editor problem lists
const diagnosticSource = "derivekit"

// NewAPI creates a new tooling API instance
func NewAPI() *API {
	return NewAPIWithConfig(&Config{PreviewExpansions: true})
}

// NewAPIWithConfig creates a new tooling API with custom configuration
func NewAPIWithConfig(config *Config) *API {
	d := config.Driver
	if d == nil {
		d = driver.New(driver.Options{}, nil, nil)
	}
	return &API{
		documents:   make(map[string]*Document),
		symbolIndex: NewSymbolIndex(),
		asts:        cache.NewASTCache(),
		driver:      d,
		config:      config,
	}
}

// Registry returns the derive catalogue used for completions and hovers
func (a *API) Registry() *codegen.Registry {
	return a.driver.Generator().Registry()
}

// URIToPath converts a file:// URI to a path. Other identifiers are
// returned unchanged.
func URIToPath(u string) string {
	if strings.HasPrefix(u, uri.FileScheme+"://") {
		return uri.URI(u).Filename()
	}
	return u
}

// ParseFile parses and expands a document and caches the result
func (a *API) ParseFile(uri, content string) (*Document, error) {
	doc, err := a.parseFileInternal(uri, content)
	if err != nil {
		return nil, err
	}

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()

	a.symbolIndex.Index(uri, doc.Symbols)

	return doc, nil
}

// UpdateDocument updates an existing document with new content
func (a *API) UpdateDocument(uri, content string, version int) (*Document, error) {
	a.docsMutex.Lock()
	oldDoc, exists := a.documents[uri]
	if exists && oldDoc.Content == content {
		// Content unchanged, update version and return cached document
		oldDoc.Version = version
		a.docsMutex.Unlock()
		return oldDoc, nil
	}
	a.docsMutex.Unlock()

	doc, err := a.parseFileInternal(uri, content)
	if err != nil {
		return nil, err
	}
	doc.Version = version

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()

	a.symbolIndex.Index(uri, doc.Symbols)

	return doc, nil
}

// parseFileInternal performs parsing and expansion without acquiring locks
func (a *API) parseFileInternal(uri, content string) (*Document, error) {
	if uri == "" {
		return nil, fmt.Errorf("document URI is empty")
	}

	path := URIToPath(uri)
	parsed, _ := a.asts.Parse(path, content)

	doc := &Document{
		URI:     uri,
		Path:    path,
		Content: content,
		Version: 1,
		File:    parsed.File,
		Result:  a.driver.ExpandParsed(path, content, parsed.File, parsed.Errors),
	}
	doc.Symbols = extractSymbols(doc)

	return doc, nil
}

// GetDocument retrieves a cached document
func (a *API) GetDocument(uri string) (*Document, bool) {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	doc, exists := a.documents[uri]
	return doc, exists
}

// CloseDocument removes a document from the cache
func (a *API) CloseDocument(uri string) {
	a.docsMutex.Lock()
	delete(a.documents, uri)
	a.docsMutex.Unlock()

	a.asts.Invalidate(URIToPath(uri))
	a.symbolIndex.RemoveDocument(uri)
}

// GetDiagnostics returns diagnostics for a document
func (a *API) GetDiagnostics(uri string) []Diagnostic {
	doc, exists := a.GetDocument(uri)
	if !exists || doc.Result == nil {
		return nil
	}

	lines := strings.Split(doc.Content, "\n")
	diagnostics := make([]Diagnostic, 0, len(doc.Result.Errors))
	for _, err := range doc.Result.Errors {
		message := err.Message
		if err.Suggestion != "" {
			message += "\n" + err.Suggestion
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range:    errorRange(err.Location, lines),
			Severity: diagnosticSeverity(err.Severity),
			Code:     string(err.Code),
			Message:  message,
			Source:   diagnosticSource,
		})
	}

	return diagnostics
}

// GetExpansion returns the generated file for a document, or "" when
// nothing expanded
func (a *API) GetExpansion(uri string) (string, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return "", fmt.Errorf("document not found: %s", uri)
	}
	return doc.Result.Output, nil
}

// GetHover returns hover information for a position in a document.
// Returns (nil, nil) if no symbol is found at the position.
func (a *API) GetHover(uri string, pos Position) (*Hover, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil hover is valid when no symbol at position
	}

	return a.buildHover(doc, symbol), nil
}

// GetCompletions returns completion items for a position in a document
func (a *API) GetCompletions(uri string, pos Position) ([]CompletionItem, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	context := getCompletionContext(doc, pos)

	return a.buildCompletions(context), nil
}

// GetDefinition returns the definition location of a symbol at a position.
// Returns (nil, nil) if no symbol is found at the position.
func (a *API) GetDefinition(uri string, pos Position) (*Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil location is valid when no symbol at position
	}

	// A field whose type names a known declaration jumps to it
	if symbol.Kind == SymbolKindField && symbol.Type != "" {
		if def := a.symbolIndex.FindDefinition(baseTypeName(symbol.Type)); def != nil {
			return &Location{
				URI:   def.URI,
				Range: def.Range,
			}, nil
		}
	}

	return &Location{
		URI:   uri,
		Range: symbol.Range,
	}, nil
}

// GetReferences returns all symbols sharing the name of the symbol at pos
func (a *API) GetReferences(uri string, pos Position) ([]Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return []Location{}, nil
	}

	refs := a.symbolIndex.FindReferences(symbol.Name)
	if refs == nil {
		return []Location{}, nil
	}

	return refs, nil
}

// GetDocumentSymbols returns all symbols in a document
func (a *API) GetDocumentSymbols(uri string) ([]*Symbol, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	return doc.Symbols, nil
}

// GetWorkspaceSymbols searches declarations and derives across every open
// document
func (a *API) GetWorkspaceSymbols(query string) []*IndexedSymbol {
	return a.symbolIndex.SearchSymbols(query)
}

// Helper functions

func diagnosticSeverity(s errors.ErrorSeverity) DiagnosticSeverity {
	switch s {
	case errors.SeverityError:
		return DiagnosticSeverityError
	case errors.SeverityWarning:
		return DiagnosticSeverityWarning
	case errors.SeverityInfo:
		return DiagnosticSeverityInfo
	default:
		return DiagnosticSeverityError
	}
}

// errorRange spans the identifier starting at loc, or one character when
// there is none
func errorRange(loc ast.SourceLocation, lines []string) Range {
	start := toPosition(loc)
	width := 1
	if start.Line < len(lines) {
		width = identWidth(lines[start.Line], start.Character)
	}
	return Range{
		Start: start,
		End:   Position{Line: start.Line, Character: start.Character + width},
	}
}

func identWidth(line string, col int) int {
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

// toPosition converts a one-based source location to a zero-based position
func toPosition(loc ast.SourceLocation) Position {
	pos := Position{Line: loc.Line - 1, Character: loc.Column - 1}
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	return pos
}
