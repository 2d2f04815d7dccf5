package tooling

import (
	"strings"
	"sync"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// SymbolIndex maintains a searchable index of all symbols across documents
type SymbolIndex struct {
	// symbols maps symbol name to all definitions
	symbols map[string][]*IndexedSymbol
	mutex   sync.RWMutex
}

// IndexedSymbol represents a symbol with its location
type IndexedSymbol struct {
	URI   string
	Range Range
	*Symbol
}

// NewSymbolIndex creates a new symbol index
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]*IndexedSymbol),
	}
}

// Index adds symbols from a document to the index
func (si *SymbolIndex) Index(uri string, symbols []*Symbol) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)

	for _, sym := range symbols {
		indexed := &IndexedSymbol{
			URI:    uri,
			Range:  sym.Range,
			Symbol: sym,
		}

		si.symbols[sym.Name] = append(si.symbols[sym.Name], indexed)
	}
}

// RemoveDocument removes all symbols from a document
func (si *SymbolIndex) RemoveDocument(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)
}

func (si *SymbolIndex) removeDocumentLocked(uri string) {
	for name, syms := range si.symbols {
		filtered := make([]*IndexedSymbol, 0, len(syms))
		for _, sym := range syms {
			if sym.URI != uri {
				filtered = append(filtered, sym)
			}
		}
		if len(filtered) > 0 {
			si.symbols[name] = filtered
		} else {
			delete(si.symbols, name)
		}
	}
}

// FindDefinition finds the declaration of a type by name
func (si *SymbolIndex) FindDefinition(name string) *IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	for _, sym := range si.symbols[name] {
		if sym.Kind.IsDeclaration() {
			return sym
		}
	}
	return nil
}

// FindReferences finds all symbols with the given name
func (si *SymbolIndex) FindReferences(name string) []Location {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	syms, ok := si.symbols[name]
	if !ok {
		return nil
	}

	locations := make([]Location, len(syms))
	for i, sym := range syms {
		locations[i] = Location{
			URI:   sym.URI,
			Range: sym.Range,
		}
	}

	return locations
}

// SearchSymbols searches for symbols matching a query across all documents
func (si *SymbolIndex) SearchSymbols(query string) []*IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	query = strings.ToLower(query)
	result := make([]*IndexedSymbol, 0)

	for name, syms := range si.symbols {
		// Case-insensitive substring match
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			result = append(result, syms...)
		}
	}

	return result
}

// extractSymbols flattens the declarations of a document into symbols
func extractSymbols(doc *Document) []*Symbol {
	if doc.File == nil {
		return nil
	}

	offsets := lineOffsets(doc.Content)
	symbols := make([]*Symbol, 0)

	for _, decl := range doc.File.Items {
		symbols = append(symbols, declarationSymbols(decl, offsets)...)
	}

	return symbols
}

// declarationSymbols extracts symbols from a single declaration
func declarationSymbols(decl *ast.DeriveInput, offsets []int) []*Symbol {
	if decl == nil {
		return nil
	}

	start := toPosition(decl.Loc)
	end := offsetPosition(offsets, decl.Span.End)
	if end.Line < start.Line || end.Line == start.Line && end.Character < start.Character {
		end = Position{Line: start.Line, Character: start.Character + len(decl.Name)}
	}

	symbols := []*Symbol{{
		Name:   decl.Name,
		Kind:   declarationKind(decl.Kind),
		Range:  Range{Start: start, End: end},
		Type:   decl.SelfType().String(),
		Detail: decl.Kind.String(),
	}}

	for _, req := range decl.Derives {
		symbols = append(symbols, &Symbol{
			Name:          req.Name,
			Kind:          SymbolKindDerive,
			Range:         spanOf(req.Loc, len(req.Path)),
			ContainerName: decl.Name,
			Detail:        "derive",
		})
	}

	symbols = append(symbols, fieldSymbols(decl.Fields, decl.Name)...)

	for _, v := range decl.Variants {
		symbols = append(symbols, &Symbol{
			Name:          v.Ident,
			Kind:          SymbolKindVariant,
			Range:         spanOf(v.Loc, len(v.Ident)),
			ContainerName: decl.Name,
			Detail:        variantDetail(decl.Name, v),
		})
		symbols = append(symbols, fieldSymbols(v.Fields, decl.Name+"::"+v.Ident)...)
	}

	return symbols
}

func fieldSymbols(fields *ast.Fields, container string) []*Symbol {
	if fields == nil {
		return nil
	}

	symbols := make([]*Symbol, 0, len(fields.List))
	for _, f := range fields.List {
		typ := ""
		if f.Type != nil {
			typ = f.Type.String()
		}
		width := len(f.Ident)
		if width == 0 {
			width = len(typ)
		}
		symbols = append(symbols, &Symbol{
			Name:          f.Member(),
			Kind:          SymbolKindField,
			Range:         spanOf(f.Loc, width),
			Type:          typ,
			ContainerName: container,
		})
	}
	return symbols
}

func declarationKind(k ast.DataKind) SymbolKind {
	switch k {
	case ast.DataEnum:
		return SymbolKindEnum
	case ast.DataUnion:
		return SymbolKindUnion
	default:
		return SymbolKindStruct
	}
}

func variantDetail(enum string, v *ast.Variant) string {
	var b strings.Builder
	b.WriteString(enum + "::" + v.Ident)
	if v.Fields != nil {
		switch v.Fields.Style {
		case ast.FieldsUnnamed:
			types := make([]string, 0, len(v.Fields.List))
			for _, f := range v.Fields.List {
				types = append(types, f.Type.String())
			}
			b.WriteString("(" + strings.Join(types, ", ") + ")")
		case ast.FieldsNamed:
			b.WriteString(" { .. }")
		}
	}
	if v.Discriminant != "" {
		b.WriteString(" = " + v.Discriminant)
	}
	return b.String()
}

// findSymbolAtPosition returns the narrowest symbol containing pos
func findSymbolAtPosition(doc *Document, pos Position) *Symbol {
	var best *Symbol
	for _, sym := range doc.Symbols {
		if !positionInRange(pos, sym.Range) {
			continue
		}
		if best == nil || narrower(sym.Range, best.Range) {
			best = sym
		}
	}
	return best
}

func narrower(a, b Range) bool {
	la, lb := a.End.Line-a.Start.Line, b.End.Line-b.Start.Line
	if la != lb {
		return la < lb
	}
	return a.End.Character-a.Start.Character < b.End.Character-b.Start.Character
}

// positionInRange checks if a position is within a range
func positionInRange(pos Position, r Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}

	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}

	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}

	return true
}

func spanOf(loc ast.SourceLocation, width int) Range {
	start := toPosition(loc)
	return Range{Start: start, End: Position{Line: start.Line, Character: start.Character + width}}
}

// lineOffsets returns the byte offset at which every line starts
func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// offsetPosition converts a byte offset to a zero-based position
func offsetPosition(offsets []int, offset int) Position {
	line := 0
	for line+1 < len(offsets) && offsets[line+1] <= offset {
		line++
	}
	return Position{Line: line, Character: offset - offsets[line]}
}

// baseTypeName strips references and generic arguments: `&'a Vec<T>` is `Vec`
func baseTypeName(typ string) string {
	typ = strings.TrimLeft(typ, "&* ")
	if strings.HasPrefix(typ, "'") {
		if i := strings.IndexByte(typ, ' '); i >= 0 {
			typ = typ[i+1:]
		}
	}
	typ = strings.TrimPrefix(typ, "mut ")
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndex(typ, "::"); i >= 0 {
		typ = typ[i+2:]
	}
	return strings.TrimSpace(typ)
}
