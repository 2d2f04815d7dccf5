package tooling

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
)

// buildHover creates hover information for a symbol
func (a *API) buildHover(doc *Document, symbol *Symbol) *Hover {
	var content strings.Builder

	content.WriteString("```rust\n")

	switch symbol.Kind {
	case SymbolKindStruct, SymbolKindEnum, SymbolKindUnion:
		content.WriteString(fmt.Sprintf("%s %s", symbol.Detail, symbol.Type))

	case SymbolKindField:
		content.WriteString(fmt.Sprintf("%s: %s", symbol.Name, symbol.Type))

	case SymbolKindVariant:
		content.WriteString(symbol.Detail)

	case SymbolKindDerive:
		content.WriteString(fmt.Sprintf("#[derive(%s)]", symbol.Name))
	}

	content.WriteString("\n```\n\n")

	if symbol.ContainerName != "" {
		content.WriteString(fmt.Sprintf("*In:* `%s`\n\n", symbol.ContainerName))
	}

	switch symbol.Kind {
	case SymbolKindDerive:
		a.writeDeriveHover(&content, doc, symbol)
	case SymbolKindStruct, SymbolKindEnum, SymbolKindUnion:
		writeDeclarationHover(&content, doc, symbol.Name)
	}

	return &Hover{
		Contents: content.String(),
		Range:    symbol.Range,
	}
}

// writeDeriveHover describes a catalogue derive and previews its output
// for the declaration it is attached to
func (a *API) writeDeriveHover(content *strings.Builder, doc *Document, symbol *Symbol) {
	entry, ok := a.Registry().Lookup(symbol.Name)
	if !ok {
		content.WriteString("Not a derivekit derive; left to the compiler.\n")
		return
	}

	content.WriteString("---\n\n")
	content.WriteString(deriveSummary(entry) + "\n\n")
	if keys := entry.Spec.Params.All(); len(keys) > 0 {
		content.WriteString(fmt.Sprintf("*Attribute:* `#[%s(...)]` with %s\n\n",
			entry.Spec.AttrNames[0], quoteAll(keys)))
	}

	if !a.config.PreviewExpansions || doc.Result == nil {
		return
	}
	for _, decl := range doc.Result.Declarations {
		if decl.Name != symbol.ContainerName {
			continue
		}
		for _, exp := range decl.Expansions {
			if exp.Trait == entry.Spec.Name {
				content.WriteString("```rust\n" + exp.Code + "```\n")
			}
		}
		for _, err := range decl.Errors {
			if err.Trait == entry.Spec.Name {
				content.WriteString(fmt.Sprintf("**%s:** %s\n\n", err.Code, err.Message))
			}
		}
	}
}

// writeDeclarationHover lists what was generated for a declaration
func writeDeclarationHover(content *strings.Builder, doc *Document, name string) {
	if doc.Result == nil {
		return
	}
	for _, decl := range doc.Result.Declarations {
		if decl.Name != name {
			continue
		}
		traits := make([]string, 0, len(decl.Expansions))
		for _, exp := range decl.Expansions {
			traits = append(traits, exp.Trait)
		}
		if len(traits) > 0 {
			content.WriteString(fmt.Sprintf("*Derives:* %s\n\n", quoteAll(traits)))
		}
		if decl.Failed() {
			errs, _, _ := decl.Errors.ErrorCount()
			content.WriteString(fmt.Sprintf("*Failed:* %d error(s)\n\n", errs))
		}
	}
}

// deriveSummary is the one-line description shown for a derive
func deriveSummary(entry codegen.Entry) string {
	family := entry.Kind.Family()
	if entry.Spec.Path == "" {
		return fmt.Sprintf("Generates inherent methods on the type (%s).", family)
	}
	return fmt.Sprintf("Implements `%s` (%s).", entry.Spec.Path, family)
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
