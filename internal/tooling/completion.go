package tooling

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
)

// CompletionContext describes the context at a completion position
type CompletionContext struct {
	// Kind of completion requested
	Kind CompletionContextKind

	// Attribute is the helper attribute the cursor is in, e.g. "from_str"
	Attribute string

	// Key is the key whose value is being written, e.g. "rename_all"
	Key string

	// Written lists the entries already present in the attribute
	Written []string
}

// CompletionContextKind categorizes the completion context
type CompletionContextKind int

const (
	// CompletionContextUnknown represents an unknown context
	CompletionContextUnknown CompletionContextKind = iota
	// CompletionContextDerive is inside #[derive(...)]
	CompletionContextDerive
	// CompletionContextAttribute is right after #[
	CompletionContextAttribute
	// CompletionContextKey is inside a helper attribute list
	CompletionContextKey
	// CompletionContextValue is after `key = "`
	CompletionContextValue
)

// getCompletionContext determines the completion context at a position by
// looking back for the innermost unterminated `#[`
func getCompletionContext(doc *Document, pos Position) *CompletionContext {
	offsets := lineOffsets(doc.Content)
	if pos.Line >= len(offsets) {
		return &CompletionContext{Kind: CompletionContextUnknown}
	}

	offset := offsets[pos.Line] + pos.Character
	if offset > len(doc.Content) {
		offset = len(doc.Content)
	}
	prefix := doc.Content[:offset]

	open := strings.LastIndex(prefix, "#[")
	if open < 0 || strings.Contains(prefix[open:], "]") {
		return &CompletionContext{Kind: CompletionContextUnknown}
	}
	inner := prefix[open+2:]

	paren := strings.IndexByte(inner, '(')
	if paren < 0 {
		return &CompletionContext{Kind: CompletionContextAttribute}
	}

	name := strings.TrimSpace(inner[:paren])
	args := inner[paren+1:]
	written := splitWritten(args)

	if name == "derive" {
		return &CompletionContext{Kind: CompletionContextDerive, Written: written}
	}

	if key, ok := openStringKey(args); ok {
		return &CompletionContext{Kind: CompletionContextValue, Attribute: name, Key: key}
	}

	return &CompletionContext{Kind: CompletionContextKey, Attribute: name, Written: written}
}

// splitWritten returns the complete entries of an attribute list, ignoring
// the one being typed
func splitWritten(args string) []string {
	parts := strings.Split(args, ",")
	written := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		if i := strings.LastIndex(p, "::"); i >= 0 {
			p = p[i+2:]
		}
		if p != "" {
			written = append(written, p)
		}
	}
	return written
}

// openStringKey reports whether args ends inside `key = "...`
func openStringKey(args string) (string, bool) {
	if strings.Count(args, `"`)%2 == 0 {
		return "", false
	}
	before := args[:strings.LastIndex(args, `"`)]
	before = strings.TrimSpace(before)
	if !strings.HasSuffix(before, "=") {
		return "", false
	}
	before = strings.TrimSpace(strings.TrimSuffix(before, "="))
	if i := strings.LastIndexAny(before, "(, "); i >= 0 {
		before = before[i+1:]
	}
	return before, before != ""
}

// buildCompletions builds completion items for a context
func (a *API) buildCompletions(context *CompletionContext) []CompletionItem {
	switch context.Kind {
	case CompletionContextDerive:
		return a.getDeriveCompletions(context.Written)
	case CompletionContextAttribute:
		return a.getAttributeCompletions()
	case CompletionContextKey:
		return a.getKeyCompletions(context.Attribute, context.Written)
	case CompletionContextValue:
		return getValueCompletions(context.Key)
	default:
		return getSnippetCompletions()
	}
}

// getDeriveCompletions returns catalogue derive names not yet written
func (a *API) getDeriveCompletions(written []string) []CompletionItem {
	skip := make(map[string]bool, len(written))
	for _, w := range written {
		skip[w] = true
	}

	entries := a.Registry().Entries()
	items := make([]CompletionItem, 0, len(entries))
	for i, entry := range entries {
		if skip[entry.Spec.Name] {
			continue
		}
		items = append(items, CompletionItem{
			Label:         entry.Spec.Name,
			Kind:          CompletionKindDerive,
			Detail:        string(entry.Kind.Family()),
			Documentation: deriveSummary(entry),
			SortText:      fmt.Sprintf("%03d", i),
		})
	}
	return items
}

// getAttributeCompletions returns `derive` and every helper attribute name
func (a *API) getAttributeCompletions() []CompletionItem {
	items := []CompletionItem{{
		Label:      "derive",
		Kind:       CompletionKindAttribute,
		Detail:     "derive macro list",
		InsertText: "derive($0)",
		SortText:   "000",
	}}

	seen := map[string]bool{"derive": true}
	for _, entry := range a.Registry().Entries() {
		if len(entry.Spec.Params.All()) == 0 {
			continue
		}
		for _, name := range entry.Spec.AttrNames {
			if seen[name] {
				continue
			}
			seen[name] = true
			items = append(items, CompletionItem{
				Label:      name,
				Kind:       CompletionKindAttribute,
				Detail:     fmt.Sprintf("%s options", entry.Spec.Name),
				InsertText: name + "($0)",
			})
		}
	}
	return items
}

// getKeyCompletions returns the keys accepted by a helper attribute
func (a *API) getKeyCompletions(attribute string, written []string) []CompletionItem {
	entry, ok := entryForAttribute(a.Registry(), attribute)
	if !ok {
		return nil
	}

	skip := make(map[string]bool, len(written))
	for _, w := range written {
		skip[w] = true
	}

	keys := entry.Spec.Params.All()
	items := make([]CompletionItem, 0, len(keys))
	for _, key := range keys {
		if skip[key] {
			continue
		}
		item := CompletionItem{
			Label:  key,
			Kind:   CompletionKindKey,
			Detail: "valid on " + strings.Join(entry.Spec.Params.LevelsFor(key), ", "),
		}
		switch key {
		case attr.KeyRenameAll:
			item.InsertText = `rename_all = "$0"`
		case attr.KeyTypes:
			item.InsertText = "types($0)"
		case attr.KeyError:
			item.InsertText = "error($0)"
		}
		items = append(items, item)
	}
	return items
}

// getValueCompletions returns literal values for a key
func getValueCompletions(key string) []CompletionItem {
	if key != attr.KeyRenameAll {
		return nil
	}
	names := attr.CaseNames()
	items := make([]CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, CompletionItem{
			Label:  name,
			Kind:   CompletionKindValue,
			Detail: "rename_all case",
		})
	}
	return items
}

// getSnippetCompletions is offered outside any attribute
func getSnippetCompletions() []CompletionItem {
	return []CompletionItem{
		{
			Label:         "#[derive]",
			Kind:          CompletionKindSnippet,
			Detail:        "derive attribute",
			Documentation: "Request derives for the following declaration",
			InsertText:    "#[derive(${1})]",
		},
	}
}

// entryForAttribute finds the derive whose helper attribute is name
func entryForAttribute(r *codegen.Registry, name string) (codegen.Entry, bool) {
	for _, entry := range r.Entries() {
		for _, n := range entry.Spec.AttrNames {
			if n == name {
				return entry, true
			}
		}
	}
	return codegen.Entry{}, false
}
