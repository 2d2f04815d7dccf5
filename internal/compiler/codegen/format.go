package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// formatterVar names the Formatter argument of generated fmt methods
const formatterVar = "__derive_f"

// variantPlaceholder stands for the variant's own formatting inside an
// enum-wide Display format
const variantPlaceholder = "_variant"

// fmtPath returns the absolute path of a formatting trait
func fmtPath(trait string) string {
	return "::core::fmt::" + trait
}

// placeholder is one `{...}` of a format string
type placeholder struct {
	// Arg is an index, a name, or empty for the next positional argument
	Arg string
	// Spec is the text after ':'
	Spec string
	// Trait is the formatting trait the spec selects, e.g. "LowerHex"
	Trait string
}

// parsePlaceholders lists the placeholders of a decoded format string
func parsePlaceholders(s string) ([]placeholder, error) {
	var out []placeholder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed `{` at byte %d", i)
			}
			inner := s[i+1 : i+1+end]
			i += end + 1

			p := placeholder{Arg: strings.TrimSpace(inner)}
			if colon := strings.IndexByte(inner, ':'); colon >= 0 {
				p.Arg = strings.TrimSpace(inner[:colon])
				p.Spec = inner[colon+1:]
			}
			p.Trait = specTrait(p.Spec)
			out = append(out, p)
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				i++
				continue
			}
			return nil, fmt.Errorf("unmatched `}` at byte %d", i)
		}
	}
	return out, nil
}

// specTrait maps the type of a format spec to its trait
func specTrait(spec string) string {
	if spec == "" {
		return "Display"
	}
	switch spec[len(spec)-1] {
	case '?':
		return "Debug"
	case 'x':
		return "LowerHex"
	case 'X':
		return "UpperHex"
	case 'o':
		return "Octal"
	case 'b':
		return "Binary"
	case 'e':
		return "LowerExp"
	case 'E':
		return "UpperExp"
	case 'p':
		return "Pointer"
	default:
		return "Display"
	}
}

// formatUse is one value a format string formats, with the trait it is
// formatted through
type formatUse struct {
	Expr  string
	Trait string
	Spec  string
}

var (
	namedArgPattern  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)
	identFreePattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// formatUses resolves every placeholder of f to the expression it formats.
// Implicitly captured names resolve to themselves.
func formatUses(f *attr.Format, attrName string) ([]formatUse, error) {
	placeholders, err := parsePlaceholders(f.Value)
	if err != nil {
		return nil, errors.NewFormatString(f.Loc, attrName, f.Lit, err.Error())
	}

	var positional []string
	named := make(map[string]string)
	for _, arg := range f.Args {
		if m := namedArgPattern.FindStringSubmatch(arg); m != nil {
			named[m[1]] = strings.TrimSpace(m[2])
			continue
		}
		positional = append(positional, arg)
	}

	uses := make([]formatUse, 0, len(placeholders))
	next := 0
	for _, p := range placeholders {
		var expr string
		switch {
		case p.Arg == "":
			if next >= len(positional) {
				return nil, errors.NewFormatString(f.Loc, attrName, f.Lit,
					fmt.Sprintf("placeholder %d has no argument", next))
			}
			expr = positional[next]
			next++
		case isDigits(p.Arg):
			idx, _ := strconv.Atoi(p.Arg)
			if idx >= len(positional) {
				return nil, errors.NewFormatString(f.Loc, attrName, f.Lit,
					fmt.Sprintf("placeholder {%d} has no argument", idx))
			}
			expr = positional[idx]
		default:
			expr = p.Arg
			if e, ok := named[p.Arg]; ok {
				expr = e
			}
		}
		uses = append(uses, formatUse{Expr: expr, Trait: p.Trait, Spec: p.Spec})
	}
	return uses, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// identifiers returns the identifiers mentioned by a format string and its
// arguments
func identifiers(f *attr.Format) map[string]bool {
	ids := make(map[string]bool)
	for _, arg := range f.Args {
		for _, id := range identFreePattern.FindAllString(arg, -1) {
			ids[id] = true
		}
	}
	if placeholders, err := parsePlaceholders(f.Value); err == nil {
		for _, p := range placeholders {
			if p.Arg != "" && !isDigits(p.Arg) {
				ids[p.Arg] = true
			}
		}
	}
	return ids
}

// writeCall renders `::core::write!(f, "...", args)`
func writeCall(f *attr.Format) string {
	return "::core::write!(" + strings.Join(append([]string{formatterVar, f.Lit}, f.Args...), ", ") + ")"
}

// formatArgsCall renders `&::core::format_args!("...", args)`
func formatArgsCall(f *attr.Format) string {
	return "&::core::format_args!(" + strings.Join(append([]string{f.Lit}, f.Args...), ", ") + ")"
}

// fieldBinding is the local name a field is bound to in generated fmt
// bodies: its identifier, or `_N` for tuple fields
func fieldBinding(f resolve.FieldData) string {
	if f.Field.Ident != "" {
		return f.Field.Ident
	}
	return "_" + f.Name
}

// unraw strips the raw identifier prefix for display purposes
func unraw(name string) string {
	return strings.TrimPrefix(name, "r#")
}

// bindingSet is the set of field bindings a fmt body refers to
type bindingSet map[string]bool

func (b bindingSet) addFormat(f *attr.Format) {
	if f == nil {
		return
	}
	for id := range identifiers(f) {
		b[id] = true
	}
}

// letBindings renders `let x = &self.x;` for every used struct field
func letBindings(fields resolve.MultiFieldData, used bindingSet) []string {
	var lines []string
	for _, f := range fields.All {
		if name := fieldBinding(f); used[name] {
			lines = append(lines, fmt.Sprintf("let %s = &%s;", name, f.Member))
		}
	}
	return lines
}

// bindingPattern renders a pattern binding the used fields of a variant by
// their fmt binding names, e.g. `Self::Foo(_0, _)` or `Self::Bar { x, .. }`
func bindingPattern(path string, fields resolve.MultiFieldData, used bindingSet) string {
	switch fields.Style {
	case ast.FieldsUnnamed:
		parts := make([]string, len(fields.All))
		bound := false
		for i, f := range fields.All {
			parts[i] = "_"
			if name := fieldBinding(f); used[name] {
				parts[i] = name
				bound = true
			}
		}
		if !bound {
			return path + "(..)"
		}
		return path + "(" + strings.Join(parts, ", ") + ")"
	case ast.FieldsNamed:
		var parts []string
		for _, f := range fields.All {
			if used[fieldBinding(f)] {
				parts = append(parts, f.Field.Ident)
			}
		}
		if len(parts) < len(fields.All) {
			parts = append(parts, "..")
		}
		return path + " { " + strings.Join(parts, ", ") + " }"
	default:
		return path
	}
}

// boundFormatUses adds `FieldTy: Trait` for every use that formats a field
// binding directly
func boundFormatUses(aug *bounds.Augmentation, self ast.Type, fields resolve.MultiFieldData, uses []formatUse) {
	byBinding := make(map[string]ast.Type, len(fields.All))
	for _, f := range fields.All {
		byBinding[fieldBinding(f)] = f.Type
	}
	for _, u := range uses {
		ty, ok := byBinding[strings.TrimLeft(u.Expr, "&")]
		if !ok {
			continue
		}
		trait := fmtPath(u.Trait)
		aug.AddFieldPredicates([]ast.Type{ty}, self, func(ast.Type) string { return trait })
	}
}
