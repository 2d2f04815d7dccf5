package bounds

import (
	"regexp"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// MentionsGeneric reports whether ty uses a type parameter, a const
// parameter or a lifetime declared by g. Only such types need bounds: a
// bound on a concrete type either holds or is rejected by the compiler
// regardless of the impl.
func MentionsGeneric(ty ast.Type, g *ast.Generics) bool {
	if g == nil || len(g.Params) == 0 {
		return false
	}

	typeNames := make(map[string]bool)
	for _, n := range g.TypeParamNames() {
		typeNames[n] = true
	}
	for _, n := range g.ConstParamNames() {
		typeNames[n] = true
	}
	lifetimes := make(map[string]bool)
	for _, n := range g.LifetimeNames() {
		lifetimes[n] = true
	}
	constNames := g.ConstParamNames()

	found := false
	ast.Inspector{
		Type: func(t ast.Type) bool {
			if found {
				return false
			}
			if p, ok := t.(*ast.PathType); ok && p.QSelf == nil && !p.Global && len(p.Segments) > 0 {
				if typeNames[p.Segments[0].Ident] {
					found = true
					return false
				}
			}
			return true
		},
		Lifetime: func(name string) {
			if lifetimes[name] {
				found = true
			}
		},
		Const: func(expr string) {
			for _, n := range constNames {
				if identPattern(n).MatchString(expr) {
					found = true
				}
			}
		},
	}.Walk(ty)
	return found
}

// ContainsStructurally reports whether ty is, or has nested anywhere inside
// it, `Self` or the implementor type. subject is the implementor type as
// rendered by DeriveInput.SelfType. A bound on such a type would require the
// impl being generated, which the trait solver cannot satisfy.
func ContainsStructurally(ty ast.Type, subject ast.Type) bool {
	subjectSeg := lastSegment(subject)

	found := false
	ast.Inspector{
		Type: func(t ast.Type) bool {
			if found {
				return false
			}
			p, ok := t.(*ast.PathType)
			if !ok || p.QSelf != nil {
				return true
			}
			if p.IsIdent("Self") || ast.TypesEqual(p, subject) {
				found = true
				return false
			}
			if subjectSeg != "" && len(p.Segments) > 1 && p.Segments[len(p.Segments)-1].String() == subjectSeg {
				found = true
				return false
			}
			return true
		},
	}.Walk(ty)
	return found
}

// FieldPredicates returns one `Ty: bound(Ty)` predicate per distinct field
// type that mentions a generic of g and does not structurally contain the
// subject. Order follows the first occurrence of each type.
func FieldPredicates(fields []ast.Type, subject ast.Type, g *ast.Generics, bound func(ast.Type) string) []string {
	seen := make(map[string]bool)
	var preds []string
	for _, ty := range fields {
		key := ty.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if !MentionsGeneric(ty, g) || ContainsStructurally(ty, subject) {
			continue
		}
		preds = append(preds, key+": "+bound(ty))
	}
	return preds
}

// AddFieldPredicates is FieldPredicates applied to an augmentation
func (a *Augmentation) AddFieldPredicates(fields []ast.Type, subject ast.Type, bound func(ast.Type) string) {
	for _, p := range FieldPredicates(fields, subject, a.generics, bound) {
		a.AddRawPredicate(p)
	}
}

// DistinctTypes returns types without duplicates, in first-seen order
func DistinctTypes(types []ast.Type) []ast.Type {
	seen := make(map[string]bool)
	out := make([]ast.Type, 0, len(types))
	for _, t := range types {
		if !seen[t.String()] {
			seen[t.String()] = true
			out = append(out, t)
		}
	}
	return out
}

func lastSegment(t ast.Type) string {
	p, ok := t.(*ast.PathType)
	if !ok || len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].String()
}

func identPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}
