// Package bounds computes the generic parameter lists and where clauses of
// generated impls. An Augmentation is a private working copy of a
// declaration's generics that strategies extend with the bounds their code
// needs; the declaration itself is never modified.
package bounds

import (
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
)

// Augmentation is a working copy of a declaration's generics
type Augmentation struct {
	generics   *ast.Generics
	lifetimes  []string // extra lifetimes, rendered before every other parameter
	params     []string // extra type/const parameters
	predicates []string // extra where predicates
	seen       map[string]bool
}

// NewAugmentation copies g. A nil g is treated as no generics.
func NewAugmentation(g *ast.Generics) *Augmentation {
	return &Augmentation{
		generics: g.Clone(),
		seen:     make(map[string]bool),
	}
}

// Generics returns the declaration generics the augmentation was built from
func (a *Augmentation) Generics() *ast.Generics {
	return a.generics
}

// AddWherePredicate adds `ty: bound`. Duplicate predicates are dropped.
func (a *Augmentation) AddWherePredicate(ty ast.Type, bound string) {
	a.AddRawPredicate(ty.String() + ": " + bound)
}

// AddTypeParamBound adds `name: bound` for a declared or added type parameter
func (a *Augmentation) AddTypeParamBound(name, bound string) {
	a.AddRawPredicate(name + ": " + bound)
}

// AddRawPredicate adds a predicate given as source text
func (a *Augmentation) AddRawPredicate(pred string) {
	if a.seen[pred] {
		return
	}
	a.seen[pred] = true
	a.predicates = append(a.predicates, pred)
}

// AddParam appends an impl-only parameter such as `__RhsT` or
// `__IdxT: Copy`. Lifetimes (leading quote) are placed first.
func (a *Augmentation) AddParam(decl string) {
	if strings.HasPrefix(decl, "'") {
		a.lifetimes = append(a.lifetimes, decl)
		return
	}
	a.params = append(a.params, decl)
}

// Predicates returns the where predicates added so far
func (a *Augmentation) Predicates() []string {
	return append([]string(nil), a.predicates...)
}

// Split renders the three generics fragments of an impl: the impl parameter
// list with bounds, the type argument list, and the where clause. Empty
// fragments are "".
//
//	impl<'a, T: Clone, __RhsT> Trait for Name<'a, T> where T: Copy
//	    ^^^^^^^^^^^^^^^^^^^^^^          ^^^^^^^ ^^^^^^^^^^^^^^^^^^^
func (a *Augmentation) Split() (impl, ty, where string) {
	var declLifetimes, declOthers, args []string
	for _, p := range a.generics.Params {
		if p.Kind == ast.LifetimeParam {
			declLifetimes = append(declLifetimes, p.DeclString())
		} else {
			declOthers = append(declOthers, p.DeclString())
		}
		args = append(args, p.Name)
	}

	decls := make([]string, 0, len(declLifetimes)+len(declOthers)+len(a.lifetimes)+len(a.params))
	decls = append(decls, declLifetimes...)
	decls = append(decls, a.lifetimes...)
	decls = append(decls, declOthers...)
	decls = append(decls, a.params...)

	if len(decls) > 0 {
		impl = "<" + strings.Join(decls, ", ") + ">"
	}
	if len(args) > 0 {
		ty = "<" + strings.Join(args, ", ") + ">"
	}

	preds := make([]string, 0, len(a.generics.Where)+len(a.predicates))
	for _, w := range a.generics.Where {
		preds = append(preds, w.String())
	}
	preds = append(preds, a.predicates...)
	if len(preds) > 0 {
		where = "where " + strings.Join(preds, ", ")
	}
	return impl, ty, where
}

// Header renders `impl<..> Trait for Name<..> where ..` without the opening
// brace
func (a *Augmentation) Header(traitPath, name string) string {
	impl, ty, where := a.Split()
	var sb strings.Builder
	sb.WriteString("impl")
	sb.WriteString(impl)
	sb.WriteString(" ")
	if traitPath != "" {
		sb.WriteString(traitPath)
		sb.WriteString(" for ")
	}
	sb.WriteString(name)
	sb.WriteString(ty)
	if where != "" {
		sb.WriteString(" ")
		sb.WriteString(where)
	}
	return sb.String()
}

// InherentHeader renders `impl<..> Name<..> where ..` for inherent methods
func (a *Augmentation) InherentHeader(name string) string {
	return a.Header("", name)
}
