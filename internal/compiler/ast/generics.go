package ast

import "strings"

// GenericParamKind distinguishes lifetime, type and const parameters
type GenericParamKind int

const (
	// LifetimeParam is `'a: 'b`
	LifetimeParam GenericParamKind = iota
	// TypeParam is `T: Bound = Default`
	TypeParam
	// ConstParam is `const N: usize = 3`
	ConstParam
)

// Generics is the parameter list and where clause of a declaration
type Generics struct {
	Params []*GenericParam
	Where  []*WherePredicate
}

// GenericParam is one declared generic parameter
type GenericParam struct {
	Kind GenericParamKind
	// Name includes the leading quote for lifetimes
	Name string
	// Bounds holds trait and lifetime bounds of type params, and the
	// outlives list of lifetime params
	Bounds []*TypeBound
	// ConstType is the type of a const parameter
	ConstType Type
	// Default is the source text of a default type or value
	Default string
	Loc     SourceLocation
}

// WherePredicate is `for<'a> Bounded: Bounds` or `'a: 'b`
type WherePredicate struct {
	ForLifetimes []string
	// Lifetime is set for lifetime predicates; Bounded for type predicates
	Lifetime string
	Bounded  Type
	Bounds   []*TypeBound
}

// Clone returns a deep-enough copy whose slices can be appended to without
// touching the original
func (g *Generics) Clone() *Generics {
	if g == nil {
		return &Generics{}
	}
	out := &Generics{
		Params: make([]*GenericParam, len(g.Params)),
		Where:  make([]*WherePredicate, len(g.Where)),
	}
	for i, p := range g.Params {
		cp := *p
		cp.Bounds = append([]*TypeBound(nil), p.Bounds...)
		out.Params[i] = &cp
	}
	for i, w := range g.Where {
		cw := *w
		cw.Bounds = append([]*TypeBound(nil), w.Bounds...)
		out.Where[i] = &cw
	}
	return out
}

// Param looks up a parameter by name
func (g *Generics) Param(name string) *GenericParam {
	if g == nil {
		return nil
	}
	for _, p := range g.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// TypeParamNames returns the names of type parameters in declaration order
func (g *Generics) TypeParamNames() []string {
	return g.namesOf(TypeParam)
}

// ConstParamNames returns the names of const parameters in declaration order
func (g *Generics) ConstParamNames() []string {
	return g.namesOf(ConstParam)
}

// LifetimeNames returns the names of lifetime parameters in declaration order
func (g *Generics) LifetimeNames() []string {
	return g.namesOf(LifetimeParam)
}

func (g *Generics) namesOf(kind GenericParamKind) []string {
	if g == nil {
		return nil
	}
	var names []string
	for _, p := range g.Params {
		if p.Kind == kind {
			names = append(names, p.Name)
		}
	}
	return names
}

// IsEmpty reports whether there are no parameters and no predicates
func (g *Generics) IsEmpty() bool {
	return g == nil || (len(g.Params) == 0 && len(g.Where) == 0)
}

// DeclString renders the parameter as it appears in an impl header: with
// bounds, without defaults.
func (p *GenericParam) DeclString() string {
	switch p.Kind {
	case ConstParam:
		return "const " + p.Name + ": " + p.ConstType.String()
	default:
		if len(p.Bounds) == 0 {
			return p.Name
		}
		return p.Name + ": " + JoinBounds(p.Bounds)
	}
}

// String renders the predicate
func (w *WherePredicate) String() string {
	var sb strings.Builder
	if len(w.ForLifetimes) > 0 {
		sb.WriteString("for<" + strings.Join(w.ForLifetimes, ", ") + "> ")
	}
	if w.Lifetime != "" {
		sb.WriteString(w.Lifetime)
	} else {
		sb.WriteString(w.Bounded.String())
	}
	sb.WriteString(": ")
	sb.WriteString(JoinBounds(w.Bounds))
	return sb.String()
}
