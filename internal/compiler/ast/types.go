package ast

import (
	"strings"
)

// Type is a Rust type expression. String renders the canonical source form,
// which is also what two types are compared by.
type Type interface {
	Node
	String() string
	typeNode()
}

// PathType is `a::b::C<T>` or the qualified form `<T as Trait>::Assoc`
type PathType struct {
	QSelf    *QSelf
	Global   bool // leading ::
	Segments []*PathSegment
	Loc      SourceLocation
}

// QSelf is the `<T as Trait>` prefix of a qualified path. Trait is nil for
// `<T>::Assoc`.
type QSelf struct {
	Type  Type
	Trait *PathType
}

// PathSegment is one `::`-separated component with optional arguments
type PathSegment struct {
	Ident string
	Args  []GenericArg
	// Inputs/Output are set for parenthesized arguments, as in Fn(A) -> B
	Parenthesized bool
	Inputs        []Type
	Output        Type
}

// ReferenceType is `&'a mut T`
type ReferenceType struct {
	Lifetime string
	Mut      bool
	Elem     Type
	Loc      SourceLocation
}

// PtrType is `*const T` or `*mut T`
type PtrType struct {
	Mut  bool
	Elem Type
	Loc  SourceLocation
}

// TupleType is `(A, B)`; the unit type has no elements
type TupleType struct {
	Elems []Type
	Loc   SourceLocation
}

// ArrayType is `[T; N]`; Len keeps the length expression source text
type ArrayType struct {
	Elem Type
	Len  string
	Loc  SourceLocation
}

// SliceType is `[T]`
type SliceType struct {
	Elem Type
	Loc  SourceLocation
}

// ParenType is `(T)`
type ParenType struct {
	Elem Type
	Loc  SourceLocation
}

// FnType is a bare function pointer such as `unsafe extern "C" fn(i32) -> u8`
type FnType struct {
	ForLifetimes []string
	Unsafe       bool
	Abi          string
	Inputs       []Type
	Variadic     bool
	Output       Type
	Loc          SourceLocation
}

// TraitObjectType is `dyn A + B + 'a`
type TraitObjectType struct {
	Dyn    bool
	Bounds []*TypeBound
	Loc    SourceLocation
}

// ImplTraitType is `impl A + B`
type ImplTraitType struct {
	Bounds []*TypeBound
	Loc    SourceLocation
}

// NeverType is `!`
type NeverType struct {
	Loc SourceLocation
}

// InferType is `_`
type InferType struct {
	Loc SourceLocation
}

// MacroType is a macro invocation in type position, kept verbatim
type MacroType struct {
	Raw string
	Loc SourceLocation
}

// TypeBound is one `+`-separated bound: a lifetime or a trait path
type TypeBound struct {
	Lifetime     string
	Trait        *PathType
	Maybe        bool // ?Sized
	ForLifetimes []string
}

// String renders the bound
func (b *TypeBound) String() string {
	if b.Lifetime != "" {
		return b.Lifetime
	}
	var sb strings.Builder
	if len(b.ForLifetimes) > 0 {
		sb.WriteString("for<" + strings.Join(b.ForLifetimes, ", ") + "> ")
	}
	if b.Maybe {
		sb.WriteString("?")
	}
	sb.WriteString(b.Trait.String())
	return sb.String()
}

// GenericArg is an entry of an angle-bracketed argument list
type GenericArg interface {
	String() string
	genericArg()
}

// TypeArg is a type argument
type TypeArg struct{ Type Type }

// LifetimeArg is a lifetime argument
type LifetimeArg struct{ Name string }

// ConstArg is a const argument kept as source text
type ConstArg struct{ Expr string }

// BindingArg is an associated type binding such as `Output = T`
type BindingArg struct {
	Name string
	Type Type
}

// ConstraintArg is an associated type constraint such as `Item: Copy`
type ConstraintArg struct {
	Name   string
	Bounds []*TypeBound
}

func (a *TypeArg) String() string       { return a.Type.String() }
func (a *LifetimeArg) String() string   { return a.Name }
func (a *ConstArg) String() string      { return a.Expr }
func (a *BindingArg) String() string    { return a.Name + " = " + a.Type.String() }
func (a *ConstraintArg) String() string { return a.Name + ": " + JoinBounds(a.Bounds) }

func (a *TypeArg) genericArg()       {}
func (a *LifetimeArg) genericArg()   {}
func (a *ConstArg) genericArg()      {}
func (a *BindingArg) genericArg()    {}
func (a *ConstraintArg) genericArg() {}

// JoinBounds renders a bound list joined by " + "
func JoinBounds(bounds []*TypeBound) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.String()
	}
	return strings.Join(parts, " + ")
}

// SimplePath builds a single-segment path type
func SimplePath(ident string) *PathType {
	return &PathType{Segments: []*PathSegment{{Ident: ident}}}
}

// ParsePathString builds a path type from a `::`-separated string without
// generic arguments, e.g. "::core::ops::Add".
func ParsePathString(path string) *PathType {
	p := &PathType{}
	if strings.HasPrefix(path, "::") {
		p.Global = true
		path = path[2:]
	}
	for _, part := range strings.Split(path, "::") {
		p.Segments = append(p.Segments, &PathSegment{Ident: part})
	}
	return p
}

// String renders the path
func (p *PathType) String() string {
	var sb strings.Builder
	if p.QSelf != nil {
		sb.WriteString("<")
		sb.WriteString(p.QSelf.Type.String())
		if p.QSelf.Trait != nil {
			sb.WriteString(" as ")
			sb.WriteString(p.QSelf.Trait.String())
		}
		sb.WriteString(">")
		for _, seg := range p.Segments {
			sb.WriteString("::")
			sb.WriteString(seg.String())
		}
		return sb.String()
	}
	if p.Global {
		sb.WriteString("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// String renders the segment with its arguments
func (s *PathSegment) String() string {
	if s.Parenthesized {
		inputs := make([]string, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = in.String()
		}
		out := s.Ident + "(" + strings.Join(inputs, ", ") + ")"
		if s.Output != nil {
			out += " -> " + s.Output.String()
		}
		return out
	}
	if len(s.Args) == 0 {
		return s.Ident
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return s.Ident + "<" + strings.Join(args, ", ") + ">"
}

// IsIdent reports whether the path is a single plain identifier such as `T`
func (p *PathType) IsIdent(name string) bool {
	return p.QSelf == nil && !p.Global && len(p.Segments) == 1 &&
		len(p.Segments[0].Args) == 0 && !p.Segments[0].Parenthesized &&
		p.Segments[0].Ident == name
}

// LastIdent returns the identifier of the final segment
func (p *PathType) LastIdent() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Ident
}

func (t *ReferenceType) String() string {
	var sb strings.Builder
	sb.WriteString("&")
	if t.Lifetime != "" {
		sb.WriteString(t.Lifetime + " ")
	}
	if t.Mut {
		sb.WriteString("mut ")
	}
	sb.WriteString(t.Elem.String())
	return sb.String()
}

func (t *PtrType) String() string {
	if t.Mut {
		return "*mut " + t.Elem.String()
	}
	return "*const " + t.Elem.String()
}

func (t *TupleType) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	if len(elems) == 1 {
		return "(" + elems[0] + ",)"
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (t *ArrayType) String() string { return "[" + t.Elem.String() + "; " + t.Len + "]" }
func (t *SliceType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ParenType) String() string { return "(" + t.Elem.String() + ")" }

func (t *FnType) String() string {
	var sb strings.Builder
	if len(t.ForLifetimes) > 0 {
		sb.WriteString("for<" + strings.Join(t.ForLifetimes, ", ") + "> ")
	}
	if t.Unsafe {
		sb.WriteString("unsafe ")
	}
	if t.Abi != "" {
		sb.WriteString("extern " + t.Abi + " ")
	}
	inputs := make([]string, len(t.Inputs))
	for i, in := range t.Inputs {
		inputs[i] = in.String()
	}
	if t.Variadic {
		inputs = append(inputs, "...")
	}
	sb.WriteString("fn(" + strings.Join(inputs, ", ") + ")")
	if t.Output != nil {
		sb.WriteString(" -> " + t.Output.String())
	}
	return sb.String()
}

func (t *TraitObjectType) String() string {
	if t.Dyn {
		return "dyn " + JoinBounds(t.Bounds)
	}
	return JoinBounds(t.Bounds)
}

func (t *ImplTraitType) String() string { return "impl " + JoinBounds(t.Bounds) }
func (t *NeverType) String() string     { return "!" }
func (t *InferType) String() string     { return "_" }
func (t *MacroType) String() string     { return t.Raw }

func (t *PathType) node()        {}
func (t *ReferenceType) node()   {}
func (t *PtrType) node()         {}
func (t *TupleType) node()       {}
func (t *ArrayType) node()       {}
func (t *SliceType) node()       {}
func (t *ParenType) node()       {}
func (t *FnType) node()          {}
func (t *TraitObjectType) node() {}
func (t *ImplTraitType) node()   {}
func (t *NeverType) node()       {}
func (t *InferType) node()       {}
func (t *MacroType) node()       {}

func (t *PathType) typeNode()        {}
func (t *ReferenceType) typeNode()   {}
func (t *PtrType) typeNode()         {}
func (t *TupleType) typeNode()       {}
func (t *ArrayType) typeNode()       {}
func (t *SliceType) typeNode()       {}
func (t *ParenType) typeNode()       {}
func (t *FnType) typeNode()          {}
func (t *TraitObjectType) typeNode() {}
func (t *ImplTraitType) typeNode()   {}
func (t *NeverType) typeNode()       {}
func (t *InferType) typeNode()       {}
func (t *MacroType) typeNode()       {}

// Location returns the source location of the path type.
func (t *PathType) Location() SourceLocation        { return t.Loc }
func (t *ReferenceType) Location() SourceLocation   { return t.Loc }
func (t *PtrType) Location() SourceLocation         { return t.Loc }
func (t *TupleType) Location() SourceLocation       { return t.Loc }
func (t *ArrayType) Location() SourceLocation       { return t.Loc }
func (t *SliceType) Location() SourceLocation       { return t.Loc }
func (t *ParenType) Location() SourceLocation       { return t.Loc }
func (t *FnType) Location() SourceLocation          { return t.Loc }
func (t *TraitObjectType) Location() SourceLocation { return t.Loc }
func (t *ImplTraitType) Location() SourceLocation   { return t.Loc }
func (t *NeverType) Location() SourceLocation       { return t.Loc }
func (t *InferType) Location() SourceLocation       { return t.Loc }
func (t *MacroType) Location() SourceLocation       { return t.Loc }

// TypesEqual compares two types by their canonical rendering
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// Unparen strips redundant parentheses around a type
func Unparen(t Type) Type {
	for {
		p, ok := t.(*ParenType)
		if !ok {
			return t
		}
		t = p.Elem
	}
}
