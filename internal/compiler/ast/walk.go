package ast

// Inspector walks a type expression depth-first. Type is called for every
// nested type and may return false to skip its children. Lifetime and Const
// receive lifetimes and const-generic expressions that appear anywhere in the
// type. Nil callbacks are ignored.
type Inspector struct {
	Type     func(Type) bool
	Lifetime func(string)
	Const    func(string)
}

// Walk visits t and everything nested in it
func (in Inspector) Walk(t Type) {
	if t == nil {
		return
	}
	if in.Type != nil && !in.Type(t) {
		return
	}

	switch t := t.(type) {
	case *PathType:
		in.walkPath(t)
	case *ReferenceType:
		in.lifetime(t.Lifetime)
		in.Walk(t.Elem)
	case *PtrType:
		in.Walk(t.Elem)
	case *TupleType:
		for _, e := range t.Elems {
			in.Walk(e)
		}
	case *ArrayType:
		in.Walk(t.Elem)
		in.constExpr(t.Len)
	case *SliceType:
		in.Walk(t.Elem)
	case *ParenType:
		in.Walk(t.Elem)
	case *FnType:
		for _, e := range t.Inputs {
			in.Walk(e)
		}
		in.Walk(t.Output)
	case *TraitObjectType:
		in.walkBounds(t.Bounds)
	case *ImplTraitType:
		in.walkBounds(t.Bounds)
	}
}

func (in Inspector) walkPath(p *PathType) {
	if p == nil {
		return
	}
	if p.QSelf != nil {
		in.Walk(p.QSelf.Type)
		if p.QSelf.Trait != nil {
			in.walkPath(p.QSelf.Trait)
		}
	}
	for _, seg := range p.Segments {
		for _, arg := range seg.Args {
			switch a := arg.(type) {
			case *TypeArg:
				in.Walk(a.Type)
			case *LifetimeArg:
				in.lifetime(a.Name)
			case *ConstArg:
				in.constExpr(a.Expr)
			case *BindingArg:
				in.Walk(a.Type)
			case *ConstraintArg:
				in.walkBounds(a.Bounds)
			}
		}
		for _, input := range seg.Inputs {
			in.Walk(input)
		}
		in.Walk(seg.Output)
	}
}

func (in Inspector) walkBounds(bounds []*TypeBound) {
	for _, b := range bounds {
		if b.Lifetime != "" {
			in.lifetime(b.Lifetime)
			continue
		}
		in.walkPath(b.Trait)
	}
}

func (in Inspector) lifetime(name string) {
	if name != "" && in.Lifetime != nil {
		in.Lifetime(name)
	}
}

func (in Inspector) constExpr(expr string) {
	if expr != "" && in.Const != nil {
		in.Const(expr)
	}
}
