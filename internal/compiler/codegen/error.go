package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

const (
	pathDebug   = "::core::fmt::Debug"
	pathDisplay = "::core::fmt::Display"
)

// errorDerive expands std::error::Error. Only `source()` is generated; the
// backtrace keys are checked for consistency but produce no code.
type errorDerive struct {
	opts Options
}

// errorFields is the source and backtrace selection of one field list
type errorFields struct {
	source    *resolve.FieldData
	backtrace *resolve.FieldData
}

func (s *errorDerive) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	typeParams := typeParamsOnly(in.Generics)
	aug := state.Augmentation()
	var body []string

	addSourceBound := func(f *resolve.FieldData) {
		ty := f.Type
		if inner, ok := optionInner(ty); ok {
			ty = inner
		}
		if bounds.MentionsGeneric(ty, typeParams) {
			aug.AddWherePredicate(ty, fmt.Sprintf("%s + %s + %s + 'static", pathDebug, pathDisplay, spec.Path))
		}
	}

	if in.IsEnum() {
		variants, err := state.EnabledVariantsData()
		if err != nil {
			return nil, err
		}
		var arms []string
		for _, v := range variants {
			ef, err := selectErrorFields(in, spec, v.Fields, in.Name+"::"+v.Name)
			if err != nil {
				return nil, err
			}
			if ef.source == nil {
				continue
			}
			addSourceBound(ef.source)
			arms = append(arms, fmt.Sprintf("%s => %s,",
				sourcePattern(v, *ef.source), s.someSource("source", *ef.source)))
		}
		if len(arms) > 0 {
			body = append(body, "match self {")
			for _, arm := range arms {
				body = append(body, indentUnit+arm)
			}
			if len(arms) < len(in.Variants) {
				body = append(body, indentUnit+"_ => "+pathNone+",")
			}
			body = append(body, "}")
		}
	} else {
		data, err := state.EnabledFieldsData()
		if err != nil {
			return nil, err
		}
		ef, err := selectErrorFields(in, spec, data, in.Name)
		if err != nil {
			return nil, err
		}
		if ef.source != nil {
			addSourceBound(ef.source)
			body = append(body, s.someSource("(&"+ef.source.Member+")", *ef.source))
		}
	}

	if len(typeParams.Params) > 0 {
		aug.AddWherePredicate(state.SelfType(), pathDebug+" + "+pathDisplay)
	}

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	if len(body) > 0 {
		w.Block(fmt.Sprintf("fn source(&self) -> %s<&(dyn %s + 'static)>", pathOption, spec.Path), func() {
			w.Line("use %s as _;", s.opts.runtimePath("AsDynError"))
			for _, line := range body {
				w.Line("%s", line)
			}
		})
	}
	w.Close("")
	return newExpansion(spec, w), nil
}

// someSource wraps the source expression, unpacking Option sources with `?`
func (s *errorDerive) someSource(expr string, f resolve.FieldData) string {
	if _, ok := optionInner(f.Type); ok {
		expr = fmt.Sprintf("%s::as_ref(%s)?", pathOption, expr)
	}
	return fmt.Sprintf("%s(%s.%s())", pathSome, expr, asDynErrorMethod)
}

// selectErrorFields picks the source and backtrace fields: an explicit key
// wins; otherwise a field is inferred by name or, for tuples, by position
// and type
func selectErrorFields(in *ast.DeriveInput, spec resolve.TraitSpec, data resolve.MultiFieldData, subject string) (errorFields, error) {
	var ef errorFields
	total := len(data.All)
	named := data.Style == ast.FieldsNamed

	var err error
	ef.source, err = pickField(in, spec, data, subject, "source",
		func(o attr.Options) attr.Toggle { return o.Source },
		func(f resolve.FieldData) bool {
			if named {
				return f.Name == "source"
			}
			return total == 1 && !isBacktraceType(f.Type)
		})
	if err != nil {
		return ef, err
	}
	ef.backtrace, err = pickField(in, spec, data, subject, "backtrace",
		func(o attr.Options) attr.Toggle { return o.Backtrace },
		func(f resolve.FieldData) bool {
			if named {
				return f.Name == "backtrace" || isBacktraceType(f.Type)
			}
			return isBacktraceType(f.Type)
		})
	if err != nil {
		return ef, err
	}

	// a tuple of a backtrace and one other field takes the other as source
	if !named && total == 2 && ef.source == nil && ef.backtrace != nil {
		other := data.All[(ef.backtrace.Index+1)%2]
		if other.Info.Enabled && other.Info.Options.Source != attr.Off {
			ef.source = &other
		}
	}
	return ef, nil
}

func pickField(in *ast.DeriveInput, spec resolve.TraitSpec, data resolve.MultiFieldData, subject, key string,
	toggle func(attr.Options) attr.Toggle, inferred func(resolve.FieldData) bool) (*resolve.FieldData, error) {
	var explicit, implicit []resolve.FieldData
	for _, f := range data.Enabled {
		switch toggle(f.Info.Options) {
		case attr.On:
			explicit = append(explicit, f)
		case attr.Unset:
			if inferred(f) {
				implicit = append(implicit, f)
			}
		}
	}
	if len(explicit) > 1 {
		return nil, wrongShape(in, spec, fmt.Sprintf(
			"multiple `%s` attributes specified in `%s`; only one per struct or variant is allowed", key, subject))
	}
	if len(explicit) == 1 {
		return &explicit[0], nil
	}
	if len(implicit) > 1 {
		return nil, wrongShape(in, spec, fmt.Sprintf(
			"conflicting `%s` fields found in `%s`; mark one with `#[error(%s)]`", key, subject, key))
	}
	if len(implicit) == 1 {
		return &implicit[0], nil
	}
	return nil, nil
}

// sourcePattern binds only the source field of a variant
func sourcePattern(v resolve.VariantData, source resolve.FieldData) string {
	if v.Fields.Style == ast.FieldsNamed {
		return fmt.Sprintf("%s { %s: source, .. }", v.Path, source.Name)
	}
	parts := ""
	for i := range v.Fields.All {
		if i > 0 {
			parts += ", "
		}
		if i == source.Index {
			parts += "source"
		} else {
			parts += "_"
		}
	}
	return v.Path + "(" + parts + ")"
}

// isBacktraceType reports whether ty is a path ending in a plain
// `Backtrace` segment
func isBacktraceType(ty ast.Type) bool {
	p, ok := ty.(*ast.PathType)
	if !ok || len(p.Segments) == 0 {
		return false
	}
	last := p.Segments[len(p.Segments)-1]
	return last.Ident == "Backtrace" && len(last.Args) == 0 && !last.Parenthesized
}

// optionInner returns T for a syntactic `Option<T>`
func optionInner(ty ast.Type) (ast.Type, bool) {
	if paren, ok := ty.(*ast.ParenType); ok {
		return optionInner(paren.Elem)
	}
	p, ok := ty.(*ast.PathType)
	if !ok || len(p.Segments) == 0 || p.QSelf != nil {
		return nil, false
	}
	last := p.Segments[len(p.Segments)-1]
	if last.Ident != "Option" || len(last.Args) == 0 {
		return nil, false
	}
	arg, ok := last.Args[0].(*ast.TypeArg)
	if !ok {
		return nil, false
	}
	return arg.Type, true
}

// typeParamsOnly narrows generics to the type parameters, which are the
// only ones a source bound is added for
func typeParamsOnly(g *ast.Generics) *ast.Generics {
	out := &ast.Generics{}
	if g == nil {
		return out
	}
	for _, p := range g.Params {
		if p.Kind == ast.TypeParam {
			out.Params = append(out.Params, p)
		}
	}
	return out
}
