package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// variantAccessor expands the inherent variant helpers: IsVariant,
// AsVariant, Unwrap, TryIntoVariant and TryUnwrap. All of them go into a
// single inherent impl on the enum.
type variantAccessor struct {
	kind Kind
	opts Options
}

// accessor is one receiver form of a variant helper
type accessor struct {
	suffix   string // method name suffix
	receiver string
	ref      string // reference prefix of the payload types
	noun     string // used in doc comments
}

var (
	ownedAccessor  = accessor{suffix: "", receiver: "self", ref: "", noun: "value"}
	refAccessor    = accessor{suffix: "_ref", receiver: "&self", ref: "&", noun: "reference"}
	refMutAccessor = accessor{suffix: "_mut", receiver: "&mut self", ref: "&mut ", noun: "mutable reference"}
)

func accessorsOf(set resolve.AccessorSet) []accessor {
	var out []accessor
	if set.Owned {
		out = append(out, ownedAccessor)
	}
	if set.Ref {
		out = append(out, refAccessor)
	}
	if set.RefMut {
		out = append(out, refMutAccessor)
	}
	return out
}

// payload is the destructured view of a tuple or unit variant
type payload struct {
	pattern string
	types   []string
	value   string
}

func payloadOf(v resolve.VariantData) payload {
	p := payload{pattern: v.Path, value: "()"}
	if v.Fields.Style != ast.FieldsUnnamed {
		return p
	}
	vars := make([]string, len(v.Fields.All))
	for i, f := range v.Fields.All {
		vars[i] = "__" + strconv.Itoa(i)
		p.types = append(p.types, f.Type.String())
	}
	p.pattern = v.Path + "(" + strings.Join(vars, ", ") + ")"
	switch len(vars) {
	case 0:
	case 1:
		p.value = vars[0]
	default:
		p.value = "(" + strings.Join(vars, ", ") + ")"
	}
	return p
}

// returnType renders the payload as seen through the accessor
func (p payload) returnType(a accessor) string {
	if len(p.types) == 0 {
		return "()"
	}
	return tupleOf(prefixed(a.ref, p.types))
}

func (s *variantAccessor) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireEnum(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	all, err := state.VariantsData()
	if err != nil {
		return nil, err
	}
	enabled, err := state.EnabledVariantsData()
	if err != nil {
		return nil, err
	}
	if s.kind != KindIsVariant {
		for _, v := range enabled {
			if v.Fields.Style == ast.FieldsNamed && len(v.Fields.All) > 0 {
				return nil, wrongShape(in, spec, fmt.Sprintf(
					"`%s` cannot destructure the named fields of `%s::%s`", spec.Name, in.Name, v.Name))
			}
		}
	}

	w := NewWriter()
	derivedImpl(w, state.Augmentation().InherentHeader(in.Name))
	first := true
	for _, v := range enabled {
		snake := attr.SnakeCase(v.Name)
		if s.kind == KindIsVariant {
			s.isVariant(w, &first, v, snake)
			continue
		}
		p := payloadOf(v)
		for _, a := range accessorsOf(v.Info.Accessors) {
			if !first {
				w.Line("")
			}
			first = false
			switch s.kind {
			case KindAsVariant:
				s.asVariant(w, in, v, p, a, snake)
			case KindUnwrap:
				s.unwrap(w, in, all, v, p, a, snake)
			case KindTryIntoVariant:
				s.tryIntoVariant(w, in, all, v, p, a, snake)
			case KindTryUnwrap:
				s.tryUnwrap(w, in, all, v, p, a, snake)
			}
		}
	}
	w.Close("")
	return newExpansion(spec, w), nil
}

func (s *variantAccessor) isVariant(w *Writer, first *bool, v resolve.VariantData, snake string) {
	if !*first {
		w.Line("")
	}
	*first = false
	w.Line("/// Returns `true` if this value is of type `%s`. Returns `false` otherwise", v.Name)
	w.Line("#[inline]")
	w.Line("#[must_use]")
	w.Block(fmt.Sprintf("pub const fn is_%s(&self) -> bool", snake), func() {
		w.Line("::core::matches!(self, %s)", restPattern(v.Path, v.Variant.Fields))
	})
}

func (s *variantAccessor) asVariant(w *Writer, in *ast.DeriveInput, v resolve.VariantData, p payload, a accessor, snake string) {
	w.Line("/// Attempts to convert this %s to the `%s::%s` variant.", a.noun, in.Name, v.Name)
	w.Line("/// Returns `Some(..)` if successful and `None` if this value is of any other type.")
	w.Line("#[inline]")
	w.Line("#[must_use]")
	w.Block(fmt.Sprintf("pub fn as_%s%s(%s) -> %s<%s>", snake, a.suffix, a.receiver, pathOption, p.returnType(a)), func() {
		w.Block("match self", func() {
			w.Line("%s => %s(%s),", p.pattern, pathSome, p.value)
			if len(in.Variants) > 1 {
				w.Line("_ => %s,", pathNone)
			}
		})
	})
}

func (s *variantAccessor) unwrap(w *Writer, in *ast.DeriveInput, all []resolve.VariantData, v resolve.VariantData, p payload, a accessor, snake string) {
	fn := fmt.Sprintf("unwrap_%s%s", snake, a.suffix)
	w.Line("/// Unwraps this %s to the `%s::%s` variant.", a.noun, in.Name, v.Name)
	w.Line("/// Panics if this value is of any other type.")
	w.Line("#[inline]")
	w.Line("#[track_caller]")
	w.Block(fmt.Sprintf("pub fn %s(%s) -> %s", fn, a.receiver, p.returnType(a)), func() {
		w.Block("match self", func() {
			w.Line("%s => %s,", p.pattern, p.value)
			for _, other := range all {
				if other.Name == v.Name {
					continue
				}
				w.Line("%s => ::core::panic!(%q),", restPattern(other.Path, other.Variant.Fields),
					fmt.Sprintf("called `%s::%s()` on a `%s` value", in.Name, fn, other.Name))
			}
		})
	})
}

func (s *variantAccessor) tryIntoVariant(w *Writer, in *ast.DeriveInput, all []resolve.VariantData, v resolve.VariantData, p payload, a accessor, snake string) {
	fn := fmt.Sprintf("try_into_%s%s", snake, a.suffix)
	w.Line("/// Attempts to convert this %s to the `%s::%s` variant.", a.noun, in.Name, v.Name)
	w.Line("/// Returns the original value if this value is of any other type.")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("pub fn %s(%s) -> %s<%s, %sSelf>", fn, a.receiver, pathResult, p.returnType(a), a.ref), func() {
		w.Block("match self", func() {
			w.Line("%s => %s(%s),", p.pattern, pathOk, p.value)
			if len(all) > 1 {
				w.Line("val => %s(val),", pathErr)
			}
		})
	})
}

func (s *variantAccessor) tryUnwrap(w *Writer, in *ast.DeriveInput, all []resolve.VariantData, v resolve.VariantData, p payload, a accessor, snake string) {
	fn := fmt.Sprintf("try_unwrap_%s%s", snake, a.suffix)
	tryUnwrapError := s.opts.runtimePath("TryUnwrapError")
	w.Line("/// Attempts to unwrap this %s to the `%s::%s` variant.", a.noun, in.Name, v.Name)
	w.Line("/// Returns a `TryUnwrapError` with the original value if this value is of any other type.")
	w.Line("#[inline]")
	w.Line("#[track_caller]")
	w.Block(fmt.Sprintf("pub fn %s(%s) -> %s<%s, %s<%sSelf>>",
		fn, a.receiver, pathResult, p.returnType(a), tryUnwrapError, a.ref), func() {
		w.Block("match self", func() {
			w.Line("%s => %s(%s),", p.pattern, pathOk, p.value)
			for _, other := range all {
				if other.Name == v.Name {
					continue
				}
				w.Line("val @ %s => %s(%s::new(val, %q, %q, %q)),",
					restPattern(other.Path, other.Variant.Fields), pathErr, tryUnwrapError,
					in.Name, other.Name, fn)
			}
		})
	})
}
