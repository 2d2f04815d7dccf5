package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// defaultRepr is the discriminant type of an enum without #[repr]
const defaultRepr = "isize"

// tryFromRepr expands TryFrom from the integer representation of an enum
// to its fieldless variants
type tryFromRepr struct {
	opts Options
}

// discriminant is the computed discriminant of one fieldless variant
type discriminant struct {
	constName string
	value     string
	ctor      string
}

// discriminants numbers the variants the way rustc does: each variant is
// the last explicit discriminant plus its distance from it. Variants with
// a payload consume a number but cannot be converted to.
func discriminants(variants []*ast.Variant) []discriminant {
	last := "0"
	inc := 0
	var out []discriminant
	for _, v := range variants {
		if v.Discriminant != "" {
			last = strings.TrimSpace(v.Discriminant)
			inc = 0
		}
		if v.Fields.Len() == 0 {
			ctor := "Self::" + v.Ident
			if v.Fields != nil {
				switch v.Fields.Style {
				case ast.FieldsUnnamed:
					ctor += "()"
				case ast.FieldsNamed:
					ctor += " {}"
				}
			}
			out = append(out, discriminant{
				constName: "__DISCRIMINANT_" + v.Ident,
				value:     fmt.Sprintf("(%s) + %d", last, inc),
				ctor:      ctor,
			})
		}
		inc++
	}
	return out
}

func (s *tryFromRepr) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireEnum(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	repr := ast.ReprInt(in.Attrs)
	if repr == "" {
		repr = defaultRepr
	}
	reprError := fmt.Sprintf("%s<%s>", s.opts.runtimePath("TryFromReprError"), repr)
	errType, fail := customError(state.Container().Error, reprError,
		fmt.Sprintf("%s::new(value)", s.opts.runtimePath("TryFromReprError")))

	w := NewWriter()
	derivedImpl(w, state.Augmentation().Header(fmt.Sprintf("%s<%s>", spec.Path, repr), in.Name))
	w.Line("type Error = %s;", errType)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn try_from(value: %s) -> %s<Self, Self::Error>", repr, pathResult), func() {
		discs := discriminants(in.Variants)
		for _, d := range discs {
			w.Line("#[allow(non_upper_case_globals)]")
			w.Line("const %s: %s = %s;", d.constName, repr, d.value)
		}
		w.Block("match value", func() {
			for _, d := range discs {
				w.Line("%s => %s(%s),", d.constName, pathOk, d.ctor)
			}
			w.Line("_ => %s(%s),", pathErr, fail)
		})
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// customError resolves the error type and failure expression of a
// conversion given the `error(Type, conv)` key. Without a conversion
// function the custom type must implement From for the default error.
func customError(custom *attr.CustomError, defaultType, defaultValue string) (errType, fail string) {
	if custom == nil {
		return defaultType, defaultValue
	}
	if custom.Conv != "" {
		return custom.Type, fmt.Sprintf("%s(%s)", custom.Conv, defaultValue)
	}
	return custom.Type, fmt.Sprintf("%s::from(%s)", pathFrom, defaultValue)
}
