package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// equality expands PartialEq, comparing the enabled fields in declaration
// order, and the Eq marker. Skipped fields take no part in either.
type equality struct {
	marker bool
}

func (s *equality) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	var types []ast.Type
	var variants []resolve.VariantData
	var fields resolve.MultiFieldData
	if in.IsEnum() {
		if variants, err = state.VariantsData(); err != nil {
			return nil, err
		}
		for _, v := range variants {
			types = append(types, v.Fields.Types()...)
		}
	} else {
		if fields, err = state.EnabledFieldsData(); err != nil {
			return nil, err
		}
		types = fields.Types()
	}

	aug := state.Augmentation()
	aug.AddFieldPredicates(types, state.SelfType(), func(ast.Type) string { return spec.Path })

	w := NewWriter()
	if s.marker {
		w.Line("#[automatically_derived]")
		w.Line("%s {}", aug.Header(spec.Path, in.Name))
		return newExpansion(spec, w), nil
	}

	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("#[inline]")
	w.Block("fn eq(&self, other: &Self) -> bool", func() {
		if !in.IsEnum() {
			w.Line("%s", compareFields(fields, func(f resolve.FieldData) (string, string) {
				return f.Member, f.MemberOf("other")
			}))
			return
		}
		if len(variants) == 0 {
			w.Line("match *self {}")
			return
		}
		w.Block("match (self, other)", func() {
			for _, v := range variants {
				w.Line("(%s, %s) => %s,",
					v.Fields.PatternEnabled(v.Path, "self"),
					v.Fields.PatternEnabled(v.Path, "other"),
					compareFields(v.Fields, func(f resolve.FieldData) (string, string) {
						return f.Binding("self"), f.Binding("other")
					}))
			}
			if len(variants) > 1 {
				w.Line("_ => false,")
			}
		})
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// compareFields renders `a == b && ...` over the enabled fields, or `true`
// when there are none
func compareFields(fields resolve.MultiFieldData, operands func(resolve.FieldData) (string, string)) string {
	if len(fields.Enabled) == 0 {
		return "true"
	}
	parts := make([]string, len(fields.Enabled))
	for i, f := range fields.Enabled {
		lhs, rhs := operands(f)
		parts[i] = fmt.Sprintf("%s == %s", lhs, rhs)
	}
	return strings.Join(parts, " && ")
}
