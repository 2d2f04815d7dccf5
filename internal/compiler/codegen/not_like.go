package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// notLike expands Neg and Not. Enums with a unit variant return a Result
// whose error names the operation.
type notLike struct {
	opts Options
}

func (s *notLike) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	aug := state.Augmentation()
	self := state.SelfType()
	apply := func(expr string) string {
		return fmt.Sprintf("%s::%s(%s)", spec.Path, spec.Method, expr)
	}

	w := NewWriter()
	if !in.IsEnum() {
		if err := state.AssertFieldsEnabled(); err != nil {
			return nil, err
		}
		data, err := state.EnabledFieldsData()
		if err != nil {
			return nil, err
		}
		aug.AddFieldPredicates(data.Types(), self, fieldOutput(spec.Path))

		derivedImpl(w, aug.Header(spec.Path, in.Name))
		w.Line("type Output = Self;")
		w.Line("")
		w.Line("#[inline]")
		w.Block(fmt.Sprintf("fn %s(self) -> Self::Output", spec.Method), func() {
			w.Line("%s", data.Construct("Self", func(f resolve.FieldData) string {
				return apply(f.Member)
			}))
		})
		w.Close("")
		return newExpansion(spec, w), nil
	}

	variants, err := state.VariantsData()
	if err != nil {
		return nil, err
	}
	hasUnit := false
	var types []ast.Type
	for _, v := range variants {
		hasUnit = hasUnit || v.Fields.IsUnit()
		types = append(types, v.Fields.Types()...)
	}
	aug.AddFieldPredicates(types, self, fieldOutput(spec.Path))

	unitError := s.opts.runtimePath("ops::UnitError")
	output := "Self"
	if hasUnit {
		output = fmt.Sprintf("%s<Self, %s>", pathResult, unitError)
	}

	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("type Output = %s;", output)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s(self) -> Self::Output", spec.Method), func() {
		w.Block("match self", func() {
			for _, v := range variants {
				pattern := v.Fields.Pattern(v.Path, "self")
				if v.Fields.IsUnit() {
					w.Line("%s => %s(%s::new(%q)),", pattern, pathErr, unitError, spec.Method)
					continue
				}
				value := v.Fields.Construct(v.Path, func(f resolve.FieldData) string {
					return apply(f.Binding("self"))
				})
				if hasUnit {
					value = pathOk + "(" + value + ")"
				}
				w.Line("%s => %s,", pattern, value)
			}
		})
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
