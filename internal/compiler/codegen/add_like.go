package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// addLike expands Add, Sub, BitAnd, BitOr and BitXor. Structs combine the
// enabled fields of self and rhs pairwise; enums combine same-variant
// operands and return a BinaryError for unit or mismatched variants.
type addLike struct {
	opts Options
}

func (s *addLike) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	if in.IsEnum() {
		return s.expandEnum(state)
	}
	return s.expandStruct(state)
}

// fieldOutput is the bound making a field closed under the operator
func fieldOutput(traitPath string) func(ast.Type) string {
	return func(t ast.Type) string {
		return traitPath + "<Output = " + t.String() + ">"
	}
}

func (s *addLike) expandStruct(state *resolve.State) (*Expansion, error) {
	spec := state.Spec()
	if err := state.AssertFieldsEnabled(); err != nil {
		return nil, err
	}
	data, err := state.EnabledFieldsData()
	if err != nil {
		return nil, err
	}

	aug := state.Augmentation()
	self := state.SelfType()
	aug.AddFieldPredicates(data.Types(), self, fieldOutput(spec.Path))
	var skipped []ast.Type
	for _, f := range data.Skipped() {
		skipped = append(skipped, f.Type)
	}
	aug.AddFieldPredicates(skipped, self, func(ast.Type) string { return pathDefault })

	body := data.Construct("Self", func(f resolve.FieldData) string {
		if !f.Info.Enabled {
			return pathDefault + "::default()"
		}
		return fmt.Sprintf("%s::%s(%s, %s)", spec.Path, spec.Method, f.Member, f.MemberOf("rhs"))
	})

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, state.Input().Name))
	w.Line("type Output = Self;")
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s(self, rhs: Self) -> Self::Output", spec.Method), func() {
		w.Line("%s", body)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

func (s *addLike) expandEnum(state *resolve.State) (*Expansion, error) {
	spec := state.Spec()
	in := state.Input()
	variants, err := state.VariantsData()
	if err != nil {
		return nil, err
	}

	aug := state.Augmentation()
	self := state.SelfType()
	var types []ast.Type
	for _, v := range variants {
		if len(v.Fields.Skipped()) > 0 {
			return nil, wrongShape(in, spec, fmt.Sprintf(
				"`#[%s(skip)]` is only supported on struct fields, found one in variant `%s`",
				spec.AttrNames[0], v.Name))
		}
		types = append(types, v.Fields.Types()...)
	}
	aug.AddFieldPredicates(types, self, fieldOutput(spec.Path))

	binaryError := s.opts.runtimePath("ops::BinaryError")
	unitError := s.opts.runtimePath("ops::UnitError")
	wrongVariant := s.opts.runtimePath("ops::WrongVariantError")

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("type Output = %s<Self, %s>;", pathResult, binaryError)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s(self, rhs: Self) -> Self::Output", spec.Method), func() {
		if len(variants) == 0 {
			w.Line("match self {}")
			return
		}
		w.Block("match (self, rhs)", func() {
			for _, v := range variants {
				lhs := v.Fields.Pattern(v.Path, "self")
				rhs := v.Fields.Pattern(v.Path, "rhs")
				if v.Fields.IsUnit() {
					w.Line("(%s, %s) => %s(%s::Unit(%s::new(%q))),",
						lhs, rhs, pathErr, binaryError, unitError, spec.Method)
					continue
				}
				value := v.Fields.Construct(v.Path, func(f resolve.FieldData) string {
					return fmt.Sprintf("%s::%s(%s, %s)", spec.Path, spec.Method, f.Binding("self"), f.Binding("rhs"))
				})
				w.Line("(%s, %s) => %s(%s),", lhs, rhs, pathOk, value)
			}
			// a single-variant enum has no mismatched pair
			if len(variants) > 1 {
				w.Line("_ => %s(%s::Mismatch(%s::new(%q))),", pathErr, binaryError, wrongVariant, spec.Method)
			}
		})
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
