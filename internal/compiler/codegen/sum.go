package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// expandSum expands Sum and Product by folding the iterator with Add or
// Mul, starting from the fieldwise identity of an empty iterator
func expandSum(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireStruct(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	if err := state.AssertFieldsEnabled(); err != nil {
		return nil, err
	}
	data, err := state.EnabledFieldsData()
	if err != nil {
		return nil, err
	}

	opPath := "::core::ops::Add"
	opMethod := "add"
	if spec.Name == KindProduct.String() {
		opPath = "::core::ops::Mul"
		opMethod = "mul"
	}

	aug := state.Augmentation()
	self := state.SelfType()
	aug.AddFieldPredicates(data.Types(), self, func(ast.Type) string { return spec.Path })
	if len(in.Generics.TypeParamNames()) > 0 {
		aug.AddWherePredicate(self, fmt.Sprintf("%s<Output = %s>", opPath, self.String()))
	}

	identity := data.Construct("Self", func(f resolve.FieldData) string {
		return fmt.Sprintf("::core::iter::empty::<%s>().%s()", f.Type.String(), spec.Method)
	})

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s<I: ::core::iter::Iterator<Item = Self>>(iter: I) -> Self", spec.Method), func() {
		w.Line("iter.fold(%s, %s::%s)", identity, opPath, opMethod)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
