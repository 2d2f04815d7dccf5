package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// rhsParam is the impl parameter standing for the scalar operand
const rhsParam = "__RhsT"

// mulLike expands Mul, Div, Rem, Shl and Shr: every enabled field is
// combined with the same scalar rhs. Skipped fields are kept as they are.
type mulLike struct{}

func (s *mulLike) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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

	aug := state.Augmentation()
	aug.AddParam(rhsParam)
	addScalarPredicates(aug, data, spec.Path, true)

	body := data.Construct("Self", func(f resolve.FieldData) string {
		if !f.Info.Enabled {
			return f.Member
		}
		return fmt.Sprintf("%s::%s(%s, rhs)", spec.Path, spec.Method, f.Member)
	})

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path+"<"+rhsParam+">", in.Name))
	w.Line("type Output = Self;")
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s(self, rhs: %s) -> Self::Output", spec.Method, rhsParam), func() {
		w.Line("%s", body)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// addScalarPredicates bounds every distinct enabled field type by the
// scalar operator. rhs is copied into each field, so more than one field
// needs it to be Copy.
func addScalarPredicates(aug *bounds.Augmentation, data resolve.MultiFieldData, traitPath string, closed bool) {
	for _, t := range bounds.DistinctTypes(data.Types()) {
		if closed {
			aug.AddWherePredicate(t, fmt.Sprintf("%s<%s, Output = %s>", traitPath, rhsParam, t.String()))
		} else {
			aug.AddWherePredicate(t, fmt.Sprintf("%s<%s>", traitPath, rhsParam))
		}
	}
	if len(data.Enabled) > 1 {
		aug.AddTypeParamBound(rhsParam, pathCopy)
	}
}
