package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// assignLike expands the compound assignment traits. The add-like family
// takes Self as rhs; the scalar family takes any __RhsT every field accepts.
type assignLike struct {
	scalar bool
}

func (s *assignLike) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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
	traitPath, rhsType := spec.Path, "Self"
	if s.scalar {
		aug.AddParam(rhsParam)
		addScalarPredicates(aug, data, spec.Path, false)
		traitPath, rhsType = spec.Path+"<"+rhsParam+">", rhsParam
	} else {
		aug.AddFieldPredicates(data.Types(), state.SelfType(), func(ast.Type) string { return spec.Path })
	}

	w := NewWriter()
	derivedImpl(w, aug.Header(traitPath, in.Name))
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn %s(&mut self, rhs: %s)", spec.Method, rhsType), func() {
		for _, f := range data.Enabled {
			operand := "rhs"
			if !s.scalar {
				operand = f.MemberOf("rhs")
			}
			w.Line("%s::%s(&mut %s, %s);", spec.Path, spec.Method, f.Member, operand)
		}
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
