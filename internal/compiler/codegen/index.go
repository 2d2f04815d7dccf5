package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// idxParam is the impl parameter standing for the index type
const idxParam = "__IdxT"

// index expands Index and IndexMut by forwarding to the single enabled
// field. On enums every variant must hold a field of the same type.
type index struct {
	mutable bool
}

func (s *index) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	var fieldTy ast.Type
	var arms []string
	casted := func(ty ast.Type) string {
		return fmt.Sprintf("<%s as %s<%s>>", ty.String(), spec.Path, idxParam)
	}
	call := func(ty ast.Type, ref string) string {
		return fmt.Sprintf("%s::%s(%s, idx)", casted(ty), spec.Method, ref)
	}

	if in.IsEnum() {
		variants, err := state.VariantsData()
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			return nil, wrongShape(in, spec, "enums without variants have nothing to index")
		}
		for i, v := range variants {
			single, err := v.AssertSingleEnabledField()
			if err != nil {
				return nil, err
			}
			if i == 0 {
				fieldTy = single.Field.Type
			} else if !ast.TypesEqual(fieldTy, single.Field.Type) {
				return nil, errors.NewNonUniformVariants(v.Variant.Loc, spec.Name, in.Name,
					"indexed field type", "`"+fieldTy.String()+"`",
					"`"+single.Field.Type.String()+"` in `"+v.Name+"`")
			}
			arms = append(arms, fmt.Sprintf("%s => %s,",
				v.Fields.PatternEnabled(v.Path, "self"), call(single.Field.Type, single.Field.Binding("self"))))
		}
	} else {
		single, err := state.AssertSingleEnabledField()
		if err != nil {
			return nil, err
		}
		fieldTy = single.Field.Type
		ref := "&" + single.Field.Member
		if s.mutable {
			ref = "&mut " + single.Field.Member
		}
		arms = []string{call(fieldTy, ref)}
	}

	aug := state.Augmentation()
	aug.AddParam(idxParam)
	aug.AddWherePredicate(fieldTy, spec.Path+"<"+idxParam+">")

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path+"<"+idxParam+">", in.Name))
	signature := fmt.Sprintf("fn index(&self, idx: %s) -> &Self::Output", idxParam)
	if s.mutable {
		signature = fmt.Sprintf("fn index_mut(&mut self, idx: %s) -> &mut Self::Output", idxParam)
	} else {
		w.Line("type Output = %s::Output;", casted(fieldTy))
		w.Line("")
	}
	w.Line("#[inline]")
	w.Block(signature, func() {
		if !in.IsEnum() {
			w.Line("%s", arms[0])
			return
		}
		w.Block("match self", func() {
			for _, arm := range arms {
				w.Line("%s", arm)
			}
		})
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
