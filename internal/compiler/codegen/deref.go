package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

const (
	derefPath    = "::core::ops::Deref"
	derefMutPath = "::core::ops::DerefMut"
)

// deref expands Deref and DerefMut. The target is the single enabled
// field, or the field's own target when it is forwarded. Enum variants
// must all agree on the target.
type deref struct {
	mutable bool
}

// derefTarget is the target of one single-field projection
type derefTarget struct {
	field   resolve.SingleFieldData
	target  string
	display string
}

func targetOf(single resolve.SingleFieldData) derefTarget {
	ty := single.Field.Type.String()
	if single.Forward {
		return derefTarget{
			field:   single,
			target:  "<" + ty + " as " + derefPath + ">::Target",
			display: "forwarded target of `" + ty + "`",
		}
	}
	return derefTarget{field: single, target: ty, display: "`" + ty + "`"}
}

// project renders the expression reaching the target from a reference to
// the field
func (s *deref) project(ref string, t derefTarget) string {
	if !t.field.Forward {
		return ref
	}
	ty := t.field.Field.Type.String()
	if s.mutable {
		return fmt.Sprintf("<%s as %s>::deref_mut(%s)", ty, derefMutPath, ref)
	}
	return fmt.Sprintf("<%s as %s>::deref(%s)", ty, derefPath, ref)
}

func (s *deref) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	aug := state.Augmentation()
	forwardBound := derefPath
	if s.mutable {
		forwardBound = derefMutPath
	}

	var target derefTarget
	var arms []string
	if in.IsEnum() {
		variants, err := state.VariantsData()
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			return nil, wrongShape(in, spec, "enums without variants have nothing to dereference to")
		}
		for i, v := range variants {
			single, err := v.AssertSingleEnabledField()
			if err != nil {
				return nil, err
			}
			t := targetOf(single)
			if i == 0 {
				target = t
			} else if t.target != target.target {
				return nil, errors.NewNonUniformVariants(v.Variant.Loc, spec.Name, in.Name,
					"dereference target", target.display, t.display+" in `"+v.Name+"`")
			}
			if single.Forward {
				aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(),
					func(ast.Type) string { return forwardBound })
			}
			arms = append(arms, fmt.Sprintf("%s => %s,",
				v.Fields.PatternEnabled(v.Path, "self"), s.project(single.Field.Binding("self"), t)))
		}
	} else {
		single, err := state.AssertSingleEnabledField()
		if err != nil {
			return nil, err
		}
		target = targetOf(single)
		if single.Forward {
			aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(),
				func(ast.Type) string { return forwardBound })
		}
	}

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	if !s.mutable {
		w.Line("type Target = %s;", target.target)
		w.Line("")
	}
	w.Line("#[inline]")
	signature := "fn deref(&self) -> &Self::Target"
	ref := "&"
	if s.mutable {
		signature = "fn deref_mut(&mut self) -> &mut Self::Target"
		ref = "&mut "
	}
	w.Block(signature, func() {
		if !in.IsEnum() {
			w.Line("%s", s.project(ref+target.field.Field.Member, target))
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

// derefToInner expands DerefToInner and DerefMutToInner: the target is
// always the field type itself, never forwarded.
type derefToInner struct {
	mutable bool
}

func (s *derefToInner) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireStruct(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	single, err := state.AssertSingleEnabledField()
	if err != nil {
		return nil, err
	}

	w := NewWriter()
	derivedImpl(w, state.Augmentation().Header(spec.Path, in.Name))
	if s.mutable {
		w.Line("#[inline]")
		w.Block("fn deref_mut(&mut self) -> &mut Self::Target", func() {
			w.Line("&mut %s", single.Field.Member)
		})
	} else {
		w.Line("type Target = %s;", single.Field.Type.String())
		w.Line("")
		w.Line("#[inline]")
		w.Block("fn deref(&self) -> &Self::Target", func() {
			w.Line("&%s", single.Field.Member)
		})
	}
	w.Close("")
	return newExpansion(spec, w), nil
}
