package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// forwardParam is the target parameter of forwarded reference conversions
const forwardParam = "__AsT"

// refConversion expands AsRef, AsMut, Borrow and BorrowMut. Every enabled
// field gets an impl targeting its own type; `forward` targets whatever
// the field converts to and `types(...)` lists the targets explicitly.
type refConversion struct {
	mutable bool
}

func (s *refConversion) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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

	container := state.Container()
	if len(container.Types) > 0 && len(data.Enabled) != 1 {
		return nil, wrongShape(in, spec, fmt.Sprintf(
			"`types(...)` on the struct requires exactly one enabled field, found %d", len(data.Enabled)))
	}

	ref, self := "&", "&self"
	if s.mutable {
		ref, self = "&mut ", "&mut self"
	}

	w := NewWriter()
	targets := make(map[string]string) // target -> field
	claim := func(target string, f resolve.FieldData) error {
		if prev, ok := targets[target]; ok {
			return wrongShape(in, spec, fmt.Sprintf(
				"fields `%s` and `%s` both convert to `%s`", prev, f.Name, target))
		}
		targets[target] = f.Name
		return nil
	}
	emit := func(header, target, expr string) {
		derivedImpl(w, header)
		w.Line("#[inline]")
		w.Block(fmt.Sprintf("fn %s(%s) -> %s%s", spec.Method, self, ref, target), func() {
			w.Line("%s", expr)
		})
		w.Close("")
	}

	for _, f := range data.Enabled {
		member := ref + f.Member
		fieldTy := f.Type.String()
		types := f.Info.Options.Types
		if len(types) == 0 {
			types = container.Types
		}

		switch {
		case f.Info.Forward:
			if len(data.Enabled) != 1 {
				return nil, wrongShape(in, spec, "`forward` requires exactly one enabled field")
			}
			aug := state.Augmentation()
			aug.AddParam(forwardParam + ": ?::core::marker::Sized")
			trait := fmt.Sprintf("%s<%s>", spec.Path, forwardParam)
			aug.AddRawPredicate(fieldTy + ": " + trait)
			emit(aug.Header(trait, in.Name), forwardParam,
				fmt.Sprintf("<%s as %s>::%s(%s)", fieldTy, trait, spec.Method, member))
		case len(types) > 0:
			for _, target := range types {
				if err := claim(target, f); err != nil {
					return nil, err
				}
				aug := state.Augmentation()
				trait := fmt.Sprintf("%s<%s>", spec.Path, target)
				expr := member
				if target != fieldTy {
					aug.AddRawPredicate(fieldTy + ": " + trait)
					expr = fmt.Sprintf("<%s as %s>::%s(%s)", fieldTy, trait, spec.Method, member)
				}
				emit(aug.Header(trait, in.Name), target, expr)
			}
		default:
			if err := claim(fieldTy, f); err != nil {
				return nil, err
			}
			emit(state.Augmentation().Header(fmt.Sprintf("%s<%s>", spec.Path, fieldTy), in.Name),
				fieldTy, member)
		}
	}
	return newExpansion(spec, w), nil
}
