package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// refLifetime is the impl lifetime of by-reference conversions
const refLifetime = "'__derive"

// expandIterator forwards Iterator::next to the single enabled field
func expandIterator(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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

	aug := state.Augmentation()
	aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(),
		func(ast.Type) string { return spec.Path })

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("type Item = %s::Item;", single.CastedTrait)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn next(&mut self) -> %s<Self::Item>", pathOption), func() {
		w.Line("%s::next(&mut %s)", single.CastedTrait, single.Field.Member)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// expandIntoIterator forwards IntoIterator to the single enabled field for
// the owned value and, on request, for `&Self` and `&mut Self`
func expandIntoIterator(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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

	set := resolve.AccessorSet{Owned: true}
	container := state.Container()
	switch opts := single.Field.Info.Options; {
	case opts.Accessors:
		set = resolve.AccessorSet{Owned: opts.Owned, Ref: opts.Ref, RefMut: opts.RefMut}
	case container.Accessors:
		set = resolve.AccessorSet{Owned: container.Owned, Ref: container.Ref, RefMut: container.RefMut}
	}

	w := NewWriter()
	forms := []struct {
		enabled bool
		ref     string // reference type prefix
		borrow  string // borrow operator on the member
	}{
		{set.Owned, "", ""},
		{set.Ref, "&" + refLifetime + " ", "&"},
		{set.RefMut, "&" + refLifetime + " mut ", "&mut "},
	}
	for _, form := range forms {
		if !form.enabled {
			continue
		}

		aug := state.Augmentation()
		fieldTy := form.ref + single.Field.Type.String()
		casted := fmt.Sprintf("<%s as %s>", fieldTy, spec.Path)
		member := form.borrow + single.Field.Member
		if form.ref != "" {
			aug.AddParam(refLifetime)
		}
		if bounds.MentionsGeneric(single.Field.Type, in.Generics) &&
			!bounds.ContainsStructurally(single.Field.Type, state.SelfType()) {
			aug.AddRawPredicate(fieldTy + ": " + spec.Path)
		}

		derivedImpl(w, aug.Header(spec.Path, form.ref+in.Name))
		w.Line("type Item = %s::Item;", casted)
		w.Line("type IntoIter = %s::IntoIter;", casted)
		w.Line("")
		w.Line("#[inline]")
		w.Block("fn into_iter(self) -> Self::IntoIter", func() {
			w.Line("%s::into_iter(%s)", casted, member)
		})
		w.Close("")
	}
	return newExpansion(spec, w), nil
}
