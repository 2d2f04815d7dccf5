package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// expandFrom builds the declaration from the tuple of its enabled fields.
// Enums get one impl per enabled variant with a payload.
func expandFrom(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	w := NewWriter()

	if !in.IsEnum() {
		data, err := state.EnabledFieldsData()
		if err != nil {
			return nil, err
		}
		if err := fromImpls(w, state, in, spec, data, "Self", state.Container().Types); err != nil {
			return nil, err
		}
		return newExpansion(spec, w), nil
	}

	variants, err := state.EnabledVariantsData()
	if err != nil {
		return nil, err
	}
	// two variants with the same payload would give conflicting impls
	owner := make(map[string]string)
	for _, v := range variants {
		if len(v.Fields.Enabled) == 0 {
			continue
		}
		key := tupleOf(typeStrings(v.Fields.Types()))
		if prev, ok := owner[key]; ok {
			return nil, wrongShape(in, spec, fmt.Sprintf(
				"variants `%s` and `%s` both hold `%s`; skip one of them with `#[from(skip)]`",
				prev, v.Name, key))
		}
		owner[key] = v.Name
		if err := fromImpls(w, state, in, spec, v.Fields, v.Path, v.Info.Options.Types); err != nil {
			return nil, err
		}
	}
	return newExpansion(spec, w), nil
}

// fromImpls writes the From impl of one field list plus one impl per extra
// source type named in `types(...)`
func fromImpls(w *Writer, state *resolve.State, in *ast.DeriveInput, spec resolve.TraitSpec,
	data resolve.MultiFieldData, path string, extra []string) error {
	types := typeStrings(data.Types())
	source := tupleOf(types)
	if len(types) == 0 {
		source = "()"
	}

	aug := state.Augmentation()
	var skipped []ast.Type
	for _, f := range data.Skipped() {
		skipped = append(skipped, f.Type)
	}
	aug.AddFieldPredicates(skipped, state.SelfType(), func(ast.Type) string { return pathDefault })

	position := make(map[int]int, len(data.Enabled))
	for i, f := range data.Enabled {
		position[f.Index] = i
	}
	body := data.Construct(path, func(f resolve.FieldData) string {
		if !f.Info.Enabled {
			return pathDefault + "::default()"
		}
		if len(data.Enabled) == 1 {
			return "original"
		}
		return "original." + strconv.Itoa(position[f.Index])
	})
	writeFrom(w, aug.Header(fmt.Sprintf("%s<%s>", spec.Path, source), in.Name), source, body)

	if len(extra) == 0 {
		return nil
	}
	if len(data.Enabled) != 1 {
		return wrongShape(in, spec, fmt.Sprintf(
			"`types(...)` requires exactly one enabled field, found %d", len(data.Enabled)))
	}
	field := data.Enabled[0]
	for _, ty := range extra {
		extraAug := state.Augmentation()
		extraAug.AddFieldPredicates(skipped, state.SelfType(), func(ast.Type) string { return pathDefault })
		extraAug.AddRawPredicate(fmt.Sprintf("%s: %s<%s>", field.Type.String(), spec.Path, ty))
		body := data.Construct(path, func(f resolve.FieldData) string {
			if !f.Info.Enabled {
				return pathDefault + "::default()"
			}
			return fmt.Sprintf("<%s as %s<%s>>::from(original)", f.Type.String(), spec.Path, ty)
		})
		writeFrom(w, extraAug.Header(fmt.Sprintf("%s<%s>", spec.Path, ty), in.Name), ty, body)
	}
	return nil
}

func writeFrom(w *Writer, header, source, body string) {
	derivedImpl(w, header)
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn from(original: %s) -> Self", source), func() {
		w.Line("%s", body)
	})
	w.Close("")
}

// expandInto converts a struct into the tuple of its enabled fields, by
// value or by reference depending on the accessor keys
func expandInto(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireStruct(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	data, err := state.EnabledFieldsData()
	if err != nil {
		return nil, err
	}

	container := state.Container()
	owned, ref, refMut := container.Owned, container.Ref, container.RefMut
	if !container.Accessors {
		owned = true
	}
	self := state.SelfType().String()

	w := NewWriter()
	forms := []struct {
		on     bool
		prefix string
		access string
	}{
		{owned, "", ""},
		{ref, "&" + refLifetime + " ", "&"},
		{refMut, "&" + refLifetime + " mut ", "&mut "},
	}
	for _, form := range forms {
		if !form.on {
			continue
		}
		aug := state.Augmentation()
		if form.prefix != "" {
			aug.AddParam(refLifetime)
		}
		impl, _, where := aug.Split()

		targets := prefixed(form.prefix, typeStrings(data.Types()))
		target := tupleOf(targets)
		if len(targets) == 0 {
			target = "()"
		}
		values := make([]string, len(data.Enabled))
		for i, f := range data.Enabled {
			values[i] = form.access + f.MemberOf("original")
		}
		value := "(" + strings.Join(values, ", ") + ")"
		if len(values) == 1 {
			value = values[0]
		}

		source := form.prefix + self
		derivedImpl(w, implHeader(impl, fmt.Sprintf("%s<%s>", pathFrom, source), target, where))
		w.Line("#[inline]")
		w.Block(fmt.Sprintf("fn from(original: %s) -> Self", source), func() {
			w.Line("%s", value)
		})
		w.Close("")
	}

	extra := container.Types
	if len(extra) == 0 {
		return newExpansion(spec, w), nil
	}
	if len(data.Enabled) != 1 {
		return nil, wrongShape(in, spec, fmt.Sprintf(
			"`types(...)` requires exactly one enabled field, found %d", len(data.Enabled)))
	}
	field := data.Enabled[0]
	for _, ty := range extra {
		aug := state.Augmentation()
		aug.AddRawPredicate(fmt.Sprintf("%s: ::core::convert::Into<%s>", field.Type.String(), ty))
		impl, _, where := aug.Split()
		derivedImpl(w, implHeader(impl, fmt.Sprintf("%s<%s>", pathFrom, self), ty, where))
		w.Line("#[inline]")
		w.Block(fmt.Sprintf("fn from(original: %s) -> Self", self), func() {
			w.Line("::core::convert::Into::into(%s)", field.MemberOf("original"))
		})
		w.Close("")
	}
	return newExpansion(spec, w), nil
}
