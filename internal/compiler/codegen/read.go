package codegen

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// expandRead forwards std::io::Read to the single enabled field of the
// struct, or of each enum variant
func expandRead(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	aug := state.Augmentation()
	readBound := func(ast.Type) string { return spec.Path }
	read := func(ty ast.Type, readable string) string {
		return fmt.Sprintf("<%s as %s>::read(%s, buf)", ty.String(), spec.Path, readable)
	}

	var body []string
	if in.IsEnum() {
		variants, err := state.VariantsData()
		if err != nil {
			return nil, err
		}
		body = append(body, "match self {")
		for _, v := range variants {
			single, err := v.AssertSingleEnabledField()
			if err != nil {
				return nil, err
			}
			aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(), readBound)
			body = append(body, fmt.Sprintf("%s%s => %s,", indentUnit,
				v.Fields.PatternEnabled(v.Path, "self"), read(single.Field.Type, single.Field.Binding("self"))))
		}
		body = append(body, "}")
	} else {
		single, err := state.AssertSingleEnabledField()
		if err != nil {
			return nil, err
		}
		aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(), readBound)
		body = append(body, read(single.Field.Type, "&mut "+single.Field.Member))
	}

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("#[inline]")
	w.Block("fn read(&mut self, buf: &mut [u8]) -> ::std::io::Result<usize>", func() {
		for _, line := range body {
			w.Line("%s", line)
		}
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
