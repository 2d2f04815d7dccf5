package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// expandDefault builds every field from its own Default. An enum defaults
// to its one enabled variant: the variant marked #[default], or the only
// variant left once the others are ignored.
func expandDefault(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}

	var path string
	var fields resolve.MultiFieldData
	if in.IsEnum() {
		variants, err := state.EnabledVariantsData()
		if err != nil {
			return nil, err
		}
		switch len(variants) {
		case 1:
		case 0:
			if len(in.Variants) == 0 {
				return nil, wrongShape(in, spec, "an enum without variants has no default value")
			}
			return nil, wrongShape(in, spec, "every variant is ignored")
		default:
			names := make([]string, len(variants))
			for i, v := range variants {
				names[i] = "`" + v.Name + "`"
			}
			return nil, wrongShape(in, spec, fmt.Sprintf(
				"%d variants could be the default (%s); mark one with #[default]",
				len(variants), strings.Join(names, ", ")))
		}
		path = variants[0].Path
		fields = variants[0].Fields
	} else {
		if fields, err = state.EnabledFieldsData(); err != nil {
			return nil, err
		}
		path = "Self"
	}

	aug := state.Augmentation()
	types := make([]ast.Type, len(fields.All))
	for i, f := range fields.All {
		types[i] = f.Type
	}
	aug.AddFieldPredicates(types, state.SelfType(), func(ast.Type) string { return spec.Path })

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("#[inline]")
	w.Block("fn default() -> Self", func() {
		w.Line("%s", fields.Construct(path, func(resolve.FieldData) string {
			return spec.Path + "::default()"
		}))
	})
	w.Close("")
	return newExpansion(spec, w), nil
}
