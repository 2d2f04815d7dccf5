package codegen

import (
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// expandConstructor emits an inherent `new` taking every field in
// declaration order
func expandConstructor(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
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

	params := make([]string, len(data.All))
	for i, f := range data.All {
		params[i] = argName(f) + ": " + f.Type.String()
	}
	body := data.Construct("Self", argName)
	if data.Style == ast.FieldsNamed && len(data.All) > 0 {
		// field init shorthand
		names := make([]string, len(data.All))
		for i, f := range data.All {
			names[i] = f.Name
		}
		body = "Self { " + strings.Join(names, ", ") + " }"
	}

	w := NewWriter()
	derivedImpl(w, state.Augmentation().InherentHeader(in.Name))
	w.Line("#[inline]")
	w.Block("pub const fn new("+strings.Join(params, ", ")+") -> Self", func() {
		w.Line("%s", body)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// argName is the parameter carrying a field: its name, or `__N` for tuple
// fields
func argName(f resolve.FieldData) string {
	if f.Field.IsNamed() {
		return f.Name
	}
	return "__" + f.Name
}
