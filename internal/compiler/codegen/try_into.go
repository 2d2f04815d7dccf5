package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// tryInto expands TryInto on enums as `TryFrom<Enum> for (payload)`. One
// impl is generated per distinct payload and accessor form; every variant
// holding that payload converts.
type tryInto struct {
	opts Options
}

// payloadKey identifies one impl: the accessor form and the payload types
type payloadKey struct {
	form  int
	types string
}

// accessorForm is one of owned, `&` and `&mut`
type accessorForm struct {
	ref string // reference type prefix including the lifetime
}

var accessorForms = []accessorForm{
	{ref: ""},
	{ref: "&" + refLifetime + " "},
	{ref: "&" + refLifetime + " mut "},
}

func (s *tryInto) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	if err := requireEnum(in, spec); err != nil {
		return nil, err
	}
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	variants, err := state.EnabledVariantsData()
	if err != nil {
		return nil, err
	}

	groups := linkedhashmap.New() // payloadKey -> []resolve.VariantData
	for _, v := range variants {
		key := strings.Join(typeStrings(v.Fields.Types()), ", ")
		on := []bool{v.Info.Accessors.Owned, v.Info.Accessors.Ref, v.Info.Accessors.RefMut}
		for form, enabled := range on {
			if !enabled {
				continue
			}
			k := payloadKey{form: form, types: key}
			var members []resolve.VariantData
			if prev, ok := groups.Get(k); ok {
				members = prev.([]resolve.VariantData)
			}
			groups.Put(k, append(members, v))
		}
	}

	w := NewWriter()
	it := groups.Iterator()
	for it.Next() {
		key := it.Key().(payloadKey)
		members := it.Value().([]resolve.VariantData)
		s.writeImpl(w, state, spec, accessorForms[key.form], members)
	}
	return newExpansion(spec, w), nil
}

func (s *tryInto) writeImpl(w *Writer, state *resolve.State, spec resolve.TraitSpec,
	form accessorForm, members []resolve.VariantData) {
	in := state.Input()
	first := members[0].Fields
	types := typeStrings(first.Types())

	aug := state.Augmentation()
	if form.ref != "" {
		aug.AddParam(refLifetime)
	}
	impl, _, where := aug.Split()

	source := form.ref + state.SelfType().String()
	targets := prefixed(form.ref, types)
	target := "(" + strings.Join(targets, ", ") + ")"
	if len(targets) == 1 {
		target = targets[0]
	}
	vars := make([]string, len(types))
	for i := range vars {
		vars[i] = "__" + strconv.Itoa(i)
	}
	value := "(" + strings.Join(vars, ", ") + ")"
	if len(vars) == 1 {
		value = vars[0]
	}

	// `Self` is the payload inside these impls, so patterns name the enum
	patterns := make([]string, len(members))
	names := make([]string, len(members))
	for i, v := range members {
		patterns[i] = payloadPattern(v, in.Name+"::"+v.Name)
		names[i] = v.Name
	}
	output := strings.Join(types, ", ")
	if len(types) != 1 {
		output = "(" + output + ")"
	}

	defaultError := fmt.Sprintf("%s<%s>", s.opts.runtimePath("TryIntoError"), source)
	errType, fail := customError(state.Container().Error, defaultError,
		fmt.Sprintf("%s::new(value, %q, %q)", s.opts.runtimePath("TryIntoError"),
			strings.Join(names, ", "), output))

	derivedImpl(w, implHeader(impl, fmt.Sprintf("%s<%s>", spec.Path, source), target, where))
	w.Line("type Error = %s;", errType)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn try_from(value: %s) -> %s<Self, Self::Error>", source, pathResult), func() {
		w.Block("match value", func() {
			w.Line("%s => %s(%s),", strings.Join(patterns, " | "), pathOk, value)
			w.Line("_ => %s(%s),", pathErr, fail)
		})
	})
	w.Close("")
}

// payloadPattern binds the enabled fields of a variant to `__0`, `__1`, ...
// in order and ignores the rest
func payloadPattern(v resolve.VariantData, path string) string {
	n := 0
	bind := func(f resolve.FieldData) string {
		if !f.Info.Enabled {
			return "_"
		}
		name := "__" + strconv.Itoa(n)
		n++
		return name
	}
	switch v.Fields.Style {
	case ast.FieldsUnnamed:
		parts := make([]string, len(v.Fields.All))
		for i, f := range v.Fields.All {
			parts[i] = bind(f)
		}
		return path + "(" + strings.Join(parts, ", ") + ")"
	case ast.FieldsNamed:
		var parts []string
		for _, f := range v.Fields.All {
			if f.Info.Enabled {
				parts = append(parts, f.Name+": "+bind(f))
			}
		}
		if len(v.Fields.Enabled) < len(v.Fields.All) {
			parts = append(parts, "..")
		}
		return path + " { " + strings.Join(parts, ", ") + " }"
	default:
		return path
	}
}
