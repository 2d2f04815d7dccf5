package codegen

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// fromStr expands FromStr. A single-field struct parses through its field;
// an enum of unit variants matches the variant names case-insensitively,
// or exactly when `rename_all` is given.
type fromStr struct {
	opts Options
}

func (s *fromStr) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	if in.IsEnum() {
		return s.expandEnum(state)
	}
	return s.expandStruct(state)
}

func (s *fromStr) expandStruct(state *resolve.State) (*Expansion, error) {
	spec := state.Spec()
	in := state.Input()
	single, err := state.AssertSingleEnabledField()
	if err != nil {
		return nil, err
	}
	aug := state.Augmentation()
	aug.AddFieldPredicates([]ast.Type{single.Field.Type}, state.SelfType(),
		func(ast.Type) string { return spec.Path })

	data, err := state.EnabledFieldsData()
	if err != nil {
		return nil, err
	}
	// fields cannot be skipped, so the parsed value is the only field
	ctor := data.Construct("Self", func(resolve.FieldData) string { return "v" })

	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, in.Name))
	w.Line("type Err = %s::Err;", single.CastedTrait)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn from_str(s: &str) -> %s<Self, Self::Err>", pathResult), func() {
		w.Line("%s::from_str(s).map(|v| %s)", single.CastedTrait, ctor)
	})
	w.Close("")
	return newExpansion(spec, w), nil
}

// literalArm is one match arm of the enum parser
type literalArm struct {
	literal string
	guard   string // exact spelling required when the literal is shared
	variant string
}

func (s *fromStr) expandEnum(state *resolve.State) (*Expansion, error) {
	spec := state.Spec()
	in := state.Input()
	variants, err := state.EnabledVariantsData()
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		if !v.Fields.IsUnit() {
			return nil, wrongShape(in, spec, fmt.Sprintf(
				"only enums with unit variants can derive `FromStr`, but `%s::%s` has fields", in.Name, v.Name))
		}
	}

	renameAll := state.Container().RenameAll
	var arms []literalArm
	var warnings []*errors.CompilerError
	if renameAll != attr.CaseNone {
		// first spelling wins; later variants with the same literal are unreachable
		seen := linkedhashmap.New() // literal -> variant
		for _, v := range variants {
			lit := renameAll.Apply(v.Name)
			if kept, ok := seen.Get(lit); ok {
				warnings = append(warnings, errors.NewDuplicateLiteral(v.Variant.Loc,
					in.Name, lit, kept.(string), v.Name).WithSubject(spec.Name, in.Name))
				continue
			}
			seen.Put(lit, v.Name)
		}
		it := seen.Iterator()
		for it.Next() {
			arms = append(arms, literalArm{literal: it.Key().(string), variant: it.Value().(string)})
		}
	} else {
		groups := linkedhashmap.New() // lowercase literal -> []variant
		for _, v := range variants {
			lit := strings.ToLower(v.Name)
			var names []string
			if prev, ok := groups.Get(lit); ok {
				names = prev.([]string)
			}
			groups.Put(lit, append(names, v.Name))
		}
		it := groups.Iterator()
		for it.Next() {
			lit := it.Key().(string)
			names := it.Value().([]string)
			if len(names) == 1 {
				arms = append(arms, literalArm{literal: lit, variant: names[0]})
				continue
			}
			for _, name := range names {
				arms = append(arms, literalArm{literal: lit, guard: name, variant: name})
			}
		}
	}

	fromStrError := s.opts.runtimePath("FromStrError")
	scrutinee := "s.to_lowercase().as_str()"
	if renameAll != attr.CaseNone {
		scrutinee = "s"
	}

	w := NewWriter()
	derivedImpl(w, state.Augmentation().Header(spec.Path, in.Name))
	w.Line("type Err = %s;", fromStrError)
	w.Line("")
	w.Line("#[inline]")
	w.Block(fmt.Sprintf("fn from_str(s: &str) -> %s<Self, Self::Err>", pathResult), func() {
		w.Block("match "+scrutinee, func() {
			for _, arm := range arms {
				if arm.guard != "" {
					w.Line("%q if s == %q => %s(Self::%s),", arm.literal, arm.guard, pathOk, arm.variant)
					continue
				}
				w.Line("%q => %s(Self::%s),", arm.literal, pathOk, arm.variant)
			}
			w.Line("_ => %s(%s::new(%q)),", pathErr, fromStrError, in.Name)
		})
	})
	w.Close("")

	exp := newExpansion(spec, w)
	exp.Warnings = warnings
	return exp, nil
}
