package codegen

import (
	"fmt"
	"strconv"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// displayLike expands Display and the other single-method formatting
// traits (Binary, Octal, LowerHex, UpperHex, LowerExp, UpperExp, Pointer).
//
// A struct or variant is written with its #[display("...", args)] format
// when it has one. Without a format a unit is written as its name and a
// single field is formatted through the trait itself. On enums a
// container format is shared by every variant; its `{_variant}`
// placeholder stands for the variant's own output.
type displayLike struct {
	// placeholder formats a single field through the trait, e.g. "{:x}"
	placeholder string
}

// displayPlaceholders are the default placeholders per trait
var displayPlaceholders = map[Kind]string{
	KindDisplay:  "{}",
	KindBinary:   "{:b}",
	KindOctal:    "{:o}",
	KindLowerHex: "{:x}",
	KindUpperHex: "{:X}",
	KindLowerExp: "{:e}",
	KindUpperExp: "{:E}",
	KindPointer:  "{:p}",
}

func (s *displayLike) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	aug := state.Augmentation()
	body := NewWriter()

	if in.IsEnum() {
		err = s.expandEnum(state, aug, body)
	} else {
		err = s.expandStruct(state, aug, body)
	}
	if err != nil {
		return nil, err
	}
	return fmtImpl(spec, aug, in.Name, body), nil
}

// fmtImpl wraps a fmt body into the trait impl
func fmtImpl(spec resolve.TraitSpec, aug *bounds.Augmentation, name string, body *Writer) *Expansion {
	w := NewWriter()
	derivedImpl(w, aug.Header(spec.Path, name))
	w.Block(fmt.Sprintf("fn fmt(&self, %s: &mut ::core::fmt::Formatter<'_>) -> ::core::fmt::Result", formatterVar), func() {
		w.Lines(body.String())
	})
	w.Close("")
	return newExpansion(spec, w)
}

func (s *displayLike) expandStruct(state *resolve.State, aug *bounds.Augmentation, body *Writer) error {
	spec := state.Spec()
	in := state.Input()
	fields, err := state.EnabledFieldsData()
	if err != nil {
		return err
	}

	if f := state.Container().Format; f != nil {
		uses, err := formatUses(f, spec.AttrNames[0])
		if err != nil {
			return err
		}
		boundFormatUses(aug, state.SelfType(), fields, uses)
		used := bindingSet{}
		used.addFormat(f)
		for _, line := range letBindings(fields, used) {
			body.Line("%s", line)
		}
		body.Line("%s", writeCall(f))
		return nil
	}

	switch len(fields.All) {
	case 0:
		body.Line("%s.write_str(%s)", formatterVar, strconv.Quote(unraw(in.Name)))
	case 1:
		field := fields.All[0]
		aug.AddFieldPredicates([]ast.Type{field.Type}, state.SelfType(), func(ast.Type) string { return spec.Path })
		body.Line("%s::fmt(&%s, %s)", spec.Path, field.Member, formatterVar)
	default:
		return errors.NewMissingFormat(in.Loc, spec.Name, in.Name,
			fmt.Sprintf("it has %d fields", len(fields.All)))
	}
	return nil
}

func (s *displayLike) expandEnum(state *resolve.State, aug *bounds.Augmentation, body *Writer) error {
	spec := state.Spec()
	in := state.Input()
	variants, err := state.VariantsData()
	if err != nil {
		return err
	}
	if len(variants) == 0 {
		body.Line("match *self {}")
		return nil
	}

	shared := state.Container().Format
	var sharedUses []formatUse
	delegates := true
	if shared != nil {
		if sharedUses, err = formatUses(shared, spec.AttrNames[0]); err != nil {
			return err
		}
		delegates = false
		for _, u := range sharedUses {
			if u.Expr != variantPlaceholder {
				continue
			}
			if u.Trait != "Display" || u.Spec != "" {
				return errors.NewFormatString(shared.Loc, spec.AttrNames[0], shared.Lit,
					"the `_variant` placeholder cannot carry format specifiers")
			}
			delegates = true
		}
	}

	var failure error
	body.Block("match self", func() {
		for _, v := range variants {
			subject := in.Name + "::" + v.Name
			own := v.Info.Options.Format
			if own == nil && v.Fields.IsUnit() && spec.Name != KindDisplay.String() && delegates {
				failure = errors.NewMissingFormat(v.Variant.Loc, spec.Name, subject,
					"only `Display` writes unit variants by name")
				return
			}

			used := bindingSet{}
			used.addFormat(shared)
			if delegates {
				used.addFormat(own)
				if own == nil && len(v.Fields.All) == 1 {
					used[fieldBinding(v.Fields.All[0])] = true
				}
			}
			pattern := bindingPattern(v.Path, v.Fields, used)

			if shared != nil {
				boundFormatUses(aug, state.SelfType(), v.Fields, sharedUses)
			}
			if !delegates {
				body.Line("%s => %s,", pattern, writeCall(shared))
				continue
			}

			expr, err := s.variantOutput(state, aug, v, subject, shared != nil)
			if err != nil {
				failure = err
				return
			}
			if shared == nil {
				body.Line("%s => %s,", pattern, expr)
				continue
			}
			body.Open("%s => match %s", pattern, expr)
			body.Line("%s => %s,", variantPlaceholder, writeCall(shared))
			body.Close(",")
		}
	})
	return failure
}

// variantOutput renders what one variant writes. Inside a shared format it
// is a value bound to `_variant`; otherwise it is the write itself.
func (s *displayLike) variantOutput(state *resolve.State, aug *bounds.Augmentation, v resolve.VariantData, subject string, inShared bool) (string, error) {
	spec := state.Spec()
	if f := v.Info.Options.Format; f != nil {
		uses, err := formatUses(f, spec.AttrNames[0])
		if err != nil {
			return "", err
		}
		boundFormatUses(aug, state.SelfType(), v.Fields, uses)
		if inShared {
			return formatArgsCall(f), nil
		}
		return writeCall(f), nil
	}

	switch len(v.Fields.All) {
	case 0:
		name := strconv.Quote(unraw(v.Name))
		if inShared {
			return name, nil
		}
		return fmt.Sprintf("%s.write_str(%s)", formatterVar, name), nil
	case 1:
		field := v.Fields.All[0]
		aug.AddFieldPredicates([]ast.Type{field.Type}, state.SelfType(), func(ast.Type) string { return spec.Path })
		if inShared {
			return fmt.Sprintf("&::core::format_args!(%q, %s)", s.placeholder, fieldBinding(field)), nil
		}
		return fmt.Sprintf("%s::fmt(%s, %s)", spec.Path, fieldBinding(field), formatterVar), nil
	default:
		return "", errors.NewMissingFormat(v.Variant.Loc, spec.Name, subject,
			fmt.Sprintf("it has %d fields", len(v.Fields.All)))
	}
}

// formatParams are the keys of the Display-like traits
var formatParams = attr.Params{
	Enum:    []string{attr.KeyFormat},
	Variant: []string{attr.KeyFormat},
	Struct:  []string{attr.KeyFormat},
}
