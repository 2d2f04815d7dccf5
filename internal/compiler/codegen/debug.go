package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// debugParams are the keys of #[debug(...)]. A format string replaces the
// whole output of a struct or variant, or the value of one field.
var debugParams = attr.Params{
	Variant: []string{attr.KeyFormat},
	Struct:  []string{attr.KeyFormat},
	Field:   append([]string{attr.KeyFormat}, skipKeys...),
}

// expandDebug writes structs and variants the way the builtin derive does,
// through debug_struct and debug_tuple. Skipped fields are left out and
// mark the output non-exhaustive.
func expandDebug(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	state, err := resolve.New(in, spec)
	if err != nil {
		return nil, err
	}
	aug := state.Augmentation()
	self := state.SelfType()
	body := NewWriter()

	if !in.IsEnum() {
		fields, err := state.EnabledFieldsData()
		if err != nil {
			return nil, err
		}
		own := state.Container().Format
		if err := checkFieldFormats(state, in.Name, own, fields); err != nil {
			return nil, err
		}
		used := debugBindings(own, fields)
		for _, line := range letBindings(fields, used) {
			body.Line("%s", line)
		}
		out, err := debugOutput(spec, aug, self, unraw(in.Name), own, fields)
		if err != nil {
			return nil, err
		}
		body.Lines(out)
		return fmtImpl(spec, aug, in.Name, body), nil
	}

	variants, err := state.VariantsData()
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		body.Line("match *self {}")
		return fmtImpl(spec, aug, in.Name, body), nil
	}

	var failure error
	body.Block("match self", func() {
		for _, v := range variants {
			own := v.Info.Options.Format
			if err := checkFieldFormats(state, in.Name+"::"+v.Name, own, v.Fields); err != nil {
				failure = err
				return
			}
			out, err := debugOutput(spec, aug, self, unraw(v.Name), own, v.Fields)
			if err != nil {
				failure = err
				return
			}
			pattern := bindingPattern(v.Path, v.Fields, debugBindings(own, v.Fields))
			lines := strings.Split(out, "\n")
			if len(lines) == 1 {
				body.Line("%s => %s,", pattern, out)
				continue
			}
			body.Open("%s =>", pattern)
			body.Lines(out)
			body.Close(",")
		}
	})
	if failure != nil {
		return nil, failure
	}
	return fmtImpl(spec, aug, in.Name, body), nil
}

// checkFieldFormats rejects field formats under a struct or variant format,
// which would never be used
func checkFieldFormats(state *resolve.State, subject string, own *attr.Format, fields resolve.MultiFieldData) error {
	if own == nil {
		return nil
	}
	for _, f := range fields.All {
		if f.Info.Options.Format != nil {
			return wrongShape(state.Input(), state.Spec(), fmt.Sprintf(
				"field `%s` of `%s` has its own format string, but `%s` is written with #[debug(%s, ...)]",
				f.Name, subject, subject, own.Lit))
		}
	}
	return nil
}

// debugBindings returns the field bindings a Debug body refers to
func debugBindings(own *attr.Format, fields resolve.MultiFieldData) bindingSet {
	used := bindingSet{}
	if own != nil {
		used.addFormat(own)
		return used
	}
	for _, f := range fields.Enabled {
		if f.Info.Options.Format != nil {
			used.addFormat(f.Info.Options.Format)
			continue
		}
		used[fieldBinding(f)] = true
	}
	return used
}

// debugOutput renders the expression writing one struct or variant and
// adds the bounds it needs
func debugOutput(spec resolve.TraitSpec, aug *bounds.Augmentation, self ast.Type, name string,
	own *attr.Format, fields resolve.MultiFieldData) (string, error) {
	if own != nil {
		uses, err := formatUses(own, spec.AttrNames[0])
		if err != nil {
			return "", err
		}
		boundFormatUses(aug, self, fields, uses)
		return writeCall(own), nil
	}

	quoted := strconv.Quote(name)
	if fields.Style == ast.FieldsUnit {
		return fmt.Sprintf("%s.write_str(%s)", formatterVar, quoted), nil
	}

	var sb strings.Builder
	if fields.Style == ast.FieldsNamed {
		fmt.Fprintf(&sb, "%s.debug_struct(%s)", formatterVar, quoted)
	} else {
		fmt.Fprintf(&sb, "%s.debug_tuple(%s)", formatterVar, quoted)
	}
	for _, f := range fields.Enabled {
		value := fieldBinding(f)
		if ff := f.Info.Options.Format; ff != nil {
			uses, err := formatUses(ff, spec.AttrNames[0])
			if err != nil {
				return "", err
			}
			boundFormatUses(aug, self, fields, uses)
			value = formatArgsCall(ff)
		} else {
			aug.AddFieldPredicates([]ast.Type{f.Type}, self, func(ast.Type) string { return spec.Path })
		}

		sb.WriteString("\n" + indentUnit)
		if fields.Style == ast.FieldsNamed {
			fmt.Fprintf(&sb, ".field(%s, %s)", strconv.Quote(unraw(f.Field.Ident)), value)
		} else {
			fmt.Fprintf(&sb, ".field(%s)", value)
		}
	}
	sb.WriteString("\n" + indentUnit)
	if len(fields.Enabled) < len(fields.All) {
		sb.WriteString(".finish_non_exhaustive()")
	} else {
		sb.WriteString(".finish()")
	}
	return sb.String(), nil
}
