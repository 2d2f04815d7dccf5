// Package resolve computes, once per declaration and trait, which fields and
// variants take part in a derive. Options are merged over three tiers
// (container < variant < field) into immutable FieldInfo and VariantInfo
// values that expansion strategies read through projection views.
package resolve

import (
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/bounds"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

// TraitSpec describes the trait being derived
type TraitSpec struct {
	// Name is the derive name, e.g. "Add"
	Name string
	// Path is the absolute trait path, e.g. "::core::ops::Add"
	Path string
	// Method is the trait method, e.g. "add"; empty for marker traits
	Method string
	// AttrNames are the helper attribute names, e.g. ["add"]
	AttrNames []string
	// Params are the helper attribute keys accepted per level
	Params attr.Params
}

// FieldInfo is the resolved state of one field
type FieldInfo struct {
	Enabled bool
	Forward bool
	// Skipped is set when the field was explicitly ignored
	Skipped bool
	// Options are the field's own parsed attribute options
	Options attr.Options
}

// AccessorSet is the set of accessor forms generated for a variant
type AccessorSet struct {
	Owned  bool
	Ref    bool
	RefMut bool
}

// VariantInfo is the resolved state of one enum variant
type VariantInfo struct {
	Enabled   bool
	Forward   bool
	Skipped   bool
	Accessors AccessorSet
	Options   attr.Options
	Fields    []FieldInfo
}

// State is the resolved view of one declaration for one trait. It is built
// eagerly by New and never changes afterwards.
type State struct {
	input     *ast.DeriveInput
	spec      TraitSpec
	container attr.Options
	fields    []FieldInfo
	variants  []VariantInfo
}

// New parses every helper attribute of input addressed to spec and resolves
// the fields and variants. Unions are rejected for every trait.
func New(input *ast.DeriveInput, spec TraitSpec) (*State, error) {
	if input.Kind == ast.DataUnion {
		return nil, errors.NewUnionNotSupported(input.Loc, spec.Name, input.Name)
	}

	containerLevel := attr.LevelStruct
	if input.IsEnum() {
		containerLevel = attr.LevelEnum
	}
	container, err := attr.Parse(input.Attrs, spec.AttrNames, containerLevel, spec.Params)
	if err != nil {
		return nil, withSubject(err, spec, input)
	}

	s := &State{
		input:     input,
		spec:      spec,
		container: *container,
	}

	if input.IsEnum() {
		s.variants, err = resolveVariants(input, spec, container)
	} else {
		s.fields, err = resolveFields(input.Fields, spec, container, nil)
	}
	if err != nil {
		return nil, withSubject(err, spec, input)
	}
	return s, nil
}

// resolveVariants merges the container options into each variant
func resolveVariants(input *ast.DeriveInput, spec TraitSpec, container *attr.Options) ([]VariantInfo, error) {
	opts := make([]*attr.Options, len(input.Variants))
	explicit := false
	for i, v := range input.Variants {
		o, err := attr.Parse(v.Attrs, spec.AttrNames, attr.LevelVariant, spec.Params)
		if err != nil {
			return nil, withMember(err, "variant `"+v.Ident+"`")
		}
		opts[i] = o
		explicit = explicit || o.ExplicitlyEnabled()
	}

	infos := make([]VariantInfo, len(input.Variants))
	for i, v := range input.Variants {
		info := mergeVariant(container, opts[i], explicit)
		fields, err := resolveFields(v.Fields, spec, container, opts[i])
		if err != nil {
			return nil, withMember(err, "variant `"+v.Ident+"`")
		}
		if !info.Enabled {
			for j := range fields {
				fields[j].Enabled = false
			}
		}
		info.Fields = fields
		infos[i] = info
	}
	return infos, nil
}

// resolveFields merges container and variant options into each field.
// variant is nil for struct fields.
func resolveFields(fields *ast.Fields, spec TraitSpec, container, variant *attr.Options) ([]FieldInfo, error) {
	if fields.IsUnit() {
		return nil, nil
	}

	opts := make([]*attr.Options, len(fields.List))
	explicit := false
	for i, f := range fields.List {
		o, err := attr.Parse(f.Attrs, spec.AttrNames, attr.LevelField, spec.Params)
		if err != nil {
			name := f.Ident
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, withMember(err, "field `"+name+"`")
		}
		opts[i] = o
		explicit = explicit || o.ExplicitlyEnabled()
	}

	infos := make([]FieldInfo, len(fields.List))
	for i := range fields.List {
		infos[i] = mergeField(container, variant, opts[i], explicit)
	}
	return infos, nil
}

// mergeField resolves one field. The most specific explicit value wins:
// an ignore or an opt-in on the field decides alone; an unmarked field is
// disabled when a sibling opted in and enabled otherwise. forward is
// inherited from the variant and container.
func mergeField(container, variant, field *attr.Options, siblingExplicit bool) FieldInfo {
	info := FieldInfo{Options: *field}

	switch {
	case field.Ignore:
		info.Skipped = true
	case field.ExplicitlyEnabled():
		info.Enabled = true
	case siblingExplicit:
		info.Enabled = false
	default:
		info.Enabled = true
	}

	if info.Enabled {
		info.Forward = field.Forward ||
			(variant != nil && variant.Forward) ||
			container.Forward
	}
	return info
}

// mergeVariant resolves one variant. Accessor sets are replaced wholesale by
// the most specific level naming any accessor; the default is owned only.
func mergeVariant(container, variant *attr.Options, siblingExplicit bool) VariantInfo {
	info := VariantInfo{Options: *variant}

	switch {
	case variant.Ignore:
		info.Skipped = true
	case variant.ExplicitlyEnabled():
		info.Enabled = true
	case siblingExplicit:
		info.Enabled = false
	default:
		info.Enabled = true
	}

	if info.Enabled {
		info.Forward = variant.Forward || container.Forward
	}

	switch {
	case variant.Accessors:
		info.Accessors = AccessorSet{Owned: variant.Owned, Ref: variant.Ref, RefMut: variant.RefMut}
	case container.Accessors:
		info.Accessors = AccessorSet{Owned: container.Owned, Ref: container.Ref, RefMut: container.RefMut}
	default:
		info.Accessors = AccessorSet{Owned: true}
	}
	return info
}

func withSubject(err error, spec TraitSpec, input *ast.DeriveInput) error {
	if ce, ok := err.(*errors.CompilerError); ok && ce.Trait == "" {
		ce.WithSubject(spec.Name, input.Name)
	}
	return err
}

// withMember names the field or variant whose attributes failed. A field
// inside a variant gains the variant's name.
func withMember(err error, member string) error {
	ce, ok := err.(*errors.CompilerError)
	if !ok {
		return err
	}
	switch {
	case ce.Member == "":
		ce.WithMember(member)
	case strings.HasPrefix(member, "variant ") && !strings.Contains(ce.Member, " of "):
		ce.WithMember(ce.Member + " of " + member)
	}
	return ce
}

// Input returns the declaration
func (s *State) Input() *ast.DeriveInput { return s.input }

// Spec returns the trait being derived
func (s *State) Spec() TraitSpec { return s.spec }

// Container returns the container-level options
func (s *State) Container() attr.Options { return s.container }

// Fields returns the resolved struct fields in declaration order
func (s *State) Fields() []FieldInfo {
	return append([]FieldInfo(nil), s.fields...)
}

// Variants returns the resolved enum variants in declaration order
func (s *State) Variants() []VariantInfo {
	out := make([]VariantInfo, len(s.variants))
	for i, v := range s.variants {
		v.Fields = append([]FieldInfo(nil), v.Fields...)
		out[i] = v
	}
	return out
}

// EnabledFields returns the enabled struct fields
func (s *State) EnabledFields() []*ast.Field {
	var out []*ast.Field
	for i, info := range s.fields {
		if info.Enabled {
			out = append(out, s.input.Fields.List[i])
		}
	}
	return out
}

// EnabledVariants returns the enabled enum variants
func (s *State) EnabledVariants() []*ast.Variant {
	var out []*ast.Variant
	for i, info := range s.variants {
		if info.Enabled {
			out = append(out, s.input.Variants[i])
		}
	}
	return out
}

// Augmentation returns a fresh working copy of the declaration generics
func (s *State) Augmentation() *bounds.Augmentation {
	return bounds.NewAugmentation(s.input.Generics)
}

// SelfType returns the implementor type, e.g. `Point<T>`
func (s *State) SelfType() ast.Type {
	return s.input.SelfType()
}
