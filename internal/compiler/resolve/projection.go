package resolve

import (
	"strconv"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

// FieldData is one field together with the metadata strategies emit code from
type FieldData struct {
	Field *ast.Field
	Info  FieldInfo
	Type  ast.Type
	// Name is the field identifier, or its index for tuple fields
	Name string
	// Member is the access path on self, e.g. `self.0` or `self.name`
	Member string
	// Index is the position in the declaring field list
	Index int
}

// Binding returns the numbered pattern binding for the field, e.g.
// `__self_0` for prefix "self"
func (f FieldData) Binding(prefix string) string {
	return "__" + prefix + "_" + strconv.Itoa(f.Index)
}

// MemberOf returns the access path of the field on another value, e.g.
// `rhs.x`
func (f FieldData) MemberOf(value string) string {
	return value + "." + f.Name
}

// MultiFieldData is the ordered field view of a struct or variant
type MultiFieldData struct {
	Style ast.FieldsStyle
	// All holds every field, enabled or not
	All []FieldData
	// Enabled holds the enabled fields in declaration order
	Enabled []FieldData
}

// Types returns the types of the enabled fields
func (m MultiFieldData) Types() []ast.Type {
	types := make([]ast.Type, len(m.Enabled))
	for i, f := range m.Enabled {
		types[i] = f.Type
	}
	return types
}

// Skipped returns the fields that are not enabled
func (m MultiFieldData) Skipped() []FieldData {
	var out []FieldData
	for _, f := range m.All {
		if !f.Info.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// IsUnit reports whether there are no fields at all
func (m MultiFieldData) IsUnit() bool {
	return len(m.All) == 0
}

// Pattern renders a pattern binding every field, e.g.
// `Self::Foo(__self_0, __self_1)` or `Self::Bar { x: __self_0 }`
func (m MultiFieldData) Pattern(path, prefix string) string {
	return m.pattern(path, prefix, false)
}

// PatternEnabled renders a pattern binding only the enabled fields; the
// others are matched by `_` or `..`
func (m MultiFieldData) PatternEnabled(path, prefix string) string {
	return m.pattern(path, prefix, true)
}

func (m MultiFieldData) pattern(path, prefix string, enabledOnly bool) string {
	switch m.Style {
	case ast.FieldsUnnamed:
		parts := make([]string, len(m.All))
		for i, f := range m.All {
			if enabledOnly && !f.Info.Enabled {
				parts[i] = "_"
				continue
			}
			parts[i] = f.Binding(prefix)
		}
		return path + "(" + strings.Join(parts, ", ") + ")"
	case ast.FieldsNamed:
		parts := make([]string, 0, len(m.All))
		rest := false
		for _, f := range m.All {
			if enabledOnly && !f.Info.Enabled {
				rest = true
				continue
			}
			parts = append(parts, f.Name+": "+f.Binding(prefix))
		}
		if rest {
			parts = append(parts, "..")
		}
		return path + " { " + strings.Join(parts, ", ") + " }"
	default:
		return path
	}
}

// Construct renders a constructor expression with one expression per field
// of All, e.g. `Self { x: a, y: b }` or `Self::Foo(a, b)`
func (m MultiFieldData) Construct(path string, expr func(FieldData) string) string {
	switch m.Style {
	case ast.FieldsUnnamed:
		parts := make([]string, len(m.All))
		for i, f := range m.All {
			parts[i] = expr(f)
		}
		return path + "(" + strings.Join(parts, ", ") + ")"
	case ast.FieldsNamed:
		parts := make([]string, len(m.All))
		for i, f := range m.All {
			parts[i] = f.Name + ": " + expr(f)
		}
		return path + " { " + strings.Join(parts, ", ") + " }"
	default:
		return path
	}
}

// SingleFieldData is the view of the one enabled field of a single-field
// trait
type SingleFieldData struct {
	Field FieldData
	// TraitPath is the trait being derived, e.g. `::core::ops::Deref`
	TraitPath string
	// CastedTrait is `<FieldTy as TraitPath>`, used to reach through the
	// field's own implementation when forwarding
	CastedTrait string
	Forward     bool
	// Impl, Ty and Where are the split generics of the declaration
	Impl, Ty, Where string
}

// VariantData is the view of one enum variant
type VariantData struct {
	Variant *ast.Variant
	Info    VariantInfo
	Name    string
	// Path is `Self::Name`, usable in patterns and constructors
	Path   string
	Fields MultiFieldData

	state *State
}

// fieldData builds the field view of a field list
func fieldData(fields *ast.Fields, infos []FieldInfo) MultiFieldData {
	m := MultiFieldData{Style: ast.FieldsUnit}
	if fields == nil {
		return m
	}
	m.Style = fields.Style
	for i, f := range fields.List {
		name := f.Ident
		if name == "" {
			name = strconv.Itoa(i)
		}
		fd := FieldData{
			Field:  f,
			Info:   infos[i],
			Type:   f.Type,
			Name:   name,
			Member: "self." + name,
			Index:  i,
		}
		m.All = append(m.All, fd)
		if fd.Info.Enabled {
			m.Enabled = append(m.Enabled, fd)
		}
	}
	return m
}

// EnabledFieldsData returns the field view of a struct
func (s *State) EnabledFieldsData() (MultiFieldData, error) {
	if s.input.IsEnum() {
		return MultiFieldData{}, errors.NewWrongShape(s.input.Loc, s.spec.Name, s.input.Name,
			"expected a struct, found an enum")
	}
	return fieldData(s.input.Fields, s.fields), nil
}

// AssertFieldsEnabled fails for unit structs and for structs whose fields
// are all skipped
func (s *State) AssertFieldsEnabled() error {
	data, err := s.EnabledFieldsData()
	if err != nil {
		return err
	}
	if data.IsUnit() {
		return errors.NewUnitStruct(s.input.Loc, s.spec.Name, s.input.Name)
	}
	if len(data.Enabled) == 0 {
		return errors.NewAllFieldsSkipped(s.input.Loc, s.spec.Name, s.input.Name)
	}
	return nil
}

// AssertSingleEnabledField returns the one enabled field of a struct
func (s *State) AssertSingleEnabledField() (SingleFieldData, error) {
	data, err := s.EnabledFieldsData()
	if err != nil {
		return SingleFieldData{}, err
	}
	if data.IsUnit() {
		return SingleFieldData{}, errors.NewUnitStruct(s.input.Loc, s.spec.Name, s.input.Name)
	}
	return s.single(data, s.input.Name)
}

func (s *State) single(data MultiFieldData, subject string) (SingleFieldData, error) {
	if len(data.Enabled) != 1 {
		return SingleFieldData{}, errors.NewFieldCount(s.input.Loc, s.spec.Name, subject, len(data.Enabled))
	}
	field := data.Enabled[0]
	impl, ty, where := s.Augmentation().Split()
	return SingleFieldData{
		Field:       field,
		TraitPath:   s.spec.Path,
		CastedTrait: "<" + field.Type.String() + " as " + s.spec.Path + ">",
		Forward:     field.Info.Forward,
		Impl:        impl,
		Ty:          ty,
		Where:       where,
	}, nil
}

// VariantsData returns the view of every variant, enabled or not
func (s *State) VariantsData() ([]VariantData, error) {
	if !s.input.IsEnum() {
		return nil, errors.NewWrongShape(s.input.Loc, s.spec.Name, s.input.Name,
			"expected an enum, found a struct")
	}
	out := make([]VariantData, len(s.input.Variants))
	for i, v := range s.input.Variants {
		info := s.variants[i]
		out[i] = VariantData{
			Variant: v,
			Info:    info,
			Name:    v.Ident,
			Path:    "Self::" + v.Ident,
			Fields:  fieldData(v.Fields, info.Fields),
			state:   s,
		}
	}
	return out, nil
}

// EnabledVariantsData returns the view of the enabled variants
func (s *State) EnabledVariantsData() ([]VariantData, error) {
	all, err := s.VariantsData()
	if err != nil {
		return nil, err
	}
	var out []VariantData
	for _, v := range all {
		if v.Info.Enabled {
			out = append(out, v)
		}
	}
	return out, nil
}

// AssertVariantFieldsEnabled fails when the enum has fields but every one of
// them is skipped
func (s *State) AssertVariantFieldsEnabled() error {
	all, err := s.VariantsData()
	if err != nil {
		return err
	}
	total, enabled := 0, 0
	for _, v := range all {
		total += len(v.Fields.All)
		enabled += len(v.Fields.Enabled)
	}
	if total > 0 && enabled == 0 {
		return errors.NewAllVariantFieldsSkipped(s.input.Loc, s.spec.Name, s.input.Name)
	}
	return nil
}

// AssertSingleEnabledField returns the one enabled field of the variant
func (v VariantData) AssertSingleEnabledField() (SingleFieldData, error) {
	return v.state.single(v.Fields, v.state.input.Name+"::"+v.Name)
}
