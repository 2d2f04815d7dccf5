// Package ast defines the syntax tree for Rust type declarations consumed by
// the derive expansion engine. It models structs, enums and unions together
// with their generics, attributes and field type expressions.
package ast

import (
	"strconv"

	"github.com/conduit-lang/derivekit/internal/compiler/lexer"
)

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int `json:"line"`   // Line number (1-indexed)
	Column int `json:"column"` // Column number (1-indexed)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// File is the root node produced for one source file
type File struct {
	Items []*DeriveInput
	// Skipped counts top-level items that are not derive subjects (fn, impl, use...)
	Skipped int
	// InlineModules lists `mod name { ... }` blocks whose bodies were not scanned
	InlineModules []*ModuleNode
}

func (f *File) node() {}

// Location returns the location of the first item in the file.
func (f *File) Location() SourceLocation {
	if len(f.Items) > 0 {
		return f.Items[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// ModuleNode records an inline module that was skipped
type ModuleNode struct {
	Name string
	Loc  SourceLocation
}

func (m *ModuleNode) node() {}

// Location returns the source location of the module keyword.
func (m *ModuleNode) Location() SourceLocation { return m.Loc }

// DataKind is the payload shape of a declaration
type DataKind int

const (
	// DataStruct is a struct with named, unnamed or no fields
	DataStruct DataKind = iota
	// DataEnum is an enum with an ordered list of variants
	DataEnum
	// DataUnion is a union; every derive rejects it
	DataUnion
)

// String returns the Rust keyword for the data kind
func (k DataKind) String() string {
	switch k {
	case DataStruct:
		return "struct"
	case DataEnum:
		return "enum"
	case DataUnion:
		return "union"
	default:
		return "unknown"
	}
}

// DeriveInput is one type declaration together with its derive requests.
// It is read-only once the parser returns it.
type DeriveInput struct {
	Attrs      []*Attribute
	Visibility string
	Name       string
	Generics   *Generics
	Kind       DataKind
	// Fields is set for structs and unions
	Fields *Fields
	// Variants is set for enums
	Variants []*Variant
	// Derives are the requests collected from every #[derive(...)] attribute
	Derives []*DeriveRequest
	Loc     SourceLocation
	// Span is the byte range of the declaration in its source file
	Span Span
}

func (d *DeriveInput) node() {}

// Location returns the source location of the declaration keyword.
func (d *DeriveInput) Location() SourceLocation { return d.Loc }

// IsEnum reports whether the declaration is an enum
func (d *DeriveInput) IsEnum() bool { return d.Kind == DataEnum }

// HasDerive reports whether the declaration requests the named derive
func (d *DeriveInput) HasDerive(name string) bool {
	for _, req := range d.Derives {
		if req.Name == name {
			return true
		}
	}
	return false
}

// SelfType renders the implementor type with its generic arguments, e.g.
// `Wrapper<'a, T, N>`.
func (d *DeriveInput) SelfType() Type {
	seg := &PathSegment{Ident: d.Name}
	if d.Generics != nil {
		for _, param := range d.Generics.Params {
			switch param.Kind {
			case LifetimeParam:
				seg.Args = append(seg.Args, &LifetimeArg{Name: param.Name})
			case TypeParam:
				seg.Args = append(seg.Args, &TypeArg{Type: SimplePath(param.Name)})
			case ConstParam:
				seg.Args = append(seg.Args, &ConstArg{Expr: param.Name})
			}
		}
	}
	return &PathType{Segments: []*PathSegment{seg}, Loc: d.Loc}
}

// Span is a half-open byte range in a source file
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DeriveRequest is one entry of a #[derive(...)] list
type DeriveRequest struct {
	// Name is the last path segment, e.g. "Add" for derive_more::Add
	Name string
	// Path is the full path as written
	Path string
	Loc  SourceLocation
}

func (r *DeriveRequest) node() {}

// Location returns the source location of the derive name.
func (r *DeriveRequest) Location() SourceLocation { return r.Loc }

// FieldsStyle distinguishes brace, tuple and unit field lists
type FieldsStyle int

const (
	// FieldsNamed is `{ a: A, b: B }`
	FieldsNamed FieldsStyle = iota
	// FieldsUnnamed is `(A, B)`
	FieldsUnnamed
	// FieldsUnit has no payload
	FieldsUnit
)

// Fields is the field list of a struct, union or enum variant
type Fields struct {
	Style FieldsStyle
	List  []*Field
}

// Len returns the number of fields
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.List)
}

// IsUnit reports whether there are no fields at all
func (f *Fields) IsUnit() bool {
	return f == nil || f.Style == FieldsUnit || len(f.List) == 0
}

// Field is a single struct, union or variant field
type Field struct {
	Attrs      []*Attribute
	Visibility string
	// Ident is empty for tuple fields
	Ident string
	// Index is the position in the declaring field list
	Index int
	Type  Type
	Loc   SourceLocation
}

func (f *Field) node() {}

// Location returns the source location of the field.
func (f *Field) Location() SourceLocation { return f.Loc }

// IsNamed reports whether the field has an identifier
func (f *Field) IsNamed() bool { return f.Ident != "" }

// Member returns the accessor used after a dot: the identifier or the
// tuple index.
func (f *Field) Member() string {
	if f.Ident != "" {
		return f.Ident
	}
	return strconv.Itoa(f.Index)
}

// Variant is one enum variant
type Variant struct {
	Attrs  []*Attribute
	Ident  string
	Fields *Fields
	// Discriminant is the source text of an explicit `= expr`, if any
	Discriminant string
	Loc          SourceLocation
}

func (v *Variant) node() {}

// Location returns the source location of the variant identifier.
func (v *Variant) Location() SourceLocation { return v.Loc }

// TokenLocation creates a SourceLocation from a lexer token
func TokenLocation(token lexer.Token) SourceLocation {
	return SourceLocation{
		Line:   token.Line,
		Column: token.Column,
	}
}
