package ast

import "strings"

// Attribute is an outer attribute `#[path ...]`
type Attribute struct {
	// Path is the attribute path, e.g. "derive", "add", "repr"
	Path string
	Meta *Meta
	// Raw is the source text between the brackets
	Raw string
	Loc SourceLocation
}

func (a *Attribute) node() {}

// Location returns the source location of the leading '#'.
func (a *Attribute) Location() SourceLocation { return a.Loc }

// MetaKind is the shape of an attribute argument
type MetaKind int

const (
	// MetaPath is a bare path: `forward`, `skip`
	MetaPath MetaKind = iota
	// MetaList is `path(items, ...)`
	MetaList
	// MetaNameValue is `path = "literal"`
	MetaNameValue
	// MetaLit is a bare literal item: `"text"`, `42`
	MetaLit
	// MetaOther is anything else, such as a type `Box<dyn Error>`, kept raw
	MetaOther
)

// Meta is a parsed attribute argument tree
type Meta struct {
	Kind  MetaKind
	Path  string
	List  []*Meta
	Value *Lit
	// Raw is the verbatim source text of this item
	Raw string
	Loc SourceLocation
}

// LitKind is the kind of a literal value
type LitKind int

const (
	// LitStr is a string literal
	LitStr LitKind = iota
	// LitInt is an integer literal
	LitInt
	// LitFloat is a float literal
	LitFloat
	// LitBool is true or false
	LitBool
	// LitChar is a character literal
	LitChar
)

// Lit is a literal inside an attribute
type Lit struct {
	Kind LitKind
	// Value is the decoded value for strings, otherwise the lexeme
	Value string
	Raw   string
}

// IsPath reports whether the meta is the bare path name
func (m *Meta) IsPath(name string) bool {
	return m != nil && m.Kind == MetaPath && m.Path == name
}

// AttrsNamed returns the attributes whose path is one of names
func AttrsNamed(attrs []*Attribute, names ...string) []*Attribute {
	var out []*Attribute
	for _, a := range attrs {
		for _, n := range names {
			if a.Path == n {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// ReprInt returns the integer representation from #[repr(...)], or "" when
// none is declared.
func ReprInt(attrs []*Attribute) string {
	for _, a := range AttrsNamed(attrs, "repr") {
		if a.Meta == nil || a.Meta.Kind != MetaList {
			continue
		}
		for _, item := range a.Meta.List {
			if item.Kind == MetaPath && isIntType(item.Path) {
				return item.Path
			}
		}
	}
	return ""
}

func isIntType(name string) bool {
	switch name {
	case "u8", "u16", "u32", "u64", "u128", "usize",
		"i8", "i16", "i32", "i64", "i128", "isize":
		return true
	}
	return false
}

// DocComment joins the #[doc = "..."] attributes of an item
func DocComment(attrs []*Attribute) string {
	var lines []string
	for _, a := range AttrsNamed(attrs, "doc") {
		if a.Meta != nil && a.Meta.Kind == MetaNameValue && a.Meta.Value != nil {
			lines = append(lines, strings.TrimSpace(a.Meta.Value.Value))
		}
	}
	return strings.Join(lines, "\n")
}
