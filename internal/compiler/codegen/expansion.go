// Package codegen expands derive requests into Rust trait implementations.
// Each derive of the catalogue is a Strategy selected by Kind from a
// Registry; a strategy reads the resolved view of one declaration and
// returns the impl source, never touching shared state.
package codegen

import (
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// DefaultRuntimeCrate is the crate path generated code takes its error
// types from
const DefaultRuntimeCrate = "derivekit"

// Expansion is the generated code of one derive on one declaration
type Expansion struct {
	Trait string `json:"trait"`
	Kind  Kind   `json:"-"`
	Code  string `json:"code"`
	// Warnings are non-fatal diagnostics, e.g. dropped FromStr literals
	Warnings []*errors.CompilerError `json:"warnings,omitempty"`
}

// Strategy expands one derive
type Strategy interface {
	Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error)
}

// StrategyFunc adapts a function to the Strategy interface
type StrategyFunc func(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error)

// Expand calls f
func (f StrategyFunc) Expand(in *ast.DeriveInput, spec resolve.TraitSpec) (*Expansion, error) {
	return f(in, spec)
}

// Options configure code generation
type Options struct {
	// RuntimeCrate is the path of the runtime support crate, e.g.
	// "derivekit" or "crate::support"
	RuntimeCrate string
}

// runtimePath resolves an item of the runtime crate to an absolute path
func (o Options) runtimePath(item string) string {
	crate := o.RuntimeCrate
	if crate == "" {
		crate = DefaultRuntimeCrate
	}
	switch {
	case strings.HasPrefix(crate, "::"),
		crate == "crate", strings.HasPrefix(crate, "crate::"),
		crate == "self", strings.HasPrefix(crate, "self::"),
		crate == "super", strings.HasPrefix(crate, "super::"):
		return crate + "::" + item
	default:
		return "::" + crate + "::" + item
	}
}

// Common absolute paths used in generated code
const (
	pathResult  = "::core::result::Result"
	pathOk      = "::core::result::Result::Ok"
	pathErr     = "::core::result::Result::Err"
	pathOption  = "::core::option::Option"
	pathSome    = "::core::option::Option::Some"
	pathNone    = "::core::option::Option::None"
	pathDefault = "::core::default::Default"
	pathCopy    = "::core::marker::Copy"
	pathFrom    = "::core::convert::From"
)

// derivedImpl writes the attributes every generated impl carries and opens
// its block. Consecutive impls are separated by a blank line.
func derivedImpl(w *Writer, header string) {
	if w.Len() > 0 {
		w.Line("")
	}
	w.Line("#[automatically_derived]")
	w.Open("%s", header)
}

// implHeader renders an impl header from split generics, for impls whose
// self type is not the declaration itself
func implHeader(impl, traitPath, forType, where string) string {
	header := "impl" + impl + " " + traitPath + " for " + forType
	if where != "" {
		header += " " + where
	}
	return header
}

// newExpansion wraps the written code
func newExpansion(spec resolve.TraitSpec, w *Writer) *Expansion {
	k, _ := ParseKind(spec.Name)
	return &Expansion{Trait: spec.Name, Kind: k, Code: w.String()}
}

// tupleOf renders a list of types as a Rust tuple type. A single element is
// rendered bare and no element as `()`.
func tupleOf(types []string) string {
	if len(types) == 1 {
		return types[0]
	}
	return "(" + strings.Join(types, ", ") + ")"
}

// typeStrings renders types
func typeStrings(types []ast.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

// prefixed returns every element of list with prefix prepended
func prefixed(prefix string, list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = prefix + s
	}
	return out
}

// restPattern renders a pattern matching a variant regardless of its
// payload, e.g. `Self::Foo(..)`
func restPattern(path string, fields *ast.Fields) string {
	if fields == nil {
		return path
	}
	switch fields.Style {
	case ast.FieldsNamed:
		return path + " { .. }"
	case ast.FieldsUnnamed:
		return path + "(..)"
	default:
		return path
	}
}

// wrongShape builds a STR007 error for the declaration
func wrongShape(in *ast.DeriveInput, spec resolve.TraitSpec, reason string) error {
	return errors.NewWrongShape(in.Loc, spec.Name, in.Name, reason)
}

// requireEnum fails for anything but an enum
func requireEnum(in *ast.DeriveInput, spec resolve.TraitSpec) error {
	if in.Kind == ast.DataUnion {
		return errors.NewUnionNotSupported(in.Loc, spec.Name, in.Name)
	}
	if !in.IsEnum() {
		return wrongShape(in, spec, "`"+spec.Name+"` can only be derived for enums")
	}
	return nil
}

// requireStruct fails for anything but a struct
func requireStruct(in *ast.DeriveInput, spec resolve.TraitSpec) error {
	if in.Kind == ast.DataUnion {
		return errors.NewUnionNotSupported(in.Loc, spec.Name, in.Name)
	}
	if in.IsEnum() {
		return wrongShape(in, spec, "`"+spec.Name+"` can only be derived for structs")
	}
	return nil
}
