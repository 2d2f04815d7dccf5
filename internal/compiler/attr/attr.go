// Package attr parses derive helper attributes such as #[add(skip)] or
// #[unwrap(ref, ref_mut)] into validated option records. Parsing is pure: it
// never panics and reports every grammar problem as a *errors.CompilerError.
package attr

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	utilstrings "github.com/conduit-lang/derivekit/internal/util/strings"
)

// Level is the kind of item an attribute is attached to
type Level int

const (
	// LevelEnum is the enum declaration itself
	LevelEnum Level = iota
	// LevelVariant is an enum variant
	LevelVariant
	// LevelStruct is the struct declaration itself
	LevelStruct
	// LevelField is a struct or variant field
	LevelField
)

// String returns the level name used in diagnostics
func (l Level) String() string {
	switch l {
	case LevelEnum:
		return "enum"
	case LevelVariant:
		return "variant"
	case LevelStruct:
		return "struct"
	case LevelField:
		return "field"
	default:
		return "item"
	}
}

// IsContainer reports whether the level is a declaration rather than a member
func (l Level) IsContainer() bool {
	return l == LevelEnum || l == LevelStruct
}

// Keys shared by the trait families
const (
	KeyIgnore       = "ignore"
	KeySkip         = "skip"
	KeyForward      = "forward"
	KeyOwned        = "owned"
	KeyRef          = "ref"
	KeyRefMut       = "ref_mut"
	KeyRenameAll    = "rename_all"
	KeySource       = "source"
	KeyNotSource    = "not(source)"
	KeyBacktrace    = "backtrace"
	KeyNotBacktrace = "not(backtrace)"
	KeyError        = "error"
	KeyTypes        = "types"
	// KeyFormat stands for a leading string literal, as in
	// #[display("{} items", _0)]
	KeyFormat = "format"
)

// Params lists the keys a trait family accepts at each level
type Params struct {
	Enum    []string
	Variant []string
	Struct  []string
	Field   []string
}

// For returns the keys allowed at the level
func (p Params) For(level Level) []string {
	switch level {
	case LevelEnum:
		return p.Enum
	case LevelVariant:
		return p.Variant
	case LevelStruct:
		return p.Struct
	default:
		return p.Field
	}
}

// All returns every key the family accepts at any level, without duplicates
func (p Params) All() []string {
	seen := make(map[string]bool)
	var all []string
	for _, list := range [][]string{p.Enum, p.Variant, p.Struct, p.Field} {
		for _, k := range list {
			if !seen[k] {
				seen[k] = true
				all = append(all, k)
			}
		}
	}
	return all
}

// LevelsFor returns the names of the levels that accept key
func (p Params) LevelsFor(key string) []string {
	var levels []string
	for _, l := range []Level{LevelEnum, LevelVariant, LevelStruct, LevelField} {
		if contains(p.For(l), key) {
			levels = append(levels, l.String())
		}
	}
	return levels
}

// Toggle is a tri-state flag for keys with a negated form
type Toggle int

const (
	// Unset means neither form was written
	Unset Toggle = iota
	// On is the positive form, e.g. `source`
	On
	// Off is the negated form, e.g. `not(source)`
	Off
)

// CustomError is the `error(Type, conversion)` key
type CustomError struct {
	Type string `json:"type" yaml:"type"`
	// Conv is the path of a function converting the default error; empty
	// when the type implements From for it
	Conv string `json:"conv,omitempty" yaml:"conv,omitempty"`
}

// Format is a format string together with its arguments
type Format struct {
	// Lit is the string literal as written, quotes included
	Lit string `json:"lit" yaml:"lit"`
	// Value is the decoded content of the literal
	Value string             `json:"-" yaml:"-"`
	Args  []string           `json:"args,omitempty" yaml:"args,omitempty"`
	Loc   ast.SourceLocation `json:"-" yaml:"-"`
}

// Options is the parsed content of one helper attribute on one item
type Options struct {
	// Present is set when the item carries the attribute at all
	Present bool
	// Bare is set for #[trait] with no argument list
	Bare      bool
	Ignore    bool
	Forward   bool
	Owned     bool
	Ref       bool
	RefMut    bool
	Accessors bool // any of owned, ref, ref_mut was written
	RenameAll Case
	Source    Toggle
	Backtrace Toggle
	Error     *CustomError
	Types     []string
	Format    *Format
	Loc       ast.SourceLocation
}

// ExplicitlyEnabled reports whether the item opts in, which turns unmarked
// siblings off by default
func (o *Options) ExplicitlyEnabled() bool {
	return o != nil && (o.Bare || o.Forward)
}

// Parse converts the attributes named by names on one item into Options. At
// most one such attribute may be present. An item without the attribute
// yields zero Options.
func Parse(attrs []*ast.Attribute, names []string, level Level, params Params) (*Options, error) {
	matched := ast.AttrsNamed(attrs, names...)
	opts := &Options{}
	if len(matched) == 0 {
		return opts, nil
	}
	if len(matched) > 1 {
		return nil, errors.NewDuplicateAttribute(matched[1].Loc, matched[1].Path)
	}

	a := matched[0]
	opts.Present = true
	opts.Loc = a.Loc

	p := &parser{
		attr:   a.Path,
		level:  level,
		params: params,
		opts:   opts,
		seen:   make(map[string]ast.SourceLocation),
	}

	switch a.Meta.Kind {
	case ast.MetaPath:
		opts.Bare = true
		return opts, nil
	case ast.MetaList:
		if len(a.Meta.List) == 0 {
			opts.Bare = true
			return opts, nil
		}
		for i, item := range a.Meta.List {
			if err := p.item(item); err != nil {
				return nil, err
			}
			if opts.Format == nil {
				continue
			}
			// everything after the format string is a format argument
			if i != 0 {
				return nil, errors.NewMalformedValue(item.Loc, a.Path, KeyFormat,
					"the format string as the first argument", a.Raw)
			}
			for _, arg := range a.Meta.List[1:] {
				opts.Format.Args = append(opts.Format.Args, strings.TrimSpace(arg.Raw))
			}
			break
		}
	default:
		return nil, errors.NewMalformedValue(a.Loc, a.Path, a.Path,
			fmt.Sprintf("#[%s] or #[%s(...)]", a.Path, a.Path), a.Raw)
	}

	if err := p.conflicts(); err != nil {
		return nil, err
	}
	return opts, nil
}

type parser struct {
	attr   string
	level  Level
	params Params
	opts   *Options
	seen   map[string]ast.SourceLocation
}

// keyOf returns the grammar key an argument spells
func keyOf(item *ast.Meta) string {
	switch item.Kind {
	case ast.MetaPath, ast.MetaNameValue:
		return item.Path
	case ast.MetaLit:
		if item.Value != nil && item.Value.Kind == ast.LitStr {
			return KeyFormat
		}
		return item.Raw
	case ast.MetaList:
		if item.Path == "not" && len(item.List) == 1 && item.List[0].Kind == ast.MetaPath {
			return "not(" + item.List[0].Path + ")"
		}
		return item.Path
	default:
		return item.Raw
	}
}

func (p *parser) item(item *ast.Meta) error {
	key := keyOf(item)

	if !contains(p.params.All(), key) {
		return errors.NewUnknownAttributeKey(item.Loc, p.attr, key, p.params.For(p.level),
			utilstrings.FindSimilar(key, p.params.All(), nil))
	}
	if !contains(p.params.For(p.level), key) {
		return errors.NewWrongLevel(item.Loc, p.attr, key, p.level.String(), p.params.LevelsFor(key))
	}

	dupKey := key
	if key == KeySkip {
		dupKey = KeyIgnore
	}
	if _, dup := p.seen[dupKey]; dup {
		return errors.NewConflictingKeys(item.Loc, p.attr, p.spelled(dupKey), key)
	}
	p.seen[dupKey] = item.Loc
	if key == KeySkip {
		p.seen[KeySkip] = item.Loc
	}

	switch key {
	case KeyIgnore, KeySkip, KeyForward, KeyOwned, KeyRef, KeyRefMut,
		KeySource, KeyBacktrace, KeyNotSource, KeyNotBacktrace:
		if item.Kind != ast.MetaPath && !(item.Kind == ast.MetaList && item.Path == "not") {
			return errors.NewMalformedValue(item.Loc, p.attr, key, "a bare key", item.Raw)
		}
	}

	switch key {
	case KeyIgnore, KeySkip:
		p.opts.Ignore = true
	case KeyForward:
		p.opts.Forward = true
	case KeyOwned:
		p.opts.Owned = true
		p.opts.Accessors = true
	case KeyRef:
		p.opts.Ref = true
		p.opts.Accessors = true
	case KeyRefMut:
		p.opts.RefMut = true
		p.opts.Accessors = true
	case KeySource:
		p.opts.Source = On
	case KeyNotSource:
		p.opts.Source = Off
	case KeyBacktrace:
		p.opts.Backtrace = On
	case KeyNotBacktrace:
		p.opts.Backtrace = Off
	case KeyRenameAll:
		return p.renameAll(item)
	case KeyError:
		return p.customError(item)
	case KeyTypes:
		return p.types(item)
	case KeyFormat:
		p.opts.Format = &Format{Lit: item.Raw, Value: item.Value.Value, Loc: item.Loc}
	}
	return nil
}

// spelled returns how a previously seen key was written, so that the
// ignore/skip alias is reported as the user wrote it
func (p *parser) spelled(key string) string {
	if key == KeyIgnore {
		if _, ok := p.seen[KeySkip]; ok {
			return KeySkip
		}
	}
	return key
}

func (p *parser) renameAll(item *ast.Meta) error {
	expected := "a string naming a case, such as \"snake_case\""
	if item.Kind != ast.MetaNameValue || item.Value == nil || item.Value.Kind != ast.LitStr {
		return errors.NewMalformedValue(item.Loc, p.attr, KeyRenameAll, expected, item.Raw).
			WithExamples(fmt.Sprintf("#[%s(rename_all = \"snake_case\")]", p.attr))
	}
	c, ok := ParseCase(item.Value.Value)
	if !ok {
		err := errors.NewMalformedValue(item.Loc, p.attr, KeyRenameAll, expected, item.Value.Value)
		if best := utilstrings.FindBestMatch(item.Value.Value, CaseNames(), nil); best != "" {
			err.WithSuggestion(fmt.Sprintf("Did you mean \"%s\"?", best))
		}
		return err
	}
	p.opts.RenameAll = c
	return nil
}

func (p *parser) customError(item *ast.Meta) error {
	expected := "error(<Type>) or error(<Type>, <conversion fn>)"
	if item.Kind != ast.MetaList || len(item.List) == 0 || len(item.List) > 2 {
		return errors.NewMalformedValue(item.Loc, p.attr, KeyError, expected, item.Raw)
	}
	ce := &CustomError{Type: item.List[0].Raw}
	if len(item.List) == 2 {
		conv := item.List[1]
		if conv.Kind != ast.MetaPath {
			return errors.NewMalformedValue(conv.Loc, p.attr, KeyError, "a function path as the second argument", conv.Raw)
		}
		ce.Conv = conv.Path
	}
	p.opts.Error = ce
	return nil
}

func (p *parser) types(item *ast.Meta) error {
	if item.Kind != ast.MetaList || len(item.List) == 0 {
		return errors.NewMalformedValue(item.Loc, p.attr, KeyTypes, "types(<Type>, ...)", item.Raw)
	}
	for _, t := range item.List {
		if t.Kind == ast.MetaLit || t.Kind == ast.MetaNameValue {
			return errors.NewMalformedValue(t.Loc, p.attr, KeyTypes, "a type", t.Raw)
		}
		p.opts.Types = append(p.opts.Types, t.Raw)
	}
	return nil
}

// conflicts checks mutually exclusive keys once the whole list is known
func (p *parser) conflicts() error {
	pairs := [][2]string{
		{KeyIgnore, KeyForward},
		{KeyIgnore, KeyOwned},
		{KeyIgnore, KeyRef},
		{KeyIgnore, KeyRefMut},
		{KeyIgnore, KeyFormat},
		{KeySource, KeyNotSource},
		{KeyBacktrace, KeyNotBacktrace},
	}
	for _, pair := range pairs {
		_, first := p.seen[pair[0]]
		loc, second := p.seen[pair[1]]
		if first && second {
			return errors.NewConflictingKeys(loc, p.attr, p.spelled(pair[0]), pair[1])
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
