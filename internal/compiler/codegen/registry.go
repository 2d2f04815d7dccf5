package codegen

import (
	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// Entry is one registered derive
type Entry struct {
	Kind     Kind
	Spec     resolve.TraitSpec
	Strategy Strategy
}

// Registry maps every Kind of the catalogue to its strategy
type Registry struct {
	opts    Options
	entries [kindCount]Entry
}

// Helper attribute keys accepted by the families
var (
	skipKeys     = []string{attr.KeyIgnore, attr.KeySkip}
	accessorKeys = []string{attr.KeyOwned, attr.KeyRef, attr.KeyRefMut}

	noParams  = attr.Params{}
	fieldSkip = attr.Params{Field: skipKeys}

	forwardParams = attr.Params{
		Enum:   []string{attr.KeyForward},
		Struct: []string{attr.KeyForward},
		Field:  append([]string{attr.KeyForward}, skipKeys...),
	}
	accessorParams = attr.Params{
		Enum:    accessorKeys,
		Variant: append(append([]string{}, skipKeys...), accessorKeys...),
	}
	variantSkip = attr.Params{Variant: skipKeys}
)

// NewRegistry builds the catalogue
func NewRegistry(opts Options) *Registry {
	r := &Registry{opts: opts}

	r.register(KindConstructor, "", "new", noParams, StrategyFunc(expandConstructor))

	r.register(KindFrom, pathFrom, "from", attr.Params{
		Struct:  []string{attr.KeyTypes},
		Field:   skipKeys,
		Variant: append([]string{attr.KeyTypes}, skipKeys...),
	}, StrategyFunc(expandFrom))
	r.register(KindInto, pathFrom, "from", attr.Params{
		Struct: append([]string{attr.KeyTypes}, accessorKeys...),
		Field:  skipKeys,
	}, StrategyFunc(expandInto))
	r.register(KindTryFrom, "::core::convert::TryFrom", "try_from", attr.Params{
		Enum: []string{attr.KeyError},
	}, &tryFromRepr{opts: opts})
	r.register(KindTryInto, "::core::convert::TryFrom", "try_from", attr.Params{
		Enum:    append([]string{attr.KeyError}, accessorKeys...),
		Variant: append(append([]string{}, skipKeys...), accessorKeys...),
	}, &tryInto{opts: opts})
	refConv := attr.Params{
		Struct: []string{attr.KeyForward, attr.KeyTypes},
		Field:  append([]string{attr.KeyForward, attr.KeyTypes}, skipKeys...),
	}
	r.register(KindAsRef, "::core::convert::AsRef", "as_ref", refConv, &refConversion{mutable: false})
	r.register(KindAsMut, "::core::convert::AsMut", "as_mut", refConv, &refConversion{mutable: true})
	r.register(KindBorrow, "::core::borrow::Borrow", "borrow", refConv, &refConversion{mutable: false})
	r.register(KindBorrowMut, "::core::borrow::BorrowMut", "borrow_mut", refConv, &refConversion{mutable: true})
	r.register(KindFromStr, "::core::str::FromStr", "from_str", attr.Params{
		Enum:    []string{attr.KeyRenameAll},
		Variant: skipKeys,
	}, &fromStr{opts: opts})

	for _, k := range []Kind{KindAdd, KindSub, KindBitAnd, KindBitOr, KindBitXor} {
		r.register(k, "::core::ops::"+k.String(), attr.Lower(k.String()), fieldSkip, &addLike{opts: opts})
	}
	for _, k := range []Kind{KindMul, KindDiv, KindRem, KindShl, KindShr} {
		r.register(k, "::core::ops::"+k.String(), attr.Lower(k.String()), fieldSkip, &mulLike{})
	}
	for _, k := range []Kind{KindNeg, KindNot} {
		r.register(k, "::core::ops::"+k.String(), attr.Lower(k.String()), noParams, &notLike{opts: opts})
	}
	for _, k := range []Kind{KindAddAssign, KindSubAssign, KindBitAndAssign, KindBitOrAssign, KindBitXorAssign} {
		r.register(k, "::core::ops::"+k.String(), assignMethod(k), fieldSkip, &assignLike{scalar: false})
	}
	for _, k := range []Kind{KindMulAssign, KindDivAssign, KindRemAssign, KindShlAssign, KindShrAssign} {
		r.register(k, "::core::ops::"+k.String(), assignMethod(k), fieldSkip, &assignLike{scalar: true})
	}

	r.register(KindDeref, "::core::ops::Deref", "deref", forwardParams, &deref{mutable: false})
	r.register(KindDerefMut, "::core::ops::DerefMut", "deref_mut", forwardParams, &deref{mutable: true})
	r.register(KindDerefToInner, "::core::ops::Deref", "deref", fieldSkip, &derefToInner{mutable: false})
	r.register(KindDerefMutToInner, "::core::ops::DerefMut", "deref_mut", fieldSkip, &derefToInner{mutable: true})

	r.register(KindIndex, "::core::ops::Index", "index", fieldSkip, &index{mutable: false})
	r.register(KindIndexMut, "::core::ops::IndexMut", "index_mut", fieldSkip, &index{mutable: true})

	r.register(KindIterator, "::core::iter::Iterator", "next", fieldSkip, StrategyFunc(expandIterator))
	r.register(KindIntoIterator, "::core::iter::IntoIterator", "into_iter", attr.Params{
		Struct: accessorKeys,
		Field:  append(append([]string{}, skipKeys...), accessorKeys...),
	}, StrategyFunc(expandIntoIterator))
	r.register(KindRead, "::std::io::Read", "read", fieldSkip, StrategyFunc(expandRead))

	r.register(KindPartialEq, "::core::cmp::PartialEq", "eq", fieldSkip, &equality{marker: false})
	r.register(KindEq, "::core::cmp::Eq", "", fieldSkip, &equality{marker: true})

	r.register(KindIsVariant, "", "is", variantSkip, &variantAccessor{kind: KindIsVariant, opts: opts})
	for _, k := range []Kind{KindAsVariant, KindUnwrap, KindTryIntoVariant, KindTryUnwrap} {
		r.register(k, "", "", accessorParams, &variantAccessor{kind: k, opts: opts})
	}

	r.register(KindSum, "::core::iter::Sum", "sum", noParams, StrategyFunc(expandSum))
	r.register(KindProduct, "::core::iter::Product", "product", noParams, StrategyFunc(expandSum))

	r.register(KindError, "::std::error::Error", "source", attr.Params{
		Variant: skipKeys,
		Field: append([]string{attr.KeySource, attr.KeyNotSource, attr.KeyBacktrace, attr.KeyNotBacktrace},
			skipKeys...),
	}, &errorDerive{opts: opts})

	for _, k := range []Kind{KindDisplay, KindBinary, KindOctal, KindLowerHex, KindUpperHex,
		KindLowerExp, KindUpperExp, KindPointer} {
		r.register(k, fmtPath(k.String()), "fmt", formatParams, &displayLike{placeholder: displayPlaceholders[k]})
	}
	r.register(KindDebug, fmtPath("Debug"), "fmt", debugParams, StrategyFunc(expandDebug))
	r.register(KindDefault, pathDefault, "default", variantSkip, StrategyFunc(expandDefault))

	return r
}

func (r *Registry) register(k Kind, path, method string, params attr.Params, s Strategy) {
	names := []string{attr.SnakeCase(k.String())}
	if k == KindPartialEq || k == KindEq {
		names = []string{"partial_eq", "eq"}
	}
	r.entries[k] = Entry{
		Kind: k,
		Spec: resolve.TraitSpec{
			Name:      k.String(),
			Path:      path,
			Method:    method,
			AttrNames: names,
			Params:    params,
		},
		Strategy: s,
	}
}

// assignMethod returns the method of an assign trait, e.g. `bitand_assign`
func assignMethod(k Kind) string {
	name := k.String()
	return attr.Lower(name[:len(name)-len("Assign")]) + "_assign"
}

// Options returns the generation options the registry was built with
func (r *Registry) Options() Options {
	return r.opts
}

// Entry returns the registered derive of a kind
func (r *Registry) Entry(k Kind) Entry {
	return r.entries[k]
}

// Lookup finds a derive by the name written in #[derive(...)]
func (r *Registry) Lookup(name string) (Entry, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return Entry{}, false
	}
	return r.entries[k], true
}

// Entries returns every registered derive in catalogue order
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, int(kindCount))
	for _, k := range Kinds() {
		out = append(out, r.entries[k])
	}
	return out
}

// Expand runs the named derive on a declaration. A name outside the
// catalogue is reported as GEN002.
func (r *Registry) Expand(in *ast.DeriveInput, name string) (*Expansion, error) {
	entry, ok := r.Lookup(name)
	if !ok {
		return nil, errors.NewUnknownDerive(in.Loc, name)
	}
	return entry.Strategy.Expand(in, entry.Spec)
}
