package codegen

//go:generate stringer -type=Kind -trimprefix=Kind

// Kind identifies one derive of the catalogue
type Kind int

const (
	KindConstructor Kind = iota
	KindFrom
	KindInto
	KindTryFrom
	KindTryInto
	KindAsRef
	KindAsMut
	KindBorrow
	KindBorrowMut
	KindFromStr
	KindAdd
	KindSub
	KindBitAnd
	KindBitOr
	KindBitXor
	KindMul
	KindDiv
	KindRem
	KindShl
	KindShr
	KindNeg
	KindNot
	KindAddAssign
	KindSubAssign
	KindBitAndAssign
	KindBitOrAssign
	KindBitXorAssign
	KindMulAssign
	KindDivAssign
	KindRemAssign
	KindShlAssign
	KindShrAssign
	KindDeref
	KindDerefMut
	KindDerefToInner
	KindDerefMutToInner
	KindIndex
	KindIndexMut
	KindIterator
	KindIntoIterator
	KindRead
	KindPartialEq
	KindEq
	KindIsVariant
	KindAsVariant
	KindUnwrap
	KindTryIntoVariant
	KindTryUnwrap
	KindSum
	KindProduct
	KindError
	KindDisplay
	KindBinary
	KindOctal
	KindLowerHex
	KindUpperHex
	KindLowerExp
	KindUpperExp
	KindPointer
	KindDebug
	KindDefault

	kindCount
)

// Family groups kinds for listings
type Family string

const (
	FamilyConstruction Family = "construction"
	FamilyConversion   Family = "conversion"
	FamilyArithmetic   Family = "arithmetic"
	FamilyDereference  Family = "dereference"
	FamilyIndexing     Family = "indexing"
	FamilyIteration    Family = "iteration"
	FamilyIO           Family = "io"
	FamilyEquality     Family = "equality"
	FamilyVariants     Family = "variants"
	FamilySummation    Family = "summation"
	FamilyErrors       Family = "errors"
	FamilyFormatting   Family = "formatting"
)

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, int(kindCount))
	for k := Kind(0); k < kindCount; k++ {
		m[k.String()] = k
	}
	return m
}()

// ParseKind looks up a derive by its name as written in #[derive(...)]
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns every kind in catalogue order
func Kinds() []Kind {
	out := make([]Kind, 0, int(kindCount))
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Family returns the family the kind belongs to
func (k Kind) Family() Family {
	switch {
	case k == KindConstructor || k == KindDefault:
		return FamilyConstruction
	case k >= KindFrom && k <= KindFromStr:
		return FamilyConversion
	case k >= KindAdd && k <= KindShrAssign:
		return FamilyArithmetic
	case k >= KindDeref && k <= KindDerefMutToInner:
		return FamilyDereference
	case k == KindIndex || k == KindIndexMut:
		return FamilyIndexing
	case k == KindIterator || k == KindIntoIterator:
		return FamilyIteration
	case k == KindRead:
		return FamilyIO
	case k == KindPartialEq || k == KindEq:
		return FamilyEquality
	case k >= KindIsVariant && k <= KindTryUnwrap:
		return FamilyVariants
	case k == KindSum || k == KindProduct:
		return FamilySummation
	case k == KindError:
		return FamilyErrors
	default:
		return FamilyFormatting
	}
}
