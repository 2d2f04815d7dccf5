package codegen

import (
	"strings"
	"testing"

	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

func TestIndexStruct(t *testing.T) {
	exp := expand(t, "struct Numbers { values: Vec<i32>, #[index(skip)] len: usize }", "Index")

	assertContains(t, exp.Code,
		"impl<__IdxT> ::core::ops::Index<__IdxT> for Numbers where Vec<i32>: ::core::ops::Index<__IdxT> {",
		"type Output = <Vec<i32> as ::core::ops::Index<__IdxT>>::Output;",
		"fn index(&self, idx: __IdxT) -> &Self::Output {",
		"<Vec<i32> as ::core::ops::Index<__IdxT>>::index(&self.values, idx)",
	)
}

func TestIndexMutStruct(t *testing.T) {
	exp := expand(t, "struct Numbers(Vec<i32>);", "IndexMut")

	assertContains(t, exp.Code,
		"impl<__IdxT> ::core::ops::IndexMut<__IdxT> for Numbers where Vec<i32>: ::core::ops::IndexMut<__IdxT> {",
		"fn index_mut(&mut self, idx: __IdxT) -> &mut Self::Output {",
		"<Vec<i32> as ::core::ops::IndexMut<__IdxT>>::index_mut(&mut self.0, idx)",
	)
	assertNotContains(t, exp.Code, "type Output")
}

func TestIndexEnum(t *testing.T) {
	exp := expand(t, "enum Storage { Small(Vec<u8>), Large { data: Vec<u8> } }", "Index")

	assertContains(t, exp.Code,
		"match self {",
		"Self::Small(__self_0) => <Vec<u8> as ::core::ops::Index<__IdxT>>::index(__self_0, idx),",
		"Self::Large { data: __self_0 } => <Vec<u8> as ::core::ops::Index<__IdxT>>::index(__self_0, idx),",
	)
}

func TestIndexEnumFieldTypeMismatch(t *testing.T) {
	ce := expandErr(t, "enum Storage { Small(Vec<u8>), Wide(Vec<u16>) }", "Index")

	if ce.Code != errors.ErrNonUniformVariants {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrNonUniformVariants)
	}
	if ce.Expected != "`Vec<u8>`" || ce.Actual != "`Vec<u16>` in `Wide`" {
		t.Errorf("Expected/Actual = %q/%q", ce.Expected, ce.Actual)
	}
}

func TestIndexEmptyEnum(t *testing.T) {
	if ce := expandErr(t, "enum Never {}", "Index"); ce.Code != errors.ErrWrongShape {
		t.Errorf("Code = %s, want %s", ce.Code, errors.ErrWrongShape)
	}
}

func TestIterator(t *testing.T) {
	exp := expand(t, "struct Countdown<I> { inner: I, #[iterator(skip)] seen: usize }", "Iterator")

	assertContains(t, exp.Code,
		"impl<I> ::core::iter::Iterator for Countdown<I> where I: ::core::iter::Iterator {",
		"type Item = <I as ::core::iter::Iterator>::Item;",
		"fn next(&mut self) -> ::core::option::Option<Self::Item> {",
		"<I as ::core::iter::Iterator>::next(&mut self.inner)",
	)
}

func TestIteratorRejectsEnums(t *testing.T) {
	if ce := expandErr(t, "enum E { A(Vec<u8>) }", "Iterator"); ce.Code != errors.ErrWrongShape {
		t.Errorf("Code = %s, want %s", ce.Code, errors.ErrWrongShape)
	}
}

func TestIntoIteratorOwnedByDefault(t *testing.T) {
	exp := expand(t, "struct Bag<T> { items: Vec<T> }", "IntoIterator")

	assertContains(t, exp.Code,
		"impl<T> ::core::iter::IntoIterator for Bag<T> where Vec<T>: ::core::iter::IntoIterator {",
		"type Item = <Vec<T> as ::core::iter::IntoIterator>::Item;",
		"type IntoIter = <Vec<T> as ::core::iter::IntoIterator>::IntoIter;",
		"fn into_iter(self) -> Self::IntoIter {",
		"<Vec<T> as ::core::iter::IntoIterator>::into_iter(self.items)",
	)
	assertNotContains(t, exp.Code, "'__derive")
}

func TestIntoIteratorReferences(t *testing.T) {
	exp := expand(t, "#[into_iterator(owned, ref, ref_mut)] struct Bag<T> { items: Vec<T> }", "IntoIterator")

	assertContains(t, exp.Code,
		"impl<T> ::core::iter::IntoIterator for Bag<T> where Vec<T>: ::core::iter::IntoIterator {",
		"impl<'__derive, T> ::core::iter::IntoIterator for &'__derive Bag<T> where &'__derive Vec<T>: ::core::iter::IntoIterator {",
		"<&'__derive Vec<T> as ::core::iter::IntoIterator>::into_iter(&self.items)",
		"impl<'__derive, T> ::core::iter::IntoIterator for &'__derive mut Bag<T> where &'__derive mut Vec<T>: ::core::iter::IntoIterator {",
		"<&'__derive mut Vec<T> as ::core::iter::IntoIterator>::into_iter(&mut self.items)",
	)
	if n := strings.Count(exp.Code, "#[automatically_derived]"); n != 3 {
		t.Errorf("Expected 3 impls, got %d", n)
	}
}

func TestIntoIteratorFieldAccessors(t *testing.T) {
	exp := expand(t, "struct Words { #[into_iterator(ref)] words: Vec<String>, #[into_iterator(skip)] count: usize }", "IntoIterator")

	assertContains(t, exp.Code,
		"impl<'__derive> ::core::iter::IntoIterator for &'__derive Words {",
		"<&'__derive Vec<String> as ::core::iter::IntoIterator>::into_iter(&self.words)",
	)
	if n := strings.Count(exp.Code, "#[automatically_derived]"); n != 1 {
		t.Errorf("Expected only the reference impl, got %d impls", n)
	}
}

func TestReadStruct(t *testing.T) {
	exp := expand(t, "struct Source<R> { inner: R, #[read(skip)] count: usize }", "Read")

	assertContains(t, exp.Code,
		"impl<R> ::std::io::Read for Source<R> where R: ::std::io::Read {",
		"fn read(&mut self, buf: &mut [u8]) -> ::std::io::Result<usize> {",
		"<R as ::std::io::Read>::read(&mut self.inner, buf)",
	)
}

func TestReadEnum(t *testing.T) {
	exp := expand(t, "enum Input { File(File), Bytes(Cursor<Vec<u8>>) }", "Read")

	assertContains(t, exp.Code,
		"match self {",
		"Self::File(__self_0) => <File as ::std::io::Read>::read(__self_0, buf),",
		"Self::Bytes(__self_0) => <Cursor<Vec<u8>> as ::std::io::Read>::read(__self_0, buf),",
	)
}

func TestReadEnumVariantFieldCount(t *testing.T) {
	if ce := expandErr(t, "enum Input { Pair(File, File) }", "Read"); ce.Code != errors.ErrFieldCount {
		t.Errorf("Code = %s, want %s", ce.Code, errors.ErrFieldCount)
	}
}

func TestDerefEnum(t *testing.T) {
	exp := expand(t, "enum Text { Owned(String), Named { value: String } }", "Deref")

	assertContains(t, exp.Code,
		"type Target = String;",
		"Self::Owned(__self_0) => __self_0,",
		"Self::Named { value: __self_0 } => __self_0,",
	)
}

func TestDerefEnumTargetMismatch(t *testing.T) {
	ce := expandErr(t, "enum E { A(i32), B(u8) }", "Deref")

	if ce.Code != errors.ErrNonUniformVariants {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrNonUniformVariants)
	}
	if ce.Expected != "`i32`" || ce.Actual != "`u8` in `B`" {
		t.Errorf("Expected/Actual = %q/%q", ce.Expected, ce.Actual)
	}
}

func TestDerefEnumForwardProjection(t *testing.T) {
	exp := expand(t, "enum Ptr<T> { A(#[deref(forward)] Box<T>), B(#[deref(forward)] Box<T>) }", "Deref")

	assertContains(t, exp.Code,
		"impl<T> ::core::ops::Deref for Ptr<T> where Box<T>: ::core::ops::Deref {",
		"type Target = <Box<T> as ::core::ops::Deref>::Target;",
		"Self::A(__self_0) => <Box<T> as ::core::ops::Deref>::deref(__self_0),",
		"Self::B(__self_0) => <Box<T> as ::core::ops::Deref>::deref(__self_0),",
	)
}

func TestDerefMutEnumForwardProjection(t *testing.T) {
	exp := expand(t, "enum Ptr<T> { A(#[deref_mut(forward)] Box<T>) }", "DerefMut")

	assertContains(t, exp.Code,
		"where Box<T>: ::core::ops::DerefMut",
		"fn deref_mut(&mut self) -> &mut Self::Target {",
		"Self::A(__self_0) => <Box<T> as ::core::ops::DerefMut>::deref_mut(__self_0),",
	)
	assertNotContains(t, exp.Code, "type Target")
}

func TestDerefEnumForwardMismatch(t *testing.T) {
	ce := expandErr(t, "enum E { A(#[deref(forward)] Box<str>), B(String) }", "Deref")

	if ce.Code != errors.ErrNonUniformVariants {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrNonUniformVariants)
	}
	if ce.Expected != "forwarded target of `Box<str>`" {
		t.Errorf("Expected = %q", ce.Expected)
	}
}

func TestDerefToInner(t *testing.T) {
	exp := expand(t, "struct Handle(Rc<Inner>);", "DerefToInner")
	assertContains(t, exp.Code,
		"impl ::core::ops::Deref for Handle {",
		"type Target = Rc<Inner>;",
		"fn deref(&self) -> &Self::Target {",
		"&self.0",
	)

	exp = expand(t, "struct Handle { inner: Rc<Inner>, #[deref_mut_to_inner(skip)] id: u32 }", "DerefMutToInner")
	assertContains(t, exp.Code,
		"impl ::core::ops::DerefMut for Handle {",
		"fn deref_mut(&mut self) -> &mut Self::Target {",
		"&mut self.inner",
	)
}

func TestDerefToInnerRejectsEnums(t *testing.T) {
	if ce := expandErr(t, "enum E { A(i32) }", "DerefToInner"); ce.Code != errors.ErrWrongShape {
		t.Errorf("Code = %s, want %s", ce.Code, errors.ErrWrongShape)
	}
}

func TestAsMutEveryField(t *testing.T) {
	exp := expand(t, "struct Buffer { data: Vec<u8>, len: usize }", "AsMut")

	assertContains(t, exp.Code,
		"impl ::core::convert::AsMut<Vec<u8>> for Buffer {",
		"fn as_mut(&mut self) -> &mut Vec<u8> {",
		"&mut self.data",
		"impl ::core::convert::AsMut<usize> for Buffer {",
		"&mut self.len",
	)
}

func TestAsRefDuplicateTarget(t *testing.T) {
	ce := expandErr(t, "struct Pair { a: String, b: String }", "AsRef")

	if ce.Code != errors.ErrWrongShape {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrWrongShape)
	}
	if !strings.Contains(ce.Message, "fields `a` and `b` both convert to `String`") {
		t.Errorf("Unexpected message %q", ce.Message)
	}
}

func TestBorrowForward(t *testing.T) {
	exp := expand(t, "struct Name(#[borrow(forward)] String);", "Borrow")

	assertContains(t, exp.Code,
		"impl<__AsT: ?::core::marker::Sized> ::core::borrow::Borrow<__AsT> for Name where String: ::core::borrow::Borrow<__AsT> {",
		"fn borrow(&self) -> &__AsT {",
		"<String as ::core::borrow::Borrow<__AsT>>::borrow(&self.0)",
	)
}

func TestBorrowMutTypes(t *testing.T) {
	exp := expand(t, "struct Name { #[borrow_mut(types(str, String))] value: String }", "BorrowMut")

	assertContains(t, exp.Code,
		"impl ::core::borrow::BorrowMut<str> for Name where String: ::core::borrow::BorrowMut<str> {",
		"fn borrow_mut(&mut self) -> &mut str {",
		"<String as ::core::borrow::BorrowMut<str>>::borrow_mut(&mut self.value)",
		"impl ::core::borrow::BorrowMut<String> for Name {",
		"&mut self.value",
	)
}

func TestTryIntoVariant(t *testing.T) {
	exp := expand(t, "#[try_into_variant(owned, ref)] enum Value { Int(i64), Pair(String, u8), Nil }", "TryIntoVariant")

	assertContains(t, exp.Code,
		"impl Value {",
		"pub fn try_into_int(self) -> ::core::result::Result<i64, Self> {",
		"Self::Int(__0) => ::core::result::Result::Ok(__0),",
		"val => ::core::result::Result::Err(val),",
		"pub fn try_into_int_ref(&self) -> ::core::result::Result<&i64, &Self> {",
		"pub fn try_into_pair(self) -> ::core::result::Result<(String, u8), Self> {",
		"Self::Pair(__0, __1) => ::core::result::Result::Ok((__0, __1)),",
		"pub fn try_into_pair_ref(&self) -> ::core::result::Result<(&String, &u8), &Self> {",
		"pub fn try_into_nil(self) -> ::core::result::Result<(), Self> {",
		"Self::Nil => ::core::result::Result::Ok(()),",
	)
	assertNotContains(t, exp.Code, "_mut(")
}

func TestTryIntoVariantSingleVariant(t *testing.T) {
	exp := expand(t, "enum Only { One(u8) }", "TryIntoVariant")

	assertContains(t, exp.Code, "pub fn try_into_one(self) -> ::core::result::Result<u8, Self> {")
	assertNotContains(t, exp.Code, "val =>")
}
