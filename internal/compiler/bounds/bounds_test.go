package bounds

import (
	"reflect"
	"testing"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/parser"
)

func parseDecl(t *testing.T, source string) *ast.DeriveInput {
	t.Helper()

	file, errs := parser.ParseSource(source)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	if len(file.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(file.Items))
	}
	return file.Items[0]
}

func fieldTypes(decl *ast.DeriveInput) []ast.Type {
	types := make([]ast.Type, 0, decl.Fields.Len())
	for _, f := range decl.Fields.List {
		types = append(types, f.Type)
	}
	return types
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		source string
		impl   string
		ty     string
		where  string
	}{
		{
			name:   "no generics",
			source: "struct P { x: i32 }",
		},
		{
			name:   "bounds and defaults",
			source: "struct W<'a, T: Clone + 'a = u8, const N: usize = 2>(&'a [T; N]);",
			impl:   "<'a, T: Clone + 'a, const N: usize>",
			ty:     "<'a, T, N>",
		},
		{
			name:   "where clause",
			source: "struct W<T>(T) where T: Copy;",
			impl:   "<T>",
			ty:     "<T>",
			where:  "where T: Copy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := parseDecl(t, tt.source)
			impl, ty, where := NewAugmentation(decl.Generics).Split()
			if impl != tt.impl || ty != tt.ty || where != tt.where {
				t.Errorf("Split() = %q, %q, %q; want %q, %q, %q", impl, ty, where, tt.impl, tt.ty, tt.where)
			}
		})
	}
}

func TestAugmentationDoesNotTouchDeclaration(t *testing.T) {
	decl := parseDecl(t, "struct W<T>(T) where T: Copy;")
	aug := NewAugmentation(decl.Generics)
	aug.AddTypeParamBound("T", "::core::ops::Add<Output = T>")
	aug.AddParam("__RhsT")

	if len(decl.Generics.Where) != 1 || len(decl.Generics.Params) != 1 {
		t.Error("Declaration generics were modified")
	}
	impl, _, where := aug.Split()
	if impl != "<T, __RhsT>" {
		t.Errorf("Unexpected impl params %q", impl)
	}
	if where != "where T: Copy, T: ::core::ops::Add<Output = T>" {
		t.Errorf("Unexpected where %q", where)
	}
}

func TestAddParamPlacesLifetimesFirst(t *testing.T) {
	decl := parseDecl(t, "struct W<'a, T>(&'a T);")
	aug := NewAugmentation(decl.Generics)
	aug.AddParam("__IdxT")
	aug.AddParam("'__deriveMoreLifetime")

	impl, _, _ := aug.Split()
	if impl != "<'a, '__deriveMoreLifetime, T, __IdxT>" {
		t.Errorf("Unexpected impl params %q", impl)
	}
}

func TestDuplicatePredicatesDropped(t *testing.T) {
	aug := NewAugmentation(nil)
	aug.AddRawPredicate("T: Copy")
	aug.AddRawPredicate("T: Copy")
	aug.AddWherePredicate(ast.SimplePath("T"), "Copy")

	if got := aug.Predicates(); len(got) != 1 {
		t.Errorf("Expected 1 predicate, got %v", got)
	}
}

func TestHeader(t *testing.T) {
	decl := parseDecl(t, "struct Point<T> { x: T, y: T }")
	aug := NewAugmentation(decl.Generics)
	aug.AddFieldPredicates(fieldTypes(decl), decl.SelfType(), func(ty ast.Type) string {
		return "::core::ops::Add<Output = " + ty.String() + ">"
	})

	expected := "impl<T> ::core::ops::Add for Point<T> where T: ::core::ops::Add<Output = T>"
	if got := aug.Header("::core::ops::Add", "Point"); got != expected {
		t.Errorf("Header() = %q; want %q", got, expected)
	}
	if got := NewAugmentation(nil).InherentHeader("Unit"); got != "impl Unit" {
		t.Errorf("InherentHeader() = %q", got)
	}
}

func TestMentionsGeneric(t *testing.T) {
	decl := parseDecl(t, `struct S<'a, T, const N: usize> {
		a: i32,
		b: T,
		c: Vec<Option<T>>,
		d: &'a str,
		e: [u8; N],
		f: Buf<{ N * 2 }>,
		g: T::Item,
		h: &'static str,
		i: Box<dyn Fn(T) -> u8>,
		j: String,
		k: Array<u8, N>,
	}`)

	expected := map[string]bool{
		"a": false, "b": true, "c": true, "d": true, "e": true, "f": true,
		"g": true, "h": false, "i": true, "j": false, "k": true,
	}
	for _, f := range decl.Fields.List {
		if got := MentionsGeneric(f.Type, decl.Generics); got != expected[f.Ident] {
			t.Errorf("MentionsGeneric(%s: %s) = %v; want %v", f.Ident, f.Type, got, expected[f.Ident])
		}
	}

	if MentionsGeneric(ast.SimplePath("T"), nil) {
		t.Error("Nil generics mention nothing")
	}
}

func TestContainsStructurally(t *testing.T) {
	decl := parseDecl(t, `struct Tree<T> {
		value: T,
		left: Option<Box<Tree<T>>>,
		right: Option<Box<Self>>,
		other: Tree<u8>,
		path: crate::Tree<T>,
		items: Vec<T>,
		lookup: <T as Iterator>::Item,
	}`)
	subject := decl.SelfType()

	expected := map[string]bool{
		"value": false, "left": true, "right": true, "other": false,
		"path": true, "items": false, "lookup": false,
	}
	for _, f := range decl.Fields.List {
		if got := ContainsStructurally(f.Type, subject); got != expected[f.Ident] {
			t.Errorf("ContainsStructurally(%s: %s) = %v; want %v", f.Ident, f.Type, got, expected[f.Ident])
		}
	}
}

func TestFieldPredicates(t *testing.T) {
	decl := parseDecl(t, `struct List<T> {
		head: T,
		again: T,
		count: usize,
		tail: Option<Box<List<T>>>,
		extra: Vec<T>,
	}`)

	preds := FieldPredicates(fieldTypes(decl), decl.SelfType(), decl.Generics, func(ty ast.Type) string {
		return "::core::clone::Clone"
	})
	expected := []string{
		"T: ::core::clone::Clone",
		"Vec<T>: ::core::clone::Clone",
	}
	if !reflect.DeepEqual(preds, expected) {
		t.Errorf("FieldPredicates() = %v; want %v", preds, expected)
	}
}

func TestDistinctTypes(t *testing.T) {
	decl := parseDecl(t, "struct S(i32, u8, i32, (i32, u8));")
	got := DistinctTypes(fieldTypes(decl))
	if len(got) != 3 {
		t.Errorf("Expected 3 distinct types, got %d", len(got))
	}
}
