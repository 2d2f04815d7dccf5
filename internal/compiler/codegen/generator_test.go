package codegen

import (
	"strings"
	"testing"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/parser"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

func parseFile(t *testing.T, source string) *ast.File {
	t.Helper()

	file, errs := parser.ParseSource(source)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	return file
}

func TestWriterIndentation(t *testing.T) {
	w := NewWriter()
	w.Block("fn main()", func() {
		w.Line("let x = %d;", 1)
		w.Line("")
		w.Block("if x > 0", func() {
			w.Line("println!(\"positive\");")
		})
	})

	want := "fn main() {\n" +
		"    let x = 1;\n" +
		"\n" +
		"    if x > 0 {\n" +
		"        println!(\"positive\");\n" +
		"    }\n" +
		"}\n"
	if got := w.String(); got != want {
		t.Errorf("Writer output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriterLinesAndClose(t *testing.T) {
	w := NewWriter()
	w.Open("impl Foo")
	w.Lines("fn a() {}\nfn b() {}\n")
	w.Close(";")

	want := "impl Foo {\n    fn a() {}\n    fn b() {}\n};\n"
	if got := w.String(); got != want {
		t.Errorf("Writer output:\n%s\nwant:\n%s", got, want)
	}
}

func TestDerivedImplSeparatesImpls(t *testing.T) {
	w := NewWriter()
	derivedImpl(w, "impl A for B")
	w.Close("")
	derivedImpl(w, "impl C for B")
	w.Close("")

	want := "#[automatically_derived]\nimpl A for B {\n}\n\n#[automatically_derived]\nimpl C for B {\n}\n"
	if got := w.String(); got != want {
		t.Errorf("Output:\n%s\nwant:\n%s", got, want)
	}
}

func TestExpandDeclaration(t *testing.T) {
	file := parseFile(t, "#[derive(Clone, Add, Add, Sub)] struct P { x: i32 }")
	result := NewGenerator(Options{}).ExpandDeclaration(file.Items[0])

	if result.Failed() {
		t.Fatalf("Unexpected errors: %v", result.Errors)
	}
	if len(result.Ignored) != 1 || result.Ignored[0] != "Clone" {
		t.Errorf("Ignored = %v, want [Clone]", result.Ignored)
	}
	if len(result.Expansions) != 2 {
		t.Fatalf("Expected 2 expansions, got %d", len(result.Expansions))
	}
	if result.Expansions[0].Trait != "Add" || result.Expansions[1].Trait != "Sub" {
		t.Errorf("Expansions = %s, %s, want Add, Sub", result.Expansions[0].Trait, result.Expansions[1].Trait)
	}
}

func TestExpandDeclarationCollectsFailures(t *testing.T) {
	file := parseFile(t, "#[derive(Deref, Add)] struct P { x: i32, y: i32 }")
	result := NewGenerator(Options{}).ExpandDeclaration(file.Items[0])

	if !result.Failed() {
		t.Fatal("Expected the declaration to fail")
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != errors.ErrFieldCount {
		t.Errorf("Errors = %v, want one STR005", result.Errors)
	}
	if result.Errors[0].Trait != "Deref" || result.Errors[0].Subject != "P" {
		t.Errorf("Error subject = %s/%s, want Deref/P", result.Errors[0].Trait, result.Errors[0].Subject)
	}
	if len(result.Expansions) != 1 || result.Expansions[0].Trait != "Add" {
		t.Errorf("Expected Add to still expand, got %v", result.Expansions)
	}
}

func TestExpandDeclarationWarningsDoNotFail(t *testing.T) {
	file := parseFile(t, `#[derive(FromStr)] #[from_str(rename_all = "lowercase")] enum E { Foo, FOO }`)
	result := NewGenerator(Options{}).ExpandDeclaration(file.Items[0])

	if result.Failed() {
		t.Fatalf("Warnings should not fail the declaration: %v", result.Errors)
	}
	if !result.Errors.HasWarnings() {
		t.Error("Expected the duplicate literal warning to be reported")
	}
}

func TestExpandDeclarationRecoversPanics(t *testing.T) {
	g := NewGenerator(Options{})
	g.registry.entries[KindAdd].Strategy = StrategyFunc(func(*ast.DeriveInput, resolve.TraitSpec) (*Expansion, error) {
		panic("boom")
	})

	file := parseFile(t, "#[derive(Add)] struct P { x: i32 }")
	result := g.ExpandDeclaration(file.Items[0])

	if len(result.Errors) != 1 || result.Errors[0].Code != errors.ErrCodeGenFailed {
		t.Fatalf("Errors = %v, want one GEN001", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "panicked: boom") {
		t.Errorf("Unexpected message: %s", result.Errors[0].Message)
	}
}

func TestExpandFileAndRender(t *testing.T) {
	file := parseFile(t, `
#[derive(Add)]
struct Point2D { x: i32, y: i32 }

struct Plain { a: u8 }

#[derive(Deref)]
struct Broken { a: u8, b: u8 }

#[derive(IsVariant, Unwrap)]
enum Shape { Circle(f64), Empty }
`)
	results := NewGenerator(Options{}).ExpandFile(file)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	out := Render("shapes.rs", results)
	if !strings.HasPrefix(out, GeneratedHeader()+"// source: shapes.rs\n") {
		t.Errorf("Unexpected file header:\n%s", out)
	}
	for _, want := range []string{
		"// Point2D: Add\n",
		"// Shape: IsVariant, Unwrap\n",
		"impl ::core::ops::Add for Point2D {",
		"pub const fn is_circle(&self) -> bool",
		"pub fn unwrap_circle(self) -> f64",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered file missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Broken") || strings.Contains(out, "Plain") {
		t.Errorf("Failed or underived declarations should be left out:\n%s", out)
	}
}
