package tooling

import (
	"strings"
	"sync"
	"testing"
)

const shapesSource = `#[derive(Add, Clone)]
struct Point2D {
    x: i32,
    y: i32,
}

#[derive(IsVariant, Unwrap)]
enum Shape {
    Circle(f64),
    Polygon(Point2D),
    Empty,
}
`

func openShapes(t *testing.T) *API {
	t.Helper()

	api := NewAPI()
	if _, err := api.ParseFile("shapes.rs", shapesSource); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	return api
}

func TestAPICreation(t *testing.T) {
	api := NewAPI()
	if api == nil {
		t.Fatal("NewAPI() returned nil")
	}

	if api.documents == nil {
		t.Error("API documents map is nil")
	}

	if api.symbolIndex == nil {
		t.Error("API symbolIndex is nil")
	}

	if api.driver == nil {
		t.Error("API driver is nil")
	}

	if !api.config.PreviewExpansions {
		t.Error("Expected expansion previews to be enabled by default")
	}
}

func TestParseFile(t *testing.T) {
	api := NewAPI()

	doc, err := api.ParseFile("file:///work/src/shapes.rs", shapesSource)
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	if doc.Path != "/work/src/shapes.rs" {
		t.Errorf("Expected Path='/work/src/shapes.rs', got '%s'", doc.Path)
	}

	if doc.File == nil || len(doc.File.Items) != 2 {
		t.Fatalf("Expected 2 parsed declarations, got %v", doc.File)
	}

	if doc.Result.Failed() {
		t.Errorf("Unexpected errors: %v", doc.Result.Errors)
	}

	out, err := api.GetExpansion("file:///work/src/shapes.rs")
	if err != nil {
		t.Fatalf("GetExpansion() failed: %v", err)
	}
	for _, want := range []string{"// source: shapes.rs", "impl ::core::ops::Add for Point2D", "pub const fn is_circle(&self) -> bool"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expansion missing %q:\n%s", want, out)
		}
	}
}

func TestParseFileEmptyURI(t *testing.T) {
	if _, err := NewAPI().ParseFile("", shapesSource); err == nil {
		t.Error("Expected an error for an empty URI")
	}
}

func TestUpdateDocument(t *testing.T) {
	api := openShapes(t)

	doc, err := api.UpdateDocument("shapes.rs", "#[derive(Not)] struct Flag(bool);", 2)
	if err != nil {
		t.Fatalf("UpdateDocument() failed: %v", err)
	}

	if doc.Version != 2 {
		t.Errorf("Expected version=2, got %d", doc.Version)
	}

	if len(doc.File.Items) != 1 || doc.File.Items[0].Name != "Flag" {
		t.Errorf("Expected the new content to be parsed, got %v", doc.File.Items)
	}

	if refs := api.GetWorkspaceSymbols("Point2D"); len(refs) != 0 {
		t.Errorf("Old symbols should be dropped from the index, got %d", len(refs))
	}
}

func TestUpdateDocumentUnchanged(t *testing.T) {
	api := openShapes(t)
	before, _ := api.GetDocument("shapes.rs")

	doc, err := api.UpdateDocument("shapes.rs", shapesSource, 5)
	if err != nil {
		t.Fatalf("UpdateDocument() failed: %v", err)
	}

	if doc != before {
		t.Error("Expected the cached document to be reused")
	}
	if doc.Version != 5 {
		t.Errorf("Expected version=5, got %d", doc.Version)
	}
}

func TestCloseDocument(t *testing.T) {
	api := openShapes(t)

	api.CloseDocument("shapes.rs")

	if _, exists := api.GetDocument("shapes.rs"); exists {
		t.Error("Expected document to not exist after closing")
	}
	if syms := api.GetWorkspaceSymbols(""); len(syms) != 0 {
		t.Errorf("Expected an empty index, got %d symbols", len(syms))
	}
	if _, err := api.GetHover("shapes.rs", Position{}); err == nil {
		t.Error("Expected an error for a closed document")
	}
}

func TestGetDiagnostics(t *testing.T) {
	api := openShapes(t)

	if diagnostics := api.GetDiagnostics("shapes.rs"); len(diagnostics) != 0 {
		t.Errorf("Expected no diagnostics for valid source, got %v", diagnostics)
	}
	if diagnostics := api.GetDiagnostics("missing.rs"); diagnostics != nil {
		t.Errorf("Expected nil diagnostics for an unknown document, got %v", diagnostics)
	}
}

func TestGetDiagnosticsWithErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		code     string
		severity DiagnosticSeverity
	}{
		{"structural", "#[derive(Deref)]\nstruct Broken { a: u8, b: u8 }\n", "STR005", DiagnosticSeverityError},
		{"syntax", "#[derive(Add)]\nstruct {\n", "SYN", DiagnosticSeverityError},
		{"warning", "#[derive(FromStr)]\n#[from_str(rename_all = \"lowercase\")]\nenum E { Foo, FOO }\n", "GEN003", DiagnosticSeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewAPI()
			if _, err := api.ParseFile("test.rs", tt.source); err != nil {
				t.Fatalf("ParseFile() failed: %v", err)
			}

			diagnostics := api.GetDiagnostics("test.rs")
			if len(diagnostics) == 0 {
				t.Fatal("Expected diagnostics")
			}

			diag := diagnostics[0]
			if !strings.HasPrefix(diag.Code, tt.code) {
				t.Errorf("Expected code %s, got %s", tt.code, diag.Code)
			}
			if diag.Severity != tt.severity {
				t.Errorf("Expected severity=%v, got %v", tt.severity, diag.Severity)
			}
			if diag.Source != "derivekit" {
				t.Errorf("Expected source='derivekit', got '%s'", diag.Source)
			}
			if diag.Range.End.Character <= diag.Range.Start.Character {
				t.Errorf("Expected a non-empty range, got %+v", diag.Range)
			}
		})
	}
}

func TestGetHover(t *testing.T) {
	api := openShapes(t)

	tests := []struct {
		name string
		pos  Position
		want []string
	}{
		{"declaration", Position{Line: 1, Character: 9}, []string{"struct Point2D", "*Derives:* `Add`"}},
		{"field", Position{Line: 2, Character: 4}, []string{"x: i32", "*In:* `Point2D`"}},
		{"derive", Position{Line: 0, Character: 10}, []string{
			"#[derive(Add)]",
			"Implements `::core::ops::Add` (arithmetic).",
			"`#[add(...)]`",
			"impl ::core::ops::Add for Point2D",
		}},
		{"foreign derive", Position{Line: 0, Character: 16}, []string{"Not a derivekit derive"}},
		{"variant", Position{Line: 9, Character: 5}, []string{"Shape::Polygon(Point2D)"}},
		{"inherent derive", Position{Line: 6, Character: 11}, []string{"Generates inherent methods on the type (variants)."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hover, err := api.GetHover("shapes.rs", tt.pos)
			if err != nil {
				t.Fatalf("GetHover() failed: %v", err)
			}
			if hover == nil {
				t.Fatal("Expected hover information")
			}
			for _, want := range tt.want {
				if !strings.Contains(hover.Contents, want) {
					t.Errorf("Expected hover to contain %q, got:\n%s", want, hover.Contents)
				}
			}
		})
	}
}

func TestGetHoverNoSymbol(t *testing.T) {
	api := openShapes(t)

	hover, err := api.GetHover("shapes.rs", Position{Line: 5, Character: 0})
	if err != nil {
		t.Fatalf("GetHover() failed: %v", err)
	}
	if hover != nil {
		t.Errorf("Expected no hover on a blank line, got %s", hover.Contents)
	}
}

func TestGetHoverShowsDeriveErrors(t *testing.T) {
	api := NewAPI()
	if _, err := api.ParseFile("test.rs", "#[derive(Deref)]\nstruct Broken { a: u8, b: u8 }\n"); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	hover, err := api.GetHover("test.rs", Position{Line: 0, Character: 10})
	if err != nil || hover == nil {
		t.Fatalf("GetHover() = %v, %v", hover, err)
	}
	if !strings.Contains(hover.Contents, "**STR005:**") {
		t.Errorf("Expected the derive error in the hover, got:\n%s", hover.Contents)
	}
}

func TestGetCompletions(t *testing.T) {
	api := NewAPI()
	if _, err := api.ParseFile("test.rs", "#[derive(Add, \nstruct P(i32);"); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	items, err := api.GetCompletions("test.rs", Position{Line: 0, Character: 14})
	if err != nil {
		t.Fatalf("GetCompletions() failed: %v", err)
	}

	labels := make(map[string]CompletionItem)
	for _, item := range items {
		labels[item.Label] = item
	}

	if _, ok := labels["Add"]; ok {
		t.Error("Already written derives should not be offered")
	}
	sub, ok := labels["Sub"]
	if !ok {
		t.Fatal("Expected Sub to be offered")
	}
	if sub.Kind != CompletionKindDerive || sub.Detail != "arithmetic" {
		t.Errorf("Unexpected Sub item: %+v", sub)
	}
}

func TestGetCompletionsUnknownDocument(t *testing.T) {
	if _, err := NewAPI().GetCompletions("missing.rs", Position{}); err == nil {
		t.Error("Expected an error for an unknown document")
	}
}

func TestGetDefinition(t *testing.T) {
	api := openShapes(t)

	// The Point2D payload of Shape::Polygon
	loc, err := api.GetDefinition("shapes.rs", Position{Line: 9, Character: 13})
	if err != nil {
		t.Fatalf("GetDefinition() failed: %v", err)
	}
	if loc == nil {
		t.Fatal("Expected a definition")
	}
	if loc.Range.Start.Line != 1 {
		t.Errorf("Expected the definition on line 1, got %d", loc.Range.Start.Line)
	}
}

func TestGetReferences(t *testing.T) {
	api := openShapes(t)
	if _, err := api.ParseFile("other.rs", "#[derive(Add)]\nstruct Other(i32);\n"); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	refs, err := api.GetReferences("shapes.rs", Position{Line: 0, Character: 10})
	if err != nil {
		t.Fatalf("GetReferences() failed: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("Expected Add to be found in both documents, got %v", refs)
	}

	refs, err = api.GetReferences("shapes.rs", Position{Line: 5, Character: 0})
	if err != nil || len(refs) != 0 {
		t.Errorf("Expected no references on a blank line, got %v, %v", refs, err)
	}
}

func TestGetDocumentSymbols(t *testing.T) {
	api := openShapes(t)

	symbols, err := api.GetDocumentSymbols("shapes.rs")
	if err != nil {
		t.Fatalf("GetDocumentSymbols() failed: %v", err)
	}

	counts := make(map[SymbolKind]int)
	for _, sym := range symbols {
		counts[sym.Kind]++
	}

	want := map[SymbolKind]int{
		SymbolKindStruct:  1,
		SymbolKindEnum:    1,
		SymbolKindDerive:  4,
		SymbolKindVariant: 3,
		SymbolKindField:   4,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("Expected %d symbols of kind %d, got %d", n, kind, counts[kind])
		}
	}
}

func TestGetWorkspaceSymbols(t *testing.T) {
	api := openShapes(t)

	syms := api.GetWorkspaceSymbols("shape")
	if len(syms) != 1 || syms[0].Name != "Shape" {
		t.Errorf("Expected only Shape, got %v", syms)
	}
}

func TestThreadSafety(t *testing.T) {
	api := NewAPI()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			uri := "shapes.rs"
			if _, err := api.ParseFile(uri, shapesSource); err != nil {
				t.Errorf("ParseFile() failed in goroutine %d: %v", n, err)
			}

			_, _ = api.GetDocument(uri)
			_ = api.GetDiagnostics(uri)
			_, _ = api.GetDocumentSymbols(uri)
			_, _ = api.GetHover(uri, Position{Line: 0, Character: 10})
		}(i)
	}
	wg.Wait()
}

func TestURIToPath(t *testing.T) {
	tests := map[string]string{
		"file:///tmp/lib.rs": "/tmp/lib.rs",
		"lib.rs":             "lib.rs",
		"untitled:Untitled":  "untitled:Untitled",
	}

	for in, want := range tests {
		if got := URIToPath(in); got != want {
			t.Errorf("URIToPath(%q) = %q, want %q", in, got, want)
		}
	}
}
