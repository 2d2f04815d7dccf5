package codegen

import (
	"strings"
	"testing"

	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

func TestParsePlaceholders(t *testing.T) {
	tests := []struct {
		in   string
		want []placeholder
	}{
		{"plain", nil},
		{"{{literal}}", nil},
		{"{} and {1}", []placeholder{{Trait: "Display"}, {Arg: "1", Trait: "Display"}}},
		{"{name:?}", []placeholder{{Arg: "name", Spec: "?", Trait: "Debug"}}},
		{"{:#010x}", []placeholder{{Spec: "#010x", Trait: "LowerHex"}}},
		{"{0:>8}", []placeholder{{Arg: "0", Spec: ">8", Trait: "Display"}}},
		{"{:E}{:b}", []placeholder{{Spec: "E", Trait: "UpperExp"}, {Spec: "b", Trait: "Binary"}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePlaceholders(tt.in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parsePlaceholders(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("placeholder %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParsePlaceholdersErrors(t *testing.T) {
	for _, in := range []string{"{", "open {x", "close }", "}{"} {
		if _, err := parsePlaceholders(in); err == nil {
			t.Errorf("Expected %q to be rejected", in)
		}
	}
}

func TestDisplayStructFormat(t *testing.T) {
	exp := expand(t, `#[display("({}, {})", x, y)] struct Point { x: i32, y: i32, z: i32 }`, "Display")

	if exp.Kind.Family() != FamilyFormatting {
		t.Errorf("Family = %s, want %s", exp.Kind.Family(), FamilyFormatting)
	}
	assertContains(t, exp.Code,
		"impl ::core::fmt::Display for Point {",
		"fn fmt(&self, __derive_f: &mut ::core::fmt::Formatter<'_>) -> ::core::fmt::Result {",
		"let x = &self.x;",
		"let y = &self.y;",
		`::core::write!(__derive_f, "({}, {})", x, y)`,
	)
	assertNotContains(t, exp.Code, "let z")
}

func TestDisplayFormatBoundsGenericFields(t *testing.T) {
	exp := expand(t, `#[display("{value:x} ({})", label)] struct Tagged<T, L> { value: T, label: L }`, "Display")

	assertContains(t, exp.Code,
		"where T: ::core::fmt::LowerHex, L: ::core::fmt::Display",
		"let value = &self.value;",
		"let label = &self.label;",
	)
}

func TestDisplayUnitAndNewtype(t *testing.T) {
	exp := expand(t, "struct Marker;", "Display")
	assertContains(t, exp.Code, `__derive_f.write_str("Marker")`)

	exp = expand(t, "struct Wrapper<T>(T);", "Display")
	assertContains(t, exp.Code,
		"impl<T> ::core::fmt::Display for Wrapper<T> where T: ::core::fmt::Display {",
		"::core::fmt::Display::fmt(&self.0, __derive_f)",
	)
}

func TestDisplayNeedsFormatForManyFields(t *testing.T) {
	ce := expandErr(t, "struct Pair(i32, i32);", "Display")

	if ce.Code != errors.ErrMissingFormat {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrMissingFormat)
	}
	if !strings.Contains(ce.Message, "it has 2 fields") {
		t.Errorf("Unexpected message %q", ce.Message)
	}
}

func TestDisplayEnumVariants(t *testing.T) {
	exp := expand(t, `enum Op { Add, #[display("neg {}", _0)] Neg(i64), Lit(i64), #[display("{lhs} .. {rhs}")] Range { lhs: i64, rhs: i64, step: i64 } }`, "Display")

	assertContains(t, exp.Code,
		"match self {",
		`Self::Add => __derive_f.write_str("Add"),`,
		`Self::Neg(_0) => ::core::write!(__derive_f, "neg {}", _0),`,
		"Self::Lit(_0) => ::core::fmt::Display::fmt(_0, __derive_f),",
		`Self::Range { lhs, rhs, .. } => ::core::write!(__derive_f, "{lhs} .. {rhs}"),`,
	)
}

func TestDisplayEmptyEnum(t *testing.T) {
	exp := expand(t, "enum Never {}", "Display")

	assertContains(t, exp.Code, "match *self {}")
}

func TestDisplaySharedVariantFormat(t *testing.T) {
	exp := expand(t, `#[display("op<{_variant}>")] enum Op { Add, Lit(i64) }`, "Display")

	assertContains(t, exp.Code,
		`Self::Add => match "Add" {`,
		`_variant => ::core::write!(__derive_f, "op<{_variant}>"),`,
		`Self::Lit(_0) => match &::core::format_args!("{}", _0) {`,
		"},",
	)
}

func TestDisplaySharedFormatWithoutVariant(t *testing.T) {
	exp := expand(t, `#[display("an op")] enum Op { Add, Lit(i64) }`, "Display")

	assertContains(t, exp.Code,
		`Self::Add => ::core::write!(__derive_f, "an op"),`,
		`Self::Lit(..) => ::core::write!(__derive_f, "an op"),`,
	)
	assertNotContains(t, exp.Code, "_variant")
}

func TestDisplayFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{"variant placeholder with spec", `#[display("{_variant:?}")] enum E { A }`, errors.ErrFormatString},
		{"unclosed brace", `#[display("{x")] struct S { x: i32 }`, errors.ErrFormatString},
		{"missing argument", `#[display("{} {}", x)] struct S { x: i32 }`, errors.ErrFormatString},
		{"missing indexed argument", `#[display("{1}", x)] struct S { x: i32 }`, errors.ErrFormatString},
		{"variant with many fields", "enum E { A(i32, i32) }", errors.ErrMissingFormat},
		{"union", "union U { a: u8 }", errors.ErrUnionNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := expandErr(t, tt.src, "Display")
			if ce.Code != tt.code {
				t.Errorf("Code = %s, want %s (%s)", ce.Code, tt.code, ce.Message)
			}
		})
	}
}

func TestLowerHexNewtype(t *testing.T) {
	exp := expand(t, "struct Id(u32);", "LowerHex")

	assertContains(t, exp.Code,
		"impl ::core::fmt::LowerHex for Id {",
		"::core::fmt::LowerHex::fmt(&self.0, __derive_f)",
	)
}

func TestLowerHexSharedFormatUsesPlaceholder(t *testing.T) {
	exp := expand(t, `#[lower_hex("0x{_variant}")] enum Word { Short(u16), Long(u32) }`, "LowerHex")

	assertContains(t, exp.Code,
		`Self::Short(_0) => match &::core::format_args!("{:x}", _0) {`,
		`_variant => ::core::write!(__derive_f, "0x{_variant}"),`,
	)
}

func TestLowerHexUnitVariantNeedsFormat(t *testing.T) {
	ce := expandErr(t, "enum Flag { On, Off }", "LowerHex")

	if ce.Code != errors.ErrMissingFormat {
		t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrMissingFormat)
	}
	if !strings.Contains(ce.Message, "Flag::On") {
		t.Errorf("Expected the variant in the message, got %q", ce.Message)
	}
}

func TestDebugNamedStruct(t *testing.T) {
	exp := expand(t, "struct Account<T> { id: u64, owner: T, #[debug(skip)] secret: String }", "Debug")

	assertContains(t, exp.Code,
		"impl<T> ::core::fmt::Debug for Account<T> where T: ::core::fmt::Debug {",
		"let id = &self.id;",
		"let owner = &self.owner;",
		`__derive_f.debug_struct("Account")`,
		`.field("id", id)`,
		`.field("owner", owner)`,
		".finish_non_exhaustive()",
	)
	assertNotContains(t, exp.Code, "secret", ".finish()")
}

func TestDebugTupleAndUnit(t *testing.T) {
	exp := expand(t, "struct Pair(u8, u8);", "Debug")
	assertContains(t, exp.Code,
		"let _0 = &self.0;",
		"let _1 = &self.1;",
		`__derive_f.debug_tuple("Pair")`,
		".field(_0)",
		".field(_1)",
		".finish()",
	)

	exp = expand(t, "struct Unit;", "Debug")
	assertContains(t, exp.Code, `__derive_f.write_str("Unit")`)
}

func TestDebugFieldFormat(t *testing.T) {
	exp := expand(t, `struct Handle<T> { #[debug("{:#x}", raw)] raw: T, #[debug("<hidden>")] token: String }`, "Debug")

	assertContains(t, exp.Code,
		"where T: ::core::fmt::LowerHex",
		"let raw = &self.raw;",
		`.field("raw", &::core::format_args!("{:#x}", raw))`,
		`.field("token", &::core::format_args!("<hidden>"))`,
	)
	assertNotContains(t, exp.Code, "T: ::core::fmt::Debug", "let token")
}

func TestDebugStructFormat(t *testing.T) {
	exp := expand(t, `#[debug("Point({x}, {y})")] struct Point { x: i32, y: i32 }`, "Debug")

	assertContains(t, exp.Code, `::core::write!(__derive_f, "Point({x}, {y})")`)
	assertNotContains(t, exp.Code, "debug_struct")
}

func TestDebugEnum(t *testing.T) {
	exp := expand(t, `enum Shape { Circle { r: f64 }, #[debug("square {}", _0)] Square(f64), Empty }`, "Debug")

	assertContains(t, exp.Code,
		"Self::Circle { r } => {",
		`__derive_f.debug_struct("Circle")`,
		`.field("r", r)`,
		`Self::Square(_0) => ::core::write!(__derive_f, "square {}", _0),`,
		`Self::Empty => __derive_f.write_str("Empty"),`,
	)
}

func TestDebugErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{"field format under struct format", `#[debug("s")] struct S { #[debug("f")] a: i32 }`, errors.ErrWrongShape},
		{"field format under variant format", `enum E { #[debug("v")] A(#[debug("f")] i32) }`, errors.ErrWrongShape},
		{"format on enum", `#[debug("e")] enum E { A }`, errors.ErrWrongLevel},
		{"bad field format", `struct S { #[debug("{}")] a: i32 }`, errors.ErrFormatString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := expandErr(t, tt.src, "Debug")
			if ce.Code != tt.code {
				t.Errorf("Code = %s, want %s (%s)", ce.Code, tt.code, ce.Message)
			}
		})
	}
}

func TestDefaultStruct(t *testing.T) {
	exp := expand(t, "struct Config { retries: u32, name: String }", "Default")

	if exp.Kind.Family() != FamilyConstruction {
		t.Errorf("Family = %s, want %s", exp.Kind.Family(), FamilyConstruction)
	}
	assertContains(t, exp.Code,
		"impl ::core::default::Default for Config {",
		"#[inline]",
		"fn default() -> Self {",
		"Self { retries: ::core::default::Default::default(), name: ::core::default::Default::default() }",
	)
}

func TestDefaultGenericTuple(t *testing.T) {
	exp := expand(t, "struct Wrap<T>(T);", "Default")

	assertContains(t, exp.Code,
		"where T: ::core::default::Default",
		"Self(::core::default::Default::default())",
	)
}

func TestDefaultEnumMarkedVariant(t *testing.T) {
	exp := expand(t, "enum Level { Low, #[default] Mid { weight: u8 }, High }", "Default")

	assertContains(t, exp.Code, "Self::Mid { weight: ::core::default::Default::default() }")
	assertNotContains(t, exp.Code, "Self::Low", "Self::High")
}

func TestDefaultEnumErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no marker", "enum Level { Low, Mid }", "2 variants could be the default (`Low`, `Mid`)"},
		{"no variants", "enum Never {}", "an enum without variants has no default value"},
		{"all ignored", "enum E { #[default(ignore)] A }", "every variant is ignored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := expandErr(t, tt.src, "Default")
			if ce.Code != errors.ErrWrongShape {
				t.Fatalf("Code = %s, want %s", ce.Code, errors.ErrWrongShape)
			}
			if !strings.Contains(ce.Message, tt.want) {
				t.Errorf("Expected message to contain %q, got %q", tt.want, ce.Message)
			}
		})
	}
}
