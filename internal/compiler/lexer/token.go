package lexer

import "fmt"

// TokenType represents the type of a token in Rust item source
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// Delimiters
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]

	// Punctuation
	TOKEN_COMMA        // ,
	TOKEN_SEMICOLON    // ;
	TOKEN_COLON        // :
	TOKEN_DOUBLE_COLON // ::
	TOKEN_DOT          // .
	TOKEN_DOT_DOT      // ..
	TOKEN_HASH         // #
	TOKEN_BANG         // !
	TOKEN_QUESTION     // ?
	TOKEN_AT           // @
	TOKEN_DOLLAR       // $
	TOKEN_TILDE        // ~

	// Operators. '<' and '>' are never merged into shifts so that nested
	// generic argument lists like Vec<Vec<T>> close one bracket at a time.
	TOKEN_EQUALS     // =
	TOKEN_EQ         // ==
	TOKEN_NEQ        // !=
	TOKEN_LT         // <
	TOKEN_GT         // >
	TOKEN_ARROW      // ->
	TOKEN_FAT_ARROW  // =>
	TOKEN_AMP        // &
	TOKEN_DOUBLE_AMP // &&
	TOKEN_PIPE       // |
	TOKEN_PLUS       // +
	TOKEN_MINUS      // -
	TOKEN_STAR       // *
	TOKEN_SLASH      // /
	TOKEN_PERCENT    // %
	TOKEN_CARET      // ^

	// Literals
	TOKEN_IDENTIFIER     // foo, r#type
	TOKEN_LIFETIME       // 'a
	TOKEN_STRING_LITERAL // "text", r#"raw"#, b"bytes"
	TOKEN_CHAR_LITERAL   // 'c'
	TOKEN_INT_LITERAL    // 42, 0xff, 7u8
	TOKEN_FLOAT_LITERAL  // 1.5

	// Keywords
	TOKEN_STRUCT     // struct
	TOKEN_ENUM       // enum
	TOKEN_UNION      // union (contextual)
	TOKEN_PUB        // pub
	TOKEN_CRATE      // crate
	TOKEN_SUPER      // super
	TOKEN_SELF_VALUE // self
	TOKEN_SELF_TYPE  // Self
	TOKEN_WHERE      // where
	TOKEN_IMPL       // impl
	TOKEN_FN         // fn
	TOKEN_FOR        // for
	TOKEN_MUT        // mut
	TOKEN_CONST      // const
	TOKEN_DYN        // dyn
	TOKEN_AS         // as
	TOKEN_IN         // in
	TOKEN_UNSAFE     // unsafe
	TOKEN_EXTERN     // extern
	TOKEN_TYPE       // type
	TOKEN_USE        // use
	TOKEN_MOD        // mod
	TOKEN_TRAIT      // trait
	TOKEN_STATIC     // static
	TOKEN_MACRO      // macro_rules
	TOKEN_TRUE       // true
	TOKEN_FALSE      // false
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_LPAREN:         "LPAREN",
	TOKEN_RPAREN:         "RPAREN",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_LBRACKET:       "LBRACKET",
	TOKEN_RBRACKET:       "RBRACKET",
	TOKEN_COMMA:          "COMMA",
	TOKEN_SEMICOLON:      "SEMICOLON",
	TOKEN_COLON:          "COLON",
	TOKEN_DOUBLE_COLON:   "DOUBLE_COLON",
	TOKEN_DOT:            "DOT",
	TOKEN_DOT_DOT:        "DOT_DOT",
	TOKEN_HASH:           "HASH",
	TOKEN_BANG:           "BANG",
	TOKEN_QUESTION:       "QUESTION",
	TOKEN_AT:             "AT",
	TOKEN_DOLLAR:         "DOLLAR",
	TOKEN_TILDE:          "TILDE",
	TOKEN_EQUALS:         "EQUALS",
	TOKEN_EQ:             "EQ",
	TOKEN_NEQ:            "NEQ",
	TOKEN_LT:             "LT",
	TOKEN_GT:             "GT",
	TOKEN_ARROW:          "ARROW",
	TOKEN_FAT_ARROW:      "FAT_ARROW",
	TOKEN_AMP:            "AMP",
	TOKEN_DOUBLE_AMP:     "DOUBLE_AMP",
	TOKEN_PIPE:           "PIPE",
	TOKEN_PLUS:           "PLUS",
	TOKEN_MINUS:          "MINUS",
	TOKEN_STAR:           "STAR",
	TOKEN_SLASH:          "SLASH",
	TOKEN_PERCENT:        "PERCENT",
	TOKEN_CARET:          "CARET",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_LIFETIME:       "LIFETIME",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_CHAR_LITERAL:   "CHAR_LITERAL",
	TOKEN_INT_LITERAL:    "INT_LITERAL",
	TOKEN_FLOAT_LITERAL:  "FLOAT_LITERAL",
	TOKEN_STRUCT:         "STRUCT",
	TOKEN_ENUM:           "ENUM",
	TOKEN_UNION:          "UNION",
	TOKEN_PUB:            "PUB",
	TOKEN_CRATE:          "CRATE",
	TOKEN_SUPER:          "SUPER",
	TOKEN_SELF_VALUE:     "SELF_VALUE",
	TOKEN_SELF_TYPE:      "SELF_TYPE",
	TOKEN_WHERE:          "WHERE",
	TOKEN_IMPL:           "IMPL",
	TOKEN_FN:             "FN",
	TOKEN_FOR:            "FOR",
	TOKEN_MUT:            "MUT",
	TOKEN_CONST:          "CONST",
	TOKEN_DYN:            "DYN",
	TOKEN_AS:             "AS",
	TOKEN_IN:             "IN",
	TOKEN_UNSAFE:         "UNSAFE",
	TOKEN_EXTERN:         "EXTERN",
	TOKEN_TYPE:           "TYPE",
	TOKEN_USE:            "USE",
	TOKEN_MOD:            "MOD",
	TOKEN_TRAIT:          "TRAIT",
	TOKEN_STATIC:         "STATIC",
	TOKEN_MACRO:          "MACRO",
	TOKEN_TRUE:           "TRUE",
	TOKEN_FALSE:          "FALSE",
}

// String returns the string representation of a token type
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a lexical token
type Token struct {
	Type    TokenType   // Type of token
	Lexeme  string      // Original text
	Literal interface{} // Parsed value for literals (string, rune, int64, float64, bool)
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
	Offset  int         // Byte offset of the first character
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s(%s) = %v at %d:%d",
			t.Type, t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s(%s) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// IsKeyword reports whether the token is a reserved word. Keywords that may
// appear in paths (self, Self, crate, super) are included.
func (t Token) IsKeyword() bool {
	return t.Type >= TOKEN_STRUCT
}

// Keywords maps reserved words to their token types. "union" is a contextual
// keyword in Rust; the parser treats a TOKEN_UNION as an identifier anywhere
// other than item position.
var Keywords = map[string]TokenType{
	"struct":      TOKEN_STRUCT,
	"enum":        TOKEN_ENUM,
	"union":       TOKEN_UNION,
	"pub":         TOKEN_PUB,
	"crate":       TOKEN_CRATE,
	"super":       TOKEN_SUPER,
	"self":        TOKEN_SELF_VALUE,
	"Self":        TOKEN_SELF_TYPE,
	"where":       TOKEN_WHERE,
	"impl":        TOKEN_IMPL,
	"fn":          TOKEN_FN,
	"for":         TOKEN_FOR,
	"mut":         TOKEN_MUT,
	"const":       TOKEN_CONST,
	"dyn":         TOKEN_DYN,
	"as":          TOKEN_AS,
	"in":          TOKEN_IN,
	"unsafe":      TOKEN_UNSAFE,
	"extern":      TOKEN_EXTERN,
	"type":        TOKEN_TYPE,
	"use":         TOKEN_USE,
	"mod":         TOKEN_MOD,
	"trait":       TOKEN_TRAIT,
	"static":      TOKEN_STATIC,
	"macro_rules": TOKEN_MACRO,
	"true":        TOKEN_TRUE,
	"false":       TOKEN_FALSE,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
