// Package parser implements the derive input parser, transforming Rust token
// streams into declaration ASTs. It uses recursive descent parsing with panic
// mode error recovery: a syntax error abandons the current item only, and
// parsing resumes at the next item boundary.
package parser

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, e.Token.Lexeme)
}

// NewParseError creates a new parse error
func NewParseError(message string, token lexer.Token) ParseError {
	return ParseError{
		Message: message,
		Location: ast.SourceLocation{
			Line:   token.Line,
			Column: token.Column,
		},
		Token: token,
	}
}

// FromLexError converts a lexical error into a parse error so callers see a
// single error list
func FromLexError(err lexer.LexError) ParseError {
	return ParseError{
		Message:  err.Message,
		Location: ast.SourceLocation{Line: err.Line, Column: err.Column},
		Token: lexer.Token{
			Type:   lexer.TOKEN_ERROR,
			Lexeme: err.Lexeme,
			Line:   err.Line,
			Column: err.Column,
		},
	}
}
