package parser

import (
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/lexer"
)

// parseOuterAttributes parses a run of #[...] attributes. Inner attributes
// (#![...]) are skipped.
func (p *Parser) parseOuterAttributes() []*ast.Attribute {
	attrs := make([]*ast.Attribute, 0)

	for p.check(lexer.TOKEN_HASH) && !p.panicking {
		if p.peekAt(1).Type == lexer.TOKEN_BANG {
			p.advance()
			p.advance()
			p.skipGroup()
			continue
		}
		if attr := p.parseAttribute(); attr != nil {
			attrs = append(attrs, attr)
		}
	}

	return attrs
}

// parseAttribute parses #[path], #[path(...)] and #[path = lit]
func (p *Parser) parseAttribute() *ast.Attribute {
	hash := p.advance()
	p.consume(lexer.TOKEN_LBRACKET, "Expected '[' after '#'")
	if p.panicking {
		return nil
	}

	bodyStart := p.current
	// #[unsafe(no_mangle)] wraps the real attribute
	if p.check(lexer.TOKEN_UNSAFE) && p.peekAt(1).Type == lexer.TOKEN_LPAREN {
		p.advance()
		p.advance()
		meta := p.parseMetaItem()
		p.consume(lexer.TOKEN_RPAREN, "Expected ')' after unsafe attribute")
		p.consume(lexer.TOKEN_RBRACKET, "Expected ']' to close attribute")
		return &ast.Attribute{Path: meta.Path, Meta: meta, Raw: meta.Raw, Loc: ast.TokenLocation(hash)}
	}

	meta := p.parseMetaItem()
	raw := p.textBetween(bodyStart, p.current)
	p.consume(lexer.TOKEN_RBRACKET, "Expected ']' to close attribute")
	if p.panicking {
		return nil
	}

	return &ast.Attribute{
		Path: meta.Path,
		Meta: meta,
		Raw:  raw,
		Loc:  ast.TokenLocation(hash),
	}
}

// parseMetaItem parses one attribute argument. Items that do not fit the
// path/list/name-value/literal shapes are kept verbatim as MetaOther.
func (p *Parser) parseMetaItem() *ast.Meta {
	start := p.current
	tok := p.peek()
	loc := ast.TokenLocation(tok)

	if isLiteral(tok.Type) {
		p.advance()
		return &ast.Meta{Kind: ast.MetaLit, Value: literalOf(tok), Raw: tok.Lexeme, Loc: loc}
	}

	if !isMetaPathStart(tok.Type) {
		raw := p.captureUntil(true, lexer.TOKEN_COMMA)
		return &ast.Meta{Kind: ast.MetaOther, Raw: raw, Loc: loc}
	}

	path, ok := p.parseMetaPath()
	if !ok {
		p.current = start
		raw := p.captureUntil(true, lexer.TOKEN_COMMA)
		return &ast.Meta{Kind: ast.MetaOther, Raw: raw, Loc: loc}
	}

	switch {
	case p.check(lexer.TOKEN_LPAREN):
		p.advance()
		meta := &ast.Meta{Kind: ast.MetaList, Path: path, List: make([]*ast.Meta, 0), Loc: loc}
		for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() && !p.panicking {
			meta.List = append(meta.List, p.parseMetaItem())
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		p.consume(lexer.TOKEN_RPAREN, "Expected ')' to close attribute arguments")
		meta.Raw = p.textBetween(start, p.current)
		return meta

	case p.check(lexer.TOKEN_EQUALS):
		p.advance()
		valueTok := p.peek()
		if isLiteral(valueTok.Type) && isMetaEnd(p.peekAt(1).Type) {
			p.advance()
			return &ast.Meta{
				Kind:  ast.MetaNameValue,
				Path:  path,
				Value: literalOf(valueTok),
				Raw:   p.textBetween(start, p.current),
				Loc:   loc,
			}
		}
		p.captureUntil(true, lexer.TOKEN_COMMA)
		return &ast.Meta{Kind: ast.MetaOther, Path: path, Raw: p.textBetween(start, p.current), Loc: loc}

	case isMetaEnd(p.peek().Type):
		return &ast.Meta{Kind: ast.MetaPath, Path: path, Raw: path, Loc: loc}
	}

	// Something like a generic type `Box<dyn Error>`: keep it raw
	p.current = start
	raw := p.captureUntil(true, lexer.TOKEN_COMMA)
	return &ast.Meta{Kind: ast.MetaOther, Raw: raw, Loc: loc}
}

// parseMetaPath parses a `::`-separated path whose segments may be keywords
func (p *Parser) parseMetaPath() (string, bool) {
	var sb strings.Builder
	if p.match(lexer.TOKEN_DOUBLE_COLON) {
		sb.WriteString("::")
	}
	for {
		tok := p.peek()
		if !isMetaPathStart(tok.Type) || tok.Type == lexer.TOKEN_DOUBLE_COLON {
			return "", false
		}
		p.advance()
		sb.WriteString(tok.Lexeme)
		if p.check(lexer.TOKEN_DOUBLE_COLON) && isMetaPathStart(p.peekAt(1).Type) &&
			p.peekAt(1).Type != lexer.TOKEN_DOUBLE_COLON {
			p.advance()
			sb.WriteString("::")
			continue
		}
		return sb.String(), true
	}
}

func isMetaPathStart(t lexer.TokenType) bool {
	return t == lexer.TOKEN_IDENTIFIER || t == lexer.TOKEN_DOUBLE_COLON ||
		(t >= lexer.TOKEN_STRUCT && t != lexer.TOKEN_TRUE && t != lexer.TOKEN_FALSE)
}

func isMetaEnd(t lexer.TokenType) bool {
	return t == lexer.TOKEN_COMMA || t == lexer.TOKEN_RPAREN ||
		t == lexer.TOKEN_RBRACKET || t == lexer.TOKEN_EOF
}

func isLiteral(t lexer.TokenType) bool {
	switch t {
	case lexer.TOKEN_STRING_LITERAL, lexer.TOKEN_INT_LITERAL, lexer.TOKEN_FLOAT_LITERAL,
		lexer.TOKEN_CHAR_LITERAL, lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		return true
	}
	return false
}

// literalOf converts a literal token into an attribute literal
func literalOf(tok lexer.Token) *ast.Lit {
	lit := &ast.Lit{Value: tok.Lexeme, Raw: tok.Lexeme}
	switch tok.Type {
	case lexer.TOKEN_STRING_LITERAL:
		lit.Kind = ast.LitStr
		if s, ok := tok.Literal.(string); ok {
			lit.Value = s
		}
	case lexer.TOKEN_INT_LITERAL:
		lit.Kind = ast.LitInt
	case lexer.TOKEN_FLOAT_LITERAL:
		lit.Kind = ast.LitFloat
	case lexer.TOKEN_CHAR_LITERAL:
		lit.Kind = ast.LitChar
	case lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		lit.Kind = ast.LitBool
	}
	return lit
}
