package parser

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into declaration ASTs
type Parser struct {
	tokens  []lexer.Token
	source  string
	current int
	errors  []ParseError

	// panicking is set by error() and cleared once the parser has
	// resynchronized on the next item boundary
	panicking bool
}

// New creates a new parser for the given token stream. The source is used to
// capture verbatim text such as discriminant expressions; it may be empty, in
// which case token lexemes are joined instead.
func New(tokens []lexer.Token, source string) *Parser {
	return &Parser{
		tokens:  tokens,
		source:  source,
		current: 0,
		errors:  make([]ParseError, 0),
	}
}

// ParseSource lexes and parses a complete source file. Lexical errors are
// reported as parse errors.
func ParseSource(source string) (*ast.File, []ParseError) {
	tokens, lexErrors := lexer.New(source).ScanTokens()
	file, parseErrors := New(tokens, source).Parse()

	if len(lexErrors) == 0 {
		return file, parseErrors
	}
	all := make([]ParseError, 0, len(lexErrors)+len(parseErrors))
	for _, le := range lexErrors {
		all = append(all, FromLexError(le))
	}
	return file, append(all, parseErrors...)
}

// Parse parses the token stream and returns the file AST and any errors
func (p *Parser) Parse() (*ast.File, []ParseError) {
	file := &ast.File{
		Items: make([]*ast.DeriveInput, 0),
	}

	for !p.isAtEnd() {
		p.parseItem(file)
	}

	return file, p.errors
}

// parseItem parses one top-level item. Only struct, enum and union
// declarations are kept; everything else is skipped.
func (p *Parser) parseItem(file *ast.File) {
	itemStart := p.current
	first := p.peek()

	attrs := p.parseOuterAttributes()
	if p.panicking {
		p.recoverItem(itemStart)
		return
	}
	if p.isAtEnd() {
		return
	}

	visibility := p.parseVisibility()

	var item *ast.DeriveInput
	switch {
	case p.check(lexer.TOKEN_STRUCT):
		item = p.parseStruct(attrs, visibility)
	case p.check(lexer.TOKEN_ENUM):
		item = p.parseEnum(attrs, visibility)
	case p.check(lexer.TOKEN_UNION) && p.peekAt(1).Type == lexer.TOKEN_IDENTIFIER:
		item = p.parseUnion(attrs, visibility)
	case p.check(lexer.TOKEN_MOD) && p.peekAt(1).Type == lexer.TOKEN_IDENTIFIER &&
		p.peekAt(2).Type == lexer.TOKEN_LBRACE:
		modTok := p.advance()
		name := p.advance()
		file.InlineModules = append(file.InlineModules, &ast.ModuleNode{
			Name: name.Lexeme,
			Loc:  ast.TokenLocation(modTok),
		})
		p.skipItem()
		return
	default:
		if p.isClosingDelimiter(p.peek().Type) {
			p.error(p.peek(), fmt.Sprintf("Unexpected closing delimiter '%s'", p.peek().Lexeme))
			p.advance()
			p.panicking = false
			return
		}
		p.skipItem()
		file.Skipped++
		return
	}

	if p.panicking {
		p.recoverItem(itemStart)
		return
	}

	item.Span = ast.Span{Start: first.Offset, End: p.previous().End()}
	item.Derives = collectDerives(attrs)
	file.Items = append(file.Items, item)
}

// parseStruct parses `struct Name<..> { .. }`, `struct Name<..>(..);` and
// `struct Name;`
func (p *Parser) parseStruct(attrs []*ast.Attribute, visibility string) *ast.DeriveInput {
	keyword := p.advance()
	name := p.consume(lexer.TOKEN_IDENTIFIER, "Expected struct name")
	if p.panicking {
		return nil
	}

	item := &ast.DeriveInput{
		Attrs:      attrs,
		Visibility: visibility,
		Name:       name.Lexeme,
		Kind:       ast.DataStruct,
		Loc:        ast.TokenLocation(keyword),
	}
	item.Generics = p.parseGenerics()

	switch {
	case p.check(lexer.TOKEN_LPAREN):
		item.Fields = p.parseTupleFields()
		item.Generics.Where = p.parseWhereClause()
		p.consume(lexer.TOKEN_SEMICOLON, "Expected ';' after tuple struct")
	case p.match(lexer.TOKEN_SEMICOLON):
		item.Fields = &ast.Fields{Style: ast.FieldsUnit}
	default:
		item.Generics.Where = p.parseWhereClause()
		if p.match(lexer.TOKEN_SEMICOLON) {
			item.Fields = &ast.Fields{Style: ast.FieldsUnit}
		} else if p.check(lexer.TOKEN_LBRACE) {
			item.Fields = p.parseNamedFields()
		} else {
			p.error(p.peek(), "Expected '{', '(' or ';' after struct name")
		}
	}

	return item
}

// parseEnum parses `enum Name<..> { Variants }`
func (p *Parser) parseEnum(attrs []*ast.Attribute, visibility string) *ast.DeriveInput {
	keyword := p.advance()
	name := p.consume(lexer.TOKEN_IDENTIFIER, "Expected enum name")
	if p.panicking {
		return nil
	}

	item := &ast.DeriveInput{
		Attrs:      attrs,
		Visibility: visibility,
		Name:       name.Lexeme,
		Kind:       ast.DataEnum,
		Variants:   make([]*ast.Variant, 0),
		Loc:        ast.TokenLocation(keyword),
	}
	item.Generics = p.parseGenerics()
	item.Generics.Where = p.parseWhereClause()

	p.consume(lexer.TOKEN_LBRACE, "Expected '{' after enum name")
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() && !p.panicking {
		if variant := p.parseVariant(); variant != nil {
			item.Variants = append(item.Variants, variant)
		}
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after enum variants")

	return item
}

// parseUnion parses `union Name<..> { .. }`
func (p *Parser) parseUnion(attrs []*ast.Attribute, visibility string) *ast.DeriveInput {
	keyword := p.advance()
	name := p.consume(lexer.TOKEN_IDENTIFIER, "Expected union name")
	if p.panicking {
		return nil
	}

	item := &ast.DeriveInput{
		Attrs:      attrs,
		Visibility: visibility,
		Name:       name.Lexeme,
		Kind:       ast.DataUnion,
		Loc:        ast.TokenLocation(keyword),
	}
	item.Generics = p.parseGenerics()
	item.Generics.Where = p.parseWhereClause()
	item.Fields = p.parseNamedFields()

	return item
}

// parseVariant parses one enum variant with its payload and discriminant
func (p *Parser) parseVariant() *ast.Variant {
	attrs := p.parseOuterAttributes()
	p.parseVisibility()

	name := p.consume(lexer.TOKEN_IDENTIFIER, "Expected variant name")
	if p.panicking {
		return nil
	}

	variant := &ast.Variant{
		Attrs: attrs,
		Ident: name.Lexeme,
		Loc:   ast.TokenLocation(name),
	}

	switch {
	case p.check(lexer.TOKEN_LBRACE):
		variant.Fields = p.parseNamedFields()
	case p.check(lexer.TOKEN_LPAREN):
		variant.Fields = p.parseTupleFields()
	default:
		variant.Fields = &ast.Fields{Style: ast.FieldsUnit}
	}

	if p.match(lexer.TOKEN_EQUALS) {
		variant.Discriminant = p.captureUntil(false, lexer.TOKEN_COMMA, lexer.TOKEN_RBRACE)
		if variant.Discriminant == "" {
			p.error(p.peek(), "Expected discriminant expression after '='")
		}
	}

	return variant
}

// parseNamedFields parses `{ a: A, pub b: B }`
func (p *Parser) parseNamedFields() *ast.Fields {
	fields := &ast.Fields{Style: ast.FieldsNamed, List: make([]*ast.Field, 0)}
	p.consume(lexer.TOKEN_LBRACE, "Expected '{' before fields")

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() && !p.panicking {
		attrs := p.parseOuterAttributes()
		visibility := p.parseVisibility()
		name := p.consumeFieldName()
		p.consume(lexer.TOKEN_COLON, "Expected ':' after field name")
		if p.panicking {
			break
		}
		ty := p.parseType()

		fields.List = append(fields.List, &ast.Field{
			Attrs:      attrs,
			Visibility: visibility,
			Ident:      name.Lexeme,
			Index:      len(fields.List),
			Type:       ty,
			Loc:        ast.TokenLocation(name),
		})

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after fields")
	return fields
}

// parseTupleFields parses `(A, pub B)`
func (p *Parser) parseTupleFields() *ast.Fields {
	fields := &ast.Fields{Style: ast.FieldsUnnamed, List: make([]*ast.Field, 0)}
	p.consume(lexer.TOKEN_LPAREN, "Expected '(' before fields")

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() && !p.panicking {
		attrs := p.parseOuterAttributes()
		visibility := p.parseVisibility()
		start := p.peek()
		ty := p.parseType()

		fields.List = append(fields.List, &ast.Field{
			Attrs:      attrs,
			Visibility: visibility,
			Index:      len(fields.List),
			Type:       ty,
			Loc:        ast.TokenLocation(start),
		})

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.consume(lexer.TOKEN_RPAREN, "Expected ')' after fields")
	return fields
}

// parseVisibility parses `pub`, `pub(crate)`, `pub(in path)` and returns the
// source text, or "" for private items
func (p *Parser) parseVisibility() string {
	if !p.check(lexer.TOKEN_PUB) {
		return ""
	}
	start := p.advance()
	if p.check(lexer.TOKEN_LPAREN) {
		next := p.peekAt(1).Type
		if next == lexer.TOKEN_CRATE || next == lexer.TOKEN_SUPER ||
			next == lexer.TOKEN_SELF_VALUE || next == lexer.TOKEN_IN {
			p.skipGroup()
		}
	}
	return p.textFrom(start)
}

// consumeFieldName accepts identifiers and raw identifiers
func (p *Parser) consumeFieldName() lexer.Token {
	if p.check(lexer.TOKEN_IDENTIFIER) || p.check(lexer.TOKEN_UNION) {
		return p.advance()
	}
	p.error(p.peek(), "Expected field name")
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// collectDerives extracts the requests of every #[derive(...)] attribute
func collectDerives(attrs []*ast.Attribute) []*ast.DeriveRequest {
	var requests []*ast.DeriveRequest
	for _, attr := range ast.AttrsNamed(attrs, "derive") {
		if attr.Meta == nil || attr.Meta.Kind != ast.MetaList {
			continue
		}
		for _, item := range attr.Meta.List {
			if item.Kind != ast.MetaPath {
				continue
			}
			name := item.Path
			if idx := strings.LastIndex(name, "::"); idx >= 0 {
				name = name[idx+2:]
			}
			requests = append(requests, &ast.DeriveRequest{
				Name: name,
				Path: item.Path,
				Loc:  item.Loc,
			})
		}
	}
	return requests
}

// Item skipping and recovery

// skipItem consumes one item this parser does not model. An item ends at a
// ';' at nesting depth zero or at the brace that closes its body.
func (p *Parser) skipItem() {
	depth := 0
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Type {
		case lexer.TOKEN_LPAREN, lexer.TOKEN_LBRACKET, lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET:
			depth--
		case lexer.TOKEN_RBRACE:
			depth--
			if depth <= 0 {
				p.match(lexer.TOKEN_SEMICOLON)
				return
			}
		case lexer.TOKEN_SEMICOLON:
			if depth <= 0 {
				return
			}
		}
	}
}

// skipGroup consumes a balanced (), [] or {} group starting at the current token
func (p *Parser) skipGroup() {
	depth := 0
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Type {
		case lexer.TOKEN_LPAREN, lexer.TOKEN_LBRACKET, lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET, lexer.TOKEN_RBRACE:
			depth--
		}
		if depth <= 0 {
			return
		}
	}
}

// recoverItem implements panic mode recovery: rewind to the start of the
// failed item and skip it as a whole
func (p *Parser) recoverItem(itemStart int) {
	p.current = itemStart
	p.skipItem()
	if p.current == itemStart {
		p.advance()
	}
	p.panicking = false
}

// captureUntil consumes tokens up to, but not including, one of stops at
// nesting depth zero and returns the covered source text. With angles set,
// '<' and '>' count as brackets.
func (p *Parser) captureUntil(angles bool, stops ...lexer.TokenType) string {
	start := p.current
	depth := 0

	for !p.isAtEnd() {
		tok := p.peek()
		if depth == 0 && containsType(stops, tok.Type) {
			break
		}
		switch tok.Type {
		case lexer.TOKEN_LPAREN, lexer.TOKEN_LBRACKET, lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET, lexer.TOKEN_RBRACE:
			if depth == 0 {
				return p.textBetween(start, p.current)
			}
			depth--
		case lexer.TOKEN_LT:
			if angles {
				depth++
			}
		case lexer.TOKEN_GT:
			if angles && depth > 0 {
				depth--
			}
		}
		p.advance()
	}

	return p.textBetween(start, p.current)
}

// textFrom returns the source text from tok to the last consumed token
func (p *Parser) textFrom(tok lexer.Token) string {
	for i := p.current - 1; i >= 0; i-- {
		if p.tokens[i].Offset == tok.Offset {
			return p.textBetween(i, p.current)
		}
	}
	return tok.Lexeme
}

// textBetween returns the source text covered by tokens[from:to]
func (p *Parser) textBetween(from, to int) string {
	if from >= to {
		return ""
	}
	if p.source == "" {
		parts := make([]string, 0, to-from)
		for _, t := range p.tokens[from:to] {
			parts = append(parts, t.Lexeme)
		}
		return strings.Join(parts, " ")
	}
	return strings.TrimSpace(p.source[p.tokens[from].Offset:p.tokens[to-1].End()])
}

func containsType(types []lexer.TokenType, t lexer.TokenType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (p *Parser) isClosingDelimiter(t lexer.TokenType) bool {
	return t == lexer.TOKEN_RBRACE || t == lexer.TOKEN_RPAREN || t == lexer.TOKEN_RBRACKET
}

// Token stream helpers

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// peekAt returns the token n positions ahead
func (p *Parser) peekAt(n int) lexer.Token {
	if p.current+n >= len(p.tokens) {
		if len(p.tokens) == 0 {
			return lexer.Token{Type: lexer.TOKEN_EOF}
		}
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}

	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// error records a parse error and enters panic mode. Only the first error of
// an item is recorded; follow-on errors are noise.
func (p *Parser) error(token lexer.Token, message string) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.errors = append(p.errors, NewParseError(message, token))
}
