package parser

import (
	"fmt"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/lexer"
)

// parseType parses a type expression
//
//nolint:gocyclo // one case per type form
func (p *Parser) parseType() ast.Type {
	tok := p.peek()
	loc := ast.TokenLocation(tok)

	switch tok.Type {
	case lexer.TOKEN_LPAREN:
		return p.parseTupleOrParenType(loc)
	case lexer.TOKEN_LBRACKET:
		return p.parseArrayOrSliceType(loc)
	case lexer.TOKEN_AMP, lexer.TOKEN_DOUBLE_AMP:
		return p.parseReferenceType(loc)
	case lexer.TOKEN_STAR:
		p.advance()
		mut := false
		if p.match(lexer.TOKEN_MUT) {
			mut = true
		} else {
			p.consume(lexer.TOKEN_CONST, "Expected 'const' or 'mut' after '*'")
		}
		return &ast.PtrType{Mut: mut, Elem: p.parseType(), Loc: loc}
	case lexer.TOKEN_BANG:
		p.advance()
		return &ast.NeverType{Loc: loc}
	case lexer.TOKEN_FN, lexer.TOKEN_UNSAFE, lexer.TOKEN_EXTERN:
		return p.parseFnType(nil, loc)
	case lexer.TOKEN_FOR:
		lifetimes := p.parseForLifetimes()
		if p.check(lexer.TOKEN_FN) || p.check(lexer.TOKEN_UNSAFE) || p.check(lexer.TOKEN_EXTERN) {
			return p.parseFnType(lifetimes, loc)
		}
		bounds := p.parseBounds()
		if len(bounds) > 0 {
			bounds[0].ForLifetimes = lifetimes
		}
		return &ast.TraitObjectType{Bounds: bounds, Loc: loc}
	case lexer.TOKEN_DYN:
		p.advance()
		return &ast.TraitObjectType{Dyn: true, Bounds: p.parseBounds(), Loc: loc}
	case lexer.TOKEN_IMPL:
		p.advance()
		return &ast.ImplTraitType{Bounds: p.parseBounds(), Loc: loc}
	case lexer.TOKEN_LT:
		return p.parseQualifiedPath(loc)
	case lexer.TOKEN_IDENTIFIER:
		if tok.Lexeme == "_" {
			p.advance()
			return &ast.InferType{Loc: loc}
		}
		return p.parsePathOrMacroType(loc)
	case lexer.TOKEN_SELF_TYPE, lexer.TOKEN_SELF_VALUE, lexer.TOKEN_CRATE,
		lexer.TOKEN_SUPER, lexer.TOKEN_DOUBLE_COLON, lexer.TOKEN_UNION:
		return p.parsePathOrMacroType(loc)
	}

	p.error(tok, fmt.Sprintf("Expected type, found '%s'", tok.Lexeme))
	return &ast.InferType{Loc: loc}
}

// parseTupleOrParenType parses (), (T), (T,) and (A, B)
func (p *Parser) parseTupleOrParenType(loc ast.SourceLocation) ast.Type {
	p.advance()
	if p.match(lexer.TOKEN_RPAREN) {
		return &ast.TupleType{Loc: loc}
	}

	first := p.parseType()
	if p.match(lexer.TOKEN_RPAREN) {
		return &ast.ParenType{Elem: first, Loc: loc}
	}

	elems := []ast.Type{first}
	for p.match(lexer.TOKEN_COMMA) && !p.check(lexer.TOKEN_RPAREN) && !p.panicking {
		elems = append(elems, p.parseType())
	}
	p.consume(lexer.TOKEN_RPAREN, "Expected ')' after tuple type")
	return &ast.TupleType{Elems: elems, Loc: loc}
}

// parseArrayOrSliceType parses [T; N] and [T]
func (p *Parser) parseArrayOrSliceType(loc ast.SourceLocation) ast.Type {
	p.advance()
	elem := p.parseType()
	if p.match(lexer.TOKEN_SEMICOLON) {
		length := p.captureUntil(false, lexer.TOKEN_RBRACKET)
		p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after array length")
		return &ast.ArrayType{Elem: elem, Len: length, Loc: loc}
	}
	p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after slice type")
	return &ast.SliceType{Elem: elem, Loc: loc}
}

// parseReferenceType parses &'a mut T; && is two references
func (p *Parser) parseReferenceType(loc ast.SourceLocation) ast.Type {
	double := p.advance().Type == lexer.TOKEN_DOUBLE_AMP

	ref := &ast.ReferenceType{Loc: loc}
	if p.check(lexer.TOKEN_LIFETIME) {
		ref.Lifetime = p.advance().Lexeme
	}
	ref.Mut = p.match(lexer.TOKEN_MUT)
	ref.Elem = p.parseType()

	if double {
		return &ast.ReferenceType{Elem: ref, Loc: loc}
	}
	return ref
}

// parseFnType parses `unsafe extern "C" fn(A, B) -> C`
func (p *Parser) parseFnType(lifetimes []string, loc ast.SourceLocation) ast.Type {
	fn := &ast.FnType{ForLifetimes: lifetimes, Loc: loc}
	fn.Unsafe = p.match(lexer.TOKEN_UNSAFE)
	if p.match(lexer.TOKEN_EXTERN) {
		fn.Abi = `"C"`
		if p.check(lexer.TOKEN_STRING_LITERAL) {
			fn.Abi = p.advance().Lexeme
		}
	}
	p.consume(lexer.TOKEN_FN, "Expected 'fn'")
	p.consume(lexer.TOKEN_LPAREN, "Expected '(' after 'fn'")

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() && !p.panicking {
		if p.check(lexer.TOKEN_DOT_DOT) {
			p.advance()
			fn.Variadic = true
			break
		}
		// Named arguments: fn(name: T)
		if (p.check(lexer.TOKEN_IDENTIFIER) || p.check(lexer.TOKEN_SELF_VALUE)) &&
			p.peekAt(1).Type == lexer.TOKEN_COLON {
			p.advance()
			p.advance()
		}
		fn.Inputs = append(fn.Inputs, p.parseType())
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "Expected ')' after fn arguments")

	if p.match(lexer.TOKEN_ARROW) {
		fn.Output = p.parseType()
	}
	return fn
}

// parseQualifiedPath parses <T as Trait>::Assoc and <T>::Assoc
func (p *Parser) parseQualifiedPath(loc ast.SourceLocation) ast.Type {
	p.advance()
	qself := &ast.QSelf{Type: p.parseType()}
	if p.match(lexer.TOKEN_AS) {
		qself.Trait = p.parsePath()
	}
	p.consume(lexer.TOKEN_GT, "Expected '>' to close qualified path")

	path := &ast.PathType{QSelf: qself, Loc: loc}
	for p.match(lexer.TOKEN_DOUBLE_COLON) && !p.panicking {
		path.Segments = append(path.Segments, p.parsePathSegment())
	}
	if len(path.Segments) == 0 {
		p.error(p.peek(), "Expected '::' after qualified path")
	}
	return path
}

// parsePathOrMacroType parses a path, or a macro invocation used as a type
func (p *Parser) parsePathOrMacroType(loc ast.SourceLocation) ast.Type {
	start := p.current
	path := p.parsePath()
	if p.check(lexer.TOKEN_BANG) {
		p.advance()
		p.skipGroup()
		return &ast.MacroType{Raw: p.textBetween(start, p.current), Loc: loc}
	}
	return path
}

// parsePath parses `::a::b<T>::C`
func (p *Parser) parsePath() *ast.PathType {
	path := &ast.PathType{Loc: ast.TokenLocation(p.peek())}
	path.Global = p.match(lexer.TOKEN_DOUBLE_COLON)

	for !p.panicking {
		path.Segments = append(path.Segments, p.parsePathSegment())
		if p.check(lexer.TOKEN_DOUBLE_COLON) && isPathIdent(p.peekAt(1).Type) {
			p.advance()
			continue
		}
		break
	}
	return path
}

// parsePathSegment parses one identifier with optional generic or
// parenthesized arguments
func (p *Parser) parsePathSegment() *ast.PathSegment {
	tok := p.peek()
	if !isPathIdent(tok.Type) {
		p.error(tok, fmt.Sprintf("Expected path segment, found '%s'", tok.Lexeme))
		return &ast.PathSegment{}
	}
	p.advance()
	seg := &ast.PathSegment{Ident: tok.Lexeme}

	// Turbofish
	if p.check(lexer.TOKEN_DOUBLE_COLON) && p.peekAt(1).Type == lexer.TOKEN_LT {
		p.advance()
	}

	switch {
	case p.check(lexer.TOKEN_LT):
		seg.Args = p.parseGenericArgs()
	case p.check(lexer.TOKEN_LPAREN):
		seg.Parenthesized = true
		p.advance()
		for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() && !p.panicking {
			seg.Inputs = append(seg.Inputs, p.parseType())
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		p.consume(lexer.TOKEN_RPAREN, "Expected ')' after arguments")
		if p.match(lexer.TOKEN_ARROW) {
			seg.Output = p.parseType()
		}
	}
	return seg
}

// parseGenericArgs parses <'a, T, N, Output = U, Item: Copy>
func (p *Parser) parseGenericArgs() []ast.GenericArg {
	p.consume(lexer.TOKEN_LT, "Expected '<'")
	args := make([]ast.GenericArg, 0)

	for !p.check(lexer.TOKEN_GT) && !p.isAtEnd() && !p.panicking {
		args = append(args, p.parseGenericArg())
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.consume(lexer.TOKEN_GT, "Expected '>' to close generic arguments")
	return args
}

func (p *Parser) parseGenericArg() ast.GenericArg {
	tok := p.peek()

	switch tok.Type {
	case lexer.TOKEN_LIFETIME:
		p.advance()
		return &ast.LifetimeArg{Name: tok.Lexeme}
	case lexer.TOKEN_INT_LITERAL, lexer.TOKEN_CHAR_LITERAL, lexer.TOKEN_STRING_LITERAL,
		lexer.TOKEN_TRUE, lexer.TOKEN_FALSE, lexer.TOKEN_MINUS, lexer.TOKEN_LBRACE:
		return &ast.ConstArg{Expr: p.captureUntil(false, lexer.TOKEN_COMMA, lexer.TOKEN_GT)}
	case lexer.TOKEN_IDENTIFIER:
		switch p.peekAt(1).Type {
		case lexer.TOKEN_EQUALS:
			p.advance()
			p.advance()
			return &ast.BindingArg{Name: tok.Lexeme, Type: p.parseType()}
		case lexer.TOKEN_COLON:
			p.advance()
			p.advance()
			return &ast.ConstraintArg{Name: tok.Lexeme, Bounds: p.parseBounds()}
		}
	}

	return &ast.TypeArg{Type: p.parseType()}
}

// parseBounds parses `A + B + 'a + ?Sized`
func (p *Parser) parseBounds() []*ast.TypeBound {
	bounds := make([]*ast.TypeBound, 0)
	for !p.panicking {
		if !p.startsBound() {
			break
		}
		bounds = append(bounds, p.parseBound())
		if !p.match(lexer.TOKEN_PLUS) {
			break
		}
	}
	return bounds
}

// startsBound reports whether the current token can begin a bound
func (p *Parser) startsBound() bool {
	switch p.peek().Type {
	case lexer.TOKEN_LIFETIME, lexer.TOKEN_QUESTION, lexer.TOKEN_FOR, lexer.TOKEN_LPAREN,
		lexer.TOKEN_TILDE, lexer.TOKEN_DOUBLE_COLON:
		return true
	default:
		return isPathIdent(p.peek().Type)
	}
}

func (p *Parser) parseBound() *ast.TypeBound {
	if p.check(lexer.TOKEN_LIFETIME) {
		return &ast.TypeBound{Lifetime: p.advance().Lexeme}
	}

	if p.match(lexer.TOKEN_LPAREN) {
		bound := p.parseBound()
		p.consume(lexer.TOKEN_RPAREN, "Expected ')' after parenthesized bound")
		return bound
	}

	bound := &ast.TypeBound{}
	if p.check(lexer.TOKEN_FOR) {
		bound.ForLifetimes = p.parseForLifetimes()
	}
	// ~const Trait
	if p.match(lexer.TOKEN_TILDE) {
		p.match(lexer.TOKEN_CONST)
	}
	bound.Maybe = p.match(lexer.TOKEN_QUESTION)
	bound.Trait = p.parsePath()
	return bound
}

// parseForLifetimes parses for<'a, 'b>
func (p *Parser) parseForLifetimes() []string {
	p.consume(lexer.TOKEN_FOR, "Expected 'for'")
	p.consume(lexer.TOKEN_LT, "Expected '<' after 'for'")

	var lifetimes []string
	for p.check(lexer.TOKEN_LIFETIME) {
		lifetimes = append(lifetimes, p.advance().Lexeme)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.consume(lexer.TOKEN_GT, "Expected '>' after higher-ranked lifetimes")
	return lifetimes
}

// parseGenerics parses the declaration parameter list, if present
func (p *Parser) parseGenerics() *ast.Generics {
	generics := &ast.Generics{
		Params: make([]*ast.GenericParam, 0),
	}
	if !p.match(lexer.TOKEN_LT) {
		return generics
	}

	for !p.check(lexer.TOKEN_GT) && !p.isAtEnd() && !p.panicking {
		p.parseOuterAttributes()
		if param := p.parseGenericParam(); param != nil {
			generics.Params = append(generics.Params, param)
		}
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.consume(lexer.TOKEN_GT, "Expected '>' to close generic parameters")
	return generics
}

func (p *Parser) parseGenericParam() *ast.GenericParam {
	tok := p.peek()
	loc := ast.TokenLocation(tok)

	switch tok.Type {
	case lexer.TOKEN_LIFETIME:
		p.advance()
		param := &ast.GenericParam{Kind: ast.LifetimeParam, Name: tok.Lexeme, Loc: loc}
		if p.match(lexer.TOKEN_COLON) {
			param.Bounds = p.parseLifetimeBounds()
		}
		return param

	case lexer.TOKEN_CONST:
		p.advance()
		name := p.consume(lexer.TOKEN_IDENTIFIER, "Expected const parameter name")
		p.consume(lexer.TOKEN_COLON, "Expected ':' after const parameter name")
		param := &ast.GenericParam{Kind: ast.ConstParam, Name: name.Lexeme, Loc: loc}
		param.ConstType = p.parseType()
		if p.match(lexer.TOKEN_EQUALS) {
			param.Default = p.captureUntil(false, lexer.TOKEN_COMMA, lexer.TOKEN_GT)
		}
		return param

	case lexer.TOKEN_IDENTIFIER:
		p.advance()
		param := &ast.GenericParam{Kind: ast.TypeParam, Name: tok.Lexeme, Loc: loc}
		if p.match(lexer.TOKEN_COLON) {
			param.Bounds = p.parseBounds()
		}
		if p.match(lexer.TOKEN_EQUALS) {
			param.Default = p.parseType().String()
		}
		return param
	}

	p.error(tok, fmt.Sprintf("Expected generic parameter, found '%s'", tok.Lexeme))
	return nil
}

// parseLifetimeBounds parses 'a + 'b
func (p *Parser) parseLifetimeBounds() []*ast.TypeBound {
	var bounds []*ast.TypeBound
	for p.check(lexer.TOKEN_LIFETIME) {
		bounds = append(bounds, &ast.TypeBound{Lifetime: p.advance().Lexeme})
		if !p.match(lexer.TOKEN_PLUS) {
			break
		}
	}
	return bounds
}

// parseWhereClause parses an optional where clause. The clause ends before
// '{' or ';'.
func (p *Parser) parseWhereClause() []*ast.WherePredicate {
	if !p.match(lexer.TOKEN_WHERE) {
		return nil
	}

	predicates := make([]*ast.WherePredicate, 0)
	for !p.check(lexer.TOKEN_LBRACE) && !p.check(lexer.TOKEN_SEMICOLON) &&
		!p.isAtEnd() && !p.panicking {
		pred := &ast.WherePredicate{}
		if p.check(lexer.TOKEN_FOR) {
			pred.ForLifetimes = p.parseForLifetimes()
		}

		if p.check(lexer.TOKEN_LIFETIME) {
			pred.Lifetime = p.advance().Lexeme
			p.consume(lexer.TOKEN_COLON, "Expected ':' in lifetime predicate")
			pred.Bounds = p.parseLifetimeBounds()
		} else {
			pred.Bounded = p.parseType()
			p.consume(lexer.TOKEN_COLON, "Expected ':' in where predicate")
			pred.Bounds = p.parseBounds()
		}
		predicates = append(predicates, pred)

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	return predicates
}

// isPathIdent reports whether a token can be a path segment
func isPathIdent(t lexer.TokenType) bool {
	switch t {
	case lexer.TOKEN_IDENTIFIER, lexer.TOKEN_SELF_TYPE, lexer.TOKEN_SELF_VALUE,
		lexer.TOKEN_CRATE, lexer.TOKEN_SUPER, lexer.TOKEN_UNION:
		return true
	}
	return false
}
