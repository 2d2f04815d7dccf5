// Package lexer provides lexical analysis for Rust item declarations.
// It tokenizes .rs files into a stream of tokens for the derive parser.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes Rust source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New(). The driver lexes every file in its
// own goroutine this way.
type Lexer struct {
	source      string     // Source code to tokenize
	start       int        // Start position of current token
	current     int        // Current position in source
	line        int        // Current line number (1-indexed)
	column      int        // Current column number (1-indexed)
	startLine   int        // Line where the current token starts
	startColumn int        // Column where the current token starts
	tokens      []Token    // Collected tokens
	errors      []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source:  source,
		start:   0,
		current: 0,
		line:    1,
		column:  1,
		tokens:  make([]Token, 0),
		errors:  make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.startLine = l.line
		l.startColumn = l.column
		l.scanToken()
	}

	// Add EOF token
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
		Offset: len(l.source),
	})

	return l.tokens, l.errors
}

// scanToken processes the next token.
//
//nolint:gocyclo,cyclop // Lexer dispatch function - complexity is inherent to the pattern
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '(' || c == ')' || c == '{' || c == '}' || c == '[' || c == ']':
		l.scanDelimiter(c)
	case c == ',' || c == ';' || c == '#' || c == '?' || c == '@' || c == '$' ||
		c == '~' || c == '+' || c == '*' || c == '%' || c == '^' || c == '<' || c == '>':
		l.scanSimpleOperator(c)
	case c == '!' || c == '=' || c == '&' || c == '|' || c == '-' || c == '.' ||
		c == ':' || c == '/':
		l.scanCompoundOperator(c)
	case c == '\'':
		l.quote()
	case c == '"':
		l.string()
	case c == ' ' || c == '\r' || c == '\t' || c == '\n':
		// Ignore whitespace
	default:
		l.scanDefault(c)
	}
}

// scanDelimiter handles delimiter tokens: ( ) { } [ ]
func (l *Lexer) scanDelimiter(c byte) {
	switch c {
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	}
}

// scanSimpleOperator handles single-character punctuation
func (l *Lexer) scanSimpleOperator(c byte) {
	switch c {
	case ',':
		l.addToken(TOKEN_COMMA)
	case ';':
		l.addToken(TOKEN_SEMICOLON)
	case '#':
		l.addToken(TOKEN_HASH)
	case '?':
		l.addToken(TOKEN_QUESTION)
	case '@':
		l.addToken(TOKEN_AT)
	case '$':
		l.addToken(TOKEN_DOLLAR)
	case '~':
		l.addToken(TOKEN_TILDE)
	case '+':
		l.addToken(TOKEN_PLUS)
	case '*':
		l.addToken(TOKEN_STAR)
	case '%':
		l.addToken(TOKEN_PERCENT)
	case '^':
		l.addToken(TOKEN_CARET)
	case '<':
		l.addToken(TOKEN_LT)
	case '>':
		l.addToken(TOKEN_GT)
	}
}

// scanCompoundOperator dispatches to specific multi-character operator handlers
func (l *Lexer) scanCompoundOperator(c byte) {
	switch c {
	case '!':
		l.scanBangToken()
	case '=':
		l.scanEqualsToken()
	case '&':
		l.scanAmpersandToken()
	case '|':
		l.addToken(TOKEN_PIPE)
	case '-':
		l.scanMinusToken()
	case '.':
		l.scanDotToken()
	case ':':
		l.scanColonToken()
	case '/':
		l.scanSlashToken()
	}
}

// scanBangToken handles ! and !=
func (l *Lexer) scanBangToken() {
	if l.match('=') {
		l.addToken(TOKEN_NEQ)
	} else {
		l.addToken(TOKEN_BANG)
	}
}

// scanEqualsToken handles =, == and =>
func (l *Lexer) scanEqualsToken() {
	if l.match('=') {
		l.addToken(TOKEN_EQ)
	} else if l.match('>') {
		l.addToken(TOKEN_FAT_ARROW)
	} else {
		l.addToken(TOKEN_EQUALS)
	}
}

// scanAmpersandToken handles & and &&
func (l *Lexer) scanAmpersandToken() {
	if l.match('&') {
		l.addToken(TOKEN_DOUBLE_AMP)
	} else {
		l.addToken(TOKEN_AMP)
	}
}

// scanMinusToken handles - and ->
func (l *Lexer) scanMinusToken() {
	if l.match('>') {
		l.addToken(TOKEN_ARROW)
	} else {
		l.addToken(TOKEN_MINUS)
	}
}

// scanDotToken handles ., .., ... and ..=
func (l *Lexer) scanDotToken() {
	if l.match('.') {
		if !l.match('.') {
			l.match('=')
		}
		l.addToken(TOKEN_DOT_DOT)
	} else {
		l.addToken(TOKEN_DOT)
	}
}

// scanColonToken handles : and ::
func (l *Lexer) scanColonToken() {
	if l.match(':') {
		l.addToken(TOKEN_DOUBLE_COLON)
	} else {
		l.addToken(TOKEN_COLON)
	}
}

// scanSlashToken handles /, line comments and block comments
func (l *Lexer) scanSlashToken() {
	switch {
	case l.match('/'):
		l.comment()
	case l.match('*'):
		l.blockComment()
	default:
		l.addToken(TOKEN_SLASH)
	}
}

// scanDefault handles the default case: numbers, identifiers, prefixed
// string literals or errors
func (l *Lexer) scanDefault(c byte) {
	switch {
	case l.isDigit(c):
		l.number()
	case c == 'r' && (l.peek() == '"' || (l.peek() == '#' && l.rawHashesThenQuote(l.current))):
		l.rawString()
	case (c == 'b' || c == 'c') && l.peek() == '"':
		l.advance()
		l.string()
	case c == 'b' && l.peek() == 'r' && (l.peekNext() == '"' || l.peekNext() == '#'):
		l.advance()
		l.rawString()
	case c == 'b' && l.peek() == '\'':
		l.advance()
		l.charLiteral()
	case c == 'r' && l.peek() == '#' && l.isAlpha(l.peekNext()):
		l.advance()
		l.identifier()
	case l.isAlpha(c):
		l.identifier()
	default:
		l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
	}
}

// comment handles // comments, including /// and //! doc comments
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// blockComment handles /* ... */ comments, which nest in Rust
func (l *Lexer) blockComment() {
	depth := 1
	for !l.isAtEnd() {
		if l.peek() == '/' && l.peekNext() == '*' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			depth--
			if depth == 0 {
				return
			}
			continue
		}
		l.advance()
	}

	l.addError("Unterminated block comment")
}

// quote handles the ambiguity between lifetimes ('a) and char literals ('a')
func (l *Lexer) quote() {
	if l.peek() == '\\' {
		l.charLiteral()
		return
	}

	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size < len(l.source) && l.source[l.current+size] == '\'' {
		l.charLiteral()
		return
	}

	if r != utf8.RuneError && (unicode.IsLetter(r) || r == '_') {
		l.lifetime()
		return
	}

	l.addError("Unterminated character literal")
}

// lifetime handles 'a and 'static
func (l *Lexer) lifetime() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}
	l.addToken(TOKEN_LIFETIME)
}

// charLiteral handles 'c', '\n' and b'c'. The opening quote has already
// been consumed.
func (l *Lexer) charLiteral() {
	var value strings.Builder
	for !l.isAtEnd() && l.peek() != '\'' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
			l.escape(&value)
			continue
		}
		value.WriteByte(l.advance())
	}

	if !l.match('\'') {
		l.addError("Unterminated character literal")
		return
	}

	r, _ := utf8.DecodeRuneInString(value.String())
	l.addTokenWithLiteral(TOKEN_CHAR_LITERAL, r)
}

// string handles "..." literals with escapes. Any b/c prefix has already
// been consumed along with the opening quote.
func (l *Lexer) string() {
	var value strings.Builder
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
			l.escape(&value)
			continue
		}
		value.WriteByte(l.advance())
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", l.startLine, l.startColumn))
		return
	}

	// Consume closing "
	l.advance()
	l.addTokenWithLiteral(TOKEN_STRING_LITERAL, value.String())
}

// escape decodes one escape sequence after a backslash
func (l *Lexer) escape(value *strings.Builder) {
	if l.isAtEnd() {
		return
	}

	escaped := l.advance()
	switch escaped {
	case 'n':
		value.WriteByte('\n')
	case 't':
		value.WriteByte('\t')
	case 'r':
		value.WriteByte('\r')
	case '0':
		value.WriteByte(0)
	case '\\', '"', '\'':
		value.WriteByte(escaped)
	case 'x':
		hex := l.take(2)
		if n, err := strconv.ParseUint(hex, 16, 8); err == nil {
			value.WriteByte(byte(n))
		} else {
			l.addError(fmt.Sprintf("Invalid escape sequence: \\x%s", hex))
		}
	case 'u':
		if !l.match('{') {
			l.addError("Invalid unicode escape: expected '{'")
			return
		}
		digits := strings.Builder{}
		for !l.isAtEnd() && l.peek() != '}' {
			digits.WriteByte(l.advance())
		}
		l.match('}')
		n, err := strconv.ParseUint(strings.ReplaceAll(digits.String(), "_", ""), 16, 32)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid unicode escape: \\u{%s}", digits.String()))
			return
		}
		value.WriteRune(rune(n))
	case '\n':
		// Line continuation skips the newline and leading whitespace
		for l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\n' || l.peek() == '\r' {
			l.advance()
		}
	default:
		value.WriteByte('\\')
		value.WriteByte(escaped)
	}
}

// rawString handles r"..." and r#"..."# (the leading r is consumed)
func (l *Lexer) rawString() {
	hashes := 0
	for l.match('#') {
		hashes++
	}
	if !l.match('"') {
		l.addError("Invalid raw string: expected '\"'")
		return
	}

	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(l.source[l.current:], closing)
	if end < 0 {
		for !l.isAtEnd() {
			l.advance()
		}
		l.addError(fmt.Sprintf("Unterminated raw string starting at %d:%d", l.startLine, l.startColumn))
		return
	}

	value := l.source[l.current : l.current+end]
	for i := 0; i < end+len(closing); i++ {
		l.advance()
	}
	l.addTokenWithLiteral(TOKEN_STRING_LITERAL, value)
}

// rawHashesThenQuote reports whether a run of '#' starting at pos ends in '"'
func (l *Lexer) rawHashesThenQuote(pos int) bool {
	for pos < len(l.source) && l.source[pos] == '#' {
		pos++
	}
	return pos < len(l.source) && l.source[pos] == '"'
}

// number handles integer and float literals, including radix prefixes and
// type suffixes
func (l *Lexer) number() {
	radix := 10
	if l.source[l.start] == '0' {
		switch l.peek() {
		case 'x':
			radix = 16
		case 'o':
			radix = 8
		case 'b':
			radix = 2
		}
		if radix != 10 {
			l.advance()
		}
	}

	for l.isDigitInRadix(l.peek(), radix) || l.peek() == '_' {
		l.advance()
	}

	isFloat := false
	if radix == 10 && l.peek() == '.' && l.isDigit(l.peekNext()) {
		isFloat = true
		l.advance() // consume .
		for l.isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if radix == 10 && (l.peek() == 'e' || l.peek() == 'E') {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !l.isDigit(l.peek()) {
			l.addError("Invalid number: expected digits after exponent")
			return
		}
		for l.isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	digitsEnd := l.current

	// Type suffix (u8, i64, usize, f32, ...)
	if l.isAlpha(l.peek()) {
		for l.isAlphaNumeric(l.peek()) {
			l.advance()
		}
		suffix := l.source[digitsEnd:l.current]
		if suffix == "f32" || suffix == "f64" {
			isFloat = true
		}
	}

	digits := strings.ReplaceAll(l.source[l.start:digitsEnd], "_", "")

	if isFloat {
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid float literal: %s", l.source[l.start:l.current]))
			return
		}
		l.addTokenWithLiteral(TOKEN_FLOAT_LITERAL, value)
		return
	}

	if radix != 10 {
		digits = digits[2:]
	}
	value, err := strconv.ParseInt(digits, radix, 64)
	if err != nil {
		// Values beyond int64 (u64/u128 constants) keep their lexeme only
		l.addToken(TOKEN_INT_LITERAL)
		return
	}
	l.addTokenWithLiteral(TOKEN_INT_LITERAL, value)
}

// identifier handles identifiers, raw identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	if strings.HasPrefix(text, "r#") {
		l.addToken(TOKEN_IDENTIFIER)
		return
	}

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}

	switch tokenType {
	case TOKEN_TRUE:
		l.addTokenWithLiteral(tokenType, true)
	case TOKEN_FALSE:
		l.addTokenWithLiteral(tokenType, false)
	default:
		l.addToken(tokenType)
	}
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

// take consumes up to n characters and returns them
func (l *Lexer) take(n int) string {
	start := l.current
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
	return l.source[start:l.current]
}

// match checks if the current character matches expected and consumes it
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() {
		return false
	}
	if l.source[l.current] != expected {
		return false
	}
	l.advance()
	return true
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// peekNext returns the next character without consuming
func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// isDigit checks if a character is a digit
func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isDigitInRadix checks if a character is a digit in the given radix
func (l *Lexer) isDigitInRadix(c byte, radix int) bool {
	switch radix {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return l.isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return l.isDigit(c)
	}
}

// isAlpha checks if a character starts an identifier. Bytes of multi-byte
// UTF-8 sequences are accepted so that non-ASCII identifiers pass through.
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_' || c >= utf8.RuneSelf
}

// isAlphaNumeric checks if a character is alphanumeric or underscore
func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

// addTokenWithLiteral adds a token with a literal value
func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	token := Token{
		Type:    tokenType,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.startLine,
		Column:  l.startColumn,
		Offset:  l.start,
	}
	l.tokens = append(l.tokens, token)
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	err := LexError{
		Message: message,
		Line:    l.startLine,
		Column:  l.startColumn,
		Lexeme:  lexeme,
	}
	l.errors = append(l.errors, err)
}

// IsKeyword checks if a string is a reserved word
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}

// IsValidIdentifier checks if a string is a valid Rust identifier
func IsValidIdentifier(s string) bool {
	s = strings.TrimPrefix(s, "r#")
	if s == "" {
		return false
	}

	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return s != "_"
}
