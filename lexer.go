// lexer.go — byte scanner for Scope source text.
package scope

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND // "("
	RROUND // ")"
	LSQUARE
	RSQUARE
	LCURLY
	RCURLY
	COLON
	COMMA
	PERIOD
	SEMICOLON

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	BANG  // "!"
	LAND  // "&&"
	LOR   // "||"
	ARROW // "->"

	// Literals & identifiers
	ID
	STRING
	NUMBER
	BOOLEAN

	// Keywords
	VAR
	FOR
	IF
	ELSE
	BREAK
	RETURN
	SCOPE
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based
}

var keywords = map[string]TokenType{
	"var":    VAR,
	"for":    FOR,
	"if":     IF,
	"else":   ELSE,
	"break":  BREAK,
	"return": RETURN,
	"scope":  SCOPE,
	"true":   BOOLEAN,
	"false":  BOOLEAN,
}

// Lexer scans a Scope source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) rewindToStart() {
	l.cur = l.start
	l.line = l.tokStartLine
	l.col = l.tokStartCol
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

// ----- scanners -----

// scanString reads a double-quoted string literal. The only escape
// processed is backslash-quote; every other byte between the quotes is
// reproduced verbatim, so a lone backslash stays a backslash.
func (l *Lexer) scanString() (string, error) {
	l.advance() // opening quote

	var out []byte
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\\' {
			if b, ok := l.peek(); ok && b == '"' {
				l.advance()
				out = append(out, '"')
				continue
			}
		}
		if ch == '\n' {
			return "", l.err("string was not terminated")
		}
		out = append(out, ch)
	}
	return "", &LexError{Line: l.line, Col: l.col, Msg: "string was not terminated", AtEOF: true}
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanNumber parses a decimal literal. Accepts "12", "12.5", ".5" and
// an optional exponent suffix ("1e3", "2.5e-4"). A bare "12." keeps its
// trailing dot out of the number so member access still works.
func (l *Lexer) scanNumber() (float64, error) {
	sawDigits := false
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
		sawDigits = true
	}

	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance()
			for {
				b3, ok3 := l.peek()
				if !ok3 || !isDigit(b3) {
					break
				}
				l.advance()
			}
			sawDigits = true
		}
	}

	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		save := l.cur
		saveCol := l.col
		l.advance()
		if b2, ok2 := l.peek(); ok2 && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok3 := l.peek(); ok3 && isDigit(b3) {
			for {
				b4, ok4 := l.peek()
				if !ok4 || !isDigit(b4) {
					break
				}
				l.advance()
			}
		} else {
			l.cur = save
			l.col = saveCol
		}
	}

	if !sawDigits {
		return 0, l.err("malformed number")
	}

	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return 0, l.err("invalid number literal")
	}
	return v, nil
}

// ignoreUntilNewline eats until '\n' or EOF.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// ignoreBlockComment eats "/* ... */"; errors at EOF before the closer.
func (l *Lexer) ignoreBlockComment() error {
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '*' {
			if b, ok := l.peek(); ok && b == '/' {
				l.advance()
				return nil
			}
		}
	}
	return &LexError{Line: l.line, Col: l.col, Msg: "block comment was not terminated", AtEOF: true}
}

// dotStartsNumber reports whether a '.' just consumed begins a
// leading-dot float rather than member access. Member names are always
// identifiers, so a digit after the dot settles it.
func (l *Lexer) dotStartsNumber() bool {
	b, ok := l.peek()
	return ok && isDigit(b)
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	for {
		l.skipWhitespace()
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		l.start = l.cur

		if l.isAtEnd() {
			return l.addToken(EOF, nil), nil
		}

		ch, _ := l.advance()

		switch ch {
		case '(':
			return l.addToken(LROUND, "("), nil
		case ')':
			return l.addToken(RROUND, ")"), nil
		case '[':
			return l.addToken(LSQUARE, "["), nil
		case ']':
			return l.addToken(RSQUARE, "]"), nil
		case '{':
			return l.addToken(LCURLY, "{"), nil
		case '}':
			return l.addToken(RCURLY, "}"), nil
		case '+':
			return l.addToken(PLUS, "+"), nil
		case '*':
			return l.addToken(MULT, "*"), nil
		case '%':
			return l.addToken(MOD, "%"), nil
		case ':':
			return l.addToken(COLON, ":"), nil
		case ',':
			return l.addToken(COMMA, ","), nil
		case ';':
			return l.addToken(SEMICOLON, ";"), nil
		}

		// '/' starts a comment or is division.
		if ch == '/' {
			if b, ok := l.peek(); ok && b == '/' {
				l.ignoreUntilNewline()
				l.start = l.cur
				continue
			}
			if b, ok := l.peek(); ok && b == '*' {
				l.advance()
				if err := l.ignoreBlockComment(); err != nil {
					return Token{}, err
				}
				l.start = l.cur
				continue
			}
			return l.addToken(DIV, "/"), nil
		}

		// '.' is either a leading-dot float or member access.
		if ch == '.' {
			if l.dotStartsNumber() {
				l.rewindToStart()
				v, err := l.scanNumber()
				if err != nil {
					return Token{}, err
				}
				return l.addToken(NUMBER, v), nil
			}
			return l.addToken(PERIOD, "."), nil
		}

		// Two-char operators and their single-char fallbacks.
		switch ch {
		case '-':
			if b, ok := l.peek(); ok && b == '>' {
				l.advance()
				return l.addToken(ARROW, "->"), nil
			}
			return l.addToken(MINUS, "-"), nil
		case '=':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				return l.addToken(EQ, "=="), nil
			}
			return l.addToken(ASSIGN, "="), nil
		case '!':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				return l.addToken(NEQ, "!="), nil
			}
			return l.addToken(BANG, "!"), nil
		case '<':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				return l.addToken(LESS_EQ, "<="), nil
			}
			return l.addToken(LESS, "<"), nil
		case '>':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				return l.addToken(GREATER_EQ, ">="), nil
			}
			return l.addToken(GREATER, ">"), nil
		case '&':
			if b, ok := l.peek(); ok && b == '&' {
				l.advance()
				return l.addToken(LAND, "&&"), nil
			}
			return Token{}, l.err("unexpected character: '&'")
		case '|':
			if b, ok := l.peek(); ok && b == '|' {
				l.advance()
				return l.addToken(LOR, "||"), nil
			}
			return Token{}, l.err("unexpected character: '|'")
		}

		if ch == '"' {
			l.rewindToStart()
			text, err := l.scanString()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(STRING, text), nil
		}

		if isDigit(ch) {
			l.rewindToStart()
			v, err := l.scanNumber()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(NUMBER, v), nil
		}

		if isAlpha(ch) {
			l.rewindToStart()
			lex := l.scanIdentifier()
			if tt, ok := keywords[lex]; ok {
				if tt == BOOLEAN {
					return l.addToken(BOOLEAN, lex == "true"), nil
				}
				return l.addToken(tt, lex), nil
			}
			return l.addToken(ID, lex), nil
		}

		return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
