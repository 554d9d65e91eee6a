// parser.go — recursive-descent parser producing S-expression ASTs.
//
// The AST is a compact S-expression encoding: every node is an S
// ([]any) whose first element is a string tag. Statement nodes record
// the trailing-semicolon distinction at parse time: an expression
// statement terminated by ';' is wrapped in ("discard", e); the final
// statement of a block may omit the semicolon, in which case the bare
// expression node stands as the statement and supplies the block's
// value.
//
// Node tags:
//
//	("block", stmt...)
//	("var", name, expr)
//	("discard", expr)
//	("for", initOrNil, condOrNil, updateOrNil, body)
//	("if", cond, thenBlock, elseOrNil)
//	("break")
//	("return", exprOrNil)
//	("num", float64) ("str", string) ("bool", bool)
//	("id", name) ("scoperef")
//	("array", e...) ("object", ("pair", key, v)...)
//	("unop", op, e) ("binop", op, l, r)
//	("assign", target, value)
//	("get", obj, name) ("idx", obj, e)
//	("call", callee, arg...)
//	("scall", callee, scopeExpr, arg...)
//	("fun", []string{params...}, body)
package scope

// S is the S-expression node type.
type S = []any

// L builds an S-expression node.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// Parse parses a complete Scope source string and returns its AST,
// a ("block", ...) of top-level statements.
func Parse(src string) (S, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

// ───────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }
func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}
func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.errHere(msg)
}

func (p *parser) errHere(msg string) error {
	g := p.peek()
	return &ParseError{
		Line:  g.Line,
		Col:   g.Col,
		Msg:   msg + ", found " + describeToken(g),
		AtEOF: g.Type == EOF,
	}
}

func describeToken(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return "string literal"
	case NUMBER:
		return "number " + t.Lexeme
	default:
		return "'" + t.Lexeme + "'"
	}
}

// ───────────────────── precedence / associativity ─────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case MULT, DIV, MOD:
		return 70, true
	case PLUS, MINUS:
		return 60, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 50, true
	case EQ, NEQ:
		return 40, true
	case LAND:
		return 30, true
	case LOR:
		return 20, true
	case ASSIGN:
		return 10, true
	}
	return 0, false
}

func isRightAssoc(tt TokenType) bool { return tt == ASSIGN }

// ─────────────────────────── statements ───────────────────────────

func (p *parser) program() (S, error) {
	out := L("block")
	for !p.atEnd() {
		st, err := p.statement(EOF)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// blockUntil parses statements until the stop token, which is consumed.
func (p *parser) blockUntil(stop TokenType) (S, error) {
	out := L("block")
	for {
		if p.match(stop) {
			return out, nil
		}
		if p.atEnd() {
			return nil, p.errHere("expected '}'")
		}
		st, err := p.statement(stop)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
}

// statement parses one statement. stop is the token that legally ends
// the surrounding block; a final expression statement may omit its
// semicolon only when stop comes next.
func (p *parser) statement(stop TokenType) (S, error) {
	t := p.peek()
	switch t.Type {
	case VAR:
		p.i++
		return p.varStatement(stop)
	case FOR:
		p.i++
		return p.forStatement()
	case IF:
		p.i++
		return p.ifStatement()
	case BREAK:
		p.i++
		if err := p.endStatement(stop); err != nil {
			return nil, err
		}
		return L("break"), nil
	case RETURN:
		p.i++
		return p.returnStatement(stop)
	case LCURLY:
		p.i++
		return p.blockUntil(RCURLY)
	}

	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.match(SEMICOLON) {
		return L("discard", e), nil
	}
	if p.peek().Type == stop {
		// Bare final expression: its value is the block's value.
		return e, nil
	}
	return nil, p.errHere("expected ';' after expression")
}

// endStatement consumes a ';', or accepts its omission right before
// the block's stop token.
func (p *parser) endStatement(stop TokenType) error {
	if p.match(SEMICOLON) {
		return nil
	}
	if p.peek().Type == stop {
		return nil
	}
	return p.errHere("expected ';'")
}

func (p *parser) varStatement(stop TokenType) (S, error) {
	name, err := p.need(ID, "expected variable name after 'var'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' in variable declaration"); err != nil {
		return nil, err
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(stop); err != nil {
		return nil, err
	}
	return L("var", tokText(name), e), nil
}

func (p *parser) forStatement() (S, error) {
	if _, err := p.need(LROUND, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init any
	if p.match(SEMICOLON) {
		init = nil
	} else if p.match(VAR) {
		st, err := p.varStatement(ILLEGAL)
		if err != nil {
			return nil, err
		}
		init = st
	} else {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(SEMICOLON, "expected ';' after loop initializer"); err != nil {
			return nil, err
		}
		init = e
	}

	var cond any
	if p.match(SEMICOLON) {
		cond = nil
	} else {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(SEMICOLON, "expected ';' after loop condition"); err != nil {
			return nil, err
		}
		cond = e
	}

	var update any
	if p.peek().Type == RROUND {
		update = nil
	} else {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		update = e
	}
	if _, err := p.need(RROUND, "expected ')' after loop clauses"); err != nil {
		return nil, err
	}

	if _, err := p.need(LCURLY, "expected '{' to open loop body"); err != nil {
		return nil, err
	}
	body, err := p.blockUntil(RCURLY)
	if err != nil {
		return nil, err
	}
	return L("for", init, cond, update, body), nil
}

func (p *parser) ifStatement() (S, error) {
	if _, err := p.need(LROUND, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')' after condition"); err != nil {
		return nil, err
	}
	if _, err := p.need(LCURLY, "expected '{' to open branch"); err != nil {
		return nil, err
	}
	then, err := p.blockUntil(RCURLY)
	if err != nil {
		return nil, err
	}

	var alt any
	if p.match(ELSE) {
		if p.match(IF) {
			n, err := p.ifStatement()
			if err != nil {
				return nil, err
			}
			alt = n
		} else {
			if _, err := p.need(LCURLY, "expected '{' or 'if' after 'else'"); err != nil {
				return nil, err
			}
			n, err := p.blockUntil(RCURLY)
			if err != nil {
				return nil, err
			}
			alt = n
		}
	}
	return L("if", cond, then, alt), nil
}

func (p *parser) returnStatement(stop TokenType) (S, error) {
	if p.match(SEMICOLON) {
		return L("return", nil), nil
	}
	if p.peek().Type == stop {
		return L("return", nil), nil
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(stop); err != nil {
		return nil, err
	}
	return L("return", e), nil
}

// ─────────────────────────── expressions ───────────────────────────

func tokText(t Token) string {
	if s, ok := t.Literal.(string); ok {
		return s
	}
	return t.Lexeme
}

// expr is the precedence-climbing core.
func (p *parser) expr(minBP int) (S, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		left, err = p.postfix(left)
		if err != nil {
			return nil, err
		}

		op := p.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp < minBP {
			return left, nil
		}
		p.i++

		nextMin := bp + 1
		if isRightAssoc(op.Type) {
			nextMin = bp
		}
		right, err := p.expr(nextMin)
		if err != nil {
			return nil, err
		}

		if op.Type == ASSIGN {
			if !assignable(left) {
				return nil, &ParseError{Line: op.Line, Col: op.Col,
					Msg: "left side of '=' is not assignable"}
			}
			left = L("assign", left, right)
		} else {
			left = L("binop", op.Lexeme, left, right)
		}
	}
}

// assignable reports whether a node may be an assignment target.
func assignable(n S) bool {
	switch n[0] {
	case "id", "get", "idx":
		return true
	}
	return false
}

func (p *parser) prefix() (S, error) {
	t := p.peek()
	switch t.Type {
	case NUMBER:
		p.i++
		return L("num", t.Literal.(float64)), nil
	case STRING:
		p.i++
		return L("str", t.Literal.(string)), nil
	case BOOLEAN:
		p.i++
		return L("bool", t.Literal.(bool)), nil
	case ID:
		p.i++
		return L("id", t.Lexeme), nil
	case SCOPE:
		p.i++
		return L("scoperef"), nil
	case MINUS:
		p.i++
		e, err := p.expr(80)
		if err != nil {
			return nil, err
		}
		return L("unop", "-", e), nil
	case BANG:
		p.i++
		e, err := p.expr(80)
		if err != nil {
			return nil, err
		}
		return L("unop", "!", e), nil
	case LROUND:
		p.i++
		if fn, ok, err := p.tryFunLiteral(); err != nil {
			return nil, err
		} else if ok {
			return fn, nil
		}
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')'"); err != nil {
			return nil, err
		}
		return e, nil
	case LSQUARE:
		p.i++
		return p.arrayLiteral()
	case LCURLY:
		p.i++
		return p.objectLiteral()
	}
	return nil, p.errHere("expected an expression")
}

// tryFunLiteral runs after an opening '('. It looks ahead for a
// parameter list followed by '->'; on a match it consumes the whole
// function literal, otherwise it restores the cursor and reports no
// match so the caller parses a grouping.
func (p *parser) tryFunLiteral() (S, bool, error) {
	save := p.i

	params := []string{}
	if !p.match(RROUND) {
		for {
			if p.peek().Type != ID {
				p.i = save
				return nil, false, nil
			}
			params = append(params, p.peek().Lexeme)
			p.i++
			if p.match(COMMA) {
				continue
			}
			break
		}
		if !p.match(RROUND) {
			p.i = save
			return nil, false, nil
		}
	}
	if !p.match(ARROW) {
		p.i = save
		return nil, false, nil
	}

	if _, err := p.need(LCURLY, "expected '{' to open function body"); err != nil {
		return nil, false, err
	}
	body, err := p.blockUntil(RCURLY)
	if err != nil {
		return nil, false, err
	}
	return L("fun", params, body), true, nil
}

func (p *parser) arrayLiteral() (S, error) {
	out := L("array")
	if p.match(RSQUARE) {
		return out, nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.match(COMMA) {
			if p.match(RSQUARE) { // trailing comma
				return out, nil
			}
			continue
		}
		if _, err := p.need(RSQUARE, "expected ']' or ',' in array literal"); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *parser) objectLiteral() (S, error) {
	out := L("object")
	if p.match(RCURLY) {
		return out, nil
	}
	for {
		keyTok := p.peek()
		var key string
		switch keyTok.Type {
		case ID, STRING:
			key = tokText(keyTok)
			p.i++
		default:
			return nil, p.errHere("expected object key")
		}
		if _, err := p.need(COLON, "expected ':' after object key"); err != nil {
			return nil, err
		}
		v, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		out = append(out, L("pair", key, v))
		if p.match(COMMA) {
			if p.match(RCURLY) { // trailing comma
				return out, nil
			}
			continue
		}
		if _, err := p.need(RCURLY, "expected '}' or ',' in object literal"); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// postfix applies member access, indexing, calls and scope-calls.
func (p *parser) postfix(left S) (S, error) {
	for {
		switch p.peek().Type {
		case PERIOD:
			p.i++
			name, err := p.need(ID, "expected member name after '.'")
			if err != nil {
				return nil, err
			}
			left = L("get", left, name.Lexeme)
		case LSQUARE:
			p.i++
			e, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']'"); err != nil {
				return nil, err
			}
			left = L("idx", left, e)
		case LROUND:
			p.i++
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			left = append(L("call", left), args...)
		case LCURLY:
			// Explicit-scope clause: callee{scopeExpr}(args).
			p.i++
			scopeExpr, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RCURLY, "expected '}' after scope expression"); err != nil {
				return nil, err
			}
			if _, err := p.need(LROUND, "expected '(' after scope clause"); err != nil {
				return nil, err
			}
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			left = append(L("scall", left, scopeExpr), args...)
		default:
			return left, nil
		}
	}
}

// arguments parses a call argument list after the opening '('.
func (p *parser) arguments() ([]any, error) {
	args := []any{}
	if p.match(RROUND) {
		return args, nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.match(COMMA) {
			continue
		}
		if _, err := p.need(RROUND, "expected ')' or ',' in argument list"); err != nil {
			return nil, err
		}
		return args, nil
	}
}
