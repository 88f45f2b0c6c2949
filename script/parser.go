package script

import "fmt"

// parser is a recursive-descent parser over the token stream.
//
// Grammar (line oriented, newline-terminated statements):
//
//	routine  := stmt*
//	stmt     := "let" IDENT "=" expr
//	          | IDENT "=" expr
//	          | "if" expr NL stmt* ("else" NL stmt*)? "end"
//	          | "while" expr NL stmt* "end"
//	          | "for" IDENT "=" expr "to" expr NL stmt* "end"
//	          | expr
//	expr     := or
//	or       := and ("or" and)*
//	and      := cmp ("and" cmp)*
//	cmp      := term (("=="|"!="|"<"|"<="|">"|">=") term)?
//	term     := factor (("+"|"-") factor)*
//	factor   := unary (("*"|"/"|"%") unary)*
//	unary    := ("-"|"not") unary | postfix
//	postfix  := primary ("[" expr "]")*
//	primary  := NUMBER | STRING | "true" | "false"
//	          | IDENT "(" (expr ("," expr)*)? ")"
//	          | IDENT | "(" expr ")"
type parser struct {
	toks []token
	pos  int
}

func parse(src string) (*program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	stmts, err := p.stmtsUntil(tokEOF)
	if err != nil {
		return nil, err
	}

	return &program{stmts: stmts}, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) accept(kind tokenKind) bool {
	if p.cur().kind == kind {
		p.pos++
		return true
	}

	return false
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur().kind != kind {
		return token{}, fmt.Errorf("%w: line %d: expected %s, found %s", ErrSyntax, p.cur().line, what, p.cur())
	}

	return p.next(), nil
}

func (p *parser) skipNewlines() {
	for p.cur().kind == tokNewline {
		p.pos++
	}
}

// stmtsUntil parses statements until one of the given terminators is
// reached; the terminator itself is not consumed.
func (p *parser) stmtsUntil(terms ...tokenKind) ([]stmt, error) {
	stmts := []stmt{}

	for {
		p.skipNewlines()

		for _, term := range terms {
			if p.cur().kind == term {
				return stmts, nil
			}
		}
		if p.cur().kind == tokEOF {
			return nil, fmt.Errorf("%w: line %d: unexpected end of routine", ErrSyntax, p.cur().line)
		}

		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)

		if p.cur().kind != tokEOF && p.cur().kind != tokNewline {
			return nil, fmt.Errorf("%w: line %d: unexpected %s after statement", ErrSyntax, p.cur().line, p.cur())
		}
	}
}

func (p *parser) statement() (stmt, error) {
	t := p.cur()

	switch t.kind {
	case tokLet:
		p.next()
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAssign, `"="`); err != nil {
			return nil, err
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}

		return &letStmt{line: t.line, name: name.text, value: v}, nil

	case tokIf:
		return p.ifStatement()

	case tokWhile:
		p.next()
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		body, err := p.stmtsUntil(tokEnd)
		if err != nil {
			return nil, err
		}
		p.next() // consume "end"

		return &whileStmt{line: t.line, cond: cond, body: body}, nil

	case tokFor:
		return p.forStatement()

	case tokIdent:
		// Assignment or bare expression (typically a capability call).
		if p.toks[p.pos+1].kind == tokAssign {
			name := p.next()
			p.next() // "="
			v, err := p.expression()
			if err != nil {
				return nil, err
			}

			return &assignStmt{line: t.line, name: name.text, value: v}, nil
		}
	}

	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	return &exprStmt{line: t.line, e: e}, nil
}

func (p *parser) ifStatement() (stmt, error) {
	t := p.next() // "if"

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	then, err := p.stmtsUntil(tokElse, tokEnd)
	if err != nil {
		return nil, err
	}

	var els []stmt
	if p.accept(tokElse) {
		els, err = p.stmtsUntil(tokEnd)
		if err != nil {
			return nil, err
		}
	}
	p.next() // consume "end"

	return &ifStmt{line: t.line, cond: cond, then: then, els: els}, nil
}

func (p *parser) forStatement() (stmt, error) {
	t := p.next() // "for"

	name, err := p.expect(tokIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign, `"="`); err != nil {
		return nil, err
	}
	from, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokTo, `"to"`); err != nil {
		return nil, err
	}
	to, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.stmtsUntil(tokEnd)
	if err != nil {
		return nil, err
	}
	p.next() // consume "end"

	return &forStmt{line: t.line, name: name.text, from: from, to: to, body: body}, nil
}

// --- Expressions ---

func (p *parser) expression() (expr, error) {
	return p.orExpr()
}

func (p *parser) orExpr() (expr, error) {
	lhs, err := p.andExpr()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tokOr {
		op := p.next()
		rhs, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		lhs = &binaryExpr{line: op.line, op: tokOr, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *parser) andExpr() (expr, error) {
	lhs, err := p.cmpExpr()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tokAnd {
		op := p.next()
		rhs, err := p.cmpExpr()
		if err != nil {
			return nil, err
		}
		lhs = &binaryExpr{line: op.line, op: tokAnd, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *parser) cmpExpr() (expr, error) {
	lhs, err := p.termExpr()
	if err != nil {
		return nil, err
	}

	switch p.cur().kind {
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		op := p.next()
		rhs, err := p.termExpr()
		if err != nil {
			return nil, err
		}

		return &binaryExpr{line: op.line, op: op.kind, lhs: lhs, rhs: rhs}, nil
	}

	return lhs, nil
}

func (p *parser) termExpr() (expr, error) {
	lhs, err := p.factorExpr()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := p.next()
		rhs, err := p.factorExpr()
		if err != nil {
			return nil, err
		}
		lhs = &binaryExpr{line: op.line, op: op.kind, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *parser) factorExpr() (expr, error) {
	lhs, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tokStar || p.cur().kind == tokSlash || p.cur().kind == tokPercent {
		op := p.next()
		rhs, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		lhs = &binaryExpr{line: op.line, op: op.kind, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *parser) unaryExpr() (expr, error) {
	if p.cur().kind == tokMinus || p.cur().kind == tokNot {
		op := p.next()
		x, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}

		return &unaryExpr{line: op.line, op: op.kind, x: x}, nil
	}

	return p.postfixExpr()
}

func (p *parser) postfixExpr() (expr, error) {
	e, err := p.primaryExpr()
	if err != nil {
		return nil, err
	}

	for p.accept(tokLBracket) {
		key, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBracket, `"]"`); err != nil {
			return nil, err
		}
		e = &indexExpr{line: e.exprLine(), target: e, key: key}
	}

	return e, nil
}

func (p *parser) primaryExpr() (expr, error) {
	t := p.cur()

	switch t.kind {
	case tokNumber:
		p.next()
		return &numberLit{line: t.line, v: t.num}, nil

	case tokString:
		p.next()
		return &stringLit{line: t.line, v: t.text}, nil

	case tokTrue:
		p.next()
		return &boolLit{line: t.line, v: true}, nil

	case tokFalse:
		p.next()
		return &boolLit{line: t.line, v: false}, nil

	case tokLParen:
		p.next()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}

		return e, nil

	case tokIdent:
		name := p.next()
		if !p.accept(tokLParen) {
			return &varRef{line: name.line, name: name.text}, nil
		}

		var args []expr
		if p.cur().kind != tokRParen {
			for {
				a, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.accept(tokComma) {
					break
				}
			}
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}

		return &callExpr{line: name.line, name: name.text, args: args}, nil
	}

	return nil, fmt.Errorf("%w: line %d: unexpected %s", ErrSyntax, t.line, t)
}
