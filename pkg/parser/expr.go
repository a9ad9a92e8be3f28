package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/token"
)

var relOpTag = map[token.Kind]ast.Tag{
	token.EQUAL: ast.EQ, token.NOTEQUAL: ast.NEQ, token.LESS: ast.LT,
	token.LESSEQUAL: ast.LTEQ, token.GREATER: ast.GT, token.GREATEREQUAL: ast.GTEQ,
	token.IN: ast.IN,
}

var addOpTag = map[token.Kind]ast.Tag{
	token.PLUS: ast.PLUS, token.MINUS: ast.MINUS, token.OR: ast.OR,
}

var mulOpTag = map[token.Kind]ast.Tag{
	token.ASTERISK: ast.ASTERISK, token.SOLIDUS: ast.SOLIDUS,
	token.DIV: ast.DIV, token.MOD: ast.MOD, token.AND: ast.AND,
}

var factorStartKinds = []token.Kind{
	token.IDENTIFIER, token.INTEGER_LITERAL, token.REAL_LITERAL,
	token.CHAR_LITERAL, token.STRING_LITERAL, token.MALFORMED_INTEGER,
	token.MALFORMED_REAL, token.LBRACE, token.LPAREN,
}

// expression parses `simpleExpression (operL1 simpleExpression)?`. The
// relational operators are strictly non-associative: only a single
// application is accepted (spec §4.5's "Precedence and associativity").
//
// Error recovery below deliberately bottoms out at a possibly-empty
// resync set: resyncTo always terminates at END_OF_FILE regardless, so an
// expression subexpression doesn't need the full FOLLOW-set precision a
// statement or declaration boundary gets.
func (p *Parser) expression() *ast.Node {
	left := p.simpleExpression()
	tag, ok := relOpTag[p.lookahead()]
	if !ok {
		return left
	}
	p.consume()
	right := p.simpleExpression()
	return ast.NewBranch(tag, left, right)
}

// simpleExpression parses `('+' | '-')? term (operL2 term)*`, left-folding
// PLUS/MINUS/OR and wrapping a leading unary minus in NEG. A leading unary
// plus is accepted and dropped; it contributes no node.
func (p *Parser) simpleExpression() *ast.Node {
	neg := false
	switch p.lookahead() {
	case token.PLUS:
		p.consume()
	case token.MINUS:
		p.consume()
		neg = true
	}
	left := p.term()
	if neg {
		left = ast.NewBranch(ast.NEG, left)
	}
	for {
		tag, ok := addOpTag[p.lookahead()]
		if !ok {
			return left
		}
		p.consume()
		right := p.term()
		left = ast.NewBranch(tag, left, right)
	}
}

// term parses `simpleTerm (operL3 simpleTerm)*`, left-folding
// ASTERISK/SOLIDUS/DIV/MOD/AND.
func (p *Parser) term() *ast.Node {
	left := p.simpleTerm()
	for {
		tag, ok := mulOpTag[p.lookahead()]
		if !ok {
			return left
		}
		p.consume()
		right := p.simpleTerm()
		left = ast.NewBranch(tag, left, right)
	}
}

// simpleTerm parses `NOT? factor`.
func (p *Parser) simpleTerm() *ast.Node {
	if p.lookahead() != token.NOT {
		return p.factor()
	}
	p.consume()
	return ast.NewBranch(ast.NOT, p.factor())
}

// factor parses `NumberLiteral | StringLiteral | setValue |
// designatorOrFuncCall | '(' expression ')'`.
func (p *Parser) factor() *ast.Node {
	switch p.lookahead() {
	case token.INTEGER_LITERAL, token.MALFORMED_INTEGER:
		if p.lookahead() == token.MALFORMED_INTEGER {
			p.sink.EmitErrorAtPos(diag.MISSING_SUFFIX, p.lookaheadLine(), p.lookaheadColumn())
		}
		lex := p.lookaheadLexeme()
		p.consume()
		return ast.NewTerminal(ast.INTVAL, lex)
	case token.REAL_LITERAL, token.MALFORMED_REAL:
		if p.lookahead() == token.MALFORMED_REAL {
			p.sink.EmitErrorAtPos(diag.MISSING_EXPONENT, p.lookaheadLine(), p.lookaheadColumn())
		}
		lex := p.lookaheadLexeme()
		p.consume()
		return ast.NewTerminal(ast.REALVAL, lex)
	case token.CHAR_LITERAL:
		lex := p.lookaheadLexeme()
		p.consume()
		return ast.NewTerminal(ast.CHRVAL, lex)
	case token.STRING_LITERAL:
		lex := p.lookaheadLexeme()
		p.consume()
		return ast.NewTerminal(ast.QUOTEDVAL, lex)
	case token.LBRACE:
		return p.setValue()
	case token.LPAREN:
		p.consume()
		expr := p.expression()
		p.matchToken(token.RPAREN, token.NewSet(token.END_OF_FILE))
		if p.lookahead() == token.RPAREN {
			p.consume()
		}
		return expr
	case token.IDENTIFIER:
		return p.designatorOrFuncCall()
	default:
		p.matchSet(firstFactor, token.NewSet(token.END_OF_FILE), factorStartKinds)
		return ast.Empty()
	}
}

// setValue parses `'{' (setElement (',' setElement)*)? '}'`.
func (p *Parser) setValue() *ast.Node {
	p.consume() // {
	var fifo ast.FIFO
	if p.lookahead() != token.RBRACE {
		fifo.Append(p.setElement())
		for p.lookahead() == token.COMMA {
			p.consume()
			fifo.Append(p.setElement())
		}
	}
	p.matchToken(token.RBRACE, token.NewSet(token.END_OF_FILE))
	if p.lookahead() == token.RBRACE {
		p.consume()
	}
	return ast.NewList(ast.SETVAL, &fifo)
}

// setElement parses `Expression ['..' Expression]`, reusing SUBR for the
// range form.
func (p *Parser) setElement() *ast.Node {
	lo := p.expression()
	if p.lookahead() != token.RANGE {
		return lo
	}
	p.consume()
	hi := p.expression()
	return ast.NewBranch(ast.SUBR, lo, hi)
}

// designatorOrFuncCall parses a designator and, when immediately followed
// by '(', wraps it and its actual parameters in FCALL; otherwise wraps the
// bare chain in DESIG, since as a factor a designator must be
// distinguishable from the literal/setValue/parenthesised-expression
// alternatives (spec §4.5's "factor" row: "DESIG/FCALL/pass-through").
func (p *Parser) designatorOrFuncCall() *ast.Node {
	chain := p.designator(token.Set{})
	if p.lookahead() != token.LPAREN {
		return ast.NewBranch(ast.DESIG, chain)
	}
	args := p.actualParameters(token.NewSet(token.END_OF_FILE))
	return ast.NewBranch(ast.FCALL, chain, args)
}
