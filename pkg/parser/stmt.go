package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/token"
)

var statementStartKinds = []token.Kind{
	token.IDENTIFIER, token.RETURN, token.WITH, token.IF, token.CASE,
	token.LOOP, token.WHILE, token.REPEAT, token.FOR, token.EXIT,
}

// block parses a block's declaration part and optional BEGIN
// statementSequence, consuming through the closing END (spec §4.5's
// "block" row).
func (p *Parser) block(resync token.Set) *ast.Node {
	decls := p.declarationSequence()
	body := ast.Empty()
	if p.lookahead() == token.BEGIN {
		p.consume()
		body = p.statementSequence(resync.With(token.END))
	}
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.BLOCK, decls, body)
}

// statementSequence parses `Statement (';' Statement)*`, honouring the
// errant_semicolon option on a trailing separator and warning once on a
// wholly empty sequence (spec §4.9, Open Question decision in DESIGN.md).
func (p *Parser) statementSequence(resync token.Set) *ast.Node {
	var fifo ast.FIFO
	if firstStatement.Contains(p.lookahead()) {
		fifo.Append(p.statement(resync.With(token.SEMICOLON)))
		for p.lookahead() == token.SEMICOLON {
			p.consume()
			if !firstStatement.Contains(p.lookahead()) {
				if p.opts.ErrantSemicolon {
					p.sink.EmitWarningAtPos(diag.SEMICOLON_AFTER_STMT_SEQ, p.consumedLine(), p.consumedColumn())
				} else {
					p.sink.EmitErrorAtPos(diag.SEMICOLON_AFTER_STMT_SEQ, p.consumedLine(), p.consumedColumn())
				}
				break
			}
			fifo.Append(p.statement(resync.With(token.SEMICOLON)))
		}
	}
	if fifo.Len() == 0 {
		p.sink.EmitWarningAtPos(diag.EMPTY_STMT_SEQ, p.lookaheadLine(), p.lookaheadColumn())
	}
	return ast.NewList(ast.STMTSEQ, &fifo)
}

// statement dispatches to one of the ten statement alternatives named in
// spec §4.5's "statement" row (WITH supplemented per SPEC_FULL §C).
func (p *Parser) statement(resync token.Set) *ast.Node {
	switch p.lookahead() {
	case token.IDENTIFIER:
		return p.assignOrCall(resync)
	case token.RETURN:
		return p.returnStatement(resync)
	case token.WITH:
		return p.withStatement(resync)
	case token.IF:
		return p.ifStatement(resync)
	case token.CASE:
		return p.caseStatement(resync)
	case token.LOOP:
		return p.loopStatement(resync)
	case token.WHILE:
		return p.whileStatement(resync)
	case token.REPEAT:
		return p.repeatStatement(resync)
	case token.FOR:
		return p.forStatement(resync)
	case token.EXIT:
		p.consume()
		return ast.NewBranch(ast.EXIT)
	default:
		p.matchSet(firstStatement, resync, statementStartKinds)
		return ast.Empty()
	}
}

// assignOrCall parses a leading designator and resolves the ASSIGN/PCALL
// ambiguity on whether ':=' follows.
func (p *Parser) assignOrCall(resync token.Set) *ast.Node {
	target := p.designator(resync.With(token.BECOMES, token.LPAREN))
	if p.lookahead() == token.BECOMES {
		p.consume()
		expr := p.expression()
		return ast.NewBranch(ast.ASSIGN, target, expr)
	}
	args := p.actualParameters(resync)
	return ast.NewBranch(ast.PCALL, target, args)
}

// actualParameters parses the optional `'(' (Expression (',' Expression)*)?
// ')'` suffix of a procedure call, always yielding an ARGS list (empty
// when the call has no parenthesised arguments at all).
func (p *Parser) actualParameters(resync token.Set) *ast.Node {
	var fifo ast.FIFO
	if p.lookahead() != token.LPAREN {
		return ast.NewList(ast.ARGS, &fifo)
	}
	p.consume()
	if p.lookahead() != token.RPAREN {
		fifo.Append(p.expression())
		for p.lookahead() == token.COMMA {
			p.consume()
			fifo.Append(p.expression())
		}
	}
	p.matchToken(token.RPAREN, resync)
	if p.lookahead() == token.RPAREN {
		p.consume()
	}
	return ast.NewList(ast.ARGS, &fifo)
}

// designator parses `Qualident ('^' | selector)*`, left-folding each
// dereference/selector directly onto the running chain (spec §4.5's
// "designator" row). Used directly as a statement target (ASSIGN/PCALL/
// WITH, spec §8 scenario 2's `(PCALL (IDENT Put) ...)`); expr.go's
// designatorOrFuncCall wraps the same chain in DESIG/FCALL when it is
// used as an expression operand instead.
func (p *Parser) designator(resync token.Set) *ast.Node {
	tail := resync.With(token.PERIOD, token.LBRACKET, token.CARET)
	base := p.qualident(tail)
	return p.selectorTail(base, tail)
}

func (p *Parser) selectorTail(base *ast.Node, resync token.Set) *ast.Node {
	for {
		switch p.lookahead() {
		case token.PERIOD:
			p.consume()
			id := p.expectIdent(resync)
			base = ast.NewBranch(ast.SELECT, base, ast.NewTerminal(ast.IDENT, id))
		case token.LBRACKET:
			p.consume()
			idx := p.expressionList(resync.With(token.RBRACKET))
			p.matchToken(token.RBRACKET, resync)
			if p.lookahead() == token.RBRACKET {
				p.consume()
			}
			base = ast.NewBranch(ast.INDEX, base, idx)
		case token.CARET:
			p.consume()
			base = ast.NewBranch(ast.DEREF, base)
		default:
			return base
		}
	}
}

// expressionList parses `Expression (',' Expression)*` as used by an
// array-index selector.
func (p *Parser) expressionList(resync token.Set) *ast.Node {
	var fifo ast.FIFO
	fifo.Append(p.expression())
	for p.lookahead() == token.COMMA {
		p.consume()
		fifo.Append(p.expression())
	}
	return ast.NewList(ast.INDEXLIST, &fifo)
}

// returnStatement parses `RETURN Expression?`.
func (p *Parser) returnStatement(resync token.Set) *ast.Node {
	p.consume() // RETURN
	if la := p.lookahead(); !firstFactor.Contains(la) && la != token.PLUS && la != token.MINUS && la != token.NOT {
		return ast.NewBranch(ast.RETURN, ast.Empty())
	}
	expr := p.expression()
	return ast.NewBranch(ast.RETURN, expr)
}

// withStatement parses `WITH designator DO statementSequence END`
// (SPEC_FULL §C).
func (p *Parser) withStatement(resync token.Set) *ast.Node {
	p.consume() // WITH
	target := p.designator(resync.With(token.DO))
	p.matchToken(token.DO, resync.With(token.END))
	if p.lookahead() == token.DO {
		p.consume()
	}
	body := p.statementSequence(resync.With(token.END))
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.WITH, target, body)
}

// ifStatement parses `IF Expression THEN statementSequence (ELSIF
// Expression THEN statementSequence)* (ELSE statementSequence)? END`.
func (p *Parser) ifStatement(resync token.Set) *ast.Node {
	p.consume() // IF
	tail := elsifOrElseOrEnd.Union(resync)
	cond := p.expression()
	p.matchToken(token.THEN, tail)
	if p.lookahead() == token.THEN {
		p.consume()
	}
	thenPart := p.statementSequence(tail)

	var elsifs ast.FIFO
	for p.lookahead() == token.ELSIF {
		p.consume()
		c := p.expression()
		p.matchToken(token.THEN, tail)
		if p.lookahead() == token.THEN {
			p.consume()
		}
		s := p.statementSequence(tail)
		elsifs.Append(ast.NewBranch(ast.ELSIF, c, s))
	}
	elsifList := ast.NewList(ast.ELSIFLIST, &elsifs)

	elsePart := ast.Empty()
	if p.lookahead() == token.ELSE {
		p.consume()
		elsePart = p.statementSequence(resync.With(token.END))
	}
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.IF, cond, thenPart, elsifList, elsePart)
}

// caseStatement parses `CASE Expression OF Case ('|' Case)* (ELSE
// statementSequence)? END`.
func (p *Parser) caseStatement(resync token.Set) *ast.Node {
	p.consume() // CASE
	caseResync := resync.With(token.BAR, token.ELSE, token.END)
	expr := p.expression()
	p.matchToken(token.OF, caseResync)
	if p.lookahead() == token.OF {
		p.consume()
	}
	var cases ast.FIFO
	cases.Append(p.caseAlt(caseResync))
	for p.lookahead() == token.BAR {
		p.consume()
		cases.Append(p.caseAlt(caseResync))
	}
	caseList := ast.NewList(ast.CASELIST, &cases)
	elsePart := ast.Empty()
	if p.lookahead() == token.ELSE {
		p.consume()
		elsePart = p.statementSequence(resync.With(token.END))
	}
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.SWITCH, expr, caseList, elsePart)
}

// caseAlt parses `CaseLabelList ':' statementSequence` (types.go's
// caseLabelList is shared with variant record fields).
func (p *Parser) caseAlt(resync token.Set) *ast.Node {
	labels := p.caseLabelList(resync.With(token.COLON))
	p.matchToken(token.COLON, resync)
	if p.lookahead() == token.COLON {
		p.consume()
	}
	stmts := p.statementSequence(resync)
	return ast.NewBranch(ast.CASE, labels, stmts)
}

// loopStatement parses `LOOP statementSequence END`.
func (p *Parser) loopStatement(resync token.Set) *ast.Node {
	p.consume() // LOOP
	body := p.statementSequence(resync.With(token.END))
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.LOOP, body)
}

// whileStatement parses `WHILE Expression DO statementSequence END`.
func (p *Parser) whileStatement(resync token.Set) *ast.Node {
	p.consume() // WHILE
	cond := p.expression()
	p.matchToken(token.DO, resync.With(token.END))
	if p.lookahead() == token.DO {
		p.consume()
	}
	body := p.statementSequence(resync.With(token.END))
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.WHILE, cond, body)
}

// repeatStatement parses `REPEAT statementSequence UNTIL Expression`.
func (p *Parser) repeatStatement(resync token.Set) *ast.Node {
	p.consume() // REPEAT
	body := p.statementSequence(resync.With(token.UNTIL))
	p.matchToken(token.UNTIL, resync)
	if p.lookahead() == token.UNTIL {
		p.consume()
	}
	cond := p.expression()
	return ast.NewBranch(ast.REPEAT, body, cond)
}

// forStatement parses `FOR Id ':=' Expression TO Expression (BY
// Expression)? DO statementSequence END`.
func (p *Parser) forStatement(resync token.Set) *ast.Node {
	p.consume() // FOR
	name := p.expectIdent(resync.With(token.BECOMES))
	p.matchToken(token.BECOMES, resync.With(token.TO))
	if p.lookahead() == token.BECOMES {
		p.consume()
	}
	lo := p.expression()
	p.matchToken(token.TO, resync.With(token.BY, token.DO))
	if p.lookahead() == token.TO {
		p.consume()
	}
	hi := p.expression()
	step := ast.Empty()
	if p.lookahead() == token.BY {
		p.consume()
		step = p.expression()
	}
	p.matchToken(token.DO, resync.With(token.END))
	if p.lookahead() == token.DO {
		p.consume()
	}
	body := p.statementSequence(resync.With(token.END))
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.FORTO, ast.NewTerminal(ast.IDENT, name), lo, hi, step, body)
}
