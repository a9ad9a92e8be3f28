package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/token"
)

// definitionSequence parses the zero-or-more CONST/TYPE/VAR/PROCEDURE/
// EXPORT declarations of a definition module body, flattening each
// section's individual declarations into one DEFLIST list (spec §4.5's
// "definition" row; EXPORT per SPEC_FULL §C).
func (p *Parser) definitionSequence() *ast.Node {
	var fifo ast.FIFO
	resync := token.NewSet(token.END, token.END_OF_FILE)
loop:
	for {
		switch p.lookahead() {
		case token.CONST:
			p.constSection(&fifo, resync)
		case token.TYPE:
			p.typeSection(&fifo, resync)
		case token.VAR:
			p.varSection(&fifo, resync)
		case token.PROCEDURE:
			fifo.Append(p.procDef(resync, true))
		case token.EXPORT:
			fifo.Append(p.exportDecl())
		default:
			break loop
		}
	}
	return ast.NewList(ast.DEFLIST, &fifo)
}

// declarationSequence parses the declaration part of a block (spec §4.5's
// "declaration" row), additionally accepting a nested MODULE when the
// local_modules option (spec §4.9) is on. Unlike IMPLIST/DEFLIST, which
// are always-present named containers, an empty declaration part
// collapses to EMPTY rather than sealing a childless DECLSEQ (spec §8
// scenario 2's `(BLOCK (EMPTY) (STMTSEQ ...))`).
func (p *Parser) declarationSequence() *ast.Node {
	var fifo ast.FIFO
	resync := token.NewSet(token.BEGIN, token.END, token.END_OF_FILE)
loop:
	for {
		switch p.lookahead() {
		case token.CONST:
			p.constSection(&fifo, resync)
		case token.TYPE:
			p.typeSection(&fifo, resync)
		case token.VAR:
			p.varSection(&fifo, resync)
		case token.PROCEDURE:
			fifo.Append(p.procDef(resync, false))
		case token.MODULE:
			if !p.opts.LocalModules {
				break loop
			}
			fifo.Append(p.localModule(resync))
		default:
			break loop
		}
	}
	if fifo.Len() == 0 {
		return ast.Empty()
	}
	return ast.NewList(ast.DECLSEQ, &fifo)
}

// constSection parses `CONST (Id '=' ConstExpression ';')*`, appending one
// CONSTDEF per entry.
func (p *Parser) constSection(fifo *ast.FIFO, resync token.Set) {
	p.consume() // CONST
	for p.lookahead() == token.IDENTIFIER {
		name := p.expectIdent(resync.With(token.EQUAL, token.SEMICOLON))
		p.matchToken(token.EQUAL, resync.With(token.SEMICOLON))
		if p.lookahead() == token.EQUAL {
			p.consume()
		}
		expr := p.expression()
		p.matchToken(token.SEMICOLON, resync)
		if p.lookahead() == token.SEMICOLON {
			p.consume()
		}
		fifo.Append(ast.NewBranch(ast.CONSTDEF, ast.NewTerminal(ast.IDENT, name), expr))
	}
}

// typeSection parses `TYPE (Id '=' Type ';')*`, appending one TYPEDEF per
// entry.
func (p *Parser) typeSection(fifo *ast.FIFO, resync token.Set) {
	p.consume() // TYPE
	for p.lookahead() == token.IDENTIFIER {
		name := p.expectIdent(resync.With(token.EQUAL, token.SEMICOLON))
		p.matchToken(token.EQUAL, resync.With(token.SEMICOLON))
		if p.lookahead() == token.EQUAL {
			p.consume()
		}
		typ := p.typeDenoter(resync.With(token.SEMICOLON))
		p.matchToken(token.SEMICOLON, resync)
		if p.lookahead() == token.SEMICOLON {
			p.consume()
		}
		fifo.Append(ast.NewBranch(ast.TYPEDEF, ast.NewTerminal(ast.IDENT, name), typ))
	}
}

// varSection parses `VAR (identList ':' Type ';')*`, appending one VARDECL
// per entry; a single VARDECL may name several identifiers sharing one
// type, matching PIM's VariableDeclaration.
func (p *Parser) varSection(fifo *ast.FIFO, resync token.Set) {
	p.consume() // VAR
	for p.lookahead() == token.IDENTIFIER {
		ids := p.identList(resync.With(token.COLON, token.SEMICOLON))
		p.matchToken(token.COLON, resync.With(token.SEMICOLON))
		if p.lookahead() == token.COLON {
			p.consume()
		}
		typ := p.typeDenoter(resync.With(token.SEMICOLON))
		p.matchToken(token.SEMICOLON, resync)
		if p.lookahead() == token.SEMICOLON {
			p.consume()
		}
		fifo.Append(ast.NewBranch(ast.VARDECL, ids, typ))
	}
}

// procDef parses `PROCEDURE Id FormalParameters? ';'`, followed by either
// nothing (headingOnly, for a definition module's procedure heading) or a
// full body: `block Id ';'`.
func (p *Parser) procDef(outerResync token.Set, headingOnly bool) *ast.Node {
	headResync := outerResync.With(token.SEMICOLON)
	p.consume() // PROCEDURE
	name := p.expectIdent(headResync.With(token.LPAREN))
	fparams := p.formalParameters(headResync)
	p.matchToken(token.SEMICOLON, outerResync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	if headingOnly {
		return ast.NewBranch(ast.PROCDEF, ast.NewTerminal(ast.IDENT, name), fparams, ast.Empty())
	}
	body := p.block(outerResync.With(token.IDENTIFIER))
	p.expectIdent(outerResync.With(token.SEMICOLON))
	p.matchToken(token.SEMICOLON, outerResync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	return ast.NewBranch(ast.PROCDEF, ast.NewTerminal(ast.IDENT, name), fparams, body)
}

// formalParameters parses the optional `'(' (FPSection (';' FPSection)*)?
// ')' (':' Qualident)?` suffix on a procedure heading (SPEC_FULL §C).
func (p *Parser) formalParameters(resync token.Set) *ast.Node {
	if p.lookahead() != token.LPAREN {
		return ast.Empty()
	}
	p.consume()
	inner := resync.With(token.RPAREN, token.SEMICOLON)
	var fifo ast.FIFO
	if p.lookahead() != token.RPAREN {
		fifo.Append(p.formalParamSection(inner))
		for p.lookahead() == token.SEMICOLON {
			p.consume()
			fifo.Append(p.formalParamSection(inner))
		}
	}
	p.matchToken(token.RPAREN, resync.With(token.COLON))
	if p.lookahead() == token.RPAREN {
		p.consume()
	}
	list := ast.NewList(ast.FPARAMLIST, &fifo)
	result := ast.Empty()
	if p.lookahead() == token.COLON {
		p.consume()
		rname := p.qualident(resync)
		result = rname
	}
	return ast.NewBranch(ast.FPARAMS, list, result)
}

// formalParamSection parses one `['VAR'] identList ':' FormalType` entry.
// FPARAM's first child is the interned lexeme "VAR" when the parameter is
// passed by reference, Empty otherwise.
func (p *Parser) formalParamSection(resync token.Set) *ast.Node {
	varMarker := ast.Empty()
	if p.lookahead() == token.VAR {
		p.consume()
		h, _ := p.pool.Intern("VAR")
		varMarker = ast.NewTerminal(ast.IDENT, h)
	}
	ids := p.identList(resync.With(token.COLON))
	p.matchToken(token.COLON, resync)
	if p.lookahead() == token.COLON {
		p.consume()
	}
	typ := p.formalType(resync)
	return ast.NewBranch(ast.FPARAM, varMarker, ids, typ)
}

// formalType parses `('ARRAY' 'OF')? Qualident` (PIM's FormalType), wrapping
// an open-array parameter's base type in ARRAY when the prefix is present.
func (p *Parser) formalType(resync token.Set) *ast.Node {
	if p.lookahead() != token.ARRAY {
		return p.qualident(resync)
	}
	p.consume()
	p.matchToken(token.OF, resync)
	if p.lookahead() == token.OF {
		p.consume()
	}
	base := p.qualident(resync)
	return ast.NewBranch(ast.ARRAY, base)
}

// localModule parses `MODULE Id ';' import* export* block Id ';'`
// (SPEC_FULL §C), reusing DECLSEQ's list shape for the export section
// since it is, like a declaration sequence, an ordered list of branch
// nodes with no further structure of its own.
func (p *Parser) localModule(resync token.Set) *ast.Node {
	p.consume() // MODULE
	name := p.expectIdent(resync.With(token.SEMICOLON))
	p.matchToken(token.SEMICOLON, resync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	implist := p.importList()
	var exports ast.FIFO
	for p.lookahead() == token.EXPORT {
		exports.Append(p.exportDecl())
	}
	explist := ast.NewList(ast.DECLSEQ, &exports)
	body := p.block(resync.With(token.IDENTIFIER))
	p.expectIdent(resync.With(token.SEMICOLON))
	p.matchToken(token.SEMICOLON, resync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	return ast.NewBranch(ast.LOCALMOD, ast.NewTerminal(ast.IDENT, name), implist, explist, body)
}
