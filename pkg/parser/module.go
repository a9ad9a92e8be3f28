package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/token"
)

var importFollow = token.NewSet(token.END, token.IMPORT, token.FROM).With(
	token.CONST, token.TYPE, token.VAR, token.PROCEDURE, token.BEGIN, token.END_OF_FILE)

// definitionModule parses `DEFINITION MODULE Id ';' import* definition* END Id '.'`
func (p *Parser) definitionModule() *ast.Node {
	p.consume() // DEFINITION
	p.matchToken(token.MODULE, importFollow)
	if p.lookahead() == token.MODULE {
		p.consume()
	}
	name := p.expectIdent(importFollow)
	p.matchToken(token.SEMICOLON, importFollow)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	implist := p.importList()
	decls := p.definitionSequence()
	p.matchToken(token.END, token.NewSet(token.END_OF_FILE))
	if p.lookahead() == token.END {
		p.consume()
	}
	p.expectIdent(token.NewSet(token.PERIOD, token.END_OF_FILE))
	if p.lookahead() == token.PERIOD {
		p.consume()
	}
	return ast.NewBranch(ast.DEFMOD, ast.NewTerminal(ast.IDENT, name), implist, decls)
}

// programModule parses `MODULE Id modulePriority? ';' import* block Id '.'`
func (p *Parser) programModule() *ast.Node {
	p.consume() // MODULE
	name := p.expectIdent(importFollow)
	priority := p.modulePriority()
	p.matchToken(token.SEMICOLON, importFollow)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	implist := p.importList()
	body := p.block(token.NewSet(token.END_OF_FILE))
	p.expectIdent(token.NewSet(token.PERIOD, token.END_OF_FILE))
	if p.lookahead() == token.PERIOD {
		p.consume()
	}
	return ast.NewBranch(ast.PROGMOD, ast.NewTerminal(ast.IDENT, name), priority, implist, body)
}

// implementationModule parses `IMPLEMENTATION MODULE Id ';' import* block Id '.'`
func (p *Parser) implementationModule() *ast.Node {
	p.consume() // IMPLEMENTATION
	p.matchToken(token.MODULE, importFollow)
	if p.lookahead() == token.MODULE {
		p.consume()
	}
	name := p.expectIdent(importFollow)
	p.matchToken(token.SEMICOLON, importFollow)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	implist := p.importList()
	body := p.block(token.NewSet(token.END_OF_FILE))
	p.expectIdent(token.NewSet(token.PERIOD, token.END_OF_FILE))
	if p.lookahead() == token.PERIOD {
		p.consume()
	}
	return ast.NewBranch(ast.IMPMOD, ast.NewTerminal(ast.IDENT, name), ast.Empty(), implist, body)
}

// modulePriority parses the optional `'[' ConstExpression ']'` suffix on
// MODULE (spec SPEC_FULL §C "Module priority").
func (p *Parser) modulePriority() *ast.Node {
	if p.lookahead() != token.LBRACKET {
		return ast.Empty()
	}
	p.consume()
	expr := p.expression()
	p.matchToken(token.RBRACKET, importFollow)
	if p.lookahead() == token.RBRACKET {
		p.consume()
	}
	return ast.NewBranch(ast.PRIORITY, expr)
}

// importList accumulates zero or more import declarations.
func (p *Parser) importList() *ast.Node {
	var fifo ast.FIFO
	for firstImport.Contains(p.lookahead()) {
		fifo.Append(p.importDecl())
	}
	return ast.NewList(ast.IMPLIST, &fifo)
}

// importDecl parses a single qualified or unqualified import.
func (p *Parser) importDecl() *ast.Node {
	resync := token.NewSet(token.SEMICOLON, token.END_OF_FILE)
	if p.lookahead() == token.FROM {
		p.consume()
		module := p.expectIdent(resync)
		p.matchToken(token.IMPORT, resync)
		if p.lookahead() == token.IMPORT {
			p.consume()
		}
		ids := p.identList(resync)
		p.matchToken(token.SEMICOLON, resync)
		if p.lookahead() == token.SEMICOLON {
			p.consume()
		}
		return ast.NewBranch(ast.UNQIMP, ast.NewTerminal(ast.IDENT, module), ids)
	}
	p.consume() // IMPORT
	ids := p.identList(resync)
	p.matchToken(token.SEMICOLON, resync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	return ast.NewBranch(ast.IMPORT, ids)
}

// exportDecl parses `EXPORT QUALIFIED? identList ';'` (SPEC_FULL §C).
func (p *Parser) exportDecl() *ast.Node {
	resync := token.NewSet(token.SEMICOLON, token.END_OF_FILE)
	p.consume() // EXPORT
	qualified := false
	if p.lookahead() == token.QUALIFIED {
		qualified = true
		p.consume()
	}
	ids := p.identList(resync)
	p.matchToken(token.SEMICOLON, resync)
	if p.lookahead() == token.SEMICOLON {
		p.consume()
	}
	if qualified {
		return ast.NewBranch(ast.QEXPORT, ids)
	}
	return ast.NewBranch(ast.EXPORT, ids)
}

// identList parses `Id (',' Id)*`, dropping duplicates and emitting
// DUPLICATE_IDENT_IN_IDENT_LIST exactly once per duplicate (spec §8
// scenario 6).
func (p *Parser) identList(resync token.Set) *ast.Node {
	var fifo ast.ValueFIFO
	first := p.expectIdent(resync.With(token.COMMA))
	if !first.Null() {
		fifo.Append(first)
	}
	for p.lookahead() == token.COMMA {
		p.consume()
		id := p.expectIdent(resync.With(token.COMMA))
		if id.Null() {
			continue
		}
		if fifo.Contains(id) {
			p.sink.EmitWarningAtPos(diag.DUPLICATE_IDENT_IN_IDENT_LIST, p.consumedLine(), p.consumedColumn())
			continue
		}
		fifo.Append(id)
	}
	return ast.NewTerminalList(ast.IDENTLIST, fifo.Drain())
}
