package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/token"
)

// typeDenoter dispatches on lookahead to the type production spec §4.5's
// "type" row names: Qualident/enumeration/subrange, ARRAY, RECORD, SET,
// POINTER, PROCEDURE (SPEC_FULL §C).
func (p *Parser) typeDenoter(resync token.Set) *ast.Node {
	switch p.lookahead() {
	case token.ARRAY:
		return p.arrayType(resync)
	case token.RECORD:
		return p.recordType(resync)
	case token.SET:
		return p.setType(resync)
	case token.POINTER:
		return p.pointerType(resync)
	case token.PROCEDURE:
		return p.procedureType(resync)
	case token.LBRACKET:
		return p.subrangeType(resync)
	case token.LPAREN:
		return p.enumType(resync)
	default:
		return p.qualident(resync)
	}
}

// qualident parses `Id ('.' Id)*`, returning a plain IDENT leaf for the
// unqualified case and a QUALIDENT terminal list only when a dot is
// actually present, so ordinary identifiers never pay for the list
// shape. QUALIDENT's items are raw lexemes, the same shape as
// IDENTLIST (spec §4.7), not a branch of IDENT children.
func (p *Parser) qualident(resync token.Set) *ast.Node {
	first := p.expectIdent(resync.With(token.PERIOD))
	if p.lookahead() != token.PERIOD {
		return ast.NewTerminal(ast.IDENT, first)
	}
	var fifo ast.ValueFIFO
	fifo.Append(first)
	for p.lookahead() == token.PERIOD {
		p.consume()
		id := p.expectIdent(resync.With(token.PERIOD))
		fifo.Append(id)
	}
	return ast.NewTerminalList(ast.QUALIDENT, fifo.Drain())
}

// subrangeType parses `'[' ConstExpression '..' ConstExpression ']'`.
func (p *Parser) subrangeType(resync token.Set) *ast.Node {
	p.consume() // [
	lo := p.expression()
	p.matchToken(token.RANGE, resync.With(token.RBRACKET))
	if p.lookahead() == token.RANGE {
		p.consume()
	}
	hi := p.expression()
	p.matchToken(token.RBRACKET, resync)
	if p.lookahead() == token.RBRACKET {
		p.consume()
	}
	return ast.NewBranch(ast.SUBR, lo, hi)
}

// enumType parses `'(' identList ')'`.
func (p *Parser) enumType(resync token.Set) *ast.Node {
	p.consume() // (
	ids := p.identList(resync.With(token.RPAREN))
	p.matchToken(token.RPAREN, resync)
	if p.lookahead() == token.RPAREN {
		p.consume()
	}
	return ast.NewBranch(ast.ENUM, ids)
}

// setType parses `SET OF SimpleType`.
func (p *Parser) setType(resync token.Set) *ast.Node {
	p.consume() // SET
	p.matchToken(token.OF, resync)
	if p.lookahead() == token.OF {
		p.consume()
	}
	base := p.typeDenoter(resync)
	return ast.NewBranch(ast.SET, base)
}

// arrayType parses `ARRAY SimpleType (',' SimpleType)* OF Type`, holding
// the index types followed by the element type as an ordered child list.
func (p *Parser) arrayType(resync token.Set) *ast.Node {
	p.consume() // ARRAY
	indexResync := resync.With(token.COMMA, token.OF)
	var fifo ast.FIFO
	fifo.Append(p.typeDenoter(indexResync))
	for p.lookahead() == token.COMMA {
		p.consume()
		fifo.Append(p.typeDenoter(indexResync))
	}
	p.matchToken(token.OF, resync)
	if p.lookahead() == token.OF {
		p.consume()
	}
	fifo.Append(p.typeDenoter(resync))
	return ast.NewList(ast.ARRAY, &fifo)
}

// pointerType parses `POINTER TO Type`.
func (p *Parser) pointerType(resync token.Set) *ast.Node {
	p.consume() // POINTER
	p.matchToken(token.TO, resync)
	if p.lookahead() == token.TO {
		p.consume()
	}
	base := p.typeDenoter(resync)
	return ast.NewBranch(ast.POINTER, base)
}

// procedureType parses `PROCEDURE [FormalTypeList]`, mirroring
// formalParameters but over bare types instead of named parameters.
func (p *Parser) procedureType(resync token.Set) *ast.Node {
	p.consume() // PROCEDURE
	if p.lookahead() != token.LPAREN {
		return ast.NewBranch(ast.PROCTYPE, ast.Empty(), ast.Empty())
	}
	p.consume()
	inner := resync.With(token.RPAREN, token.COMMA)
	var fifo ast.FIFO
	if p.lookahead() != token.RPAREN {
		fifo.Append(p.formalTypeEntry(inner))
		for p.lookahead() == token.COMMA {
			p.consume()
			fifo.Append(p.formalTypeEntry(inner))
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
		result = p.qualident(resync)
	}
	return ast.NewBranch(ast.PROCTYPE, list, result)
}

// formalTypeEntry parses one `['VAR'] FormalType` entry of a procedure
// type's parameter list. Reuses FPARAM with two children (marker, type)
// rather than the named-parameter three-child form built by
// formalParamSection.
func (p *Parser) formalTypeEntry(resync token.Set) *ast.Node {
	varMarker := ast.Empty()
	if p.lookahead() == token.VAR {
		p.consume()
		h, _ := p.pool.Intern("VAR")
		varMarker = ast.NewTerminal(ast.IDENT, h)
	}
	typ := p.formalType(resync)
	return ast.NewBranch(ast.FPARAM, varMarker, typ)
}

// recordType parses RECORD's two dialect forms. With ExtensibleRecords
// selected and a base-type clause present it yields EXTREC; otherwise it
// yields VRNTREC under VariantRecords and plain RECORD otherwise. All
// three share FIELDLISTSEQ's shape, including any nested CASE variant
// fields, which are accepted from either dialect (spec §9 leaves no
// reason to reject them from the extensible dialect).
func (p *Parser) recordType(resync token.Set) *ast.Node {
	p.consume() // RECORD
	if p.recordDialect == ExtensibleRecords && p.lookahead() == token.LPAREN {
		p.consume()
		base := p.qualident(resync.With(token.RPAREN))
		p.matchToken(token.RPAREN, resync)
		if p.lookahead() == token.RPAREN {
			p.consume()
		}
		fields := p.fieldListSequence(resync.With(token.END))
		p.matchToken(token.END, resync)
		if p.lookahead() == token.END {
			p.consume()
		}
		return ast.NewBranch(ast.EXTREC, base, fields)
	}
	fields := p.fieldListSequence(resync.With(token.END))
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	if p.recordDialect == VariantRecords {
		return ast.NewBranch(ast.VRNTREC, fields)
	}
	return ast.NewBranch(ast.RECORD, fields)
}

var fieldListStart = token.NewSet(token.IDENTIFIER, token.CASE)

// fieldListSequence parses `FieldList (';' FieldList)*`, honouring the
// errant_semicolon option on a trailing separator (spec §4.9) and warning
// once on a wholly empty sequence.
func (p *Parser) fieldListSequence(resync token.Set) *ast.Node {
	var fifo ast.FIFO
	if fieldListStart.Contains(p.lookahead()) {
		fifo.Append(p.fieldList(resync.With(token.SEMICOLON)))
		for p.lookahead() == token.SEMICOLON {
			p.consume()
			if !fieldListStart.Contains(p.lookahead()) {
				if p.opts.ErrantSemicolon {
					p.sink.EmitWarningAtPos(diag.SEMICOLON_AFTER_FIELD_LIST_SEQ, p.consumedLine(), p.consumedColumn())
				} else {
					p.sink.EmitErrorAtPos(diag.SEMICOLON_AFTER_FIELD_LIST_SEQ, p.consumedLine(), p.consumedColumn())
				}
				break
			}
			fifo.Append(p.fieldList(resync.With(token.SEMICOLON)))
		}
	}
	if fifo.Len() == 0 {
		p.sink.EmitWarningAtPos(diag.EMPTY_FIELD_LIST_SEQ, p.lookaheadLine(), p.lookaheadColumn())
	}
	return ast.NewList(ast.FIELDLISTSEQ, &fifo)
}

// fieldList parses one `identList ':' Type` entry or, via
// variantFieldList, the `CASE ... END` alternative of the same
// nonterminal (the former yields FIELDLIST, the latter VFLIST).
func (p *Parser) fieldList(resync token.Set) *ast.Node {
	if p.lookahead() == token.CASE {
		return p.variantFieldList(resync)
	}
	ids := p.identList(resync.With(token.COLON))
	p.matchToken(token.COLON, resync)
	if p.lookahead() == token.COLON {
		p.consume()
	}
	typ := p.typeDenoter(resync)
	return ast.NewBranch(ast.FIELDLIST, ids, typ)
}

// variantFieldList parses `CASE [Id ':'] Qualident OF Variant ('|'
// Variant)* [ELSE FieldListSequence] END`, returning the
// VFLIST(caseId,typeId,variantList,fls) node spec §4.5's table names for
// this exact production. The one-token lookahead can't tell the optional
// tag identifier from the discriminant type's qualident up front, so it
// parses a qualident first and reinterprets it as the tag only if a ':'
// follows.
func (p *Parser) variantFieldList(resync token.Set) *ast.Node {
	p.consume() // CASE
	first := p.qualident(resync.With(token.COLON, token.OF))
	tag := ast.Empty()
	typ := first
	if p.lookahead() == token.COLON {
		tag = first
		p.consume()
		typ = p.qualident(resync.With(token.OF))
	}
	p.matchToken(token.OF, resync)
	if p.lookahead() == token.OF {
		p.consume()
	}
	variantResync := resync.With(token.BAR, token.ELSE, token.END)
	var variants ast.FIFO
	variants.Append(p.variant(variantResync))
	for p.lookahead() == token.BAR {
		p.consume()
		variants.Append(p.variant(variantResync))
	}
	vlist := ast.NewList(ast.VARIANTLIST, &variants)
	elseFields := ast.Empty()
	if p.lookahead() == token.ELSE {
		p.consume()
		elseFields = p.fieldListSequence(resync.With(token.END))
	}
	p.matchToken(token.END, resync)
	if p.lookahead() == token.END {
		p.consume()
	}
	return ast.NewBranch(ast.VFLIST, tag, typ, vlist, elseFields)
}

// variant parses `CaseLabelList ':' FieldListSequence`.
func (p *Parser) variant(resync token.Set) *ast.Node {
	labels := p.caseLabelList(resync.With(token.COLON))
	p.matchToken(token.COLON, resync)
	if p.lookahead() == token.COLON {
		p.consume()
	}
	fields := p.fieldListSequence(resync)
	return ast.NewBranch(ast.VARIANT, labels, fields)
}

// caseLabelList parses `CaseLabel (',' CaseLabel)*`, shared by variant
// record fields and the CASE statement (stmt.go).
func (p *Parser) caseLabelList(resync token.Set) *ast.Node {
	inner := resync.With(token.COMMA)
	var fifo ast.FIFO
	fifo.Append(p.caseLabel(inner))
	for p.lookahead() == token.COMMA {
		p.consume()
		fifo.Append(p.caseLabel(inner))
	}
	return ast.NewList(ast.VLABELLIST, &fifo)
}

// caseLabel parses `ConstExpression ['..' ConstExpression]`, reusing SUBR
// for the range form since its shape is identical (lo, hi).
func (p *Parser) caseLabel(resync token.Set) *ast.Node {
	lo := p.expression()
	if p.lookahead() != token.RANGE {
		return lo
	}
	p.consume()
	hi := p.expression()
	return ast.NewBranch(ast.SUBR, lo, hi)
}
