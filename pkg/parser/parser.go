package parser

import (
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/lexer"
	"github.com/trijezdci/m2front/pkg/options"
	"github.com/trijezdci/m2front/pkg/strpool"
	"github.com/trijezdci/m2front/pkg/token"
)

// RecordDialect selects between PIM2/PIM3 variant-record syntax and
// PIM4 extensible-record syntax. Reified as an enum set once at parser
// construction, per spec §9's explicit guidance against a mutable
// function-pointer dispatch table entry.
type RecordDialect int

const (
	VariantRecords RecordDialect = iota
	ExtensibleRecords
)

// SourceKind selects which start production the parser's entry point
// dispatches to (spec §4.5's "dispatches on source-type").
type SourceKind int

const (
	AnySource SourceKind = iota
	DefinitionSource
	ProgramSource
)

// Status is the parser's top-level outcome, separate from the per-error
// diag.Sink counts (spec §4.5: "status = INVALID_START_SYMBOL only for
// the top-level start-symbol mismatch").
type Status int

const (
	StatusOK Status = iota
	StatusInvalidStartSymbol
)

// Parser drives lex on demand and builds the AST bottom-up. It owns the
// AST under construction; it borrows the lexer (spec §5).
type Parser struct {
	lex  *lexer.Lexer
	pool *strpool.Pool
	opts options.Options
	sink *diag.Sink

	recordDialect RecordDialect
	status        Status
}

// New constructs a Parser over an already-primed lexer.
func New(lex *lexer.Lexer, pool *strpool.Pool, opts options.Options, sink *diag.Sink) *Parser {
	dialect := ExtensibleRecords
	if opts.VariantRecords {
		dialect = VariantRecords
	}
	return &Parser{lex: lex, pool: pool, opts: opts, sink: sink, recordDialect: dialect}
}

// Status returns the top-level outcome recorded by Parse.
func (p *Parser) Status() Status { return p.status }

func (p *Parser) lookahead() token.Kind   { return p.lex.LookaheadToken() }
func (p *Parser) lookaheadLine() int      { return p.lex.LookaheadLine() }
func (p *Parser) lookaheadColumn() int    { return p.lex.LookaheadColumn() }
func (p *Parser) lookaheadLexeme() strpool.Handle { return p.lex.LookaheadLexeme() }

func (p *Parser) offendingLexemeText() string {
	h := p.lookaheadLexeme()
	if h.Null() {
		return ""
	}
	return h.String()
}

func (p *Parser) consume() token.Kind { return p.lex.ConsumeSym() }

// consumed returns the kind and lexeme of the token just passed over by
// the most recent consume() call, for use building leaf nodes.
func (p *Parser) consumedKind() token.Kind        { return p.lex.CurrentToken() }
func (p *Parser) consumedLexeme() strpool.Handle  { return p.lex.CurrentLexeme() }
func (p *Parser) consumedLine() int               { return p.lex.CurrentLine() }
func (p *Parser) consumedColumn() int             { return p.lex.CurrentColumn() }

// matchToken is the match_token primitive (spec §4.5): on success it
// leaves the lookahead unconsumed for the caller to consume; on failure
// it reports SYNTAX_ERROR and resynchronises.
func (p *Parser) matchToken(expected token.Kind, resync token.Set) bool {
	if p.lookahead() == expected {
		return true
	}
	p.sink.EmitSyntaxErrorExpectingToken(p.lookaheadLine(), p.lookaheadColumn(), p.lookahead(), p.offendingLexemeText(), expected)
	p.resyncTo(resync)
	return false
}

// matchSet is the match_set primitive (spec §4.5).
func (p *Parser) matchSet(expected token.Set, resync token.Set, expectedForDiag []token.Kind) bool {
	if expected.Contains(p.lookahead()) {
		return true
	}
	p.sink.EmitSyntaxErrorExpectingSet(p.lookaheadLine(), p.lookaheadColumn(), p.lookahead(), p.offendingLexemeText(), expectedForDiag)
	p.resyncTo(resync)
	return false
}

func (p *Parser) resyncTo(resync token.Set) {
	for !resync.Contains(p.lookahead()) && p.lookahead() != token.END_OF_FILE {
		p.consume()
	}
}

// expectIdent consumes an IDENTIFIER and returns its lexeme handle, or a
// null handle on failure (the caller has already resynced).
func (p *Parser) expectIdent(resync token.Set) strpool.Handle {
	if !p.matchToken(token.IDENTIFIER, resync) {
		return strpool.Handle{}
	}
	lex := p.lookaheadLexeme()
	p.consume()
	return lex
}

// Parse is the parser's entry point (spec §4.5): it dispatches on kind to
// the matching start production, wraps the result in a ROOT node, and
// reports trailing tokens past the logical end without discarding the
// AST already built.
func (p *Parser) Parse(kind SourceKind, filename strpool.Handle) *ast.Node {
	var body *ast.Node
	switch {
	case kind == DefinitionSource && p.lookahead() == token.DEFINITION:
		body = p.definitionModule()
	case kind != DefinitionSource && p.lookahead() == token.MODULE:
		body = p.programModule()
	case kind != DefinitionSource && p.lookahead() == token.IMPLEMENTATION:
		body = p.implementationModule()
	case kind == AnySource && p.lookahead() == token.DEFINITION:
		body = p.definitionModule()
	default:
		p.status = StatusInvalidStartSymbol
		p.sink.EmitErrorAtPos(diag.INVALID_START_SYMBOL, p.lookaheadLine(), p.lookaheadColumn())
		body = ast.Empty()
	}

	if p.lookahead() != token.END_OF_FILE {
		p.sink.EmitSyntaxErrorExpectingToken(p.lookaheadLine(), p.lookaheadColumn(), p.lookahead(), p.offendingLexemeText(), token.END_OF_FILE)
		for p.lookahead() != token.END_OF_FILE {
			p.consume()
		}
	}

	return ast.NewBranch(ast.ROOT,
		ast.NewTerminal(ast.FILENAME, filename),
		p.optionsNode(),
		body,
	)
}

// optionsNode renders the subset of dialect options spec §4.9 names as
// the core's dependency into an OPTIONS terminal-list leaf, one interned
// flag name per option that is currently on.
func (p *Parser) optionsNode() *ast.Node {
	var fifo ast.ValueFIFO
	add := func(on bool, name string) {
		if !on {
			return
		}
		h, _ := p.pool.Intern(name)
		fifo.Append(h)
	}
	add(p.opts.Verbose, "verbose")
	add(p.opts.Synonyms, "synonyms")
	add(p.opts.LineComments, "line-comments")
	add(p.opts.PrefixLiterals, "prefix-literals")
	add(p.opts.OctalLiterals, "octal-literals")
	add(p.opts.EscapeTabAndNewline, "escape-tab-and-newline")
	add(p.opts.ErrantSemicolon, "errant-semicolon")
	add(p.opts.LowlineIdentifiers, "lowline-identifiers")
	add(p.opts.VariantRecords, "variant-records")
	add(p.opts.LocalModules, "local-modules")
	return ast.NewTerminalList(ast.OPTIONS, fifo.Drain())
}
