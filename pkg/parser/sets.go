// Package parser implements the recursive-descent, one-lookahead parser
// driving the lexer and building the AST (spec §4.5). One procedure per
// non-terminal, FIRST-set dispatch, and panic-mode recovery to named
// resync points are grounded on openconfig-goyang/pkg/yang/parse.go's
// nextStatement/match/push/pop family, generalised from a single
// generic-statement grammar to this one's fully typed productions.
package parser

import "github.com/trijezdci/m2front/pkg/token"

// FIRST sets for the non-terminals whose alternative is chosen by
// lookahead alone (spec §4.4). Built once at package init from the
// grammar in spec §6; RESYNC sets are built alongside the productions
// that use them, each starting from the relevant FOLLOW set via Set.With.
var (
	firstDefinition  token.Set
	firstDeclaration token.Set
	firstStatement   token.Set
	firstType        token.Set
	firstFactor      token.Set
	firstImport      token.Set

	// Named panic-mode recovery points from spec §4.5.
	elsifOrElseOrEnd token.Set
	commaOrSemicolon token.Set
	elseOrEnd        token.Set
)

func init() {
	firstImport = token.NewSet(token.IMPORT, token.FROM)

	firstDefinition = token.NewSet(token.CONST, token.TYPE, token.VAR, token.PROCEDURE)
	firstDeclaration = firstDefinition.With(token.MODULE)

	firstStatement = token.NewSet(
		token.IDENTIFIER, token.RETURN, token.WITH, token.IF, token.CASE,
		token.LOOP, token.WHILE, token.REPEAT, token.FOR, token.EXIT,
	)

	firstType = token.NewSet(
		token.IDENTIFIER, token.ARRAY, token.RECORD, token.SET,
		token.POINTER, token.PROCEDURE, token.LPAREN, token.LBRACKET,
	)

	firstFactor = token.NewSet(
		token.IDENTIFIER, token.INTEGER_LITERAL, token.REAL_LITERAL,
		token.CHAR_LITERAL, token.STRING_LITERAL, token.MALFORMED_INTEGER,
		token.MALFORMED_REAL, token.LBRACE, token.LPAREN,
	)

	elsifOrElseOrEnd = token.NewSet(token.ELSIF, token.ELSE, token.END, token.END_OF_FILE)
	commaOrSemicolon = token.NewSet(token.COMMA, token.SEMICOLON, token.END_OF_FILE)
	elseOrEnd = token.NewSet(token.ELSE, token.END, token.END_OF_FILE)
}
