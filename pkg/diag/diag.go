// Package diag implements the diagnostic emission contract from spec
// §4.8/§7: a closed taxonomy of lexical, syntactic, and option error and
// warning kinds, formatted one-line-per-diagnostic with an optional
// caret-marked source echo under the verbose option.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/trijezdci/m2front/pkg/token"
)

// Kind is a member of the closed diagnostic taxonomy.
type Kind int

const (
	// Lexical.
	DISABLED_CODE_SECTION Kind = iota // warning
	INVALID_INPUT_CHAR
	EOF_IN_BLOCK_COMMENT
	NEW_LINE_IN_STRING_LITERAL
	EOF_IN_STRING_LITERAL
	INVALID_ESCAPE_SEQUENCE
	EOF_IN_PRAGMA
	MISSING_STRING_DELIMITER
	MISSING_SUFFIX
	MISSING_EXPONENT

	// Syntactic.
	SYNTAX_ERROR
	INVALID_START_SYMBOL
	UNEXPECTED_SYMBOL
	DUPLICATE_IDENT_IN_IDENT_LIST // warning
	SEMICOLON_AFTER_FIELD_LIST_SEQ
	EMPTY_FIELD_LIST_SEQ // warning
	SEMICOLON_AFTER_FORMAL_PARAM_LIST
	SEMICOLON_AFTER_STMT_SEQ
	EMPTY_STMT_SEQ // warning

	// Option.
	CONFLICTING_DIALECT_PRESET
)

// Category groups kinds for reporting purposes (spec §7).
type Category int

const (
	Lexical Category = iota
	Syntactic
	Semantic
	Option
)

type kindInfo struct {
	name     string
	category Category
	warning  bool
}

var kindTable = map[Kind]kindInfo{
	DISABLED_CODE_SECTION:             {"DISABLED_CODE_SECTION", Lexical, true},
	INVALID_INPUT_CHAR:                {"INVALID_INPUT_CHAR", Lexical, false},
	EOF_IN_BLOCK_COMMENT:              {"EOF_IN_BLOCK_COMMENT", Lexical, false},
	NEW_LINE_IN_STRING_LITERAL:        {"NEW_LINE_IN_STRING_LITERAL", Lexical, false},
	EOF_IN_STRING_LITERAL:             {"EOF_IN_STRING_LITERAL", Lexical, false},
	INVALID_ESCAPE_SEQUENCE:           {"INVALID_ESCAPE_SEQUENCE", Lexical, false},
	EOF_IN_PRAGMA:                     {"EOF_IN_PRAGMA", Lexical, false},
	MISSING_STRING_DELIMITER:          {"MISSING_STRING_DELIMITER", Lexical, false},
	MISSING_SUFFIX:                    {"MISSING_SUFFIX", Lexical, false},
	MISSING_EXPONENT:                  {"MISSING_EXPONENT", Lexical, false},
	SYNTAX_ERROR:                      {"SYNTAX_ERROR", Syntactic, false},
	INVALID_START_SYMBOL:              {"INVALID_START_SYMBOL", Syntactic, false},
	UNEXPECTED_SYMBOL:                 {"UNEXPECTED_SYMBOL", Syntactic, false},
	DUPLICATE_IDENT_IN_IDENT_LIST:     {"DUPLICATE_IDENT_IN_IDENT_LIST", Syntactic, true},
	SEMICOLON_AFTER_FIELD_LIST_SEQ:    {"SEMICOLON_AFTER_FIELD_LIST_SEQ", Syntactic, false},
	EMPTY_FIELD_LIST_SEQ:              {"EMPTY_FIELD_LIST_SEQ", Syntactic, true},
	SEMICOLON_AFTER_FORMAL_PARAM_LIST: {"SEMICOLON_AFTER_FORMAL_PARAM_LIST", Syntactic, false},
	SEMICOLON_AFTER_STMT_SEQ:          {"SEMICOLON_AFTER_STMT_SEQ", Syntactic, false},
	EMPTY_STMT_SEQ:                    {"EMPTY_STMT_SEQ", Syntactic, true},
	CONFLICTING_DIALECT_PRESET:        {"CONFLICTING_DIALECT_PRESET", Option, false},
}

// String renders k's diagnostic name.
func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return "UNKNOWN_DIAGNOSTIC"
}

// IsWarningByDefault reports the kind's default severity from the table.
func (k Kind) IsWarningByDefault() bool {
	return kindTable[k].warning
}

// SourceLiner supplies the raw text of a given 1-based source line, for
// the verbose caret echo. pkg/source.Reader satisfies this narrowly.
type SourceLiner interface {
	SourceForLine(line int) string
}

// Sink accumulates diagnostic output and error/warning counts. It is the
// single cross-cutting collaborator the lexer and parser both write
// through (spec §2).
type Sink struct {
	Out     io.Writer
	Verbose bool
	Lines   SourceLiner

	ErrorCount   int
	WarningCount int
}

// NewSink returns a Sink writing to out.
func NewSink(out io.Writer, verbose bool, lines SourceLiner) *Sink {
	return &Sink{Out: out, Verbose: verbose, Lines: lines}
}

// SourceLineFunc adapts a plain function to SourceLiner, so callers don't
// need to define a named type just to bridge e.g. pkg/source.Reader's
// Handle-returning SourceForLine into the string-returning form this
// package wants.
type SourceLineFunc func(line int) string

// SourceForLine implements SourceLiner.
func (f SourceLineFunc) SourceForLine(line int) string { return f(line) }

func (s *Sink) bump(warning bool) {
	if warning {
		s.WarningCount++
	} else {
		s.ErrorCount++
	}
}

func (s *Sink) echo(line, col int) {
	if !s.Verbose || s.Lines == nil || line <= 0 {
		return
	}
	text := s.Lines.SourceForLine(line)
	fmt.Fprintf(s.Out, "    %s\n", text)
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(s.Out, "    %s^\n", strings.Repeat(" ", pad))
}

func (s *Sink) printHeader(line, col int, kind Kind, descr string) {
	switch {
	case line > 0:
		fmt.Fprintf(s.Out, "line %d, column %d, %s: %s\n", line, col, kind, descr)
	default:
		fmt.Fprintf(s.Out, "%s: %s\n", kind, descr)
	}
}

// EmitError reports a positionless error (e.g. a fatal open/size-cap
// condition surfaced through the diagnostic sink rather than a bare
// error return).
func (s *Sink) EmitError(kind Kind, descr string) {
	s.printHeader(0, 0, kind, descr)
	s.bump(false)
}

// EmitErrorAtLexeme reports an error tied to a specific lexeme.
func (s *Sink) EmitErrorAtLexeme(kind Kind, line, col int, lexeme string) {
	s.printHeader(line, col, kind, fmt.Sprintf("offending lexeme %q", lexeme))
	s.echo(line, col)
	s.bump(false)
}

// EmitErrorAtChar reports an error tied to a single offending character.
func (s *Sink) EmitErrorAtChar(kind Kind, line, col int, ch byte) {
	s.printHeader(line, col, kind, fmt.Sprintf("offending character %q", string(ch)))
	s.echo(line, col)
	s.bump(false)
}

// EmitErrorAtPos reports an error tied to a position with no further
// payload.
func (s *Sink) EmitErrorAtPos(kind Kind, line, col int) {
	s.printHeader(line, col, kind, "")
	s.echo(line, col)
	s.bump(false)
}

// EmitWarningAtPos reports a warning tied to a single position.
func (s *Sink) EmitWarningAtPos(kind Kind, line, col int) {
	s.printHeader(line, col, kind, "")
	s.echo(line, col)
	s.bump(true)
}

// EmitWarningAtRange reports a warning spanning firstLine..lastLine (used
// for the disabled-code-section warning, spec §4.3 rule 5).
func (s *Sink) EmitWarningAtRange(kind Kind, firstLine, lastLine int) {
	fmt.Fprintf(s.Out, "line %d-%d, %s\n", firstLine, lastLine, kind)
	s.bump(true)
}

// offendingClass renders the class-sensitive prefix spec §4.8 requires
// for offending symbols: identifier, literal, reserved word, symbol, EOF.
func offendingClass(k token.Kind) string {
	switch {
	case k == token.END_OF_FILE:
		return "end of file"
	case k == token.IDENTIFIER:
		return "identifier"
	case k == token.INTEGER_LITERAL || k == token.REAL_LITERAL ||
		k == token.CHAR_LITERAL || k == token.STRING_LITERAL ||
		k == token.MALFORMED_INTEGER || k == token.MALFORMED_REAL:
		return "literal"
	case k.IsReservedWord():
		return "reserved word"
	default:
		return "symbol"
	}
}

// EmitSyntaxErrorExpectingToken reports a match_token failure: lookahead
// didn't match the single expected kind.
func (s *Sink) EmitSyntaxErrorExpectingToken(line, col int, offending token.Kind, offendingLex string, expected token.Kind) {
	s.emitSyntaxError(line, col, offending, offendingLex, []token.Kind{expected})
}

// EmitSyntaxErrorExpectingSet reports a match_set failure: lookahead
// wasn't a member of the expected set. expected lists the set's members
// in a stable, caller-chosen order for reproducible diagnostics.
func (s *Sink) EmitSyntaxErrorExpectingSet(line, col int, offending token.Kind, offendingLex string, expected []token.Kind) {
	s.emitSyntaxError(line, col, offending, offendingLex, expected)
}

func (s *Sink) emitSyntaxError(line, col int, offending token.Kind, offendingLex string, expected []token.Kind) {
	class := offendingClass(offending)
	var got string
	if offendingLex != "" {
		got = fmt.Sprintf("%s %q", class, offendingLex)
	} else {
		got = fmt.Sprintf("%s %s", class, offending)
	}
	fmt.Fprintf(s.Out, "line %d, column %d, %s: unexpected %s\n", line, col, SYNTAX_ERROR, got)
	s.echo(line, col)
	fmt.Fprintf(s.Out, "  expected %s\n", formatExpected(expected))
	s.bump(false)
}

func formatExpected(expected []token.Kind) string {
	if len(expected) == 0 {
		return "nothing"
	}
	if len(expected) == 1 {
		return expected[0].String()
	}
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
