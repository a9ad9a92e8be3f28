// Package lexer converts the character stream from pkg/source into the
// token stream the parser drives (spec §4.3). It owns exactly one
// buffered lookahead token; the source reader and the string pool are
// borrowed, not owned.
package lexer

import (
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/options"
	"github.com/trijezdci/m2front/pkg/source"
	"github.com/trijezdci/m2front/pkg/strpool"
	"github.com/trijezdci/m2front/pkg/token"
)

// Lexer produces a lazy token stream from a source.Reader, honouring the
// dialect options that gate comment styles, literal syntax, and synonyms.
type Lexer struct {
	reader *source.Reader
	pool   *strpool.Pool
	opts   options.Options
	sink   *diag.Sink

	lookahead token.Token
	current   token.Token

	errorCount int
}

// New constructs a Lexer reading from r and primes its lookahead with the
// first token.
func New(r *source.Reader, pool *strpool.Pool, opts options.Options, sink *diag.Sink) *Lexer {
	l := &Lexer{reader: r, pool: pool, opts: opts, sink: sink}
	l.lookahead = l.scan()
	return l
}

// LookaheadToken returns the kind of the buffered lookahead token.
func (l *Lexer) LookaheadToken() token.Kind { return l.lookahead.Kind }

// LookaheadLexeme returns the buffered lookahead token's lexeme handle.
func (l *Lexer) LookaheadLexeme() strpool.Handle { return l.lookahead.Lexeme }

// LookaheadLine returns the buffered lookahead token's line.
func (l *Lexer) LookaheadLine() int { return l.lookahead.Line }

// LookaheadColumn returns the buffered lookahead token's column.
func (l *Lexer) LookaheadColumn() int { return l.lookahead.Column }

// LookaheadTokenValue returns the buffered lookahead token itself.
func (l *Lexer) LookaheadTokenValue() token.Token { return l.lookahead }

// ConsumeSym advances past the buffered lookahead, fetches the next
// token, and returns its kind.
func (l *Lexer) ConsumeSym() token.Kind {
	l.current = l.lookahead
	l.lookahead = l.scan()
	return l.lookahead.Kind
}

// CurrentToken returns the kind of the most recently consumed token.
func (l *Lexer) CurrentToken() token.Kind { return l.current.Kind }

// CurrentLexeme returns the most recently consumed token's lexeme handle.
func (l *Lexer) CurrentLexeme() strpool.Handle { return l.current.Lexeme }

// CurrentLine returns the most recently consumed token's line.
func (l *Lexer) CurrentLine() int { return l.current.Line }

// CurrentColumn returns the most recently consumed token's column.
func (l *Lexer) CurrentColumn() int { return l.current.Column }

// Filename returns the interned handle of the file being scanned.
func (l *Lexer) Filename() strpool.Handle { return l.reader.Filename() }

// Status returns the underlying source reader's terminal status, if any.
func (l *Lexer) Status() source.Status { return l.reader.Status() }

// ErrorCount returns the number of lexical errors reported so far.
func (l *Lexer) ErrorCount() int { return l.errorCount }

func (l *Lexer) errorAtPos(kind diag.Kind, line, col int) {
	l.sink.EmitErrorAtPos(kind, line, col)
	l.errorCount++
}

func (l *Lexer) errorAtChar(kind diag.Kind, line, col int, c byte) {
	l.sink.EmitErrorAtChar(kind, line, col, c)
	l.errorCount++
}

// scan is the lexer's single entry point into the character stream: skip
// insignificant input, then recognise exactly one token. A column-count
// overflow is a hard fatal (spec §4.2): once the reader reports it, scan
// stops recognising further tokens and answers END_OF_FILE from then on,
// so neither the lexer nor the parser keeps consuming past the point of
// failure.
func (l *Lexer) scan() token.Token {
	if l.reader.Status() == source.StatusColumnOverflow {
		return token.Token{Kind: token.END_OF_FILE, Line: l.reader.Line(), Column: l.reader.Column()}
	}
	for {
		l.skipInsignificant()
		line, col := l.reader.Line(), l.reader.Column()
		c := l.reader.NextChar()
		switch {
		case c == source.EOT:
			return token.Token{Kind: token.END_OF_FILE, Line: line, Column: col}
		case isLetter(c):
			return l.scanIdentifierOrReserved(line, col)
		case isDecimalDigit(c):
			return l.scanNumber(line, col)
		case c == '\'' || c == '"':
			return l.scanString(c, line, col)
		default:
			if tok, ok := l.scanSymbol(line, col); ok {
				return tok
			}
			l.errorAtChar(diag.INVALID_INPUT_CHAR, line, col, c)
			l.reader.ConsumeChar()
		}
	}
}

// skipInsignificant consumes whitespace, comments, pragmas' surrounding
// nothing (pragmas are tokens, see scanSymbol), and disabled-code
// sections (spec §4.3 rules 1,2,3,5).
func (l *Lexer) skipInsignificant() {
	for {
		switch c := l.reader.NextChar(); {
		case c == ' ' || c == '\t' || c == '\n':
			l.reader.ConsumeChar()
		case c == '!' && l.opts.LineComments:
			l.skipLineComment()
		case c == '(' && l.reader.La2Char() == '*':
			l.skipBlockComment()
		case c == '?' && l.reader.La2Char() == '<' && l.reader.Column() == 1:
			l.skipDisabledCodeSection()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	l.reader.ConsumeChar() // '!'
	for {
		c := l.reader.NextChar()
		if c == '\n' || c == source.EOT {
			return
		}
		l.reader.ConsumeChar()
	}
}

func (l *Lexer) skipBlockComment() {
	line, col := l.reader.Line(), l.reader.Column()
	l.reader.ConsumeChar() // '('
	l.reader.ConsumeChar() // '*'
	depth := 1
	for depth > 0 {
		switch c := l.reader.NextChar(); {
		case c == source.EOT:
			l.errorAtPos(diag.EOF_IN_BLOCK_COMMENT, line, col)
			return
		case c == '(' && l.reader.La2Char() == '*':
			l.reader.ConsumeChar()
			l.reader.ConsumeChar()
			depth++
		case c == '*' && l.reader.La2Char() == ')':
			l.reader.ConsumeChar()
			l.reader.ConsumeChar()
			depth--
		case c == '\t' || c == '\n':
			l.reader.ConsumeChar()
		case c < 32:
			l.errorAtChar(diag.INVALID_INPUT_CHAR, l.reader.Line(), l.reader.Column(), c)
			l.reader.ConsumeChar()
		default:
			l.reader.ConsumeChar()
		}
	}
}

func (l *Lexer) skipDisabledCodeSection() {
	firstLine := l.reader.Line()
	l.reader.ConsumeChar() // '?'
	l.reader.ConsumeChar() // '<'
	for {
		c := l.reader.NextChar()
		if c == source.EOT {
			break
		}
		if c == '>' && l.reader.La2Char() == '?' && l.reader.Column() == 1 {
			break
		}
		if c < 32 && c != '\t' && c != '\n' {
			l.errorAtChar(diag.INVALID_INPUT_CHAR, l.reader.Line(), l.reader.Column(), c)
		}
		l.reader.ConsumeChar()
	}
	lastLine := l.reader.Line()
	if l.reader.NextChar() != source.EOT {
		l.reader.ConsumeChar() // '>'
		l.reader.ConsumeChar() // '?'
	}
	l.sink.EmitWarningAtRange(diag.DISABLED_CODE_SECTION, firstLine, lastLine)
}

func (l *Lexer) scanIdentifierOrReserved(line, col int) token.Token {
	l.reader.MarkLexeme()
	l.reader.ConsumeChar() // the leading letter, already peeked
	for {
		c := l.reader.NextChar()
		switch {
		case isLetter(c) || isDecimalDigit(c):
			l.reader.ConsumeChar()
		case c == '_' && l.opts.LowlineIdentifiers && isAlnum(l.reader.La2Char()):
			l.reader.ConsumeChar()
		default:
			lex := l.reader.ReadMarkedLexeme()
			if kind, ok := token.LookupReservedWord(lex.String()); ok {
				return token.Token{Kind: kind, Line: line, Column: col}
			}
			return token.Token{Kind: token.IDENTIFIER, Lexeme: lex, Line: line, Column: col}
		}
	}
}

func (l *Lexer) scanString(delim byte, line, col int) token.Token {
	l.reader.ConsumeChar() // opening delimiter
	l.reader.MarkLexeme()
	for {
		c := l.reader.NextChar()
		switch {
		case c == delim:
			lex := l.reader.ReadMarkedLexeme()
			l.reader.ConsumeChar()
			return token.Token{Kind: token.STRING_LITERAL, Lexeme: lex, Line: line, Column: col}
		case c == source.EOT:
			lex := l.reader.ReadMarkedLexeme()
			l.errorAtPos(diag.EOF_IN_STRING_LITERAL, line, col)
			return token.Token{Kind: token.STRING_LITERAL, Lexeme: lex, Line: line, Column: col}
		case c == '\n':
			l.errorAtPos(diag.NEW_LINE_IN_STRING_LITERAL, l.reader.Line(), l.reader.Column())
			l.reader.ConsumeChar()
		case c == '\\' && l.opts.EscapeTabAndNewline:
			l.reader.ConsumeChar()
			switch e := l.reader.NextChar(); e {
			case '\\', 'n', 't':
				l.reader.ConsumeChar()
			default:
				l.errorAtPos(diag.INVALID_ESCAPE_SEQUENCE, l.reader.Line(), l.reader.Column())
				if e != source.EOT {
					l.reader.ConsumeChar()
				}
			}
		case c < 32 && c != '\t':
			l.errorAtChar(diag.INVALID_INPUT_CHAR, l.reader.Line(), l.reader.Column(), c)
			l.reader.ConsumeChar()
		default:
			l.reader.ConsumeChar()
		}
	}
}

// scanNumber recognises an integer or real literal per spec §4.3 rule 9.
// Malformed literals are returned as data-carrying MALFORMED_INTEGER /
// MALFORMED_REAL tokens without emitting a diagnostic here; the parser
// reports MISSING_SUFFIX / MISSING_EXPONENT when it meets one in a
// literal-expecting position.
func (l *Lexer) scanNumber(line, col int) token.Token {
	l.reader.MarkLexeme()
	if l.opts.PrefixLiterals {
		return l.scanNumberPrefix(line, col)
	}
	return l.scanNumberSuffix(line, col)
}

func (l *Lexer) consumeRun(pred func(byte) bool) int {
	n := 0
	for pred(l.reader.NextChar()) {
		l.reader.ConsumeChar()
		n++
	}
	return n
}

func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }

func (l *Lexer) scanNumberPrefix(line, col int) token.Token {
	first := l.reader.NextChar()
	l.reader.ConsumeChar() // the leading digit, already peeked by caller
	if first != '0' {
		l.consumeRun(isDecimalDigit)
		return l.scanDecimalTail(line, col)
	}
	switch l.reader.NextChar() {
	case 'x':
		l.reader.ConsumeChar()
		n := l.consumeRun(isHexDigit)
		lex := l.reader.ReadMarkedLexeme()
		if n == 0 {
			return token.Token{Kind: token.MALFORMED_INTEGER, Lexeme: lex, Line: line, Column: col}
		}
		return token.Token{Kind: token.INTEGER_LITERAL, Lexeme: lex, Line: line, Column: col}
	case 'u':
		l.reader.ConsumeChar()
		n := l.consumeRun(isHexDigit)
		lex := l.reader.ReadMarkedLexeme()
		if n == 0 {
			return token.Token{Kind: token.MALFORMED_INTEGER, Lexeme: lex, Line: line, Column: col}
		}
		return token.Token{Kind: token.CHAR_LITERAL, Lexeme: lex, Line: line, Column: col}
	default:
		l.consumeRun(isDecimalDigit)
		return l.scanDecimalTail(line, col)
	}
}

// scanNumberSuffix implements PIM2/PIM3-style suffix literals: a maximal
// hex-digit run followed by H (base 16, unconditional), or a maximal
// octal-digit run followed by B or C (base 8, gated on octal_literals),
// falling back to a plain decimal literal when no suffix follows.
//
// B and C are both valid hex digits and the two suffix letters, so a
// trailing B/C is consumed into the digit run only when one more hex
// digit (or H) follows it; otherwise it is left unconsumed as a suffix
// candidate for the switch below.
func (l *Lexer) scanNumberSuffix(line, col int) token.Token {
	hasHexLetter := false
	hasNonOctalDigit := !isOctalDigit(l.reader.NextChar())
	l.reader.ConsumeChar() // first digit, already peeked by caller
runScan:
	for {
		c := l.reader.NextChar()
		switch {
		case c == 'B' || c == 'C':
			la2 := l.reader.La2Char()
			if !isHexDigit(la2) && la2 != 'H' {
				break runScan
			}
			hasHexLetter = true
			hasNonOctalDigit = true
			l.reader.ConsumeChar()
		case isHexLetter(c):
			hasHexLetter = true
			hasNonOctalDigit = true
			l.reader.ConsumeChar()
		case isDecimalDigit(c):
			if !isOctalDigit(c) {
				hasNonOctalDigit = true
			}
			l.reader.ConsumeChar()
		default:
			break runScan
		}
	}
	switch l.reader.NextChar() {
	case 'H':
		l.reader.ConsumeChar()
		lex := l.reader.ReadMarkedLexeme()
		return token.Token{Kind: token.INTEGER_LITERAL, Lexeme: lex, Line: line, Column: col}
	case 'B':
		if !l.opts.OctalLiterals {
			return l.scanDecimalTail(line, col)
		}
		l.reader.ConsumeChar()
		lex := l.reader.ReadMarkedLexeme()
		if hasNonOctalDigit {
			return token.Token{Kind: token.MALFORMED_INTEGER, Lexeme: lex, Line: line, Column: col}
		}
		return token.Token{Kind: token.INTEGER_LITERAL, Lexeme: lex, Line: line, Column: col}
	case 'C':
		if !l.opts.OctalLiterals {
			return l.scanDecimalTail(line, col)
		}
		l.reader.ConsumeChar()
		lex := l.reader.ReadMarkedLexeme()
		if hasNonOctalDigit {
			return token.Token{Kind: token.MALFORMED_INTEGER, Lexeme: lex, Line: line, Column: col}
		}
		return token.Token{Kind: token.CHAR_LITERAL, Lexeme: lex, Line: line, Column: col}
	default:
		if hasHexLetter {
			lex := l.reader.ReadMarkedLexeme()
			return token.Token{Kind: token.MALFORMED_INTEGER, Lexeme: lex, Line: line, Column: col}
		}
		return l.scanDecimalTail(line, col)
	}
}

// scanDecimalTail extends an already-consumed decimal digit run with an
// optional fractional part and exponent, per spec §4.3's fractional/
// exponent rule (a lone '.' must not be mistaken for the range operator).
func (l *Lexer) scanDecimalTail(line, col int) token.Token {
	isReal := false
	malformed := false
	if l.reader.NextChar() == '.' && l.reader.La2Char() != '.' {
		isReal = true
		l.reader.ConsumeChar()
		if l.consumeRun(isDecimalDigit) == 0 {
			malformed = true
		}
	}
	if c := l.reader.NextChar(); c == 'E' || c == 'e' {
		isReal = true
		l.reader.ConsumeChar()
		if c := l.reader.NextChar(); c == '+' || c == '-' {
			l.reader.ConsumeChar()
		}
		if l.consumeRun(isDecimalDigit) == 0 {
			malformed = true
		}
	}
	lex := l.reader.ReadMarkedLexeme()
	switch {
	case isReal && malformed:
		return token.Token{Kind: token.MALFORMED_REAL, Lexeme: lex, Line: line, Column: col}
	case isReal:
		return token.Token{Kind: token.REAL_LITERAL, Lexeme: lex, Line: line, Column: col}
	default:
		return token.Token{Kind: token.INTEGER_LITERAL, Lexeme: lex, Line: line, Column: col}
	}
}

func (l *Lexer) scanPragma(line, col int) token.Token {
	l.reader.MarkLexeme()
	for {
		c := l.reader.NextChar()
		if c == source.EOT {
			lex := l.reader.ReadMarkedLexeme()
			l.errorAtPos(diag.EOF_IN_PRAGMA, line, col)
			return token.Token{Kind: token.PRAGMA, Lexeme: lex, Line: line, Column: col}
		}
		if c == '*' && l.reader.La2Char() == '>' {
			lex := l.reader.ReadMarkedLexeme()
			l.reader.ConsumeChar()
			l.reader.ConsumeChar()
			return token.Token{Kind: token.PRAGMA, Lexeme: lex, Line: line, Column: col}
		}
		l.reader.ConsumeChar()
	}
}

func (l *Lexer) sym(k token.Kind, line, col int) token.Token {
	return token.Token{Kind: k, Line: line, Column: col}
}

// scanSymbol recognises one of the special symbols in spec §6, including
// the pragma opener and the dialect-gated synonyms. ok is false when c is
// not a recognised symbol start, leaving it to the caller to report
// INVALID_INPUT_CHAR.
func (l *Lexer) scanSymbol(line, col int) (token.Token, bool) {
	switch l.reader.NextChar() {
	case '+':
		l.reader.ConsumeChar()
		return l.sym(token.PLUS, line, col), true
	case '-':
		l.reader.ConsumeChar()
		return l.sym(token.MINUS, line, col), true
	case '=':
		l.reader.ConsumeChar()
		return l.sym(token.EQUAL, line, col), true
	case '#':
		l.reader.ConsumeChar()
		return l.sym(token.NOTEQUAL, line, col), true
	case '*':
		l.reader.ConsumeChar()
		return l.sym(token.ASTERISK, line, col), true
	case '/':
		l.reader.ConsumeChar()
		return l.sym(token.SOLIDUS, line, col), true
	case ',':
		l.reader.ConsumeChar()
		return l.sym(token.COMMA, line, col), true
	case ';':
		l.reader.ConsumeChar()
		return l.sym(token.SEMICOLON, line, col), true
	case '^':
		l.reader.ConsumeChar()
		return l.sym(token.CARET, line, col), true
	case '|':
		l.reader.ConsumeChar()
		return l.sym(token.BAR, line, col), true
	case '(':
		l.reader.ConsumeChar()
		return l.sym(token.LPAREN, line, col), true
	case ')':
		l.reader.ConsumeChar()
		return l.sym(token.RPAREN, line, col), true
	case '[':
		l.reader.ConsumeChar()
		return l.sym(token.LBRACKET, line, col), true
	case ']':
		l.reader.ConsumeChar()
		return l.sym(token.RBRACKET, line, col), true
	case '{':
		l.reader.ConsumeChar()
		return l.sym(token.LBRACE, line, col), true
	case '}':
		l.reader.ConsumeChar()
		return l.sym(token.RBRACE, line, col), true
	case ':':
		l.reader.ConsumeChar()
		if l.reader.NextChar() == '=' {
			l.reader.ConsumeChar()
			return l.sym(token.BECOMES, line, col), true
		}
		return l.sym(token.COLON, line, col), true
	case '.':
		l.reader.ConsumeChar()
		if l.reader.NextChar() == '.' {
			l.reader.ConsumeChar()
			return l.sym(token.RANGE, line, col), true
		}
		return l.sym(token.PERIOD, line, col), true
	case '<':
		l.reader.ConsumeChar()
		switch l.reader.NextChar() {
		case '=':
			l.reader.ConsumeChar()
			return l.sym(token.LESSEQUAL, line, col), true
		case '*':
			l.reader.ConsumeChar()
			return l.scanPragma(line, col), true
		case '>':
			if l.opts.Synonyms {
				l.reader.ConsumeChar()
				return l.sym(token.NOTEQUAL, line, col), true
			}
			// '<>' parses as '<' then '>' when synonyms are off.
			return l.sym(token.LESS, line, col), true
		default:
			return l.sym(token.LESS, line, col), true
		}
	case '>':
		l.reader.ConsumeChar()
		if l.reader.NextChar() == '=' {
			l.reader.ConsumeChar()
			return l.sym(token.GREATEREQUAL, line, col), true
		}
		return l.sym(token.GREATER, line, col), true
	case '&':
		if l.opts.Synonyms {
			l.reader.ConsumeChar()
			return l.sym(token.AND, line, col), true
		}
		return token.Token{}, false
	case '~':
		if l.opts.Synonyms {
			l.reader.ConsumeChar()
			return l.sym(token.NOT, line, col), true
		}
		return token.Token{}, false
	default:
		return token.Token{}, false
	}
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexLetter(c byte) bool { return c >= 'A' && c <= 'F' }

func isHexDigit(c byte) bool { return isDecimalDigit(c) || isHexLetter(c) }

func isAlnum(c byte) bool { return isLetter(c) || isDecimalDigit(c) }
