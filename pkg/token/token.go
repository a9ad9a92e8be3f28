package token

import "github.com/trijezdci/m2front/pkg/strpool"

// Token is a lexeme together with its recognised kind and position.
// Lexeme is the null handle for punctuation and reserved words, whose
// text is canonical and never needs to be carried (spec §3).
type Token struct {
	Kind   Kind
	Lexeme strpool.Handle
	Line   int
	Column int
}

// Text returns t's lexeme text, falling back to the canonical symbol
// spelling for kinds that carry no lexeme.
func (t Token) Text() string {
	if !t.Lexeme.Null() {
		return t.Lexeme.String()
	}
	return t.Kind.String()
}
