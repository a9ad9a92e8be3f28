// Package astwriter serialises an AST to its canonical S-expression form
// (spec §4.7): one expression per tree, terminated by exactly one LF, with
// terminal rendering rules that make the written form unambiguous
// regardless of which literal dialect produced it.
package astwriter

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/trijezdci/m2front/pkg/ast"
)

// Status reports the outcome of a Write or WriteFile call.
type Status int

const (
	StatusOK Status = iota
	StatusInvalidFile
	StatusOpenFailed
	StatusWriteFailed
)

// Write renders root as a single S-expression to w, followed by one LF, and
// returns the number of bytes written.
func Write(w io.Writer, root *ast.Node) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	nn, err := writeNode(bw, root)
	n += nn
	if err != nil {
		return n, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return n, err
	}
	n++
	if err := bw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteFile opens path for writing (truncating any existing content),
// serialises root to it, and reports a Status alongside the byte count
// (spec §4.7's "number of characters written is passed back").
func WriteFile(path string, root *ast.Node) (int, Status) {
	if root == nil {
		return 0, StatusInvalidFile
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, StatusOpenFailed
	}
	defer f.Close()
	n, err := Write(f, root)
	if err != nil {
		return n, StatusWriteFailed
	}
	return n, StatusOK
}

// writeNode renders one node and, recursively, its payload, returning the
// number of bytes it wrote to w.
func writeNode(w *bufio.Writer, n *ast.Node) (int, error) {
	total := 0
	if err := w.WriteByte('('); err != nil {
		return total, err
	}
	total++
	name := n.Tag().String()
	if _, err := w.WriteString(name); err != nil {
		return total, err
	}
	total += len(name)

	switch {
	case n.Tag() == ast.EMPTY:
		// no payload
	case n.SubnodeCount() > 0 || isBranchTag(n.Tag()):
		for i := 0; i < n.SubnodeCount(); i++ {
			if err := w.WriteByte(' '); err != nil {
				return total, err
			}
			total++
			nn, err := writeNode(w, n.SubnodeForIndex(i))
			total += nn
			if err != nil {
				return total, err
			}
		}
	default:
		for i := 0; i < n.ValueCount(); i++ {
			if err := w.WriteByte(' '); err != nil {
				return total, err
			}
			total++
			rendered := renderValue(n.Tag(), n.ValueForIndex(i).String())
			if _, err := w.WriteString(rendered); err != nil {
				return total, err
			}
			total += len(rendered)
		}
	}

	if err := w.WriteByte(')'); err != nil {
		return total, err
	}
	total++
	return total, nil
}

// isBranchTag reports whether tag is ever constructed via NewBranch/NewList
// (as opposed to a terminal or terminal-list leaf), so an empty branch node
// (e.g. an empty IMPLIST or FPARAMLIST) still renders as "(TAG)" rather
// than falling into the value-rendering path.
func isBranchTag(tag ast.Tag) bool {
	switch tag {
	case ast.IDENT, ast.INTVAL, ast.REALVAL, ast.CHRVAL, ast.QUOTEDVAL,
		ast.FILENAME, ast.IDENTLIST, ast.OPTIONS, ast.QUALIDENT, ast.EMPTY:
		return false
	default:
		return true
	}
}

// renderValue applies spec §4.7's terminal-rendering table to one lexeme,
// given the tag of the node (or, for IDENTLIST/QUALIDENT/OPTIONS items, the
// tag of the list itself) that carries it.
func renderValue(tag ast.Tag, lexeme string) string {
	switch tag {
	case ast.IDENT, ast.REALVAL, ast.IDENTLIST, ast.QUALIDENT:
		return lexeme
	case ast.INTVAL:
		return renderIntOrChar(lexeme, 'x', 'H', 'B')
	case ast.CHRVAL:
		return renderIntOrChar(lexeme, 'u', 'C', 0)
	case ast.QUOTEDVAL, ast.FILENAME, ast.OPTIONS:
		return quote(lexeme)
	default:
		return lexeme
	}
}

// renderIntOrChar applies the numeral-marker rule shared by INTVAL and
// CHRVAL: a prefix-mode lexeme (second byte is prefixChar) is marked '#';
// a suffix-mode lexeme ending in hiSuffix or loSuffix is marked '?';
// otherwise the lexeme passes through unmarked. loSuffix of 0 means "no
// second suffix letter applies" (CHRVAL's suffix form is 'C' only).
func renderIntOrChar(lexeme string, prefixChar, hiSuffix, loSuffix byte) string {
	if len(lexeme) >= 2 && lexeme[1] == prefixChar {
		return "#" + lexeme
	}
	last := lexeme[len(lexeme)-1]
	if last == hiSuffix || (loSuffix != 0 && last == loSuffix) {
		return "?" + lexeme
	}
	return lexeme
}

// quote wraps s in double quotes, or single quotes if s already contains a
// double quote (spec §4.7).
func quote(s string) string {
	if strings.ContainsRune(s, '"') {
		return "'" + s + "'"
	}
	return "\"" + s + "\""
}
