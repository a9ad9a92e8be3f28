// Package source implements the character-stream layer of the Modula-2
// front end: it opens a file, buffers its bytes, and exposes 1- and
// 2-character lookahead, single-character consume, line/column tracking,
// lexeme marking, and raw source-line retrieval. The lexer is the only
// consumer; everything above it (tokens, grammar) is unaware of bytes.
package source

import (
	"fmt"
	"os"
	"sort"

	"github.com/trijezdci/m2front/pkg/strpool"
)

// EOT is the sentinel byte returned once the cursor reaches end of input.
// It is never a legal content byte (the source format restricts ordinary
// text to 32-126, TAB and LF; see spec §6).
const EOT byte = 0

// Status reports the terminal condition of a Reader, if any.
type Status int

const (
	StatusOK Status = iota
	StatusAttemptToReadPastEOF
	StatusFileTooLarge
	StatusTooManyLines
	StatusOpenFailed
	StatusColumnOverflow
)

// Size limits from spec §4.2.
const (
	MaxFileBytes = 260000
	MaxLines     = 64000
	MaxColumn    = 32000
)

// Reader owns a single source file's buffer, cursor, and line table.
type Reader struct {
	pool     *strpool.Pool
	filename strpool.Handle

	data []byte // file contents, without the synthetic EOT sentinel
	pos  int    // index of the current lookahead byte into data

	line, col int

	lineStarts []int // lineStarts[i] = byte offset of the first char of line i+1

	markPos int
	status  Status
}

// Open reads path (capped at MaxFileBytes, MaxLines) and returns a Reader
// positioned at the first character, or a non-OK status on failure.
func Open(pool *strpool.Pool, path string) (*Reader, Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, StatusOpenFailed, fmt.Errorf("source: open %s: %w", path, err)
	}
	if len(data) > MaxFileBytes {
		return nil, StatusFileTooLarge, fmt.Errorf("source: %s exceeds %d byte cap", path, MaxFileBytes)
	}

	lineStarts := []int{0}
	for i, b := range data {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	if len(lineStarts) > MaxLines {
		return nil, StatusTooManyLines, fmt.Errorf("source: %s exceeds %d line cap", path, MaxLines)
	}

	filename, status := pool.Intern(path)
	if status != strpool.StatusOK {
		return nil, StatusOpenFailed, fmt.Errorf("source: interning filename failed")
	}

	r := &Reader{
		pool:       pool,
		filename:   filename,
		data:       data,
		line:       1,
		col:        1,
		lineStarts: lineStarts,
	}
	return r, StatusOK, nil
}

// Filename returns the interned handle to the path this reader was opened
// with.
func (r *Reader) Filename() strpool.Handle { return r.filename }

// Line returns the 1-based line number of the current lookahead character.
func (r *Reader) Line() int { return r.line }

// Column returns the 1-based column number of the current lookahead
// character.
func (r *Reader) Column() int { return r.col }

// Status returns the most recent terminal condition encountered, if any.
func (r *Reader) Status() Status { return r.status }

// NextChar peeks the current lookahead character without consuming it.
func (r *Reader) NextChar() byte {
	if r.pos >= len(r.data) {
		return EOT
	}
	return r.data[r.pos]
}

// La2Char peeks one character beyond the current lookahead.
func (r *Reader) La2Char() byte {
	if r.pos+1 >= len(r.data) {
		return EOT
	}
	return r.data[r.pos+1]
}

// ConsumeChar advances the cursor past the current lookahead character and
// returns the new lookahead. Reading past end-of-file sets Status to
// StatusAttemptToReadPastEOF and keeps returning EOT.
func (r *Reader) ConsumeChar() byte {
	if r.pos >= len(r.data) {
		r.status = StatusAttemptToReadPastEOF
		return EOT
	}
	c := r.data[r.pos]
	r.pos++
	switch c {
	case '\n':
		r.line++
		r.col = 1
	default:
		// TAB and all other bytes advance the column by one; TAB is
		// never expanded (spec §4.2).
		r.col++
	}
	if r.col > MaxColumn {
		r.status = StatusColumnOverflow
	}
	return r.NextChar()
}

// MarkLexeme remembers the current cursor position as the start of a
// lexeme under construction.
func (r *Reader) MarkLexeme() {
	r.markPos = r.pos
}

// ReadMarkedLexeme interns and returns the slice [mark, cursor) as
// recorded by the most recent MarkLexeme call.
func (r *Reader) ReadMarkedLexeme() strpool.Handle {
	if r.markPos > r.pos {
		r.markPos = r.pos
	}
	h, _ := r.pool.InternSlice(r.data[r.markPos:r.pos])
	return h
}

// SourceForLine interns and returns the raw text of 1-based line n,
// without its terminating line feed. Returns a null handle if n is out
// of range.
func (r *Reader) SourceForLine(n int) strpool.Handle {
	if n < 1 || n > len(r.lineStarts) {
		return strpool.Handle{}
	}
	start := r.lineStarts[n-1]
	end := len(r.data)
	if n < len(r.lineStarts) {
		end = r.lineStarts[n] - 1 // drop the trailing \n
	}
	if end > len(r.data) {
		end = len(r.data)
	}
	if end < start {
		end = start
	}
	h, _ := r.pool.InternSlice(r.data[start:end])
	return h
}

// lineForOffset returns the 1-based line number containing byte offset
// off, via binary search over lineStarts (grounded on token.File.Position
// in db47h-lex).
func (r *Reader) lineForOffset(off int) int {
	return sort.Search(len(r.lineStarts), func(i int) bool {
		return r.lineStarts[i] > off
	})
}
