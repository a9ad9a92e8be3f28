// Package driver wires the source reader, lexer, parser, and AST writer
// into the single compilation pipeline spec §2 describes: the only seam
// the CLI (cmd/m2front) and any future back-end stage go through. Nothing
// here parses flags or touches os.Exit; that belongs to the CLI layer.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/astwriter"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/lexer"
	"github.com/trijezdci/m2front/pkg/options"
	"github.com/trijezdci/m2front/pkg/parser"
	"github.com/trijezdci/m2front/pkg/source"
	"github.com/trijezdci/m2front/pkg/strpool"
)

// bucketCount sizes the string pool. Sources are capped at
// source.MaxFileBytes, so a few thousand buckets comfortably covers the
// identifier/lexeme population of one compilation unit.
const bucketCount = 4096

// Status reports the outcome of a Compile call. cmd/m2front maps these
// onto spec §6's CLI exit codes (1 is reserved for option failures, which
// are detected before Compile is ever called).
type Status int

const (
	StatusOK Status = iota
	StatusFileIOFailure
	StatusParseErrors
	StatusInternalError
)

// Config bundles one compilation's inputs. Output and Diagnostics default
// to os.Stdout/os.Stderr when left nil, so callers that only care about
// the Result (tests, a future embedding) can omit them.
type Config struct {
	SourcePath  string
	Kind        parser.SourceKind
	Opts        options.Options
	Output      io.Writer
	Diagnostics io.Writer
}

// Result reports what Compile produced.
type Result struct {
	Root         *ast.Node
	ErrorCount   int
	WarningCount int
	BytesWritten int
}

var sourceStatusText = map[source.Status]string{
	source.StatusFileTooLarge:   "source file exceeds the maximum size",
	source.StatusTooManyLines:   "source file exceeds the maximum line count",
	source.StatusOpenFailed:     "could not open source file",
	source.StatusColumnOverflow: "a source line exceeds the maximum column count",
}

// Compile runs cfg.SourcePath through source -> lexer -> parser ->
// astwriter and reports a Result alongside a Status. A non-OK Status
// beyond StatusParseErrors means the AST in Result, if any, should not be
// trusted as complete.
func Compile(cfg Config) (Result, Status) {
	diagOut := cfg.Diagnostics
	if diagOut == nil {
		diagOut = os.Stderr
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	pool, poolStatus := strpool.Init(bucketCount)
	if poolStatus != strpool.StatusOK {
		fmt.Fprintln(diagOut, "internal error: failed to initialise string pool")
		return Result{}, StatusInternalError
	}

	r, srcStatus, err := source.Open(pool, cfg.SourcePath)
	if err != nil {
		fmt.Fprintf(diagOut, "%s: %v\n", cfg.SourcePath, err)
		return Result{}, StatusFileIOFailure
	}
	if srcStatus != source.StatusOK {
		msg, ok := sourceStatusText[srcStatus]
		if !ok {
			msg = "source read failed"
		}
		fmt.Fprintf(diagOut, "%s: %s\n", cfg.SourcePath, msg)
		return Result{}, StatusFileIOFailure
	}

	sink := diag.NewSink(diagOut, cfg.Opts.Verbose, diag.SourceLineFunc(func(n int) string {
		return r.SourceForLine(n).String()
	}))

	lex := lexer.New(r, pool, cfg.Opts, sink)
	p := parser.New(lex, pool, cfg.Opts, sink)
	filename, _ := pool.Intern(filepath.Base(cfg.SourcePath))
	root := p.Parse(cfg.Kind, filename)

	// A column overflow discovered mid-scan (spec §4.2's hard fatal) can
	// only be observed here, after parsing has run to its forced end; the
	// pre-parse srcStatus check above never sees it, since no character
	// has been consumed yet at that point.
	if r.Status() == source.StatusColumnOverflow {
		fmt.Fprintf(diagOut, "%s: %s\n", cfg.SourcePath, sourceStatusText[source.StatusColumnOverflow])
		return Result{Root: root, ErrorCount: sink.ErrorCount, WarningCount: sink.WarningCount}, StatusFileIOFailure
	}

	if cfg.Opts.LexerDebug {
		fmt.Fprintf(diagOut, "lexer-debug: reached line %d, column %d of %s\n", r.Line(), r.Column(), cfg.SourcePath)
	}
	if cfg.Opts.ParserDebug {
		fmt.Fprintf(diagOut, "parser-debug: root has %d top-level child(ren), %d error(s), %d warning(s)\n",
			root.SubnodeCount(), sink.ErrorCount, sink.WarningCount)
	}

	n, werr := astwriter.Write(out, root)
	result := Result{Root: root, ErrorCount: sink.ErrorCount, WarningCount: sink.WarningCount, BytesWritten: n}
	if werr != nil {
		fmt.Fprintf(diagOut, "write failed: %v\n", werr)
		return result, StatusInternalError
	}
	if sink.ErrorCount > 0 {
		return result, StatusParseErrors
	}
	return result, StatusOK
}
