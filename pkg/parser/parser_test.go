package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"
	"github.com/trijezdci/m2front/pkg/ast"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/lexer"
	"github.com/trijezdci/m2front/pkg/options"
	"github.com/trijezdci/m2front/pkg/source"
	"github.com/trijezdci/m2front/pkg/strpool"
	"github.com/trijezdci/m2front/pkg/token"
)

// testParser bundles the collaborators a Parser needs, mirroring
// pkg/lexer's newLexer helper.
type testParser struct {
	p    *Parser
	sink *diag.Sink
	buf  *bytes.Buffer
	pool *strpool.Pool
}

func newParser(t *testing.T, content string, opts options.Options) *testParser {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.mod")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	pool, status := strpool.Init(64)
	if status != strpool.StatusOK {
		t.Fatalf("strpool.Init: status %v", status)
	}
	r, srcStatus, err := source.Open(pool, path)
	if err != nil {
		t.Fatalf("source.Open: %v", err)
	}
	if srcStatus != source.StatusOK {
		t.Fatalf("source.Open: status %v", srcStatus)
	}
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, false, diag.SourceLineFunc(func(n int) string { return r.SourceForLine(n).String() }))
	lex := lexer.New(r, pool, opts, sink)
	return &testParser{p: New(lex, pool, opts, sink), sink: sink, buf: &buf, pool: pool}
}

// sexpr renders n the way pkg/astwriter will, closely enough for
// assertions here: raw lexeme for IDENT/REALVAL/IDENTLIST/QUALIDENT
// items, quoted for QUOTEDVAL/FILENAME/OPTIONS items, recursing into
// children otherwise.
func sexpr(n *ast.Node) string {
	var b strings.Builder
	writeSexpr(&b, n)
	return b.String()
}

func writeSexpr(b *strings.Builder, n *ast.Node) {
	b.WriteByte('(')
	b.WriteString(n.Tag().String())
	switch n.Tag() {
	case ast.EMPTY:
		// no payload
	case ast.IDENT, ast.REALVAL, ast.INTVAL, ast.CHRVAL:
		b.WriteByte(' ')
		b.WriteString(n.ValueForIndex(0).String())
	case ast.QUOTEDVAL, ast.FILENAME:
		b.WriteByte(' ')
		b.WriteString(quoteValue(n.ValueForIndex(0).String()))
	case ast.IDENTLIST, ast.OPTIONS, ast.QUALIDENT:
		for i := 0; i < n.ValueCount(); i++ {
			b.WriteByte(' ')
			if n.Tag() == ast.OPTIONS {
				b.WriteString(quoteValue(n.ValueForIndex(i).String()))
			} else {
				b.WriteString(n.ValueForIndex(i).String())
			}
		}
	default:
		for i := 0; i < n.SubnodeCount(); i++ {
			b.WriteByte(' ')
			writeSexpr(b, n.SubnodeForIndex(i))
		}
	}
	b.WriteByte(')')
}

func quoteValue(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

func zeroOptions() options.Options { return options.Options{} }

func TestScenario1DefinitionModuleEmpty(t *testing.T) {
	src := "DEFINITION MODULE Empty;\nEND Empty.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("Empty.def")
	root := tp.p.Parse(DefinitionSource, name)

	want := `(ROOT (FILENAME "Empty.def") (OPTIONS) (DEFMOD (IDENT Empty) (IMPLIST) (DEFLIST)))`
	if got := sexpr(root); got != want {
		t.Errorf("sexpr mismatch:\n%s", pretty.Compare(want, got))
	}
	if tp.sink.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0 (diagnostics: %s)", tp.sink.ErrorCount, tp.buf.String())
	}
	if tp.sink.WarningCount != 0 {
		t.Errorf("WarningCount = %d, want 0 (diagnostics: %s)", tp.sink.WarningCount, tp.buf.String())
	}
}

func TestScenario2HelloProgram(t *testing.T) {
	src := "MODULE Hello;\n" +
		"  FROM IO IMPORT Put;\n" +
		"BEGIN\n" +
		"  Put(\"hi\");\n" +
		"END Hello.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("Hello.mod")
	root := tp.p.Parse(AnySource, name)

	want := `(ROOT (FILENAME "Hello.mod") (OPTIONS) ` +
		`(PROGMOD (IDENT Hello) (EMPTY) (IMPLIST (UNQIMP (IDENT IO) (IDENTLIST Put))) ` +
		`(BLOCK (EMPTY) (STMTSEQ (PCALL (IDENT Put) (ARGS (QUOTEDVAL "hi")))))))`
	if got := sexpr(root); got != want {
		t.Errorf("sexpr mismatch:\n%s", pretty.Compare(want, got))
	}
	// The ';' after Put("hi") directly before END is an errant semicolon,
	// reported as an error because errant_semicolon is off here.
	if tp.sink.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1 (diagnostics: %s)", tp.sink.ErrorCount, tp.buf.String())
	}
}

// TestQualidentShapeMatchesIdentlist asserts the bugfix this test guards:
// a multi-segment qualident is a terminal list of raw lexemes, the same
// shape as IDENTLIST (spec §4.7), not a branch of IDENT children.
func TestQualidentShapeMatchesIdentlist(t *testing.T) {
	tp := newParser(t, "Mod.Type", zeroOptions())
	result := tp.p.qualident(token.NewSet())
	if result.Tag() != ast.QUALIDENT {
		t.Fatalf("tag = %s, want QUALIDENT", result.Tag())
	}
	if result.SubnodeCount() != 0 {
		t.Fatalf("QUALIDENT should carry no subnodes, got %d", result.SubnodeCount())
	}
	got := make([]string, result.ValueCount())
	for i := range got {
		got[i] = result.ValueForIndex(i).String()
	}
	want := []string{"Mod", "Type"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("qualident segments mismatch (-want +got):\n%s", diff)
	}
}

// TestQualidentSingleSegmentStaysPlainIdent confirms the unqualified case
// is not charged the terminal-list shape (types.go's qualident comment).
func TestQualidentSingleSegmentStaysPlainIdent(t *testing.T) {
	tp := newParser(t, "Plain", zeroOptions())
	result := tp.p.qualident(token.NewSet())
	if result.Tag() != ast.IDENT {
		t.Fatalf("tag = %s, want IDENT", result.Tag())
	}
}

func TestScenario3ConstDefReal(t *testing.T) {
	src := "DEFINITION MODULE M;\n  CONST pi = 3.14159;\nEND M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)

	defmod := root.SubnodeForIndex(2)
	if defmod.Tag() != ast.DEFMOD {
		t.Fatalf("root body tag = %s, want DEFMOD", defmod.Tag())
	}
	deflist := defmod.SubnodeForIndex(2)
	if deflist.Tag() != ast.DEFLIST || deflist.SubnodeCount() != 1 {
		t.Fatalf("DEFLIST = %s, want one CONSTDEF child", sexpr(deflist))
	}
	want := `(CONSTDEF (IDENT pi) (REALVAL 3.14159))`
	if got := sexpr(deflist.SubnodeForIndex(0)); got != want {
		t.Errorf("sexpr mismatch:\n got:  %s\n want: %s", got, want)
	}
}

func TestScenario4MalformedIntegerMissingSuffix(t *testing.T) {
	opts := zeroOptions()
	opts.OctalLiterals = false
	src := "MODULE M;\nCONST x = 0FFH;\nBEGIN\nEND M.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("M.mod")
	tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Errorf("0FFH: ErrorCount = %d, want 0 (well-formed hex literal regardless of octal_literals, see DESIGN.md's scenario-4 decision; diagnostics: %s)", tp.sink.ErrorCount, tp.buf.String())
	}

	// Exercise the genuine failure mode instead: a hex-letter run with no
	// terminating H/B/C.
	src2 := "MODULE M;\nCONST x = 0FF;\nBEGIN\nEND M.\n"
	tp2 := newParser(t, src2, opts)
	name2, _ := tp2.pool.Intern("M.mod")
	tp2.p.Parse(AnySource, name2)
	if tp2.sink.ErrorCount == 0 {
		t.Fatalf("expected a MISSING_SUFFIX diagnostic for 0FF, got none (output: %s)", tp2.buf.String())
	}
	if !strings.Contains(tp2.buf.String(), diag.MISSING_SUFFIX.String()) {
		t.Errorf("expected MISSING_SUFFIX in diagnostics, got: %s", tp2.buf.String())
	}
}

func TestScenario5ErrantSemicolonWarningOnly(t *testing.T) {
	opts := zeroOptions()
	opts.ErrantSemicolon = true
	src := "MODULE M;\nBEGIN\n  RETURN;\nEND M.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("M.mod")
	tp.p.Parse(AnySource, name)

	if tp.sink.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0 (diagnostics: %s)", tp.sink.ErrorCount, tp.buf.String())
	}
	if tp.sink.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1 (diagnostics: %s)", tp.sink.WarningCount, tp.buf.String())
	}
	if !strings.Contains(tp.buf.String(), diag.SEMICOLON_AFTER_STMT_SEQ.String()) {
		t.Errorf("expected SEMICOLON_AFTER_STMT_SEQ in diagnostics, got: %s", tp.buf.String())
	}
}

func TestScenario5ErrantSemicolonOffIsError(t *testing.T) {
	opts := zeroOptions()
	opts.ErrantSemicolon = false
	src := "MODULE M;\nBEGIN\n  RETURN;\nEND M.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("M.mod")
	tp.p.Parse(AnySource, name)

	if tp.sink.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1 (diagnostics: %s)", tp.sink.ErrorCount, tp.buf.String())
	}
}

func TestScenario6DuplicateIdentInIdentList(t *testing.T) {
	src := "DEFINITION MODULE M;\n  VAR a, b, a: INTEGER;\nEND M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)

	if tp.sink.WarningCount != 1 {
		t.Fatalf("WarningCount = %d, want 1 (diagnostics: %s)", tp.sink.WarningCount, tp.buf.String())
	}
	if !strings.Contains(tp.buf.String(), diag.DUPLICATE_IDENT_IN_IDENT_LIST.String()) {
		t.Errorf("expected DUPLICATE_IDENT_IN_IDENT_LIST, got: %s", tp.buf.String())
	}

	defmod := root.SubnodeForIndex(2)
	deflist := defmod.SubnodeForIndex(2)
	vardecl := deflist.SubnodeForIndex(0)
	if vardecl.Tag() != ast.VARDECL {
		t.Fatalf("deflist child tag = %s, want VARDECL", vardecl.Tag())
	}
	ids := vardecl.SubnodeForIndex(0)
	if ids.Tag() != ast.IDENTLIST || ids.ValueCount() != 2 {
		t.Fatalf("IDENTLIST = %s, want exactly 2 values (a, b)", sexpr(ids))
	}
	if ids.ValueForIndex(0).String() != "a" || ids.ValueForIndex(1).String() != "b" {
		t.Errorf("IDENTLIST values = %q, %q, want a, b", ids.ValueForIndex(0).String(), ids.ValueForIndex(1).String())
	}
}

func TestPlainModuleProducesProgmodNotImpmod(t *testing.T) {
	// DESIGN.md's "IMPMOD vs PROGMOD" decision: a plain MODULE source
	// always yields PROGMOD, never IMPMOD, regardless of spec.md §8
	// scenario 2's worked-example label.
	tp := newParser(t, "MODULE M;\nBEGIN\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	body := root.SubnodeForIndex(2)
	if body.Tag() != ast.PROGMOD {
		t.Errorf("tag = %s, want PROGMOD", body.Tag())
	}
}

func TestImplementationModuleProducesImpmod(t *testing.T) {
	tp := newParser(t, "IMPLEMENTATION MODULE M;\nBEGIN\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	body := root.SubnodeForIndex(2)
	if body.Tag() != ast.IMPMOD {
		t.Errorf("tag = %s, want IMPMOD", body.Tag())
	}
	if body.SubnodeCount() != 4 {
		t.Fatalf("IMPMOD has %d children, want 4", body.SubnodeCount())
	}
	if body.SubnodeForIndex(1).Tag() != ast.EMPTY {
		t.Errorf("IMPMOD priority slot = %s, want EMPTY (no priority clause)", body.SubnodeForIndex(1).Tag())
	}
}

func TestEmptyDeclarationPartCollapsesToEmpty(t *testing.T) {
	tp := newParser(t, "MODULE M;\nBEGIN\n  RETURN\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	if block.Tag() != ast.BLOCK {
		t.Fatalf("tag = %s, want BLOCK", block.Tag())
	}
	if block.SubnodeForIndex(0).Tag() != ast.EMPTY {
		t.Errorf("block decls = %s, want EMPTY", sexpr(block.SubnodeForIndex(0)))
	}
}

func TestDesignatorAsExpressionFactorWrapsInDesig(t *testing.T) {
	tp := newParser(t, "MODULE M;\nVAR a, b: INTEGER;\nBEGIN\n  a := b;\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	stmtseq := block.SubnodeForIndex(1)
	assign := stmtseq.SubnodeForIndex(0)
	if assign.Tag() != ast.ASSIGN {
		t.Fatalf("tag = %s, want ASSIGN", assign.Tag())
	}
	target := assign.SubnodeForIndex(0)
	if target.Tag() != ast.IDENT {
		t.Errorf("ASSIGN target tag = %s, want bare IDENT", target.Tag())
	}
	expr := assign.SubnodeForIndex(1)
	if expr.Tag() != ast.DESIG {
		t.Errorf("ASSIGN expr tag = %s, want DESIG", expr.Tag())
	}
	if expr.SubnodeForIndex(0).Tag() != ast.IDENT {
		t.Errorf("DESIG chain tag = %s, want IDENT", expr.SubnodeForIndex(0).Tag())
	}
}

func TestDesignatorCallWrapsInFCallAsFactor(t *testing.T) {
	tp := newParser(t, "MODULE M;\nVAR a: INTEGER;\nBEGIN\n  a := f(1);\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	assign := block.SubnodeForIndex(1).SubnodeForIndex(0)
	expr := assign.SubnodeForIndex(1)
	if expr.Tag() != ast.FCALL {
		t.Errorf("tag = %s, want FCALL", expr.Tag())
	}
}

func TestFormalParametersByValueAndByReference(t *testing.T) {
	src := "DEFINITION MODULE M;\n" +
		"  PROCEDURE P(x: INTEGER; VAR y: ARRAY OF CHAR): BOOLEAN;\n" +
		"END M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	deflist := root.SubnodeForIndex(2).SubnodeForIndex(2)
	procdef := deflist.SubnodeForIndex(0)
	if procdef.Tag() != ast.PROCDEF {
		t.Fatalf("tag = %s, want PROCDEF", procdef.Tag())
	}
	if procdef.SubnodeForIndex(2).Tag() != ast.EMPTY {
		t.Errorf("heading-only PROCDEF body = %s, want EMPTY", procdef.SubnodeForIndex(2).Tag())
	}
	fparams := procdef.SubnodeForIndex(1)
	if fparams.Tag() != ast.FPARAMS {
		t.Fatalf("tag = %s, want FPARAMS", fparams.Tag())
	}
	result := fparams.SubnodeForIndex(1)
	if result.Tag() != ast.IDENT || result.ValueForIndex(0).String() != "BOOLEAN" {
		t.Errorf("result type = %s, want IDENT BOOLEAN", sexpr(result))
	}
	list := fparams.SubnodeForIndex(0)
	if list.Tag() != ast.FPARAMLIST || list.SubnodeCount() != 2 {
		t.Fatalf("FPARAMLIST = %s, want 2 sections", sexpr(list))
	}
	byValue := list.SubnodeForIndex(0)
	if byValue.SubnodeForIndex(0).Tag() != ast.EMPTY {
		t.Errorf("by-value param marker = %s, want EMPTY", byValue.SubnodeForIndex(0).Tag())
	}
	byRef := list.SubnodeForIndex(1)
	marker := byRef.SubnodeForIndex(0)
	if marker.Tag() != ast.IDENT || marker.ValueForIndex(0).String() != "VAR" {
		t.Errorf("by-reference param marker = %s, want IDENT VAR", sexpr(marker))
	}
	openArray := byRef.SubnodeForIndex(2)
	if openArray.Tag() != ast.ARRAY {
		t.Errorf("formal type = %s, want ARRAY", sexpr(openArray))
	}
}

func TestVariantRecordDialect(t *testing.T) {
	opts := zeroOptions()
	opts.VariantRecords = true
	src := "DEFINITION MODULE M;\n" +
		"  TYPE R = RECORD\n" +
		"    CASE tag: BOOLEAN OF\n" +
		"      TRUE: x: INTEGER |\n" +
		"      FALSE: y: REAL\n" +
		"    END\n" +
		"  END;\n" +
		"END M.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	typedef := root.SubnodeForIndex(2).SubnodeForIndex(2).SubnodeForIndex(0)
	record := typedef.SubnodeForIndex(1)
	if record.Tag() != ast.VRNTREC {
		t.Errorf("tag = %s, want VRNTREC", record.Tag())
	}
	// The record's FIELDLISTSEQ holds the CASE ... END field directly as
	// VFLIST(caseId,typeId,variantList,fls) per spec §4.5's table, not a
	// FIELDLIST wrapping an inner VFLIST.
	vflist := record.SubnodeForIndex(0).SubnodeForIndex(0)
	if vflist.Tag() != ast.VFLIST || vflist.SubnodeCount() != 4 {
		t.Fatalf("CASE field = %s, want VFLIST with 4 children", sexpr(vflist))
	}
	if vflist.SubnodeForIndex(0).Tag() != ast.IDENT || vflist.SubnodeForIndex(0).ValueForIndex(0).String() != "tag" {
		t.Errorf("VFLIST caseId = %s, want IDENT tag", sexpr(vflist.SubnodeForIndex(0)))
	}
	if vflist.SubnodeForIndex(1).Tag() != ast.IDENT || vflist.SubnodeForIndex(1).ValueForIndex(0).String() != "BOOLEAN" {
		t.Errorf("VFLIST typeId = %s, want IDENT BOOLEAN", sexpr(vflist.SubnodeForIndex(1)))
	}
	variantList := vflist.SubnodeForIndex(2)
	if variantList.Tag() != ast.VARIANTLIST || variantList.SubnodeCount() != 2 {
		t.Fatalf("VFLIST variantList = %s, want VARIANTLIST with 2 variants", sexpr(variantList))
	}
	if variantList.SubnodeForIndex(0).Tag() != ast.VARIANT {
		t.Errorf("variantList[0] tag = %s, want VARIANT", variantList.SubnodeForIndex(0).Tag())
	}
	if vflist.SubnodeForIndex(3).Tag() != ast.EMPTY {
		t.Errorf("VFLIST fls = %s, want EMPTY (no ELSE clause)", vflist.SubnodeForIndex(3).Tag())
	}
}

func TestExtensibleRecordDialect(t *testing.T) {
	opts := zeroOptions()
	opts.VariantRecords = false
	src := "DEFINITION MODULE M;\n" +
		"  TYPE Base = RECORD x: INTEGER END;\n" +
		"  TYPE R = RECORD (Base) y: REAL END;\n" +
		"END M.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	deflist := root.SubnodeForIndex(2).SubnodeForIndex(2)
	plain := deflist.SubnodeForIndex(0).SubnodeForIndex(1)
	if plain.Tag() != ast.RECORD {
		t.Errorf("plain record tag = %s, want RECORD", plain.Tag())
	}
	extensible := deflist.SubnodeForIndex(1).SubnodeForIndex(1)
	if extensible.Tag() != ast.EXTREC {
		t.Errorf("extensible record tag = %s, want EXTREC", extensible.Tag())
	}
}

func TestSubrangeEnumSetPointerProcedureTypes(t *testing.T) {
	src := "DEFINITION MODULE M;\n" +
		"  TYPE Digit = [0..9];\n" +
		"  TYPE Color = (Red, Green, Blue);\n" +
		"  TYPE Digits = SET OF Digit;\n" +
		"  TYPE Link = POINTER TO Node;\n" +
		"  TYPE Handler = PROCEDURE(INTEGER): BOOLEAN;\n" +
		"END M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.def")
	root := tp.p.Parse(DefinitionSource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	deflist := root.SubnodeForIndex(2).SubnodeForIndex(2)
	tags := []ast.Tag{ast.SUBR, ast.ENUM, ast.SET, ast.POINTER, ast.PROCTYPE}
	for i, want := range tags {
		got := deflist.SubnodeForIndex(i).SubnodeForIndex(1).Tag()
		if got != want {
			t.Errorf("TYPEDEF[%d] type tag = %s, want %s", i, got, want)
		}
	}
}

func TestWithStatement(t *testing.T) {
	src := "MODULE M;\n  VAR p: Rec;\nBEGIN\n  WITH p DO\n    f\n  END\nEND M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	with := block.SubnodeForIndex(1).SubnodeForIndex(0)
	if with.Tag() != ast.WITH {
		t.Fatalf("tag = %s, want WITH", with.Tag())
	}
	if with.SubnodeForIndex(0).Tag() != ast.IDENT {
		t.Errorf("WITH target tag = %s, want bare IDENT", with.SubnodeForIndex(0).Tag())
	}
}

func TestCaseStatementWithElse(t *testing.T) {
	src := "MODULE M;\n" +
		"  VAR x: INTEGER;\n" +
		"BEGIN\n" +
		"  CASE x OF\n" +
		"    1: x := 1 |\n" +
		"    2, 3: x := 2\n" +
		"    ELSE x := 0\n" +
		"  END\n" +
		"END M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	sw := block.SubnodeForIndex(1).SubnodeForIndex(0)
	if sw.Tag() != ast.SWITCH {
		t.Fatalf("tag = %s, want SWITCH", sw.Tag())
	}
	caselist := sw.SubnodeForIndex(1)
	if caselist.Tag() != ast.CASELIST || caselist.SubnodeCount() != 2 {
		t.Fatalf("CASELIST = %s, want 2 alternatives", sexpr(caselist))
	}
	if sw.SubnodeForIndex(2).Tag() == ast.EMPTY {
		t.Errorf("expected non-empty ELSE part")
	}
}

func TestForStatementWithStep(t *testing.T) {
	src := "MODULE M;\n  VAR i: INTEGER;\nBEGIN\n  FOR i := 1 TO 10 BY 2 DO\n    i := i\n  END\nEND M.\n"
	tp := newParser(t, src, zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	forto := block.SubnodeForIndex(1).SubnodeForIndex(0)
	if forto.Tag() != ast.FORTO {
		t.Fatalf("tag = %s, want FORTO", forto.Tag())
	}
	if forto.SubnodeForIndex(3).Tag() == ast.EMPTY {
		t.Errorf("expected non-empty BY step")
	}
}

func TestOperatorPrecedenceChain(t *testing.T) {
	// a + b * c should fold as PLUS(a, ASTERISK(b, c)), i.e. multiplication
	// binds tighter than addition even though both are left-folded loops.
	tp := newParser(t, "MODULE M;\n  VAR a, b, c, r: INTEGER;\nBEGIN\n  r := a + b * c\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	assign := block.SubnodeForIndex(1).SubnodeForIndex(0)
	expr := assign.SubnodeForIndex(1)
	if expr.Tag() != ast.PLUS {
		t.Fatalf("tag = %s, want PLUS", expr.Tag())
	}
	right := expr.SubnodeForIndex(1)
	if right.Tag() != ast.ASTERISK {
		t.Errorf("right operand tag = %s, want ASTERISK", right.Tag())
	}
}

func TestSetValueWithRange(t *testing.T) {
	tp := newParser(t, "MODULE M;\n  VAR s: Digits;\nBEGIN\n  s := {1, 3..5}\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	assign := block.SubnodeForIndex(1).SubnodeForIndex(0)
	setval := assign.SubnodeForIndex(1)
	if setval.Tag() != ast.SETVAL || setval.SubnodeCount() != 2 {
		t.Fatalf("sexpr = %s, want SETVAL with 2 elements", sexpr(setval))
	}
	if setval.SubnodeForIndex(1).Tag() != ast.SUBR {
		t.Errorf("second set element tag = %s, want SUBR", setval.SubnodeForIndex(1).Tag())
	}
}

func TestSelectorChainIndexDerefField(t *testing.T) {
	tp := newParser(t, "MODULE M;\n  VAR p: Rec;\nBEGIN\n  p.a[1]^.b := 1\nEND M.\n", zeroOptions())
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	assign := block.SubnodeForIndex(1).SubnodeForIndex(0)
	target := assign.SubnodeForIndex(0)
	if target.Tag() != ast.SELECT {
		t.Fatalf("outermost target tag = %s, want SELECT", target.Tag())
	}
	deref := target.SubnodeForIndex(0)
	if deref.Tag() != ast.DEREF {
		t.Fatalf("tag = %s, want DEREF", deref.Tag())
	}
	index := deref.SubnodeForIndex(0)
	if index.Tag() != ast.INDEX {
		t.Fatalf("tag = %s, want INDEX", index.Tag())
	}
	// designator starts with a qualident, which takes the whole dotted
	// prefix p.a before any selector is folded on.
	if index.SubnodeForIndex(0).Tag() != ast.QUALIDENT {
		t.Errorf("innermost tag = %s, want QUALIDENT", index.SubnodeForIndex(0).Tag())
	}
}

func TestLocalModuleWhenOptionOn(t *testing.T) {
	opts := zeroOptions()
	opts.LocalModules = true
	src := "MODULE Outer;\n" +
		"  MODULE Inner;\n" +
		"    EXPORT Q;\n" +
		"  BEGIN\n" +
		"  END Inner;\n" +
		"BEGIN\n" +
		"END Outer.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("Outer.mod")
	root := tp.p.Parse(AnySource, name)
	if tp.sink.ErrorCount != 0 {
		t.Fatalf("ErrorCount = %d, diagnostics: %s", tp.sink.ErrorCount, tp.buf.String())
	}
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	decls := block.SubnodeForIndex(0)
	if decls.Tag() != ast.DECLSEQ || decls.SubnodeCount() != 1 {
		t.Fatalf("decls = %s, want one LOCALMOD child", sexpr(decls))
	}
	localmod := decls.SubnodeForIndex(0)
	if localmod.Tag() != ast.LOCALMOD {
		t.Fatalf("tag = %s, want LOCALMOD", localmod.Tag())
	}
}

func TestLocalModuleRejectedWhenOptionOff(t *testing.T) {
	opts := zeroOptions()
	opts.LocalModules = false
	src := "MODULE Outer;\n" +
		"  MODULE Inner;\n" +
		"  BEGIN\n" +
		"  END Inner;\n" +
		"BEGIN\n" +
		"END Outer.\n"
	tp := newParser(t, src, opts)
	name, _ := tp.pool.Intern("Outer.mod")
	root := tp.p.Parse(AnySource, name)
	block := root.SubnodeForIndex(2).SubnodeForIndex(3)
	if block.SubnodeForIndex(0).Tag() != ast.EMPTY {
		t.Errorf("decls = %s, want EMPTY (nested MODULE not a declaration start when local_modules is off)",
			sexpr(block.SubnodeForIndex(0)))
	}
	if tp.sink.ErrorCount == 0 {
		t.Errorf("expected a syntax error from the unconsumed nested MODULE, got none")
	}
}

func TestInvalidStartSymbol(t *testing.T) {
	tp := newParser(t, "BEGIN END.\n", zeroOptions())
	name, _ := tp.pool.Intern("bad.mod")
	tp.p.Parse(AnySource, name)
	if tp.p.Status() != StatusInvalidStartSymbol {
		t.Errorf("Status = %v, want StatusInvalidStartSymbol", tp.p.Status())
	}
	if !strings.Contains(tp.buf.String(), diag.INVALID_START_SYMBOL.String()) {
		t.Errorf("expected INVALID_START_SYMBOL in diagnostics, got: %s", tp.buf.String())
	}
}

func TestOptionsNodeReflectsEnabledFlags(t *testing.T) {
	opts := zeroOptions()
	opts.ErrantSemicolon = true
	opts.VariantRecords = true
	tp := newParser(t, "MODULE M;\nBEGIN\nEND M.\n", opts)
	name, _ := tp.pool.Intern("M.mod")
	root := tp.p.Parse(AnySource, name)
	got := sexpr(root.SubnodeForIndex(1))
	want := `(OPTIONS "errant-semicolon" "variant-records")`
	if got != want {
		t.Errorf("OPTIONS = %s, want %s", got, want)
	}
}
