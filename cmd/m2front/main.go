// Command m2front parses a Modula-2 source file and writes its AST as a
// single S-expression to standard output (spec §6).
//
// Usage: m2front [OPTIONS] FILE
package main

import (
	"fmt"
	"os"

	"github.com/pborman/getopt"
	"github.com/trijezdci/m2front/pkg/diag"
	"github.com/trijezdci/m2front/pkg/driver"
	"github.com/trijezdci/m2front/pkg/options"
	"github.com/trijezdci/m2front/pkg/parser"
)

const versionString = "m2front 0.1.0"

// toggleNames lists every dialect flag that gets a paired --flag/--no-flag
// override (spec §4.9, §6). verbose is excluded: it already has a
// dedicated -v short flag and is never part of a PIM preset overlay.
var toggleNames = []string{
	"synonyms", "line-comments", "prefix-literals", "octal-literals",
	"escape-tab-and-newline", "subtype-cardinals", "safe-string-termination",
	"errant-semicolon", "lowline-identifiers", "const-parameters",
	"additional-types", "unified-conversion", "unified-cast", "coroutines",
	"variant-records", "local-modules", "lexer-debug", "parser-debug",
}

var stop = os.Exit

func main() {
	var help, showVersion, verbose, pim3, pim4 bool
	getopt.BoolVarLong(&help, "help", 'h', "display help")
	getopt.BoolVarLong(&showVersion, "version", 'V', "display version")
	getopt.BoolVarLong(&verbose, "verbose", 'v', "echo source line and caret on each diagnostic")
	getopt.BoolVarLong(&pim3, "pim3", 0, "select the PIM3 dialect preset")
	getopt.BoolVarLong(&pim4, "pim4", 0, "select the PIM4 dialect preset")
	for _, name := range toggleNames {
		var discard bool
		getopt.BoolVarLong(&discard, name, 0, "enable "+name)
		getopt.BoolVarLong(&discard, "no-"+name, 0, "disable "+name)
	}
	getopt.SetParameters("FILE")

	var overrides []options.Override
	if err := getopt.Getopt(func(o getopt.Option) bool {
		name := o.Name()
		switch {
		case len(name) > 5 && name[:5] == "--no-":
			flag := name[5:]
			if options.KnownFlag(flag) {
				overrides = append(overrides, options.Override{Name: flag, Value: false})
			}
		case len(name) > 2 && name[:2] == "--":
			flag := name[2:]
			if options.KnownFlag(flag) && flag != "verbose" {
				overrides = append(overrides, options.Override{Name: flag, Value: true})
			}
		}
		return true
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintUsage(os.Stderr)
		stop(1)
		return
	}

	if help {
		getopt.CommandLine.PrintUsage(os.Stderr)
		stop(0)
		return
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, versionString)
		stop(0)
		return
	}

	if pim3 && pim4 {
		reportOptionConflict("--pim3 and --pim4 are mutually exclusive")
		return
	}
	if (pim3 || pim4) && len(overrides) > 0 {
		reportOptionConflict("--pim3/--pim4 may not be combined with individual dialect flags")
		return
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "m2front: exactly one FILE argument is required")
		getopt.PrintUsage(os.Stderr)
		stop(1)
		return
	}

	opts := options.Defaults()
	switch {
	case pim3:
		opts = options.PIM3()
	case pim4:
		opts = options.PIM4()
	}
	opts.Verbose = verbose
	opts = opts.Apply(overrides...)

	_, status := driver.Compile(driver.Config{
		SourcePath: args[0],
		Kind:       parser.AnySource,
		Opts:       opts,
	})

	switch status {
	case driver.StatusOK:
		stop(0)
	case driver.StatusFileIOFailure:
		stop(2)
	case driver.StatusParseErrors:
		stop(3)
	default:
		stop(4)
	}
}

// reportOptionConflict reports an option-level failure through the same
// diagnostic formatting the compiler core uses, then exits with status 1
// (spec §6's "1 option failure").
func reportOptionConflict(descr string) {
	sink := diag.NewSink(os.Stderr, false, nil)
	sink.EmitError(diag.CONFLICTING_DIALECT_PRESET, descr)
	stop(1)
}
