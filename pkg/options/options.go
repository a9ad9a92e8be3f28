// Package options implements the read-only dialect flag facade consumed
// by the lexer and parser (spec §4.9). Values are seeded from defaults,
// then optionally overlaid by a PIM3 or PIM4 preset (mutually exclusive),
// then overlaid by individual flag overrides from the CLI layer.
package options

// Options carries every dialect toggle named in spec §4.9. The lexer and
// parser depend only on the subset called out there (Synonyms through
// VariantRecords, plus the two debug flags); the rest exist purely to be
// read by future back-end stages and are carried here because the facade
// is specified as a single flat flag set.
type Options struct {
	Verbose               bool
	Synonyms              bool
	LineComments          bool
	PrefixLiterals        bool
	OctalLiterals         bool
	EscapeTabAndNewline   bool
	SubtypeCardinals      bool
	SafeStringTermination bool
	ErrantSemicolon       bool
	LowlineIdentifiers    bool
	ConstParameters       bool
	AdditionalTypes       bool
	UnifiedConversion     bool
	UnifiedCast           bool
	Coroutines            bool
	VariantRecords        bool
	LocalModules          bool
	LexerDebug            bool
	ParserDebug           bool
}

// Defaults returns the baseline PIM2-ish option set: the most
// conservative dialect, with no PIM3/PIM4 extensions enabled.
func Defaults() Options {
	return Options{
		LineComments:        true,
		PrefixLiterals:       false,
		OctalLiterals:        true,
		EscapeTabAndNewline:  false,
		ErrantSemicolon:      false,
		LowlineIdentifiers:   false,
		VariantRecords:       true,
		Synonyms:             false,
	}
}

// PIM3 returns Defaults overlaid with the PIM3 dialect preset.
func PIM3() Options {
	o := Defaults()
	o.PrefixLiterals = false
	o.OctalLiterals = true
	o.VariantRecords = true
	o.SubtypeCardinals = true
	return o
}

// PIM4 returns Defaults overlaid with the PIM4 dialect preset.
func PIM4() Options {
	o := Defaults()
	o.PrefixLiterals = true
	o.OctalLiterals = false
	o.VariantRecords = false
	o.ConstParameters = true
	o.AdditionalTypes = true
	o.UnifiedConversion = true
	o.UnifiedCast = true
	o.Coroutines = true
	o.LocalModules = true
	o.EscapeTabAndNewline = true
	o.LowlineIdentifiers = true
	o.Synonyms = true
	return o
}

// Override is a single named boolean flag override, as produced by the
// CLI's paired --flag/--no-flag parsing.
type Override struct {
	Name  string
	Value bool
}

// fieldSetters maps a flag name (as it appears on the command line,
// without the leading --) to a setter closure. Kept as a map, rather than
// a reflect-based struct walk, so a typo in a CLI flag name is a
// compile-time-checkable literal instead of a silently-ignored field.
var fieldSetters = map[string]func(*Options, bool){
	"verbose":                  func(o *Options, v bool) { o.Verbose = v },
	"synonyms":                 func(o *Options, v bool) { o.Synonyms = v },
	"line-comments":            func(o *Options, v bool) { o.LineComments = v },
	"prefix-literals":          func(o *Options, v bool) { o.PrefixLiterals = v },
	"octal-literals":           func(o *Options, v bool) { o.OctalLiterals = v },
	"escape-tab-and-newline":   func(o *Options, v bool) { o.EscapeTabAndNewline = v },
	"subtype-cardinals":        func(o *Options, v bool) { o.SubtypeCardinals = v },
	"safe-string-termination":  func(o *Options, v bool) { o.SafeStringTermination = v },
	"errant-semicolon":         func(o *Options, v bool) { o.ErrantSemicolon = v },
	"lowline-identifiers":      func(o *Options, v bool) { o.LowlineIdentifiers = v },
	"const-parameters":         func(o *Options, v bool) { o.ConstParameters = v },
	"additional-types":         func(o *Options, v bool) { o.AdditionalTypes = v },
	"unified-conversion":       func(o *Options, v bool) { o.UnifiedConversion = v },
	"unified-cast":             func(o *Options, v bool) { o.UnifiedCast = v },
	"coroutines":               func(o *Options, v bool) { o.Coroutines = v },
	"variant-records":          func(o *Options, v bool) { o.VariantRecords = v },
	"local-modules":            func(o *Options, v bool) { o.LocalModules = v },
	"lexer-debug":              func(o *Options, v bool) { o.LexerDebug = v },
	"parser-debug":             func(o *Options, v bool) { o.ParserDebug = v },
}

// KnownFlag reports whether name is a recognised override flag.
func KnownFlag(name string) bool {
	_, ok := fieldSetters[name]
	return ok
}

// Apply overlays the given overrides onto o, in order, and returns the
// result. Unknown flag names are ignored; the CLI layer is expected to
// validate names against KnownFlag before calling Apply.
func (o Options) Apply(overrides ...Override) Options {
	for _, ov := range overrides {
		if set, ok := fieldSetters[ov.Name]; ok {
			set(&o, ov.Value)
		}
	}
	return o
}
