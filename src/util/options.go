package util

import (
	"path/filepath"
	"strings"
)

// Options defines the behaviour of one compiler invocation.
type Options struct {
	Src     string // Path to source file. Empty means standard input.
	Out     string // Path to output file. Empty means standard output.
	Module  string // Emitted module name override.
	Verbose bool   // Set true if the compiler should log stage statistics.
	DumpAST bool   // Set true if the compiler should print the syntax tree after analysis.
	Tokens  bool   // Set true if the compiler should output the token stream and exit.
}

// SourceName returns the name diagnostics prefix the source with.
func (o Options) SourceName() string {
	if len(o.Src) == 0 {
		return "<stdin>"
	}
	return o.Src
}

// ModuleName returns the name of the emitted LLVM module: the configured
// override, else the source file name without its extension, else a
// placeholder for standard input.
func (o Options) ModuleName() string {
	if len(o.Module) > 0 {
		return o.Module
	}
	if len(o.Src) == 0 {
		return "alan"
	}
	base := filepath.Base(o.Src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
