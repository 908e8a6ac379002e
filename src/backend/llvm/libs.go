// libs.go declares the Alan runtime library in the emitted module. The
// runtime is implemented in C and linked separately; the declarations here
// fix the ABI the emitted code calls into.

package llvm

import (
	"tinygo.org/x/go-llvm"
)

// declareLibs declares the runtime primitives and registers them in
// the generator's function map under their Alan names.
func (g *generator) declareLibs() {
	i8p := llvm.PointerType(g.i8, 0)
	libs := []struct {
		name string
		ret  llvm.Type
		args []llvm.Type
	}{
		{"writeInteger", g.void, []llvm.Type{g.i32}},
		{"writeByte", g.void, []llvm.Type{g.i8}},
		{"writeChar", g.void, []llvm.Type{g.i8}},
		{"writeString", g.void, []llvm.Type{i8p}},
		{"readInteger", g.i32, nil},
		{"readByte", g.i8, nil},
		{"readChar", g.i8, nil},
		{"readString", g.void, []llvm.Type{g.i32, i8p}},
		{"extend", g.i32, []llvm.Type{g.i8}},
		{"shrink", g.i8, []llvm.Type{g.i32}},
		{"strlen", g.i32, []llvm.Type{i8p}},
		{"strcmp", g.i32, []llvm.Type{i8p, i8p}},
		{"strcpy", g.void, []llvm.Type{i8p, i8p}},
		{"strcat", g.void, []llvm.Type{i8p, i8p}},
	}
	for _, l := range libs {
		ftyp := llvm.FunctionType(l.ret, l.args, false)
		g.functions[l.name] = llvm.AddFunction(g.mod, l.name, ftyp)
	}
}
