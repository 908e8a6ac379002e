// Package llvm lowers the annotated Alan syntax tree into a single LLVM
// module through the system installed LLVM runtime. The module declares the
// runtime library, defines every user function with its hidden by-reference
// captures appended to the signature, and synthesizes an i32 main that
// bridges to the program's entry function.
package llvm

import (
	"tinygo.org/x/go-llvm"
)

import (
	"alanc/src/ir"
	"alanc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// generator carries the module-wide code generation state: the LLVM context,
// module and builder, the generation stack of function frames and the map
// from Alan function names to their LLVM declarations.
type generator struct {
	ctx llvm.Context
	mod llvm.Module
	b   llvm.Builder

	frames    *util.Stack
	functions map[string]llvm.Value

	i32  llvm.Type
	i8   llvm.Type
	void llvm.Type
}

// ---------------------
// ----- Constants -----
// ---------------------

// entryRename is the LLVM symbol the user's entry function gets when it is
// itself named main, which would otherwise collide with the synthesized
// bridge.
const entryRename = "__main"

// stringPrefix names the global constants backing string literals.
const stringPrefix = "str"

// ---------------------
// ----- Functions -----
// ---------------------

// Codegen lowers the analyzed program rooted at root into an LLVM module
// named after the source file and returns the module's textual IR.
func Codegen(opt util.Options, root *ir.Func) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	b := ctx.NewBuilder()
	defer b.Dispose()

	m := ctx.NewModule(opt.ModuleName())
	defer m.Dispose()

	g := &generator{
		ctx:       ctx,
		mod:       m,
		b:         b,
		frames:    &util.Stack{},
		functions: make(map[string]llvm.Value),
		i32:       ctx.Int32Type(),
		i8:        ctx.Int8Type(),
		void:      ctx.VoidType(),
	}

	g.declareLibs()

	// The bridge the operating system calls. It is created before the user's
	// functions so that a user function named main is the one that gets
	// renamed.
	mainType := llvm.FunctionType(g.i32, nil, false)
	mainFun := llvm.AddFunction(g.mod, "main", mainType)
	mainBB := llvm.AddBasicBlock(mainFun, "entry")

	if err := g.genFunc(root); err != nil {
		return "", err
	}

	// Resume the bridge: call the entry function and exit cleanly.
	g.b.SetInsertPointAtEnd(mainBB)
	g.b.CreateCall(g.functions[root.Id], nil, "")
	g.b.CreateRet(llvm.ConstInt(g.i32, 0, false))

	return g.mod.String(), nil
}

// translateType lowers an Alan type. Incomplete arrays lower to their
// element type; reference mode wraps the result in a pointer, which turns an
// incomplete array into the element pointer it is at the call boundary.
func (g *generator) translateType(t *ir.Type, mode ir.PassMode) llvm.Type {
	var res llvm.Type
	switch t.Kind {
	case ir.Void:
		res = g.void
	case ir.Int:
		res = g.i32
	case ir.Byte:
		res = g.i8
	case ir.Array:
		res = llvm.ArrayType(g.translateType(t.Ref, ir.ByValue), t.Len)
	case ir.IArray:
		res = g.translateType(t.Ref, ir.ByValue)
	}
	if mode == ir.ByReference {
		res = llvm.PointerType(res, 0)
	}
	return res
}

// genFunc lowers one function definition, including its nested functions,
// and registers it in the function map.
func (g *generator) genFunc(n *ir.Func) error {
	name := n.Id
	if n.Main && name == "main" {
		name = entryRename
	}

	f := newFrame()
	for _, e1 := range n.Params {
		p := e1.(*ir.Param)
		f.addArg(p.Id, g.translateType(p.T, p.Mode))
	}
	for _, e1 := range n.Hidden {
		p := e1.(*ir.Param)
		f.addArg(p.Id, g.translateType(p.T, ir.ByReference))
	}

	ftyp := llvm.FunctionType(g.translateType(n.RetType, ir.ByValue), f.argTypes, false)
	fun := llvm.AddFunction(g.mod, name, ftyp)
	g.functions[n.Id] = fun
	f.fun = fun

	for i1, arg := range fun.Params() {
		arg.SetName(f.argNames[i1])
	}

	g.frames.Push(f)
	entry := llvm.AddBasicBlock(fun, "entry")
	g.setCurrentBlock(f, entry)

	// Give every argument a stack slot. Pointer arguments register as
	// addresses, value arguments as values.
	for i1, arg := range fun.Params() {
		id := f.argNames[i1]
		slot := g.b.CreateAlloca(arg.Type(), id+".addr")
		g.b.CreateStore(arg, slot)
		if arg.Type().TypeKind() == llvm.PointerTypeKind {
			f.addrs[id] = slot
		} else {
			f.vals[id] = slot
		}
	}

	for _, d := range n.Decls {
		switch e := d.(type) {
		case *ir.VarDecl:
			typ := g.translateType(e.T, ir.ByValue)
			f.vars[e.Id] = typ
			f.vals[e.Id] = g.b.CreateAlloca(typ, e.Id)
		case *ir.Func:
			if err := g.genFunc(e); err != nil {
				return err
			}
		default:
			return ir.InternalAt(d.Pos(), "unexpected declaration %T", d)
		}
	}

	if err := g.genStmt(n.Body); err != nil {
		return err
	}

	// Keep the last block well formed when the body falls off its end. A
	// proc simply returns; a non-void function without a return statement on
	// this path returns zero of its width.
	if !f.hasReturn {
		if n.RetType.Kind == ir.Void {
			g.b.CreateRetVoid()
		} else {
			g.b.CreateRet(llvm.ConstInt(g.translateType(n.RetType, ir.ByValue), 0, false))
		}
	}

	g.frames.Pop()
	if !n.Main {
		caller := g.cur()
		g.b.SetInsertPointAtEnd(caller.currentBB)
	}
	return nil
}
