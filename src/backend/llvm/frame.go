// frame.go defines the per-function bookkeeping of the code generator. One
// frame is pushed on the generation stack for every function definition
// being lowered and popped when its body is complete.

package llvm

import (
	"tinygo.org/x/go-llvm"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// frame tracks the in-progress lowering of one function: its LLVM function,
// the ordered argument type vector, the declared LLVM type of every local
// name, the stack slots of value locals and the slots holding pointers for
// reference arguments, the basic block instructions are currently appended
// to, and whether that block has seen a return.
type frame struct {
	fun      llvm.Value
	argTypes []llvm.Type
	argNames []string
	vars     map[string]llvm.Type
	vals     map[string]llvm.Value
	addrs    map[string]llvm.Value

	currentBB llvm.BasicBlock
	hasReturn bool
}

// ---------------------
// ----- Functions -----
// ---------------------

// newFrame returns an empty function frame.
func newFrame() *frame {
	return &frame{
		argTypes: make([]llvm.Type, 0, 8),
		argNames: make([]string, 0, 8),
		vars:     make(map[string]llvm.Type),
		vals:     make(map[string]llvm.Value),
		addrs:    make(map[string]llvm.Value),
	}
}

// addArg registers a formal or hidden parameter with its lowered type.
func (f *frame) addArg(name string, typ llvm.Type) {
	f.argTypes = append(f.argTypes, typ)
	f.argNames = append(f.argNames, name)
	f.vars[name] = typ
}

// cur returns the frame on top of the generation stack.
func (g *generator) cur() *frame {
	return g.frames.Peek().(*frame)
}

// setCurrentBlock makes bb the insertion point of the current frame. A fresh
// block has not returned yet, whatever the previous block did: returning in
// one branch does not guarantee a return on the join.
func (g *generator) setCurrentBlock(f *frame, bb llvm.BasicBlock) {
	f.currentBB = bb
	f.hasReturn = false
	g.b.SetInsertPointAtEnd(bb)
}
