// expr.go lowers expressions, conditions and call argument lists. Reference
// arguments require an addressable actual: a variable, an array element or a
// string literal.

package llvm

import (
	"tinygo.org/x/go-llvm"
)

import (
	"alanc/src/ir"
)

// genExpr lowers an expression and returns its value.
func (g *generator) genExpr(n ir.Node) (llvm.Value, error) {
	switch e := n.(type) {
	case *ir.IntLit:
		return llvm.ConstInt(g.i32, uint64(e.Val), true), nil

	case *ir.ByteLit:
		return llvm.ConstInt(g.i8, uint64(e.Val), false), nil

	case *ir.StringLit:
		return g.b.CreateGlobalStringPtr(e.Val, stringPrefix), nil

	case *ir.VarRef:
		addr, err := g.genVarAddr(e)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.b.CreateLoad(addr, e.Id), nil

	case *ir.BinOp:
		l, err := g.genExpr(e.Left)
		if err != nil {
			return llvm.Value{}, err
		}
		r, err := g.genExpr(e.Right)
		if err != nil {
			return llvm.Value{}, err
		}
		switch e.Op {
		case '+':
			return g.b.CreateAdd(l, r, "add"), nil
		case '-':
			return g.b.CreateSub(l, r, "sub"), nil
		case '*':
			return g.b.CreateMul(l, r, "mul"), nil
		case '/':
			return g.b.CreateSDiv(l, r, "div"), nil
		case '%':
			return g.b.CreateSRem(l, r, "mod"), nil
		}
		return llvm.Value{}, ir.InternalAt(e.Line, "unexpected binary operator %c", e.Op)

	case *ir.Call:
		return g.genCall(e)

	case *ir.Condition:
		return g.genCond(e)
	}
	return llvm.Value{}, ir.InternalAt(n.Pos(), "unexpected expression %T", n)
}

// genVarAddr computes the address a use of variable n loads from or stores
// to. Reference names load their pointer slot first; subscripted arrays GEP
// into the base, with the extra leading zero index for value mode arrays.
func (g *generator) genVarAddr(n *ir.VarRef) (llvm.Value, error) {
	f := g.cur()
	vt, ok := f.vars[n.Id]
	if !ok {
		return llvm.Value{}, ir.InternalAt(n.Line, "unknown variable %s in code generation", n.Id)
	}

	zero := llvm.ConstInt(g.i32, 0, false)
	if vt.TypeKind() == llvm.PointerTypeKind {
		base := g.b.CreateLoad(f.addrs[n.Id], n.Id+".ref")
		if n.Index == nil {
			return base, nil
		}
		idx, err := g.genExpr(n.Index)
		if err != nil {
			return llvm.Value{}, err
		}
		if vt.ElementType().TypeKind() == llvm.ArrayTypeKind {
			return g.b.CreateGEP(base, []llvm.Value{zero, idx}, n.Id+".elem"), nil
		}
		return g.b.CreateGEP(base, []llvm.Value{idx}, n.Id+".elem"), nil
	}

	slot := f.vals[n.Id]
	if n.Index == nil {
		return slot, nil
	}
	idx, err := g.genExpr(n.Index)
	if err != nil {
		return llvm.Value{}, err
	}
	return g.b.CreateGEP(slot, []llvm.Value{zero, idx}, n.Id+".elem"), nil
}

// genCall lowers a call. The hidden argument list is spliced onto the formal
// arguments, and each actual is passed by pointer or by value according to
// the callee's signature.
func (g *generator) genCall(n *ir.Call) (llvm.Value, error) {
	target, ok := g.functions[n.Id]
	if !ok {
		return llvm.Value{}, ir.InternalAt(n.Line, "call to unknown function %s", n.Id)
	}

	actuals := make([]ir.Node, 0, len(n.Params)+len(n.Hidden))
	actuals = append(actuals, n.Params...)
	actuals = append(actuals, n.Hidden...)

	formals := target.Params()
	if len(actuals) != len(formals) {
		return llvm.Value{}, ir.InternalAt(n.Line, "call to %s expects %d arguments, got %d",
			n.Id, len(formals), len(actuals))
	}

	args := make([]llvm.Value, len(formals))
	for i1, formal := range formals {
		ft := formal.Type()
		if ft.TypeKind() == llvm.PointerTypeKind {
			v, err := g.genRefArg(actuals[i1], ft)
			if err != nil {
				return llvm.Value{}, err
			}
			args[i1] = v
			continue
		}
		v, err := g.genExpr(actuals[i1])
		if err != nil {
			return llvm.Value{}, err
		}
		args[i1] = v
	}

	name := ""
	if target.Type().ElementType().ReturnType() != g.void {
		name = "call"
	}
	return g.b.CreateCall(target, args, name), nil
}

// genRefArg lowers an actual argument bound to a by-reference formal of LLVM
// type formalTy. Sized arrays decay to an element pointer when the callee
// expects one.
func (g *generator) genRefArg(actual ir.Node, formalTy llvm.Type) (llvm.Value, error) {
	zero := llvm.ConstInt(g.i32, 0, false)
	switch a := actual.(type) {
	case *ir.StringLit:
		return g.b.CreateGlobalStringPtr(a.Val, stringPrefix), nil

	case *ir.VarRef:
		if a.Index != nil {
			// Pass the address of one element.
			return g.genVarAddr(a)
		}
		f := g.cur()
		vt, ok := f.vars[a.Id]
		if !ok {
			return llvm.Value{}, ir.InternalAt(a.Line, "unknown variable %s in code generation", a.Id)
		}
		if vt.TypeKind() == llvm.PointerTypeKind {
			p := g.b.CreateLoad(f.addrs[a.Id], a.Id+".ref")
			if vt.ElementType().TypeKind() == llvm.ArrayTypeKind &&
				formalTy.ElementType().TypeKind() != llvm.ArrayTypeKind {
				p = g.b.CreateGEP(p, []llvm.Value{zero, zero}, a.Id+".decay")
			}
			return p, nil
		}
		slot := f.vals[a.Id]
		if vt.TypeKind() == llvm.ArrayTypeKind &&
			formalTy.ElementType().TypeKind() != llvm.ArrayTypeKind {
			return g.b.CreateGEP(slot, []llvm.Value{zero, zero}, a.Id+".decay"), nil
		}
		return slot, nil
	}
	return llvm.Value{}, ir.ErrorAt(actual.Pos(), "argument passed by reference must be a variable or a string literal")
}

// genCond lowers a boolean expression. Comparisons widen byte operands to
// i32 and compare signed; the boolean connectives are bitwise over i32.
func (g *generator) genCond(n *ir.Condition) (llvm.Value, error) {
	switch n.Op {
	case ir.CondTrue:
		return llvm.ConstInt(g.i8, 1, false), nil
	case ir.CondFalse:
		return llvm.ConstInt(g.i8, 0, false), nil

	case ir.CondNot:
		v, err := g.genBoolOperand(n.Right)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.b.CreateXor(v, llvm.ConstInt(v.Type(), 1, false), "not"), nil

	case ir.CondAnd, ir.CondOr:
		l, err := g.genBoolOperand(n.Left)
		if err != nil {
			return llvm.Value{}, err
		}
		r, err := g.genBoolOperand(n.Right)
		if err != nil {
			return llvm.Value{}, err
		}
		l = g.widen(l)
		r = g.widen(r)
		if n.Op == ir.CondAnd {
			return g.b.CreateAnd(l, r, "and"), nil
		}
		return g.b.CreateOr(l, r, "or"), nil
	}

	// Relational operators.
	l, err := g.genExpr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	r, err := g.genExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	l = g.widen(l)
	r = g.widen(r)

	var pred llvm.IntPredicate
	switch n.Op {
	case ir.CondLT:
		pred = llvm.IntSLT
	case ir.CondGT:
		pred = llvm.IntSGT
	case ir.CondLE:
		pred = llvm.IntSLE
	case ir.CondGE:
		pred = llvm.IntSGE
	case ir.CondEQ:
		pred = llvm.IntEQ
	case ir.CondNEQ:
		pred = llvm.IntNE
	default:
		return llvm.Value{}, ir.InternalAt(n.Line, "unexpected condition operator %s", n.Op)
	}
	return g.b.CreateICmp(pred, l, r, "cmp"), nil
}

// genBoolOperand lowers an operand of a boolean connective, which may be a
// nested condition or a byte typed expression.
func (g *generator) genBoolOperand(n ir.Node) (llvm.Value, error) {
	if c, ok := n.(*ir.Condition); ok {
		return g.genCond(c)
	}
	return g.genExpr(n)
}

// genBranchCond lowers the condition of an if or while into an i1: the
// boolean value is widened to i32 and compared equal to one.
func (g *generator) genBranchCond(n ir.Node) (llvm.Value, error) {
	v, err := g.genBoolOperand(n)
	if err != nil {
		return llvm.Value{}, err
	}
	v = g.widen(v)
	return g.b.CreateICmp(llvm.IntEQ, v, llvm.ConstInt(g.i32, 1, false), "tobool"), nil
}

// widen zero-extends a value narrower than i32 to i32.
func (g *generator) widen(v llvm.Value) llvm.Value {
	t := v.Type()
	if t.TypeKind() == llvm.IntegerTypeKind && t.IntTypeWidth() < 32 {
		return g.b.CreateZExt(v, g.i32, "zext")
	}
	return v
}
