// stmt.go lowers statements. Control flow keeps the source shape: no
// dedicated loop header blocks, the loop condition is emitted once before
// the loop body and once after it.

package llvm

import (
	"tinygo.org/x/go-llvm"
)

import (
	"alanc/src/ir"
)

// genStmt lowers a single statement into the current frame's block.
func (g *generator) genStmt(n ir.Node) error {
	switch e := n.(type) {
	case *ir.Block:
		for _, s := range e.Stmts {
			if err := g.genStmt(s); err != nil {
				return err
			}
		}
		return nil

	case *ir.Assign:
		return g.genAssign(e)

	case *ir.IfElse:
		return g.genIfElse(e)

	case *ir.While:
		return g.genWhile(e)

	case *ir.Ret:
		return g.genRet(e)

	case *ir.Call:
		_, err := g.genCall(e)
		return err
	}
	return ir.InternalAt(n.Pos(), "unexpected statement %T", n)
}

// genAssign computes the destination address of the left hand side the same
// way a variable load would and stores the right hand side through it.
func (g *generator) genAssign(n *ir.Assign) error {
	lhs, ok := n.Left.(*ir.VarRef)
	if !ok {
		return ir.ErrorAt(n.Line, "assignment target must be a variable")
	}
	dst, err := g.genVarAddr(lhs)
	if err != nil {
		return err
	}
	val, err := g.genExpr(n.Right)
	if err != nil {
		return err
	}
	g.b.CreateStore(val, dst)
	return nil
}

// genIfElse lowers a conditional with then, else and merge blocks. An arm
// that returned does not branch to the merge block.
func (g *generator) genIfElse(n *ir.IfElse) error {
	f := g.cur()
	cond, err := g.genBranchCond(n.Cond)
	if err != nil {
		return err
	}

	thenBB := llvm.AddBasicBlock(f.fun, "then")
	mergeBB := llvm.AddBasicBlock(f.fun, "merge")
	elseBB := mergeBB
	if n.Else != nil {
		elseBB = llvm.AddBasicBlock(f.fun, "else")
	}
	g.b.CreateCondBr(cond, thenBB, elseBB)

	g.setCurrentBlock(f, thenBB)
	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	if !f.hasReturn {
		g.b.CreateBr(mergeBB)
	}

	if n.Else != nil {
		g.setCurrentBlock(f, elseBB)
		if err := g.genStmt(n.Else); err != nil {
			return err
		}
		if !f.hasReturn {
			g.b.CreateBr(mergeBB)
		}
	}

	g.setCurrentBlock(f, mergeBB)
	return nil
}

// genWhile lowers a pre-test loop. The condition is evaluated before the
// loop and re-evaluated at the loop tail.
func (g *generator) genWhile(n *ir.While) error {
	f := g.cur()
	cond, err := g.genBranchCond(n.Cond)
	if err != nil {
		return err
	}

	loopBB := llvm.AddBasicBlock(f.fun, "loop")
	afterBB := llvm.AddBasicBlock(f.fun, "after")
	g.b.CreateCondBr(cond, loopBB, afterBB)

	g.setCurrentBlock(f, loopBB)
	if err := g.genStmt(n.Body); err != nil {
		return err
	}
	if !f.hasReturn {
		tail, err := g.genBranchCond(n.Cond)
		if err != nil {
			return err
		}
		g.b.CreateCondBr(tail, loopBB, afterBB)
	}

	g.setCurrentBlock(f, afterBB)
	return nil
}

// genRet terminates the current block with a return.
func (g *generator) genRet(n *ir.Ret) error {
	f := g.cur()
	if n.Expr == nil {
		g.b.CreateRetVoid()
		f.hasReturn = true
		return nil
	}
	val, err := g.genExpr(n.Expr)
	if err != nil {
		return err
	}
	g.b.CreateRet(val)
	f.hasReturn = true
	return nil
}
