// semantic.go performs name resolution and type checking in a single
// recursive traversal. Every node gets its resolved type, every function
// collects the by-reference hidden parameters for the outer variables its
// body reaches, and the outermost function is marked as the program entry.
// Analysis is fatal on first error.

package ir

import (
	"go.uber.org/zap"
)

// Semantic analyzes the tree rooted at root against a freshly seeded symbol
// table and then rewrites every call site with its callee's hidden argument
// list. The root function is the program entry.
func Semantic(root *Func, log *zap.Logger) error {
	table := InitSymbolTable(log)
	root.Main = true
	if err := check(root, table); err != nil {
		return err
	}
	FixCalls(root)
	return nil
}

// check dispatches on the node variant and applies the per-node typing rule.
func check(n Node, t *Table) error {
	switch e := n.(type) {
	case *IntLit:
		e.T = TypeInteger

	case *ByteLit:
		e.T = TypeByte

	case *StringLit:
		it, err := NewIArray(TypeByte)
		if err != nil {
			return err
		}
		e.T = it

	case *VarRef:
		if e.Index != nil {
			if err := check(e.Index, t); err != nil {
				return err
			}
			if !EqualType(e.Index.ResultType(), TypeInteger) {
				return ErrorAt(e.Line, "array index must be of integer type")
			}
		}
		entry, err := t.LookupEntry(e.Id, All, true)
		if err != nil {
			return reanchor(err, e.Line)
		}
		if entry.Kind == FunctionEntry {
			return ErrorAt(e.Line, "%s is not a variable or parameter", e.Id)
		}
		if entry.NestingLevel < t.CurScope().NestingLevel {
			t.AddHidden(entry)
		}
		if e.Index == nil {
			e.T = entry.Type
		} else {
			elem := entry.Type.Elem()
			if elem == nil {
				return ErrorAt(e.Line, "%s is not an array", e.Id)
			}
			e.T = elem
		}

	case *BinOp:
		if err := check(e.Left, t); err != nil {
			return err
		}
		if err := check(e.Right, t); err != nil {
			return err
		}
		if !EqualType(e.Left.ResultType(), e.Right.ResultType()) {
			return ErrorAt(e.Line, "binary operation operands must be of same type")
		}
		e.T = e.Left.ResultType()

	case *Condition:
		switch e.Op {
		case CondNot:
			if err := check(e.Right, t); err != nil {
				return err
			}
			if !EqualType(e.Right.ResultType(), TypeByte) {
				return ErrorAt(e.Line, "condition is not of type byte")
			}
		case CondAnd, CondOr:
			if err := check(e.Left, t); err != nil {
				return err
			}
			if err := check(e.Right, t); err != nil {
				return err
			}
			if !EqualType(e.Left.ResultType(), TypeByte) || !EqualType(e.Right.ResultType(), TypeByte) {
				return ErrorAt(e.Line, "condition is not of type byte")
			}
		case CondTrue, CondFalse:
			// Nullary.
		default:
			if err := check(e.Left, t); err != nil {
				return err
			}
			if err := check(e.Right, t); err != nil {
				return err
			}
			if !EqualType(e.Left.ResultType(), e.Right.ResultType()) {
				return ErrorAt(e.Line, "expressions of different types")
			}
		}
		e.T = TypeByte

	case *IfElse:
		if err := check(e.Cond, t); err != nil {
			return err
		}
		if !EqualType(e.Cond.ResultType(), TypeByte) {
			return ErrorAt(e.Line, "if condition expects a boolean expression")
		}
		if err := check(e.Then, t); err != nil {
			return err
		}
		if e.Else != nil {
			if err := check(e.Else, t); err != nil {
				return err
			}
		}

	case *While:
		if err := check(e.Cond, t); err != nil {
			return err
		}
		if !EqualType(e.Cond.ResultType(), TypeByte) {
			return ErrorAt(e.Line, "while condition expects a boolean expression")
		}
		if err := check(e.Body, t); err != nil {
			return err
		}

	case *Call:
		entry, err := t.LookupEntry(e.Id, All, true)
		if err != nil {
			return reanchor(err, e.Line)
		}
		if entry.Kind != FunctionEntry {
			return ErrorAt(e.Line, "%s is not a function", e.Id)
		}
		if len(e.Params) < len(entry.Params) {
			return ErrorAt(e.Line, "not enough arguments in call to %s", e.Id)
		}
		if len(e.Params) > len(entry.Params) {
			return ErrorAt(e.Line, "too many arguments in call to %s", e.Id)
		}
		for _, p := range e.Params {
			if err := check(p, t); err != nil {
				return err
			}
		}
		for i1, p := range e.Params {
			formal := entry.Params[i1]
			if !CompatibleType(p.ResultType(), formal.Type) {
				return ErrorAt(e.Line, "type mismatch in parameter %s of %s, expected %s, got %s",
					formal.Id, e.Id, formal.Type, p.ResultType())
			}
		}
		e.T = entry.Type

	case *Ret:
		if e.Expr == nil {
			e.T = TypeVoid
			if !EqualType(t.ScopeType(), TypeVoid) {
				return ErrorAt(e.Line, "type mismatch in function return")
			}
		} else {
			if err := check(e.Expr, t); err != nil {
				return err
			}
			e.T = e.Expr.ResultType()
			if !CompatibleType(e.T, t.ScopeType()) {
				return ErrorAt(e.Line, "type mismatch in function return")
			}
		}
		t.AddReturn()

	case *Assign:
		if err := check(e.Left, t); err != nil {
			return err
		}
		if err := check(e.Right, t); err != nil {
			return err
		}
		if !EqualType(e.Left.ResultType(), e.Right.ResultType()) {
			return ErrorAt(e.Line, "type mismatch in assignment")
		}
		e.T = e.Left.ResultType()

	case *VarDecl:
		dup, err := t.LookupEntry(e.Id, Current, false)
		if err != nil {
			return err
		}
		if dup != nil {
			return ErrorAt(e.Line, "duplicate identifier %s", e.Id)
		}
		t.InsertEntry(NewVariable(e.Id, e.T))

	case *Param:
		p, err := NewParameter(e.Id, e.T, e.Mode)
		if err != nil {
			return reanchor(err, e.Line)
		}
		t.InsertEntry(p)
		if err := t.AddParam(p); err != nil {
			return reanchor(err, e.Line)
		}

	case *Func:
		dup, err := t.LookupEntry(e.Id, Current, false)
		if err != nil {
			return err
		}
		if dup != nil {
			return ErrorAt(e.Line, "duplicate identifier %s", e.Id)
		}
		if e.Main && len(e.Params) > 0 {
			return ErrorAt(e.Line, "the program entry function must not take parameters")
		}
		fun := NewFunction(e.Id, e.RetType)
		t.InsertEntry(fun)
		t.OpenScope(fun)
		for _, p := range e.Params {
			if err := check(p, t); err != nil {
				return err
			}
		}
		for _, d := range e.Decls {
			if err := check(d, t); err != nil {
				return err
			}
		}
		if err := check(e.Body, t); err != nil {
			return err
		}
		// The hidden set is complete once the whole body has been analyzed.
		for _, hid := range fun.Hidden {
			e.Hidden = append(e.Hidden, &Param{
				Line: e.Line,
				T:    hid.Type,
				Id:   hid.Id,
				Mode: ByReference,
			})
		}
		t.CloseScope()
		e.T = e.RetType

	case *Block:
		for _, s := range e.Stmts {
			if err := check(s, t); err != nil {
				return err
			}
		}

	default:
		return InternalAt(n.Pos(), "unexpected node %T in semantic analysis", n)
	}
	return nil
}

// reanchor fills in the source line of a diagnostic raised below the node
// level.
func reanchor(err error, line int) error {
	if ce, ok := err.(*CompileError); ok && ce.Line == 0 {
		ce.Line = line
	}
	return err
}
