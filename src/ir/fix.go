// fix.go rewrites call sites with the hidden argument lists of their
// callees. A function's hidden set is only complete when its scope closes,
// which may happen after calls to it have already been analyzed, so the
// rewrite runs as a separate pass over the whole tree.

package ir

// FixCalls appends, for every call in the tree, one by-reference variable
// argument per hidden parameter of the callee.
func FixCalls(root *Func) {
	fixCalls(root, make(map[string][]Node))
}

func fixCalls(n Node, hiddenMap map[string][]Node) {
	switch e := n.(type) {
	case *Func:
		hiddenMap[e.Id] = e.Hidden
		for _, d := range e.Decls {
			fixCalls(d, hiddenMap)
		}
		fixCalls(e.Body, hiddenMap)
	case *Block:
		for _, s := range e.Stmts {
			fixCalls(s, hiddenMap)
		}
	case *Call:
		for _, p := range e.Params {
			fixCalls(p, hiddenMap)
		}
		for _, hid := range hiddenMap[e.Id] {
			p, ok := hid.(*Param)
			if !ok {
				continue
			}
			e.Hidden = append(e.Hidden, &VarRef{Line: e.Line, T: p.T, Id: p.Id})
		}
	case *IfElse:
		fixCalls(e.Cond, hiddenMap)
		fixCalls(e.Then, hiddenMap)
		if e.Else != nil {
			fixCalls(e.Else, hiddenMap)
		}
	case *While:
		fixCalls(e.Cond, hiddenMap)
		fixCalls(e.Body, hiddenMap)
	case *Assign:
		fixCalls(e.Left, hiddenMap)
		fixCalls(e.Right, hiddenMap)
	case *Ret:
		if e.Expr != nil {
			fixCalls(e.Expr, hiddenMap)
		}
	case *BinOp:
		fixCalls(e.Left, hiddenMap)
		fixCalls(e.Right, hiddenMap)
	case *Condition:
		if e.Left != nil {
			fixCalls(e.Left, hiddenMap)
		}
		if e.Right != nil {
			fixCalls(e.Right, hiddenMap)
		}
	case *VarRef:
		if e.Index != nil {
			fixCalls(e.Index, hiddenMap)
		}
	}
}
