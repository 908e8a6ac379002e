package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alanc/src/frontend"
	"alanc/src/ir"
)

// analyze parses and analyzes an Alan program.
func analyze(t *testing.T, src string) (*ir.Func, error) {
	t.Helper()
	root, err := frontend.Parse(src)
	require.NoError(t, err, "parse")
	return root, ir.Semantic(root, nil)
}

// TestHelloTypes verifies the type annotations of a minimal program.
func TestHelloTypes(t *testing.T) {
	root, err := analyze(t, `
main () : proc
{
    writeString("hello\n");
}
`)
	require.NoError(t, err)
	assert.True(t, root.Main)
	assert.True(t, ir.EqualType(root.ResultType(), ir.TypeVoid))

	body := root.Body.(*ir.Block)
	require.Len(t, body.Stmts, 1)
	call := body.Stmts[0].(*ir.Call)
	assert.True(t, ir.EqualType(call.ResultType(), ir.TypeVoid))
	str := call.Params[0].(*ir.StringLit)
	require.NotNil(t, str.ResultType())
	assert.Equal(t, ir.IArray, str.ResultType().Kind)
	assert.True(t, ir.EqualType(str.ResultType().Ref, ir.TypeByte))
	assert.Equal(t, "hello\n", str.Val)
}

// TestNestedCapture verifies the hidden parameter inference of a nested
// function and the call site rewrite.
func TestNestedCapture(t *testing.T) {
	root, err := analyze(t, `
outer () : proc
    x : int;
    inner () : proc
    {
        x = x + 1;
    }
{
    x = 1;
    inner();
}
`)
	require.NoError(t, err)
	assert.Empty(t, root.Hidden)

	inner := root.Decls[1].(*ir.Func)
	require.Len(t, inner.Hidden, 1)
	hid := inner.Hidden[0].(*ir.Param)
	assert.Equal(t, "x", hid.Id)
	assert.Equal(t, ir.ByReference, hid.Mode)
	assert.True(t, ir.EqualType(hid.T, ir.TypeInteger))

	// The call inner() was rewritten to inner(&x).
	body := root.Body.(*ir.Block)
	call := body.Stmts[1].(*ir.Call)
	require.Len(t, call.Hidden, 1)
	arg := call.Hidden[0].(*ir.VarRef)
	assert.Equal(t, "x", arg.Id)
	assert.Nil(t, arg.Index)
	assert.True(t, ir.EqualType(arg.ResultType(), ir.TypeInteger))
}

// TestTransitiveCapture verifies that a capture two levels deep marks every
// intermediate function and that every call site carries the full hidden
// list.
func TestTransitiveCapture(t *testing.T) {
	root, err := analyze(t, `
a () : proc
    x : int;
    b () : proc
        c () : proc
        {
            x = 2;
        }
    {
        c();
    }
{
    b();
}
`)
	require.NoError(t, err)

	b := root.Decls[1].(*ir.Func)
	c := b.Decls[0].(*ir.Func)
	require.Len(t, b.Hidden, 1, "the intermediate function inherits the capture")
	require.Len(t, c.Hidden, 1)

	// Property: every call site's hidden list matches its callee's.
	bCall := root.Body.(*ir.Block).Stmts[0].(*ir.Call)
	cCall := b.Body.(*ir.Block).Stmts[0].(*ir.Call)
	assert.Len(t, bCall.Hidden, len(b.Hidden))
	assert.Len(t, cCall.Hidden, len(c.Hidden))
	for i1, h := range b.Hidden {
		hp := h.(*ir.Param)
		ha := bCall.Hidden[i1].(*ir.VarRef)
		assert.Equal(t, hp.Id, ha.Id)
		assert.True(t, ir.EqualType(hp.T, ha.ResultType()))
	}
}

// TestDuplicateIdentifier verifies the duplicate declaration diagnostic.
func TestDuplicateIdentifier(t *testing.T) {
	_, err := analyze(t, `
p () : proc
    x : int;
    x : byte;
{
}
`)
	require.Error(t, err)
	ce := err.(*ir.CompileError)
	assert.Contains(t, ce.Msg, "duplicate identifier x")
	assert.Equal(t, 4, ce.Line)
}

// TestCallTypeMismatch verifies the parameter type diagnostic of a call.
func TestCallTypeMismatch(t *testing.T) {
	_, err := analyze(t, `
p () : proc
    q (b : byte) : proc
    {
    }
{
    q(42);
}
`)
	require.Error(t, err)
	ce := err.(*ir.CompileError)
	assert.Contains(t, ce.Msg, "type mismatch in parameter b")
}

// TestCallArity verifies both arity diagnostics.
func TestCallArity(t *testing.T) {
	_, err := analyze(t, `
p () : proc
{
    writeInteger();
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "not enough arguments")

	_, err = analyze(t, `
p () : proc
{
    writeInteger(1, 2);
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "too many arguments")
}

// TestArrayCompatibility verifies that sized arrays pass where an iarray is
// declared and that element types still matter.
func TestArrayCompatibility(t *testing.T) {
	_, err := analyze(t, `
p () : proc
    s : byte [10];
    q (t : reference byte []) : proc
    {
        writeString(t);
    }
{
    q(s);
}
`)
	require.NoError(t, err)

	_, err = analyze(t, `
p () : proc
    s : int [10];
    q (t : reference byte []) : proc
    {
    }
{
    q(s);
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "type mismatch in parameter t")
}

// TestReturnChecks verifies the return type discipline.
func TestReturnChecks(t *testing.T) {
	_, err := analyze(t, `
f () : int
{
    return 1;
}
`)
	require.NoError(t, err)

	_, err = analyze(t, `
f () : int
{
    return;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "type mismatch in function return")

	_, err = analyze(t, `
f () : proc
{
    return;
}
`)
	require.NoError(t, err)
}

// TestUnknownIdentifier verifies the resolution diagnostics.
func TestUnknownIdentifier(t *testing.T) {
	_, err := analyze(t, `
p () : proc
{
    x = 1;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "unknown identifier x")

	_, err = analyze(t, `
p () : proc
    q () : proc
    {
    }
{
    q = 1;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "not a variable")

	_, err = analyze(t, `
p () : proc
    x : int;
{
    x();
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "not a function")
}

// TestConditionTyping verifies condition and index typing rules.
func TestConditionTyping(t *testing.T) {
	_, err := analyze(t, `
p () : proc
    x : int;
{
    if (x) x = 1;
}
`)
	require.Error(t, err, "an int expression is not a condition")

	_, err = analyze(t, `
p () : proc
    s : byte [4];
    b : byte;
{
    while ((b == 'a') & !(b == 'b'))
        s[b] = b;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "array index must be of integer type")
}

// TestBinOpTyping verifies that mixed operand widths are rejected and that
// same-type byte arithmetic passes.
func TestBinOpTyping(t *testing.T) {
	_, err := analyze(t, `
p () : proc
    i : int;
    b : byte;
{
    i = i + b;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.(*ir.CompileError).Msg, "same type")

	_, err = analyze(t, `
p () : proc
    b : byte;
{
    b = b + 'a';
}
`)
	require.NoError(t, err)
}

// TestAnnotatedTypes walks a program and verifies that semantic analysis
// left no expression untyped.
func TestAnnotatedTypes(t *testing.T) {
	root, err := analyze(t, `
sum () : int
    n : int;
    acc : int;
{
    acc = 0;
    n = readInteger();
    while (n > 0) {
        acc = acc + n;
        n = n - 1;
    }
    return acc;
}
`)
	require.NoError(t, err)

	var walk func(n ir.Node)
	walk = func(n ir.Node) {
		if n == nil {
			return
		}
		switch e := n.(type) {
		case *ir.IntLit, *ir.ByteLit, *ir.StringLit, *ir.VarRef, *ir.BinOp, *ir.Condition, *ir.Call:
			require.NotNil(t, e.ResultType(), "%T on line %d is untyped", e, e.Pos())
		}
		switch e := n.(type) {
		case *ir.Func:
			for _, d := range e.Decls {
				walk(d)
			}
			walk(e.Body)
		case *ir.Block:
			for _, s := range e.Stmts {
				walk(s)
			}
		case *ir.Assign:
			walk(e.Left)
			walk(e.Right)
		case *ir.While:
			walk(e.Cond)
			walk(e.Body)
		case *ir.IfElse:
			walk(e.Cond)
			walk(e.Then)
			walk(e.Else)
		case *ir.Ret:
			walk(e.Expr)
		case *ir.BinOp:
			walk(e.Left)
			walk(e.Right)
		case *ir.Condition:
			walk(e.Left)
			walk(e.Right)
		case *ir.Call:
			for _, p := range e.Params {
				walk(p)
			}
		case *ir.VarRef:
			walk(e.Index)
		}
	}
	walk(root)
}
