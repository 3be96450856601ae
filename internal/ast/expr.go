package ast

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/scope"
)

// FConstant is a literal double.
type FConstant struct {
	Pos
	Val float64
}

func (e *FConstant) Compile(ctx *emit.Context) (value.Value, bool) {
	return constant.NewFloat(types.Double, e.Val), false
}

// Id names a variable already bound in scope by the time this node is
// compiled (the parser checks the name eagerly; Compile looks it up
// again). Compiling an Id yields a scalar variable's current value (a
// load from its storage) or, for an array, its backing storage address;
// ArrayLoad/Access/Store work from the scope entity's storage directly.
type Id struct {
	Pos
	Name string
}

func (e *Id) entity(ctx *emit.Context) *scope.Entity {
	ent, ok := ctx.Cur.Get(e.Name)
	if !ok {
		// The parser reports every unresolved name, and a tree with parse
		// diagnostics is never compiled; reaching this means a compiler
		// bug, not a user error.
		panic("ast: unresolved identifier reached Compile: " + e.Name)
	}
	return ent
}

func (e *Id) Compile(ctx *emit.Context) (value.Value, bool) {
	ent := e.entity(ctx)
	if ent.IsArray {
		return ent.Storage, true
	}
	return ctx.Block.NewLoad(types.Double, ent.Storage), false
}

// ArrayConstant is an array literal: either a flat list of scalar
// expressions, or — when every element is itself an ArrayConstant of the
// same shape — a nested literal. Every leaf must fold to an IR constant;
// a non-constant leaf is reported as "constant array has non-constant
// initializer" and the array materializes with a zero in its place so
// emission can still proceed.
type ArrayConstant struct {
	Pos
	Name     string
	Elements []Expression
	Dims     []int
}

func (e *ArrayConstant) ArrayShape() ArrayCap {
	return ArrayCap{Dims: e.Dims, Len: product(e.Dims), Align: 8}
}

func (e *ArrayConstant) Compile(ctx *emit.Context) (value.Value, bool) {
	agg, _ := e.buildConstant(ctx)
	name := fmt.Sprintf("array%d", ctx.NextArrayID())
	if e.Name != "" {
		name = fmt.Sprintf("%s.%s", e.Name, name)
	}
	g := ctx.Module.NewGlobalDef(name, agg)
	g.Linkage = enum.LinkagePrivate
	g.Immutable = true
	g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	return g, true
}

// buildConstant recursively folds this literal (and any nested literal
// elements) into an llir constant.Array, reporting one diagnostic per
// non-constant leaf it finds along the way.
func (e *ArrayConstant) buildConstant(ctx *emit.Context) (constant.Constant, *types.ArrayType) {
	elems := make([]constant.Constant, len(e.Elements))
	var elemTy types.Type = types.Double
	for i, el := range e.Elements {
		switch v := el.(type) {
		case *FConstant:
			elems[i] = constant.NewFloat(types.Double, v.Val)
		case *ArrayConstant:
			sub, subTy := v.buildConstant(ctx)
			elems[i] = sub
			elemTy = subTy
		default:
			ctx.Dg.Errorf(e.Line(), "constant array has non-constant initializer")
			elems[i] = constant.NewFloat(types.Double, 0)
		}
	}
	arrTy := types.NewArray(uint64(len(elems)), elemTy)
	return constant.NewArray(arrTy, elems...), arrTy
}

// ArithOp identifies one of the four scalar arithmetic operators.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

// Arith is a binary arithmetic expression over two scalar operands.
type Arith struct {
	Pos
	Op          ArithOp
	Left, Right Expression
}

func (e *Arith) Compile(ctx *emit.Context) (value.Value, bool) {
	l, lArr := e.Left.Compile(ctx)
	r, rArr := e.Right.Compile(ctx)
	if lArr || rArr {
		ctx.Dg.Errorf(e.Line(), "invalid operand type")
		return emit.ZeroF(), false
	}
	switch e.Op {
	case Add:
		return ctx.Block.NewFAdd(l, r), false
	case Sub:
		return ctx.Block.NewFSub(l, r), false
	case Mul:
		return ctx.Block.NewFMul(l, r), false
	default:
		return ctx.Block.NewFDiv(l, r), false
	}
}

// Unary is scalar negation.
type Unary struct {
	Pos
	Operand Expression
}

func (e *Unary) Compile(ctx *emit.Context) (value.Value, bool) {
	v, isArr := e.Operand.Compile(ctx)
	if isArr {
		ctx.Dg.Errorf(e.Line(), "invalid operand type")
		return emit.ZeroF(), false
	}
	return ctx.Block.NewFNeg(v), false
}

// BoolOp identifies a relational or logical operator. Every BoolOp
// yields the language's boolean encoding: a double holding 0.0 or 1.0.
type BoolOp int

const (
	Eq BoolOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
)

// Bool is a binary relational or logical expression.
type Bool struct {
	Pos
	Op          BoolOp
	Left, Right Expression
}

func (e *Bool) Compile(ctx *emit.Context) (value.Value, bool) {
	l, lArr := e.Left.Compile(ctx)
	r, rArr := e.Right.Compile(ctx)
	if lArr || rArr {
		ctx.Dg.Errorf(e.Line(), "invalid operand type")
		return emit.ZeroF(), false
	}

	if e.Op == And || e.Op == Or {
		lb := ctx.ToBool(l)
		rb := ctx.ToBool(r)
		var combined value.Value
		if e.Op == And {
			combined = ctx.Block.NewAnd(lb, rb)
		} else {
			combined = ctx.Block.NewOr(lb, rb)
		}
		return ctx.ToDouble(combined), false
	}

	pred := map[BoolOp]enum.FPred{
		Eq: enum.FPredOEQ, Ne: enum.FPredONE,
		Lt: enum.FPredOLT, Le: enum.FPredOLE,
		Gt: enum.FPredOGT, Ge: enum.FPredOGE,
	}[e.Op]
	cmp := ctx.Block.NewFCmp(pred, l, r)
	return ctx.ToDouble(cmp), false
}

// Not is logical negation.
type Not struct {
	Pos
	Operand Expression
}

func (e *Not) Compile(ctx *emit.Context) (value.Value, bool) {
	v, isArr := e.Operand.Compile(ctx)
	if isArr {
		ctx.Dg.Errorf(e.Line(), "invalid operand type")
		return emit.ZeroF(), false
	}
	b := ctx.ToBool(v)
	inv := ctx.Block.NewXor(b, constant.True)
	return ctx.ToDouble(inv), false
}

// Load explicitly re-reads a scalar variable's current value. Id.Compile
// already does this for a plain reference; Load exists as its own node
// so the parser can build one at an assignment's RHS the same way it
// builds every other expression, without special-casing Id.
type Load struct {
	Pos
	Target *Id
}

func (e *Load) Compile(ctx *emit.Context) (value.Value, bool) {
	return e.Target.Compile(ctx)
}

// ArrayLoad reads one element of an array-shaped variable via a full
// index list (one expression per declared dimension).
type ArrayLoad struct {
	Pos
	Target  *Id
	Indices []Expression
}

func (e *ArrayLoad) elemAddr(ctx *emit.Context) (value.Value, bool) {
	ent := e.Target.entity(ctx)
	if !ent.IsArray {
		ctx.Dg.Errorf(e.Line(), "trying to access non-array id")
		return nil, false
	}
	if len(e.Indices) != len(ent.Dims) {
		ctx.Dg.Errorf(e.Line(), "invalid index")
		return nil, false
	}
	gepIdx := make([]value.Value, 0, len(e.Indices)+1)
	gepIdx = append(gepIdx, constIdx(0))
	for _, ix := range e.Indices {
		v, _ := ix.Compile(ctx)
		gepIdx = append(gepIdx, ctx.Block.NewFPToUI(v, types.I32))
	}
	arrTy := emit.NestedArrayType(ent.Dims)
	return ctx.Block.NewGetElementPtr(arrTy, ent.Storage, gepIdx...), true
}

func (e *ArrayLoad) Compile(ctx *emit.Context) (value.Value, bool) {
	addr, ok := e.elemAddr(ctx)
	if !ok {
		return emit.ZeroF(), false
	}
	return ctx.Block.NewLoad(types.Double, addr), false
}

// Access computes the address of an assignable location — either a
// plain scalar variable or one element of an array — without loading
// it, so Store can write through it.
type Access struct {
	Pos
	Target  *Id
	Indices []Expression // empty for a plain scalar Id
}

func (e *Access) Compile(ctx *emit.Context) (value.Value, bool) {
	if len(e.Indices) == 0 {
		ent := e.Target.entity(ctx)
		return ent.Storage, ent.IsArray
	}
	al := &ArrayLoad{Pos: e.Pos, Target: e.Target, Indices: e.Indices}
	addr, ok := al.elemAddr(ctx)
	if !ok {
		return emit.ZeroF(), false
	}
	return addr, false
}

// Call compiles a function call by resolved callee. Every function takes
// and returns scalars only.
type Call struct {
	Pos
	Name string
	Args []Expression
}

func (e *Call) Compile(ctx *emit.Context) (value.Value, bool) {
	ent, ok := ctx.Cur.Get(e.Name)
	if !ok {
		ctx.Dg.Errorf(e.Line(), "unknown function referenced")
		for _, a := range e.Args {
			a.Compile(ctx)
		}
		return emit.ZeroF(), false
	}
	if ent.ParamCount != len(e.Args) {
		ctx.Dg.Errorf(e.Line(), "wrong arguments number: expected %d, but %d provided", ent.ParamCount, len(e.Args))
		for _, a := range e.Args {
			a.Compile(ctx)
		}
		return emit.ZeroF(), false
	}
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, isArr := a.Compile(ctx)
		if isArr {
			ctx.Dg.Errorf(e.Line(), "invalid operand type")
			v = emit.ZeroF()
		}
		args[i] = v
	}
	call := ctx.Block.NewCall(ent.Callee, args...)
	return call, false
}
