package ast

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/scope"
)

// Store assigns Value into the address Target evaluates to. For a
// freshly-declared variable, the parser has already created Target's
// backing alloca (and inserted it into scope) before building this node
// — declarations and their first assignment are the same Store.
type Store struct {
	Pos
	Target *Access
	Value  Expression
}

func (s *Store) Compile(ctx *emit.Context) {
	addr, targetIsArray := s.Target.Compile(ctx)
	v, valIsArray := s.Value.Compile(ctx)

	if targetIsArray != valIsArray {
		ctx.Dg.Errorf(s.Line(), "incompatible types")
		return
	}

	if targetIsArray {
		ent, _ := ctx.Cur.Get(s.Target.Target.Name)
		if n := lengthOf(ctx, s.Value); n != ent.ArrayLen {
			ctx.Dg.Errorf(s.Line(), "incompatible array types")
			return
		}
		ctx.Memcpy(addr, v, int64(ent.ArrayLen*8))
		return
	}

	ctx.Block.NewStore(v, addr)
}

// ExprStmt evaluates an expression purely for its side effects (a bare
// call, most commonly print(...) or read(...)).
type ExprStmt struct {
	Pos
	Expr Expression
}

func (s *ExprStmt) Compile(ctx *emit.Context) {
	s.Expr.Compile(ctx)
}

// StmtSeq is a block of statements compiled in order.
type StmtSeq struct {
	Pos
	Stmts []Statement
}

func (s *StmtSeq) Compile(ctx *emit.Context) {
	for _, stmt := range s.Stmts {
		stmt.Compile(ctx)
	}
}

// If compiles a condition-only conditional: on false, control skips
// straight to the code following the if.
type If struct {
	Pos
	Cond Expression
	Then Statement
}

func (s *If) Compile(ctx *emit.Context) {
	cv, _ := s.Cond.Compile(ctx)
	cond := ctx.ToBool(cv)

	thenPH := emit.NewPlaceholder("if.then")
	endPH := emit.NewPlaceholder("if.end")

	ctx.Block.NewCondBr(cond, thenPH.Block(), endPH.Block())

	ctx.Attach(thenPH)
	ctx.PushScope()
	s.Then.Compile(ctx)
	ctx.PopScope()
	ctx.Br(endPH.Block())

	ctx.Attach(endPH)
}

// IfElse compiles a two-armed conditional.
type IfElse struct {
	Pos
	Cond       Expression
	Then, Else Statement
}

func (s *IfElse) Compile(ctx *emit.Context) {
	cv, _ := s.Cond.Compile(ctx)
	cond := ctx.ToBool(cv)

	thenPH := emit.NewPlaceholder("if.then")
	elsePH := emit.NewPlaceholder("if.else")
	endPH := emit.NewPlaceholder("if.end")

	ctx.Block.NewCondBr(cond, thenPH.Block(), elsePH.Block())

	ctx.Attach(thenPH)
	ctx.PushScope()
	s.Then.Compile(ctx)
	ctx.PopScope()
	ctx.Br(endPH.Block())

	ctx.Attach(elsePH)
	ctx.PushScope()
	s.Else.Compile(ctx)
	ctx.PopScope()
	ctx.Br(endPH.Block())

	ctx.Attach(endPH)
}

// While is a pre-condition loop.
type While struct {
	Pos
	Cond Expression
	Body Statement
}

func (s *While) Compile(ctx *emit.Context) {
	condPH := emit.NewPlaceholder("while.cond")
	bodyPH := emit.NewPlaceholder("while.body")
	endPH := emit.NewPlaceholder("while.end")

	ctx.Br(condPH.Block())

	ctx.Attach(condPH)
	cv, _ := s.Cond.Compile(ctx)
	cond := ctx.ToBool(cv)
	ctx.Block.NewCondBr(cond, bodyPH.Block(), endPH.Block())

	ctx.PushBreakScope()
	ctx.Attach(bodyPH)
	ctx.PushScope()
	s.Body.Compile(ctx)
	ctx.PopScope()
	ctx.Br(condPH.Block())

	ctx.Attach(endPH)
	ctx.FixBreaks(endPH.Block())
	ctx.PopBreakScope()
}

// RepeatUntil is a post-condition loop: the body always runs once, and
// the loop exits when Cond becomes true (the inverse sense of While).
type RepeatUntil struct {
	Pos
	Body Statement
	Cond Expression
}

func (s *RepeatUntil) Compile(ctx *emit.Context) {
	bodyPH := emit.NewPlaceholder("repeat.body")
	endPH := emit.NewPlaceholder("repeat.end")

	ctx.Br(bodyPH.Block())

	ctx.PushBreakScope()
	ctx.Attach(bodyPH)
	ctx.PushScope()
	s.Body.Compile(ctx)
	cv, _ := s.Cond.Compile(ctx)
	cond := ctx.ToBool(cv)
	ctx.PopScope()
	ctx.Block.NewCondBr(cond, endPH.Block(), bodyPH.Block())

	ctx.Attach(endPH)
	ctx.FixBreaks(endPH.Block())
	ctx.PopBreakScope()
}

// ForDir is the direction a for-loop's counter moves.
type ForDir int

const (
	To ForDir = iota
	Downto
)

// For is a counted loop: Var runs from Start to/downto End inclusive.
type For struct {
	Pos
	Var        string
	Start, End Expression
	Dir        ForDir
	Body       Statement
}

func (s *For) Compile(ctx *emit.Context) {
	ctx.PushScope()
	defer ctx.PopScope()

	startV, _ := s.Start.Compile(ctx)
	slot := ctx.Alloca(s.Var, 0)
	ctx.Block.NewStore(startV, slot)
	ctx.Cur.Insert(s.Var, &scope.Entity{Kind: scope.KindVar, Storage: slot})

	condPH := emit.NewPlaceholder("for.cond")
	bodyPH := emit.NewPlaceholder("for.body")
	endPH := emit.NewPlaceholder("for.end")

	ctx.Br(condPH.Block())

	ctx.Attach(condPH)
	cur := ctx.Block.NewLoad(types.Double, slot)
	endV, _ := s.End.Compile(ctx)
	var cond value.Value
	if s.Dir == To {
		cond = ctx.Block.NewFCmp(leFPred(), cur, endV)
	} else {
		cond = ctx.Block.NewFCmp(geFPred(), cur, endV)
	}
	ctx.Block.NewCondBr(cond, bodyPH.Block(), endPH.Block())

	ctx.PushBreakScope()
	ctx.Attach(bodyPH)
	s.Body.Compile(ctx)
	cur2 := ctx.Block.NewLoad(types.Double, slot)
	var step value.Value
	if s.Dir == To {
		step = ctx.Block.NewFAdd(cur2, emit.OneF())
	} else {
		step = ctx.Block.NewFSub(cur2, emit.OneF())
	}
	ctx.Block.NewStore(step, slot)
	ctx.Br(condPH.Block())

	ctx.Attach(endPH)
	ctx.FixBreaks(endPH.Block())
	ctx.PopBreakScope()
}

// Break jumps to the end of the innermost enclosing loop. Its real
// target isn't known yet at the point it compiles — see
// emit.Context.EmitBreak/FixBreaks for the placeholder-and-patch
// mechanics. The parser reports a Break with no enclosing loop as a
// diagnostic, and a tree whose parse produced diagnostics is never
// compiled, so reaching Compile with no loop in scope is a compiler bug.
type Break struct {
	Pos
}

func (s *Break) Compile(ctx *emit.Context) {
	if !ctx.EmitBreak() {
		panic("ast: Break compiled with no enclosing loop")
	}
}

// Return stores Value into the function's return slot. It does not emit
// the function's `ret` instruction — FunStmt does that exactly once, at
// the very end of the function body, so statements lexically following
// a Return still compile (and still run, should control reach them
// without hitting another Return or Break first).
type Return struct {
	Pos
	Value Expression
}

func (s *Return) Compile(ctx *emit.Context) {
	v, _ := s.Value.Compile(ctx)
	ctx.Block.NewStore(v, ctx.RetSlot)
}

// Param is one declared function parameter. Every parameter is a scalar
// double — the language has no syntax for an array parameter.
type Param struct {
	Name string
}

// FunStmt declares and defines a function: a fresh llir Func, a fresh
// lexical scope seeded with its parameters, its body, and the single
// `ret` that reloads the return slot at the very end. Every function
// takes and returns scalars only.
type FunStmt struct {
	Pos
	Name   string
	Params []Param
	Body   Statement
}

func (s *FunStmt) Compile(ctx *emit.Context) {
	f, ok := ctx.Top.Get(s.Name)
	if !ok {
		panic("ast: FunStmt compiled before its signature was declared: " + s.Name)
	}
	fn, ok := f.Callee.(*ir.Func)
	if !ok {
		panic("ast: FunStmt callee is not a *ir.Func: " + s.Name)
	}

	// Top-level code keeps emitting into the enclosing function (main)
	// once this definition is done.
	savedFunc, savedBlock, savedRet := ctx.Func, ctx.Block, ctx.RetSlot
	ctx.OpenFunc(fn)
	defer func() {
		ctx.PopScope()
		ctx.Func, ctx.Block, ctx.RetSlot = savedFunc, savedBlock, savedRet
	}()

	for i, p := range s.Params {
		addr := ctx.Alloca(p.Name, 0)
		ctx.Block.NewStore(fn.Params[i], addr)
		ctx.Cur.Insert(p.Name, &scope.Entity{Kind: scope.KindVar, Storage: addr})
	}

	ctx.RetSlot = ctx.Alloca("ret", 0)

	s.Body.Compile(ctx)

	loaded := ctx.Block.NewLoad(types.Double, ctx.RetSlot)
	ctx.Block.NewRet(loaded)
}
