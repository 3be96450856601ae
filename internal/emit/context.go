// Package emit holds the single-pass SSA emission context: a moving
// insertion point over an in-memory LLVM module, built with
// github.com/llir/llvm and eventually printed as textual IR for the
// external optimizer/assembler to consume.
package emit

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/harashimahashi/ilc/internal/diag"
	"github.com/harashimahashi/ilc/internal/scope"
)

// Placeholder is a basic block created ahead of the code that will fill
// it in — the fix-up pattern loop and break statements rely on: the
// block exists and can be branched to before its contents are known, but
// it is a distinct typed handle from a block already wired into a
// function's body, so a stray direct use can't be mistaken for the real
// thing until Context.Attach has appended it.
type Placeholder struct {
	block *ir.Block
}

// Block exposes the underlying basic block, once the caller is ready to
// branch to it or attach it to the current function.
func (p *Placeholder) Block() *ir.Block { return p.block }

// NewPlaceholder creates a detached block named name. It is not yet part
// of any function's block list.
func NewPlaceholder(name string) *Placeholder {
	return &Placeholder{block: ir.NewBlock(name)}
}

// Context is the emitter's working state for one compilation unit. Every
// Expression/Statement Compile method receives a *Context and reads or
// advances ctx.Block, the current insertion point.
type Context struct {
	Module *ir.Module

	Top *scope.Scope // root scope: print, read, and top-level functions
	Cur *scope.Scope // current lexical scope

	Func  *ir.Func  // function currently being emitted into
	Block *ir.Block // current insertion block

	// Dg receives type-taxonomy and other emission-time diagnostics
	// ("invalid operand type", "unknown function referenced", and the
	// like) found only once a node's operand shapes are known.
	Dg *diag.Sink

	// RetSlot is the alloca FunStmt stores into; the single `ret`
	// instruction for the function is emitted once, at the very end of
	// FunStmt, not by Return itself.
	RetSlot value.Value

	// breakScopes is a stack of per-loop fix-up lists: one entry per
	// loop currently being compiled, each collecting the Break branches
	// emitted inside it so the loop's Compile method can retarget them
	// to its real exit block once that block exists. See EmitBreak/
	// FixBreaks.
	breakScopes [][]*ir.TermBr

	// ErrNum is not updated by emission: diagnostics are counted by Dg,
	// and that count is what suppresses output. RetNum is the counter
	// NextTemp advances to make unique temporary names.
	ErrNum int
	RetNum int

	// Depth is not updated by the parser, which tracks its nesting depth
	// against MaxDepth in its own counter.
	Depth int

	// ArrayID feeds the fresh `array<N>` global name every materialized
	// array constant gets.
	ArrayID int

	// memcpyFn is the lazily-declared llvm.memcpy intrinsic backing
	// whole-array Store; registered on first use, shared by every blit
	// in the module.
	memcpyFn *ir.Func
}

// NextArrayID returns a fresh integer for naming a materialized array
// constant's backing global (`array0`, `array1`, ...).
func (c *Context) NextArrayID() int {
	id := c.ArrayID
	c.ArrayID++
	return id
}

// MaxDepth is the recursion-depth guard: crossing it aborts the parse
// with "reached recursion limits" rather than overflowing the Go stack
// on adversarial or accidentally-deep input.
const MaxDepth = 1000

// NewContext creates a fresh emission context over a new module with an
// empty root scope; the caller installs the runtime's pre-bound entities
// into it (see internal/runtime.Install).
func NewContext() *Context {
	top := scope.New()
	return &Context{
		Module: ir.NewModule(),
		Top:    top,
		Cur:    top,
	}
}

// OpenFunc starts emission of a new function: it becomes both c.Func and
// the owner of c.Block, and pushes a fresh lexical scope for its
// parameters and body.
func (c *Context) OpenFunc(f *ir.Func) *ir.Block {
	c.Func = f
	c.Block = f.NewBlock("entry")
	c.Cur = c.Cur.Nested()
	return c.Block
}

// PushScope enters a nested lexical scope (an if/while/for body, etc.)
// without starting a new function.
func (c *Context) PushScope() { c.Cur = c.Cur.Nested() }

// PopScope leaves the current lexical scope, returning to its parent.
func (c *Context) PopScope() { c.Cur = c.Cur.Outer() }

// Attach appends a placeholder block to the current function's block
// list and makes it the current insertion point — the other half of the
// fix-up pattern: allocate the placeholder early (NewPlaceholder), branch
// to it from wherever needed, then Attach it once its predecessors are
// known and start filling it in.
func (c *Context) Attach(ph *Placeholder) {
	ph.block.Parent = c.Func
	c.Func.Blocks = append(c.Func.Blocks, ph.block)
	c.Block = ph.block
}

// Br emits an unconditional branch from the current block to target and
// does not move the insertion point — callers that are about to Attach a
// new block call this first, then Attach.
func (c *Context) Br(target *ir.Block) {
	c.Block.NewBr(target)
}

// BrPlaceholder is the Placeholder-typed overload of Br: branching to a
// block that has not been Attach-ed yet is exactly the situation the
// placeholder type exists to make safe.
func (c *Context) BrPlaceholder(ph *Placeholder) {
	c.Block.NewBr(ph.block)
}

// PushBreakScope opens a new fix-up list for the loop about to be
// compiled; every Break found inside its body is recorded here until
// FixBreaks retargets them.
func (c *Context) PushBreakScope() {
	c.breakScopes = append(c.breakScopes, nil)
}

// PopBreakScope discards the innermost loop's fix-up bookkeeping. Call
// only after FixBreaks has retargeted everything in it.
func (c *Context) PopBreakScope() {
	c.breakScopes = c.breakScopes[:len(c.breakScopes)-1]
}

// EmitBreak terminates the current block with a branch to a fresh,
// never-attached placeholder and queues that branch for the innermost
// loop's fix-up pass to retarget once its real exit block is attached.
// Diverting the insertion point to the placeholder, rather than leaving
// it on the now-terminated block, is what keeps any statement lexically
// following the break from being appended after its terminator — such a
// statement instead compiles harmlessly into a block that is never added
// to the function and so never printed. Reports false if there is no
// enclosing loop to break out of.
func (c *Context) EmitBreak() bool {
	if len(c.breakScopes) == 0 {
		return false
	}
	i := len(c.breakScopes) - 1
	discard := NewPlaceholder("break.unreachable")
	br := c.Block.NewBr(discard.block)
	c.breakScopes[i] = append(c.breakScopes[i], br)
	c.Block = discard.block
	return true
}

// FixBreaks retargets every Break branch recorded for the innermost loop
// to target, its real exit block — the fix-up pass the placeholder-
// branch pattern requires: Break never knows the loop's exit block at
// the point it compiles, so it defers to this pass instead of guessing.
func (c *Context) FixBreaks(target *ir.Block) {
	i := len(c.breakScopes) - 1
	for _, br := range c.breakScopes[i] {
		br.Target = target
	}
}

// zero and one are the canonical double-precision constants used
// throughout boolean-to-double and double-to-boolean conversions.
var (
	zeroF = constant.NewFloat(types.Double, 0)
	oneF  = constant.NewFloat(types.Double, 1)
)

// ZeroF and OneF expose the shared 0.0/1.0 double constants.
func ZeroF() *constant.Float { return zeroF }
func OneF() *constant.Float  { return oneF }
