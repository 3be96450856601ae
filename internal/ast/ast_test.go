package ast

import (
	"strings"
	"testing"

	"github.com/harashimahashi/ilc/internal/diag"
	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/scope"
	"github.com/llir/llvm/ir/types"
)

// newFuncCtx builds a context with a function open for Compile methods
// under test to emit into, mirroring what FunStmt.Compile / the
// compiler's top-level main setup do before any statement is compiled.
func newFuncCtx(t *testing.T) *emit.Context {
	t.Helper()
	ctx := emit.NewContext()
	ctx.Dg = diag.NewSink()
	fn := ctx.Module.NewFunc("f", types.Double)
	ctx.OpenFunc(fn)
	return ctx
}

func TestArithCompile(t *testing.T) {
	ctx := newFuncCtx(t)
	e := &Arith{Op: Add, Left: &FConstant{Val: 1}, Right: &FConstant{Val: 2}}
	v, isArray := e.Compile(ctx)
	if isArray {
		t.Fatal("arithmetic must yield a scalar")
	}
	if v == nil {
		t.Fatal("expected a value")
	}
	if !strings.Contains(ctx.Module.String(), "fadd") {
		t.Fatalf("expected an fadd instruction:\n%s", ctx.Module.String())
	}
}

func TestLetScalarBindsFreshAlloca(t *testing.T) {
	ctx := newFuncCtx(t)
	let := &Let{Name: "x", Value: &FConstant{Val: 5}}
	let.Compile(ctx)

	ent, ok := ctx.Cur.Get("x")
	if !ok {
		t.Fatal("Let must insert the new name into scope")
	}
	if ent.IsArray {
		t.Fatal("a scalar initializer must not produce an array-shaped entity")
	}
}

func TestLetArrayLiteralAllocatesAndCopies(t *testing.T) {
	ctx := newFuncCtx(t)
	lit := &ArrayConstant{Elements: []Expression{&FConstant{Val: 1}, &FConstant{Val: 2}}, Dims: []int{2}}
	let := &Let{Name: "xs", Dims: []int{2}, Value: lit}
	let.Compile(ctx)

	ent, ok := ctx.Cur.Get("xs")
	if !ok || !ent.IsArray || ent.ArrayLen != 2 {
		t.Fatalf("expected an array entity of length 2, got %+v", ent)
	}
	if dg := ctx.Dg; dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
}

func TestLetArrayAliasCopiesIntoFreshStorage(t *testing.T) {
	ctx := newFuncCtx(t)
	lit := &ArrayConstant{Name: "xs", Elements: []Expression{&FConstant{Val: 1}, &FConstant{Val: 2}}, Dims: []int{2}}
	(&Let{Name: "xs", Dims: []int{2}, Value: lit}).Compile(ctx)
	xsEnt, _ := ctx.Cur.Get("xs")

	alias := &Let{Name: "ys", Dims: []int{2}, Value: &Load{Target: &Id{Name: "xs"}}}
	alias.Compile(ctx)

	ysEnt, ok := ctx.Cur.Get("ys")
	if !ok || !ysEnt.IsArray || ysEnt.ArrayLen != 2 {
		t.Fatalf("expected ys to be a length-2 array entity, got %+v", ysEnt)
	}
	if ysEnt.Storage == xsEnt.Storage {
		t.Fatal("aliasing an existing array must copy into distinct storage, not share it")
	}
}

func TestStoreWholeArrayCopies(t *testing.T) {
	ctx := newFuncCtx(t)
	lit := &ArrayConstant{Name: "xs", Elements: []Expression{&FConstant{Val: 1}, &FConstant{Val: 2}}, Dims: []int{2}}
	(&Let{Name: "xs", Dims: []int{2}, Value: lit}).Compile(ctx)
	lit2 := &ArrayConstant{Name: "ys", Elements: []Expression{&FConstant{Val: 3}, &FConstant{Val: 4}}, Dims: []int{2}}
	(&Let{Name: "ys", Dims: []int{2}, Value: lit2}).Compile(ctx)

	store := &Store{
		Target: &Access{Target: &Id{Name: "ys"}},
		Value:  &Load{Target: &Id{Name: "xs"}},
	}
	store.Compile(ctx)

	ir := ctx.Module.String()
	if !strings.Contains(ir, "llvm.memcpy") {
		t.Fatalf("expected a memcpy intrinsic call for a whole-array copy:\n%s", ir)
	}
}

func TestBreakPanicsWithoutEnclosingLoop(t *testing.T) {
	ctx := newFuncCtx(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected Break to panic with no break target in scope")
		}
	}()
	(&Break{}).Compile(ctx)
}

func TestWhileWithBreakStructure(t *testing.T) {
	ctx := newFuncCtx(t)
	(&Let{Name: "i", Value: &FConstant{Val: 0}}).Compile(ctx)

	loop := &While{
		Cond: &Bool{Op: Lt, Left: &Load{Target: &Id{Name: "i"}}, Right: &FConstant{Val: 10}},
		Body: &StmtSeq{Stmts: []Statement{&Break{}}},
	}
	loop.Compile(ctx)

	ir := ctx.Module.String()
	for _, want := range []string{"while.cond", "while.body", "while.end"} {
		if !strings.Contains(ir, want) {
			t.Fatalf("expected block %q in:\n%s", want, ir)
		}
	}
}

// TestWhileBreakDiscardsStatementsAfterIt compiles a statement after a
// break in the same block and checks the resulting IR never stores into
// "j" — llir/llvm prints a block's instructions ahead of its terminator
// regardless of emission order, so without the fix-up pass this store
// would silently run before the break instead of being unreachable.
func TestWhileBreakDiscardsStatementsAfterIt(t *testing.T) {
	ctx := newFuncCtx(t)
	(&Let{Name: "i", Value: &FConstant{Val: 0}}).Compile(ctx)
	(&Let{Name: "j", Value: &FConstant{Val: 0}}).Compile(ctx)

	loop := &While{
		Cond: &Bool{Op: Lt, Left: &Load{Target: &Id{Name: "i"}}, Right: &FConstant{Val: 10}},
		Body: &StmtSeq{Stmts: []Statement{
			&Break{},
			&Store{Target: &Access{Target: &Id{Name: "j"}}, Value: &FConstant{Val: 99}},
		}},
	}
	loop.Compile(ctx)

	ir := ctx.Module.String()
	if strings.Contains(ir, "double 9.9") || strings.Contains(ir, "double 99") {
		t.Fatalf("store after break must not appear in the emitted IR:\n%s", ir)
	}
	for _, want := range []string{"while.cond", "while.body", "while.end"} {
		if !strings.Contains(ir, want) {
			t.Fatalf("expected block %q in:\n%s", want, ir)
		}
	}
}

func TestFunStmtEmitsExactlyOneRet(t *testing.T) {
	ctx := emit.NewContext()
	ctx.Dg = diag.NewSink()
	fn := ctx.Module.NewFunc("square", types.Double)
	ctx.Top.Insert("square", &scope.Entity{Kind: scope.KindFun, Callee: fn})

	body := &StmtSeq{Stmts: []Statement{
		&Return{Value: &FConstant{Val: 1}},
		&ExprStmt{Expr: &FConstant{Val: 0}},
	}}
	fs := &FunStmt{Name: "square", Body: body}
	fs.Compile(ctx)

	retCount := strings.Count(ctx.Module.String(), "ret double")
	if retCount != 1 {
		t.Fatalf("expected exactly one ret double, found %d in:\n%s", retCount, ctx.Module.String())
	}
}
