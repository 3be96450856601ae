package parser

import (
	"testing"

	"github.com/harashimahashi/ilc/internal/diag"
	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/lexer"
	"github.com/harashimahashi/ilc/internal/runtime"
	"github.com/harashimahashi/ilc/internal/scope"
)

func newCtx() *emit.Context {
	ctx := emit.NewContext()
	ctx.Dg = diag.NewSink()
	runtime.Install(ctx.Module, ctx.Top)
	main := runtime.NewMain(ctx.Module)
	ctx.Top.Insert("main", &scope.Entity{Kind: scope.KindFun, Callee: main})
	ctx.OpenFunc(main)
	return ctx
}

func parse(t *testing.T, src string) (*emit.Context, *diag.Sink) {
	t.Helper()
	ctx := newCtx()
	dg := diag.NewSink()
	l := lexer.New(src)
	if _, err := Parse(l, ctx, dg); err != nil {
		t.Fatalf("unexpected abort: %v", err)
	}
	return ctx, dg
}

func TestParseLetDeclaresScalar(t *testing.T) {
	ctx, dg := parse(t, "let x = 1.0\n")
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
	ent, ok := ctx.Cur.Get("x")
	if !ok || ent.IsArray {
		t.Fatalf("expected a scalar entity for x, got %+v (ok=%v)", ent, ok)
	}
}

func TestParseLetWithoutInitializerIsStorageOnly(t *testing.T) {
	ctx, dg := parse(t, "let x\n")
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
	if _, ok := ctx.Cur.Get("x"); !ok {
		t.Fatal("expected x to be declared even without an initializer")
	}
}

func TestParseUndefinedNameRecordsDiagnostic(t *testing.T) {
	_, dg := parse(t, "let x = y\n")
	if dg.Count() == 0 {
		t.Fatal("expected a diagnostic for an undefined name")
	}
	if dg.Lines()[0] != "error:1: using of undeclared 'y'" {
		t.Fatalf("unexpected diagnostic: %v", dg.Lines())
	}
}

func TestParseRedeclarationRecordsDiagnostic(t *testing.T) {
	_, dg := parse(t, "let x = 1.0\nlet x = 2.0\n")
	if dg.Count() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", dg.Lines())
	}
}

func TestParseFunRequiresReturnStatement(t *testing.T) {
	src := "fun f()\n\tlet x = 1.0\n"
	_, dg := parse(t, src)
	if dg.Count() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", dg.Lines())
	}
}

func TestParseFunDeclaresScalarParams(t *testing.T) {
	src := "fun sum3(a, b, c)\n\treturn a+b+c\n"
	ctx, dg := parse(t, src)
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
	ent, ok := ctx.Top.Get("sum3")
	if !ok {
		t.Fatal("expected sum3 to be declared in the top scope")
	}
	if ent.ParamCount != 3 {
		t.Fatalf("expected ParamCount 3, got %d", ent.ParamCount)
	}
}

func TestParseIfElse(t *testing.T) {
	src := "let x = 1.0\nif x > 0.0\n\tprint(x)\nelse\n\tprint(0.0)\n"
	_, dg := parse(t, src)
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
}

func TestParseForLoopBindsLoopVariable(t *testing.T) {
	src := "for let i = 1 to 3\n\tprint(i)\n"
	_, dg := parse(t, src)
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
}

func TestParseArrayDeclaration(t *testing.T) {
	src := "let xs[4]\n"
	ctx, dg := parse(t, src)
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
	ent, ok := ctx.Cur.Get("xs")
	if !ok || !ent.IsArray || ent.ArrayLen != 4 {
		t.Fatalf("expected a length-4 array entity, got %+v", ent)
	}
}

func TestParseBreakOutsideLoopRecordsDiagnostic(t *testing.T) {
	_, dg := parse(t, "break\n")
	if dg.Count() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", dg.Lines())
	}
}

func TestParseBreakInsideLoopIsFine(t *testing.T) {
	src := "while 1.0\n\tbreak\n"
	_, dg := parse(t, src)
	if dg.Count() != 0 {
		t.Fatalf("unexpected diagnostics: %v", dg.Lines())
	}
}
