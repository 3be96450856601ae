package runtime

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"

	"github.com/harashimahashi/ilc/internal/scope"
)

func TestInstallBindsPrintAndReadAsBuiltins(t *testing.T) {
	m := ir.NewModule()
	top := scope.New()
	Install(m, top)

	printEnt, ok := top.Get("print")
	if !ok || printEnt.Kind != scope.KindBuiltin {
		t.Fatal("print must be installed as a builtin entity")
	}
	readEnt, ok := top.Get("read")
	if !ok || readEnt.Kind != scope.KindBuiltin {
		t.Fatal("read must be installed as a builtin entity")
	}
}

func TestInstallDeclaresPrintfAndScanfExterns(t *testing.T) {
	m := ir.NewModule()
	Install(m, scope.New())

	ir := m.String()
	if !strings.Contains(ir, "declare i32 @printf") {
		t.Fatalf("expected a printf declaration:\n%s", ir)
	}
	if !strings.Contains(ir, "declare i32 @scanf") {
		t.Fatalf("expected a scanf declaration:\n%s", ir)
	}
	if !strings.Contains(ir, "define double @print") {
		t.Fatalf("expected a print wrapper definition:\n%s", ir)
	}
	if !strings.Contains(ir, "define double @read") {
		t.Fatalf("expected a read wrapper definition:\n%s", ir)
	}
	if !strings.Contains(ir, "%lf") {
		t.Fatalf("expected print's format string to use the spec's \"%%lf\" conversion, got:\n%s", ir)
	}
}

func TestNewMainSignature(t *testing.T) {
	m := ir.NewModule()
	fn := NewMain(m)
	if fn.Sig.RetType.String() != "i32" {
		t.Fatalf("expected main to return i32, got %s", fn.Sig.RetType)
	}
	if len(fn.Sig.Params) != 0 {
		t.Fatal("expected main to take no parameters")
	}
}
