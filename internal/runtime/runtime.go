// Package runtime installs the handful of entities every compiled
// program gets for free: the printf/scanf C library declarations, the
// print/read wrapper functions built on top of them, and the module's
// main entry point.
//
// print and read are ordinary identifiers pre-bound in the root scope,
// not lexer keywords — user code is free to shadow either one by
// declaring a local of the same name, the same as any other identifier.
package runtime

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/harashimahashi/ilc/internal/scope"
)

const (
	printFormat = "%lf\n\x00"
	scanFormat  = "%lf\x00"
)

// Install declares printf/scanf, builds the print/read wrappers around
// them, and binds print and read into the root scope top.
func Install(m *ir.Module, top *scope.Scope) {
	printf := m.NewFunc("printf", types.I32, ir.NewParam("", types.NewPointer(types.I8)))
	printf.Sig.Variadic = true

	scanf := m.NewFunc("scanf", types.I32, ir.NewParam("", types.NewPointer(types.I8)))
	scanf.Sig.Variadic = true

	printFmt := newStringGlobal(m, ".print.fmt", printFormat)
	scanFmt := newStringGlobal(m, ".scan.fmt", scanFormat)

	print := buildPrint(m, printf, printFmt)
	read := buildRead(m, scanf, scanFmt)

	top.Insert("print", &scope.Entity{Kind: scope.KindBuiltin, Callee: print, ParamCount: 1})
	top.Insert("read", &scope.Entity{Kind: scope.KindBuiltin, Callee: read, ParamCount: 0})
}

// buildPrint defines `double print(double)`: it forwards its argument to
// printf with the shared "%lf\n" format string and always returns 0.0, so
// it composes with the language's expression-oriented call sites the
// same way a user function would.
func buildPrint(m *ir.Module, printf *ir.Func, fmtStr *ir.Global) *ir.Func {
	param := ir.NewParam("v", types.Double)
	fn := m.NewFunc("print", types.Double, param)
	entry := fn.NewBlock("entry")

	fmtPtr := entry.NewGetElementPtr(fmtStr.ContentType, fmtStr,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	entry.NewCall(printf, fmtPtr, param)
	entry.NewRet(constant.NewFloat(types.Double, 0))
	return fn
}

// buildRead defines `double read()`: it scans one double through scanf
// into a stack slot and returns it.
func buildRead(m *ir.Module, scanf *ir.Func, fmtStr *ir.Global) *ir.Func {
	fn := m.NewFunc("read", types.Double)
	entry := fn.NewBlock("entry")

	slot := entry.NewAlloca(types.Double)
	fmtPtr := entry.NewGetElementPtr(fmtStr.ContentType, fmtStr,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	entry.NewCall(scanf, fmtPtr, slot)
	v := entry.NewLoad(types.Double, slot)
	entry.NewRet(v)
	return fn
}

func newStringGlobal(m *ir.Module, name, s string) *ir.Global {
	data := constant.NewCharArrayFromString(s)
	g := m.NewGlobalDef(name, data)
	g.Linkage = enum.LinkagePrivate
	g.Immutable = true
	g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	return g
}

// NewMain creates `i32 main()`, the single entry point a compiled
// program's top-level statements are emitted into.
func NewMain(m *ir.Module) *ir.Func {
	return m.NewFunc("main", types.I32)
}
