// Package compiler wires the scanner, parser, and emitter into the
// single end-to-end pipeline cmd/ilc drives: source text in, textual
// LLVM IR out (or a set of diagnostics, never both).
package compiler

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/harashimahashi/ilc/internal/diag"
	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/lexer"
	"github.com/harashimahashi/ilc/internal/parser"
	"github.com/harashimahashi/ilc/internal/runtime"
	"github.com/harashimahashi/ilc/internal/scope"
)

// Compile lowers src (whose name is used only as the module's source
// filename, for IR readability) to textual LLVM IR. A Sink with any
// diagnostics in it means output is empty: per the error-handling
// contract, a compile that produced any diagnostic never also produces
// IR.
func Compile(src, filename string) (output string, dg *diag.Sink, err error) {
	dg = diag.NewSink()
	l := lexer.New(src)

	ctx := emit.NewContext()
	ctx.Module.SourceFilename = filename
	ctx.Dg = dg

	runtime.Install(ctx.Module, ctx.Top)

	mainFn := runtime.NewMain(ctx.Module)
	ctx.Top.Insert("main", &scope.Entity{Kind: scope.KindFun, Callee: mainFn})
	ctx.OpenFunc(mainFn)

	prog, perr := parser.Parse(l, ctx, dg)
	if perr != nil {
		// "unexpected end of program" / recursion-limit: the only two
		// conditions that abort the whole parse rather than recording a
		// diagnostic and recovering.
		dg.Errorf(0, "%s", perr.Error())
		return "", dg, nil
	}
	if dg.Count() > 0 {
		// The tree may name undeclared identifiers or hold an unenclosed
		// break; it is not emitted.
		return "", dg, nil
	}

	prog.Compile(ctx)

	if ctx.Block.Term == nil {
		ctx.Block.NewRet(constant.NewInt(types.I32, 0))
	}

	if dg.Count() > 0 {
		return "", dg, nil
	}
	return ctx.Module.String(), dg, nil
}

// Diagnostics renders a Sink's contents the way cmd/ilc prints them to
// stderr: one "error:<line>: <message>" line per incident, followed by
// the aggregate count.
func Diagnostics(dg *diag.Sink) []string {
	lines := dg.Lines()
	if dg.Count() > 0 {
		lines = append(lines, dg.Summary())
	}
	return lines
}
