// Package ast defines the tree node family the parser builds and the
// single-pass emitter compiles: every node knows how to lower itself
// into the current function's basic blocks via an *emit.Context.
//
// The language has exactly two value shapes — a scalar double, and a
// fixed-size array of doubles — so Expression.Compile returns both the
// IR value and a flag telling the caller which shape it is, rather than
// modeling a richer type lattice the language doesn't have.
package ast

import (
	"github.com/llir/llvm/ir/value"

	"github.com/harashimahashi/ilc/internal/emit"
)

// Expression is any node that produces a value. Compile returns the IR
// value together with isArray: true when the expression has array
// shape (its Value is a pointer to the backing storage), false for a
// scalar double.
type Expression interface {
	Compile(ctx *emit.Context) (val value.Value, isArray bool)
	Line() int
}

// Statement is any node that performs an action without producing a
// value of its own.
type Statement interface {
	Compile(ctx *emit.Context)
	Line() int
}

// ArrayCapable is implemented by expression nodes that carry a whole
// array's shape on the node itself; ArrayConstant (an array literal) is
// the only one. A read of an array variable takes its shape from the
// variable's scope.Entity instead. It replaces the multiple-inheritance
// "array capability" the source language expressed with a base class:
// here it is a small interface returning an ArrayCap value.
type ArrayCapable interface {
	Expression
	ArrayShape() ArrayCap
}

// ArrayCap describes an array's fixed shape: its declared dimensions
// (outermost first), total flattened element count, and the alignment
// the emitter should request for its backing alloca/global.
type ArrayCap struct {
	Dims  []int
	Len   int
	Align int
}

// Pos is embedded by node types to satisfy Line() without repeating the
// same getter on every node.
type Pos struct{ Ln int }

func (p Pos) Line() int { return p.Ln }
