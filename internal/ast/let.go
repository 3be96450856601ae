package ast

import (
	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/scope"
)

// Let declares a new name, allocating its storage, and — when Value is
// not nil — assigns Value into it, the same as a Store would. A bare
// `let x` or `let xs[2]` with no initializer is storage-only: Value is
// nil and nothing further is emitted.
type Let struct {
	Pos
	Name  string
	Dims  []int // nil for a scalar declaration
	Value Expression
}

func (s *Let) Compile(ctx *emit.Context) {
	if len(s.Dims) == 0 {
		addr := ctx.Alloca(s.Name, 0)
		ctx.Cur.Insert(s.Name, &scope.Entity{Kind: scope.KindVar, Storage: addr})
		if s.Value == nil {
			return
		}
		v, isArray := s.Value.Compile(ctx)
		if isArray {
			ctx.Dg.Errorf(s.Line(), "incompatible types")
			return
		}
		ctx.Block.NewStore(v, addr)
		return
	}

	if ac, ok := s.Value.(*ArrayConstant); ok {
		ac.Name = s.Name
	}

	addr := ctx.AllocaDims(s.Name, s.Dims)
	total := product(s.Dims)
	ctx.Cur.Insert(s.Name, &scope.Entity{Kind: scope.KindVar, Storage: addr, IsArray: true, ArrayLen: total, Dims: s.Dims})
	if s.Value == nil {
		return
	}

	v, isArray := s.Value.Compile(ctx)
	if !isArray {
		ctx.Dg.Errorf(s.Line(), "incompatible types")
		return
	}
	if n := lengthOf(ctx, s.Value); n != total {
		ctx.Dg.Errorf(s.Line(), "incompatible array types")
		return
	}
	ctx.Memcpy(addr, v, int64(total*8))
}

// lengthOf returns an array-shaped expression's fixed element count. For
// a literal (ArrayCapable) the shape is known on the node itself; for a
// reference to an existing array (a variable read) it comes from that
// binding's scope entity instead.
func lengthOf(ctx *emit.Context, e Expression) int {
	switch v := e.(type) {
	case ArrayCapable:
		return v.ArrayShape().Len
	case *Load:
		if ent, ok := ctx.Cur.Get(v.Target.Name); ok {
			return ent.ArrayLen
		}
	}
	return 0
}
