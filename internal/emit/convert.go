package emit

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// ToBool narrows a double (the language's only scalar value shape) to an
// i1 for use as a branch condition, by comparing against 0.0.
func (c *Context) ToBool(v value.Value) value.Value {
	return c.Block.NewFCmp(enum.FPredONE, v, zeroF)
}

// ToDouble widens an i1 back to the language's double representation,
// the way a boolean expression's result is stored back into a variable.
func (c *Context) ToDouble(v value.Value) value.Value {
	return c.Block.NewSelect(v, oneF, zeroF)
}

// Alloca allocates stack storage for a scalar or a fixed-size array of n
// doubles (n == 0 means scalar) in the function's entry block, the way a
// single-pass emitter keeps every alloca visible to mem2reg regardless of
// the lexical depth the declaration appeared at.
func (c *Context) Alloca(name string, n int) value.Value {
	entry := c.Func.Blocks[0]
	var typ types.Type = types.Double
	if n > 0 {
		typ = types.NewArray(uint64(n), types.Double)
	}
	a := entry.NewAlloca(typ)
	a.SetName(name)
	return a
}

// NextTemp returns a fresh, unique temporary name for intermediate
// values that need one.
func (c *Context) NextTemp(prefix string) string {
	c.RetNum++
	return fmt.Sprintf("%s.%d", prefix, c.RetNum)
}

// NestedArrayType builds the nested array type a multi-dimensional
// declaration needs, right-to-left over dims: the last dimension becomes
// the innermost array, each dimension before it wraps one more level
// around that.
func NestedArrayType(dims []int) types.Type {
	var t types.Type = types.Double
	for i := len(dims) - 1; i >= 0; i-- {
		t = types.NewArray(uint64(dims[i]), t)
	}
	return t
}

// AllocaDims allocates stack storage for an array of the given
// dimensions (outermost first) in the function's entry block.
func (c *Context) AllocaDims(name string, dims []int) value.Value {
	entry := c.Func.Blocks[0]
	a := entry.NewAlloca(NestedArrayType(dims))
	a.SetName(name)
	return a
}

// memcpyIntrinsic lazily declares the llvm.memcpy intrinsic used to blit
// whole arrays, so every Store in the module shares one declaration.
func (c *Context) memcpyIntrinsic() *ir.Func {
	if c.memcpyFn != nil {
		return c.memcpyFn
	}
	i8ptr := types.NewPointer(types.I8)
	fn := c.Module.NewFunc("llvm.memcpy.p0.p0.i64", types.Void,
		ir.NewParam("", i8ptr), ir.NewParam("", i8ptr),
		ir.NewParam("", types.I64), ir.NewParam("", types.I1))
	c.memcpyFn = fn
	return fn
}

// Memcpy blits byteCount bytes from src to dst, bitcasting both to i8*
// first (the shape every array alloca and global needs to reach the
// intrinsic's signature regardless of its own nested element type).
func (c *Context) Memcpy(dst, src value.Value, byteCount int64) {
	i8ptr := types.NewPointer(types.I8)
	dstI8 := c.Block.NewBitCast(dst, i8ptr)
	srcI8 := c.Block.NewBitCast(src, i8ptr)
	c.Block.NewCall(c.memcpyIntrinsic(), dstI8, srcI8,
		constant.NewInt(types.I64, byteCount), constant.NewBool(false))
}
