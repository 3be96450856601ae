package ast

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// constIdx builds an i32 constant for use as a GetElementPtr index.
func constIdx(i int64) value.Value {
	return constant.NewInt(types.I32, i)
}

func leFPred() enum.FPred { return enum.FPredOLE }
func geFPred() enum.FPred { return enum.FPredOGE }

// product returns the total element count of a declared array shape,
// the flattened length nested dimensions multiply out to.
func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
