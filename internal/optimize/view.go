package optimize

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ViewOptimization collapses the SUBPIECE/ZEXT/shift chains the register
// slice algebra (decompiler.RequestRegister) builds when it has to
// reconstruct a register out of several live sub-slices, back into the
// narrowest equivalent view — e.g. `ZEXT_32(SUBPIECE(x,
// 0, 4))` where x is already 4 bytes collapses to plain x.
func ViewOptimization(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		for _, line := range b.ParallelLines {
			line.Src = walkAndRewrite(line.Src, foldView)
		}
		if b.Condition != nil {
			b.Condition = walkAndRewrite(b.Condition, foldView)
		}
	}
	return nil
}

func foldView(n exprtree.Node) exprtree.Node {
	op, ok := n.(*exprtree.OperationalNode)
	if !ok {
		return n
	}
	switch op.Op {
	case pcode.OpIntZext, pcode.OpIntSext:
		if op.Lhs.Size() == op.SizeBytes {
			return op.Lhs
		}
	case pcode.OpIntLeftShift, pcode.OpIntRightShift:
		if amt, ok := op.Rhs.(*exprtree.NumberLeaf); ok && amt.Value == 0 {
			return op.Lhs
		}
	case pcode.OpSubpiece:
		if inner, ok := op.Lhs.(*exprtree.OperationalNode); ok && inner.Op == pcode.OpSubpiece {
			lo, _ := op.Mask.Bytes()
			innerLo, _ := inner.Mask.Bytes()
			combined := pcode.NewBitMask64(lo+innerLo, uint8(op.SizeBytes))
			merged := exprtree.NewOperationalNode(pcode.OpSubpiece, inner.Lhs, nil, op.SizeBytes)
			merged.Mask = combined
			return merged
		}
		if op.Lhs.Size() == op.SizeBytes {
			lo, _ := op.Mask.Bytes()
			if lo == 0 {
				return op.Lhs
			}
		}
	}
	return n
}
