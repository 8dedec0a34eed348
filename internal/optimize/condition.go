package optimize

import (
	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ConditionBlockOptimization folds a chain of single-successor conditionals
// sharing the same "taken" target into one compound boolean condition
// — `if (a) goto L; else if (b) goto L; else ...` collapses
// to `if (a || b) goto L; else ...`, provided the intermediate block has no
// other predecessor (so folding it away doesn't change anyone else's flow).
func ConditionBlockOptimization(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		foldConditionChain(b)
	}
	return nil
}

func foldConditionChain(b *decgraph.DecBlock) {
	for {
		if b.Condition == nil {
			return
		}
		near := b.NextNearBlock()
		if near == nil || near.Condition == nil || near == b {
			return
		}
		if len(near.Predecessors()) != 1 {
			return
		}
		if b.NextFarBlock() != near.NextFarBlock() {
			return
		}
		b.Condition = exprtree.NewOperationalNode(pcode.OpBoolOr, b.Condition, near.Condition, 1)
		b.SetNextNearBlock(near.NextNearBlock())
	}
}
