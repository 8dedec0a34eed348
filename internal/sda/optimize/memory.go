// Package optimize implements SDA-aware cleanup passes that only make sense
// once symbolization (package sda) has run: memory-alias deduplication and
// a second, symbol-aware round of useless-line removal.
package optimize

import (
	"fmt"

	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
)

// DedupMemorySymbols unifies every SdaMemSymbolLeaf reachable in the graph
// that names the same symbol at the same offset into one shared node
// instance: two LOADs of the same
// stack slot recovered from different blocks are, after this pass, the
// identical Node — so a later common-subexpression pass (or just a human
// reading two lines) sees them as manifestly the same value, not two
// structurally-equal-but-distinct trees that merely hash the same.
func DedupMemorySymbols(result *decompiler.Result) {
	canon := map[string]*exprtree.SdaMemSymbolLeaf{}

	// visit returns the node to keep at root: a root that is itself a
	// memory leaf has no parent for Substitute to rewrite, so the caller
	// stores the canonical leaf in its place.
	visit := func(root exprtree.Node) exprtree.Node {
		walkMemLeaves(root, func(leaf *exprtree.SdaMemSymbolLeaf) {
			key := memKey(leaf)
			if existing, ok := canon[key]; ok {
				if existing != leaf {
					exprtree.Substitute(leaf, existing)
				}
				return
			}
			canon[key] = leaf
		})
		if leaf, ok := root.(*exprtree.SdaMemSymbolLeaf); ok {
			return canon[memKey(leaf)]
		}
		return root
	}

	for _, b := range result.Graph.Blocks() {
		for _, line := range b.SeqLines {
			line.Src = visit(line.Src)
		}
		for _, eff := range b.EffectLines {
			eff.Node = visit(eff.Node)
		}
		if b.Condition != nil {
			b.Condition = visit(b.Condition)
		}
	}
}

func memKey(leaf *exprtree.SdaMemSymbolLeaf) string {
	return fmt.Sprintf("%s@%d+%d/%d/%t", leaf.Symbol.Name, leaf.Symbol.StackOff, leaf.Offset, leaf.SizeBytes, leaf.IsAddrGetting)
}

func walkMemLeaves(n exprtree.Node, fn func(*exprtree.SdaMemSymbolLeaf)) {
	if n == nil {
		return
	}
	if leaf, ok := n.(*exprtree.SdaMemSymbolLeaf); ok {
		fn(leaf)
		return
	}
	for _, c := range n.Children() {
		walkMemLeaves(c, fn)
	}
}
