package optimize

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
)

// UselessLineRemoval deletes an assignment line whose destination symbol is
// read nowhere in the function — no other line's source, no block
// condition, no effect statement. EffectLines (stores,
// calls, returns) are never removed: they may be visible outside the
// function regardless of whether anything local reads their value.
//
// Because removing a dead line can make the line that fed it dead too, this
// iterates mark-and-sweep to a fixed point.
func UselessLineRemoval(result *decompiler.Result) error {
	for {
		used := map[uint32]bool{}
		for _, b := range result.Graph.Blocks() {
			for _, line := range b.SeqLines {
				markUsed(used, line.Src)
			}
			if b.Condition != nil {
				markUsed(used, b.Condition)
			}
			for _, eff := range b.EffectLines {
				markUsed(used, eff.Node)
			}
		}

		removedAny := false
		for _, b := range result.Graph.Blocks() {
			kept := b.SeqLines[:0:0]
			for _, line := range b.SeqLines {
				if used[line.Dst.Sym.SymbolID()] {
					kept = append(kept, line)
				} else {
					removedAny = true
				}
			}
			b.SeqLines = kept
		}
		if !removedAny {
			return nil
		}
	}
}

func markUsed(used map[uint32]bool, n exprtree.Node) {
	if n == nil {
		return
	}
	if leaf, ok := n.(*exprtree.SymbolLeaf); ok {
		used[leaf.Sym.SymbolID()] = true
	}
	for _, c := range n.Children() {
		markUsed(used, c)
	}
}
