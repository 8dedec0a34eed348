package optimize

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
)

// ReconcileDeadLines re-runs dead-line elimination after symbolization has
// rewritten sources in place (package sda's Build/PropagateTypes). A line
// optimize.UselessLineRemoval kept because its destination fed an opaque,
// unresolved read can turn out, once that read resolves to a named symbol
// nothing else in the function touches, to be dead after all — so this
// pass repeats the same mark-and-sweep optimize.UselessLineRemoval runs,
// scoped to this package so it can be sequenced strictly after SDA without
// optimize depending on sda.
func ReconcileDeadLines(result *decompiler.Result) {
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
			return
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
