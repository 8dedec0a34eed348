package optimize

import (
	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
)

// OrderFixing computes a safe sequential order for each block's parallel
// assignment lines: every source reads the values of block entry, so if
// line A's source expression reads line B's destination symbol, A must be
// evaluated before B overwrites it. Lines that form a true cycle (a mutual
// dependency no ordering can satisfy) are left at the end, still parallel,
// for LineExpansion's temporary-introduction algorithm to break.
func OrderFixing(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		b.ParallelLines = reorderParallelLines(b.ParallelLines)
	}
	return nil
}

// dependsOn reports whether a's source reads the symbol b's destination
// writes, so a must be evaluated before b overwrites it.
func dependsOn(a, b *decgraph.ParallelAssignmentLine) bool {
	return a != b && containsSymbol(a.Src, b.Dst.Sym)
}

func containsSymbol(n exprtree.Node, sym exprtree.Symbol) bool {
	if n == nil {
		return false
	}
	if leaf, ok := n.(*exprtree.SymbolLeaf); ok && leaf.Sym.SymbolID() == sym.SymbolID() {
		return true
	}
	for _, c := range n.Children() {
		if containsSymbol(c, sym) {
			return true
		}
	}
	return false
}

// reorderParallelLines performs a Kahn's-algorithm topological sort over the
// dependsOn relation. Lines on a cycle can never become ready; they are
// appended, in their original relative order, once every acyclic line has
// been placed.
func reorderParallelLines(lines []*decgraph.ParallelAssignmentLine) []*decgraph.ParallelAssignmentLine {
	n := len(lines)
	if n < 2 {
		return lines
	}

	// indegree[i] = number of lines that must run before lines[i].
	indegree := make([]int, n)
	for i, a := range lines {
		for j, b := range lines {
			if i != j && dependsOn(b, a) {
				indegree[i]++
			}
		}
	}

	placed := make([]bool, n)
	ordered := make([]*decgraph.ParallelAssignmentLine, 0, n)
	for len(ordered) < n {
		progressed := false
		for i, line := range lines {
			if placed[i] || indegree[i] > 0 {
				continue
			}
			ordered = append(ordered, line)
			placed[i] = true
			progressed = true
			for k, other := range lines {
				if !placed[k] && dependsOn(line, other) {
					indegree[k]--
				}
			}
		}
		if !progressed {
			// Remaining lines form one or more cycles: append them in their
			// original order and stop.
			for i, line := range lines {
				if !placed[i] {
					ordered = append(ordered, line)
				}
			}
			break
		}
	}
	return ordered
}
