package optimize

import (
	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
)

// LineExpansion lowers each block's (now safely ordered) parallel
// assignment lines into sequential assignment lines.
// Lines with no cyclic dependency on one another carry straight across in
// OrderFixing's computed order. A group of lines that mutually depend on
// each other's destinations — the classic `a, b = b, a` swap — cannot be
// expressed as any sequential order of plain assignments without a
// temporary: this pass introduces one (the 2-line case uses the textbook
// single-temp swap; a larger cycle snapshots every member's source into its
// own temporary first, which is always correct though not always minimal).
func LineExpansion(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		b.SeqLines = append(b.SeqLines, expandBlockLines(result.Graph, b.ParallelLines)...)
		b.ParallelLines = nil
	}
	return nil
}

func expandBlockLines(g *decgraph.DecompiledCodeGraph, lines []*decgraph.ParallelAssignmentLine) []*decgraph.SeqAssignmentLine {
	groups, singles := partitionCycles(lines)

	seq := make([]*decgraph.SeqAssignmentLine, 0, len(lines))
	for _, i := range singles {
		seq = append(seq, &decgraph.SeqAssignmentLine{Dst: lines[i].Dst, Src: lines[i].Src})
	}
	for _, group := range groups {
		seq = append(seq, expandCycle(g, lines, group)...)
	}
	return seq
}

// partitionCycles splits lines' indices into those with no cyclic
// dependency (singles, in original order) and groups of mutually dependent
// indices (a cycle's membership is symmetric: i reaches j and j reaches i).
func partitionCycles(lines []*decgraph.ParallelAssignmentLine) (groups [][]int, singles []int) {
	n := len(lines)
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
		for j := range lines {
			if dependsOn(lines[i], lines[j]) {
				reach[i][j] = true
			}
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}

	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		var group []int
		for j := i; j < n; j++ {
			if !seen[j] && reach[i][j] && reach[j][i] {
				group = append(group, j)
			}
		}
		if len(group) > 1 {
			for _, j := range group {
				seen[j] = true
			}
			groups = append(groups, group)
			continue
		}
		seen[i] = true
		singles = append(singles, i)
	}
	return groups, singles
}

func expandCycle(g *decgraph.DecompiledCodeGraph, lines []*decgraph.ParallelAssignmentLine, group []int) []*decgraph.SeqAssignmentLine {
	if len(group) == 2 {
		a, b := lines[group[0]], lines[group[1]]
		temp := g.NewLocalVariable(a.Dst.Sym.SymbolSize(), "swap_tmp")
		tempLeaf := exprtree.NewSymbolLeaf(temp)
		// b.Src must still be evaluated before a.Dst is overwritten, since
		// b.Src may itself read a — only the last write can safely consume a
		// value that's already been clobbered (here, via tempLeaf).
		return []*decgraph.SeqAssignmentLine{
			{Dst: tempLeaf, Src: a.Src},
			{Dst: b.Dst, Src: b.Src},
			{Dst: a.Dst, Src: tempLeaf},
		}
	}

	// General N-way cycle: snapshot every member's source (all still valid,
	// since no member of the group has been assigned yet) before assigning
	// any of their destinations.
	temps := make([]*exprtree.SymbolLeaf, len(group))
	seq := make([]*decgraph.SeqAssignmentLine, 0, len(group)*2)
	for n, idx := range group {
		line := lines[idx]
		temp := g.NewLocalVariable(line.Dst.Sym.SymbolSize(), "expand_tmp")
		temps[n] = exprtree.NewSymbolLeaf(temp)
		seq = append(seq, &decgraph.SeqAssignmentLine{Dst: temps[n], Src: line.Src})
	}
	for n, idx := range group {
		seq = append(seq, &decgraph.SeqAssignmentLine{Dst: lines[idx].Dst, Src: temps[n]})
	}
	return seq
}
