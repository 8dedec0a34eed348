package pcode

import "sort"

// BuildGraph splits a flat, already-decoded instruction stream into blocks
// and wires function graphs: blocks are split at every known function
// entry, every branch target, and
// the instruction after any BRANCH/CBRANCH/RETURN or a non-falling-through
// CALL. instrs must be sorted by Offset; funcEntries are byte offsets of
// known function starts.
func BuildGraph(instrs []*Instruction, funcEntries []uint64) *ImagePCodeGraph {
	img := NewImagePCodeGraph()
	if len(instrs) == 0 {
		return img
	}

	splits := map[uint64]struct{}{}
	for _, e := range funcEntries {
		splits[e] = struct{}{}
	}
	splits[instrs[0].Offset.ByteOffset] = struct{}{}

	for idx, instr := range instrs {
		if instr.Op.IsBranch() {
			if instr.Target != nil {
				splits[*instr.Target] = struct{}{}
			}
			// the instruction after a terminator starts a new block,
			// provided control can still reach it (fall-through) or there
			// is a next instruction at all (dead code after RETURN still
			// gets its own block so offset lookups stay well-defined). A CALL
			// that falls through does not end its block.
			if idx+1 < len(instrs) && !(instr.IsCall() && instr.Op.FallsThrough()) {
				splits[instrs[idx+1].Offset.ByteOffset] = struct{}{}
			}
		}
	}

	var boundaries []uint64
	for off := range splits {
		boundaries = append(boundaries, off)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	blockByOffset := map[uint64]*PCodeBlock{}
	var order []*PCodeBlock
	bi := 0
	for i, off := range boundaries {
		max := ^uint64(0)
		if i+1 < len(boundaries) {
			max = boundaries[i+1]
		}
		b := img.CreateBlock(off, max)
		blockByOffset[off] = b
		order = append(order, b)
		bi++
	}

	blockOf := func(off uint64) *PCodeBlock {
		// boundaries is sorted; find the block whose [min,max) contains off.
		i := sort.Search(len(boundaries), func(i int) bool { return boundaries[i] > off })
		idx := i - 1
		if idx < 0 {
			idx = 0
		}
		return order[idx]
	}

	for _, instr := range instrs {
		b := blockOf(instr.Offset.ByteOffset)
		b.AddInstruction(instr)
		if instr.Orig != nil {
			b.SetMaxOffset(maxU64(b.MaxOffset(), instr.Orig.End()))
		}
	}

	for i, b := range order {
		last := b.LastInstruction()
		if last == nil {
			if i+1 < len(order) {
				b.SetNextNearBlock(order[i+1])
			}
			continue
		}
		switch {
		case last.Op == OpCBranch:
			if last.Target != nil {
				if far, ok := blockByOffset[*last.Target]; ok {
					b.SetNextFarBlock(far)
				}
			}
			if i+1 < len(order) {
				b.SetNextNearBlock(order[i+1])
			}
		case last.Op == OpBranch:
			if last.Target != nil {
				if near, ok := blockByOffset[*last.Target]; ok {
					b.SetNextNearBlock(near)
				}
			}
		case last.Op == OpReturn, last.Op == OpBranchInd:
			// no statically known successor
		case last.IsCall():
			if i+1 < len(order) {
				b.SetNextNearBlock(order[i+1])
			}
		default:
			if i+1 < len(order) {
				b.SetNextNearBlock(order[i+1])
			}
		}
	}

	funcOf := map[uint64]*FunctionPCodeGraph{}
	for _, entry := range funcEntries {
		start, ok := blockByOffset[entry]
		if !ok {
			continue
		}
		f := img.CreateFunctionGraph()
		f.SetStartBlock(start)
		funcOf[entry] = f
	}
	assignBlocksToFunctions(order, funcOf, funcEntries)
	computeLevels(img)
	classifyCalls(img, funcOf)
	img.FillHeadFuncGraphs()
	return img
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// assignBlocksToFunctions walks forward from each function's start block
// along near/far edges, stopping at another function's entry, and records
// membership — a function's blocks are exactly those reachable without
// crossing into a sibling function.
func assignBlocksToFunctions(order []*PCodeBlock, funcOf map[uint64]*FunctionPCodeGraph, funcEntries []uint64) {
	entrySet := map[uint64]struct{}{}
	for _, e := range funcEntries {
		entrySet[e] = struct{}{}
	}
	for _, f := range funcOf {
		visited := map[*PCodeBlock]bool{}
		var walk func(b *PCodeBlock)
		walk = func(b *PCodeBlock) {
			if visited[b] {
				return
			}
			visited[b] = true
			f.AddBlock(b)
			for _, next := range b.NextBlocks() {
				if _, isEntry := entrySet[next.minOffset]; isEntry && next != f.startBlock {
					continue
				}
				walk(next)
			}
		}
		walk(f.startBlock)
	}
}

// computeLevels assigns every function graph in img its block levels.
func computeLevels(img *ImagePCodeGraph) {
	for _, f := range img.funcGraphs {
		ComputeLevels(f)
	}
}

// ComputeLevels assigns each of f's blocks its BFS distance from the
// function's start block, visiting each block exactly once: the first edge
// to reach a block fixes its level, so any later edge into it from a block
// at an equal or higher level is — by construction — a back edge. Exported
// so callers that build a FunctionPCodeGraph directly (rather than through
// BuildGraph's offset-splitting) can still get correct levels, the way a
// hand-built test fixture does.
func ComputeLevels(f *FunctionPCodeGraph) {
	if f.startBlock == nil {
		return
	}
	f.startBlock.Level = 0
	visited := map[*PCodeBlock]bool{f.startBlock: true}
	queue := []*PCodeBlock{f.startBlock}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, next := range b.NextBlocks() {
			if next.Func != f || visited[next] {
				continue
			}
			visited[next] = true
			next.Level = b.Level + 1
			queue = append(queue, next)
		}
	}
}
