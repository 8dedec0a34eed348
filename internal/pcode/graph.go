package pcode

import (
	"sort"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
)

// PCodeBlock is a maximal non-branching run of PCode instructions: a basic
// block. next_far is populated only for a CBRANCH and is its taken target;
// next_near is the fall-through (or the sole successor of an unconditional
// BRANCH/CALL-that-falls-through).
type PCodeBlock struct {
	ID int

	minOffset uint64
	maxOffset uint64

	instructions []*Instruction

	nextNear *PCodeBlock
	nextFar  *PCodeBlock

	refBlocks []*PCodeBlock

	// Level is the longest back-edge-free distance from the function's
	// start block, used to detect loop (back) edges: an edge s->t is a
	// back edge when t.Level <= s.Level.
	Level int

	Func *FunctionPCodeGraph
}

func newPCodeBlock(id int, min, max uint64) *PCodeBlock {
	return &PCodeBlock{ID: id, minOffset: min, maxOffset: max}
}

func (b *PCodeBlock) MinOffset() uint64 { return b.minOffset }
func (b *PCodeBlock) MaxOffset() uint64 { return b.maxOffset }

func (b *PCodeBlock) SetMaxOffset(offset uint64) { b.maxOffset = offset }

func (b *PCodeBlock) Instructions() []*Instruction { return b.instructions }

func (b *PCodeBlock) AddInstruction(instr *Instruction) {
	b.instructions = append(b.instructions, instr)
}

func (b *PCodeBlock) LastInstruction() *Instruction {
	if len(b.instructions) == 0 {
		return nil
	}
	return b.instructions[len(b.instructions)-1]
}

func (b *PCodeBlock) NextNearBlock() *PCodeBlock { return b.nextNear }
func (b *PCodeBlock) NextFarBlock() *PCodeBlock  { return b.nextFar }

// NextBlocks returns the (up to two) successors, near first.
func (b *PCodeBlock) NextBlocks() []*PCodeBlock {
	var next []*PCodeBlock
	if b.nextNear != nil {
		next = append(next, b.nextNear)
	}
	if b.nextFar != nil {
		next = append(next, b.nextFar)
	}
	return next
}

func (b *PCodeBlock) RefBlocks() []*PCodeBlock { return b.refBlocks }

func (b *PCodeBlock) SetNextNearBlock(next *PCodeBlock) {
	b.nextNear = next
	next.addRef(b)
}

func (b *PCodeBlock) SetNextFarBlock(next *PCodeBlock) {
	b.nextFar = next
	next.addRef(b)
}

func (b *PCodeBlock) addRef(from *PCodeBlock) {
	for _, r := range b.refBlocks {
		if r == from {
			return
		}
	}
	b.refBlocks = append(b.refBlocks, from)
}

func (b *PCodeBlock) RemoveRefBlock(block *PCodeBlock) {
	out := b.refBlocks[:0]
	for _, r := range b.refBlocks {
		if r != block {
			out = append(out, r)
		}
	}
	b.refBlocks = out
}

// Disconnect removes b from the successor/predecessor links of its
// neighbors without deleting b itself.
func (b *PCodeBlock) Disconnect() {
	if b.nextNear != nil {
		b.nextNear.RemoveRefBlock(b)
		b.nextNear = nil
	}
	if b.nextFar != nil {
		b.nextFar.RemoveRefBlock(b)
		b.nextFar = nil
	}
	for _, ref := range b.refBlocks {
		if ref.nextNear == b {
			ref.nextNear = nil
		}
		if ref.nextFar == b {
			ref.nextFar = nil
		}
	}
	b.refBlocks = nil
}

// FunctionPCodeGraph is the set of PCodeBlocks reachable from one function
// entry, plus its classified call edges and its constant-value table.
type FunctionPCodeGraph struct {
	Image      *ImagePCodeGraph
	startBlock *PCodeBlock
	blocks     []*PCodeBlock

	refFuncCalls    map[*FunctionPCodeGraph]struct{}
	nonVirtFuncCalls map[*FunctionPCodeGraph]struct{}
	virtFuncCalls    map[*FunctionPCodeGraph]struct{}

	// ConstValues holds, for instructions whose result was resolvable by
	// simple constant folding, the concrete integer value — used only to
	// resolve indirect call targets.
	ConstValues map[*Instruction]int64

	inboundCalls int
}

func newFunctionPCodeGraph(img *ImagePCodeGraph) *FunctionPCodeGraph {
	return &FunctionPCodeGraph{
		Image:            img,
		refFuncCalls:     map[*FunctionPCodeGraph]struct{}{},
		nonVirtFuncCalls: map[*FunctionPCodeGraph]struct{}{},
		virtFuncCalls:    map[*FunctionPCodeGraph]struct{}{},
		ConstValues:      map[*Instruction]int64{},
	}
}

func (f *FunctionPCodeGraph) SetStartBlock(b *PCodeBlock) {
	f.startBlock = b
	b.Func = f
}

func (f *FunctionPCodeGraph) StartBlock() *PCodeBlock { return f.startBlock }

func (f *FunctionPCodeGraph) AddBlock(b *PCodeBlock) {
	b.Func = f
	f.blocks = append(f.blocks, b)
}

func (f *FunctionPCodeGraph) Blocks() []*PCodeBlock { return f.blocks }

// IsHead reports whether this function has no known caller within the
// image.
func (f *FunctionPCodeGraph) IsHead() bool { return f.inboundCalls == 0 }

func (f *FunctionPCodeGraph) RefFuncCalls() map[*FunctionPCodeGraph]struct{} {
	return f.refFuncCalls
}

func (f *FunctionPCodeGraph) NonVirtFuncCalls() map[*FunctionPCodeGraph]struct{} {
	return f.nonVirtFuncCalls
}

func (f *FunctionPCodeGraph) VirtFuncCalls() map[*FunctionPCodeGraph]struct{} {
	return f.virtFuncCalls
}

func (f *FunctionPCodeGraph) addNonVirtFuncCall(callee *FunctionPCodeGraph) {
	f.nonVirtFuncCalls[callee] = struct{}{}
	f.refFuncCalls[callee] = struct{}{}
	callee.inboundCalls++
}

func (f *FunctionPCodeGraph) addVirtFuncCall(callee *FunctionPCodeGraph) {
	f.virtFuncCalls[callee] = struct{}{}
	f.refFuncCalls[callee] = struct{}{}
	callee.inboundCalls++
}

// ImagePCodeGraph owns all blocks (keyed by minimum byte offset) and all
// function graphs for one program image.
type ImagePCodeGraph struct {
	blocks         *swiss.Map[uint64, *PCodeBlock]
	funcGraphs     []*FunctionPCodeGraph
	headFuncGraphs []*FunctionPCodeGraph
	nextBlockID    int
}

// NewImagePCodeGraph creates an empty image graph.
func NewImagePCodeGraph() *ImagePCodeGraph {
	return &ImagePCodeGraph{blocks: swiss.NewMap[uint64, *PCodeBlock](64)}
}

func (img *ImagePCodeGraph) CreateFunctionGraph() *FunctionPCodeGraph {
	f := newFunctionPCodeGraph(img)
	img.funcGraphs = append(img.funcGraphs, f)
	return f
}

func (img *ImagePCodeGraph) CreateBlock(min, max uint64) *PCodeBlock {
	b := newPCodeBlock(img.nextBlockID, min, max)
	img.nextBlockID++
	img.blocks.Put(min, b)
	return b
}

func (img *ImagePCodeGraph) FunctionGraphs() []*FunctionPCodeGraph { return img.funcGraphs }

func (img *ImagePCodeGraph) HeadFuncGraphs() []*FunctionPCodeGraph { return img.headFuncGraphs }

// GetBlockAtOffset looks a block up by offset. With halfOpen true, offset
// only needs to fall within [min, max) of some block; with halfOpen false,
// offset must equal a block's min offset exactly.
func (img *ImagePCodeGraph) GetBlockAtOffset(offset uint64, halfOpen bool) (*PCodeBlock, error) {
	if b, ok := img.blocks.Get(offset); ok {
		return b, nil
	}
	if !halfOpen {
		return nil, errors.Errorf("pcode: no block starts at offset %#x", offset)
	}
	var found *PCodeBlock
	img.blocks.Iter(func(_ uint64, b *PCodeBlock) bool {
		if offset >= b.minOffset && offset < b.maxOffset {
			found = b
			return true
		}
		return false
	})
	if found == nil {
		return nil, errors.Errorf("pcode: no block contains offset %#x", offset)
	}
	return found, nil
}

// GetFuncGraphAt finds the function graph owning the block that
// GetBlockAtOffset(offset, halfOpen) returns — any block of the function,
// not only its start block.
func (img *ImagePCodeGraph) GetFuncGraphAt(offset uint64, halfOpen bool) (*FunctionPCodeGraph, error) {
	b, err := img.GetBlockAtOffset(offset, halfOpen)
	if err != nil {
		return nil, err
	}
	if b.Func == nil {
		return nil, errors.Errorf("pcode: block at %#x has no owning function graph", offset)
	}
	return b.Func, nil
}

// FillHeadFuncGraphs enumerates all function graphs and selects those not
// targeted by any call edge.
func (img *ImagePCodeGraph) FillHeadFuncGraphs() {
	img.headFuncGraphs = img.headFuncGraphs[:0]
	for _, f := range img.funcGraphs {
		if f.IsHead() {
			img.headFuncGraphs = append(img.headFuncGraphs, f)
		}
	}
	sort.Slice(img.headFuncGraphs, func(i, j int) bool {
		return img.headFuncGraphs[i].startBlock.minOffset < img.headFuncGraphs[j].startBlock.minOffset
	})
}
