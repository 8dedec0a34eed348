package decgraph

import (
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ParallelAssignmentLine is one of the "conceptually simultaneous"
// assignments produced at a join: Dst receives Src's value as of block
// entry, regardless of the order these lines are listed in.
type ParallelAssignmentLine struct {
	Dst *exprtree.SymbolLeaf
	Src exprtree.Node

	// Offset and Orig are filled in by the debug-annotation pass, for the
	// debugger offset-lookup hook (debug.go).
	Offset pcode.ComplexOffset
	Orig   *pcode.OrigInstruction
}

// EffectKind classifies a statement with no assignment target — a memory
// write or a call whose result (if any) is unused. These never qualify as
// "useless" under dead-assignment removal, since they may be visible
// outside the function.
type EffectKind int

const (
	EffectStore EffectKind = iota
	EffectCall
	EffectReturn
)

// EffectLine is a side-effecting statement that is not an assignment: a
// STORE, a CALL/CALLIND whose return value nothing reads, or a RETURN.
type EffectLine struct {
	Kind EffectKind
	Node exprtree.Node
}

// SeqAssignmentLine is a legal, order-dependent assignment, the shape
// parallel lines are lowered into by line expansion.
type SeqAssignmentLine struct {
	Dst *exprtree.SymbolLeaf
	Src exprtree.Node

	Offset pcode.ComplexOffset
	Orig   *pcode.OrigInstruction
}

// DecBlock is the high-level counterpart of one PCodeBlock: its
// instructions have been interpreted into assignment lines and an optional
// terminating condition.
type DecBlock struct {
	Name string

	PCodeBlock *pcode.PCodeBlock

	ParallelLines []*ParallelAssignmentLine
	SeqLines      []*SeqAssignmentLine
	EffectLines   []*EffectLine
	Condition     exprtree.Node // nil for a block that falls through unconditionally

	nextNear *DecBlock
	nextFar  *DecBlock
	preds    []*DecBlock

	Level  int
	Height int

	// IsEnd marks a block with no successors — the high-level analog of a
	// PCodeBlock having neither next_near nor next_far.
	IsEnd bool
}

func newDecBlock(pb *pcode.PCodeBlock) *DecBlock {
	return &DecBlock{PCodeBlock: pb, Level: pb.Level, IsEnd: len(pb.NextBlocks()) == 0}
}

func (b *DecBlock) NextNearBlock() *DecBlock { return b.nextNear }
func (b *DecBlock) NextFarBlock() *DecBlock  { return b.nextFar }
func (b *DecBlock) Predecessors() []*DecBlock { return b.preds }

func (b *DecBlock) SetNextNearBlock(next *DecBlock) {
	b.nextNear = next
	if next != nil {
		next.addPred(b)
	}
}

func (b *DecBlock) SetNextFarBlock(next *DecBlock) {
	b.nextFar = next
	if next != nil {
		next.addPred(b)
	}
}

func (b *DecBlock) addPred(from *DecBlock) {
	for _, p := range b.preds {
		if p == from {
			return
		}
	}
	b.preds = append(b.preds, from)
}

// RefHighBlocksCount is the number of predecessors reachable without
// crossing a back edge — the count the primary decompiler's admission rule
// waits for before first interpreting this block.
func (b *DecBlock) RefHighBlocksCount() int {
	n := 0
	for _, p := range b.preds {
		if p.Level <= b.Level {
			n++
		}
	}
	return n
}

// Successors returns the (up to two) successor blocks, near first.
func (b *DecBlock) Successors() []*DecBlock {
	var next []*DecBlock
	if b.nextNear != nil {
		next = append(next, b.nextNear)
	}
	if b.nextFar != nil {
		next = append(next, b.nextFar)
	}
	return next
}

// ClearCode resets a block's assignment lines and condition, done before
// re-interpreting it.
func (b *DecBlock) ClearCode() {
	b.ParallelLines = nil
	b.SeqLines = nil
	b.EffectLines = nil
	b.Condition = nil
}

// AddEffectLine appends a side-effecting, non-assignment statement.
func (b *DecBlock) AddEffectLine(kind EffectKind, node exprtree.Node) {
	b.EffectLines = append(b.EffectLines, &EffectLine{Kind: kind, Node: node})
}

// AddParallelLine appends a parallel assignment line.
func (b *DecBlock) AddParallelLine(dst *exprtree.SymbolLeaf, src exprtree.Node) {
	b.ParallelLines = append(b.ParallelLines, &ParallelAssignmentLine{Dst: dst, Src: src})
}

// AddSeqLine appends a sequential assignment line, used by line expansion.
func (b *DecBlock) AddSeqLine(dst *exprtree.SymbolLeaf, src exprtree.Node) {
	b.SeqLines = append(b.SeqLines, &SeqAssignmentLine{Dst: dst, Src: src})
}

// PrependSeqLine inserts a sequential line before all others, used by line
// expansion to introduce a temporary's initialization.
func (b *DecBlock) PrependSeqLine(dst *exprtree.SymbolLeaf, src exprtree.Node) {
	b.SeqLines = append([]*SeqAssignmentLine{{Dst: dst, Src: src}}, b.SeqLines...)
}
