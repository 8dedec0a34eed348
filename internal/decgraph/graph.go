package decgraph

import (
	"sort"

	"github.com/gamous/SDA/internal/pcode"
)

// DecompiledCodeGraph owns every DecBlock and LocalVariable produced for
// one function's decompilation, plus the mapping back to the PCode graph it
// was built from. It is the arena: nodes attached beneath any block's
// lines live exactly as long as this graph does.
type DecompiledCodeGraph struct {
	FuncGraph *pcode.FunctionPCodeGraph

	blocks   []*DecBlock
	byPCode  map[*pcode.PCodeBlock]*DecBlock

	locals   []*LocalVariable
	nextSym  uint32

	// MayBeImprecise is set when the loop-version fixed point didn't
	// converge within the configured cap.
	MayBeImprecise bool
}

// New creates an empty graph over fg, with one DecBlock per PCodeBlock
// already allocated and linked to mirror the PCode edges. It does not
// itself interpret any instruction.
func New(fg *pcode.FunctionPCodeGraph) *DecompiledCodeGraph {
	g := &DecompiledCodeGraph{FuncGraph: fg, byPCode: map[*pcode.PCodeBlock]*DecBlock{}}
	for _, pb := range fg.Blocks() {
		db := newDecBlock(pb)
		db.Name = blockName(pb)
		g.byPCode[pb] = db
	}
	for _, pb := range fg.Blocks() {
		db := g.byPCode[pb]
		if next := pb.NextNearBlock(); next != nil {
			db.SetNextNearBlock(g.byPCode[next])
		}
		if next := pb.NextFarBlock(); next != nil {
			db.SetNextFarBlock(g.byPCode[next])
		}
	}
	return g
}

func blockName(pb *pcode.PCodeBlock) string {
	const hexDigits = "0123456789abcdef"
	off := pb.MinOffset()
	if off == 0 {
		return "0x0"
	}
	var buf []byte
	for off > 0 {
		buf = append([]byte{hexDigits[off&0xF]}, buf...)
		off >>= 4
	}
	return "0x" + string(buf)
}

// BlockFor returns the DecBlock mirroring pb.
func (g *DecompiledCodeGraph) BlockFor(pb *pcode.PCodeBlock) *DecBlock { return g.byPCode[pb] }

// Blocks returns every block, in the order they were last sorted (by Level
// after SortBlocksByLevel, insertion order otherwise).
func (g *DecompiledCodeGraph) Blocks() []*DecBlock { return g.blocks }

// AppendBlock adds b to the graph's block list.
func (g *DecompiledCodeGraph) AppendBlock(b *DecBlock) { g.blocks = append(g.blocks, b) }

// SortBlocksByLevel orders blocks ascending by Level, the deterministic
// visitation order the pipeline and presentation rely on.
func (g *DecompiledCodeGraph) SortBlocksByLevel() {
	sort.SliceStable(g.blocks, func(i, j int) bool { return g.blocks[i].Level < g.blocks[j].Level })
}

// NewLocalVariable allocates and registers a fresh symbol of the given
// byte size.
func (g *DecompiledCodeGraph) NewLocalVariable(size int, name string) *LocalVariable {
	g.nextSym++
	v := &LocalVariable{id: g.nextSym, size: size, name: name}
	g.locals = append(g.locals, v)
	return v
}

// Locals returns every symbol this graph has allocated.
func (g *DecompiledCodeGraph) Locals() []*LocalVariable { return g.locals }

// AllPCodeBlocksCovered reports whether every PCodeBlock of FuncGraph has a
// corresponding DecBlock.
func (g *DecompiledCodeGraph) AllPCodeBlocksCovered() bool {
	for _, pb := range g.FuncGraph.Blocks() {
		if _, ok := g.byPCode[pb]; !ok {
			return false
		}
	}
	return len(g.byPCode) == len(g.FuncGraph.Blocks())
}
