package decgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/fixture"
	"github.com/gamous/SDA/internal/pcode"
)

// diamond builds head -> {left, right} -> join -> Ret, an if/else that
// rejoins, the shape RefHighBlocksCount and height need two distinct
// predecessor counts to exercise meaningfully.
func diamond() *fixture.Fixture {
	return fixture.Fun("head",
		fixture.Bloc("head", fixture.If("left", "right"),
			fixture.Instr(pcode.OpCBranch, nil, fixture.Reg(pcode.RegAX, 0, 8), nil)),
		fixture.Bloc("left", fixture.Goto("join"),
			fixture.Instr(pcode.OpCopy, fixture.Reg(pcode.RegAX, 0, 8), fixture.Const(1, 8), nil)),
		fixture.Bloc("right", fixture.Goto("join"),
			fixture.Instr(pcode.OpCopy, fixture.Reg(pcode.RegAX, 0, 8), fixture.Const(2, 8), nil)),
		fixture.Bloc("join", fixture.Ret(),
			fixture.Instr(pcode.OpReturn, nil, fixture.Reg(pcode.RegAX, 0, 8), nil)),
	)
}

func TestNewMirrorsEveryPCodeBlockAndEdge(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)

	require.True(t, g.AllPCodeBlocksCovered())

	head := g.BlockFor(fx.Blocks["head"])
	left := g.BlockFor(fx.Blocks["left"])
	right := g.BlockFor(fx.Blocks["right"])
	join := g.BlockFor(fx.Blocks["join"])

	require.NotNil(t, head)
	assert.Same(t, left, head.NextNearBlock())
	assert.Same(t, right, head.NextFarBlock())
	assert.Same(t, join, left.NextNearBlock())
	assert.Same(t, join, right.NextNearBlock())

	assert.ElementsMatch(t, []*decgraph.DecBlock{head}, left.Predecessors())
	assert.ElementsMatch(t, []*decgraph.DecBlock{left, right}, join.Predecessors())
	assert.True(t, join.IsEnd)
	assert.False(t, head.IsEnd)
}

func TestRefHighBlocksCountIgnoresBackEdges(t *testing.T) {
	// head -> body -> {tail, done}; tail loops back to body. body's two
	// predecessors are head (level 0, forward) and tail (level 2, a back
	// edge since tail.Level > body.Level means the edge closes a loop) —
	// only the forward one should count toward the admission threshold.
	fx := fixture.Fun("head",
		fixture.Bloc("head", fixture.Goto("body"),
			fixture.Instr(pcode.OpCopy, fixture.Reg(pcode.RegAX, 0, 8), fixture.Const(0, 8), nil)),
		fixture.Bloc("body", fixture.If("tail", "done"),
			fixture.Instr(pcode.OpCBranch, nil, fixture.Reg(pcode.RegAX, 0, 8), nil)),
		fixture.Bloc("tail", fixture.Goto("body"),
			fixture.Instr(pcode.OpCopy, fixture.Reg(pcode.RegAX, 0, 8), fixture.Const(1, 8), nil)),
		fixture.Bloc("done", fixture.Ret(),
			fixture.Instr(pcode.OpReturn, nil, nil, nil)),
	)
	g := decgraph.New(fx.Func)
	body := g.BlockFor(fx.Blocks["body"])

	assert.Equal(t, 1, body.RefHighBlocksCount())
}

func TestAppendBlockAndSortBlocksByLevel(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)

	// append out of level order, then ask the graph to fix it
	join := g.BlockFor(fx.Blocks["join"])
	head := g.BlockFor(fx.Blocks["head"])
	left := g.BlockFor(fx.Blocks["left"])
	right := g.BlockFor(fx.Blocks["right"])
	g.AppendBlock(join)
	g.AppendBlock(head)
	g.AppendBlock(right)
	g.AppendBlock(left)

	g.SortBlocksByLevel()
	levels := make([]int, len(g.Blocks()))
	for i, b := range g.Blocks() {
		levels[i] = b.Level
	}
	require.Len(t, levels, 4)
	for i := 1; i < len(levels); i++ {
		assert.LessOrEqual(t, levels[i-1], levels[i])
	}
	assert.Same(t, head, g.Blocks()[0])
}

func TestNewLocalVariableAssignsDistinctIDs(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)

	a := g.NewLocalVariable(8, "a")
	b := g.NewLocalVariable(4, "b")

	assert.NotEqual(t, a.SymbolID(), b.SymbolID())
	assert.Equal(t, 8, a.SymbolSize())
	assert.Equal(t, "b", b.Name())
	assert.ElementsMatch(t, []*decgraph.LocalVariable{a, b}, g.Locals())
}

func TestClearCodeResetsLinesAndCondition(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)
	b := g.BlockFor(fx.Blocks["join"])

	b.AddEffectLine(decgraph.EffectReturn, nil)
	require.Len(t, b.EffectLines, 1)

	b.ClearCode()
	assert.Empty(t, b.EffectLines)
	assert.Empty(t, b.SeqLines)
	assert.Empty(t, b.ParallelLines)
	assert.Nil(t, b.Condition)
}

func TestCalculateHeightForDecBlocksEndsAtZero(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)
	for _, pb := range fx.Func.Blocks() {
		g.AppendBlock(g.BlockFor(pb))
	}

	decgraph.CalculateHeightForDecBlocks(g)

	join := g.BlockFor(fx.Blocks["join"])
	head := g.BlockFor(fx.Blocks["head"])
	left := g.BlockFor(fx.Blocks["left"])

	assert.Equal(t, 0, join.Height)
	assert.Equal(t, 1, left.Height)
	assert.Equal(t, 2, head.Height)
}

func TestFindBlockTopNodeAtOffset(t *testing.T) {
	fx := diamond()
	g := decgraph.New(fx.Func)

	headPB := fx.Blocks["head"]
	db, ok := decgraph.FindBlockTopNodeAtOffset(g, headPB.Instructions()[0].Offset)
	require.True(t, ok)
	assert.Same(t, g.BlockFor(headPB), db)

	_, ok = decgraph.FindBlockTopNodeAtOffset(g, pcode.ComplexOffset{ByteOffset: 0xffffffff})
	assert.False(t, ok)
}

func TestStackPointerValueAtOffsetTracksLiteralAdjustments(t *testing.T) {
	sp := fixture.Reg(pcode.RegSP, 0, 8)
	fx := fixture.Fun("entry",
		fixture.Bloc("entry", fixture.Ret(),
			fixture.Instr(pcode.OpIntSub, sp, sp, fixture.Const(0x20, 8)),
			fixture.Instr(pcode.OpReturn, nil, nil, nil),
		),
	)
	g := decgraph.New(fx.Func)

	entry := fx.Blocks["entry"]
	retOffset := entry.Instructions()[1].Offset

	delta, ok := decgraph.StackPointerValueAtOffset(g, pcode.RegSP, retOffset)
	require.True(t, ok)
	assert.Equal(t, int64(-0x20), delta)
}
