package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/fixture"
)

func newGraph(t *testing.T) *decgraph.DecompiledCodeGraph {
	t.Helper()
	fx := fixture.Fun("entry", fixture.Bloc("entry", fixture.Ret()))
	return decgraph.New(fx.Func)
}

func TestExpandBlockLinesSwapsTwoCycle(t *testing.T) {
	g := newGraph(t)
	a := g.NewLocalVariable(8, "a")
	b := g.NewLocalVariable(8, "b")
	aLeaf, bLeaf := exprtree.NewSymbolLeaf(a), exprtree.NewSymbolLeaf(b)

	// a, b = b, a
	lines := []*decgraph.ParallelAssignmentLine{
		{Dst: aLeaf, Src: bLeaf},
		{Dst: bLeaf, Src: aLeaf},
	}

	seq := expandBlockLines(g, lines)
	require.Len(t, seq, 3)

	// the textbook single-temp swap: tmp=a's-source, b=b's-source (still
	// safe to read 'a' here since a.Dst hasn't been written yet), a=tmp.
	assert.Same(t, bLeaf, seq[0].Src)
	assert.Same(t, bLeaf, seq[1].Dst)
	assert.Same(t, aLeaf, seq[1].Src)
	assert.Same(t, aLeaf, seq[2].Dst)
	assert.Equal(t, seq[0].Dst, seq[2].Src)
}

func TestExpandBlockLinesPassesThroughAcyclicLines(t *testing.T) {
	g := newGraph(t)
	a := g.NewLocalVariable(8, "a")
	b := g.NewLocalVariable(8, "b")
	aLeaf := exprtree.NewSymbolLeaf(a)

	// b := a (no cycle): should carry straight across untouched.
	lines := []*decgraph.ParallelAssignmentLine{
		{Dst: exprtree.NewSymbolLeaf(b), Src: aLeaf},
	}
	seq := expandBlockLines(g, lines)
	require.Len(t, seq, 1)
	assert.Same(t, aLeaf, seq[0].Src)
}

func TestExpandBlockLinesThreeWayCycle(t *testing.T) {
	g := newGraph(t)
	a := g.NewLocalVariable(8, "a")
	b := g.NewLocalVariable(8, "b")
	c := g.NewLocalVariable(8, "c")
	aLeaf, bLeaf, cLeaf := exprtree.NewSymbolLeaf(a), exprtree.NewSymbolLeaf(b), exprtree.NewSymbolLeaf(c)

	// a, b, c = b, c, a
	lines := []*decgraph.ParallelAssignmentLine{
		{Dst: aLeaf, Src: bLeaf},
		{Dst: bLeaf, Src: cLeaf},
		{Dst: cLeaf, Src: aLeaf},
	}
	seq := expandBlockLines(g, lines)
	// 3 snapshot-into-temp lines plus 3 temp-to-destination lines
	require.Len(t, seq, 6)
	for _, line := range seq[:3] {
		assert.Contains(t, []exprtree.Node{bLeaf, cLeaf, aLeaf}, line.Src)
	}
}
