package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/exprtree"
	sdaoptimize "github.com/gamous/SDA/internal/sda/optimize"
)

func TestReconcileDeadLinesDropsUnreadLocal(t *testing.T) {
	result := oneBlockResult(t)
	b := result.Graph.Blocks()[0]

	dead := result.Graph.NewLocalVariable(8, "dead")
	live := result.Graph.NewLocalVariable(8, "live")

	// dead := 1 (never read)
	b.AddSeqLine(exprtree.NewSymbolLeaf(dead), exprtree.NewNumberLeaf(1, 8))
	// live := 2
	b.AddSeqLine(exprtree.NewSymbolLeaf(live), exprtree.NewNumberLeaf(2, 8))
	// return live (the only read)
	b.AddEffectLine(decgraph.EffectReturn, exprtree.NewSymbolLeaf(live))

	sdaoptimize.ReconcileDeadLines(result)

	require.Len(t, b.SeqLines, 1)
	assert.Equal(t, live.SymbolID(), b.SeqLines[0].Dst.Sym.SymbolID())
}

func TestReconcileDeadLinesConvergesThroughChain(t *testing.T) {
	result := oneBlockResult(t)
	b := result.Graph.Blocks()[0]

	a := result.Graph.NewLocalVariable(8, "a")
	chainedDead := result.Graph.NewLocalVariable(8, "chained")

	// chainedDead := 1; a := chainedDead (a itself never read either)
	b.AddSeqLine(exprtree.NewSymbolLeaf(chainedDead), exprtree.NewNumberLeaf(1, 8))
	b.AddSeqLine(exprtree.NewSymbolLeaf(a), exprtree.NewSymbolLeaf(chainedDead))

	sdaoptimize.ReconcileDeadLines(result)

	assert.Empty(t, b.SeqLines)
}
