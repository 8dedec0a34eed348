package sda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/fixture"
	"github.com/gamous/SDA/internal/hostdefault"
	"github.com/gamous/SDA/internal/pcode"
	"github.com/gamous/SDA/internal/sda"
)

func newResult(t *testing.T) *decompiler.Result {
	t.Helper()
	fx := fixture.Fun("entry", fixture.Bloc("entry", fixture.Ret()))
	g := decgraph.New(fx.Func)
	g.AppendBlock(g.BlockFor(fx.Blocks["entry"]))
	return &decompiler.Result{Graph: g}
}

func TestBuildResolvesStackVariableLoad(t *testing.T) {
	result := newResult(t)
	b := result.Graph.Blocks()[0]

	stackReg := pcode.Register{ID: pcode.RegSP, ByteOffset: 0, Size: 8}
	addr := exprtree.NewOperationalNode(pcode.OpIntSub, exprtree.NewRegisterReadLeaf(stackReg), exprtree.NewNumberLeaf(8, 8), 8)
	load := exprtree.NewOperationalNode(pcode.OpLoad, addr, nil, 8)

	dst := result.Graph.NewLocalVariable(8, "")
	b.AddSeqLine(exprtree.NewSymbolLeaf(dst), load)

	ctx := &sda.Context{
		Symbols:  hostdefault.NewSymbolContext(),
		Types:    hostdefault.NewTypeManager(),
		StackReg: pcode.RegSP,
	}

	changed := sda.Build(result, ctx)
	require.True(t, changed)

	memLeaf, ok := b.SeqLines[0].Src.(*exprtree.SdaMemSymbolLeaf)
	require.True(t, ok)
	assert.Equal(t, int64(-8), memLeaf.Symbol.StackOff)
	// the destination local picks up the resolved symbol's name once its
	// source resolves (build.go's renameResolvedLocals).
	assert.Equal(t, memLeaf.Symbol.Name, dst.Name())
}

func TestBuildResolvesGlobalVariableLoad(t *testing.T) {
	result := newResult(t)
	b := result.Graph.Blocks()[0]

	load := exprtree.NewOperationalNode(pcode.OpLoad, exprtree.NewNumberLeaf(0x4010, 8), nil, 4)
	dst := result.Graph.NewLocalVariable(4, "")
	b.AddSeqLine(exprtree.NewSymbolLeaf(dst), load)

	ctx := &sda.Context{
		Symbols: hostdefault.NewSymbolContext(),
		Types:   hostdefault.NewTypeManager(),
	}

	changed := sda.Build(result, ctx)
	require.True(t, changed)

	memLeaf, ok := b.SeqLines[0].Src.(*exprtree.SdaMemSymbolLeaf)
	require.True(t, ok)
	assert.Equal(t, uint64(0x4010), memLeaf.Symbol.GlobalAddr)
}

func TestBuildIsIdempotentOnceResolved(t *testing.T) {
	result := newResult(t)
	b := result.Graph.Blocks()[0]

	load := exprtree.NewOperationalNode(pcode.OpLoad, exprtree.NewNumberLeaf(0x5000, 8), nil, 8)
	dst := result.Graph.NewLocalVariable(8, "")
	b.AddSeqLine(exprtree.NewSymbolLeaf(dst), load)

	ctx := &sda.Context{Symbols: hostdefault.NewSymbolContext(), Types: hostdefault.NewTypeManager()}

	require.True(t, sda.Build(result, ctx))
	assert.False(t, sda.Build(result, ctx))
}
