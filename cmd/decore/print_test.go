package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/fixture"
	"github.com/gamous/SDA/internal/pcode"
)

func TestPrintExprRendersEachLeafAndOperationalKind(t *testing.T) {
	assert.Equal(t, "<nil>", printExpr(nil))
	assert.Equal(t, "0x5", printExpr(exprtree.NewNumberLeaf(5, 8)))

	reg := pcode.Register{ID: pcode.RegAX, ByteOffset: 0, Size: 8}
	assert.Contains(t, printExpr(exprtree.NewRegisterReadLeaf(reg)), "reg")

	add := exprtree.NewOperationalNode(pcode.OpIntAdd, exprtree.NewNumberLeaf(1, 8), exprtree.NewNumberLeaf(2, 8), 8)
	assert.Equal(t, "(INT_ADD 0x1 0x2)", printExpr(add))

	neg := exprtree.NewOperationalNode(pcode.OpIntNegate, exprtree.NewNumberLeaf(1, 8), nil, 8)
	assert.Equal(t, "(INT_NEGATE 0x1)", printExpr(neg))

	cond := exprtree.NewConditionNode(exprtree.NewNumberLeaf(1, 1), true)
	assert.Equal(t, "!0x1", printExpr(cond))

	union := exprtree.NewUnionNode(exprtree.NewNumberLeaf(1, 8), exprtree.NewNumberLeaf(2, 8))
	assert.Equal(t, "phi(0x1, 0x2)", printExpr(union))

	mirror := exprtree.NewMirrorNode(exprtree.NewNumberLeaf(9, 8))
	assert.Equal(t, "0x9", printExpr(mirror))
}

func TestPrintExprRendersAmbiguousCallWithSuffix(t *testing.T) {
	call := exprtree.NewFunctionCallNode(exprtree.NewNumberLeaf(0x401000, 8), nil, nil, 8)
	call.Ambiguous = true
	assert.Equal(t, "0x401000?()", printExpr(call))
}

func TestPrintGraphMarksImpreciseAndListsEffectLines(t *testing.T) {
	fx := fixture.Fun("entry", fixture.Bloc("entry", fixture.Ret(),
		fixture.Instr(pcode.OpReturn, nil, nil, nil)))
	g := decgraph.New(fx.Func)
	g.MayBeImprecise = true
	b := g.BlockFor(fx.Blocks["entry"])
	g.AppendBlock(b)
	b.AddEffectLine(decgraph.EffectReturn, exprtree.NewNumberLeaf(3, 8))

	out := printGraph(g)
	assert.Contains(t, out, "may be imprecise")
	assert.Contains(t, out, "eff  0x3")
}
