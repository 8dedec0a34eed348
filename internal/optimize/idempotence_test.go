package optimize_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/fixture"
	"github.com/gamous/SDA/internal/optimize"
	"github.com/gamous/SDA/internal/pcode"
)

// lineSnapshot captures a line's structural hash rather than the line
// itself, since exprtree.Node carries unexported parent back-edges that
// aren't meaningful to a value diff.
type lineSnapshot struct {
	DstHash exprtree.HS
	SrcHash exprtree.HS
}

type effectSnapshot struct {
	Kind decgraph.EffectKind
	Hash exprtree.HS
}

type blockSnapshot struct {
	Name         string
	HasCondition bool
	ConditionHash exprtree.HS
	Parallel     []lineSnapshot
	Seq          []lineSnapshot
	Effects      []effectSnapshot
}

func snapshotGraph(g *decgraph.DecompiledCodeGraph) []blockSnapshot {
	out := make([]blockSnapshot, 0, len(g.Blocks()))
	for _, b := range g.Blocks() {
		bs := blockSnapshot{Name: b.Name, HasCondition: b.Condition != nil}
		if b.Condition != nil {
			bs.ConditionHash = b.Condition.Hash()
		}
		for _, l := range b.ParallelLines {
			bs.Parallel = append(bs.Parallel, lineSnapshot{DstHash: l.Dst.Hash(), SrcHash: l.Src.Hash()})
		}
		for _, l := range b.SeqLines {
			bs.Seq = append(bs.Seq, lineSnapshot{DstHash: l.Dst.Hash(), SrcHash: l.Src.Hash()})
		}
		for _, e := range b.EffectLines {
			bs.Effects = append(bs.Effects, effectSnapshot{Kind: e.Kind, Hash: e.Node.Hash()})
		}
		out = append(out, bs)
	}
	return out
}

// diamondFixture builds head -> {left, right} -> join, forcing the pipeline
// to merge two register versions at a join block and fold a condition.
func diamondFixture() *fixture.Fixture {
	ax := fixture.Reg(pcode.RegAX, 0, 8)
	return fixture.Fun("head",
		fixture.Bloc("head", fixture.If("left", "right"),
			fixture.Instr(pcode.OpCBranch, nil, ax, nil)),
		fixture.Bloc("left", fixture.Goto("join"),
			fixture.Instr(pcode.OpCopy, ax, fixture.Const(1, 8), nil)),
		fixture.Bloc("right", fixture.Goto("join"),
			fixture.Instr(pcode.OpCopy, ax, fixture.Const(2, 8), nil)),
		fixture.Bloc("join", fixture.Ret(),
			fixture.Instr(pcode.OpReturn, nil, ax, nil)),
	)
}

// TestRunIsIdempotentAtFixedPoint checks the property exprtree.HS's doc
// comment promises but nothing previously exercised: once the pipeline
// has reached its fixed point, running it again must produce the exact same
// tree shape (by structural hash), not a further rewrite.
func TestRunIsIdempotentAtFixedPoint(t *testing.T) {
	fx := diamondFixture()
	d := decompiler.New(fx.Func, nil, 0)
	result := d.Run()

	opts := optimize.Options{Mask: optimize.AllPasses}
	require.NoError(t, optimize.Run(result, opts))
	first := snapshotGraph(result.Graph)

	require.NoError(t, optimize.Run(result, opts))
	second := snapshotGraph(result.Graph)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("pipeline is not idempotent at a fixed point (-first +second):\n%s", diff)
	}
}
