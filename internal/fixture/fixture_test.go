package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/pcode"
)

func TestFunLinearLevels(t *testing.T) {
	f := Fun("entry",
		Bloc("entry", Goto("exit"),
			Instr(pcode.OpCopy, Reg(RegAXTest, 0, 8), Const(1, 8), nil)),
		Bloc("exit", Ret(),
			Instr(pcode.OpReturn, nil, nil, nil)),
	)

	require.NotNil(t, f.Func.StartBlock())
	assert.Equal(t, f.Blocks["entry"], f.Func.StartBlock())
	assert.Equal(t, 0, f.Blocks["entry"].Level)
	assert.Equal(t, 1, f.Blocks["exit"].Level)
	assert.Same(t, f.Blocks["exit"], f.Blocks["entry"].NextNearBlock())
}

func TestFunLoopBackEdge(t *testing.T) {
	f := Fun("head",
		Bloc("head", Goto("body"),
			Instr(pcode.OpCopy, Reg(RegAXTest, 0, 8), Const(0, 8), nil)),
		Bloc("body", If("body", "done"),
			Instr(pcode.OpCBranch, nil, Reg(RegAXTest, 0, 8), nil)),
		Bloc("done", Ret(),
			Instr(pcode.OpReturn, nil, nil, nil)),
	)

	body := f.Blocks["body"]
	// the near target of body is body itself: a self-loop, so the edge
	// into it is a back edge by the t.Level <= s.Level rule (here
	// trivially body.Level <= body.Level).
	assert.Same(t, body, body.NextNearBlock())
	assert.Equal(t, 0, f.Blocks["head"].Level)
	assert.Equal(t, 1, body.Level)
	assert.Equal(t, 2, f.Blocks["done"].Level)
}

// RegAXTest stands in for a real architecture's register id in tests that
// don't care which one, matching the fixture package's Reg helper shape.
const RegAXTest = pcode.RegAX
