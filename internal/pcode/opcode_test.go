package pcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeStringRoundTrip(t *testing.T) {
	for op := range opcodeNames {
		name := op.String()
		got, ok := ParseOpcode(name)
		assert.True(t, ok, "ParseOpcode(%q) should succeed", name)
		assert.Equal(t, op, got)
	}
}

func TestParseOpcodeUnknown(t *testing.T) {
	_, ok := ParseOpcode("NOT_AN_OPCODE")
	assert.False(t, ok)
}

func TestOpcodeStringUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Opcode(9999).String())
}

func TestIsBranchAndFallsThrough(t *testing.T) {
	assert.True(t, OpCBranch.IsBranch())
	assert.True(t, OpCBranch.IsConditional())
	assert.True(t, OpCBranch.FallsThrough())

	assert.True(t, OpReturn.IsBranch())
	assert.False(t, OpReturn.FallsThrough())

	assert.False(t, OpCopy.IsBranch())
	assert.True(t, OpCopy.FallsThrough())
}
