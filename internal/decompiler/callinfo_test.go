package decompiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

type fakeSignatures struct {
	byOffset  map[uint64]*host.FunctionSignature
	byVirtual map[pcode.ComplexOffset]*host.FunctionSignature
}

func (f *fakeSignatures) Resolve(byteOffset uint64) (*host.FunctionSignature, bool) {
	sig, ok := f.byOffset[byteOffset]
	return sig, ok
}

func (f *fakeSignatures) ResolveVirtual(offset pcode.ComplexOffset) (*host.FunctionSignature, bool) {
	sig, ok := f.byVirtual[offset]
	return sig, ok
}

func (f *fakeSignatures) Default() *host.FunctionSignature {
	return &host.FunctionSignature{Name: "unknown"}
}

func TestHostCallResolverPrefersConstFoldedDirectTarget(t *testing.T) {
	fg := pcode.NewImagePCodeGraph().CreateFunctionGraph()
	target := uint64(0x401000)
	instr := &pcode.Instruction{Offset: pcode.ComplexOffset{ByteOffset: 0x2000}, Op: pcode.OpCall, Target: &target}

	want := &host.FunctionSignature{Name: "memcpy"}
	r := &decompiler.HostCallResolver{Signatures: &fakeSignatures{
		byOffset: map[uint64]*host.FunctionSignature{target: want},
	}}

	info := r.ResolveCallInfo(fg, instr)
	assert.Same(t, want, info.Signature)
	assert.False(t, info.Ambiguous)
}

func TestHostCallResolverFallsBackToConstFoldedRegisterTarget(t *testing.T) {
	fg := pcode.NewImagePCodeGraph().CreateFunctionGraph()
	instr := &pcode.Instruction{Offset: pcode.ComplexOffset{ByteOffset: 0x2000}, Op: pcode.OpCallInd}
	fg.ConstValues[instr] = 0x401000

	want := &host.FunctionSignature{Name: "strlen"}
	r := &decompiler.HostCallResolver{Signatures: &fakeSignatures{
		byOffset: map[uint64]*host.FunctionSignature{0x401000: want},
	}}

	info := r.ResolveCallInfo(fg, instr)
	assert.Same(t, want, info.Signature)
	assert.False(t, info.Ambiguous)
}

func TestHostCallResolverFallsBackToVirtualRegistryWhenTargetUnresolved(t *testing.T) {
	fg := pcode.NewImagePCodeGraph().CreateFunctionGraph()
	site := pcode.ComplexOffset{ByteOffset: 0x2000}
	instr := &pcode.Instruction{Offset: site, Op: pcode.OpCallInd}

	want := &host.FunctionSignature{Name: "Draw"}
	r := &decompiler.HostCallResolver{Signatures: &fakeSignatures{
		byVirtual: map[pcode.ComplexOffset]*host.FunctionSignature{site: want},
	}}

	info := r.ResolveCallInfo(fg, instr)
	assert.Same(t, want, info.Signature)
	assert.False(t, info.Ambiguous)
}

func TestHostCallResolverMarksAmbiguousWhenEverythingMisses(t *testing.T) {
	fg := pcode.NewImagePCodeGraph().CreateFunctionGraph()
	instr := &pcode.Instruction{Offset: pcode.ComplexOffset{ByteOffset: 0x2000}, Op: pcode.OpCallInd}

	r := &decompiler.HostCallResolver{Signatures: &fakeSignatures{}}

	info := r.ResolveCallInfo(fg, instr)
	require.NotNil(t, info.Signature)
	assert.Equal(t, "unknown", info.Signature.Name)
	assert.True(t, info.Ambiguous)
}
