package decompiler

import (
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

// FunctionCallInfo is the resolved (or best-effort default) signature for
// one CALL/CALLIND site.
type FunctionCallInfo struct {
	Signature *host.FunctionSignature
	Ambiguous bool
}

// CallResolver is the capability object the host supplies for resolving a
// call site's signature — kept as a narrow, one-method interface so the
// pipeline never depends on the host's broader lookup policy.
type CallResolver interface {
	ResolveCallInfo(funcGraph *pcode.FunctionPCodeGraph, instr *pcode.Instruction) FunctionCallInfo
}

// HostCallResolver adapts a host.FunctionSignatureResolver and
// host.SymbolContext into a CallResolver, trying a const-folded direct
// target first, then the virtual registry, then the project-wide default.
type HostCallResolver struct {
	Signatures host.FunctionSignatureResolver
	Symbols    host.SymbolContext
}

func (r *HostCallResolver) ResolveCallInfo(funcGraph *pcode.FunctionPCodeGraph, instr *pcode.Instruction) FunctionCallInfo {
	if target, ok := resolveConstTarget(funcGraph, instr); ok {
		if sig, found := r.Signatures.Resolve(target); found {
			return FunctionCallInfo{Signature: sig}
		}
	}
	if sig, found := r.Signatures.ResolveVirtual(instr.Offset); found {
		return FunctionCallInfo{Signature: sig}
	}
	return FunctionCallInfo{Signature: r.Signatures.Default(), Ambiguous: true}
}

func resolveConstTarget(funcGraph *pcode.FunctionPCodeGraph, instr *pcode.Instruction) (uint64, bool) {
	if instr.Target != nil {
		return *instr.Target, true
	}
	if v, ok := funcGraph.ConstValues[instr]; ok && v >= 0 {
		return uint64(v), true
	}
	return 0, false
}
