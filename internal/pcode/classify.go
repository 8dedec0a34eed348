package pcode

// classifyCalls walks every CALL/CALLIND instruction in every function and
// adds a non-virtual call edge when the call's target resolves to an offset
// inside a known function. A call whose target does not resolve, or lands
// outside every known function, gets no edge here, virtual or otherwise;
// MarkVirtualCall records a virtual edge for a caller/callee pair.
func classifyCalls(img *ImagePCodeGraph, funcByEntry map[uint64]*FunctionPCodeGraph) {
	for _, f := range img.funcGraphs {
		for _, b := range f.blocks {
			for _, instr := range b.instructions {
				if !instr.IsCall() {
					continue
				}
				target, ok := resolveConstCallTarget(f, instr)
				if !ok {
					continue
				}
				callee, err := img.GetFuncGraphAt(target, true)
				if err != nil || callee == nil {
					continue
				}
				f.addNonVirtFuncCall(callee)
			}
		}
	}
}

// resolveConstCallTarget returns the instruction's static Target when it
// has one, and otherwise the function's ConstValues entry for it. Neither
// BuildGraph nor the decompiler writes ConstValues, and classifyCalls runs
// inside BuildGraph, so during classification only the static Target
// resolves.
func resolveConstCallTarget(f *FunctionPCodeGraph, instr *Instruction) (uint64, bool) {
	if instr.Target != nil {
		return *instr.Target, true
	}
	if v, ok := f.ConstValues[instr]; ok && v >= 0 {
		return uint64(v), true
	}
	return 0, false
}

// MarkVirtualCall records instr's call as unresolved-virtual once the SDA
// pass (or its host-side registry) determines it could not be statically
// resolved to a function in this image.
func MarkVirtualCall(caller, callee *FunctionPCodeGraph) {
	caller.addVirtFuncCall(callee)
}
