package decgraph

import "github.com/gamous/SDA/internal/pcode"

// FindBlockTopNodeAtOffset is the debugger hook for mapping a breakpoint or
// cursor position back to decompiled output: given a complex offset, find
// the DecBlock whose mirrored PCodeBlock contains it. Sub-instruction
// (line-level) resolution is left to the caller, since a DecBlock's lines
// no longer carry a 1:1 mapping to PCode instructions once the
// optimization pipeline has run.
func FindBlockTopNodeAtOffset(g *DecompiledCodeGraph, offset pcode.ComplexOffset) (*DecBlock, bool) {
	for pb, db := range g.byPCode {
		if offset.ByteOffset >= pb.MinOffset() && offset.ByteOffset < pb.MaxOffset() {
			return db, true
		}
	}
	return nil, false
}

// StackPointerValueAtOffset reports the net stack-pointer displacement
// accumulated by literal stack-register adjustments up to (but not
// including) offset, within the block containing it. It only accounts for
// INT_ADD/INT_SUB against a constant on the stack register; it does not
// attempt to symbolically evaluate an arbitrary expression, matching the
// narrow, best-effort nature of the original debugger hook.
func StackPointerValueAtOffset(g *DecompiledCodeGraph, stackReg pcode.RegisterID, offset pcode.ComplexOffset) (int64, bool) {
	db, ok := FindBlockTopNodeAtOffset(g, offset)
	if !ok || db.PCodeBlock == nil {
		return 0, false
	}
	var total int64
	found := false
	for _, instr := range db.PCodeBlock.Instructions() {
		if instr.Offset.Compare(offset) >= 0 {
			break
		}
		delta, matched := stackDelta(instr, stackReg)
		if matched {
			total += delta
			found = true
		}
	}
	return total, found
}

func stackDelta(instr *pcode.Instruction, stackReg pcode.RegisterID) (int64, bool) {
	if instr.Op != pcode.OpIntAdd && instr.Op != pcode.OpIntSub {
		return 0, false
	}
	out, ok := instr.Output.(pcode.RegisterVarnode)
	if !ok || out.Register.ID != stackReg {
		return 0, false
	}
	in0, ok0 := instr.Input0.(pcode.RegisterVarnode)
	if !ok0 || in0.Register.ID != stackReg {
		return 0, false
	}
	in1, ok1 := instr.Input1.(pcode.ConstantVarnode)
	if !ok1 {
		return 0, false
	}
	delta := int64(in1.Value)
	if instr.Op == pcode.OpIntSub {
		delta = -delta
	}
	return delta, true
}
