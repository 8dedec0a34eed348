// Package fixture provides a Fun/Bloc/Goto/If/Ret test DSL, in the style
// of the compiler's own SSA func_test.go, adapted to this module's PCode
// graph: build a small function's control-flow graph tersely, by name,
// instead of hand-wiring *pcode.PCodeBlock pointers in every test.
//
// Unlike an SSA value, a PCode Instruction's operands (varnodes) don't
// reference other instructions by name — they reference registers,
// symbolic temporaries, or constants — so there is no value side needing
// two-pass name resolution; only block successors need wiring by name,
// which Fun does in a second pass once every block has been created.
package fixture

import (
	"log"

	"github.com/gamous/SDA/internal/pcode"
)

// Fixture is the return type of Fun: the built function graph plus an
// index from block name to *pcode.PCodeBlock, mirroring how an SSA test
// fixture exposes its blocks and values by name.
type Fixture struct {
	Img    *pcode.ImagePCodeGraph
	Func   *pcode.FunctionPCodeGraph
	Blocks map[string]*pcode.PCodeBlock
}

// BlockSpec is what Bloc returns: a named block's instructions plus its
// control-flow shape, consumed by Fun.
type BlockSpec struct {
	name   string
	instrs []*pcode.Instruction
	ctrl   ctrl
}

type ctrlKind int

const (
	ctrlGoto ctrlKind = iota
	ctrlIf
	ctrlRet
)

type ctrl struct {
	kind     ctrlKind
	nearName string
	farName  string
}

// Goto specifies an unconditional fall-through/jump to succ.
func Goto(succ string) ctrl { return ctrl{kind: ctrlGoto, nearName: succ} }

// If specifies a CBRANCH: near is the fall-through block, far is the
// branch-taken target, matching PCodeBlock's own near/far naming.
func If(near, far string) ctrl { return ctrl{kind: ctrlIf, nearName: near, farName: far} }

// Ret specifies a block with no successors (its last instruction is
// expected to be a RETURN, but Bloc doesn't require that — it only wires
// the CFG shape).
func Ret() ctrl { return ctrl{kind: ctrlRet} }

// Bloc defines one named block: its instructions in order, then exactly
// one of Goto/If/Ret describing how control leaves it.
func Bloc(name string, c ctrl, instrs ...*pcode.Instruction) BlockSpec {
	return BlockSpec{name: name, instrs: instrs, ctrl: c}
}

// Fun builds the function graph: one PCodeBlock per BlockSpec, byte offsets
// assigned deterministically so instructions across blocks never collide,
// successors wired by name, and levels computed the same way BuildGraph
// would for a function assembled from a real instruction stream.
func Fun(entry string, blocs ...BlockSpec) *Fixture {
	img := pcode.NewImagePCodeGraph()
	f := img.CreateFunctionGraph()
	blocks := make(map[string]*pcode.PCodeBlock, len(blocs))

	const blockStride = 0x1000
	for i, spec := range blocs {
		base := uint64(i) * blockStride
		max := base + blockStride
		b := img.CreateBlock(base, max)
		for j, instr := range spec.instrs {
			instr.Offset = pcode.ComplexOffset{ByteOffset: base + uint64(j), OrderID: 0}
			b.AddInstruction(instr)
		}
		blocks[spec.name] = b
		f.AddBlock(b)
	}

	start, ok := blocks[entry]
	if !ok {
		log.Panicf("fixture: entry block %q not defined", entry)
	}
	f.SetStartBlock(start)

	for _, spec := range blocs {
		b := blocks[spec.name]
		switch spec.ctrl.kind {
		case ctrlGoto:
			next, ok := blocks[spec.ctrl.nearName]
			if !ok {
				log.Panicf("fixture: block %q goto's undefined block %q", spec.name, spec.ctrl.nearName)
			}
			b.SetNextNearBlock(next)
		case ctrlIf:
			near, ok := blocks[spec.ctrl.nearName]
			if !ok {
				log.Panicf("fixture: block %q's near target %q undefined", spec.name, spec.ctrl.nearName)
			}
			far, ok := blocks[spec.ctrl.farName]
			if !ok {
				log.Panicf("fixture: block %q's far target %q undefined", spec.name, spec.ctrl.farName)
			}
			b.SetNextNearBlock(near)
			b.SetNextFarBlock(far)
		case ctrlRet:
			// no successors
		}
	}

	pcode.ComputeLevels(f)
	return &Fixture{Img: img, Func: f, Blocks: blocks}
}

// Reg builds a RegisterVarnode, the fixture-DSL equivalent of an SSA
// Valu helper for an operand.
func Reg(id pcode.RegisterID, byteOffset, size uint8) pcode.RegisterVarnode {
	return pcode.RegisterVarnode{Register: pcode.Register{ID: id, ByteOffset: byteOffset, Size: size}}
}

// Const builds a ConstantVarnode.
func Const(value uint64, size uint8) pcode.ConstantVarnode {
	return pcode.ConstantVarnode{Value: value, Size: size}
}

// Sym builds a SymbolVarnode.
func Sym(id pcode.SymbolID, size uint8) pcode.SymbolVarnode {
	return pcode.SymbolVarnode{ID: id, Size: size}
}

// Instr builds one Instruction; Offset is overwritten by Fun, so only Op
// and operands need specifying here.
func Instr(op pcode.Opcode, output, in0, in1 pcode.Varnode) *pcode.Instruction {
	return &pcode.Instruction{Op: op, Output: output, Input0: in0, Input1: in1}
}
