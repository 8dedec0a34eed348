package decompiler

import (
	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

// unaryOps carries straight through to a one-child OperationalNode.
var unaryOps = map[pcode.Opcode]bool{
	pcode.OpIntNegate: true, pcode.OpIntNot: true, pcode.OpIntZext: true,
	pcode.OpIntSext: true, pcode.OpBoolNegate: true, pcode.OpFloatNeg: true,
	pcode.OpFloatAbs: true, pcode.OpFloatSqrt: true, pcode.OpFloatCeil: true,
	pcode.OpFloatFloor: true, pcode.OpFloatRound: true, pcode.OpFloatNan: true,
	pcode.OpPopcount: true, pcode.OpSubpiece: true,
}

// instructionInterpreter dispatches one PCode instruction at a time against
// an ExecContext. It is the one piece of the primary decompiler allowed to
// touch DecBlock directly, and only for the structural fields (Condition,
// EffectLines) an instruction's opcode determines outright — ordinary
// register/varnode writes live entirely in the ExecContext; turning those
// into assignment lines is the optimization pipeline's job.
type instructionInterpreter struct {
	ctx      *ExecContext
	block    *decgraph.DecBlock
	funcG    *pcode.FunctionPCodeGraph
	resolver CallResolver
}

func newInstructionInterpreter(ctx *ExecContext, block *decgraph.DecBlock, funcG *pcode.FunctionPCodeGraph, resolver CallResolver) *instructionInterpreter {
	return &instructionInterpreter{ctx: ctx, block: block, funcG: funcG, resolver: resolver}
}

func (in *instructionInterpreter) execute(instr *pcode.Instruction) {
	switch instr.Op {
	case pcode.OpCopy:
		in.ctx.SetVarnode(instr.Output, in.ctx.RequestVarnode(instr.Input0))

	case pcode.OpLoad:
		addr := in.ctx.RequestVarnode(instr.Input0)
		size := instr.Output.VarnodeSize()
		load := exprtree.NewOperationalNode(pcode.OpLoad, addr, nil, int(size))
		in.ctx.SetVarnode(instr.Output, load)

	case pcode.OpStore:
		addr := in.ctx.RequestVarnode(instr.Input0)
		val := in.ctx.RequestVarnode(instr.Input1)
		store := exprtree.NewOperationalNode(pcode.OpStore, addr, val, int(instr.Input1.VarnodeSize()))
		in.block.AddEffectLine(decgraph.EffectStore, store)

	case pcode.OpCBranch:
		cond := in.ctx.RequestVarnode(instr.Input1)
		in.block.Condition = cond

	case pcode.OpBranch, pcode.OpBranchInd:
		// Control transfer only; no expression or effect to record.

	case pcode.OpCall, pcode.OpCallInd:
		in.executeCall(instr)

	case pcode.OpCallOther:
		// Target-specific intrinsic with unmodeled semantics: the output, if
		// any, becomes an opaque value so downstream reads don't fabricate
		// false precision.
		if instr.Output != nil {
			in.ctx.SetVarnode(instr.Output, exprtree.NewRegisterReadLeaf(mustRegister(instr.Output)))
		}

	case pcode.OpReturn:
		if instr.Input0 != nil {
			ret := in.ctx.RequestVarnode(instr.Input0)
			in.block.AddEffectLine(decgraph.EffectReturn, ret)
		} else {
			in.block.AddEffectLine(decgraph.EffectReturn, nil)
		}

	default:
		in.executeExpression(instr)
	}
}

func (in *instructionInterpreter) executeExpression(instr *pcode.Instruction) {
	lhs := in.ctx.RequestVarnode(instr.Input0)
	size := int(instr.Output.VarnodeSize())

	if unaryOps[instr.Op] {
		node := exprtree.NewOperationalNode(instr.Op, lhs, nil, size)
		if instr.Op == pcode.OpSubpiece {
			node.Mask = pcode.NewBitMask64(0, instr.Output.VarnodeSize())
		}
		in.ctx.SetVarnode(instr.Output, node)
		return
	}

	var rhs exprtree.Node
	if instr.Input1 != nil {
		rhs = in.ctx.RequestVarnode(instr.Input1)
	}
	node := exprtree.NewOperationalNode(instr.Op, lhs, rhs, size)
	in.ctx.SetVarnode(instr.Output, node)
}

func (in *instructionInterpreter) executeCall(instr *pcode.Instruction) {
	info := in.resolver.ResolveCallInfo(in.funcG, instr)

	dest := in.ctx.RequestVarnode(pickCallTarget(instr))
	var args []exprtree.Node
	if info.Signature != nil {
		args = make([]exprtree.Node, 0, len(info.Signature.Params))
		for _, p := range info.Signature.Params {
			args = append(args, in.argExpr(p))
		}
	}

	size := 0
	if info.Signature != nil && info.Signature.HasReturn {
		size = int(info.Signature.Return.Register.Size)
		if size == 0 {
			size = 8
		}
	}
	call := exprtree.NewFunctionCallNode(dest, args, info.Signature, size)
	call.Ambiguous = info.Ambiguous

	if info.Signature != nil && info.Signature.HasReturn && info.Signature.Return.Kind == host.StorageRegister {
		in.ctx.Current.SetRegister(info.Signature.Return.Register, call)
		return
	}
	in.block.AddEffectLine(decgraph.EffectCall, call)
}

func (in *instructionInterpreter) argExpr(p host.ParamStorage) exprtree.Node {
	if p.Kind == host.StorageRegister {
		return in.ctx.Current.RequestRegister(p.Register)
	}
	return exprtree.NewNumberLeaf(uint64(p.StackOff), 8)
}

func pickCallTarget(instr *pcode.Instruction) pcode.Varnode {
	if instr.Op == pcode.OpCallInd {
		return instr.Input0
	}
	return instr.Input0
}

func mustRegister(v pcode.Varnode) pcode.Register {
	if rv, ok := v.(pcode.RegisterVarnode); ok {
		return rv.Register
	}
	return pcode.Register{}
}
