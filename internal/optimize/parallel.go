package optimize

import (
	"fmt"

	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ParallelAssignmentCreation turns each block's net register transfer
// function — the diff between its ExecContext.Start and ExecContext.Current
// — into a list of ParallelAssignmentLines. The lines are
// "parallel" because they jointly describe one block's transition as a
// single simultaneous update, the same semantics a CPU's register file
// update has at the end of one basic block; order-fixing and line expansion
// later decide what sequential order, if any, is needed to reproduce that
// semantics with ordinary assignment statements.
func ParallelAssignmentCreation(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		ctx, ok := result.ExecContexts[b.PCodeBlock]
		if !ok {
			continue
		}
		for regID, list := range ctx.Current.Entries() {
			startList := ctx.Start.Entries()[regID]
			for _, info := range list {
				if sameAsStart(info, startList) {
					continue
				}
				name := fmt.Sprintf("%s_%d", registerName(info.Reg), info.Reg.ByteOffset)
				local := result.Graph.NewLocalVariable(int(info.Reg.Size), name)
				b.AddParallelLine(exprtree.NewSymbolLeaf(local), info.Expr.Node())
			}
		}
	}
	return nil
}

func sameAsStart(info *decompiler.RegisterInfo, startList []*decompiler.RegisterInfo) bool {
	for _, s := range startList {
		if s.Reg == info.Reg {
			return s.Expr.Node() != nil && info.Expr.Node() != nil && s.Expr.Node().Hash() == info.Expr.Node().Hash()
		}
	}
	return false
}

func registerName(reg pcode.Register) string {
	switch reg.ID {
	case pcode.RegAX:
		return "ax"
	case pcode.RegCX:
		return "cx"
	case pcode.RegDX:
		return "dx"
	case pcode.RegBX:
		return "bx"
	case pcode.RegSP:
		return "sp"
	case pcode.RegBP:
		return "bp"
	case pcode.RegSI:
		return "si"
	case pcode.RegDI:
		return "di"
	case pcode.RegFlags:
		return "flags"
	default:
		return fmt.Sprintf("r%d", reg.ID)
	}
}
