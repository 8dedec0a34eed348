package main

import (
	"fmt"
	"strings"

	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/host"
)

// printExpr renders a node tree as a compact s-expression — a debug
// convenience for the CLI, not a source-text emitter; producing compilable
// source is out of scope.
func printExpr(n exprtree.Node) string {
	if n == nil {
		return "<nil>"
	}
	switch v := n.(type) {
	case *exprtree.NumberLeaf:
		return fmt.Sprintf("%#x", v.Value)
	case *exprtree.SymbolLeaf:
		return fmt.Sprintf("sym%d", v.Sym.SymbolID())
	case *exprtree.RegisterReadLeaf:
		return fmt.Sprintf("reg%d[%d:%d]", v.Register.ID, v.Register.ByteOffset, v.Register.Size)
	case *exprtree.SdaSymbolLeaf:
		return v.Symbol.Name
	case *exprtree.SdaMemSymbolLeaf:
		if v.IsAddrGetting {
			return "&" + v.Symbol.Name
		}
		return v.Symbol.Name
	case *exprtree.SdaNumberLeaf:
		return fmt.Sprintf("%#x", v.Value)
	case *exprtree.OperationalNode:
		if v.Rhs == nil {
			return fmt.Sprintf("(%s %s)", v.Op, printExpr(v.Lhs))
		}
		return fmt.Sprintf("(%s %s %s)", v.Op, printExpr(v.Lhs), printExpr(v.Rhs))
	case *exprtree.SdaOperationalNode:
		if v.Rhs == nil {
			return fmt.Sprintf("(%s %s)", v.Op, printExpr(v.Lhs))
		}
		return fmt.Sprintf("(%s %s %s)", v.Op, printExpr(v.Lhs), printExpr(v.Rhs))
	case *exprtree.ConditionNode:
		if v.Inverted {
			return fmt.Sprintf("!%s", printExpr(v.Cond))
		}
		return printExpr(v.Cond)
	case *exprtree.MirrorNode:
		return printExpr(v.Target)
	case *exprtree.UnionNode:
		parts := make([]string, len(v.Variants))
		for i, variant := range v.Variants {
			parts[i] = printExpr(variant)
		}
		return "phi(" + strings.Join(parts, ", ") + ")"
	case *exprtree.FunctionCallNode:
		return callString(v.Dest, v.Args, v.Signature, v.Ambiguous)
	case *exprtree.SdaFunctionCallNode:
		return callString(v.Dest, v.Args, v.Signature, false)
	default:
		return fmt.Sprintf("<%T>", n)
	}
}

func callString(dest exprtree.Node, args []exprtree.Node, sig *host.FunctionSignature, ambiguous bool) string {
	name := "?"
	if sig != nil {
		name = sig.Name
	}
	if dest != nil {
		name = printExpr(dest)
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printExpr(a)
	}
	suffix := ""
	if ambiguous {
		suffix = "?"
	}
	return fmt.Sprintf("%s%s(%s)", name, suffix, strings.Join(parts, ", "))
}

// printGraph dumps every block's lines in level order.
func printGraph(g *decgraph.DecompiledCodeGraph) string {
	var b strings.Builder
	if g.MayBeImprecise {
		b.WriteString("; function may be imprecise (loop-version cap reached)\n")
	}
	for _, blk := range g.Blocks() {
		fmt.Fprintf(&b, "block@%#x (level %d):\n", blk.PCodeBlock.MinOffset(), blk.Level)
		for _, line := range blk.ParallelLines {
			fmt.Fprintf(&b, "  par  %s = %s\n", printExpr(line.Dst), printExpr(line.Src))
		}
		for _, line := range blk.SeqLines {
			fmt.Fprintf(&b, "  seq  %s = %s\n", printExpr(line.Dst), printExpr(line.Src))
		}
		for _, eff := range blk.EffectLines {
			fmt.Fprintf(&b, "  eff  %s\n", printExpr(eff.Node))
		}
		if blk.Condition != nil {
			fmt.Fprintf(&b, "  if   %s\n", printExpr(blk.Condition))
		}
	}
	return b.String()
}
