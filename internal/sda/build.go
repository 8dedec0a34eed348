// Package sda implements semantic data analysis: binding the optimized
// expression tree's leaves to program-level symbols and types, on top of
// the node kinds exprtree defines for it (SdaSymbolLeaf, SdaMemSymbolLeaf,
// SdaNumberLeaf, SdaOperationalNode, SdaFunctionCallNode).
package sda

import (
	"github.com/gamous/SDA/internal/decgraph"
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

// Context carries the host capabilities the symbolization pass consults,
// plus the function entry it's currently running over (needed to key
// per-function parameter/stack-variable resolution).
type Context struct {
	Symbols   host.SymbolContext
	Types     host.TypeManager
	FuncEntry uint64
	StackReg  pcode.RegisterID
}

// Build runs one symbolization pass over every line, condition, and effect
// in result's graph, substituting resolvable leaves for their SDA
// counterparts, and reports whether anything changed. It is
// idempotent on what it has already resolved, so PropagateTypes (types.go)
// drives it to a fixed point: a symbol discovered in one call can unlock a
// struct-field resolution that depends on it in the next.
func Build(result *decompiler.Result, ctx *Context) bool {
	changed := false
	for _, b := range result.Graph.Blocks() {
		for _, line := range b.SeqLines {
			if newSrc := rewriteNode(line.Src, ctx); newSrc != line.Src {
				line.Src = newSrc
				changed = true
			}
		}
		for _, eff := range b.EffectLines {
			if newNode := rewriteNode(eff.Node, ctx); newNode != eff.Node {
				eff.Node = newNode
				changed = true
			}
		}
		if b.Condition != nil {
			if newCond := rewriteNode(b.Condition, ctx); newCond != b.Condition {
				b.Condition = newCond
				changed = true
			}
		}
		if renameResolvedLocals(b) {
			changed = true
		}
	}
	return changed
}

// rewriteNode walks n bottom-up, replacing a resolvable LOAD, bare register
// read, or pointer-to-struct-field arithmetic with its SDA counterpart.
func rewriteNode(n exprtree.Node, ctx *Context) exprtree.Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children() {
		newChild := rewriteNode(child, ctx)
		if newChild != child {
			n.ReplaceChild(child, newChild)
		}
	}

	switch v := n.(type) {
	case *exprtree.OperationalNode:
		if v.Op == pcode.OpLoad {
			if leaf, ok := resolveLoad(v, ctx); ok {
				return leaf
			}
			return n
		}
		if v.Op == pcode.OpIntAdd && v.Rhs != nil {
			if sda, ok := resolveStructField(v, ctx); ok {
				return sda
			}
		}
	case *exprtree.RegisterReadLeaf:
		if sym, ok := ctx.Symbols.ResolveParameter(ctx.FuncEntry, v.Register); ok {
			return exprtree.NewSdaSymbolLeaf(sym)
		}
	}
	return n
}

// resolveStructField recognizes base + constant-offset where base has
// already resolved to a struct type, and wraps the addition in a
// SdaOperationalNode carrying the field's type at that offset.
func resolveStructField(v *exprtree.OperationalNode, ctx *Context) (exprtree.Node, bool) {
	baseType := dataTypeOf(v.Lhs)
	if baseType == nil || !baseType.IsStruct() {
		return nil, false
	}
	lit, ok := v.Rhs.(*exprtree.NumberLeaf)
	if !ok {
		return nil, false
	}
	field, found := ctx.Types.FieldAt(baseType, int(lit.Value)*8)
	if !found {
		return nil, false
	}
	sda := exprtree.NewSdaOperationalNode(v.Op, v.Lhs, v.Rhs, v.SizeBytes)
	sda.Type = field
	return sda, true
}

// resolveLoad recognizes LOAD(addr) where addr is either an absolute
// constant (a global) or RegisterRead(stack) [+/- constant] (a stack
// variable), and resolves it to a named memory location. Any other address
// shape (computed pointer, array index, unresolved call result) is left as
// a plain load — this pass binds what it can and leaves the rest for a
// later iteration.
func resolveLoad(load *exprtree.OperationalNode, ctx *Context) (exprtree.Node, bool) {
	addr := load.Lhs
	size := load.SizeBytes

	if lit, ok := addr.(*exprtree.NumberLeaf); ok {
		if sym, found := ctx.Symbols.ResolveGlobalVar(lit.Value); found {
			return exprtree.NewSdaMemSymbolLeaf(sym, 0, size), true
		}
		return nil, false
	}

	if reg, off, ok := stackAddress(addr, ctx.StackReg); ok {
		if sym, found := ctx.Symbols.ResolveStackVar(ctx.FuncEntry, off); found {
			_ = reg
			return exprtree.NewSdaMemSymbolLeaf(sym, 0, size), true
		}
	}
	return nil, false
}

// stackAddress recognizes RegisterRead(stackReg) or
// INT_ADD/INT_SUB(RegisterRead(stackReg), constant).
func stackAddress(addr exprtree.Node, stackReg pcode.RegisterID) (pcode.Register, int64, bool) {
	if rr, ok := addr.(*exprtree.RegisterReadLeaf); ok && rr.Register.ID == stackReg {
		return rr.Register, 0, true
	}
	op, ok := addr.(*exprtree.OperationalNode)
	if !ok || op.Rhs == nil {
		return pcode.Register{}, 0, false
	}
	if op.Op != pcode.OpIntAdd && op.Op != pcode.OpIntSub {
		return pcode.Register{}, 0, false
	}
	rr, ok := op.Lhs.(*exprtree.RegisterReadLeaf)
	if !ok || rr.Register.ID != stackReg {
		return pcode.Register{}, 0, false
	}
	lit, ok := op.Rhs.(*exprtree.NumberLeaf)
	if !ok {
		return pcode.Register{}, 0, false
	}
	off := int64(lit.Value)
	if op.Op == pcode.OpIntSub {
		off = -off
	}
	return rr.Register, off, true
}

// renameResolvedLocals gives a SeqLine's destination LocalVariable a
// human-meaningful name once its defining expression has resolved to a
// named program symbol, purely to improve presentation: symbol binding has
// no effect on the Dst line shape itself, since SeqAssignmentLine.Dst is
// always a decompiler-local symbol, so renaming it is cosmetic; Build still
// counts a rename as a change in the value it returns.
type namedSymbol interface {
	Name() string
	SetName(string)
}

func renameResolvedLocals(b *decgraph.DecBlock) bool {
	changed := false
	for _, line := range b.SeqLines {
		nm, ok := line.Dst.Sym.(namedSymbol)
		if !ok || nm.Name() != "" {
			continue
		}
		switch v := line.Src.(type) {
		case *exprtree.SdaSymbolLeaf:
			nm.SetName(v.Symbol.Name)
			changed = true
		case *exprtree.SdaMemSymbolLeaf:
			nm.SetName(v.Symbol.Name)
			changed = true
		}
	}
	return changed
}
