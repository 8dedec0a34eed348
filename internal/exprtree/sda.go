package exprtree

import (
	"github.com/gamous/SDA/internal/host"
	"github.com/gamous/SDA/internal/pcode"
)

// The SDA-prefixed node kinds below are the typed, symbol-bound expression
// nodes the symbolization pass (package sda) substitutes in place of the
// primary decompiler's untyped nodes once a program-level symbol or type is
// known for them. They live in this package, not sda's, because Node's
// addParent/removeParent methods are unexported — only exprtree can mint
// new concrete Node types (see node.go's doc comment); package sda consumes
// and rewrites these through the same Node interface.

// SdaSymbolLeaf reads a resolved, named program-level storage location — a
// parameter, a stack variable, or a global — as opposed to SymbolLeaf's
// decompiler-internal local.
type SdaSymbolLeaf struct {
	baseNode
	Symbol *host.ProgramSymbol
}

func NewSdaSymbolLeaf(sym *host.ProgramSymbol) *SdaSymbolLeaf { return &SdaSymbolLeaf{Symbol: sym} }

func (n *SdaSymbolLeaf) Size() int                  { return n.Symbol.Type.SizeBytes() }
func (n *SdaSymbolLeaf) Children() []Node           { return nil }
func (n *SdaSymbolLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *SdaSymbolLeaf) Clone() Node                { return &SdaSymbolLeaf{Symbol: n.Symbol} }
func (n *SdaSymbolLeaf) Hash() HS {
	return HS(0x5da0) ^ HS(len(n.Symbol.Name))<<32 ^ HS(n.Symbol.StackOff)<<8 ^ HS(n.Symbol.GlobalAddr)
}

// SdaMemSymbolLeaf replaces a LOAD of a statically-resolved address with the
// named memory location it reads, folding the indirection away. Offset is
// the byte displacement from Symbol's base the original address expression
// computed (e.g. a struct field reached through a base pointer/stack slot).
//
// Hash shifts Offset left by (Offset mod 29)+1 bits before XORing it into
// the base symbol's hash, rather than adding it, so that two leaves over
// the same Symbol at different Offsets almost never collide — different
// offsets land in different bit regions far more often than combining by
// addition would, which matters here since adjacent struct fields are a
// common case and a collision would wrongly dedupe two distinct fields in
// the optimization pipeline's hash-based comparisons.
type SdaMemSymbolLeaf struct {
	baseNode
	Symbol    *host.ProgramSymbol
	Offset    int64
	SizeBytes int

	// IsAddrGetting distinguishes &var (address-of) from a plain read of
	// var.
	IsAddrGetting bool
}

func NewSdaMemSymbolLeaf(sym *host.ProgramSymbol, offset int64, size int) *SdaMemSymbolLeaf {
	return &SdaMemSymbolLeaf{Symbol: sym, Offset: offset, SizeBytes: size}
}

func (n *SdaMemSymbolLeaf) Size() int                  { return n.SizeBytes }
func (n *SdaMemSymbolLeaf) Children() []Node           { return nil }
func (n *SdaMemSymbolLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *SdaMemSymbolLeaf) Clone() Node {
	return &SdaMemSymbolLeaf{Symbol: n.Symbol, Offset: n.Offset, SizeBytes: n.SizeBytes, IsAddrGetting: n.IsAddrGetting}
}

// SrcDataType reports the type this leaf reads as: the symbol's own type
// for a plain read, or that type wrapped in a pointer when IsAddrGetting is
// set.
func (n *SdaMemSymbolLeaf) SrcDataType(types host.TypeManager) host.DataType {
	if n.IsAddrGetting {
		return types.MakePointer(n.Symbol.Type)
	}
	return n.Symbol.Type
}
func (n *SdaMemSymbolLeaf) Hash() HS {
	base := HS(0x5da5) ^ HS(len(n.Symbol.Name))<<32 ^ HS(n.Symbol.StackOff) ^ HS(n.Symbol.GlobalAddr)
	if n.IsAddrGetting {
		base ^= HS(0x5da_add4)
	}
	return base ^ (HS(uint64(n.Offset)) << (uint(uint64(n.Offset)%29) + 1))
}

// SdaNumberLeaf is a constant annotated with a resolved data type (a
// recognized pointer, float, or enum constant), distinct from NumberLeaf's
// untyped value.
type SdaNumberLeaf struct {
	baseNode
	Value     uint64
	SizeBytes int
	Type      host.DataType
}

func NewSdaNumberLeaf(value uint64, size int, t host.DataType) *SdaNumberLeaf {
	return &SdaNumberLeaf{Value: value, SizeBytes: size, Type: t}
}

func (n *SdaNumberLeaf) Size() int                  { return n.SizeBytes }
func (n *SdaNumberLeaf) Children() []Node           { return nil }
func (n *SdaNumberLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *SdaNumberLeaf) Clone() Node {
	return &SdaNumberLeaf{Value: n.Value, SizeBytes: n.SizeBytes, Type: n.Type}
}
func (n *SdaNumberLeaf) Hash() HS { return HS(0xA5A5A5A5) ^ HS(n.Value) ^ HS(n.SizeBytes)<<48 }

// SdaOperationalNode mirrors OperationalNode but carries a Type field the
// fixed-point type-propagation pass (package sda) refines as it learns more
// about the operands — e.g. recognizing pointer arithmetic once one operand
// resolves to a pointer type.
type SdaOperationalNode struct {
	baseNode
	Op        pcode.Opcode
	Lhs, Rhs  Node
	SizeBytes int
	Type      host.DataType
}

func NewSdaOperationalNode(op pcode.Opcode, lhs, rhs Node, size int) *SdaOperationalNode {
	n := &SdaOperationalNode{Op: op, Lhs: lhs, Rhs: rhs, SizeBytes: size}
	Attach(n, lhs)
	Attach(n, rhs)
	return n
}

func (n *SdaOperationalNode) Size() int { return n.SizeBytes }
func (n *SdaOperationalNode) Children() []Node {
	if n.Rhs == nil {
		return []Node{n.Lhs}
	}
	return []Node{n.Lhs, n.Rhs}
}

func (n *SdaOperationalNode) ReplaceChild(old, newChild Node) bool {
	replaced := false
	if n.Lhs == old {
		Detach(n, n.Lhs)
		n.Lhs = newChild
		Attach(n, newChild)
		replaced = true
	}
	if n.Rhs == old {
		Detach(n, n.Rhs)
		n.Rhs = newChild
		Attach(n, newChild)
		replaced = true
	}
	return replaced
}

func (n *SdaOperationalNode) Clone() Node {
	var lhs, rhs Node
	if n.Lhs != nil {
		lhs = n.Lhs.Clone()
	}
	if n.Rhs != nil {
		rhs = n.Rhs.Clone()
	}
	clone := NewSdaOperationalNode(n.Op, lhs, rhs, n.SizeBytes)
	clone.Type = n.Type
	return clone
}

func (n *SdaOperationalNode) Hash() HS {
	base := HS(n.Op)<<56 ^ HS(0x5da)
	var lh, rh HS
	if n.Lhs != nil {
		lh = n.Lhs.Hash()
	}
	if n.Rhs != nil {
		rh = n.Rhs.Hash()
		if IsCommutative(n.Op) {
			return base.Combine(lh.CombineCommutative(rh))
		}
		return base.Combine(lh).Combine(rh)
	}
	return base.Combine(lh)
}

// SdaFunctionCallNode mirrors FunctionCallNode with a propagated return
// Type, filled in once the callee's signature or the call site's use
// resolves it.
type SdaFunctionCallNode struct {
	baseNode
	Dest      Node
	Args      []Node
	Signature *host.FunctionSignature
	SizeBytes int
	Type      host.DataType
}

func NewSdaFunctionCallNode(dest Node, args []Node, sig *host.FunctionSignature, size int) *SdaFunctionCallNode {
	n := &SdaFunctionCallNode{Dest: dest, Args: append([]Node(nil), args...), Signature: sig, SizeBytes: size}
	Attach(n, dest)
	for _, a := range n.Args {
		Attach(n, a)
	}
	return n
}

func (n *SdaFunctionCallNode) Size() int { return n.SizeBytes }
func (n *SdaFunctionCallNode) Children() []Node {
	children := make([]Node, 0, len(n.Args)+1)
	if n.Dest != nil {
		children = append(children, n.Dest)
	}
	children = append(children, n.Args...)
	return children
}

func (n *SdaFunctionCallNode) ReplaceChild(old, newChild Node) bool {
	replaced := false
	if n.Dest == old {
		Detach(n, n.Dest)
		n.Dest = newChild
		Attach(n, newChild)
		replaced = true
	}
	for i, a := range n.Args {
		if a == old {
			Detach(n, a)
			n.Args[i] = newChild
			Attach(n, newChild)
			replaced = true
		}
	}
	return replaced
}

func (n *SdaFunctionCallNode) Clone() Node {
	var dest Node
	if n.Dest != nil {
		dest = n.Dest.Clone()
	}
	args := make([]Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Clone()
	}
	clone := NewSdaFunctionCallNode(dest, args, n.Signature, n.SizeBytes)
	clone.Type = n.Type
	return clone
}

func (n *SdaFunctionCallNode) Hash() HS {
	h := HS(0x5dac811)
	if n.Dest != nil {
		h = h.Combine(n.Dest.Hash())
	}
	for _, a := range n.Args {
		h = h.Combine(a.Hash())
	}
	return h
}
