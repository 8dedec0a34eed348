package exprtree

import "github.com/gamous/SDA/internal/pcode"

// Symbol is the narrow view SymbolLeaf needs of a decompiler-level local
// variable, satisfied by decgraph.LocalVariable. Kept as an interface here
// (rather than importing decgraph) to avoid a package cycle: decgraph's
// graph owns exprtree nodes, so exprtree cannot import it back.
type Symbol interface {
	SymbolID() uint32
	SymbolSize() int
}

// NumberLeaf is a constant value of a fixed byte size.
type NumberLeaf struct {
	baseNode
	Value    uint64
	SizeBytes int
}

func NewNumberLeaf(value uint64, size int) *NumberLeaf {
	return &NumberLeaf{Value: value, SizeBytes: size}
}

func (n *NumberLeaf) Size() int          { return n.SizeBytes }
func (n *NumberLeaf) Children() []Node   { return nil }
func (n *NumberLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *NumberLeaf) Clone() Node        { return &NumberLeaf{Value: n.Value, SizeBytes: n.SizeBytes} }
func (n *NumberLeaf) Hash() HS {
	return HS(0xA5A5A5A5) ^ HS(n.Value) ^ HS(n.SizeBytes)<<48
}

// SymbolLeaf reads the current value bound to a decompiler symbol (a local
// variable allocated by the primary decompiler or a prior optimization
// pass).
type SymbolLeaf struct {
	baseNode
	Sym Symbol
}

func NewSymbolLeaf(sym Symbol) *SymbolLeaf { return &SymbolLeaf{Sym: sym} }

func (n *SymbolLeaf) Size() int          { return n.Sym.SymbolSize() }
func (n *SymbolLeaf) Children() []Node   { return nil }
func (n *SymbolLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *SymbolLeaf) Clone() Node        { return &SymbolLeaf{Sym: n.Sym} }
func (n *SymbolLeaf) Hash() HS {
	return HS(0x5ca1ab1e) ^ HS(n.Sym.SymbolID())
}

// RegisterReadLeaf reads a register slice whose defining expression is
// still unknown at this point — the placeholder requestRegister emits when
// no live slice covers (part of) the requested mask.
type RegisterReadLeaf struct {
	baseNode
	Register pcode.Register
}

func NewRegisterReadLeaf(reg pcode.Register) *RegisterReadLeaf {
	return &RegisterReadLeaf{Register: reg}
}

func (n *RegisterReadLeaf) Size() int        { return int(n.Register.Size) }
func (n *RegisterReadLeaf) Children() []Node { return nil }
func (n *RegisterReadLeaf) ReplaceChild(Node, Node) bool { return false }
func (n *RegisterReadLeaf) Clone() Node {
	return &RegisterReadLeaf{Register: n.Register}
}
func (n *RegisterReadLeaf) Hash() HS {
	return HS(0xdeadbeef) ^ HS(n.Register.ID)<<16 ^ HS(n.Register.ByteOffset)<<8 ^ HS(n.Register.Size)
}
