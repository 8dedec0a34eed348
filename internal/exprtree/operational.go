package exprtree

import "github.com/gamous/SDA/internal/pcode"

var commutativeOps = map[pcode.Opcode]bool{
	pcode.OpIntAdd:   true,
	pcode.OpIntMult:  true,
	pcode.OpIntAnd:   true,
	pcode.OpIntOr:    true,
	pcode.OpIntXor:   true,
	pcode.OpIntEqual: true,
	pcode.OpIntNotEqual: true,
	pcode.OpBoolAnd:  true,
	pcode.OpBoolOr:   true,
	pcode.OpBoolXor:  true,
	pcode.OpFloatAdd: true,
	pcode.OpFloatMult: true,
	pcode.OpFloatEqual: true,
}

// IsCommutative reports whether op's two operands can be freely reordered,
// the precondition for the canonical-ordering tie-break rule below.
func IsCommutative(op pcode.Opcode) bool { return commutativeOps[op] }

// OperationalNode is a unary or binary operation over sub-expressions. Rhs
// is nil for unary operations (INT_NEGATE, BOOL_NEGATE, the float unary
// ops, INT_ZEXT/INT_SEXT).
type OperationalNode struct {
	baseNode
	Op       pcode.Opcode
	Lhs, Rhs Node
	Mask     pcode.BitMask64
	SizeBytes int
}

func NewOperationalNode(op pcode.Opcode, lhs, rhs Node, size int) *OperationalNode {
	n := &OperationalNode{Op: op, Lhs: lhs, Rhs: rhs, SizeBytes: size}
	Attach(n, lhs)
	Attach(n, rhs)
	return n
}

func (n *OperationalNode) Size() int { return n.SizeBytes }

func (n *OperationalNode) Children() []Node {
	if n.Rhs == nil {
		return []Node{n.Lhs}
	}
	return []Node{n.Lhs, n.Rhs}
}

func (n *OperationalNode) ReplaceChild(old, newChild Node) bool {
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

func (n *OperationalNode) Clone() Node {
	var lhs, rhs Node
	if n.Lhs != nil {
		lhs = n.Lhs.Clone()
	}
	if n.Rhs != nil {
		rhs = n.Rhs.Clone()
	}
	return NewOperationalNode(n.Op, lhs, rhs, n.SizeBytes)
}

func (n *OperationalNode) Hash() HS {
	base := HS(n.Op) << 56
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

// CanonicalizeOperands swaps Lhs/Rhs for a commutative op so that the
// lower-hash operand is first, a deterministic tie-break (ascending hash,
// then ascending symbol id) that keeps equivalent expressions built in
// either operand order from hashing or printing differently.
func (n *OperationalNode) CanonicalizeOperands() {
	if n.Rhs == nil || !IsCommutative(n.Op) {
		return
	}
	if OperandLess(n.Rhs, n.Lhs) {
		n.Lhs, n.Rhs = n.Rhs, n.Lhs
	}
}

// OperandLess orders two operands for canonical display/hashing: ascending
// hash, then — when hashes collide — ascending symbol id for SymbolLeaf
// operands.
func OperandLess(a, b Node) bool {
	ah, bh := a.Hash(), b.Hash()
	if ah != bh {
		return ah < bh
	}
	as, aok := a.(*SymbolLeaf)
	bs, bok := b.(*SymbolLeaf)
	if aok && bok {
		return as.Sym.SymbolID() < bs.Sym.SymbolID()
	}
	return false
}
