package exprtree

// ConditionNode wraps a boolean-valued expression, optionally inverted, so
// it can be used as a value inside a larger expression. Condition-block
// optimization does not produce it: that pass joins two conditions with a
// BOOL_OR OperationalNode.
type ConditionNode struct {
	baseNode
	Cond     Node
	Inverted bool // true when the node represents !Cond
}

func NewConditionNode(cond Node, inverted bool) *ConditionNode {
	n := &ConditionNode{Cond: cond, Inverted: inverted}
	Attach(n, cond)
	return n
}

func (n *ConditionNode) Size() int          { return 1 }
func (n *ConditionNode) Children() []Node   { return []Node{n.Cond} }

func (n *ConditionNode) ReplaceChild(old, newChild Node) bool {
	if n.Cond != old {
		return false
	}
	Detach(n, n.Cond)
	n.Cond = newChild
	Attach(n, newChild)
	return true
}

func (n *ConditionNode) Clone() Node {
	return NewConditionNode(n.Cond.Clone(), n.Inverted)
}

func (n *ConditionNode) Hash() HS {
	h := HS(0xc0de).Combine(n.Cond.Hash())
	if n.Inverted {
		h = ^h
	}
	return h
}

// MirrorNode is a non-owning alias to another node: it shares the target's
// identity for hashing/comparison purposes without cloning it, representing
// "this value is exactly the expression already computed elsewhere" without
// duplicating the subtree. The join step does not create it; a join that
// disagrees produces a UnionNode.
type MirrorNode struct {
	baseNode
	Target Node
}

func NewMirrorNode(target Node) *MirrorNode {
	n := &MirrorNode{Target: target}
	Attach(n, target)
	return n
}

func (n *MirrorNode) Size() int        { return n.Target.Size() }
func (n *MirrorNode) Children() []Node { return []Node{n.Target} }

func (n *MirrorNode) ReplaceChild(old, newChild Node) bool {
	if n.Target != old {
		return false
	}
	Detach(n, n.Target)
	n.Target = newChild
	Attach(n, newChild)
	return true
}

func (n *MirrorNode) Clone() Node { return NewMirrorNode(n.Target) }
func (n *MirrorNode) Hash() HS    { return n.Target.Hash() }

// UnionNode represents a value that could be one of several expressions
// depending on control flow reaching this point — a join-time PHI-like
// union, produced when two predecessors disagree on a register's value.
// Expression optimization replaces a union left with a single variant by
// that variant; a union with several variants stays in the tree.
type UnionNode struct {
	baseNode
	Variants []Node
}

func NewUnionNode(variants ...Node) *UnionNode {
	n := &UnionNode{Variants: append([]Node(nil), variants...)}
	for _, v := range n.Variants {
		Attach(n, v)
	}
	return n
}

func (n *UnionNode) Size() int {
	if len(n.Variants) == 0 {
		return 0
	}
	return n.Variants[0].Size()
}

func (n *UnionNode) Children() []Node { return append([]Node(nil), n.Variants...) }

func (n *UnionNode) ReplaceChild(old, newChild Node) bool {
	replaced := false
	for i, v := range n.Variants {
		if v == old {
			Detach(n, v)
			n.Variants[i] = newChild
			Attach(n, newChild)
			replaced = true
		}
	}
	return replaced
}

func (n *UnionNode) Clone() Node {
	variants := make([]Node, len(n.Variants))
	for i, v := range n.Variants {
		variants[i] = v.Clone()
	}
	return NewUnionNode(variants...)
}

func (n *UnionNode) Hash() HS {
	h := HS(0x0521)
	for _, v := range n.Variants {
		h = h.CombineCommutative(v.Hash())
	}
	return h
}

// AddVariant appends expr to the union if no equal-hash variant is already
// present, keeping a union of two equal branches from growing spuriously.
func (n *UnionNode) AddVariant(expr Node) {
	for _, v := range n.Variants {
		if v.Hash() == expr.Hash() {
			return
		}
	}
	n.Variants = append(n.Variants, expr)
	Attach(n, expr)
}
