package exprtree

import "github.com/gamous/SDA/internal/host"

// FunctionCallNode is the result of a resolved or unresolved CALL/CALLIND:
// Dest is the call's target expression, read from the instruction's first
// input (a constant for a direct call, a computed expression such as a
// virtual-table load for an indirect one); Signature drives the argument
// placeholders' storage.
type FunctionCallNode struct {
	baseNode
	Dest      Node // call target expression
	Args      []Node
	Signature *host.FunctionSignature
	SizeBytes int

	// Ambiguous is set when no signature could be statically resolved and
	// the host's default signature was substituted.
	Ambiguous bool
}

func NewFunctionCallNode(dest Node, args []Node, sig *host.FunctionSignature, size int) *FunctionCallNode {
	n := &FunctionCallNode{Dest: dest, Args: append([]Node(nil), args...), Signature: sig, SizeBytes: size}
	Attach(n, dest)
	for _, a := range n.Args {
		Attach(n, a)
	}
	return n
}

func (n *FunctionCallNode) Size() int { return n.SizeBytes }

func (n *FunctionCallNode) Children() []Node {
	children := make([]Node, 0, len(n.Args)+1)
	if n.Dest != nil {
		children = append(children, n.Dest)
	}
	children = append(children, n.Args...)
	return children
}

func (n *FunctionCallNode) ReplaceChild(old, newChild Node) bool {
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

func (n *FunctionCallNode) Clone() Node {
	var dest Node
	if n.Dest != nil {
		dest = n.Dest.Clone()
	}
	args := make([]Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Clone()
	}
	clone := NewFunctionCallNode(dest, args, n.Signature, n.SizeBytes)
	clone.Ambiguous = n.Ambiguous
	return clone
}

func (n *FunctionCallNode) Hash() HS {
	h := HS(0xca11)
	if n.Dest != nil {
		h = h.Combine(n.Dest.Hash())
	} else if n.Signature != nil {
		for _, r := range n.Signature.Name {
			h = h.Combine(HS(r))
		}
	}
	for _, a := range n.Args {
		h = h.Combine(a.Hash())
	}
	return h
}
