package optimize

import (
	"github.com/gamous/SDA/internal/exprtree"
)

// walkAndRewrite visits every node reachable from root, bottom-up, replacing
// each with rewrite's result where it differs. It returns the (possibly new)
// root, leaving the caller responsible for re-attaching it wherever root was
// read from (a TopNode, a Condition field, a line's Src).
func walkAndRewrite(root exprtree.Node, rewrite func(exprtree.Node) exprtree.Node) exprtree.Node {
	if root == nil {
		return nil
	}
	for _, child := range root.Children() {
		newChild := walkAndRewrite(child, rewrite)
		if newChild != child {
			root.ReplaceChild(child, newChild)
		}
	}
	return rewrite(root)
}

// canonicalizeTree recursively fixes commutative-operand order throughout
// root's subtree — the tie-break rule required before two
// structurally-equal-but-differently-ordered trees are compared by hash.
func canonicalizeTree(root exprtree.Node) {
	if root == nil {
		return
	}
	for _, child := range root.Children() {
		canonicalizeTree(child)
	}
	if op, ok := root.(*exprtree.OperationalNode); ok {
		op.CanonicalizeOperands()
	}
}
