package exprtree

// TopNode is an ownership handle over a subtree root. The owning
// DecompiledCodeGraph is the arena for every node reachable from a TopNode
// it issued; Release detaches the handle's synthetic ownership edge so the
// root becomes collectible (by Go's GC) once no other parent/handle still
// references it: destroying the last owning reference destroys the
// subtree, expressed as ordinary garbage collection rather than manual
// arena bookkeeping.
type TopNode struct {
	root     Node
	released bool
}

// NewTopNode wraps root in an owning handle.
func NewTopNode(root Node) *TopNode {
	return &TopNode{root: root}
}

// Node returns the owned subtree root, or nil once Release has been called.
func (t *TopNode) Node() Node {
	if t.released {
		return nil
	}
	return t.root
}

// SetNode replaces the owned root (used when a pass rewrites the tree a
// TopNode handle was tracking, e.g. constant folding at the top level).
func (t *TopNode) SetNode(n Node) { t.root = n }

// Release marks the handle as no longer owning its subtree. Once every
// TopNode and parent reference to root is gone, Go's garbage collector
// reclaims it — mirroring the "destruction of the last owning reference"
// invariant without this module tracking reference counts by hand.
func (t *TopNode) Release() {
	t.root = nil
	t.released = true
}

// NodeCloneContext threads shared substitutions through a Clone() call when
// cloning a DAG (not a tree) so that nodes referenced by more than one
// parent are cloned once and the clone graph's sharing is preserved,
// matching the "shared ownership with observed back-edges" invariant for
// clones as well as originals.
type NodeCloneContext struct {
	cloned map[Node]Node
}

func NewNodeCloneContext() *NodeCloneContext {
	return &NodeCloneContext{cloned: map[Node]Node{}}
}

// CloneShared returns n's clone, creating and caching it on first use.
func (c *NodeCloneContext) CloneShared(n Node) Node {
	if n == nil {
		return nil
	}
	if existing, ok := c.cloned[n]; ok {
		return existing
	}
	clone := n.Clone()
	c.cloned[n] = clone
	return clone
}
