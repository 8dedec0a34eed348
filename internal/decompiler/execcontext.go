package decompiler

import (
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ExecContext is the per-block abstract-interpretation state: a snapshot of
// register values before interpretation (Start) and after/during (Current),
// plus a map from symbolic-temporary varnodes to their expression.
type ExecContext struct {
	Start   *RegisterExecContext
	Current *RegisterExecContext

	symbolVarnodes map[pcode.SymbolID]*exprtree.TopNode
	block          *pcode.PCodeBlock
}

// NewExecContext creates an empty context for block.
func NewExecContext(block *pcode.PCodeBlock) *ExecContext {
	ctx := &ExecContext{symbolVarnodes: map[pcode.SymbolID]*exprtree.TopNode{}, block: block}
	ctx.Start = newRegisterExecContext(ctx)
	ctx.Current = newRegisterExecContext(ctx)
	return ctx
}

// RequestVarnode reads varnode's current value, dispatching on its concrete
// type.
func (c *ExecContext) RequestVarnode(v pcode.Varnode) exprtree.Node {
	switch vn := v.(type) {
	case pcode.RegisterVarnode:
		return c.Current.RequestRegister(vn.Register)
	case pcode.SymbolVarnode:
		if top, ok := c.symbolVarnodes[vn.ID]; ok {
			return top.Node()
		}
		return exprtree.NewNumberLeaf(0, int(vn.Size))
	case pcode.ConstantVarnode:
		return exprtree.NewNumberLeaf(vn.Value, int(vn.Size))
	default:
		return exprtree.NewNumberLeaf(0, 1)
	}
}

// SetVarnode writes expr as varnode's new value.
func (c *ExecContext) SetVarnode(v pcode.Varnode, expr exprtree.Node) {
	switch vn := v.(type) {
	case pcode.RegisterVarnode:
		c.Current.SetRegister(vn.Register, expr)
	case pcode.SymbolVarnode:
		c.symbolVarnodes[vn.ID] = exprtree.NewTopNode(expr)
	}
}

// SymbolVarnodes exposes the context's symbolic-temporary bindings for the
// optimization pipeline to walk and rewrite in place.
func (c *ExecContext) SymbolVarnodes() map[pcode.SymbolID]*exprtree.TopNode {
	return c.symbolVarnodes
}

// Join merges other's current state into c's current state.
func (c *ExecContext) Join(other *ExecContext) {
	c.Current.Join(other.Current)
	for id, top := range other.symbolVarnodes {
		if _, ok := c.symbolVarnodes[id]; !ok {
			c.symbolVarnodes[id] = top
		}
	}
}
