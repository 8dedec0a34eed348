package decgraph

// LocalVariable is a decompiler-level symbol: a local the primary
// decompiler or an optimization pass introduced (a register-backed value,
// a spill temporary, or a line-expansion temporary). It implements
// exprtree.Symbol.
type LocalVariable struct {
	id   uint32
	size int
	name string
}

func (v *LocalVariable) SymbolID() uint32 { return v.id }
func (v *LocalVariable) SymbolSize() int  { return v.size }
func (v *LocalVariable) Name() string     { return v.name }
func (v *LocalVariable) SetName(name string) { v.name = name }
