// Package decompiler implements the primary decompiler: an abstract
// interpreter that lifts a FunctionPCodeGraph into a DecompiledCodeGraph by
// walking PCode blocks and building expression trees over a per-block
// ExecContext.
package decompiler

import (
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// UsingMode records how fully a RegisterInfo's slice was consumed the last
// time it was read — kept to help a later pass decide which register
// carries a function's return value.
type UsingMode int

const (
	RegisterNotUsing UsingMode = iota
	RegisterPartiallyUsing
	RegisterFullyUsing
)

// RegisterInfo is one live sub-slice of an architectural register: the
// slice itself, the expression that currently owns it, the ExecContext it
// originated from, and how fully it has been read.
type RegisterInfo struct {
	Reg   pcode.Register
	Expr  *exprtree.TopNode
	Src   *ExecContext
	Using UsingMode
}

// RegisterExecContext maps register ids to the list of currently live
// sub-slices.
type RegisterExecContext struct {
	owner   *ExecContext
	entries map[pcode.RegisterID][]*RegisterInfo
}

func newRegisterExecContext(owner *ExecContext) *RegisterExecContext {
	return &RegisterExecContext{owner: owner, entries: map[pcode.RegisterID][]*RegisterInfo{}}
}

// Entries exposes the live register slices for the optimization pipeline,
// which needs to rewrite the expression trees they own in place. The
// returned map is the context's own storage, not a copy.
func (r *RegisterExecContext) Entries() map[pcode.RegisterID][]*RegisterInfo {
	return r.entries
}

// Clear drops every live entry.
func (r *RegisterExecContext) Clear() {
	r.entries = map[pcode.RegisterID][]*RegisterInfo{}
}

// CopyFrom replaces r's entries with a shallow copy of other's — used when
// re-entering a previously decompiled block via a new loop version, to
// reset the block's current state from the state it had on first entry.
func (r *RegisterExecContext) CopyFrom(other *RegisterExecContext) {
	r.entries = map[pcode.RegisterID][]*RegisterInfo{}
	for id, list := range other.entries {
		r.entries[id] = append([]*RegisterInfo(nil), list...)
	}
}

type regFragment struct {
	lo, hi uint8 // byte range [lo, hi)
	owner  *RegisterInfo
}

// fragmentsFor partitions reg's byte range into maximal runs sharing the
// same owning RegisterInfo (or no owner, for a gap). Live entries for one
// register id can overlap: a shrunk entry keeps the whole byte span of
// what is left of it, gaps included (writing AH over EAX leaves an entry
// still spanning bytes 0-4), and Join appends any entry of the other side
// whose exact slice has no counterpart. Where entries overlap, the one
// later in the list owns the shared bytes. A single pass marking each
// entry's covered bytes into a bitset finds every boundary; that sidesteps
// rescanning the whole entry list per byte.
func (r *RegisterExecContext) fragmentsFor(reg pcode.Register) []regFragment {
	list := r.entries[reg.ID]
	size := uint(reg.Size)
	covered := bitset.New(size)
	ownerAt := make([]*RegisterInfo, size)
	for _, info := range list {
		lo, hi := info.Reg.ByteOffset, info.Reg.ByteOffset+info.Reg.Size
		if lo < reg.ByteOffset {
			lo = reg.ByteOffset
		}
		if hi > reg.ByteOffset+reg.Size {
			hi = reg.ByteOffset + reg.Size
		}
		for b := lo; b < hi; b++ {
			rel := uint(b - reg.ByteOffset)
			covered.Set(rel)
			ownerAt[rel] = info
		}
	}

	var frags []regFragment
	for b := uint(0); b < size; {
		owner := ownerAt[b]
		end := b + 1
		for end < size && ownerAt[end] == owner && covered.Test(end) == covered.Test(b) {
			end++
		}
		frags = append(frags, regFragment{
			lo:    reg.ByteOffset + uint8(b),
			hi:    reg.ByteOffset + uint8(end),
			owner: owner,
		})
		b = end
	}
	return frags
}

// RequestRegister reconstructs the expression for reg out of the currently
// live sub-slices, combining multiple partial definitions with OR and
// filling gaps with a fresh RegisterReadLeaf placeholder.
func (r *RegisterExecContext) RequestRegister(reg pcode.Register) exprtree.Node {
	frags := r.fragmentsFor(reg)
	if len(frags) == 1 && frags[0].owner != nil &&
		frags[0].owner.Reg.ByteOffset == reg.ByteOffset && frags[0].owner.Reg.Size == reg.Size {
		frags[0].owner.Using = RegisterFullyUsing
		return frags[0].owner.Expr.Node()
	}

	pieces := make([]exprtree.Node, 0, len(frags))
	for _, f := range frags {
		pieceReg := pcode.Register{ID: reg.ID, ByteOffset: f.lo, Size: f.hi - f.lo}
		var expr exprtree.Node
		if f.owner != nil {
			if f.owner.Using == RegisterNotUsing {
				f.owner.Using = RegisterPartiallyUsing
			}
			expr = sliceExprFromEntry(f.owner, pieceReg)
		} else {
			expr = exprtree.NewRegisterReadLeaf(pieceReg)
		}
		pieces = append(pieces, shiftToAbsolute(expr, pieceReg, reg))
	}
	return CreateExprFromRegisterParts(pieces, reg)
}

// sliceExprFromEntry extracts the pieceReg-sized sub-slice of info's owned
// expression, which is sized for info.Reg.
func sliceExprFromEntry(info *RegisterInfo, pieceReg pcode.Register) exprtree.Node {
	full := info.Expr.Node()
	if pieceReg.ByteOffset == info.Reg.ByteOffset && pieceReg.Size == info.Reg.Size {
		return full
	}
	relOffset := pieceReg.ByteOffset - info.Reg.ByteOffset
	node := exprtree.NewOperationalNode(pcode.OpSubpiece, full, nil, int(pieceReg.Size))
	node.Mask = pcode.NewBitMask64(relOffset, pieceReg.Size)
	return node
}

// shiftToAbsolute zero-extends and shifts a pieceReg-sized expression into
// its position within reg, so pieces can be OR'd together directly.
func shiftToAbsolute(expr exprtree.Node, pieceReg, reg pcode.Register) exprtree.Node {
	if pieceReg.ByteOffset == reg.ByteOffset && pieceReg.Size == reg.Size {
		return expr
	}
	zext := exprtree.NewOperationalNode(pcode.OpIntZext, expr, nil, int(reg.Size))
	shiftBy := (pieceReg.ByteOffset - reg.ByteOffset) * 8
	if shiftBy == 0 {
		return zext
	}
	return exprtree.NewOperationalNode(pcode.OpIntLeftShift, zext,
		exprtree.NewNumberLeaf(uint64(shiftBy), 1), int(reg.Size))
}

// CreateExprFromRegisterParts ORs together the absolute-positioned pieces
// produced by RequestRegister into one expression of reg's size.
func CreateExprFromRegisterParts(pieces []exprtree.Node, reg pcode.Register) exprtree.Node {
	if len(pieces) == 0 {
		return exprtree.NewRegisterReadLeaf(reg)
	}
	acc := pieces[0]
	for _, p := range pieces[1:] {
		acc = exprtree.NewOperationalNode(pcode.OpIntOr, acc, p, int(reg.Size))
	}
	return acc
}

// SetRegister removes or shrinks every existing entry whose mask
// intersects reg.Mask() and appends a new, fully-owning entry.
func (r *RegisterExecContext) SetRegister(reg pcode.Register, expr exprtree.Node) {
	list := r.entries[reg.ID]
	kept := list[:0:0]
	for _, info := range list {
		if !info.Reg.Intersects(reg) {
			kept = append(kept, info)
			continue
		}
		remaining := info.Reg.SubtractMask(reg.Mask())
		if remaining == 0 {
			continue
		}
		lo, hi := remaining.Bytes()
		shrunkReg := pcode.Register{ID: reg.ID, ByteOffset: lo, Size: hi - lo}
		shrunkExpr := info.Expr
		if shrunkReg != info.Reg {
			shrunkExpr = exprtree.NewTopNode(sliceExprFromEntry(info, shrunkReg))
		}
		shrunk := &RegisterInfo{
			Reg:   shrunkReg,
			Expr:  shrunkExpr,
			Src:   info.Src,
			Using: info.Using,
		}
		kept = append(kept, shrunk)
	}
	kept = append(kept, &RegisterInfo{Reg: reg, Expr: exprtree.NewTopNode(expr), Src: r.owner, Using: RegisterNotUsing})
	r.entries[reg.ID] = kept
}

// Join merges other's live entries into r: a mask present on both sides
// with an unequal expression becomes a union, to be canonicalized later by
// the optimization pipeline. Register ids are visited in ascending order so
// that two contexts built from the same inputs always join identically,
// regardless of Go's randomized map iteration order.
func (r *RegisterExecContext) Join(other *RegisterExecContext) {
	ordered := append(maps.Keys(r.entries), maps.Keys(other.entries)...)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	for _, id := range ordered {
		r.entries[id] = joinRegisterList(r.entries[id], other.entries[id])
	}
}

func joinRegisterList(a, b []*RegisterInfo) []*RegisterInfo {
	if len(a) == 0 {
		return append([]*RegisterInfo(nil), b...)
	}
	if len(b) == 0 {
		return a
	}
	merged := append([]*RegisterInfo(nil), a...)
	for _, bi := range b {
		matched := false
		for i, ai := range merged {
			if ai.Reg == bi.Reg {
				matched = true
				if ai.Expr.Node().Hash() == bi.Expr.Node().Hash() {
					continue
				}
				union := exprtree.NewUnionNode(ai.Expr.Node(), bi.Expr.Node())
				merged[i] = &RegisterInfo{Reg: ai.Reg, Expr: exprtree.NewTopNode(union), Using: RegisterNotUsing}
			}
		}
		if !matched {
			merged = append(merged, bi)
		}
	}
	return merged
}
