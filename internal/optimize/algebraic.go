package optimize

import (
	"github.com/gamous/SDA/internal/decompiler"
	"github.com/gamous/SDA/internal/exprtree"
	"github.com/gamous/SDA/internal/pcode"
)

// ExpressionOptimization canonicalizes commutative-operand order and folds
// algebraic/constant identities throughout every block's live register
// state, symbol bindings, and terminating condition. It
// runs before parallel-assignment creation, so it operates on ExecContext
// roots directly rather than on assignment lines.
func ExpressionOptimization(result *decompiler.Result) error {
	for _, b := range result.Graph.Blocks() {
		ctx, ok := result.ExecContexts[b.PCodeBlock]
		if !ok {
			continue
		}
		for _, list := range ctx.Current.Entries() {
			for _, info := range list {
				simplifyTop(info.Expr)
			}
		}
		for _, top := range ctx.SymbolVarnodes() {
			simplifyTop(top)
		}
		if b.Condition != nil {
			b.Condition = simplifyNode(b.Condition)
		}
	}
	return nil
}

func simplifyTop(top *exprtree.TopNode) {
	if top == nil || top.Node() == nil {
		return
	}
	top.SetNode(simplifyNode(top.Node()))
}

// simplifyNode rewrites root bottom-up: canonicalize commutative operands,
// then fold constant-operand operations and a handful of algebraic
// identities.
func simplifyNode(root exprtree.Node) exprtree.Node {
	return walkAndRewrite(root, foldOne)
}

func foldOne(n exprtree.Node) exprtree.Node {
	switch v := n.(type) {
	case *exprtree.OperationalNode:
		v.CanonicalizeOperands()
		if folded := foldConstants(v); folded != nil {
			return folded
		}
		if identity := foldIdentity(v); identity != nil {
			return identity
		}
		return v
	case *exprtree.UnionNode:
		if len(v.Variants) == 1 {
			return v.Variants[0]
		}
		return v
	default:
		return n
	}
}

func asNumber(n exprtree.Node) (uint64, bool) {
	lit, ok := n.(*exprtree.NumberLeaf)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

func foldConstants(v *exprtree.OperationalNode) exprtree.Node {
	lhs, lok := asNumber(v.Lhs)
	if v.Rhs == nil {
		if !lok {
			return nil
		}
		switch v.Op {
		case pcode.OpIntNegate:
			return exprtree.NewNumberLeaf(uint64(-int64(lhs)), v.SizeBytes)
		case pcode.OpIntNot:
			return exprtree.NewNumberLeaf(^lhs, v.SizeBytes)
		case pcode.OpBoolNegate:
			return exprtree.NewNumberLeaf(boolToWord(lhs == 0), v.SizeBytes)
		case pcode.OpIntZext, pcode.OpIntSext:
			return exprtree.NewNumberLeaf(lhs, v.SizeBytes)
		}
		return nil
	}

	rhs, rok := asNumber(v.Rhs)
	if !lok || !rok {
		return nil
	}
	switch v.Op {
	case pcode.OpIntAdd:
		return exprtree.NewNumberLeaf(lhs+rhs, v.SizeBytes)
	case pcode.OpIntSub:
		return exprtree.NewNumberLeaf(lhs-rhs, v.SizeBytes)
	case pcode.OpIntMult:
		return exprtree.NewNumberLeaf(lhs*rhs, v.SizeBytes)
	case pcode.OpIntAnd:
		return exprtree.NewNumberLeaf(lhs&rhs, v.SizeBytes)
	case pcode.OpIntOr:
		return exprtree.NewNumberLeaf(lhs|rhs, v.SizeBytes)
	case pcode.OpIntXor:
		return exprtree.NewNumberLeaf(lhs^rhs, v.SizeBytes)
	case pcode.OpIntEqual:
		return exprtree.NewNumberLeaf(boolToWord(lhs == rhs), v.SizeBytes)
	case pcode.OpIntNotEqual:
		return exprtree.NewNumberLeaf(boolToWord(lhs != rhs), v.SizeBytes)
	case pcode.OpIntLess:
		return exprtree.NewNumberLeaf(boolToWord(lhs < rhs), v.SizeBytes)
	case pcode.OpIntLessEqual:
		return exprtree.NewNumberLeaf(boolToWord(lhs <= rhs), v.SizeBytes)
	case pcode.OpBoolAnd:
		return exprtree.NewNumberLeaf(boolToWord(lhs != 0 && rhs != 0), v.SizeBytes)
	case pcode.OpBoolOr:
		return exprtree.NewNumberLeaf(boolToWord(lhs != 0 || rhs != 0), v.SizeBytes)
	case pcode.OpIntDiv:
		if rhs == 0 {
			return nil
		}
		return exprtree.NewNumberLeaf(lhs/rhs, v.SizeBytes)
	}
	return nil
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// foldIdentity applies identities that hold regardless of whether the
// non-constant operand folds further: x+0, x*1, x*0, x^x, x&x, x|x.
func foldIdentity(v *exprtree.OperationalNode) exprtree.Node {
	if v.Rhs == nil {
		return nil
	}
	rhsNum, rok := asNumber(v.Rhs)
	switch v.Op {
	case pcode.OpIntAdd, pcode.OpIntOr, pcode.OpIntXor:
		if rok && rhsNum == 0 && v.Op != pcode.OpIntXor {
			return v.Lhs
		}
	case pcode.OpIntMult:
		if rok && rhsNum == 1 {
			return v.Lhs
		}
		if rok && rhsNum == 0 {
			return exprtree.NewNumberLeaf(0, v.SizeBytes)
		}
	case pcode.OpIntAnd:
		if rok && rhsNum == 0 {
			return exprtree.NewNumberLeaf(0, v.SizeBytes)
		}
	}
	if v.Lhs.Hash() == v.Rhs.Hash() {
		switch v.Op {
		case pcode.OpIntXor, pcode.OpIntSub:
			return exprtree.NewNumberLeaf(0, v.SizeBytes)
		case pcode.OpIntAnd, pcode.OpIntOr:
			return v.Lhs
		case pcode.OpIntEqual:
			return exprtree.NewNumberLeaf(1, v.SizeBytes)
		case pcode.OpIntNotEqual:
			return exprtree.NewNumberLeaf(0, v.SizeBytes)
		}
	}
	return nil
}
