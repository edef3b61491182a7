package smt

// Substitute rebuilds e bottom-up, replacing any subterm whose
// identity (Id()) is a key of subst with the corresponding replacement,
// and reusing the builder's simplifying constructors for every
// non-replaced operator application so the result is still hash-consed
// structurally, not just patched in place. This is the general
// substitution primitive core.Unroller (state/input variable renaming
// at a given time step) and engines.ValueAbstractor (value literal ->
// frozen variable) are both built on; its shape mirrors eval.go's
// eval_internal (same switch over kind(), same bottom-up cache), but
// keyed on arbitrary term replacement rather than only constant lookup.
func (eb *ExprBuilder) Substitute(e ExprPtr, subst map[uintptr]ExprPtr) ExprPtr {
	cache := make(map[uintptr]ExprPtr)
	return eb.substituteInternal(e, subst, cache)
}

func (eb *ExprBuilder) substituteInternal(eptr ExprPtr, subst map[uintptr]ExprPtr, cache map[uintptr]ExprPtr) ExprPtr {
	if r, ok := subst[eptr.Id()]; ok {
		return r
	}
	if r, ok := cache[eptr.Id()]; ok {
		return r
	}

	e := eptr.getInternal()
	var result ExprPtr
	var err error

	switch e.kind() {
	case KindSym, KindBoolSym, KindConst, KindBoolConst:
		result = eptr
	case KindExtract:
		n := e.(*bvExtractNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BVExprPtr)
		result, err = eb.Extract(child, n.high, n.low)
	case KindConcat:
		n := e.(*bvConcatNode)
		res := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		for i := 1; i < len(n.children); i++ {
			child := eb.substituteInternal(n.children[i], subst, cache).(*BVExprPtr)
			res, err = eb.Concat(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindZExt:
		n := e.(*bvExtendNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BVExprPtr)
		result, err = eb.ZExt(child, n.n)
	case KindSExt:
		n := e.(*bvExtendNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BVExprPtr)
		result, err = eb.SExt(child, n.n)
	case KindITE:
		n := e.(*bvIteNode)
		guard := eb.substituteInternal(n.cond, subst, cache).(*BoolExprPtr)
		iftrue := eb.substituteInternal(n.iftrue, subst, cache).(*BVExprPtr)
		iffalse := eb.substituteInternal(n.iffalse, subst, cache).(*BVExprPtr)
		result, err = eb.ITE(guard, iftrue, iffalse)
	case KindNot:
		n := e.(*bvUnOpNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BVExprPtr)
		result = eb.Not(child)
	case KindNeg:
		n := e.(*bvUnOpNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BVExprPtr)
		result = eb.Neg(child)
	case KindShl, KindLshr, KindAshr, KindAnd, KindOr, KindXor, KindAdd, KindMul:
		n := e.(*bvNaryOpNode)
		res := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		for i := 1; i < len(n.children); i++ {
			child := eb.substituteInternal(n.children[i], subst, cache).(*BVExprPtr)
			res, err = applyBinArith(eb, n.kind(), res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindSdiv:
		n := e.(*bvNaryOpNode)
		lhs := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		rhs := eb.substituteInternal(n.children[1], subst, cache).(*BVExprPtr)
		result, err = eb.SDiv(lhs, rhs)
	case KindUdiv:
		n := e.(*bvNaryOpNode)
		lhs := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		rhs := eb.substituteInternal(n.children[1], subst, cache).(*BVExprPtr)
		result, err = eb.UDiv(lhs, rhs)
	case KindSrem:
		n := e.(*bvNaryOpNode)
		lhs := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		rhs := eb.substituteInternal(n.children[1], subst, cache).(*BVExprPtr)
		result, err = eb.SRem(lhs, rhs)
	case KindUrem:
		n := e.(*bvNaryOpNode)
		lhs := eb.substituteInternal(n.children[0], subst, cache).(*BVExprPtr)
		rhs := eb.substituteInternal(n.children[1], subst, cache).(*BVExprPtr)
		result, err = eb.URem(lhs, rhs)
	case KindUlt, KindUle, KindUgt, KindUge, KindSlt, KindSle, KindSgt, KindSge, KindEq:
		n := e.(*bvCmpNode)
		lhs := eb.substituteInternal(n.lhs, subst, cache).(*BVExprPtr)
		rhs := eb.substituteInternal(n.rhs, subst, cache).(*BVExprPtr)
		result, err = applyCmp(eb, n.kind(), lhs, rhs)
	case KindBoolNot:
		n := e.(*boolNotOpNode)
		child := eb.substituteInternal(n.child, subst, cache).(*BoolExprPtr)
		result, err = eb.BoolNot(child)
	case KindBoolAnd:
		n := e.(*boolNaryOpNode)
		res := eb.substituteInternal(n.children[0], subst, cache).(*BoolExprPtr)
		for i := 1; i < len(n.children); i++ {
			child := eb.substituteInternal(n.children[i], subst, cache).(*BoolExprPtr)
			res, err = eb.BoolAnd(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindBoolOr:
		n := e.(*boolNaryOpNode)
		res := eb.substituteInternal(n.children[0], subst, cache).(*BoolExprPtr)
		for i := 1; i < len(n.children); i++ {
			child := eb.substituteInternal(n.children[i], subst, cache).(*BoolExprPtr)
			res, err = eb.BoolOr(res, child)
			if err != nil {
				break
			}
		}
		result = res
	default:
		panic("smt: Substitute: invalid expression type")
	}

	if err != nil {
		panic(err)
	}

	cache[eptr.Id()] = result
	return result
}

func applyBinArith(eb *ExprBuilder, kind Kind, lhs, rhs *BVExprPtr) (*BVExprPtr, error) {
	switch kind {
	case KindShl:
		return eb.Shl(lhs, rhs)
	case KindLshr:
		return eb.LShr(lhs, rhs)
	case KindAshr:
		return eb.AShr(lhs, rhs)
	case KindAnd:
		return eb.And(lhs, rhs)
	case KindOr:
		return eb.Or(lhs, rhs)
	case KindXor:
		return eb.Xor(lhs, rhs)
	case KindAdd:
		return eb.Add(lhs, rhs)
	case KindMul:
		return eb.Mul(lhs, rhs)
	default:
		panic("smt: Substitute: unreachable bin-arithmetic kind")
	}
}

func applyCmp(eb *ExprBuilder, kind Kind, lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	switch kind {
	case KindUlt:
		return eb.Ult(lhs, rhs)
	case KindUle:
		return eb.Ule(lhs, rhs)
	case KindUgt:
		return eb.UGt(lhs, rhs)
	case KindUge:
		return eb.UGe(lhs, rhs)
	case KindSlt:
		return eb.SLt(lhs, rhs)
	case KindSle:
		return eb.SLe(lhs, rhs)
	case KindSgt:
		return eb.SGt(lhs, rhs)
	case KindSge:
		return eb.SGe(lhs, rhs)
	case KindEq:
		return eb.Eq(lhs, rhs)
	default:
		panic("smt: Substitute: unreachable comparison kind")
	}
}
