package smt

func (eb *ExprBuilder) eval(e ExprPtr, interpr map[string]*BVConst) ExprPtr {
	cache := make(map[uintptr]ExprPtr)
	return eb.eval_internal(e, cache, interpr)
}

func (eb *ExprBuilder) eval_internal(eptr ExprPtr, cache map[uintptr]ExprPtr, interpr map[string]*BVConst) ExprPtr {
	e := eptr.getInternal()
	if r, ok := cache[e.rawPtr()]; ok {
		return r
	}

	var result ExprPtr
	var err error = nil
	switch e.kind() {
	case KindSym:
		bv := e.(*bvSymNode)
		if c, ok := interpr[bv.name]; ok {
			cInt := newBVConstNodeFromConst(*c)
			return eb.getOrCreateBV(cInt)
		}
		return eptr
	case KindConst:
		return eptr
	case KindExtract:
		e := e.(*bvExtractNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BVExprPtr)
		result, err = eb.Extract(child, e.high, e.low)
	case KindConcat:
		e := e.(*bvConcatNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.Concat(res, child)
		}
		result = res
	case KindZExt:
		e := e.(*bvExtendNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BVExprPtr)
		result, err = eb.ZExt(child, e.n)
	case KindSExt:
		e := e.(*bvExtendNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BVExprPtr)
		result, err = eb.SExt(child, e.n)
	case KindITE:
		e := e.(*bvIteNode)
		guard := eb.eval_internal(e.cond, cache, interpr).(*BoolExprPtr)
		iftrue := eb.eval_internal(e.iftrue, cache, interpr).(*BVExprPtr)
		iffalse := eb.eval_internal(e.iffalse, cache, interpr).(*BVExprPtr)
		result, err = eb.ITE(guard, iftrue, iffalse)
	case KindNot:
		e := e.(*bvUnOpNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BVExprPtr)
		result = eb.Not(child)
	case KindNeg:
		e := e.(*bvUnOpNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BVExprPtr)
		result = eb.Neg(child)
	case KindShl:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.Shl(lhs, rhs)
	case KindLshr:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.LShr(lhs, rhs)
	case KindAshr:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.AShr(lhs, rhs)
	case KindAnd:
		e := e.(*bvNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.And(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindOr:
		e := e.(*bvNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.Or(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindXor:
		e := e.(*bvNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.Xor(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindAdd:
		e := e.(*bvNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.Add(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindMul:
		e := e.(*bvNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BVExprPtr)
			res, err = eb.Mul(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindSdiv:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.SDiv(lhs, rhs)
	case KindUdiv:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.UDiv(lhs, rhs)
	case KindSrem:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.SRem(lhs, rhs)
	case KindUrem:
		e := e.(*bvNaryOpNode)
		lhs := eb.eval_internal(e.children[0], cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.children[1], cache, interpr).(*BVExprPtr)
		result, err = eb.URem(lhs, rhs)
	case KindUlt:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.Ult(lhs, rhs)
	case KindUle:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.Ule(lhs, rhs)
	case KindUgt:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.UGt(lhs, rhs)
	case KindUge:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.UGe(lhs, rhs)
	case KindSlt:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.SLt(lhs, rhs)
	case KindSle:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.SLe(lhs, rhs)
	case KindSgt:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.SGt(lhs, rhs)
	case KindSge:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.SGe(lhs, rhs)
	case KindEq:
		e := e.(*bvCmpNode)
		lhs := eb.eval_internal(e.lhs, cache, interpr).(*BVExprPtr)
		rhs := eb.eval_internal(e.rhs, cache, interpr).(*BVExprPtr)
		result, err = eb.Eq(lhs, rhs)
	case KindBoolConst:
		e := e.(*boolConstNode)
		result = eb.BoolVal(e.Value.Value)
	case KindBoolNot:
		e := e.(*boolNotOpNode)
		child := eb.eval_internal(e.child, cache, interpr).(*BoolExprPtr)
		result, err = eb.BoolNot(child)
	case KindBoolAnd:
		e := e.(*boolNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BoolExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BoolExprPtr)
			res, err = eb.BoolAnd(res, child)
			if err != nil {
				break
			}
		}
		result = res
	case KindBoolOr:
		e := e.(*boolNaryOpNode)
		res := eb.eval_internal(e.children[0], cache, interpr).(*BoolExprPtr)
		for i := 1; i < len(e.children); i++ {
			child := eb.eval_internal(e.children[i], cache, interpr).(*BoolExprPtr)
			res, err = eb.BoolOr(res, child)
		}
		result = res
	default:
		panic("invalid expression type")
	}

	if err != nil {
		panic(err)
	}

	cache[e.rawPtr()] = result
	return result
}
