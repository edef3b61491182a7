package smt

import "fmt"

// EqAny builds a sort-respecting equality between two terms of the
// same Sort, dispatching to Eq (bit-vectors) or BoolEq (booleans). The
// transition-system layer needs this because a functional next-state
// assignment (spec.md §3, assign_next) can be over either sort family.
func (eb *ExprBuilder) EqAny(lhs, rhs ExprPtr) (*BoolExprPtr, error) {
	if lhs.Sort() != rhs.Sort() {
		return nil, fmt.Errorf("EqAny: sort mismatch %s vs %s", lhs.Sort(), rhs.Sort())
	}
	switch lhs.Sort().Kind {
	case SortBool:
		return eb.BoolEq(lhs.(*BoolExprPtr), rhs.(*BoolExprPtr))
	case SortBV:
		return eb.Eq(lhs.(*BVExprPtr), rhs.(*BVExprPtr))
	default:
		return nil, fmt.Errorf("EqAny: unsupported sort %s", lhs.Sort())
	}
}

// Implies, Distinct and BoolEq round out the operator set spec.md §6
// requires of the logical-kernel collaborator (Not, And, Or, Implies,
// Equal, Distinct, plus the bit-vector family already in builder.go).
// They are expressed in terms of the existing hash-consing
// constructors, the same style builder.go itself uses for flattening
// (e.g. And/Or over Bool reduce to BoolNot+BoolOr).

// Implies builds lhs -> rhs as (not lhs) or rhs.
func (eb *ExprBuilder) Implies(lhs, rhs *BoolExprPtr) (*BoolExprPtr, error) {
	nlhs, err := eb.BoolNot(lhs)
	if err != nil {
		return nil, err
	}
	return eb.BoolOr(nlhs, rhs)
}

// BoolEq builds lhs <-> rhs.
func (eb *ExprBuilder) BoolEq(lhs, rhs *BoolExprPtr) (*BoolExprPtr, error) {
	fwd, err := eb.Implies(lhs, rhs)
	if err != nil {
		return nil, err
	}
	bwd, err := eb.Implies(rhs, lhs)
	if err != nil {
		return nil, err
	}
	return eb.BoolAnd(fwd, bwd)
}

// BoolXor builds lhs xor rhs as the negation of BoolEq.
func (eb *ExprBuilder) BoolXor(lhs, rhs *BoolExprPtr) (*BoolExprPtr, error) {
	eq, err := eb.BoolEq(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return eb.BoolNot(eq)
}

// FlattenAnd returns the top-level AND conjuncts of f (or []*BoolExprPtr{f}
// if f is not itself a conjunction). Used by core's cone-of-influence
// analysis to see which variables a relational trans relates to one
// another without needing a full congruence/decision procedure.
func (eb *ExprBuilder) FlattenAnd(f *BoolExprPtr) []*BoolExprPtr {
	if f.Kind() != KindBoolAnd {
		return []*BoolExprPtr{f}
	}
	n := f.e.(*boolNaryOpNode)
	out := make([]*BoolExprPtr, len(n.children))
	copy(out, n.children)
	return out
}

// Distinct asserts pairwise inequality over a slice of same-sort
// bit-vector terms: AND over all pairs i<j of (terms[i] != terms[j]).
func (eb *ExprBuilder) Distinct(terms []*BVExprPtr) (*BoolExprPtr, error) {
	res := eb.BoolVal(true)
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			eq, err := eb.Eq(terms[i], terms[j])
			if err != nil {
				return nil, err
			}
			neq, err := eb.BoolNot(eq)
			if err != nil {
				return nil, err
			}
			res, err = eb.BoolAnd(res, neq)
			if err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}
