package engines

import (
	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// ClauseHandler is the bit-level IC3UnitHandler from ic3.h: Create
// builds a clause (disjunction, not negated), CreateNegated builds a
// cube (conjunction, negated) over the same children, and Negate flips
// between the two by De Morgan, negating every child.
type ClauseHandler struct{}

func (ClauseHandler) Create(children []*smt.BoolExprPtr, eb *smt.ExprBuilder) IC3Unit {
	term := orAll(eb, children)
	return IC3Unit{Term: term, Children: children, Negated: false}
}

func (ClauseHandler) CreateNegated(children []*smt.BoolExprPtr, eb *smt.ExprBuilder) IC3Unit {
	term := andAll(eb, children)
	return IC3Unit{Term: term, Children: children, Negated: true}
}

func (h ClauseHandler) Negate(u IC3Unit, eb *smt.ExprBuilder) IC3Unit {
	negated := make([]*smt.BoolExprPtr, len(u.Children))
	for i, c := range u.Children {
		negated[i], _ = eb.BoolNot(c)
	}
	if u.Negated {
		return h.Create(negated, eb)
	}
	return h.CreateNegated(negated, eb)
}

// CheckValid is a debugging hook in ic3.h (verify a clause really is a
// disjunction of literals); every IC3Unit built by Create/CreateNegated
// already satisfies that by construction, so only a null unit is
// rejected here.
func (ClauseHandler) CheckValid(u IC3Unit) bool { return !u.IsNull() }

func orAll(eb *smt.ExprBuilder, terms []*smt.BoolExprPtr) *smt.BoolExprPtr {
	res := eb.BoolVal(false)
	for _, t := range terms {
		res, _ = eb.BoolOr(res, t)
	}
	return res
}

func andAll(eb *smt.ExprBuilder, terms []*smt.BoolExprPtr) *smt.BoolExprPtr {
	res := eb.BoolVal(true)
	for _, t := range terms {
		res, _ = eb.BoolAnd(res, t)
	}
	return res
}

// IC3 is the bit-level clause/cube instantiation of IC3Base: frame
// units are clauses of "variable = value" literals and their
// negations, with no syntax-guided or predicate abstraction on top.
type IC3 struct {
	*IC3Base
}

func NewIC3(prop *core.Property, opts Options) *IC3 {
	return &IC3{IC3Base: NewIC3Base(prop, opts, ClauseHandler{}, "ic3")}
}
