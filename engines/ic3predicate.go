package engines

import (
	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// PredicateHandler is ic3base.h's predicate-clause variant: the unit
// invariants (clause == disjunction, cube == conjunction, negate ==
// De Morgan) are identical to the bit-level handler, but its children
// are arbitrary theory atoms drawn from a fixed predicate set instead
// of per-variable equalities.
type PredicateHandler struct{ ClauseHandler }

// IC3Predicate is the predicate-abstraction IC3 instantiation: GetUnit
// evaluates a caller-supplied predicate set under the current model
// instead of reading off one literal per state variable, the way
// ic3base.h's "Predicate" unit handler variant is described (§4.3:
// "children are arbitrary theory atoms from a predicate set").
type IC3Predicate struct {
	*IC3Base
	predicates []*smt.BoolExprPtr
}

// NewIC3Predicate builds the engine with an explicit predicate set: the
// candidate atoms GetUnit evaluates under the model to build each
// proof-goal cube. An empty set degrades gracefully to the bit-level
// per-variable literals the default GetUnit already provides.
func NewIC3Predicate(prop *core.Property, opts Options, predicates []*smt.BoolExprPtr) *IC3Predicate {
	base := NewIC3Base(prop, opts, PredicateHandler{}, "ic3-predicate")
	p := &IC3Predicate{IC3Base: base, predicates: predicates}
	if len(predicates) > 0 {
		base.GetUnit = p.getUnit
	}
	return p
}

// getUnit evaluates every predicate under the last SAT model: a true
// predicate contributes itself, a false one contributes its negation,
// and the conjunction of those literals is the cube.
func (p *IC3Predicate) getUnit() IC3Unit {
	model := p.ctx.Model()
	var literals []*smt.BoolExprPtr
	for _, pred := range p.predicates {
		val, ok := evalBoolUnderModel(p.eb, model, pred)
		if !ok {
			continue
		}
		if val {
			literals = append(literals, pred)
			continue
		}
		neg, err := p.eb.BoolNot(pred)
		if err == nil {
			literals = append(literals, neg)
		}
	}
	if len(literals) == 0 {
		return p.IC3Base.defaultGetUnit()
	}
	return p.handler.CreateNegated(literals, p.eb)
}

// evalBoolUnderModel substitutes the model's state-variable values into
// pred and asks the term evaluator for its boolean value -- reusing
// this repo's substitution-based evaluator (eval.go/substitute.go)
// rather than a second, predicate-specific interpreter.
func evalBoolUnderModel(eb *smt.ExprBuilder, model *smt.Valuation, pred *smt.BoolExprPtr) (bool, bool) {
	if model == nil {
		return false, false
	}
	subst := make(map[uintptr]smt.ExprPtr)
	for _, sym := range smt.Symbols(pred) {
		switch sym.Sort().Kind {
		case smt.SortBV:
			if val, ok := model.BV[sym.String()]; ok {
				subst[sym.Id()] = eb.BVV(val.AsLong(), sym.Sort().Width)
			}
		case smt.SortBool:
			if val, ok := model.Bool[sym.String()]; ok {
				subst[sym.Id()] = eb.BoolVal(val)
			}
		}
	}
	res := eb.Substitute(pred, subst)
	resolved, ok := res.(*smt.BoolExprPtr)
	if !ok {
		return false, false
	}
	val, err := resolved.GetConst()
	if err != nil {
		return false, false
	}
	return val, true
}
