package core

import "github.com/log-when/pono/smt"

// Property is spec.md §3's (ts, prop) pair: prop is a BOOL-sorted term
// over the state variables of ts.
type Property struct {
	TS   *TransitionSystem
	Prop *smt.BoolExprPtr
}

func NewProperty(ts *TransitionSystem, prop *smt.BoolExprPtr) *Property {
	return &Property{TS: ts, Prop: prop}
}

// Bad is the negation of the property.
func (p *Property) Bad() (*smt.BoolExprPtr, error) {
	return p.TS.Builder().BoolNot(p.Prop)
}

// StateAssignment is one step of a witness: a total assignment to the
// state and input variables active at that step (spec.md §6, witness).
type StateAssignment struct {
	BV   map[string]*smt.BVConst
	Bool map[string]bool
}

// Witness is the finite counterexample trace returned after UNSAFE:
// step 0 satisfies init, consecutive steps are related by trans, and
// the final step violates the property.
type Witness []StateAssignment
