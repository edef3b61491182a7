package core

import "github.com/log-when/pono/smt"

// ConeOfInfluence computes the transitive set of state variable names
// that a seed term depends on through trans (spec.md §4.6). It is the
// predecessor-generalization restriction IC3SA's equality-class cubes
// need: a cube only needs to constrain variables the bad-state seed
// actually reaches through the transition relation, not every variable
// in the system.
//
// For a functional TS the dependency edges are exact: s depends on
// whatever DeclareStateVar/DeclareInputVar symbols appear in its
// assign_next expression. For a relational TS there is no assign_next
// to read, so the edges are approximated structurally: any two
// variables that co-occur in the same top-level conjunct of trans are
// treated as mutually dependent. This is precise for the common case
// of a trans built as an AND of single-variable update equations (as
// ConstrainTrans is used throughout this repo and its tests) and only
// overapproximates when a single conjunct genuinely relates many
// variables at once -- safe for a generalization restriction, since
// overapproximating the cone can only make a cube larger, never wrong.
func (ts *TransitionSystem) ConeOfInfluence(seed smt.ExprPtr) map[string]bool {
	nameOf := ts.symbolNames()

	var adjacency map[string][]string
	if ts.functional {
		adjacency = ts.functionalAdjacency(nameOf)
	} else {
		adjacency = ts.relationalAdjacency(nameOf)
	}

	cone := make(map[string]bool)
	var worklist []string
	for _, sym := range smt.Symbols(seed) {
		if name, ok := nameOf[sym.Id()]; ok && !cone[name] {
			cone[name] = true
			worklist = append(worklist, name)
		}
	}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, dep := range adjacency[n] {
			if !cone[dep] {
				cone[dep] = true
				worklist = append(worklist, dep)
			}
		}
	}
	return cone
}

// symbolNames maps every declared current/next symbol id back to its
// base variable name, so a walk over smt.Symbols(f) can be turned back
// into TransitionSystem variable names.
func (ts *TransitionSystem) symbolNames() map[uintptr]string {
	nameOf := make(map[uintptr]string)
	for _, v := range ts.stateVars {
		nameOf[ts.Cur(v.Name).Id()] = v.Name
		nameOf[ts.Next(v.Name).Id()] = v.Name
	}
	for _, v := range ts.inputVars {
		nameOf[ts.Cur(v.Name).Id()] = v.Name
	}
	return nameOf
}

func (ts *TransitionSystem) functionalAdjacency(nameOf map[uintptr]string) map[string][]string {
	adjacency := make(map[string][]string)
	for _, v := range ts.stateVars {
		f, ok := ts.nextFuncs[v.Name]
		if !ok {
			continue
		}
		for _, sym := range smt.Symbols(f) {
			if dep, ok := nameOf[sym.Id()]; ok {
				adjacency[v.Name] = append(adjacency[v.Name], dep)
			}
		}
	}
	return adjacency
}

func (ts *TransitionSystem) relationalAdjacency(nameOf map[uintptr]string) map[string][]string {
	adjacency := make(map[string][]string)
	for _, conjunct := range ts.eb.FlattenAnd(ts.trans) {
		var names []string
		for _, sym := range smt.Symbols(conjunct) {
			if name, ok := nameOf[sym.Id()]; ok {
				names = append(names, name)
			}
		}
		for _, a := range names {
			for _, b := range names {
				if a != b {
					adjacency[a] = append(adjacency[a], b)
				}
			}
		}
	}
	return adjacency
}
