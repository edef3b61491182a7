// Package core implements spec.md layer L1: the transition-system and
// property data model, the term unroller, and cone-of-influence
// analysis, all built on the smt package's hash-consed terms and
// incremental solver context.
package core

import "github.com/log-when/pono/smt"

// Var names a state or input variable of a TransitionSystem together
// with its sort. It is a value, not a term: the corresponding "current"
// and "next" smt.ExprPtr symbols are looked up from the owning
// TransitionSystem, the same way pono's TransitionSystem keeps a
// separate next_map_ rather than baking "next" into the term itself
// (original_source/ -- the variable identity is stable across solver
// contexts, the symbol naming it is not).
type Var struct {
	Name string
	Sort smt.Sort
}

func curName(name string) string  { return name }
func nextName(name string) string { return name + ".next" }

func declareSymbol(eb *smt.ExprBuilder, name string, sort smt.Sort) smt.ExprPtr {
	switch sort.Kind {
	case smt.SortBool:
		return eb.BoolS(name)
	case smt.SortBV:
		return eb.BVS(name, sort.Width)
	default:
		panic("core: unsupported sort for a TransitionSystem variable: " + sort.String())
	}
}
