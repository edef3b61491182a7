package core

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/log-when/pono/smt"
)

// Unroller implements spec.md §4.1: it produces time-indexed copies of
// terms over a fixed TransitionSystem, memoising one fresh symbol per
// (variable, step) so repeated calls for the same (s, i) return an
// identical term (invariant 5, §8).
type Unroller struct {
	eb    *smt.ExprBuilder
	ts    *TransitionSystem
	cache map[string]smt.ExprPtr
}

func NewUnroller(ts *TransitionSystem) *Unroller {
	return &Unroller{eb: ts.Builder(), ts: ts, cache: make(map[string]smt.ExprPtr)}
}

// TimedName is the naming convention AtTime uses for the step-i copy of
// a variable: engines that pull a witness out of a solver Valuation
// after Unroller.AtTime calls look values up under this same key.
func TimedName(name string, step int) string {
	return fmt.Sprintf("%s@%d", name, step)
}

func (u *Unroller) timedSymbol(name string, sort smt.Sort, step int) smt.ExprPtr {
	key := TimedName(name, step)
	if t, ok := u.cache[key]; ok {
		return t
	}
	t := declareSymbol(u.eb, key, sort)
	u.cache[key] = t
	return t
}

// AtTime returns t with every state variable s replaced by s@i, every
// next(s) replaced by s@(i+1), and every input v replaced by v@i. It
// fails with ErrUnsupported (wrapping "unroll") if t mentions a symbol
// that is none of those.
func (u *Unroller) AtTime(t smt.ExprPtr, i int) (smt.ExprPtr, error) {
	subst := make(map[uintptr]smt.ExprPtr)
	known := make(map[uintptr]bool)

	for _, v := range u.ts.StateVars() {
		cur := u.ts.Cur(v.Name)
		next := u.ts.Next(v.Name)
		subst[cur.Id()] = u.timedSymbol(v.Name, v.Sort, i)
		subst[next.Id()] = u.timedSymbol(v.Name, v.Sort, i+1)
		known[cur.Id()] = true
		known[next.Id()] = true
	}
	for _, v := range u.ts.InputVars() {
		cur := u.ts.Cur(v.Name)
		subst[cur.Id()] = u.timedSymbol(v.Name, v.Sort, i)
		known[cur.Id()] = true
	}

	for _, sym := range smt.Symbols(t) {
		if !known[sym.Id()] {
			return nil, errors.Wrapf(ErrUnsupported, "unroll: %q is not a state/input/primed-state variable of this TransitionSystem", sym.String())
		}
	}

	return u.eb.Substitute(t, subst), nil
}
