package core

import (
	"github.com/pkg/errors"

	"github.com/log-when/pono/smt"
)

// Errors classified per spec.md §7. Engines recover errors.Cause(err)
// to decide propagation policy (SolverFailure does not corrupt state;
// everything else aborts the current call).
var (
	// ErrUnsupported: the TS or property uses a sort/theory the active
	// engine does not support.
	ErrUnsupported = errors.New("unsupported")
	// ErrSolverFailure: the backend returned UNKNOWN where a definite
	// answer was required for soundness.
	ErrSolverFailure = errors.New("solver failure")
	// ErrInternal: invariant violation. Fatal, never recovered.
	ErrInternal = errors.New("internal invariant violation")
	// ErrNotImplemented: a recognised but unimplemented feature path.
	ErrNotImplemented = errors.New("not implemented")
)

// TransitionSystem is spec.md §3's (S, I, init, trans) tuple: a set of
// state variables each with a primed ("next") counterpart, a set of
// input variables with none, an initial-state predicate over S, and a
// transition relation either asserted directly (relational) or built
// up one assign_next call per variable (functional).
type TransitionSystem struct {
	eb *smt.ExprBuilder

	stateVars []Var
	inputVars []Var

	curSyms  map[string]smt.ExprPtr
	nextSyms map[string]smt.ExprPtr

	functional bool
	nextFuncs  map[string]smt.ExprPtr // functional form: name -> f_s(S,I)
	frozen     map[string]bool

	init  *smt.BoolExprPtr
	trans *smt.BoolExprPtr // relational form accumulator; starts as true
}

// NewTransitionSystem creates an empty TS bound to eb. functional
// selects the presentation used when Trans() materialises a formula:
// true builds the conjunction of per-variable assign_next equalities
// (spec.md §6's functional_ts option); false expects ConstrainTrans to
// assert the relation directly.
func NewTransitionSystem(eb *smt.ExprBuilder, functional bool) *TransitionSystem {
	return &TransitionSystem{
		eb:         eb,
		curSyms:    make(map[string]smt.ExprPtr),
		nextSyms:   make(map[string]smt.ExprPtr),
		functional: functional,
		nextFuncs:  make(map[string]smt.ExprPtr),
		frozen:     make(map[string]bool),
		init:       eb.BoolVal(true),
		trans:      eb.BoolVal(true),
	}
}

func (ts *TransitionSystem) Builder() *smt.ExprBuilder { return ts.eb }
func (ts *TransitionSystem) IsFunctional() bool        { return ts.functional }
func (ts *TransitionSystem) StateVars() []Var          { return ts.stateVars }
func (ts *TransitionSystem) InputVars() []Var          { return ts.inputVars }

// DeclareStateVar adds s to S and returns its current and next symbol
// terms. Every symbol appearing in init/trans must come from here or
// DeclareInputVar (spec.md §3 invariant).
func (ts *TransitionSystem) DeclareStateVar(name string, sort smt.Sort) (cur, next smt.ExprPtr) {
	cur = declareSymbol(ts.eb, curName(name), sort)
	next = declareSymbol(ts.eb, nextName(name), sort)
	ts.stateVars = append(ts.stateVars, Var{Name: name, Sort: sort})
	ts.curSyms[name] = cur
	ts.nextSyms[name] = next
	return cur, next
}

// DeclareInputVar adds v to I; inputs have no primed counterpart.
func (ts *TransitionSystem) DeclareInputVar(name string, sort smt.Sort) smt.ExprPtr {
	cur := declareSymbol(ts.eb, curName(name), sort)
	ts.inputVars = append(ts.inputVars, Var{Name: name, Sort: sort})
	ts.curSyms[name] = cur
	return cur
}

// Cur/Next look up the current/next symbol term for a declared
// variable name. Next panics on an input variable name: inputs have no
// primed counterpart by construction.
func (ts *TransitionSystem) Cur(name string) smt.ExprPtr { return ts.curSyms[name] }
func (ts *TransitionSystem) Next(name string) smt.ExprPtr {
	n, ok := ts.nextSyms[name]
	if !ok {
		panic("core: Next() on a non-state variable: " + name)
	}
	return n
}

// ConstrainInit conjoins f onto init. Every symbol in f must be a
// current-state variable.
func (ts *TransitionSystem) ConstrainInit(f *smt.BoolExprPtr) error {
	conj, err := ts.eb.BoolAnd(ts.init, f)
	if err != nil {
		return errors.Wrap(ErrInternal, err.Error())
	}
	ts.init = conj
	return nil
}

// ConstrainTrans conjoins f onto the relational transition relation.
// Only valid when the TS is not functional.
func (ts *TransitionSystem) ConstrainTrans(f *smt.BoolExprPtr) error {
	if ts.functional {
		return errors.Wrap(ErrUnsupported, "ConstrainTrans on a functional TransitionSystem")
	}
	conj, err := ts.eb.BoolAnd(ts.trans, f)
	if err != nil {
		return errors.Wrap(ErrInternal, err.Error())
	}
	ts.trans = conj
	return nil
}

// AssignNext records next(s) = f for a functional TS (spec.md §3).
// f may reference any current state or input variable.
func (ts *TransitionSystem) AssignNext(stateVar string, f smt.ExprPtr) error {
	if !ts.functional {
		return errors.Wrap(ErrUnsupported, "AssignNext on a relational TransitionSystem")
	}
	if _, ok := ts.curSyms[stateVar]; !ok {
		return errors.Wrapf(ErrInternal, "AssignNext: unknown state variable %q", stateVar)
	}
	ts.nextFuncs[stateVar] = f
	return nil
}

// MakeFrozen marks s as frozen: next(s) = s is part of trans (spec.md
// §3). Its caller in this module is CEGAR's ValueAbstractor, which
// freezes the abstracted value variables (spec.md §4.5).
func (ts *TransitionSystem) MakeFrozen(stateVar string) error {
	ts.frozen[stateVar] = true
	if ts.functional {
		return ts.AssignNext(stateVar, ts.curSyms[stateVar])
	}
	eq, err := ts.eb.EqAny(ts.Next(stateVar), ts.curSyms[stateVar])
	if err != nil {
		return errors.Wrap(ErrInternal, err.Error())
	}
	return ts.ConstrainTrans(eq)
}

func (ts *TransitionSystem) IsFrozen(stateVar string) bool { return ts.frozen[stateVar] }

// NextFunc returns the assign_next expression recorded for stateVar on
// a functional TS, if any. CEGAR's value abstraction (engines package)
// needs to abstract each variable's update expression individually
// since a functional TS has no single trans formula to rewrite.
func (ts *TransitionSystem) NextFunc(stateVar string) (smt.ExprPtr, bool) {
	f, ok := ts.nextFuncs[stateVar]
	return f, ok
}

// Init returns the init predicate.
func (ts *TransitionSystem) Init() *smt.BoolExprPtr { return ts.init }

// Trans materialises the transition relation: the asserted relational
// formula as-is, or, for a functional TS, the conjunction of every
// assign_next equality (and an implicit next(s) = s for any state
// variable without one, i.e. a functional TS treats omission as
// frozen -- matching assign_next's own use for frozen variables).
func (ts *TransitionSystem) Trans() (*smt.BoolExprPtr, error) {
	if !ts.functional {
		return ts.trans, nil
	}
	res := ts.eb.BoolVal(true)
	for _, v := range ts.stateVars {
		f, ok := ts.nextFuncs[v.Name]
		if !ok {
			f = ts.curSyms[v.Name]
		}
		eq, err := ts.eb.EqAny(ts.Next(v.Name), f)
		if err != nil {
			return nil, errors.Wrap(ErrInternal, err.Error())
		}
		var aerr error
		res, aerr = ts.eb.BoolAnd(res, eq)
		if aerr != nil {
			return nil, errors.Wrap(ErrInternal, aerr.Error())
		}
	}
	return res, nil
}
