package engines

import (
	"github.com/sirupsen/logrus"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// KInduction is grounded directly on original_source/kinduction.cpp: a
// base-case BMC check interleaved with an inductive step strengthened
// by a simple-path constraint (all intermediate states pairwise
// distinct), advancing reachedK one step at a time exactly the way the
// C++ base_step/inductive_step pair does.
type KInduction struct {
	ts       *core.TransitionSystem
	prop     *core.Property
	unroller *core.Unroller
	ctx      *smt.Context
	eb       *smt.ExprBuilder

	reachedK   int
	simplePath *smt.BoolExprPtr
	bound      int
	log        *logrus.Entry
}

func NewKInduction(prop *core.Property, opts Options) *KInduction {
	ts := prop.TS
	bound := opts.Bound
	return &KInduction{
		ts:         ts,
		prop:       prop,
		unroller:   core.NewUnroller(ts),
		ctx:        buildContext(ts),
		eb:         ts.Builder(),
		reachedK:   -1,
		simplePath: ts.Builder().BoolVal(true),
		bound:      bound,
		log:        newLogger("kinduction", opts.Verbosity),
	}
}

// Check runs check_until(bound): for i = 0..bound, first the base
// step (does an i-step BMC unrolling reach a bad state), then the
// inductive step (does a simple path of length i+1 into a bad state
// exist). The first to answer definitely wins; exhausting the bound
// with neither answering yields UNKNOWN, matching kinduction.cpp's
// check_until loop precisely.
func (ki *KInduction) Check() (Result, core.Witness, error) {
	bad, err := ki.prop.Bad()
	if err != nil {
		return UNKNOWN, nil, err
	}

	for i := 0; i <= ki.bound; i++ {
		safe, witness, err := ki.baseStep(i, bad)
		if err != nil {
			if recoverable(err) {
				return UNKNOWN, nil, nil
			}
			return UNKNOWN, nil, err
		}
		if !safe {
			ki.log.WithField("step", i).Info("base step found a counterexample")
			return UNSAFE, witness, nil
		}

		proved, err := ki.inductiveStep(i, bad)
		if err != nil {
			if recoverable(err) {
				return UNKNOWN, nil, nil
			}
			return UNKNOWN, nil, err
		}
		if proved {
			ki.log.WithField("k", ki.reachedK).Info("inductive step closed the proof")
			return SAFE, nil, nil
		}
	}
	return UNKNOWN, nil, nil
}

// baseStep is kinduction.cpp's base_step: check init(0) && bad(i) for
// satisfiability; if reachable, the counterexample is the trace
// 0..i. Otherwise pop the query scope and then permanently assert
// trans(i) && prop(i) at the outer level so later iterations build on
// it, the same pop-then-assert order as the C++ version.
func (ki *KInduction) baseStep(i int, bad *smt.BoolExprPtr) (bool, core.Witness, error) {
	if i <= ki.reachedK {
		return true, nil, nil
	}

	initAtI, err := ki.unroller.AtTime(ki.ts.Init(), 0)
	if err != nil {
		return false, nil, err
	}
	badAtI, err := ki.unroller.AtTime(bad, i)
	if err != nil {
		return false, nil, err
	}

	ki.ctx.Push()
	ki.ctx.Assert(initAtI.(*smt.BoolExprPtr))
	ki.ctx.Assert(badAtI.(*smt.BoolExprPtr))
	result := ki.ctx.CheckSat()
	if result == smt.RESULT_UNKNOWN {
		ki.ctx.Pop()
		return false, nil, core.ErrSolverFailure
	}
	if result == smt.RESULT_SAT {
		witness := ki.extractWitness(i)
		ki.ctx.Pop()
		return false, witness, nil
	}
	ki.ctx.Pop()

	trans, err := ki.ts.Trans()
	if err != nil {
		return false, nil, err
	}
	transAtI, err := ki.unroller.AtTime(trans, i)
	if err != nil {
		return false, nil, err
	}
	propAtI, err := ki.unroller.AtTime(ki.prop.Prop, i)
	if err != nil {
		return false, nil, err
	}
	ki.ctx.Assert(transAtI.(*smt.BoolExprPtr))
	ki.ctx.Assert(propAtI.(*smt.BoolExprPtr))
	return true, nil, nil
}

// inductiveStep is kinduction.cpp's inductive_step: strengthen with a
// simple-path disjunction for every pair (i, j<i), then check whether
// bad(i+1) is reachable along a simple path; UNSAT proves the property
// at depth i and advances reachedK.
func (ki *KInduction) inductiveStep(i int, bad *smt.BoolExprPtr) (bool, error) {
	if i <= ki.reachedK {
		return false, nil
	}

	for j := 0; j < i; j++ {
		if err := ki.addSimplePathConstraint(i, j); err != nil {
			return false, err
		}
	}

	badAtNext, err := ki.unroller.AtTime(bad, i+1)
	if err != nil {
		return false, err
	}

	ki.ctx.Push()
	ki.ctx.Assert(ki.simplePath)
	ki.ctx.Assert(badAtNext.(*smt.BoolExprPtr))
	result := ki.ctx.CheckSat()
	ki.ctx.Pop()

	if result == smt.RESULT_UNKNOWN {
		return false, core.ErrSolverFailure
	}
	if result == smt.RESULT_UNSAT {
		return true, nil
	}

	ki.reachedK++
	return false, nil
}

func (ki *KInduction) addSimplePathConstraint(i, j int) error {
	disj := ki.eb.BoolVal(false)
	for _, v := range ki.ts.StateVars() {
		vi, err := ki.unroller.AtTime(ki.ts.Cur(v.Name), i)
		if err != nil {
			return err
		}
		vj, err := ki.unroller.AtTime(ki.ts.Cur(v.Name), j)
		if err != nil {
			return err
		}
		eq, err := ki.eb.EqAny(vi, vj)
		if err != nil {
			return err
		}
		neq, err := ki.eb.BoolNot(eq)
		if err != nil {
			return err
		}
		disj, err = ki.eb.BoolOr(disj, neq)
		if err != nil {
			return err
		}
	}
	conj, err := ki.eb.BoolAnd(ki.simplePath, disj)
	if err != nil {
		return err
	}
	ki.simplePath = conj
	return nil
}

// extractWitness reads the current (SAT) model back into a Witness of
// length bound+1, looking up each state/input variable's value at
// every step under the core.TimedName naming convention.
func (ki *KInduction) extractWitness(bound int) core.Witness {
	model := ki.ctx.Model()
	if model == nil {
		return nil
	}
	witness := make(core.Witness, bound+1)
	for step := 0; step <= bound; step++ {
		assignment := core.StateAssignment{
			BV:   make(map[string]*smt.BVConst),
			Bool: make(map[string]bool),
		}
		for _, v := range ki.ts.StateVars() {
			key := core.TimedName(v.Name, step)
			if bv, ok := model.BV[key]; ok {
				assignment.BV[v.Name] = bv
			}
			if b, ok := model.Bool[key]; ok {
				assignment.Bool[v.Name] = b
			}
		}
		for _, v := range ki.ts.InputVars() {
			key := core.TimedName(v.Name, step)
			if bv, ok := model.BV[key]; ok {
				assignment.BV[v.Name] = bv
			}
			if b, ok := model.Bool[key]; ok {
				assignment.Bool[v.Name] = b
			}
		}
		witness[step] = assignment
	}
	return witness
}
