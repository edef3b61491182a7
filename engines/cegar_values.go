package engines

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// ValueAbstractor rewrites every constant value in a formula into a
// fresh frozen state variable, named "__abs_<value>" as
// cegar_values.cpp's ValueAbstractor does. It is a CEGAR-values
// concern, not a general term-rewrite utility, so it lives here rather
// than in package smt: the naming convention and the
// abstracted-variable bookkeeping (AbstractedValues) are specific to
// this engine's refinement loop.
type ValueAbstractor struct {
	ts *core.TransitionSystem
	eb *smt.ExprBuilder

	// AbstractedValues maps an abstracted variable's name to the
	// original concrete constant it stands for.
	AbstractedValues map[string]smt.ExprPtr

	substByConst map[uintptr]smt.ExprPtr
}

func NewValueAbstractor(ts *core.TransitionSystem) *ValueAbstractor {
	return &ValueAbstractor{
		ts:               ts,
		eb:               ts.Builder(),
		AbstractedValues: make(map[string]smt.ExprPtr),
		substByConst:     make(map[uintptr]smt.ExprPtr),
	}
}

// Abstract rewrites every constant in f into its frozen variable,
// declaring (and freezing) one new state variable per distinct
// constant the first time it is seen.
func (va *ValueAbstractor) Abstract(f *smt.BoolExprPtr) *smt.BoolExprPtr {
	return va.AbstractExpr(f).(*smt.BoolExprPtr)
}

// AbstractExpr is Abstract generalized to any sort, for a functional
// TS's per-variable assign_next expressions (which need not be BOOL).
func (va *ValueAbstractor) AbstractExpr(f smt.ExprPtr) smt.ExprPtr {
	for _, c := range smt.Constants(f) {
		if _, ok := va.substByConst[c.Id()]; ok {
			continue
		}
		name := fmt.Sprintf("__abs_%s", c.String())
		cur, _ := va.ts.DeclareStateVar(name, c.Sort())
		_ = va.ts.MakeFrozen(name)
		va.AbstractedValues[name] = c
		va.substByConst[c.Id()] = cur
	}
	return va.eb.Substitute(f, va.substByConst)
}

// CegarValues is a CEGAR driver parameterised by an inner Prover
// family, grounded on cegar_values.cpp's CegarValues<Prover_T>: it
// abstracts every concrete value in (init, trans, prop) into a frozen
// variable, runs the inner prover on the abstraction (which
// over-approximates the concrete system, so a SAFE verdict there is
// SAFE on the concrete system), and on UNSAFE replays the
// counterexample concretely to tell a real bug from a spurious one --
// refining by reinstating the concrete value of whichever abstracted
// variable the unsat core blames, the construction spec.md §4.5
// describes in place of the stubbed-out cegar_refine in the source.
type CegarValues struct {
	concreteTS *core.TransitionSystem
	prop       *core.Property
	opts       Options
	newInner   func(*core.Property, Options) Prover

	abstractTS *core.TransitionSystem
	abstractor *ValueAbstractor
	log        *logrus.Entry

	// refinementLemmas accumulates "__abs_v = concreteValue"
	// equalities the refinement loop has confirmed are load-bearing;
	// each is reasserted into abstractTS.Init() before the next inner
	// Check() call.
	refinementLemmas []*smt.BoolExprPtr
}

// NewCegarValues builds the CEGAR driver. newInner constructs the
// wrapped prover (e.g. NewIC3 or NewKInduction) against the abstracted
// property each refinement round produces.
func NewCegarValues(prop *core.Property, opts Options, newInner func(*core.Property, Options) Prover) *CegarValues {
	return &CegarValues{
		concreteTS: prop.TS,
		prop:       prop,
		opts:       opts,
		newInner:   newInner,
		log:        newLogger("cegar-values", opts.Verbosity),
	}
}

// RefinementLemmas returns the lemmas the refinement loop has
// confirmed so far (spec.md §8's refinement-progress property: each
// one is new, so the same abstract counterexample cannot recur).
func (cv *CegarValues) RefinementLemmas() []*smt.BoolExprPtr {
	return cv.refinementLemmas
}

// Check is cegar_values.cpp's check_until: abstract, run the inner
// prover, and while it reports UNSAFE, attempt to refine; a refinement
// that finds the counterexample was spurious loops back into the inner
// prover with a strengthened abstraction, one that confirms it was
// real returns UNSAFE to the caller.
func (cv *CegarValues) Check() (Result, core.Witness, error) {
	cv.cegarAbstract()

	for {
		abstractProp := cv.abstractProperty()
		inner := cv.newInner(abstractProp, cv.opts)
		result, witness, err := inner.Check()
		if err != nil {
			return UNKNOWN, nil, err
		}
		if result != UNSAFE {
			return result, nil, nil
		}

		spurious, lemma, err := cv.cegarRefine(abstractProp, witness)
		if err != nil {
			return UNKNOWN, nil, err
		}
		if !spurious {
			cv.log.Info("counterexample confirmed concrete, reporting unsafe")
			return UNSAFE, witness, nil
		}
		cv.log.WithField("lemma", lemma.String()).Info("counterexample spurious, refining abstraction")
		cv.refinementLemmas = append(cv.refinementLemmas, lemma)
		if err := cv.abstractTS.ConstrainInit(lemma); err != nil {
			return UNKNOWN, nil, err
		}
	}
}

// cegarAbstract builds the abstracted transition system once: a fresh
// TransitionSystem sharing the concrete one's term builder, with
// init/trans/prop rewritten by a single ValueAbstractor so every
// occurrence of the same constant shares one frozen variable.
func (cv *CegarValues) cegarAbstract() {
	eb := cv.concreteTS.Builder()
	cv.abstractTS = core.NewTransitionSystem(eb, cv.concreteTS.IsFunctional())
	for _, v := range cv.concreteTS.StateVars() {
		cv.abstractTS.DeclareStateVar(v.Name, v.Sort)
	}
	for _, v := range cv.concreteTS.InputVars() {
		cv.abstractTS.DeclareInputVar(v.Name, v.Sort)
	}

	cv.abstractor = NewValueAbstractor(cv.abstractTS)
	abstractInit := cv.abstractor.Abstract(cv.concreteTS.Init())
	_ = cv.abstractTS.ConstrainInit(abstractInit)

	if cv.concreteTS.IsFunctional() {
		// The source (cegar_values.cpp) throws "Functional TS NYI" here
		// and abstracts the whole relational trans formula at once
		// instead; a functional TS has no single trans formula to feed
		// the same ValueAbstractor, so each assign_next expression is
		// abstracted individually and reinstalled the same way.
		for _, v := range cv.concreteTS.StateVars() {
			next, ok := cv.concreteTS.NextFunc(v.Name)
			if !ok {
				continue
			}
			abstractNext := cv.abstractor.AbstractExpr(next)
			_ = cv.abstractTS.AssignNext(v.Name, abstractNext)
		}
		return
	}

	trans, _ := cv.concreteTS.Trans()
	abstractTrans := cv.abstractor.Abstract(trans)
	_ = cv.abstractTS.ConstrainTrans(abstractTrans)
}

func (cv *CegarValues) abstractProperty() *core.Property {
	prop := cv.abstractor.Abstract(cv.prop.Prop)
	return core.NewProperty(cv.abstractTS, prop)
}

// cegarRefine is the non-stub cegar_refine spec.md §4.5 calls for: it
// replays the abstract counterexample's length as a BMC query over the
// abstract system itself (init_abs ; trans_abs* ; bad_abs), with each
// "__abs_*" variable's concrete value assumed via "abs_var@0 = value"
// under its own assumption label (values already reinstated by an
// earlier lemma are in init_abs and get no label), and asks for an
// UNSAT core. The
// abstracted variables are frozen (next(v) = v), so pinning one at step
// 0 pins it for the whole trace. Since substitution made abstractTS
// logically equivalent to concreteTS whenever every abstracted value is
// reinstated, a SAT result under every value simultaneously means the
// bug is real. If UNSAT, the core names at least one abstracted
// variable whose concrete value the spurious trace depended on;
// reinstating that equality as an init lemma rules the spurious trace
// out without fully concretizing every other value.
func (cv *CegarValues) cegarRefine(abstractProp *core.Property, witness core.Witness) (bool, *smt.BoolExprPtr, error) {
	if len(cv.abstractor.AbstractedValues) == 0 {
		return false, nil, nil
	}

	ctx := buildContext(cv.abstractTS)
	unroller := core.NewUnroller(cv.abstractTS)
	cexLen := len(witness)

	trans, err := cv.abstractTS.Trans()
	if err != nil {
		return false, nil, err
	}
	bad, err := abstractProp.Bad()
	if err != nil {
		return false, nil, err
	}

	initAt0, err := unroller.AtTime(cv.abstractTS.Init(), 0)
	if err != nil {
		return false, nil, err
	}
	ctx.Push()
	defer ctx.Pop()
	ctx.Assert(initAt0.(*smt.BoolExprPtr))
	for i := 0; i < cexLen; i++ {
		transAtI, err := unroller.AtTime(trans, i)
		if err != nil {
			return false, nil, err
		}
		ctx.Assert(transAtI.(*smt.BoolExprPtr))
	}
	badAtCexLen, err := unroller.AtTime(bad, cexLen)
	if err != nil {
		return false, nil, err
	}
	ctx.Assert(badAtCexLen.(*smt.BoolExprPtr))

	eb := cv.abstractTS.Builder()
	assumptions := make(map[string]*smt.BoolExprPtr)
	equalityByLabel := make(map[string]*smt.BoolExprPtr)
	for name, concreteVal := range cv.abstractor.AbstractedValues {
		lemma, err := eb.EqAny(cv.abstractTS.Cur(name), concreteVal)
		if err != nil {
			return false, nil, err
		}
		refined := false
		for _, l := range cv.refinementLemmas {
			refined = refined || l.Id() == lemma.Id()
		}
		if refined {
			continue
		}
		curAt0, err := unroller.AtTime(cv.abstractTS.Cur(name), 0)
		if err != nil {
			return false, nil, err
		}
		eq, err := eb.EqAny(curAt0, concreteVal)
		if err != nil {
			return false, nil, err
		}
		label := "__assump_" + name
		assumptions[label] = eq
		equalityByLabel[label] = lemma
	}

	result, unsatCore := ctx.CheckSatAssuming(assumptions)
	if result == smt.RESULT_UNKNOWN {
		return false, nil, core.ErrSolverFailure
	}
	if result == smt.RESULT_SAT {
		return false, nil, nil
	}
	if len(unsatCore) == 0 {
		return false, nil, core.ErrInternal
	}
	return true, equalityByLabel[unsatCore[0]], nil
}
