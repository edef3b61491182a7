package engines

import (
	"github.com/sirupsen/logrus"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// IC3Unit is a generalized frame element: either a clause (a
// disjunction of children, Negated == false) or a cube (a conjunction
// of children, Negated == true), per engines/ic3base.h's IC3Unit. Which
// one Create/CreateNegated produce depends on the IC3UnitHandler, so
// IC3Base itself never assumes a polarity.
type IC3Unit struct {
	Term     *smt.BoolExprPtr
	Children []*smt.BoolExprPtr
	Negated  bool
}

func (u IC3Unit) IsNull() bool { return u.Term == nil }

// IC3UnitHandler mirrors ic3base.h's abstract IC3UnitHandler: it knows
// how to build and negate the flavor of IC3Unit a concrete IC3
// instantiation uses (clause/cube, predicate clause/cube, or the
// syntax-guided equality-class cubes IC3SA uses).
type IC3UnitHandler interface {
	Create(children []*smt.BoolExprPtr, eb *smt.ExprBuilder) IC3Unit
	CreateNegated(children []*smt.BoolExprPtr, eb *smt.ExprBuilder) IC3Unit
	Negate(u IC3Unit, eb *smt.ExprBuilder) IC3Unit
	CheckValid(u IC3Unit) bool
}

// IC3Goal is ic3base.h's IC3Goal/ProofObligation: a cube to block at a
// given frame, chained back to the goal it was derived from so a
// confirmed counterexample can be replayed into a core.Witness.
type IC3Goal struct {
	Target IC3Unit
	Idx    int
	Next   *IC3Goal
}

// IC3Base is the generic PDR/IC3 state machine: the frame vector, the
// outstanding proof-goal stack, and the common block/propagate/
// find_highest_frame machinery ic3base.h documents as shared across
// every IC3 flavor. A concrete flavor supplies the IC3UnitHandler plus
// InductiveGeneralization/GeneralizePredecessor.
type IC3Base struct {
	ts   *core.TransitionSystem
	prop *core.Property
	ctx  *smt.Context
	eb       *smt.ExprBuilder
	handler  IC3UnitHandler
	log      *logrus.Entry

	bound      int
	frames     [][]IC3Unit
	proofGoals []*IC3Goal

	// InductiveGeneralization attempts to generalize a blocked cube
	// into one or more frame units before it is added at frame i
	// (ic3base.h's virtual inductive_generalization).
	InductiveGeneralization func(i int, c IC3Unit) []IC3Unit
	// GeneralizePredecessor generalizes a concrete predecessor cube
	// before it becomes the next proof goal (ic3base.h's virtual
	// generalize_predecessor).
	GeneralizePredecessor func(i int, c IC3Unit) IC3Unit
	// GetUnit extracts an IC3Unit from the last SAT model (ic3base.h's
	// virtual get_unit). The bit-level default reads off one
	// "variable = value" literal per state variable; PredicateHandler
	// overrides it to evaluate a fixed predicate set instead.
	GetUnit func() IC3Unit
}

// NewIC3Base wires ts/prop to handler and installs the default
// InductiveGeneralization/GeneralizePredecessor/GetUnit; concrete
// constructors (NewIC3SA, NewIC3Predicate) replace the ones they
// specialise.
func NewIC3Base(prop *core.Property, opts Options, handler IC3UnitHandler, name string) *IC3Base {
	ts := prop.TS
	bound := opts.Bound
	b := &IC3Base{
		ts:      ts,
		prop:    prop,
		ctx:     buildContext(ts),
		eb:      ts.Builder(),
		handler: handler,
		bound:   bound,
		log:     newLogger(name, opts.Verbosity),
	}
	b.InductiveGeneralization = b.defaultInductiveGeneralization
	b.GeneralizePredecessor = b.defaultGeneralizePredecessor
	b.GetUnit = b.defaultGetUnit
	return b
}

// Check runs step_0 then step(i) for i = 1..bound, the loop
// ic3base.h's Prover::check_until override drives: each step first
// blocks every proof goal intersecting the newest frame with bad, then
// tries to propagate every frame forward looking for a fixpoint.
func (b *IC3Base) Check() (Result, core.Witness, error) {
	safe, witness, err := b.step0()
	if err != nil || !safe {
		return resultFor(safe, err), witness, errForUnknown(err)
	}

	for i := 1; i <= b.bound; i++ {
		safe, witness, err := b.step(i)
		if err != nil {
			if recoverable(err) {
				return UNKNOWN, nil, nil
			}
			return UNKNOWN, nil, err
		}
		if !safe {
			return UNSAFE, witness, nil
		}
		if b.converged() {
			b.log.WithField("frame", i).Info("frames converged, property proved")
			return SAFE, nil, nil
		}
	}
	return UNKNOWN, nil, nil
}

func resultFor(safe bool, err error) Result {
	if err != nil {
		return UNKNOWN
	}
	if safe {
		return SAFE
	}
	return UNSAFE
}

func errForUnknown(err error) error {
	if err != nil && recoverable(err) {
		return nil
	}
	return err
}

// step0 is ic3base.h's step_0: init && bad directly, the k=0 base case.
func (b *IC3Base) step0() (bool, core.Witness, error) {
	bad, err := b.prop.Bad()
	if err != nil {
		return false, nil, err
	}
	if b.intersects(b.ts.Init(), bad) {
		return false, b.traceFromCex(bad), nil
	}
	b.pushFrame()
	return true, nil, nil
}

// step performs one PDR iteration at depth i: open a new frontier
// frame, repeatedly block whatever in it intersects bad, and report a
// real counterexample if block_all ever fails to eliminate one.
func (b *IC3Base) step(i int) (bool, core.Witness, error) {
	b.pushFrame()
	for b.intersectsBad() {
		ok, witness, err := b.blockAll()
		if err != nil {
			return false, nil, err
		}
		if !ok {
			return false, witness, nil
		}
	}
	return true, nil, nil
}

func (b *IC3Base) pushFrame() {
	b.frames = append(b.frames, nil)
}

// intersectsBad checks whether the newest frame can reach bad in one
// transition step and, if so, seeds a proof goal for it.
func (b *IC3Base) intersectsBad() bool {
	bad, err := b.prop.Bad()
	if err != nil {
		return false
	}
	last := len(b.frames) - 1
	frame := b.frameFormula(last)
	trans, err := b.ts.Trans()
	if err != nil {
		return false
	}

	b.ctx.Push()
	defer b.ctx.Pop()
	b.ctx.Assert(frame)
	b.ctx.Assert(trans)
	badNext, err := b.primeToNext(bad)
	if err != nil {
		return false
	}
	b.ctx.Assert(badNext)
	if b.ctx.CheckSat() != smt.RESULT_SAT {
		return false
	}

	cube := b.GetUnit()
	b.addProofGoal(cube, last, nil)
	return true
}

// blockAll drains the proof-goal stack, always choosing the goal with
// the smallest frame index first so the search terminates.
func (b *IC3Base) blockAll() (bool, core.Witness, error) {
	for b.hasProofGoals() {
		pg := b.nextProofGoal()
		if b.intersectsInitial(pg.Target) {
			return false, b.traceFromGoal(pg), nil
		}
		blocked, err := b.block(pg)
		if err != nil {
			return false, nil, err
		}
		_ = blocked
	}
	return true, nil, nil
}

// block tries to eliminate pg.Target from frame pg.Idx: if no
// predecessor exists in frame pg.Idx-1, generalize and push the
// resulting unit(s) as high as they'll go; otherwise generalize the
// predecessor and enqueue it as a new, earlier proof goal.
func (b *IC3Base) block(pg *IC3Goal) (bool, error) {
	if pg.Idx == 0 {
		return false, nil
	}
	pred, found, err := b.getPredecessor(pg.Idx, pg.Target)
	if err != nil {
		return false, err
	}
	if !found {
		units := b.InductiveGeneralization(pg.Idx, pg.Target)
		for _, u := range units {
			highest := b.findHighestFrame(pg.Idx, u)
			b.constrainFrame(highest, u)
		}
		return true, nil
	}
	pred = b.GeneralizePredecessor(pg.Idx-1, pred)
	b.addProofGoal(pred, pg.Idx-1, pg)
	return false, nil
}

// getPredecessor checks F[i-1] && T && c' for satisfiability; a SAT
// result's current-state projection is the predecessor cube.
func (b *IC3Base) getPredecessor(i int, c IC3Unit) (IC3Unit, bool, error) {
	frame := b.frameFormula(i - 1)
	trans, err := b.ts.Trans()
	if err != nil {
		return IC3Unit{}, false, err
	}
	cNext, err := b.primeToNext(c.Term)
	if err != nil {
		return IC3Unit{}, false, err
	}

	b.ctx.Push()
	defer b.ctx.Pop()
	b.ctx.Assert(frame)
	b.ctx.Assert(trans)
	b.ctx.Assert(cNext)
	if b.ctx.CheckSat() != smt.RESULT_SAT {
		return IC3Unit{}, false, nil
	}
	return b.GetUnit(), true, nil
}

// propagate pushes every unit of frame i forward into frame i+1 when
// it still holds there. A fixpoint is only witnessed when a
// *non-trivial* frame (one that held units before this pass) ends up
// fully propagated away -- a frame that started empty (e.g. a freshly
// pushed frontier never yet blocked into) trivially "empties" without
// ever having been tested, per spec.md §4.4's "non-trivial frame
// becomes empty" signal.
func (b *IC3Base) propagate(i int) (bool, error) {
	if i+1 >= len(b.frames) {
		return false, nil
	}
	if len(b.frames[i]) == 0 {
		return false, nil
	}
	remaining := make([]IC3Unit, 0, len(b.frames[i]))
	for _, u := range b.frames[i] {
		holds, err := b.holdsInNextFrame(i, u)
		if err != nil {
			return false, err
		}
		if holds {
			b.frames[i+1] = append(b.frames[i+1], u)
		} else {
			remaining = append(remaining, u)
		}
	}
	emptied := len(remaining) == 0
	b.frames[i] = remaining
	return emptied, nil
}

func (b *IC3Base) holdsInNextFrame(i int, u IC3Unit) (bool, error) {
	frame := b.frameFormula(i)
	trans, err := b.ts.Trans()
	if err != nil {
		return false, err
	}
	notU, err := b.eb.BoolNot(u.Term)
	if err != nil {
		return false, err
	}
	notUNext, err := b.primeToNext(notU)
	if err != nil {
		return false, err
	}

	b.ctx.Push()
	defer b.ctx.Pop()
	b.ctx.Assert(frame)
	b.ctx.Assert(trans)
	b.ctx.Assert(notUNext)
	return b.ctx.CheckSat() == smt.RESULT_UNSAT, nil
}

// converged walks every frame below the top looking for one that
// propagate emptied completely -- the standard PDR fixpoint signal.
func (b *IC3Base) converged() bool {
	for i := 0; i < len(b.frames)-1; i++ {
		ok, err := b.propagate(i)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// findHighestFrame returns the highest frame index >= i that u can
// also be added to without making that frame's conjunction inconsistent
// with one more step of trans -- ic3base.h's find_highest_frame.
func (b *IC3Base) findHighestFrame(i int, u IC3Unit) int {
	highest := i
	for j := i + 1; j < len(b.frames); j++ {
		holds, err := b.holdsInNextFrame(j-1, u)
		if err != nil || !holds {
			break
		}
		highest = j
	}
	return highest
}

func (b *IC3Base) constrainFrame(i int, u IC3Unit) {
	for len(b.frames) <= i {
		b.frames = append(b.frames, nil)
	}
	b.frames[i] = append(b.frames[i], u)
}

// frameFormula is ic3base.h's get_frame: frames_ only stores a unit at
// the highest frame it is known to hold, so asserting frame i means
// conjoining everything known to hold at i and above. Init is frame 0's
// own content (spec.md §4.4); it is not re-added at every i, or every
// relative-induction query for i>0 would be wrongly restricted to
// init-satisfying states.
func (b *IC3Base) frameFormula(i int) *smt.BoolExprPtr {
	var f *smt.BoolExprPtr
	if i <= 0 {
		f = b.ts.Init()
	} else {
		f = b.eb.BoolVal(true)
	}
	start := i
	if start < 0 {
		start = 0
	}
	for idx := start; idx < len(b.frames); idx++ {
		for _, u := range b.frames[idx] {
			f, _ = b.eb.BoolAnd(f, u.Term)
		}
	}
	return f
}

func (b *IC3Base) intersects(a, c *smt.BoolExprPtr) bool {
	b.ctx.Push()
	defer b.ctx.Pop()
	b.ctx.Assert(a)
	b.ctx.Assert(c)
	return b.ctx.CheckSat() == smt.RESULT_SAT
}

func (b *IC3Base) intersectsInitial(u IC3Unit) bool {
	return b.intersects(b.ts.Init(), u.Term)
}

func (b *IC3Base) hasProofGoals() bool { return len(b.proofGoals) > 0 }

// nextProofGoal always returns the goal with the smallest frame index,
// matching ic3base.h's termination argument for block_all/get_next_proof_goal.
func (b *IC3Base) nextProofGoal() *IC3Goal {
	best := 0
	for i, pg := range b.proofGoals {
		if pg.Idx < b.proofGoals[best].Idx {
			best = i
		}
	}
	pg := b.proofGoals[best]
	b.proofGoals = append(b.proofGoals[:best], b.proofGoals[best+1:]...)
	return pg
}

func (b *IC3Base) addProofGoal(c IC3Unit, i int, parent *IC3Goal) {
	b.proofGoals = append(b.proofGoals, &IC3Goal{Target: c, Idx: i, Next: parent})
}

// primeToNext rewrites f (over current-state/input variables) into the
// same formula over each variable's next() symbol, the substitution
// get_predecessor/intersects_bad need to phrase "one step from here".
func (b *IC3Base) primeToNext(f *smt.BoolExprPtr) (*smt.BoolExprPtr, error) {
	subst := make(map[uintptr]smt.ExprPtr)
	for _, v := range b.ts.StateVars() {
		subst[b.ts.Cur(v.Name).Id()] = b.ts.Next(v.Name)
	}
	res := b.eb.Substitute(f, subst)
	return res.(*smt.BoolExprPtr), nil
}

// defaultGetUnit reads the last SAT model back as a conjunction of
// per-state-variable equality literals -- this repo's IC3Unit
// granularity is "variable = value" rather than single bits (see
// DESIGN.md for why bit-level literals were not pursued).
func (b *IC3Base) defaultGetUnit() IC3Unit {
	model := b.ctx.Model()
	var children []*smt.BoolExprPtr
	for _, v := range b.ts.StateVars() {
		lit := b.literalFromModel(v, model)
		if lit != nil {
			children = append(children, lit)
		}
	}
	return b.handler.CreateNegated(children, b.eb)
}

func (b *IC3Base) literalFromModel(v core.Var, model *smt.Valuation) *smt.BoolExprPtr {
	if model == nil {
		return nil
	}
	cur := b.ts.Cur(v.Name)
	switch v.Sort.Kind {
	case smt.SortBV:
		val, ok := model.BV[v.Name]
		if !ok {
			return nil
		}
		lit, _ := b.eb.Eq(cur.(*smt.BVExprPtr), b.eb.BVV(val.AsLong(), v.Sort.Width))
		return lit
	case smt.SortBool:
		val, ok := model.Bool[v.Name]
		if !ok {
			return nil
		}
		if val {
			return cur.(*smt.BoolExprPtr)
		}
		lit, _ := b.eb.BoolNot(cur.(*smt.BoolExprPtr))
		return lit
	default:
		return nil
	}
}

// defaultInductiveGeneralization is a simple down-set generalizer: try
// dropping each literal from the blocked cube's negation and keep the
// drop whenever F[i-1] /\ T /\ not(smaller clause)' is still unsat.
func (b *IC3Base) defaultInductiveGeneralization(i int, c IC3Unit) []IC3Unit {
	neg := b.handler.Negate(c, b.eb)
	children := append([]*smt.BoolExprPtr(nil), neg.Children...)

	changed := true
	for changed {
		changed = false
		for idx := range children {
			trial := append(append([]*smt.BoolExprPtr(nil), children[:idx]...), children[idx+1:]...)
			if len(trial) == 0 {
				continue
			}
			candidate := b.handler.Create(trial, b.eb)
			if b.frameTransInductive(i, candidate) {
				children = trial
				changed = true
				break
			}
		}
	}
	return []IC3Unit{b.handler.Create(children, b.eb)}
}

func (b *IC3Base) frameTransInductive(i int, u IC3Unit) bool {
	holds, err := b.holdsInNextFrame(i-1, u)
	return err == nil && holds
}

// defaultGeneralizePredecessor is the identity generalization: return
// the predecessor cube unchanged. Concrete flavors (IC3SA) override
// this with syntax-guided/equality-class generalization.
func (b *IC3Base) defaultGeneralizePredecessor(i int, c IC3Unit) IC3Unit { return c }

func (b *IC3Base) traceFromCex(bad *smt.BoolExprPtr) core.Witness {
	model := b.ctx.Model()
	return b.witnessFromModel(model, 1)
}

func (b *IC3Base) traceFromGoal(pg *IC3Goal) core.Witness {
	length := 1
	for p := pg; p != nil; p = p.Next {
		length++
	}
	model := b.ctx.Model()
	return b.witnessFromModel(model, length)
}

func (b *IC3Base) witnessFromModel(model *smt.Valuation, length int) core.Witness {
	witness := make(core.Witness, length)
	for step := range witness {
		assignment := core.StateAssignment{BV: map[string]*smt.BVConst{}, Bool: map[string]bool{}}
		if model != nil {
			for _, v := range b.ts.StateVars() {
				if bv, ok := model.BV[v.Name]; ok {
					assignment.BV[v.Name] = bv
				}
				if bo, ok := model.Bool[v.Name]; ok {
					assignment.Bool[v.Name] = bo
				}
			}
		}
		witness[step] = assignment
	}
	return witness
}
