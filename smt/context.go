package smt

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
)

// Context is the incremental, push/pop-capable SMT context spec.md §5
// requires of the logical kernel: a logical stack depth counter,
// persistent assertions at level 0, unsat-core extraction over
// labelled assumptions, and model/value extraction. It is adapted from
// z3backend.go's convert() (same switch over termNode kinds) but,
// unlike z3backend (which resets and rebuilds the whole query on every
// check()), keeps one live z3.Solver across calls so push/pop and
// AssertAndTrack/GetUnsatCore behave the way the engines above this
// package need them to.
type Context struct {
	eb     *ExprBuilder
	ctx    *z3.Context
	solver *z3.Solver

	cache       map[uintptr]z3.Value
	bvSymbols   map[uintptr]z3.BV
	boolSymbols map[uintptr]z3.Bool

	depth int
}

// NewContext creates a fresh incremental solver context bound to the
// given term builder. Two TransitionSystems sharing one Context also
// share term identity. CEGAR (engines.CegarValues) builds its abstract
// system on the concrete system's ExprBuilder and opens a separate
// Context for each refinement query; no term is translated between
// Contexts.
func NewContext(eb *ExprBuilder) *Context {
	cfg := z3.NewContextConfig()
	zctx := z3.NewContext(cfg)
	return &Context{
		eb:          eb,
		ctx:         zctx,
		solver:      z3.NewSolver(zctx),
		cache:       make(map[uintptr]z3.Value),
		bvSymbols:   make(map[uintptr]z3.BV),
		boolSymbols: make(map[uintptr]z3.Bool),
	}
}

// Depth reports the current push/pop nesting level (0 = base level,
// where persistent assertions live per spec.md §5).
func (c *Context) Depth() int { return c.depth }

// Push opens a new, poppable assertion scope.
func (c *Context) Push() {
	c.solver.Push()
	c.depth++
}

// Pop closes the innermost assertion scope. Every Push across every
// exit path (including error paths in the engines above) must be
// matched by exactly one Pop — spec.md §5's "solver context discipline".
func (c *Context) Pop() {
	if c.depth == 0 {
		panic("smt: Pop() with no matching Push()")
	}
	c.solver.Pop()
	c.depth--
}

// Assert adds a formula unconditionally at the current scope. Called
// at depth 0 it is a persistent assertion (k-induction's trans/prop);
// called under a Push it is scoped to that push.
func (c *Context) Assert(f *BoolExprPtr) {
	c.solver.Assert(c.convert(f.e).(z3.Bool))
}

// AssertAndTrack adds a formula tracked by a fresh boolean literal
// named label, so that a subsequent UNSAT result's unsat core can name
// it. Mirrors the aclements/go-z3 AssertAndTrack + GetUnsatCore pattern.
func (c *Context) AssertAndTrack(f *BoolExprPtr, label string) {
	lit := c.ctx.BoolConst(label)
	c.solver.AssertAndTrack(c.convert(f.e).(z3.Bool), lit)
}

// CheckSat checks satisfiability of everything asserted so far.
func (c *Context) CheckSat() int {
	sat, err := c.solver.Check()
	if err != nil {
		return RESULT_UNKNOWN
	}
	if sat {
		return RESULT_SAT
	}
	return RESULT_UNSAT
}

// CheckSatAssuming pushes a fresh scope, tracks each (label, formula)
// assumption, checks satisfiability, and on UNSAT returns the subset of
// labels present in the unsat core before popping the scope. On SAT the
// returned core is nil. Callers must not rely on assumptions persisting
// past this call: the scope is always popped before return.
func (c *Context) CheckSatAssuming(assumptions map[string]*BoolExprPtr) (int, []string) {
	c.Push()
	defer c.Pop()

	for label, f := range assumptions {
		c.AssertAndTrack(f, label)
	}

	result := c.CheckSat()
	if result != RESULT_UNSAT {
		return result, nil
	}

	core := c.solver.GetUnsatCore()
	names := make(map[string]bool, len(core))
	for _, lit := range core {
		names[lit.String()] = true
	}
	labels := make([]string, 0, len(names))
	for label := range assumptions {
		if names[label] {
			labels = append(labels, label)
		}
	}
	return RESULT_UNSAT, labels
}

// Valuation is a total model: a per-symbol-name assignment, split by
// sort family since this package's two term families (BV, Bool) are
// evaluated through distinct go-z3 value kinds.
type Valuation struct {
	BV   map[string]*BVConst
	Bool map[string]bool
}

// Model extracts a Valuation for every symbol this Context has ever
// converted (bit-vector and boolean state/input variables alike).
// Requires the last CheckSat/CheckSatAssuming call to have been SAT.
func (c *Context) Model() *Valuation {
	m := c.solver.Model()
	if m == nil {
		return nil
	}
	val := &Valuation{
		BV:   make(map[string]*BVConst),
		Bool: make(map[string]bool),
	}
	for _, sym := range c.bvSymbols {
		v := m.Eval(sym, false).(z3.BV)
		bvc, err := convertZ3Const(v)
		if err != nil {
			continue
		}
		val.BV[sym.String()] = bvc
	}
	for _, sym := range c.boolSymbols {
		v := m.Eval(sym, false).(z3.Bool)
		val.Bool[sym.String()] = v.String() == "true"
	}
	return val
}

func (c *Context) convert(e termNode) z3.Value {
	if v, ok := c.cache[e.rawPtr()]; ok {
		return v
	}

	var result z3.Value
	switch e.kind() {
	case KindSym:
		bv := e.(*bvSymNode)
		result = c.ctx.BVConst(bv.name, int(bv.size()))
		c.bvSymbols[bv.rawPtr()] = result.(z3.BV)
	case KindBoolSym:
		b := e.(*boolSymNode)
		result = c.ctx.BoolConst(b.name)
		c.boolSymbols[b.rawPtr()] = result.(z3.Bool)
	case KindConst:
		bv := e.(*bvConstNode)
		result = c.ctx.FromBigInt(bv.Value.value, c.ctx.BVSort(int(bv.size())))
	case KindExtract:
		e := e.(*bvExtractNode)
		child := c.convert(e.child.e).(z3.BV)
		result = child.Extract(int(e.high), int(e.low))
	case KindConcat:
		e := e.(*bvConcatNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.Concat(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindZExt:
		e := e.(*bvExtendNode)
		result = c.convert(e.child.e).(z3.BV).ZeroExtend(int(e.n))
	case KindSExt:
		e := e.(*bvExtendNode)
		result = c.convert(e.child.e).(z3.BV).SignExtend(int(e.n))
	case KindITE:
		e := e.(*bvIteNode)
		guard := c.convert(e.cond.e).(z3.Bool)
		iftrue := c.convert(e.iftrue.e).(z3.BV)
		iffalse := c.convert(e.iffalse.e).(z3.BV)
		result = guard.IfThenElse(iftrue, iffalse)
	case KindNot:
		e := e.(*bvUnOpNode)
		result = c.convert(e.child.e).(z3.BV).Not()
	case KindNeg:
		e := e.(*bvUnOpNode)
		result = c.convert(e.child.e).(z3.BV).Neg()
	case KindShl:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).Lsh(c.convert(e.children[1].e).(z3.BV))
	case KindLshr:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).URsh(c.convert(e.children[1].e).(z3.BV))
	case KindAshr:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).SRsh(c.convert(e.children[1].e).(z3.BV))
	case KindAnd:
		e := e.(*bvNaryOpNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.And(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindOr:
		e := e.(*bvNaryOpNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.Or(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindXor:
		e := e.(*bvNaryOpNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.Xor(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindAdd:
		e := e.(*bvNaryOpNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.Add(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindMul:
		e := e.(*bvNaryOpNode)
		res := c.convert(e.children[0].e).(z3.BV)
		for i := 1; i < len(e.children); i++ {
			res = res.Mul(c.convert(e.children[i].e).(z3.BV))
		}
		result = res
	case KindSdiv:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).SDiv(c.convert(e.children[1].e).(z3.BV))
	case KindUdiv:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).UDiv(c.convert(e.children[1].e).(z3.BV))
	case KindSrem:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).SRem(c.convert(e.children[1].e).(z3.BV))
	case KindUrem:
		e := e.(*bvNaryOpNode)
		result = c.convert(e.children[0].e).(z3.BV).URem(c.convert(e.children[1].e).(z3.BV))
	case KindUlt:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).ULT(c.convert(e.rhs.e).(z3.BV))
	case KindUle:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).ULE(c.convert(e.rhs.e).(z3.BV))
	case KindUgt:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).UGT(c.convert(e.rhs.e).(z3.BV))
	case KindUge:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).UGE(c.convert(e.rhs.e).(z3.BV))
	case KindSlt:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).SLT(c.convert(e.rhs.e).(z3.BV))
	case KindSle:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).SLE(c.convert(e.rhs.e).(z3.BV))
	case KindSgt:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).SGT(c.convert(e.rhs.e).(z3.BV))
	case KindSge:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).SGE(c.convert(e.rhs.e).(z3.BV))
	case KindEq:
		e := e.(*bvCmpNode)
		result = c.convert(e.lhs.e).(z3.BV).Eq(c.convert(e.rhs.e).(z3.BV))
	case KindBoolConst:
		e := e.(*boolConstNode)
		result = c.ctx.FromBool(e.Value.Value)
	case KindBoolNot:
		e := e.(*boolNotOpNode)
		result = c.convert(e.child.e).(z3.Bool).Not()
	case KindBoolAnd:
		e := e.(*boolNaryOpNode)
		res := c.convert(e.children[0].e).(z3.Bool)
		for i := 1; i < len(e.children); i++ {
			res = res.And(c.convert(e.children[i].e).(z3.Bool))
		}
		result = res
	case KindBoolOr:
		e := e.(*boolNaryOpNode)
		res := c.convert(e.children[0].e).(z3.Bool)
		for i := 1; i < len(e.children); i++ {
			res = res.Or(c.convert(e.children[i].e).(z3.Bool))
		}
		result = res
	default:
		panic(fmt.Sprintf("smt: Context.convert: unsupported kind %d", e.kind()))
	}

	c.cache[e.rawPtr()] = result
	return result
}
