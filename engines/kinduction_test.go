package engines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/engines"
	"github.com/log-when/pono/smt"
)

// boundedCounter builds c := 0; c := c + 1 each step, with the given
// safety property over c.
func boundedCounter(t *testing.T, limit int64) *core.Property {
	eb := smt.NewExprBuilder()
	ts := core.NewTransitionSystem(eb, true)
	cur, _ := ts.DeclareStateVar("c", smt.BVSort(8))

	zero := eb.BVV(0, 8)
	eq0, err := eb.Eq(cur.(*smt.BVExprPtr), zero)
	require.NoError(t, err)
	require.NoError(t, ts.ConstrainInit(eq0))

	one := eb.BVV(1, 8)
	sum, err := eb.Add(cur.(*smt.BVExprPtr), one)
	require.NoError(t, err)
	require.NoError(t, ts.AssignNext("c", sum))

	limitVal := eb.BVV(limit, 8)
	neq, err := eb.Eq(cur.(*smt.BVExprPtr), limitVal)
	require.NoError(t, err)
	prop, err := eb.BoolNot(neq)
	require.NoError(t, err)

	return core.NewProperty(ts, prop)
}

func TestKInductionFindsCounterexample(t *testing.T) {
	prop := boundedCounter(t, 3)
	ki := engines.NewKInduction(prop, engines.Options{Bound: 5})

	result, witness, err := ki.Check()
	require.NoError(t, err)
	assert.Equal(t, engines.UNSAFE, result)
	assert.NotEmpty(t, witness)
}

func TestKInductionUnreachableLimitIsUnknownOrSafe(t *testing.T) {
	// c is an 8-bit counter starting at 0; the limit 44 is first reached
	// at step 44, far past the bound of 3, so this only checks that the
	// engine terminates and returns a defined three-valued result
	// within a small bound rather than erroring.
	prop := boundedCounter(t, 44)
	ki := engines.NewKInduction(prop, engines.Options{Bound: 3})

	result, _, err := ki.Check()
	require.NoError(t, err)
	assert.Contains(t, []engines.Result{engines.SAFE, engines.UNSAFE, engines.UNKNOWN}, result)
}
