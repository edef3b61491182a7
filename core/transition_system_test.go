package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

func counterTS(t *testing.T, functional bool) *core.TransitionSystem {
	eb := smt.NewExprBuilder()
	ts := core.NewTransitionSystem(eb, functional)
	cur, next := ts.DeclareStateVar("c", smt.BVSort(8))

	zero := eb.BVV(0, 8)
	eq0, err := eb.Eq(cur.(*smt.BVExprPtr), zero)
	require.NoError(t, err)
	require.NoError(t, ts.ConstrainInit(eq0))

	one := eb.BVV(1, 8)
	sum, err := eb.Add(cur.(*smt.BVExprPtr), one)
	require.NoError(t, err)

	if functional {
		require.NoError(t, ts.AssignNext("c", sum))
	} else {
		eq, err := eb.Eq(next.(*smt.BVExprPtr), sum)
		require.NoError(t, err)
		require.NoError(t, ts.ConstrainTrans(eq))
	}
	return ts
}

func TestTransitionSystemFunctionalTrans(t *testing.T) {
	ts := counterTS(t, true)
	f, err := ts.Trans()
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestTransitionSystemRelationalTrans(t *testing.T) {
	ts := counterTS(t, false)
	f, err := ts.Trans()
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestConstrainTransOnFunctionalIsUnsupported(t *testing.T) {
	ts := counterTS(t, true)
	err := ts.ConstrainTrans(ts.Builder().BoolVal(true))
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestAssignNextOnRelationalIsUnsupported(t *testing.T) {
	ts := counterTS(t, false)
	err := ts.AssignNext("c", ts.Builder().BVV(0, 8))
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestMakeFrozenFunctional(t *testing.T) {
	eb := smt.NewExprBuilder()
	ts := core.NewTransitionSystem(eb, true)
	ts.DeclareStateVar("halt", smt.BoolSort())
	require.NoError(t, ts.MakeFrozen("halt"))
	assert.True(t, ts.IsFrozen("halt"))
	_, err := ts.Trans()
	require.NoError(t, err)
}
