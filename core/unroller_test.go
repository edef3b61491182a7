package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

func TestUnrollerAtTimeIsMemoized(t *testing.T) {
	ts := counterTS(t, true)
	u := core.NewUnroller(ts)

	cur := ts.Cur("c")
	a, err := u.AtTime(cur, 3)
	require.NoError(t, err)
	b, err := u.AtTime(cur, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Id(), b.Id())

	c, err := u.AtTime(cur, 4)
	require.NoError(t, err)
	assert.NotEqual(t, a.Id(), c.Id())
}

func TestUnrollerRejectsForeignSymbol(t *testing.T) {
	ts := counterTS(t, true)
	u := core.NewUnroller(ts)

	foreign := ts.Builder().BVS("not_declared", 8)
	_, err := u.AtTime(foreign, 0)
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestConeOfInfluenceFunctional(t *testing.T) {
	eb := smt.NewExprBuilder()
	ts := core.NewTransitionSystem(eb, true)
	a, _ := ts.DeclareStateVar("a", smt.BVSort(8))
	_, _ = ts.DeclareStateVar("b", smt.BVSort(8))
	require.NoError(t, ts.AssignNext("a", a))
	require.NoError(t, ts.AssignNext("b", a))

	cone := ts.ConeOfInfluence(ts.Next("b"))
	assert.True(t, cone["b"])
	assert.True(t, cone["a"])
}

func TestConeOfInfluenceRelational(t *testing.T) {
	ts := counterTS(t, false)
	_, err := ts.Trans()
	require.NoError(t, err)

	cone := ts.ConeOfInfluence(ts.Next("c"))
	assert.True(t, cone["c"])
}
