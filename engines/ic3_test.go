package engines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/log-when/pono/engines"
)

func TestIC3FindsCounterexample(t *testing.T) {
	prop := boundedCounter(t, 2)
	ic3 := engines.NewIC3(prop, engines.Options{Bound: 5})

	result, witness, err := ic3.Check()
	require.NoError(t, err)
	assert.Equal(t, engines.UNSAFE, result)
	assert.NotEmpty(t, witness)
}

func TestIC3SAFindsCounterexample(t *testing.T) {
	prop := boundedCounter(t, 2)
	ic3sa := engines.NewIC3SA(prop, engines.Options{Bound: 5})

	result, _, err := ic3sa.Check()
	require.NoError(t, err)
	assert.Equal(t, engines.UNSAFE, result)
}
