package engines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/engines"
)

func TestCegarValuesFindsCounterexample(t *testing.T) {
	prop := boundedCounter(t, 2)
	opts := engines.Options{Bound: 5}
	cv := engines.NewCegarValues(prop, opts, func(p *core.Property, o engines.Options) engines.Prover {
		return engines.NewIC3(p, o)
	})

	result, witness, err := cv.Check()
	require.NoError(t, err)
	assert.Equal(t, engines.UNSAFE, result)
	assert.NotEmpty(t, witness)
}
