package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAdd(t *testing.T) {
	cs := NewCounters()
	cs.Add(PlusOne, 2)
	cs.Add(PlusOne, 1)
	cs.Add(Charge, 0)
	cs.Add(Charge, -3)

	assert.Equal(t, 3, cs.GetCount(PlusOne))
	assert.Zero(t, cs.GetCount(Charge))
	assert.Equal(t, []string{PlusOne}, cs.Kinds())
	assert.Equal(t, 3, cs.Total())
	require.NoError(t, cs.Validate())
}

func TestCountersBoost(t *testing.T) {
	cs := NewCounters()
	cs.Add(PlusOne, 3)
	cs.Add(MinusOne, 1)
	cs.Add(Oil, 4)
	cs.Add("+2/+0", 1)

	power, toughness := cs.Boost()
	assert.Equal(t, 4, power)
	assert.Equal(t, 2, toughness)
	assert.Equal(t, []string{"+1/+1", "+2/+0", "-1/-1", "oil"}, cs.Kinds())
	assert.Equal(t, 9, cs.Total())
}

func TestValidateRejectsEmptiedKinds(t *testing.T) {
	cs := NewCounters()
	cs.counts[Charge] = 0
	assert.Error(t, cs.Validate())
}
