package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManaPool_AddSpend(t *testing.T) {
	pool := NewManaPool()
	pool.Add(ManaWhite, 3)
	pool.Add(ManaBlue, 2)
	pool.Add(ManaGeneric, 5)

	assert.Equal(t, 5, pool.Total(), "generic is not a concrete type and is never added")
	assert.True(t, pool.Spend(ManaWhite, 2))
	assert.Equal(t, 1, pool.Get(ManaWhite))
	assert.False(t, pool.Spend(ManaBlue, 3))
	assert.Equal(t, 2, pool.Get(ManaBlue), "failed spend leaves the pool untouched")
}

func TestManaPool_SpendAllIsAtomic(t *testing.T) {
	pool := NewManaPool()
	pool.Add(ManaGreen, 1)
	pool.Add(ManaRed, 1)

	err := pool.SpendAll(map[ManaType]int{ManaGreen: 1, ManaRed: 2})
	require.Error(t, err)
	assert.Equal(t, 2, pool.Total())

	require.NoError(t, pool.SpendAll(map[ManaType]int{ManaGreen: 1, ManaRed: 1}))
	assert.Zero(t, pool.Total())
}

func TestManaPool_EmptyAndCopy(t *testing.T) {
	pool := NewManaPool()
	pool.Add(ManaGreen, 2)
	pool.Add(ManaColorless, 1)
	cp := pool.Copy()

	pool.Empty()
	assert.Zero(t, pool.Total())
	assert.Equal(t, 3, cp.Total())
	assert.Equal(t, "GGC", cp.String())
}

func TestColorSet(t *testing.T) {
	set := ParseColors("gw")
	assert.True(t, set.Has(ManaGreen))
	assert.True(t, set.Has(ManaWhite))
	assert.False(t, set.Has(ManaRed))
	assert.Equal(t, 2, set.Count())
	assert.Equal(t, "WG", set.String())
	assert.True(t, ParseColors("WUBRG").Contains(set))
	assert.Equal(t, ParseColors("G"), ParseColors("GC").Colors())
}
