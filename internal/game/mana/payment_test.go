package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePaymentPrefersPool(t *testing.T) {
	pool := NewManaPool()
	pool.Add(ManaGreen, 1)
	pool.Add(ManaBlue, 1)

	cost, _ := ParseCost("{1}{G}")
	sources := []Source{{ID: "forest", Colors: Of(ManaGreen), Amount: 1}}

	plan := CalculatePayment(cost, pool, sources, 0)
	require.NotNil(t, plan)
	assert.Empty(t, plan.Tapped)
	assert.Equal(t, 1, plan.Spent[ManaGreen])
	assert.Equal(t, 1, plan.Spent[ManaBlue])

	require.NoError(t, ExecutePayment(plan, pool))
	assert.Zero(t, pool.Total())
}

func TestCalculatePaymentReassignsDualLand(t *testing.T) {
	// The dual is listed first; a greedy payer would spend it on {W} and fail {U}.
	sources := []Source{
		{ID: "tundra", Colors: ParseColors("WU"), Amount: 1},
		{ID: "plains", Colors: Of(ManaWhite), Amount: 1},
	}
	cost, _ := ParseCost("{W}{U}")

	plan := CalculatePayment(cost, NewManaPool(), sources, 0)
	require.NotNil(t, plan)
	assert.ElementsMatch(t, []string{"tundra", "plains"}, plan.Tapped)
	assert.Equal(t, 1, plan.Produced[ManaWhite])
	assert.Equal(t, 1, plan.Produced[ManaBlue])
}

func TestCalculatePaymentInsufficient(t *testing.T) {
	sources := []Source{
		{ID: "mountain", Colors: Of(ManaRed), Amount: 1},
		{ID: "mountain2", Colors: Of(ManaRed), Amount: 1},
	}
	cost, _ := ParseCost("{1}{G}")
	assert.Nil(t, CalculatePayment(cost, NewManaPool(), sources, 0))
	assert.False(t, CanPay(cost, nil, sources, 0))

	cost, _ = ParseCost("{1}{R}")
	assert.True(t, CanPay(cost, nil, sources, 0))
}

func TestCalculatePaymentFloatsExcess(t *testing.T) {
	sources := []Source{{ID: "sol-ring", Colors: Of(ManaColorless), Amount: 2}}
	cost, _ := ParseCost("{1}")
	pool := NewManaPool()

	plan := CalculatePayment(cost, pool, sources, 0)
	require.NotNil(t, plan)
	assert.Equal(t, []string{"sol-ring"}, plan.Tapped)
	assert.Equal(t, 2, plan.Produced[ManaColorless])

	require.NoError(t, ExecutePayment(plan, pool))
	assert.Equal(t, 1, pool.Get(ManaColorless))
}

func TestXCosts(t *testing.T) {
	sources := []Source{
		{ID: "a", Colors: Of(ManaRed), Amount: 1},
		{ID: "b", Colors: Of(ManaRed), Amount: 1},
	}
	cost, _ := ParseCost("{X}{R}")
	assert.True(t, CanPay(cost, nil, sources, 0))
	assert.True(t, CanPay(cost, nil, sources, 1))
	assert.False(t, CanPay(cost, nil, sources, 2))
}

func TestAvailableAndCoverage(t *testing.T) {
	pool := NewManaPool()
	pool.Add(ManaBlack, 1)
	sources := []Source{{ID: "x", Colors: ParseColors("RG"), Amount: 1}}
	assert.Equal(t, 2, Available(pool, sources))
	assert.Equal(t, ParseColors("BRG"), Coverage(pool, sources))
}
