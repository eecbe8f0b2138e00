package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	spellCastCount := 0
	lifeGainCount := 0

	handle := bus.SubscribeTyped(EventSpellCast, func(e Event) {
		spellCastCount++
	})
	bus.SubscribeTyped(EventGainedLife, func(e Event) {
		lifeGainCount += e.Amount
	})

	bus.Publish(NewEvent(EventSpellCast, "card1", ""))
	bus.Publish(NewEventWithAmount(EventGainedLife, "source1", "", 5))
	assert.Equal(t, 1, spellCastCount)
	assert.Equal(t, 5, lifeGainCount)

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventSpellCast, "card2", ""))
	assert.Equal(t, 1, spellCastCount, "unsubscribed listener must not fire")
}

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(func(Event) { order = append(order, i) })
	}

	bus.Publish(NewEventWithFlag(EventDamagePlayer, "a", "", true))
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestEventBusIgnoresNilListeners(t *testing.T) {
	bus := NewEventBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	assert.Equal(t, -1, bus.SubscribeTyped(EventDies, nil))
	bus.Publish(NewEvent(EventDies, "x", "x"))
}
