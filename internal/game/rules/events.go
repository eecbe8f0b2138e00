package rules

import (
	"sync"
)

// EventType indicates the category of a board event.
type EventType string

const (
	// Turn structure events
	EventUpkeep      EventType = "UPKEEP"
	EventBeginCombat EventType = "BEGIN_COMBAT"
	EventEndStep     EventType = "END_STEP"
	EventCleanup     EventType = "CLEANUP"

	// Zone events
	EventEnterBattlefield  EventType = "ENTER_BATTLEFIELD"
	EventLeavesBattlefield EventType = "LEAVES_BATTLEFIELD"
	EventDies              EventType = "DIES"
	EventSacrificed        EventType = "SACRIFICED"
	EventTokenCreated      EventType = "TOKEN_CREATED"
	EventLandPlayed        EventType = "LAND_PLAYED"
	EventDrewCard          EventType = "DREW_CARD"

	// Spell events
	EventSpellCast EventType = "SPELL_CAST"

	// Combat events
	EventAttackerDeclared EventType = "ATTACKER_DECLARED"

	// Life/Damage events. DamagePlayer carries Flag=true for combat damage.
	EventDamagePlayer EventType = "DAMAGE_PLAYER"
	EventDrain        EventType = "DRAIN"
	EventGainedLife   EventType = "GAINED_LIFE"
	EventLostLife     EventType = "LOST_LIFE"

	// Counter events
	EventCounterAdded EventType = "COUNTER_ADDED"

	// Mana events
	EventManaAdded     EventType = "MANA_ADDED"
	EventTreasureSpent EventType = "TREASURE_SPENT"
)

// SpellInfo describes the spell behind a SPELL_CAST event. Trigger conditions
// such as "noncreature spell" are checked against it.
type SpellInfo struct {
	Name      string
	ManaValue int
	Creature  bool
	Instant   bool
	Sorcery   bool
	Flash     bool
	Commander bool
}

// Event captures something that happened on a simulated board. Events are
// ephemeral and are dropped once the triggers they caused have resolved.
type Event struct {
	Type      EventType
	SourceID  string // permanent or spell that caused the event
	SubjectID string // permanent the event is about (attacker, dying creature, ...)
	Amount    int
	Flag      bool
	Turn      int
	Step      Step
	Spell     *SpellInfo
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

type handleListener struct {
	handle   int
	listener Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners are invoked in subscription order so that replaying a
// game with the same seed produces the same observations.
type EventBus struct {
	mu             sync.RWMutex
	listeners      []handleListener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, handleListener{handle: handle, listener: listener})
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, l := range bus.listeners {
		if l.handle == handle {
			bus.listeners = append(bus.listeners[:i], bus.listeners[i+1:]...)
			return
		}
	}
	for eventType, listeners := range bus.typedListeners {
		for i := range listeners {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	listeners := append([]handleListener(nil), bus.listeners...)
	typed := append([]TypedListener(nil), bus.typedListeners[event.Type]...)
	bus.mu.RUnlock()

	for _, l := range listeners {
		l.listener(event)
	}
	for _, l := range typed {
		l.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, sourceID, subjectID string) Event {
	return Event{
		Type:      eventType,
		SourceID:  sourceID,
		SubjectID: subjectID,
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, sourceID, subjectID string, amount int) Event {
	evt := NewEvent(eventType, sourceID, subjectID)
	evt.Amount = amount
	return evt
}

// NewEventWithFlag creates a new event with a flag value.
func NewEventWithFlag(eventType EventType, sourceID, subjectID string, flag bool) Event {
	evt := NewEvent(eventType, sourceID, subjectID)
	evt.Flag = flag
	return evt
}
