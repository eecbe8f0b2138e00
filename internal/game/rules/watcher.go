package rules

import (
	"sync"
)

// WatcherScope defines how long a watcher's tracked state lives.
type WatcherScope int

const (
	// WatcherScopeGame tracks events for the entire game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeTurn tracks events for the current turn and is reset when a
	// new turn begins.
	WatcherScopeTurn
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopeTurn:
		return "TURN"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes board events and tracks a condition or tally.
type Watcher interface {
	// Watch is called for every event published on the game's bus.
	Watch(event Event)

	// Reset clears per-scope state.
	Reset()

	// Scope returns the lifetime of this watcher's state.
	Scope() WatcherScope

	// Key returns a unique key for this watcher instance.
	Key() string
}

// BaseWatcher provides a base implementation for watchers.
type BaseWatcher struct {
	scope     WatcherScope
	key       string
	condition bool
}

// NewBaseWatcher creates a new base watcher with the specified scope and key.
func NewBaseWatcher(scope WatcherScope, key string) *BaseWatcher {
	return &BaseWatcher{scope: scope, key: key}
}

// Scope returns the watcher's scope.
func (bw *BaseWatcher) Scope() WatcherScope {
	return bw.scope
}

// Key returns the unique key for this watcher.
func (bw *BaseWatcher) Key() string {
	return bw.key
}

// ConditionMet returns whether the condition has been met.
func (bw *BaseWatcher) ConditionMet() bool {
	return bw.condition
}

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// Reset clears the condition.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// WatcherRegistry manages watchers for a game. Watchers are notified in the
// order they were added.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers []Watcher
	byKey    map[string]Watcher
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		byKey: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher to the registry. A watcher with an existing key
// replaces the previous one.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.Key()
	if _, exists := wr.byKey[key]; exists {
		for i, w := range wr.watchers {
			if w.Key() == key {
				wr.watchers[i] = watcher
				break
			}
		}
	} else {
		wr.watchers = append(wr.watchers, watcher)
	}
	wr.byKey[key] = watcher
}

// GetWatcher retrieves a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.byKey[key]
}

// Attach subscribes the registry to the bus so every published event reaches
// every watcher. It returns the bus handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.NotifyWatchers)
}

// ResetWatchersByScope resets all watchers for a given scope.
func (wr *WatcherRegistry) ResetWatchersByScope(scope WatcherScope) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		if watcher.Scope() == scope {
			watcher.Reset()
		}
	}
}

// NotifyWatchers notifies all watchers of an event.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	watchers := append([]Watcher(nil), wr.watchers...)
	wr.mu.RUnlock()

	for _, watcher := range watchers {
		watcher.Watch(event)
	}
}
