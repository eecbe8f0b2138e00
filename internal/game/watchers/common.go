// Package watchers turns the board event stream into game measurements.
package watchers

import (
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

const (
	MetricsWatcherKey    = "MetricsWatcher"
	CommanderWatcherKey  = "CommanderWatcher"
	SpellsCastWatcherKey = "SpellsCastWatcher"
)

// MetricsWatcher tallies per-turn metrics from events.
type MetricsWatcher struct {
	*rules.BaseWatcher
	current func() *board.TurnMetrics
}

// NewMetricsWatcher creates a watcher that writes into the metrics current
// returns. current is called once per relevant event.
func NewMetricsWatcher(current func() *board.TurnMetrics) *MetricsWatcher {
	return &MetricsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, MetricsWatcherKey),
		current:     current,
	}
}

// Watch implements the Watcher interface.
func (w *MetricsWatcher) Watch(event rules.Event) {
	var m *board.TurnMetrics
	get := func() *board.TurnMetrics {
		if m == nil {
			m = w.current()
		}
		return m
	}

	switch event.Type {
	case rules.EventDamagePlayer:
		if event.Flag {
			get().CombatDamage += event.Amount
		} else {
			get().BurnDamage += event.Amount
		}
	case rules.EventDrain:
		get().DrainDamage += event.Amount
	case rules.EventTokenCreated:
		get().TokensCreated++
	case rules.EventGainedLife:
		get().LifeGained += event.Amount
	case rules.EventLostLife:
		get().LifeLost += event.Amount
	case rules.EventDrewCard:
		get().CardsDrawn += event.Amount
	case rules.EventSpellCast:
		get().SpellsCast++
	case rules.EventLandPlayed:
		get().LandsPlayed++
	case rules.EventCounterAdded:
		get().CountersPlaced += event.Amount
	case rules.EventDies:
		get().CreaturesDied++
	default:
		return
	}
	w.SetCondition(true)
}

// CommanderWatcher records the first turn the commander was cast.
type CommanderWatcher struct {
	*rules.BaseWatcher
	firstCast int
	casts     int
}

// NewCommanderWatcher creates a commander watcher.
func NewCommanderWatcher() *CommanderWatcher {
	return &CommanderWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, CommanderWatcherKey),
	}
}

// Watch implements the Watcher interface.
func (w *CommanderWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast || event.Spell == nil || !event.Spell.Commander {
		return
	}
	w.casts++
	if w.firstCast == 0 {
		w.firstCast = event.Turn
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CommanderWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.firstCast = 0
	w.casts = 0
}

// FirstCastTurn returns the turn of the first commander cast, 0 if none.
func (w *CommanderWatcher) FirstCastTurn() int {
	return w.firstCast
}

// Casts returns how many times the commander was cast.
func (w *CommanderWatcher) Casts() int {
	return w.casts
}

// SpellsCastWatcher records the spells cast this turn.
type SpellsCastWatcher struct {
	*rules.BaseWatcher
	names []string
}

// NewSpellsCastWatcher creates a turn-scoped spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	return &SpellsCastWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn, SpellsCastWatcherKey),
	}
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast || event.Spell == nil {
		return
	}
	w.names = append(w.names, event.Spell.Name)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SpellsCastWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.names = nil
}

// GetCount returns the number of spells cast this turn.
func (w *SpellsCastWatcher) GetCount() int {
	return len(w.names)
}

// Names returns the spells cast this turn in order.
func (w *SpellsCastWatcher) Names() []string {
	return append([]string(nil), w.names...)
}
