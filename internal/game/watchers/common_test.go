package watchers

import (
	"testing"

	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

func TestMetricsWatcher(t *testing.T) {
	var m board.TurnMetrics
	watcher := NewMetricsWatcher(func() *board.TurnMetrics { return &m })

	if watcher.ConditionMet() {
		t.Fatal("watcher should not have condition met initially")
	}

	watcher.Watch(rules.NewEventWithFlag(rules.EventDamagePlayer, "a", "a", true))
	combat := rules.NewEventWithFlag(rules.EventDamagePlayer, "a", "a", true)
	combat.Amount = 3
	watcher.Watch(combat)
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamagePlayer, "bolt", "", 2))
	watcher.Watch(rules.NewEventWithAmount(rules.EventDrain, "c", "", 1))
	watcher.Watch(rules.NewEvent(rules.EventTokenCreated, "t1", "t1"))
	watcher.Watch(rules.NewEvent(rules.EventTokenCreated, "t2", "t2"))
	watcher.Watch(rules.NewEventWithAmount(rules.EventDrewCard, "", "", 1))
	watcher.Watch(rules.NewEventWithAmount(rules.EventCounterAdded, "", "c", 2))
	watcher.Watch(rules.NewEvent(rules.EventDies, "c", "c"))
	watcher.Watch(rules.NewEvent(rules.EventManaAdded, "", ""))

	if !watcher.ConditionMet() {
		t.Fatal("watcher should have condition met after events")
	}
	if m.CombatDamage != 3 {
		t.Fatalf("expected 3 combat damage, got %d", m.CombatDamage)
	}
	if m.BurnDamage != 2 || m.DrainDamage != 1 {
		t.Fatalf("expected burn 2 drain 1, got %d and %d", m.BurnDamage, m.DrainDamage)
	}
	if m.TotalDamage() != 6 {
		t.Fatalf("expected 6 total damage, got %d", m.TotalDamage())
	}
	if m.TokensCreated != 2 || m.CardsDrawn != 1 || m.CountersPlaced != 2 || m.CreaturesDied != 1 {
		t.Fatalf("unexpected tallies: %+v", m)
	}
}

func TestMetricsWatcherOnBus(t *testing.T) {
	var m board.TurnMetrics
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(NewMetricsWatcher(func() *board.TurnMetrics { return &m }))
	bus := rules.NewEventBus()
	registry.Attach(bus)

	bus.Publish(rules.NewEventWithAmount(rules.EventGainedLife, "", "", 4))
	bus.Publish(rules.NewEventWithAmount(rules.EventLostLife, "", "", 1))
	bus.Publish(rules.NewEvent(rules.EventLandPlayed, "l", "l"))

	if m.LifeGained != 4 || m.LifeLost != 1 || m.LandsPlayed != 1 {
		t.Fatalf("unexpected tallies: %+v", m)
	}
}

func TestCommanderWatcher(t *testing.T) {
	watcher := NewCommanderWatcher()

	cast := func(turn int, commander bool) rules.Event {
		ev := rules.NewEvent(rules.EventSpellCast, "", "")
		ev.Turn = turn
		ev.Spell = &rules.SpellInfo{Name: "x", Commander: commander}
		return ev
	}

	watcher.Watch(cast(2, false))
	if watcher.FirstCastTurn() != 0 {
		t.Fatalf("expected no commander cast, got turn %d", watcher.FirstCastTurn())
	}

	watcher.Watch(cast(4, true))
	watcher.Watch(cast(6, true))
	if watcher.FirstCastTurn() != 4 {
		t.Fatalf("expected first cast on turn 4, got %d", watcher.FirstCastTurn())
	}
	if watcher.Casts() != 2 {
		t.Fatalf("expected 2 casts, got %d", watcher.Casts())
	}

	watcher.Reset()
	if watcher.FirstCastTurn() != 0 || watcher.ConditionMet() {
		t.Fatal("watcher should be clear after reset")
	}
}

func TestSpellsCastWatcherResetsPerTurn(t *testing.T) {
	registry := rules.NewWatcherRegistry()
	watcher := NewSpellsCastWatcher()
	registry.AddWatcher(watcher)

	ev := rules.NewEvent(rules.EventSpellCast, "", "")
	ev.Spell = &rules.SpellInfo{Name: "Bolt"}
	registry.NotifyWatchers(ev)
	ev.Spell = &rules.SpellInfo{Name: "Shock"}
	registry.NotifyWatchers(ev)

	if watcher.GetCount() != 2 {
		t.Fatalf("expected 2 spells cast, got %d", watcher.GetCount())
	}
	if names := watcher.Names(); names[0] != "Bolt" || names[1] != "Shock" {
		t.Fatalf("unexpected names %v", names)
	}

	registry.ResetWatchersByScope(rules.WatcherScopeTurn)
	if watcher.GetCount() != 0 {
		t.Fatalf("expected 0 spells cast after reset, got %d", watcher.GetCount())
	}
}
