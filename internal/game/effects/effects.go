// Package effects executes ability effects against a board.
package effects

import (
	"fmt"
	"sort"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/mana"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// maxDoublers caps doubling so that 2^n stays reasonable.
const maxDoublers = 10

// Apply executes one effect. src is the permanent whose ability produced the
// effect and may be nil for spells; ev is the triggering event. Each call
// produces exactly the documented delta once.
func Apply(st *board.State, eff ability.Effect, src *board.Permanent, ev rules.Event) error {
	sourceID := ev.SourceID
	if src != nil {
		sourceID = src.ID
	}
	if eff.Amount < 0 {
		// "that much" refers to the amount carried by the event.
		eff.Amount = ev.Amount
	}

	switch eff.Kind {
	case ability.EffectDraw:
		st.Draw(eff.Amount)
	case ability.EffectDrain:
		if eff.Amount > 0 {
			st.OpponentLife -= eff.Amount
			st.Emit(rules.NewEventWithAmount(rules.EventDrain, sourceID, "", eff.Amount))
		}
	case ability.EffectDamage:
		if eff.Amount > 0 {
			st.OpponentLife -= eff.Amount
			// Flag false marks non-combat damage.
			st.Emit(rules.NewEventWithAmount(rules.EventDamagePlayer, sourceID, "", eff.Amount))
		}
	case ability.EffectGainLife:
		GainLife(st, sourceID, eff.Amount)
	case ability.EffectLoseLife:
		if eff.Amount > 0 {
			st.Life -= eff.Amount
			st.Emit(rules.NewEventWithAmount(rules.EventLostLife, sourceID, "", eff.Amount))
		}
	case ability.EffectCreateToken:
		CreateTokens(st, card.NewTokenDefinition(eff.TokenName, eff.Power, eff.Toughness, eff.Keywords), eff.Amount, eff.Tapped)
	case ability.EffectCreateTreasure:
		CreateTokens(st, card.TreasureDefinition, eff.Amount, false)
	case ability.EffectAddCounter:
		n := eff.Amount * multiplier(st.StaticCount(ability.StaticCounterDoubler))
		for _, p := range targets(st, eff.Target, src, ev) {
			AddCounters(st, p, eff.CounterKind, n, sourceID)
		}
	case ability.EffectPump, ability.EffectGrantKeyword:
		buff := board.Buff{SourceID: sourceID, Expiry: eff.Expiry, Turn: st.Turn}
		if eff.Kind == ability.EffectPump {
			buff.Power, buff.Toughness = eff.Power, eff.Toughness
		} else {
			buff.Keywords = append([]string(nil), eff.Keywords...)
		}
		for _, p := range targets(st, eff.Target, src, ev) {
			p.Buffs = append(p.Buffs, buff)
		}
	case ability.EffectAddMana:
		AddMana(st, sourceID, mana.ParseColors(eff.Colors), eff.Amount)
	case ability.EffectFetchLand:
		for i := 0; i < eff.Amount; i++ {
			if !FetchBasicLand(st, eff.Tapped) {
				break
			}
		}
	default:
		return fmt.Errorf("unknown effect kind %s", eff.Kind)
	}
	return nil
}

// ApplyAll executes effects in order, stopping at the first error. A
// "that much" amount takes the amount of the preceding effect.
func ApplyAll(st *board.State, effs []ability.Effect, src *board.Permanent, ev rules.Event) error {
	prev := ev.Amount
	for _, eff := range effs {
		if eff.Amount < 0 {
			eff.Amount = prev
		}
		if err := Apply(st, eff, src, ev); err != nil {
			return fmt.Errorf("apply %s: %w", eff.Kind, err)
		}
		prev = eff.Amount
	}
	return nil
}

func multiplier(doublers int) int {
	if doublers > maxDoublers {
		doublers = maxDoublers
	}
	return 1 << uint(doublers)
}

// GainLife increases the player's life total.
func GainLife(st *board.State, sourceID string, amount int) {
	if amount <= 0 {
		return
	}
	st.Life += amount
	st.Emit(rules.NewEventWithAmount(rules.EventGainedLife, sourceID, "", amount))
}

// CreateTokens creates count tokens of def, multiplied by 2 for every token
// doubler on the battlefield. It returns the created permanents.
func CreateTokens(st *board.State, def *card.Definition, count int, tapped bool) []*board.Permanent {
	if count <= 0 {
		return nil
	}
	count *= multiplier(st.StaticCount(ability.StaticTokenDoubler))
	out := make([]*board.Permanent, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, st.Enter(def, board.EnterOptions{Tapped: tapped}))
	}
	return out
}

// AddCounters puts n counters of kind on p.
func AddCounters(st *board.State, p *board.Permanent, kind string, n int, sourceID string) {
	if n <= 0 || p == nil || p.Removed {
		return
	}
	p.Counters.Add(kind, n)
	st.Emit(rules.NewEventWithAmount(rules.EventCounterAdded, sourceID, p.ID, n))
}

// AddMana adds amount mana to the pool. When more than one color is allowed
// the first color the board cannot already produce is chosen.
func AddMana(st *board.State, sourceID string, colors mana.ColorSet, amount int) {
	if amount <= 0 || colors == 0 {
		return
	}
	choice := chooseColor(colors, mana.Coverage(st.Pool, st.Sources()))
	st.Pool.Add(choice, amount)
	st.Emit(rules.NewEventWithAmount(rules.EventManaAdded, sourceID, "", amount))
}

func chooseColor(options, have mana.ColorSet) mana.ManaType {
	types := options.Types()
	for _, t := range types {
		if !have.Has(t) {
			return t
		}
	}
	return types[0]
}

// FetchBasicLand moves a basic land from the library to the battlefield,
// preferring one that adds a missing color, then shuffles. It reports
// whether a land was found.
func FetchBasicLand(st *board.State, tapped bool) bool {
	have := mana.Coverage(nil, st.Sources())
	for _, p := range st.Lands() {
		have = have.Union(p.Def.ProducedColors)
	}
	best := -1
	for i, def := range st.Library {
		if !def.Land || !def.Basic {
			continue
		}
		if best < 0 {
			best = i
		}
		if !have.Contains(def.ProducedColors) {
			best = i
			break
		}
	}
	if best < 0 {
		return false
	}
	def := st.Library[best]
	st.Library = append(st.Library[:best], st.Library[best+1:]...)
	st.Enter(def, board.EnterOptions{Tapped: tapped})
	st.Shuffle()
	return true
}

// targets resolves an effect target to permanents currently on the board.
func targets(st *board.State, target ability.Target, src *board.Permanent, ev rules.Event) []*board.Permanent {
	switch target {
	case ability.TargetSelf:
		if src != nil && !src.Removed {
			return []*board.Permanent{src}
		}
	case ability.TargetSubject:
		if p := st.Find(ev.SubjectID); p != nil {
			return []*board.Permanent{p}
		}
	case ability.TargetTeam:
		return st.Creatures()
	case ability.TargetTeamOther:
		var out []*board.Permanent
		for _, p := range st.Creatures() {
			if p != src {
				out = append(out, p)
			}
		}
		return out
	case ability.TargetBest:
		if p := BestCreature(st); p != nil {
			return []*board.Permanent{p}
		}
	}
	return nil
}

// BestCreature returns the creature with the highest power, earliest entry
// winning ties.
func BestCreature(st *board.State) *board.Permanent {
	creatures := st.Creatures()
	if len(creatures) == 0 {
		return nil
	}
	sort.SliceStable(creatures, func(i, j int) bool {
		return st.PowerOf(creatures[i]) > st.PowerOf(creatures[j])
	})
	return creatures[0]
}
