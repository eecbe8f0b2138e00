// Package triggers matches board events against the triggered abilities of
// permanents on the battlefield.
package triggers

import (
	"sort"

	"go.uber.org/zap"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// Activation is one triggered ability waiting to resolve.
type Activation struct {
	Source     *board.Permanent
	Descriptor ability.Descriptor
	Event      rules.Event
}

// Registry evaluates events against the battlefield. It holds no per-game
// state and is safe to share between games.
type Registry struct {
	logger *zap.Logger
}

// NewRegistry creates a registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger}
}

// eventTriggers maps event types to the trigger kind they fire.
var eventTriggers = map[rules.EventType]ability.TriggerKind{
	rules.EventEnterBattlefield:  ability.TriggerOnEnter,
	rules.EventAttackerDeclared:  ability.TriggerOnAttack,
	rules.EventDies:              ability.TriggerOnDeath,
	rules.EventLeavesBattlefield: ability.TriggerOnLeaves,
	rules.EventSpellCast:         ability.TriggerOnCast,
	rules.EventUpkeep:            ability.TriggerOnUpkeep,
	rules.EventEndStep:           ability.TriggerOnEndStep,
	rules.EventBeginCombat:       ability.TriggerOnBeginCombat,
}

// TriggerFor returns the trigger kind an event fires, if any.
func TriggerFor(ev rules.Event) (ability.TriggerKind, bool) {
	if ev.Type == rules.EventDamagePlayer {
		// Only combat damage (Flag set) fires combat damage triggers.
		return ability.TriggerOnCombatDamage, ev.Flag
	}
	kind, ok := eventTriggers[ev.Type]
	return kind, ok
}

// Fire returns the activations ev produces, ordered by the entry timestamp of
// their source. The battlefield is read once; permanents entering while the
// activations resolve are not considered for this event.
func (r *Registry) Fire(st *board.State, ev rules.Event) []Activation {
	kind, ok := TriggerFor(ev)
	if !ok {
		return nil
	}

	perms := append([]*board.Permanent(nil), st.Battlefield...)
	sort.SliceStable(perms, func(i, j int) bool {
		return perms[i].Timestamp < perms[j].Timestamp
	})
	subject := st.Find(ev.SubjectID)

	var out []Activation
	for _, p := range perms {
		for _, d := range p.Abilities() {
			if d.Trigger != kind {
				continue
			}
			if !matchesScope(kind, d.Scope, p, ev) {
				continue
			}
			if !r.conditionsHold(st, d, subject, ev) {
				continue
			}
			out = append(out, Activation{Source: p, Descriptor: d, Event: ev})
		}
	}

	if len(out) > 0 && r.logger != nil {
		r.logger.Debug("triggers fired",
			zap.String("event", string(ev.Type)),
			zap.String("trigger", kind.String()),
			zap.Int("count", len(out)),
			zap.Int("turn", ev.Turn),
		)
	}
	return out
}

// matchesScope checks the descriptor's subject scope. Step triggers and cast
// triggers have no permanent subject.
func matchesScope(kind ability.TriggerKind, scope ability.Scope, p *board.Permanent, ev rules.Event) bool {
	switch kind {
	case ability.TriggerOnUpkeep, ability.TriggerOnEndStep, ability.TriggerOnBeginCombat, ability.TriggerOnCast:
		return true
	}
	switch scope {
	case ability.ScopeSelf:
		return ev.SubjectID == p.ID
	case ability.ScopeAnother:
		return ev.SubjectID != "" && ev.SubjectID != p.ID
	default:
		return ev.SubjectID != ""
	}
}

func (r *Registry) conditionsHold(st *board.State, d ability.Descriptor, subject *board.Permanent, ev rules.Event) bool {
	for _, c := range d.Conditions {
		if !conditionHolds(st, c, subject, ev) {
			return false
		}
	}
	return true
}

func conditionHolds(st *board.State, c ability.Condition, subject *board.Permanent, ev rules.Event) bool {
	switch c {
	case ability.CondRequiresHaste:
		return subject != nil && st.HasKeyword(subject, ability.KeywordHaste)
	case ability.CondRequiresFlash:
		if ev.Spell != nil {
			return ev.Spell.Flash
		}
		return subject != nil && st.HasKeyword(subject, ability.KeywordFlash)
	case ability.CondCreature:
		return subject != nil && subject.IsCreature()
	case ability.CondNonCreatureSpell:
		return ev.Spell != nil && !ev.Spell.Creature
	case ability.CondInstantOrSorcery:
		return ev.Spell != nil && (ev.Spell.Instant || ev.Spell.Sorcery)
	case ability.CondCreatureSpell:
		return ev.Spell != nil && ev.Spell.Creature
	}
	return false
}

// ManaPersists reports whether unspent mana carries over between steps.
func (r *Registry) ManaPersists(st *board.State) bool {
	return st.ManaPersists()
}

// SacrificeOutlets returns the permanents that can sacrifice a creature, in
// entry order.
func (r *Registry) SacrificeOutlets(st *board.State) []*board.Permanent {
	var out []*board.Permanent
	for _, p := range st.Battlefield {
		if p.SacrificeOutlet {
			out = append(out, p)
		}
	}
	return out
}

// ActivatedAbility returns the sacrifice ability of an outlet.
func ActivatedAbility(p *board.Permanent) (ability.Descriptor, bool) {
	for _, d := range p.Abilities() {
		if d.Trigger == ability.TriggerActivated {
			return d, true
		}
	}
	return ability.Descriptor{}, false
}
