// Package ability turns card rules text into structured ability descriptors.
// Interpretation is pure: it never looks at a board and the same text always
// yields the same descriptors.
package ability

import "fmt"

// TriggerKind identifies when a descriptor applies.
type TriggerKind int

const (
	TriggerOnEnter TriggerKind = iota
	TriggerOnAttack
	TriggerOnCombatDamage
	TriggerOnDeath
	TriggerOnLeaves
	TriggerOnCast
	TriggerStatic
	TriggerOnUpkeep
	TriggerOnEndStep
	TriggerOnBeginCombat
	// TriggerOnResolve marks the effect of an instant or sorcery itself.
	TriggerOnResolve
	// TriggerActivated marks "Sacrifice a creature: ..." abilities.
	TriggerActivated
)

var triggerNames = map[TriggerKind]string{
	TriggerOnEnter:        "ON_ENTER",
	TriggerOnAttack:       "ON_ATTACK",
	TriggerOnCombatDamage: "ON_COMBAT_DAMAGE",
	TriggerOnDeath:        "ON_DEATH",
	TriggerOnLeaves:       "ON_LEAVES",
	TriggerOnCast:         "ON_CAST",
	TriggerStatic:         "STATIC",
	TriggerOnUpkeep:       "ON_UPKEEP",
	TriggerOnEndStep:      "ON_END_STEP",
	TriggerOnBeginCombat:  "ON_BEGIN_COMBAT",
	TriggerOnResolve:      "ON_RESOLVE",
	TriggerActivated:      "ACTIVATED",
}

func (k TriggerKind) String() string {
	if name, ok := triggerNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TRIGGER_%d", int(k))
}

// Scope restricts which permanent an event must be about for a descriptor to
// fire.
type Scope int

const (
	// ScopeSelf matches only events about the permanent carrying the ability.
	ScopeSelf Scope = iota
	// ScopeAnother matches events about other permanents you control.
	ScopeAnother
	// ScopeAny matches events about any permanent you control, itself included.
	ScopeAny
)

// Condition is a predicate checked against the live event subject when the
// trigger fires, never at interpretation time.
type Condition int

const (
	CondRequiresHaste Condition = iota
	CondRequiresFlash
	CondNonCreatureSpell
	CondInstantOrSorcery
	CondCreatureSpell
	CondCreature
)

// StaticKind names the continuous effect of a TriggerStatic descriptor.
type StaticKind int

const (
	StaticNone StaticKind = iota
	StaticTokenDoubler
	StaticCounterDoubler
	StaticManaPersistence
	StaticTeamKeyword
	StaticAnthem
	StaticManaAbility
	StaticCostReduction
)

// EffectKind identifies an effect primitive.
type EffectKind int

const (
	EffectDraw EffectKind = iota
	EffectDrain
	EffectDamage
	EffectGainLife
	EffectLoseLife
	EffectCreateToken
	EffectCreateTreasure
	EffectAddCounter
	EffectGrantKeyword
	EffectPump
	EffectAddMana
	EffectFetchLand
)

var effectNames = map[EffectKind]string{
	EffectDraw:           "DRAW",
	EffectDrain:          "DRAIN",
	EffectDamage:         "DAMAGE",
	EffectGainLife:       "GAIN_LIFE",
	EffectLoseLife:       "LOSE_LIFE",
	EffectCreateToken:    "CREATE_TOKEN",
	EffectCreateTreasure: "CREATE_TREASURE",
	EffectAddCounter:     "ADD_COUNTER",
	EffectGrantKeyword:   "GRANT_KEYWORD",
	EffectPump:           "PUMP",
	EffectAddMana:        "ADD_MANA",
	EffectFetchLand:      "FETCH_LAND",
}

func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(k))
}

// Target selects which permanents an effect modifies.
type Target int

const (
	TargetSelf Target = iota
	// TargetSubject is the permanent the triggering event was about.
	TargetSubject
	TargetTeam
	TargetTeamOther
	// TargetBest is "target creature you control"; the engine picks the
	// creature with the highest power.
	TargetBest
)

// Expiry marks when a temporary effect ends.
type Expiry int

const (
	ExpiresNever Expiry = iota
	ExpiresEndOfCombat
	ExpiresEndOfTurn
)

// Effect is one parameterized effect reference.
type Effect struct {
	Kind        EffectKind
	Amount      int
	Power       int
	Toughness   int
	Keywords    []string
	TokenName   string
	CounterKind string
	Target      Target
	Expiry      Expiry
	// Colors holds mana symbols (WUBRGC). For AddMana with more than one
	// color and Amount 1 the producer picks one.
	Colors string
	Tapped bool
}

// Descriptor is the structured result of interpreting one ability.
// Descriptors are immutable once produced.
type Descriptor struct {
	Trigger    TriggerKind
	Scope      Scope
	Conditions []Condition
	Effects    []Effect

	Static    StaticKind
	Keywords  []string
	Power     int
	Toughness int
	Colors    string
	Amount    int

	// Source is the sentence the descriptor was built from.
	Source string
}

// HasCondition reports whether c is among the descriptor's conditions.
func (d Descriptor) HasCondition(c Condition) bool {
	for _, cond := range d.Conditions {
		if cond == c {
			return true
		}
	}
	return false
}
