package board

import (
	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/counters"
)

// Buff is a temporary power/toughness or keyword modification.
type Buff struct {
	SourceID  string
	Power     int
	Toughness int
	Keywords  []string
	Expiry    ability.Expiry
	Turn      int
}

// Permanent is a card instance on the battlefield. All mutable per-instance
// state lives here; the shared Definition is never modified.
type Permanent struct {
	ID        string
	Def       *card.Definition
	Timestamp int

	Tapped       bool
	TurnsOnBoard int
	Counters     *counters.Counters
	Buffs        []Buff

	// Typed ability slots, copied from the definition at creation.
	DeathValue      int
	SacrificeOutlet bool

	Commander bool
	Removed   bool
}

func newPermanent(id string, def *card.Definition, timestamp int) *Permanent {
	return &Permanent{
		ID:              id,
		Def:             def,
		Timestamp:       timestamp,
		Counters:        counters.NewCounters(),
		DeathValue:      def.DeathValue,
		SacrificeOutlet: def.SacrificeOutlet,
	}
}

// Power returns base power plus counters plus active buffs.
func (p *Permanent) Power() int {
	power, _ := p.Counters.Boost()
	power += p.Def.Power
	for _, b := range p.Buffs {
		power += b.Power
	}
	return power
}

// Toughness returns base toughness plus counters plus active buffs.
func (p *Permanent) Toughness() int {
	_, toughness := p.Counters.Boost()
	toughness += p.Def.Toughness
	for _, b := range p.Buffs {
		toughness += b.Toughness
	}
	return toughness
}

// IsCreature reports whether the permanent is a creature.
func (p *Permanent) IsCreature() bool {
	return p.Def.Creature
}

// IsToken reports whether the permanent is a token.
func (p *Permanent) IsToken() bool {
	return p.Def.Token
}

// SummoningSick reports whether the permanent arrived this turn.
func (p *Permanent) SummoningSick() bool {
	return p.TurnsOnBoard < 1
}

// ownKeywords returns printed keywords plus buff grants, without team
// statics.
func (p *Permanent) ownKeywords() []string {
	out := append([]string(nil), p.Def.Keywords...)
	for _, b := range p.Buffs {
		out = append(out, b.Keywords...)
	}
	return out
}

// Abilities returns the descriptors the permanent carries.
func (p *Permanent) Abilities() []ability.Descriptor {
	return p.Def.Abilities
}

func (p *Permanent) String() string {
	return p.Def.Name
}
