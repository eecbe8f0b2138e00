// Package board holds the per-game state of a goldfish simulation: zones,
// permanents, life totals, the mana pool and per-turn metrics.
package board

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/mana"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// State is the exclusive owner of everything in one simulated game. A State
// is never shared between goroutines.
type State struct {
	Seed int64
	Rand *rand.Rand

	Turn int
	Step rules.Step

	Life         int
	OpponentLife int

	Library   []*card.Definition
	Hand      []*card.Definition
	Graveyard []*card.Definition

	Commander      *card.Definition
	CommandZone    bool
	CommanderCasts int

	Battlefield []*Permanent
	Pool        *mana.ManaPool
	LandPlayed  bool

	Metrics []TurnMetrics
	Bus     *rules.EventBus

	pending []rules.Event
	seq     int
	clock   int
	logger  *zap.Logger
}

// NewState creates a game state with a shuffled copy of library. The
// commander, when given, starts in the command zone.
func NewState(seed int64, library []*card.Definition, commander *card.Definition, life, opponentLife int, logger *zap.Logger) *State {
	st := &State{
		Seed:         seed,
		Rand:         rand.New(rand.NewSource(seed)),
		Turn:         1,
		Step:         rules.StepUntap,
		Life:         life,
		OpponentLife: opponentLife,
		Library:      append([]*card.Definition(nil), library...),
		Commander:    commander,
		CommandZone:  commander != nil,
		Pool:         mana.NewManaPool(),
		Bus:          rules.NewEventBus(),
		logger:       logger,
	}
	st.Shuffle()
	return st
}

// Shuffle randomizes the library with the game's own generator.
func (st *State) Shuffle() {
	st.Rand.Shuffle(len(st.Library), func(i, j int) {
		st.Library[i], st.Library[j] = st.Library[j], st.Library[i]
	})
}

// nextID returns a deterministic permanent id derived from the game seed.
func (st *State) nextID(name string) string {
	st.seq++
	seed := fmt.Sprintf("%d|%d|%s", st.Seed, st.seq, name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// Emit stamps the event with the current turn and step, publishes it to
// listeners and queues it for trigger resolution.
func (st *State) Emit(ev rules.Event) {
	ev = st.Publish(ev)
	st.pending = append(st.pending, ev)
}

// Publish stamps and publishes the event without queueing it. Used for
// events whose triggers the caller collects itself, such as deaths.
func (st *State) Publish(ev rules.Event) rules.Event {
	ev.Turn = st.Turn
	ev.Step = st.Step
	st.Bus.Publish(ev)
	return ev
}

// DrainPending returns and clears the queued events.
func (st *State) DrainPending() []rules.Event {
	out := st.pending
	st.pending = nil
	return out
}

// HasPending reports whether events are waiting for trigger resolution.
func (st *State) HasPending() bool {
	return len(st.pending) > 0
}

// Current returns the metrics of the turn in progress.
func (st *State) Current() *TurnMetrics {
	for len(st.Metrics) < st.Turn {
		st.Metrics = append(st.Metrics, TurnMetrics{Turn: len(st.Metrics) + 1})
	}
	return &st.Metrics[st.Turn-1]
}

// Draw moves up to n cards from the library to the hand and returns how many
// were drawn. Drawing from an empty library draws nothing.
func (st *State) Draw(n int) int {
	drawn := 0
	for i := 0; i < n && len(st.Library) > 0; i++ {
		c := st.Library[0]
		st.Library = st.Library[1:]
		st.Hand = append(st.Hand, c)
		drawn++
		st.Emit(rules.NewEventWithAmount(rules.EventDrewCard, "", "", 1))
	}
	return drawn
}

// Deal moves up to n cards from the library to the hand without emitting
// draw events. Used for the opening hand.
func (st *State) Deal(n int) {
	if n > len(st.Library) {
		n = len(st.Library)
	}
	st.Hand = append(st.Hand, st.Library[:n]...)
	st.Library = append([]*card.Definition(nil), st.Library[n:]...)
}

// ReturnHand shuffles the hand back into the library.
func (st *State) ReturnHand() {
	st.Library = append(st.Library, st.Hand...)
	st.Hand = nil
	st.Shuffle()
}

// PutOnBottom moves def from the hand to the bottom of the library.
func (st *State) PutOnBottom(def *card.Definition) bool {
	if !st.RemoveFromHand(def) {
		return false
	}
	st.Library = append(st.Library, def)
	return true
}

// RemoveFromHand removes the first copy of def from the hand.
func (st *State) RemoveFromHand(def *card.Definition) bool {
	for i, c := range st.Hand {
		if c == def {
			st.Hand = append(st.Hand[:i], st.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// EnterOptions tweak how a permanent arrives.
type EnterOptions struct {
	Tapped    bool
	Commander bool
}

// Enter puts a new permanent onto the battlefield and emits its
// enter-the-battlefield event (and TOKEN_CREATED for tokens).
func (st *State) Enter(def *card.Definition, opts EnterOptions) *Permanent {
	st.clock++
	p := newPermanent(st.nextID(def.Name), def, st.clock)
	p.Tapped = opts.Tapped || def.EntersTapped
	p.Commander = opts.Commander
	st.Battlefield = append(st.Battlefield, p)

	if st.logger != nil {
		st.logger.Debug("permanent entered",
			zap.Int64("seed", st.Seed),
			zap.Int("turn", st.Turn),
			zap.String("card", def.Name),
			zap.Bool("token", def.Token),
		)
	}

	if def.Token {
		st.Emit(rules.NewEvent(rules.EventTokenCreated, p.ID, p.ID))
	}
	st.Emit(rules.NewEvent(rules.EventEnterBattlefield, p.ID, p.ID))
	return p
}

// Find returns the permanent with the given id, or nil once it has left.
func (st *State) Find(id string) *Permanent {
	for _, p := range st.Battlefield {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Remove drops a permanent from the battlefield and moves the card to its
// next zone. Callers fire leave triggers before calling Remove.
func (st *State) Remove(p *Permanent) error {
	idx := -1
	for i, q := range st.Battlefield {
		if q == p {
			idx = i
			break
		}
	}
	if idx < 0 || p.Removed {
		return fmt.Errorf("permanent %s (%s) is not on the battlefield", p.ID, p.Def.Name)
	}
	st.Battlefield = append(st.Battlefield[:idx], st.Battlefield[idx+1:]...)
	p.Removed = true

	switch {
	case p.Def.Token:
	case p.Commander:
		st.CommandZone = true
	default:
		st.Graveyard = append(st.Graveyard, p.Def)
	}
	return nil
}

// Creatures returns the creatures on the battlefield in entry order.
func (st *State) Creatures() []*Permanent {
	var out []*Permanent
	for _, p := range st.Battlefield {
		if p.IsCreature() {
			out = append(out, p)
		}
	}
	return out
}

// Lands returns the lands on the battlefield in entry order.
func (st *State) Lands() []*Permanent {
	var out []*Permanent
	for _, p := range st.Battlefield {
		if p.Def.Land {
			out = append(out, p)
		}
	}
	return out
}

// statics returns the static descriptors of kind on the battlefield along
// with the permanent carrying each.
func (st *State) statics(kind ability.StaticKind) ([]*Permanent, []ability.Descriptor) {
	var perms []*Permanent
	var descs []ability.Descriptor
	for _, p := range st.Battlefield {
		for _, d := range p.Def.Abilities {
			if d.Trigger == ability.TriggerStatic && d.Static == kind {
				perms = append(perms, p)
				descs = append(descs, d)
			}
		}
	}
	return perms, descs
}

// StaticCount counts static descriptors of kind on the battlefield.
func (st *State) StaticCount(kind ability.StaticKind) int {
	_, descs := st.statics(kind)
	return len(descs)
}

// ManaPersists reports whether a permanent lets unspent mana carry over
// between steps.
func (st *State) ManaPersists() bool {
	return st.StaticCount(ability.StaticManaPersistence) > 0
}

// KeywordsOf returns the keywords p currently has, including team grants.
func (st *State) KeywordsOf(p *Permanent) []string {
	out := p.ownKeywords()
	if !p.IsCreature() {
		return out
	}
	for _, kind := range []ability.StaticKind{ability.StaticTeamKeyword, ability.StaticAnthem} {
		perms, descs := st.statics(kind)
		for i, d := range descs {
			if d.Scope == ability.ScopeAnother && perms[i] == p {
				continue
			}
			out = append(out, d.Keywords...)
		}
	}
	return out
}

// HasKeyword reports whether p currently has keyword.
func (st *State) HasKeyword(p *Permanent, keyword string) bool {
	for _, kw := range st.KeywordsOf(p) {
		if kw == keyword {
			return true
		}
	}
	return false
}

// anthem returns the static power/toughness bonus p receives.
func (st *State) anthem(p *Permanent) (int, int) {
	if !p.IsCreature() {
		return 0, 0
	}
	perms, descs := st.statics(ability.StaticAnthem)
	power, toughness := 0, 0
	for i, d := range descs {
		if d.Scope == ability.ScopeAnother && perms[i] == p {
			continue
		}
		power += d.Power
		toughness += d.Toughness
	}
	return power, toughness
}

// PowerOf returns p's power including anthems.
func (st *State) PowerOf(p *Permanent) int {
	bonus, _ := st.anthem(p)
	return p.Power() + bonus
}

// ToughnessOf returns p's toughness including anthems.
func (st *State) ToughnessOf(p *Permanent) int {
	_, bonus := st.anthem(p)
	return p.Toughness() + bonus
}

// BoardPower sums the positive power of every creature.
func (st *State) BoardPower() int {
	total := 0
	for _, p := range st.Creatures() {
		if pw := st.PowerOf(p); pw > 0 {
			total += pw
		}
	}
	return total
}

// CanTapForMana reports whether p can currently produce mana.
func (st *State) CanTapForMana(p *Permanent) bool {
	if p.Tapped || !p.Def.IsManaSource() {
		return false
	}
	if p.IsCreature() && p.SummoningSick() && !st.HasKeyword(p, ability.KeywordHaste) {
		return false
	}
	return true
}

// Sources lists the untapped mana sources. Lands come first, then other
// permanents, then treasures, so payments spend treasures last.
func (st *State) Sources() []mana.Source {
	var lands, others, treasures []mana.Source
	for _, p := range st.Battlefield {
		if !st.CanTapForMana(p) {
			continue
		}
		src := mana.Source{ID: p.ID, Colors: p.Def.ProducedColors, Amount: p.Def.ManaAmount}
		switch {
		case p.Def.Treasure:
			treasures = append(treasures, src)
		case p.Def.Land:
			lands = append(lands, src)
		default:
			others = append(others, src)
		}
	}
	out := append(lands, others...)
	return append(out, treasures...)
}

// CostReduction returns the generic reduction statics grant to def.
func (st *State) CostReduction(def *card.Definition) int {
	_, descs := st.statics(ability.StaticCostReduction)
	total := 0
	for _, d := range descs {
		switch {
		case d.HasCondition(ability.CondCreatureSpell) && !def.Creature:
		case d.HasCondition(ability.CondNonCreatureSpell) && def.Creature:
		case d.HasCondition(ability.CondInstantOrSorcery) && !def.Instant && !def.Sorcery:
		default:
			total += d.Amount
		}
	}
	return total
}

// Check verifies the state's internal invariants.
func (st *State) Check() error {
	seen := make(map[string]bool, len(st.Battlefield))
	for _, p := range st.Battlefield {
		if p.Removed {
			return fmt.Errorf("removed permanent %s (%s) still on the battlefield", p.ID, p.Def.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate permanent id %s", p.ID)
		}
		seen[p.ID] = true
		if err := p.Counters.Validate(); err != nil {
			return fmt.Errorf("%s: %w", p.Def.Name, err)
		}
		if p.TurnsOnBoard < 0 {
			return fmt.Errorf("%s has negative turns on board", p.Def.Name)
		}
	}
	if st.Pool.Total() < 0 {
		return fmt.Errorf("negative mana pool")
	}
	return nil
}
