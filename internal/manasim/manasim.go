// Package manasim estimates, per turn, how often a deck has a source of every
// color in its identity and a castable spell. It plays only lands and ramp,
// without combat or triggers, so it can run many more iterations than full
// games.
package manasim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/mana"
)

const (
	defaultIterations = 10000
	defaultMaxTurn    = 10
	defaultHandSize   = 7
)

// Params configures a simulation run. Zero values take defaults.
type Params struct {
	Iterations int
	MaxTurn    int
	OnThePlay  bool
	Seed       int64
	Workers    int
	HandSize   int
	// EntersTapped classifies lands. Defaults to the card's own
	// classification.
	EntersTapped func(*card.Definition) bool
	// ColorIdentity defaults to the union of the deck's identities.
	ColorIdentity mana.ColorSet
}

func (p Params) withDefaults() Params {
	if p.Iterations == 0 {
		p.Iterations = defaultIterations
	}
	if p.MaxTurn == 0 {
		p.MaxTurn = defaultMaxTurn
	}
	if p.HandSize == 0 {
		p.HandSize = defaultHandSize
	}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	if p.EntersTapped == nil {
		p.EntersTapped = DefaultEntersTapped
	}
	return p
}

func (p Params) validate() error {
	if p.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", p.Iterations)
	}
	if p.MaxTurn < 0 {
		return fmt.Errorf("max turn must not be negative, got %d", p.MaxTurn)
	}
	if p.HandSize < 0 {
		return fmt.Errorf("hand size must not be negative, got %d", p.HandSize)
	}
	return nil
}

// DefaultEntersTapped uses the "enters tapped" classification derived from
// the card text.
func DefaultEntersTapped(def *card.Definition) bool {
	return def.EntersTapped
}

// Result holds per-turn probabilities. Index 0 is turn 1.
type Result struct {
	Iterations    int
	ColorCoverage []float64
	PlayableSpell []float64
}

// Coverage returns the color coverage probability of turn, 0 when out of
// range.
func (r *Result) Coverage(turn int) float64 {
	if turn < 1 || turn > len(r.ColorCoverage) {
		return 0
	}
	return r.ColorCoverage[turn-1]
}

// Playable returns the playable spell probability of turn, 0 when out of
// range.
func (r *Result) Playable(turn int) float64 {
	if turn < 1 || turn > len(r.PlayableSpell) {
		return 0
	}
	return r.PlayableSpell[turn-1]
}

// SeedFor derives a well mixed seed for iteration index from base.
func SeedFor(base int64, index int) int64 {
	x := uint64(base) + uint64(index) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Simulator runs mana simulations.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a simulator. logger may be nil.
func NewSimulator(logger *zap.Logger) *Simulator {
	return &Simulator{logger: logger}
}

// SimulateDeck runs a simulation without logging.
func SimulateDeck(ctx context.Context, deck []*card.Definition, params Params) (*Result, error) {
	return NewSimulator(nil).Simulate(ctx, deck, params)
}

// counts is the integer tally one worker accumulates. Merging is a sum, so
// the result does not depend on which worker ran which iteration.
type counts struct {
	covered  []int
	playable []int
}

func newCounts(turns int) *counts {
	return &counts{covered: make([]int, turns), playable: make([]int, turns)}
}

func (c *counts) add(other *counts) {
	for i := range c.covered {
		c.covered[i] += other.covered[i]
		c.playable[i] += other.playable[i]
	}
}

// Simulate runs params.Iterations independent iterations across
// params.Workers goroutines.
func (s *Simulator) Simulate(ctx context.Context, deck []*card.Definition, params Params) (*Result, error) {
	p := params.withDefaults()
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid mana simulation params: %w", err)
	}
	if len(deck) == 0 {
		return nil, fmt.Errorf("mana simulation needs a non-empty deck")
	}
	if p.ColorIdentity == 0 {
		for _, def := range deck {
			p.ColorIdentity = p.ColorIdentity.Union(def.ColorIdentity)
		}
	}
	p.ColorIdentity = p.ColorIdentity.Colors()

	total := newCounts(p.MaxTurn)
	var mu sync.Mutex

	jobs := make(chan int, p.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < p.Iterations; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < p.Workers; w++ {
		g.Go(func() error {
			local := newCounts(p.MaxTurn)
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				runIteration(deck, p, rand.New(rand.NewSource(SeedFor(p.Seed, i))), local)
			}
			mu.Lock()
			total.add(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Iterations:    p.Iterations,
		ColorCoverage: make([]float64, p.MaxTurn),
		PlayableSpell: make([]float64, p.MaxTurn),
	}
	if p.Iterations > 0 {
		n := float64(p.Iterations)
		for t := 0; t < p.MaxTurn; t++ {
			res.ColorCoverage[t] = float64(total.covered[t]) / n
			res.PlayableSpell[t] = float64(total.playable[t]) / n
		}
	}

	if s.logger != nil {
		s.logger.Info("mana simulation complete",
			zap.Int("iterations", p.Iterations),
			zap.Int("max_turn", p.MaxTurn),
			zap.Int("workers", p.Workers),
			zap.String("identity", p.ColorIdentity.String()),
		)
	}
	return res, nil
}

// source is a land or mana permanent in play.
type source struct {
	colors mana.ColorSet
	amount int
	// readyTurn is the first turn the source can be tapped.
	readyTurn int
}

// sim is the state of one iteration.
type sim struct {
	p         Params
	library   []*card.Definition
	hand      []*card.Definition
	sources   []source
	treasures int
	reduction []ability.Descriptor
}

func runIteration(deck []*card.Definition, p Params, rng *rand.Rand, out *counts) {
	s := &sim{p: p, library: append([]*card.Definition(nil), deck...)}
	rng.Shuffle(len(s.library), func(i, j int) {
		s.library[i], s.library[j] = s.library[j], s.library[i]
	})
	s.draw(p.HandSize)

	for turn := 1; turn <= p.MaxTurn; turn++ {
		if turn > 1 || !p.OnThePlay {
			s.draw(1)
		}
		s.playLand(turn)

		if s.coverage().Contains(p.ColorIdentity) {
			out.covered[turn-1]++
		}
		if s.spellPayable(turn) {
			out.playable[turn-1]++
		}
		s.castRamp(turn)
	}
}

func (s *sim) draw(n int) {
	if n > len(s.library) {
		n = len(s.library)
	}
	s.hand = append(s.hand, s.library[:n]...)
	s.library = s.library[n:]
}

func (s *sim) removeFromHand(i int) *card.Definition {
	def := s.hand[i]
	s.hand = append(s.hand[:i:i], s.hand[i+1:]...)
	return def
}

// coverage is every color some permanent in play can produce. Lands that
// entered tapped still count. Treasures are spent, so they never do.
func (s *sim) coverage() mana.ColorSet {
	var set mana.ColorSet
	for _, src := range s.sources {
		set = set.Union(src.colors)
	}
	return set.Colors()
}

func (s *sim) addsMissing(def *card.Definition) bool {
	return def.ProducedColors.Colors()&^s.coverage()&s.p.ColorIdentity != 0
}

func (s *sim) enter(def *card.Definition, turn int, tapped bool) {
	if !def.IsManaSource() {
		return
	}
	ready := turn
	if tapped || (def.Creature && !def.HasKeyword(ability.KeywordHaste)) {
		ready = turn + 1
	}
	s.sources = append(s.sources, source{colors: def.ProducedColors, amount: def.ManaAmount, readyTurn: ready})
}

// playLand plays one land, preferring one that adds a missing identity
// color, then one that enters untapped, then by name.
func (s *sim) playLand(turn int) {
	best := -1
	for i, def := range s.hand {
		if !def.Land {
			continue
		}
		if best < 0 || s.betterLand(def, s.hand[best]) {
			best = i
		}
	}
	if best < 0 {
		return
	}
	land := s.removeFromHand(best)
	s.enter(land, turn, s.p.EntersTapped(land))
}

func (s *sim) betterLand(a, b *card.Definition) bool {
	if am, bm := s.addsMissing(a), s.addsMissing(b); am != bm {
		return am
	}
	at, bt := s.p.EntersTapped(a), s.p.EntersTapped(b)
	if at != bt {
		return !at
	}
	return a.Name < b.Name
}

// available returns the untapped sources for turn, treasures last.
func (s *sim) available(turn int) []mana.Source {
	var out []mana.Source
	for i, src := range s.sources {
		if src.readyTurn <= turn {
			out = append(out, mana.Source{ID: fmt.Sprint(i), Colors: src.colors, Amount: src.amount})
		}
	}
	for i := 0; i < s.treasures; i++ {
		out = append(out, mana.Source{ID: fmt.Sprintf("t%d", i), Colors: card.TreasureDefinition.ProducedColors, Amount: 1})
	}
	return out
}

func (s *sim) costOf(def *card.Definition) *mana.ManaCost {
	total := 0
	for _, d := range s.reduction {
		switch {
		case d.HasCondition(ability.CondCreatureSpell) && !def.Creature:
		case d.HasCondition(ability.CondNonCreatureSpell) && def.Creature:
		case d.HasCondition(ability.CondInstantOrSorcery) && !def.Instant && !def.Sorcery:
		default:
			total += d.Amount
		}
	}
	return def.Cost.ApplyReduction(total)
}

// spellPayable reports whether some non-land, non-accelerant card in hand
// can be paid for with everything untapped this turn.
func (s *sim) spellPayable(turn int) bool {
	sources := s.available(turn)
	for _, def := range s.hand {
		if def.Land || def.Accelerant {
			continue
		}
		if mana.CanPay(s.costOf(def), nil, sources, 0) {
			return true
		}
	}
	return false
}

// castRamp casts accelerants from hand in ascending cost order while they
// can be paid for. Every source is untapped at the start of a turn, so only
// the sources spent this turn are tracked.
func (s *sim) castRamp(turn int) {
	var ramp []*card.Definition
	for _, def := range s.hand {
		if def.Accelerant && !def.Land {
			ramp = append(ramp, def)
		}
	}
	sort.SliceStable(ramp, func(i, j int) bool {
		if ramp[i].ManaValue != ramp[j].ManaValue {
			return ramp[i].ManaValue < ramp[j].ManaValue
		}
		return ramp[i].Name < ramp[j].Name
	})

	spent := make(map[string]bool)
	for _, def := range ramp {
		var sources []mana.Source
		for _, src := range s.available(turn) {
			if !spent[src.ID] {
				sources = append(sources, src)
			}
		}
		plan := mana.CalculatePayment(s.costOf(def), nil, sources, 0)
		if plan == nil {
			continue
		}
		treasuresUsed := 0
		for _, id := range plan.Tapped {
			spent[id] = true
			if id[0] == 't' {
				treasuresUsed++
			}
		}
		for i, d := range s.hand {
			if d == def {
				s.removeFromHand(i)
				break
			}
		}
		s.treasures -= treasuresUsed
		s.resolveRamp(def, turn)
		// Treasure ids are positional; renumbering invalidates spent marks.
		if treasuresUsed > 0 {
			for id := range spent {
				if id[0] == 't' {
					delete(spent, id)
				}
			}
		}
	}
}

func (s *sim) resolveRamp(def *card.Definition, turn int) {
	if def.IsPermanent() {
		s.enter(def, turn, false)
	}
	for _, d := range def.Abilities {
		switch d.Trigger {
		case ability.TriggerStatic:
			if d.Static == ability.StaticCostReduction && def.IsPermanent() {
				s.reduction = append(s.reduction, d)
			}
		case ability.TriggerOnEnter:
			if !def.IsPermanent() {
				continue
			}
			for _, eff := range d.Effects {
				s.resolveEffect(eff, turn)
			}
		case ability.TriggerOnResolve:
			if def.IsPermanent() {
				continue
			}
			for _, eff := range d.Effects {
				s.resolveEffect(eff, turn)
			}
		}
	}
}

func (s *sim) resolveEffect(eff ability.Effect, turn int) {
	// X is zero outside the stack, as in the engine.
	n := eff.Amount
	if n <= 0 {
		return
	}
	switch eff.Kind {
	case ability.EffectCreateTreasure:
		s.treasures += n
	case ability.EffectFetchLand:
		for i := 0; i < n; i++ {
			s.fetchBasic(turn, eff.Tapped)
		}
	case ability.EffectAddMana:
		// One-shot mana does not change what is available on later turns.
	}
}

// fetchBasic moves a basic land from the library onto the battlefield,
// preferring one that adds a missing color.
func (s *sim) fetchBasic(turn int, tapped bool) {
	best := -1
	for i, def := range s.library {
		if !def.Land || !def.Basic {
			continue
		}
		if best < 0 || (s.addsMissing(def) && !s.addsMissing(s.library[best])) {
			best = i
		}
	}
	if best < 0 {
		return
	}
	land := s.library[best]
	s.library = append(s.library[:best:best], s.library[best+1:]...)
	s.enter(land, turn, tapped)
}
