// Package game runs single-player goldfish games: the turn structure, land
// drops, greedy casting, unblocked combat and trigger resolution.
package game

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/effects"
	"github.com/magefree/mage-goldfish/internal/game/mana"
	"github.com/magefree/mage-goldfish/internal/game/rules"
	"github.com/magefree/mage-goldfish/internal/game/triggers"
	"github.com/magefree/mage-goldfish/internal/game/watchers"
)

// commanderTax is the extra generic cost per previous cast from the command
// zone.
const commanderTax = 2

// Engine plays goldfish games. An Engine holds only immutable configuration
// and can be shared by concurrently running games.
type Engine struct {
	opts     Options
	hand     HandPolicy
	triggers *triggers.Registry
	logger   *zap.Logger
}

// NewEngine creates an engine with the default hand policy.
func NewEngine(opts Options, logger *zap.Logger) (*Engine, error) {
	if opts.SacrificePolicy == "" {
		opts.SacrificePolicy = SacrificeNone
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	return &Engine{
		opts:     opts,
		hand:     DefaultHandPolicy(),
		triggers: triggers.NewRegistry(logger),
		logger:   logger,
	}, nil
}

// WithHandPolicy returns a copy of the engine using policy for opening hands.
func (e *Engine) WithHandPolicy(policy HandPolicy) *Engine {
	cp := *e
	cp.hand = policy
	return &cp
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// gameRun is the per-game state of one Play call.
type gameRun struct {
	*Engine
	st        *board.State
	identity  mana.ColorSet
	watchers  *rules.WatcherRegistry
	commander *watchers.CommanderWatcher
	spells    *watchers.SpellsCastWatcher
	attackers []*board.Permanent
	replay    *Replay
}

// Play runs one game to the configured turn limit. The same deck, commander
// and seed always produce the same record. Internal inconsistencies, panics
// included, are returned as *InvariantViolation.
func (e *Engine) Play(ctx context.Context, deck []*card.Definition, commander *card.Definition, seed int64) (*board.GameRecord, error) {
	rec, _, err := e.play(ctx, deck, commander, seed, false)
	return rec, err
}

// Record plays a game like Play and also returns a snapshot of the board at
// the end of every turn.
func (e *Engine) Record(ctx context.Context, deck []*card.Definition, commander *card.Definition, seed int64) (*board.GameRecord, *Replay, error) {
	return e.play(ctx, deck, commander, seed, true)
}

func (e *Engine) play(ctx context.Context, deck []*card.Definition, commander *card.Definition, seed int64, record bool) (rec *board.GameRecord, replay *Replay, err error) {
	g := e.newGame(deck, commander, seed)
	if record {
		g.replay = NewReplay(seed)
	}

	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Warn("game panicked",
					zap.Int64("seed", seed),
					zap.Int("turn", g.st.Turn),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
			}
			rec, replay = nil, nil
			err = &InvariantViolation{
				Seed:   seed,
				Turn:   g.st.Turn,
				Step:   g.st.Step,
				Reason: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	if err := g.run(ctx); err != nil {
		return nil, nil, err
	}
	return g.record(), g.replay, nil
}

func (e *Engine) newGame(deck []*card.Definition, commander *card.Definition, seed int64) *gameRun {
	st := board.NewState(seed, deck, commander, e.opts.StartingLife, e.opts.OpponentLife, e.logger)
	g := &gameRun{
		Engine:    e,
		st:        st,
		watchers:  rules.NewWatcherRegistry(),
		commander: watchers.NewCommanderWatcher(),
		spells:    watchers.NewSpellsCastWatcher(),
	}
	for _, def := range deck {
		g.identity = g.identity.Union(def.ColorIdentity)
	}
	if commander != nil {
		g.identity = g.identity.Union(commander.ColorIdentity)
	}
	g.identity = g.identity.Colors()

	g.watchers.AddWatcher(watchers.NewMetricsWatcher(st.Current))
	g.watchers.AddWatcher(g.commander)
	g.watchers.AddWatcher(g.spells)
	g.watchers.Attach(st.Bus)
	return g
}

func (g *gameRun) run(ctx context.Context) error {
	g.openingHand()

	tm := rules.NewTurnManager(g.opts.MaxTurns)
	for !tm.Done() {
		step := tm.CurrentStep()
		if step == rules.StepUntap {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		g.st.Turn = tm.TurnNumber()
		g.st.Step = step

		if err := g.runStep(step); err != nil {
			return g.violation(err)
		}
		g.endOfStep()
		if err := g.st.Check(); err != nil {
			return g.violation(err)
		}
		tm.AdvanceStep()
	}
	return nil
}

func (g *gameRun) record() *board.GameRecord {
	return &board.GameRecord{
		Seed:              g.st.Seed,
		Turns:             append([]board.TurnMetrics(nil), g.st.Metrics...),
		CommanderCastTurn: g.commander.FirstCastTurn(),
	}
}

func (g *gameRun) openingHand() {
	st := g.st
	st.Deal(g.opts.HandSize)
	mulligans := 0
	for mulligans < g.opts.HandSize && !g.hand.Keep(st.Hand, mulligans) {
		mulligans++
		st.ReturnHand()
		st.Deal(g.opts.HandSize)
	}
	for _, def := range g.hand.Bottom(st.Hand, mulligans) {
		st.PutOnBottom(def)
	}

	if g.logger != nil {
		g.logger.Debug("opening hand",
			zap.Int64("seed", st.Seed),
			zap.Int("mulligans", mulligans),
			zap.Int("hand_size", len(st.Hand)),
		)
	}
}

func (g *gameRun) runStep(step rules.Step) error {
	st := g.st
	switch step {
	case rules.StepUntap:
		g.untap()
	case rules.StepUpkeep:
		return g.upkeep()
	case rules.StepDraw:
		if st.Turn == 1 && g.opts.OnThePlay {
			return nil
		}
		st.Draw(1)
		return g.resolve()
	case rules.StepMain1, rules.StepMain2:
		return g.main(step)
	case rules.StepBeginCombat:
		st.Emit(rules.NewEvent(rules.EventBeginCombat, "", ""))
		return g.resolve()
	case rules.StepDeclareAttackers:
		return g.declareAttackers()
	case rules.StepDeclareBlockers:
		// The opponent never blocks.
	case rules.StepCombatDamage:
		return g.combatDamage()
	case rules.StepEndCombat:
		effects.ExpireTemporary(st, step)
		g.attackers = nil
	case rules.StepEnd:
		st.Emit(rules.NewEvent(rules.EventEndStep, "", ""))
		if err := g.resolve(); err != nil {
			return err
		}
		return g.sacrificeFodder()
	case rules.StepCleanup:
		g.cleanup()
	}
	return nil
}

// endOfStep records peak power and empties the pool unless a permanent lets
// mana persist.
func (g *gameRun) endOfStep() {
	st := g.st
	m := st.Current()
	if power := st.BoardPower(); power > m.PeakPower {
		m.PeakPower = power
	}
	if !g.triggers.ManaPersists(st) {
		st.Pool.Empty()
	}
}

func (g *gameRun) untap() {
	st := g.st
	st.Current()
	st.Pool.Empty()
	st.LandPlayed = false
	for _, p := range st.Battlefield {
		p.Tapped = false
	}
	g.watchers.ResetWatchersByScope(rules.WatcherScopeTurn)
}

func (g *gameRun) upkeep() error {
	st := g.st
	st.Emit(rules.NewEvent(rules.EventUpkeep, "", ""))
	if err := g.resolve(); err != nil {
		return err
	}
	if g.opts.BoardWipeTurn > 0 && st.Turn == g.opts.BoardWipeTurn {
		creatures := st.Creatures()
		if g.logger != nil {
			g.logger.Debug("board wipe",
				zap.Int64("seed", st.Seed),
				zap.Int("turn", st.Turn),
				zap.Int("creatures", len(creatures)),
			)
		}
		for _, p := range creatures {
			if p.Removed {
				continue
			}
			if err := g.destroy(p, false); err != nil {
				return err
			}
		}
		return g.resolve()
	}
	return nil
}

func (g *gameRun) main(step rules.Step) error {
	st := g.st
	if !st.LandPlayed {
		if err := g.playLand(); err != nil {
			return err
		}
	}
	if step == rules.StepMain1 {
		st.Current().ManaAvailable = mana.Available(st.Pool, st.Sources())
	}
	return g.castSpells()
}

// playLand plays one land from hand, preferring a land that adds a color the
// board is missing, then one that enters untapped, then by name.
func (g *gameRun) playLand() error {
	st := g.st
	var lands []*card.Definition
	for _, def := range st.Hand {
		if def.Land {
			lands = append(lands, def)
		}
	}
	if len(lands) == 0 {
		return nil
	}

	have := mana.Coverage(nil, st.Sources())
	for _, p := range st.Lands() {
		have = have.Union(p.Def.ProducedColors)
	}
	adds := func(def *card.Definition) bool {
		missing := def.ProducedColors.Colors() &^ have
		if g.identity != 0 {
			missing &= g.identity
		}
		return missing != 0
	}
	sort.SliceStable(lands, func(i, j int) bool {
		a, b := lands[i], lands[j]
		if adds(a) != adds(b) {
			return adds(a)
		}
		if a.EntersTapped != b.EntersTapped {
			return !a.EntersTapped
		}
		return a.Name < b.Name
	})

	land := lands[0]
	st.RemoveFromHand(land)
	st.LandPlayed = true
	p := st.Enter(land, board.EnterOptions{})
	st.Emit(rules.NewEvent(rules.EventLandPlayed, p.ID, p.ID))
	return g.resolve()
}

type candidate struct {
	def       *card.Definition
	commander bool
}

// castSpells casts the highest priority castable card until nothing else can
// be paid for.
func (g *gameRun) castSpells() error {
	for {
		c, plan := g.nextCastable()
		if plan == nil {
			return nil
		}
		if err := g.cast(c, plan); err != nil {
			return err
		}
	}
}

// nextCastable orders candidates accelerants first, then by descending mana
// value, then by name, and returns the first one that can be paid for.
func (g *gameRun) nextCastable() (candidate, *mana.PaymentPlan) {
	st := g.st
	var cands []candidate
	for _, def := range st.Hand {
		if !def.Land {
			cands = append(cands, candidate{def: def})
		}
	}
	if st.CommandZone && st.Commander != nil {
		cands = append(cands, candidate{def: st.Commander, commander: true})
	}
	if len(cands) == 0 {
		return candidate{}, nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].def, cands[j].def
		if a.Accelerant != b.Accelerant {
			return a.Accelerant
		}
		if a.ManaValue != b.ManaValue {
			return a.ManaValue > b.ManaValue
		}
		return a.Name < b.Name
	})

	sources := st.Sources()
	for _, c := range cands {
		if plan := mana.CalculatePayment(g.costOf(c), st.Pool, sources, 0); plan != nil {
			return c, plan
		}
	}
	return candidate{}, nil
}

func (g *gameRun) costOf(c candidate) *mana.ManaCost {
	cost := c.def.Cost
	if c.commander && g.st.CommanderCasts > 0 {
		cost = cost.WithGeneric(commanderTax * g.st.CommanderCasts)
	}
	if r := g.st.CostReduction(c.def); r > 0 {
		cost = cost.ApplyReduction(r)
	}
	return cost
}

func (g *gameRun) cast(c candidate, plan *mana.PaymentPlan) error {
	st := g.st
	def := c.def

	if err := mana.ExecutePayment(plan, st.Pool); err != nil {
		return fmt.Errorf("pay for %s: %w", def.Name, err)
	}
	for _, id := range plan.Tapped {
		p := st.Find(id)
		if p == nil {
			return fmt.Errorf("payment for %s tapped unknown permanent %s", def.Name, id)
		}
		if p.Def.Treasure {
			st.Emit(rules.NewEvent(rules.EventTreasureSpent, p.ID, p.ID))
			if err := g.destroy(p, true); err != nil {
				return err
			}
			continue
		}
		p.Tapped = true
	}

	if c.commander {
		st.CommandZone = false
		st.CommanderCasts++
	} else if !st.RemoveFromHand(def) {
		return fmt.Errorf("cast %s which is not in hand", def.Name)
	}

	ev := rules.NewEvent(rules.EventSpellCast, "", "")
	ev.Spell = def.SpellInfo(c.commander)
	st.Emit(ev)
	// Cast triggers resolve before the spell itself.
	if err := g.resolve(); err != nil {
		return err
	}

	if g.logger != nil {
		g.logger.Debug("spell cast",
			zap.Int64("seed", st.Seed),
			zap.Int("turn", st.Turn),
			zap.String("step", st.Step.String()),
			zap.String("card", def.Name),
			zap.Bool("commander", c.commander),
			zap.Int("tapped", len(plan.Tapped)),
		)
	}

	if def.IsPermanent() {
		st.Enter(def, board.EnterOptions{Commander: c.commander})
	} else {
		st.Graveyard = append(st.Graveyard, def)
		for _, d := range def.Abilities {
			if d.Trigger != ability.TriggerOnResolve {
				continue
			}
			if err := effects.ApplyAll(st, d.Effects, nil, ev); err != nil {
				return err
			}
		}
	}
	return g.resolve()
}

func (g *gameRun) canAttack(p *board.Permanent) bool {
	if p.Tapped || g.st.HasKeyword(p, ability.KeywordDefender) {
		return false
	}
	return !p.SummoningSick() || g.st.HasKeyword(p, ability.KeywordHaste)
}

func (g *gameRun) declareAttackers() error {
	st := g.st
	for _, p := range st.Creatures() {
		if !g.canAttack(p) {
			continue
		}
		if !st.HasKeyword(p, ability.KeywordVigilance) {
			p.Tapped = true
		}
		g.attackers = append(g.attackers, p)
		st.Emit(rules.NewEvent(rules.EventAttackerDeclared, p.ID, p.ID))
	}
	return g.resolve()
}

// combatDamage deals every surviving attacker's power to the opponent.
func (g *gameRun) combatDamage() error {
	st := g.st
	for _, p := range g.attackers {
		if p.Removed {
			continue
		}
		damage := st.PowerOf(p)
		if damage <= 0 {
			continue
		}
		if st.HasKeyword(p, ability.KeywordDoubleStrike) {
			damage *= 2
		}
		st.OpponentLife -= damage
		ev := rules.NewEventWithFlag(rules.EventDamagePlayer, p.ID, p.ID, true)
		ev.Amount = damage
		st.Emit(ev)
		if st.HasKeyword(p, ability.KeywordLifelink) {
			effects.GainLife(st, p.ID, damage)
		}
	}
	return g.resolve()
}

// sacrificeFodder feeds creatures with death triggers and small tokens to the
// first sacrifice outlet.
func (g *gameRun) sacrificeFodder() error {
	if g.opts.SacrificePolicy != SacrificeFodder {
		return nil
	}
	st := g.st
	outlets := g.triggers.SacrificeOutlets(st)
	if len(outlets) == 0 {
		return nil
	}
	outlet := outlets[0]
	activated, ok := triggers.ActivatedAbility(outlet)
	if !ok {
		return nil
	}

	var fodder []*board.Permanent
	for _, p := range st.Creatures() {
		if p == outlet || p.Commander {
			continue
		}
		if p.DeathValue > 0 || (p.IsToken() && st.PowerOf(p) <= 1) {
			fodder = append(fodder, p)
		}
	}
	sort.SliceStable(fodder, func(i, j int) bool {
		return fodder[i].DeathValue > fodder[j].DeathValue
	})

	for _, p := range fodder {
		if p.Removed || outlet.Removed {
			continue
		}
		if err := g.destroy(p, true); err != nil {
			return err
		}
		ev := rules.NewEvent(rules.EventSacrificed, outlet.ID, p.ID)
		if err := effects.ApplyAll(st, activated.Effects, outlet, ev); err != nil {
			return err
		}
		if err := g.resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (g *gameRun) cleanup() {
	st := g.st
	effects.ExpireTemporary(st, rules.StepCleanup)

	if excess := len(st.Hand) - maxHandSize; excess > 0 {
		discard := append([]*card.Definition(nil), st.Hand...)
		sort.SliceStable(discard, func(i, j int) bool {
			return discard[i].ManaValue > discard[j].ManaValue
		})
		for _, def := range discard[:excess] {
			st.RemoveFromHand(def)
			st.Graveyard = append(st.Graveyard, def)
		}
	}

	for _, p := range st.Battlefield {
		p.TurnsOnBoard++
	}
	m := st.Current()
	m.OpponentLife = st.OpponentLife

	if g.replay != nil {
		g.replay.addTurn(NewSnapshot(st))
	}
	if g.logger != nil {
		g.logger.Debug("turn complete",
			zap.Int64("seed", st.Seed),
			zap.Int("turn", st.Turn),
			zap.Int("spells_cast", g.spells.GetCount()),
			zap.Int("opponent_life", st.OpponentLife),
			zap.Int("board_power", st.BoardPower()),
		)
	}
}

// destroy removes p from the battlefield. Its dies and leaves triggers are
// collected while it is still on the board and resolved exactly once after
// removal.
func (g *gameRun) destroy(p *board.Permanent, sacrificed bool) error {
	st := g.st
	if p.Removed {
		return fmt.Errorf("%s (%s) removed twice", p.Def.Name, p.ID)
	}

	if sacrificed {
		st.Publish(rules.NewEvent(rules.EventSacrificed, p.ID, p.ID))
	}
	var acts []triggers.Activation
	if p.IsCreature() {
		acts = append(acts, g.triggers.Fire(st, st.Publish(rules.NewEvent(rules.EventDies, p.ID, p.ID)))...)
	}
	acts = append(acts, g.triggers.Fire(st, st.Publish(rules.NewEvent(rules.EventLeavesBattlefield, p.ID, p.ID)))...)

	if err := st.Remove(p); err != nil {
		return err
	}
	if g.logger != nil && p.IsCreature() {
		g.logger.Debug("creature died",
			zap.Int64("seed", st.Seed),
			zap.Int("turn", st.Turn),
			zap.String("card", p.Def.Name),
			zap.Bool("sacrificed", sacrificed),
		)
	}
	return g.apply(acts)
}

func (g *gameRun) apply(acts []triggers.Activation) error {
	for _, act := range acts {
		if err := effects.ApplyAll(g.st, act.Descriptor.Effects, act.Source, act.Event); err != nil {
			return fmt.Errorf("%s %s trigger: %w", act.Source.Def.Name, act.Descriptor.Trigger, err)
		}
	}
	return nil
}

// resolve runs state-based checks and fires triggers for queued events until
// the board is quiet or the iteration bound is reached.
func (g *gameRun) resolve() error {
	st := g.st
	for i := 0; ; i++ {
		if err := g.checkStateBased(); err != nil {
			return err
		}
		if !st.HasPending() {
			return nil
		}
		if i >= g.opts.MaxTriggerIterations {
			dropped := st.DrainPending()
			if g.logger != nil {
				g.logger.Warn("trigger loop bound reached",
					zap.Int64("seed", st.Seed),
					zap.Int("turn", st.Turn),
					zap.Int("dropped_events", len(dropped)),
				)
			}
			return nil
		}
		for _, ev := range st.DrainPending() {
			if err := g.apply(g.triggers.Fire(st, ev)); err != nil {
				return err
			}
		}
	}
}

// checkStateBased destroys creatures with toughness zero or less.
func (g *gameRun) checkStateBased() error {
	for _, p := range g.st.Creatures() {
		if p.Removed || g.st.ToughnessOf(p) > 0 {
			continue
		}
		if err := g.destroy(p, false); err != nil {
			return err
		}
	}
	return nil
}
