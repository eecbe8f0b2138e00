// Package simulation runs batches of goldfish games in parallel and reduces
// them to per-turn averages.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magefree/mage-goldfish/internal/game"
	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/manasim"
)

// Config configures a Driver.
type Config struct {
	// Options are the engine options. MaxTurns is replaced by the maxTurn
	// argument of each run.
	Options game.Options
	// Workers defaults to the number of CPUs.
	Workers int
	// Seed is the base seed every per-game seed is derived from.
	Seed int64
	// HandPolicy overrides the default mulligan policy when set.
	HandPolicy game.HandPolicy
}

// Driver runs simulations. A Driver is safe for concurrent use.
type Driver struct {
	cfg    Config
	logger *zap.Logger
}

// NewDriver creates a driver. logger may be nil.
func NewDriver(cfg Config, logger *zap.Logger) *Driver {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Driver{cfg: cfg, logger: logger}
}

// seedFor derives the seed of game index from the base seed.
func seedFor(base int64, index int) int64 {
	return manasim.SeedFor(base, index)
}

// Deck is a validated deck ready for simulation.
type Deck struct {
	Cards     []*card.Definition
	Commander *card.Definition
}

// LoadDeck validates the records and builds their definitions. The commander
// is removed from cards once if it is listed there too. Rules text no
// pattern recognizes is logged at debug level and otherwise ignored.
func (d *Driver) LoadDeck(cards []card.Record, commander *card.Record) (*Deck, error) {
	if len(cards) == 0 {
		return nil, inputError(ErrNoCards, "")
	}
	if commander == nil || strings.TrimSpace(commander.Name) == "" {
		return nil, inputError(ErrNoCommander, "")
	}

	cmdr, err := card.NewDefinition(*commander)
	if err != nil {
		return nil, inputError(ErrMalformedCard, err.Error())
	}
	records := cards
	for i, rec := range cards {
		if strings.EqualFold(strings.TrimSpace(rec.Name), cmdr.Name) {
			records = append(append([]card.Record(nil), cards[:i]...), cards[i+1:]...)
			break
		}
	}
	if len(records) == 0 {
		return nil, inputError(ErrNoCards, "only the commander was listed")
	}
	defs, err := card.LoadAll(records)
	if err != nil {
		return nil, inputError(ErrMalformedCard, err.Error())
	}

	if d.logger != nil {
		d.logUnrecognized(cmdr)
		seen := make(map[string]bool)
		for _, def := range defs {
			if !seen[def.Name] {
				seen[def.Name] = true
				d.logUnrecognized(def)
			}
		}
	}
	return &Deck{Cards: defs, Commander: cmdr}, nil
}

func (d *Driver) logUnrecognized(def *card.Definition) {
	for _, sentence := range ability.Unrecognized(def.Text) {
		d.logger.Debug("unrecognized rules text",
			zap.String("card", def.Name),
			zap.String("text", sentence),
		)
	}
}

func (d *Driver) engine(maxTurn int) (*game.Engine, error) {
	opts := d.cfg.Options
	opts.MaxTurns = maxTurn
	e, err := game.NewEngine(opts, d.logger)
	if err != nil {
		return nil, inputError(err, "")
	}
	if d.cfg.HandPolicy != nil {
		e = e.WithHandPolicy(d.cfg.HandPolicy)
	}
	return e, nil
}

// RunSimulations validates the deck and plays numGames games of maxTurn turns.
func (d *Driver) RunSimulations(ctx context.Context, cards []card.Record, commander *card.Record, numGames, maxTurn int) (*Summary, error) {
	deck, err := d.LoadDeck(cards, commander)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, deck, numGames, maxTurn)
}

// Run plays numGames games of a loaded deck across the configured workers.
// Games that end in an invariant violation are counted as failed and their
// metrics discarded.
func (d *Driver) Run(ctx context.Context, deck *Deck, numGames, maxTurn int) (*Summary, error) {
	if numGames <= 0 {
		return nil, inputError(ErrNoGames, fmt.Sprintf("got %d", numGames))
	}
	e, err := d.engine(maxTurn)
	if err != nil {
		return nil, err
	}

	total := newAggregate(maxTurn)
	var mu sync.Mutex

	jobs := make(chan int, d.cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < d.cfg.Workers; w++ {
		g.Go(func() error {
			local := newAggregate(maxTurn)
			for i := range jobs {
				seed := seedFor(d.cfg.Seed, i)
				rec, err := e.Play(gctx, deck.Cards, deck.Commander, seed)
				if err != nil {
					var violation *game.InvariantViolation
					if !errors.As(err, &violation) {
						return err
					}
					local.failed++
					if d.logger != nil {
						d.logger.Warn("game failed",
							zap.Int("game", i),
							zap.Int64("seed", seed),
							zap.Error(err),
						)
					}
					continue
				}
				local.addGame(rec)
			}
			mu.Lock()
			total.merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := total.summary(d.cfg.Seed)
	if d.logger != nil {
		d.logger.Info("simulation complete",
			zap.Int("games", summary.GamesPlayed),
			zap.Int("failed", summary.FailedGames),
			zap.Int("max_turn", maxTurn),
			zap.Int("workers", d.cfg.Workers),
			zap.Int64("seed", d.cfg.Seed),
		)
	}
	return summary, nil
}

// Replay plays game index of a batch again and records its board at the end
// of every turn.
func (d *Driver) Replay(ctx context.Context, deck *Deck, index, maxTurn int) (*game.Replay, error) {
	e, err := d.engine(maxTurn)
	if err != nil {
		return nil, err
	}
	_, replay, err := e.Record(ctx, deck.Cards, deck.Commander, seedFor(d.cfg.Seed, index))
	if err != nil {
		return nil, fmt.Errorf("replay game %d: %w", index, err)
	}
	return replay, nil
}

// SimulateDeckMana runs the mana simulator on the deck's cards. The
// commander is excluded from the library but counts toward the color
// identity.
func (d *Driver) SimulateDeckMana(ctx context.Context, deck *Deck, params manasim.Params) (*manasim.Result, error) {
	if params.ColorIdentity == 0 && deck.Commander != nil {
		identity := deck.Commander.ColorIdentity
		for _, def := range deck.Cards {
			identity = identity.Union(def.ColorIdentity)
		}
		params.ColorIdentity = identity
	}
	if params.Workers == 0 {
		params.Workers = d.cfg.Workers
	}
	return manasim.NewSimulator(d.logger).Simulate(ctx, deck.Cards, params)
}
